package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/derickschaefer/pitwall/internal/model"
	"github.com/derickschaefer/pitwall/internal/store"
)

var savedCmd = &cobra.Command{
	Use:   "saved",
	Short: "Save and replay setups searches",
	Long: `Saved searches keep the canonical deep link of a filtered view so it
can be reopened later.

  pitwall saved save iracing --name "gt3 monza" --set class=GT3 --set track=Monza
  pitwall saved list
  pitwall saved run "gt3 monza"`,
}

// ─── saved save ───────────────────────────────────────────────────────────────

var (
	savedSaveName string
	savedSaveSets []string
)

var savedSaveCmd = &cobra.Command{
	Use:   "save <CATEGORY|URL>",
	Short: "Resolve a filtered view and save its deep link",
	Example: `  pitwall saved save iracing --name "gt3" --set class=GT3
  pitwall saved save '/setups/iracing/ferrari-296/monza?class=GT3' --name fer-monza`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		changes, err := parseChanges(savedSaveSets)
		if err != nil {
			return err
		}
		deps, sess, err := openTarget(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		defer deps.Close()

		if err := applyChanges(cmd.Context(), sess, changes); err != nil {
			return err
		}
		if len(changes) > 0 {
			sess.Search(cmd.Context(), true)
		}

		ss := store.SavedSearch{
			ID:        newSavedID(),
			Name:      savedSaveName,
			URL:       sess.Location(),
			CreatedAt: time.Now().UTC(),
		}
		if err := deps.Store.PutSaved(ss); err != nil {
			return fmt.Errorf("saving search: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Saved %s  (%s)\n", ss.ID, ss.Name)
		fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", ss.URL)
		return nil
	},
}

// ─── saved list ───────────────────────────────────────────────────────────────

var savedListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List saved searches",
	Example: `  pitwall saved list`,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		if err := deps.RequireStore(cmd.Context()); err != nil {
			return err
		}
		defer deps.Close()

		all, err := deps.Store.ListSaved()
		if err != nil {
			return fmt.Errorf("listing saved searches: %w", err)
		}
		if len(all) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No saved searches.")
			fmt.Fprintln(cmd.OutOrStdout(), "  Use: pitwall saved save <category> --name <name> --set dim=value")
			return nil
		}

		printSimpleTable(cmd.OutOrStdout(), []string{"ID", "NAME", "URL", "CREATED"}, func(add func(...string)) {
			for _, s := range all {
				u := s.URL
				if len(u) > 60 {
					u = u[:57] + "..."
				}
				add(s.ID, s.Name, u, s.CreatedAt.Format("2006-01-02 15:04"))
			}
		})
		return nil
	},
}

// ─── saved show ───────────────────────────────────────────────────────────────

var savedShowCmd = &cobra.Command{
	Use:     "show <ID|NAME>",
	Short:   "Show full details of a saved search",
	Example: `  pitwall saved show "gt3 monza"`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		if err := deps.RequireStore(cmd.Context()); err != nil {
			return err
		}
		defer deps.Close()

		ss, err := findSaved(deps.Store, args[0])
		if err != nil {
			return err
		}
		printSimpleTable(cmd.OutOrStdout(), []string{"FIELD", "VALUE"}, func(add func(...string)) {
			add("ID", ss.ID)
			add("Name", ss.Name)
			add("URL", ss.URL)
			add("Created", ss.CreatedAt.Format(time.RFC3339))
		})
		return nil
	},
}

// ─── saved run ────────────────────────────────────────────────────────────────

var savedRunCmd = &cobra.Command{
	Use:     "run <ID|NAME>",
	Short:   "Open a saved search and list its setups",
	Example: `  pitwall saved run "gt3 monza" --format csv`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		if err := deps.RequireStore(cmd.Context()); err != nil {
			return err
		}
		defer deps.Close()

		ss, err := findSaved(deps.Store, args[0])
		if err != nil {
			return err
		}
		loc, err := parseTarget(ss.URL)
		if err != nil {
			return fmt.Errorf("saved search %s: %w", ss.ID, err)
		}

		started := time.Now()
		sess, err := deps.OpenLocation(cmd.Context(), loc)
		if err != nil {
			return err
		}
		if !sess.Searched() {
			sess.Search(cmd.Context(), false)
		}
		view := sess.View()
		result := newResult(model.KindSetupPage, "saved run", &view, len(view.Items))
		result.Warnings = sessionWarnings(sess)
		return emit(cmd, deps, result, started)
	},
}

// ─── saved delete ─────────────────────────────────────────────────────────────

var savedDeleteCmd = &cobra.Command{
	Use:     "delete <ID|NAME>",
	Short:   "Delete a saved search",
	Example: `  pitwall saved delete "gt3 monza"`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		if err := deps.RequireStore(cmd.Context()); err != nil {
			return err
		}
		defer deps.Close()

		ss, err := findSaved(deps.Store, args[0])
		if err != nil {
			return err
		}
		if err := deps.Store.DeleteSaved(ss.ID); err != nil {
			return fmt.Errorf("deleting saved search: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted %s  (%s)\n", ss.ID, ss.Name)
		return nil
	},
}

// ─── Registration ─────────────────────────────────────────────────────────────

func init() {
	rootCmd.AddCommand(savedCmd)
	savedCmd.AddCommand(savedSaveCmd)
	savedCmd.AddCommand(savedListCmd)
	savedCmd.AddCommand(savedShowCmd)
	savedCmd.AddCommand(savedRunCmd)
	savedCmd.AddCommand(savedDeleteCmd)

	savedSaveCmd.Flags().StringVar(&savedSaveName, "name", "", "human-readable name for the search (required)")
	savedSaveCmd.Flags().StringArrayVar(&savedSaveSets, "set", nil, "filter change dimension=value, applied in order (repeatable)")
	savedSaveCmd.MarkFlagRequired("name")
	_ = savedSaveCmd.RegisterFlagCompletionFunc("set", completeSetFlag)
}

// ─── Lookup ───────────────────────────────────────────────────────────────────

// newSavedID returns a time-ordered UUID (version 7).
func newSavedID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// savedLister is the part of the store findSaved needs.
type savedLister interface {
	ListSaved() ([]store.SavedSearch, error)
}

// findSaved matches key against ids, then names (case-insensitive), then
// unique id prefixes.
func findSaved(st savedLister, key string) (store.SavedSearch, error) {
	all, err := st.ListSaved()
	if err != nil {
		return store.SavedSearch{}, fmt.Errorf("listing saved searches: %w", err)
	}
	if ss, ok := lo.Find(all, func(s store.SavedSearch) bool { return s.ID == key }); ok {
		return ss, nil
	}
	if ss, ok := lo.Find(all, func(s store.SavedSearch) bool { return strings.EqualFold(s.Name, key) }); ok {
		return ss, nil
	}
	byPrefix := lo.Filter(all, func(s store.SavedSearch, _ int) bool { return strings.HasPrefix(s.ID, key) })
	switch len(byPrefix) {
	case 1:
		return byPrefix[0], nil
	case 0:
		return store.SavedSearch{}, fmt.Errorf("saved search %q not found", key)
	default:
		return store.SavedSearch{}, fmt.Errorf("saved search %q is ambiguous (%d matches)", key, len(byPrefix))
	}
}
