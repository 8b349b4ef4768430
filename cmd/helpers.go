package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/derickschaefer/pitwall/internal/app"
	"github.com/derickschaefer/pitwall/internal/browse"
	"github.com/derickschaefer/pitwall/internal/model"
	"github.com/derickschaefer/pitwall/internal/render"
	"github.com/derickschaefer/pitwall/internal/urlsync"
)

// resolveFormat returns the effective format string, falling back to "table".
func resolveFormat(cfgFormat string) string {
	if globalFlags.Format != "" {
		return globalFlags.Format
	}
	if cfgFormat != "" {
		return cfgFormat
	}
	return render.FormatTable
}

// outputWriter returns the --out file when set, or def. The returned
// close function must always be called.
func outputWriter(def io.Writer) (io.Writer, func() error, error) {
	if globalFlags.Out == "" {
		return def, func() error { return nil }, nil
	}
	f, err := os.Create(globalFlags.Out)
	if err != nil {
		return nil, nil, fmt.Errorf("creating output file: %w", err)
	}
	return f, f.Close, nil
}

// emit renders result in the configured format, followed by the
// warnings/stats footer on stderr.
func emit(cmd *cobra.Command, deps *app.Deps, result *model.Result, started time.Time) error {
	result.Stats.DurationMs = time.Since(started).Milliseconds()
	if deps.Config.Quiet {
		return nil
	}
	w, closeFn, err := outputWriter(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if err := render.Render(w, result, resolveFormat(deps.Config.Format)); err != nil {
		_ = closeFn()
		return err
	}
	render.PrintFooter(cmd.ErrOrStderr(), result, deps.Config.Verbose)
	return closeFn()
}

// newResult builds a Result envelope stamped with the current time.
func newResult(kind, command string, data any, items int) *model.Result {
	return &model.Result{
		Kind:        kind,
		GeneratedAt: time.Now(),
		Command:     command,
		Data:        data,
		Stats:       model.ResultStats{Items: items},
	}
}

// printSimpleTable renders a simple table with headers using tablewriter.
// The add callback is called with row values as variadic strings.
func printSimpleTable(w io.Writer, headers []string, fill func(add func(...string))) {
	tw := tablewriter.NewWriter(w)
	tw.SetHeader(headers)
	tw.SetBorder(true)
	tw.SetRowLine(false)
	tw.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	tw.SetAlignment(tablewriter.ALIGN_LEFT)
	tw.SetAutoWrapText(false)

	fill(func(cols ...string) {
		tw.Append(cols)
	})
	tw.Render()
}

// parseIntID parses a non-negative integer argument.
func parseIntID(s, label string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a non-negative integer", label, s)
	}
	return n, nil
}

// ─── Browse targets ───────────────────────────────────────────────────────────

// parseTarget accepts a setups URL (absolute or path) or a bare category
// slug and returns the parsed location.
func parseTarget(arg string) (urlsync.Location, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return urlsync.Location{}, fmt.Errorf("a category or setups URL is required")
	}
	if !strings.HasPrefix(arg, "/") && !strings.Contains(arg, "://") {
		arg = "/" + urlsync.DefaultBase + "/" + arg
	}
	return urlsync.Parse(arg)
}

// change is one ordered --set edit.
type change struct {
	Dim   model.Dimension
	Value string
}

// parseChanges reads dim=value pairs. An empty value clears the dimension.
func parseChanges(sets []string) ([]change, error) {
	out := make([]change, 0, len(sets))
	for _, s := range sets {
		k, v, ok := strings.Cut(s, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --set %q: expected dimension=value", s)
		}
		dim, ok := model.ParseDimension(k)
		if !ok {
			return nil, fmt.Errorf("invalid --set %q: unknown dimension %q", s, k)
		}
		out = append(out, change{Dim: dim, Value: strings.TrimSpace(v)})
	}
	return out, nil
}

// applyChanges replays user edits in order, settling the cascade after
// each one.
func applyChanges(ctx context.Context, sess *browse.Session, changes []change) error {
	for _, c := range changes {
		if err := sess.SelectByName(ctx, c.Dim, c.Value); err != nil {
			return err
		}
		sess.Sync(ctx)
	}
	return nil
}

// openTarget builds deps with the store, resolves the target's category
// and runs the navigation.
func openTarget(ctx context.Context, arg string) (*app.Deps, *browse.Session, error) {
	loc, err := parseTarget(arg)
	if err != nil {
		return nil, nil, err
	}
	deps, err := buildDeps()
	if err != nil {
		return nil, nil, err
	}
	if err := deps.RequireStore(ctx); err != nil {
		_ = deps.Close()
		return nil, nil, err
	}
	sess, err := deps.OpenLocation(ctx, loc)
	if err != nil {
		_ = deps.Close()
		return nil, nil, err
	}
	return deps, sess, nil
}

// sessionWarnings reports a swallowed engine error as a warning.
func sessionWarnings(sess *browse.Session) []string {
	if err := sess.LastError(); err != nil {
		return []string{err.Error()}
	}
	return nil
}
