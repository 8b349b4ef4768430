package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/derickschaefer/pitwall/internal/browse"
	"github.com/derickschaefer/pitwall/internal/model"
	"github.com/derickschaefer/pitwall/internal/render"
)

var browseCmd = &cobra.Command{
	Use:   "browse <CATEGORY|URL>",
	Short: "Interactive filter session",
	Long: `Start an interactive session on a category or deep link.

Commands:
  set <dimension> <value>   pick a value (name, slug or id)
  clear <dimension>         clear a filter and every filter chosen after it
  options [dimension]       show option lists
  search                    run the search and update the URL
  page <n> | next | prev    move through result pages
  select <id>               show one setup in detail
  show                      reprint the current page
  url                       print the current deep link
  quit                      leave`,
	Example: `  pitwall browse iracing
  pitwall browse '/setups/iracing/ferrari-296?class=GT3'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, sess, err := openTarget(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		defer deps.Close()

		r := &repl{
			sess:   sess,
			out:    cmd.OutOrStdout(),
			errOut: cmd.ErrOrStderr(),
			format: resolveFormat(deps.Config.Format),
		}
		return r.run(cmd.Context(), cmd.InOrStdin())
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

// ─── REPL ─────────────────────────────────────────────────────────────────────

var errQuit = errors.New("quit")

type repl struct {
	sess   *browse.Session
	out    io.Writer
	errOut io.Writer
	format string
}

func (r *repl) run(ctx context.Context, in io.Reader) error {
	fmt.Fprintf(r.out, "%s  (type 'help' for commands)\n", r.sess.Location())
	if r.sess.Searched() {
		r.show()
	}
	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(r.out, "pitwall> ")
		if !sc.Scan() {
			fmt.Fprintln(r.out)
			return sc.Err()
		}
		err := r.exec(ctx, sc.Text())
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			fmt.Fprintf(r.errOut, "Error: %v\n", err)
		}
		if e := r.sess.LastError(); e != nil {
			fmt.Fprintf(r.errOut, "⚠  %v\n", e)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// exec runs one input line.
func (r *repl) exec(ctx context.Context, line string) error {
	verb, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
	rest = strings.TrimSpace(rest)
	verb = strings.ToLower(verb)
	switch verb {
	case "":
		return nil
	case "quit", "exit", "q":
		return errQuit
	case "help", "?":
		fmt.Fprintln(r.out, "set <dim> <value> | clear <dim> | options [dim] | search | page <n> | next | prev | select <id> | show | url | quit")
		return nil
	case "set", "clear":
		dimText, value, _ := strings.Cut(rest, " ")
		dim, ok := model.ParseDimension(dimText)
		if !ok {
			return fmt.Errorf("unknown dimension %q", dimText)
		}
		if verb == "clear" {
			value = ""
		}
		if err := r.sess.SelectByName(ctx, dim, value); err != nil {
			return err
		}
		r.sess.Sync(ctx)
		r.status()
		return nil
	case "options":
		return r.options(rest)
	case "search":
		r.sess.Search(ctx, true)
		r.show()
		return nil
	case "page", "next", "prev":
		n := r.sess.Page()
		switch verb {
		case "next":
			n++
		case "prev":
			n--
		default:
			p, err := strconv.Atoi(rest)
			if err != nil {
				return fmt.Errorf("page: %q is not a number", rest)
			}
			n = p
		}
		r.sess.SetPage(n)
		r.show()
		return nil
	case "select":
		id, err := parseIntID(rest, "setup ID")
		if err != nil {
			return err
		}
		if !r.sess.Select(id) {
			return fmt.Errorf("setup %d is not in the results", id)
		}
		r.show()
		return nil
	case "show":
		r.show()
		return nil
	case "url":
		fmt.Fprintln(r.out, r.sess.Location())
		return nil
	default:
		return fmt.Errorf("unknown command %q (type 'help')", verb)
	}
}

// status prints the current selection in cascade order.
func (r *repl) status() {
	view := r.sess.View()
	for _, f := range view.Filters {
		if f.Selected == 0 {
			continue
		}
		name := strconv.FormatInt(f.Selected, 10)
		for _, o := range f.Options {
			if o.ID == f.Selected {
				name = o.Name
			}
		}
		fmt.Fprintf(r.out, "  %-10s %s\n", f.Dimension, name)
	}
}

func (r *repl) options(dimText string) error {
	view := r.sess.View()
	filters := view.Filters
	if dimText != "" {
		dim, ok := model.ParseDimension(dimText)
		if !ok {
			return fmt.Errorf("unknown dimension %q", dimText)
		}
		filters = nil
		for _, f := range view.Filters {
			if f.Dimension == dim {
				filters = append(filters, f)
			}
		}
		if filters == nil {
			return fmt.Errorf("%s: %w", dim, browse.ErrUnknownDimension)
		}
	}
	return render.Render(r.out, newResult(model.KindOptions, "options", filters, len(filters)), r.format)
}

func (r *repl) show() {
	view := r.sess.View()
	if err := render.Render(r.out, newResult(model.KindSetupPage, "show", &view, len(view.Items)), r.format); err != nil {
		fmt.Fprintf(r.errOut, "Error: %v\n", err)
	}
}
