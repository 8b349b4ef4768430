// Package render converts Result values into human-readable or machine-parseable
// output. Each format is a separate function; the top-level Render dispatcher
// selects based on the format string.
package render

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/derickschaefer/pitwall/internal/model"
	"github.com/derickschaefer/pitwall/internal/util"
)

// Format constants matching --format flag values.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatJSONL = "jsonl"
	FormatCSV   = "csv"
	FormatTSV   = "tsv"
	FormatMD    = "md"
)

// Formats lists every supported format.
var Formats = []string{FormatTable, FormatJSON, FormatJSONL, FormatCSV, FormatTSV, FormatMD}

// Render writes result to w in the specified format.
func Render(w io.Writer, result *model.Result, format string) error {
	switch format {
	case FormatJSON:
		return renderJSON(w, result)
	case FormatJSONL:
		return renderJSONL(w, result)
	case FormatCSV:
		return renderDelimited(w, result, ',')
	case FormatTSV:
		return renderDelimited(w, result, '\t')
	case FormatMD:
		return renderMarkdown(w, result)
	default:
		return renderTable(w, result)
	}
}

// RenderTo writes to stdout by default; if path is non-empty, writes to file.
func RenderTo(path string, result *model.Result, format string) error {
	if path == "" {
		return Render(os.Stdout, result, format)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer f.Close()
	return Render(f, result, format)
}

// ─── JSON ─────────────────────────────────────────────────────────────────────

func renderJSON(w io.Writer, result *model.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// ─── JSONL ────────────────────────────────────────────────────────────────────

// renderJSONL writes one record per line: setups for a page, one element
// per line for list payloads.
func renderJSONL(w io.Writer, result *model.Result) error {
	enc := json.NewEncoder(w)
	switch d := result.Data.(type) {
	case *model.SetupPage:
		for _, s := range d.Items {
			if err := enc.Encode(s); err != nil {
				return err
			}
		}
		return nil
	case []model.Category:
		return encodeEach(enc, d)
	case []model.Plan:
		return encodeEach(enc, d)
	case []model.DimensionOptions:
		return encodeEach(enc, d)
	default:
		return enc.Encode(result.Data)
	}
}

func encodeEach[T any](enc *json.Encoder, items []T) error {
	for _, it := range items {
		if err := enc.Encode(it); err != nil {
			return err
		}
	}
	return nil
}

// ─── Tabulation ───────────────────────────────────────────────────────────────

// tabulate flattens a result into headers and rows. ok is false for
// payloads with no tabular form.
func tabulate(result *model.Result) (headers []string, rows [][]string, ok bool) {
	switch d := result.Data.(type) {
	case []model.Category:
		headers = []string{"ID", "NAME", "SLUG"}
		for _, c := range d {
			rows = append(rows, []string{strconv.Itoa(c.ID), c.Name, c.Slug})
		}
	case []model.Plan:
		headers = []string{"ID", "NAME", "PRICE", "CURRENCY", "INTERVAL"}
		for _, p := range d {
			rows = append(rows, []string{strconv.Itoa(p.ID), p.Name, p.Price.StringFixed(2), p.Currency, p.Interval})
		}
	case []model.DimensionOptions:
		headers, rows = optionRows(d)
	case *model.SetupPage:
		headers, rows = setupRows(d)
	case model.Table:
		headers, rows = d.Headers, d.Rows
	case *model.Table:
		headers, rows = d.Headers, d.Rows
	default:
		return nil, nil, false
	}
	return headers, rows, true
}

func optionRows(dims []model.DimensionOptions) ([]string, [][]string) {
	var rows [][]string
	for _, d := range dims {
		if len(d.Options) == 0 {
			rows = append(rows, []string{string(d.Dimension), "", "(no options)", ""})
			continue
		}
		for _, o := range d.Options {
			mark := ""
			if o.ID == d.Selected {
				mark = "selected"
				if d.Locked {
					mark = "selected (locked)"
				}
			}
			rows = append(rows, []string{string(d.Dimension), strconv.FormatInt(o.ID, 10), o.Name, mark})
		}
	}
	return []string{"DIMENSION", "ID", "NAME", "STATE"}, rows
}

func setupRows(p *model.SetupPage) ([]string, [][]string) {
	var rows [][]string
	offset := max(p.Page-1, 0) * p.PageSize
	for i, s := range p.Items {
		mark := ""
		if p.Selected != nil && p.Selected.ID == s.ID {
			mark = "*"
		}
		rows = append(rows, []string{
			mark,
			strconv.Itoa(offset + i + 1),
			strconv.FormatInt(s.ID, 10),
			util.FormatLapTime(s.LapTimeMS),
			s.Field("title", "name"),
			s.Field("car", "car_name"),
			s.Field("track", "track_name"),
		})
	}
	return []string{"", "#", "ID", "LAP TIME", "TITLE", "CAR", "TRACK"}, rows
}

// ─── Table ────────────────────────────────────────────────────────────────────

func renderTable(w io.Writer, result *model.Result) error {
	headers, rows, ok := tabulate(result)
	if !ok {
		// Fallback: JSON
		return renderJSON(w, result)
	}
	if p, isPage := result.Data.(*model.SetupPage); isPage {
		renderPageHeader(w, p)
		if !p.Searched {
			return nil
		}
		if p.Total == 0 {
			fmt.Fprintln(w, "No setups found.")
			return nil
		}
	}

	tw := tablewriter.NewWriter(w)
	tw.SetHeader(headers)
	tw.SetBorder(true)
	tw.SetRowLine(false)
	tw.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	tw.SetAlignment(tablewriter.ALIGN_LEFT)
	tw.SetAutoWrapText(false)
	tw.SetColWidth(40)
	for _, r := range rows {
		tw.Append(r)
	}
	tw.Render()

	if p, isPage := result.Data.(*model.SetupPage); isPage {
		fmt.Fprintf(w, "Page %d of %d (%d setups)\n", p.Page, p.TotalPages, p.Total)
		if p.Selected != nil {
			renderDetail(w, p.Selected)
		}
	}
	return nil
}

func renderPageHeader(w io.Writer, p *model.SetupPage) {
	fmt.Fprintf(w, "%s\n", p.Location)
	for _, f := range p.Filters {
		if f.Selected == 0 {
			continue
		}
		name := strconv.FormatInt(f.Selected, 10)
		for _, o := range f.Options {
			if o.ID == f.Selected {
				name = o.Name
			}
		}
		fmt.Fprintf(w, "  %-10s %s\n", f.Dimension, name)
	}
	fmt.Fprintln(w)
}

// renderDetail prints the selected setup's remaining fields in key order.
func renderDetail(w io.Writer, s *model.Setup) {
	keys := make([]string, 0, len(s.Raw))
	for k := range s.Raw {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	fmt.Fprintf(w, "\nSelected setup %d (%s)\n", s.ID, util.FormatLapTime(s.LapTimeMS))
	for _, k := range keys {
		v := s.Raw[k]
		switch v.(type) {
		case map[string]any, []any:
			b, _ := json.Marshal(v)
			v = string(b)
		}
		fmt.Fprintf(w, "  %-16s %v\n", k, v)
	}
}

// ─── CSV / TSV ────────────────────────────────────────────────────────────────

func renderDelimited(w io.Writer, result *model.Result, sep rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = sep

	headers, rows, ok := tabulate(result)
	if ok {
		_ = cw.Write(lowerAll(headers))
		for _, r := range rows {
			_ = cw.Write(r)
		}
	} else {
		// Fallback: serialize as JSON on a single line
		b, _ := json.Marshal(result.Data)
		_ = cw.Write([]string{string(b)})
	}

	cw.Flush()
	return cw.Error()
}

// ─── Markdown ─────────────────────────────────────────────────────────────────

func renderMarkdown(w io.Writer, result *model.Result) error {
	headers, rows, ok := tabulate(result)
	if !ok {
		return renderJSON(w, result)
	}
	fmt.Fprintf(w, "| %s |\n", strings.Join(headers, " | "))
	sep := make([]string, len(headers))
	for i := range sep {
		sep[i] = "----"
	}
	fmt.Fprintf(w, "|%s|\n", strings.Join(sep, "|"))
	for _, r := range rows {
		cells := make([]string, len(r))
		for i, c := range r {
			cells[i] = mdEscape(c)
		}
		fmt.Fprintf(w, "| %s |\n", strings.Join(cells, " | "))
	}
	return nil
}

// ─── Warnings / Stats Footer ─────────────────────────────────────────────────

// PrintFooter writes warnings and stats to w when verbose mode is on.
func PrintFooter(w io.Writer, result *model.Result, verbose bool) {
	for _, warn := range result.Warnings {
		fmt.Fprintf(w, "⚠  %s\n", warn)
	}
	if verbose {
		src := "live"
		if result.Stats.CacheHit {
			src = "cache"
		}
		fmt.Fprintf(w, "\n[%s • %d items • %dms • %s]\n",
			result.GeneratedAt.Format(time.RFC3339),
			result.Stats.Items,
			result.Stats.DurationMs,
			src,
		)
	}
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func mdEscape(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}

func lowerAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = strings.ReplaceAll(strings.ToLower(s), " ", "_")
	}
	return out
}
