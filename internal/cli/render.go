package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/taibuivan/fichas/internal/catalog"
	"github.com/taibuivan/fichas/pkg/pagination"
)

// renderer writes command results as a table or as indented JSON.
type renderer struct {
	out    io.Writer
	format string
}

func (a *app) renderer(out io.Writer) *renderer {
	return &renderer{out: out, format: a.output}
}

func (r *renderer) json(value any) error {
	encoder := json.NewEncoder(r.out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

func (r *renderer) table(title string, header table.Row, rows []table.Row) {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)
	if title != "" {
		t.SetTitle(title)
	}
	t.AppendHeader(header)
	t.AppendRows(rows)
	t.Render()
}

func (r *renderer) facets(facets []catalog.FacetOptions, reset []catalog.Field) error {
	if r.format == OutputJSON {
		return r.json(map[string]any{"facets": facets, "reset": nonNil(reset)})
	}

	rows := make([]table.Row, 0, len(facets))
	for _, facet := range facets {
		rows = append(rows, table.Row{facet.Label, facet.Selected, len(facet.Options), strings.Join(facet.Options, ", ")})
	}
	r.table("Facets", table.Row{"Facet", "Selected", "#", "Options"}, rows)
	r.resets(reset)
	return nil
}

func (r *renderer) records(schema catalog.Schema, records []*catalog.Record, window pagination.Window, reset []catalog.Field) error {
	if r.format == OutputJSON {
		return r.json(map[string]any{"records": records, "window": window, "reset": nonNil(reset)})
	}

	header := table.Row{"ID", "Name"}
	for _, facet := range schema.Facets {
		if !facet.IsVirtual() {
			header = append(header, facet.Label)
		}
	}
	header = append(header, "Image")

	rows := make([]table.Row, 0, len(records))
	for _, record := range records {
		row := table.Row{record.ID, record.Name}
		for _, facet := range schema.Facets {
			if !facet.IsVirtual() {
				row = append(row, record.Facets[facet.Field])
			}
		}
		row = append(row, yesNo(record.HasImage))
		rows = append(rows, row)
	}

	r.table("", header, rows)
	_, _ = fmt.Fprintf(r.out, "%s (page %d of %d)\n", rangeLabel(window), window.Page, window.TotalPages)
	r.resets(reset)
	return nil
}

func (r *renderer) record(schema catalog.Schema, record *catalog.Record) error {
	if r.format == OutputJSON {
		return r.json(record)
	}

	rows := []table.Row{{"ID", record.ID}, {"Name", record.Name}}
	for _, facet := range schema.Facets {
		if !facet.IsVirtual() {
			rows = append(rows, table.Row{facet.Label, record.Facets[facet.Field]})
		}
	}
	rows = append(rows, table.Row{"Image", yesNo(record.HasImage)})

	r.table(record.Name, table.Row{"Field", "Value"}, rows)
	return nil
}

func (r *renderer) images(ids []string) error {
	if r.format == OutputJSON {
		return r.json(ids)
	}

	rows := make([]table.Row, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, table.Row{id})
	}
	r.table("Images", table.Row{"ID"}, rows)
	_, _ = fmt.Fprintf(r.out, "(%d images)\n", len(ids))
	return nil
}

func (r *renderer) resets(reset []catalog.Field) {
	if len(reset) == 0 {
		return
	}
	names := make([]string, len(reset))
	for i, field := range reset {
		names[i] = string(field)
	}
	_, _ = fmt.Fprintf(r.out, "Cleared filters no longer available: %s\n", strings.Join(names, ", "))
}

// rangeLabel renders the page range line shown under a record list.
func rangeLabel(window pagination.Window) string {
	return fmt.Sprintf("Exibindo %d a %d de %d registros", window.FirstItem, window.LastItem, window.TotalItems)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func nonNil(fields []catalog.Field) []catalog.Field {
	if fields == nil {
		return []catalog.Field{}
	}
	return fields
}
