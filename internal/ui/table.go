package ui

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// NewTable returns a table writer with the house style applied. Callers
// append rows and call Render themselves.
func NewTable(out io.Writer, header table.Row) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(header)
	t.SetStyle(table.StyleLight)
	t.Style().Format.Header = text.FormatUpper
	t.Style().Options.DrawBorder = false
	t.Style().Options.SeparateColumns = true
	return t
}
