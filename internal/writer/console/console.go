// internal/writer/console/console.go
package console

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/tamzrod/bms-poller/internal/device"
	"github.com/tamzrod/bms-poller/internal/status"
	"github.com/tamzrod/bms-poller/internal/writer"
)

// Printer renders each record as a table.
type Printer struct {
	out io.Writer
}

// New prints to out, or stdout when out is nil.
func New(out io.Writer) *Printer {
	if out == nil {
		out = os.Stdout
	}
	return &Printer{out: out}
}

func (p *Printer) Name() string { return "console" }

func (p *Printer) Close() error { return nil }

// Write prints the heading line, then the value table.
func (p *Printer) Write(rec writer.Record) error {
	if _, err := fmt.Fprintln(p.out, Heading(rec)); err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(p.out)
	t.AppendHeader(table.Row{"Name", "Value", "Unit"})

	for _, r := range Rows(rec.Values) {
		t.AppendRow(table.Row{r.Name, r.Value, r.Unit})
	}
	if rec.Err != nil {
		t.AppendRow(table.Row{"error", rec.Err.Error(), ""})
	}

	t.Render()
	return nil
}

// Heading is the line printed above a record's table.
func Heading(rec writer.Record) string {
	return fmt.Sprintf("%s MEASUREMENTS  %s  [%s]",
		rec.Device, rec.At.Format("02/01/2006-15:04:05"), status.HealthName(rec.Health.Health))
}

// Row is one printed line.
type Row struct {
	Name  string
	Value string
	Unit  string
}

// Rows groups flattened values for display: scalars one per row, arrays one
// row per leading index with the remaining elements space-joined.
func Rows(values []device.Value) []Row {
	var out []Row
	for _, v := range values {
		if len(v.Index) == 0 {
			out = append(out, Row{Name: v.Name, Value: format(v.Value), Unit: v.Unit})
			continue
		}

		name := v.Field
		if len(v.Index) > 1 {
			name = fmt.Sprintf("%s[%d]", v.Field, v.Index[0])
		}

		if n := len(out); n > 0 && out[n-1].Name == name {
			out[n-1].Value += " " + format(v.Value)
			continue
		}
		out = append(out, Row{Name: name, Value: format(v.Value), Unit: v.Unit})
	}
	return out
}

func format(v float64) string {
	s := strconv.FormatFloat(v, 'f', 3, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
