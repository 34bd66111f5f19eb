package outfmt

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/ifp/vicidial-cli/internal/filter"
)

// Formatter handles output formatting for commands.
type Formatter struct {
	ctx       context.Context
	out       io.Writer
	tabWriter *tabwriter.Writer
}

// NewFormatter creates a new Formatter
func NewFormatter(ctx context.Context, out io.Writer) *Formatter {
	return &Formatter{
		ctx:       ctx,
		out:       out,
		tabWriter: tabwriter.NewWriter(out, 0, 4, 2, ' ', 0),
	}
}

// JSON reports whether the formatter writes JSON.
func (f *Formatter) JSON() bool {
	return IsJSON(f.ctx)
}

// Output writes data as JSON, filtered by the context query. It is a no-op
// in text mode; callers print text themselves.
func (f *Formatter) Output(data any) error {
	if !IsJSON(f.ctx) {
		return nil
	}
	query := GetQuery(f.ctx)
	if query == "" {
		return WriteJSONMaybeCompact(f.out, data, IsCompact(f.ctx))
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	result, err := filter.ApplyFromJSON(raw, query)
	if err != nil {
		return err
	}
	return WriteJSONMaybeCompact(f.out, result, IsCompact(f.ctx))
}

// StartTable writes table headers. Returns true if in text mode.
func (f *Formatter) StartTable(headers []string) bool {
	if IsJSON(f.ctx) {
		return false
	}
	f.Row(headers...)
	return true
}

// Row writes a single row to the table.
func (f *Formatter) Row(columns ...string) {
	for i, col := range columns {
		if i > 0 {
			_, _ = fmt.Fprint(f.tabWriter, "\t")
		}
		_, _ = fmt.Fprint(f.tabWriter, col)
	}
	_, _ = fmt.Fprintln(f.tabWriter)
}

// EndTable flushes the table output.
func (f *Formatter) EndTable() error {
	return f.tabWriter.Flush()
}
