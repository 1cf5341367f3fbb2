// Package output renders command results as aligned text tables or JSON.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/tidwall/pretty"
)

// Formatter writes command output in text or JSON form.
type Formatter struct {
	Writer   io.Writer
	JSONMode bool
}

// New creates a Formatter writing to w.
func New(w io.Writer, jsonMode bool) *Formatter {
	return &Formatter{
		Writer:   w,
		JSONMode: jsonMode,
	}
}

// Table writes rows under headers. In JSON mode each row becomes an object
// keyed by header; missing cells are empty strings.
func (f *Formatter) Table(headers []string, rows [][]string) error {
	if f.JSONMode {
		return f.tableAsJSON(headers, rows)
	}
	return f.tableAsText(headers, rows)
}

func (f *Formatter) tableAsText(headers []string, rows [][]string) error {
	tw := tabwriter.NewWriter(f.Writer, 0, 0, 2, ' ', 0)

	if _, err := fmt.Fprintln(tw, strings.Join(headers, "\t")); err != nil {
		return err
	}

	rule := make([]string, len(headers))
	for i, h := range headers {
		rule[i] = strings.Repeat("-", len(h))
	}
	if _, err := fmt.Fprintln(tw, strings.Join(rule, "\t")); err != nil {
		return err
	}

	for _, row := range rows {
		if _, err := fmt.Fprintln(tw, strings.Join(row, "\t")); err != nil {
			return err
		}
	}

	return tw.Flush()
}

func (f *Formatter) tableAsJSON(headers []string, rows [][]string) error {
	objects := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		obj := make(map[string]string, len(headers))
		for i, header := range headers {
			if i < len(row) {
				obj[header] = row[i]
			} else {
				obj[header] = ""
			}
		}
		objects = append(objects, obj)
	}
	return f.Print(objects)
}

// Print writes data as indented JSON, or with %v in text mode.
func (f *Formatter) Print(data any) error {
	if f.JSONMode {
		encoder := json.NewEncoder(f.Writer)
		encoder.SetIndent("", "  ")
		return encoder.Encode(data)
	}

	_, err := fmt.Fprintf(f.Writer, "%v\n", data)
	return err
}

// Raw writes a JSON document exactly as received, re-indented. An empty
// body is written as {}.
func (f *Formatter) Raw(body []byte) error {
	if len(body) == 0 {
		body = []byte("{}")
	}
	_, err := f.Writer.Write(pretty.Pretty(body))
	return err
}
