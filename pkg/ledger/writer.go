// Package ledger renders finalized entries as beancount directives.
package ledger

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/eivindsb/dnbimport/pkg/models"
)

// Write renders entries to w, one directive per entry separated by blank
// lines.
func Write(w io.Writer, entries []models.Entry) error {
	for _, e := range entries {
		if err := writeEntry(w, &e); err != nil {
			return err
		}
	}
	return nil
}

// Render returns the rendered entries as a byte slice.
func Render(entries []models.Entry) []byte {
	var buf bytes.Buffer
	// bytes.Buffer never returns a write error
	_ = Write(&buf, entries)
	return buf.Bytes()
}

func writeEntry(w io.Writer, e *models.Entry) error {
	if _, err := fmt.Fprintf(w, "%s %s %q\n", e.Date.Format("2006-01-02"), e.Flag, e.Narration); err != nil {
		return err
	}

	for _, m := range e.Meta {
		if _, err := fmt.Fprintf(w, "  %s: %q\n", m.Key, m.Value); err != nil {
			return err
		}
	}

	width := 0
	for _, p := range e.Postings {
		if len(p.Account) > width {
			width = len(p.Account)
		}
	}

	for _, p := range e.Postings {
		pad := strings.Repeat(" ", width-len(p.Account)+2)
		if _, err := fmt.Fprintf(w, "  %s%s%s %s\n", p.Account, pad, p.Amount.StringFixed(2), p.Currency); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintln(w)
	return err
}
