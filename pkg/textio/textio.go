// Package textio implements the line-oriented text configuration format: a
// sequence of tables introduced by header keywords, whitespace-delimited
// data rows, '#' comments and "Name: Value" scalar parameters outside
// tables. The model-specific column handling lives in the radio packages;
// this package owns the scanning and the row-level error policy.
package textio

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dougsko/yaesutool/pkg/image"
	"github.com/dougsko/yaesutool/pkg/radio"
)

// RowError describes one rejected data row. Row errors do not stop the
// import; they are collected and reported together.
type RowError struct {
	Line int
	Text string
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: %v: %s", e.Line, e.Err, e.Text)
}

// Import reads a text configuration and applies it to the image. Malformed
// data rows are skipped and returned as row errors; a bad scalar parameter
// aborts the import. On the first accepted row of each table the table's
// image region is erased, so importing a full export is idempotent.
func Import(r io.Reader, d radio.Device, im *image.Image) ([]*RowError, error) {
	var rowErrs []*RowError
	table := radio.TableNone
	firstRow := false
	lineno := 0

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lineno++
		line := strings.TrimRight(scanner.Text(), " \t\r")
		trimmed := strings.TrimSpace(line)

		if trimmed == "" {
			// A blank line ends the current table.
			table = radio.TableNone
			continue
		}
		if trimmed[0] == '#' {
			continue
		}

		// Scalar parameters live outside tables.
		if name, value, ok := splitScalar(trimmed); ok {
			if err := d.ParseParameter(im, name, value); err != nil {
				return rowErrs, err
			}
			table = radio.TableNone
			continue
		}

		if t := d.ParseHeader(trimmed); t != radio.TableNone {
			table = t
			firstRow = true
			continue
		}

		if table == radio.TableNone {
			rowErrs = append(rowErrs, &RowError{Line: lineno, Text: trimmed,
				Err: fmt.Errorf("data row outside of any table")})
			continue
		}
		if err := d.ParseRow(im, table, firstRow, trimmed); err != nil {
			rowErrs = append(rowErrs, &RowError{Line: lineno, Text: trimmed, Err: err})
			continue
		}
		firstRow = false
	}
	if err := scanner.Err(); err != nil {
		return rowErrs, fmt.Errorf("read config: %w", err)
	}
	return rowErrs, nil
}

// ImportFile imports a text configuration file.
func ImportFile(path string, d radio.Device, im *image.Image) ([]*RowError, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	return Import(f, d, im)
}

// Export writes the full text configuration of an image.
func Export(w io.Writer, d radio.Device, im *image.Image, verbose bool) {
	d.PrintConfig(w, im, verbose)
}

// ExportFile writes the text configuration to a file.
func ExportFile(path string, d radio.Device, im *image.Image, verbose bool) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create config: %w", err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	Export(w, d, im, verbose)
	if err := w.Flush(); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// splitScalar splits a "Name: Value" or "Name = Value" line. Table headers
// and data rows contain neither separator.
func splitScalar(line string) (name, value string, ok bool) {
	i := strings.IndexAny(line, ":=")
	if i < 0 {
		return "", "", false
	}
	name = strings.TrimSpace(line[:i])
	value = strings.TrimSpace(line[i+1:])
	if name == "" {
		return "", "", false
	}
	return name, value, true
}
