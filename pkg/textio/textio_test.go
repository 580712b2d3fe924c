package textio

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/dougsko/yaesutool/pkg/image"
	"github.com/dougsko/yaesutool/pkg/radio"
)

// scriptDevice records the parse calls the import engine makes.
type scriptDevice struct {
	params   []string
	rows     []string
	firstRow []bool
	tables   []radio.TableID
	badRows  map[string]bool
	badParam bool
}

func (d *scriptDevice) Name() string                                   { return "Test Radio" }
func (d *scriptDevice) Baud() int                                      { return 9600 }
func (d *scriptDevice) MemSize() int                                   { return 16 }
func (d *scriptDevice) Download(s *radio.Session) error                { return nil }
func (d *scriptDevice) Upload(s *radio.Session, cont bool) error       { return nil }
func (d *scriptDevice) IsCompatible(im *image.Image) bool              { return true }
func (d *scriptDevice) LoadImage(path string) (*image.Image, error)    { return image.New(16), nil }
func (d *scriptDevice) SaveImage(path string, im *image.Image) error   { return nil }
func (d *scriptDevice) PrintVersion(w io.Writer)                       {}
func (d *scriptDevice) PrintConfig(w io.Writer, im *image.Image, verbose bool) {
	fmt.Fprintf(w, "Radio: Test Radio\n")
}

func (d *scriptDevice) ParseParameter(im *image.Image, name, value string) error {
	if d.badParam {
		return fmt.Errorf("unknown parameter: %s", name)
	}
	d.params = append(d.params, name+"="+value)
	return nil
}

func (d *scriptDevice) ParseHeader(line string) radio.TableID {
	if strings.HasPrefix(line, "Channel") {
		return radio.TableChannel
	}
	if strings.HasPrefix(line, "Bank") {
		return radio.TableBank
	}
	return radio.TableNone
}

func (d *scriptDevice) ParseRow(im *image.Image, table radio.TableID, firstRow bool, line string) error {
	if d.badRows[line] {
		return fmt.Errorf("bad row")
	}
	d.rows = append(d.rows, line)
	d.firstRow = append(d.firstRow, firstRow)
	d.tables = append(d.tables, table)
	return nil
}

func TestImport(t *testing.T) {
	t.Run("Tables And Parameters", func(t *testing.T) {
		conf := strings.Join([]string{
			"# a comment",
			"Radio: Test Radio",
			"",
			"Channel Name Receive",
			"    1   A  146.52",
			"    2   B  147.00",
			"",
			"Bank    Channels",
			"   1    1-2",
			"",
		}, "\n")

		d := &scriptDevice{}
		rowErrs, err := Import(strings.NewReader(conf), d, image.New(16))
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if len(rowErrs) != 0 {
			t.Fatalf("Expected no row errors, got %v", rowErrs)
		}
		if len(d.params) != 1 || d.params[0] != "Radio=Test Radio" {
			t.Errorf("Expected one Radio parameter, got %v", d.params)
		}
		if len(d.rows) != 3 {
			t.Fatalf("Expected 3 data rows, got %d", len(d.rows))
		}
		wantFirst := []bool{true, false, true}
		wantTables := []radio.TableID{radio.TableChannel, radio.TableChannel, radio.TableBank}
		for i := range wantFirst {
			if d.firstRow[i] != wantFirst[i] {
				t.Errorf("Row %d: expected firstRow %v, got %v", i, wantFirst[i], d.firstRow[i])
			}
			if d.tables[i] != wantTables[i] {
				t.Errorf("Row %d: expected table %v, got %v", i, wantTables[i], d.tables[i])
			}
		}
	})

	t.Run("Equals Separator", func(t *testing.T) {
		d := &scriptDevice{}
		_, err := Import(strings.NewReader("Radio = Test Radio\n"), d, image.New(16))
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if len(d.params) != 1 || d.params[0] != "Radio=Test Radio" {
			t.Errorf("Expected 'Radio=Test Radio', got %v", d.params)
		}
	})

	t.Run("Row Errors Do Not Stop The Import", func(t *testing.T) {
		conf := strings.Join([]string{
			"Channel Name Receive",
			"bad row one",
			"    1   A  146.52",
		}, "\n")

		d := &scriptDevice{badRows: map[string]bool{"bad row one": true}}
		rowErrs, err := Import(strings.NewReader(conf), d, image.New(16))
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if len(rowErrs) != 1 {
			t.Fatalf("Expected 1 row error, got %d", len(rowErrs))
		}
		if rowErrs[0].Line != 2 {
			t.Errorf("Expected error on line 2, got %d", rowErrs[0].Line)
		}
		// The failed row does not count as the first row.
		if len(d.firstRow) != 1 || d.firstRow[0] != true {
			t.Errorf("Expected the next good row to still be the first row, got %v", d.firstRow)
		}
	})

	t.Run("Bad Parameter Aborts", func(t *testing.T) {
		d := &scriptDevice{badParam: true}
		_, err := Import(strings.NewReader("Radio: Wrong\n"), d, image.New(16))
		if err == nil {
			t.Fatal("Expected a scalar parameter error to abort the import")
		}
	})

	t.Run("Row Outside Table", func(t *testing.T) {
		d := &scriptDevice{}
		rowErrs, err := Import(strings.NewReader("    1   A  146.52\n"), d, image.New(16))
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if len(rowErrs) != 1 {
			t.Fatalf("Expected 1 row error, got %d", len(rowErrs))
		}
	})

	t.Run("Blank Line Ends Table", func(t *testing.T) {
		conf := strings.Join([]string{
			"Channel Name Receive",
			"    1   A  146.52",
			"",
			"    2   B  147.00",
		}, "\n")

		d := &scriptDevice{}
		rowErrs, err := Import(strings.NewReader(conf), d, image.New(16))
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if len(rowErrs) != 1 {
			t.Errorf("Expected the row after the blank line to be rejected, got %d errors", len(rowErrs))
		}
		if len(d.rows) != 1 {
			t.Errorf("Expected 1 accepted row, got %d", len(d.rows))
		}
	})

	t.Run("Windows Line Endings", func(t *testing.T) {
		d := &scriptDevice{}
		conf := "Channel Name Receive\r\n    1   A  146.52\r\n"
		rowErrs, err := Import(strings.NewReader(conf), d, image.New(16))
		if err != nil || len(rowErrs) != 0 {
			t.Fatalf("Expected a clean import, got err=%v rowErrs=%v", err, rowErrs)
		}
		if len(d.rows) != 1 || d.rows[0] != "1   A  146.52" {
			t.Errorf("Expected the row without the carriage return, got %v", d.rows)
		}
	})
}

func TestExport(t *testing.T) {
	d := &scriptDevice{}
	var b strings.Builder
	Export(&b, d, image.New(16), false)
	if b.String() != "Radio: Test Radio\n" {
		t.Errorf("Expected the device configuration, got %q", b.String())
	}
}
