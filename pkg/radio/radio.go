// Package radio defines the model-independent view of a programmable radio:
// a capability set of download/upload/codec operations implemented once per
// model, plus the session state a transfer runs in. Model packages register
// themselves at init time; callers pick a model by name or by probing a
// memory image.
package radio

import (
	"fmt"
	"io"

	"github.com/dougsko/yaesutool/pkg/image"
)

// TableID identifies one of the configuration tables.
type TableID int

const (
	TableNone TableID = iota
	TableChannel
	TableHome
	TableVFO
	TablePMS
	TableBank
)

// String returns the table's header keyword.
func (t TableID) String() string {
	switch t {
	case TableChannel:
		return "Channel"
	case TableHome:
		return "Home"
	case TableVFO:
		return "VFO"
	case TablePMS:
		return "PMS"
	case TableBank:
		return "Bank"
	}
	return "none"
}

// Session carries the state of one programming workflow: the serial port,
// the single memory image, operator I/O streams and the progress callback.
// It replaces shared globals so that every operation gets its dependencies
// explicitly.
type Session struct {
	Port     io.ReadWriter
	Image    *image.Image
	In       io.Reader // operator input, normally stdin
	Out      io.Writer // operator instructions, normally stderr
	Progress func()
}

// Tick reports one unit of transfer progress.
func (s *Session) Tick() {
	if s.Progress != nil {
		s.Progress()
	}
}

// Device is the capability set one radio model implements. Each model is a
// sibling implementation; nothing is shared through embedding.
type Device interface {
	// Name returns the radio identity string, e.g. "Yaesu VX-2".
	Name() string

	// Baud returns the clone-mode serial speed.
	Baud() int

	// MemSize returns the payload size of the memory image.
	MemSize() int

	// Download reads the full memory image from the radio into s.Image,
	// retrying until the checksum verifies or the operator interrupts.
	Download(s *Session) error

	// Upload writes s.Image to the radio. When cont is set the radio is
	// already in clone mode and the shorter procedure is printed.
	Upload(s *Session, cont bool) error

	// IsCompatible reports whether the image carries this model's identity
	// tag.
	IsCompatible(im *image.Image) bool

	// LoadImage reads a binary image file in this model's on-disk format.
	LoadImage(path string) (*image.Image, error)

	// SaveImage writes a binary image file in this model's on-disk format.
	SaveImage(path string, im *image.Image) error

	// PrintVersion writes generic device information.
	PrintVersion(w io.Writer)

	// PrintConfig writes the full text configuration. Verbose mode adds
	// commented column documentation.
	PrintConfig(w io.Writer, im *image.Image, verbose bool)

	// ParseParameter applies one "Name: Value" scalar line. Unknown names
	// are an error and abort the import.
	ParseParameter(im *image.Image, name, value string) error

	// ParseHeader recognizes a table header line, returning TableNone for
	// anything else.
	ParseHeader(line string) TableID

	// ParseRow applies one table data row. firstRow is true until the first
	// row of the table succeeds; on that row the table's image region is
	// erased before the row is stored.
	ParseRow(im *image.Image, table TableID, firstRow bool, line string) error
}

var registry []Device

// Register adds a model implementation. Called from model package init.
func Register(d Device) {
	registry = append(registry, d)
}

// List returns all registered models.
func List() []Device {
	return registry
}

// Find returns the model with the given identity string, matched
// case-insensitively on a prefix, or nil.
func Find(name string) Device {
	for _, d := range registry {
		if equalFold(d.Name(), name) || equalFold(shortName(d.Name()), name) {
			return d
		}
	}
	return nil
}

// Detect probes all registered models against an image and returns the one
// whose identity tag matches.
func Detect(im *image.Image) (Device, error) {
	for _, d := range registry {
		if d.IsCompatible(im) {
			return d, nil
		}
	}
	return nil, fmt.Errorf("image is not compatible with any supported radio")
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

// shortName strips the vendor prefix: "Yaesu VX-2" -> "VX-2".
func shortName(name string) string {
	for i := 0; i < len(name); i++ {
		if name[i] == ' ' {
			return name[i+1:]
		}
	}
	return name
}
