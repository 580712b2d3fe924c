package radio

import (
	"io"
	"testing"

	"github.com/dougsko/yaesutool/pkg/image"
)

type stubDevice struct {
	name string
	tag  string
}

func (d *stubDevice) Name() string                                             { return d.name }
func (d *stubDevice) Baud() int                                                { return 9600 }
func (d *stubDevice) MemSize() int                                             { return 16 }
func (d *stubDevice) Download(s *Session) error                                { return nil }
func (d *stubDevice) Upload(s *Session, cont bool) error                       { return nil }
func (d *stubDevice) IsCompatible(im *image.Image) bool                        { return im.HasPrefix(d.tag) }
func (d *stubDevice) LoadImage(path string) (*image.Image, error)              { return image.New(16), nil }
func (d *stubDevice) SaveImage(path string, im *image.Image) error             { return nil }
func (d *stubDevice) PrintVersion(w io.Writer)                                 {}
func (d *stubDevice) PrintConfig(w io.Writer, im *image.Image, verbose bool)   {}
func (d *stubDevice) ParseParameter(im *image.Image, name, value string) error { return nil }
func (d *stubDevice) ParseHeader(line string) TableID                          { return TableNone }
func (d *stubDevice) ParseRow(im *image.Image, table TableID, firstRow bool, line string) error {
	return nil
}

func TestRegistry(t *testing.T) {
	saved := registry
	registry = nil
	defer func() { registry = saved }()

	vx := &stubDevice{name: "Yaesu VX-2", tag: "AH015$"}
	ft := &stubDevice{name: "Yaesu FT-60R", tag: "AH017$"}
	Register(vx)
	Register(ft)

	t.Run("Find By Full Name", func(t *testing.T) {
		if got := Find("yaesu vx-2"); got != Device(vx) {
			t.Errorf("Expected the VX-2 device, got %v", got)
		}
	})

	t.Run("Find By Short Name", func(t *testing.T) {
		if got := Find("VX-2"); got != Device(vx) {
			t.Errorf("Expected the VX-2 device, got %v", got)
		}
		if got := Find("ft-60r"); got != Device(ft) {
			t.Errorf("Expected the FT-60R device, got %v", got)
		}
	})

	t.Run("Find Unknown", func(t *testing.T) {
		if got := Find("FT-817"); got != nil {
			t.Errorf("Expected nil for an unknown model, got %v", got)
		}
	})

	t.Run("Detect By Identity Tag", func(t *testing.T) {
		im := image.New(16)
		copy(im.Payload(), "AH017$")
		d, err := Detect(im)
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if d != Device(ft) {
			t.Errorf("Expected the FT-60R device, got %v", d)
		}
	})

	t.Run("Detect Incompatible", func(t *testing.T) {
		im := image.New(16)
		copy(im.Payload(), "XXXXXX")
		if _, err := Detect(im); err == nil {
			t.Error("Expected error for an unrecognized image")
		}
	})
}

func TestTableIDString(t *testing.T) {
	if TableChannel.String() != "Channel" || TableBank.String() != "Bank" {
		t.Error("Expected table header keywords")
	}
	if TableNone.String() != "none" {
		t.Errorf("Expected 'none', got %q", TableNone.String())
	}
}
