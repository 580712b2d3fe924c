// Package ft60 implements the Yaesu FT-60R.
//
// Memory layout: 0x6fc8 bytes plus a checksum byte. 1000 memory channels of
// 16 bytes, names in a separate table of 8-byte records, 10 banks stored as
// channel bitmaps, scan flags packed two bits per channel, 5 home and 5 VFO
// records and 50 PMS pairs.
package ft60

import (
	"fmt"
	"io"

	"github.com/dougsko/yaesutool/pkg/clone"
	"github.com/dougsko/yaesutool/pkg/image"
	"github.com/dougsko/yaesutool/pkg/radio"
	"github.com/dougsko/yaesutool/pkg/verbose"
)

const (
	nchan = 1000
	nbank = 10
	npms  = 50
	memsz = 0x6fc8

	offsetVFO      = 0x0048
	offsetHome     = 0x01c8
	offsetChannels = 0x0248
	offsetPMS      = 0x40c8
	offsetNames    = 0x4708
	offsetBanks    = 0x69c8
	offsetScan     = 0x6ec8

	identityTag = "AH017$"
)

type device struct{}

func init() {
	radio.Register(&device{})
}

func (d *device) Name() string { return "Yaesu FT-60R" }
func (d *device) Baud() int    { return 9600 }
func (d *device) MemSize() int { return memsz }

func (d *device) IsCompatible(im *image.Image) bool {
	return im.HasPrefix(identityTag)
}

// LoadImage reads an FT-60 image file: the bare payload without a checksum
// byte.
func (d *device) LoadImage(path string) (*image.Image, error) {
	return image.Load(path, memsz, false)
}

func (d *device) SaveImage(path string, im *image.Image) error {
	return im.Save(path)
}

func (d *device) PrintVersion(w io.Writer) {
	// Nothing to print.
}

func (d *device) link(s *radio.Session) *clone.Link {
	return &clone.Link{
		Port:         s.Port,
		ChunkSize:    clone.MaxChunk,
		AckThreshold: clone.MaxChunk,
		Progress:     s.Progress,
	}
}

// Download reads the full memory image: an 8-byte leading block, 64-byte
// blocks for the rest of the image and a final 1-byte checksum block. Every
// block is acknowledged. On checksum mismatch the transfer restarts after
// the operator re-arms the radio.
func (d *device) Download(s *radio.Session) error {
	l := d.link(s)
	mem := s.Image.Bytes()

	fmt.Fprintf(s.Out, "please follow the procedure.\n")
	fmt.Fprintf(s.Out, "\n")
	fmt.Fprintf(s.Out, "1. Power Off the FT60.\n")
	fmt.Fprintf(s.Out, "2. Hold down the MONI switch and Power On the FT60.\n")
	fmt.Fprintf(s.Out, "3. Rotate the right DIAL knob to select F8 CLONE.\n")
	fmt.Fprintf(s.Out, "4. Briefly press the [F/W] key. The display should go blank then show CLONE.\n")
	fmt.Fprintf(s.Out, "5. Press and hold the PTT switch until the radio starts to send.\n")
	fmt.Fprintf(s.Out, "-- Or enter ^C to abort the memory read.\n")

	for {
		fmt.Fprintf(s.Out, "\nWaiting for data... ")

		// Wait for the first 8 bytes.
		for {
			ok, err := l.PollBlock(mem[0:8])
			if err != nil {
				return err
			}
			if ok {
				break
			}
		}

		// The rest of the data.
		for addr := 8; addr < memsz; addr += 64 {
			if err := l.ReadBlock(addr, mem[addr:addr+64]); err != nil {
				return err
			}
		}

		// The checksum.
		if err := l.ReadBlock(memsz, mem[memsz:memsz+1]); err != nil {
			return err
		}

		if s.Image.VerifyChecksum() {
			verbose.Printf("checksum = %02x (OK)", s.Image.StoredChecksum())
			return nil
		}

		verbose.Printf("bad checksum = %02x, expected %02x",
			s.Image.Checksum(), s.Image.StoredChecksum())
		fmt.Fprintf(s.Out, "[BAD CHECKSUM]\n")
		fmt.Fprintf(s.Out, "Please, repeat the procedure:\n")
		fmt.Fprintf(s.Out, "Press and hold the PTT switch until the radio starts to send.\n")
		fmt.Fprintf(s.Out, "Or enter ^C to abort the memory read.\n")
	}
}

// Upload writes the image to the radio in the same block sequence the
// download uses. A failed block leaves the radio showing ERROR; the
// operator clears it with the [F/W] key and the upload restarts.
func (d *device) Upload(s *radio.Session, cont bool) error {
	l := d.link(s)
	mem := s.Image.Bytes()

	fmt.Fprintf(s.Out, "please follow the procedure.\n")
	fmt.Fprintf(s.Out, "\n")
	if cont {
		fmt.Fprintf(s.Out, "1. Press the MONI switch until the radio starts to receive.\n")
		fmt.Fprintf(s.Out, "2. Press <Enter> to continue.\n")
	} else {
		fmt.Fprintf(s.Out, "1. Power Off the FT60.\n")
		fmt.Fprintf(s.Out, "2. Hold down the MONI switch and Power On the FT60.\n")
		fmt.Fprintf(s.Out, "3. Rotate the right DIAL knob to select F8 CLONE.\n")
		fmt.Fprintf(s.Out, "4. Briefly press the [F/W] key. The display should go blank then show CLONE.\n")
		fmt.Fprintf(s.Out, "5. Press the MONI switch until the radio starts to receive.\n")
		fmt.Fprintf(s.Out, "6. Press <Enter> to continue.\n")
	}
	fmt.Fprintf(s.Out, "-- Or enter ^C to abort the memory write.\n")

	for {
		l.Drain()
		clone.WaitEnter(s.In, s.Out)
		fmt.Fprintf(s.Out, "Sending data... ")

		err := l.WriteBlock(0, mem[0:8])
		for addr := 8; err == nil && addr < memsz; addr += 64 {
			err = l.WriteBlock(addr, mem[addr:addr+64])
		}
		if err == nil {
			s.Image.UpdateChecksum()
			err = l.WriteBlock(memsz, mem[memsz:memsz+1])
		}
		if err == nil {
			return nil
		}

		fmt.Fprintf(s.Out, "\n! %v\n", err)
		fmt.Fprintf(s.Out, "Please, repeat the procedure:\n")
		fmt.Fprintf(s.Out, "1. Briefly press the [F/W] key to clear the ERROR status.\n")
		fmt.Fprintf(s.Out, "2. Press the MONI switch until the radio starts to receive.\n")
		fmt.Fprintf(s.Out, "3. Press <Enter> to continue.\n")
		fmt.Fprintf(s.Out, "-- Or enter ^C to abort the memory write.\n")
	}
}
