// Package vx2 implements the Yaesu VX-2R / VX-2E.
//
// Memory layout: 32594 bytes plus a checksum byte. 1000 memory channels of
// 18 bytes, names embedded in the channel record, 20 banks holding ordered
// channel index lists, channel flags packed four bits per channel in a
// separate region, 12 home and 12 VFO records and 50 PMS pairs.
package vx2

import (
	"fmt"
	"io"
	"time"

	"github.com/dougsko/yaesutool/pkg/clone"
	"github.com/dougsko/yaesutool/pkg/image"
	"github.com/dougsko/yaesutool/pkg/radio"
	"github.com/dougsko/yaesutool/pkg/verbose"
)

const (
	nchan = 1000
	nbank = 20
	npms  = 50
	memsz = 32594

	offsetBankUse1  = 0x005a // 0xffff when banks unused
	offsetBankUse2  = 0x00da // 0xffff when banks unused
	offsetBankCount = 0x016a // 20 banks, 2 bytes per bank: 0xffff when bank unused
	offsetHome      = 0x03d2 // 12 home channels
	offsetVFO       = 0x04e2 // 12 variable frequency channels
	offsetBanks     = 0x05c2 // 20 banks, 100 channels, 2 bytes per channel
	offsetFlags     = 0x1562 // 500 bytes: four bits per channel
	offsetChannels  = 0x17c2 // 1000 memory channels
	offsetPMS       = 0x5e12 // 50 channel pairs: programmable memory scan

	identityTag = "AH015$"
)

type device struct{}

func init() {
	radio.Register(&device{})
}

func (d *device) Name() string { return "Yaesu VX-2" }
func (d *device) Baud() int    { return 19200 }
func (d *device) MemSize() int { return memsz }

func (d *device) IsCompatible(im *image.Image) bool {
	return im.HasPrefix(identityTag)
}

// LoadImage reads a VX-2 image file: payload plus checksum byte, the format
// VX2 Commander uses.
func (d *device) LoadImage(path string) (*image.Image, error) {
	return image.Load(path, memsz, true)
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
		AckThreshold: 16,
		WriteDelay:   60 * time.Millisecond,
		Progress:     s.Progress,
	}
}

// Download reads the full memory image. The radio sends a 10-byte and an
// 8-byte leading block, then the rest of the image and the checksum byte in
// 64-byte chunks without acknowledges. On checksum mismatch the operator is
// asked to re-arm the radio and the whole transfer restarts; the loop is
// unbounded and ends only with an interrupt.
func (d *device) Download(s *radio.Session) error {
	l := d.link(s)
	mem := s.Image.Bytes()

	fmt.Fprintf(s.Out, "please follow the procedure.\n")
	fmt.Fprintf(s.Out, "\n")
	fmt.Fprintf(s.Out, "1. Power Off the VX-2.\n")
	fmt.Fprintf(s.Out, "2. Hold down the F/W key and Power On the VX-2.\n")
	fmt.Fprintf(s.Out, "   CLONE will appear on the display.\n")
	fmt.Fprintf(s.Out, "3. Press the BAND key until the radio starts to send.\n")
	fmt.Fprintf(s.Out, "-- Or enter ^C to abort the memory read.\n")

	for {
		fmt.Fprintf(s.Out, "\nWaiting for data... ")

		// Wait for the first 10 bytes.
		for {
			ok, err := l.PollBlock(mem[0:10])
			if err != nil {
				return err
			}
			if ok {
				break
			}
		}

		// The next 8 bytes.
		if err := l.ReadBlock(10, mem[10:18]); err != nil {
			return err
		}

		// The rest of the data, and the checksum.
		if err := l.ReadBlock(18, mem[18:memsz+1]); err != nil {
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
		fmt.Fprintf(s.Out, "Press the BAND key until the radio starts to send.\n")
		fmt.Fprintf(s.Out, "Or enter ^C to abort the memory read.\n")
	}
}

// Upload writes the image to the radio. Every block is echoed back by the
// radio; an echo or acknowledge failure drops the radio into its error
// state, so the operator is prompted to clear it and the upload restarts
// from the first block.
func (d *device) Upload(s *radio.Session, cont bool) error {
	l := d.link(s)
	mem := s.Image.Bytes()

	fmt.Fprintf(s.Out, "please follow the procedure.\n")
	fmt.Fprintf(s.Out, "\n")
	if cont {
		fmt.Fprintf(s.Out, "1. Press the V/M key until the radio starts to receive.\n")
		fmt.Fprintf(s.Out, "   WAIT will appear on the display.\n")
		fmt.Fprintf(s.Out, "2. Press <Enter> to continue.\n")
	} else {
		fmt.Fprintf(s.Out, "1. Power Off the VX-2.\n")
		fmt.Fprintf(s.Out, "2. Hold down the F/W key and Power On the VX-2.\n")
		fmt.Fprintf(s.Out, "   CLONE will appear on the display.\n")
		fmt.Fprintf(s.Out, "3. Press the V/M key until the radio starts to receive.\n")
		fmt.Fprintf(s.Out, "4. Press <Enter> to continue.\n")
	}
	fmt.Fprintf(s.Out, "-- Or enter ^C to abort the memory write.\n")

	for {
		l.Drain()
		clone.WaitEnter(s.In, s.Out)
		fmt.Fprintf(s.Out, "Sending data... ")
		l.Drain()

		err := l.WriteBlock(0, mem[0:10])
		if err == nil {
			time.Sleep(500 * time.Millisecond)
			err = l.WriteBlock(10, mem[10:18])
		}
		if err == nil {
			s.Image.UpdateChecksum()
			time.Sleep(500 * time.Millisecond)
			err = l.WriteBlock(18, mem[18:memsz+1])
		}
		if err == nil {
			time.Sleep(200 * time.Millisecond)
			return nil
		}

		fmt.Fprintf(s.Out, "\n! %v\n", err)
		fmt.Fprintf(s.Out, "Please, repeat the procedure:\n")
		fmt.Fprintf(s.Out, "1. Press the V/M key until the radio starts to receive.\n")
		fmt.Fprintf(s.Out, "2. Press <Enter> to continue.\n")
		fmt.Fprintf(s.Out, "-- Or enter ^C to abort the memory write.\n")
	}
}
