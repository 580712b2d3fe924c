package vx2

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/dougsko/yaesutool/pkg/codes"
	"github.com/dougsko/yaesutool/pkg/image"
	"github.com/dougsko/yaesutool/pkg/radio"
)

func TestFrequencyCodec(t *testing.T) {
	t.Run("Encode", func(t *testing.T) {
		var bcd [3]byte
		hzToFreq(146520000, bcd[:])
		if bcd[0] != 0x14 || bcd[1] != 0x65 || bcd[2] != 0x20 {
			t.Errorf("Expected 14 65 20, got %02x %02x %02x", bcd[0], bcd[1], bcd[2])
		}
	})

	t.Run("Round Trip", func(t *testing.T) {
		for _, hz := range []int{146520000, 446002500, 446007500, 500000, 999999000} {
			var bcd [3]byte
			hzToFreq(hz, bcd[:])
			if got := freqToHz(bcd[:]); got != hz {
				t.Errorf("Expected %d Hz after round trip, got %d", hz, got)
			}
		}
	})

	t.Run("Zero Means Unset", func(t *testing.T) {
		var bcd [3]byte
		hzToFreq(0, bcd[:])
		if bcd[0] != 0xff || bcd[1] != 0xff || bcd[2] != 0xff {
			t.Errorf("Expected ff ff ff, got %02x %02x %02x", bcd[0], bcd[1], bcd[2])
		}
	})
}

func TestChanFlags(t *testing.T) {
	im := image.New(memsz)
	setChanFlags(im, 0, flagValid|flagSkip)
	setChanFlags(im, 1, flagUnmasked)
	if got := chanFlags(im, 0); got != flagValid|flagSkip {
		t.Errorf("Expected flags %x, got %x", flagValid|flagSkip, got)
	}
	if got := chanFlags(im, 1); got != flagUnmasked {
		t.Errorf("Expected flags %x, got %x", flagUnmasked, got)
	}
	// Rewriting one nibble must not disturb its neighbor.
	setChanFlags(im, 1, 0)
	if got := chanFlags(im, 0); got != flagValid|flagSkip {
		t.Errorf("Expected neighbor nibble untouched, got %x", got)
	}
}

func TestChannelRoundTrip(t *testing.T) {
	im := image.New(memsz)
	tone := codes.ToneIndex(885)

	setupChannel(im, 0, "KV6O", 146.52, 147.12, tTSql, tone, 0, pwrHigh, scanSkip, modFM)

	c := decodeChannel(im, offsetChannels, 0)
	if c.RxHz != 146520000 {
		t.Errorf("Expected receive 146520000 Hz, got %d", c.RxHz)
	}
	if c.TxHz != 147120000 {
		t.Errorf("Expected transmit 147120000 Hz, got %d", c.TxHz)
	}
	if c.Name != "KV6O" {
		t.Errorf("Expected name 'KV6O', got %q", c.Name)
	}
	if c.RxTone != 885 || c.TxTone != 885 {
		t.Errorf("Expected tone squelch 88.5 both ways, got %d/%d", c.RxTone, c.TxTone)
	}
	if c.Scan != scanSkip {
		t.Errorf("Expected scan skip, got %d", c.Scan)
	}
	if c.Mod != modFM {
		t.Errorf("Expected FM, got %d", c.Mod)
	}

	r := record(im, offsetChannels, 0)
	if r.duplex() != dPosOffset {
		t.Errorf("Expected positive offset encoding, got %d", r.duplex())
	}
	if got := freqToHz(r.offset()); got != 600000 {
		t.Errorf("Expected 600 kHz offset, got %d Hz", got)
	}
}

func TestChannelDecodeGatedByValidFlag(t *testing.T) {
	im := image.New(memsz)
	setupChannel(im, 5, "", 146.52, 146.52, tOff, codes.ToneDefault, 0, pwrHigh, scanNormal, modFM)
	setChanFlags(im, 5, 0)
	if c := decodeChannel(im, offsetChannels, 5); c.RxHz != 0 {
		t.Errorf("Expected invalid channel to decode empty, got %d Hz", c.RxHz)
	}
}

func TestNarrowFM(t *testing.T) {
	im := image.New(memsz)
	setupChannel(im, 0, "", 146.52, 146.52, tOff, codes.ToneDefault, 0, pwrHigh, scanNormal, modNFM)
	r := record(im, offsetChannels, 0)
	if r.isNarrow() != 1 {
		t.Error("Expected the narrow bit to be set for NFM")
	}
	if c := decodeChannel(im, offsetChannels, 0); c.Mod != modNFM {
		t.Errorf("Expected NFM after decode, got %d", c.Mod)
	}
}

func TestCrossBandTuning(t *testing.T) {
	im := image.New(memsz)
	r := record(im, offsetChannels, 0)
	r.setTuning(146.52, 446.0)
	if r.duplex() != dDuplex {
		t.Errorf("Expected cross-band encoding, got %d", r.duplex())
	}
	if got := freqToHz(r.offset()); got != 446000000 {
		t.Errorf("Expected transmit 446000000 Hz, got %d", got)
	}
}

func TestEncodeSquelch(t *testing.T) {
	parse := func(rx, tx string) (int, int, int) {
		tmode, tone, dcs, err := parseSquelchPair(rx, tx)
		if err != nil {
			t.Fatalf("Expected no error for %q/%q, got: %v", rx, tx, err)
		}
		return tmode, tone, dcs
	}

	if tmode, _, _ := parse("-", "-"); tmode != tOff {
		t.Errorf("Expected tOff, got %d", tmode)
	}
	if tmode, tone, _ := parse("-", "88.5"); tmode != tTone || tone != 8 {
		t.Errorf("Expected tTone with index 8, got %d/%d", tmode, tone)
	}
	if tmode, tone, _ := parse("88.5", "88.5"); tmode != tTSql || tone != 8 {
		t.Errorf("Expected tTSql with index 8, got %d/%d", tmode, tone)
	}
	if tmode, _, dcs := parse("-", "D023"); tmode != tDTCS || dcs != 0 {
		t.Errorf("Expected tDTCS with index 0, got %d/%d", tmode, dcs)
	}
}

func TestParseChannelRow(t *testing.T) {
	d := &device{}

	t.Run("First Row Erases Table", func(t *testing.T) {
		im := image.New(memsz)
		setupChannel(im, 9, "OLD", 146.52, 146.52, tOff, codes.ToneDefault, 0, pwrHigh, scanNormal, modFM)

		err := d.ParseRow(im, radio.TableChannel, true, "1 APRS 144.39 +0 - - High FM +")
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if c := decodeChannel(im, offsetChannels, 9); c.RxHz != 0 {
			t.Error("Expected previous channels to be erased on the first row")
		}
		c := decodeChannel(im, offsetChannels, 0)
		if c.RxHz != 144390000 {
			t.Errorf("Expected 144390000 Hz, got %d", c.RxHz)
		}
		if c.Name != "APRS" {
			t.Errorf("Expected name 'APRS', got %q", c.Name)
		}
	})

	t.Run("Later Rows Keep Table", func(t *testing.T) {
		im := image.New(memsz)
		if err := d.ParseRow(im, radio.TableChannel, true, "1 A 146.52 +0 - - High FM +"); err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if err := d.ParseRow(im, radio.TableChannel, false, "2 B 147.0 -0.6 88.5 88.5 Low NFM -"); err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if c := decodeChannel(im, offsetChannels, 0); c.RxHz != 146520000 {
			t.Error("Expected channel 1 to survive the second row")
		}
		c := decodeChannel(im, offsetChannels, 1)
		if c.TxHz != 146400000 {
			t.Errorf("Expected transmit 146400000 Hz, got %d", c.TxHz)
		}
		if c.Power != pwrLow {
			t.Errorf("Expected low power, got %d", c.Power)
		}
		if c.Scan != scanSkip {
			t.Errorf("Expected scan skip, got %d", c.Scan)
		}
	})

	t.Run("Bad Power Leaves Image Untouched", func(t *testing.T) {
		im := image.New(memsz)
		setupChannel(im, 0, "KEEP", 146.52, 146.52, tOff, codes.ToneDefault, 0, pwrHigh, scanNormal, modFM)
		before := append([]byte(nil), im.Payload()...)

		err := d.ParseRow(im, radio.TableChannel, true, "1 X 146.52 +0.6 - - Ultra FM +")
		if err == nil {
			t.Fatal("Expected error for unknown power level")
		}
		if !bytes.Equal(before, im.Payload()) {
			t.Error("Expected a rejected row to leave the image unchanged")
		}
	})

	t.Run("Bad Fields", func(t *testing.T) {
		im := image.New(memsz)
		rows := []string{
			"0 A 146.52 +0 - - High FM +",     // channel number
			"1 A 146.52 +0 - - High FM",       // field count
			"1 A 1200.0 +0 - - High FM +",     // frequency range
			"1 A 146.52 +0 88.6 - High FM +",  // unknown tone
			"1 A 146.52 +0 - - High SSB +",    // modulation
			"1 A 146.52 +0 - - High FM maybe", // scan flag
		}
		for _, row := range rows {
			if err := d.ParseRow(im, radio.TableChannel, false, row); err == nil {
				t.Errorf("Expected error for row %q", row)
			}
		}
	})
}

func TestParseBanks(t *testing.T) {
	d := &device{}
	im := image.New(memsz)
	im.Fill(offsetBanks, nbank*200, 0xff)
	im.Fill(offsetBankCount, nbank*2, 0xff)
	im.Fill(offsetBankUse1, 2, 0xff)
	im.Fill(offsetBankUse2, 2, 0xff)

	if err := d.ParseRow(im, radio.TableBank, true, "1 2,5-7,10"); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	want := []uint16{1, 4, 5, 6, 9}
	for n, idx := range want {
		if got := im.U16BE(offsetBanks + n*2); got != idx {
			t.Errorf("Slot %d: expected channel index %d, got %d", n, idx, got)
		}
	}
	if got := im.U16BE(offsetBanks + len(want)*2); got != 0xffff {
		t.Errorf("Expected empty slot after the list, got %04x", got)
	}
	if got := im.U16BE(offsetBankCount); got != 4 {
		t.Errorf("Expected count word 4, got %d", got)
	}
	if im.U16BE(offsetBankUse1) != 0 || im.U16BE(offsetBankUse2) != 0 {
		t.Error("Expected bank-use markers to be cleared")
	}

	var buf bytes.Buffer
	printBank(&buf, im, 0)
	if got := buf.String(); got != "   1    2,5-7,10\n" {
		t.Errorf("Expected bank row '   1    2,5-7,10', got %q", got)
	}
}

func TestParsePMS(t *testing.T) {
	d := &device{}
	im := image.New(memsz)
	if err := d.ParseRow(im, radio.TablePMS, true, "3 430 440"); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	lower := decodeChannel(im, offsetPMS, 4)
	upper := decodeChannel(im, offsetPMS, 5)
	if lower.RxHz != 430000000 || upper.RxHz != 440000000 {
		t.Errorf("Expected 430/440 MHz, got %d/%d", lower.RxHz, upper.RxHz)
	}
	if c := decodeChannel(im, offsetPMS, 0); c.RxHz != 0 {
		t.Error("Expected pair 1 to stay empty")
	}
}

func TestParseParameter(t *testing.T) {
	d := &device{}
	im := image.New(memsz)

	t.Run("Radio Identity", func(t *testing.T) {
		if err := d.ParseParameter(im, "Radio", "Yaesu VX-2"); err != nil {
			t.Errorf("Expected no error, got: %v", err)
		}
		if err := d.ParseParameter(im, "Radio", "Yaesu FT-60R"); err == nil {
			t.Error("Expected error for the wrong radio identity")
		}
	})

	t.Run("Virtual Jumpers", func(t *testing.T) {
		if err := d.ParseParameter(im, "Virtual Jumpers", "a5 00 c3 7e"); err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if im.At(6) != 0xa5 || im.At(7) != 0x00 || im.At(8) != 0xc3 || im.At(13) != 0x7e {
			t.Error("Expected jumper bytes at offsets 6, 7, 8 and 13")
		}
	})

	t.Run("Unknown Parameter", func(t *testing.T) {
		if err := d.ParseParameter(im, "Color", "red"); err == nil {
			t.Error("Expected error for unknown parameter")
		}
	})
}

func TestParseHeader(t *testing.T) {
	d := &device{}
	cases := map[string]radio.TableID{
		"Channel Name    Receive": radio.TableChannel,
		"Home    Receive":         radio.TableHome,
		"VFO     Receive":         radio.TableVFO,
		"PMS     Lower    Upper":  radio.TablePMS,
		"Bank    Channels":        radio.TableBank,
		"Whatever":                radio.TableNone,
	}
	for line, want := range cases {
		if got := d.ParseHeader(line); got != want {
			t.Errorf("Header %q: expected %v, got %v", line, want, got)
		}
	}
}

// fakePort serves a scripted byte stream and answers every host acknowledge
// with an acknowledge of its own.
type fakePort struct {
	stream     []byte
	pos        int
	pendingAck int
}

func (f *fakePort) Read(p []byte) (int, error) {
	if f.pendingAck > 0 {
		f.pendingAck--
		p[0] = 0x06
		return 1, nil
	}
	if f.pos >= len(f.stream) {
		return 0, io.EOF
	}
	n := copy(p, f.stream[f.pos:])
	f.pos += n
	return n, nil
}

func (f *fakePort) Write(p []byte) (int, error) {
	if len(p) == 1 && p[0] == 0x06 {
		f.pendingAck++
	}
	return len(p), nil
}

func makeDump() []byte {
	dump := make([]byte, memsz+1)
	copy(dump, identityTag)
	for i := len(identityTag); i < memsz; i++ {
		dump[i] = byte(i % 251)
	}
	var sum byte
	for _, b := range dump[:memsz] {
		sum += b
	}
	dump[memsz] = sum
	return dump
}

func TestDownload(t *testing.T) {
	d := &device{}
	dump := makeDump()

	t.Run("Clean Transfer", func(t *testing.T) {
		s := &radio.Session{
			Port:  &fakePort{stream: dump},
			Image: image.New(memsz),
			In:    strings.NewReader(""),
			Out:   io.Discard,
		}
		if err := d.Download(s); err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if !bytes.Equal(s.Image.Bytes(), dump) {
			t.Error("Expected the downloaded image to match the radio dump")
		}
		if !d.IsCompatible(s.Image) {
			t.Error("Expected the downloaded image to carry the identity tag")
		}
	})

	t.Run("Checksum Retry", func(t *testing.T) {
		bad := append([]byte(nil), dump...)
		bad[memsz] ^= 0xff
		stream := append(bad, dump...)

		s := &radio.Session{
			Port:  &fakePort{stream: stream},
			Image: image.New(memsz),
			In:    strings.NewReader(""),
			Out:   io.Discard,
		}
		if err := d.Download(s); err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if !s.Image.VerifyChecksum() {
			t.Error("Expected the second transfer to verify")
		}
	})
}
