package vx2

import (
	"github.com/dougsko/yaesutool/pkg/codec"
	"github.com/dougsko/yaesutool/pkg/codes"
	"github.com/dougsko/yaesutool/pkg/image"
)

const chanSize = 18

// charset is the VX-2 display character set; index 36 is the blank.
var charset = codec.Charset{
	Chars:  "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ +-/[]",
	Space:  36,
	Filler: 36,
}

var powerName = []string{"High", "Low", "High", "Low"}

var scanName = []string{"+", "-", "Only", "??"}

var modName = []string{"FM", "AM", "WFM", "Auto", "NFM"}

var stepName = []string{"5", "10", "12.5", "15", "20", "25", "50", "100", "9"}

// Tuning frequency step, for VFO and Home channels.
const (
	step5 = iota // 5 kHz
	step10
	step12_5
	step15
	step20
	step25
	step50
	step100
	step9 // 9 kHz, for MW band
)

// Direction of repeater offset.
const (
	dSimplex = iota
	dNegOffset
	dPosOffset
	dDuplex
)

// Modulation.
const (
	modFM = iota
	modAM
	modWFM
	modAuto
	modNFM // Narrow FM
)

// CTCSS/DCS mode.
const (
	tOff = iota
	tTone
	tTSql
	tDTCS
)

// Transmit power level.
const (
	pwrHigh = 0
	pwrLow  = 3
)

// Channel flags, stored in a separate memory region, 4 bits per channel.
const (
	flagUnmasked = 1 // unmasked, see 'Masking Memories' in the Operating manual
	flagValid    = 2 // channel contains valid data
	flagSkip     = 4 // skip this channel during Memory Scan
	flagPSkip    = 8 // Skip=Only, for Preferential Memory Scan
)

// Scan modes.
const (
	scanNormal       = iota // normal scan, Skip=Off
	scanSkip                // skip this channel
	scanPreferential        // preferential scan, Skip=Only
)

// freqToHz converts a 3-byte binary coded decimal frequency to Hertz. The
// last digit encodes an extra half-kilohertz: 2 means x2.5 kHz and 7 means
// x7.5 kHz.
func freqToHz(bcd []byte) int {
	a := int(bcd[0] >> 4)
	b := int(bcd[0] & 15)
	c := int(bcd[1] >> 4)
	d := int(bcd[1] & 15)
	e := int(bcd[2] >> 4)
	f := int(bcd[2] & 15)
	hz := (((((a*10+b)*10+c)*10+d)*10+e)*10 + f) * 1000

	if f == 2 || f == 7 {
		hz += 500
	}
	return hz
}

// hzToFreq converts a frequency in Hertz to the 3-byte binary coded decimal
// format. Zero means no frequency and is stored as all ones.
func hzToFreq(hz int, bcd []byte) {
	if hz == 0 {
		bcd[0], bcd[1], bcd[2] = 0xff, 0xff, 0xff
		return
	}
	bcd[0] = byte(hz/100000000%10)<<4 | byte(hz/10000000%10)
	bcd[1] = byte(hz/1000000%10)<<4 | byte(hz/100000%10)
	bcd[2] = byte(hz/10000%10)<<4 | byte(hz/1000%10)
}

// chanFlags returns the 4-bit flag nibble of channel i.
func chanFlags(im *image.Image, i int) byte {
	f := im.At(offsetFlags + i/2)
	if i&1 != 0 {
		f >>= 4
	}
	return f & 0xf
}

// setChanFlags stores the 4-bit flag nibble of channel i.
func setChanFlags(im *image.Image, i int, f byte) {
	off := offsetFlags + i/2
	shift := uint(i&1) * 4
	im.SetAt(off, im.At(off)&^(0xf<<shift)|f<<shift)
}

// rec is a view of one 18-byte channel record inside the image.
//
// Record layout, bit fields LSB first:
//	byte 0:  _u1:4, clk:1, isnarrow:1, _u2:2
//	byte 1:  step:4, duplex:2, amfm:2
//	byte 2-4:  receive frequency, BCD
//	byte 5:  tmode:2, _u3:4, power:2
//	byte 6-11: name; bit 7 of byte 6 set when the name is displayed
//	byte 12-14: transmit offset, BCD
//	byte 15: tone:6, _u4:2
//	byte 16: dcs:7, _u5:1
//	byte 17: _u6, 0x0d for unused channels
type rec struct {
	im  *image.Image
	off int
}

func record(im *image.Image, seek, i int) rec {
	return rec{im, seek + i*chanSize}
}

func (r rec) clk() byte      { return r.im.Bits(r.off, 4, 1) }
func (r rec) isNarrow() byte { return r.im.Bits(r.off, 5, 1) }
func (r rec) step() byte     { return r.im.Bits(r.off+1, 0, 4) }
func (r rec) duplex() byte   { return r.im.Bits(r.off+1, 4, 2) }
func (r rec) amfm() byte     { return r.im.Bits(r.off+1, 6, 2) }
func (r rec) tmode() byte    { return r.im.Bits(r.off+5, 0, 2) }
func (r rec) power() byte    { return r.im.Bits(r.off+5, 6, 2) }
func (r rec) tone() byte     { return r.im.Bits(r.off+15, 0, 6) }
func (r rec) dcs() byte      { return r.im.Bits(r.off+16, 0, 7) }

func (r rec) rxFreq() []byte { return r.im.Slice(r.off+2, 3) }
func (r rec) offset() []byte { return r.im.Slice(r.off+12, 3) }

func (r rec) setClk(v byte)      { r.im.SetBits(r.off, 4, 1, v) }
func (r rec) setIsNarrow(v byte) { r.im.SetBits(r.off, 5, 1, v) }
func (r rec) setStep(v byte)     { r.im.SetBits(r.off+1, 0, 4, v) }
func (r rec) setDuplex(v byte)   { r.im.SetBits(r.off+1, 4, 2, v) }
func (r rec) setAmFm(v byte)     { r.im.SetBits(r.off+1, 6, 2, v) }
func (r rec) setTmode(v byte)    { r.im.SetBits(r.off+5, 0, 2, v) }
func (r rec) setPower(v byte)    { r.im.SetBits(r.off+5, 6, 2, v) }
func (r rec) setTone(v byte)     { r.im.SetBits(r.off+15, 0, 6, v) }
func (r rec) setDCS(v byte)      { r.im.SetBits(r.off+16, 0, 7, v) }

func (r rec) name() string {
	raw := r.im.Slice(r.off+6, 6)
	if int(raw[0]&0x7f) >= len(charset.Chars) {
		return ""
	}
	buf := make([]byte, 6)
	for i := range buf {
		buf[i] = raw[i] & 0x7f
	}
	return charset.Decode(buf)
}

func (r rec) setName(name string) {
	enc := charset.Encode(name)
	copy(r.im.Slice(r.off+6, 6), enc[:])
	if enc[0] != byte(charset.Space) {
		// Display the name instead of the frequency.
		r.im.SetAt(r.off+6, enc[0]|0x80)
	}
}

// clearUnused zeroes the reserved fields and stores the band hint in the
// low nibble of byte 0. The radio firmware keys band-specific settings off
// this nibble.
func (r rec) clearUnused(rxMHz float64) {
	u1 := byte(5)
	if rxMHz < 1.8 {
		u1 = 2
	} else if rxMHz < 88 {
		u1 = 0
	}
	r.im.SetBits(r.off, 0, 4, u1)
	r.im.SetBits(r.off, 6, 2, 0)    // _u2
	r.im.SetBits(r.off+5, 2, 4, 0)  // _u3
	r.im.SetBits(r.off+15, 6, 2, 0) // _u4
	r.im.SetBits(r.off+16, 7, 1, 0) // _u5
	r.im.SetAt(r.off+17, 0)         // _u6
}

// channel is the decoded form of one record: frequencies in Hz, squelch
// tones in tenths of Hz.
type channel struct {
	Name   string
	RxHz   int
	TxHz   int
	RxTone int
	TxTone int
	RxDCS  int
	TxDCS  int
	Power  int
	Scan   int
	Mod    int
	Step   int
}

// decodeChannel reads channel i of the table at offset seek. For the memory
// channel and PMS tables the valid flag gates decoding; an invalid channel
// decodes with a zero receive frequency.
func decodeChannel(im *image.Image, seek, i int) channel {
	r := record(im, seek, i)
	fi := i
	if seek == offsetPMS {
		fi += nchan
	}
	flags := chanFlags(im, fi)

	var c channel
	if seek == offsetChannels || seek == offsetPMS {
		if flags&flagValid == 0 {
			return c
		}
	}
	if seek == offsetChannels {
		c.Name = r.name()
	}

	c.RxHz = freqToHz(r.rxFreq())
	c.TxHz = c.RxHz
	switch r.duplex() {
	case dNegOffset:
		c.TxHz -= freqToHz(r.offset())
	case dPosOffset:
		c.TxHz += freqToHz(r.offset())
	case dDuplex:
		c.TxHz = freqToHz(r.offset())
	}

	switch r.tmode() {
	case tTone:
		c.TxTone = codes.Tone(int(r.tone()))
	case tTSql:
		c.TxTone = codes.Tone(int(r.tone()))
		c.RxTone = c.TxTone
	case tDTCS:
		c.TxDCS = codes.DCS(int(r.dcs()))
		c.RxDCS = c.TxDCS
	}

	c.Power = int(r.power())
	switch {
	case flags&flagPSkip != 0:
		c.Scan = scanPreferential
	case flags&flagSkip != 0:
		c.Scan = scanSkip
	default:
		c.Scan = scanNormal
	}
	if r.isNarrow() != 0 {
		c.Mod = modNFM
	} else {
		c.Mod = int(r.amfm())
	}
	c.Step = int(r.step())
	return c
}

// encodeSquelch maps a parsed receive/transmit squelch pair to the tmode
// value and the tone and DCS indexes. The receive DCS field has no encoding
// of its own: a transmit DCS code applies to both directions.
func encodeSquelch(rx, tx codec.SquelchSpec) (tmode, tone, dcs int) {
	tone = codes.ToneDefault
	dcs = 0
	if tx.Kind == codec.SquelchDCS {
		return tDTCS, tone, tx.DCSIndex
	}
	if tx.Kind == codec.SquelchTone {
		tone = tx.ToneIndex
		if rx.Kind != codec.SquelchTone {
			return tTone, tone, dcs
		}
		return tTSql, tone, dcs
	}
	return tOff, tone, dcs
}

// setTuning stores the receive frequency and encodes the transmit side as a
// duplex direction plus offset, falling back to an explicit cross-band
// frequency when the offset does not fit in the record.
func (r rec) setTuning(rxMHz, txMHz float64) {
	hzToFreq(codec.IRound(rxMHz*1000000.0), r.rxFreq())

	offsetKHz := codec.IRound((txMHz - rxMHz) * 1000.0)
	off := r.offset()
	off[0], off[1], off[2] = 0, 0, 0
	switch {
	case offsetKHz == 0:
		r.setDuplex(dSimplex)
	case offsetKHz > 0 && offsetKHz < 100000:
		r.setDuplex(dPosOffset)
		hzToFreq(offsetKHz*1000, off)
	case offsetKHz < 0 && -offsetKHz < 100000:
		r.setDuplex(dNegOffset)
		hzToFreq(-offsetKHz*1000, off)
	default:
		r.setDuplex(dDuplex)
		hzToFreq(codec.IRound(txMHz*1000000.0), off)
	}
}

// setupChannel fills in one memory channel and its flag nibble.
func setupChannel(im *image.Image, i int, name string, rxMHz, txMHz float64,
	tmode, tone, dcs, power, scan, amfm int) {

	r := record(im, offsetChannels, i)
	r.setTuning(rxMHz, txMHz)
	r.setTmode(byte(tmode))
	r.setTone(byte(tone))
	r.setDCS(byte(dcs))
	r.setPower(byte(power))
	if amfm == modNFM {
		r.setIsNarrow(1)
	} else {
		r.setIsNarrow(0)
	}
	r.setAmFm(byte(amfm))
	r.setStep(step12_5)
	r.setClk(0)
	r.clearUnused(rxMHz)
	r.setName(name)

	flags := byte(flagValid | flagUnmasked)
	switch scan {
	case scanSkip:
		flags |= flagSkip
	case scanPreferential:
		flags |= flagPSkip
	}
	setChanFlags(im, i, flags)
}

// bandIndex maps a band number 1..11 to the record index. Record index 4 is
// not used by the radio.
func bandIndex(band int) int {
	if band <= 4 {
		return band - 1
	}
	return band
}

// setupBandChannel fills in one Home or VFO record for a band.
func setupBandChannel(im *image.Image, seek, band int, rxMHz, txMHz float64,
	tmode, tone, dcs, power, amfm, step int) {

	r := record(im, seek, bandIndex(band))
	r.setTuning(rxMHz, txMHz)
	r.setTmode(byte(tmode))
	r.setTone(byte(tone))
	r.setDCS(byte(dcs))
	r.setPower(byte(power))
	if amfm == modNFM {
		r.setIsNarrow(1)
	} else {
		r.setIsNarrow(0)
	}
	r.setAmFm(byte(amfm))
	r.setStep(byte(step))
	r.setClk(0)
	r.clearUnused(rxMHz)
	r.setName("")
}

// setupPMS fills in one half of a programmable memory scan pair.
func setupPMS(im *image.Image, i int, mhz float64) {
	r := record(im, offsetPMS, i)
	hzToFreq(codec.IRound(mhz*1000000.0), r.rxFreq())

	off := r.offset()
	off[0], off[1], off[2] = 0, 0, 0
	r.setDuplex(dSimplex)
	r.setTmode(0)
	r.setTone(0)
	r.setDCS(0)
	r.setPower(0)
	r.setIsNarrow(0)
	r.setAmFm(0)
	r.setStep(step12_5)
	r.setClk(0)
	r.clearUnused(100)
	r.setName("")

	setChanFlags(im, nchan+i, flagValid|flagUnmasked)
}

// setupBank appends a channel index to the first empty slot of a bank's
// channel list.
func setupBank(im *image.Image, bankIndex, chanIndex int) bool {
	base := offsetBanks + bankIndex*200
	for n := 0; n < 100; n++ {
		if im.U16BE(base+n*2) == 0xffff {
			im.SetU16BE(base+n*2, uint16(chanIndex))
			return true
		}
	}
	return false
}

// isValidFrequency reports whether the radio supports the frequency.
func isValidFrequency(mhz float64) bool {
	return mhz >= 0.5 && mhz <= 999
}

// canTransmit reports whether the frequency is inside the transmit-capable
// sub-bands.
func canTransmit(rxHz int) bool {
	return (rxHz >= 137000000 && rxHz < 174000000) ||
		(rxHz >= 420000000 && rxHz < 470000000)
}
