package ft60

import (
	"github.com/dougsko/yaesutool/pkg/codec"
	"github.com/dougsko/yaesutool/pkg/codes"
	"github.com/dougsko/yaesutool/pkg/image"
)

const (
	chanSize = 16
	nameSize = 8
)

// charset is the FT-60 display character set; index 36 is the blank and
// index 64 is the open box glyph used for undisplayable characters.
var charset = codec.Charset{
	Chars:  "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ !`o$%&'()*+,-./|;/=>?@[~]^__",
	Space:  36,
	Filler: 64,
}

var bandName = []string{"144", "250", "350", "430", "850"}

var powerName = []string{"High", "Med", "Low", "??"}

var scanName = []string{"+", "-", "Only", "??"}

// Frequency step.
const (
	step5 = iota
	step10
	step12_5
	step15
	step20
	step25
	step50
	step100
)

// Repeater mode.
const (
	dSimplex   = 0
	dNegOffset = 2
	dPosOffset = 3
	dCrossBand = 4
)

// CTCSS/DCS mode.
const (
	tOff = iota
	tTone
	tTSql
	tTSqlRev
	tDTCS
	tD
	tToneDCS
	tDTSql
)

// Transmit power level.
const (
	pwrHigh = 0
	pwrMid  = 1
	pwrLow  = 2
)

// Scan modes.
const (
	scanNormal = iota
	scanSkip
	scanPreferential
)

// freqToHz converts a 3-byte binary coded decimal frequency to Hertz. The
// digits count 10 kHz units; the top two bits of the first byte add a
// multiple of 2.5 kHz.
func freqToHz(bcd []byte) int {
	hz := int(bcd[0]&15)*100000000 +
		int(bcd[1]>>4&15)*10000000 +
		int(bcd[1]&15)*1000000 +
		int(bcd[2]>>4&15)*100000 +
		int(bcd[2]&15)*10000
	hz += int(bcd[0]>>6) * 2500
	return hz
}

// hzToFreq converts a frequency in Hertz to the 3-byte binary coded decimal
// format.
func hzToFreq(hz int, bcd []byte) {
	bcd[0] = byte(hz/2500%4)<<6 | byte(hz/100000000%10)
	bcd[1] = byte(hz/10000000%10)<<4 | byte(hz/1000000%10)
	bcd[2] = byte(hz/100000%10)<<4 | byte(hz/10000%10)
}

// scanFlags returns the 2-bit scan mode of channel i.
func scanFlags(im *image.Image, i int) int {
	return int(im.Bits(offsetScan+i/4, uint(i&3)*2, 2))
}

// setScanFlags stores the 2-bit scan mode of channel i.
func setScanFlags(im *image.Image, i, scan int) {
	im.SetBits(offsetScan+i/4, uint(i&3)*2, 2, byte(scan))
}

// rec is a view of one 16-byte channel record inside the image.
//
// Record layout, bit fields LSB first:
//	byte 0:  duplex:4, isam:1, isnarrow:1, _u1:1, used:1
//	byte 1-3:  receive frequency, BCD
//	byte 4:  tmode:3, step:3, _u2:2
//	byte 5-7:  transmit frequency, BCD, for cross-band channels
//	byte 8:  tone:6, power:2
//	byte 9:  dtcs:7, _u3:1
//	byte 10-11: _u4, 15 and 0
//	byte 12: transmit offset in 50 kHz steps
//	byte 13-15: _u5
type rec struct {
	im  *image.Image
	off int
}

func record(im *image.Image, seek, i int) rec {
	return rec{im, seek + i*chanSize}
}

func (r rec) duplex() byte   { return r.im.Bits(r.off, 0, 4) }
func (r rec) isAM() byte     { return r.im.Bits(r.off, 4, 1) }
func (r rec) isNarrow() byte { return r.im.Bits(r.off, 5, 1) }
func (r rec) used() byte     { return r.im.Bits(r.off, 7, 1) }
func (r rec) tmode() byte    { return r.im.Bits(r.off+4, 0, 3) }
func (r rec) step() byte     { return r.im.Bits(r.off+4, 3, 3) }
func (r rec) tone() byte     { return r.im.Bits(r.off+8, 0, 6) }
func (r rec) power() byte    { return r.im.Bits(r.off+8, 6, 2) }
func (r rec) dtcs() byte     { return r.im.Bits(r.off+9, 0, 7) }
func (r rec) txOffset() int  { return int(r.im.At(r.off + 12)) }

func (r rec) rxFreq() []byte { return r.im.Slice(r.off+1, 3) }
func (r rec) txFreq() []byte { return r.im.Slice(r.off+5, 3) }

func (r rec) setDuplex(v byte)   { r.im.SetBits(r.off, 0, 4, v) }
func (r rec) setIsAM(v byte)     { r.im.SetBits(r.off, 4, 1, v) }
func (r rec) setIsNarrow(v byte) { r.im.SetBits(r.off, 5, 1, v) }
func (r rec) setUsed(v byte)     { r.im.SetBits(r.off, 7, 1, v) }
func (r rec) setTmode(v byte)    { r.im.SetBits(r.off+4, 0, 3, v) }
func (r rec) setStep(v byte)     { r.im.SetBits(r.off+4, 3, 3, v) }
func (r rec) setTone(v byte)     { r.im.SetBits(r.off+8, 0, 6, v) }
func (r rec) setPower(v byte)    { r.im.SetBits(r.off+8, 6, 2, v) }
func (r rec) setDTCS(v byte)     { r.im.SetBits(r.off+9, 0, 7, v) }
func (r rec) setTxOffset(v int)  { r.im.SetAt(r.off+12, byte(v)) }

// clearUnused zeroes the reserved fields. The radio stores a band hint in
// the low bits of byte 4's spare field for UHF channels.
func (r rec) clearUnused(uhf bool) {
	u2 := byte(0)
	if uhf {
		u2 = 1
	}
	r.im.SetBits(r.off, 6, 1, 0) // _u1
	r.im.SetBits(r.off+4, 6, 2, u2)
	r.im.SetBits(r.off+9, 7, 1, 0) // _u3
	r.im.SetAt(r.off+10, 15)
	r.im.SetAt(r.off+11, 0)
	r.im.SetAt(r.off+13, 0)
	r.im.SetAt(r.off+14, 0)
	r.im.SetAt(r.off+15, 0)
}

// decodeName reads channel i's entry of the name table. A name is shown
// only when both the valid and used bits are set.
func decodeName(im *image.Image, i int) string {
	off := offsetNames + i*nameSize
	used := im.Bits(off+6, 7, 1)
	valid := im.Bits(off+7, 7, 1)
	if valid == 0 || used == 0 {
		return ""
	}
	return charset.Decode(im.Slice(off, 6))
}

// encodeName stores channel i's entry of the name table, or clears it when
// the name is empty.
func encodeName(im *image.Image, i int, name string) {
	off := offsetNames + i*nameSize
	if name == "" || name == "-" {
		im.SetBits(off+6, 7, 1, 0)
		im.SetBits(off+7, 7, 1, 0)
		im.Fill(off, 6, 0xff)
		return
	}
	enc := charset.Encode(name)
	copy(im.Slice(off, 6), enc[:])
	im.SetBits(off+6, 7, 1, 1)
	im.SetBits(off+7, 7, 1, 1)
}

// channel is the decoded form of one record: frequencies in Hz, squelch
// tones in tenths of Hz. A negative receive tone denotes reversed tone
// squelch.
type channel struct {
	Name   string
	RxHz   int
	TxHz   int
	RxTone int
	TxTone int
	RxDCS  int
	TxDCS  int
	Power  int
	Wide   bool
	Scan   int
	IsAM   bool
	Step   int
}

// decodeChannel reads channel i of the table at offset seek. For the memory
// channel and PMS tables the used bit gates decoding; an unused channel
// decodes with a zero receive frequency.
func decodeChannel(im *image.Image, seek, i int) channel {
	r := record(im, seek, i)

	var c channel
	if r.used() == 0 && (seek == offsetChannels || seek == offsetPMS) {
		return c
	}
	if seek == offsetChannels {
		c.Name = decodeName(im, i)
	}

	c.RxHz = freqToHz(r.rxFreq())
	c.TxHz = c.RxHz
	switch r.duplex() {
	case dNegOffset:
		c.TxHz -= r.txOffset() * 50000
	case dPosOffset:
		c.TxHz += r.txOffset() * 50000
	case dCrossBand:
		c.TxHz = freqToHz(r.txFreq())
	}

	switch r.tmode() {
	case tTone:
		c.TxTone = codes.Tone(int(r.tone()))
	case tTSql:
		c.TxTone = codes.Tone(int(r.tone()))
		c.RxTone = c.TxTone
	case tTSqlRev:
		c.TxTone = codes.Tone(int(r.tone()))
		c.RxTone = -c.TxTone
	case tDTCS:
		c.TxDCS = codes.DCS(int(r.dtcs()))
		c.RxDCS = c.TxDCS
	case tD:
		c.TxDCS = codes.DCS(int(r.dtcs()))
	case tToneDCS:
		c.TxTone = codes.Tone(int(r.tone()))
		c.RxDCS = codes.DCS(int(r.dtcs()))
	case tDTSql:
		c.TxDCS = codes.DCS(int(r.dtcs()))
		c.RxTone = codes.Tone(int(r.tone()))
	}

	c.Power = int(r.power())
	c.Wide = r.isNarrow() == 0
	c.Scan = scanFlags(im, i)
	c.IsAM = r.isAM() != 0
	c.Step = int(r.step())
	return c
}

// encodeSquelch maps a parsed receive/transmit squelch pair to the tmode
// value and the tone and DCS indexes. A receive DCS code takes precedence
// over the transmit side.
func encodeSquelch(rx, tx codec.SquelchSpec) (tmode, tone, dtcs int) {
	tone = codes.ToneDefault
	dtcs = 0
	if rx.Kind == codec.SquelchDCS {
		dtcs = rx.DCSIndex
		if tx.Kind == codec.SquelchTone {
			tone = tx.ToneIndex
			return tToneDCS, tone, dtcs
		}
		return tDTCS, tone, dtcs
	}
	if tx.Kind == codec.SquelchDCS {
		dtcs = tx.DCSIndex
		if rx.Kind == codec.SquelchTone || rx.Kind == codec.SquelchToneReversed {
			tone = rx.ToneIndex
			return tDTSql, tone, dtcs
		}
		return tD, tone, dtcs
	}
	if tx.Kind == codec.SquelchTone {
		tone = tx.ToneIndex
		switch rx.Kind {
		case codec.SquelchToneReversed:
			return tTSqlRev, tone, dtcs
		case codec.SquelchTone:
			return tTSql, tone, dtcs
		}
		return tTone, tone, dtcs
	}
	return tOff, tone, dtcs
}

// setTuning stores the receive frequency and encodes the transmit side as a
// duplex direction plus a 50 kHz step offset, falling back to an explicit
// cross-band frequency when the offset does not fit one byte.
func (r rec) setTuning(rxMHz, txMHz float64) {
	hzToFreq(codec.IRound(rxMHz*1000000.0), r.rxFreq())

	offsetMHz := txMHz - rxMHz
	r.setTxOffset(0)
	tx := r.txFreq()
	tx[0], tx[1], tx[2] = 0, 0, 0
	switch {
	case offsetMHz == 0:
		r.setDuplex(dSimplex)
	case offsetMHz > 0 && offsetMHz < 256*0.05:
		r.setDuplex(dPosOffset)
		r.setTxOffset(codec.IRound(offsetMHz / 0.05))
	case offsetMHz < 0 && offsetMHz > -256*0.05:
		r.setDuplex(dNegOffset)
		r.setTxOffset(codec.IRound(-offsetMHz / 0.05))
	default:
		r.setDuplex(dCrossBand)
		hzToFreq(codec.IRound(txMHz*1000000.0), tx)
	}
}

// setupRecord fills in the model-specific fields shared by the channel and
// home tables.
func (r rec) setupRecord(rxMHz, txMHz float64, tmode, tone, dtcs, power int, wide, isam bool) {
	r.setTuning(rxMHz, txMHz)
	if rxMHz > 0 {
		r.setUsed(1)
	} else {
		r.setUsed(0)
	}
	r.setTmode(byte(tmode))
	r.setTone(byte(tone))
	r.setDTCS(byte(dtcs))
	r.setPower(byte(power))
	if wide {
		r.setIsNarrow(0)
	} else {
		r.setIsNarrow(1)
	}
	if isam {
		r.setIsAM(1)
	} else {
		r.setIsAM(0)
	}
	if rxMHz >= 400 {
		r.setStep(step12_5)
	} else {
		r.setStep(step5)
	}
	r.clearUnused(rxMHz >= 400)
}

// setupChannel fills in one memory channel, its scan flags and its name
// table entry.
func setupChannel(im *image.Image, i int, name string, rxMHz, txMHz float64,
	tmode, tone, dtcs, power int, wide bool, scan int, isam bool) {

	r := record(im, offsetChannels, i)
	r.setupRecord(rxMHz, txMHz, tmode, tone, dtcs, power, wide, isam)
	setScanFlags(im, i, scan)
	encodeName(im, i, name)
}

// bandRecordIndex maps a band name in MHz to the record index of the Home
// and VFO tables.
func bandRecordIndex(band int) int {
	switch band {
	case 250:
		return 1
	case 350:
		return 2
	case 430:
		return 3
	case 850:
		return 4
	}
	return 0
}

// setupHome fills in one home channel. Band is 144, 250, 350, 430 or 850.
func setupHome(im *image.Image, band int, rxMHz, txMHz float64,
	tmode, tone, dtcs, power int, wide, isam bool) {

	r := record(im, offsetHome, bandRecordIndex(band))
	r.setupRecord(rxMHz, txMHz, tmode, tone, dtcs, power, wide, isam)
}

// setupPMS fills in one programmable memory scan pair. A zero lower limit
// clears the pair.
func setupPMS(im *image.Image, i int, lowerMHz, upperMHz float64) {
	lower := record(im, offsetPMS, i*2)
	upper := record(im, offsetPMS, i*2+1)
	if lowerMHz == 0 {
		lower.setUsed(0)
		upper.setUsed(0)
		return
	}
	hzToFreq(codec.IRound(lowerMHz*1000000.0), lower.rxFreq())
	lower.setUsed(1)
	hzToFreq(codec.IRound(upperMHz*1000000.0), upper.rxFreq())
	upper.setUsed(1)
}

// bankHasChannels reports whether any channel belongs to the bank.
func bankHasChannels(im *image.Image, b int) bool {
	data := im.Slice(offsetBanks+b*0x80, nchan/8)
	for _, c := range data {
		if c != 0 {
			return true
		}
	}
	return false
}

// bankChannels returns the 1-based channel numbers of a bank in ascending
// order.
func bankChannels(im *image.Image, b int) []int {
	var chans []int
	for n := 0; n < nchan; n++ {
		if im.Bits(offsetBanks+b*0x80+n/8, uint(n&7), 1) != 0 {
			chans = append(chans, n+1)
		}
	}
	return chans
}

// setupBank adds a channel to a bank's bitmap.
func setupBank(im *image.Image, bankIndex, chanIndex int) {
	off := offsetBanks + bankIndex*0x80 + chanIndex/8
	im.SetAt(off, im.At(off)|1<<uint(chanIndex&7))
}

// isValidFrequency reports whether the radio supports the frequency. The
// bounds are checked on whole megahertz.
func isValidFrequency(mhz float64) bool {
	m := int(mhz)
	if m >= 108 && m <= 520 {
		return true
	}
	if m >= 700 && m <= 999 {
		return true
	}
	return false
}
