// Package codec provides the model-independent field codecs: squelch
// specification parsing, channel name character sets and bank range lists.
// Everything bit-layout specific lives with the radio model that owns the
// layout.
package codec

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dougsko/yaesutool/pkg/codes"
)

// SquelchKind classifies one side of a squelch specification.
type SquelchKind int

const (
	SquelchNone SquelchKind = iota
	SquelchTone
	SquelchToneReversed
	SquelchDCS
)

// SquelchSpec is one parsed squelch field: a CTCSS tone, a DCS code, a
// reversed tone (negative tone value, receive side only) or nothing.
type SquelchSpec struct {
	Kind      SquelchKind
	ToneIndex int // index into codes.CTCSSTones when Kind is a tone kind
	DCSIndex  int // index into codes.DCSCodes when Kind is SquelchDCS
}

// ParseSquelch parses a single squelch field: "-" for disabled, "Dnnn" for a
// DCS code, "nnn.n" for a CTCSS tone in Hz, and, when allowReversed is set,
// "-nnn.n" for reversed tone squelch. Values not present in the code tables
// are an error.
func ParseSquelch(s string, allowReversed bool) (SquelchSpec, error) {
	if s == "" || s == "-" {
		return SquelchSpec{Kind: SquelchNone}, nil
	}
	if s[0] == 'D' || s[0] == 'd' {
		code, err := strconv.Atoi(s[1:])
		if err != nil {
			return SquelchSpec{}, fmt.Errorf("bad DCS code %q", s)
		}
		index := codes.DCSIndex(code)
		if index < 0 {
			return SquelchSpec{}, fmt.Errorf("unknown DCS code %q", s)
		}
		return SquelchSpec{Kind: SquelchDCS, DCSIndex: index}, nil
	}

	kind := SquelchTone
	if strings.HasPrefix(s, "-") && allowReversed {
		kind = SquelchToneReversed
		s = s[1:]
	}
	hz, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return SquelchSpec{}, fmt.Errorf("bad CTCSS tone %q", s)
	}
	tenths := IRound(hz * 10.0)
	if tenths < 600 {
		return SquelchSpec{}, fmt.Errorf("CTCSS tone %q out of range", s)
	}
	index := codes.ToneIndex(tenths)
	if index < 0 {
		return SquelchSpec{}, fmt.Errorf("unknown CTCSS tone %q", s)
	}
	return SquelchSpec{Kind: kind, ToneIndex: index}, nil
}

// FormatSquelch renders a decoded squelch value the way the configuration
// tables print it: tone in Hz, DCS code with a D prefix, or a dash. A
// negative tone value denotes reversed tone squelch.
func FormatSquelch(toneTenths, dcsCode int) string {
	switch {
	case toneTenths != 0:
		return fmt.Sprintf("%5.1f", float64(toneTenths)/10.0)
	case dcsCode > 0:
		return fmt.Sprintf("D%03d", dcsCode)
	default:
		return "   - "
	}
}

// IRound rounds to the nearest integer, away from zero.
func IRound(x float64) int {
	if x >= 0 {
		return int(x + 0.5)
	}
	return -int(-x + 0.5)
}
