// Package codes holds the CTCSS tone and DCS code tables shared by all
// supported radio models. Tones are stored in tenths of a Hertz, DCS codes
// as their octal-style decimal value. Both tables are indexed by the small
// integer that the radios store in their channel records.
package codes

import (
	"fmt"
	"io"
)

// CTCSSTones lists the 50 standard CTCSS tones in tenths of Hz.
var CTCSSTones = []int{
	670, 693, 719, 744, 770, 797, 825, 854,
	885, 915, 948, 974, 1000, 1035, 1072, 1109,
	1148, 1188, 1230, 1273, 1318, 1365, 1413, 1462,
	1514, 1567, 1598, 1622, 1655, 1679, 1713, 1738,
	1773, 1799, 1835, 1862, 1899, 1928, 1966, 1995,
	2035, 2065, 2107, 2181, 2257, 2291, 2336, 2418,
	2503, 2541,
}

// DCSCodes lists the 104 standard DCS codes.
var DCSCodes = []int{
	23, 25, 26, 31, 32, 36, 43, 47,
	51, 53, 54, 65, 71, 72, 73, 74,
	114, 115, 116, 122, 125, 131, 132, 134,
	143, 145, 152, 155, 156, 162, 165, 172,
	174, 205, 212, 223, 225, 226, 243, 244,
	245, 246, 251, 252, 255, 261, 263, 265,
	266, 271, 274, 306, 311, 315, 325, 331,
	332, 343, 346, 351, 356, 364, 365, 371,
	411, 412, 413, 423, 431, 432, 445, 446,
	452, 454, 455, 462, 464, 465, 466, 503,
	506, 516, 523, 526, 532, 546, 565, 606,
	612, 624, 627, 631, 632, 654, 662, 664,
	703, 712, 723, 731, 732, 734, 743, 754,
}

// ToneDefault is the tone index the radios store when no tone is selected
// (100.0 Hz).
const ToneDefault = 12

// ToneIndex returns the table index for a CTCSS tone given in tenths of Hz,
// or -1 when the tone is not in the table.
func ToneIndex(tenths int) int {
	for i, t := range CTCSSTones {
		if t == tenths {
			return i
		}
	}
	return -1
}

// DCSIndex returns the table index for a DCS code, or -1 when the code is
// not in the table.
func DCSIndex(code int) int {
	for i, c := range DCSCodes {
		if c == code {
			return i
		}
	}
	return -1
}

// Tone returns the tone value in tenths of Hz for a stored index. Indexes
// outside the table return 0.
func Tone(index int) int {
	if index < 0 || index >= len(CTCSSTones) {
		return 0
	}
	return CTCSSTones[index]
}

// DCS returns the DCS code for a stored index. Indexes outside the table
// return 0.
func DCS(index int) int {
	if index < 0 || index >= len(DCSCodes) {
		return 0
	}
	return DCSCodes[index]
}

// PrintTables writes the supported squelch values as comment lines, used by
// the verbose configuration export.
func PrintTables(w io.Writer) {
	fmt.Fprintf(w, "#\n# Supported CTCSS tones (Hz):\n")
	for i, t := range CTCSSTones {
		if i%10 == 0 {
			fmt.Fprintf(w, "#  ")
		}
		fmt.Fprintf(w, " %5.1f", float64(t)/10.0)
		if i%10 == 9 || i == len(CTCSSTones)-1 {
			fmt.Fprintf(w, "\n")
		}
	}
	fmt.Fprintf(w, "# Supported DCS codes:\n")
	for i, c := range DCSCodes {
		if i%13 == 0 {
			fmt.Fprintf(w, "#  ")
		}
		fmt.Fprintf(w, " D%03d", c)
		if i%13 == 12 || i == len(DCSCodes)-1 {
			fmt.Fprintf(w, "\n")
		}
	}
}
