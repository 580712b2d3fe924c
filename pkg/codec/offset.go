package codec

import "fmt"

// FormatOffset renders the transmit column of a channel row as a fixed
// 8-character field: "+0" for simplex, a signed offset in MHz when the
// offset fits the record's 50 kHz granularity, or the explicit transmit
// frequency for cross-band channels.
func FormatOffset(rxHz, txHz int) string {
	delta := txHz - rxHz
	switch {
	case delta == 0:
		return "+0      "
	case delta > 0 && delta/50000 <= 255:
		if delta%1000000 == 0 {
			return fmt.Sprintf("+%-7d", delta/1000000)
		}
		return fmt.Sprintf("+%-7.3f", float64(delta)/1000000.0)
	case delta < 0 && -delta/50000 <= 255:
		delta = -delta
		if delta%1000000 == 0 {
			return fmt.Sprintf("-%-7d", delta/1000000)
		}
		return fmt.Sprintf("-%-7.3f", float64(delta)/1000000.0)
	default:
		// Cross band mode.
		return fmt.Sprintf(" %-7.4f", float64(txHz)/1000000.0)
	}
}
