// Package verbose holds the global protocol-trace flag. When enabled, the
// clone transport dumps every block it moves over the serial link.
package verbose

import (
	"fmt"
	"log"
	"strings"
)

var enabled bool

// SetEnabled sets the global verbose logging flag
func SetEnabled(enable bool) {
	enabled = enable
}

// IsEnabled returns whether verbose logging is enabled
func IsEnabled() bool {
	return enabled
}

// Printf prints a verbose log message if verbose logging is enabled
func Printf(format string, args ...interface{}) {
	if enabled {
		log.Printf("[VERBOSE] "+format, args...)
	}
}

// HexDump renders data as space-separated hex bytes, the format used for
// protocol traces.
func HexDump(data []byte) string {
	var b strings.Builder
	for i, c := range data {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%02x", c)
	}
	return b.String()
}
