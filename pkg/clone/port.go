package clone

import (
	"fmt"
	"time"

	"go.bug.st/serial"
)

// Open opens the serial device in the 8N1 framing the clone protocol uses,
// with a bounded read timeout so a silent radio shows up as a short read
// instead of a hang.
func Open(device string, baud int, timeout time.Duration) (serial.Port, error) {
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(device, mode)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", device, err)
	}
	if err := port.SetReadTimeout(timeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("set read timeout: %w", err)
	}
	return port, nil
}
