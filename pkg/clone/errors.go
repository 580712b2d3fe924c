package clone

import "fmt"

// ShortReadError reports a block read that returned fewer bytes than the
// protocol requires. Once a transfer has started this is fatal: the radio
// has stopped sending mid-image.
type ShortReadError struct {
	Offset int
	Got    int
}

func (e *ShortReadError) Error() string {
	return fmt.Sprintf("reading block 0x%04x: got only %d bytes", e.Offset, e.Got)
}

// AckError reports a missing or wrong acknowledge byte after a block.
type AckError struct {
	Offset  int
	Got     byte
	Missing bool
}

func (e *AckError) Error() string {
	if e.Missing {
		return fmt.Sprintf("no acknowledge after block 0x%04x", e.Offset)
	}
	return fmt.Sprintf("bad acknowledge after block 0x%04x: %02x", e.Offset, e.Got)
}

// EchoError reports a write whose echo from the radio came back short. The
// radio loops every received byte back to the host; a short echo means it
// dropped into its error state and the operator has to re-arm it.
type EchoError struct {
	Offset int
	Got    int
}

func (e *EchoError) Error() string {
	return fmt.Sprintf("echo for block 0x%04x: got only %d bytes", e.Offset, e.Got)
}
