// Package clone implements the half-duplex block transfer protocol the
// radios use in clone mode. The protocol is the same in both directions:
// fixed-size blocks of up to 64 bytes, a one-byte 0x06 acknowledge for small
// blocks, a loop-back echo of every byte the host writes, and a single
// trailing checksum byte over the whole image.
//
// Link works over any io.ReadWriter; the real serial port is opened by Open,
// tests substitute an in-memory device.
package clone

import (
	"bufio"
	"io"
	"time"

	"github.com/dougsko/yaesutool/pkg/verbose"
)

// Ack is the acknowledge byte exchanged after small blocks.
const Ack = 0x06

// MaxChunk is the largest block the radios move in one serial transaction.
const MaxChunk = 64

// Link is a clone-mode connection to a radio, parameterized with the
// model's chunking rules.
type Link struct {
	Port io.ReadWriter

	// ChunkSize is the transfer unit for blocks larger than one chunk.
	ChunkSize int

	// AckThreshold selects which blocks are acknowledged: a block is acked
	// when its total length is at most this many bytes.
	AckThreshold int

	// WriteDelay is the pause between consecutive large write chunks, giving
	// the radio time to commit each chunk.
	WriteDelay time.Duration

	// Progress, when set, is called once per chunk moved.
	Progress func()
}

// readFull reads len(buf) bytes, tolerating partial reads from the port.
// A read timeout (zero-byte read) or EOF ends the attempt early and the
// count read so far is returned.
func (l *Link) readFull(buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := l.Port.Read(buf[total:])
		total += n
		if err == io.EOF || (n == 0 && err == nil) {
			return total, nil
		}
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// readAck performs the acknowledge handshake after a block: send 0x06 and
// expect 0x06 back.
func (l *Link) readAck(start int) error {
	if _, err := l.Port.Write([]byte{Ack}); err != nil {
		return err
	}
	return l.expectAck(start)
}

// expectAck reads one byte and checks it is the acknowledge.
func (l *Link) expectAck(start int) error {
	var reply [1]byte
	n, err := l.readFull(reply[:])
	if err != nil {
		return err
	}
	if n != 1 {
		return &AckError{Offset: start, Missing: true}
	}
	if reply[0] != Ack {
		return &AckError{Offset: start, Got: reply[0]}
	}
	return nil
}

func (l *Link) tick() {
	if l.Progress != nil {
		l.Progress()
	}
}

// PollBlock attempts to read the first block of a download. The radio does
// not transmit until the operator presses the send key, so a short or empty
// read simply means "not yet" and (false, nil) is returned. Once data did
// arrive, acknowledge failures are real errors.
func (l *Link) PollBlock(data []byte) (bool, error) {
	n, err := l.readFull(data)
	if err != nil {
		return false, err
	}
	if n != len(data) {
		return false, nil
	}
	if len(data) <= l.AckThreshold {
		if err := l.readAck(0); err != nil {
			return false, err
		}
	}
	verbose.Printf("read 0x0000: %s", verbose.HexDump(data))
	l.tick()
	return true, nil
}

// ReadBlock reads a block of len(data) bytes at image offset start, in
// chunks of at most ChunkSize. Any short read is fatal. Blocks no larger
// than AckThreshold are acknowledged.
func (l *Link) ReadBlock(start int, data []byte) error {
	needAck := len(data) <= l.AckThreshold
	for len(data) > 0 {
		nbytes := len(data)
		if nbytes > l.ChunkSize {
			nbytes = l.ChunkSize
		}
		n, err := l.readFull(data[:nbytes])
		if err != nil {
			return err
		}
		if n != nbytes {
			return &ShortReadError{Offset: start, Got: n}
		}
		if needAck {
			if err := l.readAck(start); err != nil {
				return err
			}
		}
		verbose.Printf("read 0x%04x: %s", start, verbose.HexDump(data[:nbytes]))
		l.tick()
		start += nbytes
		data = data[nbytes:]
	}
	return nil
}

// WriteBlock writes a block of len(data) bytes at image offset start, in
// chunks of at most ChunkSize, verifying the radio's echo of every chunk.
// Errors from WriteBlock are recoverable: the caller prompts the operator to
// clear the radio's error state and restarts the upload from the first
// block.
func (l *Link) WriteBlock(start int, data []byte) error {
	needAck := len(data) <= l.AckThreshold
	echo := make([]byte, l.ChunkSize)
	for len(data) > 0 {
		nbytes := len(data)
		if nbytes > l.ChunkSize {
			nbytes = l.ChunkSize
		}
		if _, err := l.Port.Write(data[:nbytes]); err != nil {
			return err
		}
		n, err := l.readFull(echo[:nbytes])
		if err != nil {
			return err
		}
		if n != nbytes {
			return &EchoError{Offset: start, Got: n}
		}
		if needAck {
			if err := l.expectAck(start); err != nil {
				return err
			}
		}
		verbose.Printf("write 0x%04x: %s", start, verbose.HexDump(data[:nbytes]))
		l.tick()
		start += nbytes
		data = data[nbytes:]
		if len(data) > 0 && l.WriteDelay > 0 {
			time.Sleep(l.WriteDelay)
		}
	}
	return nil
}

// Drain discards pending input if the underlying port supports it. Called
// before upload prompts so stale bytes do not corrupt the echo check.
func (l *Link) Drain() {
	if r, ok := l.Port.(interface{ ResetInputBuffer() error }); ok {
		_ = r.ResetInputBuffer()
	}
}

// WaitEnter blocks until the operator presses Enter. Upload procedures pause
// here while the operator arms the radio.
func WaitEnter(in io.Reader, out io.Writer) {
	io.WriteString(out, "\nPress <Enter> to continue: ")
	r := bufio.NewReader(in)
	_, _ = r.ReadString('\n')
}
