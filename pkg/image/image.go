// Package image holds the in-memory copy of a radio's non-volatile memory.
// The buffer is the payload plus one trailing checksum byte; all channel,
// name, bank and scan records are views into it addressed by fixed offsets.
// Bit-packed fields are read and written through explicit bit accessors
// rather than overlaying structs on the buffer.
package image

import (
	"fmt"
	"os"
)

// Image is a radio memory dump. Exactly one workflow (download, upload or
// text import/export) owns an Image at a time.
type Image struct {
	data []byte // payload plus one checksum byte
	size int    // payload length
}

// New returns a zeroed image with the given payload size.
func New(size int) *Image {
	return &Image{
		data: make([]byte, size+1),
		size: size,
	}
}

// Size returns the payload length, not counting the checksum byte.
func (im *Image) Size() int { return im.size }

// Bytes returns the whole buffer including the trailing checksum byte.
func (im *Image) Bytes() []byte { return im.data }

// Payload returns the buffer without the checksum byte.
func (im *Image) Payload() []byte { return im.data[:im.size] }

// At returns the byte at offset i.
func (im *Image) At(i int) byte { return im.data[i] }

// SetAt stores b at offset i.
func (im *Image) SetAt(i int, b byte) { im.data[i] = b }

// Slice returns the n bytes starting at offset off as a view into the image.
func (im *Image) Slice(off, n int) []byte { return im.data[off : off+n] }

// Fill sets n bytes starting at off to b.
func (im *Image) Fill(off, n int, b byte) {
	for i := off; i < off+n; i++ {
		im.data[i] = b
	}
}

// Checksum computes the sum of all payload bytes modulo 256.
func (im *Image) Checksum() byte {
	var sum byte
	for _, b := range im.data[:im.size] {
		sum += b
	}
	return sum
}

// StoredChecksum returns the trailing checksum byte.
func (im *Image) StoredChecksum() byte { return im.data[im.size] }

// UpdateChecksum recomputes the checksum and stores it in the trailing byte.
func (im *Image) UpdateChecksum() { im.data[im.size] = im.Checksum() }

// VerifyChecksum reports whether the trailing byte matches the payload sum.
func (im *Image) VerifyChecksum() bool { return im.StoredChecksum() == im.Checksum() }

// HasPrefix reports whether the payload begins with the given ASCII tag.
// Model compatibility checks compare the first bytes of the dump against a
// fixed identity string.
func (im *Image) HasPrefix(tag string) bool {
	if len(tag) > im.size {
		return false
	}
	return string(im.data[:len(tag)]) == tag
}

// Bits extracts a sub-byte field: width bits starting at bit lsb (0 = least
// significant) of the byte at offset off.
func (im *Image) Bits(off int, lsb, width uint) byte {
	return (im.data[off] >> lsb) & (1<<width - 1)
}

// SetBits stores a sub-byte field, leaving the other bits of the byte
// untouched.
func (im *Image) SetBits(off int, lsb, width uint, v byte) {
	mask := byte(1<<width-1) << lsb
	im.data[off] = im.data[off]&^mask | (v << lsb & mask)
}

// U16BE reads a big-endian 16-bit word at offset off.
func (im *Image) U16BE(off int) uint16 {
	return uint16(im.data[off])<<8 | uint16(im.data[off+1])
}

// SetU16BE stores a big-endian 16-bit word at offset off.
func (im *Image) SetU16BE(off int, v uint16) {
	im.data[off] = byte(v >> 8)
	im.data[off+1] = byte(v)
}

// Load reads a binary image file. Files carry either the bare payload or the
// payload plus the checksum byte, depending on the model's save convention;
// withChecksum selects which length is required.
func Load(path string, size int, withChecksum bool) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	want := size
	if withChecksum {
		want = size + 1
	}
	if len(data) < want {
		return nil, fmt.Errorf("image %s: got %d bytes, want %d", path, len(data), want)
	}
	im := New(size)
	copy(im.data, data[:want])
	if !withChecksum {
		im.UpdateChecksum()
	}
	return im, nil
}

// Save writes the payload plus checksum byte to a file.
func (im *Image) Save(path string) error {
	im.UpdateChecksum()
	if err := os.WriteFile(path, im.data, 0644); err != nil {
		return fmt.Errorf("save image: %w", err)
	}
	return nil
}
