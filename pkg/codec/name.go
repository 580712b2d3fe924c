package codec

// Charset maps between ASCII channel names and the radio's internal
// character indexes. Each model has its own table; Space is the index of the
// blank character and Filler is the index substituted for characters the
// radio cannot display.
type Charset struct {
	Chars  string
	Space  int
	Filler int
}

// NameLength is the fixed channel name width for all supported models.
const NameLength = 6

// EncodeChar converts one ASCII character to its internal index. Underscores
// become spaces, lowercase letters are folded to uppercase, and anything not
// in the character set maps to the filler index.
func (cs Charset) EncodeChar(c byte) byte {
	if c == '_' {
		c = ' '
	}
	if c >= 'a' && c <= 'z' {
		c -= 'a' - 'A'
	}
	for i := 0; i < len(cs.Chars); i++ {
		if cs.Chars[i] == c {
			return byte(i)
		}
	}
	return byte(cs.Filler)
}

// Encode converts a name to NameLength internal indexes, padding with the
// space index. A name of "-" means no name.
func (cs Charset) Encode(name string) [NameLength]byte {
	var out [NameLength]byte
	if name == "-" {
		name = ""
	}
	n := 0
	for ; n < NameLength && n < len(name); n++ {
		out[n] = cs.EncodeChar(name[n])
	}
	for ; n < NameLength; n++ {
		out[n] = byte(cs.Space)
	}
	return out
}

// Decode converts internal indexes back to ASCII. Internal spaces render as
// underscores; trailing spaces are stripped. Indexes outside the character
// set decode as spaces.
func (cs Charset) Decode(raw []byte) string {
	buf := make([]byte, 0, NameLength)
	for i := 0; i < NameLength && i < len(raw); i++ {
		c := byte(' ')
		if int(raw[i]) < len(cs.Chars) {
			c = cs.Chars[raw[i]]
		}
		if c == ' ' {
			c = '_'
		}
		buf = append(buf, c)
	}
	for len(buf) > 0 && buf[len(buf)-1] == '_' {
		buf = buf[:len(buf)-1]
	}
	return string(buf)
}
