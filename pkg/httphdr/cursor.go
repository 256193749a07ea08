package httphdr

// cursor walks a byte slice. Scanners advance pos and return the consumed run; an empty run
// means the scanner did not match and pos is left untouched.
type cursor struct {
	b   []byte
	pos int
}

func (c *cursor) eof() bool {
	return c.pos >= len(c.b)
}

func (c *cursor) peek() (byte, bool) {
	if c.pos >= len(c.b) {
		return 0, false
	}
	return c.b[c.pos], true
}

func (c *cursor) crlfAt(i int) bool {
	return i+1 < len(c.b) && c.b[i] == '\r' && c.b[i+1] == '\n'
}

func (c *cursor) crlf() bool {
	return c.crlfAt(c.pos)
}

// expect consumes ch if it is the next byte.
func (c *cursor) expect(ch byte) bool {
	if b, ok := c.peek(); ok && b == ch {
		c.pos++
		return true
	}
	return false
}

func (c *cursor) expectCRLF() bool {
	if c.crlf() {
		c.pos += 2
		return true
	}
	return false
}

func (c *cursor) run(accept func(byte) bool) []byte {
	start := c.pos
	for c.pos < len(c.b) && accept(c.b[c.pos]) {
		c.pos++
	}
	return c.b[start:c.pos]
}

// token reads a token: visible ASCII excluding separators.
func (c *cursor) token() []byte {
	return c.run(isTokenChar)
}

// text reads a run of visible ASCII, no controls or spaces.
func (c *cursor) text() []byte {
	return c.run(isTextChar)
}

// target reads a Request-Target: "*" or a run of URI characters.
func (c *cursor) target() []byte {
	if c.expect('*') {
		return c.b[c.pos-1 : c.pos]
	}
	return c.run(isURIChar)
}

// version reads "HTTP/" 1*DIGIT "." 1*DIGIT.
func (c *cursor) version() []byte {
	start := c.pos
	const prefix = "HTTP/"
	if len(c.b)-c.pos < len(prefix) || string(c.b[c.pos:c.pos+len(prefix)]) != prefix {
		return nil
	}
	c.pos += len(prefix)
	if len(c.run(isDigit)) == 0 || !c.expect('.') || len(c.run(isDigit)) == 0 {
		c.pos = start
		return nil
	}
	return c.b[start:c.pos]
}

// skipLWS skips spaces, tabs and folded line breaks (CRLF followed by a space or tab).
func (c *cursor) skipLWS() {
	for c.pos < len(c.b) {
		switch {
		case c.b[c.pos] == ' ' || c.b[c.pos] == '\t':
			c.pos++
		case c.crlf() && c.pos+2 < len(c.b) && (c.b[c.pos+2] == ' ' || c.b[c.pos+2] == '\t'):
			c.pos += 3
		default:
			return
		}
	}
}

const separators = "()<>@,;:\\\"/[]?={} \t"

var (
	tokenTable [256]bool
	uriTable   [256]bool
)

func init() {
	for ch := 33; ch <= 127; ch++ {
		tokenTable[ch] = true
	}
	for i := 0; i < len(separators); i++ {
		tokenTable[separators[i]] = false
	}
	for ch := '0'; ch <= '9'; ch++ {
		uriTable[ch] = true
	}
	for ch := 'a'; ch <= 'z'; ch++ {
		uriTable[ch] = true
		uriTable[ch-'a'+'A'] = true
	}
	for _, ch := range []byte("-._~:/?#[]@!$&'()*+,;=%") {
		uriTable[ch] = true
	}
}

func isTokenChar(b byte) bool {
	return tokenTable[b]
}

func isTextChar(b byte) bool {
	return b > ' ' && b < 127
}

func isURIChar(b byte) bool {
	return uriTable[b]
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isHostChar(b byte) bool {
	return isDigit(b) || (b|0x20 >= 'a' && b|0x20 <= 'z') || b == '-' || b == '.'
}
