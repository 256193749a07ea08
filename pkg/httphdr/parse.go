package httphdr

// Parse parses a request header from the start of b. b must contain the whole header block up to
// and including the empty line; bytes after it are ignored. Either a complete Header is returned
// or a *ParseError.
func Parse(b []byte) (h *Header, err error) {
	c := &cursor{b: b}
	rl, err := parseRequestLine(c)
	if err != nil {
		return nil, err
	}
	fields, err := parseFields(c)
	if err != nil {
		return nil, err
	}
	h = &Header{
		RequestLine: rl,
		fields:      fields,
		size:        c.pos,
	}
	h.host, h.port, h.path = SplitTarget(rl.Target)
	return h, nil
}

func parseRequestLine(c *cursor) (rl RequestLine, err error) {
	method := c.text()
	if len(method) == 0 {
		return rl, newParseError(RuleBasic, c.pos, "missing method token")
	}
	if !c.expect(' ') {
		return rl, newParseError(RuleRequestLine, c.pos, "missing SP after method")
	}
	target := c.target()
	if len(target) == 0 {
		return rl, newParseError(RuleRequestLine, c.pos, "missing request-target")
	}
	if !c.expect(' ') {
		return rl, newParseError(RuleRequestLine, c.pos, "missing SP after request-target")
	}
	version := c.version()
	if len(version) == 0 {
		return rl, newParseError(RuleVersion, c.pos, "malformed HTTP-Version")
	}
	if !c.expectCRLF() {
		return rl, newParseError(RuleRequestLine, c.pos, "missing CRLF")
	}
	rl.Method, rl.Target, rl.Version = string(method), string(target), string(version)
	return rl, nil
}

func parseFields(c *cursor) (fields []Field, err error) {
	fields = make([]Field, 0, 16)
	for !c.crlf() {
		if c.eof() {
			return nil, newParseError(RuleField, c.pos, "missing empty line")
		}
		var f Field
		f, err = parseField(c)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	c.pos += 2
	return fields, nil
}

func parseField(c *cursor) (f Field, err error) {
	key := c.token()
	if len(key) == 0 {
		return f, newParseError(RuleBasic, c.pos, "missing field-name token")
	}
	if !c.expect(':') {
		return f, newParseError(RuleField, c.pos, "missing colon")
	}
	value, ok := parseFieldValue(c)
	if !ok {
		return f, newParseError(RuleBasic, c.pos, "missing field-value text")
	}
	if !c.expectCRLF() {
		return f, newParseError(RuleField, c.pos, "missing CRLF")
	}
	f.Key, f.Value = string(key), value
	return f, nil
}

// parseFieldValue joins the text runs of a field value, including folded lines, with single spaces.
func parseFieldValue(c *cursor) (string, bool) {
	var value []byte
	for {
		c.skipLWS()
		t := c.text()
		if len(t) == 0 {
			break
		}
		if value != nil {
			value = append(value, ' ')
		}
		value = append(value, t...)
	}
	return string(value), value != nil
}
