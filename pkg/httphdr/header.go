// Package httphdr parses HTTP/1.x request headers: the Request-Line and the field list
// terminated by an empty line.
package httphdr

import "strings"

// RequestLine is Method SP Request-Target SP HTTP-Version.
type RequestLine struct {
	Method  string
	Target  string
	Version string
}

// Field is one header field. Folded continuation lines are already joined into Value.
type Field struct {
	Key   string
	Value string
}

// Header is a parsed request header. It is never modified after Parse returns it.
type Header struct {
	RequestLine
	fields []Field
	size   int

	host, port, path string
}

// Fields returns the fields in the order they were received.
func (h *Header) Fields() []Field {
	r := make([]Field, len(h.fields))
	copy(r, h.fields)
	return r
}

// Field returns the value of the first field whose key matches name case-insensitively.
func (h *Header) Field(name string) (value string, ok bool) {
	for i := range h.fields {
		if strings.EqualFold(h.fields[i].Key, name) {
			return h.fields[i].Value, true
		}
	}
	return "", false
}

// Size is the number of bytes the header occupied, including the terminating empty line.
func (h *Header) Size() int {
	return h.size
}

// Host is the host part of the Request-Target, empty for origin-form targets.
func (h *Header) Host() string {
	return h.host
}

// Port is the port part of the Request-Target, "80" when absent.
func (h *Header) Port() string {
	return h.port
}

// Path is what remains of the Request-Target after the host and port.
func (h *Header) Path() string {
	return h.path
}
