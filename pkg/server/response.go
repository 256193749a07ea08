package server

import "strconv"

// appendResponse appends the fixed 200 response carrying body to dst.
func appendResponse(dst []byte, body string, keepAlive bool) []byte {
	connection := "close"
	if keepAlive {
		connection = "keep-alive"
	}
	dst = append(dst, "HTTP/1.1 200 OK\r\nContent-Length: "...)
	dst = strconv.AppendInt(dst, int64(len(body)), 10)
	dst = append(dst, "\r\nConnection: "...)
	dst = append(dst, connection...)
	dst = append(dst, "\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n"...)
	dst = append(dst, body...)
	return dst
}
