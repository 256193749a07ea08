package server

import "testing"

func TestAppendResponse(t *testing.T) {
	tests := []struct {
		body      string
		keepAlive bool
		want      string
	}{
		{"hi", true, "HTTP/1.1 200 OK\r\nContent-Length: 2\r\nConnection: keep-alive\r\nContent-Type: text/html; charset=UTF-8\r\n\r\nhi"},
		{"", false, "HTTP/1.1 200 OK\r\nContent-Length: 0\r\nConnection: close\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n"},
		{"ü", true, "HTTP/1.1 200 OK\r\nContent-Length: 2\r\nConnection: keep-alive\r\nContent-Type: text/html; charset=UTF-8\r\n\r\nü"},
	}
	for _, tt := range tests {
		if got := string(appendResponse(nil, tt.body, tt.keepAlive)); got != tt.want {
			t.Errorf("appendResponse(%q, %v) = %q, want %q", tt.body, tt.keepAlive, got, tt.want)
		}
	}
}
