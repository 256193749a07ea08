package server

import (
	"strings"

	"github.com/simult/webdiag/pkg/httphdr"
)

// keepAlive decides whether the connection stays open after h is answered. HTTP/1.1 is persistent
// unless "Connection: close" is sent; other versions need "Connection: keep-alive".
func keepAlive(h *httphdr.Header) bool {
	conn, _ := h.Field("Connection")
	hasClose, hasKeepAlive := false, false
	for _, opt := range strings.Split(conn, ",") {
		switch strings.ToLower(strings.TrimSpace(opt)) {
		case "close":
			hasClose = true
		case "keep-alive":
			hasKeepAlive = true
		}
	}
	if hasClose {
		return false
	}
	return strings.EqualFold(h.Version, "HTTP/1.1") || hasKeepAlive
}
