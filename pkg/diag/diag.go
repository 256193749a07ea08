// Package diag renders the diagnostic page answered to every request.
package diag

import (
	"html"
	"strings"
)

// Unresolved is shown in place of the IP when the host could not be resolved.
const Unresolved = "failed to resolve IP"

// Body echoes the raw request and the target it resolved to. An empty ip renders as Unresolved.
func Body(raw []byte, host, ip, port, path string) string {
	if ip == "" {
		ip = Unresolved
	}
	var sb strings.Builder
	sb.Grow(len(raw) + len(host) + len(path) + 256)
	sb.WriteString("<!doctype html><html><body><pre>")
	sb.WriteString(html.EscapeString(string(raw)))
	sb.WriteString("</pre><pre style='color: red; margin: 1em;'>HOSTIP = ")
	sb.WriteString(html.EscapeString(host))
	sb.WriteString(" (")
	sb.WriteString(html.EscapeString(ip))
	sb.WriteString(")\nPORT   = ")
	sb.WriteString(html.EscapeString(port))
	sb.WriteString("\nPATH   = ")
	sb.WriteString(html.EscapeString(path))
	sb.WriteString("</pre></body></html>")
	return sb.String()
}
