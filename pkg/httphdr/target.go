package httphdr

import "strings"

// SplitTarget splits a Request-Target into host, port and path. An "http://" prefix is dropped,
// the host is the following run of letters, digits, '-' and '.', the port is the digits after a
// ':' ("80" if there is no ':'), and the path is the remainder.
func SplitTarget(target string) (host, port, path string) {
	const scheme = "http://"
	i := 0
	if len(target) >= len(scheme) && strings.EqualFold(target[:len(scheme)], scheme) {
		i = len(scheme)
	}
	j := i
	for j < len(target) && isHostChar(target[j]) {
		j++
	}
	host = target[i:j]
	port = "80"
	if j < len(target) && target[j] == ':' {
		j++
		k := j
		for k < len(target) && isDigit(target[k]) {
			k++
		}
		port = target[j:k]
		j = k
	}
	path = target[j:]
	return
}
