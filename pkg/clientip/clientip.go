package clientip

import (
	"net"
	"strings"

	"github.com/dmitrymomot/tinyhttp/core/request"
)

// headers are checked in priority order before falling back to the peer address.
var headers = []string{
	"CF-Connecting-IP",
	"DO-Connecting-IP",
	"X-Forwarded-For",
	"X-Real-IP",
}

// GetIP returns the client address for req. Proxy headers win over the peer
// address; X-Forwarded-For contributes its leftmost entry. When nothing valid
// is found the raw remote address is returned.
func GetIP(req *request.Request) string {
	for _, name := range headers {
		value := req.HeaderFold(name)
		if value == "" {
			continue
		}
		if name == "X-Forwarded-For" {
			value, _, _ = strings.Cut(value, ",")
		}
		if ip := normalize(value); ip != "" {
			return ip
		}
	}

	remote := req.RemoteAddr()
	host, _, err := net.SplitHostPort(remote)
	if err != nil {
		host = remote
	}
	if ip := normalize(host); ip != "" {
		return ip
	}
	return remote
}

// normalize parses s as an IP and returns its canonical form, or "" when s is
// not a usable client address.
func normalize(s string) string {
	ip := net.ParseIP(strings.TrimSpace(s))
	if ip == nil || ip.IsUnspecified() {
		return ""
	}
	return ip.String()
}
