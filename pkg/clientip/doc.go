// Package clientip extracts real client IP addresses from parsed requests.
//
// This package handles various proxy headers in priority order to determine the
// actual client IP address, which is essential for rate limiting and security
// logging behind proxies, load balancers, or CDNs.
//
// # Header Priority
//
// The package checks headers in this specific order:
//  1. CF-Connecting-IP (Cloudflare)
//  2. DO-Connecting-IP (DigitalOcean)
//  3. X-Forwarded-For (leftmost entry)
//  4. X-Real-IP (nginx and other proxies)
//  5. RemoteAddr (direct connection)
//
// Header names are matched case-insensitively.
//
// # Usage
//
//	r.Get("/whoami", func(req *request.Request, resp *response.Response) {
//		resp.String(response.StatusOK, clientip.GetIP(req))
//	})
//
// # Validation
//
// All IP addresses are validated and normalized:
//   - Invalid IP strings are skipped
//   - IPv6 addresses are supported, IPv4-mapped addresses collapse to IPv4
//   - The unspecified addresses 0.0.0.0 and :: are rejected
//   - If no valid IP can be determined, the raw RemoteAddr is returned
//
// Only trust proxy headers when the server sits behind a proxy that
// overwrites them; a direct client can set any of them.
package clientip
