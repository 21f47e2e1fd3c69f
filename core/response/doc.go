// Package response provides the Response object handlers populate and the
// transport serializes.
//
// A Response starts with status StatusUnknown; the server turns an unset
// status into 200 before writing. The connection flag defaults to close unless
// the request asked for keep-alive.
//
//	func show(req *request.Request, resp *response.Response) {
//		if req.PathParameter("id") == "" {
//			resp.Error(response.ErrNotFound)
//			return
//		}
//		_ = resp.JSON(response.StatusOK, map[string]string{"id": req.PathParameter("id")})
//	}
//
// WriteTo produces the wire form:
//
//	HTTP/1.1 200 OK\r\n
//	Connection: Keep-Alive\r\n
//	Content-Type: application/json; charset=utf-8\r\n
//	Content-Length: 10\r\n
//	\r\n
//	{"id":"1"}
package response
