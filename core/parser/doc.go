// Package parser turns raw connection bytes into complete, self-checked requests.
//
// A Buffer accumulates bytes read from the connection; a Context consumes them
// through the request line, header block and body states. Each Parse call reports
// one of three results:
//
//   - NeedMoreData: the buffer ends mid-request. Nothing buffered is lost; read
//     more bytes into the same Buffer and call Parse again. The body phase
//     resumes where it stopped.
//   - Complete: Request returns a request that passed request.SelfCheck.
//   - Invalid: the input is malformed or failed self-check. The error wraps one
//     of the package sentinels; the connection owner should answer 400 and close.
//
// Typical read loop:
//
//	buf := parser.NewBuffer(4096)
//	pc := parser.NewContext(parser.WithLogger(log))
//	for {
//		if _, err := buf.ReadOnce(conn); err != nil {
//			return err
//		}
//		for {
//			res, err := pc.Parse(buf, time.Now())
//			if res == parser.NeedMoreData {
//				break
//			}
//			if res == parser.Invalid {
//				return err
//			}
//			handle(pc.Request())
//			pc.Reset() // pipelined bytes stay in buf
//		}
//	}
//
// Only HTTP/1.0 and HTTP/1.1 are accepted. Chunked transfer coding is not
// supported; the body is read according to Content-Length only.
package parser
