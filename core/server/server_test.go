package server_test

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tinyhttp/core/chain"
	"github.com/dmitrymomot/tinyhttp/core/request"
	"github.com/dmitrymomot/tinyhttp/core/response"
	"github.com/dmitrymomot/tinyhttp/core/router"
	"github.com/dmitrymomot/tinyhttp/core/server"
)

func newRequest(t *testing.T, method, path string) *request.Request {
	t.Helper()
	req := request.New()
	require.NoError(t, req.SetMethod(method))
	require.NoError(t, req.SetVersion(request.Version11))
	req.SetPath(path)
	return req
}

func newTestRouter() *router.Router {
	r := router.New()
	r.Get("/hello", func(_ *request.Request, resp *response.Response) {
		resp.String(response.StatusOK, "hello")
	})
	r.Get("/users/:id", func(req *request.Request, resp *response.Response) {
		resp.String(response.StatusOK, "user "+req.PathParameter("id"))
	})
	r.Post("/echo", func(req *request.Request, resp *response.Response) {
		resp.SetBody(req.Body())
	})
	r.Get("/panic", func(*request.Request, *response.Response) {
		panic("boom")
	})
	return r
}

func TestServer_Dispatch(t *testing.T) {
	t.Parallel()

	r := newTestRouter()

	t.Run("routes to handler", func(t *testing.T) {
		t.Parallel()

		srv := server.New(":0")
		resp := srv.Dispatch(newRequest(t, "GET", "/users/42"), r)

		assert.Equal(t, response.StatusOK, resp.StatusCode())
		assert.Equal(t, "user 42", string(resp.Body()))
	})

	t.Run("unset status becomes 200", func(t *testing.T) {
		t.Parallel()

		srv := server.New(":0")
		req := newRequest(t, "POST", "/echo")
		req.SetBody([]byte("ping"))

		resp := srv.Dispatch(req, r)
		assert.Equal(t, response.StatusOK, resp.StatusCode())
		assert.Equal(t, "OK", resp.StatusMessage())
		assert.Equal(t, "ping", string(resp.Body()))
	})

	t.Run("no route answers 404", func(t *testing.T) {
		t.Parallel()

		srv := server.New(":0")
		resp := srv.Dispatch(newRequest(t, "GET", "/missing"), r)
		assert.Equal(t, response.StatusNotFound, resp.StatusCode())
	})

	t.Run("rejected request skips routing", func(t *testing.T) {
		t.Parallel()

		var routed bool
		rr := router.New()
		rr.Get("/hello", func(*request.Request, *response.Response) { routed = true })

		srv := server.New(":0", server.WithMiddleware(chain.Funcs{
			BeforeFunc: func(req *request.Request) { req.Reject(429, "slow down") },
		}))

		resp := srv.Dispatch(newRequest(t, "GET", "/hello"), rr)

		assert.False(t, routed)
		assert.Equal(t, response.StatusTooManyRequests, resp.StatusCode())

		var body map[string]any
		require.NoError(t, json.Unmarshal(resp.Body(), &body))
		assert.Equal(t, "slow down", body["message"])
	})

	t.Run("rejection without reason keeps default message", func(t *testing.T) {
		t.Parallel()

		srv := server.New(":0", server.WithMiddleware(chain.Funcs{
			BeforeFunc: func(req *request.Request) { req.Reject(403, "") },
		}))

		resp := srv.Dispatch(newRequest(t, "GET", "/hello"), r)
		assert.Equal(t, response.StatusForbidden, resp.StatusCode())
		assert.Contains(t, string(resp.Body()), "Forbidden")
	})

	t.Run("panic becomes 500 and after hooks still run", func(t *testing.T) {
		t.Parallel()

		var after bool
		srv := server.New(":0", server.WithMiddleware(chain.Funcs{
			AfterFunc: func(*response.Response) { after = true },
		}))

		resp := srv.Dispatch(newRequest(t, "GET", "/panic"), r)
		assert.Equal(t, response.StatusInternalServerError, resp.StatusCode())
		assert.True(t, after)
	})

	t.Run("panic in after hook becomes 500", func(t *testing.T) {
		t.Parallel()

		srv := server.New(":0", server.WithMiddleware(chain.Funcs{
			AfterFunc: func(*response.Response) { panic("after") },
		}))

		resp := srv.Dispatch(newRequest(t, "GET", "/hello"), r)
		assert.Equal(t, response.StatusInternalServerError, resp.StatusCode())
	})

	t.Run("middleware order", func(t *testing.T) {
		t.Parallel()

		var order []string
		mw := func(name string) chain.Middleware {
			return chain.Funcs{
				BeforeFunc: func(*request.Request) { order = append(order, "before "+name) },
				AfterFunc:  func(*response.Response) { order = append(order, "after "+name) },
			}
		}

		srv := server.New(":0", server.WithMiddleware(mw("a"), mw("b")))
		srv.Dispatch(newRequest(t, "GET", "/hello"), r)

		assert.Equal(t, []string{"before a", "before b", "after b", "after a"}, order)
	})
}

// startServer serves r on a loopback listener until the test ends.
func startServer(t *testing.T, r *router.Router, opts ...server.Option) *server.Server {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := server.New(ln.Addr().String(), append([]server.Option{server.WithShutdownTimeout(2 * time.Second)}, opts...)...)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln, r) }()

	require.Eventually(t, srv.Running, time.Second, 5*time.Millisecond)

	t.Cleanup(func() {
		cancel()
		_ = srv.Stop()
		<-done
	})
	return srv
}

func dial(t *testing.T, srv *server.Server) (net.Conn, *bufio.Reader) {
	t.Helper()
	conn, err := net.DialTimeout("tcp", srv.Addr(), time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, conn.SetDeadline(time.Now().Add(5*time.Second)))
	return conn, bufio.NewReader(conn)
}

func readResponse(t *testing.T, br *bufio.Reader) (*http.Response, string) {
	t.Helper()
	resp, err := http.ReadResponse(br, nil)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	return resp, string(body)
}

func TestServer_Serve(t *testing.T) {
	t.Parallel()

	t.Run("keep-alive connection serves several requests", func(t *testing.T) {
		t.Parallel()

		srv := startServer(t, newTestRouter())
		conn, br := dial(t, srv)

		_, err := io.WriteString(conn, "GET /hello HTTP/1.1\r\nHost: test\r\n\r\n")
		require.NoError(t, err)
		resp, body := readResponse(t, br)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "hello", body)
		assert.False(t, resp.Close)

		_, err = io.WriteString(conn, "GET /users/7 HTTP/1.1\r\nHost: test\r\n\r\n")
		require.NoError(t, err)
		resp, body = readResponse(t, br)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "user 7", body)
	})

	t.Run("pipelined requests answered in order", func(t *testing.T) {
		t.Parallel()

		srv := startServer(t, newTestRouter())
		conn, br := dial(t, srv)

		_, err := io.WriteString(conn,
			"POST /echo HTTP/1.1\r\nContent-Type: application/json\r\nContent-Length: 3\r\n\r\n\"1\""+
				"GET /missing HTTP/1.1\r\n\r\n"+
				"GET /hello HTTP/1.1\r\n\r\n")
		require.NoError(t, err)

		resp, body := readResponse(t, br)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, `"1"`, body)

		resp, _ = readResponse(t, br)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		resp, body = readResponse(t, br)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "hello", body)
	})

	t.Run("http/1.0 closes after response", func(t *testing.T) {
		t.Parallel()

		srv := startServer(t, newTestRouter())
		conn, br := dial(t, srv)

		_, err := io.WriteString(conn, "GET /hello HTTP/1.0\r\n\r\n")
		require.NoError(t, err)

		resp, body := readResponse(t, br)
		assert.Equal(t, "HTTP/1.0", resp.Proto)
		assert.True(t, resp.Close)
		assert.Equal(t, "hello", body)

		_, err = br.ReadByte()
		assert.ErrorIs(t, err, io.EOF)
	})

	t.Run("malformed request answers 400 and closes", func(t *testing.T) {
		t.Parallel()

		srv := startServer(t, newTestRouter())
		conn, br := dial(t, srv)

		_, err := io.WriteString(conn, "BREW /pot HTTP/1.1\r\n\r\n")
		require.NoError(t, err)

		resp, _ := readResponse(t, br)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.True(t, resp.Close)

		_, err = br.ReadByte()
		assert.ErrorIs(t, err, io.EOF)
	})

	t.Run("oversized body answers 413", func(t *testing.T) {
		t.Parallel()

		srv := startServer(t, newTestRouter(), server.WithMaxBodyBytes(4))
		conn, br := dial(t, srv)

		_, err := io.WriteString(conn, "POST /echo HTTP/1.1\r\nContent-Type: application/json\r\nContent-Length: 10\r\n\r\n")
		require.NoError(t, err)

		resp, _ := readResponse(t, br)
		assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
	})

	t.Run("request split across writes", func(t *testing.T) {
		t.Parallel()

		srv := startServer(t, newTestRouter())
		conn, br := dial(t, srv)

		raw := "POST /echo HTTP/1.1\r\nContent-Type: application/json\r\nContent-Length: 7\r\n\r\n\"hello\""
		for _, part := range []string{raw[:7], raw[7:30], raw[30:len(raw)-2], raw[len(raw)-2:]} {
			_, err := io.WriteString(conn, part)
			require.NoError(t, err)
			time.Sleep(5 * time.Millisecond)
		}

		resp, body := readResponse(t, br)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, `"hello"`, body)
	})

	t.Run("concurrent clients", func(t *testing.T) {
		t.Parallel()

		srv := startServer(t, newTestRouter())

		var wg sync.WaitGroup
		for range 20 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				conn, err := net.DialTimeout("tcp", srv.Addr(), time.Second)
				if !assert.NoError(t, err) {
					return
				}
				defer conn.Close()
				_ = conn.SetDeadline(time.Now().Add(5 * time.Second))

				_, err = io.WriteString(conn, "GET /hello HTTP/1.1\r\nConnection: close\r\n\r\n")
				if !assert.NoError(t, err) {
					return
				}
				resp, err := http.ReadResponse(bufio.NewReader(conn), nil)
				if !assert.NoError(t, err) {
					return
				}
				defer resp.Body.Close()
				assert.Equal(t, http.StatusOK, resp.StatusCode)
			}()
		}
		wg.Wait()
	})
}

func TestServer_Lifecycle(t *testing.T) {
	t.Parallel()

	t.Run("missing router", func(t *testing.T) {
		t.Parallel()

		srv := server.New("127.0.0.1:0")
		err := srv.Start(context.Background(), nil)
		require.ErrorIs(t, err, server.ErrMissingRouter)
	})

	t.Run("canceled context before serving", func(t *testing.T) {
		t.Parallel()

		ln, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		srv := server.New(ln.Addr().String())
		err = srv.Serve(ctx, ln, router.New())
		require.ErrorIs(t, err, context.Canceled)
		assert.False(t, srv.Running())
	})

	t.Run("already running", func(t *testing.T) {
		t.Parallel()

		srv := startServer(t, newTestRouter())

		ln, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)

		err = srv.Serve(context.Background(), ln, router.New())
		require.ErrorIs(t, err, server.ErrServerAlreadyRunning)
	})

	t.Run("stop closes idle connections", func(t *testing.T) {
		t.Parallel()

		srv := startServer(t, newTestRouter())
		conn, br := dial(t, srv)

		_, err := io.WriteString(conn, "GET /hello HTTP/1.1\r\n\r\n")
		require.NoError(t, err)
		readResponse(t, br)

		require.NoError(t, srv.Stop())
		assert.False(t, srv.Running())

		_, err = br.ReadByte()
		assert.Error(t, err)

		_, err = net.DialTimeout("tcp", conn.RemoteAddr().String(), 200*time.Millisecond)
		assert.Error(t, err)
	})

	t.Run("cancel while serving releases the address", func(t *testing.T) {
		t.Parallel()

		addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(getFreePort(t)))

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- server.Run(ctx, addr, newTestRouter()) }()

		var conn net.Conn
		require.Eventually(t, func() bool {
			c, err := net.DialTimeout("tcp", addr, 100*time.Millisecond)
			if err != nil {
				return false
			}
			conn = c
			return true
		}, 2*time.Second, 10*time.Millisecond)
		t.Cleanup(func() { _ = conn.Close() })
		br := bufio.NewReader(conn)
		_, err := io.WriteString(conn, "GET /hello HTTP/1.1\r\n\r\n")
		require.NoError(t, err)
		readResponse(t, br)

		cancel()

		select {
		case err := <-done:
			require.ErrorIs(t, err, context.Canceled)
		case <-time.After(3 * time.Second):
			t.Fatal("run did not return")
		}

		_, err = br.ReadByte()
		assert.Error(t, err, "idle connection must be closed")

		if c, err := net.DialTimeout("tcp", addr, 200*time.Millisecond); err == nil {
			defer c.Close()
			_ = c.SetDeadline(time.Now().Add(time.Second))
			_, _ = io.WriteString(c, "GET /hello HTTP/1.0\r\n\r\n")
			_, err = bufio.NewReader(c).ReadByte()
			assert.Error(t, err, "no server may answer after shutdown")
		}
	})

	t.Run("start returns stopped on cancel", func(t *testing.T) {
		t.Parallel()

		srv := server.New(net.JoinHostPort("127.0.0.1", strconv.Itoa(getFreePort(t))))

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- srv.Start(ctx, newTestRouter()) }()

		require.Eventually(t, srv.Running, time.Second, 5*time.Millisecond)
		cancel()

		select {
		case err := <-done:
			require.ErrorIs(t, err, context.Canceled)
		case <-time.After(3 * time.Second):
			t.Fatal("start did not return")
		}
		assert.False(t, srv.Running())
	})

	t.Run("stop right after a response does not wait for idle timeout", func(t *testing.T) {
		t.Parallel()

		for range 50 {
			srv := startServer(t, newTestRouter(), server.WithIdleTimeout(time.Minute))
			conn, br := dial(t, srv)

			_, err := io.WriteString(conn, "GET /hello HTTP/1.1\r\n\r\n")
			require.NoError(t, err)
			readResponse(t, br)

			start := time.Now()
			require.NoError(t, srv.Stop())
			assert.Less(t, time.Since(start), time.Second)
		}
	})

	t.Run("stop when not running", func(t *testing.T) {
		t.Parallel()

		assert.NoError(t, server.New(":0").Stop())
	})

	t.Run("run stops on context cancel", func(t *testing.T) {
		t.Parallel()

		addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(getFreePort(t)))
		srv := server.New(addr, server.WithShutdownTimeout(time.Second))

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- srv.Run(ctx, newTestRouter())() }()

		require.Eventually(t, srv.Running, time.Second, 5*time.Millisecond)
		cancel()

		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(3 * time.Second):
			t.Fatal("run did not return")
		}
		assert.False(t, srv.Running())
	})
}
