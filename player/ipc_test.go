package player

import (
	"bufio"
	"encoding/json"
	"errors"
	"net"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

// fakeEngine answers each request line with whatever reply returns.
// A nil reply closes the connection without answering.
func fakeEngine(t *testing.T, reply func(req map[string]any) []string) string {
	dir, err := os.MkdirTemp("", "aether")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(dir) })

	path := filepath.Join(dir, "mpv.sock")
	ln, err := net.Listen("unix", path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func(conn net.Conn) {
				defer conn.Close()
				scanner := bufio.NewScanner(conn)
				for scanner.Scan() {
					var req map[string]any
					_ = json.Unmarshal(scanner.Bytes(), &req)
					lines := reply(req)
					if lines == nil {
						return
					}
					for _, line := range lines {
						_, _ = conn.Write([]byte(line + "\n"))
					}
				}
			}(conn)
		}
	}()

	return path
}

func echoID(req map[string]any, body string) string {
	id, _ := json.Marshal(req["request_id"])
	return `{"request_id":` + string(id) + `,` + body + `}`
}

func TestConn(t *testing.T) {
	Convey("Given a fake engine", t, func() {
		Convey("Successful replies carry data", func() {
			path := fakeEngine(t, func(req map[string]any) []string {
				return []string{echoID(req, `"data":42.5,"error":"success"`)}
			})
			conn := NewConn(path)
			defer conn.Close()

			resp, err := conn.Send("get_property", "duration")
			So(err, ShouldBeNil)
			So(resp.Data, ShouldEqual, 42.5)

			Convey("And the connection is reused", func() {
				v, err := FloatProperty(conn.GetProperty, "duration")
				So(err, ShouldBeNil)
				So(v.MustGet(), ShouldEqual, 42.5)
			})
		})

		Convey("Event lines are skipped", func() {
			path := fakeEngine(t, func(req map[string]any) []string {
				return []string{`{"event":"idle"}`, echoID(req, `"data":true,"error":"success"`)}
			})
			conn := NewConn(path)
			defer conn.Close()

			v, err := BoolProperty(conn.GetProperty, "pause")
			So(err, ShouldBeNil)
			So(v.MustGet(), ShouldBeTrue)
		})

		Convey("Engine errors become CommandError", func() {
			path := fakeEngine(t, func(req map[string]any) []string {
				return []string{echoID(req, `"error":"property unavailable"`)}
			})
			conn := NewConn(path)
			defer conn.Close()

			_, err := conn.Send("get_property", "time-pos")
			So(errors.Is(err, ErrCommandFailed), ShouldBeTrue)
			var cmdErr *CommandError
			So(errors.As(err, &cmdErr), ShouldBeTrue)
			So(cmdErr.Verb, ShouldEqual, "get_property")

			Convey("And GetProperty reports None", func() {
				v, err := conn.GetProperty("time-pos")
				So(err, ShouldBeNil)
				So(v.IsAbsent(), ShouldBeTrue)
			})
		})

		Convey("Status-style error replies are recognized", func() {
			path := fakeEngine(t, func(req map[string]any) []string {
				return []string{`{"status":"error","error":"bad verb"}`}
			})
			conn := NewConn(path)
			defer conn.Close()

			_, err := conn.Send("frobnicate")
			So(errors.Is(err, ErrCommandFailed), ShouldBeTrue)
		})

		Convey("Malformed replies are protocol errors", func() {
			path := fakeEngine(t, func(req map[string]any) []string {
				return []string{`not json`}
			})
			conn := NewConn(path)
			defer conn.Close()

			_, err := conn.Send("stop")
			So(errors.Is(err, ErrProtocol), ShouldBeTrue)
		})

		Convey("An absent reply is success without data", func() {
			path := fakeEngine(t, func(req map[string]any) []string { return nil })
			conn := NewConn(path)
			defer conn.Close()

			resp, err := conn.Send("stop")
			So(err, ShouldBeNil)
			So(resp.Data, ShouldBeNil)
		})
	})

	Convey("A missing socket is EngineUnavailable", t, func() {
		conn := NewConn(filepath.Join(os.TempDir(), "aether-missing.sock"))
		_, err := conn.Send("get_property", "pause")
		So(errors.Is(err, ErrEngineUnavailable), ShouldBeTrue)
	})
}
