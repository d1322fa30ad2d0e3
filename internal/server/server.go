// Package server runs the TCP accept loop: one goroutine per connection,
// each running an independent read/decode/dispatch/reply cycle against
// shared store state.
package server

import (
	"context"
	"errors"
	"log"
	"net"
	"time"

	"github.com/mickamy/redikv/internal/command"
	"github.com/mickamy/redikv/internal/resp"
	"github.com/mickamy/redikv/internal/store"
)

// EventSink receives a notification for every dispatched command, used
// to feed the monitor broker. A nil EventSink is a valid no-op.
type EventSink interface {
	Publish(remoteAddr string, words []string, elapsed time.Duration)
}

// Server owns the shared Store and the configuration/identity commands
// are dispatched against, and accepts connections on a listener.
type Server struct {
	Store  *store.Store
	Config command.Config
	Info   command.Info
	Events EventSink
}

// New constructs a Server ready to Serve once a listener is available.
func New(s *store.Store, cfg command.Config, info command.Info) *Server {
	return &Server{Store: s, Config: cfg, Info: info}
}

// Serve accepts connections from ln until ctx is cancelled or Accept
// fails. It blocks until the listener is closed.
func (srv *Server) Serve(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			return err
		}
		go srv.handleConn(conn)
	}
}

// handleConn runs the read/decode/dispatch/reply loop for one
// connection until the peer closes it or a fatal frame error occurs.
func (srv *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	remote := conn.RemoteAddr().String()
	reader := resp.NewConnectionReader(conn)

	for {
		frame, err := reader.ReadFrame()
		if err != nil {
			if errors.Is(err, resp.ErrClosed) {
				return
			}
			log.Printf("server: %s: frame error: %v", remote, err)
			return
		}

		start := time.Now()
		words, err := command.Parse(frame)
		if err != nil {
			if errors.Is(err, command.ErrEmptyCommand) {
				return
			}
			// Non-array request: malformed at the command layer, not the
			// wire layer, so reply and keep the connection per the
			// dispatcher's own error disposition.
			srv.reply(conn, remote, resp.NewError(err.Error()))
			continue
		}

		reply := command.Dispatch(words, command.Deps{Store: srv.Store, Config: srv.Config, Info: srv.Info})
		if srv.Events != nil {
			srv.Events.Publish(remote, words, time.Since(start))
		}
		if !srv.reply(conn, remote, reply) {
			return
		}
	}
}

func (srv *Server) reply(conn net.Conn, remote string, frame resp.Frame) bool {
	if _, err := conn.Write(resp.Encode(frame)); err != nil {
		log.Printf("server: %s: write error: %v", remote, err)
		return false
	}
	return true
}
