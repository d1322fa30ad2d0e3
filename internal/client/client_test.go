package client_test

import (
	"context"
	"net"
	"testing"

	"github.com/mickamy/redikv/internal/client"
	"github.com/mickamy/redikv/internal/command"
	"github.com/mickamy/redikv/internal/resp"
	"github.com/mickamy/redikv/internal/server"
	"github.com/mickamy/redikv/internal/store"
)

func TestClientDoPing(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	srv := server.New(store.New(), command.Config{}, command.Info{Role: command.RoleLeader})
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go srv.Serve(ctx, ln)

	c, err := client.Dial(ln.Addr().String())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer c.Close()

	reply, err := c.Do("PING")
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if reply.Kind != resp.SimpleStringKind || reply.Str != "PONG" {
		t.Fatalf("got %+v", reply)
	}
}

func TestClientDoSetGet(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	srv := server.New(store.New(), command.Config{}, command.Info{Role: command.RoleLeader})
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go srv.Serve(ctx, ln)

	c, err := client.Dial(ln.Addr().String())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer c.Close()

	if _, err := c.Do("SET", "foo", "bar"); err != nil {
		t.Fatalf("SET: %v", err)
	}
	reply, err := c.Do("GET", "foo")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	if reply.Kind != resp.BulkStringKind || string(reply.Bulk) != "bar" {
		t.Fatalf("got %+v", reply)
	}
}
