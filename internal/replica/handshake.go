// Package replica implements the follower side of the handshake a
// follower performs against its leader on startup.
package replica

import (
	"fmt"
	"log"
	"net"
	"strconv"

	"github.com/mickamy/redikv/internal/resp"
)

// Handshake connects to the leader at addr and runs the fixed four-step
// sequence: PING, REPLCONF listening-port, REPLCONF capa psync2, and
// PSYNC ? -1, waiting for a reply after each before sending the next.
// Replies are validated loosely; a mismatch is logged but does not fail
// the handshake, since post-handshake replication is out of scope.
func Handshake(addr string, listeningPort int) error {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("replica: dialing leader %s: %w", addr, err)
	}
	defer conn.Close()

	reader := resp.NewConnectionReader(conn)

	steps := [][]string{
		{"PING"},
		{"REPLCONF", "listening-port", strconv.Itoa(listeningPort)},
		{"REPLCONF", "capa", "psync2"},
		{"PSYNC", "?", "-1"},
	}

	for _, words := range steps {
		if err := sendCommand(conn, words); err != nil {
			return fmt.Errorf("replica: sending %v: %w", words, err)
		}

		reply, err := reader.ReadFrame()
		if err != nil {
			return fmt.Errorf("replica: reading reply to %v: %w", words, err)
		}
		if reply.Kind == resp.ErrorKind {
			log.Printf("replica: leader rejected %v: %s", words, reply.Str)
		}
	}

	return nil
}

func sendCommand(conn net.Conn, words []string) error {
	elems := make([]resp.Frame, len(words))
	for i, w := range words {
		elems[i] = resp.NewBulkStringFromText(w)
	}
	_, err := conn.Write(resp.Encode(resp.NewArray(elems...)))
	return err
}
