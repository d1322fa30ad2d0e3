// Package command converts decoded RESP frames into store operations: a
// parser turning an Array frame into a word vector, and a dispatcher
// executing the matched command against shared state.
package command

import (
	"errors"
	"fmt"

	"github.com/mickamy/redikv/internal/resp"
)

// ErrEmptyCommand means the request frame was an array with no BulkString
// elements (including a zero-element array). Per
// the protocol's error disposition, this is fatal to the connection: there
// is no command name to reply about.
var ErrEmptyCommand = errors.New("command: empty command")

// ErrInvalidCommand means the request could not be resolved to a command:
// Parse returns it when the frame is not an Array at all, and Dispatch
// reports it when the name matches no recognized command.
var ErrInvalidCommand = errors.New("command: invalid command")

// Parse extracts the word vector a command is built from: every
// BulkString element of f, in order. Non-BulkString elements (integers,
// nested arrays) are silently skipped, matching the source's behavior of
// collecting only string-typed elements.
func Parse(f resp.Frame) ([]string, error) {
	if f.Kind != resp.ArrayKind {
		return nil, fmt.Errorf("%w: got frame kind %d", ErrInvalidCommand, f.Kind)
	}

	words := make([]string, 0, len(f.Elems))
	for _, elem := range f.Elems {
		if elem.Kind == resp.BulkStringKind {
			words = append(words, string(elem.Bulk))
		}
	}
	if len(words) == 0 {
		return nil, ErrEmptyCommand
	}
	return words, nil
}
