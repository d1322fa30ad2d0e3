package command

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mickamy/redikv/internal/resp"
	"github.com/mickamy/redikv/internal/store"
)

var (
	ErrInvalidFormat      = errors.New("command: invalid format")
	ErrInvalidOptionName  = errors.New("command: invalid option name")
	ErrInvalidOptionValue = errors.New("command: invalid option value")
	ErrInvalidInfoArg     = errors.New("command: invalid info argument")
	ErrUnimplemented      = errors.New("command: unimplemented")
)

// twoWordNames must be checked before oneWordNames so that a genuine
// "CONFIG GET" is not shadowed by a coincidental one-word prefix match.
var twoWordNames = []string{"CONFIG GET"}

var oneWordNames = []string{"PING", "ECHO", "SET", "GET", "KEYS", "INFO", "REPLCONF", "PSYNC"}

// matchCommandName resolves the recognized command a word vector
// dispatches to, and how many leading words belong to the name itself.
//
// Matching is a case-folded prefix match, not equality: this mirrors the
// source's own command-name detection, which joins the first two words
// into a candidate name whenever two or more words are present. Checking
// the two-word names first keeps an ordinary "SET key" (whose joined
// candidate "SET KEY" does not prefix-match "CONFIG GET") resolving to
// SET via the one-word fallback.
func matchCommandName(words []string) (name string, wordCount int, ok bool) {
	if len(words) == 0 {
		return "", 0, false
	}

	if len(words) >= 2 {
		combined := strings.ToUpper(words[0]) + " " + strings.ToUpper(words[1])
		for _, candidate := range twoWordNames {
			if strings.HasPrefix(combined, candidate) {
				return candidate, 2, true
			}
		}
	}

	first := strings.ToUpper(words[0])
	for _, candidate := range oneWordNames {
		if strings.HasPrefix(first, candidate) {
			return candidate, 1, true
		}
	}

	return "", 0, false
}

// Deps is the shared state a dispatched command may read or mutate.
type Deps struct {
	Store  *store.Store
	Config Config
	Info   Info
	Now    func() time.Time // defaults to time.Now when nil
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// Dispatch executes the command named by words against deps and returns
// the reply frame. Every error is represented as an Error frame: per the
// protocol's disposition table, no command-level failure is fatal to the
// connection.
func Dispatch(words []string, deps Deps) resp.Frame {
	name, wordCount, ok := matchCommandName(words)
	if !ok {
		return errorFrame(fmt.Errorf("%w: %s", ErrInvalidCommand, words[0]))
	}
	args := words[wordCount:]

	var frame resp.Frame
	switch name {
	case "PING":
		frame = dispatchPing()
	case "ECHO":
		frame = dispatchEcho(args)
	case "SET":
		frame = dispatchSet(args, deps)
	case "GET":
		frame = dispatchGet(args, deps)
	case "CONFIG GET":
		frame = dispatchConfigGet(args, deps)
	case "KEYS":
		frame = dispatchKeys(args, deps)
	case "INFO":
		frame = dispatchInfo(args, deps)
	case "REPLCONF":
		frame = dispatchReplconf()
	case "PSYNC":
		frame = dispatchPsync(deps)
	default:
		frame = errorFrame(fmt.Errorf("%w: %s", ErrInvalidCommand, name))
	}
	return frame
}

func errorFrame(err error) resp.Frame {
	return resp.NewError(err.Error())
}

func dispatchPing() resp.Frame {
	return resp.NewSimpleString("PONG")
}

func dispatchEcho(args []string) resp.Frame {
	if len(args) < 1 {
		return errorFrame(fmt.Errorf("%w: ECHO requires a value", ErrInvalidFormat))
	}
	return resp.NewBulkStringFromText(args[0])
}

func dispatchSet(args []string, deps Deps) resp.Frame {
	if len(args) < 2 {
		return errorFrame(fmt.Errorf("%w: SET requires a key and a value", ErrInvalidFormat))
	}
	key, value := args[0], args[1]

	opts, err := parseSetOptions(args[2:], deps.now())
	if err != nil {
		return errorFrame(err)
	}

	deps.Store.Set(key, store.Entry{Value: []byte(value), Expiration: opts.expiration})
	return resp.NewSimpleString("OK")
}

func dispatchGet(args []string, deps Deps) resp.Frame {
	if len(args) < 1 {
		return errorFrame(fmt.Errorf("%w: GET requires a key", ErrInvalidFormat))
	}

	entry, ok := deps.Store.Get(args[0], deps.now())
	if !ok {
		return resp.NewNullBulkString()
	}
	return resp.NewBulkString(entry.Value)
}

func dispatchConfigGet(args []string, deps Deps) resp.Frame {
	if len(args) < 1 {
		return errorFrame(fmt.Errorf("%w: CONFIG GET requires a parameter name", ErrInvalidFormat))
	}

	var value string
	switch args[0] {
	case "dir":
		value = deps.Config.Dir
	case "dbfilename":
		value = deps.Config.DBFilename
	default:
		return resp.NewNullBulkString()
	}

	return resp.NewArray(resp.NewBulkStringFromText(args[0]), resp.NewBulkStringFromText(value))
}

func dispatchKeys(args []string, deps Deps) resp.Frame {
	if len(args) < 1 {
		return errorFrame(fmt.Errorf("%w: KEYS requires a pattern", ErrInvalidFormat))
	}
	if args[0] != "*" {
		return errorFrame(fmt.Errorf("%w: KEYS only supports the * pattern", ErrUnimplemented))
	}

	keys := deps.Store.LiveKeys(deps.now())
	elems := make([]resp.Frame, len(keys))
	for i, k := range keys {
		elems[i] = resp.NewBulkStringFromText(k)
	}
	return resp.NewArray(elems...)
}

func dispatchInfo(args []string, deps Deps) resp.Frame {
	if len(args) < 1 {
		return errorFrame(fmt.Errorf("%w: section name is missing", ErrInvalidFormat))
	}
	if args[0] != "replication" {
		return errorFrame(fmt.Errorf("%w: section %q is not supported", ErrInvalidInfoArg, args[0]))
	}

	body := fmt.Sprintf("role:%s\nmaster_replid:%s\nmaster_repl_offset:%d",
		deps.Info.Role, deps.Info.ReplicationID, deps.Info.ReplicationOffset)
	return resp.NewBulkStringFromText(body)
}

// dispatchReplconf always acknowledges: REPLCONF is a handshake step a
// follower sends to its leader, and the leader side of that handshake has
// nothing more to validate within this server's scope.
func dispatchReplconf() resp.Frame {
	return resp.NewSimpleString("OK")
}

// dispatchPsync answers PSYNC with a FULLRESYNC acknowledgement so a
// follower's handshake can complete against a redikv leader; the RDB
// transfer that would normally follow is out of scope.
func dispatchPsync(deps Deps) resp.Frame {
	return resp.NewSimpleString(fmt.Sprintf("FULLRESYNC %s %d", deps.Info.ReplicationID, deps.Info.ReplicationOffset))
}
