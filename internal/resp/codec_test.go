package resp_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/mickamy/redikv/internal/resp"
)

func TestRoundTrip(t *testing.T) {
	cases := []resp.Frame{
		resp.NewSimpleString("PONG"),
		resp.NewError("ERR boom"),
		resp.NewInteger(1000),
		resp.NewBulkStringFromText("hello"),
		resp.NewBulkString([]byte{}),
		resp.NewNullBulkString(),
		resp.NewArray(),
		resp.NewArray(
			resp.NewInteger(1),
			resp.NewInteger(2),
			resp.NewBulkStringFromText("foobar"),
		),
		resp.NewArray(
			resp.NewArray(resp.NewBulkStringFromText("a")),
			resp.NewArray(resp.NewBulkStringFromText("b"), resp.NewNullBulkString()),
		),
	}

	for _, f := range cases {
		encoded := resp.Encode(f)
		decoded, n, err := resp.Decode(encoded)
		if err != nil {
			t.Fatalf("decode(encode(%+v)): %v", f, err)
		}
		if n != len(encoded) {
			t.Fatalf("decode consumed %d bytes, want %d", n, len(encoded))
		}
		if !framesEqual(f, decoded) {
			t.Fatalf("round trip mismatch: %+v != %+v", f, decoded)
		}
	}
}

func TestEdgeCases(t *testing.T) {
	if got := resp.Encode(resp.NewArray()); string(got) != "*0\r\n" {
		t.Errorf("empty array = %q, want *0\\r\\n", got)
	}
	if got := resp.Encode(resp.NewBulkString([]byte{})); string(got) != "$0\r\n\r\n" {
		t.Errorf("empty bulk string = %q, want $0\\r\\n\\r\\n", got)
	}
	if got := resp.Encode(resp.NewNullBulkString()); string(got) != "$-1\r\n" {
		t.Errorf("null bulk string = %q, want $-1\\r\\n", got)
	}

	if _, _, err := resp.Decode([]byte("$-2\r\n")); !errors.Is(err, resp.ErrInvalidFrame) {
		t.Errorf("length -2 should be rejected, got %v", err)
	}
	if _, _, err := resp.Decode([]byte("*-2\r\n")); !errors.Is(err, resp.ErrInvalidFrame) {
		t.Errorf("array count -2 should be rejected, got %v", err)
	}
}

func TestBulkStringWithEmbeddedDelimiters(t *testing.T) {
	payload := []byte("foo\r\nbar\r")
	f := resp.NewBulkString(payload)
	encoded := resp.Encode(f)

	decoded, n, err := resp.Decode(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if n != len(encoded) {
		t.Fatalf("consumed %d, want %d", n, len(encoded))
	}
	if !bytes.Equal(decoded.Bulk, payload) {
		t.Fatalf("payload mangled: got %q want %q", decoded.Bulk, payload)
	}
}

func TestIncompleteFrameRequiresMoreBytes(t *testing.T) {
	full := resp.Encode(resp.NewArray(resp.NewBulkStringFromText("GET"), resp.NewBulkStringFromText("foo")))

	for i := 0; i < len(full); i++ {
		_, _, err := resp.Decode(full[:i])
		if !errors.Is(err, resp.ErrIncomplete) {
			t.Fatalf("prefix of length %d: got %v, want ErrIncomplete", i, err)
		}
	}

	frame, n, err := resp.Decode(full)
	if err != nil {
		t.Fatalf("full buffer: %v", err)
	}
	if n != len(full) {
		t.Fatalf("consumed %d, want %d", n, len(full))
	}
	if len(frame.Elems) != 2 {
		t.Fatalf("want 2 elements, got %d", len(frame.Elems))
	}
}

func TestPipeliningLeavesTrailingBytesInBuffer(t *testing.T) {
	one := resp.Encode(resp.NewSimpleString("PONG"))
	two := resp.Encode(resp.NewBulkStringFromText("hello"))
	buf := append(append([]byte{}, one...), two...)

	first, n, err := resp.Decode(buf)
	if err != nil {
		t.Fatalf("decode first: %v", err)
	}
	if !framesEqual(first, resp.NewSimpleString("PONG")) {
		t.Fatalf("unexpected first frame: %+v", first)
	}

	second, n2, err := resp.Decode(buf[n:])
	if err != nil {
		t.Fatalf("decode second: %v", err)
	}
	if n+n2 != len(buf) {
		t.Fatalf("did not consume whole buffer: %d + %d != %d", n, n2, len(buf))
	}
	if !framesEqual(second, resp.NewBulkStringFromText("hello")) {
		t.Fatalf("unexpected second frame: %+v", second)
	}
}

func framesEqual(a, b resp.Frame) bool {
	if a.Kind != b.Kind || a.Str != b.Str || a.Int != b.Int {
		return false
	}
	if !bytes.Equal(a.Bulk, b.Bulk) {
		return false
	}
	if len(a.Elems) != len(b.Elems) {
		return false
	}
	for i := range a.Elems {
		if !framesEqual(a.Elems[i], b.Elems[i]) {
			return false
		}
	}
	return true
}
