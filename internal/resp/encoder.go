package resp

import (
	"fmt"
	"strconv"
)

// Encode renders a Frame to its wire bytes. It is deterministic and
// round-trips with Decode for every well-formed Frame.
func Encode(f Frame) []byte {
	switch f.Kind {
	case SimpleStringKind:
		return []byte("+" + f.Str + "\r\n")
	case ErrorKind:
		return []byte("-" + f.Str + "\r\n")
	case IntegerKind:
		return []byte(":" + strconv.FormatInt(f.Int, 10) + "\r\n")
	case NullBulkStringKind:
		return []byte("$-1\r\n")
	case BulkStringKind:
		out := make([]byte, 0, len(f.Bulk)+16)
		out = append(out, '$')
		out = strconv.AppendInt(out, int64(len(f.Bulk)), 10)
		out = append(out, '\r', '\n')
		out = append(out, f.Bulk...)
		out = append(out, '\r', '\n')
		return out
	case ArrayKind:
		out := []byte("*" + strconv.Itoa(len(f.Elems)) + "\r\n")
		for _, elem := range f.Elems {
			out = append(out, Encode(elem)...)
		}
		return out
	default:
		panic(fmt.Sprintf("resp: encode: unknown frame kind %d", f.Kind))
	}
}
