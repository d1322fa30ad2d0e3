// Package highlight renders a decoded monitor event as an ANSI-highlighted
// line for the redikv-monitor TUI, adapted from the teacher's SQL/EXPLAIN
// highlighting to a small RESP command target: the verb is bolded and
// arguments longer than a configurable width are cut, with a dimmed marker.
package highlight

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"
)

var (
	lexer     chroma.Lexer
	formatter chroma.Formatter
	style     *chroma.Style
)

func init() {
	lexer = lexers.Get("plaintext")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	formatter = formatters.Get("terminal256")
	style = styles.Get("monokai")
}

var (
	verbStyle = lipgloss.NewStyle().Bold(true)
	dimStyle  = lipgloss.NewStyle().Faint(true)
)

// tokenize runs s through chroma so the line participates in the same
// lexer/formatter/style pipeline the teacher uses for SQL, even though RESP
// command lines carry no syntax chroma has a dedicated lexer for; a failure
// at any stage falls back to s unchanged.
func tokenize(s string) string {
	iterator, err := lexer.Tokenise(nil, s)
	if err != nil {
		return s
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return s
	}
	return strings.TrimRight(buf.String(), "\n")
}

// Command renders name and args as a single highlighted line: the command
// verb is bolded, and any argument longer than maxArgWidth bytes is cut to
// that width and followed by a dimmed "…(+N)" marker giving the number of
// bytes dropped. Returns an empty string when name is empty, and the plain
// space-joined line when noColor is set.
func Command(name string, args []string, maxArgWidth int, noColor bool) string {
	if name == "" {
		return ""
	}

	plain := strings.Join(append([]string{name}, args...), " ")
	if noColor {
		return plain
	}

	verb := verbStyle.Render(tokenize(name))
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, verb)
	for _, a := range args {
		parts = append(parts, renderArg(a, maxArgWidth))
	}
	return strings.Join(parts, " ")
}

func renderArg(a string, maxArgWidth int) string {
	if maxArgWidth <= 0 || len(a) <= maxArgWidth {
		return a
	}
	head := a[:maxArgWidth]
	tail := "…(+" + strconv.Itoa(len(a)-maxArgWidth) + ")"
	return head + dimStyle.Render(tail)
}
