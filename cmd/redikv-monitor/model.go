package main

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/mickamy/redikv/clipboard"
	"github.com/mickamy/redikv/internal/highlight"
)

// event is one parsed line of the monitor protocol: "<unix-milli>
// <remote-addr> <command> <argc> <elapsed-micros>".
type event struct {
	at         time.Time
	remoteAddr string
	command    string
	argc       int
	elapsed    time.Duration
}

func parseEvent(line string) (event, bool) {
	fields := strings.Fields(line)
	if len(fields) != 5 {
		return event{}, false
	}

	ms, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return event{}, false
	}
	argc, err := strconv.Atoi(fields[3])
	if err != nil {
		return event{}, false
	}
	micros, err := strconv.ParseInt(fields[4], 10, 64)
	if err != nil {
		return event{}, false
	}

	return event{
		at:         time.UnixMilli(ms),
		remoteAddr: fields[1],
		command:    fields[2],
		argc:       argc,
		elapsed:    time.Duration(micros) * time.Microsecond,
	}, true
}

// model is the Bubble Tea model for redikv-monitor: a single scrolling
// list of commands dispatched by a connected redikv-server.
type model struct {
	target string
	conn   net.Conn
	reader *bufio.Reader

	events []event
	cursor int
	follow bool
	width  int
	height int
	err    error
	status string
}

func newModel(target string) model {
	return model{target: target, follow: true}
}

type connectedMsg struct {
	conn   net.Conn
	reader *bufio.Reader
}

type lineMsg struct{ raw string }

type errMsg struct{ err error }

type statusMsg struct{ text string }

func (m model) Init() tea.Cmd {
	return connect(m.target)
}

func connect(target string) tea.Cmd {
	return func() tea.Msg {
		var d net.Dialer
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		conn, err := d.DialContext(ctx, "tcp", target)
		if err != nil {
			return errMsg{err: fmt.Errorf("dial %s: %w", target, err)}
		}
		return connectedMsg{conn: conn, reader: bufio.NewReader(conn)}
	}
}

func readLine(reader *bufio.Reader) tea.Cmd {
	return func() tea.Msg {
		line, err := reader.ReadString('\n')
		if err != nil {
			return errMsg{err: err}
		}
		return lineMsg{raw: line}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case connectedMsg:
		m.conn = msg.conn
		m.reader = msg.reader
		return m, readLine(m.reader)

	case lineMsg:
		if ev, ok := parseEvent(msg.raw); ok {
			m.events = append(m.events, ev)
			if m.follow {
				m.cursor = len(m.events) - 1
			}
		}
		return m, readLine(m.reader)

	case errMsg:
		m.err = msg.err
		return m, nil

	case statusMsg:
		m.status = msg.text
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.updateKey(msg)
	}
	return m, nil
}

func (m model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		if m.conn != nil {
			_ = m.conn.Close()
		}
		return m, tea.Quit
	case "j", "down":
		if m.cursor < len(m.events)-1 {
			m.cursor++
		}
		m.follow = m.cursor == len(m.events)-1
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
		m.follow = false
	case "g":
		m.cursor = 0
		m.follow = false
	case "G":
		m.cursor = len(m.events) - 1
		m.follow = true
	case "f":
		m.follow = !m.follow
		if m.follow {
			m.cursor = len(m.events) - 1
		}
	case "c":
		return m, m.copySelected()
	}
	return m, nil
}

// copySelected copies a one-line summary of the selected event (remote
// address, command, argument count, elapsed time) to the system
// clipboard, mirroring the teacher's own copy-to-clipboard shortcut.
func (m model) copySelected() tea.Cmd {
	if m.cursor < 0 || m.cursor >= len(m.events) {
		return nil
	}
	line := formatRow(m.events[m.cursor])
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := clipboard.Copy(ctx, line); err != nil {
			return statusMsg{text: "copy failed: " + err.Error()}
		}
		return statusMsg{text: "copied"}
	}
}

func formatRow(ev event) string {
	return fmt.Sprintf("%s %s (%d args, %s)",
		ev.remoteAddr, ev.command, ev.argc, ev.elapsed)
}

var (
	selectedStyle = lipgloss.NewStyle().Reverse(true)
	timeStyle     = lipgloss.NewStyle().Faint(true)
)

func (m model) View() string {
	if m.width == 0 {
		return ""
	}
	if m.err != nil {
		return lipgloss.NewStyle().Bold(true).Render("error: "+m.err.Error()) + "\n"
	}
	if len(m.events) == 0 {
		return "Waiting for commands...\n"
	}

	var b strings.Builder
	start := 0
	listHeight := m.height - 2
	if listHeight < 1 {
		listHeight = 1
	}
	if len(m.events) > listHeight {
		start = m.cursor - listHeight/2
		if start < 0 {
			start = 0
		}
		if start > len(m.events)-listHeight {
			start = len(m.events) - listHeight
		}
	}

	for i := start; i < len(m.events) && i < start+listHeight; i++ {
		ev := m.events[i]
		row := timeStyle.Render(ev.at.Format("15:04:05.000")) + " " +
			highlight.Command(ev.command, nil, 60, false) +
			fmt.Sprintf(" from=%s argc=%d took=%s", ev.remoteAddr, ev.argc, ev.elapsed)
		if ansi.StringWidth(row) > m.width {
			row = ansi.Truncate(row, m.width, "…")
		}
		if i == m.cursor {
			row = selectedStyle.Render(row)
		}
		b.WriteString(row)
		b.WriteByte('\n')
	}

	footer := "q: quit  j/k: navigate  g/G: top/bottom  f: follow  c: copy"
	if m.status != "" {
		footer = m.status + "  |  " + footer
	}
	b.WriteString(timeStyle.Render(footer))
	return b.String()
}
