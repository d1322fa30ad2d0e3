// Command redikv-monitor is a Bubble Tea TUI that connects to a
// redikv-server's monitor listener and displays dispatched commands live.
package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
)

var version = "dev"

func main() {
	fs := flag.NewFlagSet("redikv-monitor", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "redikv-monitor — watch redikv-server commands live\n\nUsage:\n  redikv-monitor [flags]\n\nFlags:\n")
		fs.PrintDefaults()
	}

	addr := fs.String("addr", "127.0.0.1:6380", "monitor listener address to connect to")
	showVersion := fs.Bool("version", false, "show version and exit")

	_ = fs.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("redikv-monitor %s\n", version)
		return
	}

	p := tea.NewProgram(newModel(*addr), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
