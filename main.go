// Command redikv is a minimal line-oriented RESP client: given an address
// and a command, it sends that one command and prints the decoded reply;
// given only an address, it drops into an interactive loop reading
// commands from stdin until EOF.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/mickamy/redikv/internal/client"
	"github.com/mickamy/redikv/internal/resp"
)

var version = "dev"

func main() {
	fs := flag.NewFlagSet("redikv", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "redikv — send commands to a redikv server\n\nUsage:\n  redikv <addr> [command...]\n\nFlags:\n")
		fs.PrintDefaults()
	}

	showVersion := fs.Bool("version", false, "show version and exit")

	_ = fs.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("redikv %s\n", version)
		return
	}

	if fs.NArg() < 1 {
		fs.Usage()
		os.Exit(1)
	}

	addr := fs.Arg(0)
	if err := run(addr, fs.Args()[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(addr string, words []string) error {
	c, err := client.Dial(addr)
	if err != nil {
		return err
	}
	defer c.Close()

	if len(words) > 0 {
		reply, err := c.Do(words...)
		if err != nil {
			return err
		}
		fmt.Println(formatReply(reply))
		return nil
	}

	return interactive(c)
}

// interactive runs a PING-on-connect smoke-test loop, reading one
// whitespace-separated command per line from stdin until EOF.
func interactive(c *client.Client) error {
	if reply, err := c.Do("PING"); err == nil {
		fmt.Println(formatReply(reply))
	}

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		reply, err := c.Do(strings.Fields(line)...)
		if err != nil {
			return err
		}
		fmt.Println(formatReply(reply))
	}
	return scanner.Err()
}

func formatReply(f resp.Frame) string {
	switch f.Kind {
	case resp.SimpleStringKind:
		return "+" + f.Str
	case resp.ErrorKind:
		return "-" + f.Str
	case resp.IntegerKind:
		return fmt.Sprintf(":%d", f.Int)
	case resp.NullBulkStringKind:
		return "(nil)"
	case resp.BulkStringKind:
		return string(f.Bulk)
	case resp.ArrayKind:
		elems := make([]string, len(f.Elems))
		for i, e := range f.Elems {
			elems[i] = formatReply(e)
		}
		return "[" + strings.Join(elems, ", ") + "]"
	default:
		return fmt.Sprintf("<unknown frame kind %d>", f.Kind)
	}
}
