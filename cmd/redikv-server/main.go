// Command redikv-server is the database daemon: it loads an optional
// snapshot, binds the RESP listener (and, when configured, a second
// listener for the monitor line protocol), and serves connections until
// interrupted.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"os/signal"

	"github.com/google/uuid"

	"github.com/mickamy/redikv/internal/command"
	"github.com/mickamy/redikv/internal/monitor"
	"github.com/mickamy/redikv/internal/rdb"
	"github.com/mickamy/redikv/internal/replica"
	"github.com/mickamy/redikv/internal/server"
	"github.com/mickamy/redikv/internal/store"
)

var version = "dev"

func main() {
	fs := flag.NewFlagSet("redikv-server", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "redikv-server — an in-memory key-value server\n\nUsage:\n  redikv-server [flags]\n\nFlags:\n")
		fs.PrintDefaults()
	}

	dir := fs.String("dir", "", "directory containing the snapshot file")
	dbfilename := fs.String("dbfilename", "", "snapshot filename")
	port := fs.Int("port", 6379, "listen port (bound to 127.0.0.1)")
	replicaof := fs.String("replicaof", "", `configure as a follower of "<host> <port>"`)
	monitorAddr := fs.String("monitor-addr", "", "monitor line-protocol listen address (empty disables it)")
	showVersion := fs.Bool("version", false, "show version and exit")

	_ = fs.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("redikv-server %s\n", version)
		return
	}

	if err := run(*dir, *dbfilename, *port, *replicaof, *monitorAddr); err != nil {
		log.Fatal(err)
	}
}

func run(dir, dbfilename string, port int, replicaof, monitorAddr string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s := store.New()
	if snapshotPath := snapshotPath(dir, dbfilename); snapshotPath != "" {
		if err := rdb.Load(snapshotPath, s); err != nil {
			return fmt.Errorf("redikv-server: loading snapshot %s: %w", snapshotPath, err)
		}
		log.Printf("loaded snapshot %s (%d keys)", snapshotPath, s.Len())
	}

	cfg := command.Config{Dir: dir, DBFilename: dbfilename}
	info := command.Info{
		Role:              command.RoleLeader,
		ReplicationID:     strings.ReplaceAll(uuid.NewString(), "-", ""),
		ReplicationOffset: 0,
	}
	if replicaof != "" {
		info.Role = command.RoleFollower
	}

	b := monitor.New()
	srv := server.New(s, cfg, info)
	srv.Events = b

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return fmt.Errorf("redikv-server: listen on port %d: %w", port, err)
	}
	log.Printf("redikv-server listening on %s (role=%s)", ln.Addr(), info.Role)

	if monitorAddr != "" {
		monLn, err := lc.Listen(ctx, "tcp", monitorAddr)
		if err != nil {
			return fmt.Errorf("redikv-server: listen monitor %s: %w", monitorAddr, err)
		}
		go func() {
			log.Printf("monitor listening on %s", monLn.Addr())
			if err := monitor.Serve(monLn, b); err != nil {
				log.Printf("monitor: serve: %v", err)
			}
		}()
		go func() {
			<-ctx.Done()
			monLn.Close()
		}()
	}

	if replicaof != "" {
		leaderAddr, err := parseReplicaOf(replicaof)
		if err != nil {
			return fmt.Errorf("redikv-server: %w", err)
		}
		go func() {
			if err := replica.Handshake(leaderAddr, port); err != nil {
				log.Printf("replica: handshake with %s failed: %v", leaderAddr, err)
			}
		}()
	}

	return srv.Serve(ctx, ln)
}

// snapshotPath joins dir and dbfilename when both are set; an empty dir or
// dbfilename means no snapshot is configured.
func snapshotPath(dir, dbfilename string) string {
	if dir == "" || dbfilename == "" {
		return ""
	}
	return filepath.Join(dir, dbfilename)
}

// parseReplicaOf splits the CLI's "<host> <port>" pair and normalizes the
// well-known localhost alias to the loopback address the server itself
// binds to.
func parseReplicaOf(raw string) (string, error) {
	fields := strings.Fields(raw)
	if len(fields) != 2 {
		return "", fmt.Errorf(`replicaof must be "<host> <port>", got %q`, raw)
	}
	host := fields[0]
	if host == "localhost" {
		host = "127.0.0.1"
	}
	if _, err := strconv.Atoi(fields[1]); err != nil {
		return "", fmt.Errorf("replicaof port %q is not numeric: %w", fields[1], err)
	}
	return net.JoinHostPort(host, fields[1]), nil
}
