// Command redcached runs Redis-style commands against the configured
// whole-value backend.
//
//	redcached [-config DIR] HSET user:1 name ada
//	echo "INCR hits" | redcached
//
// With no command on the command line, one command per line is read from
// stdin.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"

	asynchook "github.com/unkn0wn-root/redcached/hooks/async"
	"github.com/unkn0wn-root/redcached/internal/backend"
	"github.com/unkn0wn-root/redcached/internal/cli"
	"github.com/unkn0wn-root/redcached/internal/config"
	"github.com/unkn0wn-root/redcached/internal/logger"
	zaplog "github.com/unkn0wn-root/redcached/log/zap"
	"github.com/unkn0wn-root/redcached/sloghooks"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout))
}

func run(argv []string, stdin io.Reader, stdout io.Writer) int {
	fs := flag.NewFlagSet("redcached", flag.ContinueOnError)
	cfgDir := fs.String("config", ".", "directory holding config.yaml")
	if err := fs.Parse(argv); err != nil {
		return 2
	}

	cfg, err := config.Load(*cfgDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "redcached:", err)
		return 1
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintln(os.Stderr, "redcached:", err)
		return 1
	}
	defer log.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hookLog, err := logger.NewSlog(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Error("cant build hook logger", zap.Error(err))
		return 1
	}
	hooks := asynchook.New(sloghooks.New(hookLog, sloghooks.Options{ConflictEvery: 10}), 1, 256)
	defer hooks.Close()

	client, err := backend.NewClient(ctx, cfg, zaplog.ZapLogger{L: log}, hooks)
	if err != nil {
		log.Error("cant open backend", zap.String("kind", cfg.Backend.Kind), zap.Error(err))
		return 1
	}
	defer client.Close(context.Background()) //nolint:errcheck

	log.Debug("backend ready",
		zap.String("kind", cfg.Backend.Kind),
		zap.String("codec", cfg.Codec.Format),
		zap.Bool("strict", cfg.Client.Strict),
	)

	engine := cli.NewEngine(client, log)

	if args := fs.Args(); len(args) > 0 {
		r := engine.Execute(ctx, args[0], args[1:])
		fmt.Fprintln(stdout, r.String())
		if r.IsError() {
			return 1
		}
		return 0
	}

	status := 0
	sc := bufio.NewScanner(stdin)
	for sc.Scan() {
		if ctx.Err() != nil {
			break
		}
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		r := engine.Execute(ctx, fields[0], fields[1:])
		fmt.Fprintln(stdout, r.String())
		if r.IsError() {
			status = 1
		}
	}
	if err := sc.Err(); err != nil {
		log.Error("read stdin", zap.Error(err))
		return 1
	}
	return status
}
