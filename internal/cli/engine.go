// Package cli runs Redis-style commands given as argument lists against a
// redcached.Client.
package cli

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/unkn0wn-root/redcached"
)

type handler func(ctx context.Context, cl redcached.Client, args []string) (Reply, error)

type command struct {
	minArgs int
	maxArgs int // -1 => variadic
	run     handler
}

// Engine holds the command table.
type Engine struct {
	commands map[string]command // keyed by upper-case name
	client   redcached.Client
	logger   *zap.Logger
}

func NewEngine(cl redcached.Client, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{commands: make(map[string]command), client: cl, logger: logger}
	e.registerStringCommands()
	e.registerKeyCommands()
	e.registerHashCommands()
	e.registerSetCommands()
	e.register("COMMAND", 0, 0, func(context.Context, redcached.Client, []string) (Reply, error) {
		return texts(e.Commands()), nil
	})
	return e
}

func (e *Engine) register(name string, minArgs, maxArgs int, run handler) {
	e.commands[strings.ToUpper(name)] = command{minArgs: minArgs, maxArgs: maxArgs, run: run}
}

// Commands lists the registered command names, sorted.
func (e *Engine) Commands() []string {
	names := make([]string, 0, len(e.commands))
	for n := range e.commands {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Execute finds the command by name and runs it. Failures, including
// unknown commands and client errors, come back as error replies.
func (e *Engine) Execute(ctx context.Context, name string, args []string) Reply {
	upper := strings.ToUpper(name)
	cmd, ok := e.commands[upper]
	if !ok {
		return errorf(fmt.Sprintf("ERR unknown command '%s'", name))
	}
	if len(args) < cmd.minArgs || (cmd.maxArgs >= 0 && len(args) > cmd.maxArgs) {
		return errorf(fmt.Sprintf("ERR wrong number of arguments for '%s' command", strings.ToLower(name)))
	}

	if e.logger.Core().Enabled(zap.DebugLevel) {
		e.logger.Debug("executing command",
			zap.String("cmd", upper),
			zap.Int("args_count", len(args)),
		)
	}

	r, err := cmd.run(ctx, e.client, args)
	if err != nil {
		e.logger.Debug("command failed", zap.String("cmd", upper), zap.Error(err))
		return fromError(err)
	}
	return r
}

var errSyntax = errors.New("syntax error")
