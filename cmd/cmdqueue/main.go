package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	command "github.com/goliatone/go-command-queue"
	"github.com/goliatone/go-command-queue/config"
)

const (
	exitOK    = 0
	exitError = 1
	exitFatal = 2
)

type CLI struct {
	LogLevel  string        `name:"log-level" help:"Log level: trace, debug, info, warn, error. Overrides CMDQUEUE_LOG_LEVEL."`
	LogFormat string        `name:"log-format" help:"Log format: console or json. Overrides CMDQUEUE_LOG_FORMAT."`
	Handler   string        `help:"Error handler: report, abort or retry. Overrides the scenario."`
	Retry     string        `help:"Retry placement for the retry handler: front or back."`
	Delay     *time.Duration `help:"Pause between commands, 0 disables pacing. Overrides the scenario."`

	Run      RunCmd      `cmd:"" help:"Run a scenario file until its queue drains."`
	Demo     DemoCmd     `cmd:"" help:"Run a built-in scenario."`
	List     ListCmd     `cmd:"" aliases:"ls" help:"List built-in scenarios."`
	Schedule ScheduleCmd `cmd:"" help:"Run a scenario file on a cron expression."`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	var cli CLI
	exitCode := -1

	parser, err := kong.New(&cli,
		kong.Name("cmdqueue"),
		kong.Description("Execute queued commands with a pluggable error handler."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(code int) {
			if exitCode < 0 {
				exitCode = code
			}
		}),
		kong.UsageOnError(),
	)
	if err != nil {
		fmt.Fprintf(stderr, "cmdqueue: %v\n", err)
		return exitError
	}

	kctx, err := parser.Parse(args)
	if exitCode >= 0 {
		return exitCode
	}
	if err != nil {
		fmt.Fprintf(stderr, "cmdqueue: %v\n", err)
		return exitError
	}

	env, err := config.LoadEnv()
	if err != nil {
		fmt.Fprintf(stderr, "cmdqueue: %v\n", err)
		return exitError
	}
	cli.overrideEnv(&env)

	a := &app{
		ctx:    ctx,
		env:    env,
		out:    stdout,
		logger: command.NewDefaultLogger(stderr, env.LogLevel, env.JSONLogs()),
	}

	if err := kctx.Run(a); err != nil {
		a.logger.Error("cmdqueue: %v", err)
		if command.IsFatal(err) {
			return exitFatal
		}
		return exitError
	}
	return exitOK
}

// overrideEnv applies the global flags on top of the environment.
func (c *CLI) overrideEnv(env *config.Env) {
	if c.LogLevel != "" {
		env.LogLevel = c.LogLevel
	}
	if c.LogFormat != "" {
		env.LogFormat = c.LogFormat
	}
	if c.Handler != "" {
		env.Handler = c.Handler
	}
	if c.Retry != "" {
		env.Retry = c.Retry
	}
	if c.Delay != nil {
		d := *c.Delay
		env.Delay = &d
	}
}
