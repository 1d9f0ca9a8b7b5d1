package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	command "github.com/goliatone/go-command-queue"
	"github.com/goliatone/go-command-queue/config"
	"github.com/goliatone/go-command-queue/cron"
	"github.com/goliatone/go-command-queue/data"
	"github.com/goliatone/go-command-queue/runner"
)

// app is bound into every command's Run method.
type app struct {
	ctx    context.Context
	env    config.Env
	out    io.Writer
	logger command.Logger
}

// execute builds a fresh plan from s and drains it.
func (a *app) execute(ctx context.Context, s config.Scenario) error {
	s = a.env.Apply(s)

	plan, err := config.Build(s,
		config.WithOutput(a.out),
		config.WithLogger(a.logger),
	)
	if err != nil {
		return err
	}

	exec := runner.New(
		runner.WithLogger(a.logger),
		runner.WithDelay(plan.Delay),
	)
	stats, err := exec.Run(ctx, plan.Queue, plan.Handler)
	command.WithLoggerFields(a.logger, map[string]any{
		"run_id":    stats.RunID,
		"scenario":  plan.Name,
		"executed":  stats.Executed,
		"succeeded": stats.Succeeded,
		"failed":    stats.Failed,
	}).Info("run finished")
	return err
}

type RunCmd struct {
	File string `arg:"" type:"existingfile" help:"Scenario file (YAML or JSON)."`
}

func (c *RunCmd) Run(a *app) error {
	s, err := config.LoadScenarioFile(c.File)
	if err != nil {
		return err
	}
	return a.execute(a.ctx, s)
}

type DemoCmd struct {
	Name string `arg:"" help:"Built-in scenario name, see list."`
}

func (c *DemoCmd) Run(a *app) error {
	raw, err := data.Scenario(c.Name)
	if err != nil {
		return err
	}
	s, err := config.ParseScenario(raw)
	if err != nil {
		return err
	}
	return a.execute(a.ctx, s)
}

type ListCmd struct{}

func (c *ListCmd) Run(a *app) error {
	names := data.ScenarioNames()

	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	for _, name := range names {
		raw, err := data.Scenario(name)
		if err != nil {
			return err
		}
		s, err := config.ParseScenario(raw)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", name, s.Handler, s.Description)
	}
	return w.Flush()
}

type ScheduleCmd struct {
	File  string `arg:"" type:"existingfile" help:"Scenario file (YAML or JSON)."`
	Cron  string `help:"Cron expression or descriptor." default:"@every 5s"`
	Times int    `help:"Stop after this many runs, 0 runs until interrupted." default:"0"`
}

func (c *ScheduleCmd) Run(a *app) error {
	// fail fast on a broken file instead of on the first tick
	s, err := config.LoadScenarioFile(c.File)
	if err != nil {
		return err
	}

	scheduler := cron.NewScheduler(
		cron.WithLogger(a.logger),
		cron.WithLogLevel(cron.LogLevelError),
		cron.WithErrorHandler(func(err error) {
			a.logger.Error("scheduled run failed: %v", err)
		}),
	)

	handle, err := scheduler.ScheduleCron(cron.JobConfig{
		Expression: c.Cron,
		MaxRuns:    c.Times,
	}, func(ctx context.Context) error {
		return a.execute(ctx, s)
	})
	if err != nil {
		return err
	}

	if err := scheduler.Start(a.ctx); err != nil {
		return err
	}
	a.logger.Info("scheduled %s on %q", s.Name, c.Cron)

	select {
	case <-a.ctx.Done():
	case <-handle.Done():
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := scheduler.Stop(stopCtx); err != nil {
		return err
	}

	if handle.Status() == cron.ScheduleStatusFailed {
		return handle.Err()
	}
	return nil
}
