package config

import (
	"bytes"
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	command "github.com/goliatone/go-command-queue"
	"github.com/goliatone/go-command-queue/commands"
	"github.com/goliatone/go-command-queue/data"
	"github.com/goliatone/go-command-queue/handler"
	"github.com/goliatone/go-command-queue/runner"
	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() command.Logger {
	return command.NewFmtLogger(&bytes.Buffer{})
}

func builtin(t *testing.T, name string) Scenario {
	t.Helper()
	raw, err := data.Scenario(name)
	require.NoError(t, err)
	s, err := ParseScenario(raw)
	require.NoError(t, err)
	return s
}

func textCode(t *testing.T, err error) string {
	t.Helper()
	var ge *goerrors.Error
	require.True(t, stderrors.As(err, &ge), "expected go-errors error, got %T", err)
	return ge.TextCode
}

func TestParseScenario_Builtins(t *testing.T) {
	for _, name := range data.ScenarioNames() {
		t.Run(name, func(t *testing.T) {
			s := builtin(t, name)
			assert.Equal(t, name, s.Name)
			assert.NotEmpty(t, s.Commands)
		})
	}

	body := builtin(t, "body")
	assert.Equal(t, "retry", body.Handler)
	assert.Equal(t, 250*time.Millisecond, body.Delay)
	assert.Equal(t, []float64{1, 1}, body.Entities["body"].Velocity)
}

func TestParseScenario_AcceptsJSON(t *testing.T) {
	s, err := ParseScenario([]byte(`{"version": 1, "handler": "abort", "commands": [{"type": "print", "value": 2}]}`))
	require.NoError(t, err)
	assert.Equal(t, "abort", s.Handler)
	assert.Equal(t, 2.0, s.Commands[0].Value)
}

func TestParseScenario_Invalid(t *testing.T) {
	cases := map[string]string{
		"unknown handler":  "handler: explode\ncommands: [{type: print}]",
		"unknown retry":    "handler: retry\nretry: sideways\ncommands: [{type: print}]",
		"no commands":      "handler: report\ncommands: []",
		"missing type":     "commands: [{value: 1}]",
		"unknown entity":   "commands: [{type: move, entity: ghost}]",
		"move w/o entity":  "commands: [{type: move}]",
		"bad velocity":     "entities: {b: {position: [0, 0], velocity: [1, 1]}}\ncommands: [{type: change_velocity, entity: b, velocity: [1]}]",
		"bad entity":       "entities: {b: {position: [0], velocity: [1, 1]}}\ncommands: [{type: print}]",
		"repeat w/o inner": "commands: [{type: repeat}]",
		"bad inner":        "commands: [{type: requeue, inner: {type: move}}]",
		"bad fail rate":    "commands: [{type: fail, fail_rate: 2}]",
		"negative delay":   "delay: -1s\ncommands: [{type: print}]",
		"malformed yaml":   "commands: [",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseScenario([]byte(src))
			require.Error(t, err)
			assert.Equal(t, CodeScenarioInvalid, textCode(t, err))
		})
	}
}

func TestLoadScenarioFile(t *testing.T) {
	raw, err := data.Scenario("print")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "print.yaml")
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	s, err := LoadScenarioFile(path)
	require.NoError(t, err)
	assert.Equal(t, "print", s.Name)

	_, err = LoadScenarioFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, CodeScenarioInvalid, textCode(t, err))
}

func TestBuild_PrintScenarioRunsUnderReport(t *testing.T) {
	out := &bytes.Buffer{}
	plan, err := Build(builtin(t, "print"), WithOutput(out), WithLogger(quietLogger()))
	require.NoError(t, err)
	assert.IsType(t, &handler.Report{}, plan.Handler)
	assert.Equal(t, 4, plan.Queue.Len())

	stats, err := runner.New(runner.WithLogger(quietLogger())).Run(context.Background(), plan.Queue, plan.Handler)
	require.NoError(t, err)
	assert.Equal(t, "Number is 10\nNumber is 15\nNumber is 20\n", out.String())
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 0, plan.Queue.Len())
}

func TestBuild_BodyScenarioAbortsBeforeChangeVelocity(t *testing.T) {
	s := builtin(t, "body")
	s.Delay = 0

	plan, err := Build(s, WithOutput(&bytes.Buffer{}), WithLogger(quietLogger()))
	require.NoError(t, err)
	assert.Equal(t, []string{"body"}, plan.BodyNames())

	_, err = runner.New(runner.WithLogger(quietLogger())).Run(context.Background(), plan.Queue, plan.Handler)
	require.Error(t, err)
	assert.True(t, command.IsFatal(err))
	assert.Equal(t, 2, plan.Queue.Len())

	body, err := plan.Bodies["body"].Load()
	require.NoError(t, err)
	assert.Equal(t, commands.Vector{X: 2, Y: 2}, body.Position)
	assert.Equal(t, commands.Vector{X: 1, Y: 1}, body.Velocity)
}

func TestBuild_FlakyScenarioCompletes(t *testing.T) {
	out := &bytes.Buffer{}
	plan, err := Build(builtin(t, "flaky"), WithOutput(out), WithLogger(quietLogger()))
	require.NoError(t, err)

	stats, err := runner.New(runner.WithLogger(quietLogger())).Run(context.Background(), plan.Queue, plan.Handler)
	require.NoError(t, err)
	assert.Equal(t, "Number is 3\nNumber is 4\nbody: position=(1, 0) velocity=(1, 0)\n", out.String())
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 6, stats.Executed)
}

func TestBuild_RetryModeFromScenario(t *testing.T) {
	s := Scenario{Handler: "retry", Retry: "back", Commands: []CommandConfig{{Type: TypePrint}}}
	plan, err := Build(s, WithOutput(&bytes.Buffer{}), WithLogger(quietLogger()))
	require.NoError(t, err)
	require.IsType(t, &handler.RetryOnceThenAbort{}, plan.Handler)
	assert.Equal(t, handler.RetryBack, plan.Handler.(*handler.RetryOnceThenAbort).Mode())
}

func TestBuild_UnknownCommandType(t *testing.T) {
	s := Scenario{Commands: []CommandConfig{{Type: "teleport"}}}
	_, err := Build(s)
	require.Error(t, err)
	assert.Equal(t, CodeUnknownCommandType, textCode(t, err))
}

func TestBuild_CustomRegistry(t *testing.T) {
	reg := DefaultRegistry()
	calls := 0
	require.NoError(t, reg.Register("count", func(CommandConfig, *BuildContext) (command.Command, error) {
		return command.CommandFunc(func(context.Context) error {
			calls++
			return nil
		}), nil
	}))
	assert.Error(t, reg.Register("count", buildPrint))
	assert.Contains(t, reg.Types(), "count")

	plan, err := Build(Scenario{Commands: []CommandConfig{{Type: "count"}, {Type: "count"}}}, WithRegistry(reg), WithLogger(quietLogger()))
	require.NoError(t, err)

	_, err = runner.New(runner.WithLogger(quietLogger())).Run(context.Background(), plan.Queue, plan.Handler)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestBuild_FailRateIsReproducible(t *testing.T) {
	s := Scenario{Commands: []CommandConfig{{Type: TypeFail, FailRate: 0.5, Seed: 42}}}

	outcomes := func() []bool {
		plan, err := Build(s, WithLogger(quietLogger()))
		require.NoError(t, err)
		cmd, _ := plan.Queue.PopFront()
		var got []bool
		for i := 0; i < 16; i++ {
			got = append(got, cmd.Execute(context.Background()) == nil)
		}
		return got
	}

	assert.Equal(t, outcomes(), outcomes())
}

func TestEnv(t *testing.T) {
	t.Setenv("CMDQUEUE_HANDLER", "abort")
	t.Setenv("CMDQUEUE_DELAY", "15ms")
	t.Setenv("CMDQUEUE_LOG_FORMAT", "JSON")

	e, err := LoadEnv()
	require.NoError(t, err)
	assert.Equal(t, "info", e.LogLevel)
	assert.True(t, e.JSONLogs())

	s := e.Apply(Scenario{Handler: "retry", Retry: "front"})
	assert.Equal(t, "abort", s.Handler)
	assert.Equal(t, "front", s.Retry)
	assert.Equal(t, 15*time.Millisecond, s.Delay)
}

func TestEnv_ZeroDelayDisablesPacing(t *testing.T) {
	t.Setenv("CMDQUEUE_DELAY", "0s")

	e, err := LoadEnv()
	require.NoError(t, err)
	require.NotNil(t, e.Delay)

	s := e.Apply(Scenario{Delay: 250 * time.Millisecond})
	assert.Equal(t, time.Duration(0), s.Delay)
}

func TestEnv_UnsetDelayKeepsScenario(t *testing.T) {
	e, err := LoadEnv()
	require.NoError(t, err)
	assert.Nil(t, e.Delay)

	s := e.Apply(Scenario{Delay: 250 * time.Millisecond})
	assert.Equal(t, 250*time.Millisecond, s.Delay)
}

func TestEnv_InvalidDelay(t *testing.T) {
	t.Setenv("CMDQUEUE_DELAY", "soon")

	_, err := LoadEnv()
	require.Error(t, err)
	assert.Equal(t, CodeEnvInvalid, textCode(t, err))
}
