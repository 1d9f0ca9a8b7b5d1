package config

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	command "github.com/goliatone/go-command-queue"
	"github.com/goliatone/go-command-queue/commands"
	"github.com/goliatone/go-command-queue/handler"
	"github.com/goliatone/go-command-queue/queue"
	"github.com/goliatone/go-errors"
)

const (
	CodeUnknownCommandType = "UNKNOWN_COMMAND_TYPE"
	CodeUnknownEntity      = "UNKNOWN_ENTITY"
)

// BuildContext bundles what factories need to construct commands.
type BuildContext struct {
	Registry *Registry
	Queue    *queue.Queue
	Bodies   map[string]commands.BodyRef
	Out      io.Writer
}

// Build resolves cfg through the registry.
func (b *BuildContext) Build(cfg *CommandConfig) (command.Command, error) {
	if cfg == nil {
		return nil, fmt.Errorf("missing command definition")
	}
	f, ok := b.Registry.Lookup(cfg.Type)
	if !ok {
		return nil, errors.New("unknown command type", errors.CategoryBadInput).
			WithTextCode(CodeUnknownCommandType).
			WithMetadata(map[string]any{
				"type":  cfg.Type,
				"valid": b.Registry.Types(),
			})
	}
	return f(*cfg, b)
}

func (b *BuildContext) body(name string) (commands.BodyRef, error) {
	body, ok := b.Bodies[name]
	if !ok {
		return nil, errors.New("unknown entity", errors.CategoryBadInput).
			WithTextCode(CodeUnknownEntity).
			WithMetadata(map[string]any{"entity": name})
	}
	return body, nil
}

// Plan is a built scenario ready to be run.
type Plan struct {
	Name    string
	Queue   *queue.Queue
	Handler handler.ErrorHandler
	Delay   time.Duration
	Bodies  map[string]commands.BodyRef
}

// BodyNames lists the plan's shared bodies.
func (p *Plan) BodyNames() []string {
	names := make([]string, 0, len(p.Bodies))
	for name := range p.Bodies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type BuildOption func(*buildOptions)

type buildOptions struct {
	registry *Registry
	out      io.Writer
	logger   command.Logger
}

func WithRegistry(r *Registry) BuildOption {
	return func(o *buildOptions) {
		if r != nil {
			o.registry = r
		}
	}
}

// WithOutput sets where leaf commands write their lines.
func WithOutput(w io.Writer) BuildOption {
	return func(o *buildOptions) {
		if w != nil {
			o.out = w
		}
	}
}

func WithLogger(l command.Logger) BuildOption {
	return func(o *buildOptions) {
		o.logger = l
	}
}

// Build turns a scenario into a fresh queue, bodies and error handler.
func Build(s Scenario, opts ...BuildOption) (*Plan, error) {
	if err := s.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.CategoryValidation, "invalid scenario").
			WithTextCode(CodeScenarioInvalid)
	}

	o := buildOptions{registry: DefaultRegistry(), out: os.Stdout}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	plan := &Plan{
		Name:   s.Name,
		Queue:  queue.New(),
		Delay:  s.Delay,
		Bodies: make(map[string]commands.BodyRef, len(s.Entities)),
	}
	for name, ent := range s.Entities {
		pos, err := vector(ent.Position)
		if err != nil {
			return nil, fmt.Errorf("entity %s position: %w", name, err)
		}
		vel, err := vector(ent.Velocity)
		if err != nil {
			return nil, fmt.Errorf("entity %s velocity: %w", name, err)
		}
		plan.Bodies[name] = commands.NewBody(name, pos, vel)
	}

	bctx := &BuildContext{
		Registry: o.registry,
		Queue:    plan.Queue,
		Bodies:   plan.Bodies,
		Out:      o.out,
	}
	for idx := range s.Commands {
		cmd, err := bctx.Build(&s.Commands[idx])
		if err != nil {
			return nil, fmt.Errorf("build commands[%d]: %w", idx, err)
		}
		plan.Queue.PushBack(cmd)
	}

	mode := handler.RetryMode(strings.ToLower(strings.TrimSpace(s.Retry)))
	h, err := handler.ByName(s.Handler, plan.Queue, o.logger, handler.WithRetryMode(mode))
	if err != nil {
		return nil, err
	}
	plan.Handler = h

	return plan, nil
}
