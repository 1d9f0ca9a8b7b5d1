package config

import (
	"fmt"
	"math/rand"
	"sort"

	command "github.com/goliatone/go-command-queue"
	"github.com/goliatone/go-command-queue/commands"
)

const (
	TypePrint          = "print"
	TypeMove           = "move"
	TypeChangeVelocity = "change_velocity"
	TypeFail           = "fail"
	TypeRepeat         = "repeat"
	TypeRequeue        = "requeue"
)

// Factory builds a command from its configuration.
type Factory func(cfg CommandConfig, bctx *BuildContext) (command.Command, error)

// Registry stores command factories by type.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// DefaultRegistry returns a registry with the built-in command types.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	_ = r.Register(TypePrint, buildPrint)
	_ = r.Register(TypeMove, buildMove)
	_ = r.Register(TypeChangeVelocity, buildChangeVelocity)
	_ = r.Register(TypeFail, buildFail)
	_ = r.Register(TypeRepeat, buildRepeat)
	_ = r.Register(TypeRequeue, buildRequeue)
	return r
}

// Register stores a factory by type.
func (r *Registry) Register(typ string, f Factory) error {
	if typ == "" || f == nil {
		return nil
	}
	if r.factories == nil {
		r.factories = make(map[string]Factory)
	}
	if _, exists := r.factories[typ]; exists {
		return fmt.Errorf("command type %s already registered", typ)
	}
	r.factories[typ] = f
	return nil
}

// Lookup returns a factory by type.
func (r *Registry) Lookup(typ string) (Factory, bool) {
	if r == nil {
		return nil, false
	}
	f, ok := r.factories[typ]
	return f, ok
}

// Types lists the registered command types.
func (r *Registry) Types() []string {
	out := make([]string, 0, len(r.factories))
	for typ := range r.factories {
		out = append(out, typ)
	}
	sort.Strings(out)
	return out
}

func buildPrint(cfg CommandConfig, bctx *BuildContext) (command.Command, error) {
	return commands.NewPrint(cfg.Value, bctx.Out), nil
}

func buildMove(cfg CommandConfig, bctx *BuildContext) (command.Command, error) {
	body, err := bctx.body(cfg.Entity)
	if err != nil {
		return nil, err
	}
	return commands.NewMove(body, bctx.Out), nil
}

func buildChangeVelocity(cfg CommandConfig, bctx *BuildContext) (command.Command, error) {
	body, err := bctx.body(cfg.Entity)
	if err != nil {
		return nil, err
	}
	v, err := vector(cfg.Velocity)
	if err != nil {
		return nil, err
	}
	return commands.NewChangeVelocity(body, v, bctx.Out), nil
}

func buildFail(cfg CommandConfig, _ *BuildContext) (command.Command, error) {
	f := command.NewFail(cfg.Reason)
	switch {
	case cfg.FailTimes > 0:
		f.Fault = command.FailTimes(cfg.FailTimes)
	case cfg.FailRate > 0:
		seed := cfg.Seed
		if seed == 0 {
			seed = 1
		}
		f.Fault = command.FailRate(cfg.FailRate, rand.New(rand.NewSource(seed)))
	}
	return f, nil
}

func buildRepeat(cfg CommandConfig, bctx *BuildContext) (command.Command, error) {
	inner, err := bctx.Build(cfg.Inner)
	if err != nil {
		return nil, err
	}
	return command.NewRepeat(inner), nil
}

func buildRequeue(cfg CommandConfig, bctx *BuildContext) (command.Command, error) {
	inner, err := bctx.Build(cfg.Inner)
	if err != nil {
		return nil, err
	}
	return command.NewRequeue(inner, bctx.Queue), nil
}

func vector(v []float64) (commands.Vector, error) {
	if len(v) != 2 {
		return commands.Vector{}, fmt.Errorf("expected 2 components, got %d", len(v))
	}
	return commands.Vector{X: v[0], Y: v[1]}, nil
}
