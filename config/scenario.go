// Package config loads scenarios (a seeded queue plus its error policy) from
// YAML and the environment and builds them into runnable plans.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-command-queue/handler"
)

// Scenario describes a queue to seed and how to run it.
type Scenario struct {
	Version     int                     `json:"version" yaml:"version"`
	Name        string                  `json:"name,omitempty" yaml:"name,omitempty"`
	Description string                  `json:"description,omitempty" yaml:"description,omitempty"`
	Handler     string                  `json:"handler,omitempty" yaml:"handler,omitempty"`
	Retry       string                  `json:"retry,omitempty" yaml:"retry,omitempty"`
	Delay       time.Duration           `json:"delay,omitempty" yaml:"delay,omitempty"`
	Entities    map[string]EntityConfig `json:"entities,omitempty" yaml:"entities,omitempty"`
	Commands    []CommandConfig         `json:"commands" yaml:"commands"`
}

// EntityConfig is the initial state of a shared body.
type EntityConfig struct {
	Position []float64 `json:"position" yaml:"position"`
	Velocity []float64 `json:"velocity" yaml:"velocity"`
}

// CommandConfig describes one queued command. Which fields apply depends on
// Type.
type CommandConfig struct {
	Type      string         `json:"type" yaml:"type"`
	Value     float64        `json:"value,omitempty" yaml:"value,omitempty"`
	Entity    string         `json:"entity,omitempty" yaml:"entity,omitempty"`
	Velocity  []float64      `json:"velocity,omitempty" yaml:"velocity,omitempty"`
	Reason    string         `json:"reason,omitempty" yaml:"reason,omitempty"`
	FailTimes int            `json:"fail_times,omitempty" yaml:"fail_times,omitempty"`
	FailRate  float64        `json:"fail_rate,omitempty" yaml:"fail_rate,omitempty"`
	Seed      int64          `json:"seed,omitempty" yaml:"seed,omitempty"`
	Inner     *CommandConfig `json:"inner,omitempty" yaml:"inner,omitempty"`
}

// Validate performs structural validation. Command types are resolved
// against a Registry when the scenario is built.
func (s Scenario) Validate() error {
	switch strings.ToLower(strings.TrimSpace(s.Handler)) {
	case "", handler.NameReport, handler.NameAbort, handler.NameRetry:
	default:
		return fmt.Errorf("unknown handler %q (%s|%s|%s)", s.Handler, handler.NameReport, handler.NameAbort, handler.NameRetry)
	}
	switch handler.RetryMode(strings.ToLower(strings.TrimSpace(s.Retry))) {
	case "", handler.RetryFront, handler.RetryBack:
	default:
		return fmt.Errorf("unknown retry mode %q (%s|%s)", s.Retry, handler.RetryFront, handler.RetryBack)
	}
	if s.Delay < 0 {
		return fmt.Errorf("delay must not be negative")
	}
	for name, ent := range s.Entities {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("entity with empty name")
		}
		if len(ent.Position) != 2 || len(ent.Velocity) != 2 {
			return fmt.Errorf("entity %s requires 2D position and velocity", name)
		}
	}
	if len(s.Commands) == 0 {
		return fmt.Errorf("scenario %s requires commands", s.Name)
	}
	for idx, cmd := range s.Commands {
		if err := cmd.validate(s.Entities); err != nil {
			return fmt.Errorf("commands[%d]: %w", idx, err)
		}
	}
	return nil
}

func (c CommandConfig) validate(entities map[string]EntityConfig) error {
	typ := strings.TrimSpace(c.Type)
	if typ == "" {
		return fmt.Errorf("type is required")
	}
	if c.Entity != "" {
		if _, ok := entities[c.Entity]; !ok {
			return fmt.Errorf("%s references unknown entity %s", typ, c.Entity)
		}
	}
	switch typ {
	case TypeMove:
		if c.Entity == "" {
			return fmt.Errorf("move requires entity")
		}
	case TypeChangeVelocity:
		if c.Entity == "" {
			return fmt.Errorf("change_velocity requires entity")
		}
		if len(c.Velocity) != 2 {
			return fmt.Errorf("change_velocity requires a 2D velocity")
		}
	case TypeFail:
		if c.FailTimes < 0 {
			return fmt.Errorf("fail_times must not be negative")
		}
		if c.FailRate < 0 || c.FailRate > 1 {
			return fmt.Errorf("fail_rate must be within [0, 1]")
		}
	case TypeRepeat, TypeRequeue:
		if c.Inner == nil {
			return fmt.Errorf("%s requires inner", typ)
		}
		if err := c.Inner.validate(entities); err != nil {
			return fmt.Errorf("%s inner: %w", typ, err)
		}
	}
	return nil
}
