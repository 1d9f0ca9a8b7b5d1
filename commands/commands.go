package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	command "github.com/goliatone/go-command-queue"
	"github.com/goliatone/go-command-queue/entity"
)

// BodyRef is the shared handle commands use to reach a body.
type BodyRef = *entity.Cell[Body]

// NewBody creates a shared body handle.
func NewBody(name string, position, velocity Vector) BodyRef {
	return entity.NewCell(name, Body{Position: position, Velocity: velocity})
}

// Print writes its value.
type Print struct {
	Value float64
	Out   io.Writer
}

func NewPrint(value float64, out io.Writer) *Print {
	return &Print{Value: value, Out: out}
}

func (p *Print) Execute(_ context.Context) error {
	_, err := fmt.Fprintf(writer(p.Out), "Number is %g\n", p.Value)
	return err
}

// Move advances a body by its velocity and writes the new state.
type Move struct {
	Body BodyRef
	Out  io.Writer
}

func NewMove(body BodyRef, out io.Writer) *Move {
	return &Move{Body: body, Out: out}
}

func (m *Move) Execute(_ context.Context) error {
	return m.Body.With(func(b *Body) error {
		b.Position = b.Position.Add(b.Velocity)
		_, err := fmt.Fprintf(writer(m.Out), "%s: %s\n", m.Body.Name(), b)
		return err
	})
}

// ChangeVelocity replaces the velocity of a body.
type ChangeVelocity struct {
	Body     BodyRef
	Velocity Vector
	Out      io.Writer
}

func NewChangeVelocity(body BodyRef, velocity Vector, out io.Writer) *ChangeVelocity {
	return &ChangeVelocity{Body: body, Velocity: velocity, Out: out}
}

func (c *ChangeVelocity) Execute(_ context.Context) error {
	return c.Body.With(func(b *Body) error {
		b.Velocity = c.Velocity
		_, err := fmt.Fprintf(writer(c.Out), "%s: %s\n", c.Body.Name(), b)
		return err
	})
}

var (
	_ command.Command = (*Print)(nil)
	_ command.Command = (*Move)(nil)
	_ command.Command = (*ChangeVelocity)(nil)
)

func writer(w io.Writer) io.Writer {
	if w == nil {
		return os.Stdout
	}
	return w
}
