// Package commands contains leaf actions used to seed queues: printing a
// number and driving a simulated body.
package commands

import "fmt"

// Vector is a 2D value.
type Vector struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

func (v Vector) Add(o Vector) Vector {
	return Vector{X: v.X + o.X, Y: v.Y + o.Y}
}

func (v Vector) String() string {
	return fmt.Sprintf("(%g, %g)", v.X, v.Y)
}

// Body is a point mass moving at constant velocity.
type Body struct {
	Position Vector `json:"position" yaml:"position"`
	Velocity Vector `json:"velocity" yaml:"velocity"`
}

func (b Body) String() string {
	return fmt.Sprintf("position=%s velocity=%s", b.Position, b.Velocity)
}
