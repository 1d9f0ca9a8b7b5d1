package commands

import (
	"bytes"
	"context"
	"testing"

	command "github.com/goliatone/go-command-queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrint(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, NewPrint(10, buf).Execute(context.Background()))
	require.NoError(t, NewPrint(1.5, buf).Execute(context.Background()))
	assert.Equal(t, "Number is 10\nNumber is 1.5\n", buf.String())
}

func TestMoveAndChangeVelocity(t *testing.T) {
	buf := &bytes.Buffer{}
	body := NewBody("body", Vector{}, Vector{X: 1, Y: 1})

	require.NoError(t, NewMove(body, buf).Execute(context.Background()))
	require.NoError(t, NewMove(body, buf).Execute(context.Background()))
	require.NoError(t, NewChangeVelocity(body, Vector{X: 0.5, Y: 1.5}, buf).Execute(context.Background()))
	require.NoError(t, NewMove(body, buf).Execute(context.Background()))

	got, err := body.Load()
	require.NoError(t, err)
	assert.Equal(t, Vector{X: 2.5, Y: 3.5}, got.Position)
	assert.Equal(t, Vector{X: 0.5, Y: 1.5}, got.Velocity)
	assert.Contains(t, buf.String(), "body: position=(1, 1) velocity=(1, 1)\n")
	assert.Contains(t, buf.String(), "body: position=(2.5, 3.5) velocity=(0.5, 1.5)\n")
}

func TestMove_FailsWhileBodyIsBorrowed(t *testing.T) {
	body := NewBody("body", Vector{}, Vector{X: 1})
	_, release, err := body.Borrow()
	require.NoError(t, err)
	defer release()

	err = NewMove(body, &bytes.Buffer{}).Execute(context.Background())
	require.Error(t, err)
	assert.Equal(t, command.KindUntagged, command.KindOf(err))
	assert.True(t, command.IsExecutionFailed(command.Normalize(err)))
}

func TestCommandTypeNames(t *testing.T) {
	assert.Equal(t, "commands::print", command.CommandType(&Print{}))
	assert.Equal(t, "commands::change_velocity", command.CommandType(ChangeVelocity{}))
}
