package command

import (
	"context"
	stderrors "errors"
	"math/rand"
	"testing"

	"github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sliceQueue struct {
	items []Command
}

func (q *sliceQueue) PushBack(cmd Command) { q.items = append(q.items, cmd) }

type namedCommand struct{}

func (namedCommand) Execute(context.Context) error { return nil }

func TestCommandType(t *testing.T) {
	assert.Equal(t, "unknown_type", CommandType(nil))
	assert.Equal(t, "unknown_type", CommandType((*Fail)(nil)))
	assert.Equal(t, "command::fail", CommandType(NewFail("")))
	assert.Equal(t, "command::repeat", CommandType(NewRepeat(NewFail(""))))
	assert.Equal(t, "command::named_command", CommandType(namedCommand{}))
	assert.Equal(t, "command::named_command", CommandType(&namedCommand{}))
}

type countingCommand struct {
	calls int
}

func (c *countingCommand) Execute(context.Context) error {
	c.calls++
	return nil
}

func TestRepeatSuccessPassesThrough(t *testing.T) {
	inner := &countingCommand{}
	r := NewRepeat(inner)

	require.NoError(t, r.Execute(context.Background()))
	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, 1, r.Attempt())
	assert.Same(t, inner, r.Inner())
}

func TestRepeatRetagsFailure(t *testing.T) {
	r := NewRepeat(NewFail("disk full"))

	err := r.Execute(context.Background())

	require.Error(t, err)
	assert.True(t, IsRepeatFailed(err))
	assert.Equal(t, "disk full", reasonOf(err))
}

func TestRepeatRetagsUntaggedFailure(t *testing.T) {
	r := NewRepeat(CommandFunc(func(context.Context) error {
		return stderrors.New("boom")
	}))

	err := r.Execute(context.Background())

	assert.True(t, IsRepeatFailed(err))
}

func TestNestedRepeatKeepsSingleTag(t *testing.T) {
	r := NewRepeat(NewRepeat(NewFail("fail")))

	err := r.Execute(context.Background())

	require.True(t, IsRepeatFailed(err))
	assert.Equal(t, "fail", reasonOf(err))
}

func TestRequeueAppendsInnerAndSucceeds(t *testing.T) {
	q := &sliceQueue{}
	inner := NewFail("later")
	r := NewRequeue(inner, q)

	require.NoError(t, r.Execute(context.Background()))
	require.Len(t, q.items, 1)
	assert.Same(t, inner, q.items[0])
	assert.Equal(t, 0, inner.Calls())
}

func TestRequeueWithoutQueueFails(t *testing.T) {
	r := NewRequeue(NewFail("later"), nil)

	var err error
	require.NotPanics(t, func() {
		err = r.Execute(context.Background())
	})
	assert.True(t, IsExecutionFailed(err))

	var ge *errors.Error
	require.True(t, stderrors.As(err, &ge))
	assert.Equal(t, "command::fail", ge.Metadata["command"])
}

func TestFailAlwaysFails(t *testing.T) {
	f := NewFail("")

	for i := 0; i < 3; i++ {
		err := f.Execute(context.Background())
		require.True(t, IsExecutionFailed(err))
		assert.Equal(t, "fail", reasonOf(err))
	}
	assert.Equal(t, 3, f.Calls())
}

func TestFailTimes(t *testing.T) {
	f := &Fail{Reason: "flaky", Fault: FailTimes(2)}

	assert.Error(t, f.Execute(context.Background()))
	assert.Error(t, f.Execute(context.Background()))
	assert.NoError(t, f.Execute(context.Background()))
	assert.NoError(t, f.Execute(context.Background()))
}

func TestFailRateIsReproducibleForASeed(t *testing.T) {
	outcomes := func(seed int64) []bool {
		fault := FailRate(0.5, rand.New(rand.NewSource(seed)))
		out := make([]bool, 20)
		for i := range out {
			out[i] = fault()
		}
		return out
	}

	assert.Equal(t, outcomes(7), outcomes(7))

	never := FailRate(0, nil)
	always := FailRate(1, nil)
	for i := 0; i < 10; i++ {
		assert.False(t, never())
		assert.True(t, always())
	}
}
