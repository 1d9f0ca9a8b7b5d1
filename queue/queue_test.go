package queue

import (
	"context"
	"testing"

	command "github.com/goliatone/go-command-queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type named string

func (n named) Execute(context.Context) error { return nil }

func popAll(q *Queue) []named {
	var out []named
	for {
		cmd, ok := q.PopFront()
		if !ok {
			return out
		}
		out = append(out, cmd.(named))
	}
}

func TestQueue_FIFO(t *testing.T) {
	q := New(named("a"), named("b"))
	q.PushBack(named("c"))

	assert.Equal(t, 3, q.Len())
	assert.Equal(t, []named{"a", "b", "c"}, popAll(q))
	assert.Equal(t, 0, q.Len())

	_, ok := q.PopFront()
	assert.False(t, ok)
}

func TestQueue_PushFrontAfterPop(t *testing.T) {
	q := New(named("a"), named("b"), named("c"))

	first, ok := q.PopFront()
	require.True(t, ok)
	second, _ := q.PopFront()
	assert.Equal(t, named("a"), first)

	q.PushFront(second)
	q.PushFront(named("x"))

	assert.Equal(t, []named{"x", "b", "c"}, popAll(q))
}

func TestQueue_PushFrontOnEmpty(t *testing.T) {
	q := New()
	q.PushFront(named("a"))
	q.PushBack(named("b"))
	q.PushFront(named("z"))

	assert.Equal(t, []command.Command{named("z"), named("a"), named("b")}, q.Snapshot())
	assert.Equal(t, []named{"z", "a", "b"}, popAll(q))
}

func TestQueue_IgnoresNil(t *testing.T) {
	q := New(nil)
	q.PushBack(nil)
	q.PushFront(nil)
	assert.Equal(t, 0, q.Len())
}

func TestQueue_CompactsLongRuns(t *testing.T) {
	q := New()
	for i := 0; i < 100; i++ {
		q.PushBack(named("n"))
	}
	for i := 0; i < 80; i++ {
		_, ok := q.PopFront()
		require.True(t, ok)
	}
	q.PushBack(named("tail"))
	assert.Equal(t, 21, q.Len())

	got := popAll(q)
	assert.Len(t, got, 21)
	assert.Equal(t, named("tail"), got[20])
}
