// Package queue holds the ordered sequence of pending commands drained by
// the runner.
package queue

import (
	command "github.com/goliatone/go-command-queue"
)

// Queue is an unbounded FIFO of commands with front insertion for retries.
// It is not safe for concurrent use; the runner and the error handlers it
// calls share it on a single goroutine.
type Queue struct {
	items []command.Command
	head  int
}

// New creates a queue seeded with cmds in order.
func New(cmds ...command.Command) *Queue {
	q := &Queue{}
	for _, cmd := range cmds {
		q.PushBack(cmd)
	}
	return q
}

// PushBack appends cmd. Nil commands are ignored.
func (q *Queue) PushBack(cmd command.Command) {
	if cmd == nil {
		return
	}
	q.items = append(q.items, cmd)
}

// PushFront inserts cmd so it is the next command popped.
func (q *Queue) PushFront(cmd command.Command) {
	if cmd == nil {
		return
	}
	if q.head > 0 {
		q.head--
		q.items[q.head] = cmd
		return
	}
	q.items = append([]command.Command{cmd}, q.items...)
}

// PopFront removes and returns the next command.
func (q *Queue) PopFront() (command.Command, bool) {
	if q.Len() == 0 {
		return nil, false
	}
	cmd := q.items[q.head]
	q.items[q.head] = nil
	q.head++
	q.compact()
	return cmd, true
}

// Len is the number of pending commands.
func (q *Queue) Len() int {
	return len(q.items) - q.head
}

// Snapshot returns the pending commands in pop order.
func (q *Queue) Snapshot() []command.Command {
	out := make([]command.Command, q.Len())
	copy(out, q.items[q.head:])
	return out
}

func (q *Queue) compact() {
	switch {
	case q.head == len(q.items):
		q.items = q.items[:0]
		q.head = 0
	case q.head > 32 && q.head*2 >= len(q.items):
		n := copy(q.items, q.items[q.head:])
		clear(q.items[n:])
		q.items = q.items[:n]
		q.head = 0
	}
}
