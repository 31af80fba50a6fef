// Package async starts functions on their own goroutine and hands back a
// handle the caller may wait on or ignore.
package async

import (
	"github.com/google/uuid"
	"github.com/sourcegraph/conc/panics"
)

// Task is a function running in the background.
type Task struct {
	id   string
	done chan struct{}
	err  error
}

// Go runs fn on a new goroutine and returns immediately.
// A panic in fn is recovered and reported by Wait.
func Go(fn func()) *Task {
	t := &Task{
		id:   uuid.NewString(),
		done: make(chan struct{}),
	}
	go func() {
		defer close(t.done)
		var catcher panics.Catcher
		catcher.Try(fn)
		t.err = catcher.Recovered().AsError()
	}()
	return t
}

// Wrap returns a function that runs fn in the background each time it is called.
func Wrap(fn func()) func() *Task {
	return func() *Task {
		return Go(fn)
	}
}

// Wrap1 is Wrap for functions taking one argument.
func Wrap1[A any](fn func(A)) func(A) *Task {
	return func(a A) *Task {
		return Go(func() { fn(a) })
	}
}

// Wrap2 is Wrap for functions taking two arguments.
func Wrap2[A, B any](fn func(A, B)) func(A, B) *Task {
	return func(a A, b B) *Task {
		return Go(func() { fn(a, b) })
	}
}

// ID returns the task's unique identifier.
func (t *Task) ID() string {
	return t.id
}

// Done is closed when the task's function returns or panics.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the task finishes. The error is non-nil only if the
// function panicked.
func (t *Task) Wait() error {
	<-t.done
	return t.err
}
