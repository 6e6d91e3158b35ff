package host

import (
	"context"
	"fmt"
	"sync"
)

// Callback implements a host function. It receives one value per declared
// parameter; a rest parameter arrives as a List.
type Callback func(args []Value) Value

type job struct {
	fn    Callback
	args  []Value
	reply chan Value
}

// Executor runs callbacks on one dedicated goroutine. The compiler blocks on
// the reply until the callback returns, so callbacks that touch state owned
// by that goroutine never run concurrently with each other.
type Executor struct {
	jobs chan job
	quit chan struct{}
	once sync.Once
	wg   sync.WaitGroup
}

// NewExecutor starts the executor goroutine. Call Close to stop it.
func NewExecutor() *Executor {
	x := &Executor{jobs: make(chan job), quit: make(chan struct{})}
	x.wg.Add(1)
	go x.loop()
	return x
}

func (x *Executor) loop() {
	defer x.wg.Done()
	for {
		select {
		case j := <-x.jobs:
			j.reply <- run(j.fn, j.args)
		case <-x.quit:
			return
		}
	}
}

// Call runs fn on the executor goroutine and waits for its result. A nil
// executor runs fn on the calling goroutine.
func (x *Executor) Call(ctx context.Context, fn Callback, args []Value) (Value, error) {
	if x == nil {
		return run(fn, args), nil
	}
	j := job{fn: fn, args: args, reply: make(chan Value, 1)}
	select {
	case x.jobs <- j:
	case <-x.quit:
		return nil, fmt.Errorf("host executor closed")
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case v := <-j.reply:
		return v, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close stops the executor goroutine and waits for it to exit.
func (x *Executor) Close() {
	x.once.Do(func() { close(x.quit) })
	x.wg.Wait()
}

// run calls fn, turning a panic into an Error value.
func run(fn Callback, args []Value) (v Value) {
	defer func() {
		if r := recover(); r != nil {
			v = Error{Message: fmt.Sprint(r)}
		}
	}()
	return fn(args)
}
