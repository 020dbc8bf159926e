package framework

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/golang/glog"
	"github.com/pkg/errors"
)

type namedRunnable struct {
	Runnable
	name string
}

func (r *namedRunnable) Name() string {
	return r.name
}

// NamedRun wraps a Runnable with a name used in logs and errors.
func NamedRun(name string, runnable Runnable) Runnable {
	return &namedRunnable{name: name, Runnable: runnable}
}

// Runner runs the loop, the stream readers and the bridge of a process
// until they stop, collecting their errors.
type Runner struct {
	Context context.Context
	Runners []Runnable
	// StopOnFirst cancels the others once one Runnable stops.
	StopOnFirst bool

	cancel context.CancelFunc
	errCh  chan error
	exitCh chan struct{}
}

// NewRunner creates a runner with a background context.
func NewRunner() *Runner {
	return NewRunnerWith(context.Background())
}

// NewRunnerWith creates a runner derived from ctx.
func NewRunnerWith(ctx context.Context) *Runner {
	ctx, cancel := context.WithCancel(ctx)
	return &Runner{
		Context:     ctx,
		StopOnFirst: true,
		cancel:      cancel,
		errCh:       make(chan error, 1),
		exitCh:      make(chan struct{}),
	}
}

// HandleSignals cancels on Ctrl-C or SIGTERM, a second signal forces exit.
func (r *Runner) HandleSignals() *Runner {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		glog.Info("stop requested, closing the link")
		r.cancel()
		<-sigCh
		glog.Error("stop requested again, force exit")
		close(r.exitCh)
	}()
	return r
}

// Go starts Runnables with the runner context.
func (r *Runner) Go(runners ...Runnable) *Runner {
	for _, runner := range runners {
		name := strconv.Itoa(len(r.Runners))
		if named, ok := runner.(Named); ok {
			name = named.Name()
		}
		r.Runners = append(r.Runners, runner)
		go r.run(runner, name)
	}
	return r
}

func (r *Runner) run(runner Runnable, name string) {
	glog.V(4).Infof("runner %s started", name)
	err := runner.Run(r.Context)
	if err != nil && errors.Cause(err) != context.Canceled {
		glog.Errorf("runner %s stopped: %v", name, err)
		err = errors.Wrap(err, name)
	} else {
		glog.V(4).Infof("runner %s stopped", name)
	}
	r.errCh <- err
}

// Wait waits until all Runnables stop and aggregates their errors.
func (r *Runner) Wait() error {
	defer r.cancel()
	var errs AggregatedError
	for n := range r.Runners {
		select {
		case <-r.exitCh:
			return ErrForcedExit
		case err := <-r.errCh:
			errs.Add(err)
			if n == 0 && r.StopOnFirst {
				r.cancel()
			}
		}
	}
	return errs.Aggregate()
}
