package framework

import (
	"context"
	"sync"
	"time"

	"github.com/golang/glog"
)

// DefaultInterval is the tick period of a Loop.
const DefaultInterval = time.Millisecond

// Loop runs controllers once per tick, ordered by priority level.
type Loop struct {
	Interval time.Duration

	levels  [PriorityLevels]level
	runners []Runnable

	lock   sync.Mutex
	ticks  uint64
	inbox  []Message
	wakeUp chan struct{}
}

// LoopAdder adds its controllers and runnables to a loop.
type LoopAdder interface {
	AddToLoop(*Loop)
}

type level struct {
	lock        sync.Mutex
	pre, post   []Controller
	controllers []Controller
}

type ctxKey struct{}

// LoopCtlFrom gets LoopControl from the context of a tick or a runnable
// started by the loop.
func LoopCtlFrom(ctx context.Context) LoopControl {
	return ctx.Value(ctxKey{}).(LoopControl)
}

// CtlCtxFrom gets ControlContext from the context of a tick.
func CtlCtxFrom(ctx context.Context) ControlContext {
	return ctx.Value(ctxKey{}).(ControlContext)
}

// NewLoop creates a Loop.
func NewLoop() *Loop {
	return &Loop{Interval: DefaultInterval, wakeUp: make(chan struct{}, 1)}
}

// Add adds LoopAdders.
func (l *Loop) Add(adders ...LoopAdder) *Loop {
	for _, a := range adders {
		a.AddToLoop(l)
	}
	return l
}

// AddController registers controllers at a priority level. Controllers
// which are also Runnables are started by Run.
func (l *Loop) AddController(priorityLevel int, ctls ...Controller) *Loop {
	lv := &l.levels[priorityLevel]
	lv.controllers = append(lv.controllers, ctls...)
	for _, ctl := range ctls {
		if r, ok := ctl.(Runnable); ok {
			l.runners = append(l.runners, r)
		}
	}
	return l
}

// AddRunnable adds runnables started by Run.
func (l *Loop) AddRunnable(runnables ...Runnable) *Loop {
	l.runners = append(l.runners, runnables...)
	return l
}

// Run implements Runnable. It starts the runnables and ticks until
// ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	runner := NewRunnerWith(context.WithValue(ctx, ctxKey{}, LoopControl(l)))
	runner.StopOnFirst = false
	runner.Go(l.runners...)
	defer runner.Wait()

	interval := l.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			l.Step(ctx, now)
		case <-l.wakeUp:
			l.Step(ctx, time.Now())
		}
	}
}

// Step runs one tick at now. Runnables are not started, which lets
// tests drive the loop with a simulated clock. It must not overlap Run.
func (l *Loop) Step(ctx context.Context, now time.Time) {
	l.lock.Lock()
	l.ticks++
	t := &tick{loop: l, now: now, seq: l.ticks, msgs: l.inbox}
	l.inbox = nil
	l.lock.Unlock()

	t.ctx = context.WithValue(ctx, ctxKey{}, ControlContext(t))
	for n := range l.levels {
		t.level = n
		l.levels[n].run(t)
	}
}

// Ticks returns the number of ticks run.
func (l *Loop) Ticks() uint64 {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.ticks
}

// RunOrFail runs the loop in main.
func (l *Loop) RunOrFail() {
	if err := l.Run(context.Background()); err != nil {
		glog.Fatal(err)
	}
}

// PreRunAt implements LoopControl.
func (l *Loop) PreRunAt(priorityLevel int, hooks ...Controller) {
	lv := &l.levels[priorityLevel]
	lv.lock.Lock()
	lv.pre = append(lv.pre, hooks...)
	lv.lock.Unlock()
}

// PostRunAt implements LoopControl.
func (l *Loop) PostRunAt(priorityLevel int, hooks ...Controller) {
	lv := &l.levels[priorityLevel]
	lv.lock.Lock()
	lv.post = append(lv.post, hooks...)
	lv.lock.Unlock()
}

// PostMessage implements LoopControl.
func (l *Loop) PostMessage(msg Message) {
	l.lock.Lock()
	l.inbox = append(l.inbox, msg)
	l.lock.Unlock()
}

// TriggerNext implements LoopControl.
func (l *Loop) TriggerNext() {
	select {
	case l.wakeUp <- struct{}{}:
	default:
	}
}

func (lv *level) run(t *tick) {
	lv.lock.Lock()
	pre := lv.pre
	lv.pre = nil
	lv.lock.Unlock()
	t.control(pre)
	t.control(lv.controllers)
	lv.lock.Lock()
	post := lv.post
	lv.post = nil
	lv.lock.Unlock()
	t.control(post)
}

type tick struct {
	loop  *Loop
	ctx   context.Context
	now   time.Time
	seq   uint64
	level int
	msgs  []Message
}

func (t *tick) control(ctls []Controller) {
	for _, ctl := range ctls {
		if err := ctl.Control(t); err != nil {
			glog.Errorf("tick %d level %d: %v", t.seq, t.level, err)
		}
	}
}

func (t *tick) Time() time.Time                   { return t.now }
func (t *tick) Tick() uint64                      { return t.seq }
func (t *tick) Context() context.Context          { return t.ctx }
func (t *tick) PriorityLevel() int                { return t.level }
func (t *tick) Messages() MessageStore            { return t }
func (t *tick) PostRun(hooks ...Controller)       { t.loop.PostRunAt(t.level, hooks...) }
func (t *tick) PreRunAt(lv int, h ...Controller)  { t.loop.PreRunAt(lv, h...) }
func (t *tick) PostRunAt(lv int, h ...Controller) { t.loop.PostRunAt(lv, h...) }
func (t *tick) PostMessage(msg Message)           { t.loop.PostMessage(msg) }
func (t *tick) TriggerNext()                      { t.loop.TriggerNext() }

// AddMessages implements MessageAppender.
func (t *tick) AddMessages(msgs ...Message) {
	t.msgs = append(t.msgs, msgs...)
}

// ProcessMessages implements MessageStore.
func (t *tick) ProcessMessages(proc MessageProcessor) {
	msgs := t.msgs
	t.msgs = nil
	var kept []Message
	for n, msg := range msgs {
		mc := &messageContext{tick: t, msg: msg}
		proc.ProcessMessage(mc)
		if !mc.taken {
			kept = append(kept, msg)
		}
		if mc.stop {
			kept = append(kept, msgs[n+1:]...)
			break
		}
	}
	t.msgs = append(kept, t.msgs...)
}

type messageContext struct {
	tick  *tick
	msg   Message
	taken bool
	stop  bool
}

func (c *messageContext) CurrentMessage() Message     { return c.msg }
func (c *messageContext) MessageTaken()               { c.taken = true }
func (c *messageContext) StopProcessing()             { c.stop = true }
func (c *messageContext) AddMessages(msgs ...Message) { c.tick.AddMessages(msgs...) }
