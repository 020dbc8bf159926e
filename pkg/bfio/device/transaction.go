package device

import (
	"time"

	"github.com/robotalks/bfio.go/pkg/bfio"
	"github.com/robotalks/bfio.go/pkg/bfio/gates"
	fx "github.com/robotalks/bfio.go/pkg/framework"
)

// Transaction requests a gate with values.
type Transaction struct {
	ID     bfio.FunctionID
	Values []interface{}
}

// Result is the outcome of a Transaction.
type Result struct {
	ID     bfio.FunctionID
	Values []interface{}
	Err    error
}

// Future delivers the Result of a Transaction.
type Future interface {
	ResultChan() <-chan Result
}

type future struct {
	id     bfio.FunctionID
	result chan Result
}

func (f *future) ResultChan() <-chan Result {
	return f.result
}

func (f *future) resolve(r Result) {
	r.ID = f.id
	f.result <- r
	close(f.result)
}

type postedMsg struct {
	dev *Device
	fn  func(*Device)
}

// NewMessage implements fx.Message.
func (m *postedMsg) NewMessage() fx.Message {
	return &postedMsg{}
}

// Post runs fn inside the next tick. It is safe to call from any goroutine.
func (d *Device) Post(fn func(*Device)) {
	if d.loop != nil {
		d.loop.PostMessage(&postedMsg{dev: d, fn: fn})
		return
	}
	d.post(fn)
}

func (d *Device) post(fn func(*Device)) {
	d.postLock.Lock()
	d.posted = append(d.posted, fn)
	d.postLock.Unlock()
}

func (d *Device) runPosted() {
	d.postLock.Lock()
	fns := d.posted
	d.posted = nil
	d.postLock.Unlock()
	for _, fn := range fns {
		fn(d)
	}
}

// Do requests a gate from any goroutine. The Future resolves with the
// decoded answer, or with the error which returned the gate to Cleaned.
func (d *Device) Do(tx Transaction) Future {
	f := &future{id: tx.ID, result: make(chan Result, 1)}
	d.Post(func(d *Device) {
		d.start(tx, f)
	})
	return f
}

// DoArgs is Do with values parsed from text against the request
// signature of the gate.
func (d *Device) DoArgs(id bfio.FunctionID, args ...string) Future {
	f := &future{id: id, result: make(chan Result, 1)}
	d.Post(func(d *Device) {
		tx, err := d.parseArgs(id, args)
		if err != nil {
			f.resolve(Result{Err: err})
			return
		}
		d.start(tx, f)
	})
	return f
}

func (d *Device) parseArgs(id bfio.FunctionID, args []string) (Transaction, error) {
	g := d.Registry.Gate(id)
	if g == nil {
		return Transaction{}, bfio.Errorf(bfio.Incompatibility, "device.do", "no gate for %s", id)
	}
	types, _ := g.Signature()
	if len(args) != len(types) {
		return Transaction{}, bfio.Errorf(bfio.Failed, "device.do", "%s expects %d values, got %d", id, len(types), len(args))
	}
	tx := Transaction{ID: id, Values: make([]interface{}, len(types))}
	for n, t := range types {
		v, err := bfio.ParseValue(t, args[n])
		if err != nil {
			return Transaction{}, err
		}
		tx.Values[n] = v
	}
	return tx, nil
}

// Call is Do waiting at most timeout for the Result.
func (d *Device) Call(tx Transaction, timeout time.Duration) Result {
	select {
	case r := <-d.Do(tx).ResultChan():
		return r
	case <-time.After(timeout):
		return Result{ID: tx.ID, Err: bfio.Errorf(bfio.NoConnection, "device.call", "%s: no result within %v", tx.ID, timeout)}
	}
}

func (d *Device) start(tx Transaction, f *future) {
	g := d.Registry.Gate(tx.ID)
	if g == nil {
		f.resolve(Result{Err: bfio.Errorf(bfio.Incompatibility, "device.do", "no gate for %s", tx.ID)})
		return
	}
	if d.pending[tx.ID] != nil {
		f.resolve(Result{Err: bfio.Errorf(bfio.Failed, "device.do", "%s already requested", tx.ID)})
		return
	}
	if err := g.RequestValues(tx.Values...); err != nil {
		f.resolve(Result{Err: err})
		return
	}
	d.pending[tx.ID] = f
}

func (d *Device) gateEvent(e gates.Event) {
	f := d.pending[e.ID]
	if f == nil {
		return
	}
	switch {
	case e.Status == gates.AvailableArrival:
		d.ready = append(d.ready, e.ID)
	case e.Status == gates.Cleaned && e.Err != nil:
		delete(d.pending, e.ID)
		f.resolve(Result{Err: e.Err})
	}
}

// resolveReady reads answers of transactions once every listener saw the arrival.
func (d *Device) resolveReady() {
	ids := d.ready
	d.ready = nil
	for _, id := range ids {
		f := d.pending[id]
		if f == nil {
			continue
		}
		delete(d.pending, id)
		vals, err := d.Registry.Gate(id).ReadValues()
		f.resolve(Result{Values: vals, Err: err})
	}
}

func (d *Device) failPending(err error) {
	for id, f := range d.pending {
		delete(d.pending, id)
		f.resolve(Result{Err: err})
	}
}
