package fiber

import "sync"

type ThenableStatus uint8

const (
	Pending ThenableStatus = iota
	Fulfilled
	Rejected
)

// Thenable is a value a component can wait on through Use. Implementations
// must be comparable, since the ping cache keys on them.
type Thenable interface {
	Status() ThenableStatus
	Value() any
	Err() error
	// Then registers fn to run once the thenable settles, or immediately if
	// it already has.
	Then(fn func())
}

// Deferred is a Thenable settled by hand. It may be settled from any
// goroutine.
type Deferred struct {
	mu        sync.Mutex
	status    ThenableStatus
	value     any
	err       error
	callbacks []func()
}

var _ Thenable = (*Deferred)(nil)

func NewDeferred() *Deferred { return &Deferred{} }

func Resolved(v any) *Deferred {
	return &Deferred{status: Fulfilled, value: v}
}

func (d *Deferred) Status() ThenableStatus {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.status
}

func (d *Deferred) Value() any {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.value
}

func (d *Deferred) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.err
}

func (d *Deferred) Then(fn func()) {
	d.mu.Lock()
	if d.status == Pending {
		d.callbacks = append(d.callbacks, fn)
		d.mu.Unlock()
		return
	}
	d.mu.Unlock()
	fn()
}

func (d *Deferred) Resolve(v any) { d.settle(Fulfilled, v, nil) }

func (d *Deferred) Reject(err error) { d.settle(Rejected, nil, err) }

func (d *Deferred) settle(status ThenableStatus, v any, err error) {
	d.mu.Lock()
	if d.status != Pending {
		d.mu.Unlock()
		return
	}
	d.status, d.value, d.err = status, v, err
	callbacks := d.callbacks
	d.callbacks = nil
	d.mu.Unlock()

	for _, fn := range callbacks {
		fn()
	}
}
