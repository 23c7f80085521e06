package reservoir

import (
	"github.com/emirpasic/gods/sets/linkedhashset"
	"github.com/emirpasic/gods/stacks/arraystack"
	"github.com/michaelquigley/pfxlog"
	"github.com/pkg/errors"
)

var (
	ErrDestroyed = errors.New("pool destroyed")
	ErrExhausted = errors.New("pool exhausted")
)

// Object is anything a Pool can recycle. The pool calls SetActive(false) when an object is created or released, and
// SetActive(true) when it is leased. All other object state belongs to the caller.
//
type Object interface {
	comparable
	SetActive(active bool)
}

// Destroyer is implemented by pooled objects that own external resources. Pool.Destroy calls it once per object.
//
type Destroyer interface {
	Destroy()
}

// Factory creates one fresh, inactive instance of the pooled type inside its owning context.
//
type Factory[T Object] func() (T, error)

type Counts struct {
	Available int
	InUse     int
	Total     int
}

// Lease names one specific lease of a pooled object. A lease becomes stale once its object is released or recycled,
// and releasing a stale lease is a no-op.
//
type Lease[T Object] struct {
	Object     T
	slot       int
	generation uint64
}

type slot[T Object] struct {
	object     T
	leased     bool
	generation uint64
}

// Pool recycles instances of a single object type. Objects live in an arena of slots; the slot index is the stable
// identity used for all bookkeeping. Idle slots are kept on a LIFO stack, so the most recently released object is
// leased first. Leased slots are kept in lease order.
//
// Pool is not safe for concurrent use.
//
type Pool[T Object] struct {
	id        string
	factory   Factory[T]
	config    *Config
	slots     []*slot[T]
	index     map[T]int
	available *arraystack.Stack
	inUse     *linkedhashset.Set
	destroyed bool
	ii        InstrumentInstance
}

// NewPool creates a pool and eagerly fills it with capacity inactive objects. A nil config uses NewConfig(). If the
// factory fails, the objects created so far are destroyed and the instrument instance is shut down.
//
func NewPool[T Object](id string, capacity int, factory Factory[T], config *Config) (*Pool[T], error) {
	if factory == nil {
		return nil, errors.Errorf("pool [%s] requires a factory", id)
	}
	if capacity < 0 {
		return nil, errors.Errorf("pool [%s] capacity must not be negative [%d]", id, capacity)
	}
	if config == nil {
		config = NewConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid config for pool [%s]", id)
	}
	if config.bounded() && capacity > config.MaxSize {
		return nil, errors.Errorf("pool [%s] capacity [%d] exceeds max size [%d]", id, capacity, config.MaxSize)
	}

	p := &Pool[T]{
		id:        id,
		factory:   factory,
		config:    config,
		slots:     make([]*slot[T], 0, capacity),
		index:     make(map[T]int, capacity),
		available: arraystack.New(),
		inUse:     linkedhashset.New(),
		ii:        config.instrument().NewInstance(id),
	}
	for i := 0; i < capacity; i++ {
		idx, err := p.allocate()
		if err != nil {
			p.Destroy()
			return nil, err
		}
		p.available.Push(idx)
	}
	p.sizeChanged()
	return p, nil
}

func (self *Pool[T]) Id() string {
	return self.id
}

// Acquire leases an object, creating a new one when none is available. With the default unbounded config it only
// fails when the factory fails.
//
func (self *Pool[T]) Acquire() (T, error) {
	lease, err := self.AcquireLease()
	if err != nil {
		var zero T
		return zero, err
	}
	return lease.Object, nil
}

func (self *Pool[T]) AcquireLease() (Lease[T], error) {
	if self.destroyed {
		return Lease[T]{}, ErrDestroyed
	}

	var idx int
	if v, ok := self.available.Pop(); ok {
		idx = v.(int)

	} else if self.config.bounded() && len(self.slots) >= self.config.MaxSize {
		switch self.config.Policy {
		case PolicyReject:
			self.ii.Rejected()
			return Lease[T]{}, errors.Wrapf(ErrExhausted, "pool [%s] at max size [%d]", self.id, self.config.MaxSize)

		case PolicyRecycle:
			idx = self.oldest()
			self.recycle(idx)

		default:
			return Lease[T]{}, errors.Errorf("pool [%s] has unsupported policy [%s]", self.id, self.config.Policy)
		}

	} else {
		var err error
		if idx, err = self.allocate(); err != nil {
			return Lease[T]{}, err
		}
	}

	s := self.slots[idx]
	s.leased = true
	s.object.SetActive(true)
	self.inUse.Add(idx)
	self.ii.Acquired()
	self.sizeChanged()

	return Lease[T]{Object: s.object, slot: idx, generation: s.generation}, nil
}

// Release deactivates a leased object and makes it available again. Releasing an object this pool does not own, or
// one that is not currently leased, is a no-op and returns false.
//
func (self *Pool[T]) Release(object T) bool {
	idx, found := self.index[object]
	if !found {
		self.ignored("unknown object")
		return false
	}
	return self.release(idx)
}

// ReleaseLease releases the leased object only if the lease is still current.
//
func (self *Pool[T]) ReleaseLease(lease Lease[T]) bool {
	if lease.slot < 0 || lease.slot >= len(self.slots) || self.slots[lease.slot].object != lease.Object {
		self.ignored("unknown lease")
		return false
	}
	if self.slots[lease.slot].generation != lease.generation {
		self.ignored("stale lease")
		return false
	}
	return self.release(lease.slot)
}

// Current reports whether the lease is still the live lease of its object.
//
func (self *Pool[T]) Current(lease Lease[T]) bool {
	if lease.slot < 0 || lease.slot >= len(self.slots) {
		return false
	}
	s := self.slots[lease.slot]
	return s.object == lease.Object && s.leased && s.generation == lease.generation
}

// ReleaseAll releases every leased object and returns how many were released.
//
func (self *Pool[T]) ReleaseAll() int {
	released := 0
	for _, v := range self.inUse.Values() {
		if self.release(v.(int)) {
			released++
		}
	}
	return released
}

// InUse visits the leased objects in lease order. The visit runs over a snapshot, so f may release objects.
//
func (self *Pool[T]) InUse(f func(T)) {
	for _, v := range self.inUse.Values() {
		f(self.slots[v.(int)].object)
	}
}

func (self *Pool[T]) Leased(object T) bool {
	if idx, found := self.index[object]; found {
		return self.slots[idx].leased
	}
	return false
}

func (self *Pool[T]) Count() Counts {
	return Counts{
		Available: self.available.Size(),
		InUse:     self.inUse.Size(),
		Total:     len(self.slots),
	}
}

// Destroy releases every reference the pool holds, calling Destroy on objects that implement Destroyer. Later
// acquires fail with ErrDestroyed; later releases are no-ops.
//
func (self *Pool[T]) Destroy() {
	if self.destroyed {
		return
	}
	self.destroyed = true
	for _, s := range self.slots {
		if d, ok := interface{}(s.object).(Destroyer); ok {
			d.Destroy()
		}
	}
	total := len(self.slots)
	self.slots = nil
	self.index = make(map[T]int)
	self.available.Clear()
	self.inUse.Clear()
	self.sizeChanged()
	self.ii.Shutdown()
	pfxlog.ContextLogger(self.id).Debugf("destroyed [%d] objects", total)
}

func (self *Pool[T]) allocate() (int, error) {
	object, err := self.factory()
	if err != nil {
		return -1, errors.Wrapf(err, "unable to allocate object for pool [%s]", self.id)
	}
	if _, found := self.index[object]; found {
		return -1, errors.Errorf("factory for pool [%s] returned an object the pool already owns", self.id)
	}
	object.SetActive(false)
	idx := len(self.slots)
	self.slots = append(self.slots, &slot[T]{object: object})
	self.index[object] = idx
	self.ii.Allocated()
	return idx, nil
}

func (self *Pool[T]) release(idx int) bool {
	s := self.slots[idx]
	if !s.leased {
		self.ignored("not leased")
		return false
	}
	s.object.SetActive(false)
	s.leased = false
	s.generation++
	self.inUse.Remove(idx)
	self.available.Push(idx)
	self.ii.Released()
	self.sizeChanged()
	return true
}

func (self *Pool[T]) oldest() int {
	it := self.inUse.Iterator()
	it.First()
	return it.Value().(int)
}

// recycle takes a slot away from its current holder. Any outstanding lease on it becomes stale.
//
func (self *Pool[T]) recycle(idx int) {
	s := self.slots[idx]
	s.object.SetActive(false)
	s.leased = false
	s.generation++
	self.inUse.Remove(idx)
	self.ii.Recycled()
	pfxlog.ContextLogger(self.id).Debugf("recycled slot [%d] at max size [%d]", idx, self.config.MaxSize)
}

func (self *Pool[T]) ignored(reason string) {
	self.ii.ReleaseIgnored(reason)
	pfxlog.ContextLogger(self.id).Debugf("release ignored (%s)", reason)
}

func (self *Pool[T]) sizeChanged() {
	self.ii.SizeChanged(self.available.Size(), self.inUse.Size())
}
