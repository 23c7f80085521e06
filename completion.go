package reservoir

import "sync/atomic"

// Completion wraps a callback that must run at most once, no matter how many times the scheduler that owns it fires.
//
type Completion struct {
	f     func()
	fired int32
}

func NewCompletion(f func()) *Completion {
	return &Completion{f: f}
}

// Fire runs the callback on the first call and reports whether it ran.
//
func (self *Completion) Fire() bool {
	if !atomic.CompareAndSwapInt32(&self.fired, 0, 1) {
		return false
	}
	if self.f != nil {
		self.f()
	}
	return true
}

func (self *Completion) Fired() bool {
	return atomic.LoadInt32(&self.fired) == 1
}
