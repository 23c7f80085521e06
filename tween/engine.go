package tween

import (
	"github.com/sirupsen/logrus"
	"time"
)

// Props are the animatable properties of a target.
//
type Props struct {
	X     float64
	Y     float64
	Alpha float64
	Scale float64
}

func (self Props) lerp(to Props, t float64) Props {
	return Props{
		X:     self.X + (to.X-self.X)*t,
		Y:     self.Y + (to.Y-self.Y)*t,
		Alpha: self.Alpha + (to.Alpha-self.Alpha)*t,
		Scale: self.Scale + (to.Scale-self.Scale)*t,
	}
}

type Spec struct {
	From       Props
	To         Props
	Duration   time.Duration
	Ease       Ease
	OnUpdate   func(Props)
	OnComplete func()
}

type Handle struct {
	spec      Spec
	elapsed   time.Duration
	done      bool
	cancelled bool
}

func (self *Handle) Done() bool {
	return self.done
}

func (self *Handle) Cancelled() bool {
	return self.cancelled
}

func (self *Handle) Elapsed() time.Duration {
	return self.elapsed
}

// Engine advances tweens once per frame. It is single-threaded: Add, Update, Cancel and Clear must be called from
// the frame loop that owns it, which includes the tween callbacks themselves.
//
type Engine struct {
	pending  []*Handle
	updating []*Handle
}

func NewEngine() *Engine {
	return &Engine{}
}

// Add schedules a tween. A tween added while Update is running starts on the next Update.
//
func (self *Engine) Add(spec Spec) *Handle {
	if spec.Ease == nil {
		spec.Ease = Linear
	}
	h := &Handle{spec: spec}
	self.pending = append(self.pending, h)
	return h
}

// Update advances every pending tween by dt. Tweens that reach their duration get a final OnUpdate at the To
// props, are removed, and then fire OnComplete exactly once. A tween cancelled by an earlier callback in the same
// Update gets no further callbacks.
//
func (self *Engine) Update(dt time.Duration) {
	if dt < 0 {
		logrus.Warnf("ignoring negative frame delta [%s]", dt)
		return
	}
	current := self.pending
	self.pending = nil
	self.updating = current
	defer func() { self.updating = nil }()

	var completed []*Handle
	for _, h := range current {
		if h.cancelled {
			continue
		}
		h.elapsed += dt
		progress := 1.0
		if h.spec.Duration > 0 && h.elapsed < h.spec.Duration {
			progress = float64(h.elapsed) / float64(h.spec.Duration)
		}
		if h.spec.OnUpdate != nil {
			h.spec.OnUpdate(h.spec.From.lerp(h.spec.To, h.spec.Ease(progress)))
		}
		if h.cancelled {
			continue
		}
		if progress >= 1.0 {
			completed = append(completed, h)
		} else {
			self.pending = append(self.pending, h)
		}
	}
	for _, h := range completed {
		if h.cancelled {
			continue
		}
		h.done = true
		if h.spec.OnComplete != nil {
			h.spec.OnComplete()
		}
	}
}

// Cancel stops a tween without firing its completion. A tween whose completion already fired cannot be cancelled.
//
func (self *Engine) Cancel(h *Handle) bool {
	if h == nil || h.done || h.cancelled {
		return false
	}
	h.cancelled = true
	for i, p := range self.pending {
		if p == h {
			self.pending = append(self.pending[:i], self.pending[i+1:]...)
			break
		}
	}
	return true
}

// Clear cancels every tween whose completion has not fired, including those the running Update has yet to finish,
// and returns how many were cancelled. Owners call it on teardown so that no completion fires against torn-down
// objects.
//
func (self *Engine) Clear() int {
	cancelled := 0
	for _, handles := range [][]*Handle{self.updating, self.pending} {
		for _, h := range handles {
			if !h.done && !h.cancelled {
				h.cancelled = true
				cancelled++
			}
		}
	}
	self.pending = nil
	return cancelled
}

func (self *Engine) Pending() int {
	return len(self.pending)
}
