package reservoir

import (
	"fmt"
	"github.com/openziti/reservoir/cf"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"io"
	"os"
	"sync"
)

type traceInstrument struct {
	config *traceInstrumentConfig
	out    io.Writer
}

type traceInstrumentConfig struct {
	Allocation bool `cf:"allocation"`
	Lease      bool `cf:"lease"`
	Size       bool `cf:"size"`
	Error      bool `cf:"error"`
}

type traceInstrumentInstance struct {
	id   string
	lock sync.Mutex
	i    *traceInstrument
}

func NewTraceInstrument(config map[string]interface{}) (Instrument, error) {
	i := &traceInstrument{
		config: &traceInstrumentConfig{Error: true},
		out:    os.Stdout,
	}
	if err := cf.Load(config, i.config); err != nil {
		return nil, errors.Wrap(err, "unable to load config")
	}
	logrus.Info(cf.Dump("trace", i.config))
	return i, nil
}

func (self *traceInstrument) NewInstance(id string) InstrumentInstance {
	return &traceInstrumentInstance{
		id: id,
		i:  self,
	}
}

/*
 * allocation
 */

func (self *traceInstrumentInstance) Allocated() {
	if self.i.config.Allocation {
		self.println(fmt.Sprintf("&& %-24s ALLOCATE", self.id))
	}
}

/*
 * leasing
 */

func (self *traceInstrumentInstance) Acquired() {
	if self.i.config.Lease {
		self.println(fmt.Sprintf("&& %-24s ACQUIRE", self.id))
	}
}

func (self *traceInstrumentInstance) Released() {
	if self.i.config.Lease {
		self.println(fmt.Sprintf("&& %-24s RELEASE", self.id))
	}
}

func (self *traceInstrumentInstance) ReleaseIgnored(reason string) {
	if self.i.config.Error {
		self.println(fmt.Sprintf("!! %-24s RELEASE IGNORED: %s", self.id, reason))
	}
}

func (self *traceInstrumentInstance) Rejected() {
	if self.i.config.Error {
		self.println(fmt.Sprintf("!! %-24s REJECTED", self.id))
	}
}

func (self *traceInstrumentInstance) Recycled() {
	if self.i.config.Lease {
		self.println(fmt.Sprintf("!! %-24s RECYCLE", self.id))
	}
}

/*
 * size
 */

func (self *traceInstrumentInstance) SizeChanged(available, inUse int) {
	if self.i.config.Size {
		self.println(fmt.Sprintf("&& %-24s SIZE: %d available, %d in use", self.id, available, inUse))
	}
}

/*
 * instrument lifecycle
 */

func (self *traceInstrumentInstance) Shutdown() {
	self.println(fmt.Sprintf("@@ %-24s SHUTDOWN", self.id))
}

func (self *traceInstrumentInstance) println(line string) {
	self.lock.Lock()
	_, _ = fmt.Fprintln(self.i.out, line)
	self.lock.Unlock()
}
