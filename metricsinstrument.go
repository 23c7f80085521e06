package reservoir

import (
	"fmt"
	"github.com/openziti/reservoir/cf"
	"github.com/openziti/reservoir/util"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"io/ioutil"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

const (
	MetricsKind    = "reservoir"
	metricsVersion = 1
)

type MetricsInstrument struct {
	lock      sync.Mutex
	config    *MetricsInstrumentConfig
	cl        *util.CtrlListener
	instances []*metricsInstrumentInstance
}

type MetricsInstrumentConfig struct {
	Path       string `cf:"path"`
	SnapshotMs int    `cf:"snapshot_ms"`
	Enabled    bool   `cf:"enabled"`
	Ctrl       bool   `cf:"ctrl"`
	enabled    int32
}

func NewMetricsInstrument(config map[string]interface{}) (Instrument, error) {
	i := &MetricsInstrument{
		config: &MetricsInstrumentConfig{
			Path:       os.TempDir(),
			SnapshotMs: 1000,
			Ctrl:       true,
		},
	}
	if err := cf.Load(config, i.config); err != nil {
		return nil, errors.Wrap(err, "unable to load config")
	}
	if i.config.SnapshotMs < 1 {
		return nil, errors.Errorf("invalid snapshot_ms [%d]", i.config.SnapshotMs)
	}
	i.config.setEnabled(i.config.Enabled)
	if i.config.Ctrl {
		if err := i.addCtrlListener(); err != nil {
			return nil, err
		}
	}
	logrus.Info(cf.Dump("metrics", i.config))
	return i, nil
}

func (self *MetricsInstrument) addCtrlListener() error {
	cl, err := util.GetCtrlListener(self.config.Path, "reservoir")
	if err != nil {
		return errors.Wrap(err, "unable to get metrics ctrl listener")
	}
	cl.AddCallback("start", func(string) error {
		self.config.setEnabled(true)
		return nil
	})
	cl.AddCallback("stop", func(string) error {
		self.config.setEnabled(false)
		return nil
	})
	cl.AddCallback("write", func(string) error {
		_, err := self.WriteAllSamples()
		if err != nil {
			logrus.Errorf("error writing samples (%v)", err)
		}
		return err
	})
	cl.AddCallback("clean", func(string) error {
		self.clean()
		return nil
	})
	cl.Start()
	self.cl = cl
	return nil
}

func (self *MetricsInstrument) NewInstance(id string) InstrumentInstance {
	self.lock.Lock()
	defer self.lock.Unlock()
	ii := &metricsInstrumentInstance{
		id:     id,
		config: self.config,
		close:  make(chan struct{}),
		exited: make(chan struct{}),
	}
	go ii.snapshotter(self.config.SnapshotMs)
	self.instances = append(self.instances, ii)
	return ii
}

// WriteAllSamples writes one directory of samples per instance under the configured path and returns the
// directories written.
//
func (self *MetricsInstrument) WriteAllSamples() ([]string, error) {
	self.lock.Lock()
	defer self.lock.Unlock()

	var outPaths []string
	for _, ii := range self.instances {
		poolName := strings.ReplaceAll(fmt.Sprintf("%s_", ii.id), string(os.PathSeparator), "-")
		if err := os.MkdirAll(self.config.Path, os.ModePerm); err != nil {
			return nil, err
		}
		outPath, err := ioutil.TempDir(self.config.Path, poolName)
		if err != nil {
			return nil, err
		}
		logrus.Infof("writing metrics to: %s", outPath)

		if err := util.NewPoolMetricsId(MetricsKind, metricsVersion, ii.id).Write(outPath); err != nil {
			return nil, err
		}
		for name, samples := range ii.samples() {
			if err := util.WriteSamples(name, outPath, samples); err != nil {
				return nil, err
			}
		}
		outPaths = append(outPaths, outPath)
	}
	return outPaths, nil
}

// Close stops the control listener. Instances are stopped by their pools.
//
func (self *MetricsInstrument) Close() error {
	if self.cl != nil {
		return self.cl.Close()
	}
	return nil
}

func (self *MetricsInstrument) clean() {
	self.lock.Lock()
	defer self.lock.Unlock()

	idx := self.findClosed()
	for idx != -1 {
		logrus.Infof("removed metricsInstrumentInstance #%p", self.instances[idx])
		self.instances = append(self.instances[:idx], self.instances[idx+1:]...)
		idx = self.findClosed()
	}
}

func (self *MetricsInstrument) findClosed() int {
	for i, ii := range self.instances {
		if ii.isClosed() {
			return i
		}
	}
	return -1
}

func (self *MetricsInstrumentConfig) setEnabled(enabled bool) {
	v := int32(0)
	if enabled {
		v = 1
	}
	atomic.StoreInt32(&self.enabled, v)
}

func (self *MetricsInstrumentConfig) isEnabled() bool {
	return atomic.LoadInt32(&self.enabled) == 1
}

type metricsInstrumentInstance struct {
	id     string
	config *MetricsInstrumentConfig
	close  chan struct{}
	exited chan struct{}
	closed int32
	lock   sync.Mutex

	allocations          []*util.Sample
	allocationsAccum     int64
	acquires             []*util.Sample
	acquiresAccum        int64
	releases             []*util.Sample
	releasesAccum        int64
	ignoredReleases      []*util.Sample
	ignoredReleasesAccum int64
	rejects              []*util.Sample
	rejectsAccum         int64
	recycles             []*util.Sample
	recyclesAccum        int64
	available            []*util.Sample
	availableVal         int64
	inUse                []*util.Sample
	inUseVal             int64
}

/*
 * allocation
 */
func (self *metricsInstrumentInstance) Allocated() {
	if self.config.isEnabled() {
		atomic.AddInt64(&self.allocationsAccum, 1)
	}
}

/*
 * leasing
 */
func (self *metricsInstrumentInstance) Acquired() {
	if self.config.isEnabled() {
		atomic.AddInt64(&self.acquiresAccum, 1)
	}
}

func (self *metricsInstrumentInstance) Released() {
	if self.config.isEnabled() {
		atomic.AddInt64(&self.releasesAccum, 1)
	}
}

func (self *metricsInstrumentInstance) ReleaseIgnored(string) {
	if self.config.isEnabled() {
		atomic.AddInt64(&self.ignoredReleasesAccum, 1)
	}
}

func (self *metricsInstrumentInstance) Rejected() {
	if self.config.isEnabled() {
		atomic.AddInt64(&self.rejectsAccum, 1)
	}
}

func (self *metricsInstrumentInstance) Recycled() {
	if self.config.isEnabled() {
		atomic.AddInt64(&self.recyclesAccum, 1)
	}
}

/*
 * size
 */
func (self *metricsInstrumentInstance) SizeChanged(available, inUse int) {
	atomic.StoreInt64(&self.availableVal, int64(available))
	atomic.StoreInt64(&self.inUseVal, int64(inUse))
}

/*
 * instrument lifecycle
 */
// Shutdown stops the snapshotter and returns once its final snapshot is taken, so samples written afterwards are
// complete.
//
func (self *metricsInstrumentInstance) Shutdown() {
	if atomic.CompareAndSwapInt32(&self.closed, 0, 1) {
		close(self.close)
	}
	<-self.exited
}

func (self *metricsInstrumentInstance) isClosed() bool {
	return atomic.LoadInt32(&self.closed) == 1
}

func (self *metricsInstrumentInstance) snapshotter(ms int) {
	logrus.Debugf("[%s] started", self.id)
	defer logrus.Debugf("[%s] exited", self.id)
	defer close(self.exited)

	ticker := time.NewTicker(time.Duration(ms) * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if self.config.isEnabled() {
				self.snapshot()
			}
		case <-self.close:
			if self.config.isEnabled() {
				self.snapshot()
			}
			return
		}
	}
}

func (self *metricsInstrumentInstance) snapshot() {
	self.lock.Lock()
	defer self.lock.Unlock()

	now := time.Now()
	self.allocations = append(self.allocations, &util.Sample{Ts: now, V: atomic.SwapInt64(&self.allocationsAccum, 0)})
	self.acquires = append(self.acquires, &util.Sample{Ts: now, V: atomic.SwapInt64(&self.acquiresAccum, 0)})
	self.releases = append(self.releases, &util.Sample{Ts: now, V: atomic.SwapInt64(&self.releasesAccum, 0)})
	self.ignoredReleases = append(self.ignoredReleases, &util.Sample{Ts: now, V: atomic.SwapInt64(&self.ignoredReleasesAccum, 0)})
	self.rejects = append(self.rejects, &util.Sample{Ts: now, V: atomic.SwapInt64(&self.rejectsAccum, 0)})
	self.recycles = append(self.recycles, &util.Sample{Ts: now, V: atomic.SwapInt64(&self.recyclesAccum, 0)})
	self.available = append(self.available, &util.Sample{Ts: now, V: atomic.LoadInt64(&self.availableVal)})
	self.inUse = append(self.inUse, &util.Sample{Ts: now, V: atomic.LoadInt64(&self.inUseVal)})
}

func (self *metricsInstrumentInstance) samples() map[string][]*util.Sample {
	self.lock.Lock()
	defer self.lock.Unlock()

	return map[string][]*util.Sample{
		"allocations":      self.allocations,
		"acquires":         self.acquires,
		"releases":         self.releases,
		"ignored_releases": self.ignoredReleases,
		"rejects":          self.rejects,
		"recycles":         self.recycles,
		"available":        self.available,
		"in_use":           self.inUse,
	}
}

// Datasets lists the sample files a metrics instance writes.
//
var Datasets = []string{
	"allocations",
	"acquires",
	"releases",
	"ignored_releases",
	"rejects",
	"recycles",
	"available",
	"in_use",
}
