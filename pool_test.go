package reservoir

import (
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"math/rand"
	"testing"
)

type testObject struct {
	id        int
	active    bool
	toggles   int
	destroyed bool
}

func (self *testObject) SetActive(active bool) {
	self.active = active
	self.toggles++
}

func (self *testObject) Destroy() {
	self.destroyed = true
}

type testFactory struct {
	created []*testObject
	failAt  int
}

func (self *testFactory) create() (*testObject, error) {
	if self.failAt > 0 && len(self.created)+1 >= self.failAt {
		return nil, errors.New("missing asset")
	}
	o := &testObject{id: len(self.created) + 1, active: true}
	self.created = append(self.created, o)
	return o, nil
}

func newTestPool(t *testing.T, capacity int, config *Config) (*Pool[*testObject], *testFactory) {
	f := &testFactory{}
	p, err := NewPool[*testObject]("test", capacity, f.create, config)
	require.NoError(t, err)
	return p, f
}

func assertPartition(t *testing.T, p *Pool[*testObject], f *testFactory) {
	counts := p.Count()
	assert.Equal(t, len(f.created), counts.Total)
	assert.Equal(t, counts.Total, counts.Available+counts.InUse)

	leased := make(map[*testObject]bool)
	p.InUse(func(o *testObject) { leased[o] = true })
	assert.Equal(t, counts.InUse, len(leased))
	for _, o := range f.created {
		assert.Equal(t, leased[o], p.Leased(o))
		assert.Equal(t, leased[o], o.active)
	}
}

func TestCapacity(t *testing.T) {
	p, f := newTestPool(t, 5, nil)
	assert.Equal(t, Counts{Available: 5, InUse: 0, Total: 5}, p.Count())
	for _, o := range f.created {
		assert.False(t, o.active)
	}
}

func TestZeroCapacity(t *testing.T) {
	p, _ := newTestPool(t, 0, nil)
	assert.Equal(t, Counts{}, p.Count())

	o, err := p.Acquire()
	require.NoError(t, err)
	assert.True(t, o.active)
	assert.Equal(t, Counts{Available: 0, InUse: 1, Total: 1}, p.Count())
}

func TestNegativeCapacity(t *testing.T) {
	f := &testFactory{}
	_, err := NewPool[*testObject]("test", -1, f.create, nil)
	assert.Error(t, err)
}

func TestBasicReuse(t *testing.T) {
	p, _ := newTestPool(t, 2, nil)

	a, err := p.Acquire()
	require.NoError(t, err)
	assert.True(t, a.active)
	assert.Equal(t, Counts{Available: 1, InUse: 1, Total: 2}, p.Count())

	assert.True(t, p.Release(a))
	assert.False(t, a.active)
	assert.Equal(t, Counts{Available: 2, InUse: 0, Total: 2}, p.Count())

	b, err := p.Acquire()
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, a.id, b.id)
	assert.Equal(t, Counts{Available: 1, InUse: 1, Total: 2}, p.Count())
}

func TestLifoOrder(t *testing.T) {
	p, _ := newTestPool(t, 3, nil)
	a, _ := p.Acquire()
	b, _ := p.Acquire()
	c, _ := p.Acquire()

	p.Release(b)
	p.Release(a)
	p.Release(c)

	next, err := p.Acquire()
	require.NoError(t, err)
	assert.Same(t, c, next)
	next, err = p.Acquire()
	require.NoError(t, err)
	assert.Same(t, a, next)
}

func TestOverflow(t *testing.T) {
	p, f := newTestPool(t, 1, nil)

	_, err := p.Acquire()
	require.NoError(t, err)
	_, err = p.Acquire()
	require.NoError(t, err)

	assert.Len(t, f.created, 2)
	assert.Equal(t, Counts{Available: 0, InUse: 2, Total: 2}, p.Count())
}

func TestGrowth(t *testing.T) {
	p, f := newTestPool(t, 3, nil)
	for i := 0; i < 3; i++ {
		_, err := p.Acquire()
		require.NoError(t, err)
		assert.Len(t, f.created, 3)
	}
	for i := 1; i <= 10; i++ {
		o, err := p.Acquire()
		require.NoError(t, err)
		assert.Len(t, f.created, 3+i)
		assert.Same(t, f.created[len(f.created)-1], o)
	}
	assertPartition(t, p, f)
}

func TestIdempotentRelease(t *testing.T) {
	p, _ := newTestPool(t, 2, nil)
	a, _ := p.Acquire()

	assert.True(t, p.Release(a))
	once := p.Count()
	toggles := a.toggles

	assert.False(t, p.Release(a))
	assert.Equal(t, once, p.Count())
	assert.Equal(t, toggles, a.toggles)
}

func TestReleaseUnknown(t *testing.T) {
	p, _ := newTestPool(t, 2, nil)
	stranger := &testObject{active: true}

	assert.False(t, p.Release(stranger))
	assert.True(t, stranger.active)
	assert.Equal(t, Counts{Available: 2, InUse: 0, Total: 2}, p.Count())

	var none *testObject
	assert.False(t, p.Release(none))
}

func TestReleaseNeverLeased(t *testing.T) {
	p, f := newTestPool(t, 2, nil)
	assert.False(t, p.Release(f.created[0]))
	assert.Equal(t, Counts{Available: 2, InUse: 0, Total: 2}, p.Count())
}

func TestPartitionRandomized(t *testing.T) {
	p, f := newTestPool(t, 4, nil)
	r := rand.New(rand.NewSource(42))
	var leased []*testObject
	for i := 0; i < 2000; i++ {
		switch r.Intn(3) {
		case 0, 1:
			if r.Intn(2) == 0 || len(leased) == 0 {
				o, err := p.Acquire()
				require.NoError(t, err)
				leased = append(leased, o)
			} else {
				j := r.Intn(len(leased))
				assert.True(t, p.Release(leased[j]))
				leased = append(leased[:j], leased[j+1:]...)
			}
		case 2:
			if len(f.created) > 0 {
				p.Release(f.created[r.Intn(len(f.created))])
				leased = leased[:0]
				p.InUse(func(o *testObject) { leased = append(leased, o) })
			}
		}
		if i%100 == 0 {
			assertPartition(t, p, f)
		}
	}
	assertPartition(t, p, f)
}

func TestReleaseAll(t *testing.T) {
	p, f := newTestPool(t, 2, nil)
	for i := 0; i < 5; i++ {
		_, err := p.Acquire()
		require.NoError(t, err)
	}
	assert.Equal(t, 5, p.ReleaseAll())
	assert.Equal(t, Counts{Available: 5, InUse: 0, Total: 5}, p.Count())
	assertPartition(t, p, f)
}

func TestInUseOrderAndRelease(t *testing.T) {
	p, _ := newTestPool(t, 0, nil)
	a, _ := p.Acquire()
	b, _ := p.Acquire()
	c, _ := p.Acquire()
	p.Release(b)
	b2, _ := p.Acquire()
	assert.Same(t, b, b2)

	var order []*testObject
	p.InUse(func(o *testObject) {
		order = append(order, o)
		p.Release(o)
	})
	assert.Equal(t, []*testObject{a, c, b}, order)
	assert.Equal(t, 0, p.Count().InUse)
}

func TestStaleLease(t *testing.T) {
	p, _ := newTestPool(t, 1, nil)
	first, err := p.AcquireLease()
	require.NoError(t, err)
	require.True(t, p.ReleaseLease(first))

	second, err := p.AcquireLease()
	require.NoError(t, err)
	assert.Same(t, first.Object, second.Object)

	assert.False(t, p.Current(first))
	assert.True(t, p.Current(second))
	assert.False(t, p.ReleaseLease(first))
	assert.True(t, p.Leased(second.Object))
	assert.True(t, p.ReleaseLease(second))
	assert.False(t, p.Current(second))
	assert.False(t, p.ReleaseLease(second))
}

func TestForeignLease(t *testing.T) {
	p, _ := newTestPool(t, 1, nil)
	other, _ := newTestPool(t, 1, nil)
	lease, err := other.AcquireLease()
	require.NoError(t, err)
	assert.False(t, p.ReleaseLease(lease))
	assert.False(t, p.ReleaseLease(Lease[*testObject]{}))
}

func TestFactoryFailureAtConstruction(t *testing.T) {
	f := &testFactory{failAt: 3}
	_, err := NewPool[*testObject]("test", 5, f.create, nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "missing asset")
}

func TestFactoryFailureAtConstructionCleansUp(t *testing.T) {
	i := &countingInstrument{ii: &countingInstance{}}
	config := NewConfig()
	config.SetInstrument(i)
	f := &testFactory{failAt: 3}
	p, err := NewPool[*testObject]("test", 5, f.create, config)
	assert.Error(t, err)
	assert.Nil(t, p)

	require.Len(t, f.created, 2)
	for _, o := range f.created {
		assert.True(t, o.destroyed)
	}
	assert.Equal(t, 2, i.ii.allocated)
	assert.Equal(t, 1, i.ii.shutdown)
}

func TestFactoryFailureAtConstructionStopsMetrics(t *testing.T) {
	i, err := NewMetricsInstrument(map[string]interface{}{"path": t.TempDir(), "ctrl": false})
	require.NoError(t, err)
	config := NewConfig()
	config.SetInstrument(i)
	f := &testFactory{failAt: 2}
	_, err = NewPool[*testObject]("test", 3, f.create, config)
	assert.Error(t, err)

	mi := i.(*MetricsInstrument)
	require.Len(t, mi.instances, 1)
	assert.True(t, mi.instances[0].isClosed())
	mi.clean()
	assert.Empty(t, mi.instances)
}

func TestFactoryFailureOnAcquire(t *testing.T) {
	f := &testFactory{failAt: 2}
	p, err := NewPool[*testObject]("test", 1, f.create, nil)
	require.NoError(t, err)

	_, err = p.Acquire()
	require.NoError(t, err)
	o, err := p.Acquire()
	assert.Error(t, err)
	assert.Nil(t, o)
	assert.Equal(t, Counts{Available: 0, InUse: 1, Total: 1}, p.Count())
}

func TestFactoryDuplicate(t *testing.T) {
	shared := &testObject{}
	p, err := NewPool[*testObject]("test", 1, func() (*testObject, error) { return shared, nil }, nil)
	require.NoError(t, err)
	_, err = p.Acquire()
	require.NoError(t, err)
	_, err = p.Acquire()
	assert.Error(t, err)
	assert.Equal(t, 1, p.Count().Total)
}

func TestDestroy(t *testing.T) {
	p, f := newTestPool(t, 2, nil)
	a, _ := p.Acquire()
	p.Destroy()

	for _, o := range f.created {
		assert.True(t, o.destroyed)
	}
	assert.Equal(t, Counts{}, p.Count())
	assert.False(t, p.Release(a))

	_, err := p.Acquire()
	assert.Equal(t, ErrDestroyed, errors.Cause(err))
	p.Destroy()
}

func TestGrowPolicyIgnoresMaxSize(t *testing.T) {
	p, f := newTestPool(t, 1, &Config{MaxSize: 1, Policy: PolicyGrow})
	for i := 0; i < 3; i++ {
		_, err := p.Acquire()
		require.NoError(t, err)
	}
	assert.Len(t, f.created, 3)
}

func TestRejectPolicy(t *testing.T) {
	p, f := newTestPool(t, 1, &Config{MaxSize: 2, Policy: PolicyReject})
	a, err := p.Acquire()
	require.NoError(t, err)
	_, err = p.Acquire()
	require.NoError(t, err)

	_, err = p.Acquire()
	assert.Equal(t, ErrExhausted, errors.Cause(err))
	assert.Len(t, f.created, 2)

	p.Release(a)
	b, err := p.Acquire()
	require.NoError(t, err)
	assert.Same(t, a, b)
}

func TestRecyclePolicy(t *testing.T) {
	p, f := newTestPool(t, 0, &Config{MaxSize: 2, Policy: PolicyRecycle})
	first, err := p.AcquireLease()
	require.NoError(t, err)
	second, err := p.AcquireLease()
	require.NoError(t, err)

	third, err := p.AcquireLease()
	require.NoError(t, err)
	assert.Same(t, first.Object, third.Object)
	assert.True(t, third.Object.active)
	assert.Len(t, f.created, 2)
	assert.Equal(t, Counts{Available: 0, InUse: 2, Total: 2}, p.Count())

	assert.False(t, p.ReleaseLease(first))
	assert.True(t, p.Leased(third.Object))

	fourth, err := p.AcquireLease()
	require.NoError(t, err)
	assert.Same(t, second.Object, fourth.Object)
	assertPartition(t, p, f)
}

func TestCapacityAboveMaxSize(t *testing.T) {
	f := &testFactory{}
	_, err := NewPool[*testObject]("test", 3, f.create, &Config{MaxSize: 2, Policy: PolicyReject})
	assert.Error(t, err)
}

func TestUnknownPolicy(t *testing.T) {
	f := &testFactory{}
	_, err := NewPool[*testObject]("test", 1, f.create, &Config{Policy: "block"})
	assert.Error(t, err)
}

type countingInstance struct {
	NilInstrumentInstance
	allocated, acquired, released, ignored, rejected, recycled, shutdown int
	available, inUse                                                     int
}

func (self *countingInstance) Allocated()            { self.allocated++ }
func (self *countingInstance) Acquired()             { self.acquired++ }
func (self *countingInstance) Released()             { self.released++ }
func (self *countingInstance) ReleaseIgnored(string) { self.ignored++ }
func (self *countingInstance) Rejected()             { self.rejected++ }
func (self *countingInstance) Recycled()             { self.recycled++ }
func (self *countingInstance) Shutdown()             { self.shutdown++ }
func (self *countingInstance) SizeChanged(available, inUse int) {
	self.available = available
	self.inUse = inUse
}

type countingInstrument struct {
	ii *countingInstance
}

func (self *countingInstrument) NewInstance(string) InstrumentInstance {
	return self.ii
}

func TestInstrumentEvents(t *testing.T) {
	i := &countingInstrument{ii: &countingInstance{}}
	config := &Config{MaxSize: 2, Policy: PolicyReject}
	config.SetInstrument(i)
	p, _ := newTestPool(t, 1, config)

	a, _ := p.Acquire()
	_, _ = p.Acquire()
	_, _ = p.Acquire()
	p.Release(a)
	p.Release(a)
	p.Destroy()

	assert.Equal(t, 2, i.ii.allocated)
	assert.Equal(t, 2, i.ii.acquired)
	assert.Equal(t, 1, i.ii.released)
	assert.Equal(t, 1, i.ii.ignored)
	assert.Equal(t, 1, i.ii.rejected)
	assert.Equal(t, 1, i.ii.shutdown)
	assert.Equal(t, 0, i.ii.available)
	assert.Equal(t, 0, i.ii.inUse)
}

func BenchmarkAcquireRelease(b *testing.B) {
	f := &testFactory{}
	p, err := NewPool[*testObject]("bench", 64, f.create, nil)
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		o, _ := p.Acquire()
		p.Release(o)
	}
}
