package reservoir

import (
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestCompletionFiresOnce(t *testing.T) {
	calls := 0
	c := NewCompletion(func() { calls++ })
	assert.False(t, c.Fired())
	assert.True(t, c.Fire())
	assert.False(t, c.Fire())
	assert.False(t, c.Fire())
	assert.True(t, c.Fired())
	assert.Equal(t, 1, calls)
}

func TestCompletionGuardsDoubleRelease(t *testing.T) {
	p, _ := newTestPool(t, 0, nil)
	a, _ := p.AcquireLease()
	b, _ := p.AcquireLease()
	done := NewCompletion(func() { p.ReleaseLease(a) })

	done.Fire()
	c, _ := p.AcquireLease()
	assert.Same(t, a.Object, c.Object)
	done.Fire()

	assert.True(t, p.Leased(c.Object))
	assert.True(t, p.Leased(b.Object))
	assert.Equal(t, Counts{Available: 0, InUse: 2, Total: 2}, p.Count())
}

func TestCompletionNilCallback(t *testing.T) {
	c := NewCompletion(nil)
	assert.True(t, c.Fire())
	assert.False(t, c.Fire())
}
