package util

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"io/ioutil"
	"path/filepath"
	"testing"
	"time"
)

func TestWriteReadSamples(t *testing.T) {
	root := t.TempDir()
	now := time.Now()
	samples := []*Sample{
		{Ts: now, V: 3},
		{Ts: now.Add(time.Second), V: 0},
		{Ts: now.Add(2 * time.Second), V: 11},
	}
	require.NoError(t, WriteSamples("acquires", root, samples))

	data, err := ReadSamples(filepath.Join(root, "acquires.csv"))
	require.NoError(t, err)
	assert.Len(t, data, 3)
	assert.Equal(t, int64(3), data[now.UnixNano()])
	assert.Equal(t, int64(11), data[now.Add(2*time.Second).UnixNano()])
}

func TestReadSamplesMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, ioutil.WriteFile(path, []byte("1,2\nnope\n"), 0600))
	_, err := ReadSamples(path)
	assert.Error(t, err)
}

func TestPoolMetricsId(t *testing.T) {
	mid := NewPoolMetricsId("reservoir", 1, "bullets")
	assert.Equal(t, "reservoir.1", mid.Id)
	assert.Equal(t, "reservoir", mid.Kind())
	assert.Equal(t, "bullets", mid.Pool())
	v, err := mid.Version()
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	_, err = (&MetricsId{Id: "reservoir"}).Version()
	assert.Error(t, err)
	_, err = (&MetricsId{Id: "reservoir.x"}).Version()
	assert.Error(t, err)
}

func TestDiscoverMetrics(t *testing.T) {
	root := t.TempDir()
	particles := filepath.Join(root, "particles_0001")
	bullets := filepath.Join(root, "nested", "bullets_0002")
	other := filepath.Join(root, "westworld_0003")
	for _, dir := range []string{particles, bullets, other} {
		require.NoError(t, ensureDir(dir))
	}
	require.NoError(t, NewPoolMetricsId("reservoir", 1, "particles").Write(particles))
	require.NoError(t, NewPoolMetricsId("reservoir", 1, "bullets").Write(bullets))
	require.NoError(t, (&MetricsId{Id: "westworld3.1"}).Write(other))

	found, err := DiscoverMetrics(root, "reservoir")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, bullets, found[0].Path)
	assert.Equal(t, "bullets", found[0].Id.Pool())
	assert.Equal(t, particles, found[1].Path)
	assert.Equal(t, "particles", found[1].Id.Pool())
}

func TestDiscoverMetricsCorrupt(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, ioutil.WriteFile(filepath.Join(root, MetricsIdFile), []byte("{"), 0600))
	_, err := DiscoverMetrics(root, "reservoir")
	assert.Error(t, err)
}
