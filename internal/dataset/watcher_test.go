package dataset

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emotion-constellation/constellation-core/internal/metrics"
)

type reloads struct {
	mu  sync.Mutex
	got []*Dataset
}

func (r *reloads) handle(ds *Dataset) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, ds)
}

func (r *reloads) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.got)
}

func (r *reloads) last() *Dataset {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.got[len(r.got)-1]
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, FileName("en"), sampleDoc)

	var r reloads
	w, err := NewWatcher(NewLoader(dir), "en", 20*time.Millisecond, r.handle)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()
	assert.True(t, w.IsWatching())

	edited := strings.Replace(sampleDoc, `"label": "Joy"`, `"label": "Delight"`, 1)
	for i := 0; i < 3; i++ {
		writeFile(t, dir, FileName("en"), edited)
	}

	require.Eventually(t, func() bool { return r.count() >= 1 }, 2*time.Second, 10*time.Millisecond)
	joy, ok := r.last().Graph.Emotion("joy")
	require.True(t, ok)
	assert.Equal(t, "Delight", joy.Label)
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, FileName("en"), sampleDoc)

	var r reloads
	w, err := NewWatcher(NewLoader(dir), "en", 10*time.Millisecond, r.handle)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	writeFile(t, dir, "notes.txt", "unrelated")
	time.Sleep(100 * time.Millisecond)
	assert.Zero(t, r.count())
}

func TestWatcher_SetLocaleAndMetrics(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, FileName("en"), sampleDoc)
	writeFile(t, dir, FileName("es"), strings.Replace(sampleDoc, `"Joy"`, `"Alegría"`, 1))

	reg := prometheus.NewRegistry()
	var r reloads
	w, err := NewWatcher(NewLoader(dir), "en", 0, r.handle)
	require.NoError(t, err)
	w.SetMetrics(metrics.NewCollector(reg))
	defer w.Stop()

	require.NoError(t, w.SetLocale("es"))
	assert.Equal(t, "es", w.Locale())
	require.Equal(t, 1, r.count())
	assert.Equal(t, "es", r.last().Locale)

	writeFile(t, dir, FileName("es"), `{"needs": [`)
	assert.Error(t, w.Reload())
	assert.Equal(t, 1, r.count(), "failed reloads are not handed off")

	n, err := testutil.GatherAndCount(reg, "constellation_dataset_reloads_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n, "one series per outcome")
}

func TestWatcher_StopTwice(t *testing.T) {
	w, err := NewWatcher(NewLoader(t.TempDir()), "en", 0, nil)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	assert.NotPanics(t, func() {
		w.Stop()
		w.Stop()
	})
	assert.False(t, w.IsWatching())
}
