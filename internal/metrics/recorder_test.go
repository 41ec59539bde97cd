package metrics

import (
	"sync"
	"time"
)

// testRecorder counts calls per hook.
type testRecorder struct {
	mu        sync.Mutex
	stages    map[string]int
	documents map[ResultLabel]int
	units     map[string]int
	workers   int
}

var _ Recorder = (*testRecorder)(nil)

func newTestRecorder() *testRecorder {
	return &testRecorder{stages: map[string]int{}, documents: map[ResultLabel]int{}, units: map[string]int{}}
}

func (t *testRecorder) ObserveStageDuration(stage string, _ time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stages[stage]++
}

func (t *testRecorder) IncDocumentResult(result ResultLabel) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.documents[result]++
}

func (t *testRecorder) AddUnits(kind string, n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.units[kind] += n
}

func (t *testRecorder) SetWorkers(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.workers = n
}
