package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/mdpo/internal/foundation/errors"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveStageDuration(StageExtract, 150*time.Millisecond)
	pr.IncDocumentResult(ResultSuccess)
	pr.AddUnits("paragraph", 3)
	pr.AddUnits("heading", 0)
	pr.SetWorkers(4)

	mfs, err := reg.Gather()
	require.NoError(t, err)

	names := map[string]bool{}
	for _, mf := range mfs {
		names[mf.GetName()] = true
	}
	assert.True(t, names["mdpo_stage_duration_seconds"])
	assert.True(t, names["mdpo_documents_total"])
	assert.True(t, names["mdpo_units_total"])
	assert.True(t, names["mdpo_extract_workers"])
}

func TestPrometheusRecorder_NilSafe(t *testing.T) {
	var pr *PrometheusRecorder
	assert.NotPanics(t, func() {
		pr.ObserveStageDuration(StageExport, time.Second)
		pr.IncDocumentResult(ResultFailed)
		pr.AddUnits("paragraph", 1)
		pr.SetWorkers(1)
	})
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NoopRecorder{}
	assert.NotPanics(t, func() {
		r.ObserveStageDuration(StageMerge, time.Second)
		r.IncDocumentResult(ResultSkipped)
	})
}

func TestTestRecorderCounts(t *testing.T) {
	r := newTestRecorder()
	r.AddUnits("paragraph", 2)
	r.AddUnits("paragraph", 1)
	r.IncDocumentResult(ResultSuccess)
	assert.Equal(t, 3, r.units["paragraph"])
	assert.Equal(t, 1, r.documents[ResultSuccess])
}

func TestWriteTextfile(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.IncDocumentResult(ResultSuccess)

	path := filepath.Join(t.TempDir(), "collector", "mdpo.prom")
	require.NoError(t, WriteTextfile(path, reg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `mdpo_documents_total{result="success"} 1`)
}

func TestWriteTextfile_EmptyPathIsNoop(t *testing.T) {
	assert.NoError(t, WriteTextfile("", prom.NewRegistry()))
}

func TestWriteTextfile_FailureIsWarning(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	err := WriteTextfile(filepath.Join(blocker, "mdpo.prom"), prom.NewRegistry())
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryFileSystem))
	assert.True(t, errors.HasSeverity(err, errors.SeverityWarning))
}
