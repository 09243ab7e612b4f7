package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/pinchtab/todobench/internal/runner"
)

func sampleReport() *runner.Report {
	return &runner.Report{
		Suite:    "AddCompleteDelete",
		Items:    1,
		Planned:  4,
		Duration: 10 * time.Millisecond,
		Steps: []runner.StepResult{
			{Index: 0, Name: "Inputing 0", Phase: "Inputing", Duration: 2 * time.Millisecond},
			{Index: 1, Name: "Entering 0", Phase: "Entering", Duration: 3 * time.Millisecond},
			{Index: 2, Name: "Checking 0", Phase: "Checking", Duration: time.Millisecond},
			{Index: 3, Name: "Removing 0", Phase: "Removing", Duration: 4 * time.Millisecond},
		},
		Remaining: 0,
	}
}

func TestPhases(t *testing.T) {
	rep := sampleReport()
	rep.Steps = append(rep.Steps, runner.StepResult{Name: "Inputing 1", Phase: "Inputing", Duration: 6 * time.Millisecond})

	got := Phases(rep)
	require.Len(t, got, 4)
	assert.Equal(t, "Inputing", got[0].Phase)
	assert.Equal(t, 2, got[0].Steps)
	assert.Equal(t, 8*time.Millisecond, got[0].Total)
	assert.Equal(t, 4*time.Millisecond, got[0].Mean())
	assert.Equal(t, 6*time.Millisecond, got[0].Max)
	assert.Equal(t, "Removing", got[3].Phase)
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleReport(), "text"))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "AddCompleteDelete: 4/4 steps"))
	for _, phase := range []string{"Inputing", "Entering", "Checking", "Removing"} {
		assert.Contains(t, out, phase)
	}
	assert.Contains(t, out, "entries remaining: 0")
	assert.NotContains(t, out, "FAILED")
}

func TestWriteTextFailure(t *testing.T) {
	rep := sampleReport()
	rep.Steps[3].Error = "boom"
	rep.Failed = &rep.Steps[3]

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, rep, "text"))
	assert.Contains(t, buf.String(), `FAILED at "Removing 0": boom`)
	assert.Contains(t, buf.String(), "3/4 steps")
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleReport(), "json"))

	var got runner.Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Len(t, got.Steps, 4)
	assert.Equal(t, "Removing 0", got.Steps[3].Name)
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleReport(), "yaml"))
	assert.Contains(t, buf.String(), "duration: 10ms")

	var got map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "AddCompleteDelete", got["suite"])
}

func TestWriteUnknownFormat(t *testing.T) {
	assert.Error(t, Write(&bytes.Buffer{}, sampleReport(), "xml"))
}
