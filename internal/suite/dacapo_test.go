package suite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jitbench/internal/config"
)

const dacapoOutput = `
===== DaCapo evaluation-git-5de4a35 avrora starting warmup 1 =====
===== DaCapo evaluation-git-5de4a35 avrora completed warmup 1 in 1523 msec =====
===== DaCapo evaluation-git-5de4a35 avrora completed warmup 2 in 987 msec =====
===== DaCapo evaluation-git-5de4a35 avrora starting =====
===== DaCapo evaluation-git-5de4a35 avrora PASSED in 850 msec =====
`

func TestParseDaCapoLatencies(t *testing.T) {
	latencies := parseDaCapoLatencies(dacapoOutput)
	assert.Equal(t, []float64{1523, 987, 850}, latencies)
}

func TestParseDaCapoLatencies_NoMarkers(t *testing.T) {
	// Output without latency markers is indistinguishable from an empty
	// benchmark: an empty sequence, not an error.
	assert.Empty(t, parseDaCapoLatencies("Exception in thread \"main\" ..."))
	assert.Empty(t, parseDaCapoLatencies(""))
}

func TestParseCompileTime(t *testing.T) {
	out := "some noise\nProfileCheckpoint: load+compile took 412 ms\nmore noise"
	ct := parseCompileTime(out)
	require.NotNil(t, ct)
	assert.Equal(t, 412.0, *ct)

	assert.Nil(t, parseCompileTime("no marker here"))
}

func TestDaCapoAvailableBenchmarks(t *testing.T) {
	d := NewDaCapo(config.Paths{}, 0)
	benchmarks := d.AvailableBenchmarks()
	assert.Contains(t, benchmarks, "avrora")
	assert.Contains(t, benchmarks, "kafka")

	// callers get a copy, not the package-level list
	benchmarks[0] = "mutated"
	assert.Equal(t, "avrora", d.AvailableBenchmarks()[0])
}

func TestDaCapoValidateSetup_MissingJava(t *testing.T) {
	d := NewDaCapo(config.Paths{Java: "/nonexistent/java", Jar: "/nonexistent/dacapo.jar"}, 0)
	err := d.ValidateSetup(context.Background())
	require.Error(t, err)

	var setupErr *SetupError
	assert.ErrorAs(t, err, &setupErr)
	assert.Contains(t, err.Error(), "java binary not found")
}

func TestSuiteRegistry(t *testing.T) {
	assert.Equal(t, []string{"dacapo", "renaissance"}, Names())

	s, err := New("dacapo", config.Paths{}, 0)
	require.NoError(t, err)
	assert.Equal(t, "dacapo", s.Name())

	s, err = New("renaissance", config.Paths{}, 0)
	require.NoError(t, err)
	assert.Equal(t, "renaissance", s.Name())

	_, err = New("specjvm", config.Paths{}, 0)
	assert.Error(t, err)
}
