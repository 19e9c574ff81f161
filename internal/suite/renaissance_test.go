package suite

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "results.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestParseRenaissanceJSON_V6Format(t *testing.T) {
	path := writeTemp(t, `{
		"data": {
			"scrabble": {
				"results": [
					{"duration_ns": 1500000000},
					{"duration_ns": 900000000}
				]
			}
		}
	}`)
	times := parseRenaissanceJSON(path, "scrabble")
	assert.Equal(t, []float64{1500, 900}, times)
}

func TestParseRenaissanceJSON_LegacyFormat(t *testing.T) {
	path := writeTemp(t, `{
		"benchmarks": {
			"scrabble": {
				"results": [
					{"duration_ms": 1200},
					{"duration_ms": 800}
				]
			}
		}
	}`)
	times := parseRenaissanceJSON(path, "scrabble")
	assert.Equal(t, []float64{1200, 800}, times)
}

func TestParseRenaissanceJSON_Degraded(t *testing.T) {
	assert.Empty(t, parseRenaissanceJSON("/nonexistent/results.json", "scrabble"))

	bad := writeTemp(t, `{not json`)
	assert.Empty(t, parseRenaissanceJSON(bad, "scrabble"))

	other := writeTemp(t, `{"data": {"other-bench": {"results": [{"duration_ns": 1}]}}}`)
	assert.Empty(t, parseRenaissanceJSON(other, "scrabble"))
}

func TestFindPluginJar(t *testing.T) {
	repo := t.TempDir()
	pluginDir := filepath.Join(repo, "plugins", "profile-checkpoint", "target")
	require.NoError(t, os.MkdirAll(pluginDir, 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(repo, "target"), 0755))

	old := filepath.Join(pluginDir, "plugin-profile-checkpoint-assembly-0.1.jar")
	newer := filepath.Join(pluginDir, "plugin-profile-checkpoint-assembly-0.2.jar")
	require.NoError(t, os.WriteFile(old, nil, 0644))
	require.NoError(t, os.WriteFile(newer, nil, 0644))

	jar := filepath.Join(repo, "target", "renaissance-gpl-0.16.0.jar")
	assert.Equal(t, newer, findPluginJar(jar))
}

func TestFindPluginJar_Missing(t *testing.T) {
	jar := filepath.Join(t.TempDir(), "target", "renaissance-gpl-0.16.0.jar")
	assert.Empty(t, findPluginJar(jar))
}

func TestRenaissanceStaticBenchmarkList(t *testing.T) {
	assert.Contains(t, renaissanceBenchmarks, "scrabble")
	assert.Contains(t, renaissanceBenchmarks, "finagle-http")
	for _, b := range renaissanceBenchmarks {
		assert.NotContains(t, b, "dummy")
	}
}
