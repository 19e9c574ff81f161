package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePaths_ExplicitFlagsWin(t *testing.T) {
	p, err := ResolvePaths("dacapo", "/custom/java", "/custom/dacapo.jar")
	require.NoError(t, err)
	assert.Equal(t, "/custom/java", p.Java)
	assert.Equal(t, "/custom/dacapo.jar", p.Jar)
}

func TestDetectJar_UnknownSuite(t *testing.T) {
	_, err := DetectJar("specjvm")
	assert.Error(t, err)
}

func TestDetectJar_FindsNewest(t *testing.T) {
	dir := t.TempDir()
	jarDir := filepath.Join(dir, "dacapobench", "benchmarks")
	require.NoError(t, os.MkdirAll(jarDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(jarDir, "dacapo-evaluation-git-aaa.jar"), nil, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(jarDir, "dacapo-evaluation-git-bbb.jar"), nil, 0644))

	t.Chdir(dir)

	jar, err := DetectJar("dacapo")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(".", "dacapobench", "benchmarks", "dacapo-evaluation-git-bbb.jar"), jar)
}

func TestDetectJar_SearchesParentDir(t *testing.T) {
	dir := t.TempDir()
	jarDir := filepath.Join(dir, "renaissance", "target")
	require.NoError(t, os.MkdirAll(jarDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(jarDir, "renaissance-gpl-0.16.0.jar"), nil, 0644))

	nested := filepath.Join(dir, "benchmark-runner")
	require.NoError(t, os.MkdirAll(nested, 0755))
	t.Chdir(nested)

	jar, err := DetectJar("renaissance")
	require.NoError(t, err)
	assert.Contains(t, jar, "renaissance-gpl-0.16.0.jar")
}

func TestDetectJar_Missing(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := DetectJar("dacapo")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--jar")
}

func TestDetectJava_FromBuildTree(t *testing.T) {
	dir := t.TempDir()
	javaDir := filepath.Join(dir, "jdk25u", "build", "linux-x86_64-server-release", "jdk", "bin")
	require.NoError(t, os.MkdirAll(javaDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(javaDir, "java"), []byte("#!/bin/sh\n"), 0755))

	t.Chdir(dir)

	java, err := DetectJava()
	require.NoError(t, err)
	assert.Contains(t, java, filepath.Join("jdk", "bin", "java"))
}
