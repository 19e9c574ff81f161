package config

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
)

// Paths holds the process-wide binary and artifact locations. They are
// resolved once at startup and passed into the suites; nothing re-reads the
// environment during the benchmark loop.
type Paths struct {
	Java string
	Jar  string
}

// Known JDK build output locations, relative to the workspace root that
// holds the jdk25u checkout.
var defaultJavaPatterns = []string{
	"jdk25u/build/macosx-aarch64-server-release/jdk/bin/java",
	"jdk25u/build/linux-x86_64-server-release/jdk/bin/java",
	"jdk25u/build/linux-aarch64-server-release/jdk/bin/java",
}

var jarGlobs = map[string]string{
	"dacapo":      "dacapobench/benchmarks/dacapo-evaluation-git-*.jar",
	"renaissance": "renaissance/target/renaissance-gpl-*.jar",
}

// searchRoots are tried in order when resolving relative patterns: the
// current directory and its parent (the tool usually lives in a sibling
// checkout of the jdk and suite repos).
func searchRoots() []string {
	return []string{".", ".."}
}

// DetectJava auto-detects the java binary from known build paths, falling
// back to the system java.
func DetectJava() (string, error) {
	for _, root := range searchRoots() {
		for _, pattern := range defaultJavaPatterns {
			path := filepath.Join(root, pattern)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}
	}
	if java, err := exec.LookPath("java"); err == nil {
		return java, nil
	}
	return "", fmt.Errorf("could not find java binary; use --java to specify the path")
}

// DetectJar auto-detects the suite jar for the named suite, preferring the
// newest match.
func DetectJar(suiteName string) (string, error) {
	glob, ok := jarGlobs[suiteName]
	if !ok {
		return "", fmt.Errorf("no jar detection pattern for suite %q", suiteName)
	}
	for _, root := range searchRoots() {
		matches, err := filepath.Glob(filepath.Join(root, glob))
		if err != nil || len(matches) == 0 {
			continue
		}
		sort.Strings(matches)
		return matches[len(matches)-1], nil
	}
	return "", fmt.Errorf("could not find %s jar; use --jar to specify the path", suiteName)
}

// ResolvePaths resolves the java binary and suite jar, honoring explicit
// flag values over auto-detection.
func ResolvePaths(suiteName, javaFlag, jarFlag string) (Paths, error) {
	var p Paths
	var err error

	p.Java = javaFlag
	if p.Java == "" {
		if p.Java, err = DetectJava(); err != nil {
			return Paths{}, err
		}
	}

	p.Jar = jarFlag
	if p.Jar == "" {
		if p.Jar, err = DetectJar(suiteName); err != nil {
			return Paths{}, err
		}
	}
	return p, nil
}
