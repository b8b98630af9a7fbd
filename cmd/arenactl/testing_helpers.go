package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// captureOutput captures stdout while running a function
func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	// Save original stdout
	origStdout := os.Stdout

	// Create a pipe to capture output
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}

	// Drain concurrently so large outputs cannot fill the pipe
	done := make(chan struct{})
	var buf bytes.Buffer
	go func() {
		_, _ = buf.ReadFrom(r)
		close(done)
	}()

	// Redirect stdout to pipe
	os.Stdout = w

	// Run function
	fnErr := fn()

	// Close write end and restore stdout
	w.Close()
	os.Stdout = origStdout
	<-done
	r.Close()

	return buf.String(), fnErr
}

// resetFlags puts every command flag back to its default.
func resetFlags() {
	verbose, quiet, jsonOut, noColor = false, false, false, false
	logLevel, logJSON = "", false

	initBase, initSize, initMemmap = defaultBase, defaultSize, ""
	infoBase = defaultBase
	allocBase, allocSize, allocAlign, allocCount, allocFlush = defaultBase, 0, 1, 1, "auto"
	dumpOutput, dumpAll, dumpLevel = "", false, 3
	demoCount, demoBase, demoSize, demoMemmap = 32, "", "", ""
	demoTransient, demoAdvance = false, ""
	validatePrint = false
}

// newArenaFile creates an arena file of size bytes at the default base.
func newArenaFile(t *testing.T, size string) string {
	t.Helper()
	resetFlags()
	path := filepath.Join(t.TempDir(), "heap.arena")
	initSize = size
	quiet = true
	if _, err := captureOutput(t, func() error { return runInit([]string{path}) }); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	resetFlags()
	return path
}

// assertJSON checks that output is valid JSON
func assertJSON(t *testing.T, output string) {
	t.Helper()
	var result interface{}
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Errorf("invalid JSON output: %v\nOutput: %s", err, output)
	}
}

// assertContains checks that output contains all expected strings
func assertContains(t *testing.T, output string, expected []string) {
	t.Helper()
	for _, want := range expected {
		if !strings.Contains(output, want) {
			t.Errorf("output missing expected string %q\nGot: %s", want, output)
		}
	}
}
