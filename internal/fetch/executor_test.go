package fetch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// writeScript installs a fake fetch binary that runs the given shell body.
// The body can read $out, which holds the value passed after -o.
func writeScript(t *testing.T, body string) string {
	t.Helper()
	script := `#!/bin/sh
out=""
prev=""
for a in "$@"; do
  if [ "$prev" = "-o" ]; then out="$a"; fi
  prev="$a"
done
` + body + "\n"
	path := filepath.Join(t.TempDir(), "fake-fetch")
	if err := os.WriteFile(path, []byte(script), 0755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func newExecutor(t *testing.T, bin string, timeout time.Duration) *Executor {
	t.Helper()
	return &Executor{
		Bin:            bin,
		Dir:            t.TempDir(),
		MaxSizeMB:      50,
		QualityCeiling: 720,
		Timeout:        timeout,
	}
}

func kindOf(t *testing.T, err error) ErrorKind {
	t.Helper()
	var fe *Error
	if !errors.As(err, &fe) {
		t.Fatalf("expected *fetch.Error, got %T: %v", err, err)
	}
	return fe.Kind
}

func TestExecute_Success(t *testing.T) {
	bin := writeScript(t, `echo "downloading"; : > "$out"`)
	e := newExecutor(t, bin, 5*time.Second)

	path, err := e.Execute(context.Background(), "https://youtu.be/abc", 7)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("returned path should exist on disk: %v", err)
	}
	if filepath.Dir(path) != e.Dir {
		t.Errorf("artifact written outside download dir: %s", path)
	}
}

func TestExecute_ProcessFailed(t *testing.T) {
	bin := writeScript(t, `echo "ERROR: unsupported url" >&2; exit 3`)
	e := newExecutor(t, bin, 5*time.Second)

	_, err := e.Execute(context.Background(), "https://youtu.be/abc", 8)
	if kindOf(t, err) != KindProcessFailed {
		t.Fatalf("expected process_failed, got %v", err)
	}
	var fe *Error
	errors.As(err, &fe)
	if fe.Output == "" {
		t.Error("diagnostic output should carry the captured stderr")
	}
}

func TestExecute_Timeout(t *testing.T) {
	bin := writeScript(t, `sleep 5; : > "$out"`)
	e := newExecutor(t, bin, 100*time.Millisecond)

	start := time.Now()
	_, err := e.Execute(context.Background(), "https://youtu.be/abc", 9)
	if kindOf(t, err) != KindTimeoutExceeded {
		t.Fatalf("expected timeout_exceeded, got %v", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Error("timeout kill took too long")
	}
}

func TestExecute_OutputMissing(t *testing.T) {
	bin := writeScript(t, `exit 0`)
	e := newExecutor(t, bin, 5*time.Second)

	_, err := e.Execute(context.Background(), "https://youtu.be/abc", 10)
	if kindOf(t, err) != KindOutputMissing {
		t.Fatalf("expected output_missing, got %v", err)
	}
}

func TestExecute_ContextCancel(t *testing.T) {
	bin := writeScript(t, `sleep 5; : > "$out"`)
	e := newExecutor(t, bin, 10*time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()
	_, err := e.Execute(ctx, "https://youtu.be/abc", 11)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestOutputPath_Deterministic(t *testing.T) {
	e := newExecutor(t, "yt-dlp", time.Minute)
	now := time.Unix(1700000000, 0)
	a := e.OutputPath(42, now)
	b := e.OutputPath(42, now)
	if a != b {
		t.Errorf("same task and time should yield the same path: %s vs %s", a, b)
	}
	if a == e.OutputPath(43, now) {
		t.Error("different tasks should yield different paths")
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		err      *Error
		contains string
	}{
		{&Error{Kind: KindTimeoutExceeded}, "timed out"},
		{&Error{Kind: KindOutputMissing}, "no output file"},
		{&Error{Kind: KindProcessFailed, Output: "boom"}, "boom"},
		{&Error{Kind: KindProcessFailed}, "fetch process failed"},
	}
	for _, test := range tests {
		msg := test.err.Error()
		if !strings.Contains(msg, test.contains) {
			t.Errorf("Error() = %q, expected it to contain %q", msg, test.contains)
		}
	}
}
