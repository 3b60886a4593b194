package fetch

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"fetchbot/internal/ports"

	"github.com/rs/zerolog/log"
)

// maxDiagnosticBytes bounds how much captured process output travels into
// error messages and, from there, into user notifications.
const maxDiagnosticBytes = 512

type ErrorKind string

const (
	KindTimeoutExceeded ErrorKind = "timeout_exceeded"
	KindProcessFailed   ErrorKind = "process_failed"
	KindOutputMissing   ErrorKind = "output_missing"
)

// Error is the typed outcome of a failed fetch run. It carries the tail of
// the process's combined output as diagnostic text.
type Error struct {
	Kind   ErrorKind
	Output string
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindTimeoutExceeded:
		return "download timed out"
	case KindOutputMissing:
		return "fetch process exited cleanly but produced no output file"
	default:
		if e.Output != "" {
			return "fetch process failed: " + e.Output
		}
		return "fetch process failed"
	}
}

var _ ports.Fetcher = (*Executor)(nil)

// Executor runs the external fetch binary for one task under a hard
// wall-clock timeout. The binary's contract: given a URL, either produce a
// playable file at the requested path within the size budget, or fail.
type Executor struct {
	Bin            string
	Dir            string
	MaxSizeMB      int
	QualityCeiling int
	Timeout        time.Duration
}

// OutputPath derives the unique artifact path for taskID at the given time.
func (e *Executor) OutputPath(taskID uint64, now time.Time) string {
	return filepath.Join(e.Dir, fmt.Sprintf("task_%d_%d.mp4", taskID, now.Unix()))
}

func (e *Executor) args(url, outputPath string) []string {
	return []string{
		"-f", fmt.Sprintf("best[height<=%d][ext=mp4]/best[height<=%d]/best", e.QualityCeiling, e.QualityCeiling),
		"-o", outputPath,
		"--no-playlist",
		"--max-filesize", fmt.Sprintf("%dm", e.MaxSizeMB),
		url,
	}
}

// Execute runs the fetch process and returns the artifact path. On timeout
// the process is killed and no partial file counts as success. Partial files
// left behind on failure are not cleaned here; the retention sweeper removes
// them eventually.
func (e *Executor) Execute(ctx context.Context, url string, taskID uint64) (string, error) {
	if err := os.MkdirAll(e.Dir, 0755); err != nil {
		return "", err
	}
	outputPath := e.OutputPath(taskID, time.Now())

	var output bytes.Buffer
	cmd := exec.Command(e.Bin, e.args(url, outputPath)...)
	cmd.Stdout = &output
	cmd.Stderr = &output

	if err := cmd.Start(); err != nil {
		return "", &Error{Kind: KindProcessFailed, Output: err.Error()}
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	timer := time.NewTimer(e.Timeout)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		<-done
		return "", ctx.Err()
	case <-timer.C:
		log.Ctx(ctx).Warn().Uint64("task", taskID).Dur("timeout", e.Timeout).Msg("killing fetch process")
		_ = cmd.Process.Kill()
		<-done
		return "", &Error{Kind: KindTimeoutExceeded}
	case err := <-done:
		if err != nil {
			return "", &Error{Kind: KindProcessFailed, Output: tail(output.String())}
		}
	}

	if _, err := os.Stat(outputPath); err != nil {
		return "", &Error{Kind: KindOutputMissing, Output: tail(output.String())}
	}
	return outputPath, nil
}

func tail(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxDiagnosticBytes {
		return s
	}
	return s[len(s)-maxDiagnosticBytes:]
}
