package extractor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"mantis/internal/domain"
)

// DefaultPDFCommand is the poppler-utils text extractor.
const DefaultPDFCommand = "pdftotext"

// CommandRunner runs an external program and returns its stdout.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%w: %s", err, msg)
		}
		return nil, err
	}
	return out, nil
}

// Extractor returns the raw page text of a manual, pages separated by form feeds.
type Extractor struct {
	runner     CommandRunner
	pdfCommand string
}

func New(runner CommandRunner, pdfCommand string) *Extractor {
	if runner == nil {
		runner = ExecRunner{}
	}
	if pdfCommand == "" {
		pdfCommand = DefaultPDFCommand
	}
	return &Extractor{runner: runner, pdfCommand: pdfCommand}
}

// Supports reports whether path has an extension Extract understands.
func Supports(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf", ".txt":
		return true
	}
	return false
}

func (e *Extractor) Extract(ctx context.Context, path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return e.extractPDF(ctx, path)
	case ".txt":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", filepath.Base(path), err)
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, filepath.Base(path))
	}
}

func (e *Extractor) extractPDF(ctx context.Context, path string) (string, error) {
	out, err := e.runner.Run(ctx, e.pdfCommand, "-enc", "UTF-8", path, "-")
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", fmt.Errorf("%w: %s", domain.ErrExtractorUnavailable, e.pdfCommand)
		}
		return "", fmt.Errorf("extract %s: %w", filepath.Base(path), err)
	}
	return string(out), nil
}
