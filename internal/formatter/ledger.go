package formatter

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/desertthunder/mtcat/internal/models"
)

// Ledger is the append-only record of dataset identifiers that could not be harvested.
// Each stream is a separate file with one identifier per line.
type Ledger struct {
	paths map[models.LedgerStream]string
}

// NewLedger creates a ledger writing the primary and validate streams to the given files.
func NewLedger(primary, validate string) *Ledger {
	return &Ledger{paths: map[models.LedgerStream]string{
		models.StreamPrimary:  primary,
		models.StreamValidate: validate,
	}}
}

// Path returns the file backing stream.
func (l *Ledger) Path(stream models.LedgerStream) (string, error) {
	p, ok := l.paths[stream]
	if !ok || p == "" {
		return "", fmt.Errorf("no file configured for ledger stream %q", stream)
	}
	return p, nil
}

// Append adds identifier to stream, creating the file when missing.
func (l *Ledger) Append(stream models.LedgerStream, identifier string) error {
	path, err := l.Path(stream)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open ledger: %w", err)
	}
	defer f.Close()

	if _, err := fmt.Fprintln(f, identifier); err != nil {
		return fmt.Errorf("failed to append to ledger: %w", err)
	}
	return nil
}

// Clear deletes the file backing stream. A missing file is not an error.
func (l *Ledger) Clear(stream models.LedgerStream) error {
	path, err := l.Path(stream)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to clear ledger: %w", err)
	}
	return nil
}

// Read returns the identifiers recorded in stream, in append order.
func (l *Ledger) Read(stream models.LedgerStream) ([]string, error) {
	path, err := l.Path(stream)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	defer f.Close()

	var ids []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			ids = append(ids, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read ledger: %w", err)
	}
	return ids, nil
}
