// Package storage keeps generated report files in a local directory.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const ReportExt = ".xlsx"

var (
	ErrFileWrite      = errors.New("report file write failed")
	ErrReportNotFound = errors.New("report not found")
	ErrInvalidName    = errors.New("invalid report name")
)

// maxSuffix bounds the -N suffixes tried when a name is already taken.
const maxSuffix = 1000

type Local struct {
	BaseDir string
}

func NewLocal(baseDir string) (*Local, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create report dir: %v", ErrFileWrite, err)
	}
	return &Local{BaseDir: baseDir}, nil
}

// Save writes a report under name and returns the name actually used. With
// overwrite the file at name is replaced; otherwise a free name is reserved
// by appending -1, -2, ... before the extension. The content becomes visible
// only once write succeeds.
func (l *Local) Save(ctx context.Context, name string, overwrite bool, write func(io.Writer) error) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	final := name
	if !overwrite {
		reserved, err := l.reserve(name)
		if err != nil {
			return "", err
		}
		final = reserved
	}

	err := ctx.Err()
	if err == nil {
		err = l.writeAtomic(final, write)
	}
	if err != nil {
		if !overwrite {
			_ = os.Remove(filepath.Join(l.BaseDir, final))
		}
		return "", err
	}
	return final, nil
}

func (l *Local) reserve(name string) (string, error) {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	candidate := name
	for i := 1; i <= maxSuffix; i++ {
		f, err := os.OpenFile(filepath.Join(l.BaseDir, candidate), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			_ = f.Close()
			return candidate, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("%w: reserve %s: %v", ErrFileWrite, candidate, err)
		}
		candidate = fmt.Sprintf("%s-%d%s", stem, i, ext)
	}
	return "", fmt.Errorf("%w: no free name for %s", ErrFileWrite, name)
}

func (l *Local) writeAtomic(name string, write func(io.Writer) error) error {
	tmp, err := os.CreateTemp(l.BaseDir, ".report-*.tmp")
	if err != nil {
		return fmt.Errorf("%w: create temp file: %v", ErrFileWrite, err)
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: %v", ErrFileWrite, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %v", ErrFileWrite, name, err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(l.BaseDir, name)); err != nil {
		return fmt.Errorf("%w: rename %s: %v", ErrFileWrite, name, err)
	}
	return nil
}

// List returns the names of stored reports, sorted. Names reserved by a
// Save that is still writing are empty and left out.
func (l *Local) List() ([]string, error) {
	entries, err := l.reportEntries()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		info, err := e.Info()
		if err != nil || info.Size() == 0 {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

func (l *Local) reportEntries() ([]os.DirEntry, error) {
	entries, err := os.ReadDir(l.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("read report dir: %w", err)
	}

	reports := entries[:0]
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") || !strings.HasSuffix(e.Name(), ReportExt) {
			continue
		}
		reports = append(reports, e)
	}
	return reports, nil
}

// Open opens a stored report for reading.
func (l *Local) Open(name string) (*os.File, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(l.BaseDir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("open report: %w", err)
	}
	return f, nil
}

// Purge removes reports last modified before olderThan, including
// reservations left behind by an interrupted Save.
func (l *Local) Purge(ctx context.Context, olderThan time.Time) (int, error) {
	entries, err := l.reportEntries()
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(olderThan) {
			if err := os.Remove(filepath.Join(l.BaseDir, e.Name())); err != nil {
				return removed, fmt.Errorf("remove report %s: %w", e.Name(), err)
			}
			removed++
		}
	}
	return removed, nil
}

func validateName(name string) error {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") ||
		strings.ContainsAny(name, `/\`) || !strings.HasSuffix(name, ReportExt) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}
