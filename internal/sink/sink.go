// Package sink implements the append-only result logs of a batch run.
package sink

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
)

// File is an append-only text log. Each Append writes exactly one line
// under a lock, so concurrent writers never interleave partial lines.
type File struct {
	mx   sync.Mutex
	path string
	f    *os.File
}

// Open creates or truncates path and opens it for appending.
func Open(path string) (*File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening log %s: %w", path, err)
	}
	return &File{path: path, f: f}, nil
}

func (s *File) Path() string {
	return s.path
}

// Append writes key: message as a single line. Newlines in message are
// replaced so that one call always produces one line.
func (s *File) Append(key, message string) error {
	line := key + ": " + strings.ReplaceAll(message, "\n", " ") + "\n"
	s.mx.Lock()
	defer s.mx.Unlock()
	if s.f == nil {
		return os.ErrClosed
	}
	_, err := s.f.WriteString(line)
	return err
}

func (s *File) Close() error {
	s.mx.Lock()
	defer s.mx.Unlock()
	if s.f == nil {
		return nil
	}
	err := s.f.Close()
	s.f = nil
	return err
}

// Set groups the three logs of a run.
type Set struct {
	Success  *File
	Failure  *File
	BadLines *File
}

// OpenSet truncates and opens all three logs, on error nothing is left open.
func OpenSet(success, failure, badlines string) (*Set, error) {
	var set Set
	var err error
	if set.Success, err = Open(success); err != nil {
		return nil, err
	}
	if set.Failure, err = Open(failure); err != nil {
		_ = set.Close()
		return nil, err
	}
	if set.BadLines, err = Open(badlines); err != nil {
		_ = set.Close()
		return nil, err
	}
	return &set, nil
}

func (s *Set) Close() error {
	var errs []error
	for _, f := range []*File{s.Success, s.Failure, s.BadLines} {
		if f != nil {
			errs = append(errs, f.Close())
		}
	}
	return errors.Join(errs...)
}
