// Package feedback persists human judgements on recommendations to an
// append-only JSON-lines log. The log is a side channel for later tuning;
// nothing in the query path reads it.
package feedback

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/netrec/netrec/helper"
	"github.com/netrec/netrec/model"
)

// WriteError reports a failed append. The failed entry is carried so the
// caller can retry or surface it; the session itself stays usable.
type WriteError struct {
	Path  string
	Entry *model.FeedbackEntry
	Err   error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("writing feedback to %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Recorder appends feedback entries to a JSON-lines file. Appends are
// serialized by a mutex and issued as a single write so a concurrent reader
// never observes a partial record.
type Recorder struct {
	path string
	mu   sync.Mutex
}

// NewRecorder creates a recorder writing to the given file path. The file
// is created on first write.
func NewRecorder(path string) (*Recorder, error) {
	if path == "" {
		return nil, helper.NewError("feedback path validation", fmt.Errorf("path is empty"))
	}
	return &Recorder{path: path}, nil
}

// Record appends one entry to the log.
func (r *Recorder) Record(entry *model.FeedbackEntry) error {
	if entry == nil {
		return helper.NewError("feedback entry validation", fmt.Errorf("entry is nil"))
	}

	line, err := json.Marshal(entry)
	if err != nil {
		return &WriteError{Path: r.path, Entry: entry, Err: err}
	}
	line = append(line, '\n')

	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := os.OpenFile(r.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return &WriteError{Path: r.path, Entry: entry, Err: err}
	}
	defer file.Close()

	// One Write call per entry keeps the append atomic for readers.
	if _, err := file.Write(line); err != nil {
		return &WriteError{Path: r.path, Entry: entry, Err: err}
	}

	return nil
}

// Recent returns at most n entries from the tail of the log, most recent
// last. Malformed lines are skipped; a corrupted line never aborts the read.
func (r *Recorder) Recent(n int) ([]*model.FeedbackEntry, error) {
	if n <= 0 {
		return nil, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := os.Open(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, helper.NewError("open feedback log", err)
	}
	defer file.Close()

	var entries []*model.FeedbackEntry
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		entry := &model.FeedbackEntry{}
		if err := json.Unmarshal(line, entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, helper.NewError("read feedback log", err)
	}

	if len(entries) > n {
		entries = entries[len(entries)-n:]
	}

	return entries, nil
}
