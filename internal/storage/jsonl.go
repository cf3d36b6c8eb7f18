package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"tokenLauncher/internal/model"
)

// JsonlReconciler appends unpersisted launches to a JSONL file so they can be
// replayed into the store later.
type JsonlReconciler struct {
	path string
	mu   sync.Mutex
}

var _ Reconciler = (*JsonlReconciler)(nil)

func NewJsonlReconciler(path string) *JsonlReconciler {
	return &JsonlReconciler{path: path}
}

// Path returns the output file.
func (s *JsonlReconciler) Path() string {
	return s.path
}

// PutUnpersisted appends entries as JSON lines.
func (s *JsonlReconciler) PutUnpersisted(entries []model.UnpersistedLaunch) error {
	if len(entries) == 0 {
		return nil
	}

	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	for _, entry := range entries {
		line, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("marshal unpersisted launch: %w", err)
		}
		if _, err := writer.Write(line); err != nil {
			return fmt.Errorf("write unpersisted launch: %w", err)
		}
		if err := writer.WriteByte('\n'); err != nil {
			return fmt.Errorf("write newline: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}

	return nil
}

// ReadUnpersisted loads every entry from a reconciliation file.
func ReadUnpersisted(path string) ([]model.UnpersistedLaunch, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open reconcile file: %w", err)
	}
	defer file.Close()

	var entries []model.UnpersistedLaunch
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var entry model.UnpersistedLaunch
		if err := json.Unmarshal(raw, &entry); err != nil {
			return nil, fmt.Errorf("decode line %d: %w", line, err)
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan reconcile file: %w", err)
	}
	return entries, nil
}
