package history

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
)

// FileStore persists history entries as JSON lines.
type FileStore struct {
	path string
}

// NewFileStore returns a store writing to path. The file is created on
// first append.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads stored entries into a new log of the given capacity, keeping
// the most recent ones. A missing file yields an empty log; corrupt lines
// are skipped.
func (s *FileStore) Load(capacity int) (*Log, error) {
	log := New(capacity)
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return log, nil
		}
		return nil, fmt.Errorf("open history file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(line, &e); err != nil {
			continue
		}
		log.Append(e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan history file: %w", err)
	}
	return log, nil
}

// Append writes e as one line at the end of the file.
func (s *FileStore) Append(e Entry) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open history file: %w", err)
	}
	defer f.Close()
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("write history file: %w", err)
	}
	return nil
}
