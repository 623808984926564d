package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileKV is a [KV] backed by a single JSON file, the desktop analog of the
// browser's local storage. The file holds one flat JSON object and is written
// with 0600 permissions since it contains the bearer token.
type FileKV struct {
	path string
}

// NewFileKV creates a file-backed key-value store at path. The file is created
// lazily on the first Set.
func NewFileKV(path string) *FileKV {
	return &FileKV{path: path}
}

func (f *FileKV) Get(key string) ([]byte, bool, error) {
	data, err := f.read()
	if err != nil {
		return nil, false, err
	}

	value, ok := data[key]
	if !ok {
		return nil, false, nil
	}
	return value, true, nil
}

func (f *FileKV) Set(key string, value []byte) error {
	data, err := f.read()
	if err != nil {
		return err
	}

	data[key] = json.RawMessage(value)
	return f.write(data)
}

func (f *FileKV) Delete(key string) error {
	data, err := f.read()
	if err != nil {
		return err
	}

	if _, ok := data[key]; !ok {
		return nil
	}

	delete(data, key)
	return f.write(data)
}

// read loads the backing file. A missing file or unparseable contents yield an
// empty map; corruption must not make the store unusable.
func (f *FileKV) read() (map[string]json.RawMessage, error) {
	raw, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return map[string]json.RawMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read credential file: %w", err)
	}

	var data map[string]json.RawMessage
	if err := json.Unmarshal(raw, &data); err != nil {
		return map[string]json.RawMessage{}, nil
	}
	if data == nil {
		data = map[string]json.RawMessage{}
	}
	return data, nil
}

func (f *FileKV) write(data map[string]json.RawMessage) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0700); err != nil {
		return fmt.Errorf("failed to create storage directory: %w", err)
	}

	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal storage file: %w", err)
	}

	if err := os.WriteFile(f.path, raw, 0600); err != nil {
		return fmt.Errorf("failed to write credential file: %w", err)
	}
	return nil
}
