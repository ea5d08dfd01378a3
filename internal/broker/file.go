package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wonny/riskdesk/internal/contracts"
)

// FileSource serves a snapshot stored on disk (.yaml, .yml or .json).
// The file is re-read on every call so edits show up on the next refresh.
type FileSource struct {
	path string
	now  func() time.Time
}

// NewFileSource creates a file-backed data source
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path, now: time.Now}
}

// Path returns the snapshot file path
func (f *FileSource) Path() string {
	return f.path
}

// Snapshot implements DataSource
func (f *FileSource) Snapshot(ctx context.Context) (*contracts.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Disconnected(), err
	}

	snap, err := LoadSnapshot(f.path)
	if err != nil {
		return Disconnected(), err
	}
	if snap.TakenAt.IsZero() {
		snap.TakenAt = f.now()
	}
	if !snap.Connected {
		return snap, fmt.Errorf("%w: snapshot %s marked disconnected", ErrNotConnected, f.path)
	}
	return snap, nil
}

// LoadSnapshot decodes a snapshot file. The equity series is normalized
// (sorted, duplicate timestamps collapsed).
func LoadSnapshot(path string) (*contracts.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", path, err)
	}

	var snap contracts.Snapshot
	if isJSON(path) {
		err = json.Unmarshal(data, &snap)
	} else {
		err = yaml.Unmarshal(data, &snap)
	}
	if err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", path, err)
	}

	snap.Equity = snap.Equity.Normalize()
	snap.Benchmark = snap.Benchmark.Normalize()
	if err := snap.Equity.Validate(); err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", path, err)
	}
	return &snap, nil
}

// SaveSnapshot writes snap to path, encoding by extension
func SaveSnapshot(path string, snap *contracts.Snapshot) error {
	var (
		data []byte
		err  error
	)
	if isJSON(path) {
		data, err = json.MarshalIndent(snap, "", "  ")
	} else {
		data, err = yaml.Marshal(snap)
	}
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot %s: %w", path, err)
	}
	return nil
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}
