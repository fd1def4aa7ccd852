package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	EngineLevelDB = "leveldb"
	EngineBolt    = "bolt"
)

// Open creates the configured engine under dir.
func Open(engine, dir string) (Database, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	switch strings.ToLower(strings.TrimSpace(engine)) {
	case "", EngineLevelDB:
		db, err := NewLevelDB(filepath.Join(dir, "state"))
		if err != nil {
			return nil, err
		}
		return db, nil
	case EngineBolt:
		db, err := NewBoltDB(filepath.Join(dir, "state.bolt"))
		if err != nil {
			return nil, err
		}
		return db, nil
	default:
		return nil, fmt.Errorf("storage: unsupported engine %q", engine)
	}
}
