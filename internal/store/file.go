package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/lox/holdem-engine/internal/game"
)

// FileStore writes one JSON snapshot per table into a directory.
type FileStore struct {
	dir string
}

// NewFileStore creates dir if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (f *FileStore) path(tableID string) (string, error) {
	if tableID == "" || strings.ContainsAny(tableID, `/\`) || tableID == "." || tableID == ".." {
		return "", fmt.Errorf("invalid table id %q", tableID)
	}
	return filepath.Join(f.dir, tableID+".json"), nil
}

func (f *FileStore) Save(ctx context.Context, state game.TableState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := f.path(state.ID)
	if err != nil {
		return err
	}
	data, err := game.EncodeTableState(state)
	if err != nil {
		return err
	}
	return writeFileAtomic(path, data, 0o644)
}

func (f *FileStore) Load(ctx context.Context, tableID string) (game.TableState, error) {
	if err := ctx.Err(); err != nil {
		return game.TableState{}, err
	}
	path, err := f.path(tableID)
	if err != nil {
		return game.TableState{}, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return game.TableState{}, fmt.Errorf("%w: table %s", ErrNotFound, tableID)
	}
	if err != nil {
		return game.TableState{}, fmt.Errorf("read snapshot: %w", err)
	}
	return game.DecodeTableState(data)
}

func (f *FileStore) Delete(_ context.Context, tableID string) error {
	path, err := f.path(tableID)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove snapshot: %w", err)
	}
	return nil
}

// writeFileAtomic writes to a temp file in the same directory and renames it
// over filename, so readers see the old snapshot or the new one and never a
// partial write.
func writeFileAtomic(filename string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(filename), filepath.Base(filename)+".tmp.*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if tmp != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	tmp = nil

	if err := os.Chmod(tmpPath, perm); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, filename); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
