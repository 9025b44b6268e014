package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/majorossy/phreshfoods.com-sub003/internal/dto"
	"github.com/majorossy/phreshfoods.com-sub003/internal/entity"
)

// FileBusinessesRepository keeps the directory snapshot in a JSON file and
// serves reads from memory.
type FileBusinessesRepository struct {
	path string

	mu         sync.RWMutex
	businesses []entity.Business
}

type fileSnapshot struct {
	Businesses []entity.Business `json:"businesses"`
}

// NewFileBusinessesRepository loads the snapshot at path. A missing file is
// treated as an empty directory.
func NewFileBusinessesRepository(path string) (*FileBusinessesRepository, error) {
	if path == "" {
		return nil, fmt.Errorf("data file path must not be empty")
	}

	repo := &FileBusinessesRepository{path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return repo, nil
		}
		return nil, fmt.Errorf("read data file: %w", err)
	}
	if len(data) == 0 {
		return repo, nil
	}

	var snapshot fileSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("decode data file: %w", err)
	}
	repo.businesses = snapshot.Businesses
	return repo, nil
}

// ReplaceAll swaps the snapshot for businesses and persists it atomically.
func (r *FileBusinessesRepository) ReplaceAll(ctx context.Context, businesses []entity.Business) (ReplaceResult, error) {
	if err := ctx.Err(); err != nil {
		return ReplaceResult{}, err
	}

	snapshot := fileSnapshot{Businesses: append([]entity.Business{}, businesses...)}
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return ReplaceResult{}, fmt.Errorf("encode data file: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := writeFileAtomic(r.path, data); err != nil {
		return ReplaceResult{}, err
	}

	result := ReplaceResult{Removed: len(r.businesses), Stored: len(snapshot.Businesses)}
	r.businesses = snapshot.Businesses
	return result, nil
}

// List returns the stored businesses matching the text filters, in sheet order.
func (r *FileBusinessesRepository) List(ctx context.Context, filter dto.ListFilter) ([]entity.Business, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	matches := make([]entity.Business, 0, len(r.businesses))
	for _, b := range r.businesses {
		if matchesFilter(b, filter) {
			matches = append(matches, b)
		}
	}
	return matches, nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp data file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp data file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp data file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace data file: %w", err)
	}
	return nil
}

var _ BusinessesRepository = (*FileBusinessesRepository)(nil)
