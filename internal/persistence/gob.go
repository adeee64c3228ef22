// Package persistence stores values as gob files.
package persistence

import (
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// SaveGob encodes object with gob and writes it to filePath, creating parent directories.
// The file is written to a temporary sibling first and renamed into place, so readers
// never observe a partially written file.
func SaveGob(filePath string, object any) (err error) {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(filePath)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file in %s: %w", dir, err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpPath)
		}
	}()

	if encErr := gob.NewEncoder(tmp).Encode(object); encErr != nil {
		return errors.Join(fmt.Errorf("failed to gob encode to file %s: %w", filePath, encErr), tmp.Close())
	}
	if closeErr := tmp.Close(); closeErr != nil {
		return fmt.Errorf("failed to close file %s: %w", tmpPath, closeErr)
	}
	if renameErr := os.Rename(tmpPath, filePath); renameErr != nil {
		return fmt.Errorf("failed to move %s into place: %w", filePath, renameErr)
	}
	return nil
}

// LoadGob decodes the gob file at filePath into objectPointer.
// A missing file yields an error matching os.ErrNotExist so callers can treat it as a fresh start.
func LoadGob(filePath string, objectPointer any) (err error) {
	file, err := os.Open(filePath) // #nosec G304 -- filePath comes from configuration, not user input
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return os.ErrNotExist
		}
		return fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close file %s: %w", filePath, closeErr)
		}
	}()

	if err := gob.NewDecoder(file).Decode(objectPointer); err != nil {
		return fmt.Errorf("failed to gob decode from file %s: %w", filePath, err)
	}
	return nil
}
