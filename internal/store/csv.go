// Package store persists contractors between runs.
package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/law-makers/contractors/pkg/models"
)

// Columns is the fixed CSV layout. Unset fields are stored as empty strings.
var Columns = []string{"title", "description", "url", "phone", "email", "address"}

// Store loads and saves the full contractor list.
type Store interface {
	Load() ([]*models.Contractor, error)
	Save(contractors []*models.Contractor) error
}

// CSVStore keeps contractors in a single CSV file.
type CSVStore struct {
	path string
}

// NewCSV returns a store backed by the file at path.
func NewCSV(path string) *CSVStore {
	return &CSVStore{path: path}
}

// Path returns the backing file.
func (s *CSVStore) Path() string {
	return s.path
}

// Load reads every stored contractor. A missing file is an empty store.
func (s *CSVStore) Load() ([]*models.Contractor, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open %s: %w", s.path, err)
	}
	defer f.Close()

	contractors, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}
	return contractors, nil
}

// Save replaces the file contents. The file is written to a temporary sibling
// and renamed so a crash never leaves a truncated store.
func (s *CSVStore) Save(contractors []*models.Contractor) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".contractors-*.csv")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := WriteCSV(tmp, contractors); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", s.path, err)
	}
	return nil
}

// ReadCSV decodes contractors, discarding the header row.
func ReadCSV(r io.Reader) ([]*models.Contractor, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(Columns)

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}

	contractors := make([]*models.Contractor, 0, len(records)-1)
	for _, rec := range records[1:] {
		contractors = append(contractors, &models.Contractor{
			Title:       rec[0],
			Description: rec[1],
			URL:         rec[2],
			Phone:       rec[3],
			Email:       rec[4],
			Address:     rec[5],
		})
	}
	return contractors, nil
}

// WriteCSV encodes contractors with a header row.
func WriteCSV(w io.Writer, contractors []*models.Contractor) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(Columns); err != nil {
		return err
	}
	for _, c := range contractors {
		row := []string{c.Title, c.Description, c.URL, c.Phone, c.Email, c.Address}
		for i := range row {
			row[i] = models.NormalizeNewlines(row[i])
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
