// Package csvsource reads extracted catalogs from CSV files with a header
// row, for offline runs.
package csvsource

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/toinnnnn/avaliacao-bigdata/internal/core/domain"
	"github.com/toinnnnn/avaliacao-bigdata/internal/core/ports"
)

// Source reads one CSV file per Fetch.
type Source struct {
	Path string
}

var _ ports.RecordSource = Source{}

// New returns a source for path.
func New(path string) Source {
	return Source{Path: path}
}

// Fetch opens Path and decodes it with Read.
func (s Source) Fetch(ctx context.Context) ([]domain.RawRecord, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("csv source: %w", err)
	}
	defer f.Close()

	records, err := Read(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("csv source: %s: %w", s.Path, err)
	}
	return records, nil
}

// Read decodes CSV with a header row into raw records keyed by lower-cased
// header names. Every value is a string; empty cells are kept as "".
// Rows shorter or longer than the header are an error.
func Read(ctx context.Context, r io.Reader) ([]domain.RawRecord, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return []domain.RawRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		header[i] = strings.ToLower(strings.TrimSpace(name))
	}

	records := []domain.RawRecord{}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		rec := make(domain.RawRecord, len(header))
		for i, name := range header {
			if name == "" {
				continue
			}
			rec[name] = row[i]
		}
		records = append(records, rec)
	}
	return records, nil
}
