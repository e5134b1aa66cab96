package ports

import (
	"context"

	"github.com/toinnnnn/avaliacao-bigdata/internal/core/domain"
)

// RecordSource produces the raw records of one catalog.
type RecordSource interface {
	Fetch(ctx context.Context) ([]domain.RawRecord, error)
}

// RecordSourceFunc adapts a function to RecordSource.
type RecordSourceFunc func(ctx context.Context) ([]domain.RawRecord, error)

func (f RecordSourceFunc) Fetch(ctx context.Context) ([]domain.RawRecord, error) {
	return f(ctx)
}
