package ports

import (
	"context"

	"github.com/toinnnnn/avaliacao-bigdata/internal/core/domain"
)

// Gateway writes a typed table to a named destination under an explicit
// conflict policy. Failures are returned as *domain.PersistError.
type Gateway interface {
	Persist(ctx context.Context, table domain.Table, destination string, policy domain.ConflictPolicy) error
}

// CatalogReader gives read-only consumers the persisted tables.
type CatalogReader interface {
	ListTracks(ctx context.Context, destination string) ([]domain.Track, error)
	ListVideos(ctx context.Context, destination string) ([]domain.Video, error)
	ListCorrelations(ctx context.Context, destination string) ([]domain.Correlation, error)
}

// Store is a gateway that can also be read back and closed.
type Store interface {
	Gateway
	CatalogReader
	Close() error
}
