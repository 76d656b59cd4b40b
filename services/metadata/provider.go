package metadata

//go:generate mockgen -source=provider.go -destination=mocks/providers.go -package=mocks

import (
	"context"

	"github.com/samber/mo"

	"mediapedia/models"
)

// OMDbProvider is the ratings provider keyed by IMDb ids. Every call reports either a
// validated payload or an error; a response that fails validation is an error.
type OMDbProvider interface {
	SetKey(key string)
	ValidateKey(ctx context.Context, key string) models.ProviderStatus
	Search(ctx context.Context, query string) mo.Result[[]models.Title]
	Details(ctx context.Context, imdbID string) mo.Result[models.Title]
	DetailsByTitle(ctx context.Context, title, year string, kind models.TitleType) mo.Result[models.Title]
}

// TMDBProvider is the catalog provider keyed by numeric TMDB ids.
type TMDBProvider interface {
	SetKey(key string)
	ValidateKey(ctx context.Context, key string) models.ProviderStatus
	Search(ctx context.Context, query string) mo.Result[[]models.Title]
	Details(ctx context.Context, tmdbID int64, kind string) mo.Result[models.Title]
	ExternalIMDBID(ctx context.Context, tmdbID int64, kind string) mo.Result[string]
	WatchProviders(ctx context.Context, tmdbID int64, kind, region string) mo.Result[models.WatchProviders]
	Trending(ctx context.Context) mo.Result[[]models.Title]
}

// TitleStore is the slice of the cache the reconciler reads and writes.
type TitleStore interface {
	GetTitle(ctx context.Context, id string) (models.Title, error)
	UpsertTitle(ctx context.Context, t models.Title) error
	DeleteTitle(ctx context.Context, id string) error
}

var (
	_ OMDbProvider = (*OMDbClient)(nil)
	_ TMDBProvider = (*TMDBClient)(nil)
)
