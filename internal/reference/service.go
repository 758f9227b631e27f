package reference

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Source fetches reference collections from the books backend.
type Source interface {
	Get(ctx context.Context, path string, dest any) error
}

type Service struct {
	source Source
	cache  *Cache
}

func NewService(source Source, cache *Cache) *Service {
	return &Service{source: source, cache: cache}
}

// Accounts returns the tenant's chart of accounts, cached.
func (s *Service) Accounts(ctx context.Context, tenantID int64) ([]Account, error) {
	var accounts []Account
	err := s.fetch(ctx, "accounts", tenantID, &accounts)
	return accounts, err
}

// Products returns the tenant's product catalog, cached.
func (s *Service) Products(ctx context.Context, tenantID int64) ([]Product, error) {
	var products []Product
	err := s.fetch(ctx, "products", tenantID, &products)
	return products, err
}

// Parties returns the tenant's customers and suppliers, cached.
func (s *Service) Parties(ctx context.Context, tenantID int64) ([]Party, error) {
	var parties []Party
	err := s.fetch(ctx, "parties", tenantID, &parties)
	return parties, err
}

// Refresh drops all cached reference data for every tenant.
func (s *Service) Refresh(ctx context.Context) error {
	return s.cache.Bump(ctx)
}

// Warmup pre-populates the cache for the given tenants, fetching the
// three collections per tenant concurrently.
func (s *Service) Warmup(ctx context.Context, tenantIDs []int64) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for _, tenantID := range tenantIDs {
		g.Go(func() error {
			_, err := s.Accounts(ctx, tenantID)
			return err
		})
		g.Go(func() error {
			_, err := s.Products(ctx, tenantID)
			return err
		})
		g.Go(func() error {
			_, err := s.Parties(ctx, tenantID)
			return err
		})
	}
	return g.Wait()
}

func (s *Service) fetch(ctx context.Context, collection string, tenantID int64, dest any) error {
	key, err := s.cache.BuildKey(ctx, "reference", collection, fmt.Sprintf("%d", tenantID))
	if err != nil {
		return err
	}
	return s.cache.FetchJSON(ctx, key, dest, func(ctx context.Context) (interface{}, error) {
		out := dest
		path := fmt.Sprintf("reference/%s?tenant_id=%d", collection, tenantID)
		if err := s.source.Get(ctx, path, out); err != nil {
			return nil, fmt.Errorf("fetch %s: %w", collection, err)
		}
		return out, nil
	})
}
