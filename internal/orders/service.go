package orders

import (
	"context"
	"fmt"
	"strings"
)

// RepositoryPort defines the data access surface the service needs.
type RepositoryPort interface {
	FindBySourceName(ctx context.Context, sourceName string) (*Order, error)
	Search(ctx context.Context, text string) ([]Order, error)
	ListAvailable(ctx context.Context, area string) ([]Order, error)
	ListAreas(ctx context.Context) ([]string, error)
	ListCustomers(ctx context.Context) ([]string, error)
	Deallocate(ctx context.Context, sourceNames []string) (int64, error)
}

// Service exposes the order-store read side plus restore.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Get fetches one order by its source-document name.
func (s *Service) Get(ctx context.Context, sourceName string) (*Order, error) {
	return s.repo.FindBySourceName(ctx, sourceName)
}

// Available lists invoices eligible for staging, optionally filtered by area.
func (s *Service) Available(ctx context.Context, area string) ([]Order, error) {
	return s.repo.ListAvailable(ctx, strings.TrimSpace(area))
}

// Search finds orders matching the query text. Blank queries return nothing
// rather than the whole table.
func (s *Service) Search(ctx context.Context, query string) ([]Order, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	return s.repo.Search(ctx, query)
}

// Areas returns the distinct area tags seen across all orders.
func (s *Service) Areas(ctx context.Context) ([]string, error) {
	return s.repo.ListAreas(ctx)
}

// Customers returns the distinct customer names seen across all orders.
func (s *Service) Customers(ctx context.Context) ([]string, error) {
	return s.repo.ListCustomers(ctx)
}

// Restore de-allocates invoices back to pending. A zero count is reported,
// not raised, so client retries stay safe.
func (s *Service) Restore(ctx context.Context, sourceNames []string) (int64, error) {
	if len(sourceNames) == 0 {
		return 0, nil
	}
	count, err := s.repo.Deallocate(ctx, sourceNames)
	if err != nil {
		return 0, fmt.Errorf("deallocate: %w", err)
	}
	return count, nil
}
