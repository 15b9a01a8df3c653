package staging

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cartage-systems/cartage/internal/orders"
)

// RepositoryPort defines the data access surface the service needs.
type RepositoryPort interface {
	Add(ctx context.Context, session string, sourceNames []string) (int64, error)
	Remove(ctx context.Context, session string, sourceNames []string) (int64, error)
	List(ctx context.Context, session string) ([]orders.Order, error)
	ListForManifest(ctx context.Context, session, manifestNumber string) ([]orders.Order, error)
}

// Service handles the per-session staging cart.
type Service struct {
	repo   RepositoryPort
	logger *slog.Logger
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Add stages invoices for a session. Already-staged invoices are skipped,
// not errors, so the returned count may be below len(sourceNames).
func (s *Service) Add(ctx context.Context, session string, sourceNames []string) (int64, error) {
	session = strings.TrimSpace(session)
	if session == "" {
		return 0, fmt.Errorf("staging: session required")
	}
	added, err := s.repo.Add(ctx, session, sourceNames)
	if err != nil {
		return 0, fmt.Errorf("stage invoices: %w", err)
	}
	s.logger.Info("staged invoices",
		slog.String("session", session),
		slog.Int64("added", added),
		slog.Int("requested", len(sourceNames)),
	)
	return added, nil
}

// Remove takes invoices out of the cart. Any session may remove by source
// name; there is no per-session ownership check. Allocation flags are
// cleared unless protected by a finalized report.
func (s *Service) Remove(ctx context.Context, session string, sourceNames []string) (int64, error) {
	session = strings.TrimSpace(session)
	if session == "" {
		return 0, fmt.Errorf("staging: session required")
	}
	removed, err := s.repo.Remove(ctx, session, sourceNames)
	if err != nil {
		return 0, fmt.Errorf("remove from staging: %w", err)
	}
	s.logger.Info("removed staged invoices",
		slog.String("session", session),
		slog.Int64("removed", removed),
	)
	return removed, nil
}

// List returns the cart contents. With a manifest number it merges the
// invoices already finalized under that manifest with the session's open
// entries, so resuming work on a manifest shows the full picture.
func (s *Service) List(ctx context.Context, session, manifestNumber string) ([]orders.Order, error) {
	session = strings.TrimSpace(session)
	if session == "" {
		return nil, fmt.Errorf("staging: session required")
	}
	if manifestNumber = strings.TrimSpace(manifestNumber); manifestNumber != "" {
		return s.repo.ListForManifest(ctx, session, manifestNumber)
	}
	return s.repo.List(ctx, session)
}
