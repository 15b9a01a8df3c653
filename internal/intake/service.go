package intake

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/cartage-systems/cartage/internal/orders"
	"github.com/cartage-systems/cartage/internal/shared"
)

// StoreTx is the order-store surface available inside an ingestion
// transaction.
type StoreTx interface {
	InvoiceStore
	Insert(ctx context.Context, input orders.NewOrderInput) (*orders.Order, error)
}

// Store provides transactional access to the order store.
type Store interface {
	WithTx(ctx context.Context, fn func(context.Context, StoreTx) error) error
}

// NewPgStore adapts the concrete orders repository to the Store port.
func NewPgStore(repo *orders.Repository) Store {
	return pgStore{repo: repo}
}

type pgStore struct {
	repo *orders.Repository
}

func (s pgStore) WithTx(ctx context.Context, fn func(context.Context, StoreTx) error) error {
	return s.repo.WithTx(ctx, func(ctx context.Context, q *orders.Queries) error {
		return fn(ctx, q)
	})
}

// Outcome reports what ingestion did with one document.
type Outcome struct {
	Accepted   bool          `json:"accepted"`
	Duplicate  bool          `json:"duplicate"`
	Resolution Resolution    `json:"resolution,omitempty"`
	Order      *orders.Order `json:"order,omitempty"`
}

// Service ingests classified documents into the order store.
type Service struct {
	store      Store
	classifier *Classifier
	reconciler *Reconciler
	logger     *slog.Logger
}

// NewService builds the ingestion service.
func NewService(store Store, classifier *Classifier, reconciler *Reconciler, logger *slog.Logger) *Service {
	return &Service{store: store, classifier: classifier, reconciler: reconciler, logger: logger}
}

// Ingest accepts one document's candidate fields. The whole sequence of
// classify, reconcile and insert runs in a single transaction, so a credit
// note can never adjust an invoice and then fail to persist. Re-ingesting a
// known source name is a duplicate outcome, not an error.
func (s *Service) Ingest(ctx context.Context, fields CandidateFields) (Outcome, error) {
	if fields.SourceName == "" {
		return Outcome{}, fmt.Errorf("ingest: source name required")
	}

	input := s.classifier.Classify(fields)

	var outcome Outcome
	err := s.store.WithTx(ctx, func(ctx context.Context, tx StoreTx) error {
		resolution, err := s.reconciler.Reconcile(ctx, tx, &input)
		if err != nil {
			return err
		}
		order, err := tx.Insert(ctx, input)
		if err != nil {
			return err
		}
		outcome = Outcome{Accepted: true, Resolution: resolution, Order: order}
		return nil
	})
	if errors.Is(err, shared.ErrDuplicate) {
		s.logger.Info("duplicate document skipped", slog.String("source", fields.SourceName))
		return Outcome{Duplicate: true}, nil
	}
	if err != nil {
		return Outcome{}, fmt.Errorf("ingest %s: %w", fields.SourceName, err)
	}

	s.logger.Info("document ingested",
		slog.String("source", fields.SourceName),
		slog.String("kind", string(input.Kind)),
		slog.String("resolution", string(outcome.Resolution)),
	)
	return outcome, nil
}

// ManualEntry describes an operator-keyed invoice.
type ManualEntry struct {
	CustomerName   string `json:"customer_name" validate:"required"`
	CustomerNumber string `json:"customer_number"`
	TotalValue     string `json:"total_value" validate:"required"`
	InvoiceNumber  string `json:"invoice_number" validate:"required"`
	OrderNumber    string `json:"order_number"`
	Area           string `json:"area"`
}

// IngestManual records a hand-entered invoice through the normal ingestion
// path under a generated unique source name.
func (s *Service) IngestManual(ctx context.Context, entry ManualEntry) (Outcome, error) {
	sourceName := fmt.Sprintf("MANUAL_%s_%s.pdf",
		time.Now().Format("20060102_150405"), uuid.NewString()[:8])

	return s.Ingest(ctx, CandidateFields{
		SourceName:     sourceName,
		CustomerName:   entry.CustomerName,
		CustomerNumber: entry.CustomerNumber,
		TotalValue:     entry.TotalValue,
		InvoiceNumber:  entry.InvoiceNumber,
		OrderNumber:    entry.OrderNumber,
		InvoiceDate:    time.Now().Format("2006-01-02"),
		Area:           entry.Area,
	})
}
