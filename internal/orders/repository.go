package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cartage-systems/cartage/internal/platform/db"
	"github.com/cartage-systems/cartage/internal/shared"
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx, so every query below
// runs identically inside or outside an explicit transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Queries bundles the order-store statements over a DBTX.
type Queries struct {
	db DBTX
}

// Repository provides PostgreSQL backed persistence for orders.
type Repository struct {
	*Queries
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{Queries: &Queries{db: pool}, pool: pool}
}

// WithTx executes fn inside a repeatable-read transaction. Ingestion and
// reconciliation are lookup-then-update sequences and must not interleave.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, *Queries) error) error {
	if r == nil || r.pool == nil {
		return fmt.Errorf("orders: repository not initialised")
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &Queries{db: tx})
	})
}

const orderColumns = `
	id, source_name, kind, status, customer_name, customer_number,
	total_value, order_number, invoice_number, invoice_date, area,
	is_allocated, allocated_at, manifest_number, reference_number,
	original_value, processed_at`

// Insert stores a new order row. The source name is globally unique;
// collisions surface as shared.ErrDuplicate so callers can treat
// re-ingestion as a no-op.
func (q *Queries) Insert(ctx context.Context, input NewOrderInput) (*Order, error) {
	query := `
		INSERT INTO orders (
			source_name, kind, status, customer_name, customer_number,
			total_value, order_number, invoice_number, invoice_date, area,
			reference_number, original_value, processed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id`

	processedAt := input.ProcessedAt
	if processedAt.IsZero() {
		processedAt = time.Now()
	}

	var id int64
	err := q.db.QueryRow(ctx, query,
		input.SourceName,
		string(input.Kind),
		string(input.Status),
		input.CustomerName,
		input.CustomerNumber,
		input.TotalValue,
		input.OrderNumber,
		input.InvoiceNumber,
		input.InvoiceDate,
		input.Area,
		toText(input.ReferenceNumber),
		toText(input.OriginalValue),
		processedAt,
	).Scan(&id)
	if err != nil {
		if shared.IsUniqueViolation(err) {
			return nil, shared.ErrDuplicate
		}
		return nil, err
	}

	return &Order{
		ID:              id,
		SourceName:      input.SourceName,
		Kind:            input.Kind,
		Status:          input.Status,
		CustomerName:    input.CustomerName,
		CustomerNumber:  input.CustomerNumber,
		TotalValue:      input.TotalValue,
		OrderNumber:     input.OrderNumber,
		InvoiceNumber:   input.InvoiceNumber,
		InvoiceDate:     input.InvoiceDate,
		Area:            input.Area,
		ReferenceNumber: input.ReferenceNumber,
		OriginalValue:   input.OriginalValue,
		ProcessedAt:     processedAt,
	}, nil
}

// FindBySourceName retrieves a single order by its document name.
func (q *Queries) FindBySourceName(ctx context.Context, sourceName string) (*Order, error) {
	row := q.db.QueryRow(ctx, `SELECT`+orderColumns+` FROM orders WHERE source_name = $1`, sourceName)
	return scanOrder(row)
}

// FindByInvoiceNumber retrieves an invoice by invoice number. Credit-note
// rows are excluded so a credit note can never reconcile against another.
func (q *Queries) FindByInvoiceNumber(ctx context.Context, invoiceNumber string) (*Order, error) {
	row := q.db.QueryRow(ctx,
		`SELECT`+orderColumns+` FROM orders WHERE invoice_number = $1 AND kind = 'INVOICE'`,
		invoiceNumber)
	return scanOrder(row)
}

// Search matches a case-insensitive substring against invoice number, order
// number, customer name/number and source name, capped at 50 rows.
func (q *Queries) Search(ctx context.Context, text string) ([]Order, error) {
	pattern := "%" + text + "%"
	rows, err := q.db.Query(ctx, `
		SELECT`+orderColumns+`
		FROM orders
		WHERE invoice_number ILIKE $1
			OR order_number ILIKE $1
			OR customer_name ILIKE $1
			OR source_name ILIKE $1
			OR customer_number ILIKE $1
		ORDER BY processed_at DESC
		LIMIT 50`, pattern)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrders(rows)
}

// SetValue updates an invoice's value, recording the original value when one
// is supplied. Returns the number of rows touched; zero is not an error.
func (q *Queries) SetValue(ctx context.Context, invoiceNumber, newValue string, originalValue *string) (int64, error) {
	if originalValue != nil {
		tag, err := q.db.Exec(ctx,
			`UPDATE orders SET total_value = $2, original_value = $3 WHERE invoice_number = $1 AND kind = 'INVOICE'`,
			invoiceNumber, newValue, *originalValue)
		if err != nil {
			return 0, err
		}
		return tag.RowsAffected(), nil
	}
	tag, err := q.db.Exec(ctx,
		`UPDATE orders SET total_value = $2 WHERE invoice_number = $1 AND kind = 'INVOICE'`,
		invoiceNumber, newValue)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Cancel marks an invoice CANCELLED. Its value stays untouched for audit.
func (q *Queries) Cancel(ctx context.Context, invoiceNumber string) (int64, error) {
	tag, err := q.db.Exec(ctx,
		`UPDATE orders SET status = 'CANCELLED' WHERE invoice_number = $1 AND kind = 'INVOICE'`,
		invoiceNumber)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Allocate commits the named invoices to a manifest. Re-allocating under the
// same manifest number is idempotent by construction.
func (q *Queries) Allocate(ctx context.Context, sourceNames []string, manifestNumber string) (int64, error) {
	if len(sourceNames) == 0 {
		return 0, nil
	}
	tag, err := q.db.Exec(ctx, `
		UPDATE orders
		SET is_allocated = TRUE, allocated_at = NOW(), manifest_number = $2
		WHERE source_name = ANY($1) AND kind = 'INVOICE'`,
		sourceNames, manifestNumber)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Deallocate resets the named invoices to pending. Invoices locked into a
// finalized report are left untouched; restores must never unwind dispatch
// history.
func (q *Queries) Deallocate(ctx context.Context, sourceNames []string) (int64, error) {
	if len(sourceNames) == 0 {
		return 0, nil
	}
	tag, err := q.db.Exec(ctx, `
		UPDATE orders
		SET is_allocated = FALSE, allocated_at = NULL, manifest_number = NULL
		WHERE source_name = ANY($1) AND kind = 'INVOICE'
			AND (manifest_number IS NULL OR manifest_number NOT IN (
				SELECT manifest_number FROM dispatch_reports
			))`,
		sourceNames)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// ListAvailable returns invoices eligible for staging: not cancelled, not
// locked into a finalized manifest, and not sitting in any session's cart.
// Staging is advisory-exclusive across sessions.
func (q *Queries) ListAvailable(ctx context.Context, area string) ([]Order, error) {
	query := `
		SELECT` + orderColumns + `
		FROM orders o
		WHERE o.kind = 'INVOICE'
			AND o.status <> 'CANCELLED'
			AND o.id NOT IN (SELECT order_id FROM staging_entries)
			AND (o.manifest_number IS NULL OR o.manifest_number NOT IN (
				SELECT manifest_number FROM dispatch_reports
			))`
	args := []any{}
	if area != "" {
		query += ` AND UPPER(o.area) = UPPER($1)`
		args = append(args, area)
	}
	query += ` ORDER BY o.processed_at DESC`

	rows, err := q.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrders(rows)
}

// ListAreas returns the distinct known area tags.
func (q *Queries) ListAreas(ctx context.Context) ([]string, error) {
	rows, err := q.db.Query(ctx,
		`SELECT DISTINCT area FROM orders WHERE area <> $1 ORDER BY area`, UnknownArea)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStrings(rows)
}

// ListCustomers returns the distinct customer names across all orders.
func (q *Queries) ListCustomers(ctx context.Context) ([]string, error) {
	rows, err := q.db.Query(ctx, `SELECT DISTINCT customer_name FROM orders ORDER BY customer_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStrings(rows)
}

func toText(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *s, Valid: true}
}

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	var allocatedAt pgtype.Timestamptz
	var manifestNumber, referenceNumber, originalValue pgtype.Text

	err := row.Scan(
		&o.ID, &o.SourceName, &o.Kind, &o.Status, &o.CustomerName, &o.CustomerNumber,
		&o.TotalValue, &o.OrderNumber, &o.InvoiceNumber, &o.InvoiceDate, &o.Area,
		&o.IsAllocated, &allocatedAt, &manifestNumber, &referenceNumber,
		&originalValue, &o.ProcessedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if allocatedAt.Valid {
		o.AllocatedAt = &allocatedAt.Time
	}
	if manifestNumber.Valid {
		o.ManifestNumber = &manifestNumber.String
	}
	if referenceNumber.Valid {
		o.ReferenceNumber = &referenceNumber.String
	}
	if originalValue.Valid {
		o.OriginalValue = &originalValue.String
	}
	return &o, nil
}

func scanOrders(rows pgx.Rows) ([]Order, error) {
	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

func scanStrings(rows pgx.Rows) ([]string, error) {
	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
