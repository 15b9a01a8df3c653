package staging

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cartage-systems/cartage/internal/orders"
	"github.com/cartage-systems/cartage/internal/platform/db"
)

// Repository provides PostgreSQL backed persistence for staging entries.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Add parks the named invoices in the session's cart. Insertion and the
// existing-entry check collapse into one ON CONFLICT statement, so two
// concurrent adds for the same invoice cannot both insert, whether the race
// is within one session or across two. Returns the number of entries
// actually created; already-staged invoices are skipped silently.
func (r *Repository) Add(ctx context.Context, session string, sourceNames []string) (int64, error) {
	if session == "" || len(sourceNames) == 0 {
		return 0, nil
	}
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO staging_entries (session_id, order_id)
		SELECT $1, o.id
		FROM orders o
		WHERE o.source_name = ANY($2) AND o.kind = 'INVOICE'
		ON CONFLICT DO NOTHING`,
		session, sourceNames)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Remove deletes the session's entries for the named invoices and resets
// any allocation flags they picked up, but leaves flags intact for invoices
// whose manifest has already been finalized into a dispatch report. A late
// staging edit must never unwind dispatch history.
func (r *Repository) Remove(ctx context.Context, session string, sourceNames []string) (int64, error) {
	if session == "" || len(sourceNames) == 0 {
		return 0, nil
	}

	var removed int64
	err := r.withTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			DELETE FROM staging_entries
			WHERE session_id = $1
				AND order_id IN (SELECT id FROM orders WHERE source_name = ANY($2))`,
			session, sourceNames)
		if err != nil {
			return err
		}
		removed = tag.RowsAffected()

		_, err = tx.Exec(ctx, `
			UPDATE orders
			SET is_allocated = FALSE, allocated_at = NULL, manifest_number = NULL
			WHERE source_name = ANY($1)
				AND (manifest_number IS NULL OR manifest_number NOT IN (
					SELECT manifest_number FROM dispatch_reports
				))`,
			sourceNames)
		return err
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// List returns the session's open cart, oldest first.
func (r *Repository) List(ctx context.Context, session string) ([]orders.Order, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT o.id, o.source_name, o.kind, o.status, o.customer_name, o.customer_number,
			o.total_value, o.order_number, o.invoice_number, o.invoice_date, o.area,
			o.is_allocated, o.allocated_at, o.manifest_number, o.reference_number,
			o.original_value, o.processed_at
		FROM orders o
		INNER JOIN staging_entries se ON se.order_id = o.id
		WHERE se.session_id = $1
			AND o.kind = 'INVOICE'
			AND NOT o.is_allocated
		ORDER BY se.added_at ASC`,
		session)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrders(rows)
}

// ListForManifest returns a resumed manifest view: invoices already
// finalized under manifestNumber plus the session's open entries that are
// not finalized under a different manifest. The union carries no duplicates
// because the two arms are disjoint on is_allocated.
func (r *Repository) ListForManifest(ctx context.Context, session, manifestNumber string) ([]orders.Order, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT o.id, o.source_name, o.kind, o.status, o.customer_name, o.customer_number,
			o.total_value, o.order_number, o.invoice_number, o.invoice_date, o.area,
			o.is_allocated, o.allocated_at, o.manifest_number, o.reference_number,
			o.original_value, o.processed_at
		FROM orders o
		WHERE o.manifest_number = $2 AND o.is_allocated AND o.kind = 'INVOICE'
		UNION
		SELECT o.id, o.source_name, o.kind, o.status, o.customer_name, o.customer_number,
			o.total_value, o.order_number, o.invoice_number, o.invoice_date, o.area,
			o.is_allocated, o.allocated_at, o.manifest_number, o.reference_number,
			o.original_value, o.processed_at
		FROM orders o
		INNER JOIN staging_entries se ON se.order_id = o.id
		WHERE se.session_id = $1
			AND o.kind = 'INVOICE'
			AND NOT o.is_allocated
			AND (o.manifest_number IS NULL OR o.manifest_number <> $2)
		ORDER BY processed_at DESC`,
		session, manifestNumber)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrders(rows)
}

func (r *Repository) withTx(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
	if r == nil || r.pool == nil {
		return fmt.Errorf("staging: repository not initialised")
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, tx)
	})
}

func scanOrders(rows pgx.Rows) ([]orders.Order, error) {
	var out []orders.Order
	for rows.Next() {
		var o orders.Order
		var allocatedAt pgtype.Timestamptz
		var manifestNumber, referenceNumber, originalValue pgtype.Text
		err := rows.Scan(
			&o.ID, &o.SourceName, &o.Kind, &o.Status, &o.CustomerName, &o.CustomerNumber,
			&o.TotalValue, &o.OrderNumber, &o.InvoiceNumber, &o.InvoiceDate, &o.Area,
			&o.IsAllocated, &allocatedAt, &manifestNumber, &referenceNumber,
			&originalValue, &o.ProcessedAt,
		)
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
		out = append(out, o)
	}
	return out, rows.Err()
}
