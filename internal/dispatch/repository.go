package dispatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cartage-systems/cartage/internal/platform/db"
	"github.com/cartage-systems/cartage/internal/shared"
)

// Repository provides PostgreSQL backed persistence for dispatch reports,
// line snapshots and the manifest audit trail.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Tx exposes the statements available inside a finalize transaction. The
// transaction reaches across the orders and staging tables so report
// creation, allocation and cart drain commit or roll back together.
type Tx struct {
	tx pgx.Tx
}

// WithTx executes fn inside a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, FinalizeTx) error) error {
	if r == nil || r.pool == nil {
		return fmt.Errorf("dispatch: repository not initialised")
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &Tx{tx: tx})
	})
}

// InsertReport creates the report row and returns its id. Manifest numbers
// are unique; a collision surfaces as shared.ErrDuplicate.
func (t *Tx) InsertReport(ctx context.Context, input ReportInput) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `
		INSERT INTO dispatch_reports (
			manifest_number, dispatch_date, driver, assistant, checker, vehicle_reg,
			pallets_brown, pallets_blue, crates, mileage,
			total_value, total_sku, total_weight, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW())
		RETURNING id`,
		input.ManifestNumber, input.DispatchDate, input.Driver, input.Assistant,
		input.Checker, input.VehicleReg, input.PalletsBrown, input.PalletsBlue,
		input.Crates, input.Mileage, input.TotalValue, input.TotalSKU, input.TotalWeight,
	).Scan(&id)
	if err != nil {
		if shared.IsUniqueViolation(err) {
			return 0, shared.ErrDuplicate
		}
		return 0, err
	}
	return id, nil
}

// InsertLine appends one snapshot row to a report.
func (t *Tx) InsertLine(ctx context.Context, reportID int64, line LineInput) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO report_lines (
			report_id, invoice_number, order_number, customer_name, customer_number,
			invoice_date, area, sku, value, weight
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		reportID, line.InvoiceNumber, line.OrderNumber, line.CustomerName,
		line.CustomerNumber, line.InvoiceDate, line.Area, line.SKU, line.Value, line.Weight)
	return err
}

// StagedSourceNames resolves the session's cart to document names.
func (t *Tx) StagedSourceNames(ctx context.Context, session string) ([]string, error) {
	rows, err := t.tx.Query(ctx, `
		SELECT o.source_name
		FROM orders o
		INNER JOIN staging_entries se ON se.order_id = o.id
		WHERE se.session_id = $1
		ORDER BY se.added_at ASC`,
		session)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Allocate commits the named invoices to the manifest.
func (t *Tx) Allocate(ctx context.Context, sourceNames []string, manifestNumber string) (int64, error) {
	if len(sourceNames) == 0 {
		return 0, nil
	}
	tag, err := t.tx.Exec(ctx, `
		UPDATE orders
		SET is_allocated = TRUE, allocated_at = NOW(), manifest_number = $2
		WHERE source_name = ANY($1) AND kind = 'INVOICE'`,
		sourceNames, manifestNumber)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// ClearStaging drains every entry for the session.
func (t *Tx) ClearStaging(ctx context.Context, session string) (int64, error) {
	tag, err := t.tx.Exec(ctx, `DELETE FROM staging_entries WHERE session_id = $1`, session)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// InsertEvent appends one audit record. Events are never updated or deleted.
func (r *Repository) InsertEvent(ctx context.Context, manifestNumber, eventType, actor string) (*ManifestEvent, error) {
	var ev ManifestEvent
	err := r.pool.QueryRow(ctx, `
		INSERT INTO manifest_events (manifest_number, event_type, actor, occurred_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, occurred_at`,
		manifestNumber, eventType, actor,
	).Scan(&ev.ID, &ev.OccurredAt)
	if err != nil {
		return nil, err
	}
	ev.ManifestNumber = manifestNumber
	ev.EventType = eventType
	ev.Actor = actor
	return &ev, nil
}

const reportColumns = `
	id, manifest_number, dispatch_date, driver, assistant, checker, vehicle_reg,
	pallets_brown, pallets_blue, crates, mileage, total_value, total_sku,
	total_weight, created_at`

// GetReport fetches a report by manifest number.
func (r *Repository) GetReport(ctx context.Context, manifestNumber string) (*DispatchReport, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT`+reportColumns+` FROM dispatch_reports WHERE manifest_number = $1`,
		manifestNumber)
	return scanReport(row)
}

// ListReports returns reports within the optional date range, newest first.
func (r *Repository) ListReports(ctx context.Context, dateFrom, dateTo string) ([]DispatchReport, error) {
	query := `SELECT` + reportColumns + ` FROM dispatch_reports WHERE 1=1`
	args := []any{}
	argNum := 1
	if dateFrom != "" {
		query += fmt.Sprintf(" AND dispatch_date >= $%d", argNum)
		args = append(args, dateFrom)
		argNum++
	}
	if dateTo != "" {
		query += fmt.Sprintf(" AND dispatch_date <= $%d", argNum)
		args = append(args, dateTo)
		argNum++
	}
	query += " ORDER BY id DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []DispatchReport
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, *rep)
	}
	return reports, rows.Err()
}

// ListLines returns a report's snapshot rows in insertion order.
func (r *Repository) ListLines(ctx context.Context, reportID int64) ([]ReportLine, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, report_id, invoice_number, order_number, customer_name,
			customer_number, invoice_date, area, sku, value, weight
		FROM report_lines
		WHERE report_id = $1
		ORDER BY id`,
		reportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []ReportLine
	for rows.Next() {
		var l ReportLine
		err := rows.Scan(
			&l.ID, &l.ReportID, &l.InvoiceNumber, &l.OrderNumber, &l.CustomerName,
			&l.CustomerNumber, &l.InvoiceDate, &l.Area, &l.SKU, &l.Value, &l.Weight,
		)
		if err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// ListEvents returns a manifest's audit trail, newest first.
func (r *Repository) ListEvents(ctx context.Context, manifestNumber string) ([]ManifestEvent, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, manifest_number, event_type, actor, occurred_at
		FROM manifest_events
		WHERE manifest_number = $1
		ORDER BY occurred_at DESC, id DESC`,
		manifestNumber)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []ManifestEvent
	for rows.Next() {
		var ev ManifestEvent
		if err := rows.Scan(&ev.ID, &ev.ManifestNumber, &ev.EventType, &ev.Actor, &ev.OccurredAt); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// dispatchedSortFields whitelists sortable columns for ListDispatched.
var dispatchedSortFields = map[string]string{
	"dispatch_date":   "r.dispatch_date",
	"manifest_number": "r.manifest_number",
	"invoice_number":  "l.invoice_number",
	"customer_name":   "l.customer_name",
	"driver":          "r.driver",
}

// ListDispatched returns invoice-level dispatched rows with the total count
// before pagination.
func (r *Repository) ListDispatched(ctx context.Context, filter DispatchedFilter) ([]DispatchedRow, int, error) {
	base := `
		FROM dispatch_reports r
		INNER JOIN report_lines l ON l.report_id = r.id
		WHERE 1=1`
	args := []any{}
	argNum := 1

	if filter.DateFrom != "" {
		base += fmt.Sprintf(" AND r.dispatch_date >= $%d", argNum)
		args = append(args, filter.DateFrom)
		argNum++
	}
	if filter.DateTo != "" {
		base += fmt.Sprintf(" AND r.dispatch_date <= $%d", argNum)
		args = append(args, filter.DateTo)
		argNum++
	}
	if filter.Search != "" {
		base += fmt.Sprintf(` AND (
			l.invoice_number ILIKE $%d OR
			l.order_number ILIKE $%d OR
			r.manifest_number ILIKE $%d OR
			l.customer_name ILIKE $%d OR
			r.driver ILIKE $%d OR
			r.vehicle_reg ILIKE $%d OR
			r.checker ILIKE $%d
		)`, argNum, argNum, argNum, argNum, argNum, argNum, argNum)
		args = append(args, "%"+filter.Search+"%")
		argNum++
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*)"+base, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sortField, ok := dispatchedSortFields[filter.SortBy]
	if !ok {
		sortField = "r.dispatch_date"
	}
	direction := "ASC"
	if filter.SortDesc {
		direction = "DESC"
	}

	query := `
		SELECT r.manifest_number, r.dispatch_date, r.driver, r.assistant,
			r.checker, r.vehicle_reg,
			l.invoice_number, l.order_number, l.customer_name, l.customer_number,
			l.invoice_date, l.area, l.sku, l.value, l.weight` + base +
		fmt.Sprintf(" ORDER BY %s %s", sortField, direction)

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	query += fmt.Sprintf(" LIMIT $%d", argNum)
	args = append(args, limit)
	argNum++
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argNum)
		args = append(args, filter.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []DispatchedRow
	for rows.Next() {
		var d DispatchedRow
		err := rows.Scan(
			&d.ManifestNumber, &d.DispatchDate, &d.Driver, &d.Assistant,
			&d.Checker, &d.VehicleReg,
			&d.InvoiceNumber, &d.OrderNumber, &d.CustomerName, &d.CustomerNumber,
			&d.InvoiceDate, &d.Area, &d.SKU, &d.Value, &d.Weight,
		)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, d)
	}
	return out, total, rows.Err()
}

// Outstanding returns invoices never referenced by any report line. The
// check is against dispatch history, not the is_allocated flag, so an
// allocation that was later unwound still counts as outstanding.
func (r *Repository) Outstanding(ctx context.Context) ([]OutstandingRow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT invoice_number, order_number, customer_name, customer_number,
			invoice_date, total_value, area
		FROM orders
		WHERE invoice_number NOT IN (SELECT DISTINCT invoice_number FROM report_lines)
			AND status <> 'CANCELLED'
			AND kind = 'INVOICE'
		ORDER BY invoice_date DESC, invoice_number DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OutstandingRow
	for rows.Next() {
		var o OutstandingRow
		err := rows.Scan(
			&o.InvoiceNumber, &o.OrderNumber, &o.CustomerName, &o.CustomerNumber,
			&o.InvoiceDate, &o.TotalValue, &o.Area,
		)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func scanReport(row pgx.Row) (*DispatchReport, error) {
	var rep DispatchReport
	err := row.Scan(
		&rep.ID, &rep.ManifestNumber, &rep.DispatchDate, &rep.Driver, &rep.Assistant,
		&rep.Checker, &rep.VehicleReg, &rep.PalletsBrown, &rep.PalletsBlue,
		&rep.Crates, &rep.Mileage, &rep.TotalValue, &rep.TotalSKU,
		&rep.TotalWeight, &rep.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rep, nil
}
