package fleet

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cartage-systems/cartage/internal/shared"
)

// Repository provides PostgreSQL backed persistence for trucks, settings and
// customer routes.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// InsertTruck creates a truck. Registrations are unique.
func (r *Repository) InsertTruck(ctx context.Context, input TruckInput) (*Truck, error) {
	var t Truck
	err := r.pool.QueryRow(ctx, `
		INSERT INTO trucks (registration, description, is_active)
		VALUES ($1, $2, TRUE)
		RETURNING id, registration, description, is_active`,
		input.Registration, input.Description,
	).Scan(&t.ID, &t.Registration, &t.Description, &t.IsActive)
	if err != nil {
		if shared.IsUniqueViolation(err) {
			return nil, shared.ErrDuplicate
		}
		return nil, err
	}
	return &t, nil
}

// ListTrucks returns active trucks ordered by registration.
func (r *Repository) ListTrucks(ctx context.Context) ([]Truck, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, registration, description, is_active
		FROM trucks WHERE is_active ORDER BY registration`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Truck
	for rows.Next() {
		var t Truck
		if err := rows.Scan(&t.ID, &t.Registration, &t.Description, &t.IsActive); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// RetireTruck marks a truck inactive.
func (r *Repository) RetireTruck(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE trucks SET is_active = FALSE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// InsertSetting creates one option under a category.
func (r *Repository) InsertSetting(ctx context.Context, input SettingInput) (*Setting, error) {
	var s Setting
	err := r.pool.QueryRow(ctx, `
		INSERT INTO settings (category, value)
		VALUES ($1, $2)
		RETURNING id, category, value`,
		input.Category, input.Value,
	).Scan(&s.ID, &s.Category, &s.Value)
	if err != nil {
		if shared.IsUniqueViolation(err) {
			return nil, shared.ErrDuplicate
		}
		return nil, err
	}
	return &s, nil
}

// ListSettings returns options for a category, or all when category is blank.
func (r *Repository) ListSettings(ctx context.Context, category string) ([]Setting, error) {
	query := `SELECT id, category, value FROM settings`
	args := []any{}
	if category != "" {
		query += ` WHERE category = $1`
		args = append(args, category)
	}
	query += ` ORDER BY category, value`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Setting
	for rows.Next() {
		var s Setting
		if err := rows.Scan(&s.ID, &s.Category, &s.Value); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// DeleteSetting removes one option.
func (r *Repository) DeleteSetting(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM settings WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// UpsertCustomerRoute creates or replaces the route for a customer.
func (r *Repository) UpsertCustomerRoute(ctx context.Context, input CustomerRouteInput) (*CustomerRoute, error) {
	var cr CustomerRoute
	err := r.pool.QueryRow(ctx, `
		INSERT INTO customer_routes (customer_name, area)
		VALUES ($1, $2)
		ON CONFLICT (customer_name) DO UPDATE SET area = EXCLUDED.area
		RETURNING id, customer_name, area`,
		input.CustomerName, strings.ToUpper(input.Area),
	).Scan(&cr.ID, &cr.CustomerName, &cr.Area)
	if err != nil {
		return nil, err
	}
	return &cr, nil
}

// FindRoute returns the area mapped to a customer.
func (r *Repository) FindRoute(ctx context.Context, customerName string) (*CustomerRoute, error) {
	var cr CustomerRoute
	err := r.pool.QueryRow(ctx,
		`SELECT id, customer_name, area FROM customer_routes WHERE customer_name = $1`,
		customerName,
	).Scan(&cr.ID, &cr.CustomerName, &cr.Area)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &cr, nil
}

// ListCustomerRoutes returns every mapping ordered by customer name.
func (r *Repository) ListCustomerRoutes(ctx context.Context) ([]CustomerRoute, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, customer_name, area FROM customer_routes ORDER BY customer_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CustomerRoute
	for rows.Next() {
		var cr CustomerRoute
		if err := rows.Scan(&cr.ID, &cr.CustomerName, &cr.Area); err != nil {
			return nil, err
		}
		out = append(out, cr)
	}
	return out, rows.Err()
}

// DeleteCustomerRoute removes one mapping.
func (r *Repository) DeleteCustomerRoute(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM customer_routes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
