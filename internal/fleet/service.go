package fleet

import (
	"context"
	"strings"
)

// RepositoryPort defines data access methods for fleet reference data.
type RepositoryPort interface {
	InsertTruck(ctx context.Context, input TruckInput) (*Truck, error)
	ListTrucks(ctx context.Context) ([]Truck, error)
	RetireTruck(ctx context.Context, id int64) error
	InsertSetting(ctx context.Context, input SettingInput) (*Setting, error)
	ListSettings(ctx context.Context, category string) ([]Setting, error)
	DeleteSetting(ctx context.Context, id int64) error
	UpsertCustomerRoute(ctx context.Context, input CustomerRouteInput) (*CustomerRoute, error)
	FindRoute(ctx context.Context, customerName string) (*CustomerRoute, error)
	ListCustomerRoutes(ctx context.Context) ([]CustomerRoute, error)
	DeleteCustomerRoute(ctx context.Context, id int64) error
}

// Service handles fleet reference data.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// AddTruck registers a vehicle. Registrations are stored uppercase.
func (s *Service) AddTruck(ctx context.Context, input TruckInput) (*Truck, error) {
	input.Registration = strings.ToUpper(strings.TrimSpace(input.Registration))
	return s.repo.InsertTruck(ctx, input)
}

// Trucks lists active vehicles.
func (s *Service) Trucks(ctx context.Context) ([]Truck, error) {
	return s.repo.ListTrucks(ctx)
}

// RetireTruck removes a vehicle from the active fleet.
func (s *Service) RetireTruck(ctx context.Context, id int64) error {
	return s.repo.RetireTruck(ctx, id)
}

// AddSetting creates one dropdown option.
func (s *Service) AddSetting(ctx context.Context, input SettingInput) (*Setting, error) {
	input.Category = strings.ToLower(strings.TrimSpace(input.Category))
	input.Value = strings.TrimSpace(input.Value)
	return s.repo.InsertSetting(ctx, input)
}

// Settings lists options, optionally for one category.
func (s *Service) Settings(ctx context.Context, category string) ([]Setting, error) {
	return s.repo.ListSettings(ctx, strings.ToLower(strings.TrimSpace(category)))
}

// RemoveSetting deletes one option.
func (s *Service) RemoveSetting(ctx context.Context, id int64) error {
	return s.repo.DeleteSetting(ctx, id)
}

// SetCustomerRoute creates or replaces a customer's area mapping.
func (s *Service) SetCustomerRoute(ctx context.Context, input CustomerRouteInput) (*CustomerRoute, error) {
	return s.repo.UpsertCustomerRoute(ctx, input)
}

// CustomerRoutes lists every mapping.
func (s *Service) CustomerRoutes(ctx context.Context) ([]CustomerRoute, error) {
	return s.repo.ListCustomerRoutes(ctx)
}

// RemoveCustomerRoute deletes one mapping.
func (s *Service) RemoveCustomerRoute(ctx context.Context, id int64) error {
	return s.repo.DeleteCustomerRoute(ctx, id)
}
