package fleet

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type memoryFleetRepo struct {
	trucks   []Truck
	settings []Setting
	routes   map[string]*CustomerRoute
}

func newMemoryFleetRepo() *memoryFleetRepo {
	return &memoryFleetRepo{routes: make(map[string]*CustomerRoute)}
}

func (r *memoryFleetRepo) InsertTruck(ctx context.Context, input TruckInput) (*Truck, error) {
	t := Truck{ID: int64(len(r.trucks) + 1), Registration: input.Registration, Description: input.Description, IsActive: true}
	r.trucks = append(r.trucks, t)
	return &t, nil
}

func (r *memoryFleetRepo) ListTrucks(ctx context.Context) ([]Truck, error) {
	return r.trucks, nil
}

func (r *memoryFleetRepo) RetireTruck(ctx context.Context, id int64) error { return nil }

func (r *memoryFleetRepo) InsertSetting(ctx context.Context, input SettingInput) (*Setting, error) {
	s := Setting{ID: int64(len(r.settings) + 1), Category: input.Category, Value: input.Value}
	r.settings = append(r.settings, s)
	return &s, nil
}

func (r *memoryFleetRepo) ListSettings(ctx context.Context, category string) ([]Setting, error) {
	if category == "" {
		return r.settings, nil
	}
	var out []Setting
	for _, s := range r.settings {
		if s.Category == category {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *memoryFleetRepo) DeleteSetting(ctx context.Context, id int64) error { return nil }

func (r *memoryFleetRepo) UpsertCustomerRoute(ctx context.Context, input CustomerRouteInput) (*CustomerRoute, error) {
	cr := &CustomerRoute{ID: int64(len(r.routes) + 1), CustomerName: input.CustomerName, Area: input.Area}
	r.routes[input.CustomerName] = cr
	return cr, nil
}

func (r *memoryFleetRepo) FindRoute(ctx context.Context, customerName string) (*CustomerRoute, error) {
	return r.routes[customerName], nil
}

func (r *memoryFleetRepo) ListCustomerRoutes(ctx context.Context) ([]CustomerRoute, error) {
	return nil, nil
}

func (r *memoryFleetRepo) DeleteCustomerRoute(ctx context.Context, id int64) error { return nil }

func TestAddTruckUppercasesRegistration(t *testing.T) {
	svc := NewService(newMemoryFleetRepo())

	truck, err := svc.AddTruck(context.Background(), TruckInput{Registration: " abc1234 "})
	require.NoError(t, err)
	require.Equal(t, "ABC1234", truck.Registration)
}

func TestSettingsNormaliseCategory(t *testing.T) {
	repo := newMemoryFleetRepo()
	svc := NewService(repo)
	ctx := context.Background()

	_, err := svc.AddSetting(ctx, SettingInput{Category: " Driver ", Value: " T. Moyo "})
	require.NoError(t, err)

	out, err := svc.Settings(ctx, "DRIVER")
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, "driver", out[0].Category)
	require.Equal(t, "T. Moyo", out[0].Value)
}
