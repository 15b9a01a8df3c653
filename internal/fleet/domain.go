package fleet

// Truck is a vehicle available for dispatch.
type Truck struct {
	ID           int64  `json:"id"`
	Registration string `json:"registration"`
	Description  string `json:"description"`
	IsActive     bool   `json:"is_active"`
}

// TruckInput carries the fields for creating or updating a truck.
type TruckInput struct {
	Registration string `json:"registration" validate:"required"`
	Description  string `json:"description"`
}

// Setting is one dropdown option under a category, such as a driver or
// checker name offered at finalization.
type Setting struct {
	ID       int64  `json:"id"`
	Category string `json:"category"`
	Value    string `json:"value"`
}

// SettingInput carries the fields for a new setting.
type SettingInput struct {
	Category string `json:"category" validate:"required"`
	Value    string `json:"value" validate:"required"`
}

// CustomerRoute maps a customer to its delivery area. The listing feeds the
// finalization form so dispatchers pick routes from known customers.
type CustomerRoute struct {
	ID           int64  `json:"id"`
	CustomerName string `json:"customer_name"`
	Area         string `json:"area"`
}

// CustomerRouteInput carries the fields for a route mapping.
type CustomerRouteInput struct {
	CustomerName string `json:"customer_name" validate:"required"`
	Area         string `json:"area" validate:"required"`
}
