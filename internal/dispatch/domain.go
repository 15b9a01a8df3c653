package dispatch

import "time"

// DispatchReport is the finalized record of one manifest. Reports and their
// lines are immutable once created; nothing in the system updates or deletes
// them. A later credit note adjusts the live order, never this record.
type DispatchReport struct {
	ID             int64     `json:"id"`
	ManifestNumber string    `json:"manifest_number"`
	DispatchDate   string    `json:"dispatch_date"`
	Driver         string    `json:"driver"`
	Assistant      string    `json:"assistant"`
	Checker        string    `json:"checker"`
	VehicleReg     string    `json:"vehicle_reg"`
	PalletsBrown   int       `json:"pallets_brown"`
	PalletsBlue    int       `json:"pallets_blue"`
	Crates         int       `json:"crates"`
	Mileage        int       `json:"mileage"`
	TotalValue     float64   `json:"total_value"`
	TotalSKU       int       `json:"total_sku"`
	TotalWeight    float64   `json:"total_weight"`
	CreatedAt      time.Time `json:"created_at"`
}

// ReportLine is a denormalized snapshot of one invoice at dispatch time.
// Snapshots are deliberately decoupled from the live order so later edits
// never rewrite history.
type ReportLine struct {
	ID             int64   `json:"id"`
	ReportID       int64   `json:"report_id"`
	InvoiceNumber  string  `json:"invoice_number"`
	OrderNumber    string  `json:"order_number"`
	CustomerName   string  `json:"customer_name"`
	CustomerNumber string  `json:"customer_number"`
	InvoiceDate    string  `json:"invoice_date"`
	Area           string  `json:"area"`
	SKU            int     `json:"sku"`
	Value          float64 `json:"value"`
	Weight         float64 `json:"weight"`
}

// ManifestEvent is one append-only audit record for a manifest.
type ManifestEvent struct {
	ID             int64     `json:"id"`
	ManifestNumber string    `json:"manifest_number"`
	EventType      string    `json:"event_type"`
	Actor          string    `json:"actor"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// EventCreated is appended when a manifest is finalized.
const EventCreated = "CREATED"

// ReportInput carries the manifest metadata supplied at finalization.
type ReportInput struct {
	ManifestNumber string  `json:"manifest_number"`
	DispatchDate   string  `json:"dispatch_date" validate:"required"`
	Driver         string  `json:"driver"`
	Assistant      string  `json:"assistant"`
	Checker        string  `json:"checker"`
	VehicleReg     string  `json:"vehicle_reg"`
	PalletsBrown   int     `json:"pallets_brown" validate:"gte=0"`
	PalletsBlue    int     `json:"pallets_blue" validate:"gte=0"`
	Crates         int     `json:"crates" validate:"gte=0"`
	Mileage        int     `json:"mileage" validate:"gte=0"`
	TotalValue     float64 `json:"total_value" validate:"gte=0"`
	TotalSKU       int     `json:"total_sku" validate:"gte=0"`
	TotalWeight    float64 `json:"total_weight" validate:"gte=0"`
}

// LineInput is the caller's view of one invoice at confirmation time. It is
// recorded verbatim rather than re-read from the order store: what the user
// confirmed is what the report shows.
type LineInput struct {
	InvoiceNumber  string  `json:"invoice_number" validate:"required"`
	OrderNumber    string  `json:"order_number"`
	CustomerName   string  `json:"customer_name"`
	CustomerNumber string  `json:"customer_number"`
	InvoiceDate    string  `json:"invoice_date"`
	Area           string  `json:"area"`
	SKU            int     `json:"sku" validate:"gte=0"`
	Value          float64 `json:"value" validate:"gte=0"`
	Weight         float64 `json:"weight" validate:"gte=0"`
}

// FinalizeResult reports what finalization produced, including the audit
// event as an inspectable value.
type FinalizeResult struct {
	ReportID       int64         `json:"report_id"`
	ManifestNumber string        `json:"manifest_number"`
	Allocated      int64         `json:"allocated"`
	Drained        int64         `json:"drained"`
	Event          ManifestEvent `json:"event"`
}

// ManifestDetail bundles a report with its lines and audit trail.
type ManifestDetail struct {
	Report DispatchReport  `json:"report"`
	Lines  []ReportLine    `json:"lines"`
	Events []ManifestEvent `json:"events"`
}

// DispatchedFilter narrows the invoice-level dispatched listing.
type DispatchedFilter struct {
	DateFrom string
	DateTo   string
	Search   string
	SortBy   string
	SortDesc bool
	Limit    int
	Offset   int
}

// DispatchedRow is one invoice-level row joined with its dispatch metadata.
type DispatchedRow struct {
	ManifestNumber string  `json:"manifest_number"`
	DispatchDate   string  `json:"dispatch_date"`
	Driver         string  `json:"driver"`
	Assistant      string  `json:"assistant"`
	Checker        string  `json:"checker"`
	VehicleReg     string  `json:"vehicle_reg"`
	InvoiceNumber  string  `json:"invoice_number"`
	OrderNumber    string  `json:"order_number"`
	CustomerName   string  `json:"customer_name"`
	CustomerNumber string  `json:"customer_number"`
	InvoiceDate    string  `json:"invoice_date"`
	Area           string  `json:"area"`
	SKU            int     `json:"sku"`
	Value          float64 `json:"value"`
	Weight         float64 `json:"weight"`
}

// OutstandingRow is an invoice never referenced by any report line.
type OutstandingRow struct {
	InvoiceNumber  string `json:"invoice_number"`
	OrderNumber    string `json:"order_number"`
	CustomerName   string `json:"customer_name"`
	CustomerNumber string `json:"customer_number"`
	InvoiceDate    string `json:"invoice_date"`
	TotalValue     string `json:"total_value"`
	Area           string `json:"area"`
}
