package orders

import (
	"time"
)

// Kind separates invoices from credit notes. Both persist in the same table;
// only INVOICE rows participate in staging and dispatch.
type Kind string

const (
	KindInvoice    Kind = "INVOICE"
	KindCreditNote Kind = "CREDIT_NOTE"
)

// Status enumerates order lifecycle states.
type Status string

const (
	// StatusPending is the initial state for ingested invoices.
	StatusPending Status = "PENDING"
	// StatusProcessed marks credit notes whose reconciliation succeeded.
	StatusProcessed Status = "PROCESSED"
	// StatusOrphan marks credit notes referencing an unknown invoice.
	StatusOrphan Status = "ORPHAN"
	// StatusInvalid marks credit notes carrying no reference number.
	StatusInvalid Status = "INVALID"
	// StatusCancelled marks invoices voided by a full credit.
	StatusCancelled Status = "CANCELLED"
)

// Order represents a persisted invoice or credit note. SourceName is the
// original document name and acts as the natural dedup key.
type Order struct {
	ID              int64      `json:"id"`
	SourceName      string     `json:"source_name"`
	Kind            Kind       `json:"kind"`
	Status          Status     `json:"status"`
	CustomerName    string     `json:"customer_name"`
	CustomerNumber  string     `json:"customer_number"`
	TotalValue      string     `json:"total_value"`
	OrderNumber     string     `json:"order_number"`
	InvoiceNumber   string     `json:"invoice_number"`
	InvoiceDate     string     `json:"invoice_date"`
	Area            string     `json:"area"`
	IsAllocated     bool       `json:"is_allocated"`
	AllocatedAt     *time.Time `json:"allocated_at,omitempty"`
	ManifestNumber  *string    `json:"manifest_number,omitempty"`
	ReferenceNumber *string    `json:"reference_number,omitempty"`
	OriginalValue   *string    `json:"original_value,omitempty"`
	ProcessedAt     time.Time  `json:"processed_at"`
}

// NewOrderInput carries the fields for inserting a fresh order row.
type NewOrderInput struct {
	SourceName      string
	Kind            Kind
	Status          Status
	CustomerName    string
	CustomerNumber  string
	TotalValue      string
	OrderNumber     string
	InvoiceNumber   string
	InvoiceDate     string
	Area            string
	ReferenceNumber *string
	OriginalValue   *string
	ProcessedAt     time.Time
}

// NotAvailable is the sentinel for fields the extractor could not supply.
const NotAvailable = "N/A"

// UnknownArea is the sentinel for orders without a recognised area tag.
const UnknownArea = "UNKNOWN"
