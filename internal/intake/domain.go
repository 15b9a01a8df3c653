package intake

// CandidateFields is the structured field bag the document text extractor
// produces for one source document. Slots the extractor could not fill stay
// blank; the classifier substitutes sentinels. The engine never sees raw
// document text.
type CandidateFields struct {
	SourceName      string `json:"source_name" validate:"required"`
	CustomerName    string `json:"customer_name"`
	CustomerNumber  string `json:"customer_number"`
	TotalValue      string `json:"total_value"`
	InvoiceNumber   string `json:"invoice_number"`
	OrderNumber     string `json:"order_number"`
	InvoiceDate     string `json:"invoice_date"`
	Area            string `json:"area"`
	ReferenceNumber string `json:"reference_number"`
}

// Resolution describes what reconciliation decided for a credit note.
type Resolution string

const (
	// ResolutionNone applies to plain invoices.
	ResolutionNone Resolution = ""
	// ResolutionFullCredit cancelled the referenced invoice.
	ResolutionFullCredit Resolution = "FULL_CREDIT"
	// ResolutionPartialCredit reduced the referenced invoice's value.
	ResolutionPartialCredit Resolution = "PARTIAL_CREDIT"
	// ResolutionOrphan found no invoice matching the reference.
	ResolutionOrphan Resolution = "ORPHAN"
	// ResolutionInvalid means the credit note carried no reference at all.
	ResolutionInvalid Resolution = "INVALID"
)
