package intake

import (
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/cartage-systems/cartage/internal/orders"
)

// creditNoteMarker matches the document-number prefix that identifies a
// credit note in the source accounting system.
var creditNoteMarker = regexp.MustCompile(`^BCRN`)

var titleCaser = cases.Title(language.English)

// Classifier turns a candidate-field bag into a validated order input.
type Classifier struct {
	sanitizer *Sanitizer
	marker    *regexp.Regexp
}

// NewClassifier constructs a classifier. A nil marker keeps the default
// credit-note pattern.
func NewClassifier(sanitizer *Sanitizer, marker *regexp.Regexp) *Classifier {
	if marker == nil {
		marker = creditNoteMarker
	}
	return &Classifier{sanitizer: sanitizer, marker: marker}
}

// Classify builds the order row to persist from raw candidate fields. The
// credit-note decision rests solely on the invoice-number marker; everything
// downstream (reconciliation, staging eligibility) keys off Kind.
func (c *Classifier) Classify(fields CandidateFields) orders.NewOrderInput {
	invoiceNumber := strings.ToUpper(strings.TrimSpace(fields.InvoiceNumber))
	if invoiceNumber == "" {
		invoiceNumber = orders.NotAvailable
	}

	kind := orders.KindInvoice
	if c.marker.MatchString(invoiceNumber) {
		kind = orders.KindCreditNote
	}

	totalValue := strings.TrimSpace(fields.TotalValue)
	if totalValue == "" {
		totalValue = "0.00"
	}

	input := orders.NewOrderInput{
		SourceName:     strings.TrimSpace(fields.SourceName),
		Kind:           kind,
		Status:         orders.StatusPending,
		CustomerName:   normaliseCustomerName(fields.CustomerName),
		CustomerNumber: orDefault(fields.CustomerNumber, orders.NotAvailable),
		TotalValue:     totalValue,
		OrderNumber:    c.sanitizer.CleanOrderNumber(fields.OrderNumber, totalValue),
		InvoiceNumber:  invoiceNumber,
		InvoiceDate:    orDefault(fields.InvoiceDate, orders.NotAvailable),
		Area:           strings.ToUpper(orDefault(fields.Area, orders.UnknownArea)),
		ProcessedAt:    time.Now(),
	}

	if kind == orders.KindCreditNote {
		if ref := strings.ToUpper(strings.TrimSpace(fields.ReferenceNumber)); ref != "" {
			input.ReferenceNumber = &ref
		}
	}
	return input
}

// normaliseCustomerName collapses runs of whitespace and title-cases the
// result; extractors deliver names in inconsistent all-caps.
func normaliseCustomerName(name string) string {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return "Unknown"
	}
	return titleCaser.String(strings.ToLower(name))
}

func orDefault(value, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	return value
}
