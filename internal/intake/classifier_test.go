package intake

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cartage-systems/cartage/internal/orders"
)

func newTestClassifier() *Classifier {
	return NewClassifier(NewSanitizer(nil, 0), nil)
}

func TestClassifyInvoice(t *testing.T) {
	c := newTestClassifier()

	input := c.Classify(CandidateFields{
		SourceName:     "BINV100123.pdf",
		CustomerName:   "  ACME   trading  CO ",
		CustomerNumber: "C-881",
		TotalValue:     "1,250.00",
		OrderNumber:    "po7781",
		InvoiceNumber:  "binv100123",
		InvoiceDate:    "2026-08-12",
		Area:           "harare",
	})

	require.Equal(t, orders.KindInvoice, input.Kind)
	require.Equal(t, orders.StatusPending, input.Status)
	require.Equal(t, "BINV100123", input.InvoiceNumber)
	require.Equal(t, "Acme Trading Co", input.CustomerName)
	require.Equal(t, "PO7781", input.OrderNumber)
	require.Equal(t, "HARARE", input.Area)
	require.Nil(t, input.ReferenceNumber)
}

func TestClassifyCreditNote(t *testing.T) {
	c := newTestClassifier()

	input := c.Classify(CandidateFields{
		SourceName:      "BCRN000456.pdf",
		CustomerName:    "Acme Trading Co",
		TotalValue:      "50.00",
		InvoiceNumber:   "bcrn000456",
		ReferenceNumber: "binv100123",
	})

	require.Equal(t, orders.KindCreditNote, input.Kind)
	require.NotNil(t, input.ReferenceNumber)
	require.Equal(t, "BINV100123", *input.ReferenceNumber)
}

func TestClassifyDefaults(t *testing.T) {
	c := newTestClassifier()

	input := c.Classify(CandidateFields{SourceName: "scan001.pdf"})

	require.Equal(t, orders.NotAvailable, input.InvoiceNumber)
	require.Equal(t, "Unknown", input.CustomerName)
	require.Equal(t, orders.NotAvailable, input.CustomerNumber)
	require.Equal(t, "0.00", input.TotalValue)
	require.Equal(t, orders.NotAvailable, input.OrderNumber)
	require.Equal(t, orders.NotAvailable, input.InvoiceDate)
	require.Equal(t, orders.UnknownArea, input.Area)
}
