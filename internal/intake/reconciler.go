package intake

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cartage-systems/cartage/internal/orders"
	"github.com/cartage-systems/cartage/internal/shared"
)

// InvoiceStore is the slice of the order store reconciliation touches.
type InvoiceStore interface {
	FindByInvoiceNumber(ctx context.Context, invoiceNumber string) (*orders.Order, error)
	SetValue(ctx context.Context, invoiceNumber, newValue string, originalValue *string) (int64, error)
	Cancel(ctx context.Context, invoiceNumber string) (int64, error)
}

// Reconciler matches a credit note against its referenced invoice and
// adjusts or cancels that invoice. Anomalies become terminal statuses on the
// credit note, never errors: the document is always kept.
type Reconciler struct {
	tolerance decimal.Decimal
}

// NewReconciler constructs a Reconciler. tolerance is the absolute amount,
// in currency units, within which a credit counts as a full credit; blank
// keeps the 0.01 default.
func NewReconciler(tolerance string) (*Reconciler, error) {
	if tolerance == "" {
		tolerance = "0.01"
	}
	tol, err := decimal.NewFromString(tolerance)
	if err != nil {
		return nil, fmt.Errorf("parse tolerance: %w", err)
	}
	return &Reconciler{tolerance: tol}, nil
}

// Reconcile mutates cn (status) and, via store, the referenced invoice.
// Caller supplies the transactional store so lookup and update cannot
// interleave with another ingestion.
func (r *Reconciler) Reconcile(ctx context.Context, store InvoiceStore, cn *orders.NewOrderInput) (Resolution, error) {
	if cn.Kind != orders.KindCreditNote {
		return ResolutionNone, nil
	}

	if cn.ReferenceNumber == nil || *cn.ReferenceNumber == "" {
		cn.Status = orders.StatusInvalid
		return ResolutionInvalid, nil
	}

	invoice, err := store.FindByInvoiceNumber(ctx, *cn.ReferenceNumber)
	if errors.Is(err, shared.ErrNotFound) {
		cn.Status = orders.StatusOrphan
		return ResolutionOrphan, nil
	}
	if err != nil {
		return ResolutionNone, fmt.Errorf("find invoice %s: %w", *cn.ReferenceNumber, err)
	}

	creditValue, err := shared.ParseMoney(cn.TotalValue)
	if err != nil {
		cn.Status = orders.StatusInvalid
		return ResolutionInvalid, nil
	}
	invoiceValue, err := shared.ParseMoney(invoice.TotalValue)
	if err != nil {
		return ResolutionNone, fmt.Errorf("invoice %s has unparseable value %q", invoice.InvoiceNumber, invoice.TotalValue)
	}

	if creditValue.GreaterThanOrEqual(invoiceValue.Sub(r.tolerance)) {
		// Full credit: void the invoice, leave its value for audit.
		if _, err := store.Cancel(ctx, invoice.InvoiceNumber); err != nil {
			return ResolutionNone, fmt.Errorf("cancel invoice %s: %w", invoice.InvoiceNumber, err)
		}
		cn.Status = orders.StatusProcessed
		return ResolutionFullCredit, nil
	}

	// Partial credit: subtract and keep the invoice dispatchable. The
	// original value is recorded once, so a second partial credit still
	// points back at the true pre-adjustment figure.
	newValue := shared.FormatMoney(invoiceValue.Sub(creditValue))
	originalValue := invoice.OriginalValue
	if originalValue == nil {
		v := invoice.TotalValue
		originalValue = &v
	}
	if _, err := store.SetValue(ctx, invoice.InvoiceNumber, newValue, originalValue); err != nil {
		return ResolutionNone, fmt.Errorf("adjust invoice %s: %w", invoice.InvoiceNumber, err)
	}
	cn.Status = orders.StatusProcessed
	return ResolutionPartialCredit, nil
}
