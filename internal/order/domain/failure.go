package domain

import "fmt"

type FailureKind string

const (
	FailureCatalogLookup     FailureKind = "catalog_lookup"
	FailurePriceMismatch     FailureKind = "price_mismatch"
	FailureInsufficientStock FailureKind = "insufficient_stock"
	FailureCompensation      FailureKind = "compensation"
)

// StepFailure is a business failure of a saga step: it cancels the order it
// belongs to instead of propagating past the step boundary. ProductID is set
// when a specific line item caused the failure.
type StepFailure struct {
	Kind      FailureKind
	ProductID string
	Message   string
}

func (f *StepFailure) Error() string {
	return f.Message
}

func CatalogLookupFailure(productID string) *StepFailure {
	return &StepFailure{
		Kind:      FailureCatalogLookup,
		ProductID: productID,
		Message:   fmt.Sprintf("product %s not found in catalog", productID),
	}
}

func PriceMismatchFailure(expected, computed int64) *StepFailure {
	return &StepFailure{
		Kind:    FailurePriceMismatch,
		Message: fmt.Sprintf("order total is %d cents but catalog prices sum to %d cents", expected, computed),
	}
}

func InsufficientStockFailure(productID, name string) *StepFailure {
	return &StepFailure{
		Kind:      FailureInsufficientStock,
		ProductID: productID,
		Message:   fmt.Sprintf("product %s - %s unavailable in stock", productID, name),
	}
}

func CompensationFailure(productID string, cause error) *StepFailure {
	return &StepFailure{
		Kind:      FailureCompensation,
		ProductID: productID,
		Message:   fmt.Sprintf("returning product %s to stock failed: %v", productID, cause),
	}
}
