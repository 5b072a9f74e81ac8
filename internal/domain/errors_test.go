package domain_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/blackbeesoft/erp/internal/domain"
)

func TestProductNotFoundError(t *testing.T) {
	var err error = &domain.ProductNotFoundError{ProductID: "p-42"}

	if !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatal("expected ProductNotFoundError to match ErrProductNotFound")
	}
	if !domain.IsNotFound(err) {
		t.Fatal("expected IsNotFound to be true")
	}
	if !domain.IsValidation(err) {
		t.Fatal("missing product on a write is a validation failure for the caller")
	}

	var pnf *domain.ProductNotFoundError
	if !errors.As(err, &pnf) || pnf.ProductID != "p-42" {
		t.Fatalf("expected product id in error, got %v", err)
	}
}

func TestInsufficientStockError(t *testing.T) {
	var err error = &domain.InsufficientStockError{ProductID: "p-1", Available: 2, Requested: 5}

	if !domain.IsValidation(err) {
		t.Fatal("expected IsValidation to be true")
	}
	if domain.IsNotFound(err) {
		t.Fatal("insufficient stock is not a not-found error")
	}

	msg := err.Error()
	for _, part := range []string{"p-1", "available 2", "requested 5"} {
		if !strings.Contains(msg, part) {
			t.Fatalf("expected %q in %q", part, msg)
		}
	}
}

func TestInputSentinelsClassifyAsValidation(t *testing.T) {
	for _, err := range []error{
		domain.ErrCustomerRequired,
		domain.ErrItemsRequired,
		domain.ErrItemQtyInvalid,
		domain.ErrCustomerNameRequired,
	} {
		if !domain.IsValidation(err) {
			t.Errorf("expected %v to classify as validation", err)
		}
		if domain.IsNotFound(err) {
			t.Errorf("%v must not classify as not-found", err)
		}
	}
}

func TestWrappedErrorsKeepClassification(t *testing.T) {
	wrapped := fmt.Errorf("load order: %w", domain.ErrOrderNotFound)
	if !domain.IsNotFound(wrapped) {
		t.Fatal("expected wrapped ErrOrderNotFound to stay a not-found error")
	}
	if domain.IsValidation(wrapped) {
		t.Fatal("not-found order must not classify as validation")
	}
}
