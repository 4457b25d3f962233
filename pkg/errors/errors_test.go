package errors

import (
	stdErrors "errors"
	"net/http"
	"testing"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		publicMsg string
		retryable bool
		detailsOK bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, publicMsg: "validation failed", detailsOK: true},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "resource not found"},
		{code: CodeStockInsufficient, status: http.StatusUnprocessableEntity, publicMsg: "insufficient stock for one or more items", detailsOK: true},
		{code: CodeStockMissing, status: http.StatusUnprocessableEntity, publicMsg: "product has no stock record at this location", detailsOK: true},
		{code: CodePaymentInsufficient, status: http.StatusUnprocessableEntity, publicMsg: "payments do not cover the sale total", detailsOK: true},
		{code: CodeCommitInFlight, status: http.StatusConflict, publicMsg: "a sale commit is already in progress", retryable: true},
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "internal error", retryable: true},
		{code: CodeDependency, status: http.StatusServiceUnavailable, publicMsg: "ledger service unavailable", retryable: true, detailsOK: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.HTTPStatus != tt.status {
			t.Fatalf("code %s expected status %d got %d", tt.code, tt.status, meta.HTTPStatus)
		}
		if meta.PublicMessage != tt.publicMsg {
			t.Fatalf("code %s expected public message %q got %q", tt.code, tt.publicMsg, meta.PublicMessage)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("code %s expected retryable %v got %v", tt.code, tt.retryable, meta.Retryable)
		}
		if meta.DetailsAllowed != tt.detailsOK {
			t.Fatalf("code %s expected details allowed %v got %v", tt.code, tt.detailsOK, meta.DetailsAllowed)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal status, got %d", meta.HTTPStatus)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stdErrors.New("socket closed")
	err := Wrap(CodeDependency, cause, "ledger commit failed")

	if !stdErrors.Is(err, cause) {
		t.Fatal("expected wrapped cause to be reachable via errors.Is")
	}
	if typed := As(err); typed == nil || typed.Code() != CodeDependency {
		t.Fatalf("unexpected typed error: %v", err)
	}
}

func TestAsReturnsNilForPlainErrors(t *testing.T) {
	if typed := As(stdErrors.New("plain")); typed != nil {
		t.Fatalf("expected nil, got %v", typed)
	}
}
