package dto

import (
	"errors"
	"strings"
	"testing"

	"github.com/iho/creditledger/internal/domain"
)

func TestDecodeTransactionRequest(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    TransactionRequest
		wantErr error
	}{
		{
			name: "valid debit",
			body: `{"amount": 500, "kind": "d", "description": "compra"}`,
			want: TransactionRequest{Amount: 500, Kind: "d", Description: "compra"},
		},
		{
			name: "missing fields decode to zero values",
			body: `{}`,
			want: TransactionRequest{},
		},
		{
			name:    "fractional amount",
			body:    `{"amount": 1.5, "kind": "c", "description": "x"}`,
			wantErr: ErrFieldType,
		},
		{
			name:    "amount as string",
			body:    `{"amount": "10", "kind": "c", "description": "x"}`,
			wantErr: ErrFieldType,
		},
		{
			name:    "empty body",
			body:    ``,
			wantErr: ErrMalformedBody,
		},
		{
			name:    "broken json",
			body:    `{"amount": 1,`,
			wantErr: ErrMalformedBody,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeTransactionRequest(strings.NewReader(tt.body))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("DecodeTransactionRequest() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestFieldTypeIsValidationError(t *testing.T) {
	if !errors.Is(ErrFieldType, domain.ErrValidation) {
		t.Fatalf("expected ErrFieldType to wrap domain.ErrValidation")
	}
	if errors.Is(ErrMalformedBody, domain.ErrValidation) {
		t.Fatalf("malformed body must not be a validation error")
	}
}

func TestTransactionRequest_ToDomain(t *testing.T) {
	got := TransactionRequest{Amount: 7, Kind: "c", Description: "x"}.ToDomain()
	want := domain.TransactionRequest{Amount: 7, Kind: domain.KindCredit, Description: "x"}

	if got != want {
		t.Fatalf("ToDomain() = %+v, want %+v", got, want)
	}
}
