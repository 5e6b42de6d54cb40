package dto

import (
	"testing"

	"account-balance-service/internal/core/domain"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
)

func TestOpenAccountRequest_Validation(t *testing.T) {
	tests := []struct {
		name    string
		req     OpenAccountRequest
		wantErr bool
	}{
		{"valid", OpenAccountRequest{AccountNumber: "12345"}, false},
		{"with opening balance", OpenAccountRequest{AccountNumber: "acc-001", OpeningBalance: "10.00"}, false},
		{"missing number", OpenAccountRequest{}, true},
		{"bad characters", OpenAccountRequest{AccountNumber: "12 345"}, true},
		{"too long", OpenAccountRequest{AccountNumber: "123456789012345678901234567890123"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := binding.Validator.ValidateStruct(&tt.req)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestListTransactionsQuery_Validation(t *testing.T) {
	tests := []struct {
		name    string
		q       ListTransactionsQuery
		wantErr bool
	}{
		{"empty", ListTransactionsQuery{}, false},
		{"debit filter", ListTransactionsQuery{Type: "DEBIT"}, false},
		{"lowercase filter", ListTransactionsQuery{Type: "credit"}, true},
		{"unknown filter", ListTransactionsQuery{Type: "REFUND"}, true},
		{"page size over max", ListTransactionsQuery{PageSize: 101}, true},
		{"negative page", ListTransactionsQuery{Page: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := binding.Validator.ValidateStruct(&tt.q)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestToOperations_PreservesOrder(t *testing.T) {
	ops := ToOperations([]OperationRequest{
		{Type: "DEBIT", Amount: "100.00"},
		{Type: "CREDIT", Amount: "5"},
	})

	assert.Equal(t, []domain.Operation{
		{Kind: "DEBIT", Amount: "100.00"},
		{Kind: "CREDIT", Amount: "5"},
	}, ops)
}
