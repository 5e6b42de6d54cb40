package dto

import (
	"account-balance-service/internal/core/domain"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("account_number", validateAccountNumber)
		_ = v.RegisterValidation("txn_kind", validateTxnKind)
	}
}

func validateAccountNumber(fl validator.FieldLevel) bool {
	return domain.ValidateAccountNumber(fl.Field().String()) == nil
}

func validateTxnKind(fl validator.FieldLevel) bool {
	_, err := domain.ParseKind(fl.Field().String())
	return err == nil
}

// ToOperations converts the request body into domain operations.
func ToOperations(reqs []OperationRequest) []domain.Operation {
	ops := make([]domain.Operation, len(reqs))
	for i, r := range reqs {
		ops[i] = domain.Operation{Kind: r.Type, Amount: r.Amount}
	}
	return ops
}
