package handler

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"account-balance-service/internal/adapter/http/dto"
	"account-balance-service/internal/core/domain"
	"account-balance-service/internal/core/ports"
	"account-balance-service/pkg/apperror"
	"account-balance-service/pkg/response"

	"github.com/gin-gonic/gin"
)

const (
	defaultPageSize = 20
	timeLayout      = time.RFC3339
)

// AccountHandler handles account and transaction endpoints.
type AccountHandler struct {
	accountSvc ports.AccountService
	baseURL    string
}

// NewAccountHandler creates a new AccountHandler. baseURL prefixes self
// links; empty yields host-relative links.
func NewAccountHandler(accountSvc ports.AccountService, baseURL string) *AccountHandler {
	return &AccountHandler{accountSvc: accountSvc, baseURL: baseURL}
}

// OpenAccount handles POST /api/v1/accounts.
func (h *AccountHandler) OpenAccount(c *gin.Context) {
	var req dto.OpenAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}

	account, err := h.accountSvc.OpenAccount(c.Request.Context(), req.AccountNumber, req.OpeningBalance)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toAccountResponse(account))
}

// ApplyBatch handles POST /api/v1/accounts/:accountNumber/transactions.
// The body is a JSON array applied in order, all or nothing.
func (h *AccountHandler) ApplyBatch(c *gin.Context) {
	var reqs []dto.OperationRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		response.Error(c, bindError(err))
		return
	}
	if len(reqs) == 0 {
		response.Error(c, apperror.Validation("at least one operation is required"))
		return
	}

	account, err := h.accountSvc.ApplyBatch(c.Request.Context(), c.Param("accountNumber"), dto.ToOperations(reqs))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toAccountResponse(account))
}

// GetBalance handles GET /api/v1/accounts/:accountNumber/balance.
func (h *AccountHandler) GetBalance(c *gin.Context) {
	account, err := h.accountSvc.GetBalance(c.Request.Context(), c.Param("accountNumber"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.BalanceResponse{
		AccountNumber: account.AccountNumber,
		Balance:       account.BalanceString(),
		Links:         dto.Links{Self: h.balanceURL(account.AccountNumber)},
	})
}

// ListTransactions handles GET /api/v1/accounts/:accountNumber/transactions.
func (h *AccountHandler) ListTransactions(c *gin.Context) {
	var q dto.ListTransactionsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	if q.Page == 0 {
		q.Page = 1
	}
	if q.PageSize == 0 {
		q.PageSize = defaultPageSize
	}

	filter := ports.TransactionFilter{Page: q.Page, PageSize: q.PageSize}
	if q.Type != "" {
		kind := domain.TransactionKind(q.Type)
		filter.Kind = &kind
	}

	records, total, err := h.accountSvc.ListTransactions(c.Request.Context(), c.Param("accountNumber"), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.TransactionResponse, len(records))
	for i := range records {
		items[i] = toTransactionResponse(&records[i])
	}

	totalPages := int(total) / q.PageSize
	if int(total)%q.PageSize != 0 {
		totalPages++
	}

	response.OK(c, dto.TransactionListResponse{
		Items:      items,
		Total:      total,
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalPages: totalPages,
	})
}

func (h *AccountHandler) balanceURL(accountNumber string) string {
	return h.baseURL + "/api/v1/accounts/" + url.PathEscape(accountNumber) + "/balance"
}

func bindError(err error) *apperror.AppError {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apperror.Validation("request body too large")
	}
	return apperror.Validation(err.Error())
}

func toAccountResponse(a *domain.Account) dto.AccountResponse {
	return dto.AccountResponse{
		AccountNumber: a.AccountNumber,
		Balance:       a.BalanceString(),
		Version:       a.Version,
		UpdatedAt:     a.UpdatedAt.UTC().Format(timeLayout),
	}
}

func toTransactionResponse(t *domain.Transaction) dto.TransactionResponse {
	return dto.TransactionResponse{
		ID:         t.ID.String(),
		Type:       string(t.Kind),
		Amount:     domain.FormatAmount(t.Amount),
		Position:   t.Position,
		RecordedAt: t.RecordedAt.UTC().Format(timeLayout),
	}
}
