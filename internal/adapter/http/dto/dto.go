package dto

// OpenAccountRequest is the request body for account opening.
type OpenAccountRequest struct {
	AccountNumber  string `json:"account_number" binding:"required,account_number"`
	OpeningBalance string `json:"opening_balance"`
}

// OperationRequest is one element of the transaction batch body. Kind and
// amount are left to the domain parsers so their error codes reach the client.
type OperationRequest struct {
	Type   string `json:"type"`
	Amount string `json:"amount"`
}

// ListTransactionsQuery holds the history query string.
type ListTransactionsQuery struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Type     string `form:"type" binding:"omitempty,txn_kind"`
}

// AccountResponse is returned after opening an account or applying a batch.
type AccountResponse struct {
	AccountNumber string `json:"account_number"`
	Balance       string `json:"balance"`
	Version       int64  `json:"version"`
	UpdatedAt     string `json:"updated_at"`
}

// Links carries hypermedia references.
type Links struct {
	Self string `json:"self"`
}

// BalanceResponse is the response for balance query.
type BalanceResponse struct {
	AccountNumber string `json:"account_number"`
	Balance       string `json:"balance"`
	Links         Links  `json:"links"`
}

// TransactionResponse is one entry of the transaction log.
type TransactionResponse struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Amount     string `json:"amount"`
	Position   int    `json:"position"`
	RecordedAt string `json:"recorded_at"`
}

// TransactionListResponse wraps paginated transaction list.
type TransactionListResponse struct {
	Items      []TransactionResponse `json:"items"`
	Total      int64                 `json:"total"`
	Page       int                   `json:"page"`
	PageSize   int                   `json:"page_size"`
	TotalPages int                   `json:"total_pages"`
}
