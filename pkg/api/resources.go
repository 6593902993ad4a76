package api

import "encoding/json"

// Resource paths relative to the API base URL.
const (
	PathAccounts     = "/accounts"
	PathTransactions = "/transactions"
	PathGoals        = "/goals"
	PathBills        = "/bills"
	PathCards        = "/cards"
	PathContacts     = "/contacts"
)

// Query parameters understood by list endpoints.
const (
	QueryAccountID    = "account_id"
	QueryUpdatedSince = "updated_since"
)

// ListResponse is the envelope of every list endpoint. Data is kept raw so
// that elements can be decoded one by one.
type ListResponse struct {
	Data json.RawMessage `json:"data"`
}
