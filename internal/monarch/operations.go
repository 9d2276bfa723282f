package monarch

import (
	"context"
)

// TransactionFilter narrows GetTransactions results. Zero values mean
// "no filter"; Limit defaults to 100 when unset.
type TransactionFilter struct {
	Limit      int
	Offset     int
	StartDate  string
	EndDate    string
	AccountIDs []string
}

// CreateTransactionInput holds the required fields for a manual transaction.
type CreateTransactionInput struct {
	AccountID    string
	Amount       float64
	MerchantName string
	CategoryID   string
	Date         string
	Notes        string
}

// UpdateTransactionInput is a partial update: nil fields are left untouched.
type UpdateTransactionInput struct {
	TransactionID   string
	CategoryID      *string
	MerchantName    *string
	GoalID          *string
	Amount          *float64
	Date            *string
	HideFromReports *bool
	NeedsReview     *bool
	Notes           *string
}

// GetAccounts returns all financial accounts for the household.
func (c *Client) GetAccounts(ctx context.Context) (map[string]any, error) {
	return c.GQLCall(ctx, "GetAccounts", queryGetAccounts, nil)
}

// GetTransactions returns transactions matching the filter, newest first.
func (c *Client) GetTransactions(ctx context.Context, filter TransactionFilter) (map[string]any, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	filters := map[string]any{}
	if filter.StartDate != "" {
		filters["startDate"] = filter.StartDate
	}
	if filter.EndDate != "" {
		filters["endDate"] = filter.EndDate
	}
	if len(filter.AccountIDs) > 0 {
		filters["accounts"] = filter.AccountIDs
	}

	variables := map[string]any{
		"limit":   limit,
		"offset":  filter.Offset,
		"filters": filters,
	}
	return c.GQLCall(ctx, "GetTransactionsList", queryGetTransactions, variables)
}

// GetBudgets returns budget data for the given month range.
func (c *Client) GetBudgets(ctx context.Context, startDate, endDate string) (map[string]any, error) {
	variables := map[string]any{}
	if startDate != "" {
		variables["startDate"] = startDate
	}
	if endDate != "" {
		variables["endDate"] = endDate
	}
	return c.GQLCall(ctx, "GetJointPlanningData", queryGetBudgets, variables)
}

// GetCashflow returns the income/expense summary for the given date range.
func (c *Client) GetCashflow(ctx context.Context, startDate, endDate string) (map[string]any, error) {
	filters := map[string]any{}
	if startDate != "" {
		filters["startDate"] = startDate
	}
	if endDate != "" {
		filters["endDate"] = endDate
	}
	variables := map[string]any{"filters": filters}
	return c.GQLCall(ctx, "GetCashFlow", queryGetCashflow, variables)
}

// GetAccountHoldings returns investment holdings for one account.
func (c *Client) GetAccountHoldings(ctx context.Context, accountID string) (map[string]any, error) {
	variables := map[string]any{
		"input": map[string]any{"accountIds": []string{accountID}},
	}
	return c.GQLCall(ctx, "Web_GetHoldings", queryGetAccountHoldings, variables)
}

// CreateTransaction creates a manual transaction.
func (c *Client) CreateTransaction(ctx context.Context, input CreateTransactionInput) (map[string]any, error) {
	variables := map[string]any{
		"input": map[string]any{
			"date":                input.Date,
			"accountId":           input.AccountID,
			"amount":              input.Amount,
			"merchantName":        input.MerchantName,
			"categoryId":          input.CategoryID,
			"notes":               input.Notes,
			"shouldUpdateBalance": false,
		},
	}
	return c.GQLCall(ctx, "Common_CreateTransactionMutation", mutationCreateTransaction, variables)
}

// UpdateTransaction applies a partial update to an existing transaction.
func (c *Client) UpdateTransaction(ctx context.Context, input UpdateTransactionInput) (map[string]any, error) {
	fields := map[string]any{"id": input.TransactionID}
	if input.CategoryID != nil {
		fields["category"] = *input.CategoryID
	}
	if input.MerchantName != nil {
		fields["name"] = *input.MerchantName
	}
	if input.GoalID != nil {
		fields["goalId"] = *input.GoalID
	}
	if input.Amount != nil {
		fields["amount"] = *input.Amount
	}
	if input.Date != nil {
		fields["date"] = *input.Date
	}
	if input.HideFromReports != nil {
		fields["hideFromReports"] = *input.HideFromReports
	}
	if input.NeedsReview != nil {
		fields["needsReview"] = *input.NeedsReview
	}
	if input.Notes != nil {
		fields["notes"] = *input.Notes
	}

	variables := map[string]any{"input": fields}
	return c.GQLCall(ctx, "Web_TransactionDrawerUpdateTransaction", mutationUpdateTransaction, variables)
}

// DeleteTransaction deletes a transaction by ID.
func (c *Client) DeleteTransaction(ctx context.Context, transactionID string) (map[string]any, error) {
	variables := map[string]any{
		"input": map[string]any{"transactionId": transactionID},
	}
	return c.GQLCall(ctx, "Common_DeleteTransactionMutation", mutationDeleteTransaction, variables)
}

// RequestAccountsRefresh asks Monarch to re-sync the given accounts with
// their institutions. The sync itself is asynchronous; poll
// IsAccountsRefreshComplete to observe completion.
func (c *Client) RequestAccountsRefresh(ctx context.Context, accountIDs []string) (map[string]any, error) {
	variables := map[string]any{
		"input": map[string]any{"accountIds": accountIDs},
	}
	return c.GQLCall(ctx, "Common_ForceRefreshAccountsMutation", mutationRequestAccountsRefresh, variables)
}

// IsAccountsRefreshComplete reports whether none of the given accounts still
// has a sync in progress.
func (c *Client) IsAccountsRefreshComplete(ctx context.Context, accountIDs []string) (bool, error) {
	variables := map[string]any{"accountIds": accountIDs}
	data, err := c.GQLCall(ctx, "ForceRefreshAccountsQuery", queryAccountsRefreshComplete, variables)
	if err != nil {
		return false, err
	}

	accounts, _ := data["accounts"].([]any)
	for _, raw := range accounts {
		account, _ := raw.(map[string]any)
		if inProgress, _ := account["hasSyncInProgress"].(bool); inProgress {
			return false, nil
		}
	}
	return true, nil
}

// GetTransactionTags returns all household transaction tags.
func (c *Client) GetTransactionTags(ctx context.Context) (map[string]any, error) {
	return c.GQLCall(ctx, "GetHouseholdTransactionTags", queryGetTransactionTags, nil)
}

// CreateTransactionTag creates a new tag with the given name and hex color.
func (c *Client) CreateTransactionTag(ctx context.Context, name, color string) (map[string]any, error) {
	variables := map[string]any{"name": name, "color": color}
	return c.GQLCall(ctx, "Common_CreateTransactionTag", mutationCreateTransactionTag, variables)
}

// SetTransactionTags replaces the tags on a transaction. An empty tagIDs
// list removes all tags.
func (c *Client) SetTransactionTags(ctx context.Context, transactionID string, tagIDs []string) (map[string]any, error) {
	if tagIDs == nil {
		tagIDs = []string{}
	}
	variables := map[string]any{
		"input": map[string]any{
			"transactionId": transactionID,
			"tagIds":        tagIDs,
		},
	}
	return c.GQLCall(ctx, "Web_SetTransactionTags", mutationSetTransactionTags, variables)
}
