package entity

// BillingAccount mirrors what the billing service returns for a newly
// opened account. The account itself is owned by the remote system;
// only this observation is kept locally.
type BillingAccount struct {
	AccountID string `json:"account_id"`
	Status    string `json:"status"`
}
