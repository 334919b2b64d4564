package response_models

type CheckoutResponse struct {
	URL           string `json:"url"`
	OrderToken    string `json:"orderToken"`
	TransactionID string `json:"transactionId"`
}

type ReconcileResponse struct {
	TransactionID string `json:"transactionId"`
	Redirect      string `json:"redirect"`
}
