package request_models

type AdminUploadForm struct {
	UserID        string `form:"userId" binding:"required"`
	TransactionID string `form:"transactionId"`
}

type UserUploadForm struct {
	TransactionID string `form:"transactionId"`
	PackageName   string `form:"packageName"`
}
