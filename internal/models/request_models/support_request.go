package request_models

type CreateTicketRequest struct {
	PackageName string `json:"packageName"`
	Subject     string `json:"subject" binding:"max=200"`
	Message     string `json:"message" binding:"required,max=5000"`
}

type UpdateTicketStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=open closed"`
}

type TicketFeedbackRequest struct {
	Message string `json:"message" binding:"required,max=5000"`
}

type SendUserMessageRequest struct {
	Subject string `json:"subject" binding:"max=200"`
	Body    string `json:"body" binding:"required,max=5000"`
}

type SendAdminMessageRequest struct {
	UserID  string `json:"userId" binding:"required"`
	Subject string `json:"subject" binding:"max=200"`
	Body    string `json:"body" binding:"required,max=5000"`
}
