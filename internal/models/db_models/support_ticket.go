package db_models

import "github.com/google/uuid"

type TicketStatus string

const (
	TicketStatusOpen   TicketStatus = "open"
	TicketStatusClosed TicketStatus = "closed"
)

type SupportTicket struct {
	BaseModel
	TicketNo    string       `gorm:"index;size:16" json:"ticketNo"`
	UserID      string       `gorm:"index;size:128;not null" json:"userId"`
	UserName    string       `json:"userName,omitempty"`
	PackageName string       `json:"packageName,omitempty"`
	Subject     string       `json:"subject,omitempty"`
	Message     string       `gorm:"type:text;not null" json:"message"`
	Status      TicketStatus `gorm:"size:8;index" json:"status"`
}

// TicketFeedback is an admin reply under a ticket. Rows are only ever appended.
type TicketFeedback struct {
	BaseModel
	TicketID  uuid.UUID `gorm:"type:uuid;index;not null" json:"ticketId"`
	AdminID   string    `gorm:"size:128" json:"adminId"`
	AdminName string    `json:"adminName,omitempty"`
	Message   string    `gorm:"type:text;not null" json:"message"`
}

func (TicketFeedback) TableName() string { return "ticket_feedback" }

// TicketCounter is the per-user ticket sequence.
type TicketCounter struct {
	UserID string `gorm:"primaryKey;size:128"`
	Value  int64  `gorm:"not null;default:0"`
}
