package db_models

import "gorm.io/datatypes"

// PaymentEvent is the audit record of a verified processor webhook, keyed by
// the processor's event id.
type PaymentEvent struct {
	EventID       string         `gorm:"primaryKey;size:128" bson:"_id" json:"eventId"`
	Processor     PaymentMethod  `gorm:"size:16;index" bson:"processor" json:"processor"`
	EventType     string         `gorm:"size:96;index" bson:"eventType" json:"eventType"`
	TransactionID string         `gorm:"size:160;index" bson:"transactionId,omitempty" json:"transactionId,omitempty"`
	Payload       datatypes.JSON `gorm:"type:jsonb" bson:"payload" json:"payload"`
	ReceivedAt    int64          `bson:"receivedAt" json:"receivedAt"`
}
