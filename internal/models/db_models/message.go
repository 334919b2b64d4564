package db_models

// UserMessage is written by a user and read by staff.
type UserMessage struct {
	BaseModel
	UserID   string `gorm:"index;size:128;not null" json:"userId"`
	UserName string `json:"userName,omitempty"`
	Subject  string `json:"subject"`
	Body     string `gorm:"type:text;not null" json:"body"`
	Read     bool   `gorm:"default:false" json:"read"`
}

// AdminMessage is written by staff to a single user.
type AdminMessage struct {
	BaseModel
	UserID    string `gorm:"index;size:128;not null" json:"userId"`
	AdminID   string `gorm:"size:128" json:"adminId"`
	AdminName string `json:"adminName,omitempty"`
	Subject   string `json:"subject"`
	Body      string `gorm:"type:text;not null" json:"body"`
	Read      bool   `gorm:"default:false" json:"read"`
}
