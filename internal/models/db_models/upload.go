package db_models

type UploadKind string

const (
	UploadKindAdmin UploadKind = "admin"
	UploadKindUser  UploadKind = "user"
)

type UploadState string

const (
	UploadStatePending   UploadState = "pending"
	UploadStateConfirmed UploadState = "confirmed"
	UploadStateDeleting  UploadState = "deleting"
)

// Upload rows hold both the AdminUploads and UserUploads collections,
// told apart by Kind.
type Upload struct {
	BaseModel
	Kind          UploadKind  `gorm:"size:8;index" json:"kind"`
	UserID        string      `gorm:"index;size:128" json:"userId"`
	UploaderID    string      `gorm:"size:128" json:"uploaderId"`
	UploaderName  string      `json:"uploaderName,omitempty"`
	UserName      string      `json:"userName"`
	PackageName   string      `json:"packageName,omitempty"`
	Country       string      `json:"country,omitempty"`
	TransactionID string      `gorm:"index;size:160" json:"transactionId,omitempty"`
	FileName      string      `json:"fileName"`
	ObjectPath    string      `json:"objectPath"`
	FileURL       string      `json:"fileUrl,omitempty"`
	ContentType   string      `json:"contentType,omitempty"`
	Size          int64       `json:"size"`
	State         UploadState `gorm:"size:16;index" json:"state"`
	UploadTime    int64       `json:"uploadTime"`
}
