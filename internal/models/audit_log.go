package models

// AuditLog records an authentication or profile event. UserID is empty
// for events with no resolved account, such as a failed login.
type AuditLog struct {
	Base
	UserID       string `gorm:"size:36;index" json:"user_id,omitempty"`
	Action       string `gorm:"size:50;not null;index" json:"action"`
	ResourceType string `gorm:"size:30;not null" json:"resource_type"`
	ResourceID   string `gorm:"size:36" json:"resource_id,omitempty"`
	IPAddress    string `gorm:"size:45" json:"ip_address"`
	Changes      string `json:"changes,omitempty"`
}
