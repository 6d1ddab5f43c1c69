package models

import (
	"time"
)

type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	AccountID *string   `gorm:"size:36;index" json:"account_id"` // Nullable for anonymous actions
	Action    string    `gorm:"size:50;not null" json:"action"`  // e.g., "REGISTER", "LOGIN", "CREATE_LISTING"
	EntityID  string    `gorm:"size:50" json:"entity_id"`        // Listing or account id
	Details   string    `gorm:"type:text" json:"details"`        // JSON
	IPAddress string    `gorm:"size:45" json:"ip_address"`
	Client    string    `gorm:"size:120" json:"client"` // Browser and OS parsed from the User-Agent
	Timestamp time.Time `json:"timestamp"`
}
