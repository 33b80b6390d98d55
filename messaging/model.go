package messaging

import (
	"time"

	"github.com/TestimonyAdegoke/montessa-sub006/database"
)

// Message is a direct message between two users of one tenant.
type Message struct {
	database.BaseModel
	TenantID    string     `gorm:"size:64;index" json:"tenantId,omitempty"`
	SenderID    string     `gorm:"size:64;not null;index:idx_messages_pair,priority:1" json:"senderId"`
	RecipientID string     `gorm:"size:64;not null;index:idx_messages_pair,priority:2" json:"recipientId"`
	Body        string     `gorm:"type:text;not null" json:"body"`
	ReadAt      *time.Time `json:"readAt,omitempty"`
}

// TableName pins the table name.
func (Message) TableName() string { return "messages" }

// readReceipt is the payload of a message.read event.
type readReceipt struct {
	MessageID string    `json:"messageId"`
	ReaderID  string    `json:"readerId"`
	ReadAt    time.Time `json:"readAt"`
}
