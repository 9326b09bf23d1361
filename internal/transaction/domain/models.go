package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	contactdomain "github.com/smallbiznis/leadfuel/internal/contact/domain"
	"gorm.io/datatypes"
)

// Type is the kind of credit-consuming action.
type Type string

const (
	TypeUnlockEmail Type = "unlock_email"
	TypeUnlockPhone Type = "unlock_phone"
	TypeEnrichment  Type = "enrichment"
	TypeExport      Type = "export"
	TypeListAdd     Type = "list_add"
)

// Transaction is one credit-consuming action. Rows are append-only.
type Transaction struct {
	ID          snowflake.ID           `gorm:"primaryKey" json:"id"`
	UserID      string                 `gorm:"type:varchar(191);not null;index:idx_transactions_user_created,priority:1" json:"user_id"`
	Type        Type                   `gorm:"type:varchar(32);not null" json:"type"`
	CreditsUsed int64                  `gorm:"not null;default:0" json:"credits_used"`
	ContactID   *snowflake.ID          `gorm:"index" json:"contact_id,omitempty"`
	Description *string                `json:"description,omitempty"`
	Metadata    datatypes.JSONMap      `gorm:"type:json" json:"metadata"`
	CreatedAt   time.Time              `gorm:"not null;index:idx_transactions_user_created,priority:2" json:"created_at"`
	Contact     *contactdomain.Contact `gorm:"foreignKey:ContactID" json:"contact,omitempty"`
}

func (Transaction) TableName() string { return "transactions" }
