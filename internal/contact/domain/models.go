package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Organization is the company a contact works for.
type Organization struct {
	ID             snowflake.ID      `gorm:"primaryKey" json:"id"`
	Name           string            `gorm:"not null" json:"name"`
	Website        *string           `json:"website,omitempty"`
	Industry       *string           `json:"industry,omitempty"`
	SizeRange      *string           `json:"size_range,omitempty"`
	Location       *string           `json:"location,omitempty"`
	Description    *string           `json:"description,omitempty"`
	EnrichmentData datatypes.JSONMap `gorm:"type:json" json:"enrichment_data"`
	CreatedAt      time.Time         `gorm:"not null" json:"created_at"`
}

func (Organization) TableName() string { return "organizations" }

// Contact is a lead the user can unlock, enrich or export.
type Contact struct {
	ID              snowflake.ID      `gorm:"primaryKey" json:"id"`
	OrganizationID  *snowflake.ID     `gorm:"index" json:"organization_id,omitempty"`
	FirstName       *string           `json:"first_name,omitempty"`
	LastName        *string           `json:"last_name,omitempty"`
	Email           *string           `json:"email,omitempty"`
	Phone           *string           `json:"phone,omitempty"`
	Title           *string           `json:"title,omitempty"`
	LinkedinURL     *string           `gorm:"column:linkedin_url" json:"linkedin_url,omitempty"`
	Location        *string           `json:"location,omitempty"`
	EnrichmentData  datatypes.JSONMap `gorm:"type:json" json:"enrichment_data"`
	IsEmailUnlocked bool              `gorm:"not null;default:false" json:"is_email_unlocked"`
	IsPhoneUnlocked bool              `gorm:"not null;default:false" json:"is_phone_unlocked"`
	CreatedAt       time.Time         `gorm:"not null" json:"created_at"`
	Organization    *Organization     `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
}

func (Contact) TableName() string { return "contacts" }

// DisplayName joins the non-empty name parts.
func (c Contact) DisplayName() string {
	var first, last string
	if c.FirstName != nil {
		first = *c.FirstName
	}
	if c.LastName != nil {
		last = *c.LastName
	}
	switch {
	case first == "":
		return last
	case last == "":
		return first
	default:
		return first + " " + last
	}
}
