package domain

import (
	"time"

	plandomain "github.com/smallbiznis/leadfuel/internal/plan/domain"
)

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// User is a dashboard account keyed by the identity provider's user id.
type User struct {
	ID             string           `gorm:"primaryKey;type:varchar(191)" json:"id"`
	Email          string           `gorm:"not null;default:''" json:"email"`
	FirstName      string           `gorm:"not null;default:''" json:"first_name,omitempty"`
	LastName       string           `gorm:"not null;default:''" json:"last_name,omitempty"`
	PlanID         int64            `gorm:"not null;index" json:"plan_id"`
	CreditBalance  int64            `gorm:"not null;default:0" json:"credit_balance"`
	Role           Role             `gorm:"type:varchar(16);not null;default:'member'" json:"role"`
	OrganizationID *string          `gorm:"type:varchar(191);index" json:"organization_id,omitempty"`
	CreatedAt      time.Time        `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time        `gorm:"not null" json:"updated_at"`
	Plan           *plandomain.Plan `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
}

func (User) TableName() string { return "users" }

// SameOrganization reports whether both users belong to the same non-empty
// organization.
func (u User) SameOrganization(other User) bool {
	if u.OrganizationID == nil || other.OrganizationID == nil {
		return false
	}
	return *u.OrganizationID != "" && *u.OrganizationID == *other.OrganizationID
}

// Identity is the authenticated caller as asserted by the identity provider.
type Identity struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
}
