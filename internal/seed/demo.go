package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	contactdomain "github.com/smallbiznis/leadfuel/internal/contact/domain"
	transactiondomain "github.com/smallbiznis/leadfuel/internal/transaction/domain"
	userdomain "github.com/smallbiznis/leadfuel/internal/user/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var demoActivity = []struct {
	typ     transactiondomain.Type
	credits int64
	daysAgo int
}{
	{transactiondomain.TypeUnlockEmail, 1, 0},
	{transactiondomain.TypeUnlockPhone, 2, 1},
	{transactiondomain.TypeUnlockEmail, 1, 2},
	{transactiondomain.TypeEnrichment, 3, 3},
	{transactiondomain.TypeExport, 5, 5},
	{transactiondomain.TypeListAdd, 0, 6},
}

// EnsureDemoActivity gives userID an organization, one contact and a week of
// transactions so the dashboard has something to show. It does nothing when
// the user already has transactions.
func EnsureDemoActivity(db *gorm.DB, node *snowflake.Node, userID string, now time.Time) error {
	if db == nil || node == nil {
		return errors.New("seed database handle and id generator are required")
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&transactiondomain.Transaction{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		var user userdomain.User
		err := tx.Where("id = ?", userID).Take(&user).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			user = userdomain.User{
				ID:            userID,
				Email:         userID + "@demo.leadfuel.local",
				PlanID:        DefaultPlans()[0].ID,
				CreditBalance: 10,
				Role:          userdomain.RoleMember,
				CreatedAt:     now.UTC(),
				UpdatedAt:     now.UTC(),
			}
			if err := tx.Omit("Plan").Create(&user).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		}

		org := contactdomain.Organization{
			ID:        node.Generate(),
			Name:      "Acme Corp",
			CreatedAt: now.UTC(),
			EnrichmentData: datatypes.JSONMap{
				"source": "demo",
			},
		}
		if err := tx.Create(&org).Error; err != nil {
			return err
		}

		first, last, email := "Jane", "Doe", "jane.doe@acme.example"
		contact := contactdomain.Contact{
			ID:             node.Generate(),
			OrganizationID: &org.ID,
			FirstName:      &first,
			LastName:       &last,
			Email:          &email,
			CreatedAt:      now.UTC(),
		}
		if err := tx.Omit("Organization").Create(&contact).Error; err != nil {
			return err
		}

		for _, item := range demoActivity {
			description := fmt.Sprintf("%s %s", item.typ, contact.DisplayName())
			record := transactiondomain.Transaction{
				ID:          node.Generate(),
				UserID:      userID,
				Type:        item.typ,
				CreditsUsed: item.credits,
				ContactID:   &contact.ID,
				Description: &description,
				Metadata:    datatypes.JSONMap{"demo": true},
				CreatedAt:   now.AddDate(0, 0, -item.daysAgo).UTC(),
			}
			if err := tx.Omit("Contact").Create(&record).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
