package authorization

import (
	"context"
	"errors"

	userdomain "github.com/smallbiznis/leadfuel/internal/user/domain"
)

const (
	ObjectUsageStats   = "usage_stats"
	ObjectTransactions = "transactions"
)

const (
	ActionViewOwn = "view_own"
	ActionViewOrg = "view_org"
)

type Service interface {
	// AuthorizeUserAccess checks whether actor may read object data owned by
	// the user with targetID.
	AuthorizeUserAccess(ctx context.Context, actor userdomain.User, targetID string, object string) error
}

var (
	ErrForbidden     = errors.New("forbidden")
	ErrInvalidActor  = errors.New("invalid_actor")
	ErrInvalidObject = errors.New("invalid_object")
)
