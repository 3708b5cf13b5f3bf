package profile

import (
	"context"
	"errors"

	"github.com/fekuna/omnipos-sales-service/internal/model"
)

var ErrMemberNotFound = errors.New("member not found")

type UseCase interface {
	SearchMembers(ctx context.Context, query string) ([]model.MemberProfile, error)
	GetMember(ctx context.Context, id int64) (*model.MemberProfile, error)

	// SiteName and OperatorName return "" when the profile is missing.
	SiteName(ctx context.Context, siteProfileID int64) (string, error)
	OperatorName(ctx context.Context, userID string) (string, error)
}
