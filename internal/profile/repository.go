package profile

import (
	"context"

	"github.com/fekuna/omnipos-sales-service/internal/model"
)

type Repository interface {
	SearchMembers(ctx context.Context, query string, limit int) ([]model.MemberProfile, error)
	FindMember(ctx context.Context, id int64) (*model.MemberProfile, error)
	FindSiteProfile(ctx context.Context, id int64) (*model.SiteProfile, error)
	FindOperator(ctx context.Context, userID string) (*model.Operator, error)
}
