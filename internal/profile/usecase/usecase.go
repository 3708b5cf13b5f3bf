package usecase

import (
	"context"
	"strings"

	"github.com/fekuna/omnipos-sales-service/internal/model"
	"github.com/fekuna/omnipos-sales-service/internal/profile"
	"github.com/fekuna/omnipos-sales-service/pkg/logger"
)

const memberSearchLimit = 50

type profileUseCase struct {
	repo   profile.Repository
	logger logger.ZapLogger
}

func NewProfileUseCase(repo profile.Repository, log logger.ZapLogger) profile.UseCase {
	return &profileUseCase{repo: repo, logger: log}
}

func (uc *profileUseCase) SearchMembers(ctx context.Context, query string) ([]model.MemberProfile, error) {
	return uc.repo.SearchMembers(ctx, strings.TrimSpace(query), memberSearchLimit)
}

func (uc *profileUseCase) GetMember(ctx context.Context, id int64) (*model.MemberProfile, error) {
	m, err := uc.repo.FindMember(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, profile.ErrMemberNotFound
	}
	return m, nil
}

func (uc *profileUseCase) SiteName(ctx context.Context, siteProfileID int64) (string, error) {
	sp, err := uc.repo.FindSiteProfile(ctx, siteProfileID)
	if err != nil || sp == nil {
		return "", err
	}
	return sp.Sitename, nil
}

func (uc *profileUseCase) OperatorName(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", nil
	}
	op, err := uc.repo.FindOperator(ctx, userID)
	if err != nil || op == nil || op.FullName == nil {
		return "", err
	}
	return *op.FullName, nil
}
