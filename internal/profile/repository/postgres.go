package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fekuna/omnipos-sales-service/internal/model"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) SearchMembers(ctx context.Context, query string, limit int) ([]model.MemberProfile, error) {
	members := []model.MemberProfile{}
	q := `SELECT id, fullname, email, identity_no, created_at FROM nd_member_profile`
	args := []interface{}{}

	if query != "" {
		q += ` WHERE fullname ILIKE $1 OR email ILIKE $1 OR identity_no ILIKE $1`
		args = append(args, "%"+query+"%")
	}
	q += ` ORDER BY created_at DESC`
	if limit > 0 {
		q += fmt.Sprintf(" LIMIT %d", limit)
	}

	err := r.DB.SelectContext(ctx, &members, q, args...)
	return members, err
}

func (r *PGRepository) FindMember(ctx context.Context, id int64) (*model.MemberProfile, error) {
	var m model.MemberProfile
	err := r.DB.GetContext(ctx, &m, `SELECT id, fullname, email, identity_no, created_at FROM nd_member_profile WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *PGRepository) FindSiteProfile(ctx context.Context, id int64) (*model.SiteProfile, error) {
	var sp model.SiteProfile
	err := r.DB.GetContext(ctx, &sp, `SELECT id, sitename, region_id, phase_id FROM nd_site_profile WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &sp, nil
}

func (r *PGRepository) FindOperator(ctx context.Context, userID string) (*model.Operator, error) {
	// profiles are keyed by auth uuid; anything else cannot match
	if _, err := uuid.Parse(userID); err != nil {
		return nil, nil
	}
	var op model.Operator
	err := r.DB.GetContext(ctx, &op, `SELECT id, full_name FROM profiles WHERE id = $1`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &op, nil
}
