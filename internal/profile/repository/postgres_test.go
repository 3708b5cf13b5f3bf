package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*PGRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPGRepository(sqlx.NewDb(db, "pgx")), mock
}

func TestSearchMembers(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE fullname ILIKE $1 OR email ILIKE $1 OR identity_no ILIKE $1 ORDER BY created_at DESC LIMIT 50")).
		WithArgs("%aminah%").
		WillReturnRows(sqlmock.NewRows([]string{"id", "fullname", "email", "identity_no", "created_at"}).
			AddRow(int64(1), "Aminah", nil, "900101-01-1234", time.Now()))

	members, err := repo.SearchMembers(context.Background(), "aminah", 50)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "Aminah", members[0].Fullname)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchMembers_NoQuery(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM nd_member_profile ORDER BY created_at DESC")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "fullname"}))

	_, err := repo.SearchMembers(context.Background(), "", 0)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindOperator_NonUUID(t *testing.T) {
	repo, mock := newMock(t)

	op, err := repo.FindOperator(context.Background(), "cashier-1")
	require.NoError(t, err)
	assert.Nil(t, op)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindOperator(t *testing.T) {
	repo, mock := newMock(t)
	id := "7c0e4b1a-2f5d-4f7e-9a51-0d8f1b2c3d4e"

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, full_name FROM profiles WHERE id = $1")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id", "full_name"}).AddRow(id, "Siti"))

	op, err := repo.FindOperator(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, op)
	assert.Equal(t, "Siti", *op.FullName)
}
