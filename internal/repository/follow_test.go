package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestFollowRepository_Follow_Idempotent(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewFollowRepository(db)
	ctx := context.Background()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO follows (follower_id, followee_id, created_at)`)).
		WithArgs(1, 2).
		WillReturnResult(sqlmock.NewResult(1, 1))

	assert.NoError(t, repo.Follow(ctx, 1, 2))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFollowRepository_Unfollow(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewFollowRepository(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "follows" WHERE follower_id = $1 AND followee_id = $2`)).
		WithArgs(1, 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	assert.NoError(t, repo.Unfollow(ctx, 1, 2))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFollowRepository_IsFollowing(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewFollowRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "follows" WHERE follower_id = $1 AND followee_id = $2`)).
		WithArgs(1, 2).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	following, err := repo.IsFollowing(ctx, 1, 2)
	assert.NoError(t, err)
	assert.True(t, following)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFollowRepository_GetFollowers(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewFollowRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT \* FROM "users" JOIN follows f ON users\.id = f\.follower_id WHERE f\.followee_id = \$1`).
		WithArgs(5, 50).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username"}).
			AddRow(1, "fan_one").
			AddRow(2, "fan_two"))

	users, err := repo.GetFollowers(ctx, 5, 50, 0)
	assert.NoError(t, err)
	assert.Len(t, users, 2)
	assert.Equal(t, "fan_one", users[0].Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFollowRepository_CountFollowers(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewFollowRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "follows" WHERE followee_id = $1`)).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

	count, err := repo.CountFollowers(ctx, 5)
	assert.NoError(t, err)
	assert.Equal(t, int64(42), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
