package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsGetReturnsNilWhenAbsent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT (.+) FROM company_settings ORDER BY id LIMIT 1`).
		WillReturnError(sql.ErrNoRows)

	repo := NewPostgresSettingsRepository(db, nil)
	settings, err := repo.Get(context.Background())
	require.NoError(t, err)
	assert.Nil(t, settings)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(&pq.Error{Code: "23505"}))
	assert.False(t, IsUniqueViolation(&pq.Error{Code: "42P04"}))
	assert.False(t, IsUniqueViolation(errors.New("some other error")))
	assert.False(t, IsUniqueViolation(nil))
}
