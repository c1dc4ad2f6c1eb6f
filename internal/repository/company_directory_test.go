package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mathachew7/JoslaSync/internal/domain"
)

func TestCompanyDirectoryExistsByName(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("Acme Co").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	repo := NewPostgresCompanyDirectory(db, nil)
	exists, err := repo.ExistsByName(context.Background(), "Acme Co")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestCompanyDirectoryCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`INSERT INTO company_profile`).
		WithArgs("Acme Co", "acme_co_db").
		WillReturnRows(sqlmock.NewRows([]string{"id", "status", "created_at", "updated_at"}).
			AddRow(int64(7), "active", now, now))

	repo := NewPostgresCompanyDirectory(db, nil)
	rec, err := repo.Create(context.Background(), "Acme Co", "acme_co_db")
	require.NoError(t, err)
	assert.Equal(t, int64(7), rec.ID)
	assert.Equal(t, "acme_co_db", rec.DBName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompanyDirectoryCreateDuplicate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO company_profile`).
		WithArgs("Acme Co", "acme_co_db").
		WillReturnError(&pq.Error{Code: "23505"})

	repo := NewPostgresCompanyDirectory(db, nil)
	_, err = repo.Create(context.Background(), "Acme Co", "acme_co_db")
	assert.ErrorIs(t, err, domain.ErrDuplicateCompany)
}

func TestCompanyDirectoryGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT (.+) FROM company_profile`).
		WithArgs(int64(99)).
		WillReturnError(sql.ErrNoRows)

	repo := NewPostgresCompanyDirectory(db, nil)
	_, err = repo.GetByID(context.Background(), 99)
	assert.ErrorIs(t, err, domain.ErrCompanyNotFound)
}

func TestUserCreateDefaultsRoleToAdmin(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	companyID := int64(7)
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("jdoe", "jdoe@acme.co", "digest", "admin", true, &companyID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(1), time.Now()))

	repo := NewPostgresUserRepository(db, nil)
	user := &domain.User{
		Username: "jdoe", Email: "jdoe@acme.co", PasswordHash: "digest",
		IsActive: true, CompanyID: &companyID,
	}
	require.NoError(t, repo.Create(context.Background(), user))
	assert.Equal(t, "admin", user.Role)
	assert.Equal(t, int64(1), user.ID)
}

func TestUserCreateDuplicateUsername(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnError(&pq.Error{Code: "23505"})

	repo := NewPostgresUserRepository(db, nil)
	err = repo.Create(context.Background(), &domain.User{Username: "jdoe"})
	assert.ErrorIs(t, err, domain.ErrDuplicateUsername)
}

func TestUserGetByUsernameFiltersInactive(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT (.+) FROM users WHERE username = \$1 AND is_active = true`).
		WithArgs("jdoe").
		WillReturnError(sql.ErrNoRows)

	repo := NewPostgresUserRepository(db, nil)
	_, err = repo.GetByUsername(context.Background(), "jdoe")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
