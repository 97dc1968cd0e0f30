package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hrpanel/hrpanel-api/internal/database"
	"github.com/hrpanel/hrpanel-api/internal/logging"
	"github.com/hrpanel/hrpanel-api/internal/models"
	"github.com/hrpanel/hrpanel-api/internal/telegram"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var accountRowColumns = []string{
	"id", "name", "email", "password_hash", "telegram_id", "telegram_username", "is_admin", "created_at", "updated_at",
}

func accountRows(accounts ...models.Account) *pgxmock.Rows {
	rows := pgxmock.NewRows(accountRowColumns)
	for _, a := range accounts {
		rows.AddRow(a.ID, a.Name, a.Email, a.PasswordHash, a.TelegramID, a.TelegramUsername, a.IsAdmin, a.CreatedAt, a.UpdatedAt)
	}
	return rows
}

func strPtr(s string) *string {
	return &s
}

func setupAccountService(t *testing.T) (*AccountService, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	db := &database.DB{Pool: mock}
	return NewAccountService(db, logging.Nop()), mock
}

func testInitData() *telegram.InitData {
	return &telegram.InitData{
		ExternalID: "42",
		FirstName:  "A",
		LastName:   "B",
		Username:   "ab",
	}
}

func TestAccountService_AuthenticateTelegram_FirstAccountBootstrapsAdmin(t *testing.T) {
	svc, mock := setupAccountService(t)
	ctx := context.Background()
	now := time.Now()
	created := models.Account{
		ID: uuid.New(), Name: "A B", TelegramID: strPtr("42"), TelegramUsername: strPtr("ab"),
		IsAdmin: true, CreatedAt: now, UpdatedAt: now,
	}

	mock.ExpectBeginTx(serializableTx)
	mock.ExpectQuery(`SELECT .+ FROM accounts WHERE telegram_id = .+ FOR UPDATE`).
		WithArgs("42").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(`SELECT EXISTS.+FROM accounts WHERE is_admin`).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery(`INSERT INTO accounts`).
		WithArgs("A B", strPtr("42"), strPtr("ab"), true).
		WillReturnRows(accountRows(created))
	mock.ExpectCommit()

	account, err := svc.AuthenticateTelegram(ctx, testInitData())

	require.NoError(t, err)
	assert.Equal(t, created.ID, account.ID)
	assert.True(t, account.IsAdmin)
	assert.Equal(t, "42", *account.TelegramID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountService_AuthenticateTelegram_ConsumesPendingPromotion(t *testing.T) {
	svc, mock := setupAccountService(t)
	ctx := context.Background()
	now := time.Now()
	created := models.Account{
		ID: uuid.New(), Name: "A B", TelegramID: strPtr("42"), TelegramUsername: strPtr("ab"),
		IsAdmin: true, CreatedAt: now, UpdatedAt: now,
	}

	mock.ExpectBeginTx(serializableTx)
	mock.ExpectQuery(`SELECT .+ FROM accounts WHERE telegram_id`).
		WithArgs("42").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(`SELECT EXISTS.+FROM accounts WHERE is_admin`).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(`DELETE FROM pending_admins WHERE telegram_username = .+ RETURNING id`).
		WithArgs("ab").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(uuid.New()))
	mock.ExpectQuery(`INSERT INTO accounts`).
		WithArgs("A B", strPtr("42"), strPtr("ab"), true).
		WillReturnRows(accountRows(created))
	mock.ExpectCommit()

	account, err := svc.AuthenticateTelegram(ctx, testInitData())

	require.NoError(t, err)
	assert.True(t, account.IsAdmin)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountService_AuthenticateTelegram_NewAccountWithoutPromotion(t *testing.T) {
	svc, mock := setupAccountService(t)
	ctx := context.Background()
	now := time.Now()
	created := models.Account{
		ID: uuid.New(), Name: "A B", TelegramID: strPtr("42"), TelegramUsername: strPtr("ab"),
		CreatedAt: now, UpdatedAt: now,
	}

	mock.ExpectBeginTx(serializableTx)
	mock.ExpectQuery(`SELECT .+ FROM accounts WHERE telegram_id`).
		WithArgs("42").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(`SELECT EXISTS.+FROM accounts WHERE is_admin`).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(`DELETE FROM pending_admins`).
		WithArgs("ab").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(`INSERT INTO accounts`).
		WithArgs("A B", strPtr("42"), strPtr("ab"), false).
		WillReturnRows(accountRows(created))
	mock.ExpectCommit()

	account, err := svc.AuthenticateTelegram(ctx, testInitData())

	require.NoError(t, err)
	assert.False(t, account.IsAdmin)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountService_AuthenticateTelegram_NoHandleSkipsPending(t *testing.T) {
	svc, mock := setupAccountService(t)
	ctx := context.Background()
	now := time.Now()
	data := &telegram.InitData{ExternalID: "7", FirstName: "Solo"}
	created := models.Account{ID: uuid.New(), Name: "Solo", TelegramID: strPtr("7"), CreatedAt: now, UpdatedAt: now}

	mock.ExpectBeginTx(serializableTx)
	mock.ExpectQuery(`SELECT .+ FROM accounts WHERE telegram_id`).
		WithArgs("7").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(`SELECT EXISTS.+FROM accounts WHERE is_admin`).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(`INSERT INTO accounts`).
		WithArgs("Solo", strPtr("7"), (*string)(nil), false).
		WillReturnRows(accountRows(created))
	mock.ExpectCommit()

	account, err := svc.AuthenticateTelegram(ctx, data)

	require.NoError(t, err)
	assert.Nil(t, account.TelegramUsername)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountService_AuthenticateTelegram_UpdatesExisting(t *testing.T) {
	svc, mock := setupAccountService(t)
	ctx := context.Background()
	now := time.Now()
	existing := models.Account{
		ID: uuid.New(), Name: "Old Name", TelegramID: strPtr("42"), TelegramUsername: strPtr("old"),
		CreatedAt: now, UpdatedAt: now,
	}
	updated := existing
	updated.Name = "A B"
	updated.TelegramUsername = strPtr("ab")

	mock.ExpectBeginTx(serializableTx)
	mock.ExpectQuery(`SELECT .+ FROM accounts WHERE telegram_id`).
		WithArgs("42").
		WillReturnRows(accountRows(existing))
	mock.ExpectQuery(`SELECT EXISTS.+FROM accounts WHERE is_admin`).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(`DELETE FROM pending_admins`).
		WithArgs("ab").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(`UPDATE accounts SET name = .+, telegram_username = .+, is_admin`).
		WithArgs("A B", strPtr("ab"), false, existing.ID).
		WillReturnRows(accountRows(updated))
	mock.ExpectCommit()

	account, err := svc.AuthenticateTelegram(ctx, testInitData())

	require.NoError(t, err)
	assert.Equal(t, existing.ID, account.ID)
	assert.Equal(t, "A B", account.Name)
	assert.Equal(t, "ab", *account.TelegramUsername)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountService_AuthenticateTelegram_ExistingAdminSkipsPolicy(t *testing.T) {
	svc, mock := setupAccountService(t)
	ctx := context.Background()
	now := time.Now()
	existing := models.Account{
		ID: uuid.New(), Name: "A B", TelegramID: strPtr("42"), TelegramUsername: strPtr("ab"),
		IsAdmin: true, CreatedAt: now, UpdatedAt: now,
	}

	mock.ExpectBeginTx(serializableTx)
	mock.ExpectQuery(`SELECT .+ FROM accounts WHERE telegram_id`).
		WithArgs("42").
		WillReturnRows(accountRows(existing))
	mock.ExpectQuery(`UPDATE accounts SET name`).
		WithArgs("A B", strPtr("ab"), true, existing.ID).
		WillReturnRows(accountRows(existing))
	mock.ExpectCommit()

	account, err := svc.AuthenticateTelegram(ctx, testInitData())

	require.NoError(t, err)
	assert.True(t, account.IsAdmin)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountService_AuthenticateTelegram_ExistingBootstrapsWhenNoAdmins(t *testing.T) {
	svc, mock := setupAccountService(t)
	ctx := context.Background()
	now := time.Now()
	existing := models.Account{
		ID: uuid.New(), Name: "A B", TelegramID: strPtr("42"), TelegramUsername: strPtr("ab"),
		CreatedAt: now, UpdatedAt: now,
	}
	promoted := existing
	promoted.IsAdmin = true

	mock.ExpectBeginTx(serializableTx)
	mock.ExpectQuery(`SELECT .+ FROM accounts WHERE telegram_id`).
		WithArgs("42").
		WillReturnRows(accountRows(existing))
	mock.ExpectQuery(`SELECT EXISTS.+FROM accounts WHERE is_admin`).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery(`UPDATE accounts SET name`).
		WithArgs("A B", strPtr("ab"), true, existing.ID).
		WillReturnRows(accountRows(promoted))
	mock.ExpectCommit()

	account, err := svc.AuthenticateTelegram(ctx, testInitData())

	require.NoError(t, err)
	assert.True(t, account.IsAdmin)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountService_AuthenticateTelegram_RetriesAfterConcurrentInsert(t *testing.T) {
	svc, mock := setupAccountService(t)
	ctx := context.Background()
	now := time.Now()
	winner := models.Account{
		ID: uuid.New(), Name: "A B", TelegramID: strPtr("42"), TelegramUsername: strPtr("ab"),
		IsAdmin: true, CreatedAt: now, UpdatedAt: now,
	}

	// First attempt loses the race on the unique telegram_id.
	mock.ExpectBeginTx(serializableTx)
	mock.ExpectQuery(`SELECT .+ FROM accounts WHERE telegram_id`).
		WithArgs("42").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(`SELECT EXISTS.+FROM accounts WHERE is_admin`).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery(`INSERT INTO accounts`).
		WithArgs("A B", strPtr("42"), strPtr("ab"), true).
		WillReturnError(&pgconn.PgError{Code: "23505"})
	mock.ExpectRollback()

	// Second attempt resolves to the winner's row.
	mock.ExpectBeginTx(serializableTx)
	mock.ExpectQuery(`SELECT .+ FROM accounts WHERE telegram_id`).
		WithArgs("42").
		WillReturnRows(accountRows(winner))
	mock.ExpectQuery(`UPDATE accounts SET name`).
		WithArgs("A B", strPtr("ab"), true, winner.ID).
		WillReturnRows(accountRows(winner))
	mock.ExpectCommit()

	account, err := svc.AuthenticateTelegram(ctx, testInitData())

	require.NoError(t, err)
	assert.Equal(t, winner.ID, account.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountService_AuthenticateTelegram_GivesUpAfterMaxAttempts(t *testing.T) {
	svc, mock := setupAccountService(t)
	ctx := context.Background()

	for i := 0; i < maxTxAttempts; i++ {
		mock.ExpectBeginTx(serializableTx)
		mock.ExpectQuery(`SELECT .+ FROM accounts WHERE telegram_id`).
			WithArgs("42").
			WillReturnError(&pgconn.PgError{Code: "40001"})
		mock.ExpectRollback()
	}

	_, err := svc.AuthenticateTelegram(ctx, testInitData())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 5 attempts")
	assert.True(t, database.IsSerializationFailure(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountService_AuthenticateTelegram_QueryErrorNotRetried(t *testing.T) {
	svc, mock := setupAccountService(t)
	ctx := context.Background()

	mock.ExpectBeginTx(serializableTx)
	mock.ExpectQuery(`SELECT .+ FROM accounts WHERE telegram_id`).
		WithArgs("42").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	_, err := svc.AuthenticateTelegram(ctx, testInitData())

	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountService_AuthenticateTelegram_MissingIdentity(t *testing.T) {
	svc, _ := setupAccountService(t)

	_, err := svc.AuthenticateTelegram(context.Background(), &telegram.InitData{})

	assert.ErrorIs(t, err, telegram.ErrMissingIdentity)
}

func TestAccountService_GetByID(t *testing.T) {
	svc, mock := setupAccountService(t)
	ctx := context.Background()
	now := time.Now()
	a := models.Account{ID: uuid.New(), Name: "A B", IsAdmin: true, CreatedAt: now, UpdatedAt: now}

	mock.ExpectQuery(`SELECT .+ FROM accounts WHERE id`).
		WithArgs(a.ID).
		WillReturnRows(accountRows(a))

	account, err := svc.GetByID(ctx, a.ID)

	require.NoError(t, err)
	assert.Equal(t, a.ID, account.ID)
	assert.True(t, account.IsAdmin)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountService_GetByID_NotFound(t *testing.T) {
	svc, mock := setupAccountService(t)
	ctx := context.Background()
	id := uuid.New()

	mock.ExpectQuery(`SELECT .+ FROM accounts WHERE id`).
		WithArgs(id).
		WillReturnError(pgx.ErrNoRows)

	_, err := svc.GetByID(ctx, id)

	assert.ErrorIs(t, err, ErrAccountNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountService_GetByHandle_StripsAt(t *testing.T) {
	svc, mock := setupAccountService(t)
	ctx := context.Background()
	now := time.Now()
	a := models.Account{ID: uuid.New(), Name: "Carol", TelegramUsername: strPtr("carol"), CreatedAt: now, UpdatedAt: now}

	mock.ExpectQuery(`SELECT .+ FROM accounts WHERE telegram_username`).
		WithArgs("carol").
		WillReturnRows(accountRows(a))

	account, err := svc.GetByHandle(ctx, "@carol")

	require.NoError(t, err)
	assert.Equal(t, a.ID, account.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountService_ListAdmins(t *testing.T) {
	svc, mock := setupAccountService(t)
	ctx := context.Background()
	now := time.Now()
	a1 := models.Account{ID: uuid.New(), Name: "One", IsAdmin: true, CreatedAt: now, UpdatedAt: now}
	a2 := models.Account{ID: uuid.New(), Name: "Two", IsAdmin: true, CreatedAt: now, UpdatedAt: now}

	mock.ExpectQuery(`SELECT .+ FROM accounts WHERE is_admin ORDER BY created_at`).
		WillReturnRows(accountRows(a1, a2))

	admins, err := svc.ListAdmins(ctx)

	require.NoError(t, err)
	require.Len(t, admins, 2)
	assert.Equal(t, "One", admins[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountService_RevokeAdmin(t *testing.T) {
	svc, mock := setupAccountService(t)
	ctx := context.Background()
	now := time.Now()
	actor := uuid.New()
	target := models.Account{ID: uuid.New(), Name: "Target", CreatedAt: now, UpdatedAt: now}

	mock.ExpectQuery(`UPDATE accounts SET is_admin = FALSE`).
		WithArgs(target.ID).
		WillReturnRows(accountRows(target))

	account, err := svc.RevokeAdmin(ctx, actor, target.ID)

	require.NoError(t, err)
	assert.False(t, account.IsAdmin)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountService_RevokeAdmin_Self(t *testing.T) {
	svc, _ := setupAccountService(t)
	id := uuid.New()

	_, err := svc.RevokeAdmin(context.Background(), id, id)

	assert.ErrorIs(t, err, ErrCannotRevokeSelf)
}

func TestAccountService_RevokeAdmin_NotAdmin(t *testing.T) {
	svc, mock := setupAccountService(t)
	ctx := context.Background()
	now := time.Now()
	target := models.Account{ID: uuid.New(), Name: "Target", CreatedAt: now, UpdatedAt: now}

	mock.ExpectQuery(`UPDATE accounts SET is_admin = FALSE`).
		WithArgs(target.ID).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(`SELECT .+ FROM accounts WHERE id`).
		WithArgs(target.ID).
		WillReturnRows(accountRows(target))

	_, err := svc.RevokeAdmin(ctx, uuid.New(), target.ID)

	assert.ErrorIs(t, err, ErrNotAdmin)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountService_RevokeAdmin_NotFound(t *testing.T) {
	svc, mock := setupAccountService(t)
	ctx := context.Background()
	id := uuid.New()

	mock.ExpectQuery(`UPDATE accounts SET is_admin = FALSE`).
		WithArgs(id).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(`SELECT .+ FROM accounts WHERE id`).
		WithArgs(id).
		WillReturnError(pgx.ErrNoRows)

	_, err := svc.RevokeAdmin(ctx, uuid.New(), id)

	assert.ErrorIs(t, err, ErrAccountNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountService_UpdateProfile(t *testing.T) {
	svc, mock := setupAccountService(t)
	ctx := context.Background()
	now := time.Now()
	name := "New Name"
	a := models.Account{ID: uuid.New(), Name: name, CreatedAt: now, UpdatedAt: now}

	mock.ExpectBeginTx(serializableTx)
	mock.ExpectQuery(`UPDATE accounts SET\s+name = COALESCE`).
		WithArgs(&name, (*string)(nil), (*string)(nil), a.ID).
		WillReturnRows(accountRows(a))
	mock.ExpectCommit()

	account, err := svc.UpdateProfile(ctx, a.ID, ProfileUpdate{Name: &name})

	require.NoError(t, err)
	assert.Equal(t, name, account.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountService_UpdateProfile_EmailTaken(t *testing.T) {
	svc, mock := setupAccountService(t)
	ctx := context.Background()
	id := uuid.New()
	email := "taken@example.com"

	mock.ExpectBeginTx(serializableTx)
	mock.ExpectQuery(`UPDATE accounts SET\s+name = COALESCE`).
		WithArgs((*string)(nil), &email, (*string)(nil), id).
		WillReturnError(&pgconn.PgError{Code: "23505"})
	mock.ExpectRollback()

	_, err := svc.UpdateProfile(ctx, id, ProfileUpdate{Email: &email})

	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountService_UpdateProfile_TakenEmailKeepsPassword(t *testing.T) {
	svc, mock := setupAccountService(t)
	ctx := context.Background()
	now := time.Now()
	hash, err := HashPassword("old-password")
	require.NoError(t, err)
	a := models.Account{ID: uuid.New(), Name: "A", PasswordHash: &hash, CreatedAt: now, UpdatedAt: now}
	email := "taken@example.com"

	mock.ExpectBeginTx(serializableTx)
	mock.ExpectQuery(`SELECT .+ FROM accounts WHERE id = .+ FOR UPDATE`).
		WithArgs(a.ID).
		WillReturnRows(accountRows(a))
	mock.ExpectQuery(`UPDATE accounts SET\s+name = COALESCE`).
		WithArgs((*string)(nil), &email, pgxmock.AnyArg(), a.ID).
		WillReturnError(&pgconn.PgError{Code: "23505"})
	mock.ExpectRollback()

	_, err = svc.UpdateProfile(ctx, a.ID, ProfileUpdate{
		Email:           &email,
		CurrentPassword: "old-password",
		NewPassword:     "new-password",
	})

	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountService_UpdateProfile_WrongPasswordWritesNothing(t *testing.T) {
	svc, mock := setupAccountService(t)
	ctx := context.Background()
	now := time.Now()
	hash, err := HashPassword("old-password")
	require.NoError(t, err)
	a := models.Account{ID: uuid.New(), Name: "A", PasswordHash: &hash, CreatedAt: now, UpdatedAt: now}
	name := "Renamed"

	mock.ExpectBeginTx(serializableTx)
	mock.ExpectQuery(`SELECT .+ FROM accounts WHERE id = .+ FOR UPDATE`).
		WithArgs(a.ID).
		WillReturnRows(accountRows(a))
	mock.ExpectRollback()

	_, err = svc.UpdateProfile(ctx, a.ID, ProfileUpdate{
		Name:            &name,
		CurrentPassword: "wrong",
		NewPassword:     "new-password",
	})

	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountService_ChangePassword(t *testing.T) {
	svc, mock := setupAccountService(t)
	ctx := context.Background()
	now := time.Now()
	hash, err := HashPassword("old-password")
	require.NoError(t, err)
	a := models.Account{ID: uuid.New(), Name: "A", PasswordHash: &hash, CreatedAt: now, UpdatedAt: now}

	mock.ExpectBeginTx(serializableTx)
	mock.ExpectQuery(`SELECT .+ FROM accounts WHERE id = .+ FOR UPDATE`).
		WithArgs(a.ID).
		WillReturnRows(accountRows(a))
	mock.ExpectQuery(`UPDATE accounts SET\s+name = COALESCE`).
		WithArgs((*string)(nil), (*string)(nil), pgxmock.AnyArg(), a.ID).
		WillReturnRows(accountRows(a))
	mock.ExpectCommit()

	err = svc.ChangePassword(ctx, a.ID, "old-password", "new-password")

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountService_ChangePassword_WrongCurrent(t *testing.T) {
	svc, mock := setupAccountService(t)
	ctx := context.Background()
	now := time.Now()
	hash, err := HashPassword("old-password")
	require.NoError(t, err)
	a := models.Account{ID: uuid.New(), Name: "A", PasswordHash: &hash, CreatedAt: now, UpdatedAt: now}

	mock.ExpectBeginTx(serializableTx)
	mock.ExpectQuery(`SELECT .+ FROM accounts WHERE id = .+ FOR UPDATE`).
		WithArgs(a.ID).
		WillReturnRows(accountRows(a))
	mock.ExpectRollback()

	err = svc.ChangePassword(ctx, a.ID, "wrong", "new-password")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountService_ChangePassword_FirstPassword(t *testing.T) {
	svc, mock := setupAccountService(t)
	ctx := context.Background()
	now := time.Now()
	a := models.Account{ID: uuid.New(), Name: "A", CreatedAt: now, UpdatedAt: now}

	mock.ExpectBeginTx(serializableTx)
	mock.ExpectQuery(`SELECT .+ FROM accounts WHERE id = .+ FOR UPDATE`).
		WithArgs(a.ID).
		WillReturnRows(accountRows(a))
	mock.ExpectQuery(`UPDATE accounts SET\s+name = COALESCE`).
		WithArgs((*string)(nil), (*string)(nil), pgxmock.AnyArg(), a.ID).
		WillReturnRows(accountRows(a))
	mock.ExpectCommit()

	err := svc.ChangePassword(ctx, a.ID, "", "first-password")

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountService_ChangePassword_Empty(t *testing.T) {
	svc, mock := setupAccountService(t)

	err := svc.ChangePassword(context.Background(), uuid.New(), "old-password", "")

	assert.ErrorIs(t, err, ErrEmptyPassword)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountService_LoginWithPassword(t *testing.T) {
	svc, mock := setupAccountService(t)
	ctx := context.Background()
	now := time.Now()
	hash, err := HashPassword("secret-password")
	require.NoError(t, err)
	email := "hr@example.com"
	a := models.Account{ID: uuid.New(), Name: "HR", Email: &email, PasswordHash: &hash, CreatedAt: now, UpdatedAt: now}

	mock.ExpectQuery(`SELECT .+ FROM accounts WHERE email`).
		WithArgs(email).
		WillReturnRows(accountRows(a))

	account, err := svc.LoginWithPassword(ctx, email, "secret-password")

	require.NoError(t, err)
	assert.Equal(t, a.ID, account.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountService_LoginWithPassword_Invalid(t *testing.T) {
	hash, err := HashPassword("secret-password")
	require.NoError(t, err)
	now := time.Now()
	email := "hr@example.com"

	testCases := []struct {
		name     string
		password string
		setup    func(mock pgxmock.PgxPoolIface)
	}{
		{
			name:     "unknown email",
			password: "secret-password",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT .+ FROM accounts WHERE email`).
					WithArgs(email).
					WillReturnError(pgx.ErrNoRows)
			},
		},
		{
			name:     "wrong password",
			password: "nope",
			setup: func(mock pgxmock.PgxPoolIface) {
				a := models.Account{ID: uuid.New(), Email: &email, PasswordHash: &hash, CreatedAt: now, UpdatedAt: now}
				mock.ExpectQuery(`SELECT .+ FROM accounts WHERE email`).
					WithArgs(email).
					WillReturnRows(accountRows(a))
			},
		},
		{
			name:     "no password set",
			password: "secret-password",
			setup: func(mock pgxmock.PgxPoolIface) {
				a := models.Account{ID: uuid.New(), Email: &email, CreatedAt: now, UpdatedAt: now}
				mock.ExpectQuery(`SELECT .+ FROM accounts WHERE email`).
					WithArgs(email).
					WillReturnRows(accountRows(a))
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc, mock := setupAccountService(t)
			tc.setup(mock)

			_, err := svc.LoginWithPassword(context.Background(), email, tc.password)

			assert.ErrorIs(t, err, ErrInvalidCredentials)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
