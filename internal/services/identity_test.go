package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"marketplace/internal/models"
	"marketplace/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIdentityService() (*IdentityService, *TokenService) {
	db := setupTestDB()
	tokens := NewTokenService([]byte("test-secret"), time.Hour)
	return NewIdentityService(db, tokens, NewAuditService(db, testLogger())), tokens
}

func TestIdentityService_Register(t *testing.T) {
	ctx := context.Background()
	service, tokens := newTestIdentityService()

	t.Run("Register success", func(t *testing.T) {
		res, err := service.Register(ctx, RegisterDTO{Username: "alice", Email: "a@x.com", Password: "pw123"})
		require.NoError(t, err)

		assert.Equal(t, models.AccountSummary{Username: "alice", Email: "a@x.com"}, res.Account.Summary())
		assert.NotEqual(t, "pw123", res.Account.PasswordHash)
		assert.Equal(t, models.DefaultAccountImage, res.Account.Image)

		id, err := tokens.Validate(res.Token)
		assert.NoError(t, err)
		assert.Equal(t, res.Account.ID, id)
	})

	t.Run("Duplicate email", func(t *testing.T) {
		_, err := service.Register(ctx, RegisterDTO{Username: "alice2", Email: "a@x.com", Password: "pw"})
		assert.ErrorIs(t, err, ErrConflict)
		assert.Equal(t, "Registration failed. User may already exist.", Message(err, ""))
	})

	t.Run("Duplicate username", func(t *testing.T) {
		_, err := service.Register(ctx, RegisterDTO{Username: "alice", Email: "other@x.com", Password: "pw"})
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("No partial account on conflict", func(t *testing.T) {
		var count int64
		service.db.Model(&models.Account{}).Count(&count)
		assert.Equal(t, int64(1), count)
	})

	t.Run("Missing fields", func(t *testing.T) {
		cases := []RegisterDTO{
			{Email: "b@x.com", Password: "pw"},
			{Username: "bob", Password: "pw"},
			{Username: "bob", Email: "b@x.com"},
			{Username: "   ", Email: "b@x.com", Password: "pw"},
		}
		for _, dto := range cases {
			_, err := service.Register(ctx, dto)
			assert.ErrorIs(t, err, ErrValidation)
			assert.Equal(t, "Please fill out all fields.", Message(err, ""))
		}
	})

	t.Run("Password too long", func(t *testing.T) {
		_, err := service.Register(ctx, RegisterDTO{Username: "long", Email: "l@x.com", Password: strings.Repeat("A", 100)})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("Fields longer than their columns", func(t *testing.T) {
		_, err := service.Register(ctx, RegisterDTO{Username: strings.Repeat("u", models.MaxUsernameLength+1), Email: "u@x.com", Password: "pw"})
		assert.ErrorIs(t, err, ErrValidation)
		assert.Equal(t, "Username must be at most 80 characters.", Message(err, ""))

		longEmail := strings.Repeat("e", models.MaxEmailLength) + "@x.com"
		_, err = service.Register(ctx, RegisterDTO{Username: "emma", Email: longEmail, Password: "pw"})
		assert.ErrorIs(t, err, ErrValidation)
		assert.Equal(t, "Email must be at most 120 characters.", Message(err, ""))

		// Limits count characters, not bytes.
		_, err = service.Register(ctx, RegisterDTO{Username: strings.Repeat("ü", models.MaxUsernameLength), Email: "umlaut@x.com", Password: "pw"})
		assert.NoError(t, err)
	})

	t.Run("Hash failure", func(t *testing.T) {
		service.hash = func(string) (string, error) { return "", errors.New("boom") }
		defer func() { service.hash = utils.HashPassword }()

		_, err := service.Register(ctx, RegisterDTO{Username: "hash", Email: "h@x.com", Password: "pw"})
		assert.ErrorIs(t, err, ErrInternal)
	})

	t.Run("DB Error", func(t *testing.T) {
		dbErr := setupTestDB()
		dbErr.Migrator().DropTable(&models.Account{})
		serviceErr := NewIdentityService(dbErr, tokens, nil)

		_, err := serviceErr.Register(ctx, RegisterDTO{Username: "x", Email: "x@x.com", Password: "pw"})
		assert.ErrorIs(t, err, ErrInternal)
	})
}

func TestIdentityService_Login(t *testing.T) {
	ctx := context.Background()
	service, tokens := newTestIdentityService()

	registered, err := service.Register(ctx, RegisterDTO{Username: "alice", Email: "a@x.com", Password: "pw123"})
	require.NoError(t, err)

	t.Run("Login success", func(t *testing.T) {
		res, err := service.Login(ctx, LoginDTO{Email: "a@x.com", Password: "pw123"})
		require.NoError(t, err)
		assert.Equal(t, "alice", res.Account.Username)

		id, err := tokens.Validate(res.Token)
		assert.NoError(t, err)
		assert.Equal(t, registered.Account.ID, id)
	})

	t.Run("Earlier tokens stay valid", func(t *testing.T) {
		_, err := service.Login(ctx, LoginDTO{Email: "a@x.com", Password: "pw123"})
		require.NoError(t, err)

		id, err := tokens.Validate(registered.Token)
		assert.NoError(t, err)
		assert.Equal(t, registered.Account.ID, id)
	})

	t.Run("Wrong password and unknown email look the same", func(t *testing.T) {
		_, wrongPw := service.Login(ctx, LoginDTO{Email: "a@x.com", Password: "wrong"})
		_, unknown := service.Login(ctx, LoginDTO{Email: "nobody@x.com", Password: "pw123"})

		assert.ErrorIs(t, wrongPw, ErrAuth)
		assert.ErrorIs(t, unknown, ErrAuth)
		assert.Equal(t, "Invalid email or password.", Message(wrongPw, ""))
		assert.Equal(t, Message(wrongPw, ""), Message(unknown, ""))
	})

	t.Run("Empty credentials", func(t *testing.T) {
		_, err := service.Login(ctx, LoginDTO{})
		assert.ErrorIs(t, err, ErrAuth)
	})

	t.Run("DB Error", func(t *testing.T) {
		dbErr := setupTestDB()
		dbErr.Migrator().DropTable(&models.Account{})
		serviceErr := NewIdentityService(dbErr, tokens, nil)

		_, err := serviceErr.Login(ctx, LoginDTO{Email: "a@x.com", Password: "pw123"})
		assert.ErrorIs(t, err, ErrInternal)
		assert.Equal(t, "Login failed. Please try again.", Message(err, ""))
	})
}

func TestIdentityService_ProfileAndToken(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestIdentityService()

	res, err := service.Register(ctx, RegisterDTO{Username: "carol", Email: "c@x.com", Password: "pw"})
	require.NoError(t, err)

	t.Run("ValidateToken resolves account", func(t *testing.T) {
		id, err := service.ValidateToken(res.Token)
		assert.NoError(t, err)
		assert.Equal(t, res.Account.ID, id)
	})

	t.Run("Profile", func(t *testing.T) {
		account, err := service.Profile(ctx, res.Account.ID)
		require.NoError(t, err)
		assert.Equal(t, "carol", account.Username)
		assert.Equal(t, "c@x.com", account.Email)
	})

	t.Run("Profile not found", func(t *testing.T) {
		_, err := service.Profile(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Profile DB Error", func(t *testing.T) {
		service.db.Migrator().DropTable(&models.Account{})
		defer service.db.AutoMigrate(&models.Account{})

		_, err := service.Profile(ctx, res.Account.ID)
		assert.ErrorIs(t, err, ErrInternal)
	})
}
