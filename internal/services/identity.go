package services

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"marketplace/internal/models"
	"marketplace/pkg/utils"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	msgFillAllFields      = "Please fill out all fields."
	msgRegistrationFailed = "Registration failed. User may already exist."
	msgInvalidCredentials = "Invalid email or password."
	msgLoginFailed        = "Login failed. Please try again."
)

type RegisterDTO struct {
	Username string
	Email    string
	Password string
	Meta     RequestMeta
}

type LoginDTO struct {
	Email    string
	Password string
	Meta     RequestMeta
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	Account models.Account
	Token   string
}

type IdentityService struct {
	db           *gorm.DB
	tokens       *TokenService
	auditService *AuditService
	hash         func(string) (string, error)
}

func NewIdentityService(db *gorm.DB, tokens *TokenService, auditService *AuditService) *IdentityService {
	return &IdentityService{
		db:           db,
		tokens:       tokens,
		auditService: auditService,
		hash:         utils.HashPassword,
	}
}

func (s *IdentityService) Register(ctx context.Context, dto RegisterDTO) (*AuthResult, error) {
	username := strings.TrimSpace(dto.Username)
	email := strings.TrimSpace(dto.Email)
	if username == "" || email == "" || dto.Password == "" {
		return nil, validationError(msgFillAllFields)
	}
	if utf8.RuneCountInString(username) > models.MaxUsernameLength {
		return nil, validationError("Username must be at most 80 characters.")
	}
	if utf8.RuneCountInString(email) > models.MaxEmailLength {
		return nil, validationError("Email must be at most 120 characters.")
	}

	exists, err := s.accountExists(ctx, username, email)
	if err != nil {
		return nil, internalError(msgRegistrationFailed, err)
	}
	if exists {
		return nil, conflictError(msgRegistrationFailed)
	}

	hashedPassword, err := s.hash(dto.Password)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, validationError("Password must be at most 72 bytes.")
		}
		return nil, internalError(msgRegistrationFailed, err)
	}

	account := models.Account{
		ID:           utils.NewID(),
		Username:     username,
		Email:        email,
		PasswordHash: hashedPassword,
		Image:        models.DefaultAccountImage,
	}

	if err := s.db.WithContext(ctx).Create(&account).Error; err != nil {
		// Lost a race against a concurrent registration of the same name.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, conflictError(msgRegistrationFailed)
		}
		if exists, lookupErr := s.accountExists(ctx, username, email); lookupErr == nil && exists {
			return nil, conflictError(msgRegistrationFailed)
		}
		return nil, internalError(msgRegistrationFailed, err)
	}

	token, err := s.tokens.Generate(account.ID)
	if err != nil {
		return nil, internalError(msgRegistrationFailed, err)
	}

	s.auditService.LogAction(&account.ID, ActionRegister, account.ID, map[string]string{
		"username": account.Username,
	}, dto.Meta)

	return &AuthResult{Account: account, Token: token}, nil
}

// Login reports unknown emails and wrong passwords with the same message.
func (s *IdentityService) Login(ctx context.Context, dto LoginDTO) (*AuthResult, error) {
	email := strings.TrimSpace(dto.Email)
	if email == "" || dto.Password == "" {
		return nil, authError(msgInvalidCredentials)
	}

	var account models.Account
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, authError(msgInvalidCredentials)
		}
		return nil, internalError(msgLoginFailed, err)
	}

	if !utils.CheckPasswordHash(dto.Password, account.PasswordHash) {
		return nil, authError(msgInvalidCredentials)
	}

	token, err := s.tokens.Generate(account.ID)
	if err != nil {
		return nil, internalError(msgLoginFailed, err)
	}

	s.auditService.LogAction(&account.ID, ActionLogin, account.ID, nil, dto.Meta)

	return &AuthResult{Account: account, Token: token}, nil
}

func (s *IdentityService) ValidateToken(token string) (string, error) {
	return s.tokens.Validate(token)
}

func (s *IdentityService) Profile(ctx context.Context, accountID string) (*models.Account, error) {
	var account models.Account
	err := s.db.WithContext(ctx).Where("id = ?", accountID).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundError("Account not found.")
		}
		return nil, internalError("Failed to fetch profile.", err)
	}
	return &account, nil
}

func (s *IdentityService) accountExists(ctx context.Context, username, email string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Account{}).
		Where("username = ? OR email = ?", username, email).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
