package services

import (
	"context"
	"fmt"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"bizdesk/internal/repositories"
	"bizdesk/pkg/middleware"
	"bizdesk/pkg/utils"
)

type NewIdentity struct {
	Email       string
	Password    string
	DisplayName string
	Role        string
}

type CreatedIdentity struct {
	UID string
	// PasswordHash is only set by providers that keep credentials in the users table.
	PasswordHash string
}

// IdentityProvider verifies bearer tokens and owns the credential side of a
// user. Profile rows live in the users table either way.
type IdentityProvider interface {
	middleware.TokenVerifier
	SignIn(ctx context.Context, email, password string) (string, error)
	CreateIdentity(ctx context.Context, in NewIdentity) (*CreatedIdentity, error)
	DeleteIdentity(ctx context.Context, uid string) error
}

type localIdentity struct {
	users repositories.UserRepository
}

// NewLocalIdentity keeps bcrypt hashes on the users row and issues HS256 JWTs.
func NewLocalIdentity(users repositories.UserRepository) IdentityProvider {
	return &localIdentity{users: users}
}

// VerifyToken checks the signature, then the users row: a deleted, disabled
// or credential-less account is rejected even while its token is unexpired.
// The role comes from the row so demotions apply immediately.
func (l *localIdentity) VerifyToken(ctx context.Context, rawToken string) (*middleware.Principal, error) {
	claims, err := utils.ValidateToken(rawToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrUnauthorized, err)
	}
	user, err := l.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	if user == nil || user.PasswordHash == "" || !user.IsActive() {
		return nil, fmt.Errorf("%w: account revoked", utils.ErrUnauthorized)
	}
	return &middleware.Principal{UserID: user.ID, Email: user.Email, Role: user.EffectiveRole()}, nil
}

func (l *localIdentity) SignIn(ctx context.Context, email, password string) (string, error) {
	user, err := l.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	if user == nil || user.PasswordHash == "" || !user.IsActive() {
		return "", utils.ErrInvalidCredentials
	}
	if err := utils.ComparePasswords(user.PasswordHash, password); err != nil {
		return "", utils.ErrInvalidCredentials
	}
	return utils.CreateToken(user.ID, user.Email, user.EffectiveRole())
}

func (l *localIdentity) CreateIdentity(_ context.Context, in NewIdentity) (*CreatedIdentity, error) {
	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	return &CreatedIdentity{UID: uuid.NewString(), PasswordHash: hash}, nil
}

// DeleteIdentity clears the stored hash so the account can no longer sign in.
func (l *localIdentity) DeleteIdentity(ctx context.Context, uid string) error {
	user, err := l.users.FindByID(ctx, uid)
	if err != nil {
		return fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	if user == nil {
		return utils.ErrAccountNotFound
	}
	if err := l.users.SetPasswordHash(ctx, uid, ""); err != nil {
		return fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	return nil
}

// firebaseAuthClient is the part of *auth.Client the provider uses.
type firebaseAuthClient interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
	CreateUser(ctx context.Context, user *auth.UserToCreate) (*auth.UserRecord, error)
	DeleteUser(ctx context.Context, uid string) error
	SetCustomUserClaims(ctx context.Context, uid string, customClaims map[string]interface{}) error
}

type firebaseIdentity struct {
	client firebaseAuthClient
	users  repositories.UserRepository
	logger *zap.Logger
}

func NewFirebaseIdentity(client *auth.Client, users repositories.UserRepository, logger *zap.Logger) IdentityProvider {
	return &firebaseIdentity{client: client, users: users, logger: logger}
}

// VerifyToken prefers the role stored on the users row and falls back to the
// "role" custom claim.
func (f *firebaseIdentity) VerifyToken(ctx context.Context, rawToken string) (*middleware.Principal, error) {
	token, err := f.client.VerifyIDToken(ctx, rawToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrUnauthorized, err)
	}
	p := &middleware.Principal{UserID: token.UID}
	if email, ok := token.Claims["email"].(string); ok {
		p.Email = email
	}
	if role, ok := token.Claims["role"].(string); ok {
		p.Role = strings.ToLower(role)
	}

	user, err := f.users.FindByID(ctx, token.UID)
	if err != nil {
		f.logger.Warn("role lookup failed", zap.String("uid", token.UID), zap.Error(err))
		return p, nil
	}
	if user != nil {
		if !user.IsActive() {
			return nil, fmt.Errorf("%w: account disabled", utils.ErrUnauthorized)
		}
		if role := user.EffectiveRole(); role != "" {
			p.Role = role
		}
		if p.Email == "" {
			p.Email = user.Email
		}
	}
	return p, nil
}

func (f *firebaseIdentity) SignIn(context.Context, string, string) (string, error) {
	return "", fmt.Errorf("%w: sign in with the firebase client sdk", utils.ErrUnauthorized)
}

func (f *firebaseIdentity) CreateIdentity(ctx context.Context, in NewIdentity) (*CreatedIdentity, error) {
	params := (&auth.UserToCreate{}).
		Email(in.Email).
		Password(in.Password)
	if in.DisplayName != "" {
		params = params.DisplayName(in.DisplayName)
	}

	record, err := f.client.CreateUser(ctx, params)
	if err != nil {
		if auth.IsEmailAlreadyExists(err) {
			return nil, utils.ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("create firebase user: %w", err)
	}

	if in.Role != "" {
		if err := f.client.SetCustomUserClaims(ctx, record.UID, map[string]interface{}{"role": in.Role}); err != nil {
			f.logger.Warn("set role claim failed", zap.String("uid", record.UID), zap.Error(err))
		}
	}
	return &CreatedIdentity{UID: record.UID}, nil
}

func (f *firebaseIdentity) DeleteIdentity(ctx context.Context, uid string) error {
	if err := f.client.DeleteUser(ctx, uid); err != nil {
		if auth.IsUserNotFound(err) {
			return utils.ErrAccountNotFound
		}
		return fmt.Errorf("delete firebase user: %w", err)
	}
	return nil
}
