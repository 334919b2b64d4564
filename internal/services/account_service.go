package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	dbm "bizdesk/internal/models/db_models"
	"bizdesk/internal/models/request_models"
	"bizdesk/internal/models/response_models"
	"bizdesk/internal/repositories"
	"bizdesk/pkg/utils"
)

type AccountServiceInterface interface {
	Login(ctx context.Context, request request_models.LoginRequest) (string, error)
	CreateUser(ctx context.Context, request request_models.CreateUserRequest) (*response_models.CreateUserResponse, error)
	DeleteUser(ctx context.Context, request request_models.DeleteUserRequest) error
	ListUsers(ctx context.Context, page, pageSize int) ([]response_models.UserResponse, error)
}

type AccountService struct {
	users    repositories.UserRepository
	identity IdentityProvider
	logger   *zap.Logger
}

func NewAccountService(users repositories.UserRepository, identity IdentityProvider, logger *zap.Logger) AccountServiceInterface {
	return &AccountService{users: users, identity: identity, logger: logger}
}

func (a *AccountService) Login(ctx context.Context, request request_models.LoginRequest) (string, error) {
	return a.identity.SignIn(ctx, request.Email, request.Password)
}

// CreateUser registers the identity first and then writes the profile row.
// A failed row write rolls the identity back.
func (a *AccountService) CreateUser(ctx context.Context, request request_models.CreateUserRequest) (*response_models.CreateUserResponse, error) {
	email := strings.ToLower(strings.TrimSpace(request.Email))
	existing, err := a.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	if existing != nil {
		return nil, utils.ErrEmailAlreadyExists
	}

	role := strings.ToLower(request.Role)
	if role == "" {
		role = dbm.RoleUser
	}
	status := request.Status
	if status == "" {
		status = dbm.StatusActive
	}

	created, err := a.identity.CreateIdentity(ctx, NewIdentity{
		Email:       email,
		Password:    request.Password,
		DisplayName: request.DisplayName,
		Role:        role,
	})
	if err != nil {
		return nil, err
	}

	user := &dbm.User{
		ID:           created.UID,
		Email:        email,
		DisplayName:  request.DisplayName,
		Role:         role,
		RoleAlt:      role,
		Status:       status,
		Country:      request.Country,
		MobileNumber: request.MobileNumber,
		PasswordHash: created.PasswordHash,
	}
	if err := a.users.Create(ctx, user); err != nil {
		if derr := a.identity.DeleteIdentity(ctx, created.UID); derr != nil {
			a.logger.Error("identity rollback failed", zap.String("uid", created.UID), zap.Error(derr))
		}
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}

	a.logger.Info("user created", zap.String("uid", user.ID), zap.String("role", role))
	return &response_models.CreateUserResponse{OK: true, UID: user.ID}, nil
}

func (a *AccountService) DeleteUser(ctx context.Context, request request_models.DeleteUserRequest) error {
	if err := a.identity.DeleteIdentity(ctx, request.UID); err != nil {
		return err
	}
	if request.DeleteUserDoc {
		if err := a.users.Delete(ctx, request.UID); err != nil {
			return fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
		}
	}
	a.logger.Info("user deleted", zap.String("uid", request.UID), zap.Bool("doc_removed", request.DeleteUserDoc))
	return nil
}

func (a *AccountService) ListUsers(ctx context.Context, page, pageSize int) ([]response_models.UserResponse, error) {
	users, err := a.users.List(ctx, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	out := make([]response_models.UserResponse, 0, len(users))
	for i := range users {
		u := &users[i]
		out = append(out, response_models.UserResponse{
			ID:           u.ID,
			Email:        u.Email,
			DisplayName:  u.DisplayName,
			Role:         u.EffectiveRole(),
			Status:       u.Status,
			Country:      u.Country,
			MobileNumber: u.MobileNumber,
			CreatedAt:    u.CreatedAt,
		})
	}
	return out, nil
}
