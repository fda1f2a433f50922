package services

import (
	"context"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/sirupsen/logrus"

	"github.com/yeremiapane/table-ordering/domain"
	"github.com/yeremiapane/table-ordering/repository"
	"github.com/yeremiapane/table-ordering/utils"
)

const minPasswordLength = 6

type RegisterStaffInput struct {
	Username string      `json:"username"`
	Password string      `json:"password"`
	Role     domain.Role `json:"role"`
	FullName string      `json:"fullName"`
}

func (in RegisterStaffInput) Validate() error {
	roles := make([]interface{}, 0, len(domain.StaffRoles))
	for _, r := range domain.StaffRoles {
		roles = append(roles, r)
	}
	return validation.ValidateStruct(&in,
		validation.Field(&in.Username, validation.Required, validation.Length(3, 50)),
		validation.Field(&in.Password, validation.Required, validation.Length(minPasswordLength, 72)),
		validation.Field(&in.Role, validation.Required, validation.In(roles...).Error("must be one of kitchen, waiter, admin")),
		validation.Field(&in.FullName, validation.Required, validation.Length(1, 100)),
	)
}

type RegisterCustomerInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
}

func (in RegisterCustomerInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Email, validation.Required, is.Email),
		validation.Field(&in.Password, validation.Required, validation.Length(minPasswordLength, 72)),
		validation.Field(&in.FullName, validation.Required, validation.Length(1, 100)),
	)
}

type LoginInput struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

func (in LoginInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Login, validation.Required),
		validation.Field(&in.Password, validation.Required),
	)
}

type AuthService struct {
	users  *repository.UserRepository
	tokens *utils.TokenIssuer
	log    logrus.FieldLogger
	now    func() time.Time
}

func NewAuthService(users *repository.UserRepository, tokens *utils.TokenIssuer, log logrus.FieldLogger) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		log:    log,
		now:    utcNow,
	}
}

// RegisterStaff creates a kitchen, waiter or admin account.
func (s *AuthService) RegisterStaff(ctx context.Context, in RegisterStaffInput) (domain.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.FullName = strings.TrimSpace(in.FullName)
	if err := in.Validate(); err != nil {
		return domain.User{}, validationErr(err)
	}

	exists, err := s.users.Exists(ctx, &in.Username, nil)
	if err != nil {
		return domain.User{}, err
	}
	if exists {
		return domain.User{}, domain.ConflictError("Username already exists")
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return domain.User{}, domain.UnexpectedError(err)
	}

	user, err := s.users.Insert(ctx, domain.User{
		Username: &in.Username,
		Role:     in.Role,
		FullName: &in.FullName,
	}, hash)
	if err != nil {
		return domain.User{}, err
	}

	s.log.WithFields(logrus.Fields{"user": user.ID, "role": user.Role}).Info("staff registered")
	return user, nil
}

// RegisterCustomer creates a customer account and signs it in.
func (s *AuthService) RegisterCustomer(ctx context.Context, in RegisterCustomerInput) (domain.AuthResult, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.FullName = strings.TrimSpace(in.FullName)
	if err := in.Validate(); err != nil {
		return domain.AuthResult{}, validationErr(err)
	}

	exists, err := s.users.Exists(ctx, nil, &in.Email)
	if err != nil {
		return domain.AuthResult{}, err
	}
	if exists {
		return domain.AuthResult{}, domain.ConflictError("Email already registered")
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return domain.AuthResult{}, domain.UnexpectedError(err)
	}

	user, err := s.users.Insert(ctx, domain.User{
		Email:    &in.Email,
		Role:     domain.RoleCustomer,
		FullName: &in.FullName,
	}, hash)
	if err != nil {
		return domain.AuthResult{}, err
	}

	s.log.WithField("user", user.ID).Info("customer registered")
	return s.issue(user)
}

// Login accepts a username or an email.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (domain.AuthResult, error) {
	in.Login = strings.TrimSpace(in.Login)
	if err := in.Validate(); err != nil {
		return domain.AuthResult{}, validationErr(err)
	}

	user, hash, err := s.users.GetCredentials(ctx, in.Login)
	if err != nil {
		if domain.KindOf(err) == domain.KindNotFound {
			return domain.AuthResult{}, domain.AuthenticationError("Invalid credentials")
		}
		return domain.AuthResult{}, err
	}
	if !utils.CheckPassword(hash, in.Password) {
		return domain.AuthResult{}, domain.AuthenticationError("Invalid credentials")
	}

	now := s.now()
	if err := s.users.TouchLastLogin(ctx, user.ID, now); err != nil {
		s.log.WithError(err).WithField("user", user.ID).Warn("failed to record last login")
	} else {
		user.LastLogin = &now
	}

	return s.issue(user)
}

func (s *AuthService) issue(user domain.User) (domain.AuthResult, error) {
	identity := domain.Identity{UserID: user.ID, Role: user.Role}
	if user.Username != nil {
		identity.Username = *user.Username
	}
	if user.Email != nil {
		identity.Email = *user.Email
	}

	token, err := s.tokens.GenerateToken(identity)
	if err != nil {
		return domain.AuthResult{}, domain.UnexpectedError(err)
	}
	return domain.AuthResult{Token: token, User: user}, nil
}

func (s *AuthService) Me(ctx context.Context, userID uint) (domain.User, error) {
	return s.users.GetByID(ctx, userID)
}

func (s *AuthService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx, nil)
}
