package services

import (
	"context"

	"sign-relay/auth"
	"sign-relay/errors"
	"sign-relay/repositories"
)

type IAuthService interface {
	Register(ctx context.Context, req auth.RegisterRequest) (Account, error)
	Login(ctx context.Context, phone, password string) (Account, error)
	Find(ctx context.Context, phone string) (Profile, error)
}

// Profile is the public view of a user, safe to return to clients.
type Profile struct {
	Username string `json:"username"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
}

// Account is a profile plus a freshly issued session token.
type Account struct {
	Profile
	Token string `json:"token"`
}

type AuthService struct {
	users  repositories.IUserRepository
	issuer auth.TokenIssuer
}

func NewAuthService(users repositories.IUserRepository, issuer auth.TokenIssuer) *AuthService {
	return &AuthService{users: users, issuer: issuer}
}

func (s *AuthService) Register(ctx context.Context, req auth.RegisterRequest) (Account, error) {
	// 1. Validate business rules before any expensive cryptographic work.
	if err := auth.ValidateRegister(req); err != nil {
		return Account{}, err
	}

	// 2. Hash here so the repository never sees a plain password.
	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		return Account{}, err
	}

	user := repositories.User{
		Phone:        req.Phone,
		Username:     req.Username,
		PasswordHash: hashed,
		Role:         req.Role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return Account{}, err // propagates ErrDuplicateID when the phone is taken
	}

	return s.issue(user)
}

func (s *AuthService) Login(ctx context.Context, phone, password string) (Account, error) {
	user, err := s.users.GetByPhone(ctx, phone)
	if err != nil {
		// Generic error to prevent user enumeration
		return Account{}, errors.ErrInvalidCredentials
	}

	match, err := auth.ComparePassword(password, user.PasswordHash)
	if err != nil || !match {
		return Account{}, errors.ErrInvalidCredentials
	}

	return s.issue(user)
}

func (s *AuthService) Find(ctx context.Context, phone string) (Profile, error) {
	user, err := s.users.GetByPhone(ctx, phone)
	if err != nil {
		return Profile{}, err
	}
	return Profile{Username: user.Username, Phone: user.Phone, Role: user.Role}, nil
}

func (s *AuthService) issue(user repositories.User) (Account, error) {
	token, err := s.issuer.Generate(user.Phone, user.Role)
	if err != nil {
		return Account{}, errors.ErrTokenGeneration
	}
	return Account{
		Profile: Profile{Username: user.Username, Phone: user.Phone, Role: user.Role},
		Token:   token,
	}, nil
}
