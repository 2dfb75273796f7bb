package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials signals wrong login or password.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	// ErrWeakPassword signals password doesn't meet requirements.
	ErrWeakPassword = errors.New("auth: password must be at least 8 characters")
	// ErrNotCustomer signals a sales rep assignment on a non-customer account.
	ErrNotCustomer = errors.New("auth: sales rep can only be assigned to customers")
)

// Service handles account business logic.
type Service struct {
	repo Repository
	cost int
}

// NewService creates a new account service.
func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		cost: bcrypt.DefaultCost,
	}
}

// WithHashCost overrides the bcrypt cost. Tests use bcrypt.MinCost.
func (s *Service) WithHashCost(cost int) *Service {
	s.cost = cost
	return s
}

// Register creates a new user account.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	if len(req.Password) < 8 {
		return nil, ErrWeakPassword
	}

	login := strings.TrimSpace(req.Login)
	if login == "" || strings.TrimSpace(req.Email) == "" {
		return nil, fmt.Errorf("auth: login and email are required")
	}

	role := Role(strings.TrimSpace(string(req.Role)))
	if role == "" {
		role = RoleCustomer
	}
	if !isValidRole(role) {
		return nil, fmt.Errorf("auth: invalid role %q", role)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("auth: hash password: %w", err)
	}

	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		displayName = login
	}

	user, err := s.repo.CreateUser(ctx, CreateUserParams{
		Login:        login,
		Email:        strings.TrimSpace(req.Email),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		DisplayName:  displayName,
		PasswordHash: string(passwordHash),
		Role:         role,
		SalesRepID:   req.SalesRepID,
	})
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// Login checks a login/password pair and returns the matching user.
func (s *Service) Login(ctx context.Context, req LoginRequest) (User, error) {
	user, err := s.repo.GetUserByLogin(ctx, strings.TrimSpace(req.Login))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return User{}, ErrInvalidCredentials
	}

	return user, nil
}

// GetUserByID retrieves user information by ID.
func (s *Service) GetUserByID(ctx context.Context, userID int64) (*User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// AssignSalesRep stores repID as the customer's sales rep. The caller is
// responsible for checking repID against the field's choices.
func (s *Service) AssignSalesRep(ctx context.Context, customerID int64, repID *int64) error {
	customer, err := s.repo.GetUserByID(ctx, customerID)
	if err != nil {
		return err
	}
	if customer.Role != RoleCustomer {
		return ErrNotCustomer
	}
	return s.repo.SetSalesRep(ctx, customerID, repID)
}

func isValidRole(role Role) bool {
	switch role {
	case RoleAdministrator, RoleSalesRep, RoleCustomer:
		return true
	default:
		return false
	}
}
