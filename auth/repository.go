package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrUserNotFound signals that the user does not exist.
	ErrUserNotFound = errors.New("auth: user not found")
	// ErrDuplicateLogin signals that the login is already registered.
	ErrDuplicateLogin = errors.New("auth: login already exists")
)

// Repository handles data access for accounts.
type Repository interface {
	CreateUser(ctx context.Context, params CreateUserParams) (User, error)
	GetUserByLogin(ctx context.Context, login string) (User, error)
	GetUserByID(ctx context.Context, userID int64) (User, error)
	ListBySalesRep(ctx context.Context, repID int64) ([]User, error)
	ListByRole(ctx context.Context, role Role) ([]User, error)
	ListByCapability(ctx context.Context, capability Capability) ([]User, error)
	SetSalesRep(ctx context.Context, userID int64, repID *int64) error
}

// CreateUserParams contains write parameters for creating users.
type CreateUserParams struct {
	Login        string
	Email        string
	FirstName    string
	LastName     string
	DisplayName  string
	PasswordHash string
	Role         Role
	Capabilities []Capability
	SalesRepID   *int64
}

// PGRepository implements Repository backed by PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a PostgreSQL-backed account repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const userColumns = `id, login, email, first_name, last_name, display_name, password_hash, role, capabilities, customer_sales_rep, created_at, updated_at`

// CreateUser inserts a new user with hashed password.
func (r *PGRepository) CreateUser(ctx context.Context, params CreateUserParams) (User, error) {
	insertSQL := `
		INSERT INTO users (login, email, first_name, last_name, display_name, password_hash, role, capabilities, customer_sales_rep)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + userColumns

	user, err := scanUser(r.pool.QueryRow(ctx, insertSQL,
		params.Login,
		params.Email,
		params.FirstName,
		params.LastName,
		params.DisplayName,
		params.PasswordHash,
		string(params.Role),
		capabilityStrings(params.Capabilities),
		params.SalesRepID,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return User{}, ErrDuplicateLogin
		}
		return User{}, fmt.Errorf("auth: create user: %w", err)
	}

	return user, nil
}

// GetUserByLogin retrieves a user by login name.
func (r *PGRepository) GetUserByLogin(ctx context.Context, login string) (User, error) {
	selectSQL := `SELECT ` + userColumns + ` FROM users WHERE login = $1`

	user, err := scanUser(r.pool.QueryRow(ctx, selectSQL, login))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, fmt.Errorf("auth: get user by login: %w", err)
	}

	return user, nil
}

// GetUserByID retrieves a user by ID.
func (r *PGRepository) GetUserByID(ctx context.Context, userID int64) (User, error) {
	selectSQL := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.pool.QueryRow(ctx, selectSQL, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, fmt.Errorf("auth: get user by id: %w", err)
	}

	return user, nil
}

// ListBySalesRep returns every user whose customer_sales_rep equals repID.
// A repID of 0 matches users with no assignment.
func (r *PGRepository) ListBySalesRep(ctx context.Context, repID int64) ([]User, error) {
	selectSQL := `
		SELECT ` + userColumns + `
		FROM users
		WHERE COALESCE(customer_sales_rep, 0) = $1
		ORDER BY login ASC, id ASC
	`
	return r.list(ctx, "list by sales rep", selectSQL, repID)
}

// ListByRole returns every user holding role.
func (r *PGRepository) ListByRole(ctx context.Context, role Role) ([]User, error) {
	selectSQL := `
		SELECT ` + userColumns + `
		FROM users
		WHERE role = $1
		ORDER BY login ASC, id ASC
	`
	return r.list(ctx, "list by role", selectSQL, string(role))
}

// ListByCapability returns every user granted capability, either by role or
// by an explicit grant.
func (r *PGRepository) ListByCapability(ctx context.Context, capability Capability) ([]User, error) {
	roles := make([]string, 0, 3)
	for _, role := range RolesGranting(capability) {
		roles = append(roles, string(role))
	}

	selectSQL := `
		SELECT ` + userColumns + `
		FROM users
		WHERE role = ANY($1) OR $2 = ANY(capabilities)
		ORDER BY login ASC, id ASC
	`
	return r.list(ctx, "list by capability", selectSQL, roles, string(capability))
}

// SetSalesRep updates the customer_sales_rep field of userID. A nil repID
// clears the assignment.
func (r *PGRepository) SetSalesRep(ctx context.Context, userID int64, repID *int64) error {
	const updateSQL = `
		UPDATE users
		SET customer_sales_rep = $2, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, updateSQL, userID, repID)
	if err != nil {
		return fmt.Errorf("auth: set sales rep: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *PGRepository) list(ctx context.Context, op string, query string, args ...any) ([]User, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("auth: %s: %w", op, err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("auth: %s: scan user: %w", op, err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("auth: %s: iterate users: %w", op, err)
	}

	return users, nil
}

func scanUser(row pgx.Row) (User, error) {
	var (
		user         User
		role         string
		capabilities []string
		salesRepID   *int64
	)
	err := row.Scan(
		&user.ID,
		&user.Login,
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&user.DisplayName,
		&user.PasswordHash,
		&role,
		&capabilities,
		&salesRepID,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return User{}, err
	}

	user.Role = Role(role)
	for _, c := range capabilities {
		user.Capabilities = append(user.Capabilities, Capability(c))
	}
	user.SalesRepID = salesRepID
	return user, nil
}

func capabilityStrings(capabilities []Capability) []string {
	out := make([]string, 0, len(capabilities))
	for _, c := range capabilities {
		out = append(out, string(c))
	}
	return out
}
