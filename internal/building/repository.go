package building

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/lib/pq"
)

// Common errors for user operations.
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

// UserRepository defines the interface for user profile data operations.
type UserRepository interface {
	// Insert stores a new user. Returns ErrDuplicateEmail if the email
	// is already registered.
	Insert(ctx context.Context, user *User) error

	// GetByID retrieves a user by ID. Returns ErrUserNotFound if absent.
	GetByID(ctx context.Context, id string) (*User, error)

	// GetByEmail retrieves a user by email. Returns ErrUserNotFound if absent.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// ListByBuilding returns all users of a building, ordered by creation time.
	ListByBuilding(ctx context.Context, buildingID string) ([]*User, error)
}

// InMemoryUserRepository is an in-memory implementation of UserRepository.
// Used for testing and development mode.
type InMemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]*User
}

// NewInMemoryUserRepository creates a new in-memory user repository.
func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{users: make(map[string]*User)}
}

// Insert stores a new user, rejecting duplicate emails.
func (r *InMemoryUserRepository) Insert(_ context.Context, user *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if strings.EqualFold(u.Email, user.Email) {
			return ErrDuplicateEmail
		}
	}
	userCopy := cloneUser(user)
	r.users[userCopy.ID] = userCopy
	return nil
}

// GetByID retrieves a user by ID.
func (r *InMemoryUserRepository) GetByID(_ context.Context, id string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return cloneUser(u), nil
}

// GetByEmail retrieves a user by email (case-insensitive).
func (r *InMemoryUserRepository) GetByEmail(_ context.Context, email string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return cloneUser(u), nil
		}
	}
	return nil, ErrUserNotFound
}

// ListByBuilding returns all users of a building ordered by creation time.
func (r *InMemoryUserRepository) ListByBuilding(_ context.Context, buildingID string) ([]*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*User
	for _, u := range r.users {
		if u.BuildingID == buildingID {
			out = append(out, cloneUser(u))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// cloneUser returns a deep copy so callers cannot mutate stored state.
func cloneUser(u *User) *User {
	userCopy := *u
	if u.FloorNumber != nil {
		floor := *u.FloorNumber
		userCopy.FloorNumber = &floor
	}
	userCopy.FacilitiesOfInterest = append([]string(nil), u.FacilitiesOfInterest...)
	userCopy.TimePreferences = append([]TimePreference(nil), u.TimePreferences...)
	return &userCopy
}

// PostgresUserRepository implements UserRepository backed by PostgreSQL.
type PostgresUserRepository struct {
	db *sql.DB
}

// NewPostgresUserRepository creates a new Postgres-backed user repository.
func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

// Insert stores a new user, mapping the unique email constraint to
// ErrDuplicateEmail.
func (r *PostgresUserRepository) Insert(ctx context.Context, user *User) error {
	prefs, err := json.Marshal(user.TimePreferences)
	if err != nil {
		return fmt.Errorf("marshal time preferences: %w", err)
	}

	query := `
		INSERT INTO users (id, email, display_name, role, building_id, floor_number,
			unit_number, facilities_of_interest, time_preferences, password_hash, created_at)
		VALUES ($1, lower($2), $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err = r.db.ExecContext(ctx, query,
		user.ID, user.Email, user.DisplayName, string(user.Role), user.BuildingID,
		user.FloorNumber, user.UnitNumber, pq.Array(user.FacilitiesOfInterest),
		prefs, user.PasswordHash, user.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID.
func (r *PostgresUserRepository) GetByID(ctx context.Context, id string) (*User, error) {
	return r.getOne(ctx, `WHERE id = $1`, id)
}

// GetByEmail retrieves a user by email.
func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.getOne(ctx, `WHERE email = lower($1)`, email)
}

func (r *PostgresUserRepository) getOne(ctx context.Context, where string, arg any) (*User, error) {
	query := `
		SELECT id, email, display_name, role, building_id, floor_number,
			unit_number, facilities_of_interest, time_preferences, password_hash, created_at
		FROM users ` + where
	row := r.db.QueryRowContext(ctx, query, arg)
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return user, err
}

// ListByBuilding returns all users of a building ordered by creation time.
func (r *PostgresUserRepository) ListByBuilding(ctx context.Context, buildingID string) ([]*User, error) {
	query := `
		SELECT id, email, display_name, role, building_id, floor_number,
			unit_number, facilities_of_interest, time_preferences, password_hash, created_at
		FROM users
		WHERE building_id = $1
		ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, query, buildingID)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var out []*User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, user)
	}
	return out, rows.Err()
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scanning.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*User, error) {
	var (
		u         User
		role      string
		unit      sql.NullString
		prefsJSON []byte
	)
	err := row.Scan(&u.ID, &u.Email, &u.DisplayName, &role, &u.BuildingID,
		&u.FloorNumber, &unit, pq.Array(&u.FacilitiesOfInterest), &prefsJSON,
		&u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	u.Role = Role(role)
	u.UnitNumber = unit.String
	if len(prefsJSON) > 0 {
		if err := json.Unmarshal(prefsJSON, &u.TimePreferences); err != nil {
			return nil, fmt.Errorf("unmarshal time preferences: %w", err)
		}
	}
	return &u, nil
}
