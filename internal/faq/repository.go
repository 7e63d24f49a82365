package faq

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
)

// Repository defines the interface for FAQ data operations.
type Repository interface {
	// Insert stores a new FAQ entry.
	Insert(ctx context.Context, f *FAQ) error

	// ListByBuilding returns a building's FAQ entries in display order.
	ListByBuilding(ctx context.Context, buildingID string) ([]FAQ, error)
}

// InMemoryRepository is an in-memory implementation of Repository.
// Used for testing and development mode.
type InMemoryRepository struct {
	mu   sync.RWMutex
	faqs map[string]*FAQ
}

// NewInMemoryRepository creates a new in-memory FAQ repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{faqs: make(map[string]*FAQ)}
}

// Insert stores a new FAQ entry.
func (r *InMemoryRepository) Insert(_ context.Context, f *FAQ) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	fCopy := *f
	r.faqs[f.ID] = &fCopy
	return nil
}

// ListByBuilding returns a building's FAQ entries in display order.
func (r *InMemoryRepository) ListByBuilding(_ context.Context, buildingID string) ([]FAQ, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []FAQ
	for _, f := range r.faqs {
		if f.BuildingID == buildingID {
			out = append(out, *f)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order == out[j].Order {
			return out[i].ID < out[j].ID
		}
		return out[i].Order < out[j].Order
	})
	return out, nil
}

// PostgresRepository implements Repository backed by PostgreSQL.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a new Postgres-backed FAQ repository.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Insert stores a new FAQ entry.
func (r *PostgresRepository) Insert(ctx context.Context, f *FAQ) error {
	query := `
		INSERT INTO faqs (id, building_id, category, question, answer, display_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.ExecContext(ctx, query,
		f.ID, f.BuildingID, f.Category, f.Question, f.Answer, f.Order, f.CreatedAt, f.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert faq: %w", err)
	}
	return nil
}

// ListByBuilding returns a building's FAQ entries in display order.
func (r *PostgresRepository) ListByBuilding(ctx context.Context, buildingID string) ([]FAQ, error) {
	query := `
		SELECT id, building_id, category, question, answer, display_order, created_at, updated_at
		FROM faqs
		WHERE building_id = $1
		ORDER BY display_order, id`
	rows, err := r.db.QueryContext(ctx, query, buildingID)
	if err != nil {
		return nil, fmt.Errorf("list faqs: %w", err)
	}
	defer rows.Close()

	var out []FAQ
	for rows.Next() {
		var f FAQ
		if err := rows.Scan(&f.ID, &f.BuildingID, &f.Category, &f.Question,
			&f.Answer, &f.Order, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
