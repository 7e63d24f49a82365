package event

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/lib/pq"
)

// ErrEventNotFound is returned when an event does not exist.
var ErrEventNotFound = errors.New("event not found")

// Repository defines the interface for event data operations.
type Repository interface {
	// Insert stores a new event.
	Insert(ctx context.Context, ev *ConstructionEvent) error

	// GetByID retrieves an event by ID. Returns ErrEventNotFound if absent.
	GetByID(ctx context.Context, id string) (*ConstructionEvent, error)

	// ListByBuilding returns all events of a building ordered by start date.
	ListByBuilding(ctx context.Context, buildingID string) ([]ConstructionEvent, error)

	// UpdateStatus transitions an event to a new lifecycle state.
	UpdateStatus(ctx context.Context, id string, status Status) error
}

// InMemoryRepository is an in-memory implementation of Repository.
// Used for testing and development mode.
type InMemoryRepository struct {
	mu     sync.RWMutex
	events map[string]*ConstructionEvent
}

// NewInMemoryRepository creates a new in-memory event repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{events: make(map[string]*ConstructionEvent)}
}

// Insert stores a new event.
func (r *InMemoryRepository) Insert(_ context.Context, ev *ConstructionEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	evCopy := cloneEvent(ev)
	r.events[evCopy.ID] = evCopy
	return nil
}

// GetByID retrieves an event by ID.
func (r *InMemoryRepository) GetByID(_ context.Context, id string) (*ConstructionEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ev, ok := r.events[id]
	if !ok {
		return nil, ErrEventNotFound
	}
	return cloneEvent(ev), nil
}

// ListByBuilding returns all events of a building ordered by start date.
func (r *InMemoryRepository) ListByBuilding(_ context.Context, buildingID string) ([]ConstructionEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []ConstructionEvent
	for _, ev := range r.events {
		if ev.BuildingID == buildingID {
			out = append(out, *cloneEvent(ev))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].ID < out[j].ID
		}
		return out[i].StartDate.Before(out[j].StartDate)
	})
	return out, nil
}

// UpdateStatus transitions an event to a new lifecycle state.
func (r *InMemoryRepository) UpdateStatus(_ context.Context, id string, status Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ev, ok := r.events[id]
	if !ok {
		return ErrEventNotFound
	}
	ev.Status = status
	ev.UpdatedAt = time.Now().UTC()
	return nil
}

// cloneEvent returns a deep copy so callers cannot mutate stored state.
func cloneEvent(ev *ConstructionEvent) *ConstructionEvent {
	evCopy := *ev
	evCopy.AffectedFloors = append([]int(nil), ev.AffectedFloors...)
	evCopy.AffectedFacilities = append([]string(nil), ev.AffectedFacilities...)
	evCopy.AffectedAreas = append([]string(nil), ev.AffectedAreas...)
	evCopy.Attachments = append([]string(nil), ev.Attachments...)
	return &evCopy
}

// PostgresRepository implements Repository backed by PostgreSQL.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a new Postgres-backed event repository.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const eventColumns = `id, building_id, title, description, type, status,
	start_date, end_date, start_time, end_time, affected_floors,
	affected_facilities, affected_areas, noise_level, access_restrictions,
	details, contractor, contact_person, contact_phone, attachments,
	created_at, updated_at`

// Insert stores a new event.
func (r *PostgresRepository) Insert(ctx context.Context, ev *ConstructionEvent) error {
	query := `
		INSERT INTO events (` + eventColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22)`
	floors := make([]int64, len(ev.AffectedFloors))
	for i, f := range ev.AffectedFloors {
		floors[i] = int64(f)
	}
	_, err := r.db.ExecContext(ctx, query,
		ev.ID, ev.BuildingID, ev.Title, ev.Description, string(ev.Type), string(ev.Status),
		ev.StartDate, ev.EndDate, nullString(ev.StartTime), nullString(ev.EndTime),
		pq.Array(floors), pq.Array(ev.AffectedFacilities), pq.Array(ev.AffectedAreas),
		nullString(string(ev.NoiseLevel)), ev.AccessRestrictions,
		ev.Details, ev.Contractor, ev.ContactPerson, ev.ContactPhone,
		pq.Array(ev.Attachments), ev.CreatedAt, ev.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// GetByID retrieves an event by ID.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*ConstructionEvent, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id)
	ev, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEventNotFound
	}
	return ev, err
}

// ListByBuilding returns all events of a building ordered by start date.
func (r *PostgresRepository) ListByBuilding(ctx context.Context, buildingID string) ([]ConstructionEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE building_id = $1 ORDER BY start_date, id`
	rows, err := r.db.QueryContext(ctx, query, buildingID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var out []ConstructionEvent
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *ev)
	}
	return out, rows.Err()
}

// UpdateStatus transitions an event to a new lifecycle state.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id string, status Status) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE events SET status = $2, updated_at = now() WHERE id = $1`, id, string(status))
	if err != nil {
		return fmt.Errorf("update event status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update event status: %w", err)
	}
	if affected == 0 {
		return ErrEventNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*ConstructionEvent, error) {
	var (
		ev                   ConstructionEvent
		typ, status          string
		startTime, endTime   sql.NullString
		noise                sql.NullString
		floors               []int64
	)
	err := row.Scan(&ev.ID, &ev.BuildingID, &ev.Title, &ev.Description, &typ, &status,
		&ev.StartDate, &ev.EndDate, &startTime, &endTime, pq.Array(&floors),
		pq.Array(&ev.AffectedFacilities), pq.Array(&ev.AffectedAreas), &noise,
		&ev.AccessRestrictions, &ev.Details, &ev.Contractor, &ev.ContactPerson,
		&ev.ContactPhone, pq.Array(&ev.Attachments), &ev.CreatedAt, &ev.UpdatedAt)
	if err != nil {
		return nil, err
	}
	ev.Type = Type(typ)
	ev.Status = Status(status)
	ev.StartTime = startTime.String
	ev.EndTime = endTime.String
	ev.NoiseLevel = NoiseLevel(noise.String)
	ev.AffectedFloors = make([]int, len(floors))
	for i, f := range floors {
		ev.AffectedFloors[i] = int(f)
	}
	return &ev, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
