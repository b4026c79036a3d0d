package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"eventscout/internal/domain"
)

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

const eventColumns = "id, title, description, category, city, start_date, end_date, registration_link, status"

// uniqueViolation is the Postgres error code raised when the (title, city)
// unique index rejects an insert.
const uniqueViolation = "23505"

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (title, description, category, city, start_date, end_date, registration_link, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		e.Title, e.Description, e.Category, e.City, e.StartDate, e.EndDate, e.RegistrationLink, e.Status,
	).Scan(&e.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return domain.ErrDuplicateEvent
		}
		return err
	}
	return nil
}

func (r *eventRepository) GetByID(ctx context.Context, id int64) (*domain.Event, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM events
		WHERE id = $1
	`, eventColumns)
	row := r.DB.QueryRowContext(ctx, query, id)
	e, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) GetByNaturalKey(ctx context.Context, title string, city *string) (*domain.Event, error) {
	// IS NOT DISTINCT FROM lets a NULL city on both sides count as a match.
	query := fmt.Sprintf(`
		SELECT %s
		FROM events
		WHERE title = $1 AND city IS NOT DISTINCT FROM $2
	`, eventColumns)
	row := r.DB.QueryRowContext(ctx, query, title, city)
	e, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) List(ctx context.Context, filter domain.EventFilter) ([]*domain.Event, error) {
	whereClauses := []string{}
	args := []interface{}{}
	n := 1
	if filter.City != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("city = $%d", n))
		args = append(args, *filter.City)
		n++
	}
	if len(filter.Categories) > 0 {
		whereClauses = append(whereClauses, fmt.Sprintf("category = ANY($%d)", n))
		args = append(args, pq.Array(filter.Categories))
		n++
	}
	where := ""
	if len(whereClauses) > 0 {
		where = "WHERE " + strings.Join(whereClauses, " AND ")
	}
	query := fmt.Sprintf(`
		SELECT %s
		FROM events
		%s
		ORDER BY id
	`, eventColumns, where)
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var descNull, categoryNull, cityNull, linkNull, statusNull sql.NullString
	var startNull, endNull sql.NullTime
	err := row.Scan(
		&e.ID, &e.Title, &descNull, &categoryNull, &cityNull,
		&startNull, &endNull, &linkNull, &statusNull,
	)
	if err != nil {
		return nil, err
	}
	if descNull.Valid {
		e.Description = &descNull.String
	}
	if categoryNull.Valid {
		e.Category = &categoryNull.String
	}
	if cityNull.Valid {
		e.City = &cityNull.String
	}
	if startNull.Valid {
		e.StartDate = &domain.Date{Time: startNull.Time}
	}
	if endNull.Valid {
		e.EndDate = &domain.Date{Time: endNull.Time}
	}
	if linkNull.Valid {
		e.RegistrationLink = &linkNull.String
	}
	if statusNull.Valid {
		e.Status = statusNull.String
	}
	return e, nil
}
