package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"eventscout/internal/domain"
)

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) domain.UserRepository {
	return &userRepository{
		DB: db,
	}
}

const userColumns = "id, name, email, password, city, interests, role, plan, created_at"

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	interests, err := json.Marshal(u.Interests)
	if err != nil {
		return fmt.Errorf("marshal interests: %w", err)
	}
	query := `
		INSERT INTO users (name, email, password, city, interests, role, plan, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	err = r.DB.QueryRowContext(ctx, query,
		u.Name, u.Email, u.PasswordHash, u.City, interests, u.Role, u.Plan, u.CreatedAt,
	).Scan(&u.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return domain.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM users
		WHERE email = $1
	`, userColumns)
	u, err := scanUser(r.DB.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM users
		WHERE id = $1
	`, userColumns)
	u, err := scanUser(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *userRepository) UpdatePreferences(ctx context.Context, id int64, city *string, interests []string) error {
	if interests == nil {
		interests = []string{}
	}
	encoded, err := json.Marshal(interests)
	if err != nil {
		return fmt.Errorf("marshal interests: %w", err)
	}
	query := `UPDATE users SET city = $1, interests = $2 WHERE id = $3`
	result, err := r.DB.ExecContext(ctx, query, city, encoded, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) UpdatePlan(ctx context.Context, id int64, plan string) error {
	query := `UPDATE users SET plan = $1 WHERE id = $2`
	result, err := r.DB.ExecContext(ctx, query, plan, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) ListByCity(ctx context.Context, city string) ([]*domain.User, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM users
		WHERE city = $1
	`, userColumns)
	rows, err := r.DB.QueryContext(ctx, query, city)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	users := make([]*domain.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func scanUser(row rowScanner) (*domain.User, error) {
	u := &domain.User{}
	var cityNull sql.NullString
	var interestsRaw []byte
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &cityNull,
		&interestsRaw, &u.Role, &u.Plan, &u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if cityNull.Valid {
		u.City = &cityNull.String
	}
	u.Interests = []string{}
	if len(interestsRaw) > 0 {
		if err := json.Unmarshal(interestsRaw, &u.Interests); err != nil {
			return nil, fmt.Errorf("unmarshal interests: %w", err)
		}
	}
	return u, nil
}
