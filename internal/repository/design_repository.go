package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"inkthread/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrDesignNotFound = errors.New("design not found")
)

// DesignRepository defines the interface for saved design data access
type DesignRepository interface {
	Create(ctx context.Context, design *domain.SavedDesign) error
	Update(ctx context.Context, design *domain.SavedDesign) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.SavedDesign, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.SavedDesign, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type designRepository struct {
	db *sql.DB
}

// NewDesignRepository creates a new instance of DesignRepository
func NewDesignRepository(db *sql.DB) DesignRepository {
	return &designRepository{db: db}
}

// Create inserts a new saved design. The payload is stored as JSONB and
// round-trips unchanged.
func (r *designRepository) Create(ctx context.Context, design *domain.SavedDesign) error {
	payload, err := json.Marshal(design.Payload)
	if err != nil {
		return fmt.Errorf("failed to encode design payload: %w", err)
	}

	query := `
		INSERT INTO designs (id, user_id, name, payload, thumbnail, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = r.db.ExecContext(
		ctx,
		query,
		design.ID,
		design.UserID,
		design.Name,
		payload,
		design.Thumbnail,
		design.CreatedAt,
		design.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create design: %w", err)
	}

	return nil
}

// Update replaces the payload and thumbnail of an existing design. Re-saves
// from the same editing session reuse the original identifier, so this is
// what makes save idempotent.
func (r *designRepository) Update(ctx context.Context, design *domain.SavedDesign) error {
	payload, err := json.Marshal(design.Payload)
	if err != nil {
		return fmt.Errorf("failed to encode design payload: %w", err)
	}

	query := `
		UPDATE designs
		SET name = $2, payload = $3, thumbnail = $4, updated_at = $5
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		design.ID,
		design.Name,
		payload,
		design.Thumbnail,
		design.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update design: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrDesignNotFound
	}

	return nil
}

// FindByID retrieves a saved design by ID
func (r *designRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.SavedDesign, error) {
	query := `
		SELECT id, user_id, name, payload, thumbnail, created_at, updated_at
		FROM designs
		WHERE id = $1
	`

	design, err := scanDesign(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrDesignNotFound
		}
		return nil, fmt.Errorf("failed to find design by ID: %w", err)
	}

	return design, nil
}

// ListByUser retrieves all designs owned by a user, newest first
func (r *designRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.SavedDesign, error) {
	query := `
		SELECT id, user_id, name, payload, thumbnail, created_at, updated_at
		FROM designs
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list designs: %w", err)
	}
	defer rows.Close()

	designs := []*domain.SavedDesign{}
	for rows.Next() {
		design, err := scanDesign(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan design: %w", err)
		}
		designs = append(designs, design)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating designs: %w", err)
	}

	return designs, nil
}

// Delete removes a saved design. Deleting an id that does not exist is
// treated as success: the caller invalidates its listing regardless.
func (r *designRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM designs WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete design: %w", err)
	}

	return nil
}

func scanDesign(row rowScanner) (*domain.SavedDesign, error) {
	design := &domain.SavedDesign{}
	var payload []byte

	err := row.Scan(
		&design.ID,
		&design.UserID,
		&design.Name,
		&payload,
		&design.Thumbnail,
		&design.CreatedAt,
		&design.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(payload, &design.Payload); err != nil {
		return nil, fmt.Errorf("failed to decode design payload: %w", err)
	}

	return design, nil
}
