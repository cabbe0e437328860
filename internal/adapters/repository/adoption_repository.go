package repository

import (
	"context"

	"github.com/AchilleasB/paws-rescue/rescue-api/internal/core/domain"
	"github.com/AchilleasB/paws-rescue/rescue-api/internal/core/ports"
)

type AdoptionRepository struct {
	q    querier
	inTx bool
}

var _ ports.AdoptionRepository = (*AdoptionRepository)(nil)

const adoptionColumns = `id, animal_id, adopter_user_id, adopter_name, adopter_email, adopter_phone,
	adopter_address, adoption_date, return_date, notes, created_by, updated_by, created_at, updated_at`

func scanAdoption(row interface{ Scan(...any) error }) (*domain.AdoptionHistory, error) {
	var h domain.AdoptionHistory
	if err := row.Scan(&h.ID, &h.AnimalID, &h.AdopterUserID, &h.AdopterName, &h.AdopterEmail,
		&h.AdopterPhone, &h.AdopterAddress, &h.AdoptionDate, &h.ReturnDate, &h.Notes,
		&h.CreatedBy, &h.UpdatedBy, &h.CreatedAt, &h.UpdatedAt); err != nil {
		return nil, err
	}
	return &h, nil
}

// FindActiveForUpdate returns the open adoption of an animal, locking it
// inside a transaction.
func (r *AdoptionRepository) FindActiveForUpdate(ctx context.Context, animalID string) (*domain.AdoptionHistory, error) {
	h, err := scanAdoption(r.q.QueryRowContext(ctx,
		"SELECT "+adoptionColumns+" FROM adoption_history WHERE animal_id = $1 AND return_date IS NULL"+forUpdate(r.inTx),
		animalID))
	if err != nil {
		return nil, mapError(err, "active adoption")
	}
	return h, nil
}

func (r *AdoptionRepository) Create(ctx context.Context, h *domain.AdoptionHistory) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO adoption_history (`+adoptionColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		h.ID, h.AnimalID, h.AdopterUserID, h.AdopterName, h.AdopterEmail, h.AdopterPhone,
		h.AdopterAddress, h.AdoptionDate, h.ReturnDate, h.Notes, h.CreatedBy, h.UpdatedBy,
		h.CreatedAt, h.UpdatedAt,
	)
	return mapError(err, "adoption")
}

func (r *AdoptionRepository) Update(ctx context.Context, h *domain.AdoptionHistory) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE adoption_history SET return_date = $2, notes = $3, updated_by = $4, updated_at = $5
		 WHERE id = $1`,
		h.ID, h.ReturnDate, h.Notes, h.UpdatedBy, h.UpdatedAt,
	)
	if err != nil {
		return mapError(err, "adoption")
	}
	return requireAffected(res, "adoption")
}

func (r *AdoptionRepository) ListByAnimal(ctx context.Context, animalID string) ([]domain.AdoptionHistory, error) {
	rows, err := r.q.QueryContext(ctx,
		"SELECT "+adoptionColumns+" FROM adoption_history WHERE animal_id = $1 ORDER BY adoption_date DESC",
		animalID)
	if err != nil {
		return nil, mapError(err, "adoption")
	}
	defer rows.Close()

	history := []domain.AdoptionHistory{}
	for rows.Next() {
		h, err := scanAdoption(rows)
		if err != nil {
			return nil, err
		}
		history = append(history, *h)
	}
	return history, rows.Err()
}
