package repository

import (
	"context"

	"github.com/AchilleasB/paws-rescue/rescue-api/internal/core/domain"
	"github.com/AchilleasB/paws-rescue/rescue-api/internal/core/ports"
)

type FosterRepository struct {
	q querier
}

var _ ports.FosterRepository = (*FosterRepository)(nil)

const fosterColumns = `id, user_id, application_id, is_active, capacity, availability_notes,
	home_visit_date, home_visit_notes, created_at, updated_at`

func scanFoster(row interface{ Scan(...any) error }) (*domain.FosterProfile, error) {
	var p domain.FosterProfile
	if err := row.Scan(&p.ID, &p.UserID, &p.ApplicationID, &p.IsActive, &p.Capacity,
		&p.AvailabilityNotes, &p.HomeVisitDate, &p.HomeVisitNotes, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *FosterRepository) FindByUserID(ctx context.Context, userID string) (*domain.FosterProfile, error) {
	p, err := scanFoster(r.q.QueryRowContext(ctx,
		"SELECT "+fosterColumns+" FROM foster_profiles WHERE user_id = $1", userID))
	if err != nil {
		return nil, mapError(err, "foster profile")
	}
	return p, nil
}

func (r *FosterRepository) Create(ctx context.Context, p *domain.FosterProfile) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO foster_profiles (`+fosterColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		p.ID, p.UserID, p.ApplicationID, p.IsActive, p.Capacity, p.AvailabilityNotes,
		p.HomeVisitDate, p.HomeVisitNotes, p.CreatedAt, p.UpdatedAt)
	return mapError(err, "foster profile")
}

func (r *FosterRepository) Update(ctx context.Context, p *domain.FosterProfile) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE foster_profiles SET is_active = $2, capacity = $3, availability_notes = $4,
		        home_visit_date = $5, home_visit_notes = $6, updated_at = $7
		 WHERE id = $1`,
		p.ID, p.IsActive, p.Capacity, p.AvailabilityNotes, p.HomeVisitDate, p.HomeVisitNotes, p.UpdatedAt)
	if err != nil {
		return mapError(err, "foster profile")
	}
	return requireAffected(res, "foster profile")
}

func (r *FosterRepository) List(ctx context.Context, activeOnly bool) ([]domain.FosterProfile, error) {
	query := "SELECT " + fosterColumns + " FROM foster_profiles"
	if activeOnly {
		query += " WHERE is_active"
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, mapError(err, "foster profile")
	}
	defer rows.Close()

	profiles := []domain.FosterProfile{}
	for rows.Next() {
		p, err := scanFoster(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *p)
	}
	return profiles, rows.Err()
}
