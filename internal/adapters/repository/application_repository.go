package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/AchilleasB/paws-rescue/rescue-api/internal/core/domain"
	"github.com/AchilleasB/paws-rescue/rescue-api/internal/core/ports"
)

type ApplicationRepository struct {
	q    querier
	inTx bool
}

var _ ports.ApplicationRepository = (*ApplicationRepository)(nil)

const applicationColumns = `id, kind, status, applicant_first_name, applicant_last_name, applicant_email,
	applicant_phone, animal_id, form, reviewed_by, reviewed_at, internal_notes, submitted_at, updated_at`

func scanApplication(row interface{ Scan(...any) error }) (*domain.Application, error) {
	var (
		a            domain.Application
		kind, status string
		form         []byte
	)
	if err := row.Scan(&a.ID, &kind, &status, &a.ApplicantFirstName, &a.ApplicantLastName,
		&a.ApplicantEmail, &a.ApplicantPhone, &a.AnimalID, &form, &a.ReviewedBy, &a.ReviewedAt,
		&a.InternalNotes, &a.SubmittedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	a.Kind = domain.ApplicationKind(kind)
	a.Status = domain.ApplicationStatus(status)
	a.Form = form
	return &a, nil
}

func (r *ApplicationRepository) FindByID(ctx context.Context, id string) (*domain.Application, error) {
	a, err := scanApplication(r.q.QueryRowContext(ctx,
		"SELECT "+applicationColumns+" FROM applications WHERE id = $1", id))
	if err != nil {
		return nil, mapError(err, "application")
	}
	return a, nil
}

func (r *ApplicationRepository) FindByIDForUpdate(ctx context.Context, id string) (*domain.Application, error) {
	a, err := scanApplication(r.q.QueryRowContext(ctx,
		"SELECT "+applicationColumns+" FROM applications WHERE id = $1"+forUpdate(r.inTx), id))
	if err != nil {
		return nil, mapError(err, "application")
	}
	return a, nil
}

func (r *ApplicationRepository) Create(ctx context.Context, a *domain.Application) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO applications (`+applicationColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		a.ID, string(a.Kind), string(a.Status), a.ApplicantFirstName, a.ApplicantLastName,
		a.ApplicantEmail, a.ApplicantPhone, a.AnimalID, string(a.Form), a.ReviewedBy, a.ReviewedAt,
		a.InternalNotes, a.SubmittedAt, a.UpdatedAt,
	)
	return mapError(err, "application")
}

func (r *ApplicationRepository) Update(ctx context.Context, a *domain.Application) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE applications SET status = $2, reviewed_by = $3, reviewed_at = $4, internal_notes = $5, updated_at = $6
		 WHERE id = $1`,
		a.ID, string(a.Status), a.ReviewedBy, a.ReviewedAt, a.InternalNotes, a.UpdatedAt,
	)
	if err != nil {
		return mapError(err, "application")
	}
	return requireAffected(res, "application")
}

func (r *ApplicationRepository) List(ctx context.Context, f domain.ApplicationFilter) ([]domain.Application, error) {
	var (
		where []string
		args  []any
	)
	if f.Kind != nil {
		args = append(args, string(*f.Kind))
		where = append(where, fmt.Sprintf("kind = $%d", len(args)))
	}
	if f.Status != nil {
		args = append(args, string(*f.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	query := "SELECT " + applicationColumns + " FROM applications"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, f.Limit, f.Offset)
	query += fmt.Sprintf(" ORDER BY submitted_at DESC, id LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "application")
	}
	defer rows.Close()

	apps := []domain.Application{}
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, *a)
	}
	return apps, rows.Err()
}
