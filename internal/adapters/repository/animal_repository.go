package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/AchilleasB/paws-rescue/rescue-api/internal/core/domain"
	"github.com/AchilleasB/paws-rescue/rescue-api/internal/core/ports"
)

type AnimalRepository struct {
	q    querier
	inTx bool
}

var _ ports.AnimalRepository = (*AnimalRepository)(nil)

const animalColumns = `id, animal_type, name, breed, date_of_birth, gender, weight_lbs, story,
	adoption_status, current_foster_user_id, created_by, updated_by, created_at, updated_at`

// sortColumns maps filter sort keys to SQL; never interpolate user input.
var sortColumns = map[string]string{
	domain.SortByName:        "name",
	domain.SortByCreatedAt:   "created_at",
	domain.SortByDateOfBirth: "date_of_birth",
}

func scanAnimal(row interface{ Scan(...any) error }) (*domain.Animal, error) {
	var a domain.Animal
	var status string
	if err := row.Scan(&a.ID, &a.AnimalType, &a.Name, &a.Breed, &a.DateOfBirth, &a.Gender,
		&a.WeightLbs, &a.Story, &status, &a.CurrentFosterUserID, &a.CreatedBy, &a.UpdatedBy,
		&a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	a.AdoptionStatus = domain.AdoptionStatus(status)
	return &a, nil
}

func (r *AnimalRepository) FindByID(ctx context.Context, id string) (*domain.Animal, error) {
	a, err := scanAnimal(r.q.QueryRowContext(ctx,
		"SELECT "+animalColumns+" FROM animals WHERE id = $1", id))
	if err != nil {
		return nil, mapError(err, "animal")
	}
	return a, nil
}

func (r *AnimalRepository) FindByIDForUpdate(ctx context.Context, id string) (*domain.Animal, error) {
	a, err := scanAnimal(r.q.QueryRowContext(ctx,
		"SELECT "+animalColumns+" FROM animals WHERE id = $1"+forUpdate(r.inTx), id))
	if err != nil {
		return nil, mapError(err, "animal")
	}
	return a, nil
}

func (r *AnimalRepository) Create(ctx context.Context, a *domain.Animal) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO animals (`+animalColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		a.ID, a.AnimalType, a.Name, a.Breed, a.DateOfBirth, a.Gender, a.WeightLbs, a.Story,
		string(a.AdoptionStatus), a.CurrentFosterUserID, a.CreatedBy, a.UpdatedBy, a.CreatedAt, a.UpdatedAt,
	)
	return mapError(err, "animal")
}

func (r *AnimalRepository) Update(ctx context.Context, a *domain.Animal) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE animals SET animal_type = $2, name = $3, breed = $4, date_of_birth = $5, gender = $6,
		        weight_lbs = $7, story = $8, adoption_status = $9, current_foster_user_id = $10,
		        updated_by = $11, updated_at = $12
		 WHERE id = $1`,
		a.ID, a.AnimalType, a.Name, a.Breed, a.DateOfBirth, a.Gender, a.WeightLbs, a.Story,
		string(a.AdoptionStatus), a.CurrentFosterUserID, a.UpdatedBy, a.UpdatedAt,
	)
	if err != nil {
		return mapError(err, "animal")
	}
	return requireAffected(res, "animal")
}

func (r *AnimalRepository) Search(ctx context.Context, f domain.AnimalFilter) ([]domain.Animal, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.AnimalType != "" {
		add("lower(animal_type) = lower($%d)", f.AnimalType)
	}
	if f.Breed != "" {
		add("breed ILIKE $%d", "%"+escapeLike(f.Breed)+"%")
	}
	if f.Gender != "" {
		add("lower(gender) = lower($%d)", f.Gender)
	}
	if f.Status != nil {
		add("adoption_status = $%d", string(*f.Status))
	}
	if f.Name != "" {
		add("name ILIKE $%d", "%"+escapeLike(f.Name)+"%")
	}

	query := "SELECT " + animalColumns + " FROM animals"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	col, ok := sortColumns[f.SortBy]
	if !ok {
		col = "created_at"
	}
	dir := "ASC"
	if f.Descending {
		dir = "DESC"
	}
	args = append(args, f.Limit, f.Offset)
	query += fmt.Sprintf(" ORDER BY %s %s NULLS LAST, id LIMIT $%d OFFSET $%d", col, dir, len(args)-1, len(args))

	return r.list(ctx, query, args...)
}

func (r *AnimalRepository) ListByFoster(ctx context.Context, userID string) ([]domain.Animal, error) {
	return r.list(ctx,
		"SELECT "+animalColumns+" FROM animals WHERE current_foster_user_id = $1 ORDER BY name", userID)
}

func (r *AnimalRepository) list(ctx context.Context, query string, args ...any) ([]domain.Animal, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "animal")
	}
	defer rows.Close()

	animals := []domain.Animal{}
	for rows.Next() {
		a, err := scanAnimal(rows)
		if err != nil {
			return nil, err
		}
		animals = append(animals, *a)
	}
	return animals, rows.Err()
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
