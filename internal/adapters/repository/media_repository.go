package repository

import (
	"context"

	"github.com/AchilleasB/paws-rescue/rescue-api/internal/core/domain"
	"github.com/AchilleasB/paws-rescue/rescue-api/internal/core/ports"
)

type MediaRepository struct {
	q querier
}

var _ ports.MediaRepository = (*MediaRepository)(nil)

const (
	imageColumns    = `id, animal_id, url, blob_name, caption, display_order, is_primary, uploaded_by, created_at`
	documentColumns = `id, animal_id, url, blob_name, file_name, document_type, description, uploaded_by, created_at`
)

func scanImage(row interface{ Scan(...any) error }) (*domain.AnimalImage, error) {
	var i domain.AnimalImage
	if err := row.Scan(&i.ID, &i.AnimalID, &i.URL, &i.BlobName, &i.Caption, &i.DisplayOrder,
		&i.IsPrimary, &i.UploadedBy, &i.CreatedAt); err != nil {
		return nil, err
	}
	return &i, nil
}

func scanDocument(row interface{ Scan(...any) error }) (*domain.AnimalDocument, error) {
	var d domain.AnimalDocument
	if err := row.Scan(&d.ID, &d.AnimalID, &d.URL, &d.BlobName, &d.FileName, &d.DocumentType,
		&d.Description, &d.UploadedBy, &d.CreatedAt); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *MediaRepository) FindImage(ctx context.Context, animalID, imageID string) (*domain.AnimalImage, error) {
	img, err := scanImage(r.q.QueryRowContext(ctx,
		"SELECT "+imageColumns+" FROM animal_images WHERE animal_id = $1 AND id = $2", animalID, imageID))
	if err != nil {
		return nil, mapError(err, "image")
	}
	return img, nil
}

func (r *MediaRepository) ListImages(ctx context.Context, animalID string) ([]domain.AnimalImage, error) {
	rows, err := r.q.QueryContext(ctx,
		"SELECT "+imageColumns+" FROM animal_images WHERE animal_id = $1 ORDER BY display_order, created_at, id",
		animalID)
	if err != nil {
		return nil, mapError(err, "image")
	}
	defer rows.Close()

	images := []domain.AnimalImage{}
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, err
		}
		images = append(images, *img)
	}
	return images, rows.Err()
}

func (r *MediaRepository) HasPrimaryImage(ctx context.Context, animalID string) (bool, error) {
	var exists bool
	err := r.q.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM animal_images WHERE animal_id = $1 AND is_primary)", animalID,
	).Scan(&exists)
	if err != nil {
		return false, mapError(err, "image")
	}
	return exists, nil
}

func (r *MediaRepository) ClearPrimaryImages(ctx context.Context, animalID, exceptID string) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE animal_images SET is_primary = FALSE
		 WHERE animal_id = $1 AND is_primary AND ($2::uuid IS NULL OR id <> $2::uuid)`,
		animalID, nullIfEmpty(exceptID))
	return mapError(err, "image")
}

func (r *MediaRepository) CreateImage(ctx context.Context, i *domain.AnimalImage) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO animal_images (`+imageColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		i.ID, i.AnimalID, i.URL, i.BlobName, i.Caption, i.DisplayOrder, i.IsPrimary, i.UploadedBy, i.CreatedAt)
	return mapError(err, "image")
}

func (r *MediaRepository) UpdateImage(ctx context.Context, i *domain.AnimalImage) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE animal_images SET caption = $3, display_order = $4, is_primary = $5
		 WHERE animal_id = $1 AND id = $2`,
		i.AnimalID, i.ID, i.Caption, i.DisplayOrder, i.IsPrimary)
	if err != nil {
		return mapError(err, "image")
	}
	return requireAffected(res, "image")
}

func (r *MediaRepository) DeleteImage(ctx context.Context, animalID, imageID string) error {
	res, err := r.q.ExecContext(ctx,
		"DELETE FROM animal_images WHERE animal_id = $1 AND id = $2", animalID, imageID)
	if err != nil {
		return mapError(err, "image")
	}
	return requireAffected(res, "image")
}

func (r *MediaRepository) FindDocument(ctx context.Context, animalID, documentID string) (*domain.AnimalDocument, error) {
	doc, err := scanDocument(r.q.QueryRowContext(ctx,
		"SELECT "+documentColumns+" FROM animal_documents WHERE animal_id = $1 AND id = $2", animalID, documentID))
	if err != nil {
		return nil, mapError(err, "document")
	}
	return doc, nil
}

func (r *MediaRepository) ListDocuments(ctx context.Context, animalID string) ([]domain.AnimalDocument, error) {
	rows, err := r.q.QueryContext(ctx,
		"SELECT "+documentColumns+" FROM animal_documents WHERE animal_id = $1 ORDER BY created_at DESC, id",
		animalID)
	if err != nil {
		return nil, mapError(err, "document")
	}
	defer rows.Close()

	docs := []domain.AnimalDocument{}
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *d)
	}
	return docs, rows.Err()
}

func (r *MediaRepository) CreateDocument(ctx context.Context, d *domain.AnimalDocument) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO animal_documents (`+documentColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		d.ID, d.AnimalID, d.URL, d.BlobName, d.FileName, d.DocumentType, d.Description, d.UploadedBy, d.CreatedAt)
	return mapError(err, "document")
}

func (r *MediaRepository) UpdateDocument(ctx context.Context, d *domain.AnimalDocument) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE animal_documents SET document_type = $3, description = $4 WHERE animal_id = $1 AND id = $2`,
		d.AnimalID, d.ID, d.DocumentType, d.Description)
	if err != nil {
		return mapError(err, "document")
	}
	return requireAffected(res, "document")
}

func (r *MediaRepository) DeleteDocument(ctx context.Context, animalID, documentID string) error {
	res, err := r.q.ExecContext(ctx,
		"DELETE FROM animal_documents WHERE animal_id = $1 AND id = $2", animalID, documentID)
	if err != nil {
		return mapError(err, "document")
	}
	return requireAffected(res, "document")
}
