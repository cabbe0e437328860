package services

import (
	"context"
	"path"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"go.uber.org/zap"

	"github.com/AchilleasB/paws-rescue/rescue-api/internal/core/domain"
	"github.com/AchilleasB/paws-rescue/rescue-api/internal/core/ports"
)

type MediaConfig struct {
	ImagesContainer    string
	DocumentsContainer string
	UploadTTL          time.Duration
	DownloadTTL        time.Duration
}

// MediaService keeps image and document metadata in the store and hands
// out SAS URLs so clients move the bytes directly to blob storage.
type MediaService struct {
	store  ports.Store
	blobs  ports.BlobStore
	cfg    MediaConfig
	logger *zap.Logger
	now    Clock
}

func NewMediaService(store ports.Store, blobs ports.BlobStore, cfg MediaConfig, logger *zap.Logger) *MediaService {
	if cfg.ImagesContainer == "" {
		cfg.ImagesContainer = "animal-images"
	}
	if cfg.DocumentsContainer == "" {
		cfg.DocumentsContainer = "animal-documents"
	}
	if cfg.UploadTTL <= 0 {
		cfg.UploadTTL = 10 * time.Minute
	}
	if cfg.DownloadTTL <= 0 {
		cfg.DownloadTTL = 15 * time.Minute
	}
	return &MediaService{store: store, blobs: blobs, cfg: cfg, logger: logger, now: utcNow}
}

// blobNameFor builds "<animalID>/<uuid>-<file>" so blob names are unique and
// scoped to one animal.
func blobNameFor(animalID, fileName string) string {
	return animalID + "/" + newID() + "-" + sanitizeFileName(fileName)
}

func sanitizeFileName(name string) string {
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := b.String()
	if out == "" || out == "." || out == "/" {
		return "file"
	}
	if len(out) > 100 {
		ext := path.Ext(out)
		if len(ext) > 0 && len(ext) < 10 {
			return out[:100-len(ext)] + ext
		}
		return out[:100]
	}
	return out
}

func (s *MediaService) checkBlobName(animalID, blobName string) error {
	if !strings.HasPrefix(blobName, animalID+"/") || strings.Contains(blobName, "..") {
		return domain.Validationf("blob_name does not belong to this animal")
	}
	return nil
}

func (s *MediaService) requestUpload(ctx context.Context, container, animalID, fileName string) (*domain.UploadTicket, error) {
	if strings.TrimSpace(fileName) == "" {
		return nil, domain.Validationf("file_name is required")
	}
	if _, err := s.store.Animals().FindByID(ctx, animalID); err != nil {
		return nil, err
	}
	name := blobNameFor(animalID, fileName)
	url, expires, err := s.blobs.UploadURL(ctx, container, name, s.cfg.UploadTTL)
	if err != nil {
		return nil, err
	}
	return &domain.UploadTicket{BlobName: name, UploadURL: url, ExpiresAt: expires}, nil
}

func (s *MediaService) RequestImageUpload(ctx context.Context, animalID, fileName string) (*domain.UploadTicket, error) {
	return s.requestUpload(ctx, s.cfg.ImagesContainer, animalID, fileName)
}

func (s *MediaService) RequestDocumentUpload(ctx context.Context, animalID, fileName string) (*domain.UploadTicket, error) {
	return s.requestUpload(ctx, s.cfg.DocumentsContainer, animalID, fileName)
}

type ImageInput struct {
	BlobName     string
	Caption      string
	DisplayOrder *int
	IsPrimary    bool
}

// AddImage records an uploaded image. The first image of an animal becomes
// primary on its own; a new primary image demotes every other image in the
// same transaction.
func (s *MediaService) AddImage(ctx context.Context, actor *domain.User, animalID string, in ImageInput) (*domain.AnimalImage, error) {
	in.Caption = strings.TrimSpace(in.Caption)
	if err := validation.ValidateStruct(&in,
		validation.Field(&in.BlobName, validation.Required, validation.Length(1, 400)),
		validation.Field(&in.Caption, validation.Length(0, 500)),
	); err != nil {
		return nil, domain.Validationf("%s", err.Error())
	}
	if err := s.checkBlobName(animalID, in.BlobName); err != nil {
		return nil, err
	}

	var image *domain.AnimalImage
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos ports.Repositories) error {
		if _, err := repos.Animals().FindByIDForUpdate(ctx, animalID); err != nil {
			return err
		}

		primary := in.IsPrimary
		if !primary {
			has, err := repos.Media().HasPrimaryImage(ctx, animalID)
			if err != nil {
				return err
			}
			primary = !has
		}
		if primary {
			if err := repos.Media().ClearPrimaryImages(ctx, animalID, ""); err != nil {
				return err
			}
		}

		order := 0
		if in.DisplayOrder != nil {
			order = *in.DisplayOrder
		} else {
			existing, err := repos.Media().ListImages(ctx, animalID)
			if err != nil {
				return err
			}
			order = len(existing)
		}

		image = &domain.AnimalImage{
			ID:           newID(),
			AnimalID:     animalID,
			URL:          s.blobs.BlobURL(s.cfg.ImagesContainer, in.BlobName),
			BlobName:     in.BlobName,
			Caption:      in.Caption,
			DisplayOrder: order,
			IsPrimary:    primary,
			UploadedBy:   actorID(actor),
			CreatedAt:    s.now(),
		}
		return repos.Media().CreateImage(ctx, image)
	})
	if err != nil {
		return nil, err
	}
	return image, nil
}

type ImageUpdate struct {
	Caption      *string
	DisplayOrder *int
	IsPrimary    *bool
}

func (s *MediaService) UpdateImage(ctx context.Context, animalID, imageID string, in ImageUpdate) (*domain.AnimalImage, error) {
	var image *domain.AnimalImage
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos ports.Repositories) error {
		if _, err := repos.Animals().FindByIDForUpdate(ctx, animalID); err != nil {
			return err
		}
		img, err := repos.Media().FindImage(ctx, animalID, imageID)
		if err != nil {
			return err
		}
		if in.Caption != nil {
			caption := strings.TrimSpace(*in.Caption)
			if len(caption) > 500 {
				return domain.Validationf("caption: the length must be no more than 500")
			}
			img.Caption = caption
		}
		if in.DisplayOrder != nil {
			img.DisplayOrder = *in.DisplayOrder
		}
		if in.IsPrimary != nil {
			if *in.IsPrimary && !img.IsPrimary {
				if err := repos.Media().ClearPrimaryImages(ctx, animalID, img.ID); err != nil {
					return err
				}
			}
			img.IsPrimary = *in.IsPrimary
		}
		image = img
		return repos.Media().UpdateImage(ctx, img)
	})
	if err != nil {
		return nil, err
	}
	return image, nil
}

func (s *MediaService) ListImages(ctx context.Context, animalID string) ([]domain.AnimalImage, error) {
	if _, err := s.store.Animals().FindByID(ctx, animalID); err != nil {
		return nil, err
	}
	return s.store.Media().ListImages(ctx, animalID)
}

// DeleteImage removes the metadata row and then, best effort, the blob. If
// the primary image goes, the next image in display order takes its place.
func (s *MediaService) DeleteImage(ctx context.Context, animalID, imageID string) error {
	var removed *domain.AnimalImage
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos ports.Repositories) error {
		if _, err := repos.Animals().FindByIDForUpdate(ctx, animalID); err != nil {
			return err
		}
		img, err := repos.Media().FindImage(ctx, animalID, imageID)
		if err != nil {
			return err
		}
		if err := repos.Media().DeleteImage(ctx, animalID, imageID); err != nil {
			return err
		}
		removed = img
		if !img.IsPrimary {
			return nil
		}
		rest, err := repos.Media().ListImages(ctx, animalID)
		if err != nil {
			return err
		}
		if len(rest) == 0 {
			return nil
		}
		next := rest[0]
		next.IsPrimary = true
		return repos.Media().UpdateImage(ctx, &next)
	})
	if err != nil {
		return err
	}
	s.deleteBlob(ctx, s.cfg.ImagesContainer, removed.BlobName)
	return nil
}

type DocumentInput struct {
	BlobName     string
	FileName     string
	DocumentType string
	Description  string
}

func (s *MediaService) AddDocument(ctx context.Context, actor *domain.User, animalID string, in DocumentInput) (*domain.AnimalDocument, error) {
	in.FileName = strings.TrimSpace(in.FileName)
	in.DocumentType = strings.TrimSpace(in.DocumentType)
	in.Description = strings.TrimSpace(in.Description)
	if err := validation.ValidateStruct(&in,
		validation.Field(&in.BlobName, validation.Required, validation.Length(1, 400)),
		validation.Field(&in.FileName, validation.Required, validation.Length(1, 255)),
		validation.Field(&in.DocumentType, validation.Length(0, 50)),
		validation.Field(&in.Description, validation.Length(0, 1000)),
	); err != nil {
		return nil, domain.Validationf("%s", err.Error())
	}
	if err := s.checkBlobName(animalID, in.BlobName); err != nil {
		return nil, err
	}

	if _, err := s.store.Animals().FindByID(ctx, animalID); err != nil {
		return nil, err
	}
	doc := &domain.AnimalDocument{
		ID:           newID(),
		AnimalID:     animalID,
		URL:          s.blobs.BlobURL(s.cfg.DocumentsContainer, in.BlobName),
		BlobName:     in.BlobName,
		FileName:     in.FileName,
		DocumentType: in.DocumentType,
		Description:  in.Description,
		UploadedBy:   actorID(actor),
		CreatedAt:    s.now(),
	}
	if err := s.store.Media().CreateDocument(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *MediaService) ListDocuments(ctx context.Context, animalID string) ([]domain.AnimalDocument, error) {
	if _, err := s.store.Animals().FindByID(ctx, animalID); err != nil {
		return nil, err
	}
	return s.store.Media().ListDocuments(ctx, animalID)
}

func (s *MediaService) DocumentDownloadURL(ctx context.Context, animalID, documentID string) (*domain.DownloadTicket, error) {
	doc, err := s.store.Media().FindDocument(ctx, animalID, documentID)
	if err != nil {
		return nil, err
	}
	url, expires, err := s.blobs.DownloadURL(ctx, s.cfg.DocumentsContainer, doc.BlobName, s.cfg.DownloadTTL)
	if err != nil {
		return nil, err
	}
	return &domain.DownloadTicket{DownloadURL: url, ExpiresAt: expires}, nil
}

type DocumentUpdate struct {
	DocumentType *string
	Description  *string
}

func (s *MediaService) UpdateDocument(ctx context.Context, animalID, documentID string, in DocumentUpdate) (*domain.AnimalDocument, error) {
	doc, err := s.store.Media().FindDocument(ctx, animalID, documentID)
	if err != nil {
		return nil, err
	}
	if in.DocumentType != nil {
		doc.DocumentType = strings.TrimSpace(*in.DocumentType)
	}
	if in.Description != nil {
		doc.Description = strings.TrimSpace(*in.Description)
	}
	if len(doc.DocumentType) > 50 || len(doc.Description) > 1000 {
		return nil, domain.Validationf("document_type or description is too long")
	}
	if err := s.store.Media().UpdateDocument(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *MediaService) DeleteDocument(ctx context.Context, animalID, documentID string) error {
	var removed *domain.AnimalDocument
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos ports.Repositories) error {
		doc, err := repos.Media().FindDocument(ctx, animalID, documentID)
		if err != nil {
			return err
		}
		removed = doc
		return repos.Media().DeleteDocument(ctx, animalID, documentID)
	})
	if err != nil {
		return err
	}
	s.deleteBlob(ctx, s.cfg.DocumentsContainer, removed.BlobName)
	return nil
}

func (s *MediaService) deleteBlob(ctx context.Context, container, blobName string) {
	if err := s.blobs.Delete(ctx, container, blobName); err != nil {
		s.logger.Warn("blob delete failed, metadata already removed",
			zap.String("container", container),
			zap.String("blob", blobName),
			zap.Error(err))
	}
}
