package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AchilleasB/paws-rescue/rescue-api/internal/core/domain"
	"github.com/AchilleasB/paws-rescue/rescue-api/internal/core/services"
	"github.com/AchilleasB/paws-rescue/rescue-api/internal/mocks"
)

func newMediaService(t *testing.T) (*mocks.Store, *mocks.BlobStore, *services.MediaService, domain.Animal) {
	t.Helper()
	store := mocks.NewStore()
	blobs := mocks.NewBlobStore()
	animal := mocks.NewAnimal("Pixel", domain.StatusAvailable)
	store.SeedAnimal(animal)
	return store, blobs, services.NewMediaService(store, blobs, services.MediaConfig{}, zap.NewNop()), animal
}

func addImage(t *testing.T, svc *services.MediaService, animalID, file string, primary bool) *domain.AnimalImage {
	t.Helper()
	ctx := context.Background()
	ticket, err := svc.RequestImageUpload(ctx, animalID, file)
	require.NoError(t, err)
	img, err := svc.AddImage(ctx, nil, animalID, services.ImageInput{BlobName: ticket.BlobName, IsPrimary: primary})
	require.NoError(t, err)
	return img
}

func TestRequestImageUpload(t *testing.T) {
	_, _, svc, animal := newMediaService(t)
	ctx := context.Background()

	ticket, err := svc.RequestImageUpload(ctx, animal.ID, "../My Photo (1).JPG")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ticket.BlobName, animal.ID+"/"))
	assert.True(t, strings.HasSuffix(ticket.BlobName, "-My_Photo__1_.JPG"))
	assert.NotContains(t, ticket.BlobName, "..")
	assert.Contains(t, ticket.UploadURL, "animal-images/")
	assert.Contains(t, ticket.UploadURL, "sp=cw")
	assert.False(t, ticket.ExpiresAt.IsZero())

	_, err = svc.RequestImageUpload(ctx, animal.ID, " ")
	assert.True(t, errors.Is(err, domain.ErrValidation))

	_, err = svc.RequestImageUpload(ctx, "missing", "a.png")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestAddImage_FirstImageBecomesPrimary(t *testing.T) {
	_, _, svc, animal := newMediaService(t)

	first := addImage(t, svc, animal.ID, "a.png", false)
	second := addImage(t, svc, animal.ID, "b.png", false)

	assert.True(t, first.IsPrimary)
	assert.False(t, second.IsPrimary)
	assert.Equal(t, 0, first.DisplayOrder)
	assert.Equal(t, 1, second.DisplayOrder)
	assert.Equal(t, "https://blobs.test/animal-images/"+first.BlobName, first.URL)
}

func TestAddImage_NewPrimaryDemotesOthers(t *testing.T) {
	_, _, svc, animal := newMediaService(t)
	ctx := context.Background()

	first := addImage(t, svc, animal.ID, "a.png", false)
	second := addImage(t, svc, animal.ID, "b.png", true)
	assert.True(t, second.IsPrimary)

	images, err := svc.ListImages(ctx, animal.ID)
	require.NoError(t, err)
	primaries := 0
	for _, img := range images {
		if img.IsPrimary {
			primaries++
			assert.Equal(t, second.ID, img.ID)
		}
		if img.ID == first.ID {
			assert.False(t, img.IsPrimary)
		}
	}
	assert.Equal(t, 1, primaries)

	// and back again through UpdateImage
	yes := true
	updated, err := svc.UpdateImage(ctx, animal.ID, first.ID, services.ImageUpdate{IsPrimary: &yes})
	require.NoError(t, err)
	assert.True(t, updated.IsPrimary)
	images, _ = svc.ListImages(ctx, animal.ID)
	for _, img := range images {
		assert.Equal(t, img.ID == first.ID, img.IsPrimary)
	}
}

func TestAddImage_RejectsForeignBlob(t *testing.T) {
	_, _, svc, animal := newMediaService(t)
	for _, name := range []string{"other-animal/x.png", animal.ID + "/../x.png", ""} {
		_, err := svc.AddImage(context.Background(), nil, animal.ID, services.ImageInput{BlobName: name})
		assert.True(t, errors.Is(err, domain.ErrValidation), name)
	}
}

func TestDeleteImage_PromotesNextAndDeletesBlob(t *testing.T) {
	_, blobs, svc, animal := newMediaService(t)
	ctx := context.Background()

	first := addImage(t, svc, animal.ID, "a.png", false)
	second := addImage(t, svc, animal.ID, "b.png", false)

	require.NoError(t, svc.DeleteImage(ctx, animal.ID, first.ID))

	images, err := svc.ListImages(ctx, animal.ID)
	require.NoError(t, err)
	require.Len(t, images, 1)
	assert.Equal(t, second.ID, images[0].ID)
	assert.True(t, images[0].IsPrimary)
	assert.Equal(t, []string{"animal-images/" + first.BlobName}, blobs.DeletedBlobs())

	err = svc.DeleteImage(ctx, animal.ID, first.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestDeleteImage_BlobFailureIsNotFatal(t *testing.T) {
	_, blobs, svc, animal := newMediaService(t)
	blobs.DeleteErr = errors.New("storage down")
	img := addImage(t, svc, animal.ID, "a.png", false)

	require.NoError(t, svc.DeleteImage(context.Background(), animal.ID, img.ID))
	images, _ := svc.ListImages(context.Background(), animal.ID)
	assert.Empty(t, images)
}

func TestDocuments(t *testing.T) {
	_, blobs, svc, animal := newMediaService(t)
	ctx := context.Background()

	ticket, err := svc.RequestDocumentUpload(ctx, animal.ID, "vet record.pdf")
	require.NoError(t, err)
	assert.Contains(t, ticket.UploadURL, "animal-documents/")

	doc, err := svc.AddDocument(ctx, nil, animal.ID, services.DocumentInput{
		BlobName:     ticket.BlobName,
		FileName:     "vet record.pdf",
		DocumentType: "Medical",
	})
	require.NoError(t, err)

	docs, err := svc.ListDocuments(ctx, animal.ID)
	require.NoError(t, err)
	require.Len(t, docs, 1)

	dl, err := svc.DocumentDownloadURL(ctx, animal.ID, doc.ID)
	require.NoError(t, err)
	assert.Contains(t, dl.DownloadURL, "sp=r")

	desc := "rabies certificate"
	updated, err := svc.UpdateDocument(ctx, animal.ID, doc.ID, services.DocumentUpdate{Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, desc, updated.Description)
	assert.Equal(t, "Medical", updated.DocumentType)

	_, err = svc.DocumentDownloadURL(ctx, "someone-else", doc.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	require.NoError(t, svc.DeleteDocument(ctx, animal.ID, doc.ID))
	assert.Equal(t, []string{"animal-documents/" + ticket.BlobName}, blobs.DeletedBlobs())
	docs, _ = svc.ListDocuments(ctx, animal.ID)
	assert.Empty(t, docs)
}
