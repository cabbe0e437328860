package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/AchilleasB/paws-rescue/rescue-api/internal/core/domain"
	"github.com/AchilleasB/paws-rescue/rescue-api/internal/core/ports"
)

// BlobStore hands out fake SAS URLs and records deletions.
type BlobStore struct {
	mu      sync.Mutex
	Deleted []string

	// DeleteErr is returned by Delete after recording the call.
	DeleteErr error
	// SignErr is returned by UploadURL and DownloadURL.
	SignErr error
	Now     func() time.Time
}

var _ ports.BlobStore = (*BlobStore)(nil)

func NewBlobStore() *BlobStore {
	return &BlobStore{Now: time.Now}
}

func (b *BlobStore) sign(container, blobName, perms string, ttl time.Duration) (string, time.Time, error) {
	if b.SignErr != nil {
		return "", time.Time{}, b.SignErr
	}
	expires := b.Now().Add(ttl)
	return fmt.Sprintf("%s?sp=%s&se=%d", b.BlobURL(container, blobName), perms, expires.Unix()), expires, nil
}

func (b *BlobStore) UploadURL(ctx context.Context, container, blobName string, ttl time.Duration) (string, time.Time, error) {
	return b.sign(container, blobName, "cw", ttl)
}

func (b *BlobStore) DownloadURL(ctx context.Context, container, blobName string, ttl time.Duration) (string, time.Time, error) {
	return b.sign(container, blobName, "r", ttl)
}

func (b *BlobStore) BlobURL(container, blobName string) string {
	return "https://blobs.test/" + container + "/" + blobName
}

func (b *BlobStore) Delete(ctx context.Context, container, blobName string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Deleted = append(b.Deleted, container+"/"+blobName)
	return b.DeleteErr
}

func (b *BlobStore) DeletedBlobs() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.Deleted...)
}

// TokenVerifier maps raw tokens to identities. Unknown tokens are rejected
// as unauthenticated unless Err is set.
type TokenVerifier struct {
	Tokens map[string]*ports.TokenIdentity
	Err    error
}

var _ ports.TokenVerifier = (*TokenVerifier)(nil)

func NewTokenVerifier() *TokenVerifier {
	return &TokenVerifier{Tokens: map[string]*ports.TokenIdentity{}}
}

func (v *TokenVerifier) Verify(ctx context.Context, rawToken string) (*ports.TokenIdentity, error) {
	if v.Err != nil {
		return nil, v.Err
	}
	id, ok := v.Tokens[rawToken]
	if !ok {
		return nil, domain.Unauthenticatedf("invalid token")
	}
	return id, nil
}

// EventPublisher records published events.
type EventPublisher struct {
	mu        sync.Mutex
	Published []domain.Event
	// PublishErr fails every call after the first FailAfter successes.
	PublishErr error
	FailAfter  int
	calls      int
}

var _ ports.EventPublisher = (*EventPublisher)(nil)

func (p *EventPublisher) Publish(ctx context.Context, evt domain.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.PublishErr != nil && p.calls > p.FailAfter {
		return p.PublishErr
	}
	p.Published = append(p.Published, evt)
	return nil
}

func (p *EventPublisher) Events() []domain.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.Event(nil), p.Published...)
}

// Mailer records sent e-mails.
type Mailer struct {
	mu      sync.Mutex
	Sent    []ports.Email
	SendErr error
}

var _ ports.Mailer = (*Mailer)(nil)

func (m *Mailer) Send(ctx context.Context, email ports.Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SendErr != nil {
		return m.SendErr
	}
	m.Sent = append(m.Sent, email)
	return nil
}

func (m *Mailer) Emails() []ports.Email {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ports.Email(nil), m.Sent...)
}
