// Package mocks provides in-memory implementations of the core ports for
// tests.
package mocks

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/AchilleasB/paws-rescue/rescue-api/internal/core/domain"
	"github.com/AchilleasB/paws-rescue/rescue-api/internal/core/ports"
)

type tables struct {
	users        map[string]domain.User
	animals      map[string]domain.Animal
	adoptions    map[string]domain.AdoptionHistory
	images       map[string]domain.AnimalImage
	documents    map[string]domain.AnimalDocument
	applications map[string]domain.Application
	fosters      map[string]domain.FosterProfile
	outbox       []domain.Event
}

func newTables() tables {
	return tables{
		users:        map[string]domain.User{},
		animals:      map[string]domain.Animal{},
		adoptions:    map[string]domain.AdoptionHistory{},
		images:       map[string]domain.AnimalImage{},
		documents:    map[string]domain.AnimalDocument{},
		applications: map[string]domain.Application{},
		fosters:      map[string]domain.FosterProfile{},
	}
}

func cloneMap[V any](m map[string]V) map[string]V {
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (t tables) clone() tables {
	return tables{
		users:        cloneMap(t.users),
		animals:      cloneMap(t.animals),
		adoptions:    cloneMap(t.adoptions),
		images:       cloneMap(t.images),
		documents:    cloneMap(t.documents),
		applications: cloneMap(t.applications),
		fosters:      cloneMap(t.fosters),
		outbox:       append([]domain.Event(nil), t.outbox...),
	}
}

// Store is an in-memory ports.Store. Transactions are serialized and roll
// back by restoring a snapshot. The unique and foreign-key constraints the
// services depend on are enforced.
type Store struct {
	txMu sync.Mutex
	mu   sync.Mutex
	t    tables

	// PingErr is returned by Ping.
	PingErr error
	// EnqueueErr makes every outbox write fail.
	EnqueueErr error
}

var _ ports.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{t: newTables()}
}

func (s *Store) Ping(ctx context.Context) error { return s.PingErr }

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, r ports.Repositories) error) (err error) {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.t.clone()
	s.mu.Unlock()

	defer func() {
		if p := recover(); p != nil {
			s.restore(snapshot)
			panic(p)
		}
		if err != nil {
			s.restore(snapshot)
		}
	}()
	return fn(ctx, s)
}

func (s *Store) restore(t tables) {
	s.mu.Lock()
	s.t = t
	s.mu.Unlock()
}

func (s *Store) Users() ports.UserRepository               { return userRepo{s} }
func (s *Store) Animals() ports.AnimalRepository           { return animalRepo{s} }
func (s *Store) Adoptions() ports.AdoptionRepository       { return adoptionRepo{s} }
func (s *Store) Media() ports.MediaRepository              { return mediaRepo{s} }
func (s *Store) Applications() ports.ApplicationRepository { return applicationRepo{s} }
func (s *Store) Fosters() ports.FosterRepository           { return fosterRepo{s} }
func (s *Store) Outbox() ports.OutboxRepository            { return outboxRepo{s} }

// Events returns every committed outbox event in insertion order.
func (s *Store) Events() []domain.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Event(nil), s.t.outbox...)
}

// EventTypes is Events reduced to their types.
func (s *Store) EventTypes() []domain.EventType {
	var out []domain.EventType
	for _, e := range s.Events() {
		out = append(out, e.Type)
	}
	return out
}

// SeedUser inserts u directly, bypassing constraints.
func (s *Store) SeedUser(u domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.t.users[u.ID] = u
}

func (s *Store) SeedAnimal(a domain.Animal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.t.animals[a.ID] = a
}

func (s *Store) SeedFoster(p domain.FosterProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.t.fosters[p.ID] = p
}

func (s *Store) SeedApplication(a domain.Application) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.t.applications[a.ID] = a
}

func (s *Store) SeedImage(img domain.AnimalImage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.t.images[img.ID] = img
}

func (s *Store) SeedDocument(doc domain.AnimalDocument) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.t.documents[doc.ID] = doc
}

func (s *Store) SeedAdoption(h domain.AdoptionHistory) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.t.adoptions[h.ID] = h
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// users

type userRepo struct{ s *Store }

func (r userRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.t.users[id]
	if !ok {
		return nil, domain.NotFoundf("user not found")
	}
	return &u, nil
}

func (r userRepo) FindBySubject(ctx context.Context, subject string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.t.users {
		if u.Subject != nil && *u.Subject == subject {
			u := u
			return &u, nil
		}
	}
	return nil, domain.NotFoundf("user not found")
}

func (r userRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.t.users {
		if strings.EqualFold(u.Email, email) {
			u := u
			return &u, nil
		}
	}
	return nil, domain.NotFoundf("user not found")
}

func (r userRepo) conflicts(u *domain.User) bool {
	for id, other := range r.s.t.users {
		if id == u.ID {
			continue
		}
		if strings.EqualFold(other.Email, u.Email) {
			return true
		}
		if u.Subject != nil && other.Subject != nil && *u.Subject == *other.Subject {
			return true
		}
	}
	return false
}

func (r userRepo) Create(ctx context.Context, u *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.t.users[u.ID]; ok || r.conflicts(u) {
		return domain.Conflictf("user already exists")
	}
	r.s.t.users[u.ID] = *u
	return nil
}

func (r userRepo) Update(ctx context.Context, u *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.t.users[u.ID]; !ok {
		return domain.NotFoundf("user not found")
	}
	if r.conflicts(u) {
		return domain.Conflictf("user already exists")
	}
	r.s.t.users[u.ID] = *u
	return nil
}

func (r userRepo) List(ctx context.Context, f domain.UserFilter) ([]domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domain.User{}
	for _, u := range r.s.t.users {
		if f.Role != nil && u.Role != *f.Role {
			continue
		}
		if f.ActiveOnly && !u.IsActive {
			continue
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastName != out[j].LastName {
			return out[i].LastName < out[j].LastName
		}
		if out[i].FirstName != out[j].FirstName {
			return out[i].FirstName < out[j].FirstName
		}
		return out[i].Email < out[j].Email
	})
	return page(out, f.Limit, f.Offset), nil
}

// animals

type animalRepo struct{ s *Store }

func (r animalRepo) FindByID(ctx context.Context, id string) (*domain.Animal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.t.animals[id]
	if !ok {
		return nil, domain.NotFoundf("animal not found")
	}
	return &a, nil
}

func (r animalRepo) FindByIDForUpdate(ctx context.Context, id string) (*domain.Animal, error) {
	return r.FindByID(ctx, id)
}

func (r animalRepo) checkRefs(a *domain.Animal) error {
	if a.CurrentFosterUserID != nil {
		if _, ok := r.s.t.users[*a.CurrentFosterUserID]; !ok {
			return domain.Validationf("animal references a missing record")
		}
	}
	return nil
}

func (r animalRepo) Create(ctx context.Context, a *domain.Animal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.t.animals[a.ID]; ok {
		return domain.Conflictf("animal already exists")
	}
	if err := r.checkRefs(a); err != nil {
		return err
	}
	r.s.t.animals[a.ID] = *a
	return nil
}

func (r animalRepo) Update(ctx context.Context, a *domain.Animal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.t.animals[a.ID]; !ok {
		return domain.NotFoundf("animal not found")
	}
	if err := r.checkRefs(a); err != nil {
		return err
	}
	r.s.t.animals[a.ID] = *a
	return nil
}

func (r animalRepo) Search(ctx context.Context, f domain.AnimalFilter) ([]domain.Animal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	contains := func(s, sub string) bool { return strings.Contains(strings.ToLower(s), strings.ToLower(sub)) }

	out := []domain.Animal{}
	for _, a := range r.s.t.animals {
		switch {
		case f.AnimalType != "" && !strings.EqualFold(a.AnimalType, f.AnimalType):
		case f.Breed != "" && !contains(a.Breed, f.Breed):
		case f.Gender != "" && !strings.EqualFold(a.Gender, f.Gender):
		case f.Status != nil && a.AdoptionStatus != *f.Status:
		case f.Name != "" && !contains(a.Name, f.Name):
		default:
			out = append(out, a)
		}
	}

	less := func(a, b domain.Animal) int {
		switch f.SortBy {
		case domain.SortByName:
			return strings.Compare(a.Name, b.Name)
		case domain.SortByDateOfBirth:
			switch {
			case a.DateOfBirth == nil && b.DateOfBirth == nil:
				return 0
			case a.DateOfBirth == nil:
				return 2 // NULLS LAST in both directions
			case b.DateOfBirth == nil:
				return -2
			}
			return a.DateOfBirth.Compare(*b.DateOfBirth)
		default:
			return a.CreatedAt.Compare(b.CreatedAt)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		c := less(out[i], out[j])
		if c == 2 || c == -2 {
			return c < 0
		}
		if f.Descending {
			c = -c
		}
		if c != 0 {
			return c < 0
		}
		return out[i].ID < out[j].ID
	})
	return page(out, f.Limit, f.Offset), nil
}

func (r animalRepo) ListByFoster(ctx context.Context, userID string) ([]domain.Animal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domain.Animal{}
	for _, a := range r.s.t.animals {
		if a.CurrentFosterUserID != nil && *a.CurrentFosterUserID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// adoption history

type adoptionRepo struct{ s *Store }

func (r adoptionRepo) FindActiveForUpdate(ctx context.Context, animalID string) (*domain.AdoptionHistory, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, h := range r.s.t.adoptions {
		if h.AnimalID == animalID && h.IsActive() {
			h := h
			return &h, nil
		}
	}
	return nil, domain.NotFoundf("adoption record not found")
}

func (r adoptionRepo) Create(ctx context.Context, h *domain.AdoptionHistory) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.t.animals[h.AnimalID]; !ok {
		return domain.Validationf("adoption record references a missing record")
	}
	if h.IsActive() {
		for _, other := range r.s.t.adoptions {
			if other.AnimalID == h.AnimalID && other.IsActive() {
				return domain.Conflictf("adoption record already exists")
			}
		}
	}
	r.s.t.adoptions[h.ID] = *h
	return nil
}

func (r adoptionRepo) Update(ctx context.Context, h *domain.AdoptionHistory) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.t.adoptions[h.ID]; !ok {
		return domain.NotFoundf("adoption record not found")
	}
	r.s.t.adoptions[h.ID] = *h
	return nil
}

func (r adoptionRepo) ListByAnimal(ctx context.Context, animalID string) ([]domain.AdoptionHistory, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domain.AdoptionHistory{}
	for _, h := range r.s.t.adoptions {
		if h.AnimalID == animalID {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AdoptionDate.After(out[j].AdoptionDate) })
	return out, nil
}

// media

type mediaRepo struct{ s *Store }

func (r mediaRepo) FindImage(ctx context.Context, animalID, imageID string) (*domain.AnimalImage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	img, ok := r.s.t.images[imageID]
	if !ok || img.AnimalID != animalID {
		return nil, domain.NotFoundf("image not found")
	}
	return &img, nil
}

func (r mediaRepo) ListImages(ctx context.Context, animalID string) ([]domain.AnimalImage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domain.AnimalImage{}
	for _, img := range r.s.t.images {
		if img.AnimalID == animalID {
			out = append(out, img)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DisplayOrder != out[j].DisplayOrder {
			return out[i].DisplayOrder < out[j].DisplayOrder
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r mediaRepo) HasPrimaryImage(ctx context.Context, animalID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, img := range r.s.t.images {
		if img.AnimalID == animalID && img.IsPrimary {
			return true, nil
		}
	}
	return false, nil
}

func (r mediaRepo) ClearPrimaryImages(ctx context.Context, animalID, exceptID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, img := range r.s.t.images {
		if img.AnimalID == animalID && id != exceptID && img.IsPrimary {
			img.IsPrimary = false
			r.s.t.images[id] = img
		}
	}
	return nil
}

func (r mediaRepo) primaryTaken(img *domain.AnimalImage) bool {
	if !img.IsPrimary {
		return false
	}
	for id, other := range r.s.t.images {
		if id != img.ID && other.AnimalID == img.AnimalID && other.IsPrimary {
			return true
		}
	}
	return false
}

func (r mediaRepo) CreateImage(ctx context.Context, img *domain.AnimalImage) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.t.animals[img.AnimalID]; !ok {
		return domain.Validationf("image references a missing record")
	}
	if r.primaryTaken(img) {
		return domain.Conflictf("image already exists")
	}
	r.s.t.images[img.ID] = *img
	return nil
}

func (r mediaRepo) UpdateImage(ctx context.Context, img *domain.AnimalImage) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.t.images[img.ID]; !ok {
		return domain.NotFoundf("image not found")
	}
	if r.primaryTaken(img) {
		return domain.Conflictf("image already exists")
	}
	r.s.t.images[img.ID] = *img
	return nil
}

func (r mediaRepo) DeleteImage(ctx context.Context, animalID, imageID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	img, ok := r.s.t.images[imageID]
	if !ok || img.AnimalID != animalID {
		return domain.NotFoundf("image not found")
	}
	delete(r.s.t.images, imageID)
	return nil
}

func (r mediaRepo) FindDocument(ctx context.Context, animalID, documentID string) (*domain.AnimalDocument, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	doc, ok := r.s.t.documents[documentID]
	if !ok || doc.AnimalID != animalID {
		return nil, domain.NotFoundf("document not found")
	}
	return &doc, nil
}

func (r mediaRepo) ListDocuments(ctx context.Context, animalID string) ([]domain.AnimalDocument, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domain.AnimalDocument{}
	for _, doc := range r.s.t.documents {
		if doc.AnimalID == animalID {
			out = append(out, doc)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r mediaRepo) CreateDocument(ctx context.Context, doc *domain.AnimalDocument) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.t.animals[doc.AnimalID]; !ok {
		return domain.Validationf("document references a missing record")
	}
	r.s.t.documents[doc.ID] = *doc
	return nil
}

func (r mediaRepo) UpdateDocument(ctx context.Context, doc *domain.AnimalDocument) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.t.documents[doc.ID]; !ok {
		return domain.NotFoundf("document not found")
	}
	r.s.t.documents[doc.ID] = *doc
	return nil
}

func (r mediaRepo) DeleteDocument(ctx context.Context, animalID, documentID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	doc, ok := r.s.t.documents[documentID]
	if !ok || doc.AnimalID != animalID {
		return domain.NotFoundf("document not found")
	}
	delete(r.s.t.documents, documentID)
	return nil
}

// applications

type applicationRepo struct{ s *Store }

func (r applicationRepo) FindByID(ctx context.Context, id string) (*domain.Application, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.t.applications[id]
	if !ok {
		return nil, domain.NotFoundf("application not found")
	}
	return &a, nil
}

func (r applicationRepo) FindByIDForUpdate(ctx context.Context, id string) (*domain.Application, error) {
	return r.FindByID(ctx, id)
}

func (r applicationRepo) Create(ctx context.Context, a *domain.Application) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if a.AnimalID != nil {
		if _, ok := r.s.t.animals[*a.AnimalID]; !ok {
			return domain.Validationf("application references a missing record")
		}
	}
	r.s.t.applications[a.ID] = *a
	return nil
}

func (r applicationRepo) Update(ctx context.Context, a *domain.Application) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.t.applications[a.ID]; !ok {
		return domain.NotFoundf("application not found")
	}
	r.s.t.applications[a.ID] = *a
	return nil
}

func (r applicationRepo) List(ctx context.Context, f domain.ApplicationFilter) ([]domain.Application, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domain.Application{}
	for _, a := range r.s.t.applications {
		if f.Kind != nil && a.Kind != *f.Kind {
			continue
		}
		if f.Status != nil && a.Status != *f.Status {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].SubmittedAt.Equal(out[j].SubmittedAt) {
			return out[i].SubmittedAt.After(out[j].SubmittedAt)
		}
		return out[i].ID < out[j].ID
	})
	return page(out, f.Limit, f.Offset), nil
}

// foster profiles

type fosterRepo struct{ s *Store }

func (r fosterRepo) FindByUserID(ctx context.Context, userID string) (*domain.FosterProfile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.t.fosters {
		if p.UserID == userID {
			p := p
			return &p, nil
		}
	}
	return nil, domain.NotFoundf("foster profile not found")
}

func (r fosterRepo) Create(ctx context.Context, p *domain.FosterProfile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.t.users[p.UserID]; !ok {
		return domain.Validationf("foster profile references a missing record")
	}
	for _, other := range r.s.t.fosters {
		if other.UserID == p.UserID {
			return domain.Conflictf("foster profile already exists")
		}
	}
	r.s.t.fosters[p.ID] = *p
	return nil
}

func (r fosterRepo) Update(ctx context.Context, p *domain.FosterProfile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.t.fosters[p.ID]; !ok {
		return domain.NotFoundf("foster profile not found")
	}
	r.s.t.fosters[p.ID] = *p
	return nil
}

func (r fosterRepo) List(ctx context.Context, activeOnly bool) ([]domain.FosterProfile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domain.FosterProfile{}
	for _, p := range r.s.t.fosters {
		if activeOnly && !p.IsActive {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// outbox

type outboxRepo struct{ s *Store }

func (r outboxRepo) Enqueue(ctx context.Context, evt domain.Event) error {
	if r.s.EnqueueErr != nil {
		return r.s.EnqueueErr
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.t.outbox = append(r.s.t.outbox, evt)
	return nil
}
