package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/maheshrc27/listing-api/internal/models"
	"github.com/maheshrc27/listing-api/internal/repository"
	"github.com/maheshrc27/listing-api/internal/transfer"
)

// memStore backs the in-memory repositories. fakeTransactor snapshots it so
// a failed transaction leaves no trace.
type memStore struct {
	mu     sync.Mutex
	clock  time.Time
	posts  map[uuid.UUID]models.Post
	assets []models.Asset
	syncs  []models.PlatformSync

	upsertErr error
}

func newMemStore() *memStore {
	return &memStore{
		clock: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
		posts: map[uuid.UUID]models.Post{},
	}
}

func (s *memStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *memStore) post(id uuid.UUID) models.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.posts[id]
}

func (s *memStore) assetsOf(postID uuid.UUID) []models.Asset {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Asset
	for _, a := range s.assets {
		if a.PostID == postID {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

func (s *memStore) syncOf(postID uuid.UUID, platform models.Platform) *models.PlatformSync {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ps := range s.syncs {
		if ps.PostID == postID && ps.Platform == platform {
			out := ps
			return &out
		}
	}
	return nil
}

func (s *memStore) seedPost(p models.Post) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.ProjectDetails.Features == nil {
		p.ProjectDetails.Features = []string{}
	}
	p.CreatedAt = s.tick()
	p.UpdatedAt = p.CreatedAt
	s.posts[p.ID] = p
	return p.ID
}

func (s *memStore) seedAsset(a models.Asset) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	a.CreatedAt = s.tick()
	s.assets = append(s.assets, a)
	return a.ID
}

type fakeTransactor struct {
	s *memStore
}

func (t fakeTransactor) WithinTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	t.s.mu.Lock()
	posts := make(map[uuid.UUID]models.Post, len(t.s.posts))
	for k, v := range t.s.posts {
		posts[k] = v
	}
	assets := append([]models.Asset(nil), t.s.assets...)
	syncs := append([]models.PlatformSync(nil), t.s.syncs...)
	t.s.mu.Unlock()

	if err := fn(nil); err != nil {
		t.s.mu.Lock()
		t.s.posts, t.s.assets, t.s.syncs = posts, assets, syncs
		t.s.mu.Unlock()
		return err
	}
	return nil
}

type fakePostRepo struct {
	s *memStore
}

func (r fakePostRepo) Create(ctx context.Context, tx *sql.Tx, post *models.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if post.ID == uuid.Nil {
		post.ID = uuid.New()
	}
	post.CreatedAt = r.s.tick()
	post.UpdatedAt = post.CreatedAt
	r.s.posts[post.ID] = *post
	return nil
}

func (r fakePostRepo) GetByID(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*models.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.posts[id]
	if !ok || p.DeletedAt != nil {
		return nil, nil
	}
	return &p, nil
}

func (r fakePostRepo) GetForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*models.Post, error) {
	return r.GetByID(ctx, tx, id)
}

func (r fakePostRepo) List(ctx context.Context, opts repository.ListPostsOptions) ([]*models.Post, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var matched []*models.Post
	for _, p := range r.s.posts {
		if p.DeletedAt != nil {
			continue
		}
		if len(opts.Statuses) > 0 && !containsStatus(opts.Statuses, p.Status) {
			continue
		}
		if opts.Search != "" && !strings.Contains(strings.ToLower(p.Title), strings.ToLower(opts.Search)) {
			continue
		}
		p := p
		matched = append(matched, &p)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID.String() > matched[j].ID.String()
	})

	total := len(matched)
	start := (opts.Page - 1) * opts.Limit
	if start > total {
		start = total
	}
	end := start + opts.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func containsStatus(list []models.PostStatus, s models.PostStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func (r fakePostRepo) Update(ctx context.Context, tx *sql.Tx, id uuid.UUID, u repository.PostUpdate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p := r.s.posts[id]
	if u.Title != nil {
		p.Title = *u.Title
	}
	if u.Description != nil {
		p.Description = u.Description
	}
	if u.ProjectDetails != nil {
		p.ProjectDetails = *u.ProjectDetails
	}
	if u.UseAiImage != nil {
		p.UseAiImage = *u.UseAiImage
	}
	if u.UseAiVideo != nil {
		p.UseAiVideo = *u.UseAiVideo
	}
	if u.UseAiText != nil {
		p.UseAiText = *u.UseAiText
	}
	if u.AiPromptOverride != nil {
		p.AiPromptOverride = u.AiPromptOverride
	}
	p.UpdatedAt = r.s.tick()
	r.s.posts[id] = p
	return nil
}

func (r fakePostRepo) UpdateStatus(ctx context.Context, tx *sql.Tx, id uuid.UUID, status models.PostStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p := r.s.posts[id]
	p.Status = status
	p.UpdatedAt = r.s.tick()
	r.s.posts[id] = p
	return nil
}

func (r fakePostRepo) CompareAndSetStatus(ctx context.Context, tx *sql.Tx, id uuid.UUID, from, to models.PostStatus) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.posts[id]
	if !ok || p.DeletedAt != nil || p.Status != from {
		return false, nil
	}
	p.Status = to
	p.UpdatedAt = r.s.tick()
	r.s.posts[id] = p
	return true, nil
}

func (r fakePostRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p := r.s.posts[id]
	now := r.s.tick()
	p.DeletedAt = &now
	r.s.posts[id] = p
	return nil
}

func (r fakePostRepo) CountByStatus(ctx context.Context) (map[models.PostStatus]int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	counts := map[models.PostStatus]int{}
	for _, st := range models.PostStatuses {
		counts[st] = 0
	}
	for _, p := range r.s.posts {
		if p.DeletedAt == nil {
			counts[p.Status]++
		}
	}
	return counts, nil
}

func (r fakePostRepo) ExpirePending(ctx context.Context, updatedBefore time.Time) ([]uuid.UUID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var ids []uuid.UUID
	for id, p := range r.s.posts {
		if p.DeletedAt == nil && p.Status == models.PostStatusPendingAI && p.UpdatedAt.Before(updatedBefore) {
			p.Status = models.PostStatusFailed
			r.s.posts[id] = p
			ids = append(ids, id)
		}
	}
	return ids, nil
}

type fakeAssetRepo struct {
	s *memStore
}

func (r fakeAssetRepo) Create(ctx context.Context, tx *sql.Tx, a *models.Asset) error {
	return r.CreateMany(ctx, tx, []*models.Asset{a})
}

func (r fakeAssetRepo) CreateMany(ctx context.Context, tx *sql.Tx, assets []*models.Asset) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range assets {
		if a.ID == uuid.Nil {
			a.ID = uuid.New()
		}
		a.CreatedAt = r.s.tick()
		r.s.assets = append(r.s.assets, *a)
	}
	return nil
}

func (r fakeAssetRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Asset, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.assets {
		if a.ID == id {
			return &a, nil
		}
	}
	return nil, nil
}

func (r fakeAssetRepo) ListByPostID(ctx context.Context, tx *sql.Tx, postID uuid.UUID) ([]*models.Asset, error) {
	out := []*models.Asset{}
	for _, a := range r.s.assetsOf(postID) {
		a := a
		out = append(out, &a)
	}
	return out, nil
}

func (r fakeAssetRepo) ListByPostIDs(ctx context.Context, postIDs []uuid.UUID) (map[uuid.UUID][]*models.Asset, error) {
	out := map[uuid.UUID][]*models.Asset{}
	for _, id := range postIDs {
		list, _ := r.ListByPostID(ctx, nil, id)
		if len(list) > 0 {
			out[id] = list
		}
	}
	return out, nil
}

func (r fakeAssetRepo) MaxOrder(ctx context.Context, tx *sql.Tx, postID uuid.UUID) (int, error) {
	highest := -1
	for _, a := range r.s.assetsOf(postID) {
		if a.Order > highest {
			highest = a.Order
		}
	}
	return highest, nil
}

func (r fakeAssetRepo) UpdateOrder(ctx context.Context, tx *sql.Tx, id uuid.UUID, order int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.assets {
		if r.s.assets[i].ID == id {
			r.s.assets[i].Order = order
		}
	}
	return nil
}

func (r fakeAssetRepo) DeleteBySource(ctx context.Context, tx *sql.Tx, postID uuid.UUID, source models.AssetSource) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.assets[:0:0]
	for _, a := range r.s.assets {
		if a.PostID == postID && a.Source == source {
			continue
		}
		kept = append(kept, a)
	}
	r.s.assets = kept
	return nil
}

func (r fakeAssetRepo) Remove(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.assets[:0:0]
	for _, a := range r.s.assets {
		if a.ID != id {
			kept = append(kept, a)
		}
	}
	r.s.assets = kept
	return nil
}

type fakeSyncRepo struct {
	s *memStore
}

func (r fakeSyncRepo) Upsert(ctx context.Context, tx *sql.Tx, ps *models.PlatformSync) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.upsertErr != nil {
		return r.s.upsertErr
	}
	for i, existing := range r.s.syncs {
		if existing.PostID == ps.PostID && existing.Platform == ps.Platform {
			ps.ID = existing.ID
			r.s.syncs[i] = *ps
			return nil
		}
	}
	ps.ID = uuid.New()
	r.s.syncs = append(r.s.syncs, *ps)
	return nil
}

func (r fakeSyncRepo) GetByPostAndPlatform(ctx context.Context, postID uuid.UUID, platform models.Platform) (*models.PlatformSync, error) {
	return r.s.syncOf(postID, platform), nil
}

func (r fakeSyncRepo) ListByPostID(ctx context.Context, postID uuid.UUID) ([]*models.PlatformSync, error) {
	out := []*models.PlatformSync{}
	if ps := r.s.syncOf(postID, models.PlatformFacebook); ps != nil {
		out = append(out, ps)
	}
	return out, nil
}

func (r fakeSyncRepo) ListByPostIDs(ctx context.Context, postIDs []uuid.UUID) (map[uuid.UUID][]*models.PlatformSync, error) {
	out := map[uuid.UUID][]*models.PlatformSync{}
	for _, id := range postIDs {
		if list, _ := r.ListByPostID(ctx, id); len(list) > 0 {
			out[id] = list
		}
	}
	return out, nil
}

type fakeQueueRepo struct{}

func (fakeQueueRepo) GetByPostID(ctx context.Context, postID uuid.UUID) (*models.PublishingQueue, error) {
	return nil, nil
}

type fakeLogRepo struct{}

func (fakeLogRepo) ListByPostID(ctx context.Context, postID uuid.UUID) ([]*models.AiGenerationLog, error) {
	return []*models.AiGenerationLog{}, nil
}

type fakeN8N struct {
	mu       sync.Mutex
	err      error
	payloads []*transfer.TriggerPayload
	// onTrigger runs before Trigger returns, like an engine that answers
	// its callbacks within the same request.
	onTrigger func(ctx context.Context, payload *transfer.TriggerPayload)
}

func (f *fakeN8N) Trigger(ctx context.Context, payload *transfer.TriggerPayload) error {
	f.mu.Lock()
	f.payloads = append(f.payloads, payload)
	hook, err := f.onTrigger, f.err
	f.mu.Unlock()

	if hook != nil {
		hook(ctx, payload)
	}
	return err
}

func (f *fakeN8N) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.payloads)
}

type fakeDispatcher struct {
	err  error
	jobs []TriggerJob
}

func (f *fakeDispatcher) Dispatch(ctx context.Context, job TriggerJob) error {
	f.jobs = append(f.jobs, job)
	return f.err
}

var errStore = errors.New("store unavailable")

// fixture wires the real services over the in-memory store.
type fixture struct {
	store      *memStore
	n8n        *fakeN8N
	dispatcher *fakeDispatcher
	wf         WorkflowService
	posts      PostService
	callbacks  CallbackService
}

func newFixture() *fixture {
	s := newMemStore()
	n8n := &fakeN8N{}
	d := &fakeDispatcher{}
	tr := fakeTransactor{s}
	pr, ar, sr := fakePostRepo{s}, fakeAssetRepo{s}, fakeSyncRepo{s}

	wf := NewWorkflowService(pr, ar, n8n, "https://api.example.com")
	return &fixture{
		store:      s,
		n8n:        n8n,
		dispatcher: d,
		wf:         wf,
		posts:      NewPostService(tr, pr, ar, sr, fakeQueueRepo{}, fakeLogRepo{}, wf, d),
		callbacks:  NewCallbackService(tr, pr, ar, sr),
	}
}

func validCreation() *transfer.PostCreation {
	return &transfer.PostCreation{
		Title: "Sea view apartment",
		ProjectDetails: transfer.ProjectDetails{
			Name:     "Riverside",
			Price:    125000,
			Location: "Da Nang",
			Features: []string{"pool", "gym"},
		},
	}
}

func strPtr(s string) *string { return &s }
