package service

import (
	"context"
	"sync"
	"time"

	"github.com/InventorsDev/inventor-backend-sub000/internal/model"
	"github.com/InventorsDev/inventor-backend-sub000/internal/query"
	"github.com/InventorsDev/inventor-backend-sub000/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memStore keeps documents in memory and applies $set updates through a
// bson round trip, so field names match what the repositories write.
type memStore[M any] struct {
	mu      sync.Mutex
	docs    map[primitive.ObjectID]*M
	order   []primitive.ObjectID
	id      func(*M) *primitive.ObjectID
	lastReq *query.Request
	err     error
}

func newMemStore[M any](id func(*M) *primitive.ObjectID) *memStore[M] {
	return &memStore[M]{docs: make(map[primitive.ObjectID]*M), id: id}
}

func clone[M any](m *M) *M {
	c := *m
	return &c
}

func (s *memStore[M]) Create(_ context.Context, doc *M) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	id := s.id(doc)
	if id.IsZero() {
		*id = primitive.NewObjectID()
	}
	if _, ok := s.docs[*id]; ok {
		return repository.ErrDuplicate
	}
	s.docs[*id] = clone(doc)
	s.order = append(s.order, *id)
	return nil
}

func (s *memStore[M]) GetByID(_ context.Context, id primitive.ObjectID) (*M, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	doc, ok := s.docs[id]
	if !ok {
		return nil, nil
	}
	return clone(doc), nil
}

// List records the request and returns every document in insertion order.
func (s *memStore[M]) List(_ context.Context, req *query.Request) ([]M, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastReq = req
	if s.err != nil {
		return nil, 0, s.err
	}
	out := make([]M, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.docs[id])
	}
	return out, int64(len(out)), nil
}

func (s *memStore[M]) Update(_ context.Context, id primitive.ObjectID, set bson.M) (*M, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateLocked(id, set)
}

func (s *memStore[M]) updateLocked(id primitive.ObjectID, set bson.M) (*M, error) {
	if s.err != nil {
		return nil, s.err
	}
	doc, ok := s.docs[id]
	if !ok {
		return nil, nil
	}

	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, err
	}
	fields := bson.M{}
	if err := bson.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	for k, v := range set {
		fields[k] = v
	}
	raw, err = bson.Marshal(fields)
	if err != nil {
		return nil, err
	}
	updated := new(M)
	if err := bson.Unmarshal(raw, updated); err != nil {
		return nil, err
	}
	s.docs[id] = updated
	return clone(updated), nil
}

func (s *memStore[M]) Delete(_ context.Context, id primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	if _, ok := s.docs[id]; !ok {
		return false, nil
	}
	delete(s.docs, id)
	for i, o := range s.order {
		if o == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true, nil
}

func (s *memStore[M]) all() []*M {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*M, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, clone(s.docs[id]))
	}
	return out
}

type fakeUsers struct {
	*memStore[model.User]
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{newMemStore(func(u *model.User) *primitive.ObjectID { return &u.ID })}
}

func (f *fakeUsers) Create(ctx context.Context, u *model.User) error {
	if existing, _ := f.GetByEmail(ctx, u.Email); existing != nil {
		return repository.ErrDuplicate
	}
	return f.memStore.Create(ctx, u)
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range f.all() {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUsers) BumpTokenVersion(_ context.Context, id primitive.ObjectID, set bson.M) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[id]
	if !ok {
		return nil, nil
	}
	set["tokenVersion"] = doc.TokenVersion + 1
	return f.updateLocked(id, set)
}

func (f *fakeUsers) CountByStatus(_ context.Context, _ query.Filter) (map[string]int64, error) {
	counts := map[string]int64{}
	for _, u := range f.all() {
		counts[string(u.Status)]++
	}
	return counts, nil
}

func (f *fakeUsers) ClearExpiredRefreshTokens(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for _, u := range f.all() {
		if u.RefreshTokenExpiresAt != nil && u.RefreshTokenExpiresAt.Before(now) {
			if _, err := f.Update(context.Background(), u.ID, bson.M{"refreshTokenHash": "", "refreshTokenExpiresAt": nil}); err != nil {
				return n, err
			}
			n++
		}
	}
	return n, nil
}

type fakePosts struct {
	*memStore[model.Post]
}

func newFakePosts() *fakePosts {
	return &fakePosts{newMemStore(func(p *model.Post) *primitive.ObjectID { return &p.ID })}
}

func (f *fakePosts) Create(ctx context.Context, p *model.Post) error {
	if existing, _ := f.GetBySlug(ctx, p.Slug); existing != nil {
		return repository.ErrDuplicate
	}
	return f.memStore.Create(ctx, p)
}

func (f *fakePosts) GetBySlug(_ context.Context, slug string) (*model.Post, error) {
	for _, p := range f.all() {
		if p.Slug == slug {
			return p, nil
		}
	}
	return nil, nil
}

type fakeComments struct {
	*memStore[model.Comment]
}

func newFakeComments() *fakeComments {
	return &fakeComments{newMemStore(func(c *model.Comment) *primitive.ObjectID { return &c.ID })}
}

func (f *fakeComments) DeleteByPost(ctx context.Context, postID primitive.ObjectID) (int64, error) {
	var n int64
	for _, c := range f.all() {
		if c.PostID == postID {
			if _, err := f.Delete(ctx, c.ID); err != nil {
				return n, err
			}
			n++
		}
	}
	return n, nil
}

type fakeEvents struct {
	*memStore[model.Event]
}

func newFakeEvents() *fakeEvents {
	return &fakeEvents{newMemStore(func(e *model.Event) *primitive.ObjectID { return &e.ID })}
}

// AddAttendee mirrors the conditional update of the repository: open
// event, not yet registered, seats left.
func (f *fakeEvents) AddAttendee(_ context.Context, id, userID primitive.ObjectID) (*model.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.docs[id]
	if !ok || (e.Status != model.EventUpcoming && e.Status != model.EventOngoing) ||
		e.HasAttendee(userID) || e.SeatsLeft() == 0 {
		return nil, nil
	}
	e.Attendees = append(e.Attendees, userID)
	return clone(e), nil
}

func (f *fakeEvents) RemoveAttendee(_ context.Context, id, userID primitive.ObjectID) (*model.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.docs[id]
	if !ok || !e.HasAttendee(userID) {
		return nil, nil
	}
	kept := e.Attendees[:0:0]
	for _, a := range e.Attendees {
		if a != userID {
			kept = append(kept, a)
		}
	}
	e.Attendees = kept
	return clone(e), nil
}

func (f *fakeEvents) SyncStatuses(_ context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, e := range f.docs {
		if next := e.StatusAt(now); next != e.Status {
			e.Status = next
			n++
		}
	}
	return n, nil
}

type fakeLeads struct {
	*memStore[model.Lead]
}

func newFakeLeads() *fakeLeads {
	return &fakeLeads{newMemStore(func(l *model.Lead) *primitive.ObjectID { return &l.ID })}
}

func (f *fakeLeads) FindRecent(_ context.Context, email, interest string, since time.Time) (*model.Lead, error) {
	for _, l := range f.all() {
		if l.Email == email && l.Interest == interest && !l.CreatedAt.Before(since) {
			return l, nil
		}
	}
	return nil, nil
}

// recordingPublisher captures published topics.
type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
	data   []any
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, data any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	p.data = append(p.data, data)
}

func (p *recordingPublisher) Topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.topics...)
}

// fakeRevoker is an in-memory denylist.
type fakeRevoker struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func (r *fakeRevoker) Revoke(_ context.Context, tokenID string, until time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.revoked == nil {
		r.revoked = map[string]time.Time{}
	}
	r.revoked[tokenID] = until
	return nil
}

func (r *fakeRevoker) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.revoked[tokenID]
	return ok, nil
}

// fixedClock returns a Now func frozen at t.
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
