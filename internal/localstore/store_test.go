package localstore

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tovakustatus-backend/internal/infrastructure/memory"
	"tovakustatus-backend/internal/model"
)

func newTestStore(t *testing.T, opts ...Option) (*Store, *memory.Store) {
	t.Helper()
	backend := memory.NewStore()
	seq := 0
	opts = append([]Option{WithIDGenerator(func() string {
		seq++
		return fmt.Sprintf("id-%03d", seq)
	})}, opts...)
	s := New(backend, opts...)
	require.NoError(t, s.Initialize(context.Background()))
	return s, backend
}

func TestInitialize_SeedsOnceAndIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s, backend := newTestStore(t)

	before, _, err := backend.Get(ctx, KeyTalents)
	require.NoError(t, err)
	require.NotEmpty(t, before)

	require.NoError(t, s.Initialize(ctx))
	after, _, err := backend.Get(ctx, KeyTalents)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestInitialize_DoesNotOverwriteExistingData(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	talents := NewRepository[model.Talent](s, KeyTalents)

	added, err := talents.Add(ctx, model.Talent{Name: "Zuri", Age: 15, TalentType: model.TalentDance})
	require.NoError(t, err)

	require.NoError(t, s.Initialize(ctx))

	got, err := talents.GetByID(ctx, added.ID)
	require.NoError(t, err)
	assert.Equal(t, "Zuri", got.Name)
}

func TestInitialize_ReseedsCorruptedValue(t *testing.T) {
	ctx := context.Background()
	s, backend := newTestStore(t)
	require.NoError(t, backend.Set(ctx, KeyEvents, "{broken"))

	events := NewRepository[model.Event](s, KeyEvents)
	all, err := events.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all, "corrupt data reads as absent")

	require.NoError(t, s.Initialize(ctx))
	all, err = events.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, len(seedEvents()))
}

func TestRepository_AddThenGetByID(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	projects := NewRepository[model.Project](s, KeyProjects)

	input := model.Project{
		ID:           "ignored",
		Title:        "Drama Club",
		Description:  "After-school theatre",
		Date:         "May 2024",
		Participants: 18,
		ImageURL:     "/img/drama.jpg",
		Status:       "Planned",
	}
	created, err := projects.Add(ctx, input)
	require.NoError(t, err)
	assert.NotEqual(t, "ignored", created.ID)

	got, err := projects.GetByID(ctx, created.ID)
	require.NoError(t, err)

	want := input
	want.ID = created.ID
	assert.Equal(t, want, got)
}

func TestRepository_AddAppendsInOrder(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	blogs := NewRepository[model.BlogPost](s, KeyBlogPosts)

	first, err := blogs.Add(ctx, model.BlogPost{Title: "A", Excerpt: "a", Author: "x"})
	require.NoError(t, err)
	second, err := blogs.Add(ctx, model.BlogPost{Title: "B", Excerpt: "b", Author: "x"})
	require.NoError(t, err)

	all, err := blogs.GetAll(ctx)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(all), 2)
	assert.Equal(t, first.ID, all[len(all)-2].ID)
	assert.Equal(t, second.ID, all[len(all)-1].ID)
}

func TestRepository_UpdateMergesPartial(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	talents := NewRepository[model.Talent](s, KeyTalents)

	original, err := talents.GetByID(ctx, "1")
	require.NoError(t, err)

	updated, err := talents.Update(ctx, "1", map[string]any{"status": "Alumni", "age": 17, "id": "hijack"})
	require.NoError(t, err)

	assert.Equal(t, "1", updated.ID)
	assert.Equal(t, "Alumni", updated.Status)
	assert.Equal(t, 17, updated.Age)
	assert.Equal(t, original.Name, updated.Name)
	assert.Equal(t, original.Description, updated.Description)
	assert.Equal(t, original.Views, updated.Views)

	stored, err := talents.GetByID(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, updated, stored)
}

func TestRepository_UpdateMissingIDDoesNotUpsert(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	talents := NewRepository[model.Talent](s, KeyTalents)

	before, err := talents.Count(ctx)
	require.NoError(t, err)

	_, err = talents.Update(ctx, "does-not-exist", map[string]any{"name": "Ghost"})
	assert.ErrorIs(t, err, ErrNotFound)

	after, err := talents.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestRepository_UpdateRejectsBadPartial(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	talents := NewRepository[model.Talent](s, KeyTalents)

	_, err := talents.Update(ctx, "1", map[string]any{"age": "seventeen"})
	assert.ErrorIs(t, err, ErrInvalidPartial)

	got, err := talents.GetByID(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, 16, got.Age)
}

func TestRepository_Delete(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	events := NewRepository[model.Event](s, KeyEvents)

	before, err := events.Count(ctx)
	require.NoError(t, err)

	require.NoError(t, events.Delete(ctx, "missing"))
	count, err := events.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, count)

	require.NoError(t, events.Delete(ctx, "1"))
	count, err = events.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, before-1, count)

	_, err = events.GetByID(ctx, "1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNewsletter_FirstSubscriber(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	subs := NewRepository[model.NewsletterSubscriber](s, KeySubscribers)

	all, err := subs.GetAll(ctx)
	require.NoError(t, err)
	require.Empty(t, all)

	_, err = subs.Add(ctx, model.NewsletterSubscriber{Email: "a@b.com", Name: "A"})
	require.NoError(t, err)

	all, err = subs.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.NotEmpty(t, all[0].ID)
	assert.Equal(t, "a@b.com", all[0].Email)
	assert.Equal(t, "A", all[0].Name)
}

func TestRepository_AddIfAbsent(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	subs := NewRepository[model.NewsletterSubscriber](s, KeySubscribers)
	sameEmail := func(email string) func(model.NewsletterSubscriber) bool {
		return func(existing model.NewsletterSubscriber) bool { return existing.Email == email }
	}

	first, added, err := subs.AddIfAbsent(ctx, model.NewsletterSubscriber{Email: "a@b.com", Name: "A"}, sameEmail("a@b.com"))
	require.NoError(t, err)
	assert.True(t, added)

	again, added, err := subs.AddIfAbsent(ctx, model.NewsletterSubscriber{Email: "a@b.com", Name: "B"}, sameEmail("a@b.com"))
	require.NoError(t, err)
	assert.False(t, added)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, "A", again.Name)

	n, err := subs.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestEvents_StatusChangeMovesBetweenFilters(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	events := NewRepository[model.Event](s, KeyEvents)

	all, err := events.GetAll(ctx)
	require.NoError(t, err)
	for _, e := range model.FilterEvents(all, model.EventUpcoming) {
		assert.NotEqual(t, "2", e.ID, "past event must not be upcoming")
	}

	_, err = events.Update(ctx, "2", map[string]any{"status": "upcoming"})
	require.NoError(t, err)

	all, err = events.GetAll(ctx)
	require.NoError(t, err)
	ids := []string{}
	for _, e := range model.FilterEvents(all, model.EventUpcoming) {
		ids = append(ids, e.ID)
	}
	assert.Contains(t, ids, "2")
}

func TestLoginLogout(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	assert.False(t, s.IsAuthenticated(ctx))

	_, err := s.Login(ctx, "admin", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = s.Session(ctx)
	assert.ErrorIs(t, err, ErrNotFound, "failed login must not persist a session")

	session, err := s.Login(ctx, "admin", "admin123")
	require.NoError(t, err)
	assert.True(t, session.IsAuthenticated)
	assert.True(t, s.IsAuthenticated(ctx))

	require.NoError(t, s.Logout(ctx))
	assert.False(t, s.IsAuthenticated(ctx))
}

func TestLogin_AttachesIssuedToken(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	s, _ := newTestStore(t,
		WithClock(func() time.Time { return fixed }),
		WithTokenIssuer(func(username string) (string, error) { return "token-for-" + username, nil }),
	)

	session, err := s.Login(ctx, "admin", "admin123")
	require.NoError(t, err)
	assert.Equal(t, "token-for-admin", session.Token)

	stored, err := s.Session(ctx)
	require.NoError(t, err)
	assert.Equal(t, "token-for-admin", stored.Token)
	assert.True(t, stored.LoggedInAt.Equal(fixed))
}

func TestIsAuthenticated_MalformedSession(t *testing.T) {
	ctx := context.Background()
	s, backend := newTestStore(t)
	require.NoError(t, backend.Set(ctx, KeyAuthSession, "not json"))
	assert.False(t, s.IsAuthenticated(ctx))
}

func TestVisitorIDAndSnapshots(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	_, ok, err := s.VisitorID(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SaveVisitorID(ctx, "3f1c1c4e-7d5b-4c55-9a39-8f7f6f1d2b11"))
	id, ok, err := s.VisitorID(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "3f1c1c4e-7d5b-4c55-9a39-8f7f6f1d2b11", id)

	require.NoError(t, s.SaveSnapshot(ctx, "events/all", []byte(`[{"id":"1"}]`)))
	raw, ok, err := s.LoadSnapshot(ctx, "events/all")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `[{"id":"1"}]`, string(raw))
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	s, backend := newTestStore(t)
	_, err := s.Login(ctx, "admin", "admin123")
	require.NoError(t, err)

	require.NoError(t, s.Reset(ctx))
	assert.Empty(t, backend.Keys())
	assert.False(t, s.IsAuthenticated(ctx))

	settings, err := s.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings().SiteName, settings.SiteName)
}

type batchingBackend struct {
	*memory.Store
	batches [][]string
}

func (b *batchingBackend) SetMany(ctx context.Context, entries map[string]string) error {
	var keys []string
	for k, v := range entries {
		keys = append(keys, k)
		if err := b.Set(ctx, k, v); err != nil {
			return err
		}
	}
	b.batches = append(b.batches, keys)
	return nil
}

func TestInitialize_UsesBatchWriteWhenAvailable(t *testing.T) {
	ctx := context.Background()
	backend := &batchingBackend{Store: memory.NewStore()}
	s := New(backend)

	require.NoError(t, s.Initialize(ctx))
	require.Len(t, backend.batches, 1)
	assert.ElementsMatch(t, append(append([]string{}, CollectionKeys...), KeySettings), backend.batches[0])

	require.NoError(t, s.Initialize(ctx))
	assert.Len(t, backend.batches, 1, "nothing left to seed")
}
