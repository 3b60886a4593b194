package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"fetchbot/internal/domain"
	"fetchbot/internal/ports"
)

// memStore is an in-memory ports.Store with the same transition rules as the
// real one. Timestamps come from a logical clock so ordering is deterministic.
type memStore struct {
	tasks  []*domain.Task
	stats  map[int64]domain.UserStat
	nextID uint64
	clock  int64
}

var _ ports.Store = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{stats: make(map[int64]domain.UserStat)}
}

func (m *memStore) tick() time.Time {
	m.clock++
	return time.Unix(1700000000+m.clock, 0).UTC()
}

func (m *memStore) find(id uint64) *domain.Task {
	for _, t := range m.tasks {
		if t.ID == id {
			return t
		}
	}
	return nil
}

func (m *memStore) EnqueueTask(ctx context.Context, userID int64, url string) (uint64, error) {
	m.nextID++
	now := m.tick()
	m.tasks = append(m.tasks, &domain.Task{
		ID:        m.nextID,
		UserID:    userID,
		URL:       url,
		Status:    domain.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	})
	return m.nextID, nil
}

func (m *memStore) NextPendingTask(ctx context.Context) (*domain.Task, error) {
	var best *domain.Task
	for _, t := range m.tasks {
		if t.Status != domain.StatusPending {
			continue
		}
		if best == nil || t.CreatedAt.Before(best.CreatedAt) ||
			(t.CreatedAt.Equal(best.CreatedAt) && t.ID < best.ID) {
			best = t
		}
	}
	if best == nil {
		return nil, nil
	}
	cp := *best
	return &cp, nil
}

func (m *memStore) transition(id uint64, next domain.Status, apply func(*domain.Task)) error {
	t := m.find(id)
	if t == nil {
		return domain.ErrNotFound
	}
	if !t.Status.CanTransition(next) {
		return fmt.Errorf("%w: %d: %s -> %s", domain.ErrInvalidTransition, id, t.Status, next)
	}
	t.Status = next
	t.UpdatedAt = m.tick()
	if apply != nil {
		apply(t)
	}
	return nil
}

func (m *memStore) MarkDownloading(ctx context.Context, id uint64) error {
	return m.transition(id, domain.StatusDownloading, nil)
}

func (m *memStore) MarkCompleted(ctx context.Context, id uint64, filePath string) error {
	return m.transition(id, domain.StatusCompleted, func(t *domain.Task) { t.FilePath = filePath })
}

func (m *memStore) MarkFailed(ctx context.Context, id uint64, errMsg string) error {
	return m.transition(id, domain.StatusFailed, func(t *domain.Task) { t.ErrorMessage = errMsg })
}

func (m *memStore) MarkSent(ctx context.Context, id uint64) error {
	return m.transition(id, domain.StatusSent, nil)
}

func (m *memStore) MarkNotified(ctx context.Context, id uint64) error {
	return m.transition(id, domain.StatusNotified, nil)
}

func (m *memStore) listByStatus(status domain.Status, limit int) []domain.Task {
	var out []domain.Task
	for _, t := range m.tasks {
		if t.Status == status {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.Before(out[j].UpdatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (m *memStore) CompletedUnsent(ctx context.Context, limit int) ([]domain.Task, error) {
	return m.listByStatus(domain.StatusCompleted, limit), nil
}

func (m *memStore) FailedUnnotified(ctx context.Context, limit int) ([]domain.Task, error) {
	return m.listByStatus(domain.StatusFailed, limit), nil
}

func (m *memStore) GetUserStat(ctx context.Context, userID int64) (*domain.UserStat, error) {
	st, ok := m.stats[userID]
	if !ok {
		return nil, nil
	}
	cp := st
	return &cp, nil
}

func (m *memStore) UpsertUserStat(ctx context.Context, st domain.UserStat) error {
	m.stats[st.UserID] = st
	return nil
}

func (m *memStore) IncrementDownloads(ctx context.Context, userID int64) error {
	st, ok := m.stats[userID]
	if !ok {
		return domain.ErrNotFound
	}
	st.DownloadsCount++
	m.stats[userID] = st
	return nil
}

func (m *memStore) CountByStatus(ctx context.Context, statuses ...domain.Status) (int64, error) {
	var n int64
	for _, t := range m.tasks {
		for _, s := range statuses {
			if t.Status == s {
				n++
				break
			}
		}
	}
	return n, nil
}

// fakeMessenger records deliveries and can be told to fail.
type fakeMessenger struct {
	texts []sentText
	files []sentFile
	err   error
}

type sentText struct {
	chatID int64
	text   string
}

type sentFile struct {
	chatID  int64
	path    string
	caption string
}

func (f *fakeMessenger) SendText(ctx context.Context, chatID int64, text string) error {
	if f.err != nil {
		return f.err
	}
	f.texts = append(f.texts, sentText{chatID, text})
	return nil
}

func (f *fakeMessenger) SendFile(ctx context.Context, chatID int64, path string, caption string) error {
	if f.err != nil {
		return f.err
	}
	f.files = append(f.files, sentFile{chatID, path, caption})
	return nil
}

// fakeFetcher returns a fixed path or error.
type fakeFetcher struct {
	path  string
	err   error
	calls int
}

func (f *fakeFetcher) Execute(ctx context.Context, url string, taskID uint64) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.path, nil
}
