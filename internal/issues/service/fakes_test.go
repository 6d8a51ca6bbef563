package service

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"

	"chalkstone_backend/internal/adapters/storage"
	"chalkstone_backend/internal/events"
	"chalkstone_backend/internal/issues/domain"
	"chalkstone_backend/internal/issues/repository"
	"chalkstone_backend/platform/apperr"
)

type fakeRepo struct {
	mu     sync.Mutex
	nextID int64
	issues map[int64]repository.Issue
	// engineers that exist for assignment
	engineers map[int64]bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{issues: map[int64]repository.Issue{}, engineers: map[int64]bool{7: true, 8: true}}
}

func (r *fakeRepo) Create(_ context.Context, p repository.CreateParams) (repository.Issue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	now := time.Now().UTC()
	issue := repository.Issue{
		ID: r.nextID, Type: p.Type, Status: domain.StatusNew, Description: p.Description,
		Latitude: p.Latitude, Longitude: p.Longitude, Images: p.Images, ReportedBy: p.ReportedBy,
		CreatedAt: now, UpdatedAt: now,
	}
	r.issues[issue.ID] = issue
	return issue, nil
}

func (r *fakeRepo) GetByID(_ context.Context, id int64) (repository.Issue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	issue, ok := r.issues[id]
	if !ok {
		return repository.Issue{}, apperr.NotFound("issue not found")
	}
	return issue, nil
}

func (r *fakeRepo) Update(_ context.Context, p repository.UpdateParams) (repository.UpdateResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	before, ok := r.issues[p.ID]
	if !ok {
		return repository.UpdateResult{}, apperr.NotFound("issue not found")
	}
	after := before
	if p.Status != nil {
		after.Status = *p.Status
		switch {
		case after.Status.Done() && after.ClosedAt == nil:
			now := time.Now().UTC()
			after.ClosedAt = &now
		case !after.Status.Done():
			after.ClosedAt = nil
		}
	}
	if p.SetAssignee {
		if p.AssignedTo != nil && !r.engineers[*p.AssignedTo] {
			return repository.UpdateResult{}, apperr.NotFound("engineer not found")
		}
		after.AssignedTo = p.AssignedTo
	}
	r.issues[p.ID] = after
	return repository.UpdateResult{Before: before, After: after}, nil
}

func (r *fakeRepo) List(_ context.Context, p repository.ListParams) ([]repository.Issue, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]repository.Issue, 0, len(r.issues))
	for id := r.nextID; id > 0; id-- {
		if issue, ok := r.issues[id]; ok {
			all = append(all, issue)
		}
	}
	if p.Offset >= len(all) {
		return []repository.Issue{}, len(all), nil
	}
	end := min(p.Offset+p.Limit, len(all))
	return all[p.Offset:end], len(all), nil
}

func (r *fakeRepo) Search(_ context.Context, p repository.SearchParams) ([]repository.Issue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []repository.Issue{}
	for id := int64(1); id <= r.nextID; id++ {
		issue, ok := r.issues[id]
		if !ok {
			continue
		}
		if p.Type != nil && issue.Type != *p.Type {
			continue
		}
		if p.Status != nil && issue.Status != *p.Status {
			continue
		}
		out = append(out, issue)
	}
	return out, nil
}

func (r *fakeRepo) ListMapPins(_ context.Context, p repository.MapParams) ([]repository.MapPin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []repository.MapPin{}
	for id := int64(1); id <= r.nextID; id++ {
		issue, ok := r.issues[id]
		if !ok || issue.Status == domain.StatusClosed {
			continue
		}
		if p.Type != nil && issue.Type != *p.Type {
			continue
		}
		out = append(out, repository.MapPin{ID: issue.ID, Type: issue.Type, Status: issue.Status, Latitude: issue.Latitude, Longitude: issue.Longitude})
	}
	return out, nil
}

func (r *fakeRepo) GetReporter(_ context.Context, issueID int64) (repository.Reporter, error) {
	issue, err := r.GetByID(context.Background(), issueID)
	if err != nil {
		return repository.Reporter{}, err
	}
	return repository.Reporter{UserID: issue.ReportedBy, Username: "reporter"}, nil
}

type fakeStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
	maxSize int64
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}, maxSize: 1 << 20}
}

func (s *fakeStorage) GenerateDownloadURL(_ context.Context, bucket, key string) (*storage.PresignedURL, error) {
	return &storage.PresignedURL{URL: "https://files.test/" + bucket + "/" + key, FileKey: key}, nil
}

func (s *fakeStorage) DeleteObject(_ context.Context, _ string, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	s.deleted = append(s.deleted, key)
	return nil
}

func (s *fakeStorage) UploadFile(_ context.Context, _ string, folder, fileName, _ string, reader io.Reader, _ int64) (string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	key := storage.ObjectKey(folder, fileName)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	return key, nil
}

func (s *fakeStorage) EnsureBucketExists(context.Context, string) error { return nil }

func (s *fakeStorage) ValidateContentType(contentType string) error {
	return storage.ValidateContentType(contentType)
}

func (s *fakeStorage) ValidateFileSize(size int64) error {
	return storage.ValidateFileSize(size, s.maxSize)
}

func (s *fakeStorage) GetMaxFileSize() int64 { return s.maxSize }

type recordingBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (b *recordingBus) Publish(_ context.Context, event events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func (b *recordingBus) PublishSync(ctx context.Context, event events.Event) error {
	b.Publish(ctx, event)
	return nil
}

func (b *recordingBus) Subscribe(string, events.Handler) {}

func (b *recordingBus) names() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.events))
	for _, e := range b.events {
		out = append(out, e.EventName())
	}
	return out
}

type recorder struct {
	counts map[string]int
}

func (r *recorder) ValidationFailed(field, kind string) {
	if r.counts == nil {
		r.counts = map[string]int{}
	}
	r.counts[field+"/"+kind]++
}

type testConfig struct{ maxImages int }

func (c testConfig) GetMinioBucketIssueImages() string { return "issue-images" }
func (c testConfig) GetAppBaseURL() string             { return "https://report.example.gov.uk/" }
func (c testConfig) GetMaxImagesPerIssue() int         { return c.maxImages }
func (c testConfig) GetMinIOMaxFileSize() int64        { return 1 << 20 }

var pngBytes = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R', 0, 0, 0, 1}

func photo(name string, data []byte) Photo {
	return Photo{FileName: name, Size: int64(len(data)), Content: bytes.NewReader(data)}
}
