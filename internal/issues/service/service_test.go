package service

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"chalkstone_backend/internal/events"
	"chalkstone_backend/internal/issues/domain"
	"chalkstone_backend/internal/issues/transport"
	"chalkstone_backend/platform/apperr"
	"chalkstone_backend/platform/formcheck"
	"chalkstone_backend/platform/logger"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc      *Service
	repo     *fakeRepo
	storage  *fakeStorage
	bus      *recordingBus
	recorder *recorder
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	f := fixture{repo: newFakeRepo(), storage: newFakeStorage(), bus: &recordingBus{}, recorder: &recorder{}}
	f.svc = New(f.repo, f.storage, f.bus, testConfig{maxImages: 2}, f.recorder, logger.Nop())
	return f
}

func pothole() *formcheck.IssueDraft {
	return &formcheck.IssueDraft{
		Type:        "pothole",
		Description: "Deep pothole outside number 4",
		Location:    &formcheck.DraftLocation{Latitude: json.Number("50.7184"), Longitude: -3.5339},
	}
}

func TestCreateRejectsInvalidDraft(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), uuid.New(), &formcheck.IssueDraft{Description: "short"}, nil)
	require.Error(t, err)

	domainErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, domainErr.HTTPStatus())

	want := formcheck.FieldErrors{
		"type":        formcheck.MsgTypeRequired,
		"description": formcheck.MsgDescriptionTooShort,
		"location":    formcheck.MsgLocationRequired,
	}
	if diff := cmp.Diff(want, domainErr.Details); diff != "" {
		t.Fatalf("details mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, map[string]int{
		"type/missing_field":         1,
		"description/too_short":      1,
		"location/missing_composite": 1,
	}, f.recorder.counts)
	assert.Empty(t, f.bus.names())
}

func TestCreateRejectsUnknownType(t *testing.T) {
	f := newFixture(t)
	draft := pothole()
	draft.Type = "DRAGON"

	_, err := f.svc.Create(context.Background(), uuid.New(), draft, nil)
	domainErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, formcheck.FieldErrors{"type": msgInvalidIssueType}, domainErr.Details)
}

func TestCreateRejectsDescriptionThatIsOnlyMarkup(t *testing.T) {
	f := newFixture(t)
	draft := pothole()
	draft.Description = "<b><i></i></b><br/>"

	_, err := f.svc.Create(context.Background(), uuid.New(), draft, nil)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestCreateChecksSanitisedDescriptionLength(t *testing.T) {
	f := newFixture(t)
	atLimit := strings.Repeat("a", formcheck.MinDescriptionLength)
	belowLimit := strings.Repeat("a", formcheck.MinDescriptionLength-1)

	draft := pothole()
	draft.Description = "<b>" + belowLimit + "</b>"
	_, err := f.svc.Create(context.Background(), uuid.New(), draft, nil)
	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindValidation, appErr.Kind)
	assert.Equal(t, formcheck.FieldErrors{formcheck.FieldDescription: formcheck.MsgDescriptionTooShort}, appErr.Details)

	draft = pothole()
	draft.Description = "<b>" + atLimit + "</b>"
	got, err := f.svc.Create(context.Background(), uuid.New(), draft, nil)
	require.NoError(t, err)
	assert.Equal(t, atLimit, got.Description)
}

func TestCreateStoresIssue(t *testing.T) {
	f := newFixture(t)
	reporter := uuid.New()
	draft := pothole()
	draft.Description = "<script>x</script>Deep pothole   outside number 4"

	got, err := f.svc.Create(context.Background(), reporter, draft, []Photo{photo("road.png", pngBytes)})
	require.NoError(t, err)

	assert.Equal(t, "POTHOLE", got.Type)
	assert.Equal(t, "Pothole", got.TypeLabel)
	assert.Equal(t, string(domain.StatusNew), got.Status)
	assert.NotContains(t, got.Description, "<")
	assert.Contains(t, got.Description, "Deep pothole outside number 4")
	assert.Equal(t, transport.LocationResponse{Latitude: 50.7184, Longitude: -3.5339}, got.Location)
	require.Len(t, got.Images, 1)
	assert.True(t, strings.HasPrefix(got.Images[0], "issues/"+reporter.String()+"/road_"))
	require.Len(t, got.ImageURLs, 1)
	assert.Equal(t, reporter.String(), got.ReportedBy)

	assert.Equal(t, []string{"issues.reported"}, f.bus.names())
	reported := f.bus.events[0].(events.IssueReported)
	assert.Equal(t, got.ID, reported.IssueID)
	assert.NotEqual(t, uuid.Nil, reported.ID)
}

func TestCreateRejectsPhotosAndCleansUp(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), uuid.New(), pothole(), []Photo{
		photo("ok.png", pngBytes),
		photo("evil.png", []byte("<html><script>alert(1)</script></html>")),
	})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindBadRequest))
	assert.Len(t, f.storage.deleted, 1, "first upload must be removed")
	assert.Empty(t, f.storage.objects)
	assert.Empty(t, f.repo.issues)
}

func TestCreatePhotoLimits(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), uuid.New(), pothole(), []Photo{
		photo("a.png", pngBytes), photo("b.png", pngBytes), photo("c.png", pngBytes),
	})
	assert.True(t, apperr.Is(err, apperr.KindBadRequest))

	f.storage.maxSize = 4
	_, err = f.svc.Create(context.Background(), uuid.New(), pothole(), []Photo{photo("a.png", pngBytes)})
	assert.True(t, apperr.Is(err, apperr.KindTooLarge))

	noStorage := New(f.repo, nil, f.bus, testConfig{maxImages: 2}, nil, logger.Nop())
	_, err = noStorage.Create(context.Background(), uuid.New(), pothole(), []Photo{photo("a.png", pngBytes)})
	assert.True(t, apperr.Is(err, apperr.KindBadRequest))
}

func TestValidateRecordsRejections(t *testing.T) {
	f := newFixture(t)

	result := f.svc.Validate(context.Background(), nil)
	assert.False(t, result.IsValid)
	assert.Equal(t, map[string]int{"form/missing_form": 1}, f.recorder.counts)

	result = f.svc.Validate(context.Background(), pothole())
	assert.True(t, result.IsValid)
	assert.Empty(t, result.Errors)
}

func TestUpdatePublishesEvents(t *testing.T) {
	f := newFixture(t)
	staff := uuid.New()
	created, err := f.svc.Create(context.Background(), uuid.New(), pothole(), nil)
	require.NoError(t, err)

	resolved := "resolved"
	engineer := int64(7)
	got, err := f.svc.Update(context.Background(), staff, created.ID, transport.UpdateIssueRequest{
		Status:     &resolved,
		AssignedTo: transport.OptionalID{Set: true, Value: &engineer},
	})
	require.NoError(t, err)
	assert.Equal(t, "RESOLVED", got.Status)
	assert.NotNil(t, got.ClosedAt)
	assert.Equal(t, &engineer, got.AssignedTo)
	assert.Equal(t, []string{"issues.reported", "issues.status_changed", "issues.assigned"}, f.bus.names())

	changed := f.bus.events[1].(events.IssueStatusChanged)
	assert.Equal(t, "NEW", changed.OldStatus)
	assert.Equal(t, "RESOLVED", changed.NewStatus)
	assert.Equal(t, staff, changed.ChangedBy)

	// same status again is not a change
	_, err = f.svc.Update(context.Background(), staff, created.ID, transport.UpdateIssueRequest{Status: &resolved})
	require.NoError(t, err)
	assert.Len(t, f.bus.names(), 3)

	reopened := "IN_PROGRESS"
	got, err = f.svc.Update(context.Background(), staff, created.ID, transport.UpdateIssueRequest{Status: &reopened})
	require.NoError(t, err)
	assert.Nil(t, got.ClosedAt)
}

func TestUpdateErrors(t *testing.T) {
	f := newFixture(t)
	created, err := f.svc.Create(context.Background(), uuid.New(), pothole(), nil)
	require.NoError(t, err)

	bogus := "LOST"
	_, err = f.svc.Update(context.Background(), uuid.New(), created.ID, transport.UpdateIssueRequest{Status: &bogus})
	assert.True(t, apperr.Is(err, apperr.KindBadRequest))

	_, err = f.svc.Update(context.Background(), uuid.New(), created.ID, transport.UpdateIssueRequest{})
	assert.True(t, apperr.Is(err, apperr.KindBadRequest))

	missing := int64(99)
	_, err = f.svc.Update(context.Background(), uuid.New(), created.ID, transport.UpdateIssueRequest{
		AssignedTo: transport.OptionalID{Set: true, Value: &missing},
	})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	status := "CLOSED"
	_, err = f.svc.Update(context.Background(), uuid.New(), 404, transport.UpdateIssueRequest{Status: &status})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestListPagination(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 12; i++ {
		_, err := f.svc.Create(context.Background(), uuid.New(), pothole(), nil)
		require.NoError(t, err)
	}

	page, err := f.svc.List(context.Background(), transport.ListIssuesRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, defaultPageSize, page.PageSize)
	assert.Equal(t, 12, page.Total)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Items, 10)
	assert.Equal(t, int64(12), page.Items[0].ID, "newest first")

	page, err = f.svc.List(context.Background(), transport.ListIssuesRequest{Page: 2, PageSize: 10})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)

	page, err = f.svc.List(context.Background(), transport.ListIssuesRequest{PageSize: 500})
	require.NoError(t, err)
	assert.Equal(t, maxPageSize, page.PageSize)
}

func TestSearchAndMap(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	staff := uuid.New()

	first, err := f.svc.Create(ctx, uuid.New(), pothole(), nil)
	require.NoError(t, err)
	light := pothole()
	light.Type = "STREET_LIGHT"
	_, err = f.svc.Create(ctx, uuid.New(), light, nil)
	require.NoError(t, err)

	closed := "CLOSED"
	_, err = f.svc.Update(ctx, staff, first.ID, transport.UpdateIssueRequest{Status: &closed})
	require.NoError(t, err)

	found, err := f.svc.Search(ctx, transport.SearchIssuesRequest{Type: "street_light"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "STREET_LIGHT", found[0].Type)

	found, err = f.svc.Search(ctx, transport.SearchIssuesRequest{Status: "closed"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, first.ID, found[0].ID)

	_, err = f.svc.Search(ctx, transport.SearchIssuesRequest{Status: "nope"})
	assert.True(t, apperr.Is(err, apperr.KindBadRequest))

	pins, err := f.svc.MapPins(ctx, transport.MapRequest{})
	require.NoError(t, err)
	require.Len(t, pins, 1)
	assert.Equal(t, "STREET_LIGHT", pins[0].Type)
}

func TestQRCode(t *testing.T) {
	f := newFixture(t)
	created, err := f.svc.Create(context.Background(), uuid.New(), pothole(), nil)
	require.NoError(t, err)

	png, err := f.svc.QRCode(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, pngBytes[:8], png[:8])
	assert.Equal(t, "https://report.example.gov.uk/issues/1", f.svc.IssueURL(created.ID))

	_, err = f.svc.QRCode(context.Background(), 999)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestPhotoLocationWithoutExif(t *testing.T) {
	_, _, err := PhotoLocation(strings.NewReader("not a jpeg"))
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}
