package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"chalkstone_backend/internal/engineers/repository"
	"chalkstone_backend/internal/engineers/transport"
	"chalkstone_backend/platform/apperr"
	"chalkstone_backend/platform/logger"
	"chalkstone_backend/platform/validator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	byEmail map[string]repository.Engineer
	nextID  int64
	writes  int
}

func newMemRepo() *memRepo { return &memRepo{byEmail: map[string]repository.Engineer{}} }

func (r *memRepo) List(context.Context) ([]repository.Engineer, error) {
	out := make([]repository.Engineer, 0, len(r.byEmail))
	for _, e := range r.byEmail {
		out = append(out, e)
	}
	return out, nil
}

func (r *memRepo) GetByID(_ context.Context, id int64) (repository.Engineer, error) {
	for _, e := range r.byEmail {
		if e.ID == id {
			return e, nil
		}
	}
	return repository.Engineer{}, apperr.NotFound("engineer not found")
}

func (r *memRepo) Create(_ context.Context, p repository.CreateParams) (repository.Engineer, error) {
	if _, ok := r.byEmail[p.Email]; ok {
		return repository.Engineer{}, apperr.Conflict("an engineer with this email already exists")
	}
	e, _, err := r.Upsert(context.Background(), p)
	return e, err
}

func (r *memRepo) Upsert(_ context.Context, p repository.CreateParams) (repository.Engineer, bool, error) {
	r.writes++
	existing, found := r.byEmail[p.Email]
	joinDate := p.JoinDate
	if joinDate.IsZero() {
		joinDate = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	}
	if found {
		existing.Name, existing.Phone, existing.Specialization, existing.JoinDate = p.Name, p.Phone, p.Specialization, joinDate
		r.byEmail[p.Email] = existing
		return existing, false, nil
	}
	r.nextID++
	e := repository.Engineer{ID: r.nextID, Name: p.Name, Email: p.Email, Phone: p.Phone, Specialization: p.Specialization, JoinDate: joinDate}
	r.byEmail[p.Email] = e
	return e, true, nil
}

func newService() (*Service, *memRepo) {
	repo := newMemRepo()
	return New(repo, validator.New(), logger.Nop()), repo
}

func TestCreateNormalisesPhone(t *testing.T) {
	svc, _ := newService()

	got, err := svc.Create(context.Background(), transport.CreateEngineerRequest{
		Name:           " Sam   Patel ",
		Email:          "Sam.Patel@Exeter.gov.uk",
		Phone:          "0121 234 5678",
		Specialization: "Roads",
		JoinDate:       "2023-04-01",
	})
	require.NoError(t, err)
	assert.Equal(t, "Sam Patel", got.Name)
	assert.Equal(t, "sam.patel@exeter.gov.uk", got.Email)
	assert.Equal(t, "+441212345678", got.Phone)
	assert.Equal(t, "2023-04-01", got.JoinDate)
}

func TestCreateRejectsBadPhone(t *testing.T) {
	svc, repo := newService()

	_, err := svc.Create(context.Background(), transport.CreateEngineerRequest{
		Name: "Sam", Email: "sam@exeter.gov.uk", Phone: "12", Specialization: "Roads",
	})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Zero(t, repo.writes)
}

func TestCreateDuplicateEmail(t *testing.T) {
	svc, _ := newService()
	req := transport.CreateEngineerRequest{Name: "Sam", Email: "sam@exeter.gov.uk", Phone: "+44 7400 123456", Specialization: "Roads"}

	_, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), req)
	assert.True(t, apperr.Is(err, apperr.KindConflict))
}

const seedYAML = `
engineers:
  - name: Alex Morgan
    email: alex@exeter.gov.uk
    phone: "+44 7400 123456"
    specialization: Street lighting
  - name: Priya Shah
    email: priya@exeter.gov.uk
    phone: "0121 234 5678"
    specialization: Drainage
    join_date: "2022-09-12"
`

func TestImportEngineers(t *testing.T) {
	svc, repo := newService()

	result, err := svc.ImportEngineers(context.Background(), strings.NewReader(seedYAML))
	require.NoError(t, err)
	assert.Equal(t, transport.ImportResult{Created: 2}, result)
	assert.Equal(t, "+447400123456", repo.byEmail["alex@exeter.gov.uk"].Phone)

	result, err = svc.ImportEngineers(context.Background(), strings.NewReader(seedYAML))
	require.NoError(t, err)
	assert.Equal(t, transport.ImportResult{Updated: 2}, result)
}

func TestImportEngineersValidatesFirst(t *testing.T) {
	svc, repo := newService()

	bad := seedYAML + `
  - name: Nobody
    email: not-an-email
    phone: "0121 234 5678"
    specialization: Roads
`
	_, err := svc.ImportEngineers(context.Background(), strings.NewReader(bad))
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Zero(t, repo.writes, "nothing is written when one entry is invalid")

	_, err = svc.ImportEngineers(context.Background(), strings.NewReader("engineers: [oops"))
	assert.True(t, apperr.Is(err, apperr.KindBadRequest))

	result, err := svc.ImportEngineers(context.Background(), strings.NewReader(""))
	require.NoError(t, err)
	assert.Zero(t, result)
}
