package issues

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/aryanracha/civiclens/internal/features/reports"
	"github.com/aryanracha/civiclens/internal/pkg/cloudinary"
	"github.com/aryanracha/civiclens/internal/pkg/geoutil"
	apperrors "github.com/aryanracha/civiclens/pkg/errors"
)

// fakeIssueStore applies the same proximity semantics as the Mongo $near
// query: nearest non-resolved issue of the category within maxMeters.
type fakeIssueStore struct {
	issues    []*Issue
	insertErr error
}

func (f *fakeIssueStore) FindNearbyOpen(_ context.Context, lng, lat float64, category string, maxMeters float64) (*Issue, error) {
	var best *Issue
	bestDist := maxMeters
	for _, issue := range f.issues {
		if issue.Category != category || issue.Status == StatusResolved {
			continue
		}
		d := geoutil.HaversineMeters(lat, lng, issue.Location.Lat(), issue.Location.Lng())
		if d <= bestDist {
			best = issue
			bestDist = d
		}
	}
	return best, nil
}

func (f *fakeIssueStore) Insert(_ context.Context, issue *Issue) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.issues = append(f.issues, issue)
	return nil
}

func (f *fakeIssueStore) PushReportID(_ context.Context, issueID, reportID primitive.ObjectID) error {
	for _, issue := range f.issues {
		if issue.ID == issueID {
			issue.ReportIDs = append(issue.ReportIDs, reportID)
			return nil
		}
	}
	return apperrors.ErrNotFound
}

type fakeReportStore struct {
	reports   []*reports.Report
	deleted   []primitive.ObjectID
	insertErr error
}

func (f *fakeReportStore) Insert(_ context.Context, r *reports.Report) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.reports = append(f.reports, r)
	return nil
}

func (f *fakeReportStore) Delete(_ context.Context, id primitive.ObjectID) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeRouter struct {
	byCategory map[string]primitive.ObjectID
}

func (f *fakeRouter) FindByCategory(_ context.Context, category string) (primitive.ObjectID, bool, error) {
	id, ok := f.byCategory[category]
	return id, ok, nil
}

type fakeUploader struct {
	urls []string
	err  error
}

func (f *fakeUploader) UploadEvidenceImages(_ context.Context, files []cloudinary.File) ([]string, error) {
	return f.urls, f.err
}

type fakeGeocoder struct {
	address string
	err     error
}

func (f *fakeGeocoder) ReverseGeocode(_ context.Context, lat, lng float64) (string, error) {
	return f.address, f.err
}

func newTestService(issues *fakeIssueStore, reps *fakeReportStore) *Service {
	return NewService(issues, reps,
		&fakeRouter{byCategory: map[string]primitive.ObjectID{}},
		&fakeUploader{},
		&fakeGeocoder{address: "MG Road, Mumbai"},
	)
}

func submitAt(lat, lng float64, category string) *SubmitRequest {
	return &SubmitRequest{
		Title:       "Broken road surface",
		Category:    category,
		Description: "Large pothole near the bus stop",
		Latitude:    lat,
		Longitude:   lng,
		UserID:      primitive.NewObjectID(),
	}
}

func TestSubmit_CreatesIssueWhenNoneNearby(t *testing.T) {
	issueStore := &fakeIssueStore{}
	reportStore := &fakeReportStore{}
	svc := newTestService(issueStore, reportStore)

	result, err := svc.Submit(context.Background(), submitAt(19.0760, 72.8777, CategoryPothole))
	require.NoError(t, err)

	assert.True(t, result.Created)
	assert.Equal(t, StatusSubmitted, result.Issue.Status)
	assert.Equal(t, "MG Road, Mumbai", result.Issue.Address)
	assert.Equal(t, VerificationPending, result.Issue.AuditVerification.Status)
	require.Len(t, result.Issue.ReportIDs, 1)
	assert.Equal(t, result.Report.ID, result.Issue.ReportIDs[0])
	assert.Equal(t, result.Issue.ID, result.Report.IssueID)
}

func TestSubmit_AttachesWithinFiftyMeters(t *testing.T) {
	issueStore := &fakeIssueStore{}
	reportStore := &fakeReportStore{}
	svc := newTestService(issueStore, reportStore)

	first, err := svc.Submit(context.Background(), submitAt(19.0760, 72.8777, CategoryPothole))
	require.NoError(t, err)
	require.True(t, first.Created)

	// Roughly 15m north of the first report.
	second, err := svc.Submit(context.Background(), submitAt(19.07613, 72.8777, CategoryPothole))
	require.NoError(t, err)

	assert.False(t, second.Created)
	assert.Equal(t, first.Issue.ID, second.Issue.ID)
	assert.Len(t, issueStore.issues, 1)
	assert.Len(t, second.Issue.ReportIDs, 2)
}

func TestSubmit_DifferentCategoryCreatesSeparateIssue(t *testing.T) {
	issueStore := &fakeIssueStore{}
	reportStore := &fakeReportStore{}
	svc := newTestService(issueStore, reportStore)

	first, err := svc.Submit(context.Background(), submitAt(19.0760, 72.8777, CategoryPothole))
	require.NoError(t, err)

	second, err := svc.Submit(context.Background(), submitAt(19.0760, 72.8777, CategoryGarbage))
	require.NoError(t, err)

	assert.True(t, second.Created)
	assert.NotEqual(t, first.Issue.ID, second.Issue.ID)
	assert.Len(t, issueStore.issues, 2)
}

func TestSubmit_ResolvedIssueDoesNotAbsorb(t *testing.T) {
	issueStore := &fakeIssueStore{}
	reportStore := &fakeReportStore{}
	svc := newTestService(issueStore, reportStore)

	first, err := svc.Submit(context.Background(), submitAt(19.0760, 72.8777, CategoryPothole))
	require.NoError(t, err)
	first.Issue.Status = StatusResolved

	second, err := svc.Submit(context.Background(), submitAt(19.0760, 72.8777, CategoryPothole))
	require.NoError(t, err)

	assert.True(t, second.Created)
	assert.NotEqual(t, first.Issue.ID, second.Issue.ID)
}

func TestSubmit_RadiusBoundary(t *testing.T) {
	base := submitAt(19.0760, 72.8777, CategoryPothole)

	// One degree of latitude is ~111.19km at this radius, so 49m and 51m
	// offsets are small latitude deltas.
	const metersPerDegreeLat = 111194.9
	within := base.Latitude + 49.0/metersPerDegreeLat
	beyond := base.Latitude + 51.0/metersPerDegreeLat

	t.Run("49m attaches", func(t *testing.T) {
		issueStore := &fakeIssueStore{}
		svc := newTestService(issueStore, &fakeReportStore{})

		_, err := svc.Submit(context.Background(), base)
		require.NoError(t, err)

		result, err := svc.Submit(context.Background(), submitAt(within, base.Longitude, CategoryPothole))
		require.NoError(t, err)
		assert.False(t, result.Created)
	})

	t.Run("51m creates", func(t *testing.T) {
		issueStore := &fakeIssueStore{}
		svc := newTestService(issueStore, &fakeReportStore{})

		_, err := svc.Submit(context.Background(), base)
		require.NoError(t, err)

		result, err := svc.Submit(context.Background(), submitAt(beyond, base.Longitude, CategoryPothole))
		require.NoError(t, err)
		assert.True(t, result.Created)
	})
}

func TestSubmit_DuplicateUserReportOnSameIssue(t *testing.T) {
	issueStore := &fakeIssueStore{}
	reportStore := &fakeReportStore{}
	svc := newTestService(issueStore, reportStore)

	userID := primitive.NewObjectID()
	req := submitAt(19.0760, 72.8777, CategoryPothole)
	req.UserID = userID
	_, err := svc.Submit(context.Background(), req)
	require.NoError(t, err)

	// Unique (issueId, userId) index surfaces as ErrDuplicate on insert.
	reportStore.insertErr = apperrors.ErrDuplicate
	again := submitAt(19.0760, 72.8777, CategoryPothole)
	again.UserID = userID

	_, err = svc.Submit(context.Background(), again)
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)
	assert.Len(t, issueStore.issues, 1)
}

func TestSubmit_GeocodeFailureAborts(t *testing.T) {
	issueStore := &fakeIssueStore{}
	svc := NewService(issueStore, &fakeReportStore{},
		&fakeRouter{}, &fakeUploader{}, &fakeGeocoder{err: errors.New("nominatim down")})

	_, err := svc.Submit(context.Background(), submitAt(19.0760, 72.8777, CategoryPothole))
	require.Error(t, err)
	assert.Empty(t, issueStore.issues)
}

func TestSubmit_UploadFailureAborts(t *testing.T) {
	issueStore := &fakeIssueStore{}
	svc := NewService(issueStore, &fakeReportStore{},
		&fakeRouter{}, &fakeUploader{err: errors.New("cloudinary down")},
		&fakeGeocoder{address: "somewhere"})

	req := submitAt(19.0760, 72.8777, CategoryPothole)
	req.Files = []cloudinary.File{{Data: []byte{0x1}, MimeType: "image/jpeg", Filename: "a.jpg"}}

	_, err := svc.Submit(context.Background(), req)
	require.Error(t, err)
	assert.Empty(t, issueStore.issues)
}

func TestSubmit_RollsBackSeedReportOnIssueInsertFailure(t *testing.T) {
	issueStore := &fakeIssueStore{insertErr: errors.New("write conflict")}
	reportStore := &fakeReportStore{}
	svc := newTestService(issueStore, reportStore)

	_, err := svc.Submit(context.Background(), submitAt(19.0760, 72.8777, CategoryPothole))
	require.Error(t, err)
	require.Len(t, reportStore.deleted, 1)
}

func TestSubmit_RoutesToDepartmentByCategory(t *testing.T) {
	deptID := primitive.NewObjectID()
	issueStore := &fakeIssueStore{}
	svc := NewService(issueStore, &fakeReportStore{},
		&fakeRouter{byCategory: map[string]primitive.ObjectID{CategoryPothole: deptID}},
		&fakeUploader{}, &fakeGeocoder{address: "MG Road"})

	result, err := svc.Submit(context.Background(), submitAt(19.0760, 72.8777, CategoryPothole))
	require.NoError(t, err)
	require.NotNil(t, result.Issue.AssignedTo)
	assert.Equal(t, deptID, *result.Issue.AssignedTo)

	// No department handles garbage here; the issue stays unassigned.
	other, err := svc.Submit(context.Background(), submitAt(19.0760, 72.8777, CategoryGarbage))
	require.NoError(t, err)
	assert.Nil(t, other.Issue.AssignedTo)
}

func TestSubmit_RejectsInvalidInput(t *testing.T) {
	svc := newTestService(&fakeIssueStore{}, &fakeReportStore{})

	cases := []struct {
		name string
		req  *SubmitRequest
	}{
		{"missing title", &SubmitRequest{Category: CategoryPothole, Description: "d", Latitude: 19, Longitude: 72}},
		{"unknown category", &SubmitRequest{Title: "t", Category: "sinkhole", Description: "d", Latitude: 19, Longitude: 72}},
		{"latitude out of range", &SubmitRequest{Title: "t", Category: CategoryPothole, Description: "d", Latitude: 91, Longitude: 72}},
		{"longitude out of range", &SubmitRequest{Title: "t", Category: CategoryPothole, Description: "d", Latitude: 19, Longitude: 181}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Submit(context.Background(), tc.req)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}
}
