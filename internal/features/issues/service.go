package issues

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/aryanracha/civiclens/internal/features/reports"
	"github.com/aryanracha/civiclens/internal/pkg/cloudinary"
	"github.com/aryanracha/civiclens/internal/pkg/geoutil"
	"github.com/aryanracha/civiclens/internal/pkg/logger"
	apperrors "github.com/aryanracha/civiclens/pkg/errors"
)

// IssueStore is the subset of the issues repository the resolver needs.
type IssueStore interface {
	FindNearbyOpen(ctx context.Context, lng, lat float64, category string, maxMeters float64) (*Issue, error)
	Insert(ctx context.Context, issue *Issue) error
	PushReportID(ctx context.Context, issueID, reportID primitive.ObjectID) error
}

// ReportStore creates and rolls back seed reports.
type ReportStore interface {
	Insert(ctx context.Context, report *reports.Report) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// DepartmentRouter resolves a category to the department that handles it.
type DepartmentRouter interface {
	FindByCategory(ctx context.Context, category string) (primitive.ObjectID, bool, error)
}

// Uploader pushes evidence photos to blob storage and returns public URLs.
type Uploader interface {
	UploadEvidenceImages(ctx context.Context, files []cloudinary.File) ([]string, error)
}

// Geocoder resolves coordinates to a display address.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, lat, lng float64) (string, error)
}

// Service decides whether an incoming report attaches to an existing open
// issue or seeds a new one.
type Service struct {
	issues   IssueStore
	reports  ReportStore
	depts    DepartmentRouter
	uploader Uploader
	geocoder Geocoder
}

func NewService(issues IssueStore, reports ReportStore, depts DepartmentRouter, uploader Uploader, geocoder Geocoder) *Service {
	return &Service{
		issues:   issues,
		reports:  reports,
		depts:    depts,
		uploader: uploader,
		geocoder: geocoder,
	}
}

// SubmitRequest is a validated citizen submission.
type SubmitRequest struct {
	Title       string
	Category    string
	Description string
	Latitude    float64
	Longitude   float64
	Files       []cloudinary.File
	UserID      primitive.ObjectID
}

// SubmitResult reports whether the submission attached to an existing issue
// or created a new one.
type SubmitResult struct {
	Issue   *Issue          `json:"issue"`
	Report  *reports.Report `json:"report"`
	Created bool            `json:"created"`
}

// Submit runs the duplicate-resolution flow: validate, upload + geocode
// concurrently, then attach to a nearby open issue of the same category or
// create a fresh one.
func (s *Service) Submit(ctx context.Context, req *SubmitRequest) (*SubmitResult, error) {
	if err := ValidateSubmission(req); err != nil {
		return nil, err
	}

	// Images are optional, but any provided file must carry a byte payload
	// and a MIME type. Checked before any network calls.
	validFiles := make([]cloudinary.File, 0, len(req.Files))
	for _, f := range req.Files {
		if f.IsValid() {
			validFiles = append(validFiles, f)
		}
	}
	if len(req.Files) > 0 && len(validFiles) == 0 {
		return nil, fmt.Errorf("%w: invalid image files provided", apperrors.ErrValidation)
	}

	imageURLs, address, err := s.uploadAndGeocode(ctx, validFiles, req.Latitude, req.Longitude)
	if err != nil {
		return nil, err
	}

	defaultImageURL := ""
	if len(imageURLs) > 0 {
		defaultImageURL = imageURLs[0]
	}

	existing, err := s.issues.FindNearbyOpen(ctx, req.Longitude, req.Latitude, req.Category, DuplicateRadiusMeters)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		return s.attach(ctx, existing, req, defaultImageURL)
	}
	return s.create(ctx, req, address, defaultImageURL)
}

// uploadAndGeocode issues the image upload and the reverse geocode
// concurrently. Either failure aborts the submission; there is no address
// fallback.
func (s *Service) uploadAndGeocode(ctx context.Context, files []cloudinary.File, lat, lng float64) ([]string, string, error) {
	type uploadResult struct {
		urls []string
		err  error
	}
	type geocodeResult struct {
		address string
		err     error
	}

	uploadCh := make(chan uploadResult, 1)
	geocodeCh := make(chan geocodeResult, 1)

	go func() {
		if len(files) == 0 {
			uploadCh <- uploadResult{urls: nil}
			return
		}
		urls, err := s.uploader.UploadEvidenceImages(ctx, files)
		uploadCh <- uploadResult{urls: urls, err: err}
	}()

	go func() {
		address, err := s.geocoder.ReverseGeocode(ctx, lat, lng)
		geocodeCh <- geocodeResult{address: address, err: err}
	}()

	up := <-uploadCh
	geo := <-geocodeCh

	if geo.err != nil {
		return nil, "", geo.err
	}
	if up.err != nil {
		return nil, "", up.err
	}
	return up.urls, geo.address, nil
}

func (s *Service) attach(ctx context.Context, issue *Issue, req *SubmitRequest, imageURL string) (*SubmitResult, error) {
	report := &reports.Report{
		ID:          primitive.NewObjectID(),
		IssueID:     issue.ID,
		UserID:      req.UserID,
		ImageURL:    imageURL,
		Description: req.Description,
	}

	if err := s.reports.Insert(ctx, report); err != nil {
		return nil, err
	}

	if err := s.issues.PushReportID(ctx, issue.ID, report.ID); err != nil {
		return nil, err
	}
	issue.ReportIDs = append(issue.ReportIDs, report.ID)

	return &SubmitResult{Issue: issue, Report: report, Created: false}, nil
}

func (s *Service) create(ctx context.Context, req *SubmitRequest, address, imageURL string) (*SubmitResult, error) {
	issueID := primitive.NewObjectID()

	report := &reports.Report{
		ID:          primitive.NewObjectID(),
		IssueID:     issueID,
		UserID:      req.UserID,
		ImageURL:    imageURL,
		Description: req.Description,
	}

	issue := &Issue{
		ID:                 issueID,
		Title:              req.Title,
		Category:           req.Category,
		Status:             StatusSubmitted,
		Location:           geoutil.NewPoint(req.Latitude, req.Longitude),
		Address:            address,
		FirstReportedBy:    req.UserID,
		DefaultImageURL:    imageURL,
		DefaultDescription: req.Description,
		ReportIDs:          []primitive.ObjectID{report.ID},
		AuditVerification: AuditVerification{
			Status:    VerificationPending,
			RiskLevel: RiskLow,
		},
	}

	// Automated department routing; silently unassigned when no department
	// handles the category.
	if deptID, found, err := s.depts.FindByCategory(ctx, req.Category); err != nil {
		logger.Warn("department routing failed for category %q: %v", req.Category, err)
	} else if found {
		issue.AssignedTo = &deptID
	}

	if err := s.reports.Insert(ctx, report); err != nil {
		return nil, err
	}

	if err := s.issues.Insert(ctx, issue); err != nil {
		// The seed report must not outlive a failed issue insert.
		_ = s.reports.Delete(ctx, report.ID)
		return nil, err
	}

	return &SubmitResult{Issue: issue, Report: report, Created: true}, nil
}
