package records

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/aryanracha/civiclens/internal/pkg/cloudinary"
	"github.com/aryanracha/civiclens/internal/pkg/geoutil"
	"github.com/aryanracha/civiclens/internal/pkg/logger"
	"github.com/aryanracha/civiclens/internal/pkg/oracle"
	apperrors "github.com/aryanracha/civiclens/pkg/errors"
)

// Default registry coordinates when a contract names no usable location
// (central Mumbai).
const (
	defaultLat = 19.0760
	defaultLng = 72.8777
)

// RecordStore is the persistence surface the contract ingestion flow needs.
type RecordStore interface {
	Insert(ctx context.Context, record *OfficialRecord) error
}

// DocumentExtractor pulls structured project fields out of a contract scan.
type DocumentExtractor interface {
	ExtractDocument(ctx context.Context, data []byte, mimeType string) (*oracle.DocumentFields, error)
}

// DocumentVault archives the original contract file.
type DocumentVault interface {
	UploadContractDocument(ctx context.Context, f cloudinary.File) (*cloudinary.UploadResult, error)
}

// Service ingests contract documents into the official record registry.
type Service struct {
	store     RecordStore
	extractor DocumentExtractor
	vault     DocumentVault
}

func NewService(store RecordStore, extractor DocumentExtractor, vault DocumentVault) *Service {
	return &Service{store: store, extractor: extractor, vault: vault}
}

// UploadContractRequest is an admin contract submission. Latitude and
// Longitude pin the project site; when absent the registry default is used.
type UploadContractRequest struct {
	File       cloudinary.File
	Latitude   *float64
	Longitude  *float64
	Address    string
	UploadedBy primitive.ObjectID
}

// UploadContract extracts project fields from the document, archives the
// file, and persists the resulting official record. Extraction failures fall
// back to the fixed demo document rather than failing the upload.
func (s *Service) UploadContract(ctx context.Context, req *UploadContractRequest) (*OfficialRecord, error) {
	if !req.File.IsValid() {
		return nil, fmt.Errorf("%w: contract document is required", apperrors.ErrValidation)
	}

	fields, err := s.extractor.ExtractDocument(ctx, req.File.Data, req.File.MimeType)
	if err != nil {
		logger.Warn("document extraction failed, using fallback fields: %v", err)
		fields = oracle.FallbackDocument()
	}

	uploaded, err := s.vault.UploadContractDocument(ctx, req.File)
	if err != nil {
		return nil, err
	}

	lat, lng := defaultLat, defaultLng
	if req.Latitude != nil && req.Longitude != nil {
		lat, lng = *req.Latitude, *req.Longitude
	}

	address := req.Address
	if address == "" {
		address = fields.Location
	}

	record := &OfficialRecord{
		ProjectName: fields.ProjectName,
		Department:  fields.Department,
		Status:      normalizeStatus(fields.Status),
		Budget:      parseBudget(fields.Budget),
		Contractor:  Contractor{Name: fields.Contractor},
		Location:    geoutil.NewPoint(lat, lng),
		Address:     address,
		DocumentURL: uploaded.URL,
		UploadedBy:  req.UploadedBy,
	}
	if d := parseDate(fields.StartDate); d != nil {
		record.StartDate = d
	}
	if d := parseDate(fields.EndDate); d != nil {
		record.CompletionDate = d
	}

	if err := s.store.Insert(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

var knownStatuses = map[string]string{
	strings.ToLower(StatusCompleted):        StatusCompleted,
	strings.ToLower(StatusInProgress):       StatusInProgress,
	strings.ToLower(StatusPlanned):          StatusPlanned,
	strings.ToLower(StatusStalled):          StatusStalled,
	strings.ToLower(StatusActive):           StatusActive,
	strings.ToLower(StatusMaintenancePhase): StatusMaintenancePhase,
	strings.ToLower(StatusRecentlyRepaired): StatusRecentlyRepaired,
}

// normalizeStatus maps free-text extracted statuses onto the known enum,
// keeping the raw value when it doesn't match anything.
func normalizeStatus(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if canonical, ok := knownStatuses[strings.ToLower(trimmed)]; ok {
		return canonical
	}
	if trimmed == "" {
		return StatusPlanned
	}
	return trimmed
}

// parseBudget turns a formatted amount like "₹85,50,00,000" into a numeric
// budget, preserving the original string for display.
func parseBudget(raw string) Budget {
	budget := Budget{Currency: "INR", Formatted: strings.TrimSpace(raw)}

	// Keep digits, and a decimal point only once a digit has been seen, so
	// currency abbreviations like "Rs." don't poison the number.
	var digits strings.Builder
	seenDigit := false
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			digits.WriteRune(r)
			seenDigit = true
		case r == '.' && seenDigit:
			digits.WriteRune(r)
		}
	}
	if !seenDigit {
		return budget
	}

	amount, err := strconv.ParseFloat(digits.String(), 64)
	if err != nil {
		return budget
	}
	budget.Amount = amount
	return budget
}

func parseDate(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	for _, layout := range []string{"2006-01-02", "02/01/2006", "January 2, 2006"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}
