package records

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/aryanracha/civiclens/internal/pkg/cloudinary"
	"github.com/aryanracha/civiclens/internal/pkg/oracle"
	apperrors "github.com/aryanracha/civiclens/pkg/errors"
)

type fakeRecordStore struct {
	inserted []*OfficialRecord
	err      error
}

func (f *fakeRecordStore) Insert(_ context.Context, record *OfficialRecord) error {
	if f.err != nil {
		return f.err
	}
	f.inserted = append(f.inserted, record)
	return nil
}

type fakeExtractor struct {
	fields *oracle.DocumentFields
	err    error
}

func (f *fakeExtractor) ExtractDocument(_ context.Context, _ []byte, _ string) (*oracle.DocumentFields, error) {
	return f.fields, f.err
}

type fakeVault struct {
	err error
}

func (f *fakeVault) UploadContractDocument(_ context.Context, _ cloudinary.File) (*cloudinary.UploadResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &cloudinary.UploadResult{URL: "https://res.cloudinary.com/demo/contract.pdf"}, nil
}

func contractFile() cloudinary.File {
	return cloudinary.File{
		Data:     []byte("%PDF-1.7 contract"),
		MimeType: "application/pdf",
		Filename: "contract.pdf",
	}
}

func TestUploadContract_PersistsExtractedFields(t *testing.T) {
	store := &fakeRecordStore{}
	svc := NewService(store, &fakeExtractor{fields: &oracle.DocumentFields{
		ProjectName: "SV Road Resurfacing Phase 2",
		Department:  "Public Works Department",
		Budget:      "₹12,50,00,000",
		Contractor:  "Apex Infra Pvt. Ltd.",
		Status:      "completed",
		EndDate:     "2026-03-31",
		Location:    "SV Road, Andheri West",
	}}, &fakeVault{})

	lat, lng := 19.1197, 72.8468
	record, err := svc.UploadContract(context.Background(), &UploadContractRequest{
		File:       contractFile(),
		Latitude:   &lat,
		Longitude:  &lng,
		UploadedBy: primitive.NewObjectID(),
	})
	require.NoError(t, err)

	assert.Equal(t, "SV Road Resurfacing Phase 2", record.ProjectName)
	assert.Equal(t, StatusCompleted, record.Status, "status is normalized to the canonical casing")
	assert.Equal(t, 125000000.0, record.Budget.Amount)
	assert.Equal(t, "₹12,50,00,000", record.Budget.Formatted)
	assert.Equal(t, "Apex Infra Pvt. Ltd.", record.Contractor.Name)
	assert.Equal(t, "SV Road, Andheri West", record.Address)
	require.NotNil(t, record.CompletionDate)
	assert.Equal(t, []float64{lng, lat}, record.Location.Coordinates)
	assert.Equal(t, "https://res.cloudinary.com/demo/contract.pdf", record.DocumentURL)
	require.Len(t, store.inserted, 1)
}

func TestUploadContract_FallsBackWhenExtractionFails(t *testing.T) {
	store := &fakeRecordStore{}
	svc := NewService(store, &fakeExtractor{err: errors.New("model overloaded")}, &fakeVault{})

	record, err := svc.UploadContract(context.Background(), &UploadContractRequest{
		File:       contractFile(),
		UploadedBy: primitive.NewObjectID(),
	})
	require.NoError(t, err)

	demo := oracle.FallbackDocument()
	assert.Equal(t, demo.ProjectName, record.ProjectName)
	assert.Equal(t, demo.Department, record.Department)
	assert.Equal(t, StatusPlanned, record.Status)
	// Missing coordinates pin the record to the registry default.
	assert.Equal(t, []float64{72.8777, 19.0760}, record.Location.Coordinates)
}

func TestUploadContract_VaultFailureAborts(t *testing.T) {
	store := &fakeRecordStore{}
	svc := NewService(store, &fakeExtractor{fields: oracle.FallbackDocument()},
		&fakeVault{err: errors.New("upload rejected")})

	_, err := svc.UploadContract(context.Background(), &UploadContractRequest{
		File:       contractFile(),
		UploadedBy: primitive.NewObjectID(),
	})
	require.Error(t, err)
	assert.Empty(t, store.inserted)
}

func TestUploadContract_RequiresDocument(t *testing.T) {
	svc := NewService(&fakeRecordStore{}, &fakeExtractor{}, &fakeVault{})

	_, err := svc.UploadContract(context.Background(), &UploadContractRequest{
		UploadedBy: primitive.NewObjectID(),
	})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestParseBudget(t *testing.T) {
	cases := []struct {
		raw    string
		amount float64
	}{
		{"₹85,50,00,000", 855000000},
		{"Rs. 1,20,000", 120000},
		{"12000000", 12000000},
		{"Not specified", 0},
		{"", 0},
	}
	for _, tc := range cases {
		b := parseBudget(tc.raw)
		assert.Equal(t, tc.amount, b.Amount, "raw=%q", tc.raw)
		assert.Equal(t, "INR", b.Currency)
	}
}

func TestNormalizeStatus(t *testing.T) {
	assert.Equal(t, StatusCompleted, normalizeStatus("COMPLETED"))
	assert.Equal(t, StatusMaintenancePhase, normalizeStatus("maintenance phase"))
	assert.Equal(t, StatusPlanned, normalizeStatus(""))
	assert.Equal(t, "Under Litigation", normalizeStatus("Under Litigation"))
}
