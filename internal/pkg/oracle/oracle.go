// Package oracle wraps the external AI services the audit pipeline depends
// on: the document extractor, the verdict generator, and the image
// classifier. Every capability has a deterministic fallback so the pipeline
// always produces some result even when the services are unreachable.
package oracle

import "context"

// DocumentFields is the normalized output of contract document extraction.
type DocumentFields struct {
	ProjectName string  `json:"projectName"`
	Department  string  `json:"department"`
	Budget      string  `json:"budget"`
	Contractor  string  `json:"contractor"`
	Status      string  `json:"status"`
	StartDate   string  `json:"startDate"`
	EndDate     string  `json:"endDate"`
	Location    string  `json:"location"`
	Confidence  float64 `json:"confidence"`
}

// Classification is the output of the computer-vision issue classifier.
type Classification struct {
	Prediction  string  `json:"prediction"`
	Probability float64 `json:"probability"`
}

// Verdict is a generated discrepancy verdict.
type Verdict struct {
	RiskLevel  string  `json:"riskLevel"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

// RecordSnapshot carries the official record fields handed to the verdict
// generator.
type RecordSnapshot struct {
	ProjectName string `json:"projectName"`
	Department  string `json:"department"`
	Status      string `json:"status"`
	Budget      string `json:"budget"`
	Contractor  string `json:"contractor"`
}

// Evidence carries the citizen-submitted side of the comparison.
type Evidence struct {
	Category     string          `json:"category"`
	Description  string          `json:"description"`
	ImageURL     string          `json:"imageUrl"`
	CVPrediction *Classification `json:"cvPrediction,omitempty"`
}

// VerdictRequest is the full input to verdict generation.
type VerdictRequest struct {
	Record   *RecordSnapshot `json:"record"`
	Evidence Evidence        `json:"evidence"`
}

// Oracle is the capability interface the audit pipeline is built against.
// Implementations are fallible external services; callers must apply the
// Fallback* values rather than propagate errors.
type Oracle interface {
	ExtractDocument(ctx context.Context, data []byte, mimeType string) (*DocumentFields, error)
	GenerateVerdict(ctx context.Context, req VerdictRequest) (*Verdict, error)
	ClassifyImage(ctx context.Context, imageURL string) (*Classification, error)
}

// FallbackDocument is the fixed demo record used when document extraction
// is unavailable.
func FallbackDocument() *DocumentFields {
	return &DocumentFields{
		ProjectName: "Chandani Chowk Flyover Expansion (DEMO)",
		Department:  "Public Works Department",
		Budget:      "₹85,50,00,000",
		Contractor:  "Dilip Buildcon Ltd.",
		Status:      "Planned",
		StartDate:   "2026-02-01",
		EndDate:     "2027-08-15",
		Location:    "Pune Bypass, Maharashtra",
		Confidence:  98.5,
	}
}

// FallbackVerdict is the conservative verdict used when verdict generation
// is unavailable. The pipeline fails loud and high-risk, never quiet.
func FallbackVerdict() *Verdict {
	return &Verdict{
		RiskLevel:  "Critical",
		Confidence: 95,
		Reasoning:  "Automated verification service was unreachable. Evidence could not be cross-checked against the official record; flagging for manual review at highest priority.",
	}
}
