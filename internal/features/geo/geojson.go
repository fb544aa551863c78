package geo

import (
	"github.com/aryanracha/civiclens/internal/features/issues"
	"github.com/aryanracha/civiclens/internal/features/records"
	"github.com/aryanracha/civiclens/internal/pkg/geoutil"
)

// Feature type discriminators carried in properties.type.
const (
	FeatureTypeIssue          = "Issue"
	FeatureTypeOfficialRecord = "OfficialRecord"
)

// Feature is a GeoJSON feature with a typed properties bag.
type Feature struct {
	Type       string                 `json:"type"`
	Geometry   geoutil.Point          `json:"geometry"`
	Properties map[string]interface{} `json:"properties"`
}

// FeatureCollection is a GeoJSON feature collection mixing citizen issues
// and official records. Consumers discriminate on properties.type.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// BuildFeatureCollection renders issues and records into one GeoJSON
// collection, skipping any document without a usable location.
func BuildFeatureCollection(issueList []issues.Issue, recordList []records.OfficialRecord) FeatureCollection {
	features := make([]Feature, 0, len(issueList)+len(recordList))

	for _, issue := range issueList {
		if !issue.Location.IsValid() {
			continue
		}
		features = append(features, Feature{
			Type:     "Feature",
			Geometry: issue.Location,
			Properties: map[string]interface{}{
				"type":               FeatureTypeIssue,
				"id":                 issue.ID.Hex(),
				"title":              issue.Title,
				"category":           issue.Category,
				"status":             issue.Status,
				"address":            issue.Address,
				"reportCount":        len(issue.ReportIDs),
				"verificationStatus": issue.AuditVerification.Status,
				"riskLevel":          issue.AuditVerification.RiskLevel,
			},
		})
	}

	for _, record := range recordList {
		if !record.Location.IsValid() {
			continue
		}
		features = append(features, Feature{
			Type:     "Feature",
			Geometry: record.Location,
			Properties: map[string]interface{}{
				"type":        FeatureTypeOfficialRecord,
				"id":          record.ID.Hex(),
				"projectName": record.ProjectName,
				"department":  record.Department,
				"status":      record.Status,
				"budget":      record.Budget.Formatted,
				"contractor":  record.Contractor.Name,
			},
		})
	}

	return FeatureCollection{Type: "FeatureCollection", Features: features}
}
