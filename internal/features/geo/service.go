package geo

import (
	"context"

	"github.com/aryanracha/civiclens/internal/features/issues"
	"github.com/aryanracha/civiclens/internal/features/records"
	"github.com/aryanracha/civiclens/internal/pkg/geoutil"
)

// DefaultMapRadiusKm bounds a centered map query when the client doesn't
// give a radius.
const DefaultMapRadiusKm = 25.0

// NearbyRadiusMeters is the radius for "what's around me" queries.
const NearbyRadiusMeters = 3000.0

// IssueSource feeds citizen issues to the map layer.
type IssueSource interface {
	FindForMap(ctx context.Context, category, status string, center *geoutil.Point, radiusKm float64) ([]issues.Issue, error)
	FindNearby(ctx context.Context, lng, lat, maxMeters float64) ([]issues.Issue, error)
}

// RecordSource feeds official records to the map layer.
type RecordSource interface {
	GetAll(ctx context.Context) ([]records.OfficialRecord, error)
	FindNearby(ctx context.Context, lng, lat, maxMeters float64) ([]records.OfficialRecord, error)
}

// Service assembles the combined map view of issues and official records.
type Service struct {
	issues  IssueSource
	records RecordSource
}

func NewService(issueSource IssueSource, recordSource RecordSource) *Service {
	return &Service{issues: issueSource, records: recordSource}
}

// MapQuery filters the map view. Category and Status apply to issues only;
// Center bounds both layers.
type MapQuery struct {
	Category string
	Status   string
	Center   *geoutil.Point
	RadiusKm float64
}

// MapData returns the GeoJSON view for the given filters.
func (s *Service) MapData(ctx context.Context, q MapQuery) (FeatureCollection, error) {
	radius := q.RadiusKm
	if q.Center != nil && radius <= 0 {
		radius = DefaultMapRadiusKm
	}

	issueList, err := s.issues.FindForMap(ctx, q.Category, q.Status, q.Center, radius)
	if err != nil {
		return FeatureCollection{}, err
	}

	var recordList []records.OfficialRecord
	if q.Center != nil {
		recordList, err = s.records.FindNearby(ctx, q.Center.Lng(), q.Center.Lat(), radius*1000)
	} else {
		recordList, err = s.records.GetAll(ctx)
	}
	if err != nil {
		return FeatureCollection{}, err
	}

	return BuildFeatureCollection(issueList, recordList), nil
}

// Nearby returns everything within walking-ish distance of a point.
func (s *Service) Nearby(ctx context.Context, lat, lng float64) (FeatureCollection, error) {
	issueList, err := s.issues.FindNearby(ctx, lng, lat, NearbyRadiusMeters)
	if err != nil {
		return FeatureCollection{}, err
	}
	recordList, err := s.records.FindNearby(ctx, lng, lat, NearbyRadiusMeters)
	if err != nil {
		return FeatureCollection{}, err
	}
	return BuildFeatureCollection(issueList, recordList), nil
}
