// Package dataset loads the region and sub-region GeoJSON tiers and the
// point-of-interest records the drill-down view consumes.
package dataset

import (
	"fmt"

	"github.com/paulmach/orb/geojson"

	"github.com/phanxgames/geodrill"
)

// Parse decodes a GeoJSON FeatureCollection into polygonal features.
// Features with other geometry types are skipped.
func Parse(data []byte) ([]*geodrill.Feature, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("dataset: decode feature collection: %w", err)
	}
	out := make([]*geodrill.Feature, 0, len(fc.Features))
	for _, f := range fc.Features {
		if feat, ok := geodrill.FeatureFromGeoJSON(f); ok {
			out = append(out, feat)
		}
	}
	return out, nil
}
