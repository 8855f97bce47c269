// Package merge unions feature sets on a natural key.
package merge

import "github.com/sells-group/city-insights/internal/model"

// ByKey returns every primary feature in order, followed by each
// supplemental feature whose key is not already present among the primary
// features. The key is the string form of the named property; a feature
// without it has the empty key. Supplemental features are not deduplicated
// against each other.
func ByKey(primary, supplemental []model.Feature, key string) []model.Feature {
	seen := make(map[string]struct{}, len(primary))
	for _, f := range primary {
		seen[model.StringField(f.Properties, key)] = struct{}{}
	}

	out := make([]model.Feature, 0, len(primary)+len(supplemental))
	out = append(out, primary...)
	for _, f := range supplemental {
		if _, dup := seen[model.StringField(f.Properties, key)]; dup {
			continue
		}
		out = append(out, f)
	}
	return out
}

// Collections merges two feature collections with ByKey.
func Collections(primary, supplemental model.FeatureCollection, key string) model.FeatureCollection {
	return model.NewFeatureCollection(ByKey(primary.Features, supplemental.Features, key))
}
