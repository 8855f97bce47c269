package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/city-insights/internal/model"
)

func feat(num string, extra ...string) model.Feature {
	props := map[string]any{"permitnum": num}
	if len(extra) > 0 {
		props["source"] = extra[0]
	}
	return model.Feature{Type: "Feature", Properties: props}
}

func nums(fs []model.Feature) []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = model.StringField(f.Properties, "permitnum")
	}
	return out
}

func TestByKey(t *testing.T) {
	t.Parallel()

	got := ByKey(
		[]model.Feature{feat("A"), feat("B", "building")},
		[]model.Feature{feat("B", "adu"), feat("C")},
		"permitnum",
	)
	assert.Equal(t, []string{"A", "B", "C"}, nums(got))
	assert.Equal(t, "building", got[1].Properties["source"], "primary wins on key collision")
}

func TestByKey_OrderFollowsInputs(t *testing.T) {
	t.Parallel()

	got := ByKey(
		[]model.Feature{feat("B"), feat("A")},
		[]model.Feature{feat("D"), feat("A"), feat("C")},
		"permitnum",
	)
	assert.Equal(t, []string{"B", "A", "D", "C"}, nums(got))
}

func TestByKey_EmptyInputs(t *testing.T) {
	t.Parallel()

	assert.Empty(t, ByKey(nil, nil, "permitnum"))
	assert.Equal(t, []string{"X"}, nums(ByKey(nil, []model.Feature{feat("X")}, "permitnum")))
	assert.Equal(t, []string{"X"}, nums(ByKey([]model.Feature{feat("X")}, nil, "permitnum")))
}

func TestByKey_NumericKeysCompareAsStrings(t *testing.T) {
	t.Parallel()

	primary := []model.Feature{{Properties: map[string]any{"permitnum": float64(101)}}}
	supplemental := []model.Feature{{Properties: map[string]any{"permitnum": "101"}}}
	assert.Len(t, ByKey(primary, supplemental, "permitnum"), 1)
}

func TestCollections(t *testing.T) {
	t.Parallel()

	got := Collections(
		model.NewFeatureCollection([]model.Feature{feat("A")}),
		model.NewFeatureCollection([]model.Feature{feat("A"), feat("B")}),
		"permitnum",
	)
	assert.Equal(t, "FeatureCollection", got.Type)
	assert.Equal(t, []string{"A", "B"}, nums(got.Features))
}
