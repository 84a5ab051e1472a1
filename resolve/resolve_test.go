package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/openactive/models-lib/errors"
	"github.com/openactive/models-lib/typedesc"
	"github.com/openactive/models-lib/vocab"
)

func text() []vocab.RangeRef {
	return []vocab.RangeRef{{Kind: vocab.RangeRequiredType, ID: "https://schema.org/Text"}}
}

// newTestContext builds a merged, tree-built Context:
//
//	Event (derived from schema:Event)
//	└── SessionSeries (hides organizer, redeclares name)
//	    └── ScheduledSession
//	Thing <- Course (hides course)
func newTestContext(t *testing.T) *vocab.Context {
	t.Helper()
	base := &vocab.Base{
		Namespaces: map[string]string{
			"oa":     "https://openactive.io/",
			"schema": "https://schema.org/",
			"beta":   "https://openactive.io/ns-beta#",
		},
		Models: map[string]*vocab.Model{
			"Event": {
				Type:        "Event",
				DerivedFrom: "https://schema.org/Event",
				HasID:       true,
				SampleID:    "https://example.com/events/",
				Fields: map[string]*vocab.Field{
					"name":        {Name: "name", Ranges: text()},
					"description": {Name: "description", Ranges: text()},
					"startDate":   {Name: "startDate", SameAs: "https://schema.org/startDate", Ranges: []vocab.RangeRef{{Kind: vocab.RangeRequiredType, ID: "https://schema.org/DateTime"}}},
					"endDate":     {Name: "endDate", Ranges: []vocab.RangeRef{{Kind: vocab.RangeRequiredType, ID: "https://schema.org/DateTime"}}},
					"organizer": {Name: "organizer", Ranges: []vocab.RangeRef{
						{Kind: vocab.RangeAlternativeModel, ID: "#Organization"},
						{Kind: vocab.RangeAlternativeModel, ID: "#Person"},
					}},
					"ageRange": {Name: "ageRange", Ranges: text()},
					"type":     {Name: "type", Ranges: text()},
					"@context": {Name: "@context", Ranges: text()},
					"id":       {Name: "id", Ranges: []vocab.RangeRef{{Kind: vocab.RangeRequiredType, ID: "https://schema.org/URL"}}},
				},
			},
			"SessionSeries": {
				Type:          "SessionSeries",
				SubClassOf:    "#Event",
				RawSubClasses: []string{"#Event"},
				NotInSpec:     []string{"organizer"},
				Fields: map[string]*vocab.Field{
					"name":     {Name: "name", Ranges: text()},
					"duration": {Name: "duration", Ranges: []vocab.RangeRef{{Kind: vocab.RangeRequiredType, ID: "https://schema.org/Duration"}}},
					"ageRange": {Name: "ageRange", Ranges: []vocab.RangeRef{{Kind: vocab.RangeModel, ID: "#Place"}}},
				},
			},
			"ScheduledSession": {
				Type:          "ScheduledSession",
				SubClassOf:    "#SessionSeries",
				RawSubClasses: []string{"#SessionSeries"},
				Fields: map[string]*vocab.Field{
					"Zeta":  {Name: "Zeta", Ranges: text()},
					"alpha": {Name: "alpha", Ranges: text()},
				},
			},
			"Thing": {
				Type:   "Thing",
				Fields: map[string]*vocab.Field{"course": {Name: "course", Ranges: text()}},
			},
			"Course": {
				Type:          "Course",
				RawSubClasses: []string{"#Thing"},
				NotInSpec:     []string{"course"},
				Fields:        map[string]*vocab.Field{},
			},
			"Organization": {Type: "Organization"},
			"Person":       {Type: "Person"},
			"Place":        {Type: "Place"},
		},
	}

	ctx := vocab.NewContext(base, vocab.DefaultOptions(), zaptest.NewLogger(t).Sugar())
	ctx.AddExtension(&vocab.Extension{Prefix: "beta", Document: &vocab.Document{
		Context: map[string]string{"beta": "https://openactive.io/ns-beta#"},
		Graph: []map[string]any{
			{"id": "beta:isVirtual", "type": "Property", "domainIncludes": "oa:SessionSeries", "rangeIncludes": "schema:Boolean"},
			{"id": "beta:affiliation", "type": "Property", "domainIncludes": "oa:SessionSeries", "rangeIncludes": "schema:Text"},
		},
	}})
	require.NoError(t, ctx.Merge())
	ctx.BuildTrees()
	return ctx
}

func fieldNames(fields []*vocab.Field) []string {
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, f.Name)
	}
	return names
}

func byName(fields []*vocab.Field, name string) *vocab.Field {
	for _, f := range fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func TestDisinheritNotInSpec(t *testing.T) {
	ctx := newTestContext(t)
	r := New(ctx, Disinherit, zaptest.NewLogger(t).Sugar())

	fields, err := r.Fields(ctx.Models["SessionSeries"])
	require.NoError(t, err)

	organizer := byName(fields, "organizer")
	require.NotNil(t, organizer)
	assert.True(t, organizer.Disinherit)

	parentField := ctx.Models["Event"].Fields["organizer"]
	assert.Equal(t, parentField.Ranges, organizer.Ranges)

	types := typedesc.NewResolver(ctx, zaptest.NewLogger(t).Sugar())
	got, err := types.Resolve(organizer)
	require.NoError(t, err)
	want, err := types.Resolve(parentField)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	assert.False(t, ctx.Models["SessionSeries"].Fields["name"].Disinherit)
	assert.NotContains(t, ctx.Models["SessionSeries"].Fields, "organizer")
}

func TestDisinheritOrdering(t *testing.T) {
	ctx := newTestContext(t)
	r := New(ctx, Disinherit, zaptest.NewLogger(t).Sugar())

	fields, err := r.Fields(ctx.Models["SessionSeries"])
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "ageRange", "duration", "organizer", "affiliation", "isVirtual"}, fieldNames(fields))
	for i, f := range fields {
		want := i + FirstOrder
		if f.ExtensionPrefix != "" {
			want += ExtensionOrderOffset
		}
		assert.Equal(t, want, f.Order, f.Name)
	}
}

func TestOverrideAndDerivedFromSchema(t *testing.T) {
	ctx := newTestContext(t)
	r := New(ctx, Disinherit, zaptest.NewLogger(t).Sugar())

	fields, err := r.Fields(ctx.Models["SessionSeries"])
	require.NoError(t, err)

	assert.True(t, byName(fields, "name").Override, "identical signature is an override")
	assert.False(t, byName(fields, "ageRange").Override, "narrowed type is not an override")
	assert.False(t, byName(fields, "duration").Override)

	event, err := r.Fields(ctx.Models["Event"])
	require.NoError(t, err)
	assert.True(t, byName(event, "startDate").DerivedFromSchema, "sameAs a foundational property")
	assert.True(t, byName(event, "name").DerivedFromSchema, "model derives from a foundational class")

	series, err := r.Fields(ctx.Models["ScheduledSession"])
	require.NoError(t, err)
	assert.False(t, byName(series, "alpha").DerivedFromSchema)
}

func TestDisinheritMissingParentField(t *testing.T) {
	ctx := newTestContext(t)
	ctx.Models["ScheduledSession"].NotInSpec = []string{"organizer"}
	r := New(ctx, Disinherit, zaptest.NewLogger(t).Sugar())

	_, err := r.Fields(ctx.Models["ScheduledSession"])
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotInSpec))
}

func TestDisinheritSkipsOwnTypeName(t *testing.T) {
	ctx := newTestContext(t)
	r := New(ctx, Disinherit, zaptest.NewLogger(t).Sugar())

	fields, err := r.Fields(ctx.Models["Course"])
	require.NoError(t, err)
	assert.Nil(t, byName(fields, "course"))
}

func TestFullInheritance(t *testing.T) {
	ctx := newTestContext(t)
	r := New(ctx, FullInheritance, zaptest.NewLogger(t).Sugar())

	fields, err := r.Fields(ctx.Models["ScheduledSession"])
	require.NoError(t, err)

	assert.Equal(t, []string{
		"@context", "type", "@id", "id", "name", "description",
		"ageRange", "alpha", "duration", "startDate", "endDate", "Zeta",
		"affiliation", "isVirtual",
	}, fieldNames(fields))

	assert.Nil(t, byName(fields, "organizer"), "hidden by SessionSeries notInSpec")
	assert.Equal(t, "#Place", byName(fields, "ageRange").Ranges[0].ID, "nearest ancestor declaration wins")

	id := byName(fields, IDFieldName)
	require.NotNil(t, id)
	assert.Equal(t, "https://schema.org/URL", id.Ranges[0].ID)
	assert.Equal(t, "https://example.com/events/12345", id.Example)
}

func TestFullInheritanceIsSuperset(t *testing.T) {
	ctx := newTestContext(t)
	r := New(ctx, FullInheritance, zaptest.NewLogger(t).Sugar())

	for _, key := range ctx.SortedModels() {
		m := ctx.Models[key]
		parent := ctx.Parent(m)
		if parent == nil {
			continue
		}
		child, err := r.Fields(m)
		require.NoError(t, err)
		inherited, err := r.Fields(parent)
		require.NoError(t, err)

		for _, f := range inherited {
			if contains(m.NotInSpec, f.Name) {
				continue
			}
			assert.NotNil(t, byName(child, f.Name), "%s should inherit %s from %s", key, f.Name, parent.Type)
		}
	}
}

func TestFieldsUniqueAndDeterministic(t *testing.T) {
	ctx := newTestContext(t)

	for _, policy := range []Policy{Disinherit, FullInheritance} {
		r := New(ctx, policy, zaptest.NewLogger(t).Sugar())
		for _, key := range ctx.SortedModels() {
			first, err := r.Fields(ctx.Models[key])
			require.NoError(t, err)
			second, err := r.Fields(ctx.Models[key])
			require.NoError(t, err)

			assert.Equal(t, fieldNames(first), fieldNames(second), "%s under %s", key, policy)

			seen := map[string]bool{}
			maxCore := 0
			for _, f := range first {
				assert.False(t, seen[f.Name], "duplicate %s on %s", f.Name, key)
				seen[f.Name] = true
				if f.ExtensionPrefix == "" && f.Order > maxCore {
					maxCore = f.Order
				}
			}
			for _, f := range first {
				if f.ExtensionPrefix != "" {
					assert.Greater(t, f.Order, maxCore, "%s on %s", f.Name, key)
				}
			}
		}
	}
}

func TestFieldsDoNotMutateContext(t *testing.T) {
	ctx := newTestContext(t)
	r := New(ctx, Disinherit, zaptest.NewLogger(t).Sugar())

	fields, err := r.Fields(ctx.Models["SessionSeries"])
	require.NoError(t, err)
	for _, f := range fields {
		f.Description = []string{"mutated"}
	}

	for _, f := range ctx.Models["SessionSeries"].Fields {
		assert.Zero(t, f.Order)
		assert.False(t, f.Override)
		assert.NotEqual(t, []string{"mutated"}, f.Description)
	}
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("full")
	require.NoError(t, err)
	assert.Equal(t, FullInheritance, p)

	p, err = ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, Disinherit, p)

	_, err = ParsePolicy("sideways")
	assert.Error(t, err)
}
