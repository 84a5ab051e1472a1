package vocab

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTrees(t *testing.T) {
	ctx := newTestContext(t, betaExtension(t))
	require.NoError(t, ctx.Merge())
	ctx.BuildTrees()

	series := ctx.Models["SessionSeries"]
	assert.Equal(t, [][]string{{"SessionSeries", "Event", "schema:Event"}}, series.Tree)
	assert.Equal(t, "#Event", series.SubClassOf)

	event := ctx.Models["Event"]
	assert.Equal(t, [][]string{{"Event", "schema:Event"}}, event.Tree)
	assert.Equal(t, "", event.SubClassOf)
	assert.Equal(t, []string{"SessionSeries"}, event.SuperClassOf)

	offer := ctx.Models["beta:IndicativeOffer"]
	assert.Equal(t, "schema:Offer", offer.SubClassOf)
}

func TestCanonicalParentSkipsEnumeration(t *testing.T) {
	ctx := newTestContext(t)
	ctx.Models["ScheduledSession"] = &Model{
		Type:          "ScheduledSession",
		RawSubClasses: []string{"RequiredStatusType", "#Event"},
		Fields:        map[string]*Field{},
	}
	require.NoError(t, ctx.Merge())
	ctx.BuildTrees()

	m := ctx.Models["ScheduledSession"]
	require.Len(t, m.Tree, 2)
	assert.Equal(t, []string{"ScheduledSession", "RequiredStatusType", "schema:Enumeration"}, m.Tree[0])
	assert.Equal(t, "#Event", m.SubClassOf)
	assert.Contains(t, ctx.Models["Event"].SuperClassOf, "ScheduledSession")
}

func TestTreeFiltersNonSemanticAncestors(t *testing.T) {
	ctx := newTestContext(t)
	ctx.Models["Concept"] = &Model{
		Type:          "Concept",
		RawSubClasses: []string{"http://www.w3.org/2004/02/skos/core#Concept", "#Place"},
		Fields:        map[string]*Field{},
	}
	require.NoError(t, ctx.Merge())
	ctx.BuildTrees()

	m := ctx.Models["Concept"]
	assert.Equal(t, [][]string{{"Concept", "Place", "schema:Place"}}, m.Tree)
	assert.Equal(t, "#Place", m.SubClassOf)
}

func TestTreeTerminatesCycles(t *testing.T) {
	ctx := newTestContext(t)
	ctx.Models["A"] = &Model{Type: "A", RawSubClasses: []string{"#B"}, Fields: map[string]*Field{}}
	ctx.Models["B"] = &Model{Type: "B", RawSubClasses: []string{"#A"}, Fields: map[string]*Field{}}
	require.NoError(t, ctx.Merge())
	ctx.BuildTrees()

	assert.Equal(t, [][]string{{"A", "B"}}, ctx.Models["A"].Tree)
	assert.Equal(t, "#B", ctx.Models["A"].SubClassOf)
	assert.Equal(t, "#A", ctx.Models["B"].SubClassOf)
}

func TestCanonicalParentWithFoundationalModels(t *testing.T) {
	schemaDoc := `{
	  "@context": {"schema": "https://schema.org/"},
	  "@graph": [
	    {"id": "schema:Thing", "type": "Class"},
	    {"id": "schema:Intangible", "type": "Class", "subClassOf": "schema:Thing"}
	  ]
	}`
	ctx := newTestContext(t, &Extension{Prefix: "schema", Document: mustParse(t, schemaDoc)})
	ctx.Models["Grade"] = &Model{
		Type:          "Grade",
		RawSubClasses: []string{"https://schema.org/Rating", "https://schema.org/Intangible"},
		Fields:        map[string]*Field{},
	}
	require.NoError(t, ctx.Merge())
	ctx.BuildTrees()

	m := ctx.Models["Grade"]
	require.Len(t, m.Tree, 2)
	assert.Equal(t, []string{"Grade", "schema:Rating"}, m.Tree[0])
	assert.Equal(t, "schema:Intangible", m.SubClassOf)
	assert.Equal(t, []string{"Grade"}, ctx.Models["schema:Intangible"].SuperClassOf)
}

func TestSortedModels(t *testing.T) {
	ctx := newTestContext(t, betaExtension(t))
	require.NoError(t, ctx.Merge())
	ctx.BuildTrees()

	sorted := ctx.SortedModels()
	assert.Equal(t, []string{
		"Event",
		"beta:IndicativeOffer",
		"Organization",
		"Person",
		"Place",
		"SessionSeries",
	}, sorted)

	assert.Equal(t, sorted, ctx.SortedModels())
}
