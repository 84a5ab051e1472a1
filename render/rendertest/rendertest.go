// Package rendertest provides the vocabulary fixture shared by renderer tests.
package rendertest

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/openactive/models-lib/resolve"
	"github.com/openactive/models-lib/typedesc"
	"github.com/openactive/models-lib/vocab"
)

// BetaWarning is the property warning of the fixture's beta extension.
const BetaWarning = "This property is in beta."

func ranges(kind vocab.RangeKind, ids ...string) []vocab.RangeRef {
	out := make([]vocab.RangeRef, 0, len(ids))
	for _, id := range ids {
		out = append(out, vocab.RangeRef{Kind: kind, ID: id})
	}
	return out
}

func required(id string) []vocab.RangeRef {
	return ranges(vocab.RangeRequiredType, id)
}

// Base returns a small vocabulary shaped like the OpenActive data models:
//
//	Event (derived from schema:Event)
//	└── SessionSeries (hides duration, fixes type)
//	Place, Organization, Person
func Base() *vocab.Base {
	return &vocab.Base{
		Version: "2.0.0",
		Namespaces: map[string]string{
			"oa":     "https://openactive.io/",
			"schema": "https://schema.org/",
		},
		Models: map[string]*vocab.Model{
			"Event": {
				Type:        "Event",
				DerivedFrom: "https://schema.org/Event",
				HasID:       true,
				Description: []vocab.DescriptionSection{{Title: "Overview", Paragraphs: []string{"An event."}}},
				Fields: map[string]*vocab.Field{
					"@context": {Name: "@context", Ranges: required("https://schema.org/Text")},
					"type":     {Name: "type", Ranges: required("https://schema.org/Text")},
					"id":       {Name: "id", Ranges: required("https://schema.org/URL")},
					"name": {Name: "name", MemberName: "schema:name", SameAs: "https://schema.org/name",
						Ranges: required("https://schema.org/Text"), Description: []string{"The name of the event."},
						Example: "Tai chi Class"},
					"startDate": {Name: "startDate", SameAs: "https://schema.org/startDate",
						Ranges: required("https://schema.org/DateTime")},
					"duration": {Name: "duration", Ranges: required("https://schema.org/Duration")},
					"maximumAttendeeCapacity": {Name: "maximumAttendeeCapacity",
						Ranges: required("https://schema.org/Integer"), Example: 30},
					"organizer": {Name: "organizer",
						Ranges: ranges(vocab.RangeAlternativeModel, "#Organization", "#Person")},
					"location":    {Name: "location", Ranges: ranges(vocab.RangeModel, "#Place")},
					"eventStatus": {Name: "eventStatus", Ranges: required("https://schema.org/EventStatusType")},
					"attendeeInstructions": {Name: "attendeeInstructions", Ranges: required("https://schema.org/Text"),
						DeprecationGuidance: "Use description instead."},
					"subEvent": {Name: "subEvent", Ranges: ranges(vocab.RangeModel, "ArrayOf#Event")},
				},
			},
			"SessionSeries": {
				Type:          "SessionSeries",
				SubClassOf:    "#Event",
				RawSubClasses: []string{"#Event"},
				NotInSpec:     []string{"duration"},
				Fields: map[string]*vocab.Field{
					"type": {Name: "type", Ranges: required("https://schema.org/Text"), RequiredContent: "SessionSeries"},
				},
			},
			"Place": {
				Type:        "Place",
				DerivedFrom: "https://schema.org/Place",
				Fields: map[string]*vocab.Field{
					"url": {Name: "url", Ranges: required("https://schema.org/URL")},
				},
			},
			"Organization": {Type: "Organization", DerivedFrom: "https://schema.org/Organization", Fields: map[string]*vocab.Field{}},
			"Person":       {Type: "Person", DerivedFrom: "https://schema.org/Person", Fields: map[string]*vocab.Field{}},
		},
		Enums: map[string]*vocab.EnumType{
			"EventStatusType":    {Namespace: "https://schema.org/", Values: []string{"EventScheduled", "EventCancelled"}},
			"RequiredStatusType": {Namespace: "https://openactive.io/", Values: []string{"Required", "Optional"}},
		},
	}
}

func betaExtension() *vocab.Extension {
	return &vocab.Extension{
		Prefix:          "beta",
		PropertyWarning: BetaWarning,
		Document: &vocab.Document{
			Context: map[string]string{"beta": "https://openactive.io/ns-beta#"},
			Graph: []map[string]any{
				{"id": "beta:isVirtual", "type": "Property", "domainIncludes": "oa:Event", "rangeIncludes": "schema:Boolean"},
			},
		},
	}
}

func schemaExtension() *vocab.Extension {
	return &vocab.Extension{
		Prefix: "schema",
		Document: &vocab.Document{
			Context: map[string]string{"schema": "https://schema.org/"},
			Graph: []map[string]any{
				{"id": "schema:Thing", "type": "Class"},
				{"id": "schema:Place", "type": "Class", "subClassOf": "schema:Thing"},
				{"id": "schema:name", "type": "Property", "domainIncludes": "schema:Thing", "rangeIncludes": "schema:Text"},
				{"id": "schema:containedInPlace", "type": "Property", "domainIncludes": "schema:Place", "rangeIncludes": "schema:Place"},
			},
		},
	}
}

// NewContext returns the fixture merged, tree-built and marked for implicit
// referencing. With foundational set the foundational vocabulary is merged
// as an extension too.
func NewContext(t testing.TB, foundational bool, opts ...typedesc.Option) *vocab.Context {
	t.Helper()
	log := zaptest.NewLogger(t).Sugar()

	ctx := vocab.NewContext(Base(), vocab.DefaultOptions(), log)
	ctx.AddExtension(betaExtension())
	if foundational {
		ctx.AddExtension(schemaExtension())
	}
	require.NoError(t, ctx.Merge())
	ctx.BuildTrees()
	resolve.MarkImplicitReferencing(ctx, typedesc.NewResolver(ctx, log, opts...), log)
	return ctx
}
