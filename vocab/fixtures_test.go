package vocab

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// testBase returns a small base vocabulary shaped like the OpenActive data models.
func testBase() *Base {
	return &Base{
		Version: "2.0.0",
		Namespaces: map[string]string{
			"oa":      "https://openactive.io/",
			"schema":  "https://schema.org/",
			"pending": "https://pending.schema.org/",
			"rdfs":    "http://www.w3.org/2000/01/rdf-schema#",
			"skos":    "http://www.w3.org/2004/02/skos/core#",
		},
		Models: map[string]*Model{
			"Event": {
				Type:        "Event",
				DerivedFrom: "https://schema.org/Event",
				HasID:       true,
				SampleID:    "https://example.com/events/",
				Fields: map[string]*Field{
					"name": {Name: "name", MemberName: "schema:name", SameAs: "https://schema.org/name",
						Ranges: []RangeRef{{Kind: RangeRequiredType, ID: "https://schema.org/Text"}}},
					"startDate": {Name: "startDate", SameAs: "https://schema.org/startDate",
						Ranges: []RangeRef{{Kind: RangeRequiredType, ID: "https://schema.org/DateTime"}}},
					"organizer": {Name: "organizer",
						Ranges: []RangeRef{
							{Kind: RangeAlternativeModel, ID: "#Organization"},
							{Kind: RangeAlternativeModel, ID: "#Person"},
						}},
				},
			},
			"SessionSeries": {
				Type:          "SessionSeries",
				SubClassOf:    "#Event",
				RawSubClasses: []string{"#Event"},
				Fields:        map[string]*Field{},
			},
			"Organization": {Type: "Organization", DerivedFrom: "https://schema.org/Organization", Fields: map[string]*Field{}},
			"Person":       {Type: "Person", DerivedFrom: "https://schema.org/Person", Fields: map[string]*Field{}},
			"Place":        {Type: "Place", DerivedFrom: "https://schema.org/Place", Fields: map[string]*Field{}},
		},
		Enums: map[string]*EnumType{
			"DayOfWeek":          {Namespace: "https://schema.org/", Values: []string{"Monday", "Tuesday"}},
			"RequiredStatusType": {Namespace: "https://openactive.io/", Values: []string{"Required", "Optional"}},
		},
	}
}

const betaDocument = `{
  "@context": [
    "https://openactive.io/",
    {
      "beta": "https://openactive.io/ns-beta#",
      "pending": "https://pending.schema.org/",
      "isArray": {"@id": "beta:isArray"}
    }
  ],
  "@graph": [
    {
      "id": "beta:IndicativeOffer",
      "type": "Class",
      "subClassOf": "schema:Offer",
      "comment": "An indicative offer."
    },
    {
      "id": "beta:isVirtual",
      "type": "Property",
      "label": "isVirtual",
      "comment": "Whether the event is virtual.",
      "domainIncludes": ["oa:Event", "oa:Event", "pending:Course"],
      "rangeIncludes": "schema:Boolean",
      "discussionUrl": "https://github.com/openactive/modelling-opportunity-data/issues/197"
    },
    {
      "id": "beta:affiliatedLocation",
      "type": "Property",
      "domainIncludes": ["oa:Place"],
      "rangeIncludes": ["oa:Place"],
      "@container": "@list"
    },
    {
      "id": "beta:VirtualLocationType",
      "type": "Class",
      "subClassOf": "schema:Enumeration",
      "label": "VirtualLocationType",
      "comment": "Kinds of virtual location."
    },
    {
      "id": "beta:Zoom",
      "type": "beta:VirtualLocationType",
      "label": "Zoom"
    },
    {
      "id": "beta:Teams",
      "type": "beta:VirtualLocationType",
      "label": "Teams"
    }
  ]
}`

const extDocument = `{
  "@context": {
    "ext": "https://example.com/ext#",
    "beta": "https://openactive.io/ns-beta#"
  },
  "@graph": [
    {
      "@id": "ext:accessibilityNote",
      "@type": "rdf:Property",
      "rdfs:comment": {"en": "Free text accessibility notes."},
      "schema:domainIncludes": {"@id": "oa:Event"},
      "schema:rangeIncludes": {"@id": "schema:Text"}
    }
  ]
}`

func mustParse(t *testing.T, doc string) *Document {
	t.Helper()
	d, err := ParseDocument([]byte(doc))
	require.NoError(t, err)
	return d
}

// newTestContext builds a Context over testBase with the given extensions
// added in order.
func newTestContext(t *testing.T, exts ...*Extension) *Context {
	t.Helper()
	ctx := NewContext(testBase(), DefaultOptions(), zaptest.NewLogger(t).Sugar())
	for _, ext := range exts {
		ctx.AddExtension(ext)
	}
	return ctx
}

func betaExtension(t *testing.T) *Extension {
	return &Extension{Prefix: "beta", URL: "https://openactive.io/ns-beta", Document: mustParse(t, betaDocument)}
}

func extExtension(t *testing.T) *Extension {
	return &Extension{Prefix: "ext", URL: "https://example.com/ext.jsonld", Document: mustParse(t, extDocument)}
}
