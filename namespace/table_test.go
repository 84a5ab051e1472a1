package namespace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openactive/models-lib/errors"
)

func newTestTable() *Table {
	t := New("oa")
	t.Merge(map[string]string{
		"oa":      "https://openactive.io/",
		"schema":  "https://schema.org/",
		"pending": "https://pending.schema.org/",
		"beta":    "https://openactive.io/ns-beta#",
		"skos":    "http://www.w3.org/2004/02/skos/core#",
		"rdfs":    "http://www.w3.org/2000/01/rdf-schema#",
	})
	return t
}

func TestCompact(t *testing.T) {
	table := newTestTable()

	tests := []struct {
		name string
		iri  string
		want string
	}{
		{"foundational class", "https://schema.org/SportsActivityLocation", "schema:SportsActivityLocation"},
		{"http normalized", "http://schema.org/Place", "schema:Place"},
		{"core prefix is bare", "https://openactive.io/Event", "Event"},
		{"longest base wins", "https://openactive.io/ns-beta#sportsActivityLocation", "beta:sportsActivityLocation"},
		{"separator swapped", "https://openactive.io/ns-beta/virtualLocation", "beta:virtualLocation"},
		{"array marker dropped", "ArrayOf#https://schema.org/Text", "schema:Text"},
		{"local hash reference", "#Event", "Event"},
		{"bare name passes through", "Event", "Event"},
		{"bare prefix for empty remainder", "https://schema.org/", "schema"},
		{"bare prefix for namespace IRI", "http://www.w3.org/2004/02/skos/core#", "skos"},
		{"unknown namespace", "https://example.com/Thing", "https://example.com/Thing"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, table.Compact(tt.iri))
		})
	}
}

func TestExpand(t *testing.T) {
	table := newTestTable()

	tests := []struct {
		name    string
		short   string
		isArray bool
		want    string
	}{
		{"prefixed", "schema:Text", false, "https://schema.org/Text"},
		{"prefixed array", "schema:Text", true, "ArrayOf#https://schema.org/Text"},
		{"core prefix", "oa:Event", false, "#Event"},
		{"core prefix array", "oa:Event", true, "ArrayOf#Event"},
		{"absolute passes through", "https://schema.org/Place", false, "https://schema.org/Place"},
		{"bare name", "Event", false, "Event"},
		{"bare name array", "Event", true, "ArrayOf#Event"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := table.Expand(tt.short, tt.isArray)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExpandUnknownPrefix(t *testing.T) {
	table := newTestTable()

	_, err := table.Expand("nope:Thing", false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnknownPrefix))
	assert.NotEmpty(t, errors.GetAllHints(err))
}

func TestCompactExpandRoundTrip(t *testing.T) {
	table := newTestTable()

	for _, iri := range []string{
		"https://schema.org/Place",
		"https://pending.schema.org/Thing",
		"https://openactive.io/ns-beta#offerValidFromDuration",
		"http://www.w3.org/2000/01/rdf-schema#Class",
	} {
		short := table.Compact(iri)
		expanded, err := table.Expand(short, false)
		require.NoError(t, err)
		assert.Equal(t, normalizeScheme(iri), normalizeScheme(expanded), iri)
	}

	for _, short := range []string{"schema:Place", "beta:virtualLocation", "Event"} {
		expanded, err := table.Expand(short, false)
		require.NoError(t, err)
		assert.Equal(t, short, table.Compact(expanded), short)
	}
}

func TestNamespaceHelpers(t *testing.T) {
	table := newTestTable()

	assert.Equal(t, "schema", table.Namespace("https://schema.org/Place"))
	assert.Equal(t, "schema", table.Namespace("schema:Place"))
	assert.Equal(t, "", table.Namespace("#Event"))
	assert.True(t, table.InNamespace("http://schema.org/Place", "schema"))
	assert.False(t, table.InNamespace("Event", "schema"))
	assert.False(t, table.InNamespace("", ""))

	assert.Equal(t, "Place", LocalName("https://schema.org/Place"))
	assert.Equal(t, "virtualLocation", LocalName("beta:virtualLocation"))
	assert.Equal(t, "Event", LocalName("Event"))
	assert.True(t, IsArray("ArrayOf#Event"))
	assert.Equal(t, "Event", StripArray("ArrayOf#Event"))
}

func TestSetInvalidatesOrdering(t *testing.T) {
	table := New("oa")
	table.Set("schema", "https://schema.org/")
	assert.Equal(t, "schema:pending/Thing", table.Compact("https://schema.org/pending/Thing"))

	table.Set("sp", "https://schema.org/pending/")
	assert.Equal(t, "sp:Thing", table.Compact("https://schema.org/pending/Thing"))
}

func TestIRI(t *testing.T) {
	table := New("oa")
	table.Merge(map[string]string{
		"oa":     "https://openactive.io/",
		"schema": "https://schema.org/",
	})

	tests := []struct {
		id   string
		want string
	}{
		{"Event", "https://openactive.io/Event"},
		{"#Event", "https://openactive.io/Event"},
		{"oa:Event", "https://openactive.io/Event"},
		{"schema:name", "https://schema.org/name"},
		{"ArrayOf#Place", "https://openactive.io/Place"},
		{"https://schema.org/Text", "https://schema.org/Text"},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got, err := table.IRI(tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := table.IRI("nope:thing")
	assert.True(t, errors.Is(err, errors.ErrUnknownPrefix))
}
