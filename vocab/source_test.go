package vocab

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadBase(t *testing.T) {
	dir := t.TempDir()

	writeFile(t, filepath.Join(dir, "metadata.json"), `{
	  "version": "2.1.0",
	  "namespaces": {"oa": "https://openactive.io/", "schema": "https://schema.org/"}
	}`)
	writeFile(t, filepath.Join(dir, "models", "Event.json"), `{
	  "type": "Event",
	  "derivedFrom": "https://schema.org/Event",
	  "hasId": true,
	  "description": {"sections": [{"title": "Overview", "paragraphs": ["An event."]}]},
	  "fields": {
	    "organizer": {
	      "fieldName": "organizer",
	      "alternativeTypes": ["https://schema.org/Text"],
	      "requiredType": "https://schema.org/URL",
	      "alternativeModels": ["#Organization"],
	      "model": "#Person",
	      "allowReferencing": true
	    }
	  }
	}`)
	writeFile(t, filepath.Join(dir, "models", "SessionSeries.yaml"), `
type: SessionSeries
subClassOf: "#Event"
notInSpec: [organizer]
fields:
  duration:
    requiredType: https://schema.org/Duration
    description: ["How long it lasts."]
`)
	writeFile(t, filepath.Join(dir, "enums", "DayOfWeek.yaml"), `
namespace: https://schema.org/
values: [Monday, Tuesday]
`)
	writeFile(t, filepath.Join(dir, "models", "README.md"), "ignored")

	base, err := LoadBase(dir)
	require.NoError(t, err)

	assert.Equal(t, "2.1.0", base.Version)
	assert.Equal(t, "https://schema.org/", base.Namespaces["schema"])
	require.Len(t, base.Models, 2)

	event := base.Models["Event"]
	require.NotNil(t, event)
	assert.True(t, event.HasID)
	assert.Equal(t, "Overview", event.Description[0].Title)
	organizer := event.Fields["organizer"]
	require.NotNil(t, organizer)
	assert.True(t, organizer.AllowReferencing)
	assert.Equal(t, []RangeRef{
		{Kind: RangeAlternativeType, ID: "https://schema.org/Text"},
		{Kind: RangeRequiredType, ID: "https://schema.org/URL"},
		{Kind: RangeAlternativeModel, ID: "#Organization"},
		{Kind: RangeModel, ID: "#Person"},
	}, organizer.Ranges)

	series := base.Models["SessionSeries"]
	require.NotNil(t, series)
	assert.Equal(t, "#Event", series.SubClassOf)
	assert.Equal(t, []string{"#Event"}, series.RawSubClasses)
	assert.Equal(t, []string{"organizer"}, series.NotInSpec)
	assert.Equal(t, "duration", series.Fields["duration"].Name)

	day := base.Enums["DayOfWeek"]
	require.NotNil(t, day)
	assert.Equal(t, []string{"Monday", "Tuesday"}, day.Values)
}

func TestLoadBaseRequiresMetadata(t *testing.T) {
	_, err := LoadBase(t.TempDir())
	require.Error(t, err)
}
