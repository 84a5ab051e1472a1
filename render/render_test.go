package render

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/openactive/models-lib/render/rendertest"
	"github.com/openactive/models-lib/resolve"
	"github.com/openactive/models-lib/typedesc"
	"github.com/openactive/models-lib/vocab"
)

// recorder is a Renderer that keeps what it was asked to render.
type recorder struct {
	foundational bool
	models       []*ModelData
	enums        []*EnumData
	indexed      int
}

func (r *recorder) Language() string               { return "recorder" }
func (r *recorder) FileExtension() string          { return "txt" }
func (r *recorder) Policy() resolve.Policy         { return resolve.Disinherit }
func (r *recorder) TypeOptions() []typedesc.Option { return nil }
func (r *recorder) GeneratesFoundational() bool    { return r.foundational }
func (r *recorder) Fence() Fence                   { return Markdown }

func (r *recorder) RenderModel(ctx *vocab.Context, m *ModelData) ([]File, error) {
	r.models = append(r.models, m)
	return []File{{Path: "models/" + m.ClassName + ".txt"}}, nil
}

func (r *recorder) RenderEnum(ctx *vocab.Context, e *EnumData) ([]File, error) {
	r.enums = append(r.enums, e)
	return []File{{Path: "enums/" + e.ClassName + ".txt"}}, nil
}

func (r *recorder) RenderIndex(generated []File) ([]File, error) {
	r.indexed = len(generated)
	return []File{{Path: "index.txt"}}, nil
}

func (r *recorder) model(key string) *ModelData {
	for _, m := range r.models {
		if m.Key == key {
			return m
		}
	}
	return nil
}

func (r *recorder) enum(key string) *EnumData {
	for _, e := range r.enums {
		if e.Key == key {
			return e
		}
	}
	return nil
}

func fieldData(m *ModelData, name string) *FieldData {
	for _, f := range m.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func generate(t *testing.T, foundational bool) (*recorder, []File) {
	t.Helper()
	ctx := rendertest.NewContext(t, foundational)
	r := &recorder{foundational: foundational}
	files, err := Generate(ctx, r, Options{SourceVersion: "abc123"}, zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)
	return r, files
}

func TestGenerate(t *testing.T) {
	r, files := generate(t, false)

	var keys []string
	for _, m := range r.models {
		keys = append(keys, m.Key)
	}
	assert.ElementsMatch(t, []string{"Event", "SessionSeries", "Place", "Organization", "Person"}, keys)
	assert.Less(t, slices.Index(keys, "Event"), slices.Index(keys, "SessionSeries"), "parents come first")

	var enums []string
	for _, e := range r.enums {
		enums = append(enums, e.Key)
	}
	assert.Equal(t, []string{"RequiredStatusType", PropertyEnumerationName}, enums,
		"published foundational enumerations are skipped")

	assert.Equal(t, len(files)-1, r.indexed, "index sees every other file")
	assert.Equal(t, "index.txt", files[len(files)-1].Path)
	assert.Equal(t, "abc123", r.models[0].SourceVersion)
}

func TestGenerateFoundational(t *testing.T) {
	r, _ := generate(t, true)

	place := r.model("schema:Place")
	require.NotNil(t, place)
	assert.True(t, place.Foundational)
	assert.Equal(t, "Place", place.TypeName)

	status := r.enum("schema:EventStatusType")
	require.NotNil(t, status)
	assert.True(t, status.Foundational)
}

func TestModelData(t *testing.T) {
	r, _ := generate(t, false)

	event := r.model("Event")
	require.NotNil(t, event)
	assert.Equal(t, "https://schema.org/Event", event.DerivedFrom)
	assert.True(t, event.HasBaseClass)
	assert.Nil(t, event.Parent)
	assert.Contains(t, event.Doc, "Overview: An event.")
	assert.Contains(t, event.Doc,
		"This type is derived from https://schema.org/Event, which means that any of this type's properties within schema.org may also be used.")

	for _, f := range event.Fields {
		assert.NotEqual(t, "type", f.Name)
		assert.NotEqual(t, "@context", f.Name)
	}

	name := fieldData(event, "name")
	require.NotNil(t, name)
	assert.Equal(t, "name", name.JSONName, "core and foundational prefixes are stripped")
	assert.Equal(t, []string{"The name of the event."}, name.Doc)
	assert.Equal(t, []string{"```json", `"name": "Tai chi Class"`, "```"}, name.Example)

	capacity := fieldData(event, "maximumAttendeeCapacity")
	require.NotNil(t, capacity)
	assert.Equal(t, []string{"```json", `"maximumAttendeeCapacity": 30`, "```"}, capacity.Example)

	deprecated := fieldData(event, "attendeeInstructions")
	require.NotNil(t, deprecated)
	assert.Equal(t, "[DEPRECATED: Use description instead.]", deprecated.Doc[0])

	virtual := fieldData(event, "isVirtual")
	require.NotNil(t, virtual)
	assert.Equal(t, "beta:isVirtual", virtual.JSONName)
	assert.Equal(t, rendertest.BetaWarning, virtual.Doc[0])

	organizer := fieldData(event, "organizer")
	require.NotNil(t, organizer)
	assert.True(t, organizer.Type.LegalEntity)

	series := r.model("SessionSeries")
	require.NotNil(t, series)
	require.NotNil(t, series.Parent)
	assert.Equal(t, "Event", series.Parent.Type)
	duration := fieldData(series, "duration")
	require.NotNil(t, duration)
	assert.True(t, duration.Disinherit)
}

func TestEnumData(t *testing.T) {
	r, _ := generate(t, false)

	status := r.enum("RequiredStatusType")
	require.NotNil(t, status)
	assert.Equal(t, []EnumValue{
		{IRI: "https://openactive.io/Required", Name: "Required"},
		{IRI: "https://openactive.io/Optional", Name: "Optional"},
	}, status.Values)

	props := r.enum(PropertyEnumerationName)
	require.NotNil(t, props)
	var iris []string
	for _, v := range props.Values {
		iris = append(iris, v.IRI)
	}
	assert.True(t, slices.IsSorted(iris))
	assert.Contains(t, iris, "https://schema.org/name", "member name wins")
	assert.Contains(t, iris, "https://schema.org/startDate", "sameAs is used without a member name")
	assert.Contains(t, iris, "https://openactive.io/location")
	assert.Contains(t, iris, "https://openactive.io/ns-beta#isVirtual")
	assert.NotContains(t, iris, "https://openactive.io/@context")
}

func TestFieldDocRequiredContent(t *testing.T) {
	ctx := rendertest.NewContext(t, false)
	p := &preparer{ctx: ctx, fence: Markdown}

	f := ctx.Models["SessionSeries"].Fields["type"]
	assert.Equal(t, []string{
		"Must always be present and set to ```json",
		`"type": "SessionSeries"`,
		"```",
	}, p.fieldDoc(f, ""))
}

func TestCleanDocLines(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{"drops empty lines", []string{"", "a", ""}, []string{"a"}},
		{"splits newlines", []string{"a\nb"}, []string{"a", "b"}},
		{"quotes keywords", []string{"Use @id and @type here"}, []string{"Use `@id` and `@type` here"}},
		{"keeps quoted keywords", []string{`"@id"` + `: x`, "`@type`"}, []string{`"@id": x`, "`@type`"}},
		{"input name", []string{"set input@name"}, []string{"set `input@name`"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanDocLines(tt.input))
		})
	}
}

func TestRenderCode(t *testing.T) {
	tests := []struct {
		name         string
		code         any
		field        string
		requiredType string
		fence        Fence
		want         string
	}{
		{
			name:  "string scalar",
			code:  "Tai chi",
			field: "name",
			fence: Markdown,
			want:  "```json\n\"name\": \"Tai chi\"\n```",
		},
		{
			name:         "numeric scalar",
			code:         3,
			field:        "count",
			requiredType: "https://schema.org/Integer",
			want:         `"count": 3`,
		},
		{
			name:  "object",
			code:  map[string]any{"@type": "Place"},
			field: "location",
			fence: Fence{Open: "<code>", Close: "</code>"},
			want:  "<code>\n\"location\": {\n  \"@type\": \"Place\"\n}\n</code>",
		},
		{
			name:  "indented",
			code:  []any{"a"},
			fence: Fence{Indent: "\t"},
			want:  "\t[\n\t  \"a\"\n\t]",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RenderCode(tt.code, tt.field, tt.requiredType, tt.fence))
		})
	}
}

func TestDescriptionText(t *testing.T) {
	got := DescriptionText([]vocab.DescriptionSection{
		{Title: "Overview", Paragraphs: []string{"One.", "Two."}},
		{Paragraphs: []string{"untitled"}},
		{Title: "Empty"},
		{Title: "Usage", Paragraphs: []string{"Three."}},
	})
	assert.Equal(t, "Overview: One. Two.\n\nuntitled\n\nUsage: Three.", got)
}

func TestPropertyEnumQualifiesCollisions(t *testing.T) {
	ctx := rendertest.NewContext(t, false)
	ctx.Models["Place"].Fields["name"] = &vocab.Field{Name: "name"}
	p := &preparer{ctx: ctx, log: zaptest.NewLogger(t).Sugar()}

	names := map[string]string{}
	for _, v := range p.propertyEnum().Values {
		names[v.IRI] = v.Name
	}
	assert.Equal(t, "Name", names["https://openactive.io/name"])
	assert.Equal(t, "SchemaName", names["https://schema.org/name"])
}
