package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/openactive/models-lib/typedesc"
	"github.com/openactive/models-lib/vocab"
)

func TestMarkImplicitReferencing(t *testing.T) {
	base := &vocab.Base{
		Namespaces: map[string]string{
			"oa":     "https://openactive.io/",
			"schema": "https://schema.org/",
		},
		Models: map[string]*vocab.Model{
			"Place": {Type: "Place"},
			"Event": {Type: "Event", Fields: map[string]*vocab.Field{
				"location": {Name: "location", Ranges: []vocab.RangeRef{{Kind: vocab.RangeModel, ID: "#Place"}}},
			}},
			"schema:Event": {Type: "schema:Event", Extension: "schema", Fields: map[string]*vocab.Field{
				"location": {Name: "location", MemberName: "schema:location", Ranges: []vocab.RangeRef{
					{Kind: vocab.RangeAlternativeType, ID: "https://schema.org/Text"},
					{Kind: vocab.RangeAlternativeType, ID: "#Place"},
				}},
				"name": {Name: "name", MemberName: "schema:name", Ranges: text()},
			}},
		},
	}
	log := zaptest.NewLogger(t).Sugar()
	ctx := vocab.NewContext(base, vocab.DefaultOptions(), log)
	require.NoError(t, ctx.Merge())
	ctx.BuildTrees()

	types := typedesc.NewResolver(ctx, log, typedesc.WithMultiReference(true))
	marked := MarkImplicitReferencing(ctx, types, log)
	assert.Equal(t, 1, marked)

	location := ctx.Models["schema:Event"].Fields["location"]
	assert.True(t, location.AllowReferencing)
	assert.False(t, ctx.Models["schema:Event"].Fields["name"].AllowReferencing, "primitive-only field")
	assert.False(t, ctx.Models["Event"].Fields["location"].AllowReferencing, "core models are not marked")

	d, err := types.Resolve(location)
	require.NoError(t, err)
	assert.True(t, d.Referenceable)
	assert.Equal(t, "Referenceable<Text|Model(Place)>", d.String())

	assert.Zero(t, MarkImplicitReferencing(ctx, types, log), "second pass marks nothing")
}
