package typescript

import (
	"slices"
	"strings"

	"github.com/openactive/models-lib/render"
	"github.com/openactive/models-lib/typedesc"
	"github.com/openactive/models-lib/vocab"
)

var tsPrimitives = map[typedesc.Kind]string{
	typedesc.KindBoolean:  "boolean",
	typedesc.KindDate:     "string",
	typedesc.KindDateTime: "string",
	typedesc.KindTime:     "string",
	typedesc.KindInteger:  "number",
	typedesc.KindNumber:   "number",
	typedesc.KindText:     "string",
	typedesc.KindURL:      "string",
	typedesc.KindDuration: "string",
	typedesc.KindProperty: "oa.enums." + render.PropertyEnumerationName + ".Type",
}

var joiPrimitives = map[typedesc.Kind]string{
	typedesc.KindBoolean:  "Joi.boolean()",
	typedesc.KindDate:     "Joi.string().isoDate()",
	typedesc.KindDateTime: "Joi.string().isoDate()",
	typedesc.KindTime:     "Joi.string()",
	typedesc.KindInteger:  "Joi.number().integer()",
	typedesc.KindNumber:   "Joi.number()",
	typedesc.KindText:     "Joi.string()",
	typedesc.KindURL:      "Joi.string().uri()",
	typedesc.KindDuration: "Joi.string().isoDuration()",
	typedesc.KindProperty: "oa.enums." + render.PropertyEnumerationName + ".JoiSchema",
}

// reference returns the module path of an enum or model, e.g.
// "schema.enums.DayOfWeek" or "oa.Place".
func reference(ctx *vocab.Context, c typedesc.Classification) string {
	ns := coreDir
	if ctx.IsFoundational(c.ID) {
		ns = foundationalDir
	}
	name := render.ClassName(c.Name())
	if c.Kind == typedesc.KindEnumReference {
		return ns + ".enums." + name
	}
	return ns + "." + name
}

// tsType returns the union type of f, or "" when nothing resolved locally.
func (r *Renderer) tsType(ctx *vocab.Context, f *render.FieldData) string {
	var types []string
	add := func(t string) {
		if !slices.Contains(types, t) {
			types = append(types, t)
		}
	}
	for _, c := range f.Type.Members {
		t, ok := tsPrimitives[c.Kind]
		if !ok {
			t = reference(ctx, c) + ".Type"
		}
		if c.Array {
			t += "[]"
		}
		add(t)
	}
	if f.Type.Referenceable {
		add("string")
	}
	return strings.Join(types, " | ")
}

// joiType returns the Joi schema expression of f. A reference back to the
// model being rendered becomes Joi.link('/').
func (r *Renderer) joiType(ctx *vocab.Context, f *render.FieldData, rootKey string) string {
	var types []string
	add := func(t string) {
		if !slices.Contains(types, t) {
			types = append(types, t)
		}
	}
	for _, c := range f.Type.Members {
		t, ok := joiPrimitives[c.Kind]
		switch {
		case ok:
		case c.Kind == typedesc.KindModelReference && c.ID == rootKey:
			t = "Joi.link('/')"
		default:
			t = reference(ctx, c) + ".JoiSchema"
		}
		if c.Array {
			t = "Joi.array().items(" + t + ")"
		}
		add(t)
	}
	if f.Type.Referenceable {
		add(joiPrimitives[typedesc.KindURL])
	}

	switch len(types) {
	case 0:
		return ""
	case 1:
		return types[0]
	default:
		return "Joi.alternatives().try(" + strings.Join(types, ", ") + ")"
	}
}
