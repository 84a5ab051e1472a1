package golang

import (
	"strings"

	"github.com/openactive/models-lib/namespace"
	"github.com/openactive/models-lib/render"
	"github.com/openactive/models-lib/typedesc"
	"github.com/openactive/models-lib/vocab"
)

const rawJSON = "json.RawMessage"

var primitives = map[typedesc.Kind]string{
	typedesc.KindBoolean:  "*bool",
	typedesc.KindDate:     "string",
	typedesc.KindDateTime: "*time.Time",
	typedesc.KindTime:     "string",
	typedesc.KindInteger:  "*int64",
	typedesc.KindNumber:   "*float64",
	typedesc.KindText:     "string",
	typedesc.KindURL:      "string",
	typedesc.KindDuration: "string",
	typedesc.KindProperty: render.PropertyEnumerationName,
}

func localName(id string) string {
	return namespace.LocalName(namespace.StripArray(id))
}

// valueType maps one classification to a Go type without the array wrapper.
func valueType(ctx *vocab.Context, c typedesc.Classification) string {
	if t, ok := primitives[c.Kind]; ok {
		return t
	}
	foundational := ctx.IsFoundational(c.ID)
	if c.Kind == typedesc.KindEnumReference {
		if e := ctx.Enums[c.ID]; foundational && (e == nil || !e.IsSchemaPending) {
			return "string"
		}
		return render.ClassName(c.Name())
	}
	if foundational {
		return rawJSON
	}
	return "*" + render.ClassName(c.Name())
}

func elementType(t string) string {
	return strings.TrimPrefix(t, "*")
}

// goType combines the descriptor of f into one Go type.
func goType(ctx *vocab.Context, f *render.FieldData) (string, error) {
	d := f.Type
	if d.IsEmpty() {
		return rawJSON, nil
	}

	var base string
	array := false
	switch {
	case d.LegalEntity:
		base = "LegalEntity"
	case len(d.Members) > 1:
		base = "any"
	default:
		c := d.Members[0]
		base = valueType(ctx, c)
		array = c.Array
	}

	if d.Referenceable && base != rawJSON {
		base = "ReferenceValue[" + elementType(base) + "]"
	}
	if array {
		return "[]" + elementType(base), nil
	}
	return base, nil
}
