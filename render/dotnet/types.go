package dotnet

import (
	"slices"
	"strings"

	"github.com/openactive/models-lib/errors"
	"github.com/openactive/models-lib/namespace"
	"github.com/openactive/models-lib/render"
	"github.com/openactive/models-lib/typedesc"
	"github.com/openactive/models-lib/vocab"
)

var primitives = map[typedesc.Kind]string{
	typedesc.KindBoolean:  "bool?",
	typedesc.KindDate:     "DateTimeOffset?",
	typedesc.KindDateTime: "DateTimeOffset?",
	typedesc.KindTime:     "DateTimeOffset?",
	typedesc.KindInteger:  "long?",
	typedesc.KindNumber:   "decimal?",
	typedesc.KindText:     "string",
	typedesc.KindURL:      "Uri",
	typedesc.KindDuration: "TimeSpan?",
	typedesc.KindProperty: render.PropertyEnumerationName + "?",
}

func localName(id string) string {
	return namespace.LocalName(namespace.StripArray(id))
}

// baseType maps one classification to a C# type. Enumerations published by
// the foundational vocabulary come from Schema.NET.
func baseType(ctx *vocab.Context, c typedesc.Classification) string {
	if t, ok := primitives[c.Kind]; ok {
		return t
	}
	name := render.ClassName(c.Name())
	if c.Kind == typedesc.KindEnumReference {
		if e := ctx.Enums[c.ID]; e != nil && ctx.IsFoundational(c.ID) && !e.IsSchemaPending {
			return schemaNET + name + "?"
		}
		return name + "?"
	}
	return name
}

func langType(ctx *vocab.Context, c typedesc.Classification) string {
	t := baseType(ctx, c)
	if c.Array {
		return "List<" + strings.TrimSuffix(t, "?") + ">"
	}
	return t
}

// typeString combines the descriptor of f into one C# type.
func (r *Renderer) typeString(ctx *vocab.Context, f *render.FieldData) (string, error) {
	if f.ValueConstraint == "UUID" {
		return "Guid?", nil
	}

	var types []string
	for _, c := range f.Type.Members {
		t := langType(ctx, c)
		if !slices.Contains(types, t) {
			types = append(types, t)
		}
	}

	switch {
	case len(types) == 0:
		return foundationalFallback(ctx, f)
	case f.Type.LegalEntity:
		if f.Type.Referenceable {
			return "ReferenceValue<ILegalEntity>", nil
		}
		return "ILegalEntity", nil
	case f.Type.Referenceable:
		if len(types) > 1 {
			return "", errors.Wrapf(errors.ErrAmbiguousReference,
				"field %q allows %s", f.Name, strings.Join(types, ", "))
		}
		return "ReferenceValue<" + types[0] + ">", nil
	case len(types) > 1:
		return "SingleValues<" + strings.Join(types, ", ") + ">", nil
	default:
		return types[0], nil
	}
}

// foundationalFallback types a field whose ranges exist only in the
// foundational vocabulary as the matching Schema.NET class.
func foundationalFallback(ctx *vocab.Context, f *render.FieldData) (string, error) {
	for _, id := range f.RangeIDs() {
		if ctx.IsFoundational(id) {
			return schemaNET + render.ClassName(localName(id)), nil
		}
	}
	return "", errors.Wrapf(errors.ErrUnresolvableType, "no type found for field %q", f.Name)
}
