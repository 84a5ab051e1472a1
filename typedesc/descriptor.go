// Package typedesc classifies a field's allowed ranges into a language
// neutral type descriptor that every renderer consumes.
package typedesc

import (
	"strings"

	"go.uber.org/zap"

	"github.com/openactive/models-lib/errors"
	"github.com/openactive/models-lib/logger"
	"github.com/openactive/models-lib/namespace"
	"github.com/openactive/models-lib/vocab"
)

// Kind is the classification of one range identifier.
type Kind int

const (
	KindBoolean Kind = iota
	KindDate
	KindDateTime
	KindTime
	KindInteger
	KindNumber
	KindText
	KindURL
	KindDuration
	// KindProperty refers to the generated enumeration of every vocabulary property
	KindProperty
	KindEnumReference
	KindModelReference
)

var kindNames = map[Kind]string{
	KindBoolean:        "Boolean",
	KindDate:           "Date",
	KindDateTime:       "DateTime",
	KindTime:           "Time",
	KindInteger:        "Integer",
	KindNumber:         "Number",
	KindText:           "Text",
	KindURL:            "URL",
	KindDuration:       "Duration",
	KindProperty:       "Property",
	KindEnumReference:  "Enum",
	KindModelReference: "Model",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// primitives maps range local names to primitive kinds.
var primitives = map[string]Kind{
	"Boolean":  KindBoolean,
	"Date":     KindDate,
	"DateTime": KindDateTime,
	"Time":     KindTime,
	"Integer":  KindInteger,
	"Float":    KindNumber,
	"Number":   KindNumber,
	"Text":     KindText,
	"URL":      KindURL,
	"Duration": KindDuration,
	"Property": KindProperty,
}

// Classification is one member of a type descriptor union.
type Classification struct {
	Kind Kind
	// ID is the compacted identifier of the referenced enum or model
	ID    string
	Array bool
	// Nullable is false for Text, URL and model references
	Nullable bool
}

// Name returns the referenced record's local name, or the kind name for
// primitives.
func (c Classification) Name() string {
	if c.ID != "" {
		return namespace.LocalName(c.ID)
	}
	return c.Kind.String()
}

// IsReference reports whether c names an enum or model.
func (c Classification) IsReference() bool {
	return c.Kind == KindEnumReference || c.Kind == KindModelReference
}

func (c Classification) String() string {
	s := c.Kind.String()
	if c.IsReference() {
		s += "(" + c.ID + ")"
	}
	if c.Nullable {
		s += "?"
	}
	if c.Array {
		s = "Array<" + s + ">"
	}
	return s
}

// Descriptor is an ordered, de-duplicated union of classifications.
type Descriptor struct {
	Members []Classification
	// LegalEntity marks the union of exactly Organization and Person
	LegalEntity bool
	// Referenceable means the value may also be a bare identifier
	Referenceable bool
}

// IsEmpty reports whether no range could be classified.
func (d Descriptor) IsEmpty() bool {
	return len(d.Members) == 0
}

func (d Descriptor) String() string {
	parts := make([]string, 0, len(d.Members))
	for _, m := range d.Members {
		parts = append(parts, m.String())
	}
	s := strings.Join(parts, "|")
	if d.LegalEntity {
		s = "LegalEntity"
	}
	if d.Referenceable {
		s = "Referenceable<" + s + ">"
	}
	return s
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithMultiReference lets a referenceable field have several candidate types.
// Targets whose type system has unions enable it.
func WithMultiReference(enabled bool) Option {
	return func(r *Resolver) {
		r.multiReference = enabled
	}
}

// Resolver converts fields into descriptors against a merged Context.
type Resolver struct {
	ctx            *vocab.Context
	log            *zap.SugaredLogger
	multiReference bool
}

// NewResolver creates a Resolver.
func NewResolver(ctx *vocab.Context, log *zap.SugaredLogger, opts ...Option) *Resolver {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	r := &Resolver{ctx: ctx, log: log}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve classifies every range of f.
func (r *Resolver) Resolve(f *vocab.Field) (Descriptor, error) {
	var d Descriptor
	excused := false
	seen := make(map[Classification]bool)

	for _, id := range f.RangeIDs() {
		c, ok, err := r.Classify(f, id)
		if err != nil {
			return Descriptor{}, errors.Wrapf(err, "field %q", f.Name)
		}
		if !ok {
			excused = true
			continue
		}
		if seen[c] {
			continue
		}
		seen[c] = true
		d.Members = append(d.Members, c)
	}

	if d.IsEmpty() {
		if excused || r.ctx.IsFoundational(f.MemberName) {
			r.log.Warnw("Field has no locally resolvable type",
				logger.FieldField, f.Name,
				logger.FieldRange, strings.Join(f.RangeIDs(), ","))
			return d, nil
		}
		return Descriptor{}, errors.Wrapf(errors.ErrUnresolvableType, "no type found for field %q", f.Name)
	}

	d.LegalEntity = isLegalEntity(d.Members)

	if f.AllowReferencing {
		if len(d.Members) > 1 && !d.LegalEntity && !r.multiReference {
			return Descriptor{}, errors.WithHint(
				errors.Wrapf(errors.ErrAmbiguousReference, "field %q allows %s", f.Name, d.String()),
				"narrow the field to a single type or disable allowReferencing")
		}
		d.Referenceable = true
	}
	return d, nil
}

// Classify classifies a single range identifier of f. It returns ok=false,
// without error, for a reference the foundational vocabulary explains but
// which is not materialized locally.
func (r *Resolver) Classify(f *vocab.Field, rangeID string) (Classification, bool, error) {
	array := namespace.IsArray(rangeID)
	local := namespace.LocalName(namespace.StripArray(rangeID))

	if kind, ok := primitives[local]; ok {
		return Classification{
			Kind:     kind,
			Array:    array,
			Nullable: kind != KindText && kind != KindURL,
		}, true, nil
	}

	compacted := r.ctx.Namespaces.Compact(rangeID)
	preferNative := r.ctx.PreferNative(f.ExtensionPrefix)

	enumRef := func(id string) Classification {
		return Classification{Kind: KindEnumReference, ID: id, Array: array, Nullable: true}
	}
	modelRef := func(id string) Classification {
		return Classification{Kind: KindModelReference, ID: id, Array: array}
	}

	switch {
	case preferNative && r.ctx.Enums[local] != nil:
		return enumRef(local), true, nil
	case r.ctx.Enums[compacted] != nil:
		return enumRef(compacted), true, nil
	case preferNative && r.ctx.Models[local] != nil:
		return modelRef(local), true, nil
	case r.ctx.Models[compacted] != nil:
		return modelRef(compacted), true, nil
	}

	if r.ctx.IsFoundational(f.MemberName) || r.ctx.IsFoundational(compacted) {
		r.log.Infow("Range references a type outside the local vocabulary",
			logger.FieldField, f.Name,
			logger.FieldRange, compacted)
		return Classification{}, false, nil
	}

	return Classification{}, false, errors.WithHintf(
		errors.Wrapf(errors.ErrUnresolvableType, "range %q (%s)", local, compacted),
		"declare %q as a model or enumeration, or fix the range identifier", compacted)
}

// IsModelReference reports whether rangeID of f classifies as a model.
func (r *Resolver) IsModelReference(f *vocab.Field, rangeID string) bool {
	c, ok, err := r.Classify(f, rangeID)
	return err == nil && ok && c.Kind == KindModelReference
}

func isLegalEntity(members []Classification) bool {
	if len(members) != 2 {
		return false
	}
	names := make(map[string]bool, 2)
	for _, m := range members {
		if m.Kind != KindModelReference {
			return false
		}
		names[m.Name()] = true
	}
	return names["Organization"] && names["Person"]
}
