// Package render turns a merged vocabulary into source files of one target
// language.
//
// # Architecture
//
// Rendering has two layers:
//  1. Language-neutral preparation (this package) resolves the field list of
//     every model, classifies each field's ranges into a typedesc.Descriptor
//     and prepares documentation lines.
//  2. Language-specific renderers (typescript/, dotnet/, golang/) format the
//     prepared ModelData and EnumData.
//
// Output is deterministic: models are emitted in SortedModels order, enums and
// properties sorted by key, so a fresh generation can be compared with a
// committed output tree.
//
// # Implementing a New Renderer
//
//  1. Create package: render/<language>/renderer.go
//  2. Implement the Renderer interface
//  3. Register the target name in generate.NewRenderer
//  4. Add tests rendering the shared fixture in render/rendertest
package render

import (
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/openactive/models-lib/errors"
	"github.com/openactive/models-lib/logger"
	"github.com/openactive/models-lib/namespace"
	"github.com/openactive/models-lib/resolve"
	"github.com/openactive/models-lib/typedesc"
	"github.com/openactive/models-lib/vocab"
)

// PropertyEnumerationName names the enumeration of every vocabulary property.
const PropertyEnumerationName = "PropertyEnumeration"

// File is one generated output file. Path is relative to the target's
// output directory and uses forward slashes.
type File struct {
	Path    string
	Content string
}

// Renderer defines the interface for language-specific model renderers.
type Renderer interface {
	// Language returns the target name (e.g., "typescript", "dotnet")
	Language() string

	// FileExtension returns the extension of generated sources (e.g., "ts", "cs")
	FileExtension() string

	// Policy selects how inherited fields are presented
	Policy() resolve.Policy

	// TypeOptions configures descriptor resolution for this target
	TypeOptions() []typedesc.Option

	// GeneratesFoundational reports whether models and enums of the
	// foundational vocabulary are emitted too
	GeneratesFoundational() bool

	// Fence delimits code examples inside documentation comments
	Fence() Fence

	RenderModel(ctx *vocab.Context, m *ModelData) ([]File, error)
	RenderEnum(ctx *vocab.Context, e *EnumData) ([]File, error)

	// RenderIndex produces aggregate files (barrel exports, package docs)
	// from everything rendered so far. It may return nil.
	RenderIndex(generated []File) ([]File, error)
}

// Options configures Generate.
type Options struct {
	// SourceVersion is stamped into generated headers when non-empty
	SourceVersion string
}

// ModelData is the prepared view of one model.
type ModelData struct {
	Key   string
	Model *vocab.Model
	// TypeName is the local name, e.g. "3DModel"
	TypeName string
	// ClassName is TypeName made a valid identifier, e.g. "ThreeDModel"
	ClassName    string
	Foundational bool
	// Parent is the canonical parent, nil at a root
	Parent *vocab.Model
	// DerivedFrom is the nearest derivedFrom declared on the model or an ancestor
	DerivedFrom string
	// HasBaseClass is false when the model derives from a class no target
	// library provides
	HasBaseClass bool
	Doc          []string
	// Fields excludes "type" and "@context", which every renderer emits itself
	Fields        []*FieldData
	SourceVersion string
}

// FieldData is one resolved field with its descriptor and documentation.
type FieldData struct {
	*vocab.Field
	Type typedesc.Descriptor
	// JSONName is the member name as it appears in data
	JSONName     string
	RequiredType string
	Doc          []string
	Example      []string
}

// EnumValue is one member of an enumeration.
type EnumValue struct {
	// IRI is the value as it appears in data
	IRI string
	// Name is the local name
	Name string
}

// EnumData is the prepared view of one enumeration.
type EnumData struct {
	Key          string
	TypeName     string
	ClassName    string
	Foundational bool
	// SchemaPending marks a foundational enumeration not yet published
	// upstream, which targets must generate themselves
	SchemaPending bool
	Doc           []string
	Values        []EnumValue
	SourceVersion string
}

// Generate renders every model and enumeration of ctx, then the property
// enumeration and any index files. ctx must be merged, tree-built and marked
// for implicit referencing.
func Generate(ctx *vocab.Context, r Renderer, opts Options, log *zap.SugaredLogger) ([]File, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	log = log.With(logger.FieldTarget, r.Language())

	p := &preparer{
		ctx:    ctx,
		fields: resolve.New(ctx, r.Policy(), log),
		types:  typedesc.NewResolver(ctx, log, r.TypeOptions()...),
		fence:  r.Fence(),
		opts:   opts,
		log:    log,
	}

	var files []File
	for _, key := range ctx.SortedModels() {
		if !r.GeneratesFoundational() && ctx.IsFoundational(key) {
			log.Debugw("Skipping foundational model", logger.FieldModel, key)
			continue
		}
		data, err := p.model(key)
		if err != nil {
			return nil, errors.Wrapf(err, "model %q", key)
		}
		out, err := r.RenderModel(ctx, data)
		if err != nil {
			return nil, errors.Wrapf(err, "rendering model %q", key)
		}
		files = append(files, out...)
	}

	for _, key := range sortedKeys(ctx.Enums) {
		e := ctx.Enums[key]
		if !r.GeneratesFoundational() && ctx.IsFoundational(key) && !e.IsSchemaPending {
			continue
		}
		out, err := r.RenderEnum(ctx, p.enum(key, e))
		if err != nil {
			return nil, errors.Wrapf(err, "rendering enum %q", key)
		}
		files = append(files, out...)
	}

	out, err := r.RenderEnum(ctx, p.propertyEnum())
	if err != nil {
		return nil, errors.Wrap(err, "rendering property enumeration")
	}
	files = append(files, out...)

	index, err := r.RenderIndex(files)
	if err != nil {
		return nil, errors.Wrap(err, "rendering index files")
	}
	files = append(files, index...)

	log.Infow("Rendered target", logger.FieldCount, len(files))
	return files, nil
}

type preparer struct {
	ctx    *vocab.Context
	fields *resolve.Resolver
	types  *typedesc.Resolver
	fence  Fence
	opts   Options
	log    *zap.SugaredLogger
}

func (p *preparer) model(key string) (*ModelData, error) {
	m := p.ctx.Models[key]
	resolved, err := p.fields.Fields(m)
	if err != nil {
		return nil, err
	}

	typeName := namespace.LocalName(m.Type)
	derivedFrom := p.derivedFrom(m)
	data := &ModelData{
		Key:           key,
		Model:         m,
		TypeName:      typeName,
		ClassName:     ClassName(typeName),
		Foundational:  p.ctx.IsFoundational(m.Type),
		Parent:        p.ctx.Parent(m),
		DerivedFrom:   derivedFrom,
		HasBaseClass:  m.SubClassOf != "" || derivedFrom == "" || p.ctx.IsFoundational(derivedFrom),
		Doc:           p.modelDoc(m),
		SourceVersion: p.opts.SourceVersion,
	}

	for _, f := range resolved {
		if f.Name == "type" || f.Name == "@context" {
			continue
		}
		d, err := p.types.Resolve(f)
		if err != nil {
			return nil, err
		}
		requiredType := f.FirstRange(vocab.RangeRequiredType)
		data.Fields = append(data.Fields, &FieldData{
			Field:        f,
			Type:         d,
			JSONName:     p.jsonName(f),
			RequiredType: requiredType,
			Doc:          p.fieldDoc(f, requiredType),
			Example:      p.codeExample(f, requiredType),
		})
	}
	return data, nil
}

// jsonName strips the core and foundational prefixes from the member name.
func (p *preparer) jsonName(f *vocab.Field) string {
	member := f.MemberName
	if member == "" {
		return f.Name
	}
	prefix, local, ok := strings.Cut(member, ":")
	if ok && (prefix == p.ctx.Options.CorePrefix || prefix == p.ctx.Options.FoundationalPrefix) {
		return local
	}
	return member
}

// derivedFrom walks up the canonical parents to the nearest derivedFrom.
func (p *preparer) derivedFrom(m *vocab.Model) string {
	seen := map[*vocab.Model]bool{}
	for cur := m; cur != nil && !seen[cur]; cur = p.ctx.Parent(cur) {
		seen[cur] = true
		if cur.DerivedFrom != "" {
			return cur.DerivedFrom
		}
	}
	return ""
}

func (p *preparer) enum(key string, e *vocab.EnumType) *EnumData {
	typeName := namespace.LocalName(key)
	data := &EnumData{
		Key:           key,
		TypeName:      typeName,
		ClassName:     ClassName(typeName),
		Foundational:  p.ctx.IsFoundational(key),
		SchemaPending: e.IsSchemaPending,
		Doc:           p.enumDoc(e),
		SourceVersion: p.opts.SourceVersion,
	}

	if len(e.FQValues) > 0 {
		for _, v := range e.FQValues {
			iri, err := p.ctx.Namespaces.IRI(v)
			if err != nil {
				p.log.Warnw("Enumeration value has an unknown prefix",
					logger.FieldEnum, key, logger.FieldError, err)
				iri = v
			}
			data.Values = append(data.Values, EnumValue{IRI: iri, Name: namespace.LocalName(v)})
		}
		return data
	}
	for _, v := range e.Values {
		data.Values = append(data.Values, EnumValue{IRI: e.Namespace + v, Name: v})
	}
	return data
}

// propertyEnum lists every property IRI of the merged vocabulary.
func (p *preparer) propertyEnum() *EnumData {
	seen := map[string]bool{}
	var iris []string
	for _, key := range sortedKeys(p.ctx.Models) {
		for _, f := range p.ctx.Models[key].Fields {
			if strings.HasPrefix(f.Name, "@") {
				continue
			}
			iri := p.propertyIRI(f)
			if iri != "" && !seen[iri] {
				seen[iri] = true
				iris = append(iris, iri)
			}
		}
	}
	slices.Sort(iris)

	data := &EnumData{
		Key:           PropertyEnumerationName,
		TypeName:      PropertyEnumerationName,
		ClassName:     PropertyEnumerationName,
		SourceVersion: p.opts.SourceVersion,
		Doc: CleanDocLines([]string{
			"This enumeration contains a value for all properties in the https://schema.org/ and https://openactive.io/ vocabularies.",
		}),
	}
	used := map[string]bool{}
	for _, iri := range iris {
		name := ClassName(namespace.LocalName(iri))
		if used[name] {
			// Same local name in another vocabulary: qualify with its prefix.
			if prefix := p.ctx.Namespaces.Namespace(iri); prefix != "" {
				name = ClassName(prefix) + name
			}
		}
		used[name] = true
		data.Values = append(data.Values, EnumValue{IRI: iri, Name: name})
	}
	return data
}

func (p *preparer) propertyIRI(f *vocab.Field) string {
	member := f.MemberName
	if member == "" {
		member = f.SameAs
	}
	if member == "" {
		member = f.Name
	}
	iri, err := p.ctx.Namespaces.IRI(member)
	if err != nil {
		p.log.Debugw("Property left out of the property enumeration",
			logger.FieldField, member, logger.FieldError, err)
		return ""
	}
	return iri
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
