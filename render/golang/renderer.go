// Package golang renders models as Go structs in a single package.
//
// Inheritance is expressed by embedding the parent struct. A field the parent
// declares but the child must not carry is shadowed by a Disinherited field
// with the same JSON name, which encoding/json prefers over the embedded one.
// Output is formatted, and its imports resolved, with golang.org/x/tools/imports.
package golang

import (
	"fmt"
	"path"
	"strings"

	"golang.org/x/tools/imports"

	"github.com/openactive/models-lib/errors"
	"github.com/openactive/models-lib/render"
	"github.com/openactive/models-lib/resolve"
	"github.com/openactive/models-lib/typedesc"
	"github.com/openactive/models-lib/vocab"
)

// DefaultPackage is the package name of generated files.
const DefaultPackage = "models"

// Renderer implements render.Renderer for Go.
type Renderer struct {
	pkg string
}

var _ render.Renderer = (*Renderer)(nil)

// New creates a Go renderer emitting package pkg (DefaultPackage when empty).
func New(pkg string) *Renderer {
	if pkg == "" {
		pkg = DefaultPackage
	}
	return &Renderer{pkg: pkg}
}

func (r *Renderer) Language() string      { return "go" }
func (r *Renderer) FileExtension() string { return "go" }

func (r *Renderer) Policy() resolve.Policy { return resolve.Disinherit }

func (r *Renderer) TypeOptions() []typedesc.Option { return nil }

func (r *Renderer) GeneratesFoundational() bool { return false }

func (r *Renderer) Fence() render.Fence {
	return render.Fence{Indent: "\t"}
}

// RenderModel emits <snake_name>.go.
func (r *Renderer) RenderModel(ctx *vocab.Context, m *render.ModelData) ([]render.File, error) {
	var sb strings.Builder
	r.writeHeader(&sb, m.SourceVersion)

	doc := append([]string{fmt.Sprintf("%s is the %s type.", m.ClassName, m.TypeName)}, m.Doc...)
	writeComment(&sb, "", doc)
	embedded := r.embedded(ctx, m)
	fmt.Fprintf(&sb, "type %s struct {\n", m.ClassName)
	fmt.Fprintf(&sb, "\t%s\n", embedded)
	for _, f := range m.Fields {
		sb.WriteString("\n")
		if err := r.writeField(&sb, ctx, f, embedded); err != nil {
			return nil, err
		}
	}
	sb.WriteString("}\n\n")

	fmt.Fprintf(&sb, "// NewTyped%s returns a %s with its @type set.\n", m.ClassName, m.ClassName)
	fmt.Fprintf(&sb, "func NewTyped%s() *%s {\n", m.ClassName, m.ClassName)
	fmt.Fprintf(&sb, "\tv := &%s{}\n", m.ClassName)
	fmt.Fprintf(&sb, "\tv.Type = %q\n", m.TypeName)
	sb.WriteString("\treturn v\n}\n")

	return r.file(render.ToSnakeCase(m.ClassName)+".go", sb.String())
}

// embedded names the struct a model embeds: its parent when generated,
// otherwise the JSON-LD root.
func (r *Renderer) embedded(ctx *vocab.Context, m *render.ModelData) string {
	if m.Parent != nil && !ctx.IsFoundational(m.Parent.Type) {
		return render.ClassName(localName(m.Parent.Type))
	}
	return "JSONLD"
}

func (r *Renderer) writeField(sb *strings.Builder, ctx *vocab.Context, f *render.FieldData, embedded string) error {
	name := render.ExportedName(f.Name)
	if name == embedded {
		name += "Value"
	}
	tag := fmt.Sprintf("`json:\"%s,omitempty\"`", f.JSONName)

	if f.Disinherit {
		fmt.Fprintf(sb, "\t// %s is disinherited in this type and must not be used.\n", name)
		fmt.Fprintf(sb, "\t%s *Disinherited %s\n", name, tag)
		return nil
	}

	typ, err := goType(ctx, f)
	if err != nil {
		return err
	}

	lines := f.Doc
	if len(f.Example) > 0 {
		lines = append(append(append([]string(nil), lines...), "", "Example:", ""), f.Example...)
	}
	if f.DeprecationGuidance != "" {
		lines = append(append([]string(nil), lines...), "", "Deprecated: "+f.DeprecationGuidance)
	}
	writeComment(sb, "\t", lines)
	fmt.Fprintf(sb, "\t%s %s %s\n", name, typ, tag)
	return nil
}

// RenderEnum emits <snake_name>_enum.go declaring a string type and one
// constant per value.
func (r *Renderer) RenderEnum(ctx *vocab.Context, e *render.EnumData) ([]render.File, error) {
	var sb strings.Builder
	r.writeHeader(&sb, e.SourceVersion)

	doc := append([]string{fmt.Sprintf("%s enumerates %s values.", e.ClassName, e.TypeName)}, e.Doc...)
	writeComment(&sb, "", doc)
	fmt.Fprintf(&sb, "type %s string\n\n", e.ClassName)

	if len(e.Values) > 0 {
		sb.WriteString("const (\n")
		for _, v := range e.Values {
			fmt.Fprintf(&sb, "\t%s%s %s = %q\n", e.ClassName, render.ExportedName(v.Name), e.ClassName, v.IRI)
		}
		sb.WriteString(")\n")
	}

	return r.file(render.ToSnakeCase(e.ClassName)+"_enum.go", sb.String())
}

// RenderIndex emits the package documentation and the shared base types.
func (r *Renderer) RenderIndex(generated []render.File) ([]render.File, error) {
	var sb strings.Builder
	sb.WriteString("// Code generated by modelgen. DO NOT EDIT.\n\n")
	fmt.Fprintf(&sb, "// Package %s holds the OpenActive data models.\n", r.pkg)
	fmt.Fprintf(&sb, "package %s\n\n", r.pkg)
	sb.WriteString(baseTypes)

	return r.file("base.go", sb.String())
}

func (r *Renderer) writeHeader(sb *strings.Builder, sourceVersion string) {
	sb.WriteString("// Code generated by modelgen. DO NOT EDIT.\n")
	if sourceVersion != "" {
		fmt.Fprintf(sb, "// Source version: %s\n", sourceVersion)
	}
	fmt.Fprintf(sb, "\npackage %s\n\n", r.pkg)
}

// file formats src and adds the imports it needs.
func (r *Renderer) file(name, src string) ([]render.File, error) {
	out, err := imports.Process(name, []byte(src), &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: false,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "formatting %s", name)
	}
	return []render.File{{Path: path.Clean(name), Content: string(out)}}, nil
}

func writeComment(sb *strings.Builder, indent string, lines []string) {
	for _, line := range lines {
		if line == "" {
			sb.WriteString(indent + "//\n")
			continue
		}
		sb.WriteString(indent + "// " + line + "\n")
	}
}

const baseTypes = `// JSONLD is embedded by every root model.
type JSONLD struct {
	Context any    ` + "`json:\"@context,omitempty\"`" + `
	Type    string ` + "`json:\"@type,omitempty\"`" + `
}

// Disinherited shadows a parent field that a model must not carry.
type Disinherited struct{}

// LegalEntity is an Organization or a Person.
type LegalEntity = any

// ReferenceValue holds either the identifier of a record or the record itself.
type ReferenceValue[T any] struct {
	ID    string
	Value *T
}

// MarshalJSON encodes the identifier as a bare string.
func (v ReferenceValue[T]) MarshalJSON() ([]byte, error) {
	if v.Value != nil {
		return json.Marshal(v.Value)
	}
	return json.Marshal(v.ID)
}

// UnmarshalJSON accepts a string identifier or an embedded object.
func (v *ReferenceValue[T]) UnmarshalJSON(data []byte) error {
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		v.ID, v.Value = id, nil
		return nil
	}
	v.ID = ""
	v.Value = new(T)
	return json.Unmarshal(data, v.Value)
}
`
