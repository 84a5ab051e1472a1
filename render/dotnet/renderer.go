// Package dotnet renders models as C# classes for the OpenActive .NET
// library, which builds on Schema.NET.
package dotnet

import (
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/openactive/models-lib/render"
	"github.com/openactive/models-lib/resolve"
	"github.com/openactive/models-lib/typedesc"
	"github.com/openactive/models-lib/vocab"
)

const (
	namespaceName  = "OpenActive.NET"
	jsonLdObject   = "Schema.NET.JsonLdObject"
	schemaNET      = "Schema.NET."
	disinheritNote = "This property is disinherited in this type, and must not be used."
)

// Renderer implements render.Renderer for C#.
type Renderer struct{}

var _ render.Renderer = (*Renderer)(nil)

// New creates a .NET renderer.
func New() *Renderer {
	return &Renderer{}
}

func (r *Renderer) Language() string      { return "dotnet" }
func (r *Renderer) FileExtension() string { return "cs" }

func (r *Renderer) Policy() resolve.Policy { return resolve.Disinherit }

func (r *Renderer) TypeOptions() []typedesc.Option { return nil }

func (r *Renderer) GeneratesFoundational() bool { return false }

func (r *Renderer) Fence() render.Fence {
	return render.Fence{Open: "<code>", Close: "</code>"}
}

// RenderModel emits models/<Name>.cs.
func (r *Renderer) RenderModel(ctx *vocab.Context, m *render.ModelData) ([]render.File, error) {
	var sb strings.Builder
	writeHeader(&sb, m.SourceVersion)
	sb.WriteString("using System;\n")
	sb.WriteString("using System.Collections.Generic;\n")
	sb.WriteString("using System.Runtime.Serialization;\n")
	sb.WriteString("using Newtonsoft.Json;\n\n")
	fmt.Fprintf(&sb, "namespace %s\n{\n", namespaceName)

	writeSummary(&sb, "    ", m.Doc)
	sb.WriteString("    [DataContract]\n")
	fmt.Fprintf(&sb, "    public partial class %s : %s\n    {\n", m.ClassName, r.inherits(ctx, m))

	sb.WriteString("        /// <summary>\n")
	sb.WriteString("        /// Gets the name of the type as specified by schema.org.\n")
	sb.WriteString("        /// </summary>\n")
	sb.WriteString("        [DataMember(Name = \"@type\", Order = 1)]\n")
	fmt.Fprintf(&sb, "        public override string Type => %q;\n", m.TypeName)

	for _, f := range m.Fields {
		typ, err := r.typeString(ctx, f)
		if err != nil {
			return nil, err
		}
		sb.WriteString("\n")
		r.writeProperty(&sb, m, f, typ)
	}

	sb.WriteString("    }\n}\n")

	return []render.File{{
		Path:    path.Join("models", m.ClassName+".cs"),
		Content: sb.String(),
	}}, nil
}

func (r *Renderer) writeProperty(sb *strings.Builder, m *render.ModelData, f *render.FieldData, typ string) {
	name := render.ClassName(strings.TrimPrefix(f.Name, "@"))
	const indent = "        "

	if f.Disinherit {
		fmt.Fprintf(sb, "%s[Obsolete(%q, true)]\n", indent, disinheritNote)
		fmt.Fprintf(sb, "%spublic override %s %s { get; set; }\n", indent, typ, name)
		return
	}

	writeSummary(sb, indent, f.Doc)
	if len(f.Example) > 0 {
		sb.WriteString(indent + "/// <example>\n")
		for _, line := range f.Example {
			sb.WriteString(indent + "/// " + escapeXML(line) + "\n")
		}
		sb.WriteString(indent + "/// </example>\n")
	}

	isExtension := f.ExtensionPrefix != ""
	modifier := "virtual"
	switch {
	case f.Override:
		modifier = "override"
	case !isExtension && m.HasBaseClass && f.DerivedFromSchema:
		modifier = "new virtual"
	}

	fmt.Fprintf(sb, "%s[DataMember(Name = %q, EmitDefaultValue = false, Order = %d)]\n", indent, f.JSONName, f.Order)
	fmt.Fprintf(sb, "%s[JsonConverter(typeof(%s))]\n", indent, jsonConverter(f, typ))
	if f.DeprecationGuidance != "" {
		fmt.Fprintf(sb, "%s[Obsolete(%q, false)]\n", indent, f.DeprecationGuidance)
	}
	fmt.Fprintf(sb, "%spublic %s %s %s { get; set; }%s\n", indent, modifier, typ, name, defaultValue(f.DefaultContent))
}

// inherits picks the base class: the canonical parent, else the nearest
// foundational derivedFrom, else the JSON-LD root.
func (r *Renderer) inherits(ctx *vocab.Context, m *render.ModelData) string {
	if sub := m.Model.SubClassOf; sub != "" {
		name := render.ClassName(localName(sub))
		if ctx.IsFoundational(sub) {
			return schemaNET + name
		}
		return name
	}
	if m.DerivedFrom != "" && ctx.IsFoundational(m.DerivedFrom) {
		return schemaNET + render.ClassName(localName(m.DerivedFrom))
	}
	return jsonLdObject
}

func jsonConverter(f *render.FieldData, typ string) string {
	switch {
	case typ == "TimeSpan?":
		return "OpenActiveTimeSpanToISO8601DurationValuesConverter"
	case localName(f.RequiredType) == "Time":
		return "OpenActiveDateTimeOffsetToISO8601TimeValuesConverter"
	case typ == "DateTimeOffset?":
		return "OpenActiveDateTimeOffsetToISO8601DateTimeValuesConverter"
	default:
		return "ValuesConverter"
	}
}

func defaultValue(v any) string {
	switch d := v.(type) {
	case nil:
		return ""
	case int:
		return " = " + strconv.Itoa(d) + ";"
	case int64:
		return " = " + strconv.FormatInt(d, 10) + ";"
	case float64:
		if d == float64(int64(d)) {
			return " = " + strconv.FormatInt(int64(d), 10) + ";"
		}
		return fmt.Sprintf(" = \"%v\";", d)
	case string:
		if d == "" {
			return ""
		}
		return " = \"" + strings.ReplaceAll(d, `"`, `\"`) + "\";"
	default:
		return fmt.Sprintf(" = \"%v\";", d)
	}
}

// RenderEnum emits enums/<Name>.cs.
func (r *Renderer) RenderEnum(ctx *vocab.Context, e *render.EnumData) ([]render.File, error) {
	var sb strings.Builder
	writeHeader(&sb, e.SourceVersion)
	sb.WriteString("using System.Runtime.Serialization;\n")
	sb.WriteString("using Newtonsoft.Json;\n")
	sb.WriteString("using Newtonsoft.Json.Converters;\n\n")
	fmt.Fprintf(&sb, "namespace %s\n{\n", namespaceName)

	writeSummary(&sb, "    ", e.Doc)
	sb.WriteString("    [JsonConverter(typeof(StringEnumConverter))]\n")
	fmt.Fprintf(&sb, "    public enum %s\n    {\n", e.ClassName)
	for _, v := range e.Values {
		fmt.Fprintf(&sb, "        [EnumMember(Value = %q)]\n", v.IRI)
		fmt.Fprintf(&sb, "        %s,\n", render.ClassName(v.Name))
	}
	sb.WriteString("    }\n}\n")

	return []render.File{{
		Path:    path.Join("enums", e.ClassName+".cs"),
		Content: sb.String(),
	}}, nil
}

func (r *Renderer) RenderIndex(generated []render.File) ([]render.File, error) {
	return nil, nil
}

func writeHeader(sb *strings.Builder, sourceVersion string) {
	sb.WriteString("// <auto-generated />\n")
	if sourceVersion != "" {
		fmt.Fprintf(sb, "// Source version: %s\n", sourceVersion)
	}
	sb.WriteString("\n")
}

func writeSummary(sb *strings.Builder, indent string, lines []string) {
	if len(lines) == 0 {
		return
	}
	sb.WriteString(indent + "/// <summary>\n")
	for _, line := range lines {
		sb.WriteString(strings.TrimRight(indent+"/// "+escapeXML(line), " ") + "\n")
	}
	sb.WriteString(indent + "/// </summary>\n")
}

// escapeXML escapes doc text but keeps the <code> fences intact.
func escapeXML(s string) string {
	if s == "<code>" || s == "</code>" {
		return s
	}
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;").Replace(s)
}
