// Package typescript renders models as TypeScript types with Joi schemas.
//
// Every model lists all of its inherited fields, foundational models are
// generated alongside the core ones, and referenceable fields accept a URL in
// place of an embedded object.
package typescript

import (
	"fmt"
	"path"
	"regexp"
	"slices"
	"strings"

	"github.com/openactive/models-lib/render"
	"github.com/openactive/models-lib/resolve"
	"github.com/openactive/models-lib/typedesc"
	"github.com/openactive/models-lib/vocab"
)

const (
	coreDir         = "oa"
	foundationalDir = "schema"
)

var plainPropName = regexp.MustCompile(`^[A-Za-z0-9]*$`)

// Renderer implements render.Renderer for TypeScript.
type Renderer struct{}

var _ render.Renderer = (*Renderer)(nil)

// New creates a TypeScript renderer.
func New() *Renderer {
	return &Renderer{}
}

func (r *Renderer) Language() string      { return "typescript" }
func (r *Renderer) FileExtension() string { return "ts" }

func (r *Renderer) Policy() resolve.Policy { return resolve.FullInheritance }

func (r *Renderer) TypeOptions() []typedesc.Option {
	return []typedesc.Option{typedesc.WithMultiReference(true)}
}

func (r *Renderer) GeneratesFoundational() bool { return true }

func (r *Renderer) Fence() render.Fence { return render.Markdown }

func dir(foundational bool) string {
	if foundational {
		return foundationalDir
	}
	return coreDir
}

// RenderModel emits <dir>/<Name>.ts exporting Type and JoiSchema.
func (r *Renderer) RenderModel(ctx *vocab.Context, m *render.ModelData) ([]render.File, error) {
	var sb strings.Builder
	writeHeader(&sb, m.SourceVersion)
	sb.WriteString("import * as Joi from 'joi';\n")
	sb.WriteString("import * as oa from '../oa';\n")
	sb.WriteString("import * as schema from '../schema';\n\n")

	writeDoc(&sb, "", m.Doc)
	sb.WriteString("export type Type = {\n")
	fmt.Fprintf(&sb, "  '@type': '%s';\n", m.TypeName)
	sb.WriteString("  '@context'?: string | string[];\n")
	for _, f := range m.Fields {
		tsType := r.tsType(ctx, f)
		if tsType == "" {
			continue
		}
		writeDoc(&sb, "  ", fieldDoc(f))
		fmt.Fprintf(&sb, "  %s?: %s;\n", propName(f.JSONName), tsType)
	}
	sb.WriteString("};\n\n")

	fmt.Fprintf(&sb, "/**\n * Joi schema for %s\n */\n", m.TypeName)
	sb.WriteString("export const JoiSchema = Joi.object({\n")
	fmt.Fprintf(&sb, "  '@type': Joi.string().valid('%s').required(),\n", m.TypeName)
	sb.WriteString("  '@context': Joi.alternatives().try(Joi.string(), Joi.array().items(Joi.string())),\n")
	for _, f := range m.Fields {
		joi := r.joiType(ctx, f, m.Key)
		if joi == "" {
			continue
		}
		fmt.Fprintf(&sb, "  %s: %s,\n", propName(f.JSONName), joi)
	}
	sb.WriteString("});\n")

	return []render.File{{
		Path:    path.Join(dir(m.Foundational), m.ClassName+".ts"),
		Content: sb.String(),
	}}, nil
}

// RenderEnum emits <dir>/enums/<Name>.ts.
func (r *Renderer) RenderEnum(ctx *vocab.Context, e *render.EnumData) ([]render.File, error) {
	var sb strings.Builder
	writeHeader(&sb, e.SourceVersion)
	sb.WriteString("import * as Joi from 'joi';\n\n")

	writeDoc(&sb, "", e.Doc)
	if len(e.Values) == 0 {
		sb.WriteString("export type Type = never;\n\n")
		sb.WriteString("export const JoiSchema = Joi.any().forbidden();\n")
	} else {
		sb.WriteString("export type Type =\n")
		for _, v := range e.Values {
			fmt.Fprintf(&sb, "  | '%s'\n", v.IRI)
		}
		sb.WriteString(";\n\n")
		sb.WriteString("export const JoiSchema = Joi.string().valid(\n")
		for _, v := range e.Values {
			fmt.Fprintf(&sb, "  '%s',\n", v.IRI)
		}
		sb.WriteString(");\n")
	}

	return []render.File{{
		Path:    path.Join(dir(e.Foundational), "enums", e.ClassName+".ts"),
		Content: sb.String(),
	}}, nil
}

// RenderIndex writes a barrel export per output directory. Model indexes
// also re-export their enums, so oa.enums.X resolves.
func (r *Renderer) RenderIndex(generated []render.File) ([]render.File, error) {
	var out []render.File
	for _, d := range []string{coreDir, foundationalDir} {
		for _, sub := range []string{path.Join(d, "enums"), d} {
			names := moduleNames(generated, sub)
			var sb strings.Builder
			sb.WriteString("/* eslint-disable */\n")
			sb.WriteString("// Auto-generated barrel export\n\n")
			for _, name := range names {
				fmt.Fprintf(&sb, "export * as %s from './%s';\n", name, name)
			}
			if sub == d {
				sb.WriteString("export * as enums from './enums';\n")
			}
			out = append(out, render.File{Path: path.Join(sub, "index.ts"), Content: sb.String()})
		}
	}
	return out, nil
}

func moduleNames(files []render.File, dir string) []string {
	var names []string
	for _, f := range files {
		if path.Dir(f.Path) != dir || path.Ext(f.Path) != ".ts" {
			continue
		}
		name := strings.TrimSuffix(path.Base(f.Path), ".ts")
		if name != "index" {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

func writeHeader(sb *strings.Builder, sourceVersion string) {
	sb.WriteString("/* eslint-disable */\n")
	if sourceVersion != "" {
		fmt.Fprintf(sb, "// Source version: %s\n", sourceVersion)
	}
	sb.WriteString("\n")
}

func fieldDoc(f *render.FieldData) []string {
	lines := slices.Clone(f.Doc)
	if len(f.Example) > 0 {
		if len(lines) > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, f.Example...)
	}
	return lines
}

func writeDoc(sb *strings.Builder, indent string, lines []string) {
	if len(lines) == 0 {
		return
	}
	sb.WriteString(indent + "/**\n")
	for _, line := range lines {
		line = strings.ReplaceAll(line, "*/", "*\\/")
		if line == "" {
			sb.WriteString(indent + " *\n")
			continue
		}
		sb.WriteString(indent + " * " + line + "\n")
	}
	sb.WriteString(indent + " */\n")
}

func propName(name string) string {
	if plainPropName.MatchString(name) {
		return name
	}
	return "'" + name + "'"
}
