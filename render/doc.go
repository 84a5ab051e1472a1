package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/openactive/models-lib/namespace"
	"github.com/openactive/models-lib/vocab"
)

// Fence delimits a code example inside a documentation comment.
type Fence struct {
	Open  string
	Close string
	// Indent prefixes every line between the delimiters
	Indent string
}

// Markdown is the fence used by renderers whose doc comments accept markdown.
var Markdown = Fence{Open: "```json", Close: "```"}

var jsonKeyword = regexp.MustCompile(`(?i)@id|@type|input@name`)

// CleanDocLines drops empty entries, splits multi-line entries and quotes
// JSON-LD keywords with backticks.
func CleanDocLines(lines []string) []string {
	var out []string
	for _, line := range lines {
		if line == "" {
			continue
		}
		out = append(out, strings.Split(quoteKeywords(line), "\n")...)
	}
	return out
}

// quoteKeywords wraps @id, @type and input@name in backticks unless they are
// already followed by a quote character.
func quoteKeywords(s string) string {
	matches := jsonKeyword.FindAllStringIndex(s, -1)
	if matches == nil {
		return s
	}
	var b strings.Builder
	last := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		b.WriteString(s[last:start])
		if end < len(s) && strings.ContainsRune("\"`'", rune(s[end])) {
			b.WriteString(s[start:end])
		} else {
			b.WriteString("`" + s[start:end] + "`")
		}
		last = end
	}
	b.WriteString(s[last:])
	return b.String()
}

// RenderCode formats a JSON value as it would appear under fieldName.
// Scalars are quoted unless requiredType is numeric.
func RenderCode(code any, fieldName, requiredType string, fence Fence) string {
	var body string
	switch v := code.(type) {
	case map[string]any, []any:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			body = fmt.Sprint(v)
		} else {
			body = strings.TrimSuffix(buf.String(), "\n")
		}
	default:
		if isNumeric(requiredType) {
			body = fmt.Sprint(v)
		} else {
			body = `"` + fmt.Sprint(v) + `"`
		}
	}
	if fieldName != "" {
		body = `"` + fieldName + `": ` + body
	}

	var lines []string
	if fence.Open != "" {
		lines = append(lines, fence.Open)
	}
	for _, line := range strings.Split(body, "\n") {
		lines = append(lines, fence.Indent+line)
	}
	if fence.Close != "" {
		lines = append(lines, fence.Close)
	}
	return strings.Join(lines, "\n")
}

func isNumeric(requiredType string) bool {
	switch namespace.LocalName(requiredType) {
	case "Integer", "Float", "Number":
		return true
	}
	return false
}

// DescriptionText flattens description sections into paragraphs. A titled
// section leads with its title.
func DescriptionText(sections []vocab.DescriptionSection) string {
	var parts []string
	for _, s := range sections {
		if len(s.Paragraphs) == 0 {
			continue
		}
		text := strings.Join(s.Paragraphs, " ")
		if s.Title != "" {
			text = s.Title + ": " + text
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, "\n\n")
}

func (p *preparer) warning(prefix string, pick func(*vocab.Extension) string) string {
	if ext, ok := p.ctx.Extensions[prefix]; ok {
		return pick(ext)
	}
	return ""
}

func (p *preparer) modelDoc(m *vocab.Model) []string {
	lines := []string{
		p.warning(m.Extension, func(e *vocab.Extension) string { return e.ClassWarning }),
		DescriptionText(m.Description),
	}
	if m.Extension != p.ctx.Options.FoundationalPrefix {
		if base := p.baseSchemaClass(m); base != "" {
			text := "This type is derived from " + base
			if p.ctx.IsFoundational(base) {
				text += ", which means that any of this type's properties within schema.org may also be used"
			}
			lines = append(lines, text+".")
		}
	}
	return CleanDocLines(lines)
}

// baseSchemaClass finds the foundational class a model ultimately derives
// from, for documentation only.
func (p *preparer) baseSchemaClass(m *vocab.Model) string {
	seen := map[*vocab.Model]bool{}
	for cur := m; cur != nil && !seen[cur]; cur = p.ctx.Parent(cur) {
		seen[cur] = true
		if cur.DerivedFrom != "" {
			return cur.DerivedFrom
		}
		if cur.SubClassOf != "" && p.ctx.IsFoundational(cur.SubClassOf) {
			if iri, err := p.ctx.Namespaces.IRI(cur.SubClassOf); err == nil {
				return iri
			}
			return cur.SubClassOf
		}
	}
	return ""
}

func (p *preparer) enumDoc(e *vocab.EnumType) []string {
	return CleanDocLines([]string{
		p.warning(e.ExtensionPrefix, func(x *vocab.Extension) string { return x.EnumWarning }),
		e.Comment,
	})
}

func (p *preparer) fieldDoc(f *vocab.Field, requiredType string) []string {
	if f.RequiredContent != nil {
		return CleanDocLines([]string{
			"Must always be present and set to " + RenderCode(f.RequiredContent, f.Name, requiredType, p.fence),
		})
	}
	notice := p.warning(f.ExtensionPrefix, func(e *vocab.Extension) string { return e.PropertyWarning })
	if f.DeprecationGuidance != "" {
		notice = "[DEPRECATED: " + f.DeprecationGuidance + "]"
	}
	return CleanDocLines(append([]string{notice}, f.Description...))
}

func (p *preparer) codeExample(f *vocab.Field, requiredType string) []string {
	if f.Example == nil || f.Example == "" {
		return nil
	}
	return strings.Split(RenderCode(f.Example, f.Name, requiredType, p.fence), "\n")
}
