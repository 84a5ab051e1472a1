package vocab

import (
	"fmt"
	"sort"
	"strings"

	"github.com/openactive/models-lib/errors"
	"github.com/openactive/models-lib/logger"
	"github.com/openactive/models-lib/namespace"
)

// githubIssueLinkFormat renders a discussion URL as a short markdown link.
const githubIssueLinkFormat = "[#%s](%s)"

// Merge folds every registered extension into the model and enum maps.
// Every extension must already carry its fetched Document.
//
// Stages run strictly in order: base enums are re-keyed, all extension
// namespaces are merged (so extensions may reference each other), each
// extension's classes, properties and enumerations are attached, and finally
// raw parent identifiers are normalized into SubClassesOf.
func (c *Context) Merge() error {
	c.reindexEnums()

	for _, prefix := range c.ExtensionOrder {
		ext := c.Extensions[prefix]
		if err := c.checkRequires(ext); err != nil {
			return err
		}
		if ext.Document != nil {
			c.Namespaces.Merge(ext.Document.Context)
		}
	}

	for _, prefix := range c.ExtensionOrder {
		ext := c.Extensions[prefix]
		if ext.Document == nil {
			continue
		}
		ext.Graph = ext.Document.CompactGraph(c.Namespaces)
	}

	for _, prefix := range c.ExtensionOrder {
		ext := c.Extensions[prefix]
		if len(ext.Graph) == 0 {
			continue
		}
		c.mergeClasses(ext)
		if err := c.mergeProperties(ext); err != nil {
			return errors.Wrapf(err, "merging extension %q", prefix)
		}
		c.mergeEnums(ext)
		c.log.Infow("Merged extension",
			logger.FieldExtension, prefix,
			logger.FieldCount, len(ext.Graph))
	}

	return c.normalizeSubClasses()
}

// reindexEnums re-keys base enums by compacted identifier. Base enums arrive
// keyed by bare label.
func (c *Context) reindexEnums() {
	enums := make(map[string]*EnumType, len(c.Enums))
	for label, e := range c.Enums {
		var id string
		if e.ExtensionPrefix != "" {
			id = e.ExtensionPrefix + ":" + label
		} else {
			id = c.Namespaces.Compact(e.Namespace + label)
		}
		e.ID = id
		if e.Label == "" {
			e.Label = label
		}
		enums[id] = e
	}
	c.Enums = enums
}

func (c *Context) mergeClasses(ext *Extension) {
	for i := range ext.Graph {
		n := &ext.Graph[i]
		if !n.HasType(NodeClass) || c.isEnumerationNode(n) {
			continue
		}
		if existing, ok := c.Models[n.ID]; ok && existing.Extension != ext.Prefix {
			c.log.Warnw("Extension class replaces existing model",
				logger.FieldModel, n.ID,
				logger.FieldExtension, ext.Prefix)
		}
		m := &Model{
			Type:          n.ID,
			Extension:     ext.Prefix,
			RawSubClasses: append([]string(nil), n.SubClassOf...),
			Fields:        make(map[string]*Field),
		}
		if n.Comment != "" {
			m.Description = []DescriptionSection{{Paragraphs: []string{n.Comment}}}
		}
		c.Models[n.ID] = m
	}
}

func (c *Context) isEnumerationNode(n *Node) bool {
	return len(n.SubClassOf) > 0 && n.SubClassOf[0] == c.Options.EnumerationMarker
}

func (c *Context) mergeEnums(ext *Extension) {
	base, _ := c.Namespaces.Lookup(ext.Prefix)
	for i := range ext.Graph {
		n := &ext.Graph[i]
		if !n.HasType(NodeClass) || !c.isEnumerationNode(n) {
			continue
		}
		e := &EnumType{
			ID:              n.ID,
			Label:           n.Label,
			Namespace:       base,
			Comment:         n.Comment,
			ExtensionPrefix: ext.Prefix,
			Values:          []string{},
		}
		for j := range ext.Graph {
			member := &ext.Graph[j]
			if member.HasType(n.ID) {
				e.Values = append(e.Values, member.Label)
				e.FQValues = append(e.FQValues, member.ID)
			}
		}
		c.Enums[n.ID] = e
	}
}

func (c *Context) mergeProperties(ext *Extension) error {
	for i := range ext.Graph {
		n := &ext.Graph[i]
		if !n.HasType(NodeProperty) {
			continue
		}
		field, err := c.fieldFromNode(ext, n)
		if err != nil {
			return err
		}
		for _, domain := range c.normalizeDomains(n.DomainIncludes) {
			if err := c.attachField(ext, domain, field); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Context) fieldFromNode(ext *Extension, n *Node) (*Field, error) {
	f := &Field{
		Name:            namespace.LocalName(n.ID),
		MemberName:      n.ID,
		Example:         n.Example,
		ExtensionPrefix: ext.Prefix,
		SupersededBy:    n.SupersededBy,
		Supersedes:      n.Supersedes,
	}
	for _, r := range n.RangeIncludes {
		id, err := c.Namespaces.Expand(r, n.IsList)
		if err != nil {
			return nil, errors.Wrapf(err, "range of property %q", n.ID)
		}
		f.Ranges = append(f.Ranges, RangeRef{Kind: RangeAlternativeType, ID: id})
	}

	desc := n.Comment
	if n.DiscussionURL != "" {
		desc += "\n\nIf you are using this property, please join the discussion at proposal " +
			issueLink(n.DiscussionURL) + "."
	}
	f.Description = []string{desc}

	if n.SupersededBy != "" {
		f.DeprecationGuidance = fmt.Sprintf(
			"This term has graduated from the %s namespace and is highly likely to be removed in future versions of this library, please use `%s` instead.",
			ext.Prefix, namespace.LocalName(n.SupersededBy))
	}
	return f, nil
}

func issueLink(url string) string {
	parts := strings.Split(strings.TrimSuffix(url, "/"), "/")
	return fmt.Sprintf(githubIssueLinkFormat, parts[len(parts)-1], url)
}

// normalizeDomains rewrites pending domains into the foundational namespace
// and drops repeats.
func (c *Context) normalizeDomains(domains []string) []string {
	pending := c.Options.PendingPrefix + ":"
	seen := make(map[string]bool, len(domains))
	out := make([]string, 0, len(domains))
	for _, d := range domains {
		if c.Options.PendingPrefix != "" && strings.HasPrefix(d, pending) {
			d = c.Options.FoundationalPrefix + ":" + strings.TrimPrefix(d, pending)
		}
		if seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	return out
}

// attachField adds a copy of field to the model named by domain.
func (c *Context) attachField(ext *Extension, domain string, field *Field) error {
	var m *Model
	if ext.PreferNative {
		m = c.Models[namespace.LocalName(domain)]
	}
	if m == nil {
		m = c.Models[domain]
	}

	if m == nil {
		if c.IsFoundational(domain) {
			c.log.Infow("Property domain not materialized, foundational vocabularies are commonly incomplete",
				logger.FieldField, field.Name,
				logger.FieldDomain, domain,
				logger.FieldExtension, ext.Prefix)
		} else {
			c.log.Errorw("Could not attach property to unknown model",
				logger.FieldField, field.Name,
				logger.FieldDomain, domain,
				logger.FieldExtension, ext.Prefix)
		}
		return nil
	}

	if m.Fields == nil {
		m.Fields = make(map[string]*Field)
	}

	if existing, ok := m.Fields[field.Name]; ok {
		switch {
		case c.supersedes(field, existing):
			c.log.Debugw("Property replaces superseded field",
				logger.FieldField, field.Name,
				logger.FieldModel, m.Type,
				logger.FieldExtension, ext.Prefix)
		case c.sameMember(field.SupersededBy, existing):
			c.log.Infow("Keeping field that supersedes extension property",
				logger.FieldField, field.Name,
				logger.FieldModel, m.Type,
				logger.FieldExtension, ext.Prefix)
			return nil
		default:
			return errors.WithHintf(
				errors.Wrapf(errors.ErrDuplicateField, "field %q on model %q (%s and %s)",
					field.Name, m.Type, memberOf(existing), field.MemberName),
				"mark one of the properties with supersedes or supersededBy")
		}
	}

	m.Fields[field.Name] = field.Clone()
	if !containsString(m.ExtensionFields, field.Name) {
		m.ExtensionFields = append(m.ExtensionFields, field.Name)
	}
	return nil
}

// supersedes reports whether the incoming field explicitly replaces existing.
func (c *Context) supersedes(incoming, existing *Field) bool {
	for _, s := range incoming.Supersedes {
		if c.sameMember(s, existing) {
			return true
		}
	}
	return false
}

func (c *Context) sameMember(id string, f *Field) bool {
	if id == "" {
		return false
	}
	return c.Namespaces.Compact(id) == c.Namespaces.Compact(memberOf(f))
}

func memberOf(f *Field) string {
	if f.MemberName != "" {
		return f.MemberName
	}
	return f.Name
}

// normalizeSubClasses resolves RawSubClasses into SubClassesOf. An extension
// that prefers native naming resolves a parent by local name first.
func (c *Context) normalizeSubClasses() error {
	for _, key := range c.modelKeys() {
		m := c.Models[key]
		if len(m.RawSubClasses) == 0 {
			continue
		}
		preferNative := c.PreferNative(m.Extension)

		parents := make([]string, 0, len(m.RawSubClasses))
		for _, raw := range m.RawSubClasses {
			local := namespace.LocalName(raw)
			switch {
			case preferNative && c.Models[local] != nil:
				parents = append(parents, "#"+local)
			case c.Models[c.Namespaces.Compact(raw)] != nil:
				parents = append(parents, raw)
			default:
				expanded, err := c.Namespaces.Expand(raw, false)
				if err != nil {
					return errors.Wrapf(err, "parent of model %q", m.Type)
				}
				parents = append(parents, expanded)
			}
		}
		m.SubClassesOf = parents
	}
	return nil
}

// modelKeys returns model keys sorted, for deterministic iteration.
func (c *Context) modelKeys() []string {
	keys := make([]string, 0, len(c.Models))
	for k := range c.Models {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
