package vocab

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/openactive/models-lib/errors"
	"github.com/openactive/models-lib/namespace"
)

// Document is a parsed extension vocabulary: a namespace context and a flat
// list of graph nodes.
type Document struct {
	// Context maps prefixes to base IRIs. Remote context references are not
	// dereferenced and contribute nothing.
	Context map[string]string
	// Graph holds the raw nodes in document order
	Graph []map[string]any
}

// Node is a graph node with every identifier compacted against the merged
// namespace table.
type Node struct {
	ID             string
	Types          []string
	Label          string
	Comment        string
	SubClassOf     []string
	DomainIncludes []string
	RangeIncludes  []string
	// IsList is set when the property's values form an ordered list
	IsList        bool
	Example       any
	DiscussionURL string
	SupersededBy  string
	Supersedes    []string
}

// HasType reports whether t is one of the node's types.
func (n *Node) HasType(t string) bool {
	for _, nt := range n.Types {
		if nt == t {
			return true
		}
	}
	return false
}

// Node kinds after normalization
const (
	NodeClass    = "Class"
	NodeProperty = "Property"
)

// ParseDocument decodes a JSON-LD vocabulary document.
// A document without @context is rejected.
func ParseDocument(data []byte) (*Document, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "failed to decode extension document")
	}

	ctxValue, ok := raw["@context"]
	if !ok || ctxValue == nil {
		return nil, errors.WithStack(errors.ErrMissingContext)
	}

	doc := &Document{Context: make(map[string]string)}
	collectContext(ctxValue, doc.Context)

	switch g := raw["@graph"].(type) {
	case []any:
		for _, item := range g {
			if node, ok := item.(map[string]any); ok {
				doc.Graph = append(doc.Graph, node)
			}
		}
	case map[string]any:
		doc.Graph = append(doc.Graph, g)
	}

	return doc, nil
}

// collectContext flattens a JSON-LD @context into prefix declarations.
// Only entries whose value is a string IRI are namespaces; term definitions
// (objects) and remote contexts (bare strings) are skipped.
func collectContext(v any, out map[string]string) {
	switch c := v.(type) {
	case []any:
		for _, item := range c {
			collectContext(item, out)
		}
	case map[string]any:
		for key, val := range c {
			if strings.HasPrefix(key, "@") {
				continue
			}
			if iri, ok := val.(string); ok && looksLikeBase(iri) {
				out[key] = iri
			}
		}
	}
}

func looksLikeBase(iri string) bool {
	return strings.HasSuffix(iri, "/") || strings.HasSuffix(iri, "#") || strings.HasSuffix(iri, ":")
}

// Key aliases accepted for each node attribute, in lookup order.
var (
	idKeys           = []string{"@id", "id"}
	typeKeys         = []string{"@type", "type", "rdf:type"}
	labelKeys        = []string{"label", "rdfs:label"}
	commentKeys      = []string{"comment", "rdfs:comment"}
	subClassOfKeys   = []string{"subClassOf", "rdfs:subClassOf"}
	domainKeys       = []string{"domainIncludes", "schema:domainIncludes"}
	rangeKeys        = []string{"rangeIncludes", "schema:rangeIncludes"}
	containerKeys    = []string{"@container", "container"}
	exampleKeys      = []string{"example", "schema:example"}
	discussionKeys   = []string{"discussionUrl", "oa:discussionUrl"}
	supersededByKeys = []string{"supersededBy", "schema:supersededBy"}
	supersedesKeys   = []string{"supersedes", "schema:supersedes"}
)

// CompactGraph converts the document's raw nodes into Nodes whose identifiers
// are compacted with table. Prefixed identifiers are first expanded with the
// document's own context so a document may use prefixes the base vocabulary
// names differently.
func (d *Document) CompactGraph(table *namespace.Table) []Node {
	local := namespace.New(table.CorePrefix())
	local.Merge(table.Map())
	for prefix, iri := range d.Context {
		if _, known := table.Lookup(prefix); !known {
			local.Set(prefix, iri)
		}
	}

	compact := func(id string) string {
		if id == "" {
			return ""
		}
		if expanded, err := local.Expand(id, false); err == nil {
			id = expanded
		}
		return table.Compact(id)
	}
	compactAll := func(ids []string) []string {
		out := make([]string, 0, len(ids))
		for _, id := range ids {
			out = append(out, compact(id))
		}
		return out
	}

	nodes := make([]Node, 0, len(d.Graph))
	for _, raw := range d.Graph {
		n := Node{
			ID:             compact(firstString(raw, idKeys)),
			Label:          languageString(first(raw, labelKeys)),
			Comment:        languageString(first(raw, commentKeys)),
			SubClassOf:     compactAll(identifiers(first(raw, subClassOfKeys))),
			DomainIncludes: compactAll(identifiers(first(raw, domainKeys))),
			RangeIncludes:  compactAll(identifiers(first(raw, rangeKeys))),
			IsList:         firstString(raw, containerKeys) == "@list",
			Example:        first(raw, exampleKeys),
			DiscussionURL:  firstString(raw, discussionKeys),
			SupersededBy:   compact(firstIdentifier(first(raw, supersededByKeys))),
			Supersedes:     compactAll(identifiers(first(raw, supersedesKeys))),
		}
		for _, t := range identifiers(first(raw, typeKeys)) {
			n.Types = append(n.Types, normalizeNodeType(compact(t)))
		}
		nodes = append(nodes, n)
	}
	return nodes
}

// normalizeNodeType maps rdf/rdfs/owl class and property markers to the bare
// NodeClass and NodeProperty kinds.
func normalizeNodeType(t string) string {
	switch t {
	case "rdfs:Class", "owl:Class", NodeClass:
		return NodeClass
	case "rdf:Property", "owl:ObjectProperty", "owl:DatatypeProperty", NodeProperty:
		return NodeProperty
	}
	return t
}

func first(raw map[string]any, keys []string) any {
	for _, k := range keys {
		if v, ok := raw[k]; ok {
			return v
		}
	}
	return nil
}

func firstString(raw map[string]any, keys []string) string {
	return firstIdentifier(first(raw, keys))
}

// identifiers accepts a string, an {"@id": ...} object, or an array of either.
func identifiers(v any) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		return []string{t}
	case map[string]any:
		if id := firstIdentifier(t); id != "" {
			return []string{id}
		}
		return nil
	case []any:
		var out []string
		for _, item := range t {
			out = append(out, identifiers(item)...)
		}
		return out
	default:
		return nil
	}
}

func firstIdentifier(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case map[string]any:
		for _, k := range idKeys {
			if s, ok := t[k].(string); ok {
				return s
			}
		}
	case []any:
		if len(t) > 0 {
			return firstIdentifier(t[0])
		}
	}
	return ""
}

// languageString reads a plain or language-tagged literal, preferring English.
// Maps and lists without a string member yield "".
func languageString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case map[string]any:
		if s, ok := t["en"].(string); ok {
			return s
		}
		if s, ok := t["@value"].(string); ok {
			return s
		}
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if s, ok := t[k].(string); ok {
				return s
			}
		}
		return ""
	case []any:
		for _, item := range t {
			if s := languageString(item); s != "" {
				return s
			}
		}
		return ""
	}
	return fmt.Sprint(v)
}
