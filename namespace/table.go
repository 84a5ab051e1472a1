// Package namespace maps short vocabulary prefixes to base IRIs and converts
// identifiers between their compacted (prefix:local) and expanded forms.
//
// One prefix is reserved for the core vocabulary. Identifiers in that namespace
// compact to their bare local name so renderers can treat them as local types,
// and expand to "#local".
package namespace

import (
	"sort"
	"strings"

	"github.com/openactive/models-lib/errors"
)

// ArrayMarker prefixes an expanded identifier whose values are lists.
// It is consumed by the type descriptor resolver.
const ArrayMarker = "ArrayOf#"

// Table holds prefix → base IRI mappings.
// Not safe for concurrent mutation; the generation pipeline is single threaded.
type Table struct {
	core     string
	prefixes map[string]string
	sorted   []string // prefixes by base IRI length, longest first; nil when stale
}

// New creates an empty table whose core vocabulary uses the given prefix.
func New(corePrefix string) *Table {
	return &Table{
		core:     corePrefix,
		prefixes: make(map[string]string),
	}
}

// CorePrefix returns the prefix reserved for the core vocabulary.
func (t *Table) CorePrefix() string {
	return t.core
}

// Set declares or replaces a prefix.
func (t *Table) Set(prefix, iri string) {
	t.prefixes[prefix] = iri
	t.sorted = nil
}

// Merge declares every prefix in m, replacing existing entries.
func (t *Table) Merge(m map[string]string) {
	for prefix, iri := range m {
		t.Set(prefix, iri)
	}
}

// Lookup returns the base IRI for prefix.
func (t *Table) Lookup(prefix string) (string, bool) {
	iri, ok := t.prefixes[prefix]
	return iri, ok
}

// Map returns a copy of the prefix table.
func (t *Table) Map() map[string]string {
	out := make(map[string]string, len(t.prefixes))
	for k, v := range t.prefixes {
		out[k] = v
	}
	return out
}

// sortedPrefixes orders prefixes so a more specific base IRI is tried before a
// more general one. Ties break on prefix name to keep compaction deterministic.
func (t *Table) sortedPrefixes() []string {
	if t.sorted != nil {
		return t.sorted
	}
	keys := make([]string, 0, len(t.prefixes))
	for k := range t.prefixes {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		li, lj := len(t.prefixes[keys[i]]), len(t.prefixes[keys[j]])
		if li != lj {
			return li > lj
		}
		return keys[i] < keys[j]
	})
	t.sorted = keys
	return keys
}

// Compact rewrites an IRI as prefix:local.
//
//	https://schema.org/SportsActivityLocation -> schema:SportsActivityLocation
//	https://openactive.io/Event               -> Event (core prefix)
//	ArrayOf#https://schema.org/Text           -> schema:Text
//	#Event                                    -> Event
//
// Identifiers that are not absolute IRIs are returned without array marker or
// leading '#'. An IRI under no known namespace is returned scheme-normalized.
func (t *Table) Compact(iri string) string {
	if iri == "" {
		return ""
	}
	iri = StripArray(iri)
	if !isAbsolute(iri) {
		return strings.TrimPrefix(iri, "#")
	}
	iri = normalizeScheme(iri)

	for _, prefix := range t.sortedPrefixes() {
		base := normalizeScheme(t.prefixes[prefix])
		if base == "" {
			continue
		}
		remainder, ok := trimBase(iri, base)
		if !ok {
			continue
		}
		if prefix == t.core {
			return remainder
		}
		if remainder == "" || remainder == "/" || remainder == "#" || remainder == ":" {
			return prefix
		}
		return prefix + ":" + remainder
	}
	return iri
}

// trimBase strips base from iri, also accepting the base with its trailing
// separator swapped ('/' for '#' and back).
func trimBase(iri, base string) (string, bool) {
	if strings.HasPrefix(iri, base) {
		return iri[len(base):], true
	}
	var alt string
	switch {
	case strings.HasSuffix(base, "#"):
		alt = strings.TrimSuffix(base, "#") + "/"
	case strings.HasSuffix(base, "/"):
		alt = strings.TrimSuffix(base, "/") + "#"
	default:
		return "", false
	}
	if strings.HasPrefix(iri, alt) {
		return iri[len(alt):], true
	}
	return "", false
}

// Expand is the syntactic inverse of Compact.
//
//	schema:Text, false -> https://schema.org/Text
//	schema:Text, true  -> ArrayOf#https://schema.org/Text
//	oa:Event,    false -> #Event
//	oa:Event,    true  -> ArrayOf#Event
//
// Absolute IRIs and bare local names pass through, gaining the array marker
// when isArray is set. An unknown prefix is fatal.
func (t *Table) Expand(short string, isArray bool) (string, error) {
	marker := ""
	if isArray {
		marker = ArrayMarker
	}
	short = StripArray(short)

	if isAbsolute(short) {
		return marker + short, nil
	}
	idx := strings.Index(short, ":")
	if idx < 0 {
		if isArray {
			return marker + strings.TrimPrefix(short, "#"), nil
		}
		return short, nil
	}

	prefix, local := short[:idx], short[idx+1:]
	base, ok := t.prefixes[prefix]
	if !ok {
		return "", errors.WithHintf(
			errors.Wrapf(errors.ErrUnknownPrefix, "expanding %q", short),
			"declare %q in the vocabulary namespaces or an extension @context", prefix)
	}
	if prefix == t.core {
		if isArray {
			return marker + local, nil
		}
		return "#" + local, nil
	}
	return marker + base + local, nil
}

// IRI returns the absolute form of id. Core local names ("Event", "#Event")
// resolve against the core namespace.
func (t *Table) IRI(id string) (string, error) {
	id = StripArray(id)
	if isAbsolute(id) {
		return id, nil
	}
	id = strings.TrimPrefix(id, "#")
	prefix, local, ok := strings.Cut(id, ":")
	if !ok {
		prefix, local = t.core, id
	}
	base, found := t.prefixes[prefix]
	if !found {
		return "", errors.Wrapf(errors.ErrUnknownPrefix, "resolving %q", id)
	}
	return base + local, nil
}

// Namespace returns the prefix of a compacted identifier, or "" for local names.
func (t *Table) Namespace(id string) string {
	compacted := t.Compact(id)
	if idx := strings.Index(compacted, ":"); idx >= 0 {
		return compacted[:idx]
	}
	return ""
}

// InNamespace reports whether id belongs to prefix once compacted.
// Already compacted identifiers are matched on their prefix directly.
func (t *Table) InNamespace(id, prefix string) bool {
	if id == "" || prefix == "" {
		return false
	}
	return t.Namespace(id) == prefix
}

// LocalName returns the characters after the last '/', '#' or ':'.
func LocalName(id string) string {
	if idx := strings.LastIndexAny(id, "/#:"); idx >= 0 {
		return id[idx+1:]
	}
	return id
}

// IsArray reports whether id carries the array marker.
func IsArray(id string) bool {
	return strings.HasPrefix(id, ArrayMarker)
}

// StripArray removes the array marker from id.
func StripArray(id string) string {
	return strings.TrimPrefix(id, ArrayMarker)
}

func isAbsolute(id string) bool {
	lower := strings.ToLower(id)
	return strings.HasPrefix(lower, "http:") || strings.HasPrefix(lower, "https:")
}

func normalizeScheme(iri string) string {
	if len(iri) >= 5 && strings.EqualFold(iri[:5], "http:") {
		return "https:" + iri[5:]
	}
	if len(iri) >= 6 && strings.EqualFold(iri[:6], "https:") {
		return "https:" + iri[6:]
	}
	return iri
}
