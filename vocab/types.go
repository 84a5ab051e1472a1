// Package vocab holds the merged vocabulary of one generation run.
//
// A Context is an arena of models, enums and extensions keyed by identifier.
// Cross references between records are always identifiers, never pointers, so
// mutually recursive models need no ownership rules. Each pipeline stage
// (LoadBase, Merge, BuildTrees) takes the Context explicitly.
package vocab

import (
	"go.uber.org/zap"

	"github.com/openactive/models-lib/namespace"
)

// RangeKind tags where a range identifier was declared on a field.
type RangeKind int

const (
	// RangeAlternativeType is a primitive or enum alternative (alternativeTypes)
	RangeAlternativeType RangeKind = iota
	// RangeRequiredType is the single primitive type (requiredType)
	RangeRequiredType
	// RangeAlternativeModel is a model alternative (alternativeModels)
	RangeAlternativeModel
	// RangeModel is the single model type (model)
	RangeModel
)

// String returns the serialized slot name of the kind.
func (k RangeKind) String() string {
	switch k {
	case RangeAlternativeType:
		return "alternativeTypes"
	case RangeRequiredType:
		return "requiredType"
	case RangeAlternativeModel:
		return "alternativeModels"
	case RangeModel:
		return "model"
	default:
		return "unknown"
	}
}

// RangeRef is one allowed range identifier of a field.
// Identifiers may carry the namespace.ArrayMarker.
type RangeRef struct {
	Kind RangeKind `json:"kind"`
	ID   string    `json:"id"`
}

// Field is one property attached to a model.
type Field struct {
	// Name is the short field name, e.g. "startDate"
	Name string `json:"fieldName"`
	// MemberName is the full member identifier, e.g. "beta:isVirtual"
	MemberName string `json:"memberName,omitempty"`
	// SameAs aliases the field to another vocabulary's property
	SameAs string `json:"sameAs,omitempty"`

	// Ranges lists allowed types in union order:
	// alternativeTypes, requiredType, alternativeModels, model
	Ranges []RangeRef `json:"ranges,omitempty"`

	Description         []string `json:"description,omitempty"`
	Example             any      `json:"example,omitempty"`
	RequiredContent     any      `json:"requiredContent,omitempty"`
	DefaultContent      any      `json:"defaultContent,omitempty"`
	ValueConstraint     string   `json:"valueConstraint,omitempty"`
	DeprecationGuidance string   `json:"deprecationGuidance,omitempty"`
	SupersededBy        string   `json:"supersededBy,omitempty"`
	Supersedes          []string `json:"supersedes,omitempty"`

	// ExtensionPrefix is set when the field came from an extension
	ExtensionPrefix string `json:"extensionPrefix,omitempty"`

	// Resolution results
	Order             int  `json:"order,omitempty"`
	Override          bool `json:"override,omitempty"`
	Disinherit        bool `json:"disinherit,omitempty"`
	DerivedFromSchema bool `json:"derivedFromSchema,omitempty"`
	AllowReferencing  bool `json:"allowReferencing,omitempty"`
}

// Clone returns a deep copy of f.
func (f *Field) Clone() *Field {
	c := *f
	c.Ranges = append([]RangeRef(nil), f.Ranges...)
	c.Description = append([]string(nil), f.Description...)
	c.Supersedes = append([]string(nil), f.Supersedes...)
	return &c
}

// RangeIDs returns the field's range identifiers in union order.
func (f *Field) RangeIDs() []string {
	ids := make([]string, 0, len(f.Ranges))
	for _, r := range f.Ranges {
		ids = append(ids, r.ID)
	}
	return ids
}

// FirstRange returns the first range identifier of the given kind.
func (f *Field) FirstRange(kind RangeKind) string {
	for _, r := range f.Ranges {
		if r.Kind == kind {
			return r.ID
		}
	}
	return ""
}

// SameSignature reports whether two fields declare an identical type
// signature: ranges, referenceability and value constraint.
func (f *Field) SameSignature(other *Field) bool {
	if len(f.Ranges) != len(other.Ranges) {
		return false
	}
	for i := range f.Ranges {
		if f.Ranges[i] != other.Ranges[i] {
			return false
		}
	}
	return f.AllowReferencing == other.AllowReferencing &&
		f.ValueConstraint == other.ValueConstraint
}

// DescriptionSection is one titled section of a model description.
type DescriptionSection struct {
	Title      string   `json:"title,omitempty" yaml:"title"`
	Paragraphs []string `json:"paragraphs,omitempty" yaml:"paragraphs"`
}

// Model is one class of the merged vocabulary.
type Model struct {
	// Type is the canonical identifier, e.g. "Event" or "schema:Place"
	Type string `json:"type"`
	// Extension is the originating extension prefix, empty for the base vocabulary
	Extension string `json:"extension,omitempty"`

	// RawSubClasses are the declared parent identifiers as found in the source
	RawSubClasses []string `json:"rawSubClasses,omitempty"`
	// SubClassesOf are RawSubClasses normalized against the merged model map
	SubClassesOf []string `json:"subClassesOf,omitempty"`
	// SubClassOf is the canonical parent
	SubClassOf string `json:"subClassOf,omitempty"`
	// DerivedFrom names a foundational class this model is based on
	DerivedFrom string `json:"derivedFrom,omitempty"`
	// Tree lists every ancestor chain, each starting with this model
	Tree [][]string `json:"tree,omitempty"`
	// SuperClassOf lists models whose canonical parent is this model
	SuperClassOf []string `json:"superClassOf,omitempty"`

	NotInSpec       []string          `json:"notInSpec,omitempty"`
	Fields          map[string]*Field `json:"fields,omitempty"`
	ExtensionFields []string          `json:"extensionFields,omitempty"`

	HasID       bool                 `json:"hasId,omitempty"`
	IDFormat    string               `json:"idFormat,omitempty"`
	SampleID    string               `json:"sampleId,omitempty"`
	Description []DescriptionSection `json:"description,omitempty"`
}

// EnumType is one enumeration of the merged vocabulary.
type EnumType struct {
	ID              string   `json:"id"`
	Label           string   `json:"label,omitempty"`
	Namespace       string   `json:"namespace,omitempty"`
	Comment         string   `json:"comment,omitempty"`
	Values          []string `json:"values"`
	FQValues        []string `json:"fqValues,omitempty"`
	ExtensionPrefix string   `json:"extensionPrefix,omitempty"`
	IsSchemaPending bool     `json:"isSchemaPending,omitempty"`
}

// Extension describes one extension vocabulary.
type Extension struct {
	Prefix       string
	URL          string
	Heading      string
	Description  string
	PreferNative bool
	// Requires is a semver constraint on the base vocabulary version
	Requires string

	PropertyWarning string
	ClassWarning    string
	EnumWarning     string

	// Document is set once the extension has been fetched
	Document *Document
	// Graph holds the document's nodes compacted against the merged namespaces
	Graph []Node
}

// Options configure vocabulary-wide conventions.
type Options struct {
	// CorePrefix is the prefix of the core vocabulary, e.g. "oa"
	CorePrefix string
	// FoundationalPrefix is the prefix of the foundational vocabulary, e.g. "schema"
	FoundationalPrefix string
	// PendingPrefix is normalized to FoundationalPrefix in property domains
	PendingPrefix string
	// EnumerationMarker is the parent that makes a class an enumeration
	EnumerationMarker string
	// NonSemanticPrefixes are ancestor namespaces dropped from inheritance trees
	NonSemanticPrefixes []string
}

// DefaultOptions returns the conventions of the OpenActive vocabulary.
func DefaultOptions() Options {
	return Options{
		CorePrefix:          "oa",
		FoundationalPrefix:  "schema",
		PendingPrefix:       "pending",
		EnumerationMarker:   "schema:Enumeration",
		NonSemanticPrefixes: []string{"rdf", "rdfs", "skos"},
	}
}

// Context is the state of one generation run.
type Context struct {
	Namespaces *namespace.Table
	Models     map[string]*Model
	Enums      map[string]*EnumType
	Extensions map[string]*Extension
	// ExtensionOrder is the declaration order of Extensions
	ExtensionOrder []string
	// Version is the base vocabulary version, if known
	Version string
	Options Options

	log *zap.SugaredLogger
}

// NewContext creates a Context seeded with a base vocabulary.
// The base tables are copied so the Context can be mutated freely.
func NewContext(base *Base, opts Options, log *zap.SugaredLogger) *Context {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	ctx := &Context{
		Namespaces: namespace.New(opts.CorePrefix),
		Models:     make(map[string]*Model),
		Enums:      make(map[string]*EnumType),
		Extensions: make(map[string]*Extension),
		Options:    opts,
		log:        log,
	}
	if base == nil {
		return ctx
	}
	ctx.Version = base.Version
	ctx.Namespaces.Merge(base.Namespaces)
	for key, m := range base.Models {
		ctx.Models[key] = m.clone()
	}
	for key, e := range base.Enums {
		c := *e
		c.Values = append([]string(nil), e.Values...)
		c.FQValues = append([]string(nil), e.FQValues...)
		ctx.Enums[key] = &c
	}
	return ctx
}

// Logger returns the run's logger.
func (c *Context) Logger() *zap.SugaredLogger {
	return c.log
}

// AddExtension registers an extension, keeping declaration order.
func (c *Context) AddExtension(ext *Extension) {
	if _, exists := c.Extensions[ext.Prefix]; !exists {
		c.ExtensionOrder = append(c.ExtensionOrder, ext.Prefix)
	}
	c.Extensions[ext.Prefix] = ext
}

// GeneratesFoundational reports whether the foundational vocabulary itself is
// merged as an extension, so its models are materialized locally.
func (c *Context) GeneratesFoundational() bool {
	_, ok := c.Extensions[c.Options.FoundationalPrefix]
	return ok
}

// IsFoundational reports whether id lives in the foundational namespace.
func (c *Context) IsFoundational(id string) bool {
	return c.Namespaces.InNamespace(id, c.Options.FoundationalPrefix)
}

// Lookup returns the model stored under the compacted form of id.
func (c *Context) Lookup(id string) *Model {
	if id == "" {
		return nil
	}
	if m, ok := c.Models[id]; ok {
		return m
	}
	return c.Models[c.Namespaces.Compact(id)]
}

// Parent returns the canonical parent model of m, or nil.
func (c *Context) Parent(m *Model) *Model {
	return c.Lookup(m.SubClassOf)
}

// PreferNative reports whether the extension a record came from resolves
// identifiers by local name first.
func (c *Context) PreferNative(prefix string) bool {
	ext, ok := c.Extensions[prefix]
	return ok && ext.PreferNative
}

func (m *Model) clone() *Model {
	c := *m
	c.RawSubClasses = append([]string(nil), m.RawSubClasses...)
	c.NotInSpec = append([]string(nil), m.NotInSpec...)
	c.ExtensionFields = append([]string(nil), m.ExtensionFields...)
	c.Description = append([]DescriptionSection(nil), m.Description...)
	c.Fields = make(map[string]*Field, len(m.Fields))
	for name, f := range m.Fields {
		c.Fields[name] = f.Clone()
	}
	return &c
}
