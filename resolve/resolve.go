// Package resolve computes each model's effective field list: inherited
// fields, disinherited fields, override detection and display order.
//
// Resolution never mutates the shared vocab.Context. Every returned field is a
// copy, so the same Context can be resolved under several policies.
package resolve

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/openactive/models-lib/errors"
	"github.com/openactive/models-lib/logger"
	"github.com/openactive/models-lib/namespace"
	"github.com/openactive/models-lib/vocab"
)

// Policy selects how a model inherits its ancestors' fields.
type Policy int

const (
	// Disinherit keeps a model's own fields and re-adds parent fields named in
	// notInSpec, flagged Disinherit. For targets with native inheritance.
	Disinherit Policy = iota
	// FullInheritance flattens every ancestor's fields into the model.
	FullInheritance
)

// String returns the policy name used in configuration.
func (p Policy) String() string {
	switch p {
	case Disinherit:
		return "disinherit"
	case FullInheritance:
		return "full"
	default:
		return "unknown"
	}
}

// ParsePolicy parses a policy name.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(s) {
	case "disinherit", "":
		return Disinherit, nil
	case "full", "full-inheritance":
		return FullInheritance, nil
	}
	return Disinherit, errors.Newf("unknown inheritance policy %q", s)
}

// IDFieldName is the synthetic identifier field added under FullInheritance.
const IDFieldName = "@id"

// defaultIDType is the identifier type when no model declares an idFormat.
const defaultIDType = "https://schema.org/URL"

// Resolver resolves model fields under one policy.
type Resolver struct {
	ctx    *vocab.Context
	policy Policy
	log    *zap.SugaredLogger
}

// New creates a Resolver over a merged Context whose trees are built.
func New(ctx *vocab.Context, policy Policy, log *zap.SugaredLogger) *Resolver {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Resolver{ctx: ctx, policy: policy, log: log}
}

// Policy returns the resolver's inheritance policy.
func (r *Resolver) Policy() Policy {
	return r.policy
}

// Fields returns the model's effective fields, flagged and ordered.
func (r *Resolver) Fields(m *vocab.Model) ([]*vocab.Field, error) {
	var (
		fields map[string]*vocab.Field
		err    error
	)
	switch r.policy {
	case FullInheritance:
		fields = r.inheritAll(m)
	default:
		fields, err = r.disinherit(m)
		if err != nil {
			return nil, err
		}
	}

	r.markFlags(m, fields)

	list := make([]*vocab.Field, 0, len(fields))
	for _, f := range fields {
		list = append(list, f)
	}
	Sort(list)
	AssignOrder(list)

	r.log.Debugw("Resolved fields",
		logger.FieldModel, m.Type,
		logger.FieldCount, len(list))
	return list, nil
}

// disinherit copies the model's own fields and, for each notInSpec name,
// re-adds the canonical parent's field flagged Disinherit.
func (r *Resolver) disinherit(m *vocab.Model) (map[string]*vocab.Field, error) {
	fields := make(map[string]*vocab.Field, len(m.Fields)+len(m.NotInSpec))
	for name, f := range m.Fields {
		fields[name] = f.Clone()
	}

	parent := r.ctx.Parent(m)
	typeName := namespace.LocalName(m.Type)
	for _, name := range m.NotInSpec {
		var inherited *vocab.Field
		if parent != nil {
			inherited = parent.Fields[name]
		}
		if inherited == nil {
			return nil, errors.WithHint(
				errors.Wrapf(errors.ErrNotInSpec, "field %q on model %q (parent %q)", name, m.Type, m.SubClassOf),
				"remove the name from notInSpec or declare it on the parent model")
		}
		// A model cannot carry a property named after its own type.
		if strings.EqualFold(typeName, name) {
			continue
		}
		c := inherited.Clone()
		c.Disinherit = true
		fields[name] = c
	}
	return fields, nil
}

// inheritAll merges fields up the canonical parent chain, falling back to the
// foundational class a model derives from. Fields excluded by any descendant's
// notInSpec are not inherited.
func (r *Resolver) inheritAll(m *vocab.Model) map[string]*vocab.Field {
	fields := make(map[string]*vocab.Field)
	visited := make(map[*vocab.Model]bool)
	var excluded []string
	var idSource *vocab.Model

	for current := m; current != nil && !visited[current]; {
		visited[current] = true

		for _, name := range sortedFieldNames(current) {
			if _, ok := fields[name]; ok || contains(excluded, name) {
				continue
			}
			fields[name] = current.Fields[name].Clone()
		}
		if idSource == nil && current.HasID {
			idSource = current
		}
		excluded = append(excluded, current.NotInSpec...)

		next := r.ctx.Parent(current)
		if next == nil && current.DerivedFrom != "" && r.ctx.IsFoundational(current.DerivedFrom) {
			next = r.ctx.Lookup(current.DerivedFrom)
		}
		if next != nil && visited[next] {
			r.log.Debugw("Ancestor already visited",
				logger.FieldModel, m.Type,
				logger.FieldParent, next.Type)
		}
		current = next
	}

	if _, ok := fields[IDFieldName]; !ok {
		fields[IDFieldName] = idField(idSource)
	}
	return fields
}

func idField(source *vocab.Model) *vocab.Field {
	f := &vocab.Field{
		Name:        IDFieldName,
		MemberName:  IDFieldName,
		Ranges:      []vocab.RangeRef{{Kind: vocab.RangeRequiredType, ID: defaultIDType}},
		Description: []string{"A unique url based identifier for the record"},
	}
	if source == nil {
		return f
	}
	if source.IDFormat != "" {
		f.Ranges[0].ID = source.IDFormat
	}
	if source.SampleID != "" {
		f.Example = source.SampleID + "12345"
	}
	return f
}

// markFlags sets DerivedFromSchema and Override on every resolved field.
func (r *Resolver) markFlags(m *vocab.Model, fields map[string]*vocab.Field) {
	parent := r.ctx.Parent(m)
	modelDerived := m.DerivedFrom != "" && r.ctx.IsFoundational(m.DerivedFrom)

	for name, f := range fields {
		if f.SameAs != "" {
			f.DerivedFromSchema = r.ctx.IsFoundational(f.SameAs)
		} else {
			f.DerivedFromSchema = modelDerived
		}

		if parent == nil {
			continue
		}
		// Only a redeclaration can override; plain inherited copies cannot.
		if _, own := m.Fields[name]; !own && !f.Disinherit {
			continue
		}
		if inherited, ok := parent.Fields[name]; ok && inherited.SameSignature(f) {
			f.Override = true
		}
	}
}

func sortedFieldNames(m *vocab.Model) []string {
	names := make([]string, 0, len(m.Fields))
	for name := range m.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
