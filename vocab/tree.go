package vocab

import (
	"sort"
	"strings"

	"github.com/openactive/models-lib/logger"
	"github.com/openactive/models-lib/namespace"
)

// BuildTrees computes every model's ancestor chains, picks its canonical
// parent and fills the inverse SuperClassOf relation. Run after Merge.
func (c *Context) BuildTrees() {
	keys := c.modelKeys()

	for _, key := range keys {
		c.Models[key].Tree = c.ModelTree(key)
	}

	for _, key := range keys {
		c.pickParent(c.Models[key])
	}

	for _, key := range keys {
		c.Models[key].SuperClassOf = nil
	}
	for _, key := range keys {
		m := c.Models[key]
		if m.SubClassOf == "" {
			continue
		}
		parent := c.Parent(m)
		if parent == nil || parent == m {
			continue
		}
		parent.SuperClassOf = append(parent.SuperClassOf, key)
	}
	for _, key := range keys {
		sort.Strings(c.Models[key].SuperClassOf)
	}
}

// ModelTree lists every inheritance route from name to a root, each chain
// starting with name itself:
//
//	ModelTree("schema:PaymentCard")
//	[[schema:PaymentCard schema:PaymentMethod schema:Enumeration schema:Intangible schema:Thing]
//	 [schema:PaymentCard schema:FinancialProduct schema:Service schema:Intangible schema:Thing]]
func (c *Context) ModelTree(name string) [][]string {
	var tree [][]string
	c.walkTree(name, nil, &tree)
	return tree
}

func (c *Context) walkTree(name string, path []string, tree *[][]string) {
	name = c.Namespaces.Compact(name)

	for _, seen := range path {
		if seen == name {
			c.log.Warnw("Inheritance cycle, terminating chain",
				logger.FieldModel, path[0],
				logger.FieldParent, name)
			*tree = append(*tree, path)
			return
		}
	}

	var parents []string
	if m, ok := c.Models[name]; ok {
		parents = m.SubClassesOf
		if len(parents) == 0 && m.DerivedFrom != "" && c.IsFoundational(m.DerivedFrom) {
			parents = []string{m.DerivedFrom}
		}
		parents = c.filterNonSemantic(path, name, parents)
	} else if _, ok := c.Enums[name]; ok {
		parents = []string{c.Options.EnumerationMarker}
	}

	next := make([]string, len(path)+1)
	copy(next, path)
	next[len(path)] = name

	if len(parents) == 0 {
		*tree = append(*tree, next)
		return
	}
	for _, parent := range parents {
		c.walkTree(parent, next, tree)
	}
}

// filterNonSemantic drops parents in generic resource, class and taxonomy
// namespaces (rdf, rdfs, skos), which carry no fields.
func (c *Context) filterNonSemantic(path []string, name string, parents []string) []string {
	out := make([]string, 0, len(parents))
	for _, parent := range parents {
		prefix := c.Namespaces.Namespace(parent)
		if containsString(c.Options.NonSemanticPrefixes, prefix) {
			start := name
			if len(path) > 0 {
				start = path[0]
			}
			c.log.Debugw("Filtered non-semantic ancestor",
				logger.FieldModel, start,
				logger.FieldParent, parent,
				logger.FieldPrefix, prefix)
			continue
		}
		out = append(out, parent)
	}
	return out
}

// pickParent sets the canonical parent: the second element of the first chain
// that does not pass through the enumeration marker. When the foundational
// vocabulary is materialized, chains whose parent is not a local model are
// skipped too. Models without normalized parents keep their declared parent.
func (c *Context) pickParent(m *Model) {
	if len(m.SubClassesOf) == 0 {
		return
	}

	for _, chain := range m.Tree {
		if len(chain) < 2 || containsString(chain, c.Options.EnumerationMarker) {
			continue
		}
		if c.GeneratesFoundational() && c.Lookup(chain[1]) == nil {
			c.log.Debugw("Skipping chain through unmaterialized parent",
				logger.FieldModel, m.Type,
				logger.FieldParent, chain[1])
			continue
		}

		parent := chain[1]
		if !strings.Contains(parent, ":") {
			parent = "#" + parent
		}
		m.SubClassOf = parent
		return
	}
}

// SortedModels returns model keys ordered by inheritance depth, then local
// name, so parents are emitted before their children.
func (c *Context) SortedModels() []string {
	keys := make([]string, 0, len(c.Models))
	depth := make(map[string]int, len(c.Models))
	for key := range c.Models {
		if key == "" {
			continue
		}
		keys = append(keys, key)
		depth[key] = len(c.modelChain(key, map[string]bool{}))
	}

	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if depth[a] != depth[b] {
			return depth[a] < depth[b]
		}
		la, lb := namespace.LocalName(a), namespace.LocalName(b)
		if la != lb {
			return la < lb
		}
		return a < b
	})
	return keys
}

// modelChain follows canonical parents (or the derived-from class) up to the
// first unknown entity.
func (c *Context) modelChain(name string, seen map[string]bool) []string {
	if seen[name] {
		return nil
	}
	seen[name] = true

	var parentName string
	if m, ok := c.Models[name]; ok {
		parentName = m.SubClassOf
		if parentName == "" {
			parentName = m.DerivedFrom
		}
	} else if _, ok := c.Enums[name]; !ok {
		return nil
	}

	if parentName = c.Namespaces.Compact(parentName); parentName != "" {
		if parent := c.modelChain(parentName, seen); parent != nil {
			return append(parent, name)
		}
	}
	return []string{name}
}
