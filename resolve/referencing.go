package resolve

import (
	"go.uber.org/zap"

	"github.com/openactive/models-lib/logger"
	"github.com/openactive/models-lib/vocab"
)

// RangeClassifier reports whether a range identifier of a field names a model
// (as opposed to a primitive or an enumeration).
type RangeClassifier interface {
	IsModelReference(f *vocab.Field, rangeID string) bool
}

// MarkImplicitReferencing marks fields of foundational models as referenceable
// when at least one allowed range is a model. The foundational vocabulary
// always permits a bare identifier in place of a nested object.
//
// This is a pipeline stage over the shared Context, run once after BuildTrees
// and before any Fields call. It returns the number of fields marked.
func MarkImplicitReferencing(ctx *vocab.Context, classifier RangeClassifier, log *zap.SugaredLogger) int {
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	marked := 0
	for _, key := range ctx.SortedModels() {
		m := ctx.Models[key]
		if !ctx.IsFoundational(m.Type) && m.Extension != ctx.Options.FoundationalPrefix {
			continue
		}
		for _, name := range sortedFieldNames(m) {
			f := m.Fields[name]
			if f.AllowReferencing {
				continue
			}
			for _, id := range f.RangeIDs() {
				if classifier.IsModelReference(f, id) {
					f.AllowReferencing = true
					marked++
					log.Debugw("Field implicitly referenceable",
						logger.FieldModel, m.Type,
						logger.FieldField, name,
						logger.FieldRange, id)
					break
				}
			}
		}
	}
	return marked
}
