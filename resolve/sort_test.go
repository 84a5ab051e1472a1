package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openactive/models-lib/vocab"
)

func TestSort(t *testing.T) {
	tests := []struct {
		name   string
		fields []*vocab.Field
		want   []string
	}{
		{
			name: "well-known names first",
			fields: []*vocab.Field{
				{Name: "description"}, {Name: "activity"}, {Name: "name"}, {Name: "title"},
				{Name: "identifier"}, {Name: "id"}, {Name: "type"}, {Name: "@context"},
			},
			want: []string{"@context", "type", "id", "identifier", "title", "name", "description", "activity"},
		},
		{
			name:   "endDate follows startDate",
			fields: []*vocab.Field{{Name: "endDate"}, {Name: "startTime"}, {Name: "startDate"}, {Name: "duration"}},
			want:   []string{"duration", "startDate", "endDate", "startTime"},
		},
		{
			name: "extension fields after core",
			fields: []*vocab.Field{
				{Name: "aardvark", ExtensionPrefix: "beta"}, {Name: "zebra"}, {Name: "Middle"},
			},
			want: []string{"Middle", "zebra", "aardvark"},
		},
		{
			name:   "case-insensitive with stable tie-break",
			fields: []*vocab.Field{{Name: "beta"}, {Name: "Alpha"}, {Name: "alpha"}},
			want:   []string{"Alpha", "alpha", "beta"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Sort(tt.fields)
			assert.Equal(t, tt.want, fieldNames(tt.fields))
		})
	}
}

func TestAssignOrder(t *testing.T) {
	fields := []*vocab.Field{{Name: "name"}, {Name: "duration"}, {Name: "isVirtual", ExtensionPrefix: "beta"}}
	AssignOrder(fields)

	assert.Equal(t, 6, fields[0].Order)
	assert.Equal(t, 7, fields[1].Order)
	assert.Equal(t, 8+ExtensionOrderOffset, fields[2].Order)
}
