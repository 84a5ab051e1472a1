package vocab

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/openactive/models-lib/errors"
)

// Base is the already-parsed base vocabulary: models keyed by identifier,
// enums keyed by label, and the namespace prefix table.
type Base struct {
	Models     map[string]*Model
	Enums      map[string]*EnumType
	Namespaces map[string]string
	Version    string
}

// metadataRecord is the on-disk shape of metadata.{json,yaml}.
type metadataRecord struct {
	Version    string            `json:"version" yaml:"version"`
	Namespaces map[string]string `json:"namespaces" yaml:"namespaces"`
}

// fieldRecord is the on-disk shape of a base model field, with its allowed
// types split over four optional slots.
type fieldRecord struct {
	FieldName         string   `json:"fieldName" yaml:"fieldName"`
	MemberName        string   `json:"memberName" yaml:"memberName"`
	SameAs            string   `json:"sameAs" yaml:"sameAs"`
	Model             string   `json:"model" yaml:"model"`
	AlternativeModels []string `json:"alternativeModels" yaml:"alternativeModels"`
	RequiredType      string   `json:"requiredType" yaml:"requiredType"`
	AlternativeTypes  []string `json:"alternativeTypes" yaml:"alternativeTypes"`
	Description       []string `json:"description" yaml:"description"`
	Example           any      `json:"example" yaml:"example"`
	RequiredContent   any      `json:"requiredContent" yaml:"requiredContent"`
	DefaultContent    any      `json:"defaultContent" yaml:"defaultContent"`
	ValueConstraint   string   `json:"valueConstraint" yaml:"valueConstraint"`
	AllowReferencing  bool     `json:"allowReferencing" yaml:"allowReferencing"`
}

// descriptionRecord holds the titled sections of a model description.
type descriptionRecord struct {
	Sections []DescriptionSection `json:"sections" yaml:"sections"`
}

type modelRecord struct {
	Type        string                 `json:"type" yaml:"type"`
	SubClassOf  string                 `json:"subClassOf" yaml:"subClassOf"`
	DerivedFrom string                 `json:"derivedFrom" yaml:"derivedFrom"`
	HasID       bool                   `json:"hasId" yaml:"hasId"`
	IDFormat    string                 `json:"idFormat" yaml:"idFormat"`
	SampleID    string                 `json:"sampleId" yaml:"sampleId"`
	NotInSpec   []string               `json:"notInSpec" yaml:"notInSpec"`
	Description descriptionRecord      `json:"description" yaml:"description"`
	Fields      map[string]fieldRecord `json:"fields" yaml:"fields"`
}

type enumRecord struct {
	Label           string   `json:"label" yaml:"label"`
	Namespace       string   `json:"namespace" yaml:"namespace"`
	Comment         string   `json:"comment" yaml:"comment"`
	Values          []string `json:"values" yaml:"values"`
	ExtensionPrefix string   `json:"extensionPrefix" yaml:"extensionPrefix"`
	IsSchemaPending bool     `json:"isSchemaPending" yaml:"isSchemaPending"`
}

// toField converts the four-slot record into a Field whose ranges follow the
// union order alternativeTypes, requiredType, alternativeModels, model.
func (r fieldRecord) toField(name string) *Field {
	f := &Field{
		Name:             name,
		MemberName:       r.MemberName,
		SameAs:           r.SameAs,
		Description:      r.Description,
		Example:          r.Example,
		RequiredContent:  r.RequiredContent,
		DefaultContent:   r.DefaultContent,
		ValueConstraint:  r.ValueConstraint,
		AllowReferencing: r.AllowReferencing,
	}
	if r.FieldName != "" {
		f.Name = r.FieldName
	}
	for _, id := range r.AlternativeTypes {
		f.Ranges = append(f.Ranges, RangeRef{Kind: RangeAlternativeType, ID: id})
	}
	if r.RequiredType != "" {
		f.Ranges = append(f.Ranges, RangeRef{Kind: RangeRequiredType, ID: r.RequiredType})
	}
	for _, id := range r.AlternativeModels {
		f.Ranges = append(f.Ranges, RangeRef{Kind: RangeAlternativeModel, ID: id})
	}
	if r.Model != "" {
		f.Ranges = append(f.Ranges, RangeRef{Kind: RangeModel, ID: r.Model})
	}
	return f
}

func (r modelRecord) toModel(key string) *Model {
	m := &Model{
		Type:        r.Type,
		SubClassOf:  r.SubClassOf,
		DerivedFrom: r.DerivedFrom,
		HasID:       r.HasID,
		IDFormat:    r.IDFormat,
		SampleID:    r.SampleID,
		NotInSpec:   r.NotInSpec,
		Description: r.Description.Sections,
		Fields:      make(map[string]*Field, len(r.Fields)),
	}
	if m.Type == "" {
		m.Type = key
	}
	// A declared parent is treated like an extension's raw parent so base
	// models get inheritance trees too.
	if r.SubClassOf != "" {
		m.RawSubClasses = []string{r.SubClassOf}
	}
	for name, fr := range r.Fields {
		f := fr.toField(name)
		m.Fields[f.Name] = f
	}
	return m
}

// LoadBase reads a base vocabulary directory:
//
//	metadata.json|yaml   version and namespaces
//	models/*.json|yaml   one model per file, keyed by its type
//	enums/*.json|yaml    one enum per file, keyed by label (file name)
func LoadBase(dir string) (*Base, error) {
	base := &Base{
		Models:     make(map[string]*Model),
		Enums:      make(map[string]*EnumType),
		Namespaces: make(map[string]string),
	}

	metaPath, err := findTable(dir, "metadata")
	if err != nil {
		return nil, err
	}
	var meta metadataRecord
	if err := decodeFile(metaPath, &meta); err != nil {
		return nil, err
	}
	base.Version = meta.Version
	for prefix, iri := range meta.Namespaces {
		base.Namespaces[prefix] = iri
	}

	modelFiles, err := tableFiles(filepath.Join(dir, "models"))
	if err != nil {
		return nil, err
	}
	for _, path := range modelFiles {
		var rec modelRecord
		if err := decodeFile(path, &rec); err != nil {
			return nil, err
		}
		m := rec.toModel(stem(path))
		base.Models[m.Type] = m
	}

	enumFiles, err := tableFiles(filepath.Join(dir, "enums"))
	if err != nil {
		return nil, err
	}
	for _, path := range enumFiles {
		var rec enumRecord
		if err := decodeFile(path, &rec); err != nil {
			return nil, err
		}
		label := rec.Label
		if label == "" {
			label = stem(path)
		}
		base.Enums[label] = &EnumType{
			ID:              label,
			Label:           label,
			Namespace:       rec.Namespace,
			Comment:         rec.Comment,
			Values:          rec.Values,
			ExtensionPrefix: rec.ExtensionPrefix,
			IsSchemaPending: rec.IsSchemaPending,
		}
	}

	return base, nil
}

func findTable(dir, name string) (string, error) {
	for _, ext := range []string{".json", ".yaml", ".yml"} {
		path := filepath.Join(dir, name+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", errors.WithHintf(
		errors.Newf("no %s file in %s", name, dir),
		"expected %s.json or %s.yaml", name, name)
}

// tableFiles lists decodable files in dir, sorted. A missing dir is empty.
func tableFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", dir)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".json", ".yaml", ".yml":
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

func decodeFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "failed to read %s", path)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, v)
	default:
		err = json.Unmarshal(data, v)
	}
	if err != nil {
		return errors.Wrapf(err, "failed to decode %s", path)
	}
	return nil
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
