// Package config loads modelgen settings from TOML files and the environment.
//
// Precedence (lowest to highest): defaults < user (~/.modelgen/modelgen.toml)
// < project (modelgen.toml found by walking up from the working directory)
// < MODELGEN_* environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/openactive/models-lib/fetch"
	"github.com/openactive/models-lib/vocab"
)

// Config is the complete modelgen configuration.
type Config struct {
	Vocabulary VocabularyConfig  `mapstructure:"vocabulary" toml:"vocabulary"`
	Fetch      FetchConfig       `mapstructure:"fetch" toml:"fetch"`
	Output     OutputConfig      `mapstructure:"output" toml:"output"`
	Extensions []ExtensionConfig `mapstructure:"extensions" toml:"extensions"`
}

// VocabularyConfig locates the base vocabulary and names its conventions.
type VocabularyConfig struct {
	Dir                 string   `mapstructure:"dir" toml:"dir"` // directory holding metadata, models and enums
	CorePrefix          string   `mapstructure:"core_prefix" toml:"core_prefix"`
	FoundationalPrefix  string   `mapstructure:"foundational_prefix" toml:"foundational_prefix"`
	PendingPrefix       string   `mapstructure:"pending_prefix" toml:"pending_prefix"`
	EnumerationMarker   string   `mapstructure:"enumeration_marker" toml:"enumeration_marker"`
	NonSemanticPrefixes []string `mapstructure:"non_semantic_prefixes" toml:"non_semantic_prefixes"`

	// FoundationalSource is merged as an extension for targets that generate
	// the foundational vocabulary themselves
	FoundationalSource string `mapstructure:"foundational_source" toml:"foundational_source"`
}

// FetchConfig configures extension downloads.
type FetchConfig struct {
	TimeoutSeconds    int             `mapstructure:"timeout_seconds" toml:"timeout_seconds"`
	RequestsPerMinute int             `mapstructure:"requests_per_minute" toml:"requests_per_minute"`
	CacheSize         int             `mapstructure:"cache_size" toml:"cache_size"`
	AllowPrivate      bool            `mapstructure:"allow_private" toml:"allow_private"` // permit loopback and private hosts
	Rewrites          []fetch.Rewrite `mapstructure:"rewrites" toml:"rewrites"`
}

// OutputConfig selects targets and where they are written.
type OutputConfig struct {
	// Dir holds one subdirectory per target
	Dir       string   `mapstructure:"dir" toml:"dir"`
	Targets   []string `mapstructure:"targets" toml:"targets"`
	GoPackage string   `mapstructure:"go_package" toml:"go_package"`
	// StampVersion writes the git revision of the vocabulary directory into headers
	StampVersion bool `mapstructure:"stamp_version" toml:"stamp_version"`
	// Inheritance overrides a target's inheritance policy ("disinherit" or
	// "full"), keyed by target name
	Inheritance map[string]string `mapstructure:"inheritance" toml:"inheritance,omitempty"`
}

// ExtensionConfig declares one extension vocabulary.
type ExtensionConfig struct {
	Prefix          string `mapstructure:"prefix" toml:"prefix"`
	URL             string `mapstructure:"url" toml:"url"`
	Heading         string `mapstructure:"heading" toml:"heading,omitempty"`
	Description     string `mapstructure:"description" toml:"description,omitempty"`
	PreferNative    bool   `mapstructure:"prefer_native" toml:"prefer_native,omitempty"`
	Requires        string `mapstructure:"requires" toml:"requires,omitempty"` // semver constraint on the base version
	PropertyWarning string `mapstructure:"property_warning" toml:"property_warning,omitempty"`
	ClassWarning    string `mapstructure:"class_warning" toml:"class_warning,omitempty"`
	EnumWarning     string `mapstructure:"enum_warning" toml:"enum_warning,omitempty"`
}

// VocabOptions returns the vocabulary conventions.
func (c *Config) VocabOptions() vocab.Options {
	return vocab.Options{
		CorePrefix:          c.Vocabulary.CorePrefix,
		FoundationalPrefix:  c.Vocabulary.FoundationalPrefix,
		PendingPrefix:       c.Vocabulary.PendingPrefix,
		EnumerationMarker:   c.Vocabulary.EnumerationMarker,
		NonSemanticPrefixes: c.Vocabulary.NonSemanticPrefixes,
	}
}

// FetchOptions returns the fetcher settings. Relative file sources resolve
// against the vocabulary directory. The document cache holds at least every
// configured source, so each is downloaded once per run.
func (c *Config) FetchOptions() fetch.Options {
	cacheSize := c.Fetch.CacheSize
	if cacheSize <= 0 {
		cacheSize = fetch.DefaultCacheSize
	}
	return fetch.Options{
		Timeout:           time.Duration(c.Fetch.TimeoutSeconds) * time.Second,
		RequestsPerMinute: c.Fetch.RequestsPerMinute,
		CacheSize:         max(cacheSize, c.sourceCount()),
		AllowPrivate:      c.Fetch.AllowPrivate,
		Rewrites:          c.Fetch.Rewrites,
		Dir:               c.Vocabulary.Dir,
	}
}

// sourceCount is the number of documents a run may fetch.
func (c *Config) sourceCount() int {
	n := len(c.Extensions)
	if c.Vocabulary.FoundationalSource != "" {
		n++
	}
	return n
}

// NewExtensions returns fresh extension records in declaration order.
// Every generation run needs its own, as merging attaches documents to them.
func (c *Config) NewExtensions() []*vocab.Extension {
	out := make([]*vocab.Extension, 0, len(c.Extensions))
	for _, e := range c.Extensions {
		out = append(out, &vocab.Extension{
			Prefix:          e.Prefix,
			URL:             e.URL,
			Heading:         e.Heading,
			Description:     e.Description,
			PreferNative:    e.PreferNative,
			Requires:        e.Requires,
			PropertyWarning: e.PropertyWarning,
			ClassWarning:    e.ClassWarning,
			EnumWarning:     e.EnumWarning,
		})
	}
	return out
}

// FoundationalExtension returns the foundational vocabulary as an extension,
// or nil when no source is configured.
func (c *Config) FoundationalExtension() *vocab.Extension {
	if c.Vocabulary.FoundationalSource == "" {
		return nil
	}
	return &vocab.Extension{
		Prefix: c.Vocabulary.FoundationalPrefix,
		URL:    c.Vocabulary.FoundationalSource,
	}
}

// String returns a short summary of the config
func (c *Config) String() string {
	return fmt.Sprintf("Config{Vocabulary: %s, Output: %s %v, Extensions: %d}",
		c.Vocabulary.Dir, c.Output.Dir, c.Output.Targets, len(c.Extensions))
}
