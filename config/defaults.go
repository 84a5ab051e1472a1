package config

import (
	"github.com/spf13/viper"

	"github.com/openactive/models-lib/fetch"
)

// Default values
const (
	DefaultFileName   = "modelgen.toml"
	DefaultOutputDir  = "generated"
	DefaultVocabDir   = "data-models"
	DefaultFoundation = "https://schema.org/version/latest/schemaorg-current-https.jsonld"

	DefaultDirPermissions = 0750
)

const betaDescription = "These properties are defined in the [OpenActive Beta Extension](https://openactive.io/ns-beta). " +
	"The OpenActive Beta Extension is defined as a convenience to help document properties that are in active testing " +
	"and review by the community. Publishers should not assume that properties in the beta namespace will either be " +
	"added to the core specification or be included in the namespace over the long term."

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// Vocabulary conventions of the OpenActive data models
	v.SetDefault("vocabulary.dir", DefaultVocabDir)
	v.SetDefault("vocabulary.core_prefix", "oa")
	v.SetDefault("vocabulary.foundational_prefix", "schema")
	v.SetDefault("vocabulary.pending_prefix", "pending")
	v.SetDefault("vocabulary.enumeration_marker", "schema:Enumeration")
	v.SetDefault("vocabulary.non_semantic_prefixes", []string{"rdf", "rdfs", "skos"})
	v.SetDefault("vocabulary.foundational_source", DefaultFoundation)

	// Fetch defaults
	v.SetDefault("fetch.timeout_seconds", int(fetch.DefaultTimeout.Seconds()))
	v.SetDefault("fetch.requests_per_minute", fetch.DefaultRequestsPerMinute)
	v.SetDefault("fetch.cache_size", fetch.DefaultCacheSize)
	v.SetDefault("fetch.allow_private", false)
	rewrites := make([]map[string]any, 0, 2)
	for _, r := range fetch.DefaultRewrites() {
		rewrites = append(rewrites, map[string]any{"from": r.From, "to": r.To})
	}
	v.SetDefault("fetch.rewrites", rewrites)

	// Output defaults
	v.SetDefault("output.dir", DefaultOutputDir)
	v.SetDefault("output.targets", []string{"typescript", "dotnet", "go"})
	v.SetDefault("output.go_package", "models")
	v.SetDefault("output.stamp_version", true)

	v.SetDefault("extensions", []map[string]any{{
		"prefix":      "beta",
		"url":         "https://www.openactive.io/ns-beta/beta.jsonld",
		"heading":     "OpenActive Beta Extension properties",
		"description": betaDescription,
	}})
}
