package config

import (
	"slices"

	"github.com/Masterminds/semver/v3"

	"github.com/openactive/models-lib/errors"
	"github.com/openactive/models-lib/resolve"
)

// KnownTargets lists the target names generate.NewRenderer accepts.
var KnownTargets = []string{"typescript", "dotnet", "go"}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Vocabulary.Dir == "" {
		return errors.New("vocabulary.dir cannot be empty")
	}
	if c.Vocabulary.CorePrefix == "" {
		return errors.New("vocabulary.core_prefix cannot be empty")
	}
	if c.Vocabulary.FoundationalPrefix == "" {
		return errors.New("vocabulary.foundational_prefix cannot be empty")
	}

	// 0 = default, negative = invalid
	if c.Fetch.TimeoutSeconds < 0 {
		return errors.Newf("fetch.timeout_seconds must be >= 0, got %d", c.Fetch.TimeoutSeconds)
	}
	if c.Fetch.RequestsPerMinute < 0 {
		return errors.Newf("fetch.requests_per_minute must be >= 0, got %d", c.Fetch.RequestsPerMinute)
	}
	if c.Fetch.CacheSize < 0 {
		return errors.Newf("fetch.cache_size must be >= 0, got %d", c.Fetch.CacheSize)
	}
	for i, r := range c.Fetch.Rewrites {
		if r.From == "" {
			return errors.Newf("fetch.rewrites[%d].from cannot be empty", i)
		}
	}

	for _, target := range c.Output.Targets {
		if !slices.Contains(KnownTargets, target) {
			return errors.WithHintf(errors.Newf("output.targets: unknown target %q", target),
				"choose from %v", KnownTargets)
		}
	}

	for target, policy := range c.Output.Inheritance {
		if !slices.Contains(KnownTargets, target) {
			return errors.WithHintf(errors.Newf("output.inheritance: unknown target %q", target),
				"choose from %v", KnownTargets)
		}
		if _, err := resolve.ParsePolicy(policy); err != nil {
			return errors.Wrapf(err, "output.inheritance.%s", target)
		}
	}

	seen := make(map[string]bool, len(c.Extensions))
	for i, ext := range c.Extensions {
		if ext.Prefix == "" {
			return errors.Newf("extensions[%d].prefix cannot be empty", i)
		}
		if ext.URL == "" {
			return errors.Newf("extension %q: url cannot be empty", ext.Prefix)
		}
		if seen[ext.Prefix] {
			return errors.Newf("extension %q declared twice", ext.Prefix)
		}
		seen[ext.Prefix] = true
		if ext.Prefix == c.Vocabulary.FoundationalPrefix {
			return errors.WithHint(errors.Newf("extension %q shadows the foundational vocabulary", ext.Prefix),
				"set vocabulary.foundational_source instead")
		}
		if ext.Requires != "" {
			if _, err := semver.NewConstraint(ext.Requires); err != nil {
				return errors.Wrapf(err, "extension %q: invalid requires %q", ext.Prefix, ext.Requires)
			}
		}
	}

	return nil
}
