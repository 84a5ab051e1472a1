package vocab

import (
	"github.com/Masterminds/semver/v3"

	"github.com/openactive/models-lib/errors"
	"github.com/openactive/models-lib/logger"
)

// checkRequires verifies an extension's version constraint against the base
// vocabulary version. Extensions without a constraint, or a base without a
// version, always pass.
func (c *Context) checkRequires(ext *Extension) error {
	if ext.Requires == "" {
		return nil
	}
	if c.Version == "" {
		c.log.Debugw("Base vocabulary has no version, skipping constraint",
			logger.FieldExtension, ext.Prefix)
		return nil
	}

	constraint, err := semver.NewConstraint(ext.Requires)
	if err != nil {
		return errors.Wrapf(err, "extension %q has invalid requires constraint %q", ext.Prefix, ext.Requires)
	}
	version, err := semver.NewVersion(c.Version)
	if err != nil {
		return errors.Wrapf(err, "base vocabulary has invalid version %q", c.Version)
	}

	if !constraint.Check(version) {
		return errors.WithHintf(
			errors.Wrapf(errors.ErrIncompatibleVersion,
				"extension %q requires %s, base vocabulary is %s", ext.Prefix, ext.Requires, c.Version),
			"update the base vocabulary or relax the extension's requires constraint")
	}
	return nil
}
