package version

import (
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/rxtech-lab/argo-replay/pkg/errors"
)

// CheckConstraint verifies that engineVersion satisfies constraint, a semver
// range such as "^0.4" or ">= 0.3, < 1.0" taken from a backtest config.
//
// An empty constraint and the "main" development build always pass.
func CheckConstraint(engineVersion, constraint string) error {
	constraint = strings.TrimSpace(constraint)
	if constraint == "" {
		return nil
	}

	engineVersion = strings.TrimPrefix(engineVersion, "v")
	if engineVersion == "main" {
		return nil
	}

	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidVersion, err, "invalid engine version constraint %q", constraint)
	}

	v, err := semver.NewVersion(engineVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidVersion, err, "invalid engine version %q", engineVersion)
	}

	if ok, reasons := c.Validate(v); !ok {
		msg := make([]string, 0, len(reasons))
		for _, r := range reasons {
			msg = append(msg, r.Error())
		}

		return errors.Newf(errors.ErrCodeVersionMismatch, "engine %s does not satisfy %q: %s",
			v.String(), constraint, strings.Join(msg, "; "))
	}

	return nil
}
