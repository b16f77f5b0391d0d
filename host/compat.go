package host

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/reglet-dev/reglet-numerics/exports"
)

// CheckABI reports whether the bridge ABI version satisfies constraint.
// An empty constraint accepts any version.
func CheckABI(constraint string) error {
	if constraint == "" {
		return nil
	}
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return fmt.Errorf("invalid ABI constraint %q: %w", constraint, err)
	}
	v, err := semver.NewVersion(exports.ABIVersion)
	if err != nil {
		return fmt.Errorf("invalid ABI version %q: %w", exports.ABIVersion, err)
	}
	if ok, errs := c.Validate(v); !ok {
		return fmt.Errorf("ABI %s does not satisfy %q: %v", v, constraint, errs)
	}
	return nil
}
