package stitch

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/Masterminds/semver/v3"
	"github.com/yaklabco/stitch/internal/log"
)

// ErrVersionMismatch is returned when the running stitch does not satisfy
// the project's stitchVersion constraint.
var ErrVersionMismatch = errors.New("stitch version does not satisfy the project constraint")

// checkVersion enforces a project's stitchVersion constraint. Development
// builds, whose version is not a semantic version, are not checked.
func checkVersion(constraint, current string) error {
	if constraint == "" {
		return nil
	}
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return fmt.Errorf("invalid stitchVersion constraint %q: %w", constraint, err)
	}

	v, err := semver.NewVersion(current)
	if err != nil {
		slog.Debug("skipping stitchVersion check for development build",
			slog.String(log.Expected, constraint), slog.String(log.Version, current))
		return nil
	}
	if !c.Check(v) {
		return fmt.Errorf("%w: running %s, project requires %s", ErrVersionMismatch, v, constraint)
	}
	return nil
}
