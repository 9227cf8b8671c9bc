package scene

import (
	"fmt"

	"github.com/chazu/brushcut/pkg/brush"
)

// MinimumVolume is the volume below which a brush is reported as a sliver.
const MinimumVolume = 1e-6

// ValidationSeverity indicates whether a validation finding blocks output
// or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks output
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	BrushID  BrushID            // which brush has the problem (zero if scene-level)
	Code     string             // mesh invariant code, if any
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	if e.BrushID.IsZero() {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] brush %s: %s", e.Severity, e.BrushID.Short(), e.Message)
}

// ValidationWarning describes a non-blocking advisory finding.
type ValidationWarning struct {
	BrushID BrushID
	Message string
}

// ValidationResult bundles errors (blocking) and warnings (advisory)
// from all validation tiers.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// OK reports whether there are no blocking errors.
func (r ValidationResult) OK() bool {
	return len(r.Errors) == 0
}

// Validate runs the structural checks on the scene and every brush mesh.
// An empty slice means the scene is valid. It never mutates the scene.
func Validate(s *Scene) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateIndex(s)...)
	errs = append(errs, validateMeshes(s)...)
	return errs
}

// ValidateAll runs all validation tiers (structural, geometric) and
// returns a ValidationResult with separated errors and warnings.
func ValidateAll(s *Scene) ValidationResult {
	var result ValidationResult
	for _, e := range Validate(s) {
		if e.Severity == SeverityWarning {
			result.Warnings = append(result.Warnings, ValidationWarning{BrushID: e.BrushID, Message: e.Message})
			continue
		}
		result.Errors = append(result.Errors, e)
	}
	result.Warnings = append(result.Warnings, validateGeometry(s)...)
	return result
}

// validateIndex checks that names, IDs and order agree.
func validateIndex(s *Scene) []ValidationError {
	var errs []ValidationError
	for name, id := range s.NameIndex {
		b, ok := s.Brushes[id]
		if !ok {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("name %q references missing brush %s", name, id.Short()),
				Severity: SeverityError,
			})
			continue
		}
		if b.Name != name {
			errs = append(errs, ValidationError{
				BrushID:  id,
				Message:  fmt.Sprintf("indexed as %q but named %q", name, b.Name),
				Severity: SeverityError,
			})
		}
	}
	if len(s.Order) != len(s.Brushes) {
		errs = append(errs, ValidationError{
			Message:  fmt.Sprintf("order lists %d brushes, scene has %d", len(s.Order), len(s.Brushes)),
			Severity: SeverityError,
		})
	}
	return errs
}

// validateMeshes reports every broken mesh invariant as an error.
func validateMeshes(s *Scene) []ValidationError {
	var errs []ValidationError
	for _, b := range s.All() {
		if b.Mesh == nil {
			errs = append(errs, ValidationError{
				BrushID:  b.ID,
				Message:  "brush has no mesh",
				Severity: SeverityError,
			})
			continue
		}
		for _, v := range b.Mesh.Validate() {
			errs = append(errs, ValidationError{
				BrushID:  b.ID,
				Code:     v.Code,
				Message:  v.Error(),
				Severity: SeverityError,
			})
		}
	}
	return errs
}

// validateGeometry returns advisory findings: brushes removed by their
// cuts, slivers and overlapping brushes.
func validateGeometry(s *Scene) []ValidationWarning {
	var warnings []ValidationWarning
	var worlds []*brush.Mesh
	var owners []*Brush
	for _, b := range s.All() {
		if b.Mesh == nil {
			continue
		}
		if b.Mesh.IsEmpty() {
			warnings = append(warnings, ValidationWarning{
				BrushID: b.ID,
				Message: fmt.Sprintf("brush %q was cut away entirely", b.Name),
			})
			continue
		}
		if v := b.Mesh.Volume(); v < MinimumVolume {
			warnings = append(warnings, ValidationWarning{
				BrushID: b.ID,
				Message: fmt.Sprintf("brush %q is a sliver (volume %g)", b.Name, v),
			})
		}
		worlds = append(worlds, b.World())
		owners = append(owners, b)
	}

	for i := range worlds {
		for j := i + 1; j < len(worlds); j++ {
			if !boundsOverlap(worlds[i], worlds[j]) {
				continue
			}
			common := worlds[i].Clone()
			var overlaps bool
			if err := brush.Guard(func() { overlaps = common.Intersect(worlds[j]) }); err != nil {
				warnings = append(warnings, ValidationWarning{
					BrushID: owners[j].ID,
					Message: fmt.Sprintf("overlap check of %q and %q failed: %v", owners[j].Name, owners[i].Name, err),
				})
				continue
			}
			if overlaps && common.Volume() > MinimumVolume {
				warnings = append(warnings, ValidationWarning{
					BrushID: owners[j].ID,
					Message: fmt.Sprintf("brush %q overlaps %q (volume %g)", owners[j].Name, owners[i].Name, common.Volume()),
				})
			}
		}
	}
	return warnings
}

func boundsOverlap(a, b *brush.Mesh) bool {
	ba, bb := a.Bounds(), b.Bounds()
	return ba.Min.X < bb.Max.X && bb.Min.X < ba.Max.X &&
		ba.Min.Y < bb.Max.Y && bb.Min.Y < ba.Max.Y &&
		ba.Min.Z < bb.Max.Z && bb.Min.Z < ba.Max.Z
}
