package pluto

import "errors"

// Error values returned by the package. All errors surfaced to callers wrap
// one of these sentinels, so they can be classified with errors.Is.
var (
	// ErrFormat reports a malformed grid file, manifest, or VTK header.
	// A parse that fails with ErrFormat never partially populates its target.
	ErrFormat = errors.New("malformed file")

	// ErrUnsupportedCoordinateSystem reports a coordinate-system name outside
	// the supported set (cartesian, polar, cylindrical, spherical).
	ErrUnsupportedCoordinateSystem = errors.New("unsupported coordinate system")

	// ErrIndexOutOfRange reports a frame or axis index outside valid bounds,
	// including negative indices that stay negative after resolution.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrUnknownVariable reports a variable name that is not present in the
	// run's variable list after alias resolution.
	ErrUnknownVariable = errors.New("unknown variable")

	// ErrMissingDataDirectory reports that no candidate data directory
	// contained a grid file.
	ErrMissingDataDirectory = errors.New("data directory with grid file not found")

	// ErrUnsupportedLayout reports a requested on-disk format with no
	// manifest file or no decoder.
	ErrUnsupportedLayout = errors.New("unsupported output layout")

	// ErrNotImplemented reports a mesh or projection combination that is
	// deliberately outside the supported scope.
	ErrNotImplemented = errors.New("not implemented")
)
