// Package compat checks the live server version against the oldest release
// the migration engine supports.
package compat

import (
	"fmt"

	"github.com/hashicorp/go-version"
)

// MinimumServerVersion is the oldest ArangoDB release fully supported.
const MinimumServerVersion = "3.6.0"

var minimum = version.Must(version.NewVersion(MinimumServerVersion))

// Result is the outcome of a compatibility check.
type Result struct {
	Server    *version.Version
	Supported bool
}

// Warning returns the message shown for an unsupported server, or "".
func (r Result) Warning() string {
	if r.Supported {
		return ""
	}
	return fmt.Sprintf("server version %s is older than %s, some operations may fail", r.Server, MinimumServerVersion)
}

// Check parses the version reported by the server and compares it with
// MinimumServerVersion. Non-ArangoDB backends report no version and are
// always supported.
func Check(serverVersion string) (Result, error) {
	if serverVersion == "" {
		return Result{Supported: true}, nil
	}
	v, err := version.NewVersion(serverVersion)
	if err != nil {
		return Result{}, fmt.Errorf("invalid server version %q: %w", serverVersion, err)
	}
	// pre-releases of a supported release are accepted
	return Result{Server: v, Supported: !v.Core().LessThan(minimum)}, nil
}
