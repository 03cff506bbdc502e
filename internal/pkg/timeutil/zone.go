package timeutil

import (
	"fmt"
	"time"

	// Embedded zoneinfo so the organizational zone resolves on slim container images.
	_ "time/tzdata"
)

// DefaultZone is the organizational time zone used when none is configured.
const DefaultZone = "Africa/Lagos"

// LoadZone resolves an IANA zone name. An empty name resolves DefaultZone.
func LoadZone(name string) (*time.Location, error) {
	if name == "" {
		name = DefaultZone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load time zone %q: %w", name, err)
	}
	return loc, nil
}
