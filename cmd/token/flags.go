package main

import (
	"fmt"
	"time"

	"github.com/SkWeli/step-tracker/internal/session"
)

func parseTTL(s string) (time.Duration, error) {
	ttl, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid --ttl: %w", err)
	}
	if ttl <= 0 {
		return 0, fmt.Errorf("--ttl must be positive")
	}
	return ttl, nil
}

func knownCapability(c string) bool {
	switch session.Capability(c) {
	case session.CapabilityLocation, session.CapabilityActivity:
		return true
	}
	return false
}
