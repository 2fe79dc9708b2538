package main

import (
	"context"
	"testing"
	"time"
)

func testUnit(city, state string) Unit {
	return Unit{
		City:         city,
		State:        state,
		StateAbbr:    "TS",
		Region:       "Test Region",
		NearbyStates: []string{"Nevada"},
		NearbyCities: []string{"Springfield"},
		Population:   "100K",
	}
}

// testSettings returns defaults rooted in a temp dir with caching disabled
func testSettings(t *testing.T) *Settings {
	t.Helper()
	s := NewDefaultSettings()
	s.OutputDirectory = t.TempDir()
	s.CacheDir = ""
	return s
}

// sleepRecorder records requested waits instead of sleeping
type sleepRecorder struct {
	waits []time.Duration
}

func (r *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	r.waits = append(r.waits, d)
	return ctx.Err()
}

func longText(seed string) string {
	text := "## Authentic Texas Tortillas Delivered to " + seed + "\n\n"
	for len(text) < 400 {
		text += "Real Texas tortillas, pressed fresh and shipped to your door. "
	}
	return text
}
