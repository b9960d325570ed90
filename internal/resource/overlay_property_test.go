//go:build property

package resource

import (
	"context"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestOverlayProperties validates per-entry precedence of the two-root overlay
func TestOverlayProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(1234)
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	// Property: the override entry wins when both roots carry it, base otherwise
	properties.Property("override wins per entry", prop.ForAll(
		func(name string, inOverride, inBase bool) bool {
			if name == "" {
				return true
			}
			o := NewOverlay("/apps", "/libs")
			s := NewMemoryStore()
			if inOverride {
				_ = s.Put(NewNode(Join(o.Override, name), "component"))
			}
			if inBase {
				_ = s.Put(NewNode(Join(o.Base, name), "component"))
			}
			if err := s.Commit(context.Background()); err != nil {
				return false
			}

			a := FirstAdaptation(s, o.Candidates(name), "component")
			switch {
			case inOverride:
				return a.OK() && a.Path == Join(o.Override, name)
			case inBase:
				return a.OK() && a.Path == Join(o.Base, name)
			default:
				return a.Status == Missing
			}
		},
		gen.Identifier(),
		gen.Bool(),
		gen.Bool(),
	))

	// Property: merged children list each name once, preserving override order first
	properties.Property("children merge is shadow-free", prop.ForAll(
		func(override, base []string) bool {
			o := NewOverlay("/apps", "/libs")
			s := NewMemoryStore()
			for _, n := range override {
				_ = s.Put(NewNode(Join(o.Override, "fw", n), "x"))
			}
			for _, n := range base {
				_ = s.Put(NewNode(Join(o.Base, "fw", n), "x"))
			}
			if err := s.Commit(context.Background()); err != nil {
				return false
			}

			seen := make(map[string]bool)
			for _, c := range o.Children(s, "fw") {
				if seen[c.Name()] {
					return false
				}
				seen[c.Name()] = true
			}
			for _, n := range append(append([]string(nil), override...), base...) {
				if !seen[n] {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.Identifier()),
		gen.SliceOf(gen.Identifier()),
	))

	properties.TestingRun(t)
}
