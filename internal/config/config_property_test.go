//go:build property
// +build property

package config

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/spf13/viper"
)

// TestConfigurationProperties tests validation of store paths
func TestConfigurationProperties(t *testing.T) {
	viper.Reset()
	base, err := Load()
	if err != nil {
		t.Fatal(err)
	}

	properties := gopter.NewProperties(nil)

	segments := gen.SliceOfN(3, gen.AlphaString())

	// Property: clean absolute roots are accepted
	properties.Property("absolute roots validate", prop.ForAll(
		func(parts []string) bool {
			var kept []string
			for _, p := range parts {
				if p != "" {
					kept = append(kept, p)
				}
			}
			if len(kept) == 0 {
				return true
			}
			c := *base
			c.Roots.Override = "/" + strings.Join(kept, "/")
			c.Roots.Base = c.Roots.Override + "-base"
			return !Validate(&c).HasErrors()
		},
		segments,
	))

	// Property: relative roots are always rejected
	properties.Property("relative roots fail", prop.ForAll(
		func(parts []string) bool {
			rel := strings.Trim(strings.Join(parts, "/"), "/")
			if rel == "" {
				return true
			}
			c := *base
			c.Roots.Base = rel
			return Validate(&c).HasErrors()
		},
		segments,
	))

	// Property: attempt counts below one are always rejected
	properties.Property("build attempts lower bound", prop.ForAll(
		func(n int) bool {
			c := *base
			c.Cache.BuildAttempts = n
			return Validate(&c).HasErrors() == (n < 1)
		},
		gen.IntRange(-5, 20),
	))

	properties.TestingRun(t)
}
