package build

import (
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// ManifestEntry describes one compiled-output cache file.
type ManifestEntry struct {
	Library     string `msgpack:"library" json:"library" yaml:"library"`
	Kind        string `msgpack:"kind" json:"kind" yaml:"kind"`
	ScriptType  string `msgpack:"script_type" json:"script_type" yaml:"script_type"`
	Path        string `msgpack:"path" json:"path" yaml:"path"`
	Fingerprint string `msgpack:"fingerprint" json:"fingerprint" yaml:"fingerprint"`
	Size        int    `msgpack:"size" json:"size" yaml:"size"`
}

// Manifest records the outcome of the last full build.
type Manifest struct {
	BuiltAt  time.Time       `msgpack:"built_at" json:"built_at" yaml:"built_at"`
	Attempts int             `msgpack:"attempts" json:"attempts" yaml:"attempts"`
	Entries  []ManifestEntry `msgpack:"entries" json:"entries" yaml:"entries"`
	Failures []string        `msgpack:"failures,omitempty" json:"failures,omitempty" yaml:"failures,omitempty"`
}

// Lookup returns the entry for a library and script type.
func (m *Manifest) Lookup(library, scriptType string) (ManifestEntry, bool) {
	for _, e := range m.Entries {
		if e.Library == library && e.ScriptType == scriptType {
			return e, true
		}
	}
	return ManifestEntry{}, false
}

func encodeManifest(m *Manifest) ([]byte, error) {
	packed, err := msgpack.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encoding cache manifest: %w", err)
	}
	return packed, nil
}

func decodeManifest(packed []byte) (*Manifest, error) {
	var m Manifest
	if err := msgpack.Unmarshal(packed, &m); err != nil {
		return nil, fmt.Errorf("decoding cache manifest: %w", err)
	}
	return &m, nil
}
