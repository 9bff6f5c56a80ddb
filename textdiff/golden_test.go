package textdiff

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type deltaFixtureFile struct {
	Version     string         `yaml:"version"`
	Description string         `yaml:"description"`
	Fixtures    []deltaFixture `yaml:"fixtures"`
}

type deltaFixture struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	A           []string `yaml:"a"`
	B           []string `yaml:"b"`
	Delta       []string `yaml:"delta"`
}

func loadDeltaFixtures(t *testing.T) *deltaFixtureFile {
	t.Helper()
	data, err := os.ReadFile("testdata/deltas.yaml")
	require.NoError(t, err, "failed to read fixtures")

	var fixtures deltaFixtureFile
	require.NoError(t, yaml.Unmarshal(data, &fixtures), "failed to parse fixtures")
	require.NotEmpty(t, fixtures.Fixtures)
	return &fixtures
}

func TestGoldenDeltas(t *testing.T) {
	fixtures := loadDeltaFixtures(t)
	for _, fx := range fixtures.Fixtures {
		t.Run(fx.Name, func(t *testing.T) {
			assert.Equal(t, fx.Delta, NDiff(fx.A, fx.B))
		})
	}
}

// Every golden delta must also restore both inputs exactly.
func TestGoldenDeltasRestore(t *testing.T) {
	fixtures := loadDeltaFixtures(t)
	for _, fx := range fixtures.Fixtures {
		t.Run(fx.Name, func(t *testing.T) {
			got1, err := Restore(fx.Delta, 1)
			require.NoError(t, err)
			assert.Equal(t, fx.A, got1)

			got2, err := Restore(fx.Delta, 2)
			require.NoError(t, err)
			assert.Equal(t, fx.B, got2)
		})
	}
}
