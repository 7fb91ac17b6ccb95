package bridge

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestManifestClone(t *testing.T) {
	// Test empty struct to make sure empty slices are nil and not slices with 0 elements.
	m := Manifest{}
	require.Equal(t, m, m.clone())

	// Fill every field to ensure initial equality after the clone.
	m = Manifest{
		ID:          "com.example.some-addon",
		Version:     "0.1.0",
		Name:        "Some addon",
		Description: "Some addon",
		Logo:        "https://example.com/logo.png",

		Resources: []string{"stream"},

		Types: []string{"movie"},
		Catalogs: []CatalogItem{
			{
				Type: "movie",
				ID:   "some-catalog",
				Name: "Some catalog",
			},
		},

		IDprefixes: []string{"tt"},
		BehaviorHints: BehaviorHints{
			Adult:                 true,
			P2P:                   true,
			Configurable:          true,
			ConfigurationRequired: true,
		},
	}
	require.Equal(t, m, m.clone())

	// Create a list of test scenarios, where each one alters a single field.
	tests := []struct {
		name string
		f    func(m *Manifest)
	}{
		{
			name: "ID",
			f:    func(m *Manifest) { m.ID = "changed" },
		},
		{
			name: "Resources",
			f:    func(m *Manifest) { m.Resources[0] = "changed" },
		},
		{
			name: "Types",
			f:    func(m *Manifest) { m.Types[0] = "changed" },
		},
		{
			name: "Catalogs.Type",
			f:    func(m *Manifest) { m.Catalogs[0].Type = "changed" },
		},
		{
			name: "IDprefixes",
			f:    func(m *Manifest) { m.IDprefixes[0] = "changed" },
		},
		{
			name: "BehaviorHints",
			f:    func(m *Manifest) { m.BehaviorHints.Adult = false },
		},
	}

	// For each scenario, clone the original manifest, then run the scenario func, then compare.
	// We expect UNequality for each.
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			m2 := m.clone()
			test.f(&m2)
			require.NotEqual(t, m, m2)
		})
	}
}
