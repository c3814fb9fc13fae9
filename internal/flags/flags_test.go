package flags

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistry_Enabled(t *testing.T) {
	tests := []struct {
		name     string
		registry *Registry
		flag     string
		expected bool
	}{
		{
			name:     "configured flag set to true",
			registry: New(map[string]bool{FlagFuzzySearch: true}),
			flag:     FlagFuzzySearch,
			expected: true,
		},
		{
			name:     "configured flag overrides a true default",
			registry: New(map[string]bool{FlagMouse: false}),
			flag:     FlagMouse,
			expected: false,
		},
		{
			name:     "default applies when not configured",
			registry: New(nil),
			flag:     FlagMouse,
			expected: true,
		},
		{
			name:     "unknown flag returns false",
			registry: New(map[string]bool{FlagFuzzySearch: true}),
			flag:     "unknown-flag",
			expected: false,
		},
		{
			name:     "nil registry returns false",
			registry: nil,
			flag:     FlagMouse,
			expected: false,
		},
		{
			name:     "extra config flags are kept",
			registry: New(map[string]bool{"experimental": true}),
			flag:     "experimental",
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, tt.registry.Enabled(tt.flag))
		})
	}
}

func TestRegistry_All_ReturnsCopy(t *testing.T) {
	r := New(map[string]bool{FlagFuzzySearch: true})
	all := r.All()
	all[FlagFuzzySearch] = false
	require.True(t, r.Enabled(FlagFuzzySearch))

	var nilReg *Registry
	require.Empty(t, nilReg.All())
}

func TestNew_DoesNotAliasInput(t *testing.T) {
	in := map[string]bool{FlagFuzzySearch: true}
	r := New(in)
	in[FlagFuzzySearch] = false
	require.True(t, r.Enabled(FlagFuzzySearch))
}

func TestDefaultsAndKnown(t *testing.T) {
	require.Equal(t, []string{FlagFuzzySearch, FlagMouse}, Known())
	d := Defaults()
	d[FlagMouse] = false
	require.True(t, Defaults()[FlagMouse])
}
