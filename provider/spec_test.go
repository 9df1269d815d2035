package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSpec(t *testing.T) {
	tests := []struct {
		raw  string
		want Spec
	}{
		{"lodash", Spec{Name: "lodash"}},
		{"npm:lodash", Spec{Provider: "npm", Name: "lodash"}},
		{"lodash@4.17.21", Spec{Name: "lodash", Version: "4.17.21"}},
		{"npm:lodash@4.17.21", Spec{Provider: "npm", Name: "lodash", Version: "4.17.21"}},
		{"pip:requests@2.31.0", Spec{Provider: "pip", Name: "requests", Version: "2.31.0"}},
		{"@babel/core", Spec{Name: "@babel/core"}},
		{"npm:@babel/core@7.23.0", Spec{Provider: "npm", Name: "@babel/core", Version: "7.23.0"}},
		{"  gem:rails  ", Spec{Provider: "gem", Name: "rails"}},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseSpec(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSpec_Invalid(t *testing.T) {
	for _, raw := range []string{
		"",
		"   ",
		":lodash",
		"npm:",
		"lodash@",
		"NPM:lodash",
		"bad name",
	} {
		t.Run(raw, func(t *testing.T) {
			_, err := ParseSpec(raw)
			require.Error(t, err)
			e, ok := AsError(err)
			require.True(t, ok)
			assert.Equal(t, CodeInvalidPackageSpec, e.Code)
		})
	}
}

func TestSpec_KeyAndString(t *testing.T) {
	s := Spec{Provider: "npm", Name: "lodash", Version: "4.17.21"}
	assert.Equal(t, "npm:lodash", s.Key())
	assert.Equal(t, "npm:lodash@4.17.21", s.String())

	bare := Spec{Name: "requests"}
	assert.Equal(t, "requests", bare.String())
}
