package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateOutputFormat(t *testing.T) {
	supported := []string{"json", "text", "markdown"}

	tests := []struct {
		name          string
		format        string
		supported     []string
		expectedError string
	}{
		{name: "json", format: "json", supported: supported},
		{name: "markdown", format: "markdown", supported: supported},
		{
			name:          "xml rejected",
			format:        "xml",
			supported:     supported,
			expectedError: "unsupported output format 'xml'. Supported formats: [json text markdown]",
		},
		{
			name:          "case sensitive",
			format:        "TEXT",
			supported:     supported,
			expectedError: "unsupported output format 'TEXT'. Supported formats: [json text markdown]",
		},
		{name: "no restrictions", format: "xml", supported: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputFormat(tt.format, tt.supported)
			if tt.expectedError == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.expectedError)
		})
	}
}

func TestResolveOutputFormat(t *testing.T) {
	supported := []string{"json", "text", "markdown"}

	format, err := ResolveOutputFormat("", "text", supported)
	require.NoError(t, err)
	assert.Equal(t, "text", format)

	format, err = ResolveOutputFormat("markdown", "text", supported)
	require.NoError(t, err)
	assert.Equal(t, "markdown", format)

	format, err = ResolveOutputFormat("", "", supported)
	require.NoError(t, err)
	assert.Equal(t, "json", format)

	_, err = ResolveOutputFormat("yaml", "text", supported)
	assert.Error(t, err)
}

func BenchmarkValidateOutputFormat(b *testing.B) {
	supportedFormats := []string{"json", "text", "markdown"}

	for b.Loop() {
		_ = ValidateOutputFormat("markdown", supportedFormats)
	}
}
