package validation_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/peerreviews/internal/validation"
	pkgerrors "github.com/agentstation/peerreviews/pkg/errors"
)

func TestValidateManual(t *testing.T) {
	tests := []struct {
		name  string
		data  string
		paths []string
	}{
		{
			name: "valid dataset",
			data: `{"meta":{"manualUpdatedAt":"2024-01-10"},"entries":[
				{"name":"Nature","years":[2020,"2021"],"url":null,"groupIds":["issn:1"]},
				{"id":42,"lastReviewed":2019}
			]}`,
		},
		{
			name:  "missing entries",
			data:  `{"meta":{}}`,
			paths: []string{"/"},
		},
		{
			name:  "entry is not an object",
			data:  `{"entries":["Nature"]}`,
			paths: []string{"/entries/0"},
		},
		{
			name:  "entry without identity",
			data:  `{"entries":[{"role":"Reviewer"}]}`,
			paths: []string{"/entries/0"},
		},
		{
			name:  "bad year and bad url",
			data:  `{"entries":[{"name":"Nature","years":[0],"url":5}]}`,
			paths: []string{"/entries/0/url", "/entries/0/years/0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			violations, err := validation.ValidateManual([]byte(tt.data))
			require.NoError(t, err)
			if len(tt.paths) == 0 {
				assert.Empty(t, violations)
				return
			}
			require.NotEmpty(t, violations)
			var paths []string
			for _, v := range violations {
				assert.NotEmpty(t, v.Message)
				if len(paths) == 0 || paths[len(paths)-1] != v.Path {
					paths = append(paths, v.Path)
				}
			}
			assert.Equal(t, tt.paths, paths)
		})
	}
}

func TestValidateManualMalformed(t *testing.T) {
	_, err := validation.ValidateManual([]byte(`{"entries":`))
	var parseErr *pkgerrors.ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestValidateFile(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "peer-reviews.yml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("entries:\n  - name: Nature\n    years: [2020]\n"), 0o644))
	violations, err := validation.ValidateFile(yamlPath)
	require.NoError(t, err)
	assert.Empty(t, violations)

	_, err = validation.ValidateFile(filepath.Join(dir, "absent.json"))
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestViolationString(t *testing.T) {
	v := validation.Violation{Path: "/entries/0", Message: "missing property"}
	assert.Equal(t, "/entries/0: missing property", v.String())
}

func TestSchemaIsCopy(t *testing.T) {
	a := validation.Schema()
	a[0] = 'x'
	assert.NotEqual(t, a[0], validation.Schema()[0])
}
