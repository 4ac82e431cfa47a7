package reconciler_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

// rawList decodes a JSON array the way the source loaders do.
func rawList(t *testing.T, doc string) []any {
	t.Helper()
	var out []any
	require.NoError(t, json.Unmarshal([]byte(doc), &out))
	return out
}
