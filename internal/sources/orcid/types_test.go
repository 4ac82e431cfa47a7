package orcid

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		json string
		want Value
	}{
		{"string", `"Nature"`, "Nature"},
		{"object", `{"value":"Nature"}`, "Nature"},
		{"nested object", `{"value":{"value":"2021"}}`, "2021"},
		{"number", `123456`, "123456"},
		{"null", `null`, ""},
		{"object without value", `{"title":"x"}`, ""},
		{"array", `["x"]`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v Value
			require.NoError(t, json.Unmarshal([]byte(tt.json), &v))
			assert.Equal(t, tt.want, v)
		})
	}
}

func TestListUnmarshal(t *testing.T) {
	var many List[Value]
	require.NoError(t, json.Unmarshal([]byte(`["a",{"value":"b"}]`), &many))
	assert.Equal(t, List[Value]{"a", "b"}, many)

	var single List[Value]
	require.NoError(t, json.Unmarshal([]byte(`"a"`), &single))
	assert.Equal(t, List[Value]{"a"}, single)

	var none List[Value]
	require.NoError(t, json.Unmarshal([]byte(`null`), &none))
	assert.Empty(t, none)
}

func TestCompletionYear(t *testing.T) {
	tests := []struct {
		name string
		date *completionDate
		want int
	}{
		{"nil", nil, 0},
		{"year value", &completionDate{Year: "2021"}, 2021},
		{"flat value", &completionDate{Value: "2019"}, 2019},
		{"padded", &completionDate{Year: " 2020 "}, 2020},
		{"too short", &completionDate{Year: "21"}, 0},
		{"full date", &completionDate{Value: "2021-05-01"}, 0},
		{"letters", &completionDate{Year: "20x1"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, completionYear(tt.date))
		})
	}
}
