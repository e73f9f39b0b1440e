package node

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain object", ` {"a":1} `, `{"a":1}`},
		{"fenced", "```json\n{\"a\":[1,2]}\n```", `{"a":[1,2]}`},
		{"prose around array", `result: [1, 2] done`, `[1, 2]`},
		{"no json", "nothing here", "nothing here"},
		{"broken", `prefix {"a": } suffix`, `prefix {"a": } suffix`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractJSONObject(tt.in))
		})
	}
}
