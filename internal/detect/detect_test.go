package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSample(t *testing.T) {
	tests := []struct {
		name   string
		sample string
		want   Format
	}{
		{"think tag", "<think>hmm</think>", XML},
		{"tool tag", "sure <read_file><path>a</path></read_file>", XML},
		{"tool result with attributes", `<tool_result tool_use_id="x" status="success">ok</tool_result>`, XML},
		{"json object", `{"type":"tool_use","name":"a","id":"1","input":{}}`, JSON},
		{"json embedded in prose", `here you go {"type":"thinking","content":"x"} done`, JSON},
		{"partial json", `{"type":"tool_use","na`, Unknown},
		{"plain text", "just some words", Unknown},
		{"lone angle bracket", "a < b", Unknown},
		{"xml wins over json", `<a>{"x":1}</a>`, XML},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sample(tt.sample))
		})
	}
}
