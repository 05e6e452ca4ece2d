package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripMarkdownFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "json fence",
			in:   "```json\n[{\"category\":\"tax\"}]\n```",
			want: "[{\"category\":\"tax\"}]",
		},
		{
			name: "bare fence",
			in:   "```\n[]\n```",
			want: "[]",
		},
		{
			name: "no fence",
			in:   "[{\"category\":\"benefits\"}]",
			want: "[{\"category\":\"benefits\"}]",
		},
		{
			name: "surrounding whitespace",
			in:   "  \n```json\n[]\n```\n  ",
			want: "[]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripMarkdownFences(tt.in))
		})
	}
}
