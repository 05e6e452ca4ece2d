package ocr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSniffMimeType(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"pdf", []byte("%PDF-1.7\n%âãÏÓ"), MimePDF},
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10}, MimeJPEG},
		{"png", []byte("\x89PNG\r\n\x1a\n....."), MimePNG},
		{"plain text", []byte("Salário Bruto: R$ 5.000,00"), ""},
		{"empty", nil, ""},
		{"too short", []byte{0xFF}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SniffMimeType(tt.data))
		})
	}
}
