package payslip

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"strips diacritics", "Salário Líquido", "salario liquido"},
		{"lowercases", "HOLERITE", "holerite"},
		{"french accents", "Net à payer", "net a payer"},
		{"already folded", "inss", "inss"},
		{"cedilla", "Remuneração", "remuneracao"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Fold(tt.in))
		})
	}
}

func TestFoldKey(t *testing.T) {
	// All spellings of pró-labore collapse to the same key.
	assert.Equal(t, "prolabore", FoldKey("PRÓ-LABORE"))
	assert.Equal(t, "prolabore", FoldKey("pro labore"))
	assert.Equal(t, "prolabore", FoldKey("prolabore"))
	assert.Equal(t, "fgts", FoldKey("F.G.T.S."))
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "collapses space runs",
			in:   "Salário   Bruto:    R$ 5.000,00",
			want: "Salário Bruto: R$ 5.000,00",
		},
		{
			name: "normalizes crlf",
			in:   "linha um\r\nlinha dois\rlinha três",
			want: "linha um\nlinha dois\nlinha três",
		},
		{
			name: "drops control characters",
			in:   "Salário\x00 Bruto\x07",
			want: "Salário Bruto",
		},
		{
			name: "collapses blank line runs",
			in:   "cabeçalho\n\n\n\nrodapé",
			want: "cabeçalho\n\nrodapé",
		},
		{
			name: "trims leading and trailing blanks",
			in:   "\n\n  texto  \n\n",
			want: "texto",
		},
		{
			name: "empty input",
			in:   "",
			want: "",
		},
		{
			name: "whitespace only",
			in:   " \n\t \r\n ",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanText(tt.in))
		})
	}
}

func TestCleanTextDropsDuplicatePage(t *testing.T) {
	page := "Holerite Junho 2025\nEmpresa: Acme Ltda\nSalário Bruto: R$ 5.000,00\nLíquido: R$ 3.800,00"

	t.Run("exact duplicate second half is dropped", func(t *testing.T) {
		got := CleanText(page + "\n" + page)
		assert.Equal(t, page, got)
	})

	t.Run("duplicate with spacing jitter is dropped", func(t *testing.T) {
		jittered := strings.ReplaceAll(page, " ", "  ")
		got := CleanText(page + "\n\n" + jittered)
		assert.Equal(t, page, got)
	})

	t.Run("distinct halves are kept", func(t *testing.T) {
		other := "Página 2\nDetalhes de benefícios\nVale Refeição 880,00\nVale Transporte 220,00"
		got := CleanText(page + "\n" + other)
		assert.Contains(t, got, "Vale Refeição")
		assert.Contains(t, got, "Salário Bruto")
	})

	t.Run("odd line count is never deduplicated", func(t *testing.T) {
		in := "a\nb\na"
		assert.Equal(t, in, CleanText(in))
	})
}

func TestCleanTextIsIdempotent(t *testing.T) {
	in := "Salário   Bruto\r\n\r\n\r\nLíquido\x00: 3.800,00"
	once := CleanText(in)
	assert.Equal(t, once, CleanText(once))
}
