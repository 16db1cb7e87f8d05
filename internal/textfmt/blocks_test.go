package textfmt

import (
	"reflect"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		line string
		want Block
	}{
		{"1. Siapkan alat", Block{Kind: KindNumbered, Marker: "1.", Content: "Siapkan alat"}},
		{"12.Evaluasi", Block{Kind: KindNumbered, Marker: "12.", Content: "Evaluasi"}},
		{"  3.   Penutup  ", Block{Kind: KindNumbered, Marker: "3.", Content: "Penutup"}},
		{"b. Pelaksanaan", Block{Kind: KindLettered, Marker: "b.", Content: "Pelaksanaan"}},
		{"• Kertas", Block{Kind: KindBullet, Marker: "•", Content: "Kertas"}},
		{"•Gunting", Block{Kind: KindBullet, Marker: "•", Content: "Gunting"}},
		{"Paragraf biasa", Block{Kind: KindParagraph, Content: "Paragraf biasa"}},
		{"Tahun 2024", Block{Kind: KindParagraph, Content: "Tahun 2024"}},
		{"A. Kapital", Block{Kind: KindParagraph, Content: "A. Kapital"}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			if got := Classify(tt.line); got != tt.want {
				t.Errorf("Classify(%q) = %+v, want %+v", tt.line, got, tt.want)
			}
		})
	}
}

func TestBlocks(t *testing.T) {
	got := Blocks("Intro\n1. Siapkan\n\n  \na. Detail\n• Kertas")
	want := []Block{
		{Kind: KindParagraph, Content: "Intro"},
		{Kind: KindNumbered, Marker: "1.", Content: "Siapkan"},
		{Kind: KindLettered, Marker: "a.", Content: "Detail"},
		{Kind: KindBullet, Marker: "•", Content: "Kertas"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Blocks() = %+v, want %+v", got, want)
	}
}

func TestBlocks_Empty(t *testing.T) {
	for _, in := range []string{"", "-", "\n\n"} {
		if got := Blocks(in); got != nil {
			t.Errorf("Blocks(%q) = %+v, want nil", in, got)
		}
	}
}

func TestBlocks_FromFormat(t *testing.T) {
	got := Blocks(Format("- item satu - item dua"))
	want := []Block{
		{Kind: KindBullet, Marker: "•", Content: "item satu"},
		{Kind: KindBullet, Marker: "•", Content: "item dua"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Blocks(Format()) = %+v, want %+v", got, want)
	}
}
