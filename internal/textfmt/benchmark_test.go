package textfmt

import (
	"strings"
	"testing"
)

// BenchmarkFormat benchmarks the shapes of cell text seen in the program
// sheets. Every card renders several formatted fields.
func BenchmarkFormat(b *testing.B) {
	testCases := []string{
		"Mengurangi sampah plastik di desa",
		"1. Mengurangi sampah 2. Edukasi warga 3. Bank sampah",
		"a. Survei b. Sosialisasi c. Evaluasi",
		"- poster - video - leaflet",
		"Alat: • poster • video",
		"Tahap persiapan.\n\nTahap pelaksanaan.",
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, tc := range testCases {
			Format(tc)
		}
	}
}

// BenchmarkFormat_Long benchmarks a long numbered description.
func BenchmarkFormat_Long(b *testing.B) {
	var sb strings.Builder
	for i := 1; i <= 50; i++ {
		sb.WriteString("1. Kegiatan penyuluhan kesehatan ibu dan anak ")
	}
	text := sb.String()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Format(text)
	}
}

func BenchmarkBlocks(b *testing.B) {
	structured := Format("1. Mengurangi sampah 2. Edukasi warga\n\n• poster\n• video")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Blocks(structured)
	}
}
