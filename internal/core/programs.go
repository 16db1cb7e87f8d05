package core

import (
	"github.com/JonMunkholm/proker/internal/csvparse"
	"github.com/JonMunkholm/proker/internal/textfmt"
)

// ProgramFields lists the semantic fields of a program card in display
// order, with the header names used to locate each column.
var ProgramFields = []FieldSpec{
	{Key: "title", Label: "Judul Proker", Candidates: []string{"judul proker", "judul", "nama proker", "program"}},
	{Key: "purpose", Label: "Tujuan", Candidates: []string{"tujuan"}, Formatted: true},
	{Key: "outcome", Label: "Hasil", Candidates: []string{"hasil"}, Formatted: true},
	{Key: "output", Label: "Output", Candidates: []string{"output"}, Formatted: true},
	{Key: "urgency", Label: "Urgensi", Candidates: []string{"urgensi"}},
	{Key: "detail", Label: "Detail Kegiatan", Candidates: []string{"detail kegiatan", "detail", "kegiatan"}, Formatted: true},
	{Key: "target", Label: "Sasaran", Candidates: []string{"sasaran"}, Formatted: true},
	{Key: "tools", Label: "Alat & Bahan", Candidates: []string{"alat dan bahan", "alat", "bahan"}, Formatted: true},
	{Key: "sdgs", Label: "SDGs", Candidates: []string{"sdgs"}},
	{Key: "cluster", Label: "Kluster", Candidates: []string{"kluster terlibat", "kluster"}},
}

// FieldByKey returns the FieldSpec for key.
func FieldByKey(key string) (FieldSpec, bool) {
	for _, spec := range ProgramFields {
		if spec.Key == key {
			return spec, true
		}
	}
	return FieldSpec{}, false
}

// ColumnMap resolves every program field to a column index of headers.
// Fields without a matching column map to NotFound.
func ColumnMap(headers []string) map[string]int {
	m := make(map[string]int, len(ProgramFields))
	for _, spec := range ProgramFields {
		m[spec.Key] = ColumnIndex(headers, spec.Candidates...)
	}
	return m
}

// ExtractPrograms maps each data row of a sheet to a Program. A sheet with
// no data rows yields nil.
func ExtractPrograms(data SheetData) []Program {
	if len(data.DataRows) == 0 {
		return nil
	}

	cols := ColumnMap(data.Headers)
	programs := make([]Program, len(data.DataRows))
	for i, row := range data.DataRows {
		programs[i] = buildProgram(i, row, cols)
	}
	return programs
}

func buildProgram(id int, row csvparse.Row, cols map[string]int) Program {
	value := func(key string) string {
		v := CellValue(row, cols[key])
		if spec, ok := FieldByKey(key); ok && spec.Formatted {
			return textfmt.Format(v)
		}
		return v
	}

	p := Program{
		ID:      id,
		Number:  id + 1,
		Title:   value("title"),
		Purpose: value("purpose"),
		Outcome: value("outcome"),
		Output:  value("output"),
		Urgency: value("urgency"),
		Detail:  value("detail"),
		Target:  value("target"),
		Tools:   value("tools"),
		SDGs:    value("sdgs"),
		Cluster: value("cluster"),
	}
	p.SDGGoals = SDGNumbers(p.SDGs)
	return p
}
