package csvparse

import (
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Table
	}{
		{
			name:  "empty input",
			input: "",
			want:  nil,
		},
		{
			name:  "single line without trailing newline",
			input: "a,b,c",
			want:  Table{{"a", "b", "c"}},
		},
		{
			name:  "single line with trailing newline",
			input: "a,b,c\n",
			want:  Table{{"a", "b", "c"}},
		},
		{
			name:  "comma inside quotes",
			input: "a,\"b,c\",d\n",
			want:  Table{{"a", "b,c", "d"}},
		},
		{
			name:  "doubled quote escape",
			input: "\"he said \"\"hi\"\"\"\n",
			want:  Table{{`he said "hi"`}},
		},
		{
			name:  "embedded newline in quoted field",
			input: "\"line1\nline2\",x\n",
			want:  Table{{"line1\nline2", "x"}},
		},
		{
			name:  "crlf line endings",
			input: "h1,h2\r\nv1,v2\r\n",
			want:  Table{{"h1", "h2"}, {"v1", "v2"}},
		},
		{
			name:  "carriage return kept inside quotes",
			input: "\"a\r\nb\"\n",
			want:  Table{{"a\r\nb"}},
		},
		{
			name:  "only commas",
			input: ",,",
			want:  Table{{"", "", ""}},
		},
		{
			name:  "lone quote",
			input: `"`,
			want:  Table{{""}},
		},
		{
			name:  "unterminated quote keeps buffer",
			input: "a,\"partial\nvalue",
			want:  Table{{"a", "partial\nvalue"}},
		},
		{
			name:  "stray quote mid field enters quoted mode",
			input: "ab\"c,d\"e\n",
			want:  Table{{"abc,de"}},
		},
		{
			name:  "blank line yields one empty field",
			input: "a\n\nb\n",
			want:  Table{{"a"}, {""}, {"b"}},
		},
		{
			name:  "ragged rows are not padded",
			input: "h1,h2,h3\nx\ny,z\n",
			want:  Table{{"h1", "h2", "h3"}, {"x"}, {"y", "z"}},
		},
		{
			name:  "empty quoted field",
			input: "\"\",b\n",
			want:  Table{{"", "b"}},
		},
		{
			name:  "multibyte content",
			input: "Judul,Tujuan\nSosialisasi • Gizi,\"Meningkatkan ◦ kesadaran\"\n",
			want:  Table{{"Judul", "Tujuan"}, {"Sosialisasi • Gizi", "Meningkatkan ◦ kesadaran"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParse_RowCountMatchesLines(t *testing.T) {
	for n := 0; n < 50; n++ {
		var b strings.Builder
		for i := 0; i < n; i++ {
			b.WriteString("x,y,z\n")
		}
		if got := len(Parse(b.String())); got != n {
			t.Errorf("%d lines: got %d rows", n, got)
		}
	}
}

func TestParse_FieldCountIsCommasPlusOne(t *testing.T) {
	lines := []string{"", "a", "a,", ",a,", "a,b,c,d", `"x,y",z`}
	for _, line := range lines {
		table := Parse(line + "\n")
		if len(table) != 1 {
			t.Fatalf("%q: got %d rows, want 1", line, len(table))
		}
		unquoted := strings.ReplaceAll(line, `"x,y"`, "q")
		want := strings.Count(unquoted, ",") + 1
		if got := len(table[0]); got != want {
			t.Errorf("%q: got %d fields, want %d", line, got, want)
		}
	}
}

func TestParse_Deterministic(t *testing.T) {
	input := "a,\"b\"\"c\",d\r\n\"multi\nline\",e\n,,\n\"open"
	first := Parse(input)
	for i := 0; i < 10; i++ {
		if got := Parse(input); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d: got %q, want %q", i, got, first)
		}
	}
}

func TestTable_HeaderAndDataRows(t *testing.T) {
	var empty Table
	if empty.Header() != nil {
		t.Errorf("empty Header() = %q, want nil", empty.Header())
	}
	if empty.DataRows() != nil {
		t.Errorf("empty DataRows() = %q, want nil", empty.DataRows())
	}

	headerOnly := Parse("a,b\n")
	if !reflect.DeepEqual(headerOnly.Header(), Row{"a", "b"}) {
		t.Errorf("Header() = %q", headerOnly.Header())
	}
	if headerOnly.DataRows() != nil {
		t.Errorf("header-only DataRows() = %q, want nil", headerOnly.DataRows())
	}

	table := Parse("a,b\n1,2\n3,4\n")
	if table.Len() != 3 {
		t.Errorf("Len() = %d, want 3", table.Len())
	}
	if got := table.DataRows(); len(got) != 2 || got[1][0] != "3" {
		t.Errorf("DataRows() = %q", got)
	}
}

func TestParseReader(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  Table
	}{
		{
			name:  "strips bom",
			input: append([]byte{0xEF, 0xBB, 0xBF}, []byte("a,b\n")...),
			want:  Table{{"a", "b"}},
		},
		{
			name:  "no bom",
			input: []byte("a,b\n"),
			want:  Table{{"a", "b"}},
		},
		{
			name:  "only bom",
			input: []byte{0xEF, 0xBB, 0xBF},
			want:  nil,
		},
		{
			name:  "short input",
			input: []byte("x"),
			want:  Table{{"x"}},
		},
		{
			name:  "invalid utf8 replaced",
			input: []byte{'a', 0xFF, 'b', '\n'},
			want:  Table{{"a�b"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseReader(strings.NewReader(string(tt.input)))
			if err != nil {
				t.Fatalf("ParseReader() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseReader() = %q, want %q", got, tt.want)
			}
		})
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestParseReader_ReadError(t *testing.T) {
	_, err := ParseReader(failingReader{})
	if err == nil {
		t.Fatal("expected error from failing reader")
	}
	if !strings.Contains(err.Error(), "read csv") {
		t.Errorf("error = %v, want read csv prefix", err)
	}
}

func TestBOMSkippingReader_PassThrough(t *testing.T) {
	r := NewBOMSkippingReader(strings.NewReader("hello,world"))
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != "hello,world" {
		t.Errorf("got %q, want %q", got, "hello,world")
	}
}
