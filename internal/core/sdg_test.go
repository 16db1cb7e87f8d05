package core

import (
	"reflect"
	"testing"
)

func TestSDGNumbers(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []int
	}{
		{name: "placeholder", text: "-", want: nil},
		{name: "empty", text: "", want: nil},
		{name: "comma list", text: "3,4,11", want: []int{3, 4, 11}},
		{name: "prefixed", text: "SDG 3, SDG 4", want: []int{3, 4}},
		{name: "dotted", text: "3.4.11", want: []int{3, 4, 11}},
		{name: "sorted", text: "17, 1, 9", want: []int{1, 9, 17}},
		{name: "unique", text: "4, 4, 4", want: []int{4}},
		{name: "out of range dropped", text: "0, 18, 2024, 5", want: []int{5}},
		{name: "no numbers", text: "Semua tujuan", want: nil},
		{name: "leading zero", text: "03", want: []int{3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SDGNumbers(tt.text); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SDGNumbers(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestSDGImagePath(t *testing.T) {
	if got := SDGImagePath(11); got != "/sdgs/sdg-11.png" {
		t.Errorf("SDGImagePath(11) = %q", got)
	}
}
