package parse

import (
	"slices"
	"testing"
)

func TestChapterSelection(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		count   int
		want    []int
		wantErr bool
	}{
		{name: "single", input: "3", count: 5, want: []int{3}},
		{name: "range", input: "2-4", count: 5, want: []int{2, 3, 4}},
		{name: "mixed and duplicated", input: "5, 1-2 ,2", count: 5, want: []int{1, 2, 5}},
		{name: "range clipped", input: "4-10", count: 5, want: []int{4, 5}},
		{name: "out of range", input: "6", count: 5, wantErr: true},
		{name: "reversed range", input: "4-2", count: 5, wantErr: true},
		{name: "garbage", input: "a", count: 5, wantErr: true},
		{name: "empty", input: " ", count: 5, wantErr: true},
		{name: "double dash", input: "1-2-3", count: 5, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ChapterSelection(tt.input, tt.count)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err=%v, wantErr=%v", err, tt.wantErr)
			}
			if !tt.wantErr && !slices.Equal(got, tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}
