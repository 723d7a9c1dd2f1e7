package core

import (
	"reflect"
	"testing"
)

func suggestionValidator(hsnCodes []string, opts ...Option) *Validator {
	hsn := Table{Key: TableHSN}
	for _, c := range hsnCodes {
		hsn.Records = append(hsn.Records, Record{Code: c})
	}
	sac := Table{Key: TableSAC, Records: []Record{{Code: "2001"}, {Code: "123456"}, {Code: "99"}}}
	return NewValidator(hsn, sac, opts...)
}

func TestSuggest_OrderedByScore(t *testing.T) {
	v := suggestionValidator([]string{"1001", "1005", "10090"})

	// 10090 scores 8/9; 1001 and 1005 tie at 6/8; 2001 scores 4/8.
	want := []string{"10090", "1001", "1005"}
	if got := v.Suggest("1009"); !reflect.DeepEqual(got, want) {
		t.Errorf("Suggest(1009) = %v, want %v", got, want)
	}
}

func TestSuggest_TiesKeepTableOrder(t *testing.T) {
	v := suggestionValidator([]string{"1005", "1001", "10090"})

	want := []string{"10090", "1005", "1001"}
	if got := v.Suggest("1009"); !reflect.DeepEqual(got, want) {
		t.Errorf("Suggest(1009) = %v, want %v", got, want)
	}
}

func TestSuggestN_Limit(t *testing.T) {
	v := suggestionValidator([]string{"1001", "1005", "10090"})

	tests := []struct {
		n    int
		want []string
	}{
		{0, []string{}},
		{-1, []string{}},
		{1, []string{"10090"}},
		{2, []string{"10090", "1001"}},
		{10, []string{"10090", "1001", "1005"}},
	}

	for _, tt := range tests {
		got := v.SuggestN("1009", tt.n)
		if len(got) != len(tt.want) {
			t.Errorf("SuggestN(1009, %d) = %v, want %v", tt.n, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("SuggestN(1009, %d) = %v, want %v", tt.n, got, tt.want)
				break
			}
		}
	}
}

func TestSuggest_Cutoff(t *testing.T) {
	v := suggestionValidator([]string{"1001", "1005", "10090"}, WithCutoff(0.8))

	want := []string{"10090"}
	if got := v.Suggest("1009"); !reflect.DeepEqual(got, want) {
		t.Errorf("Suggest(1009) with cutoff 0.8 = %v, want %v", got, want)
	}
}

func TestSuggest_InvalidCutoffIgnored(t *testing.T) {
	v := suggestionValidator([]string{"1001"}, WithCutoff(1.5))
	if v.cutoff != DefaultCutoff {
		t.Errorf("cutoff = %v, want default %v", v.cutoff, DefaultCutoff)
	}
}

func TestSuggest_ConfiguredCount(t *testing.T) {
	v := suggestionValidator([]string{"1001", "1005", "10090"}, WithSuggestions(1))

	if got := v.Suggest("1009"); len(got) != 1 {
		t.Errorf("Suggest(1009) with 1 suggestion = %v", got)
	}
}

func TestSuggest_NormalizesInput(t *testing.T) {
	v := suggestionValidator([]string{"1001", "1005", "10090"})

	if got := v.Suggest("  1009 "); len(got) == 0 || got[0] != "10090" {
		t.Errorf("Suggest with whitespace = %v, want 10090 first", got)
	}
}

func TestSuggest_NoMatches(t *testing.T) {
	v := suggestionValidator([]string{"1001"})

	if got := v.Suggest("77777777"); len(got) != 0 {
		t.Errorf("Suggest(77777777) = %v, want none", got)
	}
}

func TestSuggest_ExactMatchIncluded(t *testing.T) {
	v := suggestionValidator([]string{"1001", "1005"})

	got := v.Suggest("1001")
	if len(got) == 0 || got[0] != "1001" {
		t.Errorf("Suggest(1001) = %v, want exact match first", got)
	}
}

func TestCloseMatches_Empty(t *testing.T) {
	if got := closeMatches("1001", nil, 3, 0.6); got != nil {
		t.Errorf("closeMatches with no candidates = %v, want nil", got)
	}
	if got := closeMatches("", []string{"12"}, 3, 0.6); len(got) != 0 {
		t.Errorf("closeMatches with empty word = %v, want none", got)
	}
}
