package excel

import "testing"

func TestIsDateFormatCode(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"yyyy-mm-dd", true},
		{`yyyy"년" m"월" d"일"`, true},
		{"[$-409]h:mm AM/PM", true},
		{"[h]:mm:ss", true},
		{"#,##0", false},
		{"#,##0.0_);[Red](#,##0.0)", false},
		{`0.0"days"`, false},
		{`#,##0 "원"`, false},
		{"General", false},
		{`0.0\s`, false},
	}
	for _, tt := range tests {
		if got := isDateFormatCode(tt.code); got != tt.want {
			t.Errorf("isDateFormatCode(%q)=%v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestIsDateFormat_BuiltIn(t *testing.T) {
	for _, id := range []int{14, 17, 22, 31, 45, 47, 57} {
		if !isDateFormat(id, nil) {
			t.Errorf("numFmt %d should be a date format", id)
		}
	}
	for _, id := range []int{0, 1, 2, 4, 9, 10, 37, 49} {
		if isDateFormat(id, nil) {
			t.Errorf("numFmt %d should not be a date format", id)
		}
	}
	code := "#,##0"
	if isDateFormat(14, &code) {
		t.Errorf("custom code should take precedence over numFmt")
	}
}
