package model

import "testing"

func TestExamQuestionOptionText(t *testing.T) {
	q := &ExamQuestion{OptionA: "Go", OptionB: "Rust", OptionC: "Zig", OptionD: "C", CorrectAnswer: "c"}

	testCases := []struct {
		label  string
		want   string
		wantOK bool
	}{
		{"A", "Go", true},
		{"b", "Rust", true},
		{" D ", "C", true},
		{"E", "", false},
		{"", "", false},
	}
	for _, tc := range testCases {
		got, ok := q.OptionText(tc.label)
		if got != tc.want || ok != tc.wantOK {
			t.Errorf("OptionText(%q) = (%q, %v), expected (%q, %v)", tc.label, got, ok, tc.want, tc.wantOK)
		}
	}

	text, ok := q.CorrectOptionText()
	if !ok || text != "Zig" {
		t.Errorf("Expected correct option text 'Zig', got %q (ok=%v)", text, ok)
	}
}
