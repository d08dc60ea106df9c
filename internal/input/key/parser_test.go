package key

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		spec string
		want Stroke
	}{
		{"a", RuneStroke('a')},
		{"A", RuneStroke('A')},
		{"1", RuneStroke('1')},
		{"@", RuneStroke('@')},
		{"+", RuneStroke('+')},
		{"space", RuneStroke(' ')},
		{"enter", SpecialStroke(KeyEnter, ModNone)},
		{"Escape", SpecialStroke(KeyEscape, ModNone)},
		{"tab", SpecialStroke(KeyTab, ModNone)},
		{"pgdn", SpecialStroke(KeyPageDown, ModNone)},
		{"f10", SpecialStroke(KeyF10, ModNone)},
		{"ctrl+p", CtrlStroke('p')},
		{"Ctrl+P", CtrlStroke('p')},
		{"ctrl++", CtrlStroke('+')},
		{"alt+x", NewStroke(KeyRune, 'x', ModAlt)},
		{"ctrl+shift+f5", SpecialStroke(KeyF5, ModCtrl|ModShift)},
		{"ctrl+space", NewStroke(KeyRune, ' ', ModCtrl)},
		{"  q  ", RuneStroke('q')},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			got, err := Parse(tt.spec)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.spec, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.spec, got, tt.want)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		spec    string
		wantErr error
	}{
		{"", ErrEmptySpec},
		{"   ", ErrEmptySpec},
		{"bogus", ErrInvalidSpec},
		{"wat+x", ErrInvalidSpec},
		{"ctrl+bogus", ErrInvalidSpec},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			_, err := Parse(tt.spec)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Parse(%q) error = %v, want %v", tt.spec, err, tt.wantErr)
			}
		})
	}
}

func TestMustParsePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustParse with invalid spec did not panic")
		}
	}()
	MustParse("not a key")
}
