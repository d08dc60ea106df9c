package key

import "testing"

func TestStrokeNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   Stroke
		want Stroke
	}{
		{
			name: "rune drops shift",
			in:   Stroke{Key: KeyRune, Rune: 'A', Mods: ModShift},
			want: Stroke{Key: KeyRune, Rune: 'A'},
		},
		{
			name: "ctrl folds to lowercase",
			in:   Stroke{Key: KeyRune, Rune: 'P', Mods: ModCtrl},
			want: Stroke{Key: KeyRune, Rune: 'p', Mods: ModCtrl},
		},
		{
			name: "empty rune collapses",
			in:   Stroke{Key: KeyRune},
			want: Stroke{Key: KeyNone},
		},
		{
			name: "special key clears rune",
			in:   Stroke{Key: KeyTab, Rune: '\t'},
			want: Stroke{Key: KeyTab},
		},
		{
			name: "special key keeps shift",
			in:   Stroke{Key: KeyTab, Mods: ModShift},
			want: Stroke{Key: KeyTab, Mods: ModShift},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Normalize(); got != tt.want {
				t.Errorf("Normalize() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestStrokeString(t *testing.T) {
	tests := []struct {
		stroke Stroke
		want   string
	}{
		{RuneStroke('q'), "q"},
		{RuneStroke(' '), "Space"},
		{CtrlStroke('p'), "C-p"},
		{CtrlStroke('P'), "C-p"},
		{SpecialStroke(KeyTab, ModNone), "Tab"},
		{SpecialStroke(KeyTab, ModShift), "S-Tab"},
		{NewStroke(KeyRune, 'x', ModCtrl|ModAlt), "C-A-x"},
		{SpecialStroke(KeyF5, ModNone), "F5"},
	}

	for _, tt := range tests {
		if got := tt.stroke.String(); got != tt.want {
			t.Errorf("Stroke.String() = %q, want %q", got, tt.want)
		}
	}
}

func TestStrokeMapKeyParity(t *testing.T) {
	// A stroke built from a parsed spec and one built from a terminal
	// event must be the same map key.
	bindings := map[Stroke]string{
		MustParse("ctrl+p"): "sample",
		MustParse("q"):      "quit",
		MustParse("tab"):    "cycle",
	}

	events := []struct {
		stroke Stroke
		want   string
	}{
		{NewStroke(KeyRune, 'P', ModCtrl), "sample"},
		{NewStroke(KeyRune, 'q', ModNone), "quit"},
		{NewStroke(KeyTab, 0, ModNone), "cycle"},
	}

	for _, tt := range events {
		if got := bindings[tt.stroke]; got != tt.want {
			t.Errorf("bindings[%v] = %q, want %q", tt.stroke, got, tt.want)
		}
	}
}

func TestStrokeIsZero(t *testing.T) {
	if !(Stroke{}).IsZero() {
		t.Error("zero Stroke.IsZero() = false, want true")
	}
	if RuneStroke('a').IsZero() {
		t.Error("RuneStroke('a').IsZero() = true, want false")
	}
}
