package textfmt

import "testing"

func TestCleanMarkdown(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain", "SYMPTOM: Fever", "SYMPTOM: Fever"},
		{"bold keyword", "**SYMPTOM:** Fever", "SYMPTOM: Fever"},
		{"underscore bold", "__MAIN:__ Sepsis", "MAIN: Sepsis"},
		{"italic", "*Dyspnea* on exertion", "Dyspnea on exertion"},
		{"header", "## MAIN: Asthma", "MAIN: Asthma"},
		{"inline code", "use `aspirin`", "use aspirin"},
		{"link", "[Guidelines](https://example.org)", "Guidelines"},
		{"rule", "MAIN: A\n---\nSYMPTOM: B", "MAIN: A\n\nSYMPTOM: B"},
		{"blockquote", "> DIAGNOSIS: ECG", "DIAGNOSIS: ECG"},
		{"blank runs", "MAIN: A\n\n\n\nSYMPTOM: B", "MAIN: A\n\nSYMPTOM: B"},
		{"trims", "  MAIN: A  \n", "MAIN: A"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanMarkdown(tt.in); got != tt.want {
				t.Errorf("CleanMarkdown(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatForDisplay(t *testing.T) {
	in := "**MAIN:** Asthma\n\nSYMPTOM: Wheeze"

	if got := FormatForDisplay(in, true); got != "MAIN: Asthma\n\nSYMPTOM: Wheeze" {
		t.Errorf("preserve structure: got %q", got)
	}
	if got := FormatForDisplay(in, false); got != "MAIN: Asthma SYMPTOM: Wheeze" {
		t.Errorf("collapse: got %q", got)
	}
	if got := FormatForDisplay("", false); got != "" {
		t.Errorf("empty: got %q", got)
	}
}
