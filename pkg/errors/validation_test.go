package errors

import (
	"strings"
	"testing"
)

func TestValidateContent(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantErr  bool
		wantCode Code
	}{
		{"valid markup", "MAIN: Gout\nSYMPTOM: Podagra", false, ""},
		{"valid envelope", `{"content": "MAIN: Gout"}`, false, ""},
		{"at limit", strings.Repeat("a", MaxContentBytes), false, ""},

		{"empty", "", true, ErrCodeInvalidInput},
		{"whitespace", " \n\t ", true, ErrCodeInvalidInput},
		{"too large", strings.Repeat("a", MaxContentBytes+1), true, ErrCodeContentTooLarge},
		{"null byte", "MAIN: Gout\x00", true, ErrCodeInvalidInput},
		{"invalid utf8", "MAIN: \xff", true, ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateContent(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateContent() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !Is(err, tt.wantCode) {
				t.Errorf("ValidateContent() code = %v, want %v", GetCode(err), tt.wantCode)
			}
		})
	}
}

func TestValidateTopic(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"empty", "", false},
		{"simple", "Pulmonary Embolism", false},
		{"unicode", "Fièvre typhoïde", false},
		{"at limit", strings.Repeat("é", MaxTopicLength), false},

		{"too long", strings.Repeat("a", MaxTopicLength+1), true},
		{"newline", "Gout\nAcute", true},
		{"tab", "Gout\tAcute", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTopic(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTopic(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateSessionID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"canonical", "6ba7b810-9dad-11d1-80b4-00c04fd430c8", false},
		{"uppercase", "6BA7B810-9DAD-11D1-80B4-00C04FD430C8", false},

		{"empty", "", true},
		{"garbage", "not-a-uuid", true},
		{"path traversal", "../../etc/passwd", true},
		{"urn form", "urn:uuid:6ba7b810-9dad-11d1-80b4-00c04fd430c8", true},
		{"braced", "{6ba7b810-9dad-11d1-80b4-00c04fd430c8}", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSessionID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateSessionID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr && !Is(err, ErrCodeInvalidSessionID) {
				t.Errorf("ValidateSessionID(%q) code = %v", tt.input, GetCode(err))
			}
		})
	}
}

func TestErrorCodesAreUnique(t *testing.T) {
	codes := []Code{
		ErrCodeInvalidInput,
		ErrCodeInvalidFormat,
		ErrCodeInvalidSessionID,
		ErrCodeContentTooLarge,
		ErrCodeNotFound,
		ErrCodeSessionNotFound,
		ErrCodeNetwork,
		ErrCodeTimeout,
		ErrCodeInternal,
		ErrCodeUnsupported,
	}

	seen := make(map[Code]bool)
	for _, code := range codes {
		if seen[code] {
			t.Errorf("Duplicate error code: %s", code)
		}
		seen[code] = true
	}
}
