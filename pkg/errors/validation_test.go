package errors

import (
	"strings"
	"testing"
)

func TestValidateDocumentName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantErr  bool
		wantCode Code
	}{
		{"simple", "Exam Prep", false, ""},
		{"unicode", "Prüfung 2024", false, ""},
		{"punctuation", "ch. 3 / notes", false, ""},

		{"empty", "", true, ErrCodeMissingInput},
		{"blank", "   ", true, ErrCodeMissingInput},
		{"too long", strings.Repeat("a", 300), true, ErrCodeInvalidInput},
		{"null byte", "foo\x00bar", true, ErrCodeInvalidInput},
		{"newline", "foo\nbar", true, ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDocumentName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateDocumentName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr && GetCode(err) != tt.wantCode {
				t.Errorf("code = %v, want %v", GetCode(err), tt.wantCode)
			}
		})
	}
}

func TestValidateNodeID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"numeric", "12", false},
		{"uuid", "3f2b9c1e-7a4d-4f7e-9f39-1c2d3e4f5a6b", false},
		{"empty", "", true},
		{"space", "1 2", true},
		{"tab", "1\t2", true},
		{"too long", strings.Repeat("x", 257), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNodeID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateNodeID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"https", "https://example.com/textbook", false},
		{"http", "http://example.com", false},
		{"empty", "", true},
		{"no scheme", "example.com", true},
		{"javascript", "javascript:alert(1)", true},
		{"file", "file:///etc/passwd", true},
		{"no host", "https://", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateRating(t *testing.T) {
	for _, r := range []int{1, 3, 5} {
		if err := ValidateRating(r); err != nil {
			t.Errorf("ValidateRating(%d) = %v", r, err)
		}
	}
	for _, r := range []int{0, 6, -1} {
		if err := ValidateRating(r); err == nil {
			t.Errorf("ValidateRating(%d) should fail", r)
		}
	}
}
