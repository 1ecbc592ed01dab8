package errors

import (
	"strings"
	"testing"
)

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "lib", false},
		{"nested", "lib/vendored", false},
		{"dotfile", "src/.config", false},
		{"dots inside name", "a..b/c", false},

		{"empty", "", true},
		{"absolute", "/etc/passwd", true},
		{"parent segment", "lib/../etc", true},
		{"leading parent", "../lib", true},
		{"backslash", "lib\\vendored", true},
		{"control char", "lib\x01", true},
		{"too long", strings.Repeat("a", 5000), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPath) {
				t.Errorf("ValidatePath(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidPath)
			}
		})
	}
}

func TestValidateGlob(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"double star", "**/test/**", false},
		{"extension", "*.min.js", false},
		{"braces", "{docs,examples}/**", false},

		{"empty", "", true},
		{"blank", "   ", true},
		{"unclosed class", "src/[a-", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateGlob(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateGlob(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateGlobs(t *testing.T) {
	if err := ValidateGlobs([]string{"**/*.txt", "vendor/**"}); err != nil {
		t.Errorf("ValidateGlobs() error = %v", err)
	}
	if err := ValidateGlobs([]string{"**/*.txt", ""}); err == nil {
		t.Error("ValidateGlobs() should reject an empty pattern")
	}
}
