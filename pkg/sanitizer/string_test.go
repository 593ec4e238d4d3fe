package sanitizer

import "testing"

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "basic trim",
			input: "  hello  ",
			want:  "hello",
		},
		{
			name:  "multiple spaces",
			input: "hello    world",
			want:  "hello world",
		},
		{
			name:  "tabs and newlines",
			input: "hello\t\nworld",
			want:  "hello world",
		},
		{
			name:  "empty",
			input: "",
			want:  "",
		},
		{
			name:  "only whitespace",
			input: "   ",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TrimAndNormalize(tt.input)
			if got != tt.want {
				t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if again := TrimAndNormalize(got); again != got {
				t.Errorf("TrimAndNormalize is not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "trim spaces",
			input: "  Dana Levi  ",
			want:  "Dana Levi",
		},
		{
			name:  "preserve special characters",
			input: " Zoë  O'Brien ",
			want:  "Zoë O'Brien",
		},
		{
			name:  "hebrew characters",
			input: " דנה   לוי ",
			want:  "דנה לוי",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeName(tt.input); got != tt.want {
				t.Errorf("NormalizeName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeReason(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain",
			input: " client sick ",
			want:  "client sick",
		},
		{
			name:  "newlines collapse",
			input: "client\nsick",
			want:  "client sick",
		},
		{
			name:  "control characters dropped",
			input: "client\x00 \x1bsick",
			want:  "client sick",
		},
		{
			name:  "empty",
			input: "\x07",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeReason(tt.input); got != tt.want {
				t.Errorf("NormalizeReason(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeID(t *testing.T) {
	if got := NormalizeID("  stylist-1\n"); got != "stylist-1" {
		t.Errorf("NormalizeID() = %q", got)
	}
}
