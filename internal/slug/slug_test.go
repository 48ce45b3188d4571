package slug

import "testing"

// TestGenerate exercises the slug generator with typical advertorial titles,
// special characters, unicode, and boundary conditions.
func TestGenerate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "simple two words",
			input: "Hello World",
			want:  "hello-world",
		},
		{
			name:  "typical advertorial title",
			input: "This Mom Found a Simpler Way to Clean Her Kitchen",
			want:  "this-mom-found-a-simpler-way-to-clean-her-kitchen",
		},
		{
			name:  "title with year",
			input: "Best Household Finds of 2026",
			want:  "best-household-finds-of-2026",
		},
		{
			name:  "punctuation marks",
			input: "Tired of Stubborn Stains? Here's the Fix!",
			want:  "tired-of-stubborn-stains-heres-the-fix",
		},
		{
			name:  "ampersand and at sign",
			input: "Quick & Easy @ Home",
			want:  "quick-easy-home",
		},
		{
			name:  "parentheses and percent",
			input: "Save 40% (Limited Time)",
			want:  "save-40-limited-time",
		},
		{
			name:  "non-ascii dropped",
			input: "Büyük Fırsat — Şimdi",
			want:  "byk-frsat-imdi",
		},
		{
			name:  "leading and trailing whitespace",
			input: "   padded title   ",
			want:  "padded-title",
		},
		{
			name:  "consecutive separators collapse",
			input: "a  --  b",
			want:  "a-b",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
		{
			name:  "only punctuation",
			input: "!?!.,;",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Generate(tt.input); got != tt.want {
				t.Errorf("Generate(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestGenerateIdempotent verifies that re-slugging a valid slug is a no-op.
func TestGenerateIdempotent(t *testing.T) {
	inputs := []string{
		"This Mom Found a Simpler Way to Clean Her Kitchen",
		"Save 40% (Limited Time)",
		"already-a-valid-slug",
		"Hello, World! How's it going?",
	}

	for _, in := range inputs {
		once := Generate(in)
		twice := Generate(once)
		if once != twice {
			t.Errorf("Generate not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}

func TestValid(t *testing.T) {
	if !Valid("a-valid-slug-42") {
		t.Error("Valid rejected a well-formed slug")
	}
	if Valid("Not A Slug") {
		t.Error("Valid accepted a raw title")
	}
	if Valid("") {
		t.Error("Valid accepted the empty string")
	}
}
