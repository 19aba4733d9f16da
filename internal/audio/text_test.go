package audio

import "testing"

func TestCleanNarration(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "strips emphasis markers",
			input: "The *pangolin* is the only **mammal** with scales.",
			want:  "The pangolin is the only mammal with scales.",
		},
		{
			name:  "trims whitespace",
			input: "  A quiet animal.  ",
			want:  "A quiet animal.",
		},
		{
			name:  "plain text untouched",
			input: "Nothing to clean here.",
			want:  "Nothing to clean here.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanNarration(tt.input); got != tt.want {
				t.Errorf("CleanNarration() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateNarration(t *testing.T) {
	if err := ValidateNarration(""); err == nil {
		t.Error("ValidateNarration() expected error for empty text")
	}

	if err := ValidateNarration("   \n\t "); err == nil {
		t.Error("ValidateNarration() expected error for whitespace-only text")
	}

	if err := ValidateNarration("The axolotl can regrow its limbs."); err != nil {
		t.Errorf("ValidateNarration() unexpected error: %v", err)
	}
}
