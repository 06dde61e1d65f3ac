package genai

import (
	"strings"
	"testing"
)

func TestNewGeneratorProviderSelection(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "gemini", cfg: Config{Provider: "gemini", GeminiApiKey: "key"}},
		{name: "gemini case insensitive", cfg: Config{Provider: "Gemini", GeminiApiKey: "key"}},
		{name: "openai", cfg: Config{Provider: "openai", OpenAIApiKey: "key"}},
		{name: "gemini missing key", cfg: Config{Provider: "gemini"}, wantErr: "API key required"},
		{name: "openai missing key", cfg: Config{Provider: "openai"}, wantErr: "API key required"},
		{name: "unknown provider", cfg: Config{Provider: "anthropic"}, wantErr: "unsupported provider"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			generator, err := NewGenerator(test.cfg)
			if test.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), test.wantErr) {
					t.Fatalf("expected error containing '%v', got %v", test.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if generator == nil {
				t.Fatal("expected a generator")
			}
		})
	}
}

func TestPromptsEmbedInputs(t *testing.T) {
	prompt := WorkoutPrompt("perfil x", "pref y", "equip z")
	for _, fragment := range []string{"perfil x", "pref y", "equip z"} {
		if !strings.Contains(prompt, fragment) {
			t.Errorf("workout prompt missing '%v'", fragment)
		}
	}

	prompt = DietPrompt("perfil x", "pref y", "sem gluten")
	if !strings.Contains(prompt, "sem gluten") {
		t.Errorf("diet prompt missing restrictions")
	}
}
