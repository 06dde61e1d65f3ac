package tests

import (
	"errors"
	"strings"
	"testing"
)

func TestWorkoutSuggestion(t *testing.T) {
	env := setupTestEnv(t)

	trainer := env.newUser(t, "joao", "trainer")

	suggestion, err := trainer.workoutSuggestion(map[string]string{
		"perfil":       "homem, 30 anos, intermediário",
		"preferencias": "hipertrofia",
		"equipamentos": "halteres e barra",
	})
	if err != nil {
		t.Fatal(err)
	}
	if suggestion != env.generator.response {
		t.Fatalf("unexpected suggestion '%v'", suggestion)
	}

	if len(env.generator.prompts) != 1 {
		t.Fatalf("expected 1 prompt, got %d", len(env.generator.prompts))
	}
	prompt := env.generator.prompts[0]
	for _, fragment := range []string{"homem, 30 anos, intermediário", "hipertrofia", "halteres e barra"} {
		if !strings.Contains(prompt, fragment) {
			t.Fatalf("prompt missing '%v': %v", fragment, prompt)
		}
	}
}

func TestDietSuggestion(t *testing.T) {
	env := setupTestEnv(t)

	student := env.newUser(t, "ana", "student")

	suggestion, err := student.dietSuggestion(map[string]string{
		"perfil":     "mulher, 25 anos",
		"restricoes": "sem lactose",
	})
	if err != nil {
		t.Fatal(err)
	}
	if suggestion != env.generator.response {
		t.Fatalf("unexpected suggestion '%v'", suggestion)
	}

	if !strings.Contains(env.generator.prompts[0], "sem lactose") {
		t.Fatalf("prompt missing restrictions: %v", env.generator.prompts[0])
	}
}

func TestSuggestionFallbackOnEmptyResponse(t *testing.T) {
	env := setupTestEnv(t)
	env.generator.response = "   "

	trainer := env.newUser(t, "joao", "trainer")

	suggestion, err := trainer.workoutSuggestion(map[string]string{"perfil": "iniciante"})
	if err != nil {
		t.Fatal(err)
	}
	if suggestion != "Não foi possível gerar sugestão." {
		t.Fatalf("expected fallback suggestion, got '%v'", suggestion)
	}
}

func TestSuggestionProviderError(t *testing.T) {
	env := setupTestEnv(t)
	env.generator.err = errors.New("provider unavailable")

	trainer := env.newUser(t, "joao", "trainer")

	if _, err := trainer.workoutSuggestion(map[string]string{"perfil": "iniciante"}); err == nil {
		t.Fatal("expected error when the provider fails")
	}
}

func TestSuggestionRequiresProfile(t *testing.T) {
	env := setupTestEnv(t)

	trainer := env.newUser(t, "joao", "trainer")

	if _, err := trainer.workoutSuggestion(map[string]string{}); err == nil {
		t.Fatal("expected error for missing perfil")
	}
	if _, err := trainer.dietSuggestion(map[string]string{}); err == nil {
		t.Fatal("expected error for missing perfil")
	}
}

func TestSuggestionRequiresAuth(t *testing.T) {
	env := setupTestEnv(t)

	c := env.newClient()
	if _, err := c.workoutSuggestion(map[string]string{"perfil": "x"}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}
