package genai

import "fmt"

// The suggestion prompts are kept in Portuguese, matching the language the
// app presents to its users.

const workoutPromptTemplate = `
Você é um personal trainer. Crie um plano de treino personalizado para o seguinte aluno:
Perfil: %s
Preferências: %s
Equipamentos disponíveis: %s
Responda de forma detalhada, organizada por dias da semana, e com dicas de segurança.
`

const dietPromptTemplate = `
Você é um nutricionista. Crie um plano alimentar personalizado para o seguinte aluno:
Perfil: %s
Preferências alimentares: %s
Condições de saúde/restrições: %s
Responda de forma detalhada, com exemplos de refeições para cada parte do dia.
`

// NoSuggestionFallback is returned to clients when the provider yields no
// candidate text.
const NoSuggestionFallback = "Não foi possível gerar sugestão."

func WorkoutPrompt(profile, preferences, equipment string) string {
	return fmt.Sprintf(workoutPromptTemplate, profile, preferences, equipment)
}

func DietPrompt(profile, preferences, restrictions string) string {
	return fmt.Sprintf(dietPromptTemplate, profile, preferences, restrictions)
}
