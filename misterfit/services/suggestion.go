package services

import (
	"fmt"
	"log/slog"
	"misterfit_platform/misterfit/auth"
	"misterfit_platform/misterfit/genai"
	"misterfit_platform/utils"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	workoutSuggestionMetric = promauto.NewSummary(prometheus.SummaryOpts{Name: "genai_workout_suggestion", Help: "Workout suggestion generations"})
	dietSuggestionMetric    = promauto.NewSummary(prometheus.SummaryOpts{Name: "genai_diet_suggestion", Help: "Diet suggestion generations"})
)

type SuggestionService struct {
	userAuth  *auth.IdentityProvider
	generator genai.Generator
}

func (s *SuggestionService) Routes() chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(s.userAuth.AuthMiddleware()...)

		r.Post("/treino", s.WorkoutSuggestion)
		r.Post("/dieta", s.DietSuggestion)
	})

	return r
}

type suggestionRequest struct {
	Perfil       string `json:"perfil"`
	Preferencias string `json:"preferencias"`
	Equipamentos string `json:"equipamentos"`
	Restricoes   string `json:"restricoes"`
}

type suggestionResponse struct {
	Sugestao string `json:"sugestao"`
}

func (s *SuggestionService) generate(w http.ResponseWriter, r *http.Request, prompt string) {
	suggestion, err := s.generator.Generate(r.Context(), prompt)
	if err != nil {
		slog.Error("error generating suggestion", "error", err)
		http.Error(w, fmt.Sprintf("error generating suggestion: %v", err), http.StatusInternalServerError)
		return
	}

	if strings.TrimSpace(suggestion) == "" {
		suggestion = genai.NoSuggestionFallback
	}

	utils.WriteJsonResponse(w, suggestionResponse{Sugestao: suggestion})
}

func (s *SuggestionService) WorkoutSuggestion(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(workoutSuggestionMetric)
	defer timer.ObserveDuration()

	var params suggestionRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	if params.Perfil == "" {
		http.Error(w, "perfil is required", http.StatusBadRequest)
		return
	}

	s.generate(w, r, genai.WorkoutPrompt(params.Perfil, params.Preferencias, params.Equipamentos))
}

func (s *SuggestionService) DietSuggestion(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(dietSuggestionMetric)
	defer timer.ObserveDuration()

	var params suggestionRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	if params.Perfil == "" {
		http.Error(w, "perfil is required", http.StatusBadRequest)
		return
	}

	s.generate(w, r, genai.DietPrompt(params.Perfil, params.Preferencias, params.Restricoes))
}
