package services

import (
	"fmt"
	"log/slog"
	"misterfit_platform/misterfit/auth"
	"misterfit_platform/misterfit/schema"
	"misterfit_platform/utils"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ExerciseService struct {
	db       *gorm.DB
	userAuth *auth.IdentityProvider
}

func (s *ExerciseService) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(s.userAuth.AuthMiddleware()...)

	r.Get("/", s.List)
	r.Post("/", s.Create)

	return r
}

type ExerciseInfo struct {
	Id          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	MuscleGroup string    `json:"muscle_group"`
	Difficulty  string    `json:"difficulty"`
	Description string    `json:"description"`
	VideoUrl    string    `json:"video_url"`
}

func convertToExerciseInfo(exercise *schema.Exercise) ExerciseInfo {
	return ExerciseInfo{
		Id:          exercise.Id,
		Name:        exercise.Name,
		MuscleGroup: exercise.MuscleGroup,
		Difficulty:  exercise.Difficulty,
		Description: exercise.Description,
		VideoUrl:    exercise.VideoUrl,
	}
}

func (s *ExerciseService) List(w http.ResponseWriter, r *http.Request) {
	var exercises []schema.Exercise
	result := s.db.Order("name asc").Find(&exercises)
	if result.Error != nil {
		slog.Error("sql error listing exercises", "error", result.Error)
		http.Error(w, fmt.Sprintf("error listing exercises: %v", schema.ErrDbAccessFailed), http.StatusInternalServerError)
		return
	}

	infos := make([]ExerciseInfo, 0, len(exercises))
	for _, exercise := range exercises {
		infos = append(infos, convertToExerciseInfo(&exercise))
	}
	utils.WriteJsonResponse(w, infos)
}

type createExerciseRequest struct {
	Name        string `json:"name"`
	MuscleGroup string `json:"muscle_group"`
	Difficulty  string `json:"difficulty"`
	Description string `json:"description"`
	VideoUrl    string `json:"video_url"`
}

func (s *ExerciseService) Create(w http.ResponseWriter, r *http.Request) {
	var params createExerciseRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	if params.Name == "" || params.MuscleGroup == "" || params.Difficulty == "" {
		http.Error(w, "name, muscle_group, and difficulty are required", http.StatusBadRequest)
		return
	}

	exercise := schema.Exercise{
		Id:          uuid.New(),
		Name:        params.Name,
		MuscleGroup: params.MuscleGroup,
		Difficulty:  params.Difficulty,
		Description: params.Description,
		VideoUrl:    params.VideoUrl,
	}

	err := s.db.Transaction(func(txn *gorm.DB) error {
		var existing schema.Exercise
		result := txn.Limit(1).Find(&existing, "name = ?", params.Name)
		if result.Error != nil {
			slog.Error("sql error checking for duplicate exercise", "error", result.Error)
			return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
		}
		if result.RowsAffected != 0 {
			return CodedError(fmt.Errorf("an exercise with name %v already exists", params.Name), http.StatusConflict)
		}

		result = txn.Create(&exercise)
		if result.Error != nil {
			slog.Error("sql error creating exercise", "error", result.Error)
			return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
		}

		return nil
	})

	if err != nil {
		http.Error(w, fmt.Sprintf("error creating exercise: %v", err), GetResponseCode(err))
		return
	}

	utils.WriteJsonResponseStatus(w, http.StatusCreated, convertToExerciseInfo(&exercise))
}
