package services

import (
	"errors"
	"fmt"
	"log/slog"
	"misterfit_platform/misterfit/auth"
	"misterfit_platform/misterfit/schema"
	"misterfit_platform/utils"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WorkoutService struct {
	db       *gorm.DB
	userAuth *auth.IdentityProvider
}

func (s *WorkoutService) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(s.userAuth.AuthMiddleware()...)

	r.Get("/", s.List)
	r.Post("/", s.Create)
	r.Get("/available", s.Available)
	r.Put("/{plan_id}", s.Update)
	r.Delete("/{plan_id}", s.Delete)
	r.Post("/{plan_id}/assign", s.Assign)
	r.Patch("/{plan_id}/unassign", s.Unassign)

	return r
}

type WorkoutExerciseEntry struct {
	ExerciseName string `json:"exercise_name"`
	Sets         *int   `json:"sets"`
	Reps         string `json:"reps"`
	RestInterval string `json:"rest_interval"`
	Notes        string `json:"execution_notes"`
	VideoUrl     string `json:"video_url"`
}

type workoutPlanRequest struct {
	Title        string                 `json:"title"`
	Description  string                 `json:"description"`
	ImageUrl     string                 `json:"image_url"`
	TrainerEmail string                 `json:"trainer_email"`
	StudentEmail string                 `json:"student_email"`
	Exercises    []WorkoutExerciseEntry `json:"exercises"`
}

type WorkoutExerciseInfo struct {
	Id           uuid.UUID `json:"id"`
	ExerciseId   uuid.UUID `json:"exercise_id"`
	ExerciseName string    `json:"exercise_name"`
	Sets         *int      `json:"sets"`
	Reps         string    `json:"reps"`
	RestPeriod   string    `json:"rest_period"`
	Notes        string    `json:"notes"`
	VideoUrl     string    `json:"video_url"`
	Position     int       `json:"position"`
}

type WorkoutPlanInfo struct {
	Id           uuid.UUID             `json:"id"`
	Title        string                `json:"title"`
	Description  string                `json:"description"`
	ImageUrl     string                `json:"image_url"`
	TrainerId    uuid.UUID             `json:"trainer_id"`
	TrainerEmail string                `json:"trainer_email"`
	StudentId    *uuid.UUID            `json:"student_id"`
	Exercises    []WorkoutExerciseInfo `json:"exercises"`
	CreatedAt    time.Time             `json:"created_at"`
}

func convertToWorkoutPlanInfo(plan *schema.WorkoutPlan) WorkoutPlanInfo {
	exercises := make([]WorkoutExerciseInfo, 0, len(plan.Exercises))
	for _, entry := range plan.Exercises {
		info := WorkoutExerciseInfo{
			Id:         entry.Id,
			ExerciseId: entry.ExerciseId,
			Sets:       entry.Sets,
			Reps:       entry.Reps,
			RestPeriod: entry.RestPeriod,
			Notes:      entry.Notes,
			VideoUrl:   entry.VideoUrl,
			Position:   entry.Position,
		}
		if entry.Exercise != nil {
			info.ExerciseName = entry.Exercise.Name
		}
		exercises = append(exercises, info)
	}

	return WorkoutPlanInfo{
		Id:           plan.Id,
		Title:        plan.Title,
		Description:  plan.Description,
		ImageUrl:     plan.ImageUrl,
		TrainerId:    plan.TrainerId,
		TrainerEmail: plan.TrainerEmail,
		StudentId:    plan.StudentId,
		Exercises:    exercises,
		CreatedAt:    plan.CreatedAt,
	}
}

func findOrCreateExercise(txn *gorm.DB, name string) (schema.Exercise, error) {
	var exercise schema.Exercise
	result := txn.Limit(1).Find(&exercise, "name = ?", name)
	if result.Error != nil {
		slog.Error("sql error looking up exercise by name", "name", name, "error", result.Error)
		return schema.Exercise{}, CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
	}
	if result.RowsAffected != 0 {
		return exercise, nil
	}

	exercise = schema.Exercise{Id: uuid.New(), Name: name}
	result = txn.Create(&exercise)
	if result.Error != nil {
		slog.Error("sql error creating exercise from workout entry", "name", name, "error", result.Error)
		return schema.Exercise{}, CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
	}
	return exercise, nil
}

// resolveOptionalStudent looks up a student by email, returning nil when the
// email is empty or no user matches. A miss is not an error.
func resolveOptionalStudent(txn *gorm.DB, email string) (*uuid.UUID, error) {
	if email == "" {
		return nil, nil
	}

	var student schema.User
	result := txn.Limit(1).Find(&student, "email = ?", email)
	if result.Error != nil {
		slog.Error("sql error looking up student by email", "email", email, "error", result.Error)
		return nil, CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &student.Id, nil
}

func buildWorkoutEntries(txn *gorm.DB, planId uuid.UUID, entries []WorkoutExerciseEntry) error {
	position := 0
	for _, entry := range entries {
		if entry.ExerciseName == "" {
			continue
		}

		exercise, err := findOrCreateExercise(txn, entry.ExerciseName)
		if err != nil {
			return err
		}

		workoutExercise := schema.WorkoutExercise{
			Id:            uuid.New(),
			WorkoutPlanId: planId,
			ExerciseId:    exercise.Id,
			Sets:          entry.Sets,
			Reps:          entry.Reps,
			RestPeriod:    entry.RestInterval,
			Notes:         entry.Notes,
			VideoUrl:      entry.VideoUrl,
			Position:      position,
		}
		result := txn.Create(&workoutExercise)
		if result.Error != nil {
			slog.Error("sql error creating workout exercise entry", "error", result.Error)
			return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
		}
		position++
	}
	return nil
}

func (s *WorkoutService) Create(w http.ResponseWriter, r *http.Request) {
	var params workoutPlanRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	if params.Title == "" || params.TrainerEmail == "" {
		http.Error(w, "title and trainer_email are required", http.StatusBadRequest)
		return
	}
	params.TrainerEmail = schema.NormalizeEmail(params.TrainerEmail)
	params.StudentEmail = schema.NormalizeEmail(params.StudentEmail)

	planId := uuid.New()
	err := s.db.Transaction(func(txn *gorm.DB) error {
		trainer, err := getUserByEmail(txn, params.TrainerEmail)
		if err != nil {
			return err
		}

		studentId, err := resolveOptionalStudent(txn, params.StudentEmail)
		if err != nil {
			return err
		}

		plan := schema.WorkoutPlan{
			Id:           planId,
			Title:        params.Title,
			Description:  params.Description,
			ImageUrl:     params.ImageUrl,
			TrainerId:    trainer.Id,
			TrainerEmail: params.TrainerEmail,
			StudentId:    studentId,
		}
		result := txn.Create(&plan)
		if result.Error != nil {
			slog.Error("sql error creating workout plan", "error", result.Error)
			return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
		}

		return buildWorkoutEntries(txn, planId, params.Exercises)
	})

	if err != nil {
		http.Error(w, fmt.Sprintf("error creating workout plan: %v", err), GetResponseCode(err))
		return
	}

	plan, err := schema.GetWorkoutPlan(planId, s.db)
	if err != nil {
		http.Error(w, fmt.Sprintf("error retrieving created workout plan: %v", err), http.StatusInternalServerError)
		return
	}

	utils.WriteJsonResponseStatus(w, http.StatusCreated, convertToWorkoutPlanInfo(&plan))
}

func (s *WorkoutService) List(w http.ResponseWriter, r *http.Request) {
	user, err := auth.UserFromContext(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	query := s.db.Preload("Exercises", func(db *gorm.DB) *gorm.DB {
		return db.Order("position asc")
	}).Preload("Exercises.Exercise").Order("created_at desc")

	if trainerEmail := utils.QueryParam(r, "trainer_email"); trainerEmail != "" {
		query = query.Where("trainer_email = ?", schema.NormalizeEmail(trainerEmail))
	} else if studentId := utils.QueryParam(r, "student_id"); studentId != "" {
		id, err := uuid.Parse(studentId)
		if err != nil {
			http.Error(w, fmt.Sprintf("invalid student_id '%v'", studentId), http.StatusBadRequest)
			return
		}
		query = query.Where("student_id = ?", id)
	} else if trainerId := utils.QueryParam(r, "personal_id"); trainerId != "" {
		id, err := uuid.Parse(trainerId)
		if err != nil {
			http.Error(w, fmt.Sprintf("invalid personal_id '%v'", trainerId), http.StatusBadRequest)
			return
		}
		query = query.Where("trainer_id = ?", id)
	} else {
		query = query.Where("trainer_id = ?", user.Id)
	}

	var plans []schema.WorkoutPlan
	result := query.Find(&plans)
	if result.Error != nil {
		slog.Error("sql error listing workout plans", "error", result.Error)
		http.Error(w, fmt.Sprintf("error listing workout plans: %v", schema.ErrDbAccessFailed), http.StatusInternalServerError)
		return
	}

	infos := make([]WorkoutPlanInfo, 0, len(plans))
	for _, plan := range plans {
		infos = append(infos, convertToWorkoutPlanInfo(&plan))
	}
	utils.WriteJsonResponse(w, infos)
}

func (s *WorkoutService) Available(w http.ResponseWriter, r *http.Request) {
	query := s.db.Preload("Exercises", func(db *gorm.DB) *gorm.DB {
		return db.Order("position asc")
	}).Preload("Exercises.Exercise").Where("student_id IS NULL")

	if trainerEmail := utils.QueryParam(r, "trainer_email"); trainerEmail != "" {
		query = query.Where("trainer_email = ?", schema.NormalizeEmail(trainerEmail))
	}

	var plans []schema.WorkoutPlan
	result := query.Find(&plans)
	if result.Error != nil {
		slog.Error("sql error listing available workout plans", "error", result.Error)
		http.Error(w, fmt.Sprintf("error listing available workout plans: %v", schema.ErrDbAccessFailed), http.StatusInternalServerError)
		return
	}

	infos := make([]WorkoutPlanInfo, 0, len(plans))
	for _, plan := range plans {
		infos = append(infos, convertToWorkoutPlanInfo(&plan))
	}
	utils.WriteJsonResponse(w, infos)
}

func (s *WorkoutService) Update(w http.ResponseWriter, r *http.Request) {
	planId, err := utils.URLParamUUID(r, "plan_id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var params workoutPlanRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	if params.Title == "" || params.TrainerEmail == "" {
		http.Error(w, "title and trainer_email are required", http.StatusBadRequest)
		return
	}
	params.TrainerEmail = schema.NormalizeEmail(params.TrainerEmail)
	params.StudentEmail = schema.NormalizeEmail(params.StudentEmail)

	err = s.db.Transaction(func(txn *gorm.DB) error {
		plan, err := schema.GetWorkoutPlan(planId, txn)
		if err != nil {
			if errors.Is(err, schema.ErrWorkoutPlanNotFound) {
				return CodedError(err, http.StatusNotFound)
			}
			return CodedError(err, http.StatusInternalServerError)
		}

		trainer, err := getUserByEmail(txn, params.TrainerEmail)
		if err != nil {
			return err
		}

		studentId, err := resolveOptionalStudent(txn, params.StudentEmail)
		if err != nil {
			return err
		}
		if studentId == nil {
			studentId = plan.StudentId
		}

		updates := schema.WorkoutPlan{
			Id:           plan.Id,
			Title:        params.Title,
			Description:  params.Description,
			ImageUrl:     params.ImageUrl,
			TrainerId:    trainer.Id,
			TrainerEmail: params.TrainerEmail,
			StudentId:    studentId,
			CreatedAt:    plan.CreatedAt,
		}
		result := txn.Save(&updates)
		if result.Error != nil {
			slog.Error("sql error updating workout plan", "plan_id", planId, "error", result.Error)
			return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
		}

		// Entries are replaced wholesale on update.
		result = txn.Where("workout_plan_id = ?", planId).Delete(&schema.WorkoutExercise{})
		if result.Error != nil {
			slog.Error("sql error deleting workout exercise entries", "plan_id", planId, "error", result.Error)
			return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
		}

		return buildWorkoutEntries(txn, planId, params.Exercises)
	})

	if err != nil {
		http.Error(w, fmt.Sprintf("error updating workout plan: %v", err), GetResponseCode(err))
		return
	}

	plan, err := schema.GetWorkoutPlan(planId, s.db)
	if err != nil {
		http.Error(w, fmt.Sprintf("error retrieving updated workout plan: %v", err), http.StatusInternalServerError)
		return
	}

	utils.WriteJsonResponse(w, convertToWorkoutPlanInfo(&plan))
}

func (s *WorkoutService) Delete(w http.ResponseWriter, r *http.Request) {
	planId, err := utils.URLParamUUID(r, "plan_id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	err = s.db.Transaction(func(txn *gorm.DB) error {
		if _, err := schema.GetWorkoutPlan(planId, txn); err != nil {
			if errors.Is(err, schema.ErrWorkoutPlanNotFound) {
				return CodedError(err, http.StatusNotFound)
			}
			return CodedError(err, http.StatusInternalServerError)
		}

		result := txn.Where("workout_plan_id = ?", planId).Delete(&schema.WorkoutExercise{})
		if result.Error != nil {
			slog.Error("sql error deleting workout exercise entries", "plan_id", planId, "error", result.Error)
			return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
		}

		result = txn.Delete(&schema.WorkoutPlan{Id: planId})
		if result.Error != nil {
			slog.Error("sql error deleting workout plan", "plan_id", planId, "error", result.Error)
			return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
		}

		return nil
	})

	if err != nil {
		http.Error(w, fmt.Sprintf("error deleting workout plan: %v", err), GetResponseCode(err))
		return
	}

	utils.WriteSuccess(w)
}

type assignRequest struct {
	StudentId uuid.UUID `json:"student_id"`
}

func (s *WorkoutService) Assign(w http.ResponseWriter, r *http.Request) {
	planId, err := utils.URLParamUUID(r, "plan_id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var params assignRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	if params.StudentId == uuid.Nil {
		http.Error(w, "student_id is required", http.StatusBadRequest)
		return
	}

	err = s.db.Transaction(func(txn *gorm.DB) error {
		if _, err := schema.GetUser(params.StudentId, txn); err != nil {
			if errors.Is(err, schema.ErrUserNotFound) {
				return CodedError(err, http.StatusNotFound)
			}
			return CodedError(err, http.StatusInternalServerError)
		}

		if _, err := schema.GetWorkoutPlan(planId, txn); err != nil {
			if errors.Is(err, schema.ErrWorkoutPlanNotFound) {
				return CodedError(err, http.StatusNotFound)
			}
			return CodedError(err, http.StatusInternalServerError)
		}

		result := txn.Model(&schema.WorkoutPlan{Id: planId}).Update("student_id", params.StudentId)
		if result.Error != nil {
			slog.Error("sql error assigning workout plan", "plan_id", planId, "error", result.Error)
			return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
		}

		return nil
	})

	if err != nil {
		http.Error(w, fmt.Sprintf("error assigning workout plan: %v", err), GetResponseCode(err))
		return
	}

	utils.WriteSuccess(w)
}

func (s *WorkoutService) Unassign(w http.ResponseWriter, r *http.Request) {
	planId, err := utils.URLParamUUID(r, "plan_id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	err = s.db.Transaction(func(txn *gorm.DB) error {
		if _, err := schema.GetWorkoutPlan(planId, txn); err != nil {
			if errors.Is(err, schema.ErrWorkoutPlanNotFound) {
				return CodedError(err, http.StatusNotFound)
			}
			return CodedError(err, http.StatusInternalServerError)
		}

		// A no-op when the plan is already unassigned.
		result := txn.Model(&schema.WorkoutPlan{Id: planId}).Update("student_id", nil)
		if result.Error != nil {
			slog.Error("sql error unassigning workout plan", "plan_id", planId, "error", result.Error)
			return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
		}

		return nil
	})

	if err != nil {
		http.Error(w, fmt.Sprintf("error unassigning workout plan: %v", err), GetResponseCode(err))
		return
	}

	utils.WriteSuccess(w)
}
