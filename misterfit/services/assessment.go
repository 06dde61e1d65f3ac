package services

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"misterfit_platform/misterfit/auth"
	"misterfit_platform/misterfit/schema"
	"misterfit_platform/utils"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AssessmentService struct {
	db       *gorm.DB
	userAuth *auth.IdentityProvider
}

func (s *AssessmentService) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(s.userAuth.AuthMiddleware()...)

	r.Get("/", s.List)
	r.Post("/", s.Create)
	r.Get("/student/{student_id}", s.ListByStudent)

	return r
}

type AssessmentInfo struct {
	Id               uuid.UUID `json:"id"`
	StudentId        uuid.UUID `json:"student_id"`
	TrainerId        uuid.UUID `json:"trainer_id"`
	AssessmentDate   time.Time `json:"assessment_date"`
	Goals            string    `json:"goals"`
	MedicalHistory   string    `json:"medical_history"`
	Injuries         string    `json:"injuries"`
	Medications      string    `json:"medications"`
	Weight           *float64  `json:"weight"`
	Height           *float64  `json:"height"`
	BodyFatPct       *float64  `json:"body_fat_percentage"`
	Bmi              *float64  `json:"bmi"`
	PostureNotes     string    `json:"posture_notes"`
	FlexibilityNotes string    `json:"flexibility_notes"`
	CardioNotes      string    `json:"cardio_notes"`
	CreatedAt        time.Time `json:"created_at"`
}

func convertToAssessmentInfo(assessment *schema.Assessment) AssessmentInfo {
	return AssessmentInfo{
		Id:               assessment.Id,
		StudentId:        assessment.StudentId,
		TrainerId:        assessment.TrainerId,
		AssessmentDate:   assessment.AssessmentDate,
		Goals:            assessment.Goals,
		MedicalHistory:   assessment.MedicalHistory,
		Injuries:         assessment.Injuries,
		Medications:      assessment.Medications,
		Weight:           assessment.Weight,
		Height:           assessment.Height,
		BodyFatPct:       assessment.BodyFatPct,
		Bmi:              assessment.Bmi,
		PostureNotes:     assessment.PostureNotes,
		FlexibilityNotes: assessment.FlexibilityNotes,
		CardioNotes:      assessment.CardioNotes,
		CreatedAt:        assessment.CreatedAt,
	}
}

// computeBmi returns weight / (height/100)^2 rounded to one decimal, with
// height given in centimeters. Returns nil unless both measures are present
// and positive.
func computeBmi(weight, height *float64) *float64 {
	if weight == nil || height == nil || *weight <= 0 || *height <= 0 {
		return nil
	}
	meters := *height / 100
	bmi := math.Round(*weight/(meters*meters)*10) / 10
	return &bmi
}

type createAssessmentRequest struct {
	StudentId        uuid.UUID `json:"student_id"`
	AssessmentDate   time.Time `json:"assessment_date"`
	Goals            string    `json:"goals"`
	MedicalHistory   string    `json:"medical_history"`
	Injuries         string    `json:"injuries"`
	Medications      string    `json:"medications"`
	Weight           *float64  `json:"weight"`
	Height           *float64  `json:"height"`
	BodyFatPct       *float64  `json:"body_fat_percentage"`
	PostureNotes     string    `json:"posture_notes"`
	FlexibilityNotes string    `json:"flexibility_notes"`
	CardioNotes      string    `json:"cardio_notes"`
}

func (s *AssessmentService) Create(w http.ResponseWriter, r *http.Request) {
	trainer, err := auth.UserFromContext(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var params createAssessmentRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	if params.StudentId == uuid.Nil {
		http.Error(w, "student_id is required", http.StatusBadRequest)
		return
	}
	if params.AssessmentDate.IsZero() {
		params.AssessmentDate = time.Now().UTC()
	}

	assessment := schema.Assessment{
		Id:               uuid.New(),
		StudentId:        params.StudentId,
		TrainerId:        trainer.Id,
		AssessmentDate:   params.AssessmentDate,
		Goals:            params.Goals,
		MedicalHistory:   params.MedicalHistory,
		Injuries:         params.Injuries,
		Medications:      params.Medications,
		Weight:           params.Weight,
		Height:           params.Height,
		BodyFatPct:       params.BodyFatPct,
		Bmi:              computeBmi(params.Weight, params.Height),
		PostureNotes:     params.PostureNotes,
		FlexibilityNotes: params.FlexibilityNotes,
		CardioNotes:      params.CardioNotes,
	}

	err = s.db.Transaction(func(txn *gorm.DB) error {
		if _, err := schema.GetUser(params.StudentId, txn); err != nil {
			if errors.Is(err, schema.ErrUserNotFound) {
				return CodedError(err, http.StatusNotFound)
			}
			return CodedError(err, http.StatusInternalServerError)
		}

		result := txn.Create(&assessment)
		if result.Error != nil {
			slog.Error("sql error creating assessment", "error", result.Error)
			return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
		}
		return nil
	})

	if err != nil {
		http.Error(w, fmt.Sprintf("error creating assessment: %v", err), GetResponseCode(err))
		return
	}

	utils.WriteJsonResponseStatus(w, http.StatusCreated, convertToAssessmentInfo(&assessment))
}

func (s *AssessmentService) List(w http.ResponseWriter, r *http.Request) {
	var assessments []schema.Assessment
	result := s.db.Order("assessment_date desc").Find(&assessments)
	if result.Error != nil {
		slog.Error("sql error listing assessments", "error", result.Error)
		http.Error(w, fmt.Sprintf("error listing assessments: %v", schema.ErrDbAccessFailed), http.StatusInternalServerError)
		return
	}

	infos := make([]AssessmentInfo, 0, len(assessments))
	for _, assessment := range assessments {
		infos = append(infos, convertToAssessmentInfo(&assessment))
	}
	utils.WriteJsonResponse(w, infos)
}

func (s *AssessmentService) ListByStudent(w http.ResponseWriter, r *http.Request) {
	studentId, err := utils.URLParamUUID(r, "student_id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var assessments []schema.Assessment
	result := s.db.Where("student_id = ?", studentId).Order("assessment_date desc").Find(&assessments)
	if result.Error != nil {
		slog.Error("sql error listing assessments for student", "student_id", studentId, "error", result.Error)
		http.Error(w, fmt.Sprintf("error listing assessments: %v", schema.ErrDbAccessFailed), http.StatusInternalServerError)
		return
	}

	infos := make([]AssessmentInfo, 0, len(assessments))
	for _, assessment := range assessments {
		infos = append(infos, convertToAssessmentInfo(&assessment))
	}
	utils.WriteJsonResponse(w, infos)
}
