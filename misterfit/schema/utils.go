package schema

import (
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound          = errors.New("user not found")
	ErrExerciseNotFound      = errors.New("exercise not found")
	ErrWorkoutPlanNotFound   = errors.New("workout plan not found")
	ErrDietPlanNotFound      = errors.New("diet plan not found")
	ErrAssessmentNotFound    = errors.New("assessment not found")
	ErrFinancialPlanNotFound = errors.New("financial plan not found")
	ErrInvoiceNotFound       = errors.New("invoice not found")

	ErrEmailAlreadyInUse = errors.New("email is already in use")
	ErrShareCodeNotFound = errors.New("no student with that share code")

	ErrDbAccessFailed = errors.New("database access failed")
)

func GetUser(userId uuid.UUID, db *gorm.DB) (User, error) {
	var user User
	result := db.First(&user, "id = ?", userId)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return User{}, ErrUserNotFound
		}
		slog.Error("sql error retrieving user", "user_id", userId, "error", result.Error)
		return User{}, ErrDbAccessFailed
	}
	return user, nil
}

func GetUserByEmail(email string, db *gorm.DB) (User, error) {
	email = NormalizeEmail(email)

	var user User
	result := db.First(&user, "email = ?", email)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return User{}, ErrUserNotFound
		}
		slog.Error("sql error retrieving user by email", "email", email, "error", result.Error)
		return User{}, ErrDbAccessFailed
	}
	return user, nil
}

func GetExercise(exerciseId uuid.UUID, db *gorm.DB) (Exercise, error) {
	var exercise Exercise
	result := db.First(&exercise, "id = ?", exerciseId)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Exercise{}, ErrExerciseNotFound
		}
		slog.Error("sql error retrieving exercise", "exercise_id", exerciseId, "error", result.Error)
		return Exercise{}, ErrDbAccessFailed
	}
	return exercise, nil
}

func GetWorkoutPlan(planId uuid.UUID, db *gorm.DB) (WorkoutPlan, error) {
	var plan WorkoutPlan
	result := db.Preload("Exercises", func(db *gorm.DB) *gorm.DB {
		return db.Order("position asc")
	}).Preload("Exercises.Exercise").First(&plan, "id = ?", planId)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return WorkoutPlan{}, ErrWorkoutPlanNotFound
		}
		slog.Error("sql error retrieving workout plan", "plan_id", planId, "error", result.Error)
		return WorkoutPlan{}, ErrDbAccessFailed
	}
	return plan, nil
}

func GetDietPlan(planId uuid.UUID, db *gorm.DB) (DietPlan, error) {
	var plan DietPlan
	result := db.Preload("Meals", func(db *gorm.DB) *gorm.DB {
		return db.Order("position asc")
	}).Preload("Meals.Foods").First(&plan, "id = ?", planId)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return DietPlan{}, ErrDietPlanNotFound
		}
		slog.Error("sql error retrieving diet plan", "plan_id", planId, "error", result.Error)
		return DietPlan{}, ErrDbAccessFailed
	}
	return plan, nil
}

func GetAssessment(assessmentId uuid.UUID, db *gorm.DB) (Assessment, error) {
	var assessment Assessment
	result := db.First(&assessment, "id = ?", assessmentId)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Assessment{}, ErrAssessmentNotFound
		}
		slog.Error("sql error retrieving assessment", "assessment_id", assessmentId, "error", result.Error)
		return Assessment{}, ErrDbAccessFailed
	}
	return assessment, nil
}

func GetInvoice(invoiceId uuid.UUID, db *gorm.DB) (Invoice, error) {
	var invoice Invoice
	result := db.First(&invoice, "id = ?", invoiceId)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Invoice{}, ErrInvoiceNotFound
		}
		slog.Error("sql error retrieving invoice", "invoice_id", invoiceId, "error", result.Error)
		return Invoice{}, ErrDbAccessFailed
	}
	return invoice, nil
}
