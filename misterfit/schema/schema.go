package schema

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	RoleStudent = "student"
	RoleTrainer = "trainer"
	RoleAdmin   = "admin"
)

// NormalizeRole maps the legacy Portuguese role names that older clients still
// send ("aluno", "personal") onto the canonical role constants. Unknown values
// are returned unchanged so callers can reject them.
func NormalizeRole(role string) string {
	switch role {
	case "aluno":
		return RoleStudent
	case "personal":
		return RoleTrainer
	default:
		return role
	}
}

func ValidRole(role string) bool {
	return role == RoleStudent || role == RoleTrainer || role == RoleAdmin
}

// NormalizeEmail canonicalizes an email address so that lookups and the unique
// constraint treat "Ana@Mail.com" and "ana@mail.com" as the same identity.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type User struct {
	Id uuid.UUID `gorm:"type:uuid;primaryKey"`

	FullName string `gorm:"size:255;not null"`
	Email    string `gorm:"unique;size:254;not null"`
	Password []byte

	Role string `gorm:"size:20;not null;default:'student'"`

	// ShareCode is generated once, on the first profile update, and is never
	// regenerated afterwards. Students hand it to trainers to get linked.
	ShareCode *string `gorm:"unique;size:16"`

	// LinkedTrainerEmail is set when a trainer links this student via share code.
	LinkedTrainerEmail *string `gorm:"size:254"`

	Phone        string `gorm:"size:30"`
	Birthdate    string `gorm:"size:10"`
	Gender       string `gorm:"size:20"`
	City         string `gorm:"size:100"`
	Bio          string `gorm:"size:1000"`
	ProfilePhoto string `gorm:"size:500"`

	IsActive bool `gorm:"not null;default:true"`

	CreatedAt time.Time
}

type Exercise struct {
	Id uuid.UUID `gorm:"type:uuid;primaryKey"`

	Name        string `gorm:"unique;size:255;not null"`
	MuscleGroup string `gorm:"size:100"`
	Difficulty  string `gorm:"size:50"`
	Description string `gorm:"size:1000"`
	VideoUrl    string `gorm:"size:500"`
}

type WorkoutPlan struct {
	Id uuid.UUID `gorm:"type:uuid;primaryKey"`

	Title       string `gorm:"size:255;not null"`
	Description string `gorm:"size:1000"`
	ImageUrl    string `gorm:"size:500"`

	TrainerId    uuid.UUID `gorm:"type:uuid;not null"`
	TrainerEmail string    `gorm:"size:254;not null;index"`
	Trainer      *User     `gorm:"foreignKey:TrainerId"`

	// StudentId is the assignment, independent of ownership. Nil means the plan
	// is not assigned to anyone.
	StudentId *uuid.UUID `gorm:"type:uuid;index"`

	Exercises []WorkoutExercise `gorm:"constraint:OnDelete:CASCADE"`

	CreatedAt time.Time
}

type WorkoutExercise struct {
	Id uuid.UUID `gorm:"type:uuid;primaryKey"`

	WorkoutPlanId uuid.UUID `gorm:"type:uuid;not null;index"`
	ExerciseId    uuid.UUID `gorm:"type:uuid;not null"`
	Exercise      *Exercise `gorm:"foreignKey:ExerciseId"`

	Sets       *int
	Reps       string `gorm:"size:50"`
	RestPeriod string `gorm:"size:50"`
	Notes      string `gorm:"size:1000"`
	VideoUrl   string `gorm:"size:500"`

	Position int `gorm:"not null"`
}

type DietPlan struct {
	Id uuid.UUID `gorm:"type:uuid;primaryKey"`

	Title       string `gorm:"size:255;not null"`
	Description string `gorm:"size:1000"`
	ImageUrl    string `gorm:"size:500"`

	TrainerId    uuid.UUID `gorm:"type:uuid;not null"`
	TrainerEmail string    `gorm:"size:254;not null;index"`
	Trainer      *User     `gorm:"foreignKey:TrainerId"`

	StudentId *uuid.UUID `gorm:"type:uuid;index"`

	Meals []DietMeal `gorm:"constraint:OnDelete:CASCADE"`

	CreatedAt time.Time
}

type DietMeal struct {
	Id uuid.UUID `gorm:"type:uuid;primaryKey"`

	DietPlanId uuid.UUID `gorm:"type:uuid;not null;index"`

	MealTime    string `gorm:"size:50"`
	Description string `gorm:"size:255"`
	Calories    *int

	Position int `gorm:"not null"`

	Foods []MealFood `gorm:"constraint:OnDelete:CASCADE"`
}

type MealFood struct {
	Id uuid.UUID `gorm:"type:uuid;primaryKey"`

	DietMealId uuid.UUID `gorm:"type:uuid;not null;index"`

	FoodName string `gorm:"size:255;not null"`
	Quantity string `gorm:"size:100"`
	Calories string `gorm:"size:50"`
	Macros   string `gorm:"size:255"`
}

type Assessment struct {
	Id uuid.UUID `gorm:"type:uuid;primaryKey"`

	StudentId uuid.UUID `gorm:"type:uuid;not null;index"`
	TrainerId uuid.UUID `gorm:"type:uuid;not null;index"`

	AssessmentDate time.Time `gorm:"not null"`

	Goals          string `gorm:"size:1000"`
	MedicalHistory string `gorm:"size:1000"`
	Injuries       string `gorm:"size:1000"`
	Medications    string `gorm:"size:1000"`

	Weight     *float64
	Height     *float64
	BodyFatPct *float64
	Bmi        *float64

	PostureNotes     string `gorm:"size:1000"`
	FlexibilityNotes string `gorm:"size:1000"`
	CardioNotes      string `gorm:"size:1000"`

	CreatedAt time.Time
}

type Message struct {
	Id uuid.UUID `gorm:"type:uuid;primaryKey"`

	SenderEmail   string `gorm:"size:254;not null;index"`
	ReceiverEmail string `gorm:"size:254;not null;index"`
	Content       string `gorm:"size:1000;not null"`

	IsRead bool `gorm:"not null;default:false"`

	CreatedAt time.Time
}

const (
	PlanStatusActive  = "active"
	PlanStatusOverdue = "overdue"
)

type FinancialPlan struct {
	Id uuid.UUID `gorm:"type:uuid;primaryKey"`

	// At most one plan per (student, trainer) pair; writes go through an upsert.
	StudentEmail string `gorm:"size:254;not null;uniqueIndex:idx_plan_student_trainer"`
	TrainerEmail string `gorm:"size:254;not null;uniqueIndex:idx_plan_student_trainer"`

	Amount        float64   `gorm:"not null"`
	PaymentPeriod string    `gorm:"size:20;not null"`
	NextDueDate   time.Time `gorm:"not null"`
	Status        string    `gorm:"size:20;not null;default:'active'"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

const (
	InvoiceStatusPending = "pending"
	InvoiceStatusPaid    = "paid"
	InvoiceStatusOverdue = "overdue"
)

type Invoice struct {
	Id uuid.UUID `gorm:"type:uuid;primaryKey"`

	StudentEmail string `gorm:"size:254;not null;index"`
	TrainerEmail string `gorm:"size:254;not null;index"`

	Amount      float64   `gorm:"not null"`
	Description string    `gorm:"size:1000;not null"`
	DueDate     time.Time `gorm:"not null"`
	Status      string    `gorm:"size:20;not null;default:'pending'"`

	PaymentMethod string `gorm:"size:50;not null;default:'PIX'"`
	PixCode       string `gorm:"size:500"`
	PaymentLink   string `gorm:"size:500"`
	InvoiceNumber string `gorm:"unique;size:100;not null"`

	PaymentDate *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// AllModels lists every table for AutoMigrate and the test setup.
func AllModels() []interface{} {
	return []interface{}{
		&User{}, &Exercise{},
		&WorkoutPlan{}, &WorkoutExercise{},
		&DietPlan{}, &DietMeal{}, &MealFood{},
		&Assessment{}, &Message{},
		&FinancialPlan{}, &Invoice{},
	}
}
