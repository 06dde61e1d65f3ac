package services

import (
	"log"
	"misterfit_platform/misterfit/auth"
	"misterfit_platform/misterfit/genai"
	"misterfit_platform/utils"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"gorm.io/gorm"
)

type Platform struct {
	user       UserService
	exercise   ExerciseService
	workout    WorkoutService
	diet       DietService
	assessment AssessmentService
	chat       ChatService
	financial  FinancialService
	suggestion SuggestionService

	db *gorm.DB
}

func NewPlatform(db *gorm.DB, userAuth *auth.IdentityProvider, generator genai.Generator) Platform {
	return Platform{
		user:       UserService{db: db, userAuth: userAuth},
		exercise:   ExerciseService{db: db, userAuth: userAuth},
		workout:    WorkoutService{db: db, userAuth: userAuth},
		diet:       DietService{db: db, userAuth: userAuth},
		assessment: AssessmentService{db: db, userAuth: userAuth},
		chat:       ChatService{db: db, userAuth: userAuth},
		financial:  FinancialService{db: db, userAuth: userAuth},
		suggestion: SuggestionService{userAuth: userAuth, generator: generator},
		db:         db,
	}
}

func (p *Platform) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger: log.New(os.Stderr, "", log.LstdFlags), NoColor: false,
	}))

	r.Mount("/auth", p.user.AuthRoutes())
	r.Mount("/users", p.user.Routes())
	r.Mount("/workout-plans", p.workout.Routes())
	r.Mount("/diet-plans", p.diet.Routes())
	r.Mount("/exercises", p.exercise.Routes())
	r.Mount("/assessments", p.assessment.Routes())
	r.Mount("/financial", p.financial.Routes())
	r.Mount("/chat", p.chat.Routes())
	r.Mount("/ia", p.suggestion.Routes())

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		utils.WriteSuccess(w)
	})

	return r
}
