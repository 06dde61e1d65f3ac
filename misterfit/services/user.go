package services

import (
	"errors"
	"fmt"
	"log/slog"
	"misterfit_platform/misterfit/auth"
	"misterfit_platform/misterfit/billing"
	"misterfit_platform/misterfit/schema"
	"misterfit_platform/utils"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserService struct {
	db       *gorm.DB
	userAuth *auth.IdentityProvider
}

// AuthRoutes covers registration, login, and the logged-in user's profile.
func (s *UserService) AuthRoutes() chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Post("/register", s.Register)
		r.Post("/login", s.Login)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.userAuth.AuthMiddleware()...)

		r.Get("/profile", s.GetProfile)
		r.Put("/profile", s.UpdateProfile)
	})

	return r
}

// Routes covers user administration and trainer/student linking.
func (s *UserService) Routes() chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(s.userAuth.AuthMiddleware()...)

		r.Get("/students/{student_id}", s.GetStudent)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.userAuth.AuthMiddleware()...)
		r.Use(auth.TrainerOnly())

		r.Get("/students/linked", s.GetLinkedStudents)
		r.Post("/students/link", s.LinkStudent)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.userAuth.AuthMiddleware()...)
		r.Use(auth.AdminOnly())

		r.Get("/", s.List)
		r.Put("/{user_id}", s.UpdateUser)
	})

	return r
}

type UserProfile struct {
	Id                 uuid.UUID `json:"id"`
	FullName           string    `json:"full_name"`
	Email              string    `json:"email"`
	Role               string    `json:"role"`
	ShareCode          *string   `json:"share_code"`
	LinkedTrainerEmail *string   `json:"linked_trainer_email"`
	Phone              string    `json:"phone"`
	Birthdate          string    `json:"birthdate"`
	Gender             string    `json:"gender"`
	City               string    `json:"city"`
	Bio                string    `json:"bio"`
	ProfilePhoto       string    `json:"profile_photo"`
	IsActive           bool      `json:"is_active"`
	CreatedAt          time.Time `json:"created_at"`
}

func convertToProfile(user *schema.User) UserProfile {
	return UserProfile{
		Id:                 user.Id,
		FullName:           user.FullName,
		Email:              user.Email,
		Role:               user.Role,
		ShareCode:          user.ShareCode,
		LinkedTrainerEmail: user.LinkedTrainerEmail,
		Phone:              user.Phone,
		Birthdate:          user.Birthdate,
		Gender:             user.Gender,
		City:               user.City,
		Bio:                user.Bio,
		ProfilePhoto:       user.ProfilePhoto,
		IsActive:           user.IsActive,
		CreatedAt:          user.CreatedAt,
	}
}

type registerRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type registerResponse struct {
	UserId uuid.UUID `json:"user_id"`
}

func (s *UserService) Register(w http.ResponseWriter, r *http.Request) {
	var params registerRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	if params.FullName == "" || params.Email == "" || params.Password == "" {
		http.Error(w, "full_name, email, and password are required", http.StatusBadRequest)
		return
	}

	if err := validatePassword(params.Password); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	userId, err := s.userAuth.CreateUser(params.FullName, params.Email, params.Password, params.Role)
	if err != nil {
		responseCode := http.StatusInternalServerError
		switch {
		case errors.Is(err, schema.ErrEmailAlreadyInUse):
			responseCode = http.StatusConflict
		case errors.Is(err, auth.ErrInvalidRole):
			responseCode = http.StatusBadRequest
		}
		http.Error(w, err.Error(), responseCode)
		return
	}

	utils.WriteJsonResponseStatus(w, http.StatusCreated, registerResponse{UserId: userId})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string      `json:"token"`
	User  UserProfile `json:"user"`
}

func (s *UserService) Login(w http.ResponseWriter, r *http.Request) {
	var params loginRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	if params.Email == "" || params.Password == "" {
		http.Error(w, "email and password are required", http.StatusBadRequest)
		return
	}

	login, err := s.userAuth.LoginWithEmail(params.Email, params.Password)
	if err != nil {
		responseCode := http.StatusInternalServerError
		switch {
		case errors.Is(err, auth.ErrUserNotFoundWithEmail),
			errors.Is(err, auth.ErrInvalidCredentials),
			errors.Is(err, auth.ErrUserDeactivated):
			responseCode = http.StatusUnauthorized
		}
		http.Error(w, fmt.Sprintf("login failed: %v", err), responseCode)
		return
	}

	res := loginResponse{Token: login.AccessToken, User: convertToProfile(&login.User)}
	utils.WriteJsonResponse(w, res)
}

func (s *UserService) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, err := auth.UserFromContext(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	utils.WriteJsonResponse(w, convertToProfile(&user))
}

type updateProfileRequest struct {
	FullName     *string `json:"full_name"`
	Phone        *string `json:"phone"`
	Birthdate    *string `json:"birthdate"`
	Gender       *string `json:"gender"`
	City         *string `json:"city"`
	Bio          *string `json:"bio"`
	ProfilePhoto *string `json:"profile_photo"`
	Role         *string `json:"role"`
}

func (s *UserService) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, err := auth.UserFromContext(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var params updateProfileRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	var updated schema.User
	err = s.db.Transaction(func(txn *gorm.DB) error {
		current, err := schema.GetUser(user.Id, txn)
		if err != nil {
			return CodedError(err, http.StatusInternalServerError)
		}

		if params.FullName != nil {
			current.FullName = *params.FullName
		}
		if params.Phone != nil {
			current.Phone = *params.Phone
		}
		if params.Birthdate != nil {
			current.Birthdate = *params.Birthdate
		}
		if params.Gender != nil {
			current.Gender = *params.Gender
		}
		if params.City != nil {
			current.City = *params.City
		}
		if params.Bio != nil {
			current.Bio = *params.Bio
		}
		if params.ProfilePhoto != nil {
			current.ProfilePhoto = *params.ProfilePhoto
		}
		if params.Role != nil {
			role := schema.NormalizeRole(*params.Role)
			if !schema.ValidRole(role) {
				return CodedError(auth.ErrInvalidRole, http.StatusBadRequest)
			}
			current.Role = role
		}

		// The share code is generated lazily on the first profile update and
		// is stable afterwards.
		if current.ShareCode == nil {
			code, err := billing.NewShareCode()
			if err != nil {
				return CodedError(err, http.StatusInternalServerError)
			}
			current.ShareCode = &code
		}

		result := txn.Save(&current)
		if result.Error != nil {
			slog.Error("sql error updating user profile", "user_id", user.Id, "error", result.Error)
			return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
		}

		updated = current
		return nil
	})

	if err != nil {
		http.Error(w, fmt.Sprintf("error updating profile: %v", err), GetResponseCode(err))
		return
	}

	utils.WriteJsonResponse(w, convertToProfile(&updated))
}

func (s *UserService) GetLinkedStudents(w http.ResponseWriter, r *http.Request) {
	trainer, err := auth.UserFromContext(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var students []schema.User
	result := s.db.
		Where("role = ?", schema.RoleStudent).
		Where("linked_trainer_email = ?", trainer.Email).
		Where("is_active = ?", true).
		Find(&students)
	if result.Error != nil {
		slog.Error("sql error listing linked students", "trainer_email", trainer.Email, "error", result.Error)
		http.Error(w, fmt.Sprintf("error listing linked students: %v", schema.ErrDbAccessFailed), http.StatusInternalServerError)
		return
	}

	profiles := make([]UserProfile, 0, len(students))
	for _, student := range students {
		profiles = append(profiles, convertToProfile(&student))
	}
	utils.WriteJsonResponse(w, profiles)
}

func (s *UserService) GetStudent(w http.ResponseWriter, r *http.Request) {
	studentId, err := utils.URLParamUUID(r, "student_id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var student schema.User
	result := s.db.First(&student, "id = ? AND role = ?", studentId, schema.RoleStudent)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			http.Error(w, "student not found", http.StatusNotFound)
			return
		}
		slog.Error("sql error retrieving student", "student_id", studentId, "error", result.Error)
		http.Error(w, fmt.Sprintf("error retrieving student: %v", schema.ErrDbAccessFailed), http.StatusInternalServerError)
		return
	}

	utils.WriteJsonResponse(w, convertToProfile(&student))
}

type linkStudentRequest struct {
	ShareCode string `json:"share_code"`
}

func (s *UserService) LinkStudent(w http.ResponseWriter, r *http.Request) {
	trainer, err := auth.UserFromContext(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var params linkStudentRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	code := strings.ToUpper(strings.TrimSpace(params.ShareCode))
	if code == "" {
		http.Error(w, "share_code is required", http.StatusBadRequest)
		return
	}

	var linked schema.User
	err = s.db.Transaction(func(txn *gorm.DB) error {
		var student schema.User
		result := txn.Limit(1).Find(&student, "role = ? AND share_code = ?", schema.RoleStudent, code)
		if result.Error != nil {
			slog.Error("sql error looking up student by share code", "error", result.Error)
			return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
		}
		if result.RowsAffected == 0 {
			return CodedError(schema.ErrShareCodeNotFound, http.StatusNotFound)
		}

		if student.LinkedTrainerEmail != nil {
			if *student.LinkedTrainerEmail == trainer.Email {
				return CodedError(errors.New("student is already linked to you"), http.StatusConflict)
			}
			return CodedError(errors.New("student is already linked to another trainer"), http.StatusConflict)
		}

		student.LinkedTrainerEmail = &trainer.Email
		result = txn.Save(&student)
		if result.Error != nil {
			slog.Error("sql error linking student to trainer", "student_id", student.Id, "error", result.Error)
			return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
		}

		linked = student
		return nil
	})

	if err != nil {
		http.Error(w, fmt.Sprintf("error linking student: %v", err), GetResponseCode(err))
		return
	}

	slog.Info("linked student to trainer", "student_id", linked.Id, "trainer_email", trainer.Email)

	utils.WriteJsonResponse(w, convertToProfile(&linked))
}

func (s *UserService) List(w http.ResponseWriter, r *http.Request) {
	var users []schema.User
	result := s.db.Order("created_at desc").Find(&users)
	if result.Error != nil {
		slog.Error("sql error listing users", "error", result.Error)
		http.Error(w, fmt.Sprintf("error listing users: %v", schema.ErrDbAccessFailed), http.StatusInternalServerError)
		return
	}

	profiles := make([]UserProfile, 0, len(users))
	for _, user := range users {
		profiles = append(profiles, convertToProfile(&user))
	}
	utils.WriteJsonResponse(w, profiles)
}

type updateUserRequest struct {
	Role     *string `json:"role"`
	IsActive *bool   `json:"is_active"`
}

func (s *UserService) UpdateUser(w http.ResponseWriter, r *http.Request) {
	userId, err := utils.URLParamUUID(r, "user_id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var params updateUserRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	var updated schema.User
	err = s.db.Transaction(func(txn *gorm.DB) error {
		user, err := schema.GetUser(userId, txn)
		if err != nil {
			if errors.Is(err, schema.ErrUserNotFound) {
				return CodedError(err, http.StatusNotFound)
			}
			return CodedError(err, http.StatusInternalServerError)
		}

		if params.Role != nil {
			role := schema.NormalizeRole(*params.Role)
			if !schema.ValidRole(role) {
				return CodedError(auth.ErrInvalidRole, http.StatusBadRequest)
			}
			user.Role = role
		}
		if params.IsActive != nil {
			user.IsActive = *params.IsActive
		}

		result := txn.Save(&user)
		if result.Error != nil {
			slog.Error("sql error updating user", "user_id", userId, "error", result.Error)
			return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
		}

		updated = user
		return nil
	})

	if err != nil {
		http.Error(w, fmt.Sprintf("error updating user %v: %v", userId, err), GetResponseCode(err))
		return
	}

	utils.WriteJsonResponse(w, convertToProfile(&updated))
}
