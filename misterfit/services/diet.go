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

type DietService struct {
	db       *gorm.DB
	userAuth *auth.IdentityProvider
}

func (s *DietService) Routes() chi.Router {
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

type MealFoodEntry struct {
	FoodName string `json:"food_name"`
	Quantity string `json:"quantity"`
	Calories string `json:"calories"`
	Macros   string `json:"macros"`
}

type DietMealEntry struct {
	MealTime    string          `json:"meal_time"`
	Description string          `json:"description"`
	Calories    *int            `json:"calories"`
	Foods       []MealFoodEntry `json:"foods"`
}

type dietPlanRequest struct {
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	ImageUrl     string          `json:"image_url"`
	TrainerEmail string          `json:"trainer_email"`
	StudentEmail string          `json:"student_email"`
	Meals        []DietMealEntry `json:"meals"`
}

type MealFoodInfo struct {
	Id       uuid.UUID `json:"id"`
	FoodName string    `json:"food_name"`
	Quantity string    `json:"quantity"`
	Calories string    `json:"calories"`
	Macros   string    `json:"macros"`
}

type DietMealInfo struct {
	Id          uuid.UUID      `json:"id"`
	MealTime    string         `json:"meal_time"`
	Description string         `json:"description"`
	Calories    *int           `json:"calories"`
	Position    int            `json:"position"`
	Foods       []MealFoodInfo `json:"foods"`
}

type DietPlanInfo struct {
	Id           uuid.UUID      `json:"id"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	ImageUrl     string         `json:"image_url"`
	TrainerId    uuid.UUID      `json:"trainer_id"`
	TrainerEmail string         `json:"trainer_email"`
	StudentId    *uuid.UUID     `json:"student_id"`
	Meals        []DietMealInfo `json:"meals"`
	CreatedAt    time.Time      `json:"created_at"`
}

func convertToDietPlanInfo(plan *schema.DietPlan) DietPlanInfo {
	meals := make([]DietMealInfo, 0, len(plan.Meals))
	for _, meal := range plan.Meals {
		foods := make([]MealFoodInfo, 0, len(meal.Foods))
		for _, food := range meal.Foods {
			foods = append(foods, MealFoodInfo{
				Id:       food.Id,
				FoodName: food.FoodName,
				Quantity: food.Quantity,
				Calories: food.Calories,
				Macros:   food.Macros,
			})
		}
		meals = append(meals, DietMealInfo{
			Id:          meal.Id,
			MealTime:    meal.MealTime,
			Description: meal.Description,
			Calories:    meal.Calories,
			Position:    meal.Position,
			Foods:       foods,
		})
	}

	return DietPlanInfo{
		Id:           plan.Id,
		Title:        plan.Title,
		Description:  plan.Description,
		ImageUrl:     plan.ImageUrl,
		TrainerId:    plan.TrainerId,
		TrainerEmail: plan.TrainerEmail,
		StudentId:    plan.StudentId,
		Meals:        meals,
		CreatedAt:    plan.CreatedAt,
	}
}

func buildDietMeals(txn *gorm.DB, planId uuid.UUID, meals []DietMealEntry) error {
	for position, meal := range meals {
		dietMeal := schema.DietMeal{
			Id:          uuid.New(),
			DietPlanId:  planId,
			MealTime:    meal.MealTime,
			Description: meal.Description,
			Calories:    meal.Calories,
			Position:    position,
		}
		result := txn.Create(&dietMeal)
		if result.Error != nil {
			slog.Error("sql error creating diet meal", "error", result.Error)
			return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
		}

		for _, food := range meal.Foods {
			mealFood := schema.MealFood{
				Id:         uuid.New(),
				DietMealId: dietMeal.Id,
				FoodName:   food.FoodName,
				Quantity:   food.Quantity,
				Calories:   food.Calories,
				Macros:     food.Macros,
			}
			result := txn.Create(&mealFood)
			if result.Error != nil {
				slog.Error("sql error creating meal food", "error", result.Error)
				return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
			}
		}
	}
	return nil
}

func deleteDietChildren(txn *gorm.DB, planId uuid.UUID) error {
	var meals []schema.DietMeal
	result := txn.Where("diet_plan_id = ?", planId).Find(&meals)
	if result.Error != nil {
		slog.Error("sql error listing diet meals for deletion", "plan_id", planId, "error", result.Error)
		return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
	}

	if len(meals) > 0 {
		mealIds := make([]uuid.UUID, 0, len(meals))
		for _, meal := range meals {
			mealIds = append(mealIds, meal.Id)
		}

		result = txn.Where("diet_meal_id IN ?", mealIds).Delete(&schema.MealFood{})
		if result.Error != nil {
			slog.Error("sql error deleting meal foods", "plan_id", planId, "error", result.Error)
			return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
		}

		result = txn.Where("diet_plan_id = ?", planId).Delete(&schema.DietMeal{})
		if result.Error != nil {
			slog.Error("sql error deleting diet meals", "plan_id", planId, "error", result.Error)
			return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
		}
	}

	return nil
}

func (s *DietService) Create(w http.ResponseWriter, r *http.Request) {
	var params dietPlanRequest
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

		plan := schema.DietPlan{
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
			slog.Error("sql error creating diet plan", "error", result.Error)
			return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
		}

		return buildDietMeals(txn, planId, params.Meals)
	})

	if err != nil {
		http.Error(w, fmt.Sprintf("error creating diet plan: %v", err), GetResponseCode(err))
		return
	}

	plan, err := schema.GetDietPlan(planId, s.db)
	if err != nil {
		http.Error(w, fmt.Sprintf("error retrieving created diet plan: %v", err), http.StatusInternalServerError)
		return
	}

	utils.WriteJsonResponseStatus(w, http.StatusCreated, convertToDietPlanInfo(&plan))
}

func (s *DietService) List(w http.ResponseWriter, r *http.Request) {
	user, err := auth.UserFromContext(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	query := s.db.Preload("Meals", func(db *gorm.DB) *gorm.DB {
		return db.Order("position asc")
	}).Preload("Meals.Foods").Order("created_at desc")

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

	var plans []schema.DietPlan
	result := query.Find(&plans)
	if result.Error != nil {
		slog.Error("sql error listing diet plans", "error", result.Error)
		http.Error(w, fmt.Sprintf("error listing diet plans: %v", schema.ErrDbAccessFailed), http.StatusInternalServerError)
		return
	}

	infos := make([]DietPlanInfo, 0, len(plans))
	for _, plan := range plans {
		infos = append(infos, convertToDietPlanInfo(&plan))
	}
	utils.WriteJsonResponse(w, infos)
}

func (s *DietService) Available(w http.ResponseWriter, r *http.Request) {
	query := s.db.Preload("Meals", func(db *gorm.DB) *gorm.DB {
		return db.Order("position asc")
	}).Preload("Meals.Foods").Where("student_id IS NULL")

	if trainerEmail := utils.QueryParam(r, "trainer_email"); trainerEmail != "" {
		query = query.Where("trainer_email = ?", schema.NormalizeEmail(trainerEmail))
	}

	var plans []schema.DietPlan
	result := query.Find(&plans)
	if result.Error != nil {
		slog.Error("sql error listing available diet plans", "error", result.Error)
		http.Error(w, fmt.Sprintf("error listing available diet plans: %v", schema.ErrDbAccessFailed), http.StatusInternalServerError)
		return
	}

	infos := make([]DietPlanInfo, 0, len(plans))
	for _, plan := range plans {
		infos = append(infos, convertToDietPlanInfo(&plan))
	}
	utils.WriteJsonResponse(w, infos)
}

func (s *DietService) Update(w http.ResponseWriter, r *http.Request) {
	planId, err := utils.URLParamUUID(r, "plan_id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var params dietPlanRequest
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
		plan, err := schema.GetDietPlan(planId, txn)
		if err != nil {
			if errors.Is(err, schema.ErrDietPlanNotFound) {
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

		updates := schema.DietPlan{
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
			slog.Error("sql error updating diet plan", "plan_id", planId, "error", result.Error)
			return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
		}

		if err := deleteDietChildren(txn, planId); err != nil {
			return err
		}

		return buildDietMeals(txn, planId, params.Meals)
	})

	if err != nil {
		http.Error(w, fmt.Sprintf("error updating diet plan: %v", err), GetResponseCode(err))
		return
	}

	plan, err := schema.GetDietPlan(planId, s.db)
	if err != nil {
		http.Error(w, fmt.Sprintf("error retrieving updated diet plan: %v", err), http.StatusInternalServerError)
		return
	}

	utils.WriteJsonResponse(w, convertToDietPlanInfo(&plan))
}

func (s *DietService) Delete(w http.ResponseWriter, r *http.Request) {
	planId, err := utils.URLParamUUID(r, "plan_id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	err = s.db.Transaction(func(txn *gorm.DB) error {
		if _, err := schema.GetDietPlan(planId, txn); err != nil {
			if errors.Is(err, schema.ErrDietPlanNotFound) {
				return CodedError(err, http.StatusNotFound)
			}
			return CodedError(err, http.StatusInternalServerError)
		}

		if err := deleteDietChildren(txn, planId); err != nil {
			return err
		}

		result := txn.Delete(&schema.DietPlan{Id: planId})
		if result.Error != nil {
			slog.Error("sql error deleting diet plan", "plan_id", planId, "error", result.Error)
			return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
		}

		return nil
	})

	if err != nil {
		http.Error(w, fmt.Sprintf("error deleting diet plan: %v", err), GetResponseCode(err))
		return
	}

	utils.WriteSuccess(w)
}

func (s *DietService) Assign(w http.ResponseWriter, r *http.Request) {
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

		if _, err := schema.GetDietPlan(planId, txn); err != nil {
			if errors.Is(err, schema.ErrDietPlanNotFound) {
				return CodedError(err, http.StatusNotFound)
			}
			return CodedError(err, http.StatusInternalServerError)
		}

		result := txn.Model(&schema.DietPlan{Id: planId}).Update("student_id", params.StudentId)
		if result.Error != nil {
			slog.Error("sql error assigning diet plan", "plan_id", planId, "error", result.Error)
			return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
		}

		return nil
	})

	if err != nil {
		http.Error(w, fmt.Sprintf("error assigning diet plan: %v", err), GetResponseCode(err))
		return
	}

	utils.WriteSuccess(w)
}

func (s *DietService) Unassign(w http.ResponseWriter, r *http.Request) {
	planId, err := utils.URLParamUUID(r, "plan_id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	err = s.db.Transaction(func(txn *gorm.DB) error {
		if _, err := schema.GetDietPlan(planId, txn); err != nil {
			if errors.Is(err, schema.ErrDietPlanNotFound) {
				return CodedError(err, http.StatusNotFound)
			}
			return CodedError(err, http.StatusInternalServerError)
		}

		result := txn.Model(&schema.DietPlan{Id: planId}).Update("student_id", nil)
		if result.Error != nil {
			slog.Error("sql error unassigning diet plan", "plan_id", planId, "error", result.Error)
			return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
		}

		return nil
	})

	if err != nil {
		http.Error(w, fmt.Sprintf("error unassigning diet plan: %v", err), GetResponseCode(err))
		return
	}

	utils.WriteSuccess(w)
}
