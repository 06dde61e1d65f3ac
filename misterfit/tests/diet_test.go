package tests

import (
	"errors"
	"testing"
)

func dietPlanBody(trainerEmail string) map[string]interface{} {
	return map[string]interface{}{
		"title":         "Dieta de volume",
		"description":   "3000 kcal",
		"trainer_email": trainerEmail,
		"meals": []map[string]interface{}{
			{
				"meal_time":   "08:00",
				"description": "Café da manhã",
				"calories":    600,
				"foods": []map[string]interface{}{
					{"food_name": "Ovos", "quantity": "4 unidades", "calories": "280"},
					{"food_name": "Aveia", "quantity": "80g", "macros": "52C/11P/7G"},
				},
			},
			{
				"meal_time":   "12:00",
				"description": "Almoço",
				"foods": []map[string]interface{}{
					{"food_name": "Frango", "quantity": "200g"},
				},
			},
		},
	}
}

func TestCreateDietPlan(t *testing.T) {
	env := setupTestEnv(t)

	trainer := env.newUser(t, "joao", "trainer")

	plan, err := trainer.createDietPlan(dietPlanBody(trainer.email))
	if err != nil {
		t.Fatal(err)
	}

	if plan.Title != "Dieta de volume" || plan.TrainerEmail != trainer.email {
		t.Fatalf("unexpected plan: %+v", plan)
	}
	if len(plan.Meals) != 2 {
		t.Fatalf("expected 2 meals, got %d", len(plan.Meals))
	}
	if plan.Meals[0].Description != "Café da manhã" || plan.Meals[1].Description != "Almoço" {
		t.Fatalf("meals out of order: %+v", plan.Meals)
	}
	if plan.Meals[0].Calories == nil || *plan.Meals[0].Calories != 600 {
		t.Fatalf("expected first meal calories 600, got %+v", plan.Meals[0].Calories)
	}
	if len(plan.Meals[0].Foods) != 2 || len(plan.Meals[1].Foods) != 1 {
		t.Fatalf("unexpected foods: %+v", plan.Meals)
	}
	if plan.Meals[0].Foods[0].FoodName != "Ovos" {
		t.Fatalf("unexpected first food: %+v", plan.Meals[0].Foods[0])
	}
}

func TestDietPlanAssignmentFlow(t *testing.T) {
	env := setupTestEnv(t)

	trainer := env.newUser(t, "joao", "trainer")
	student := env.newUser(t, "ana", "student")

	plan, err := trainer.createDietPlan(dietPlanBody(trainer.email))
	if err != nil {
		t.Fatal(err)
	}

	available, err := trainer.availableDietPlans()
	if err != nil {
		t.Fatal(err)
	}
	if len(available) != 1 {
		t.Fatalf("expected 1 available plan, got %d", len(available))
	}

	if err := trainer.assignDietPlan(plan.Id, student.userId); err != nil {
		t.Fatal(err)
	}

	plans, err := student.listDietPlans("?student_id=" + student.userId)
	if err != nil {
		t.Fatal(err)
	}
	if len(plans) != 1 || plans[0].StudentId == nil || plans[0].StudentId.String() != student.userId {
		t.Fatalf("expected plan assigned to student, got %+v", plans)
	}

	if err := trainer.unassignDietPlan(plan.Id); err != nil {
		t.Fatal(err)
	}

	available, err = trainer.availableDietPlans()
	if err != nil {
		t.Fatal(err)
	}
	if len(available) != 1 {
		t.Fatal("unassigned plan should be available again")
	}
}

func TestUpdateDietPlanReplacesMeals(t *testing.T) {
	env := setupTestEnv(t)

	trainer := env.newUser(t, "joao", "trainer")

	plan, err := trainer.createDietPlan(dietPlanBody(trainer.email))
	if err != nil {
		t.Fatal(err)
	}

	body := map[string]interface{}{
		"title":         "Dieta de cutting",
		"trainer_email": trainer.email,
		"meals": []map[string]interface{}{
			{
				"meal_time":   "07:00",
				"description": "Jejum quebrado",
				"foods": []map[string]interface{}{
					{"food_name": "Iogurte", "quantity": "200g"},
				},
			},
		},
	}

	updated, err := trainer.updateDietPlan(plan.Id, body)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Title != "Dieta de cutting" {
		t.Fatalf("expected title update, got '%v'", updated.Title)
	}
	if len(updated.Meals) != 1 || updated.Meals[0].Description != "Jejum quebrado" {
		t.Fatalf("expected meals to be replaced, got %+v", updated.Meals)
	}
}

func TestDeleteDietPlan(t *testing.T) {
	env := setupTestEnv(t)

	trainer := env.newUser(t, "joao", "trainer")

	plan, err := trainer.createDietPlan(dietPlanBody(trainer.email))
	if err != nil {
		t.Fatal(err)
	}

	if err := trainer.deleteDietPlan(plan.Id); err != nil {
		t.Fatal(err)
	}

	if err := trainer.deleteDietPlan(plan.Id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found for deleted plan, got %v", err)
	}
}
