package tests

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func workoutPlanBody(trainerEmail string) map[string]interface{} {
	return map[string]interface{}{
		"title":         "Treino A",
		"description":   "Peito e ombro",
		"trainer_email": trainerEmail,
		"exercises": []map[string]interface{}{
			{"exercise_name": "Supino reto", "sets": 4, "reps": "8-10", "rest_interval": "90s"},
			{"exercise_name": "Desenvolvimento", "sets": 3, "reps": "12", "execution_notes": "cotovelos fechados"},
		},
	}
}

func TestCreateWorkoutPlan(t *testing.T) {
	env := setupTestEnv(t)

	trainer := env.newUser(t, "joao", "trainer")

	plan, err := trainer.createWorkoutPlan(workoutPlanBody(trainer.email))
	if err != nil {
		t.Fatal(err)
	}

	if plan.Title != "Treino A" || plan.TrainerEmail != trainer.email {
		t.Fatalf("unexpected plan: %+v", plan)
	}
	if plan.StudentId != nil {
		t.Fatal("plan without student_email should be unassigned")
	}
	if len(plan.Exercises) != 2 {
		t.Fatalf("expected 2 exercises, got %d", len(plan.Exercises))
	}
	if plan.Exercises[0].ExerciseName != "Supino reto" || plan.Exercises[1].ExerciseName != "Desenvolvimento" {
		t.Fatalf("exercises out of order: %+v", plan.Exercises)
	}
	if plan.Exercises[0].Position != 0 || plan.Exercises[1].Position != 1 {
		t.Fatalf("unexpected positions: %+v", plan.Exercises)
	}

	// Exercises referenced by name are created in the catalog on demand.
	catalog, err := trainer.listExercises()
	if err != nil {
		t.Fatal(err)
	}
	if len(catalog) != 2 {
		t.Fatalf("expected 2 catalog exercises, got %d", len(catalog))
	}
}

func TestListWorkoutPlans(t *testing.T) {
	env := setupTestEnv(t)

	trainer := env.newUser(t, "joao", "trainer")
	other := env.newUser(t, "carlos", "trainer")

	if _, err := trainer.createWorkoutPlan(workoutPlanBody(trainer.email)); err != nil {
		t.Fatal(err)
	}
	if _, err := other.createWorkoutPlan(workoutPlanBody(other.email)); err != nil {
		t.Fatal(err)
	}

	// Default listing is scoped to the requester.
	plans, err := trainer.listWorkoutPlans("")
	if err != nil {
		t.Fatal(err)
	}
	if len(plans) != 1 || plans[0].TrainerEmail != trainer.email {
		t.Fatalf("unexpected plans: %+v", plans)
	}

	plans, err = trainer.listWorkoutPlans("?trainer_email=" + other.email)
	if err != nil {
		t.Fatal(err)
	}
	if len(plans) != 1 || plans[0].TrainerEmail != other.email {
		t.Fatalf("unexpected plans for trainer_email filter: %+v", plans)
	}
}

func TestAssignAndUnassignWorkoutPlan(t *testing.T) {
	env := setupTestEnv(t)

	trainer := env.newUser(t, "joao", "trainer")
	student := env.newUser(t, "ana", "student")

	plan, err := trainer.createWorkoutPlan(workoutPlanBody(trainer.email))
	if err != nil {
		t.Fatal(err)
	}

	available, err := trainer.availableWorkoutPlans()
	if err != nil {
		t.Fatal(err)
	}
	if len(available) != 1 {
		t.Fatalf("expected 1 available plan, got %d", len(available))
	}

	if err := trainer.assignWorkoutPlan(plan.Id, student.userId); err != nil {
		t.Fatal(err)
	}

	plans, err := student.listWorkoutPlans("?student_id=" + student.userId)
	if err != nil {
		t.Fatal(err)
	}
	if len(plans) != 1 || plans[0].StudentId == nil || plans[0].StudentId.String() != student.userId {
		t.Fatalf("expected plan assigned to student, got %+v", plans)
	}

	available, err = trainer.availableWorkoutPlans()
	if err != nil {
		t.Fatal(err)
	}
	if len(available) != 0 {
		t.Fatal("assigned plan should not be listed as available")
	}

	// Unassign is idempotent.
	for i := 0; i < 2; i++ {
		if err := trainer.unassignWorkoutPlan(plan.Id); err != nil {
			t.Fatal(err)
		}
	}

	available, err = trainer.availableWorkoutPlans()
	if err != nil {
		t.Fatal(err)
	}
	if len(available) != 1 {
		t.Fatal("unassigned plan should be available again")
	}
}

func TestAssignWorkoutPlanValidation(t *testing.T) {
	env := setupTestEnv(t)

	trainer := env.newUser(t, "joao", "trainer")
	student := env.newUser(t, "ana", "student")

	plan, err := trainer.createWorkoutPlan(workoutPlanBody(trainer.email))
	if err != nil {
		t.Fatal(err)
	}

	err = trainer.assignWorkoutPlan(plan.Id, uuid.NewString())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found for unknown student, got %v", err)
	}

	err = trainer.assignWorkoutPlan(uuid.New(), student.userId)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found for unknown plan, got %v", err)
	}
}

func TestUpdateWorkoutPlanReplacesExercises(t *testing.T) {
	env := setupTestEnv(t)

	trainer := env.newUser(t, "joao", "trainer")

	plan, err := trainer.createWorkoutPlan(workoutPlanBody(trainer.email))
	if err != nil {
		t.Fatal(err)
	}

	body := map[string]interface{}{
		"title":         "Treino B",
		"trainer_email": trainer.email,
		"exercises": []map[string]interface{}{
			{"exercise_name": "Agachamento", "sets": 5, "reps": "5"},
		},
	}

	updated, err := trainer.updateWorkoutPlan(plan.Id, body)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Title != "Treino B" {
		t.Fatalf("expected title update, got '%v'", updated.Title)
	}
	if len(updated.Exercises) != 1 || updated.Exercises[0].ExerciseName != "Agachamento" {
		t.Fatalf("expected exercises to be replaced, got %+v", updated.Exercises)
	}
	if !updated.CreatedAt.Equal(plan.CreatedAt) {
		t.Fatal("update should preserve the creation time")
	}
}

func TestDeleteWorkoutPlan(t *testing.T) {
	env := setupTestEnv(t)

	trainer := env.newUser(t, "joao", "trainer")

	plan, err := trainer.createWorkoutPlan(workoutPlanBody(trainer.email))
	if err != nil {
		t.Fatal(err)
	}

	if err := trainer.deleteWorkoutPlan(plan.Id); err != nil {
		t.Fatal(err)
	}

	plans, err := trainer.listWorkoutPlans("")
	if err != nil {
		t.Fatal(err)
	}
	if len(plans) != 0 {
		t.Fatalf("expected no plans after delete, got %+v", plans)
	}

	if err := trainer.deleteWorkoutPlan(plan.Id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found for deleted plan, got %v", err)
	}
}
