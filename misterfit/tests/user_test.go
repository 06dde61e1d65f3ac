package tests

import (
	"errors"
	"strings"
	"testing"
)

func TestRegisterAndLogin(t *testing.T) {
	env := setupTestEnv(t)

	c := env.newClient()
	login, err := c.register("ana", "ana@mail.com", "Ana_password1", "student")
	if err != nil {
		t.Fatal(err)
	}

	if err := c.login(login); err != nil {
		t.Fatal(err)
	}
	if c.authToken == "" {
		t.Fatal("expected login to return a token")
	}

	profile, err := c.profile()
	if err != nil {
		t.Fatal(err)
	}
	if profile.Email != "ana@mail.com" || profile.FullName != "ana" || profile.Role != "student" {
		t.Fatalf("unexpected profile: %+v", profile)
	}
	if !profile.IsActive {
		t.Fatal("new user should be active")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := setupTestEnv(t)

	c := env.newClient()
	if _, err := c.register("ana", "ana@mail.com", "Ana_password1", "student"); err != nil {
		t.Fatal(err)
	}

	_, err := c.register("ana2", "ana@mail.com", "Ana_password1", "student")
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	env := setupTestEnv(t)

	c := env.newClient()
	for _, password := range []string{"Ab1", "nouppercase1", "NODIGITSHERE"} {
		if _, err := c.register("ana", "ana@mail.com", password, "student"); err == nil {
			t.Fatalf("expected password '%v' to be rejected", password)
		}
	}
}

func TestEmailNormalizedOnRegisterAndLogin(t *testing.T) {
	env := setupTestEnv(t)

	c := env.newClient()
	if _, err := c.register("ana", "Ana@Mail.com", "Ana_password1", "student"); err != nil {
		t.Fatal(err)
	}

	if err := c.login(loginInfo{Email: "ana@mail.com", Password: "Ana_password1"}); err != nil {
		t.Fatalf("lowercase login should resolve a mixed case registration: %v", err)
	}

	profile, err := c.profile()
	if err != nil {
		t.Fatal(err)
	}
	if profile.Email != "ana@mail.com" {
		t.Fatalf("expected stored email to be lowercased, got '%v'", profile.Email)
	}

	if err := c.login(loginInfo{Email: "ANA@MAIL.COM", Password: "Ana_password1"}); err != nil {
		t.Fatalf("uppercase login should resolve the same account: %v", err)
	}

	_, err = c.register("ana2", "ANA@mail.com", "Ana_password1", "student")
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict for same email in a different case, got %v", err)
	}
}

func TestRegisterNormalizesLegacyRoles(t *testing.T) {
	env := setupTestEnv(t)

	c := env.newClient()
	login, err := c.register("joao", "joao@mail.com", "Joao_password1", "personal")
	if err != nil {
		t.Fatal(err)
	}
	if err := c.login(login); err != nil {
		t.Fatal(err)
	}

	profile, err := c.profile()
	if err != nil {
		t.Fatal(err)
	}
	if profile.Role != "trainer" {
		t.Fatalf("expected role 'personal' to normalize to 'trainer', got '%v'", profile.Role)
	}
}

func TestLoginFailures(t *testing.T) {
	env := setupTestEnv(t)

	c := env.newClient()
	login, err := c.register("ana", "ana@mail.com", "Ana_password1", "student")
	if err != nil {
		t.Fatal(err)
	}

	err = c.login(loginInfo{Email: "missing@mail.com", Password: "Ana_password1"})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected unauthorized for unknown email, got %v", err)
	}

	err = c.login(loginInfo{Email: login.Email, Password: "Wrong_password1"})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected unauthorized for bad password, got %v", err)
	}
}

func TestDeactivatedUserCannotLogin(t *testing.T) {
	env := setupTestEnv(t)

	student := env.newUser(t, "ana", "student")
	admin := env.adminClient(t)

	active := false
	if _, err := admin.updateUser(student.userId, map[string]interface{}{"is_active": &active}); err != nil {
		t.Fatal(err)
	}

	err := env.newClient().login(loginInfo{Email: "ana@mail.com", Password: "ana_Password1"})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected unauthorized for deactivated user, got %v", err)
	}
}

func TestShareCodeGeneratedOnFirstProfileUpdate(t *testing.T) {
	env := setupTestEnv(t)

	student := env.newUser(t, "ana", "student")

	profile, err := student.profile()
	if err != nil {
		t.Fatal(err)
	}
	if profile.ShareCode != nil {
		t.Fatal("share code should not exist before the first profile update")
	}

	updated, err := student.updateProfile(map[string]interface{}{"city": "Fortaleza"})
	if err != nil {
		t.Fatal(err)
	}
	if updated.ShareCode == nil || len(*updated.ShareCode) != 8 {
		t.Fatalf("expected an 8 character share code, got %+v", updated.ShareCode)
	}
	if updated.City != "Fortaleza" {
		t.Fatalf("expected city update to apply, got '%v'", updated.City)
	}

	again, err := student.updateProfile(map[string]interface{}{"bio": "oi"})
	if err != nil {
		t.Fatal(err)
	}
	if again.ShareCode == nil || *again.ShareCode != *updated.ShareCode {
		t.Fatal("share code should be stable across updates")
	}
	if again.City != "Fortaleza" {
		t.Fatal("fields omitted from the update should be preserved")
	}
}

func TestLinkStudentByShareCode(t *testing.T) {
	env := setupTestEnv(t)

	student := env.newUser(t, "ana", "student")
	trainer := env.newUser(t, "joao", "trainer")

	profile, err := student.updateProfile(map[string]interface{}{"city": "Recife"})
	if err != nil {
		t.Fatal(err)
	}

	linked, err := trainer.linkStudent("  " + *profile.ShareCode + " ")
	if err != nil {
		t.Fatal(err)
	}
	if linked.LinkedTrainerEmail == nil || *linked.LinkedTrainerEmail != trainer.email {
		t.Fatalf("expected student linked to %v, got %+v", trainer.email, linked.LinkedTrainerEmail)
	}

	other := env.newUser(t, "maria", "student")
	otherProfile, err := other.updateProfile(map[string]interface{}{})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := trainer.linkStudent(strings.ToLower(*otherProfile.ShareCode)); err != nil {
		t.Fatalf("lowercase share code should link: %v", err)
	}

	students, err := trainer.linkedStudents()
	if err != nil {
		t.Fatal(err)
	}
	if len(students) != 2 {
		t.Fatalf("unexpected linked students: %+v", students)
	}
}

func TestLinkStudentConflicts(t *testing.T) {
	env := setupTestEnv(t)

	student := env.newUser(t, "ana", "student")
	trainer := env.newUser(t, "joao", "trainer")
	other := env.newUser(t, "carlos", "trainer")

	profile, err := student.updateProfile(map[string]interface{}{})
	if err != nil {
		t.Fatal(err)
	}
	code := *profile.ShareCode

	if _, err := trainer.linkStudent(code); err != nil {
		t.Fatal(err)
	}

	if _, err := trainer.linkStudent(code); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict when relinking the same student, got %v", err)
	}
	if _, err := other.linkStudent(code); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict when the student belongs to another trainer, got %v", err)
	}
	if _, err := trainer.linkStudent("NOPE1234"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found for unknown share code, got %v", err)
	}
}

func TestLinkStudentRequiresTrainerRole(t *testing.T) {
	env := setupTestEnv(t)

	student := env.newUser(t, "ana", "student")
	if _, err := student.linkStudent("ABCD1234"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden for student, got %v", err)
	}
	if _, err := student.linkedStudents(); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden for student, got %v", err)
	}
}

func TestGetStudent(t *testing.T) {
	env := setupTestEnv(t)

	student := env.newUser(t, "ana", "student")
	trainer := env.newUser(t, "joao", "trainer")

	profile, err := trainer.getStudent(student.userId)
	if err != nil {
		t.Fatal(err)
	}
	if profile.Email != "ana@mail.com" {
		t.Fatalf("unexpected student profile: %+v", profile)
	}

	// Trainers are not retrievable through the student endpoint.
	if _, err := student.getStudent(trainer.userId); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found for non student id, got %v", err)
	}
}

func TestUserAdministration(t *testing.T) {
	env := setupTestEnv(t)

	student := env.newUser(t, "ana", "student")
	admin := env.adminClient(t)

	if _, err := student.listUsers(); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden for non admin, got %v", err)
	}

	users, err := admin.listUsers()
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 2 {
		t.Fatalf("expected admin and student, got %d users", len(users))
	}

	role := "trainer"
	updated, err := admin.updateUser(student.userId, map[string]interface{}{"role": &role})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Role != "trainer" {
		t.Fatalf("expected role update to apply, got '%v'", updated.Role)
	}
}

func TestEndpointsRequireAuth(t *testing.T) {
	env := setupTestEnv(t)

	c := env.newClient()
	if _, err := c.profile(); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if _, err := c.listWorkoutPlans(""); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if _, err := c.unreadCount(); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}
