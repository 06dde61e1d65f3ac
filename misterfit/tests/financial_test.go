package tests

import (
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"
)

func planBody(studentEmail string, amount float64, period, dueDate string) map[string]interface{} {
	return map[string]interface{}{
		"student_email":  studentEmail,
		"amount":         amount,
		"payment_period": period,
		"next_due_date":  dueDate,
	}
}

func futureDate(days int) string {
	return time.Now().UTC().AddDate(0, 0, days).Format("2006-01-02")
}

func TestUpsertFinancialPlan(t *testing.T) {
	env := setupTestEnv(t)

	trainer := env.newUser(t, "joao", "trainer")

	plan, err := trainer.upsertFinancialPlan(planBody("ana@mail.com", 150, "monthly", futureDate(30)))
	if err != nil {
		t.Fatal(err)
	}
	if plan.Amount != 150 || plan.PaymentPeriod != "monthly" || plan.Status != "active" {
		t.Fatalf("unexpected plan: %+v", plan)
	}
	if plan.TrainerEmail != trainer.email {
		t.Fatalf("expected trainer email from context, got '%v'", plan.TrainerEmail)
	}

	// A second upsert for the same student updates in place.
	updated, err := trainer.upsertFinancialPlan(planBody("ana@mail.com", 200, "semanal", futureDate(7)))
	if err != nil {
		t.Fatal(err)
	}
	if updated.Id != plan.Id {
		t.Fatal("upsert should reuse the existing plan")
	}
	if updated.Amount != 200 || updated.PaymentPeriod != "weekly" {
		t.Fatalf("expected amount and normalized period to update, got %+v", updated)
	}

	plans, err := trainer.listFinancialPlans("")
	if err != nil {
		t.Fatal(err)
	}
	if len(plans) != 1 {
		t.Fatalf("expected 1 plan, got %d", len(plans))
	}
}

func TestUpsertFinancialPlanValidation(t *testing.T) {
	env := setupTestEnv(t)

	trainer := env.newUser(t, "joao", "trainer")

	if _, err := trainer.upsertFinancialPlan(planBody("", 150, "monthly", futureDate(30))); err == nil {
		t.Fatal("expected error for missing student email")
	}
	if _, err := trainer.upsertFinancialPlan(planBody("ana@mail.com", 150, "fortnightly", futureDate(30))); err == nil {
		t.Fatal("expected error for unknown period")
	}
	if _, err := trainer.upsertFinancialPlan(planBody("ana@mail.com", 150, "monthly", "not-a-date")); err == nil {
		t.Fatal("expected error for malformed date")
	}
}

func TestPlanOverdueDerivedOnRead(t *testing.T) {
	env := setupTestEnv(t)

	trainer := env.newUser(t, "joao", "trainer")

	if _, err := trainer.upsertFinancialPlan(planBody("ana@mail.com", 150, "monthly", "2020-01-01")); err != nil {
		t.Fatal(err)
	}

	plans, err := trainer.listFinancialPlans("")
	if err != nil {
		t.Fatal(err)
	}
	if len(plans) != 1 || plans[0].Status != "overdue" {
		t.Fatalf("expected overdue status for past due date, got %+v", plans)
	}
}

func TestMarkPlanAsPaidAdvancesDueDate(t *testing.T) {
	env := setupTestEnv(t)

	trainer := env.newUser(t, "joao", "trainer")

	plan, err := trainer.upsertFinancialPlan(planBody("ana@mail.com", 150, "monthly", "2020-01-15"))
	if err != nil {
		t.Fatal(err)
	}

	paid, err := trainer.markPlanAsPaid(plan.Id, "")
	if err != nil {
		t.Fatal(err)
	}

	expected := time.Date(2020, 2, 15, 0, 0, 0, 0, time.UTC)
	if !paid.NextDueDate.Equal(expected) {
		t.Fatalf("expected next due date %v, got %v", expected, paid.NextDueDate)
	}

	// Overriding the period for a single payment.
	paid, err = trainer.markPlanAsPaid(plan.Id, "weekly")
	if err != nil {
		t.Fatal(err)
	}
	expected = expected.AddDate(0, 0, 7)
	if !paid.NextDueDate.Equal(expected) {
		t.Fatalf("expected next due date %v, got %v", expected, paid.NextDueDate)
	}
}

func TestCreateInvoice(t *testing.T) {
	env := setupTestEnv(t)

	trainer := env.newUser(t, "joao", "trainer")

	invoice, err := trainer.createInvoice(map[string]interface{}{
		"student_email": "ana@mail.com",
		"amount":        150.0,
		"description":   "Mensalidade de agosto",
		"due_date":      futureDate(10),
	})
	if err != nil {
		t.Fatal(err)
	}

	if invoice.Status != "pending" {
		t.Fatalf("expected pending status, got '%v'", invoice.Status)
	}
	if invoice.PaymentMethod != "PIX" {
		t.Fatalf("expected default payment method PIX, got '%v'", invoice.PaymentMethod)
	}
	if matched, _ := regexp.MatchString(`^INV-\d+-[0-9a-z]{9}$`, invoice.InvoiceNumber); !matched {
		t.Fatalf("unexpected invoice number '%v'", invoice.InvoiceNumber)
	}
	if invoice.PaymentLink != "https://misterfit.com/pay/"+invoice.InvoiceNumber {
		t.Fatalf("unexpected payment link '%v'", invoice.PaymentLink)
	}
	if !strings.Contains(invoice.PixCode, "ana@mail.com") {
		t.Fatalf("pix code should embed the student email, got '%v'", invoice.PixCode)
	}
	if invoice.PaymentDate != nil {
		t.Fatal("pending invoice should have no payment date")
	}
}

func TestInvoiceStatusTransitions(t *testing.T) {
	env := setupTestEnv(t)

	trainer := env.newUser(t, "joao", "trainer")

	invoice, err := trainer.createInvoice(map[string]interface{}{
		"student_email": "ana@mail.com",
		"amount":        150.0,
		"description":   "Mensalidade",
		"due_date":      futureDate(10),
	})
	if err != nil {
		t.Fatal(err)
	}

	paid, err := trainer.updateInvoiceStatus(invoice.Id, "paid")
	if err != nil {
		t.Fatal(err)
	}
	if paid.Status != "paid" || paid.PaymentDate == nil {
		t.Fatalf("expected paid status with payment date, got %+v", paid)
	}

	if _, err := trainer.updateInvoiceStatus(invoice.Id, "cancelled"); err == nil {
		t.Fatal("expected error for invalid status")
	}

	pending, err := trainer.listInvoices("?status=pending")
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected no pending invoices, got %+v", pending)
	}
}

func TestFinancialStats(t *testing.T) {
	env := setupTestEnv(t)

	trainer := env.newUser(t, "joao", "trainer")
	student := env.newUser(t, "ana", "student")

	// Link the student so they count as active.
	profile, err := student.updateProfile(map[string]interface{}{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := trainer.linkStudent(*profile.ShareCode); err != nil {
		t.Fatal(err)
	}

	if _, err := trainer.upsertFinancialPlan(planBody(student.email, 150, "monthly", futureDate(30))); err != nil {
		t.Fatal(err)
	}

	pendingInvoice, err := trainer.createInvoice(map[string]interface{}{
		"student_email": student.email,
		"amount":        150.0,
		"description":   "Mensalidade",
		"due_date":      futureDate(10),
	})
	if err != nil {
		t.Fatal(err)
	}

	paidInvoice, err := trainer.createInvoice(map[string]interface{}{
		"student_email": student.email,
		"amount":        90.0,
		"description":   "Avaliação física",
		"due_date":      futureDate(5),
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := trainer.updateInvoiceStatus(paidInvoice.Id, "paid"); err != nil {
		t.Fatal(err)
	}

	stats, err := trainer.financialStats()
	if err != nil {
		t.Fatal(err)
	}

	if stats.TotalActiveStudents != 1 {
		t.Fatalf("expected 1 active student, got %d", stats.TotalActiveStudents)
	}
	if stats.MonthlyRevenue != 150 {
		t.Fatalf("expected monthly revenue 150, got %v", stats.MonthlyRevenue)
	}
	if stats.PendingAmount != pendingInvoice.Amount {
		t.Fatalf("expected pending amount %v, got %v", pendingInvoice.Amount, stats.PendingAmount)
	}
	if stats.PaidThisMonth != 90 {
		t.Fatalf("expected 90 paid this month, got %v", stats.PaidThisMonth)
	}
}

func TestFinancialEndpointsRequireTrainerRole(t *testing.T) {
	env := setupTestEnv(t)

	student := env.newUser(t, "ana", "student")

	_, err := student.upsertFinancialPlan(planBody("x@mail.com", 100, "monthly", futureDate(30)))
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden for student, got %v", err)
	}
	if _, err := student.financialStats(); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden for student, got %v", err)
	}

	// Students can still read their own plan.
	if _, err := student.listFinancialPlans(""); err != nil {
		t.Fatal(err)
	}
}
