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
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FinancialService struct {
	db       *gorm.DB
	userAuth *auth.IdentityProvider
}

func (s *FinancialService) Routes() chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(s.userAuth.AuthMiddleware()...)

		r.Get("/plans", s.GetPlans)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.userAuth.AuthMiddleware()...)
		r.Use(auth.TrainerOnly())

		r.Post("/plans", s.UpsertPlan)
		r.Put("/plans/{plan_id}/mark-paid", s.MarkAsPaid)
		r.Get("/invoices", s.GetInvoices)
		r.Post("/invoices", s.CreateInvoice)
		r.Put("/invoices/{invoice_id}/status", s.UpdateInvoiceStatus)
		r.Get("/stats", s.GetStats)
	})

	return r
}

type FinancialPlanInfo struct {
	Id            uuid.UUID `json:"id"`
	StudentEmail  string    `json:"student_email"`
	TrainerEmail  string    `json:"trainer_email"`
	Amount        float64   `json:"amount"`
	PaymentPeriod string    `json:"payment_period"`
	NextDueDate   time.Time `json:"next_due_date"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// convertToPlanInfo derives the overdue status at read time. The stored
// status only changes through upsert and mark-paid.
func convertToPlanInfo(plan *schema.FinancialPlan, now time.Time) FinancialPlanInfo {
	status := plan.Status
	if now.After(plan.NextDueDate) {
		status = schema.PlanStatusOverdue
	}

	return FinancialPlanInfo{
		Id:            plan.Id,
		StudentEmail:  plan.StudentEmail,
		TrainerEmail:  plan.TrainerEmail,
		Amount:        plan.Amount,
		PaymentPeriod: plan.PaymentPeriod,
		NextDueDate:   plan.NextDueDate,
		Status:        status,
		CreatedAt:     plan.CreatedAt,
		UpdatedAt:     plan.UpdatedAt,
	}
}

func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date '%v', expected YYYY-MM-DD", value)
	}
	return t, nil
}

func (s *FinancialService) GetPlans(w http.ResponseWriter, r *http.Request) {
	user, err := auth.UserFromContext(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	query := s.db.Order("created_at desc")
	if user.Role == schema.RoleStudent {
		query = query.Where("student_email = ?", user.Email)
	} else {
		query = query.Where("trainer_email = ?", user.Email)
		if studentEmail := utils.QueryParam(r, "student_email"); studentEmail != "" {
			query = query.Where("student_email = ?", schema.NormalizeEmail(studentEmail))
		}
	}

	var plans []schema.FinancialPlan
	result := query.Find(&plans)
	if result.Error != nil {
		slog.Error("sql error listing financial plans", "error", result.Error)
		http.Error(w, fmt.Sprintf("error listing financial plans: %v", schema.ErrDbAccessFailed), http.StatusInternalServerError)
		return
	}

	now := time.Now().UTC()
	infos := make([]FinancialPlanInfo, 0, len(plans))
	for _, plan := range plans {
		infos = append(infos, convertToPlanInfo(&plan, now))
	}
	utils.WriteJsonResponse(w, infos)
}

type upsertPlanRequest struct {
	StudentEmail  string  `json:"student_email"`
	Amount        float64 `json:"amount"`
	PaymentPeriod string  `json:"payment_period"`
	NextDueDate   string  `json:"next_due_date"`
}

func (s *FinancialService) UpsertPlan(w http.ResponseWriter, r *http.Request) {
	trainer, err := auth.UserFromContext(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var params upsertPlanRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	if params.StudentEmail == "" || params.Amount <= 0 || params.PaymentPeriod == "" || params.NextDueDate == "" {
		http.Error(w, "student_email, amount, payment_period, and next_due_date are required", http.StatusBadRequest)
		return
	}
	params.StudentEmail = schema.NormalizeEmail(params.StudentEmail)

	period := billing.NormalizePeriod(params.PaymentPeriod)
	if !billing.ValidPeriod(period) {
		http.Error(w, fmt.Sprintf("invalid payment period '%v'", params.PaymentPeriod), http.StatusBadRequest)
		return
	}

	dueDate, err := parseDate(params.NextDueDate)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var saved schema.FinancialPlan
	err = s.db.Transaction(func(txn *gorm.DB) error {
		var existing schema.FinancialPlan
		result := txn.Limit(1).Find(&existing, "student_email = ? AND trainer_email = ?", params.StudentEmail, trainer.Email)
		if result.Error != nil {
			slog.Error("sql error checking for existing financial plan", "error", result.Error)
			return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
		}

		if result.RowsAffected != 0 {
			existing.Amount = params.Amount
			existing.PaymentPeriod = period
			existing.NextDueDate = dueDate
			existing.Status = schema.PlanStatusActive
			result := txn.Save(&existing)
			if result.Error != nil {
				slog.Error("sql error updating financial plan", "plan_id", existing.Id, "error", result.Error)
				return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
			}
			saved = existing
			return nil
		}

		plan := schema.FinancialPlan{
			Id:            uuid.New(),
			StudentEmail:  params.StudentEmail,
			TrainerEmail:  trainer.Email,
			Amount:        params.Amount,
			PaymentPeriod: period,
			NextDueDate:   dueDate,
			Status:        schema.PlanStatusActive,
		}
		result = txn.Create(&plan)
		if result.Error != nil {
			slog.Error("sql error creating financial plan", "error", result.Error)
			return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
		}
		saved = plan
		return nil
	})

	if err != nil {
		http.Error(w, fmt.Sprintf("error saving financial plan: %v", err), GetResponseCode(err))
		return
	}

	utils.WriteJsonResponse(w, convertToPlanInfo(&saved, time.Now().UTC()))
}

type markAsPaidRequest struct {
	PaymentPeriod string `json:"payment_period"`
}

// MarkAsPaid advances the plan's due date by one payment period and resets
// the stored status to active.
func (s *FinancialService) MarkAsPaid(w http.ResponseWriter, r *http.Request) {
	planId, err := utils.URLParamUUID(r, "plan_id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var params markAsPaidRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	var updated schema.FinancialPlan
	err = s.db.Transaction(func(txn *gorm.DB) error {
		var plan schema.FinancialPlan
		result := txn.Limit(1).Find(&plan, "id = ?", planId)
		if result.Error != nil {
			slog.Error("sql error retrieving financial plan", "plan_id", planId, "error", result.Error)
			return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
		}
		if result.RowsAffected == 0 {
			return CodedError(schema.ErrFinancialPlanNotFound, http.StatusNotFound)
		}

		period := params.PaymentPeriod
		if period == "" {
			period = plan.PaymentPeriod
		}

		plan.NextDueDate = billing.NextDueDate(plan.NextDueDate, period)
		plan.Status = schema.PlanStatusActive

		result = txn.Save(&plan)
		if result.Error != nil {
			slog.Error("sql error updating financial plan after payment", "plan_id", planId, "error", result.Error)
			return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
		}

		updated = plan
		return nil
	})

	if err != nil {
		http.Error(w, fmt.Sprintf("error marking plan as paid: %v", err), GetResponseCode(err))
		return
	}

	utils.WriteJsonResponse(w, convertToPlanInfo(&updated, time.Now().UTC()))
}

type InvoiceInfo struct {
	Id            uuid.UUID  `json:"id"`
	StudentEmail  string     `json:"student_email"`
	TrainerEmail  string     `json:"trainer_email"`
	Amount        float64    `json:"amount"`
	Description   string     `json:"description"`
	DueDate       time.Time  `json:"due_date"`
	Status        string     `json:"status"`
	PaymentMethod string     `json:"payment_method"`
	PixCode       string     `json:"pix_code"`
	PaymentLink   string     `json:"payment_link"`
	InvoiceNumber string     `json:"invoice_number"`
	PaymentDate   *time.Time `json:"payment_date"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func convertToInvoiceInfo(invoice *schema.Invoice) InvoiceInfo {
	return InvoiceInfo{
		Id:            invoice.Id,
		StudentEmail:  invoice.StudentEmail,
		TrainerEmail:  invoice.TrainerEmail,
		Amount:        invoice.Amount,
		Description:   invoice.Description,
		DueDate:       invoice.DueDate,
		Status:        invoice.Status,
		PaymentMethod: invoice.PaymentMethod,
		PixCode:       invoice.PixCode,
		PaymentLink:   invoice.PaymentLink,
		InvoiceNumber: invoice.InvoiceNumber,
		PaymentDate:   invoice.PaymentDate,
		CreatedAt:     invoice.CreatedAt,
		UpdatedAt:     invoice.UpdatedAt,
	}
}

func (s *FinancialService) GetInvoices(w http.ResponseWriter, r *http.Request) {
	trainer, err := auth.UserFromContext(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	query := s.db.Where("trainer_email = ?", trainer.Email).Order("created_at desc")
	if studentEmail := utils.QueryParam(r, "student_email"); studentEmail != "" {
		query = query.Where("student_email = ?", schema.NormalizeEmail(studentEmail))
	}
	if status := utils.QueryParam(r, "status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var invoices []schema.Invoice
	result := query.Find(&invoices)
	if result.Error != nil {
		slog.Error("sql error listing invoices", "error", result.Error)
		http.Error(w, fmt.Sprintf("error listing invoices: %v", schema.ErrDbAccessFailed), http.StatusInternalServerError)
		return
	}

	infos := make([]InvoiceInfo, 0, len(invoices))
	for _, invoice := range invoices {
		infos = append(infos, convertToInvoiceInfo(&invoice))
	}
	utils.WriteJsonResponse(w, infos)
}

type createInvoiceRequest struct {
	StudentEmail  string  `json:"student_email"`
	Amount        float64 `json:"amount"`
	Description   string  `json:"description"`
	DueDate       string  `json:"due_date"`
	PaymentMethod string  `json:"payment_method"`
}

func (s *FinancialService) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	trainer, err := auth.UserFromContext(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var params createInvoiceRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	if params.StudentEmail == "" || params.Amount <= 0 || params.Description == "" || params.DueDate == "" {
		http.Error(w, "student_email, amount, description, and due_date are required", http.StatusBadRequest)
		return
	}
	params.StudentEmail = schema.NormalizeEmail(params.StudentEmail)

	dueDate, err := parseDate(params.DueDate)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	paymentMethod := params.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = "PIX"
	}

	invoiceNumber, err := billing.NewInvoiceNumber()
	if err != nil {
		slog.Error("error generating invoice number", "error", err)
		http.Error(w, "error generating invoice number", http.StatusInternalServerError)
		return
	}

	invoice := schema.Invoice{
		Id:            uuid.New(),
		StudentEmail:  params.StudentEmail,
		TrainerEmail:  trainer.Email,
		Amount:        params.Amount,
		Description:   params.Description,
		DueDate:       dueDate,
		Status:        schema.InvoiceStatusPending,
		PaymentMethod: paymentMethod,
		PixCode:       billing.PixCode(params.StudentEmail),
		PaymentLink:   billing.PaymentLink(invoiceNumber),
		InvoiceNumber: invoiceNumber,
	}

	result := s.db.Create(&invoice)
	if result.Error != nil {
		slog.Error("sql error creating invoice", "error", result.Error)
		http.Error(w, fmt.Sprintf("error creating invoice: %v", schema.ErrDbAccessFailed), http.StatusInternalServerError)
		return
	}

	utils.WriteJsonResponseStatus(w, http.StatusCreated, convertToInvoiceInfo(&invoice))
}

type updateInvoiceStatusRequest struct {
	Status      string `json:"status"`
	PaymentDate string `json:"payment_date"`
}

func (s *FinancialService) UpdateInvoiceStatus(w http.ResponseWriter, r *http.Request) {
	invoiceId, err := utils.URLParamUUID(r, "invoice_id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var params updateInvoiceStatusRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	if params.Status != schema.InvoiceStatusPending && params.Status != schema.InvoiceStatusPaid && params.Status != schema.InvoiceStatusOverdue {
		http.Error(w, fmt.Sprintf("invalid invoice status '%v'", params.Status), http.StatusBadRequest)
		return
	}

	var updated schema.Invoice
	err = s.db.Transaction(func(txn *gorm.DB) error {
		invoice, err := schema.GetInvoice(invoiceId, txn)
		if err != nil {
			if errors.Is(err, schema.ErrInvoiceNotFound) {
				return CodedError(err, http.StatusNotFound)
			}
			return CodedError(err, http.StatusInternalServerError)
		}

		invoice.Status = params.Status
		if params.Status == schema.InvoiceStatusPaid {
			paymentDate := time.Now().UTC()
			if params.PaymentDate != "" {
				paymentDate, err = parseDate(params.PaymentDate)
				if err != nil {
					return CodedError(err, http.StatusBadRequest)
				}
			}
			invoice.PaymentDate = &paymentDate
		}

		result := txn.Save(&invoice)
		if result.Error != nil {
			slog.Error("sql error updating invoice status", "invoice_id", invoiceId, "error", result.Error)
			return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
		}

		updated = invoice
		return nil
	})

	if err != nil {
		http.Error(w, fmt.Sprintf("error updating invoice status: %v", err), GetResponseCode(err))
		return
	}

	utils.WriteJsonResponse(w, convertToInvoiceInfo(&updated))
}

type FinancialStats struct {
	TotalActiveStudents int64   `json:"total_active_students"`
	MonthlyRevenue      float64 `json:"monthly_revenue"`
	PendingAmount       float64 `json:"pending_amount"`
	PaidThisMonth       float64 `json:"paid_this_month"`
}

func (s *FinancialService) GetStats(w http.ResponseWriter, r *http.Request) {
	trainer, err := auth.UserFromContext(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var stats FinancialStats

	result := s.db.Model(&schema.User{}).
		Where("role = ?", schema.RoleStudent).
		Where("linked_trainer_email = ?", trainer.Email).
		Where("is_active = ?", true).
		Count(&stats.TotalActiveStudents)
	if result.Error != nil {
		slog.Error("sql error counting active students", "error", result.Error)
		http.Error(w, fmt.Sprintf("error computing stats: %v", schema.ErrDbAccessFailed), http.StatusInternalServerError)
		return
	}

	var activePlans []schema.FinancialPlan
	result = s.db.Where("trainer_email = ? AND status = ?", trainer.Email, schema.PlanStatusActive).Find(&activePlans)
	if result.Error != nil {
		slog.Error("sql error listing active financial plans", "error", result.Error)
		http.Error(w, fmt.Sprintf("error computing stats: %v", schema.ErrDbAccessFailed), http.StatusInternalServerError)
		return
	}
	for _, plan := range activePlans {
		stats.MonthlyRevenue += plan.Amount
	}

	var pendingInvoices []schema.Invoice
	result = s.db.Where("trainer_email = ? AND status = ?", trainer.Email, schema.InvoiceStatusPending).Find(&pendingInvoices)
	if result.Error != nil {
		slog.Error("sql error listing pending invoices", "error", result.Error)
		http.Error(w, fmt.Sprintf("error computing stats: %v", schema.ErrDbAccessFailed), http.StatusInternalServerError)
		return
	}
	for _, invoice := range pendingInvoices {
		stats.PendingAmount += invoice.Amount
	}

	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0)

	var paidInvoices []schema.Invoice
	result = s.db.
		Where("trainer_email = ? AND status = ?", trainer.Email, schema.InvoiceStatusPaid).
		Where("payment_date >= ? AND payment_date < ?", monthStart, monthEnd).
		Find(&paidInvoices)
	if result.Error != nil {
		slog.Error("sql error listing paid invoices", "error", result.Error)
		http.Error(w, fmt.Sprintf("error computing stats: %v", schema.ErrDbAccessFailed), http.StatusInternalServerError)
		return
	}
	for _, invoice := range paidInvoices {
		stats.PaidThisMonth += invoice.Amount
	}

	utils.WriteJsonResponse(w, stats)
}
