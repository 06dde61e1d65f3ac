package tests

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"

	"misterfit_platform/misterfit/services"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type httpTestRequest struct {
	api http.Handler

	method   string
	endpoint string
	headers  map[string]string
	json     interface{}
	body     io.Reader
}

func newHttpTestRequest(api http.Handler, method, endpoint string) *httpTestRequest {
	return &httpTestRequest{
		api:      api,
		method:   method,
		endpoint: endpoint,
		headers:  nil,
		json:     nil,
		body:     nil,
	}
}

func (r *httpTestRequest) Header(key, value string) *httpTestRequest {
	if r.headers == nil {
		r.headers = make(map[string]string)
	}
	r.headers[key] = value
	return r
}

func (r *httpTestRequest) Auth(token string) *httpTestRequest {
	return r.Header("Authorization", fmt.Sprintf("Bearer %v", token))
}

func (r *httpTestRequest) Json(data interface{}) *httpTestRequest {
	r.json = data
	return r
}

// response body will be parsed into result, passing nil indicates that no result is returned.
func (r *httpTestRequest) Do(result interface{}) error {
	if r.json != nil {
		body := new(bytes.Buffer)
		err := json.NewEncoder(body).Encode(r.json)
		if err != nil {
			return fmt.Errorf("error encoding json body for endpoint %v: %w", r.endpoint, err)
		}
		r.body = body
	}

	req := httptest.NewRequest(r.method, r.endpoint, r.body)
	if r.headers != nil {
		for k, v := range r.headers {
			req.Header.Add(k, v)
		}
	}

	w := httptest.NewRecorder()

	r.api.ServeHTTP(w, req)

	res := w.Result()
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		if res.StatusCode == http.StatusUnauthorized {
			return ErrUnauthorized
		}
		if res.StatusCode == http.StatusForbidden {
			return ErrForbidden
		}
		if res.StatusCode == http.StatusNotFound {
			return ErrNotFound
		}
		if res.StatusCode == http.StatusConflict {
			return ErrConflict
		}
		return fmt.Errorf("%v request to endpoint %v returned status %d, content '%v'", r.method, r.endpoint, res.StatusCode, w.Body.String())
	}

	if result != nil {
		err := json.NewDecoder(res.Body).Decode(result)
		if err != nil {
			return fmt.Errorf("error parsing %v response from endpoint %v: %w", r.method, r.endpoint, err)
		}
	}

	return nil
}

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
)

type client struct {
	api       chi.Router
	authToken string
	userId    string
	email     string
}

func (c *client) request(method, endpoint string) *httpTestRequest {
	r := newHttpTestRequest(c.api, method, endpoint)
	if c.authToken != "" {
		return r.Auth(c.authToken)
	}
	return r
}

func (c *client) Get(endpoint string) *httpTestRequest {
	return c.request("GET", endpoint)
}

func (c *client) Post(endpoint string) *httpTestRequest {
	return c.request("POST", endpoint)
}

func (c *client) Put(endpoint string) *httpTestRequest {
	return c.request("PUT", endpoint)
}

func (c *client) Patch(endpoint string) *httpTestRequest {
	return c.request("PATCH", endpoint)
}

func (c *client) Delete(endpoint string) *httpTestRequest {
	return c.request("DELETE", endpoint)
}

type loginInfo struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *client) register(name, email, password, role string) (loginInfo, error) {
	body := map[string]string{
		"full_name": name, "email": email, "password": password, "role": role,
	}

	err := c.Post("/auth/register").Json(body).Do(nil)
	if err != nil {
		return loginInfo{}, err
	}

	return loginInfo{Email: email, Password: password}, nil
}

type loginResult struct {
	Token string               `json:"token"`
	User  services.UserProfile `json:"user"`
}

func (c *client) login(login loginInfo) error {
	var res loginResult
	err := c.Post("/auth/login").Json(login).Do(&res)
	if err != nil {
		return err
	}

	c.authToken = res.Token
	c.userId = res.User.Id.String()
	c.email = res.User.Email

	return nil
}

func (c *client) profile() (services.UserProfile, error) {
	var res services.UserProfile
	err := c.Get("/auth/profile").Do(&res)
	return res, err
}

func (c *client) updateProfile(updates map[string]interface{}) (services.UserProfile, error) {
	var res services.UserProfile
	err := c.Put("/auth/profile").Json(updates).Do(&res)
	return res, err
}

func (c *client) linkStudent(shareCode string) (services.UserProfile, error) {
	var res services.UserProfile
	err := c.Post("/users/students/link").Json(map[string]string{"share_code": shareCode}).Do(&res)
	return res, err
}

func (c *client) linkedStudents() ([]services.UserProfile, error) {
	var res []services.UserProfile
	err := c.Get("/users/students/linked").Do(&res)
	return res, err
}

func (c *client) getStudent(studentId string) (services.UserProfile, error) {
	var res services.UserProfile
	err := c.Get(fmt.Sprintf("/users/students/%v", studentId)).Do(&res)
	return res, err
}

func (c *client) listUsers() ([]services.UserProfile, error) {
	var res []services.UserProfile
	err := c.Get("/users/").Do(&res)
	return res, err
}

func (c *client) updateUser(userId string, updates map[string]interface{}) (services.UserProfile, error) {
	var res services.UserProfile
	err := c.Put(fmt.Sprintf("/users/%v", userId)).Json(updates).Do(&res)
	return res, err
}

func (c *client) createExercise(body map[string]string) (services.ExerciseInfo, error) {
	var res services.ExerciseInfo
	err := c.Post("/exercises/").Json(body).Do(&res)
	return res, err
}

func (c *client) listExercises() ([]services.ExerciseInfo, error) {
	var res []services.ExerciseInfo
	err := c.Get("/exercises/").Do(&res)
	return res, err
}

func (c *client) createWorkoutPlan(body map[string]interface{}) (services.WorkoutPlanInfo, error) {
	var res services.WorkoutPlanInfo
	err := c.Post("/workout-plans/").Json(body).Do(&res)
	return res, err
}

func (c *client) listWorkoutPlans(query string) ([]services.WorkoutPlanInfo, error) {
	var res []services.WorkoutPlanInfo
	err := c.Get("/workout-plans/" + query).Do(&res)
	return res, err
}

func (c *client) availableWorkoutPlans() ([]services.WorkoutPlanInfo, error) {
	var res []services.WorkoutPlanInfo
	err := c.Get("/workout-plans/available").Do(&res)
	return res, err
}

func (c *client) updateWorkoutPlan(planId uuid.UUID, body map[string]interface{}) (services.WorkoutPlanInfo, error) {
	var res services.WorkoutPlanInfo
	err := c.Put(fmt.Sprintf("/workout-plans/%v", planId)).Json(body).Do(&res)
	return res, err
}

func (c *client) deleteWorkoutPlan(planId uuid.UUID) error {
	return c.Delete(fmt.Sprintf("/workout-plans/%v", planId)).Do(nil)
}

func (c *client) assignWorkoutPlan(planId uuid.UUID, studentId string) error {
	return c.Post(fmt.Sprintf("/workout-plans/%v/assign", planId)).Json(map[string]string{"student_id": studentId}).Do(nil)
}

func (c *client) unassignWorkoutPlan(planId uuid.UUID) error {
	return c.Patch(fmt.Sprintf("/workout-plans/%v/unassign", planId)).Do(nil)
}

func (c *client) createDietPlan(body map[string]interface{}) (services.DietPlanInfo, error) {
	var res services.DietPlanInfo
	err := c.Post("/diet-plans/").Json(body).Do(&res)
	return res, err
}

func (c *client) listDietPlans(query string) ([]services.DietPlanInfo, error) {
	var res []services.DietPlanInfo
	err := c.Get("/diet-plans/" + query).Do(&res)
	return res, err
}

func (c *client) availableDietPlans() ([]services.DietPlanInfo, error) {
	var res []services.DietPlanInfo
	err := c.Get("/diet-plans/available").Do(&res)
	return res, err
}

func (c *client) updateDietPlan(planId uuid.UUID, body map[string]interface{}) (services.DietPlanInfo, error) {
	var res services.DietPlanInfo
	err := c.Put(fmt.Sprintf("/diet-plans/%v", planId)).Json(body).Do(&res)
	return res, err
}

func (c *client) deleteDietPlan(planId uuid.UUID) error {
	return c.Delete(fmt.Sprintf("/diet-plans/%v", planId)).Do(nil)
}

func (c *client) assignDietPlan(planId uuid.UUID, studentId string) error {
	return c.Post(fmt.Sprintf("/diet-plans/%v/assign", planId)).Json(map[string]string{"student_id": studentId}).Do(nil)
}

func (c *client) unassignDietPlan(planId uuid.UUID) error {
	return c.Patch(fmt.Sprintf("/diet-plans/%v/unassign", planId)).Do(nil)
}

func (c *client) createAssessment(body map[string]interface{}) (services.AssessmentInfo, error) {
	var res services.AssessmentInfo
	err := c.Post("/assessments/").Json(body).Do(&res)
	return res, err
}

func (c *client) listAssessments() ([]services.AssessmentInfo, error) {
	var res []services.AssessmentInfo
	err := c.Get("/assessments/").Do(&res)
	return res, err
}

func (c *client) studentAssessments(studentId string) ([]services.AssessmentInfo, error) {
	var res []services.AssessmentInfo
	err := c.Get(fmt.Sprintf("/assessments/student/%v", studentId)).Do(&res)
	return res, err
}

func (c *client) sendMessage(receiverEmail, content string) (services.MessageInfo, error) {
	var res services.MessageInfo
	body := map[string]string{"receiver_email": receiverEmail, "content": content}
	err := c.Post("/chat/messages").Json(body).Do(&res)
	return res, err
}

func (c *client) messagesWith(email string) ([]services.MessageInfo, error) {
	var res []services.MessageInfo
	err := c.Get("/chat/messages?with=" + email).Do(&res)
	return res, err
}

func (c *client) conversations() ([]string, error) {
	var res []string
	err := c.Get("/chat/conversations").Do(&res)
	return res, err
}

func (c *client) markAsRead(email string) error {
	return c.Patch("/chat/messages/read").Json(map[string]string{"with": email}).Do(nil)
}

func (c *client) unreadCount() (int64, error) {
	var res struct {
		UnreadCount int64 `json:"unread_count"`
	}
	err := c.Get("/chat/unread-count").Do(&res)
	return res.UnreadCount, err
}

func (c *client) upsertFinancialPlan(body map[string]interface{}) (services.FinancialPlanInfo, error) {
	var res services.FinancialPlanInfo
	err := c.Post("/financial/plans").Json(body).Do(&res)
	return res, err
}

func (c *client) listFinancialPlans(query string) ([]services.FinancialPlanInfo, error) {
	var res []services.FinancialPlanInfo
	err := c.Get("/financial/plans" + query).Do(&res)
	return res, err
}

func (c *client) markPlanAsPaid(planId uuid.UUID, period string) (services.FinancialPlanInfo, error) {
	var res services.FinancialPlanInfo
	body := map[string]string{}
	if period != "" {
		body["payment_period"] = period
	}
	err := c.Put(fmt.Sprintf("/financial/plans/%v/mark-paid", planId)).Json(body).Do(&res)
	return res, err
}

func (c *client) createInvoice(body map[string]interface{}) (services.InvoiceInfo, error) {
	var res services.InvoiceInfo
	err := c.Post("/financial/invoices").Json(body).Do(&res)
	return res, err
}

func (c *client) listInvoices(query string) ([]services.InvoiceInfo, error) {
	var res []services.InvoiceInfo
	err := c.Get("/financial/invoices" + query).Do(&res)
	return res, err
}

func (c *client) updateInvoiceStatus(invoiceId uuid.UUID, status string) (services.InvoiceInfo, error) {
	var res services.InvoiceInfo
	err := c.Put(fmt.Sprintf("/financial/invoices/%v/status", invoiceId)).Json(map[string]string{"status": status}).Do(&res)
	return res, err
}

func (c *client) financialStats() (services.FinancialStats, error) {
	var res services.FinancialStats
	err := c.Get("/financial/stats").Do(&res)
	return res, err
}

func (c *client) workoutSuggestion(body map[string]string) (string, error) {
	var res struct {
		Sugestao string `json:"sugestao"`
	}
	err := c.Post("/ia/treino").Json(body).Do(&res)
	return res.Sugestao, err
}

func (c *client) dietSuggestion(body map[string]string) (string, error) {
	var res struct {
		Sugestao string `json:"sugestao"`
	}
	err := c.Post("/ia/dieta").Json(body).Do(&res)
	return res.Sugestao, err
}
