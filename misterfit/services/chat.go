package services

import (
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

type ChatService struct {
	db       *gorm.DB
	userAuth *auth.IdentityProvider
}

func (s *ChatService) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(s.userAuth.AuthMiddleware()...)

	r.Get("/conversations", s.Conversations)
	r.Get("/messages", s.Messages)
	r.Post("/messages", s.SendMessage)
	r.Patch("/messages/read", s.MarkAsRead)
	r.Get("/unread-count", s.UnreadCount)

	return r
}

type MessageInfo struct {
	Id            uuid.UUID `json:"id"`
	SenderEmail   string    `json:"sender_email"`
	ReceiverEmail string    `json:"receiver_email"`
	Content       string    `json:"content"`
	IsRead        bool      `json:"is_read"`
	CreatedAt     time.Time `json:"created_at"`
}

func convertToMessageInfo(message *schema.Message) MessageInfo {
	return MessageInfo{
		Id:            message.Id,
		SenderEmail:   message.SenderEmail,
		ReceiverEmail: message.ReceiverEmail,
		Content:       message.Content,
		IsRead:        message.IsRead,
		CreatedAt:     message.CreatedAt,
	}
}

// Conversations returns the distinct emails the user has exchanged messages
// with, in no particular order.
func (s *ChatService) Conversations(w http.ResponseWriter, r *http.Request) {
	user, err := auth.UserFromContext(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var messages []schema.Message
	result := s.db.
		Select("sender_email", "receiver_email").
		Where("sender_email = ? OR receiver_email = ?", user.Email, user.Email).
		Find(&messages)
	if result.Error != nil {
		slog.Error("sql error listing conversations", "error", result.Error)
		http.Error(w, fmt.Sprintf("error listing conversations: %v", schema.ErrDbAccessFailed), http.StatusInternalServerError)
		return
	}

	seen := make(map[string]bool)
	contacts := make([]string, 0)
	for _, message := range messages {
		for _, email := range []string{message.SenderEmail, message.ReceiverEmail} {
			if email != user.Email && !seen[email] {
				seen[email] = true
				contacts = append(contacts, email)
			}
		}
	}

	utils.WriteJsonResponse(w, contacts)
}

func (s *ChatService) Messages(w http.ResponseWriter, r *http.Request) {
	user, err := auth.UserFromContext(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	contact, err := utils.RequiredQueryParam(r, "with")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	contact = schema.NormalizeEmail(contact)

	var messages []schema.Message
	result := s.db.
		Where("(sender_email = ? AND receiver_email = ?) OR (sender_email = ? AND receiver_email = ?)",
			user.Email, contact, contact, user.Email).
		Order("created_at asc").
		Find(&messages)
	if result.Error != nil {
		slog.Error("sql error listing messages", "error", result.Error)
		http.Error(w, fmt.Sprintf("error listing messages: %v", schema.ErrDbAccessFailed), http.StatusInternalServerError)
		return
	}

	infos := make([]MessageInfo, 0, len(messages))
	for _, message := range messages {
		infos = append(infos, convertToMessageInfo(&message))
	}
	utils.WriteJsonResponse(w, infos)
}

type sendMessageRequest struct {
	ReceiverEmail string `json:"receiver_email"`
	Content       string `json:"content"`
}

func (s *ChatService) SendMessage(w http.ResponseWriter, r *http.Request) {
	user, err := auth.UserFromContext(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var params sendMessageRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	if params.ReceiverEmail == "" || params.Content == "" {
		http.Error(w, "receiver_email and content are required", http.StatusBadRequest)
		return
	}
	if len(params.Content) > 1000 {
		http.Error(w, "message content must be at most 1000 characters", http.StatusBadRequest)
		return
	}
	params.ReceiverEmail = schema.NormalizeEmail(params.ReceiverEmail)

	message := schema.Message{
		Id:            uuid.New(),
		SenderEmail:   user.Email,
		ReceiverEmail: params.ReceiverEmail,
		Content:       params.Content,
		IsRead:        false,
	}
	result := s.db.Create(&message)
	if result.Error != nil {
		slog.Error("sql error creating message", "error", result.Error)
		http.Error(w, fmt.Sprintf("error sending message: %v", schema.ErrDbAccessFailed), http.StatusInternalServerError)
		return
	}

	utils.WriteJsonResponseStatus(w, http.StatusCreated, convertToMessageInfo(&message))
}

type markAsReadRequest struct {
	With string `json:"with"`
}

// MarkAsRead marks every unread message from the given contact to the logged
// in user as read.
func (s *ChatService) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	user, err := auth.UserFromContext(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var params markAsReadRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	if params.With == "" {
		http.Error(w, "'with' is required", http.StatusBadRequest)
		return
	}
	params.With = schema.NormalizeEmail(params.With)

	result := s.db.Model(&schema.Message{}).
		Where("sender_email = ?", params.With).
		Where("receiver_email = ?", user.Email).
		Where("is_read = ?", false).
		Update("is_read", true)
	if result.Error != nil {
		slog.Error("sql error marking messages as read", "error", result.Error)
		http.Error(w, fmt.Sprintf("error marking messages as read: %v", schema.ErrDbAccessFailed), http.StatusInternalServerError)
		return
	}

	utils.WriteSuccess(w)
}

type unreadCountResponse struct {
	UnreadCount int64 `json:"unread_count"`
}

func (s *ChatService) UnreadCount(w http.ResponseWriter, r *http.Request) {
	user, err := auth.UserFromContext(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var count int64
	result := s.db.Model(&schema.Message{}).
		Where("receiver_email = ?", user.Email).
		Where("is_read = ?", false).
		Count(&count)
	if result.Error != nil {
		slog.Error("sql error counting unread messages", "error", result.Error)
		http.Error(w, fmt.Sprintf("error counting unread messages: %v", schema.ErrDbAccessFailed), http.StatusInternalServerError)
		return
	}

	utils.WriteJsonResponse(w, unreadCountResponse{UnreadCount: count})
}
