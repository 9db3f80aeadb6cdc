package httpapi

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/ghostnote/internal/common"
	"github.com/dmitrijs2005/ghostnote/internal/server/models"
	"github.com/dmitrijs2005/ghostnote/internal/server/services"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

type signUpRequest struct {
	Username string `json:"username" binding:"required,handle"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

type verifyCodeRequest struct {
	Username string `json:"username" binding:"required"`
	Code     string `json:"code" binding:"required"`
}

type usernameRequest struct {
	Username string `json:"username" binding:"required"`
}

type signInRequest struct {
	Identifier string `json:"identifier"`
	Email      string `json:"email"`
	Username   string `json:"username"`
	Password   string `json:"password" binding:"required"`
}

func (r signInRequest) identifier() string {
	for _, v := range []string{r.Identifier, r.Email, r.Username} {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

type sendMessageRequest struct {
	Username string `json:"username" binding:"required"`
	Content  string `json:"content" binding:"required"`
	Category string `json:"category" binding:"omitempty,category"`
}

type acceptMessagesRequest struct {
	IsAcceptingMessages *bool `json:"isAcceptingMessages" binding:"required"`
}

type suggestRequest struct {
	Username string `json:"username"`
	Category string `json:"category"`
}

type messageResponse struct {
	ID        string          `json:"id"`
	Content   string          `json:"content"`
	Category  models.Category `json:"category"`
	IsRead    bool            `json:"isRead"`
	CreatedAt time.Time       `json:"createdAt"`
}

func toMessageResponses(ms []*models.Message) []messageResponse {
	out := make([]messageResponse, 0, len(ms))
	for _, m := range ms {
		cat := m.Category
		if cat == "" {
			cat = models.CategoryGeneral
		}
		out = append(out, messageResponse{
			ID:        m.ID,
			Content:   m.Content,
			Category:  cat,
			IsRead:    m.IsRead,
			CreatedAt: m.CreatedAt,
		})
	}
	return out
}

type sessionResponse struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      any       `json:"user"`
}

func toSessionResponse(msg string, s *services.Session) sessionResponse {
	return sessionResponse{
		Success:   true,
		Message:   msg,
		Token:     s.Token,
		ExpiresAt: s.ExpiresAt,
		User:      s.Identity,
	}
}

var validatorsOnce sync.Once

// registerValidators teaches gin's validator the custom tags and to report
// JSON field names.
func registerValidators() {
	validatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		services.RegisterValidators(v)
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})
}

// bindError converts a binding failure into a ValidationError.
func bindError(err error) error {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return common.NewValidationError("body", "Invalid request body")
	}

	fields := make(map[string]string, len(ves))
	for _, fe := range ves {
		fields[fe.Field()] = fieldMessage(fe)
	}
	return &common.ValidationError{Fields: fields}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "handle":
		return "Username must be 2-10 characters and contain only letters, digits or underscores"
	case "category":
		return "Invalid category"
	case "email":
		return "Invalid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be no more than %s characters", fe.Field(), fe.Param())
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}
