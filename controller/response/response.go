package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"volunteerhub/logging"
	"volunteerhub/middleware"
	"volunteerhub/model"
	"volunteerhub/services"
	"volunteerhub/store"
)

const internalMessage = "internal server error"

// Error writes the status and body for err. Unexpected errors are logged, reported
// and hidden behind a generic message.
func Error(c *gin.Context, log *zap.Logger, err error) {
	status, body := classify(err)
	if status >= http.StatusInternalServerError {
		email := ""
		if sess := middleware.SessionFrom(c); sess != nil {
			email = sess.Email
		}
		log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("email", email),
			zap.Error(err))
		logging.ReportError(c.Request, err, email)
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, body)
}

func classify(err error) (int, gin.H) {
	var (
		verr    *model.ValidationError
		confirm *services.ConfirmationRequiredError
		rule    model.RuleError
	)
	switch {
	case errors.As(err, &verr):
		body := gin.H{"error": verr.Message}
		if verr.Field != "" {
			body["field"] = verr.Field
		}
		return http.StatusBadRequest, body
	case errors.As(err, &confirm):
		return http.StatusConflict, gin.H{
			"error":                confirm.Error(),
			"confirmationRequired": true,
			"participants":         confirm.Participants,
		}
	case errors.As(err, &rule):
		return http.StatusConflict, gin.H{"error": rule.Error()}
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, gin.H{"error": "not found"}
	case errors.Is(err, store.ErrAlreadyExists), errors.Is(err, services.ErrEmailTaken):
		return http.StatusConflict, gin.H{"error": err.Error()}
	case errors.Is(err, services.ErrUnauthenticated),
		errors.Is(err, services.ErrInvalidToken),
		errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized, gin.H{"error": unwrapped(err)}
	case errors.Is(err, services.ErrForbidden),
		errors.Is(err, services.ErrRoleRequired),
		errors.Is(err, services.ErrEmailNotVerified):
		return http.StatusForbidden, gin.H{"error": err.Error()}
	case errors.Is(err, services.ErrCaptchaFailed):
		return http.StatusBadRequest, gin.H{"error": services.ErrCaptchaFailed.Error()}
	default:
		return http.StatusInternalServerError, gin.H{"error": internalMessage}
	}
}

// unwrapped hides provider details appended to authentication errors.
func unwrapped(err error) string {
	for _, known := range []error{services.ErrInvalidToken, services.ErrInvalidCredentials, services.ErrUnauthenticated} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return err.Error()
}

// BindError answers a request whose body or query failed to bind. Validation
// failures are reported per field using the registered translations.
func BindError(c *gin.Context, err error) {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		fields := make(map[string]string, len(fieldErrs))
		for _, fe := range fieldErrs {
			fields[fe.Field()] = translate(fe)
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request", "fields": fields})
		return
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
}
