package connection

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"volunteerhub/controller/auth"
	"volunteerhub/controller/event"
	"volunteerhub/controller/feedback"
	"volunteerhub/controller/helprequest"
	"volunteerhub/controller/notification"
	"volunteerhub/controller/response"
	"volunteerhub/controller/user"
	"volunteerhub/controller/verification"
	"volunteerhub/middleware"
	"volunteerhub/services"
)

const shutdownTimeout = 15 * time.Second

func corsMiddleware(origins []string) gin.HandlerFunc {
	if len(origins) == 0 {
		return cors.Default()
	}
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}

// NewRouter wires services and controllers. Identity endpoints are open to any
// signed-in caller; everything else needs a verified email and a role.
func NewRouter(d *Dependencies) *gin.Engine {
	response.RegisterValidator()

	router := gin.New()
	router.Use(middleware.RequestLogger(d.Log), middleware.Recovery(d.Log), corsMiddleware(d.Config.CORSOrigins))

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Api is running!"})
	})

	users := services.NewUserService(d.Store, d.Config.AdminEmails, d.Log)
	authSvc := services.NewAuthService(d.Identity, users, d.Mailer, d.Log)
	events := services.NewEventService(d.Store, d.Forms, d.Log)
	feedbackSvc := services.NewFeedbackService(d.Store, d.Forms, d.Log)
	verifications := services.NewVerificationService(d.Store, d.Forms, d.Log)
	helpRequests := services.NewHelpRequestService(d.Store, d.Log)
	notifications := services.NewNotificationService(d.Store, d.Config.NotificationLimit, d.Log)

	auth.SignUpController(router, authSvc, d.Captcha, d.Log)
	auth.SignInController(router, authSvc, d.Log)
	auth.FederatedController(router, authSvc, d.Log)
	if d.LocalIdentity != nil {
		auth.LocalVerifyController(router, d.LocalIdentity, d.Log)
	}

	signedIn := router.Group("", middleware.Authenticate(d.Identity, users, d.Log))
	auth.SessionController(signedIn, authSvc, users, d.Log)
	user.ProfileController(signedIn, users, d.Log)
	user.AdminController(signedIn, users, d.Log)

	domain := signedIn.Group("", middleware.RequireVerifiedEmail(), middleware.RequireRole())
	user.DirectoryController(domain, users, d.Log)
	event.EventController(domain, events, d.Log)
	event.SignupController(domain, events, d.Log)
	notification.NotificationController(domain, notifications, d.Log)
	feedback.FeedbackController(domain, feedbackSvc, d.Log)
	verification.VerificationController(domain, verifications, d.Log)
	helprequest.HelpRequestController(domain, helpRequests, d.Captcha, d.Log)

	return router
}

// StartServer serves until ctx is cancelled, then drains in-flight requests.
func StartServer(ctx context.Context, d *Dependencies) error {
	if d.Config.Production() {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := &http.Server{
		Addr:              d.Config.Addr(),
		Handler:           NewRouter(d),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		d.Log.Info("api is running", zap.String("addr", srv.Addr), zap.String("store", d.Config.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	d.Log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
