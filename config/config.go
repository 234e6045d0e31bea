package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the environment of one process.
type Config struct {
	Env         string `env:"APP_ENV" validate:"oneof=development test production"`
	Debug       bool   `env:"DEBUG"`
	Port        string `env:"PORT" validate:"required,numeric"`
	BaseURL     string `env:"BASE_URL" validate:"required,url"`
	StoreDriver string `env:"STORE_DRIVER" validate:"oneof=firestore mongo memory"`
	AuthDriver  string `env:"AUTH_DRIVER" validate:"oneof=firebase local"`

	GoogleCredentials string `env:"GOOGLE_APPLICATION_CREDENTIALS"`
	FirebaseProjectID string `env:"FIREBASE_PROJECT_ID" validate:"required_if=StoreDriver firestore"`
	FirebaseAPIKey    string `env:"FIREBASE_WEB_API_KEY" validate:"required_if=AuthDriver firebase"`

	MongoURI      string `env:"MONGO_URI" validate:"required_if=StoreDriver mongo"`
	MongoDatabase string `env:"MONGO_DATABASE" validate:"required_if=StoreDriver mongo"`

	LocalAuthSecret string `env:"LOCAL_AUTH_SECRET" validate:"required_if=AuthDriver local"`

	AdminEmails []string `env:"ADMIN_EMAILS" validate:"dive,email"`
	CORSOrigins []string `env:"CORS_ORIGINS"`

	RecaptchaProjectID string  `env:"RECAPTCHA_PROJECT_ID"`
	RecaptchaSiteKey   string  `env:"RECAPTCHA_SITE_KEY" validate:"required_with=RecaptchaProjectID"`
	RecaptchaMinScore  float64 `env:"RECAPTCHA_MIN_SCORE" validate:"gte=0,lte=1"`

	MailDriver           string `env:"MAIL_DRIVER" validate:"oneof=console gmail sendgrid"`
	MailFrom             string `env:"MAIL_FROM" validate:"required,email"`
	MailFromName         string `env:"MAIL_FROM_NAME"`
	SendGridAPIKey       string `env:"SENDGRID_API_KEY" validate:"required_if=MailDriver sendgrid"`
	GmailCredentialsFile string `env:"GMAIL_CREDENTIALS_FILE" validate:"required_if=MailDriver gmail"`
	GmailTokenFile       string `env:"GMAIL_TOKEN_FILE" validate:"required_if=MailDriver gmail"`

	FormsFile         string `env:"FORMS_FILE"`
	RollbarToken      string `env:"ROLLBAR_TOKEN"`
	NotificationLimit int    `env:"NOTIFICATION_LIMIT" validate:"min=1,max=50"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("env")
	})
	return v
}

func defaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("PORT", "8080")
	v.SetDefault("BASE_URL", "http://localhost:8080")
	v.SetDefault("STORE_DRIVER", "firestore")
	v.SetDefault("AUTH_DRIVER", "firebase")
	v.SetDefault("RECAPTCHA_MIN_SCORE", 0.5)
	v.SetDefault("MAIL_DRIVER", "console")
	v.SetDefault("MAIL_FROM", "noreply@localhost.dev")
	v.SetDefault("MAIL_FROM_NAME", "VolunteerHub")
	v.SetDefault("NOTIFICATION_LIMIT", 20)
}

// Load reads the environment, after loading envFile (".env" when empty) if it
// exists, and validates the result.
func Load(envFile string) (*Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	v := viper.New()
	defaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		Env:                  strings.ToLower(v.GetString("APP_ENV")),
		Debug:                v.GetBool("DEBUG"),
		Port:                 v.GetString("PORT"),
		BaseURL:              strings.TrimRight(v.GetString("BASE_URL"), "/"),
		StoreDriver:          strings.ToLower(v.GetString("STORE_DRIVER")),
		AuthDriver:           strings.ToLower(v.GetString("AUTH_DRIVER")),
		GoogleCredentials:    v.GetString("GOOGLE_APPLICATION_CREDENTIALS"),
		FirebaseProjectID:    v.GetString("FIREBASE_PROJECT_ID"),
		FirebaseAPIKey:       v.GetString("FIREBASE_WEB_API_KEY"),
		MongoURI:             v.GetString("MONGO_URI"),
		MongoDatabase:        v.GetString("MONGO_DATABASE"),
		LocalAuthSecret:      v.GetString("LOCAL_AUTH_SECRET"),
		AdminEmails:          splitList(v.GetString("ADMIN_EMAILS"), true),
		CORSOrigins:          splitList(v.GetString("CORS_ORIGINS"), false),
		RecaptchaProjectID:   v.GetString("RECAPTCHA_PROJECT_ID"),
		RecaptchaSiteKey:     v.GetString("RECAPTCHA_SITE_KEY"),
		RecaptchaMinScore:    v.GetFloat64("RECAPTCHA_MIN_SCORE"),
		MailDriver:           strings.ToLower(v.GetString("MAIL_DRIVER")),
		MailFrom:             v.GetString("MAIL_FROM"),
		MailFromName:         v.GetString("MAIL_FROM_NAME"),
		SendGridAPIKey:       v.GetString("SENDGRID_API_KEY"),
		GmailCredentialsFile: v.GetString("GMAIL_CREDENTIALS_FILE"),
		GmailTokenFile:       v.GetString("GMAIL_TOKEN_FILE"),
		FormsFile:            v.GetString("FORMS_FILE"),
		RollbarToken:         v.GetString("ROLLBAR_TOKEN"),
		NotificationLimit:    v.GetInt("NOTIFICATION_LIMIT"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Production() && c.AuthDriver == "local" {
		return errors.New("invalid configuration: AUTH_DRIVER=local is not allowed in production")
	}
	if c.Production() && c.StoreDriver == "memory" {
		return errors.New("invalid configuration: STORE_DRIVER=memory is not allowed in production")
	}
	return nil
}

func (c *Config) Production() bool {
	return c.Env == "production"
}

// CaptchaEnabled reports whether reCAPTCHA assessments are configured.
func (c *Config) CaptchaEnabled() bool {
	return c.RecaptchaProjectID != ""
}

func (c *Config) Addr() string {
	return ":" + c.Port
}

// splitList parses a comma separated value, dropping blanks.
func splitList(s string, lower bool) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if lower {
			part = strings.ToLower(part)
		}
		out = append(out, part)
	}
	return out
}
