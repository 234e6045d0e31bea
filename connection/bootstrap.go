package connection

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"volunteerhub/config"
	"volunteerhub/services"
	"volunteerhub/store"
)

// Dependencies is everything the HTTP surface needs.
type Dependencies struct {
	Config   *config.Config
	Log      *zap.Logger
	Store    store.Store
	Identity services.Identity
	// LocalIdentity is set only with AUTH_DRIVER=local.
	LocalIdentity *services.LocalIdentity
	Mailer        services.Mailer
	Captcha       services.CaptchaVerifier
	Forms         *services.FormCatalog

	closers []func() error
}

// Close releases backend clients in reverse order of creation.
func (d *Dependencies) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			d.Log.Warn("close dependency", zap.Error(err))
		}
	}
	d.closers = nil
}

// OpenStore connects the document store selected by STORE_DRIVER.
func OpenStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (store.Store, error) {
	switch cfg.StoreDriver {
	case "firestore":
		client, err := FBConnection(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		return store.NewFirestoreStore(client), nil
	case "mongo":
		client, err := MongoConnection(ctx, cfg.MongoURI, log)
		if err != nil {
			return nil, err
		}
		st := store.NewMongoStore(client, cfg.MongoDatabase)
		if err := st.EnsureIndexes(ctx); err != nil {
			_ = st.Close()
			return nil, err
		}
		return st, nil
	case "memory":
		log.Warn("using the in-memory store; data is lost on restart")
		return store.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

func Bootstrap(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Dependencies, error) {
	d := &Dependencies{Config: cfg, Log: log}
	ok := false
	defer func() {
		if !ok {
			d.Close()
		}
	}()

	forms, err := services.LoadForms(cfg.FormsFile)
	if err != nil {
		return nil, err
	}
	d.Forms = forms

	st, err := OpenStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	d.Store = st
	d.closers = append(d.closers, st.Close)

	switch cfg.AuthDriver {
	case "firebase":
		client, toolkit, err := FirebaseAuth(ctx, cfg)
		if err != nil {
			return nil, err
		}
		d.Identity = services.NewFirebaseIdentity(client, toolkit)
	case "local":
		log.Warn("using the local identity provider; accounts are lost on restart")
		d.LocalIdentity = services.NewLocalIdentity(cfg.LocalAuthSecret, cfg.BaseURL)
		d.Identity = d.LocalIdentity
	default:
		return nil, fmt.Errorf("unknown auth driver %q", cfg.AuthDriver)
	}

	switch cfg.MailDriver {
	case "sendgrid":
		d.Mailer = services.NewSendGridMailer(cfg.SendGridAPIKey, cfg.MailFromName, cfg.MailFrom)
	case "gmail":
		mailer, err := services.NewGmailMailer(ctx, cfg.GmailCredentialsFile, cfg.GmailTokenFile, cfg.MailFrom)
		if err != nil {
			return nil, err
		}
		d.Mailer = mailer
	default:
		d.Mailer = services.NewConsoleMailer(log)
	}

	if cfg.CaptchaEnabled() {
		captcha, err := services.NewRecaptchaVerifier(ctx, cfg.RecaptchaProjectID, cfg.RecaptchaSiteKey,
			float32(cfg.RecaptchaMinScore), log, clientOptions(cfg)...)
		if err != nil {
			return nil, err
		}
		d.Captcha = captcha
		d.closers = append(d.closers, captcha.Close)
	} else {
		d.Captcha = services.NoopCaptcha{}
	}

	ok = true
	return d, nil
}
