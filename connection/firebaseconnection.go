package connection

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
	"google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"

	"volunteerhub/config"
)

// clientOptions authenticates Google clients with the service account file when one
// is configured, and with application default credentials otherwise.
func clientOptions(cfg *config.Config) []option.ClientOption {
	if cfg.GoogleCredentials == "" {
		return nil
	}
	return []option.ClientOption{option.WithCredentialsFile(cfg.GoogleCredentials)}
}

func NewFirebaseApp(ctx context.Context, cfg *config.Config) (*firebase.App, error) {
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.FirebaseProjectID}, clientOptions(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("error initializing app: %w", err)
	}
	return app, nil
}

func FBConnection(ctx context.Context, cfg *config.Config, log *zap.Logger) (*firestore.Client, error) {
	app, err := NewFirebaseApp(ctx, cfg)
	if err != nil {
		return nil, err
	}
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting Firestore client: %w", err)
	}
	log.Info("firestore connection successful", zap.String("project", cfg.FirebaseProjectID))
	return client, nil
}

// FirebaseAuth returns the Admin SDK auth client and the Identity Toolkit client
// used for password sign-in.
func FirebaseAuth(ctx context.Context, cfg *config.Config) (*auth.Client, *identitytoolkit.Service, error) {
	app, err := NewFirebaseApp(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("error getting Auth client: %w", err)
	}
	toolkit, err := identitytoolkit.NewService(ctx, option.WithAPIKey(cfg.FirebaseAPIKey))
	if err != nil {
		return nil, nil, fmt.Errorf("error creating identity toolkit client: %w", err)
	}
	return client, toolkit, nil
}
