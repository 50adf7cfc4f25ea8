package firebase

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/example/rentalhub/internal/config"
)

// Clients bundles the Firebase services the application talks to.
type Clients struct {
	App        *firebase.App
	Firestore  *firestore.Client
	Auth       *auth.Client
	Bucket     *storage.BucketHandle
	BucketName string
}

// Close releases the Firestore connection.
func (c *Clients) Close() error {
	if c.Firestore == nil {
		return nil
	}
	return c.Firestore.Close()
}

// credentialsOption picks the credentials source. A nil option means ADC.
func credentialsOption(cfg *config.Config, logger *zap.Logger) (option.ClientOption, error) {
	switch {
	case cfg.GoogleApplicationCredentials != "":
		if _, err := os.Stat(cfg.GoogleApplicationCredentials); os.IsNotExist(err) {
			logger.Warn("Credentials file does not exist", zap.String("path", cfg.GoogleApplicationCredentials))
		}
		return option.WithCredentialsFile(cfg.GoogleApplicationCredentials), nil
	case cfg.FirebaseServiceAccountJSONBase64 != "":
		decoded, err := base64.StdEncoding.DecodeString(cfg.FirebaseServiceAccountJSONBase64)
		if err != nil {
			return nil, fmt.Errorf("failed to decode FIREBASE_SERVICE_ACCOUNT_JSON_BASE64: %w", err)
		}
		return option.WithCredentialsJSON(decoded), nil
	default:
		logger.Info("Using Application Default Credentials")
		return nil, nil
	}
}

// Init initializes the Firebase Admin SDK and the Firestore, Auth and Storage clients.
func Init(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Clients, error) {
	opt, err := credentialsOption(cfg, logger)
	if err != nil {
		return nil, err
	}

	conf := &firebase.Config{
		ProjectID:     cfg.FirebaseProjectID,
		StorageBucket: cfg.FirebaseStorageBucket,
	}

	var opts []option.ClientOption
	if opt != nil {
		opts = append(opts, opt)
	}
	app, err := firebase.NewApp(ctx, conf, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase.NewApp: %w", err)
	}

	fs, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("app.Firestore: %w", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		fs.Close()
		return nil, fmt.Errorf("app.Auth: %w", err)
	}

	storageClient, err := app.Storage(ctx)
	if err != nil {
		fs.Close()
		return nil, fmt.Errorf("app.Storage: %w", err)
	}
	bucket, err := storageClient.DefaultBucket()
	if err != nil {
		fs.Close()
		return nil, fmt.Errorf("storage.DefaultBucket: %w", err)
	}

	logger.Info("Firebase Admin SDK initialized",
		zap.String("projectID", cfg.FirebaseProjectID),
		zap.String("bucket", cfg.FirebaseStorageBucket))

	return &Clients{
		App:        app,
		Firestore:  fs,
		Auth:       authClient,
		Bucket:     bucket,
		BucketName: cfg.FirebaseStorageBucket,
	}, nil
}
