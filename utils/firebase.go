package utils

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/sharath018/workshop-checkin-backend/config"
	"google.golang.org/api/option"
)

var ErrFirebaseDisabled = errors.New("firebase is not configured")

// InitFirebase builds an FCM client from the service account file. It returns
// ErrFirebaseDisabled when no credentials are configured so callers can run
// without push notifications.
func InitFirebase(ctx context.Context, cfg *config.Config) (*messaging.Client, error) {
	credentialsPath := cfg.FCMCredentialsPath
	if credentialsPath == "" {
		credentialsPath = os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")
	}
	if credentialsPath == "" {
		return nil, ErrFirebaseDisabled
	}

	log.Printf("📂 Looking for Firebase credentials at: %s - FCM_PROJECT_ID=%s", credentialsPath, cfg.FCMProjectID)

	if _, err := os.Stat(credentialsPath); err != nil {
		return nil, fmt.Errorf("firebase credentials file: %w", err)
	}
	if cfg.FCMProjectID == "" {
		return nil, fmt.Errorf("FCM_PROJECT_ID is required for FCM")
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.FCMProjectID}, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("firebase app initialization failed: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("FCM client initialization failed: %w", err)
	}

	log.Printf("✅ Firebase app initialized successfully for project: %s", cfg.FCMProjectID)
	return client, nil
}
