package db

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/example/storefront/internal/config"
)

const (
	storesCollection        = "stores"
	usersCollection         = "users"
	productsCollection      = "products"
	categoriesCollection    = "categories"
	tagsCollection          = "tags"
	subscriptionsCollection = "subscriptions"
	plansCollection         = "plans"
	auditLogsCollection     = "auditLogs"
)

var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrAlreadyExists is returned when a write would break a uniqueness rule
	// (document id or normalized name).
	ErrAlreadyExists = errors.New("document already exists")
)

// Clients bundles the Firebase clients the application needs.
type Clients struct {
	Firestore *firestore.Client
	Auth      *auth.Client
}

// Close releases the Firestore connection. The Auth client holds no connection.
func (c *Clients) Close() error {
	if c == nil || c.Firestore == nil {
		return nil
	}
	return c.Firestore.Close()
}

// InitFirebase initializes the Firebase Admin SDK and returns the Firestore and Auth clients.
// Credentials come from a file path, a base64 service account JSON, or Application Default
// Credentials, in that order.
func InitFirebase(ctx context.Context, appConfig *config.Config, logger *zap.Logger) (*Clients, error) {
	if appConfig == nil {
		return nil, fmt.Errorf("InitFirebase: appConfig cannot be nil")
	}

	var opts []option.ClientOption
	switch {
	case appConfig.GoogleApplicationCredentials != "":
		if _, err := os.Stat(appConfig.GoogleApplicationCredentials); os.IsNotExist(err) {
			logger.Warn("Credentials file does not exist, falling back to ADC lookup inside the SDK",
				zap.String("path", appConfig.GoogleApplicationCredentials))
		}
		logger.Info("Initializing Firebase with credentials file", zap.String("path", appConfig.GoogleApplicationCredentials))
		opts = append(opts, option.WithCredentialsFile(appConfig.GoogleApplicationCredentials))
	case appConfig.FirebaseServiceAccountJSONBase64 != "":
		decoded, err := base64.StdEncoding.DecodeString(appConfig.FirebaseServiceAccountJSONBase64)
		if err != nil {
			return nil, fmt.Errorf("failed to decode FIREBASE_SERVICE_ACCOUNT_JSON_BASE64: %w", err)
		}
		logger.Info("Initializing Firebase with base64 encoded service account JSON")
		opts = append(opts, option.WithCredentialsJSON(decoded))
	default:
		logger.Info("Initializing Firebase using Application Default Credentials")
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: appConfig.FirebaseProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase.NewApp: %w", err)
	}

	fsClient, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("app.Firestore: %w", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		fsClient.Close()
		return nil, fmt.Errorf("app.Auth: %w", err)
	}

	return &Clients{Firestore: fsClient, Auth: authClient}, nil
}

// storeCollection returns a subcollection of one store document.
func storeCollection(client *firestore.Client, storeID, name string) *firestore.CollectionRef {
	return client.Collection(storesCollection).Doc(storeID).Collection(name)
}

// decodeAll drains iter, decoding every document into a T and stamping its ID.
// Documents that fail to decode are logged and skipped.
func decodeAll[T any](iter *firestore.DocumentIterator, setID func(*T, string)) ([]*T, error) {
	defer iter.Stop()

	var out []*T
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var item T
		if err := doc.DataTo(&item); err != nil {
			zap.L().Warn("Skipping undecodable document", zap.String("path", doc.Ref.Path), zap.Error(err))
			continue
		}
		setID(&item, doc.Ref.ID)
		out = append(out, &item)
	}
	return out, nil
}

// exists reports whether q yields at least one document.
func exists(ctx context.Context, q firestore.Query) (bool, error) {
	iter := q.Limit(1).Documents(ctx)
	defer iter.Stop()

	_, err := iter.Next()
	if err == iterator.Done {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// nameTaken runs the normalized-name query inside tx. excludeID lets an update keep its own name.
func nameTaken(tx *firestore.Transaction, q firestore.Query, excludeID string) (bool, error) {
	docs, err := tx.Documents(q).GetAll()
	if err != nil {
		return false, err
	}
	for _, d := range docs {
		if d.Ref.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}
