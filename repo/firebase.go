package repo

import (
	"context"
	"fmt"
	"strconv"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/db"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"CVForgeBot/model"
)

const answersNode = "answers"

// FirebaseConnector stores answer records in the Firebase Realtime Database
// under answers/<userID>.
type FirebaseConnector struct {
	app     *firebase.App
	client  *db.Client
	catalog *model.Catalog
	log     zerolog.Logger
}

// NewFirebaseConnector creates a new Firebase connector
func NewFirebaseConnector(ctx context.Context, serviceAccountKeyPath string, databaseURL string, catalog *model.Catalog, logger zerolog.Logger) (*FirebaseConnector, error) {
	if serviceAccountKeyPath == "" {
		return nil, fmt.Errorf("firebase credentials file not set")
	}
	if databaseURL == "" {
		return nil, fmt.Errorf("firebase database URL not set")
	}

	// Load the service account key file
	opt := option.WithCredentialsFile(serviceAccountKeyPath)

	config := &firebase.Config{
		DatabaseURL: databaseURL,
	}
	app, err := firebase.NewApp(ctx, config, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing Firebase app: %w", err)
	}

	client, err := app.Database(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting database client: %w", err)
	}

	return &FirebaseConnector{
		app:     app,
		client:  client,
		catalog: catalog,
		log:     logger.With().Str("component", "firebase_answers").Logger(),
	}, nil
}

func (fc *FirebaseConnector) userRef(userID int64) *db.Ref {
	return fc.client.NewRef(answersNode).Child(strconv.FormatInt(userID, 10))
}

// Upsert sets one field inside a transaction on the user's node so other
// fields written concurrently survive.
func (fc *FirebaseConnector) Upsert(ctx context.Context, userID int64, field, value string) error {
	if err := fc.catalog.Validate(field); err != nil {
		return err
	}

	err := fc.userRef(userID).Transaction(ctx, func(node db.TransactionNode) (interface{}, error) {
		var current map[string]string
		if err := node.Unmarshal(&current); err != nil {
			return nil, err
		}
		if current == nil {
			current = make(map[string]string, 1)
		}
		current[field] = value
		return current, nil
	})
	if err != nil {
		return fmt.Errorf("error saving answer %s: %w", field, err)
	}
	return nil
}

// Read returns the user's record
func (fc *FirebaseConnector) Read(ctx context.Context, userID int64) (model.AnswerRecord, error) {
	var values map[string]string
	if err := fc.userRef(userID).Get(ctx, &values); err != nil {
		return model.AnswerRecord{}, fmt.Errorf("error reading answers: %w", err)
	}
	if values == nil {
		return model.AnswerRecord{}, model.ErrRecordNotFound
	}

	record := model.NewAnswerRecord(userID)
	for name, v := range values {
		// fields dropped from the catalog are left in the database but not surfaced
		if fc.catalog.Validate(name) != nil {
			fc.log.Warn().Int64("user_id", userID).Str("field", name).Msg("ignoring unknown stored field")
			continue
		}
		record.Values[name] = v
	}
	return record, nil
}

// Clear deletes the user's node
func (fc *FirebaseConnector) Clear(ctx context.Context, userID int64) error {
	if err := fc.userRef(userID).Delete(ctx); err != nil {
		return fmt.Errorf("error clearing answers: %w", err)
	}
	return nil
}

// Close is a no-op; the Firebase SDK holds no closable resources for RTDB.
func (fc *FirebaseConnector) Close() error {
	return nil
}
