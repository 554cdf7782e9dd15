package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Domenick1991/flightdesk/config"
	"github.com/Domenick1991/flightdesk/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	flightsCollection      = "flights"
	reservationsCollection = "reservations"
	seatClaimsCollection   = "seat_claims"
	usersCollection        = "users"
)

// NewMongo connects to MongoDB, ensures the unique indexes and returns the
// document-backed stores.
func NewMongo(ctx context.Context, cfg config.DatabaseConfig) (*Repositories, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	db := client.Database(cfg.Name)
	if err := ensureMongoIndexes(ctx, db); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	return &Repositories{
		Flights:      NewMongoFlightRepository(db),
		Reservations: NewMongoReservationRepository(db),
		Users:        NewMongoUserRepository(db),
		close:        client.Disconnect,
	}, nil
}

func ensureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		flightsCollection: {
			{Keys: bson.D{{Key: "flightNo", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "origin", Value: 1}, {Key: "destination", Value: 1}, {Key: "departureDay", Value: 1}}},
		},
		reservationsCollection: {
			{Keys: bson.D{{Key: "bookingId", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "flight", Value: 1}, {Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "passengerEmail", Value: 1}}},
		},
		seatClaimsCollection: {
			{Keys: bson.D{{Key: "reservationId", Value: 1}}},
		},
		usersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}

	for coll, models := range indexes {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create %s indexes: %w", coll, err)
		}
	}
	slog.Info("mongo indexes ready", "database", db.Name())
	return nil
}

// mongoErr maps driver errors onto domain errors.
func mongoErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return domain.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%s: %w", op, domain.ErrConflict)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
