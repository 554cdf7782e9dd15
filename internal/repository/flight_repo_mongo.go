package repository

import (
	"context"
	"time"

	"github.com/Domenick1991/flightdesk/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoFlightRepository struct {
	coll *mongo.Collection
}

func NewMongoFlightRepository(db *mongo.Database) FlightRepository {
	return &MongoFlightRepository{coll: db.Collection(flightsCollection)}
}

func (r *MongoFlightRepository) List(ctx context.Context) ([]domain.Flight, error) {
	return r.find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "flightNo", Value: 1}}))
}

func (r *MongoFlightRepository) GetByID(ctx context.Context, id string) (*domain.Flight, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoFlightRepository) GetByFlightNo(ctx context.Context, flightNo string) (*domain.Flight, error) {
	return r.findOne(ctx, bson.M{"flightNo": domain.NormalizeFlightNo(flightNo)})
}

func (r *MongoFlightRepository) FindByRoute(ctx context.Context, origin, destination, weekday string) ([]domain.Flight, error) {
	filter := bson.M{"origin": origin, "destination": destination, "departureDay": weekday}
	return r.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "departureTime", Value: 1}}))
}

func (r *MongoFlightRepository) Create(ctx context.Context, f *domain.Flight) error {
	now := time.Now().UTC()
	f.CreatedAt, f.UpdatedAt = now, now
	_, err := r.coll.InsertOne(ctx, f)
	return mongoErr("insert flight "+f.FlightNo, err)
}

func (r *MongoFlightRepository) Update(ctx context.Context, f *domain.Flight) error {
	f.UpdatedAt = time.Now().UTC()
	update := bson.M{"$set": bson.M{
		"flightNo":      f.FlightNo,
		"airline":       f.Airline,
		"origin":        f.Origin,
		"destination":   f.Destination,
		"departureDay":  f.DepartureDay,
		"departureTime": f.DepartureTime,
		"arrivalDay":    f.ArrivalDay,
		"arrivalTime":   f.ArrivalTime,
		"aircraftType":  f.AircraftType,
		"seatCap":       f.SeatCap,
		"price":         f.Price,
		"updatedAt":     f.UpdatedAt,
	}}
	res, err := r.coll.UpdateByID(ctx, f.ID, update)
	if err != nil {
		return mongoErr("update flight "+f.FlightNo, err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *MongoFlightRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return mongoErr("delete flight", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *MongoFlightRepository) findOne(ctx context.Context, filter bson.M) (*domain.Flight, error) {
	var f domain.Flight
	if err := r.coll.FindOne(ctx, filter).Decode(&f); err != nil {
		return nil, mongoErr("get flight", err)
	}
	return &f, nil
}

func (r *MongoFlightRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]domain.Flight, error) {
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, mongoErr("find flights", err)
	}
	flights := make([]domain.Flight, 0)
	if err := cur.All(ctx, &flights); err != nil {
		return nil, mongoErr("decode flights", err)
	}
	return flights, nil
}

var _ FlightRepository = (*MongoFlightRepository)(nil)
