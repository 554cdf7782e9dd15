package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/flightdesk/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// seatClaim is one claimed seat. The _id makes (flight, seat) unique.
type seatClaim struct {
	ID            string `bson:"_id"`
	FlightNo      string `bson:"flightNo"`
	Seat          string `bson:"seat"`
	ReservationID string `bson:"reservationId"`
}

func seatClaimID(flightNo, seat string) string {
	return flightNo + "/" + seat
}

// seatClaimStore is the part of *mongo.Collection the seat claims use.
type seatClaimStore interface {
	InsertOne(ctx context.Context, document any, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
	DeleteMany(ctx context.Context, filter any, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error)
	Find(ctx context.Context, filter any, opts ...*options.FindOptions) (*mongo.Cursor, error)
}

type MongoReservationRepository struct {
	coll   *mongo.Collection
	claims seatClaimStore
}

func NewMongoReservationRepository(db *mongo.Database) ReservationRepository {
	return &MongoReservationRepository{
		coll:   db.Collection(reservationsCollection),
		claims: db.Collection(seatClaimsCollection),
	}
}

func (r *MongoReservationRepository) Create(ctx context.Context, res *domain.Reservation) error {
	var claimed []string
	if !res.Cancelled() {
		var err error
		if claimed, err = r.claim(ctx, res.FlightNo, res.ID, uniqueSeats(res.Package.Seats())); err != nil {
			return err
		}
	}

	now := time.Now().UTC()
	res.CreatedAt, res.UpdatedAt = now, now
	if _, err := r.coll.InsertOne(ctx, res); err != nil {
		r.release(ctx, claimed)
		return mongoErr("insert reservation "+res.BookingID, err)
	}
	return nil
}

func (r *MongoReservationRepository) GetByID(ctx context.Context, id string) (*domain.Reservation, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoReservationRepository) GetByBookingID(ctx context.Context, bookingID string) (*domain.Reservation, error) {
	return r.findOne(ctx, bson.M{"bookingId": bookingID})
}

func (r *MongoReservationRepository) List(ctx context.Context, filter ReservationFilter) ([]domain.Reservation, error) {
	q := bson.M{}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if filter.PassengerEmail != "" {
		q["passengerEmail"] = filter.PassengerEmail
		// strength 2 ignores case
		opts.SetCollation(&options.Collation{Locale: "en", Strength: 2})
	}
	return r.find(ctx, q, opts)
}

func (r *MongoReservationRepository) ListActiveByFlight(ctx context.Context, flightNo string) ([]domain.Reservation, error) {
	q := bson.M{"flight": flightNo, "status": bson.M{"$ne": domain.ReservationStatusCancelled}}
	return r.find(ctx, q, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
}

// Update claims newly added seats before writing the document and releases
// dropped ones after, so a failed claim leaves the stored reservation intact.
func (r *MongoReservationRepository) Update(ctx context.Context, res *domain.Reservation) error {
	held, err := r.claimsOf(ctx, res.ID)
	if err != nil {
		return err
	}

	want := map[string]string{}
	if !res.Cancelled() {
		for _, seat := range uniqueSeats(res.Package.Seats()) {
			want[seatClaimID(res.FlightNo, seat)] = seat
		}
	}

	var added []string
	for id, seat := range want {
		if _, ok := held[id]; !ok {
			added = append(added, seat)
		}
	}
	claimed, err := r.claim(ctx, res.FlightNo, res.ID, added)
	if err != nil {
		return err
	}

	res.UpdatedAt = time.Now().UTC()
	update := bson.M{"$set": bson.M{
		"passengerName":   res.PassengerName,
		"passengerEmail":  res.PassengerEmail,
		"phoneNum":        res.PhoneNum,
		"passport":        res.Passport,
		"tripType":        res.TripType,
		"travelClass":     res.TravelClass,
		"adults":          res.Adults,
		"children":        res.Children,
		"infants":         res.Infants,
		"fare":            res.Fare,
		"passengerCost":   res.PassengerCost,
		"tripTypeCost":    res.TripTypeCost,
		"travelClassCost": res.TravelClassCost,
		"mealCost":        res.MealCost,
		"baggageCost":     res.BaggageCost,
		"totalPrice":      res.TotalPrice,
		"flight":          res.FlightNo,
		"package":         res.Package,
		"status":          res.Status,
		"updatedAt":       res.UpdatedAt,
	}}
	out, err := r.coll.UpdateByID(ctx, res.ID, update)
	if err != nil {
		r.release(ctx, claimed)
		return mongoErr("update reservation", err)
	}
	if out.MatchedCount == 0 {
		r.release(ctx, claimed)
		return domain.ErrNotFound
	}

	var dropped []string
	for id := range held {
		if _, ok := want[id]; !ok {
			dropped = append(dropped, id)
		}
	}
	r.release(ctx, dropped)
	return nil
}

func (r *MongoReservationRepository) Cancel(ctx context.Context, id string) (*domain.Reservation, error) {
	update := bson.M{"$set": bson.M{"status": domain.ReservationStatusCancelled, "updatedAt": time.Now().UTC()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var res domain.Reservation
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&res); err != nil {
		return nil, mongoErr("cancel reservation", err)
	}
	if _, err := r.claims.DeleteMany(ctx, bson.M{"reservationId": id}); err != nil {
		return nil, mongoErr("release seats", err)
	}
	return &res, nil
}

func (r *MongoReservationRepository) CheckIn(ctx context.Context, bookingID, boardingPass string) (bool, error) {
	filter := bson.M{
		"bookingId": bookingID,
		"checkedIn": false,
		"status":    bson.M{"$ne": domain.ReservationStatusCancelled},
	}
	update := bson.M{"$set": bson.M{
		"checkedIn":          true,
		"boardingPassNumber": boardingPass,
		"updatedAt":          time.Now().UTC(),
	}}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, mongoErr("check in reservation", err)
	}
	return res.ModifiedCount == 1, nil
}

// claim inserts one claim per seat and undoes its own inserts on the first failure.
func (r *MongoReservationRepository) claim(ctx context.Context, flightNo, reservationID string, seats []string) ([]string, error) {
	claimed := make([]string, 0, len(seats))
	for _, seat := range seats {
		c := seatClaim{ID: seatClaimID(flightNo, seat), FlightNo: flightNo, Seat: seat, ReservationID: reservationID}
		if _, err := r.claims.InsertOne(ctx, c); err != nil {
			r.release(ctx, claimed)
			if mongo.IsDuplicateKeyError(err) {
				return nil, fmt.Errorf("seat %s on %s: %w", seat, flightNo, domain.ErrSeatTaken)
			}
			return nil, fmt.Errorf("claim seat %s: %w", seat, err)
		}
		claimed = append(claimed, c.ID)
	}
	return claimed, nil
}

func (r *MongoReservationRepository) release(ctx context.Context, ids []string) {
	if len(ids) == 0 {
		return
	}
	_, _ = r.claims.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

func (r *MongoReservationRepository) claimsOf(ctx context.Context, reservationID string) (map[string]struct{}, error) {
	cur, err := r.claims.Find(ctx, bson.M{"reservationId": reservationID})
	if err != nil {
		return nil, mongoErr("find seat claims", err)
	}
	var claims []seatClaim
	if err := cur.All(ctx, &claims); err != nil {
		return nil, mongoErr("decode seat claims", err)
	}
	held := make(map[string]struct{}, len(claims))
	for _, c := range claims {
		held[c.ID] = struct{}{}
	}
	return held, nil
}

func (r *MongoReservationRepository) findOne(ctx context.Context, filter bson.M) (*domain.Reservation, error) {
	var res domain.Reservation
	err := r.coll.FindOne(ctx, filter).Decode(&res)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get reservation: %w", err)
	}
	return &res, nil
}

func (r *MongoReservationRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]domain.Reservation, error) {
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, mongoErr("find reservations", err)
	}
	out := make([]domain.Reservation, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, mongoErr("decode reservations", err)
	}
	return out, nil
}

var _ ReservationRepository = (*MongoReservationRepository)(nil)
