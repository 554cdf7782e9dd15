package repository

import (
	"context"
	"time"

	"github.com/Domenick1991/flightdesk/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoUserRepository struct {
	coll *mongo.Collection
}

func NewMongoUserRepository(db *mongo.Database) UserRepository {
	return &MongoUserRepository{coll: db.Collection(usersCollection)}
}

func (r *MongoUserRepository) Create(ctx context.Context, u *domain.User) error {
	u.CreatedAt = time.Now().UTC()
	_, err := r.coll.InsertOne(ctx, u)
	return mongoErr("insert user "+u.Email, err)
}

func (r *MongoUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoUserRepository) List(ctx context.Context) ([]domain.User, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, mongoErr("find users", err)
	}
	users := make([]domain.User, 0)
	if err := cur.All(ctx, &users); err != nil {
		return nil, mongoErr("decode users", err)
	}
	return users, nil
}

func (r *MongoUserRepository) Update(ctx context.Context, u *domain.User) error {
	update := bson.M{"$set": bson.M{
		"firstname": u.FirstName,
		"lastname":  u.LastName,
		"email":     u.Email,
		"password":  u.PasswordHash,
		"isAdmin":   u.IsAdmin,
	}}
	res, err := r.coll.UpdateByID(ctx, u.ID, update)
	if err != nil {
		return mongoErr("update user "+u.Email, err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *MongoUserRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return mongoErr("delete user", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var u domain.User
	if err := r.coll.FindOne(ctx, filter).Decode(&u); err != nil {
		return nil, mongoErr("get user", err)
	}
	return &u, nil
}

var _ UserRepository = (*MongoUserRepository)(nil)
