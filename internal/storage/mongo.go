package storage

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/example/trade-marketplace/internal/domain"
)

const (
	tradesCollection    = "trades"
	favoritesCollection = "favorites"
	usersCollection     = "users"
)

// EnsureIndexes creates the indexes the workflows rely on. The unique
// compound index on favorites is the authoritative duplicate-favorite
// guard; application-level pre-checks only improve the error message.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(favoritesCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "trade_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}
	_, err = db.Collection(tradesCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	if err != nil {
		return err
	}
	_, err = db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// MongoTradeRepository persists trades in MongoDB.
type MongoTradeRepository struct {
	collection *mongo.Collection
}

// NewMongoTradeRepository constructs a Mongo backed trade repository.
func NewMongoTradeRepository(db *mongo.Database) *MongoTradeRepository {
	return &MongoTradeRepository{collection: db.Collection(tradesCollection)}
}

// Create inserts a new trade document.
func (r *MongoTradeRepository) Create(ctx context.Context, tr *domain.Trade) error {
	if tr.ID == "" {
		tr.ID = primitive.NewObjectID().Hex()
	}
	now := time.Now().UTC()
	if tr.CreatedAt.IsZero() {
		tr.CreatedAt = now
	}
	tr.UpdatedAt = now
	_, err := r.collection.InsertOne(ctx, tr)
	return err
}

// Update replaces an existing trade document.
func (r *MongoTradeRepository) Update(ctx context.Context, tr *domain.Trade) error {
	if tr.ID == "" {
		return ErrNotFound
	}
	tr.UpdatedAt = time.Now().UTC()
	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": tr.ID}, tr, options.Replace().SetUpsert(false))
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a trade document.
func (r *MongoTradeRepository) Delete(ctx context.Context, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID fetches a trade document by id.
func (r *MongoTradeRepository) GetByID(ctx context.Context, id string) (*domain.Trade, error) {
	var tr domain.Trade
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&tr)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &tr, nil
}

// List returns trades sorted by creation date descending.
func (r *MongoTradeRepository) List(ctx context.Context, limit int) ([]*domain.Trade, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts = opts.SetLimit(int64(limit))
	}
	return r.decodeTrades(ctx, bson.D{}, opts)
}

// ListByUser returns all trades owned by userID, newest first.
func (r *MongoTradeRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Trade, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return r.decodeTrades(ctx, bson.M{"user_id": userID}, opts)
}

func (r *MongoTradeRepository) decodeTrades(ctx context.Context, filter interface{}, opts *options.FindOptions) ([]*domain.Trade, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []*domain.Trade
	for cursor.Next(ctx) {
		var tr domain.Trade
		if err := cursor.Decode(&tr); err != nil {
			return nil, err
		}
		results = append(results, &tr)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// MongoFavoriteRepository persists favorites in MongoDB.
type MongoFavoriteRepository struct {
	collection *mongo.Collection
}

// NewMongoFavoriteRepository constructs a Mongo backed favorite repository.
func NewMongoFavoriteRepository(db *mongo.Database) *MongoFavoriteRepository {
	return &MongoFavoriteRepository{collection: db.Collection(favoritesCollection)}
}

// Create inserts a favorite document. A violation of the unique
// (user_id, trade_id) index surfaces as ErrDuplicate.
func (r *MongoFavoriteRepository) Create(ctx context.Context, fav *domain.Favorite) error {
	if fav.ID == "" {
		fav.ID = primitive.NewObjectID().Hex()
	}
	if fav.CreatedAt.IsZero() {
		fav.CreatedAt = time.Now().UTC()
	}
	_, err := r.collection.InsertOne(ctx, fav)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

// Delete removes a favorite document.
func (r *MongoFavoriteRepository) Delete(ctx context.Context, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID fetches a favorite document by id.
func (r *MongoFavoriteRepository) GetByID(ctx context.Context, id string) (*domain.Favorite, error) {
	var fav domain.Favorite
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&fav)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &fav, nil
}

// FindByUserAndTrade fetches the favorite for a (user, trade) pair.
func (r *MongoFavoriteRepository) FindByUserAndTrade(ctx context.Context, userID, tradeID string) (*domain.Favorite, error) {
	var fav domain.Favorite
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID, "trade_id": tradeID}).Decode(&fav)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &fav, nil
}

// ListByUser returns the user's favorites sorted by creation date descending.
func (r *MongoFavoriteRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Favorite, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []*domain.Favorite
	for cursor.Next(ctx) {
		var fav domain.Favorite
		if err := cursor.Decode(&fav); err != nil {
			return nil, err
		}
		results = append(results, &fav)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// MongoUserRepository persists users in MongoDB.
type MongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository constructs a Mongo backed user repository.
func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{collection: db.Collection(usersCollection)}
}

// Create inserts a user document.
func (r *MongoUserRepository) Create(ctx context.Context, u *domain.User) error {
	if u.ID == "" {
		u.ID = primitive.NewObjectID().Hex()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	_, err := r.collection.InsertOne(ctx, u)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

// GetByID fetches a user document by id.
func (r *MongoUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetByUsername fetches a user document by username.
func (r *MongoUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var u domain.User
	err := r.collection.FindOne(ctx, bson.M{"username": username}).Decode(&u)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}
