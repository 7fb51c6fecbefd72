package domain

import "time"

// Favorite bookmarks a trade for a user. The (user, trade) pair is unique;
// the store enforces this with a compound index.
type Favorite struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	UserID    string    `bson:"user_id" json:"user_id"`
	TradeID   string    `bson:"trade_id" json:"trade_id"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`

	// Trade is resolved for API responses and never persisted.
	Trade *Trade `bson:"-" json:"trade,omitempty"`
}
