// internal/app/store/sessions/store.go
package sessions

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// End reasons.
const (
	EndLogout       = "logout"
	EndTokenExpired = "token_expired"
	EndSuperseded   = "superseded"
	EndInactive     = "inactive"
)

// Session is one sign-in of a marketplace user on this server. Its ID is
// also stored in the cookie so a closed row ends the cookie session.
type Session struct {
	ID     string `bson:"_id"`
	UserID int    `bson:"user_id"`
	Email  string `bson:"email,omitempty"`

	LoginAt      time.Time  `bson:"login_at"`
	LogoutAt     *time.Time `bson:"logout_at,omitempty"`
	LastActiveAt time.Time  `bson:"last_active_at"`
	EndReason    string     `bson:"end_reason,omitempty"`

	IP        string `bson:"ip"`
	UserAgent string `bson:"user_agent,omitempty"`

	// Computed on close
	DurationSecs int64 `bson:"duration_secs,omitempty"`
}

// Active reports whether the session has not been closed.
func (s Session) Active() bool { return s.LogoutAt == nil }

// Store manages login session rows.
type Store struct {
	c *mongo.Collection
}

// New creates a new sessions Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("sessions")}
}

// EnsureIndexes creates necessary indexes for efficient querying.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "logout_at", Value: 1}, {Key: "last_active_at", Value: -1}},
			Options: options.Index().SetName("idx_sessions_active"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "login_at", Value: -1}},
			Options: options.Index().SetName("idx_sessions_user"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Create opens a session for a user, closing any sessions the user still
// has open on this server.
func (s *Store) Create(ctx context.Context, userID int, email, ip, userAgent string) (Session, error) {
	now := time.Now().UTC()

	open, err := s.GetActiveByUser(ctx, userID)
	if err != nil {
		return Session{}, err
	}
	for _, o := range open {
		if err := s.close(ctx, o, EndSuperseded, now); err != nil {
			return Session{}, err
		}
	}

	sess := Session{
		ID:           uuid.NewString(),
		UserID:       userID,
		Email:        email,
		LoginAt:      now,
		LastActiveAt: now,
		IP:           ip,
		UserAgent:    userAgent,
	}
	if _, err := s.c.InsertOne(ctx, sess); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// Close ends a session with the given reason and records its duration.
// Closing an already closed session is a no-op.
func (s *Store) Close(ctx context.Context, id, reason string) error {
	sess, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !sess.Active() {
		return nil
	}
	return s.close(ctx, sess, reason, time.Now().UTC())
}

func (s *Store) close(ctx context.Context, sess Session, reason string, at time.Time) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": sess.ID, "logout_at": nil},
		bson.M{"$set": bson.M{
			"logout_at":     at,
			"end_reason":    reason,
			"duration_secs": int64(at.Sub(sess.LoginAt).Seconds()),
		}},
	)
	return err
}

// Touch bumps last_active_at on an open session. It reports false when the
// session is closed or unknown.
func (s *Store) Touch(ctx context.Context, id string) (bool, error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "logout_at": nil},
		bson.M{"$set": bson.M{"last_active_at": time.Now().UTC()}},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount == 1, nil
}

// GetByID retrieves a session by its ID.
func (s *Store) GetByID(ctx context.Context, id string) (Session, error) {
	var sess Session
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&sess)
	return sess, err
}

// GetActiveByUser returns the user's open sessions.
func (s *Store) GetActiveByUser(ctx context.Context, userID int) ([]Session, error) {
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID, "logout_at": nil})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []Session
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByUser retrieves session history for a user, newest first.
func (s *Store) GetByUser(ctx context.Context, userID int, limit int64) ([]Session, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "login_at", Value: -1}}).
		SetLimit(limit)

	cur, err := s.c.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []Session
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CloseInactive closes open sessions idle longer than threshold.
func (s *Store) CloseInactive(ctx context.Context, threshold time.Duration) (int64, error) {
	now := time.Now().UTC()
	res, err := s.c.UpdateMany(ctx,
		bson.M{
			"logout_at":      nil,
			"last_active_at": bson.M{"$lt": now.Add(-threshold)},
		},
		bson.M{"$set": bson.M{"logout_at": now, "end_reason": EndInactive}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// IsActive is an auth.SessionChecker: unknown ids count as inactive, and
// lookup failures leave the session alone so a Mongo blip does not sign
// everyone out.
func (s *Store) IsActive(ctx context.Context, id string) bool {
	ok, err := s.Touch(ctx, id)
	if err != nil {
		return true
	}
	return ok
}
