// Package activity keeps an append-only log of committed engagement actions.
// Records are written after the owning transaction commits; a failed write
// never undoes the action it describes.
package activity

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Action names a committed engagement action
type Action string

const (
	ActionFollow        Action = "follow"
	ActionFollowRequest Action = "follow_request"
	ActionUnfollow      Action = "unfollow"
	ActionAcceptFollow  Action = "accept_follow"
	ActionRejectFollow  Action = "reject_follow"
	ActionLike          Action = "like"
	ActionUnlike        Action = "unlike"
	ActionComment       Action = "comment"
	ActionReply         Action = "reply"
	ActionDeleteComment Action = "delete_comment"
	ActionCreatePost    Action = "create_post"
	ActionSharePost     Action = "share_post"
	ActionDeletePost    Action = "delete_post"
)

// Event is one entry of the activity log
type Event struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Action    Action             `json:"action" bson:"action"`
	ActorID   string             `json:"actor_id" bson:"actor_id"`
	SubjectID string             `json:"subject_id,omitempty" bson:"subject_id,omitempty"`
	PostID    string             `json:"post_id,omitempty" bson:"post_id,omitempty"`
	CommentID string             `json:"comment_id,omitempty" bson:"comment_id,omitempty"`
	FollowID  string             `json:"follow_id,omitempty" bson:"follow_id,omitempty"`
	LikeID    string             `json:"like_id,omitempty" bson:"like_id,omitempty"`
	At        time.Time          `json:"at" bson:"at"`
}

// Recorder appends events to the activity log
type Recorder interface {
	Record(ctx context.Context, event Event) error
}

// Reader reads back the history of one actor, newest first
type Reader interface {
	ListByActor(ctx context.Context, actorID string, limit int64) ([]Event, error)
}

// MongoRecorder stores events in a MongoDB collection
type MongoRecorder struct {
	collection *mongo.Collection
}

// NewMongoRecorder creates a MongoRecorder on the "activity" collection
func NewMongoRecorder(db *mongo.Database) *MongoRecorder {
	return &MongoRecorder{collection: db.Collection("activity")}
}

// EnsureIndexes creates the actor/time index used to read a user's history
func (r *MongoRecorder) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "actor_id", Value: 1}, {Key: "at", Value: -1}},
		Options: options.Index().SetName("actor_at"),
	})
	return err
}

// Record inserts the event
func (r *MongoRecorder) Record(ctx context.Context, event Event) error {
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}
	_, err := r.collection.InsertOne(ctx, event)
	return err
}

// ListByActor returns up to limit events of actorID, newest first. It is
// served by the actor_at index.
func (r *MongoRecorder) ListByActor(ctx context.Context, actorID string, limit int64) ([]Event, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(limit)
	cursor, err := r.collection.Find(ctx, bson.D{{Key: "actor_id", Value: actorID}}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	events := []Event{}
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// Nop discards every event and has no history
type Nop struct{}

func (Nop) Record(context.Context, Event) error { return nil }

func (Nop) ListByActor(context.Context, string, int64) ([]Event, error) { return []Event{}, nil }

// Emit records the event and logs a failure instead of returning it
func Emit(ctx context.Context, rec Recorder, logger *zap.Logger, event Event) {
	if rec == nil {
		return
	}
	if err := rec.Record(ctx, event); err != nil {
		logger.Warn("Failed to record activity",
			zap.String("action", string(event.Action)),
			zap.String("actor_id", event.ActorID),
			zap.Error(err))
	}
}
