package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/commonfund/treasury-api/internal/core/domain"
	"github.com/commonfund/treasury-api/internal/core/ports"
)

const collectionActions = "actions"

// ActionRepository implements ports.ActionRepository on an append-only
// MongoDB collection. Documents are inserted once and never updated.
type ActionRepository struct {
	col *mongo.Collection
}

func NewActionRepository(db *mongo.Database) *ActionRepository {
	return &ActionRepository{col: db.Collection(collectionActions)}
}

type actionDoc struct {
	Kind        string    `bson:"kind"`
	Actor       string    `bson:"actor"`
	Role        string    `bson:"role"`
	Message     string    `bson:"message"`
	Beneficiary string    `bson:"beneficiary,omitempty"`
	Amount      int64     `bson:"amount"`
	ProposalID  *uint64   `bson:"proposal_id,omitempty"`
	UpVotes     int64     `bson:"up_votes,omitempty"`
	DownVotes   int64     `bson:"down_votes,omitempty"`
	Choice      *bool     `bson:"choice,omitempty"`
	At          time.Time `bson:"at"`
}

// Append inserts one action record.
func (r *ActionRepository) Append(ctx context.Context, action *domain.Action) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := actionDoc{
		Kind:        string(action.Kind),
		Actor:       string(action.Actor),
		Role:        string(action.Role),
		Message:     action.Message,
		Beneficiary: string(action.Beneficiary),
		Amount:      action.Amount,
		ProposalID:  action.ProposalID,
		UpVotes:     action.UpVotes,
		DownVotes:   action.DownVotes,
		Choice:      action.Choice,
		At:          action.At,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("append action: %w", err)
	}
	return nil
}

// List returns a page of actions in insertion order and the total count.
func (r *ActionRepository) List(ctx context.Context, filter ports.ActionFilter) ([]domain.Action, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := bson.M{}
	if filter.Kind != "" {
		query["kind"] = filter.Kind
	}
	if !filter.Actor.IsZero() {
		query["actor"] = string(filter.Actor)
	}

	total, err := r.col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("count actions: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "at", Value: 1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list actions: %w", err)
	}
	defer cursor.Close(ctx)

	var actions []domain.Action
	for cursor.Next(ctx) {
		var doc actionDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, 0, fmt.Errorf("decode action: %w", err)
		}
		actions = append(actions, domain.Action{
			Kind:        domain.ActionKind(doc.Kind),
			Actor:       domain.Identity(doc.Actor),
			Role:        domain.RoleTag(doc.Role),
			Message:     doc.Message,
			Beneficiary: domain.Identity(doc.Beneficiary),
			Amount:      doc.Amount,
			ProposalID:  doc.ProposalID,
			UpVotes:     doc.UpVotes,
			DownVotes:   doc.DownVotes,
			Choice:      doc.Choice,
			At:          doc.At,
		})
	}
	if err := cursor.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate actions: %w", err)
	}
	return actions, total, nil
}

// EnsureIndexes creates the indexes used by List filters.
func (r *ActionRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "kind", Value: 1}}},
		{Keys: bson.D{{Key: "actor", Value: 1}}},
		{Keys: bson.D{{Key: "at", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
