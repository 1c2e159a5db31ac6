package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/darktech/marketplace-auth/internal/core/domain"
)

const inviteCollection = "invites"

// MongoInviteRepository persists single-use invite codes. The collection is
// expected to carry a unique index on code.
type MongoInviteRepository struct {
	coll *mongo.Collection
}

func NewInviteRepository(db *mongo.Database) *MongoInviteRepository {
	return &MongoInviteRepository{coll: db.Collection(inviteCollection)}
}

type mongoInvite struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Code      string             `bson:"code"`
	Role      string             `bson:"role"`
	Status    string             `bson:"status"`
	CreatedBy string             `bson:"created_by,omitempty"`
	UsedBy    string             `bson:"used_by,omitempty"`
	UsedAt    *time.Time         `bson:"used_at,omitempty"`
	CreatedAt time.Time          `bson:"created_at"`
}

func (r *MongoInviteRepository) FindByCode(ctx context.Context, code string) (*domain.Invite, error) {
	var mi mongoInvite
	if err := r.coll.FindOne(ctx, bson.M{"code": code}).Decode(&mi); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrInviteNotFound
		}
		return nil, fmt.Errorf("find invite: %w", err)
	}
	return mi.toDomain(), nil
}

// Consume flips the code available → used in one conditional write. The
// status filter is evaluated atomically by the server, so of two concurrent
// redemptions exactly one sees a matched document; the loser gets
// domain.ErrInviteConsumed.
func (r *MongoInviteRepository) Consume(ctx context.Context, code string, usedAt time.Time) (*domain.Invite, error) {
	var mi mongoInvite
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"code": code, "status": string(domain.InviteAvailable)},
		bson.M{"$set": bson.M{"status": string(domain.InviteUsed), "used_at": usedAt}},
	).Decode(&mi)
	if err != nil {
		if err != mongo.ErrNoDocuments {
			return nil, fmt.Errorf("consume invite: %w", err)
		}
		// No available document matched: either the code does not exist or
		// someone consumed it first.
		if _, findErr := r.FindByCode(ctx, code); findErr != nil {
			return nil, findErr
		}
		return nil, domain.ErrInviteConsumed
	}

	invite := mi.toDomain()
	invite.Status = domain.InviteUsed
	invite.UsedAt = &usedAt
	return invite, nil
}

// Link attaches userID to the code when used_by is unset or already userID.
// It deliberately ignores status: the code was consumed during registration
// and this follow-up only records who ended up owning it.
func (r *MongoInviteRepository) Link(ctx context.Context, code, userID string) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{
			"code": code,
			"$or": bson.A{
				bson.M{"used_by": bson.M{"$exists": false}},
				bson.M{"used_by": ""},
				bson.M{"used_by": userID},
			},
		},
		bson.M{"$set": bson.M{"used_by": userID}},
	)
	if err != nil {
		return fmt.Errorf("link invite: %w", err)
	}
	if res.MatchedCount == 0 {
		if _, findErr := r.FindByCode(ctx, code); findErr != nil {
			return findErr
		}
		return domain.ErrInviteConflict
	}
	return nil
}

func (r *MongoInviteRepository) Create(ctx context.Context, invite *domain.Invite) (*domain.Invite, error) {
	doc := mongoInvite{
		Code:      invite.Code,
		Role:      string(invite.Role),
		Status:    string(invite.Status),
		CreatedBy: invite.CreatedBy,
		CreatedAt: invite.CreatedAt,
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert invite: %w", err)
	}

	created := *invite
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		created.ID = oid.Hex()
	}
	return &created, nil
}

func (mi *mongoInvite) toDomain() *domain.Invite {
	return &domain.Invite{
		ID:        mi.ID.Hex(),
		Code:      mi.Code,
		Role:      domain.Role(mi.Role),
		Status:    domain.InviteStatus(mi.Status),
		CreatedBy: mi.CreatedBy,
		UsedBy:    mi.UsedBy,
		UsedAt:    mi.UsedAt,
		CreatedAt: mi.CreatedAt,
	}
}
