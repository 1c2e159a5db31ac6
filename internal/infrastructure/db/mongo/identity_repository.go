package mongo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/darktech/marketplace-auth/internal/core/domain"
)

const (
	identityCollection = "identities"
	roleCollection     = "user_roles"
)

// MongoIdentityRepository persists identities and role assignments.
// Usernames are stored lowercase; the collection is expected to carry a
// unique index on username.
type MongoIdentityRepository struct {
	identities *mongo.Collection
	roles      *mongo.Collection
}

func NewIdentityRepository(db *mongo.Database) *MongoIdentityRepository {
	return &MongoIdentityRepository{
		identities: db.Collection(identityCollection),
		roles:      db.Collection(roleCollection),
	}
}

type mongoIdentity struct {
	ID               primitive.ObjectID `bson:"_id,omitempty"`
	Username         string             `bson:"username"`
	PINHash          *string            `bson:"pin_hash"`
	FailedAttempts   int                `bson:"failed_attempts"`
	IsLocked         bool               `bson:"is_locked"`
	LastLoginAttempt *time.Time         `bson:"last_login_attempt,omitempty"`
	CreatedAt        time.Time          `bson:"created_at"`
}

type mongoRoleAssignment struct {
	UserID string `bson:"user_id"`
	Role   string `bson:"role"`
}

func (r *MongoIdentityRepository) FindByUsername(ctx context.Context, username string) (*domain.Identity, error) {
	var mi mongoIdentity
	err := r.identities.FindOne(ctx, bson.M{"username": strings.ToLower(username)}).Decode(&mi)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find identity: %w", err)
	}
	return mi.toDomain(), nil
}

func (r *MongoIdentityRepository) Create(ctx context.Context, identity *domain.Identity) (*domain.Identity, error) {
	doc := mongoIdentity{
		Username:  strings.ToLower(identity.Username),
		CreatedAt: identity.CreatedAt,
	}
	if identity.PINHash != "" {
		doc.PINHash = &identity.PINHash
	}

	res, err := r.identities.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert identity: %w", err)
	}

	created := *identity
	created.Username = doc.Username
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		created.ID = oid.Hex()
	}
	return &created, nil
}

// ProvisionPINHash sets pin_hash only while it is still unset, so a PIN
// adopted at first login can never replace an existing one.
func (r *MongoIdentityRepository) ProvisionPINHash(ctx context.Context, id, hash string) (bool, error) {
	oid, err := objectID(id)
	if err != nil {
		return false, err
	}

	res, err := r.identities.UpdateOne(ctx,
		bson.M{"_id": oid, "pin_hash": nil},
		bson.M{"$set": bson.M{"pin_hash": hash}},
	)
	if err != nil {
		return false, fmt.Errorf("provision pin hash: %w", err)
	}
	return res.ModifiedCount == 1, nil
}

func (r *MongoIdentityRepository) ResetLockout(ctx context.Context, id string, at time.Time) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}

	_, err = r.identities.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{
			"failed_attempts":    0,
			"is_locked":          false,
			"last_login_attempt": at,
		}},
	)
	if err != nil {
		return fmt.Errorf("reset lockout: %w", err)
	}
	return nil
}

func (r *MongoIdentityRepository) RecordFailure(ctx context.Context, id string, attempts int, locked bool, at time.Time) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}

	_, err = r.identities.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{
			"failed_attempts":    attempts,
			"is_locked":          locked,
			"last_login_attempt": at,
		}},
	)
	if err != nil {
		return fmt.Errorf("record failure: %w", err)
	}
	return nil
}

func (r *MongoIdentityRepository) ListRoles(ctx context.Context, userID string) ([]domain.Role, error) {
	cur, err := r.roles.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	defer cur.Close(ctx)

	var held []domain.Role
	for cur.Next(ctx) {
		var ra mongoRoleAssignment
		if err := cur.Decode(&ra); err != nil {
			return nil, fmt.Errorf("decode role assignment: %w", err)
		}
		held = append(held, domain.Role(ra.Role))
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	return held, nil
}

func (r *MongoIdentityRepository) AssignRole(ctx context.Context, userID string, role domain.Role) error {
	_, err := r.roles.InsertOne(ctx, mongoRoleAssignment{UserID: userID, Role: string(role)})
	if err != nil {
		return fmt.Errorf("assign role: %w", err)
	}
	return nil
}

func (mi *mongoIdentity) toDomain() *domain.Identity {
	identity := &domain.Identity{
		ID:               mi.ID.Hex(),
		Username:         mi.Username,
		FailedAttempts:   mi.FailedAttempts,
		IsLocked:         mi.IsLocked,
		LastLoginAttempt: mi.LastLoginAttempt,
		CreatedAt:        mi.CreatedAt,
	}
	if mi.PINHash != nil {
		identity.PINHash = *mi.PINHash
	}
	return identity
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("invalid identity id %q: %w", id, err)
	}
	return oid, nil
}
