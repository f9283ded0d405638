package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/99minutos/product-api/internal/core/domain"
)

const collectionIdentities = "identities"

// CredentialRepository stores identities in MongoDB. Username uniqueness is
// enforced by a unique index, so concurrent inserts of the same username
// produce exactly one document.
type CredentialRepository struct {
	col *mongo.Collection
}

func NewCredentialRepository(db *mongo.Database) *CredentialRepository {
	return &CredentialRepository{col: db.Collection(collectionIdentities)}
}

type identityDocument struct {
	ID             string    `bson:"_id"`
	Username       string    `bson:"username"`
	PasswordDigest []byte    `bson:"password_digest"`
	Role           string    `bson:"role"`
	CreatedAt      time.Time `bson:"created_at"`
}

func (r *CredentialRepository) FindByUsername(ctx context.Context, username string) (*domain.Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc identityDocument
	if err := r.col.FindOne(ctx, bson.M{"username": username}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrIdentityNotFound
		}
		return nil, fmt.Errorf("find identity: %w", err)
	}

	return &domain.Identity{
		ID:             doc.ID,
		Username:       doc.Username,
		PasswordDigest: doc.PasswordDigest,
		Role:           domain.Role(doc.Role),
		CreatedAt:      doc.CreatedAt.UTC(),
	}, nil
}

// Save inserts identity. A duplicate key on username maps to
// domain.ErrUsernameTaken.
func (r *CredentialRepository) Save(ctx context.Context, identity *domain.Identity) (*domain.Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := identityDocument{
		ID:             identity.ID,
		Username:       identity.Username,
		PasswordDigest: identity.PasswordDigest,
		Role:           identity.Role.String(),
		CreatedAt:      identity.CreatedAt,
	}

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUsernameTaken
		}
		return nil, fmt.Errorf("insert identity: %w", err)
	}
	return identity, nil
}

// EnsureIndexes creates the unique username index.
func (r *CredentialRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_username"),
	})
	return err
}
