package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/spec-kit/account-service/internal/domain"
)

type accountDocument struct {
	ID                primitive.ObjectID `bson:"_id,omitempty"`
	Email             string             `bson:"email"`
	FirstName         string             `bson:"firstName"`
	LastName          string             `bson:"lastName"`
	PasswordHash      string             `bson:"password"`
	Verified          bool               `bson:"verified"`
	VerificationCode  string             `bson:"verificationCode"`
	PasswordResetCode string             `bson:"passwordResetCode,omitempty"`
	CreatedAt         time.Time          `bson:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt"`
}

func (d accountDocument) toDomain() *domain.Account {
	return &domain.Account{
		ID:                d.ID.Hex(),
		Email:             d.Email,
		FirstName:         d.FirstName,
		LastName:          d.LastName,
		PasswordHash:      d.PasswordHash,
		Verified:          d.Verified,
		VerificationCode:  d.VerificationCode,
		PasswordResetCode: d.PasswordResetCode,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
}

// MongoAccountRepository stores accounts as documents in a single collection.
type MongoAccountRepository struct {
	coll    *mongo.Collection
	timeout time.Duration
}

// NewMongoAccountRepository wraps the accounts collection. Each call is bounded by timeout.
func NewMongoAccountRepository(coll *mongo.Collection, timeout time.Duration) *MongoAccountRepository {
	return &MongoAccountRepository{coll: coll, timeout: timeout}
}

func (r *MongoAccountRepository) getContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

// EnsureIndexes creates the unique email index the duplicate check relies on.
func (r *MongoAccountRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := r.getContext(ctx)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique"),
	})
	if err != nil {
		return fmt.Errorf("create email index: %w", err)
	}
	return nil
}

func (r *MongoAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	ctx, cancel := r.getContext(ctx)
	defer cancel()

	now := time.Now().UTC()
	doc := accountDocument{
		Email:             account.Email,
		FirstName:         account.FirstName,
		LastName:          account.LastName,
		PasswordHash:      account.PasswordHash,
		Verified:          account.Verified,
		VerificationCode:  account.VerificationCode,
		PasswordResetCode: account.PasswordResetCode,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("insert account: %w", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return fmt.Errorf("insert account: unexpected id type %T", res.InsertedID)
	}
	account.ID = oid.Hex()
	account.CreatedAt = now
	account.UpdatedAt = now
	return nil
}

func (r *MongoAccountRepository) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrAccountNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *MongoAccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoAccountRepository) findOne(ctx context.Context, filter bson.M) (*domain.Account, error) {
	ctx, cancel := r.getContext(ctx)
	defer cancel()

	var doc accountDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *MongoAccountRepository) Save(ctx context.Context, account *domain.Account) error {
	oid, err := primitive.ObjectIDFromHex(account.ID)
	if err != nil {
		return ErrAccountNotFound
	}

	ctx, cancel := r.getContext(ctx)
	defer cancel()

	now := time.Now().UTC()
	set := bson.M{
		"passwordResetCode": account.PasswordResetCode,
		"updatedAt":         now,
	}
	// verified only ever moves to true
	if account.Verified {
		set["verified"] = true
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrAccountNotFound
	}
	account.UpdatedAt = now
	return nil
}
