package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/taskdeck/taskdeck/pkg/domain/interfaces"
	"github.com/taskdeck/taskdeck/pkg/domain/model"
	"github.com/taskdeck/taskdeck/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	usersCollection        = "users"
	userSlackIDsCollection = "user_slack_ids"
)

type userRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

var _ interfaces.UserRepository = &userRepository{}

func newUserRepository(client *firestore.Client) *userRepository {
	return &userRepository{client: client}
}

// userDoc is the Firestore persistence model
type userDoc struct {
	ID        string    `firestore:"id"`
	SlackID   string    `firestore:"slack_id"`
	Email     string    `firestore:"email"`
	Name      string    `firestore:"name"`
	AvatarURL string    `firestore:"avatar_url"`
	TeamID    string    `firestore:"team_id"`
	CreatedAt time.Time `firestore:"created_at"`
	UpdatedAt time.Time `firestore:"updated_at"`
}

// slackIDDoc maps a Slack user ID to an internal user ID. The document ID is
// the Slack ID itself, so the mapping carries the uniqueness constraint.
type slackIDDoc struct {
	UserID string `firestore:"user_id"`
}

func (r *userRepository) collection() *firestore.CollectionRef {
	if r.collectionPrefix != "" {
		return r.client.Collection(r.collectionPrefix + "_" + usersCollection)
	}
	return r.client.Collection(usersCollection)
}

func (r *userRepository) slackIDCollection() *firestore.CollectionRef {
	if r.collectionPrefix != "" {
		return r.client.Collection(r.collectionPrefix + "_" + userSlackIDsCollection)
	}
	return r.client.Collection(userSlackIDsCollection)
}

func toUserDoc(u *model.User) *userDoc {
	return &userDoc{
		ID:        string(u.ID),
		SlackID:   string(u.SlackID),
		Email:     u.Email,
		Name:      u.Name,
		AvatarURL: u.AvatarURL,
		TeamID:    string(u.TeamID),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func fromUserDoc(doc *userDoc) *model.User {
	return &model.User{
		ID:        types.UserID(doc.ID),
		SlackID:   types.SlackUserID(doc.SlackID),
		Email:     doc.Email,
		Name:      doc.Name,
		AvatarURL: doc.AvatarURL,
		TeamID:    types.TeamID(doc.TeamID),
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
}

func (r *userRepository) GetByID(ctx context.Context, id types.UserID) (*model.User, error) {
	snap, err := r.collection().Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(interfaces.ErrNotFound, "user not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get user", goerr.V("id", id))
	}

	var doc userDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal user", goerr.V("id", id))
	}

	return fromUserDoc(&doc), nil
}

func (r *userRepository) GetBySlackID(ctx context.Context, slackID types.SlackUserID) (*model.User, error) {
	snap, err := r.slackIDCollection().Doc(string(slackID)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(interfaces.ErrNotFound, "user not found", goerr.V("slackID", slackID))
		}
		return nil, goerr.Wrap(err, "failed to get slack ID mapping", goerr.V("slackID", slackID))
	}

	var mapping slackIDDoc
	if err := snap.DataTo(&mapping); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal slack ID mapping", goerr.V("slackID", slackID))
	}

	return r.GetByID(ctx, types.UserID(mapping.UserID))
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	iter := r.collection().Where("email", "==", email).Limit(1).Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if err == iterator.Done {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "user not found", goerr.V("email", email))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query user by email", goerr.V("email", email))
	}

	var doc userDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal user", goerr.V("email", email))
	}

	return fromUserDoc(&doc), nil
}

// UpsertBySlackID runs the create-or-merge decision inside a transaction so
// that concurrent first-contact resolutions of one Slack ID commit exactly one
// user document. The mapping document keyed by Slack ID is the serialization
// point: both transactions read it, and the loser retries against the winner's
// committed state.
func (r *userRepository) UpsertBySlackID(ctx context.Context, user *model.User) (*model.User, error) {
	if user.SlackID == "" {
		return nil, goerr.New("slack ID is required for upsert")
	}

	var result *model.User

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		mappingRef := r.slackIDCollection().Doc(string(user.SlackID))

		mappingSnap, err := tx.Get(mappingRef)
		if err != nil && status.Code(err) != codes.NotFound {
			return goerr.Wrap(err, "failed to read slack ID mapping")
		}

		if mappingSnap != nil && mappingSnap.Exists() {
			var mapping slackIDDoc
			if err := mappingSnap.DataTo(&mapping); err != nil {
				return goerr.Wrap(err, "failed to unmarshal slack ID mapping")
			}

			userRef := r.collection().Doc(mapping.UserID)
			userSnap, err := tx.Get(userRef)
			if err != nil {
				return goerr.Wrap(err, "failed to read user for merge", goerr.V("userID", mapping.UserID))
			}

			var doc userDoc
			if err := userSnap.DataTo(&doc); err != nil {
				return goerr.Wrap(err, "failed to unmarshal user for merge")
			}

			existing := fromUserDoc(&doc)
			existing.Merge(user)
			result = existing

			return tx.Set(userRef, toUserDoc(existing))
		}

		created := *user
		if created.ID == "" {
			created.ID = types.NewUserID()
		}
		now := time.Now().UTC()
		if created.CreatedAt.IsZero() {
			created.CreatedAt = now
		}
		created.UpdatedAt = now
		result = &created

		if err := tx.Set(r.collection().Doc(string(created.ID)), toUserDoc(&created)); err != nil {
			return goerr.Wrap(err, "failed to create user")
		}
		return tx.Set(mappingRef, &slackIDDoc{UserID: string(created.ID)})
	})
	if err != nil {
		return nil, goerr.Wrap(err, "user upsert transaction failed", goerr.V("slackID", user.SlackID))
	}

	return result, nil
}
