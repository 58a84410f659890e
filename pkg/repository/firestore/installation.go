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

const installationsCollection = "installations"

type installationRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

var _ interfaces.InstallationRepository = &installationRepository{}

func newInstallationRepository(client *firestore.Client) *installationRepository {
	return &installationRepository{client: client}
}

// installationDoc is the Firestore persistence model
type installationDoc struct {
	TeamID      string    `firestore:"team_id"`
	TeamName    string    `firestore:"team_name"`
	BotToken    string    `firestore:"bot_token"`
	BotUserID   string    `firestore:"bot_user_id"`
	InstalledAt time.Time `firestore:"installed_at"`
}

func (r *installationRepository) collection() *firestore.CollectionRef {
	if r.collectionPrefix != "" {
		return r.client.Collection(r.collectionPrefix + "_" + installationsCollection)
	}
	return r.client.Collection(installationsCollection)
}

func toInstallationDoc(inst *model.Installation) *installationDoc {
	return &installationDoc{
		TeamID:      string(inst.TeamID),
		TeamName:    inst.TeamName,
		BotToken:    inst.BotToken,
		BotUserID:   inst.BotUserID,
		InstalledAt: inst.InstalledAt,
	}
}

func fromInstallationDoc(doc *installationDoc) *model.Installation {
	return &model.Installation{
		TeamID:      types.TeamID(doc.TeamID),
		TeamName:    doc.TeamName,
		BotToken:    doc.BotToken,
		BotUserID:   doc.BotUserID,
		InstalledAt: doc.InstalledAt,
	}
}

// Upsert writes the installation keyed by team ID. A keyed Set is atomic, so
// OAuth callback retries simply overwrite the same document.
func (r *installationRepository) Upsert(ctx context.Context, inst *model.Installation) error {
	if inst.TeamID == "" {
		return goerr.New("installation team ID is required")
	}

	doc := toInstallationDoc(inst)
	if doc.InstalledAt.IsZero() {
		doc.InstalledAt = time.Now().UTC()
	}

	if _, err := r.collection().Doc(doc.TeamID).Set(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to upsert installation", goerr.V("teamID", inst.TeamID))
	}

	return nil
}

func (r *installationRepository) GetByTeamID(ctx context.Context, teamID types.TeamID) (*model.Installation, error) {
	snap, err := r.collection().Doc(string(teamID)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(interfaces.ErrNotFound, "installation not found", goerr.V("teamID", teamID))
		}
		return nil, goerr.Wrap(err, "failed to get installation", goerr.V("teamID", teamID))
	}

	var doc installationDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal installation", goerr.V("teamID", teamID))
	}

	return fromInstallationDoc(&doc), nil
}

func (r *installationRepository) List(ctx context.Context) ([]*model.Installation, error) {
	iter := r.collection().Documents(ctx)
	defer iter.Stop()

	var result []*model.Installation
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate installations")
		}

		var doc installationDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal installation", goerr.V("docID", snap.Ref.ID))
		}

		result = append(result, fromInstallationDoc(&doc))
	}

	return result, nil
}
