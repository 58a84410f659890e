package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/taskdeck/taskdeck/pkg/domain/interfaces"
	"github.com/taskdeck/taskdeck/pkg/domain/model"
	"github.com/taskdeck/taskdeck/pkg/domain/types"
)

type installationRepository struct {
	mu            sync.RWMutex
	installations map[types.TeamID]*model.Installation
}

var _ interfaces.InstallationRepository = &installationRepository{}

func newInstallationRepository() *installationRepository {
	return &installationRepository{
		installations: make(map[types.TeamID]*model.Installation),
	}
}

func copyInstallation(inst *model.Installation) *model.Installation {
	copied := *inst
	return &copied
}

func (r *installationRepository) Upsert(ctx context.Context, inst *model.Installation) error {
	if inst.TeamID == "" {
		return goerr.New("installation team ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := copyInstallation(inst)
	if stored.InstalledAt.IsZero() {
		stored.InstalledAt = time.Now().UTC()
	}
	r.installations[stored.TeamID] = stored

	return nil
}

func (r *installationRepository) GetByTeamID(ctx context.Context, teamID types.TeamID) (*model.Installation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	inst, exists := r.installations[teamID]
	if !exists {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "installation not found", goerr.V("teamID", teamID))
	}

	return copyInstallation(inst), nil
}

func (r *installationRepository) List(ctx context.Context) ([]*model.Installation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Installation, 0, len(r.installations))
	for _, inst := range r.installations {
		result = append(result, copyInstallation(inst))
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].TeamID < result[j].TeamID
	})

	return result, nil
}
