package usecase

import (
	"github.com/taskdeck/taskdeck/pkg/domain/interfaces"
	slacksvc "github.com/taskdeck/taskdeck/pkg/service/slack"
	"github.com/taskdeck/taskdeck/pkg/service/taskcache"
)

// UseCases bundles the application use cases around one repository
type UseCases struct {
	repo         interfaces.Repository
	slackService slacksvc.Service
	cache        *taskcache.Cache
	defaultToken string

	Installation *InstallationUseCase
	Identity     *IdentityResolver
	Task         *TaskUseCase
	Event        *EventUseCase
	Interaction  *InteractionUseCase
}

type Option func(*UseCases)

// WithSlackService sets the outbound Slack client
func WithSlackService(svc slacksvc.Service) Option {
	return func(uc *UseCases) {
		uc.slackService = svc
	}
}

// WithTaskCache sets the dashboard view cache
func WithTaskCache(cache *taskcache.Cache) Option {
	return func(uc *UseCases) {
		uc.cache = cache
	}
}

// WithDefaultBotToken sets the fallback token for workspaces without an
// installation record (legacy single-workspace deployments)
func WithDefaultBotToken(token string) Option {
	return func(uc *UseCases) {
		uc.defaultToken = token
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo: repo,
	}

	for _, opt := range opts {
		opt(uc)
	}

	if uc.cache == nil {
		uc.cache = taskcache.New()
	}

	uc.Installation = NewInstallationUseCase(repo, uc.slackService, uc.defaultToken)
	uc.Identity = NewIdentityResolver(repo, uc.slackService)
	uc.Task = NewTaskUseCase(repo, uc.cache)
	uc.Event = NewEventUseCase(uc.Installation, uc.Identity, uc.Task)
	uc.Interaction = NewInteractionUseCase(repo, uc.slackService, uc.Installation, uc.Identity, uc.Task)

	return uc
}
