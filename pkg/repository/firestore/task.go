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

const tasksCollection = "tasks"

type taskRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

var _ interfaces.TaskRepository = &taskRepository{}

func newTaskRepository(client *firestore.Client) *taskRepository {
	return &taskRepository{client: client}
}

// taskDoc is the Firestore persistence model
type taskDoc struct {
	ID             string     `firestore:"id"`
	Title          string     `firestore:"title"`
	Description    string     `firestore:"description"`
	Status         string     `firestore:"status"`
	Priority       string     `firestore:"priority"`
	DueDate        *time.Time `firestore:"due_date"`
	AssigneeID     string     `firestore:"assignee_id"`
	CreatorID      string     `firestore:"creator_id"`
	TeamID         string     `firestore:"team_id"`
	SlackChannelID string     `firestore:"slack_channel_id"`
	SlackMessageTS string     `firestore:"slack_message_ts"`
	SlackPermalink string     `firestore:"slack_permalink"`
	CreatedAt      time.Time  `firestore:"created_at"`
}

func (r *taskRepository) collection() *firestore.CollectionRef {
	if r.collectionPrefix != "" {
		return r.client.Collection(r.collectionPrefix + "_" + tasksCollection)
	}
	return r.client.Collection(tasksCollection)
}

func toTaskDoc(t *model.Task) *taskDoc {
	return &taskDoc{
		ID:             string(t.ID),
		Title:          t.Title,
		Description:    t.Description,
		Status:         string(t.Status),
		Priority:       string(t.Priority),
		DueDate:        t.DueDate,
		AssigneeID:     string(t.AssigneeID),
		CreatorID:      string(t.CreatorID),
		TeamID:         string(t.TeamID),
		SlackChannelID: t.SlackChannelID,
		SlackMessageTS: t.SlackMessageTS,
		SlackPermalink: t.SlackPermalink,
		CreatedAt:      t.CreatedAt,
	}
}

func fromTaskDoc(doc *taskDoc) *model.Task {
	return &model.Task{
		ID:             types.TaskID(doc.ID),
		Title:          doc.Title,
		Description:    doc.Description,
		Status:         types.TaskStatus(doc.Status),
		Priority:       types.Priority(doc.Priority),
		DueDate:        doc.DueDate,
		AssigneeID:     types.UserID(doc.AssigneeID),
		CreatorID:      types.UserID(doc.CreatorID),
		TeamID:         types.TeamID(doc.TeamID),
		SlackChannelID: doc.SlackChannelID,
		SlackMessageTS: doc.SlackMessageTS,
		SlackPermalink: doc.SlackPermalink,
		CreatedAt:      doc.CreatedAt,
	}
}

func (r *taskRepository) Create(ctx context.Context, task *model.Task) error {
	if task.ID == "" {
		task.ID = types.NewTaskID()
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now().UTC()
	}

	if _, err := r.collection().Doc(string(task.ID)).Create(ctx, toTaskDoc(task)); err != nil {
		return goerr.Wrap(err, "failed to create task", goerr.V("id", task.ID))
	}

	return nil
}

func (r *taskRepository) GetByID(ctx context.Context, id types.TaskID) (*model.Task, error) {
	snap, err := r.collection().Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(interfaces.ErrNotFound, "task not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get task", goerr.V("id", id))
	}

	var doc taskDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal task", goerr.V("id", id))
	}

	return fromTaskDoc(&doc), nil
}

func (r *taskRepository) ListRecent(ctx context.Context, teamID types.TeamID, limit int) ([]*model.Task, error) {
	return r.List(ctx, teamID, interfaces.TaskListFilter{Limit: limit})
}

func (r *taskRepository) List(ctx context.Context, teamID types.TeamID, filter interfaces.TaskListFilter) ([]*model.Task, error) {
	q := r.collection().Where("team_id", "==", string(teamID))

	if filter.Status != "" {
		q = q.Where("status", "==", string(filter.Status))
	}
	if filter.AssigneeID != "" {
		q = q.Where("assignee_id", "==", string(filter.AssigneeID))
	}
	if filter.DueAfter != nil {
		q = q.Where("due_date", ">=", *filter.DueAfter)
	}
	if filter.DueBefore != nil {
		q = q.Where("due_date", "<=", *filter.DueBefore)
	}

	// Firestore requires the first order-by to match the inequality field
	if filter.DueAfter != nil || filter.DueBefore != nil {
		q = q.OrderBy("due_date", firestore.Asc)
	}
	q = q.OrderBy("created_at", firestore.Desc)
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var result []*model.Task
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate tasks", goerr.V("teamID", teamID))
		}

		var doc taskDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal task", goerr.V("docID", snap.Ref.ID))
		}

		result = append(result, fromTaskDoc(&doc))
	}

	return result, nil
}

func (r *taskRepository) UpdateStatus(ctx context.Context, id types.TaskID, taskStatus types.TaskStatus) error {
	_, err := r.collection().Doc(string(id)).Update(ctx, []firestore.Update{
		{Path: "status", Value: string(taskStatus)},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(interfaces.ErrNotFound, "task not found", goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to update task status", goerr.V("id", id))
	}

	return nil
}
