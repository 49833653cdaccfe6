package engine_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"task-tracker/backend/internal/apperrors"
	"task-tracker/backend/internal/engine"
	"task-tracker/backend/internal/models"
	"task-tracker/backend/internal/store"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fixture struct {
	engine *engine.Engine
	tasks  store.TaskStore
	users  store.UserStore
}

func setup(t *testing.T, opts ...engine.Option) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Task{}, &models.User{}))

	tasks := store.NewTaskStore(db)
	users := store.NewUserStore(db)
	return &fixture{
		engine: engine.New(tasks, users, opts...),
		tasks:  tasks,
		users:  users,
	}
}

func deadline() *models.Timestamp {
	ts := models.NewTimestamp(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	return &ts
}

func (f *fixture) createUser(t *testing.T, name, email string) *models.User {
	t.Helper()
	user, err := f.engine.CreateUser(context.Background(), engine.UserInput{Name: name, Email: email})
	require.NoError(t, err)
	return user
}

func (f *fixture) createTask(t *testing.T, name, assignedUser string) *models.Task {
	t.Helper()
	in := engine.TaskInput{Name: name, Deadline: deadline()}
	if assignedUser != "" {
		in.AssignedUser = &assignedUser
	}
	task, _, err := f.engine.CreateTask(context.Background(), in)
	require.NoError(t, err)
	return task
}

func (f *fixture) pendingTasks(t *testing.T, userID uuid.UUID) models.StringList {
	t.Helper()
	user, err := f.users.FindByID(context.Background(), userID.String())
	require.NoError(t, err)
	return user.PendingTasks
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestCreateTask_RequiresNameAndDeadline(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, _, err := f.engine.CreateTask(ctx, engine.TaskInput{Deadline: deadline()})
	assert.True(t, apperrors.IsValidation(err))

	_, _, err = f.engine.CreateTask(ctx, engine.TaskInput{Name: "no deadline"})
	assert.True(t, apperrors.IsValidation(err))

	_, _, err = f.engine.CreateTask(ctx, engine.TaskInput{Name: "   ", Deadline: deadline()})
	assert.True(t, apperrors.IsValidation(err))
}

func TestCreateTask_AddsToOwnerPendingTasks(t *testing.T) {
	f := setup(t)
	owner := f.createUser(t, "Alice", "a@x.com")

	task := f.createTask(t, "T1", owner.ID.String())

	pending := f.pendingTasks(t, owner.ID)
	assert.Equal(t, models.StringList{task.ID.String()}, pending)
}

func TestCreateTask_CompletedTaskNotAdded(t *testing.T) {
	f := setup(t)
	owner := f.createUser(t, "Alice", "a@x.com")

	ownerID := owner.ID.String()
	_, corrections, err := f.engine.CreateTask(context.Background(), engine.TaskInput{
		Name:         "already done",
		Deadline:     deadline(),
		AssignedUser: &ownerID,
		Completed:    boolPtr(true),
	})
	require.NoError(t, err)
	assert.Empty(t, corrections)
	assert.Empty(t, f.pendingTasks(t, owner.ID))
}

func TestCreateTask_DanglingOwnerAccepted(t *testing.T) {
	f := setup(t)

	ghost := uuid.Must(uuid.NewV4()).String()
	task, corrections, err := f.engine.CreateTask(context.Background(), engine.TaskInput{
		Name:         "orphan",
		Deadline:     deadline(),
		AssignedUser: &ghost,
	})
	require.NoError(t, err)
	assert.Equal(t, ghost, task.AssignedUser)
	assert.Empty(t, corrections)
}

func TestCreateTask_KeepsCallerAssignedUserName(t *testing.T) {
	f := setup(t)
	owner := f.createUser(t, "Alice", "a@x.com")

	ownerID := owner.ID.String()
	task, _, err := f.engine.CreateTask(context.Background(), engine.TaskInput{
		Name:             "named",
		Deadline:         deadline(),
		AssignedUser:     &ownerID,
		AssignedUserName: strPtr("Allie"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Allie", task.AssignedUserName)
}

func TestUpdateTask_PartialMergeKeepsUnsuppliedFields(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	task, _, err := f.engine.CreateTask(ctx, engine.TaskInput{
		Name:        "original",
		Description: "keep me",
		Deadline:    deadline(),
	})
	require.NoError(t, err)

	updated, _, err := f.engine.UpdateTask(ctx, task.ID.String(), engine.TaskUpdate{Name: strPtr("renamed")})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Name)
	assert.Equal(t, "keep me", updated.Description)
	assert.Equal(t, task.Deadline.Time, updated.Deadline.Time)
}

func TestUpdateTask_RevalidatesAfterMerge(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	task := f.createTask(t, "valid", "")

	_, _, err := f.engine.UpdateTask(ctx, task.ID.String(), engine.TaskUpdate{Name: strPtr("")})
	assert.True(t, apperrors.IsValidation(err))

	// The rejected write must not have touched the document.
	stored, err := f.tasks.FindByID(ctx, task.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "valid", stored.Name)
}

func TestUpdateTask_NotFound(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, _, err := f.engine.UpdateTask(ctx, uuid.Must(uuid.NewV4()).String(), engine.TaskUpdate{})
	assert.True(t, apperrors.IsNotFound(err))

	_, _, err = f.engine.UpdateTask(ctx, "garbage-id", engine.TaskUpdate{})
	assert.True(t, apperrors.IsNotFound(err), "malformed id must classify as not-found")
}

func TestUpdateTask_CompletionRemovesFromOwner(t *testing.T) {
	f := setup(t)
	owner := f.createUser(t, "Alice", "a@x.com")
	task := f.createTask(t, "T1", owner.ID.String())

	_, _, err := f.engine.UpdateTask(context.Background(), task.ID.String(), engine.TaskUpdate{Completed: boolPtr(true)})
	require.NoError(t, err)

	assert.Empty(t, f.pendingTasks(t, owner.ID))
}

func TestUpdateTask_ReassignMovesBetweenOwners(t *testing.T) {
	f := setup(t)
	u1 := f.createUser(t, "U1", "u1@x.com")
	u2 := f.createUser(t, "U2", "u2@x.com")
	task := f.createTask(t, "T1", u1.ID.String())

	_, _, err := f.engine.UpdateTask(context.Background(), task.ID.String(), engine.TaskUpdate{
		AssignedUser: strPtr(u2.ID.String()),
	})
	require.NoError(t, err)

	assert.Empty(t, f.pendingTasks(t, u1.ID))
	assert.Equal(t, models.StringList{task.ID.String()}, f.pendingTasks(t, u2.ID))
}

func TestUpdateTask_ReassignAndCompleteTogether(t *testing.T) {
	f := setup(t)
	u1 := f.createUser(t, "U1", "u1@x.com")
	u2 := f.createUser(t, "U2", "u2@x.com")
	task := f.createTask(t, "T1", u1.ID.String())

	// Completion wins: the task leaves the old owner's list and is
	// never added to the new owner's.
	_, _, err := f.engine.UpdateTask(context.Background(), task.ID.String(), engine.TaskUpdate{
		AssignedUser: strPtr(u2.ID.String()),
		Completed:    boolPtr(true),
	})
	require.NoError(t, err)

	assert.Empty(t, f.pendingTasks(t, u1.ID))
	assert.Empty(t, f.pendingTasks(t, u2.ID))
}

func TestUpdateTask_AddIsIdempotent(t *testing.T) {
	f := setup(t)
	owner := f.createUser(t, "Alice", "a@x.com")
	task := f.createTask(t, "T1", owner.ID.String())

	// Re-saving the same assignment must not duplicate the entry.
	for i := 0; i < 3; i++ {
		_, _, err := f.engine.UpdateTask(context.Background(), task.ID.String(), engine.TaskUpdate{
			Description: strPtr("touched"),
		})
		require.NoError(t, err)
	}

	assert.Equal(t, models.StringList{task.ID.String()}, f.pendingTasks(t, owner.ID))
}

func TestUpdateTask_UnassignRemovesFromOwner(t *testing.T) {
	f := setup(t)
	owner := f.createUser(t, "Alice", "a@x.com")
	task := f.createTask(t, "T1", owner.ID.String())

	_, _, err := f.engine.UpdateTask(context.Background(), task.ID.String(), engine.TaskUpdate{
		AssignedUser: strPtr(""),
	})
	require.NoError(t, err)

	assert.Empty(t, f.pendingTasks(t, owner.ID))
}

func TestDeleteTask_RemovesFromOwnerPendingTasks(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	owner := f.createUser(t, "Alice", "a@x.com")
	task := f.createTask(t, "T1", owner.ID.String())

	corrections, err := f.engine.DeleteTask(ctx, task.ID.String())
	require.NoError(t, err)
	require.Len(t, corrections, 1)
	assert.Equal(t, engine.ActionPendingRemove, corrections[0].Action)

	assert.Empty(t, f.pendingTasks(t, owner.ID))
	_, err = f.tasks.FindByID(ctx, task.ID.String())
	assert.True(t, apperrors.IsNotFound(err))
}

func TestDeleteTask_DanglingOwnerTolerated(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	task := f.createTask(t, "orphan", uuid.Must(uuid.NewV4()).String())

	_, err := f.engine.DeleteTask(ctx, task.ID.String())
	require.NoError(t, err)

	_, err = f.tasks.FindByID(ctx, task.ID.String())
	assert.True(t, apperrors.IsNotFound(err))
}

func TestCreateUser_Validation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.engine.CreateUser(ctx, engine.UserInput{Email: "a@x.com"})
	assert.True(t, apperrors.IsValidation(err))

	_, err = f.engine.CreateUser(ctx, engine.UserInput{Name: "Alice"})
	assert.True(t, apperrors.IsValidation(err))
}

func TestCreateUser_DuplicateEmailIsConflictNotValidation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	f.createUser(t, "Alice", "a@x.com")

	_, err := f.engine.CreateUser(ctx, engine.UserInput{Name: "Clone", Email: "a@x.com"})
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
	assert.False(t, apperrors.IsValidation(err))
}

func TestUpdateUser_RelinksPendingTasks(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	owner := f.createUser(t, "Alice", "a@x.com")
	other := f.createUser(t, "Bob", "b@x.com")
	t1 := f.createTask(t, "T1", other.ID.String())
	t2 := f.createTask(t, "T2", "")

	_, corrections, err := f.engine.UpdateUser(ctx, owner.ID.String(), engine.UserUpdate{
		PendingTasks: &[]string{t1.ID.String(), t2.ID.String()},
	})
	require.NoError(t, err)
	require.Len(t, corrections, 1)
	assert.Equal(t, engine.ActionRelink, corrections[0].Action)

	for _, id := range []string{t1.ID.String(), t2.ID.String()} {
		task, err := f.tasks.FindByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, owner.ID.String(), task.AssignedUser)
		assert.Equal(t, "Alice", task.AssignedUserName)
	}
}

func TestUpdateUser_RenamePropagatesNameCache(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	owner := f.createUser(t, "Alice", "a@x.com")
	task := f.createTask(t, "T1", owner.ID.String())

	_, _, err := f.engine.UpdateUser(ctx, owner.ID.String(), engine.UserUpdate{Name: strPtr("Alicia")})
	require.NoError(t, err)

	stored, err := f.tasks.FindByID(ctx, task.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "Alicia", stored.AssignedUserName)
}

func TestUpdateUser_DuplicateEmailConflict(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	f.createUser(t, "Alice", "a@x.com")
	bob := f.createUser(t, "Bob", "b@x.com")

	_, _, err := f.engine.UpdateUser(ctx, bob.ID.String(), engine.UserUpdate{Email: strPtr("a@x.com")})
	assert.True(t, apperrors.IsConflict(err))

	// Re-submitting your own email is not a conflict.
	_, _, err = f.engine.UpdateUser(ctx, bob.ID.String(), engine.UserUpdate{Email: strPtr("b@x.com")})
	assert.NoError(t, err)
}

func TestUpdateUser_DedupesPendingTasks(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	owner := f.createUser(t, "Alice", "a@x.com")
	task := f.createTask(t, "T1", "")

	updated, _, err := f.engine.UpdateUser(ctx, owner.ID.String(), engine.UserUpdate{
		PendingTasks: &[]string{task.ID.String(), task.ID.String()},
	})
	require.NoError(t, err)
	assert.Equal(t, models.StringList{task.ID.String()}, updated.PendingTasks)
}

func TestDeleteUser_UnassignsAllTasks(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	owner := f.createUser(t, "Alice", "a@x.com")
	t1 := f.createTask(t, "T1", owner.ID.String())
	t2 := f.createTask(t, "T2", owner.ID.String())
	unrelated := f.createTask(t, "T3", "")

	corrections, err := f.engine.DeleteUser(ctx, owner.ID.String())
	require.NoError(t, err)
	require.Len(t, corrections, 1)
	assert.Equal(t, engine.ActionUnassign, corrections[0].Action)

	_, err = f.users.FindByID(ctx, owner.ID.String())
	assert.True(t, apperrors.IsNotFound(err))

	for _, id := range []string{t1.ID.String(), t2.ID.String()} {
		task, err := f.tasks.FindByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "", task.AssignedUser)
		assert.Equal(t, models.UnassignedName, task.AssignedUserName)
	}

	task, err := f.tasks.FindByID(ctx, unrelated.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "", task.AssignedUser)
}

func TestScenario_AliceLifecycle(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	alice := f.createUser(t, "Alice", "a@x.com")
	task := f.createTask(t, "T1", alice.ID.String())
	assert.Equal(t, models.StringList{task.ID.String()}, f.pendingTasks(t, alice.ID))

	_, _, err := f.engine.UpdateTask(ctx, task.ID.String(), engine.TaskUpdate{Completed: boolPtr(true)})
	require.NoError(t, err)
	assert.Empty(t, f.pendingTasks(t, alice.ID))

	_, err = f.engine.DeleteUser(ctx, alice.ID.String())
	require.NoError(t, err)

	// The completed task still points at the deleted user only until
	// the bulk unassign ran; afterwards it must be unowned.
	stored, err := f.tasks.FindByID(ctx, task.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "", stored.AssignedUser)
}

func TestScenario_ReassignBetweenTwoUsers(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	u1 := f.createUser(t, "U1", "u1@x.com")
	u2 := f.createUser(t, "U2", "u2@x.com")
	task := f.createTask(t, "T1", u1.ID.String())

	_, _, err := f.engine.UpdateTask(ctx, task.ID.String(), engine.TaskUpdate{
		AssignedUser: strPtr(u2.ID.String()),
	})
	require.NoError(t, err)

	assert.Empty(t, f.pendingTasks(t, u1.ID))
	assert.Equal(t, models.StringList{task.ID.String()}, f.pendingTasks(t, u2.ID))
}

// failingUserStore fails every write so the swallow-and-continue policy
// for reverse-side corrections can be observed.
type failingUserStore struct {
	store.UserStore
}

func (s *failingUserStore) Save(ctx context.Context, user *models.User) error {
	return apperrors.NewPersistence("simulated store outage", errors.New("boom"))
}

func TestSecondaryFailureDoesNotFailPrimary(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Task{}, &models.User{}))

	tasks := store.NewTaskStore(db)
	users := store.NewUserStore(db)
	ctx := context.Background()

	owner := &models.User{
		ID:           uuid.Must(uuid.NewV4()),
		Name:         "Alice",
		Email:        "a@x.com",
		PendingTasks: models.StringList{},
		DateCreated:  time.Now().UTC(),
	}
	require.NoError(t, users.Save(ctx, owner))

	eng := engine.New(tasks, &failingUserStore{UserStore: users})

	ownerID := owner.ID.String()
	task, corrections, err := eng.CreateTask(ctx, engine.TaskInput{
		Name:         "survives",
		Deadline:     deadline(),
		AssignedUser: &ownerID,
	})
	require.NoError(t, err, "primary write must succeed despite correction failure")
	assert.Empty(t, corrections)

	stored, err := tasks.FindByID(ctx, task.ID.String())
	require.NoError(t, err)
	assert.Equal(t, ownerID, stored.AssignedUser)
}

// recordingSink collects audit events for inspection.
type recordingSink struct {
	mu     sync.Mutex
	events []engine.LinkEvent
}

func (s *recordingSink) Record(ctx context.Context, event engine.LinkEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func TestAuditSinkReceivesCorrections(t *testing.T) {
	sink := &recordingSink{}
	f := setup(t, engine.WithAuditSink(sink))

	owner := f.createUser(t, "Alice", "a@x.com")
	f.createTask(t, "T1", owner.ID.String())

	sink.mu.Lock()
	defer sink.mu.Unlock()
	require.Len(t, sink.events, 1)
	assert.Equal(t, "createTask", sink.events[0].Operation)
	assert.False(t, sink.events[0].Failed)
	require.NotNil(t, sink.events[0].Correction)
	assert.Equal(t, engine.ActionPendingAdd, sink.events[0].Correction.Action)
}
