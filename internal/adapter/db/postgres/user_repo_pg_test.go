package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"task-user-service/internal/domain/query"
	"task-user-service/internal/domain/user"
	pkgerrors "task-user-service/pkg/errors"
)

func setupUserRepo(t *testing.T) *UserRepoPG {
	return NewUserRepoPG(setupTestDB(t), zaptest.NewLogger(t))
}

func createUser(t *testing.T, repo *UserRepoPG, name, email string, pending ...string) *user.User {
	t.Helper()
	u, err := repo.Create(context.Background(), &user.User{Name: name, Email: email, PendingTasks: pending})
	require.NoError(t, err)
	return u
}

func TestUserRepoPG_Create(t *testing.T) {
	repo := setupUserRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, &user.User{Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)

	assert.Len(t, created.ID, 20)
	assert.Equal(t, []string{}, created.PendingTasks)
	assert.False(t, created.DateCreated.IsZero())

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Name, got.Name)
	assert.Equal(t, created.Email, got.Email)
	assert.Equal(t, []string{}, got.PendingTasks)
	assert.True(t, created.DateCreated.Equal(got.DateCreated))
}

func TestUserRepoPG_Create_DuplicateEmail(t *testing.T) {
	repo := setupUserRepo(t)
	createUser(t, repo, "Ada", "ada@example.com")

	_, err := repo.Create(context.Background(), &user.User{Name: "Other", Email: "ada@example.com"})

	var exists *pkgerrors.AlreadyExistsError
	require.ErrorAs(t, err, &exists)
	assert.Equal(t, "Email already exists", err.Error())
}

func TestUserRepoPG_GetByID_NotFound(t *testing.T) {
	repo := setupUserRepo(t)

	_, err := repo.GetByID(context.Background(), "missing")

	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestUserRepoPG_GetByEmail(t *testing.T) {
	repo := setupUserRepo(t)
	created := createUser(t, repo, "Ada", "ada@example.com")

	got, err := repo.GetByEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, created.ID, got.ID)

	none, err := repo.GetByEmail(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestUserRepoPG_Replace(t *testing.T) {
	repo := setupUserRepo(t)
	ctx := context.Background()
	created := createUser(t, repo, "Ada", "ada@example.com", "t1")

	replaced, err := repo.Replace(ctx, &user.User{ID: created.ID, Name: "Ada L", Email: "adal@example.com"})
	require.NoError(t, err)

	assert.Equal(t, "Ada L", replaced.Name)
	assert.Equal(t, "adal@example.com", replaced.Email)
	assert.Equal(t, []string{}, replaced.PendingTasks, "full replace resets the list")
	assert.True(t, created.DateCreated.Equal(replaced.DateCreated))
}

func TestUserRepoPG_Replace_Errors(t *testing.T) {
	repo := setupUserRepo(t)
	ctx := context.Background()
	createUser(t, repo, "Ada", "ada@example.com")
	other := createUser(t, repo, "Bob", "bob@example.com")

	_, err := repo.Replace(ctx, &user.User{ID: "missing", Name: "X", Email: "x@example.com"})
	assert.True(t, pkgerrors.IsNotFound(err))

	_, err = repo.Replace(ctx, &user.User{ID: other.ID, Name: "Bob", Email: "ada@example.com"})
	var exists *pkgerrors.AlreadyExistsError
	assert.ErrorAs(t, err, &exists)
}

func TestUserRepoPG_Delete(t *testing.T) {
	repo := setupUserRepo(t)
	ctx := context.Background()
	created := createUser(t, repo, "Ada", "ada@example.com", "t1")

	deleted, err := repo.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, deleted.ID)
	assert.Equal(t, []string{"t1"}, deleted.PendingTasks)

	_, err = repo.GetByID(ctx, created.ID)
	assert.True(t, pkgerrors.IsNotFound(err))

	_, err = repo.Delete(ctx, created.ID)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestUserRepoPG_AddPendingTask(t *testing.T) {
	repo := setupUserRepo(t)
	ctx := context.Background()
	created := createUser(t, repo, "Ada", "ada@example.com")

	require.NoError(t, repo.AddPendingTask(ctx, created.ID, "t1"))
	require.NoError(t, repo.AddPendingTask(ctx, created.ID, "t2"))
	require.NoError(t, repo.AddPendingTask(ctx, created.ID, "t1"))

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"t1", "t2"}, got.PendingTasks)

	err = repo.AddPendingTask(ctx, "missing", "t1")
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestUserRepoPG_RemovePendingTask(t *testing.T) {
	repo := setupUserRepo(t)
	ctx := context.Background()
	created := createUser(t, repo, "Ada", "ada@example.com", "t1", "t2", "t1")

	require.NoError(t, repo.RemovePendingTask(ctx, created.ID, "t1"))

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"t2"}, got.PendingTasks)

	assert.NoError(t, repo.RemovePendingTask(ctx, "missing", "t2"))
}

func TestUserRepoPG_ListAndCount(t *testing.T) {
	repo := setupUserRepo(t)
	ctx := context.Background()
	ada := createUser(t, repo, "Ada", "ada@example.com", "t1", "t2")
	bob := createUser(t, repo, "Bob", "bob@example.com", "t3")
	cy := createUser(t, repo, "Cy", "cy@example.com")

	tests := []struct {
		name  string
		where string
		sort  string
		skip  string
		limit string
		want  []string
	}{
		{name: "no filter keeps insertion order", want: []string{ada.ID, bob.ID, cy.ID}},
		{name: "equality", where: `{"name": "Bob"}`, want: []string{bob.ID}},
		{name: "id in", where: `{"_id": {"$in": ["` + ada.ID + `", "` + cy.ID + `"]}}`, want: []string{ada.ID, cy.ID}},
		{name: "empty in matches nothing", where: `{"_id": {"$in": []}}`, want: []string{}},
		{name: "empty nin matches everything", where: `{"_id": {"$nin": []}}`, want: []string{ada.ID, bob.ID, cy.ID}},
		{name: "pending contains", where: `{"pendingTasks": "t2"}`, want: []string{ada.ID}},
		{name: "pending not contains", where: `{"pendingTasks": {"$ne": "t2"}}`, want: []string{bob.ID, cy.ID}},
		{name: "pending in", where: `{"pendingTasks": {"$in": ["t1", "t3"]}}`, want: []string{ada.ID, bob.ID}},
		{name: "unknown field ignored", where: `{"age": 3}`, want: []string{ada.ID, bob.ID, cy.ID}},
		{name: "malformed filter ignored", where: `{"name": `, want: []string{ada.ID, bob.ID, cy.ID}},
		{name: "wrong type matches nothing", where: `{"name": 5}`, want: []string{}},
		{name: "sort descending", sort: `{"name": -1}`, want: []string{cy.ID, bob.ID, ada.ID}},
		{name: "skip and limit", sort: `{"name": 1}`, skip: "1", limit: "1", want: []string{bob.ID}},
		{name: "skip only", skip: "2", want: []string{cy.ID}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := query.Params{
				Filter: query.ParseFilter(tt.where),
				Sort:   query.ParseSort(tt.sort),
				Skip:   query.ParseSkip(tt.skip),
				Limit:  query.ParseLimit(tt.limit, 0),
			}

			users, err := repo.List(ctx, p)
			require.NoError(t, err)

			ids := make([]string, 0, len(users))
			for _, u := range users {
				ids = append(ids, u.ID)
			}
			assert.Equal(t, tt.want, ids)

			n, err := repo.Count(ctx, p)
			require.NoError(t, err)
			if tt.skip == "" && tt.limit == "" {
				assert.Equal(t, int64(len(tt.want)), n)
			}
		})
	}
}

func TestUserRepoPG_Count_IgnoresPaging(t *testing.T) {
	repo := setupUserRepo(t)
	createUser(t, repo, "Ada", "ada@example.com")
	createUser(t, repo, "Bob", "bob@example.com")

	n, err := repo.Count(context.Background(), query.Params{Skip: 1, Limit: 1})

	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}
