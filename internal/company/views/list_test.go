package views

import (
	"context"
	"errors"
	"testing"

	"github.com/gartstein/companydesk/internal/company/models"
	"github.com/gartstein/companydesk/internal/company/repository"
	"github.com/gartstein/companydesk/internal/company/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func setup(t *testing.T) *repository.Repository {
	t.Helper()
	adapter, err := storage.NewAdapter(storage.NewMemorySlot(), "", zaptest.NewLogger(t))
	require.NoError(t, err)
	repo := repository.New(adapter)
	ctx := context.Background()
	require.NoError(t, repo.Insert(ctx, models.Record{ID: "1", CompanyName: "Acme", CompanyEmail: "a@acme.com", CompanyPhone: "111", CreatedAt: "t1"}))
	require.NoError(t, repo.Insert(ctx, models.Record{ID: "2", CompanyName: "Globex", CompanyEmail: "g@globex.io", CompanyPhone: "222", CreatedAt: "t2"}))
	return repo
}

func always(answer bool, asked *[]string) ConfirmFunc {
	return func(_ context.Context, prompt string) bool {
		*asked = append(*asked, prompt)
		return answer
	}
}

func TestListViewActivateAndSearch(t *testing.T) {
	v := NewListView(setup(t), nil, zaptest.NewLogger(t))
	ctx := context.Background()

	require.NoError(t, v.Activate(ctx))
	assert.Equal(t, []Row{
		{ID: "1", CompanyName: "Acme", CompanyEmail: "a@acme.com", CompanyPhone: "111", CreatedAt: "t1"},
		{ID: "2", CompanyName: "Globex", CompanyEmail: "g@globex.io", CompanyPhone: "222", CreatedAt: "t2"},
	}, v.Rows())

	require.NoError(t, v.Search(ctx, "GLOB"))
	assert.Equal(t, "GLOB", v.Query())
	require.Len(t, v.Rows(), 1)
	assert.Equal(t, "2", v.Rows()[0].ID)

	require.NoError(t, v.Search(ctx, "nothing"))
	assert.Empty(t, v.Rows())
}

func TestListViewDeleteConfirmed(t *testing.T) {
	repo := setup(t)
	var asked []string
	v := NewListView(repo, always(true, &asked), zaptest.NewLogger(t))
	ctx := context.Background()
	require.NoError(t, v.Search(ctx, "acme"))

	deleted, err := v.Delete(ctx, "1")
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Equal(t, []string{DeletePrompt}, asked)
	assert.Equal(t, "", v.Query())
	require.Len(t, v.Rows(), 1)
	assert.Equal(t, "2", v.Rows()[0].ID)
}

func TestListViewDeleteDeclined(t *testing.T) {
	repo := setup(t)
	var asked []string
	v := NewListView(repo, always(false, &asked), zaptest.NewLogger(t))
	ctx := context.Background()

	deleted, err := v.Delete(ctx, "1")
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Len(t, asked, 1)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestListViewDeleteWithoutConfirmerDeclines(t *testing.T) {
	repo := setup(t)
	v := NewListView(repo, nil, zaptest.NewLogger(t))

	deleted, err := v.Delete(context.Background(), "1")
	require.NoError(t, err)
	assert.False(t, deleted)
}

type erroringStore struct{}

func (erroringStore) Search(context.Context, string, ...repository.Field) ([]models.Record, error) {
	return nil, errors.New("search down")
}
func (erroringStore) Remove(context.Context, string) error { return errors.New("remove down") }

func TestListViewErrors(t *testing.T) {
	var asked []string
	v := NewListView(erroringStore{}, always(true, &asked), zaptest.NewLogger(t))
	ctx := context.Background()

	assert.ErrorContains(t, v.Activate(ctx), "search down")
	_, err := v.Delete(ctx, "1")
	assert.ErrorContains(t, err, "remove down")
}

func TestListViewReset(t *testing.T) {
	v := NewListView(setup(t), nil, zaptest.NewLogger(t))
	require.NoError(t, v.Search(context.Background(), "acme"))
	v.Reset()
	assert.Empty(t, v.Rows())
	assert.Empty(t, v.Query())
}
