package persistence

import (
	"testing"
	"time"

	"github.com/dentalshop/backend/internal/domain/content"
	"github.com/dentalshop/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormArticleRepository(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormArticleRepository(db)
	ctx := t.Context()

	older, err := content.NewArticle("Entretien des turbines", "", "Nettoyer après chaque patient.")
	require.NoError(t, err)
	older.PublishedAt = time.Now().AddDate(0, -2, 0)
	require.NoError(t, repo.Save(ctx, older))

	newer, err := content.NewArticle("Choisir un autoclave", "choisir-un-autoclave", "Classe B obligatoire.")
	require.NoError(t, err)
	newer.SetByline("Équipe technique", "Stérilisation")
	require.NoError(t, repo.Save(ctx, newer))

	got, err := repo.FindBySlug(ctx, "entretien-des-turbines")
	require.NoError(t, err)
	assert.Equal(t, older.ID, got.ID)

	list, err := repo.FindAll(ctx, shared.Filter{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID, "newest publication first")
	assert.Equal(t, "Stérilisation", list[0].Category)

	n, err := repo.Count(ctx, shared.Filter{Search: "AUTOCLAVE"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	t.Run("slug uniqueness ignores the edited article", func(t *testing.T) {
		taken, err := repo.ExistsBySlug(ctx, "choisir-un-autoclave", nil)
		require.NoError(t, err)
		assert.True(t, taken)

		taken, err = repo.ExistsBySlug(ctx, "choisir-un-autoclave", &newer.ID)
		require.NoError(t, err)
		assert.False(t, taken)
	})

	t.Run("edit", func(t *testing.T) {
		require.NoError(t, newer.Edit("Choisir son autoclave", "choisir-son-autoclave", "Classe B."))
		require.NoError(t, repo.Save(ctx, newer))

		_, err := repo.FindBySlug(ctx, "choisir-un-autoclave")
		assert.ErrorIs(t, err, shared.ErrNotFound)
		got, err := repo.FindByID(ctx, newer.ID)
		require.NoError(t, err)
		assert.Equal(t, "Choisir son autoclave", got.Title)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, older.ID))
		assert.ErrorIs(t, repo.Delete(ctx, older.ID), shared.ErrNotFound)
		assert.ErrorIs(t, repo.Delete(ctx, uuid.New()), shared.ErrNotFound)
	})
}

func TestGormCaseStudyRepository(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormCaseStudyRepository(db)
	ctx := t.Context()

	cs, err := content.NewCaseStudy("Cabinet numérique à Fès", "", content.CaseStudySections{
		Summary:   "Passage au flux numérique.",
		Challenge: "Empreintes longues.",
		Solution:  "Scanner intra-oral et fraiseuse.",
		Results:   "Couronnes en une séance.",
	})
	require.NoError(t, err)
	cs.SetImage("/uploads/fes.jpg")
	require.NoError(t, repo.Save(ctx, cs))

	got, err := repo.FindBySlug(ctx, cs.Slug)
	require.NoError(t, err)
	assert.Equal(t, "Scanner intra-oral et fraiseuse.", got.Solution)
	assert.Equal(t, "/uploads/fes.jpg", got.ImageURL)

	n, err := repo.Count(ctx, shared.Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	exists, err := repo.ExistsBySlug(ctx, cs.Slug, nil)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, repo.Delete(ctx, cs.ID))
	_, err = repo.FindByID(ctx, cs.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
