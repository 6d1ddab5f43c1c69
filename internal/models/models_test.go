package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModels(t *testing.T) {
	t.Run("Product TableName", func(t *testing.T) {
		p := Product{}
		assert.Equal(t, "products", p.TableName())
	})

	t.Run("Account Summary hides password", func(t *testing.T) {
		a := Account{Username: "alice", Email: "a@x.com", PasswordHash: "hash"}
		assert.Equal(t, AccountSummary{Username: "alice", Email: "a@x.com"}, a.Summary())
	})

	t.Run("Category validation", func(t *testing.T) {
		for _, c := range Categories {
			assert.True(t, IsValidCategory(c), c)
		}
		assert.False(t, IsValidCategory(CategoryAll))
		assert.False(t, IsValidCategory("Electronics"))
		assert.False(t, IsValidCategory(""))
	})

	t.Run("BeforeSave lower-cases the search title", func(t *testing.T) {
		p := Product{Title: "Éclair MAKER"}
		assert.NoError(t, p.BeforeSave(nil))
		assert.Equal(t, "éclair maker", p.TitleSearch)
	})
}
