package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"ladle/internal/core/entity"
	"ladle/internal/core/id"
	"ladle/internal/core/types"
)

type mockEvent struct {
	entity.Event
	IngredientID id.ID          `db:"ingredient_id" json:"ingredientId"`
	Applied      types.Quantity `db:"applied" json:"applied"`
	Ignored      string         `db:"-" json:"ignored"`
}

func TestExtractDBColumns(t *testing.T) {
	cols := ExtractDBColumns[mockEvent]()

	expected := []string{
		"id", "tenant_id", "created_at", "created_by", "deleted_at",
		"ingredient_id", "applied",
	}
	for _, col := range expected {
		assert.Contains(t, cols, col)
	}
	assert.NotContains(t, cols, "-")
	assert.NotContains(t, cols, "ignored")
}

func TestStructToMap(t *testing.T) {
	now := time.Now().UTC()
	ev := mockEvent{
		Event:        entity.NewEvent("t1"),
		IngredientID: id.New(),
		Applied:      types.NewQuantityFromFloat64(2.5),
		Ignored:      "skip me",
	}
	ev.MarkDeleted(now)

	m := StructToMap(ev)

	assert.Equal(t, ev.ID, m["id"])
	assert.Equal(t, "t1", m["tenant_id"])
	assert.Equal(t, ev.IngredientID, m["ingredient_id"])
	assert.Equal(t, ev.Applied, m["applied"])
	assert.NotContains(t, m, "ignored")
	assert.NotNil(t, m["deleted_at"])
}
