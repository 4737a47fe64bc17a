package item

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r := NewRegistry()
	for _, it := range []*Item{
		{Code: "knife-flint", MaxDurability: 3},
		{Code: "knife-copper", MaxDurability: 50},
		{Code: "game:axe-flint", MaxDurability: 40},
		{Code: "stick"},
	} {
		require.NoError(t, r.Register(it))
	}
	return r
}

func TestRegistrySearch(t *testing.T) {
	r := newTestRegistry(t)

	found := r.Search("game:knife-*")
	require.Len(t, found, 2)
	assert.Equal(t, Code("game:knife-copper"), found[0].Code)
	assert.Equal(t, Code("game:knife-flint"), found[1].Code)

	assert.Len(t, r.Search("stick"), 1)
	assert.Empty(t, r.Search("game:saw-*"))
	assert.Error(t, r.Register(&Item{Code: "stick"}))
	assert.Equal(t, 4, r.Len())
}

func TestResolveTools(t *testing.T) {
	r := newTestRegistry(t)
	tools := ResolveTools(r, []string{"game:knife-*", "axe-flint", "missing-*"})

	assert.Equal(t, 3, tools.Len())
	assert.Equal(t, []Code{"game:axe-flint", "game:knife-copper", "game:knife-flint"}, tools.Codes())

	stick, _ := r.Get("stick")
	knife, _ := r.Get("game:knife-flint")
	assert.True(t, tools.Contains(knife))
	assert.False(t, tools.Contains(stick))
	assert.False(t, tools.Contains(nil))
}

func TestSlotDamageBreaksTool(t *testing.T) {
	r := newTestRegistry(t)
	knife, _ := r.Get("knife-flint")

	inv := NewInventory()
	require.True(t, inv.Put(2, NewStack(knife, 1)))
	require.True(t, inv.Select(2))

	slot := inv.Active()
	assert.False(t, slot.DamageItem(1))
	assert.Equal(t, 2, slot.Stack.Durability)
	assert.False(t, slot.DamageItem(1))
	assert.True(t, slot.DamageItem(1))
	assert.True(t, slot.Empty())
	assert.Nil(t, slot.Item())
}

func TestNonToolIsNotDamaged(t *testing.T) {
	r := newTestRegistry(t)
	stick, _ := r.Get("stick")
	s := NewStack(stick, 5)

	assert.False(t, s.Damage(1))
	assert.Equal(t, "game:stick x5", s.String())
	assert.False(t, NewInventory().Select(HotbarSize))
}
