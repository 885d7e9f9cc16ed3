package cli

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/trebuchet-org/treb-deploy/internal/domain/models"
)

func press(m multiSelectModel, keys ...tea.KeyMsg) multiSelectModel {
	for _, key := range keys {
		next, _ := m.Update(key)
		m = next.(multiSelectModel)
	}
	return m
}

var (
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keySpace = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyAll   = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}}
	keyQuit  = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}}
)

func testDeployments() []*models.Deployment {
	return []*models.Deployment{
		{ID: "300/TestContract/aaaa1111", ChainID: 300, ContractName: "TestContract", Address: "0x1000000000000000000000000000000000000001"},
		{ID: "300/Greeter/bbbb2222", ChainID: 300, ContractName: "Greeter", Address: "0x1000000000000000000000000000000000000002"},
		{ID: "324/TestContract/cccc3333", ChainID: 324, ContractName: "TestContract", Address: "0x1000000000000000000000000000000000000003"},
	}
}

func TestMultiSelectModel(t *testing.T) {
	t.Run("toggle and confirm", func(t *testing.T) {
		m := press(initialMultiSelectModel(testDeployments(), "Select"), keyDown, keySpace, keyEnter)
		assert.True(t, m.done)
		assert.Equal(t, []int{1}, m.selectedIndices())
		assert.Empty(t, m.View())
	})

	t.Run("enter needs a selection", func(t *testing.T) {
		m := press(initialMultiSelectModel(testDeployments(), "Select"), keyEnter)
		assert.False(t, m.done)
		assert.Contains(t, m.View(), "Greeter")
	})

	t.Run("select all toggles", func(t *testing.T) {
		m := press(initialMultiSelectModel(testDeployments(), "Select"), keyAll)
		assert.Equal(t, []int{0, 1, 2}, m.selectedIndices())

		m = press(m, keyAll)
		assert.Empty(t, m.selectedIndices())
	})

	t.Run("cursor stays in range", func(t *testing.T) {
		m := press(initialMultiSelectModel(testDeployments(), "Select"), keyDown, keyDown, keyDown, keyDown)
		assert.Equal(t, 2, m.cursor)
	})

	t.Run("quit cancels", func(t *testing.T) {
		m := press(initialMultiSelectModel(testDeployments(), "Select"), keySpace, keyQuit)
		assert.True(t, m.cancelled)
		assert.False(t, m.done)
	})
}
