package messages

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
)

func TestViewType_String(t *testing.T) {
	testCases := []struct {
		view     ViewType
		expected string
	}{
		{ViewMenu, "menu"},
		{ViewLogin, "login"},
		{ViewStores, "stores"},
		{ViewChat, "chat"},
		{ViewDocuments, "documents"},
		{ViewSettings, "settings"},
		{ViewHelp, "help"},
		{ViewType(99), "unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.view.String())
		})
	}
}

func TestViewType_Distinct(t *testing.T) {
	views := []ViewType{ViewMenu, ViewLogin, ViewStores, ViewChat, ViewDocuments, ViewSettings, ViewHelp}

	seen := make(map[ViewType]bool)
	for _, v := range views {
		assert.False(t, seen[v], "duplicate view type %d", v)
		seen[v] = true
	}
}

func TestNext_DeliversInOrder(t *testing.T) {
	ch := make(chan tea.Msg, 3)
	ch <- ChatUpdated{Message: domain.ChatMessage{ID: "m1"}}
	ch <- ChatAnswered{}
	close(ch)

	first := Next(ch)()
	require.IsType(t, ChatUpdated{}, first)
	assert.Equal(t, "m1", first.(ChatUpdated).Message.ID)

	assert.IsType(t, ChatAnswered{}, Next(ch)())
	assert.Nil(t, Next(ch)())
}
