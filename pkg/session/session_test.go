package session

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weftlabs/weft/internal/ui"
	"github.com/weftlabs/weft/pkg/provider"
	"github.com/weftlabs/weft/pkg/store"
)

// fakeCompleter returns a scripted reply, recording the turns it saw.
type fakeCompleter struct {
	reply string
	ok    bool
	seen  []store.Turn
}

func (f *fakeCompleter) Complete(ctx context.Context, sel *provider.Selection, turns []store.Turn) (string, bool) {
	f.seen = turns
	if !f.ok {
		return "", false
	}
	return f.reply, true
}

func testRegistry() *provider.Registry {
	return provider.NewRegistry(map[string]provider.Provider{
		"anthropic": {
			Credential: "sk-ant-test",
			Models: map[string]string{
				"sonnet": "claude-sonnet-4-20250514",
				"haiku":  "claude-3-5-haiku-latest",
			},
		},
		"openai": {
			Credential: "sk-test",
			Models:     map[string]string{"gpt4": "gpt-4o"},
		},
	}, "anthropic", "openai", "gpt4")
}

func setupTestSession(t *testing.T) (*Session, *store.Store) {
	st, err := store.New(t.TempDir(), ui.New(io.Discard, true))
	require.NoError(t, err)
	return New(st, testRegistry()), st
}

func TestNew_DefaultState(t *testing.T) {
	sess, _ := setupTestSession(t)

	assert.Equal(t, "main", sess.Active)
	assert.Empty(t, sess.History)
	assert.Equal(t, []string{"main"}, sess.List())
	assert.Equal(t, "anthropic", sess.Selection.Provider)
	assert.Equal(t, "haiku", sess.Selection.Model)
}

func TestNew_SeedsRegistryFromStore(t *testing.T) {
	st, err := store.New(t.TempDir(), ui.New(io.Discard, true))
	require.NoError(t, err)
	require.True(t, st.Save("work", nil))
	require.True(t, st.Save("main", []store.Turn{
		{Role: store.RoleUser, Content: "hi"},
		{Role: store.RoleAssistant, Content: "hello"},
	}))

	sess := New(st, testRegistry())

	assert.Equal(t, []string{"main", "work"}, sess.List())
	assert.Len(t, sess.History, 2)
}

func TestFork(t *testing.T) {
	sess, st := setupTestSession(t)
	sess.History = []store.Turn{
		{Role: store.RoleUser, Content: "hi"},
		{Role: store.RoleAssistant, Content: "hello"},
	}

	require.NoError(t, sess.Fork("Work"))

	assert.Equal(t, "work", sess.Active)
	assert.Empty(t, sess.History)
	assert.Equal(t, []string{"main", "work"}, sess.List())

	// The agent being left was flushed first.
	flushed := st.Load("main")
	require.Len(t, flushed, 2)
	assert.Equal(t, "hi", flushed[0].Content)
}

func TestFork_ExistingRejected(t *testing.T) {
	sess, _ := setupTestSession(t)
	sess.History = []store.Turn{{Role: store.RoleUser, Content: "x"}}

	err := sess.Fork("MAIN")
	require.ErrorIs(t, err, ErrExists)

	// State unchanged on rejection.
	assert.Equal(t, "main", sess.Active)
	assert.Len(t, sess.History, 1)
	assert.Equal(t, []string{"main"}, sess.List())
}

func TestSubfork_CopiesIndependently(t *testing.T) {
	sess, st := setupTestSession(t)
	sess.History = []store.Turn{
		{Role: store.RoleUser, Content: "hi"},
		{Role: store.RoleAssistant, Content: "hello"},
	}

	require.NoError(t, sess.Subfork("branch"))

	assert.Equal(t, "branch", sess.Active)
	require.Len(t, sess.History, 2)

	// The copy was persisted immediately.
	assert.Len(t, st.Load("branch"), 2)

	// Mutating the branch must not touch main, on disk or in memory.
	sess.History = append(sess.History,
		store.Turn{Role: store.RoleUser, Content: "more"},
		store.Turn{Role: store.RoleAssistant, Content: "turns"},
	)
	require.NoError(t, sess.Switch("main"))
	assert.Len(t, sess.History, 2)
	assert.Len(t, st.Load("main"), 2)
}

func TestSwitch(t *testing.T) {
	sess, _ := setupTestSession(t)
	require.NoError(t, sess.Fork("work"))
	sess.History = []store.Turn{
		{Role: store.RoleUser, Content: "on work"},
		{Role: store.RoleAssistant, Content: "ack"},
	}

	require.NoError(t, sess.Switch("main"))
	assert.Equal(t, "main", sess.Active)
	assert.Empty(t, sess.History)

	// work was flushed when leaving; switching back reloads it.
	require.NoError(t, sess.Switch("work"))
	require.Len(t, sess.History, 2)
	assert.Equal(t, "on work", sess.History[0].Content)
}

func TestSwitch_UnknownRejected(t *testing.T) {
	sess, _ := setupTestSession(t)

	err := sess.Switch("nowhere")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "main", sess.Active)
}

func TestDelete(t *testing.T) {
	sess, st := setupTestSession(t)
	require.NoError(t, sess.Fork("scratch"))
	require.NoError(t, sess.Switch("main"))

	wasActive, err := sess.Delete("scratch")
	require.NoError(t, err)
	assert.False(t, wasActive)
	assert.Equal(t, []string{"main"}, sess.List())
	assert.NotContains(t, st.List(), "scratch")
}

func TestDelete_ActiveRevertsToMain(t *testing.T) {
	sess, _ := setupTestSession(t)
	sess.History = []store.Turn{
		{Role: store.RoleUser, Content: "hi"},
		{Role: store.RoleAssistant, Content: "hello"},
	}
	require.NoError(t, sess.Fork("doomed"))

	wasActive, err := sess.Delete("doomed")
	require.NoError(t, err)
	assert.True(t, wasActive)
	assert.Equal(t, "main", sess.Active)
	// main's history came back from storage.
	require.Len(t, sess.History, 2)
	assert.Equal(t, "hi", sess.History[0].Content)
}

func TestDelete_MainRejected(t *testing.T) {
	sess, _ := setupTestSession(t)

	_, err := sess.Delete("main")
	require.ErrorIs(t, err, ErrReserved)
	assert.Equal(t, []string{"main"}, sess.List())
}

func TestDelete_UnknownRejected(t *testing.T) {
	sess, _ := setupTestSession(t)

	_, err := sess.Delete("ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSelectProvider_ResetsModel(t *testing.T) {
	sess, _ := setupTestSession(t)
	require.NoError(t, sess.SelectModel("sonnet"))

	require.NoError(t, sess.SelectProvider("openai"))
	assert.Equal(t, "openai", sess.Selection.Provider)
	assert.Equal(t, "gpt4", sess.Selection.Model)

	var cfgErr *provider.ConfigError
	assert.ErrorAs(t, sess.SelectProvider("gemini"), &cfgErr)
}

func TestSelectModel_ScopedToProvider(t *testing.T) {
	sess, _ := setupTestSession(t)

	require.NoError(t, sess.SelectModel("sonnet"))
	assert.Equal(t, "sonnet", sess.Selection.Model)

	// gpt4 only exists under openai.
	var cfgErr *provider.ConfigError
	assert.ErrorAs(t, sess.SelectModel("gpt4"), &cfgErr)
	assert.Equal(t, "sonnet", sess.Selection.Model)
}

func TestChat_AppendsPairOnSuccess(t *testing.T) {
	sess, _ := setupTestSession(t)
	completer := &fakeCompleter{reply: "hello", ok: true}

	content, ok := sess.Chat(context.Background(), completer, "hi")
	require.True(t, ok)
	assert.Equal(t, "hello", content)

	require.Len(t, sess.History, 2)
	assert.Equal(t, store.RoleUser, sess.History[0].Role)
	assert.Equal(t, "hi", sess.History[0].Content)
	assert.Equal(t, store.RoleAssistant, sess.History[1].Role)
	assert.Equal(t, "hello", sess.History[1].Content)

	// The request carried the prior history plus the new user turn.
	require.Len(t, completer.seen, 1)
	assert.Equal(t, "hi", completer.seen[0].Content)
}

func TestChat_NoPartialTurnOnFailure(t *testing.T) {
	sess, _ := setupTestSession(t)
	sess.History = []store.Turn{
		{Role: store.RoleUser, Content: "hi"},
		{Role: store.RoleAssistant, Content: "hello"},
	}

	_, ok := sess.Chat(context.Background(), &fakeCompleter{ok: false}, "again")
	assert.False(t, ok)
	assert.Len(t, sess.History, 2)
}

func TestScenario_ChatForkSwitch(t *testing.T) {
	sess, st := setupTestSession(t)

	_, ok := sess.Chat(context.Background(), &fakeCompleter{reply: "hello", ok: true}, "hi")
	require.True(t, ok)
	require.Len(t, sess.History, 2)

	require.NoError(t, sess.Fork("work"))
	assert.Equal(t, "work", sess.Active)
	assert.Empty(t, sess.History)

	flushed := st.Load("main")
	require.Len(t, flushed, 2)
	assert.Equal(t, "hi", flushed[0].Content)
	assert.Equal(t, "hello", flushed[1].Content)

	require.NoError(t, sess.Switch("main"))
	require.Len(t, sess.History, 2)
	assert.Equal(t, "hi", sess.History[0].Content)
	assert.Equal(t, "hello", sess.History[1].Content)
}
