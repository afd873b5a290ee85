package commands_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tilwick/vscode-sync/internal/commands"
	"github.com/tilwick/vscode-sync/internal/profiles"
	"github.com/tilwick/vscode-sync/internal/remote/mock"
	"github.com/tilwick/vscode-sync/internal/state"
)

func TestCreateProfile(t *testing.T) {
	p := mock.New()
	s := newSession(t, p)
	editor, _ := newTestEditor()

	meta, err := commands.CreateProfile(context.Background(), s, editor, "vue")
	require.NoError(t, err)

	assert.NotEmpty(t, meta.ID)
	assert.NotEqual(t, "vue", meta.ID, "ids are random, never derived from the name")
	assert.Equal(t, "vue", meta.DisplayName)

	metaPath := "profiles/" + meta.ID + "/meta.json"
	require.Contains(t, p.Files, metaPath)
	parsed, err := profiles.ParseMetadata([]byte(p.Files[metaPath]))
	require.NoError(t, err)
	assert.Equal(t, meta.ID, parsed.ID)
	assert.Equal(t, "Create profile vue", p.Writes[0].Message)

	assert.Equal(t, meta.ID, s.State.ActiveProfileID)
	assert.Equal(t, "vue", s.State.ActiveProfileName)

	persisted, err := state.Load(s.StatePath)
	require.NoError(t, err)
	assert.Equal(t, meta.ID, persisted.ActiveProfileID)
	assert.Equal(t, "vue", persisted.ActiveProfileName)
}

func TestCreateProfile_EmptyName(t *testing.T) {
	p := mock.New()
	s := newSession(t, p)
	editor, _ := newTestEditor()

	_, err := commands.CreateProfile(context.Background(), s, editor, "")
	require.Error(t, err)
	assert.Empty(t, p.Writes)
}

func TestUseProfile_LocalOnly(t *testing.T) {
	p := mock.New()
	s := newSession(t, p)

	require.NoError(t, commands.UseProfile(s, "abc123", "vue"))

	assert.Equal(t, "abc123", s.State.ActiveProfileID)
	assert.Equal(t, "vue", s.State.ActiveProfileName)
	assert.Empty(t, p.Reads, "switching performs no remote reads")
	assert.Empty(t, p.Writes, "switching performs no remote writes")
	assert.Empty(t, p.ReposCreated)

	persisted, err := state.Load(s.StatePath)
	require.NoError(t, err)
	assert.Equal(t, "abc123", persisted.ActiveProfileID)
}

func TestRenameProfile(t *testing.T) {
	p := mock.New()
	seedProfileMeta(t, p, "p1", "old-name")

	s := newSession(t, p)
	s.State.ActiveProfileID = "p1"
	s.State.ActiveProfileName = "old-name"

	require.NoError(t, commands.RenameProfile(context.Background(), s, "p1", "new-name"))

	parsed, err := profiles.ParseMetadata([]byte(p.Files["profiles/p1/meta.json"]))
	require.NoError(t, err)
	assert.Equal(t, "p1", parsed.ID, "renaming keeps the id")
	assert.Equal(t, "new-name", parsed.DisplayName)
	assert.Equal(t, "new-name", s.State.ActiveProfileName)
}

func TestRenameProfile_InactiveProfileKeepsState(t *testing.T) {
	p := mock.New()
	seedProfileMeta(t, p, "p2", "other")

	s := newSession(t, p)
	s.State.ActiveProfileID = "p1"
	s.State.ActiveProfileName = "work"

	require.NoError(t, commands.RenameProfile(context.Background(), s, "p2", "renamed"))
	assert.Equal(t, "work", s.State.ActiveProfileName)
}

func TestRenameProfile_Missing(t *testing.T) {
	p := mock.New()
	s := newSession(t, p)

	err := commands.RenameProfile(context.Background(), s, "ghost", "anything")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no metadata")
}

func TestProfiles(t *testing.T) {
	p := mock.New()
	seedProfileMeta(t, p, "p1", "work")
	seedProfileMeta(t, p, "p2", "home")
	p.SetFile("profiles/notaprofile/readme.md", "not a profile")

	s := newSession(t, p)
	list, err := commands.Profiles(context.Background(), s)
	require.NoError(t, err)

	require.Len(t, list, 2)
	assert.Equal(t, "home", list[0].Meta.DisplayName)
	assert.Equal(t, "work", list[1].Meta.DisplayName)
}

func TestFindProfile(t *testing.T) {
	p := mock.New()
	seedProfileMeta(t, p, "id-a", "dup")
	seedProfileMeta(t, p, "id-b", "dup")
	seedProfileMeta(t, p, "id-c", "unique")

	s := newSession(t, p)

	t.Run("by display name", func(t *testing.T) {
		found, err := commands.FindProfile(context.Background(), s, "unique")
		require.NoError(t, err)
		assert.Equal(t, "id-c", found.ID)
	})

	t.Run("by id", func(t *testing.T) {
		found, err := commands.FindProfile(context.Background(), s, "id-b")
		require.NoError(t, err)
		assert.Equal(t, "dup", found.Meta.DisplayName)
	})

	t.Run("ambiguous name", func(t *testing.T) {
		_, err := commands.FindProfile(context.Background(), s, "dup")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "profile id")
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := commands.FindProfile(context.Background(), s, "ghost")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no profile named")
	})
}
