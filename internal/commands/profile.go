package commands

import (
	"context"
	"fmt"
	"runtime"

	"github.com/tilwick/vscode-sync/internal/profiles"
	"github.com/tilwick/vscode-sync/internal/vscode"
)

// Profiles lists the profiles discovered in the sync repository.
func Profiles(ctx context.Context, s *Session) ([]profiles.RemoteProfile, error) {
	if err := s.EnsureRemoteReady(ctx); err != nil {
		return nil, err
	}
	return profiles.ListRemote(ctx, s.Provider, s.Ref, s.BasePath)
}

// FindProfile resolves a profile by id or display name. Display names may
// collide; an ambiguous name is an error rather than a silent pick.
func FindProfile(ctx context.Context, s *Session, nameOrID string) (profiles.RemoteProfile, error) {
	list, err := Profiles(ctx, s)
	if err != nil {
		return profiles.RemoteProfile{}, err
	}

	for _, p := range list {
		if p.ID == nameOrID {
			return p, nil
		}
	}

	var matches []profiles.RemoteProfile
	for _, p := range list {
		if p.Meta.DisplayName == nameOrID {
			matches = append(matches, p)
		}
	}
	switch len(matches) {
	case 0:
		return profiles.RemoteProfile{}, fmt.Errorf("no profile named %q", nameOrID)
	case 1:
		return matches[0], nil
	default:
		return profiles.RemoteProfile{}, fmt.Errorf("%d profiles named %q; use the profile id", len(matches), nameOrID)
	}
}

// CreateProfile generates a fresh profile, publishes its metadata, and
// makes it the session's active profile. The id is random and never
// derived from the display name.
func CreateProfile(ctx context.Context, s *Session, editor *vscode.Editor, displayName string) (profiles.Metadata, error) {
	if displayName == "" {
		return profiles.Metadata{}, fmt.Errorf("profile name must not be empty")
	}
	if err := s.EnsureRemoteReady(ctx); err != nil {
		return profiles.Metadata{}, err
	}

	meta := profiles.NewMetadata(displayName, runtime.GOOS, editor.EditorVersion(ctx))
	data, err := profiles.MarshalMetadata(meta)
	if err != nil {
		return profiles.Metadata{}, err
	}
	path := profiles.MetaPath(s.BasePath, meta.ID)
	if err := s.WriteFile(ctx, path, string(data), fmt.Sprintf("Create profile %s", displayName)); err != nil {
		return profiles.Metadata{}, err
	}

	s.State.ActiveProfileID = meta.ID
	s.State.ActiveProfileName = displayName
	if err := s.saveState(); err != nil {
		return profiles.Metadata{}, err
	}
	return meta, nil
}

// UseProfile makes a profile the active one. Switching is purely local;
// no remote I/O happens until the next upload or download.
func UseProfile(s *Session, id, displayName string) error {
	s.State.ActiveProfileID = id
	s.State.ActiveProfileName = displayName
	return s.saveState()
}

// RenameProfile rewrites a profile's metadata with a new display name,
// keeping the id. The active profile label follows when the renamed
// profile is the active one.
func RenameProfile(ctx context.Context, s *Session, id, newName string) error {
	if newName == "" {
		return fmt.Errorf("profile name must not be empty")
	}
	if err := s.EnsureRemoteReady(ctx); err != nil {
		return err
	}

	path := profiles.MetaPath(s.BasePath, id)
	file, err := s.Provider.ReadFile(ctx, s.Ref, path)
	if err != nil {
		return err
	}
	if file == nil {
		return fmt.Errorf("profile %s has no metadata", id)
	}
	meta, err := profiles.ParseMetadata([]byte(file.Content))
	if err != nil {
		return err
	}

	meta.DisplayName = newName
	data, err := profiles.MarshalMetadata(meta)
	if err != nil {
		return err
	}
	if err := s.WriteFile(ctx, path, string(data), fmt.Sprintf("Rename profile to %s", newName)); err != nil {
		return err
	}

	if s.State.ActiveProfileID == id {
		s.State.ActiveProfileName = newName
		return s.saveState()
	}
	return nil
}
