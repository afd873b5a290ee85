package profiles

import (
	"context"
	"errors"
	"sort"

	"github.com/rs/zerolog/log"
	"github.com/tilwick/vscode-sync/internal/remote"
)

// RemoteProfile is one discovered profile: its subtree name plus the
// parsed metadata.
type RemoteProfile struct {
	ID   string
	Meta Metadata
}

// ListRemote discovers profiles under basePath. A subdirectory without a
// parseable, schema-matching meta.json is not a profile and is skipped
// silently; transport failures still propagate. The result is sorted by
// display name, then id, for stable listings.
func ListRemote(ctx context.Context, p remote.Provider, ref remote.RepoRef, basePath string) ([]RemoteProfile, error) {
	entries, err := p.ListDir(ctx, ref, basePath)
	if err != nil {
		return nil, err
	}

	found := make([]RemoteProfile, 0, len(entries))
	for _, entry := range entries {
		if entry.Kind != remote.EntryDir {
			continue
		}
		file, err := p.ReadFile(ctx, ref, MetaPath(basePath, entry.Name))
		if err != nil {
			var decodeErr *remote.DecodeError
			if errors.As(err, &decodeErr) {
				log.Debug().Str("dir", entry.Name).Err(err).Msg("skipping directory with undecodable metadata")
				continue
			}
			return nil, err
		}
		if file == nil {
			log.Debug().Str("dir", entry.Name).Msg("skipping directory without metadata")
			continue
		}
		meta, err := ParseMetadata([]byte(file.Content))
		if err != nil {
			log.Debug().Str("dir", entry.Name).Err(err).Msg("skipping directory with foreign metadata")
			continue
		}
		found = append(found, RemoteProfile{ID: entry.Name, Meta: meta})
	}

	sort.Slice(found, func(i, j int) bool {
		if found[i].Meta.DisplayName != found[j].Meta.DisplayName {
			return found[i].Meta.DisplayName < found[j].Meta.DisplayName
		}
		return found[i].ID < found[j].ID
	})
	return found, nil
}
