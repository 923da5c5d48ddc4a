package app

import (
	"context"
	"fmt"

	"github.com/spf13/afero"

	"github.com/nervecenter/nerve-center/internal/store"
	"github.com/nervecenter/nerve-center/internal/store/localstore"
	"github.com/nervecenter/nerve-center/internal/store/sqlstore"
)

// OpenStore constructs the Store implementation for mode, resolving paths
// per the precedence rules in DBPath/StatePath. The facade is built on top
// of whichever Store this returns and never branches on mode again.
func OpenStore(ctx context.Context, mode Mode, dbPathOverride string) (store.Store, error) {
	switch mode {
	case ModeHosted:
		path, err := DBPath(dbPathOverride)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve shared store path: %w", err)
		}
		return sqlstore.OpenStore(ctx, path)
	case ModeLocal:
		env := LoadEnvConfig()
		path := StatePath(env)
		return localstore.Open(afero.NewOsFs(), path)
	default:
		return nil, fmt.Errorf("unknown store mode: %q", mode)
	}
}
