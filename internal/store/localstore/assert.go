package localstore

import "github.com/nervecenter/nerve-center/internal/store"

var _ store.Store = (*Store)(nil)
