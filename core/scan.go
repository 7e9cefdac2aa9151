package core

import "github.com/guateandrew/edis/store"

// storeFoldOptionsFast favors throughput over cache pollution for the
// best-effort scans (RANDOMKEY, DBSIZE, KEYS) that touch the whole shard.
var storeFoldOptionsFast = store.FoldOptions{FillCache: false}
