// Package persistence publishes symbol table snapshots to a blob store and
// restores them.
//
// A publish is a three-step pipeline: the snapshot object, the manifest
// describing it, and finally a commit-store record that makes the version
// visible. Readers resolve the current version through the commit store, so
// a crash between steps leaves at most orphaned objects, never a corrupt
// current version. Orphans age out of the retention window and are
// collected by Prune.
//
//	t := symgo.Table().MustBuild()
//	mgr, err := persistence.NewManager(t,
//	    blobstore.NewLocalStore(dir),
//	    blobstore.NewLocalCommitStore(commitDir),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	go mgr.Run(ctx, time.Minute)
//
// Restoring picks up the latest committed version:
//
//	t, manifest, err := persistence.LoadLatest(ctx, store, commits)
//	if errors.Is(err, persistence.ErrNoSnapshot) {
//	    t = symgo.Table().MustBuild()
//	}
//
// Multiple publishers may share one commit store: the conditional commit
// lets exactly one writer win each version, and the losers observe
// blobstore.ErrConcurrentModification.
package persistence
