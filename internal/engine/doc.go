// Package engine composes the item store, the dedup index and the search
// index behind one facade. All operations on one Engine are expected to
// run from a single logical caller; the engine performs no internal
// concurrency and never retries a failed operation.
//
// # Basic Usage
//
//	eng, err := engine.Open("history.db", "blobs")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer eng.Close()
//
//	outcome, err := eng.DedupeInsert(ctx, &types.NewItem{
//	    Kind:       types.KindText,
//	    ContentRef: "hello world",
//	})
package engine
