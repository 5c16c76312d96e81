// Package vectorstore persists image records redundantly across one Qdrant
// collection per distance metric and serves similarity queries against each.
//
// Every record is written to four collections derived from a common base
// name (for example image_db_cosine, image_db_euclid, image_db_dot,
// image_db_manhattan), each created with the matching distance function.
// This makes a single ingested image retrievable under every supported
// metric without re-embedding.
//
// # Core Features
//
//   - Idempotent collection creation with dimension verification
//   - All-or-nothing upsert semantics with configurable reconciliation
//     (bounded retry of failed collections, then rollback of partial writes)
//   - Deletion across all collections by payload image_id match, with the
//     same bounded retry and PartialWriteError reporting as writes
//   - Parallel per-metric similarity search with partial-result degradation
//   - Fx lifecycle integration for startup collection setup
//
// # Consistency
//
// A write reports success only when every metric collection accepted the
// point. When some collections fail, the store retries them up to the
// configured limit and, if copies still diverge, removes the successful
// writes and surfaces a PartialWriteError describing the final state.
//
// Concurrent Upsert and Delete calls for the same image id are resolved
// per collection in arrival order; callers that need stricter ordering
// must serialise those operations themselves.
//
// # Basic Usage
//
//	cfg := vectorstore.DefaultConfig()
//	client, err := vectorstore.NewQdrantClient(cfg, log)
//	if err != nil {
//	    return err
//	}
//	store := vectorstore.NewStore(client, cfg, log)
//
//	if err := store.EnsureCollections(ctx, uint64(cfg.Dim)); err != nil {
//	    return err
//	}
//	if err := store.Upsert(ctx, record); err != nil {
//	    return err
//	}
//
//	resp, err := store.Search(ctx, vector, model.AllMetrics(), 10)
package vectorstore
