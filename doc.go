// Package vexo provides an embedded hybrid search engine for Go.
//
// Vexo combines an HNSW proximity graph for dense vectors with a BM25
// inverted index for text fields. Each query runs both retrieval legs and
// merges the two rankings with a configurable fusion strategy.
//
// # Quick Start
//
//	ctx := context.Background()
//
//	vx, _ := vexo.HNSW(128).Cosine().Build()
//	defer vx.Close()
//
//	_ = vx.Insert(ctx, model.Record{
//	    ID:     "doc-1",
//	    Dense:  embedding,
//	    Fields: map[string]string{"title": "red wine", "body": "a dry red"},
//	})
//
//	results, _ := vx.Query(queryVec).
//	    Text("cheap red wine", "title^3", "body").
//	    KNN(10).
//	    Alpha(0.6).
//	    Execute(ctx)
//
// # Fusion
//
// Eight strategies are available: weighted sum (default), reciprocal rank
// fusion, distribution-based, relative score, max, min, harmonic mean, and
// geometric mean. Alpha weights the dense side for the weighted strategies;
// Explain() attaches a per-result breakdown of raw scores, normalization,
// and the fusion formula.
//
// # Persistence
//
// Snapshots are checksummed, codec-tagged blobs written through a
// blobstore.Store: in-memory, local filesystem, S3, or MinIO.
//
//	vx, _ := vexo.HNSW(128).
//	    BlobStore(blobstore.NewLocalStore("./data")).
//	    Build()
//	_ = vx.Save(ctx, "snapshots/latest")
//	vx2, _ := vexo.Load(ctx, "snapshots/latest",
//	    vexo.WithBlobStore(blobstore.NewLocalStore("./data")))
//
// # Deletes and Compaction
//
// Delete tombstones the graph slot; topology is preserved so search recall
// is unaffected. Once TombstoneRatio crosses the configured threshold,
// Compact rebuilds the graph without tombstones while reads stay available.
package vexo
