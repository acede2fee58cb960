// Package gamerec embeds the hybrid game recommender in a Go program,
// without the HTTP server.
//
// A client holds one snapshot at a time: either read from a directory
// produced by gamerec-build, or loaded from memory.
//
//	client, _ := gamerec.New(ctx,
//	    gamerec.WithEmbedder(myEmbedder),
//	    gamerec.WithSnapshotDir("data/snapshot"),
//	)
//	recs, _ := client.Recommend(ctx, "co-op space survival",
//	    gamerec.WithAlpha(0.7),
//	    gamerec.WithMaxPrice(20),
//	    gamerec.WithPlatforms(gamerec.Linux),
//	    gamerec.WithTopN(5),
//	)
//
// Scores combine semantic similarity with the weighted rating: alpha=1 ranks
// by similarity alone, alpha=0 by rating alone.
package gamerec
