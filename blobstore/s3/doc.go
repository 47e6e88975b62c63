// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "star-catalogs",
//	    s3.WithPrefix("ucac4/"),
//	    s3.WithRegion("eu-central-1"),
//	)
//
//	cat, err := skycat.Open(ctx, store)
//
// Zone files are read with ranged GETs, so a query touching one bucket
// fetches only that bucket's records. Wrap the store in a
// blobstore.CachingStore to avoid repeated round trips for hot zones.
package s3
