// Package minio serves catalog files from MinIO or another S3-compatible
// server (Ceph, SeaweedFS, Garage) through minio-go, without the AWS SDK
// credential chain.
//
//	client, err := minio.Dial("localhost:9000", "minioadmin", "minioadmin", false)
//	if err != nil { ... }
//	cat, err := skycat.Open(ctx, skycat.Remote(minio.NewStore(client, "catalogs", "ucac4/")))
//
// Every read is a ranged GET pinned to the ETag seen at Open, so a catalog
// file replaced while a Catalog is open fails loudly instead of mixing two
// versions.
package minio
