// Package s3 provides an Amazon S3 implementation of blobstore.Store.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("meshes/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
//	err = tri.Save(ctx, store, "terrain.dlna")
//
// # Features
//
//   - CRC32C integrity checksums on every upload
//   - Multipart uploads for large archives
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
package s3
