// Package minio provides a blobstore.Store backed by MinIO or any other
// S3-compatible object store reachable through minio-go.
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	    Secure: false,
//	})
//	store := miniostore.NewStore(client, "meshes", "prod/")
package minio
