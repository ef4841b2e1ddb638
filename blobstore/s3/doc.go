// Package s3 provides an S3 implementation of the blobstore.Store interface,
// plus a DynamoDB-backed blobstore.CommitStore for atomic publishes.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("interner/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
//	commits := s3.NewDDBCommitStore(ddbClient, "symgo-commits", "s3://my-bucket/interner")
//
//	mgr, err := persistence.NewManager(table, store, commits)
//
// # Features
//
//   - CRC32C checksums validated by S3 on every small upload
//   - Multipart uploads for large snapshots
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
//   - Conditional DynamoDB writes so concurrent publishers cannot clobber
//     each other
package s3
