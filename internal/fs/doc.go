// Package fs provides filesystem abstractions for testability and fault injection.
//
// The package defines two key interfaces:
//
//   - [File]: Represents an open file with write/sync capabilities
//   - [FileSystem]: Abstracts filesystem operations (open, remove, rename, etc.)
//
// # Implementations
//
//   - [LocalFS]: Production implementation using standard os package
//   - [FaultyFS]: Test utility for fault injection (simulate I/O errors)
//
// Production code uses fs.Default (which is [LocalFS]). Tests inject
// [FaultyFS] to verify that atomic save paths leave no partial files behind
// when a write, sync, or close fails:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule("snapshot", fs.Fault{FailOnSync: true})
//	// inject ffs into component under test
//
// This package intentionally does NOT include context.Context parameters.
// Filesystem operations are typically fast (microseconds for local NVMe) and
// non-interruptible at the syscall level.
package fs
