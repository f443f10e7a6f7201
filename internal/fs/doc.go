// Package fs provides filesystem abstractions for testability and fault injection.
//
// The package defines two key interfaces:
//
//   - [File]: an open file with read/write/sync capabilities
//   - [FileSystem]: directory enumeration plus open, remove, rename and mkdir
//
// # Implementations
//
//   - [LocalFS]: production implementation using the standard os package
//   - [FaultyFS]: test utility for fault injection (unreadable corpus files,
//     failing directory listings, failing syncs in the local store)
//
// Production code should use fs.Default:
//
//	entries, err := fs.Default.ReadDir(dir)
//
// Tests inject [FaultyFS] to simulate failures:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule("b.xml", fs.Fault{FailOnRead: true})
//
// This package intentionally does NOT include context.Context parameters.
// Local filesystem operations are not interruptible at the syscall level.
package fs
