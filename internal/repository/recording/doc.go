// Package recording persists motion recordings on disk.
//
// The FileRepository picks the encoding from the file extension: msgpack for
// ".msgpack" and ".mp" files, JSON otherwise. JSON files write undefined
// samples as null.
package recording
