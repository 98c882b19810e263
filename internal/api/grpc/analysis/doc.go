// Package analysis implements the gRPC transport for the analysis service.
//
// Messages are plain Go structs carried by a msgpack codec registered under
// the "msgpack" content subtype, so NaN samples survive the wire. The package
// provides the service descriptor, a client stub and a server that calls into
// a provided business-service interface.
package analysis
