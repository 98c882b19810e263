// Package server runs the ulmotion analysis gRPC server.
//
// Service executes segmentation and use classification on recordings
// received over the wire, bounding how many analyses run at once. Run wires
// it into a gRPC server together with the standard health service.
package server
