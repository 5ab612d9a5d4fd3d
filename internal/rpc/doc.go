// Package rpc defines the relay's wire vocabulary: request and response
// messages shared by the HTTP and gRPC transports, the gRPC service
// descriptor and the JSON codec the gRPC transport uses in place of
// generated protobuf stubs.
package rpc
