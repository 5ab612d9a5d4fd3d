// Package cli implements the sigrelay command-line client on top of cobra.
//
// The binary keeps one identity (a secp256k1 key pair, optionally sealed
// under a passphrase) and at most one relay session in a local state
// database. Typical flow:
//
//	sigrelay keygen --ask-pass
//	sigrelay login --ttl 2h --ask-pass
//	sigrelay publish "hello" --kind 1
//	sigrelay events list
//	sigrelay secret --ask-pass
//
// See NewRootCmd for the command tree.
package cli
