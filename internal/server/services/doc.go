// Package services contains the relay's business logic on top of the
// repositories: publishing and reading signed events, establishing sessions
// and maintaining the user directory.
//
// Signature checks and key generation happen here, outside any store lock.
package services
