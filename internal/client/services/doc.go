// Package services contains the application logic behind the sigrelay CLI.
// RelayService ties the local state store (identity and session) to a relay
// connection: it runs the handshake, signs events with the stored key and
// recomputes the session's shared secret on demand.
package services
