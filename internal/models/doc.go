// Package models holds the entities shared by the relay server and its
// clients: signed events, sessions and user directory entries.
package models
