// Package conversation tracks multi-turn queries on the client side.
//
// The service is not known to validate conversation continuity, so the
// tracker is the only guard against continuing a conversation on the
// wrong notebook. Begin runs before any network call; Commit runs only
// after an answer arrives, so a failed query never consumes a turn.
package conversation
