package storage

import "errors"

// ErrListingNotFound is returned when a listing id does not exist in the caller's region.
var ErrListingNotFound = errors.New("listing not found")

// ErrPlayerNotFound is returned when a player name or API key is unknown.
var ErrPlayerNotFound = errors.New("player not found")

// ErrPlayerExists is returned when registering a name that is already taken
// without presenting the existing API key.
var ErrPlayerExists = errors.New("player already registered")

// ErrActionNotFound is returned when no recorded outcome exists for an action id.
var ErrActionNotFound = errors.New("action not found")

// ErrActionExists is returned when recording an action outcome whose id was
// already recorded by a concurrent duplicate submission.
var ErrActionExists = errors.New("action already recorded")

// ErrStaleListing is returned when a conditional write lost to a concurrent
// writer and the re-read could not surface a more specific rejection.
var ErrStaleListing = errors.New("listing modified concurrently")
