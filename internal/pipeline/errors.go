// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package pipeline

import "errors"

// Error taxonomy for one generation run. Scrape failures are absorbed (an
// empty snapshot is data, not an error) and per-image synthesis failures
// become nil slots, so these sentinels cover the cases that actually abort
// a run or must be classified by the caller.
var (
	// ErrValidation marks a request missing mandatory fields for its mode.
	// Surfaced before any network call is made.
	ErrValidation = errors.New("invalid generation request")

	// ErrGenerationMalformed marks a completion that could not be parsed
	// into the article contract. Never retried automatically: a second call
	// to a non-deterministic model burns quota and risks an internally
	// inconsistent draft.
	ErrGenerationMalformed = errors.New("completion did not match the article contract")

	// ErrProviderTimeout classifies a provider call that hit its deadline.
	// For image synthesis it feeds the same fallback path as any other
	// failure; it exists so logs and callers can tell the cases apart.
	ErrProviderTimeout = errors.New("provider call timed out")
)
