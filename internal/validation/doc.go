// Rewind - Media Server Watch History Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewind

// Package validation validates API query structs with go-playground/validator v10.
//
// A single validator instance is built once and shared; it caches struct
// metadata, so reuse is cheap and safe for concurrent handlers. Error field
// names come from the `query` struct tag:
//
//	type topRequest struct {
//	    Window string `query:"window" validate:"omitempty,oneof=week month year allTime"`
//	    Limit  int    `query:"limit"  validate:"gte=0,lte=1000"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    // apiErr.Code == "VALIDATION_FAILED", apiErr.Message == "limit must be less than or equal to 1000"
//	}
//
// # Custom validators
//
//   - ratingkey: 1 to 20 ASCII digits, the shape of a Plex rating key
package validation
