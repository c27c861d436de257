// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package complication implements the timeline engine behind a face's data
// slots.
//
// A slot is a fixed-position region of the face that displays externally
// supplied data. Each slot holds a base payload and, optionally, a timeline
// of payload variants valid only during half-open time intervals; the
// engine deterministically selects the active variant for a given instant,
// tracks per-attribute dirty state for batched host notification, and
// answers spatial hit tests for tap routing.
//
// The engine never draws and never decodes wire formats: payloads arrive
// already decoded, and drawing is the slot delegate's concern.
package complication
