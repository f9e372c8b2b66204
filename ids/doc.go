// Copyright (c) 2025 The LunchBuddy Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package ids generates short, URL-safe session identifiers.
//
// Session ids are 48 bits of crypto/rand output encoded in base62, short
// enough to read aloud to a coworker but wide enough that guessing an
// active session is impractical.
package ids
