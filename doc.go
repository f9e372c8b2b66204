// Copyright (c) 2025 The LunchBuddy Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the LunchBuddy API server.

LunchBuddy coordinates a small group's daily lunch decision: propose options,
vote, designate a volunteer to fetch food, collect individual orders, and
track delivery status. Sessions reset lazily each calendar day.

# Starting the Server

The server runs against a local sqlite file by default:

	go run main.go

Or against PostgreSQL:

	DATABASE_TYPE=postgres DATABASE_URL=postgres://... go run main.go

# Configuration

Optional settings (flags or environment):

  - PORT (-p): Server port (default: 3327)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - DATABASE_URL (-d): Connection string or sqlite path (default: lunchbuddy.db)
  - VOTE_THRESHOLD (--vote-threshold): Votes before volunteering opens (default: 2)

A .env file is loaded when present.

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: HTTP request handlers (planning, voting, status, requests, users)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - models: Request/response types and lifecycle constants
  - ids: Short session id generation
  - db: Driver selection and schema creation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
