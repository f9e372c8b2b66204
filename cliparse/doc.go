/*
Package cliparse handles command-line flags and environment configuration.

# Usage

	cfg, err := cliparse.ParseFlags()

Flags take precedence over environment variables, which take precedence over
defaults. Supported settings:

  - -p / PORT: server port (default 3327)
  - -t / DATABASE_TYPE: sqlite or postgres (default sqlite)
  - -d / DATABASE_URL: connection string, or file path for sqlite
  - --vote-threshold / VOTE_THRESHOLD: votes required before the
    voting-complete flag turns on (default 2, minimum 1)

DATABASE_URL is required for postgres; sqlite falls back to lunchbuddy.db in
the working directory.
*/
package cliparse
