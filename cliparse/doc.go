// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line flags and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

Commands that own their own pflag.FlagSet (the cobra root) bind the same
flags and resolve afterwards:

	cliparse.BindFlags(cmd.PersistentFlags(), &cfg)
	cfg, err = cliparse.Resolve(cfg)

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: sqlite file path or PostgreSQL connection string
  - DatabaseType: sqlite (default) or postgres
  - SessionSalt: Secret for session token HMAC (required)
  - EventSlugSalt: Secret for share slug generation (required)
  - AdminCheckTimeout: Upper bound on the admin lookup (default: 5s)
  - ClaimCooldown: Minimum gap between claim/cancel requests per user (default: 1s)
  - MaxParticipantQuantity: Cap on participant-added quantities (default: 10)

# Environment Variables

Flags fall back to environment variables:

	PORT                      → -p, --port
	DATABASE_URL              → -d, --database-url
	DATABASE_TYPE             → -t, --database-type
	SESSION_SALT              → --session-salt
	EVENT_SLUG_SALT           → --slug-salt
	ADMIN_CHECK_TIMEOUT       → --admin-timeout
	CLAIM_COOLDOWN            → --claim-cooldown
	MAX_PARTICIPANT_QUANTITY  → --max-participant-qty

CLI flags take precedence over environment variables. LoadEnvFile reads a
.env file first without overriding variables that are already set.

# Validation

Resolve returns an error if:

  - SESSION_SALT or EVENT_SLUG_SALT is missing
  - DATABASE_TYPE is postgres and no DATABASE_URL is given
  - a numeric or duration variable does not parse
*/
package cliparse
