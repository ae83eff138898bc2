package domain

import "errors"

// ErrSessionNotFound is returned by session stores when the key is unknown.
var ErrSessionNotFound = errors.New("session not found")

// ErrTableFormat is returned by loaders for files they cannot parse.
var ErrTableFormat = errors.New("unsupported table format")
