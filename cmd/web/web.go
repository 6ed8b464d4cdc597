package web

import "embed"

// Files holds the static pages served by the HTTP layer, embedded in the
// binary.
//
//go:embed assets
var Files embed.FS
