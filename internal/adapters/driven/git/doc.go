// Package git checks repositories out into the workspace with go-git.
//
// A repository is cloned into a hidden sibling directory and renamed into
// place only when the clone completes, so an interrupted or failed clone never
// leaves a directory that looks like a finished checkout. Existing checkouts
// are pulled instead of cloned again.
//
// When the git transport rejects the token, the operation is retried once
// through a [Fallback] transport, in production the gh CLI.
package git
