// Package ghcli drives the GitHub command line tool (gh) as a fallback
// transport. Organizations that enforce SAML single sign-on reject plain
// token requests, while a gh session authorized through the browser keeps
// working, so both listing and cloning can be retried through gh.
//
// Subprocesses go through [driven.CommandRunner]; [ExecRunner] is the
// os/exec implementation used in production.
package ghcli
