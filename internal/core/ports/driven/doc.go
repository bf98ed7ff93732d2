// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - RepositoryLister: Discovers the repositories of an organization
//   - RepositoryAcquirer: Clones or updates a repository into the workspace
//   - Completer: Turns a prompt into text (the language model boundary)
//   - PromptStore: Section prompt templates
//   - DocumentWriter: Persists generated Markdown
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - Confirmer: Asks the user before each repository. Without it every
//     repository is processed.
//   - CommandRunner: Runs the gh CLI. Without it the CLI fallbacks report
//     [domain.ErrCLIUnavailable].
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
