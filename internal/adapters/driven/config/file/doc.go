// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem.
//
// Adapters:
//   - ConfigStore: TOML configuration, ~/.repodoc/config.toml by default
//   - PromptStore: user-editable prompt templates, ~/.repodoc/prompts/
package file
