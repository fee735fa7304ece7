// Package file provides file-based configuration adapters.
//
// Adapters:
//   - ConfigStore: TOML configuration at ~/.pulse-brief/config.toml
//   - PromptStore: editable prompt templates with embedded defaults
//   - PromptWatcher: reloads the PromptStore when templates change
package file
