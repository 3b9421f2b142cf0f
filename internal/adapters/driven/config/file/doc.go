// Package file provides file-based implementations of driven port interfaces.
//
// Adapters:
//   - ConfigStore: TOML configuration at ~/.ragchat/config.toml with
//     flattened dot keys and fsnotify-based reloads
package file
