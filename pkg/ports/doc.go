/*
Package ports defines the driven ports (interfaces) of the editor.

These interfaces decouple the edit model from where packages are kept,
allowing the same editor to push to and pull from various storage backends.

# Key Interfaces

  - PackageStore: persists packages by name (memory, file, redis, sqlite).
  - Watchable: notifies about backend changes so opened packages can be reloaded.
*/
package ports
