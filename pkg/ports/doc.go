/*
Package ports defines the driven ports (interfaces) of the switchyard adapters.

These interfaces decouple the servers (HTTP, MCP, CLI) from the places machine
documents and running sessions live.

# Key Interfaces

  - Catalog: Lists and loads machine documents (e.g., from Loam or Memory).
  - Watchable: Notifies about catalog changes, for hot reload.
  - SessionStore: Keeps running machines between requests.
*/
package ports
