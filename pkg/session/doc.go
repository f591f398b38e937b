/*
Package session serializes concurrent access to running machines.

A Machine is not safe for concurrent use. Servers that expose machines to many
clients keep them in a ports.SessionStore and go through a Manager, which holds
a per-session lock for the duration of every operation.
*/
package session
