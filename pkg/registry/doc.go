// Package registry holds the Go resolvers and hooks that catalog machines are compiled with.
package registry
