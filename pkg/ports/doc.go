// Package ports defines the interfaces between the dispatch engine and its
// collaborators: session stores, rule sources, the chat transport, the
// geocoder and distributed locking. Adapters live under pkg/adapters.
package ports
