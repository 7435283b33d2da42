/*
Package session serialises access to per-session search history.

The Manager keeps one reference-counted mutex per active session so that writes to the
same session never interleave, while distinct sessions proceed in parallel. When several
replicas share a store, an optional ports.DistributedLocker extends that guarantee across
processes.
*/
package session
