/*
Package session manages multiple concurrent scenario sessions on top of a
StateStore.

Each session owns one Scenario instance. The manager serializes access per
session with reference-counted local locks and, optionally, a distributed
locker for multi-replica deployments. Persisted snapshots carry the machine
position only; conversation history is not this layer's concern.
*/
package session
