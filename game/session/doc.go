// Package session provides the in-memory game registry for the Snake server.
//
// Manager maps game identifiers (random UUIDs) to service.Session values.
// The map is guarded by a read/write mutex so lookups from many requests
// proceed in parallel; each Session carries its own lock for moves.
//
// Usage:
//
//	manager := session.NewManager()
//
//	sess, err := manager.Create(config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sess, err = manager.Get(sess.ID)
//
// Cleanup:
//
// Games are never removed implicitly by play. CleanupExpiredSessions drops
// games whose last move is older than the given age; the server runs it on
// a ticker.
package session
