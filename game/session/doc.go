// Package session provides session management for the burrow puzzle server.
//
// Manager keeps sessions in memory keyed by a case-insensitive ID. Generated
// IDs are 4 random hex characters. With a SessionPersistence attached, new
// sessions are saved on creation, unknown IDs are looked up in storage, and
// deleting a session also removes its stored copy.
//
// FilePersistence stores one JSON file per session in a directory. A file
// holds the config ID, the timestamps, the engine's BurrowState and the
// summary of the last solver run. Loading a file rebuilds the engine from the
// named puzzle configuration and restores the saved state onto it.
//
// Usage:
//
//	configs, _ := config.NewManager("configs")
//	store, err := session.NewFilePersistence("sessions", configs)
//	if err != nil {
//		log.Fatal(err)
//	}
//	manager := session.NewManagerWithPersistence(store)
//	manager.LoadPersistedSessions()
//
//	sess, err := manager.Create("", "classic", configs.GetDefault())
//
// Cleanup:
//
// CleanupExpiredSessions drops sessions idle for longer than a given age, and
// PruneMissing drops sessions whose file was deleted behind the server's back.
package session
