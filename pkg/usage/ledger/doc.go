// Package ledger persists usage records in SQLite.
//
// Two database/sql drivers are registered and selected by
// usage.ledger.driver: "sqlite" is the pure Go modernc.org/sqlite driver
// and needs no cgo, "sqlite3" is github.com/mattn/go-sqlite3.
//
//	store, err := ledger.Open(&cfg.Usage.Ledger)
//	if err != nil {
//		return err
//	}
//	defer store.Close()
//
//	recorder := usage.NewRecorder(counter, calculator, usage.WithStore(store))
//
// Records older than usage.retention.days are removed by a Pruner, either on
// demand ("tonecoach prune") or on the cron schedule of a Scheduler.
package ledger
