// Package jobs provides scheduled background tasks of the shipping service,
// built on github.com/robfig/cron/v3 with second-level schedules.
//
// # Available Jobs
//
//  1. QuoteSessionPurgeJob - deletes expired quote sessions from the SQL
//     store once a minute. Redis-backed sessions expire by key TTL and need
//     no job.
//
// # Usage
//
//	jobManager := jobs.NewJobManager(logger, jobs.NewQuoteSessionPurgeJob(store, "", logger))
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
//
// # Error Handling
//
// A failed run is logged and retried on the next tick. A job that fails to
// start stops the jobs already running.
package jobs
