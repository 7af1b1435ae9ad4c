// Package resilience retries transient failures with capped exponential
// backoff. The database connection uses it while a server comes up.
//
//	db, err := resilience.Retry(ctx, resilience.Policy{Attempts: 5}, func() (*gorm.DB, error) {
//	    return connect(ctx)
//	})
package resilience
