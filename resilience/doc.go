// Package resilience retries operations against flaky dependencies with
// exponential backoff and jitter.
//
//	db, err := resilience.Retry(ctx, resilience.Policy{
//	    Backoff: resilience.ConnectBackoff(5),
//	}, func(attempt int) (*gorm.DB, error) {
//	    return gorm.Open(dialector, cfg)
//	})
package resilience
