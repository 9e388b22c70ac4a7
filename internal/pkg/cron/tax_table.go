package cron

import (
	"context"
	"time"
)

// TaxTableReloader is satisfied by taxconfig.CachedProvider.
type TaxTableReloader interface {
	Reload(ctx context.Context) error
}

// TaxTableJobs keeps the in-memory tax tables in sync with their source.
type TaxTableJobs struct {
	reloader TaxTableReloader
	interval time.Duration
}

func NewTaxTableJobs(reloader TaxTableReloader, interval time.Duration) *TaxTableJobs {
	return &TaxTableJobs{reloader: reloader, interval: interval}
}

// RegisterJobs registers the tax table reload job. A zero interval disables it.
func (j *TaxTableJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob(Job{
		Name:     "reload_tax_tables",
		Interval: j.interval,
		Timeout:  30 * time.Second,
		Fn:       j.ReloadTaxTables,
	})
}

// ReloadTaxTables replaces the cached tables. A failed reload keeps the
// previous tables in place.
func (j *TaxTableJobs) ReloadTaxTables(ctx context.Context) error {
	return j.reloader.Reload(ctx)
}
