package workers

import (
	"context"
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"jobboard_backend/internal/aggregator"
	"jobboard_backend/internal/logger"
	"jobboard_backend/internal/models"
	"jobboard_backend/internal/repositories"
)

// SyncWorker periodically pulls listings from the external aggregator
// into the local jobs table so they show up in regular searches.
type SyncWorker struct {
	db       *gorm.DB
	searcher aggregator.Searcher
	jobRepo  repositories.JobRepository
	queries  []string
	interval int
	cron     *cron.Cron
}

// NewSyncWorker builds a worker for the given "title|location" query
// lines, running every intervalHours.
func NewSyncWorker(db *gorm.DB, searcher aggregator.Searcher, queries []string, intervalHours int) *SyncWorker {
	if intervalHours <= 0 {
		intervalHours = 12
	}
	return &SyncWorker{
		db:       db,
		searcher: searcher,
		jobRepo:  repositories.NewJobRepository(),
		queries:  queries,
		interval: intervalHours,
	}
}

func (w *SyncWorker) Start(ctx context.Context) error {
	if w.searcher == nil || len(w.queries) == 0 {
		logger.Info("Job sync worker disabled: no aggregator or no queries configured")
		return nil
	}

	w.cron = cron.New()
	spec := fmt.Sprintf("@every %dh", w.interval)
	if _, err := w.cron.AddFunc(spec, func() { w.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("schedule job sync: %w", err)
	}
	w.cron.Start()

	// First pass immediately so a fresh deployment has data.
	go w.RunOnce(ctx)

	go func() {
		<-ctx.Done()
		w.cron.Stop()
		logger.Info("Job sync worker stopped")
	}()
	return nil
}

// RunOnce executes a single sync pass over all configured queries.
func (w *SyncWorker) RunOnce(ctx context.Context) {
	total := 0
	for _, line := range w.queries {
		query, location := parseQueryLine(line)
		n, err := w.syncQuery(ctx, query, location)
		logger.WorkerLog("job_sync", "sync "+line, err)
		total += n
	}
	logger.Info("Job sync pass finished", "upserted", total)
}

func (w *SyncWorker) syncQuery(ctx context.Context, query, location string) (int, error) {
	listings, err := w.searcher.Search(ctx, aggregator.SearchParams{
		Query:    query,
		Location: location,
	})
	if err != nil {
		return 0, err
	}

	count := 0
	for i := range listings {
		l := &listings[i]
		if l.ExternalID == "" {
			continue
		}
		job := &models.Job{
			Title:        l.Title,
			Company:      l.Company,
			Description:  l.Description,
			Location:     l.Location,
			Salary:       l.Salary,
			ContractType: models.ContractType(l.ContractType),
			ExternalID:   &l.ExternalID,
			Source:       "external",
		}
		if len(l.Raw) > 0 {
			job.SourceMeta = datatypes.JSON(l.Raw)
		}
		if err := w.jobRepo.UpsertExternal(w.db, job); err != nil {
			logger.Warn("Upsert of synced job failed", "external_id", l.ExternalID, "error", err)
			continue
		}
		count++
	}
	return count, nil
}

// parseQueryLine splits a configured "title|location" line; the
// location part is optional.
func parseQueryLine(line string) (query, location string) {
	parts := strings.SplitN(line, "|", 2)
	query = strings.TrimSpace(parts[0])
	if len(parts) == 2 {
		location = strings.TrimSpace(parts[1])
	}
	return query, location
}
