package scheduler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/amaretto/amaretto-backend/internal/app/service"
	"github.com/amaretto/amaretto-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

const reportTimeout = 2 * time.Minute

// OrderReportScheduler writes the order sheet to disk on a cron schedule
type OrderReportScheduler struct {
	cron          *cron.Cron
	schedule      string
	dir           string
	reportService service.ReportService
	now           func() time.Time
}

func NewOrderReportScheduler(reportService service.ReportService, schedule, dir string) *OrderReportScheduler {
	return &OrderReportScheduler{
		cron:          cron.New(),
		schedule:      schedule,
		dir:           dir,
		reportService: reportService,
		now:           time.Now,
	}
}

// Start registers the job and starts the cron runner
func (s *OrderReportScheduler) Start() error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		logger.Info("Starting scheduled order report")

		ctx, cancel := context.WithTimeout(context.Background(), reportTimeout)
		defer cancel()

		path, err := s.RunOnce(ctx)
		if err != nil {
			logger.Error("Failed to write scheduled order report", err)
			return
		}

		logger.Info("Scheduled order report written", map[string]interface{}{
			"path": path,
		})
	})
	if err != nil {
		logger.Error("Failed to add cron job for order report", err, map[string]interface{}{
			"schedule": s.schedule,
		})
		return err
	}

	s.cron.Start()
	logger.Info("Order report scheduler started", map[string]interface{}{
		"schedule": s.schedule,
		"dir":      s.dir,
	})
	return nil
}

// RunOnce writes pedidos-YYYY-MM-DD.xlsx into the report directory. The file
// only appears once it is complete.
func (s *OrderReportScheduler) RunOnce(ctx context.Context) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}

	path := filepath.Join(s.dir, fmt.Sprintf("pedidos-%s.xlsx", s.now().Format("2006-01-02")))
	tmp, err := os.CreateTemp(s.dir, ".pedidos-*.xlsx")
	if err != nil {
		return "", fmt.Errorf("create report file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := s.reportService.ExportOrders(ctx, tmp); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close report file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("publish report file: %w", err)
	}
	return path, nil
}

// Stop waits for a running job to finish
func (s *OrderReportScheduler) Stop() {
	logger.Info("Stopping order report scheduler...")
	<-s.cron.Stop().Done()
	logger.Info("Order report scheduler stopped")
}
