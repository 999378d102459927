package metrics

import (
	"os"
	"time"

	"gallery-server/internal/logging"
)

// ConnectionStatsProvider exposes database connection gauges.
type ConnectionStatsProvider interface {
	UpdateDBMetrics()
}

// Collector periodically refreshes gauges that have to be polled rather
// than incremented: SQLite file sizes and connection pool stats.
type Collector struct {
	dbPath   string
	db       ConnectionStatsProvider
	interval time.Duration
	stopChan chan struct{}
}

// NewCollector creates a collector for the database at dbPath.
func NewCollector(dbPath string, db ConnectionStatsProvider, interval time.Duration) *Collector {
	return &Collector{
		dbPath:   dbPath,
		db:       db,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start begins the collection loop.
func (c *Collector) Start() {
	go c.loop()
}

// Stop stops the collection loop.
func (c *Collector) Stop() {
	close(c.stopChan)
}

func (c *Collector) loop() {
	// Collect immediately on start so gauges are populated before the
	// first scrape.
	c.collect()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stopChan:
			logging.Debug("metrics collector stopped")
			return
		}
	}
}

func (c *Collector) collect() {
	files := map[string]string{
		"main": c.dbPath,
		"wal":  c.dbPath + "-wal",
		"shm":  c.dbPath + "-shm",
	}
	for label, path := range files {
		info, err := os.Stat(path)
		if err != nil {
			// WAL and SHM files may legitimately not exist yet.
			DBSizeBytes.WithLabelValues(label).Set(0)
			continue
		}
		DBSizeBytes.WithLabelValues(label).Set(float64(info.Size()))
	}

	if c.db != nil {
		c.db.UpdateDBMetrics()
	}
}
