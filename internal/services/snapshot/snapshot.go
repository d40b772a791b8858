package snapshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	filePrefix = "medsched-"
	fileSuffix = ".db"
	timeLayout = "20060102T150405.000000000Z"
)

// Source writes a consistent copy of the live database to path.
type Source interface {
	Snapshot(path string) error
}

// Config controls how often snapshots are taken and how many are kept.
type Config struct {
	Interval time.Duration
	Dir      string
	Keep     int
}

// Scheduler copies the database into Dir on a cron schedule and prunes old copies.
type Scheduler struct {
	source Source
	logger *zap.Logger
	cron   *cron.Cron
	cfg    Config
	now    func() time.Time
}

func New(source Source, logger *zap.Logger, cfg Config) (*Scheduler, error) {
	if cfg.Interval < time.Second {
		cfg.Interval = time.Hour
	}
	if cfg.Keep <= 0 {
		cfg.Keep = 5
	}
	if cfg.Dir == "" {
		cfg.Dir = "./data/backups"
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Scheduler{
		source: source,
		logger: logger,
		cfg:    cfg,
		cron:   cron.New(cron.WithSeconds()),
		now:    time.Now,
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	if _, err := s.cron.AddFunc(schedule, func() {
		if _, err := s.Run(); err != nil {
			s.logger.Error("snapshot failed", zap.Error(err))
		}
	}); err != nil {
		return nil, fmt.Errorf("schedule snapshot: %w", err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("snapshot scheduler started",
		zap.Duration("interval", s.cfg.Interval),
		zap.String("dir", s.cfg.Dir),
		zap.Int("keep", s.cfg.Keep))
}

// Stop waits for a running snapshot to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	s.logger.Info("snapshot scheduler stopped")
}

// Run takes one snapshot and prunes old ones. It returns the new file's path.
func (s *Scheduler) Run() (string, error) {
	name := filePrefix + s.now().UTC().Format(timeLayout) + fileSuffix
	path := filepath.Join(s.cfg.Dir, name)

	if err := s.source.Snapshot(path); err != nil {
		return "", err
	}
	s.logger.Info("snapshot written", zap.String("path", path))

	if err := s.prune(); err != nil {
		s.logger.Warn("snapshot prune failed", zap.Error(err))
	}
	return path, nil
}

// Snapshots lists existing snapshot files, oldest first.
func (s *Scheduler) Snapshots() ([]string, error) {
	entries, err := os.ReadDir(s.cfg.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), filePrefix) || !strings.HasSuffix(e.Name(), fileSuffix) {
			continue
		}
		names = append(names, e.Name())
	}
	// timestamps sort lexically
	sort.Strings(names)

	paths := make([]string, len(names))
	for i, n := range names {
		paths[i] = filepath.Join(s.cfg.Dir, n)
	}
	return paths, nil
}

func (s *Scheduler) prune() error {
	paths, err := s.Snapshots()
	if err != nil {
		return err
	}
	for len(paths) > s.cfg.Keep {
		if err := os.Remove(paths[0]); err != nil {
			return err
		}
		s.logger.Debug("snapshot pruned", zap.String("path", paths[0]))
		paths = paths[1:]
	}
	return nil
}
