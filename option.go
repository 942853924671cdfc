package traffix

import (
	"github.com/viant/afs"

	"github.com/kainat5008/Traffic-System-OS/service/challan"
	"github.com/kainat5008/Traffic-System-OS/service/dao"
	"github.com/kainat5008/Traffic-System-OS/stats"
)

// Option configures the service.
type Option func(*Service)

// WithConfig sets the runtime configuration.
func WithConfig(config *Config) Option {
	return func(s *Service) {
		s.config = config
	}
}

// WithConfigPath loads the runtime configuration from a YAML file. A load
// failure surfaces from New.
func WithConfigPath(path string) Option {
	return func(s *Service) {
		s.config, s.configErr = NewConfigFromYAML(path)
	}
}

// WithArchiveFS supplies the filesystem backing the settled-challan archive.
// Effective only when Config.ArchiveURL is set.
func WithArchiveFS(fs afs.Service) Option {
	return func(s *Service) {
		s.archiveFS = fs
	}
}

// WithRecordDAO overrides the challan record store.
func WithRecordDAO(records dao.Service[string, challan.Record]) Option {
	return func(s *Service) {
		s.records = records
	}
}

// WithStatsCallback registers an observer invoked after every counter update.
func WithStatsCallback(cb func(stats.Tracker)) Option {
	return func(s *Service) {
		s.statsCallback = cb
	}
}

// WithSimClockStart sets the simulated wall-clock starting time, used for
// peak-hour admission rules.
func WithSimClockStart(hour, minute int) Option {
	return func(s *Service) {
		s.simHour, s.simMinute = hour, minute
	}
}
