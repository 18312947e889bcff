package dataset

import "github.com/okian/gradpulse/pkg/logger"

// Option configures a Loader.
type Option func(*Loader)

// WithSource replaces the workbook source.
func WithSource(src Source) Option {
	return func(l *Loader) {
		if src != nil {
			l.source = src
		}
	}
}

// WithSheets sets the employment and titles sheet names. Empty names keep the
// defaults.
func WithSheets(employment, titles string) Option {
	return func(l *Loader) {
		if employment != "" {
			l.employmentSheet = employment
		}
		if titles != "" {
			l.titlesSheet = titles
		}
	}
}

// WithLogger sets the logger used to report loads.
func WithLogger(log logger.Logger) Option {
	return func(l *Loader) {
		if log != nil {
			l.log = log
		}
	}
}
