package report

import (
	"errors"
	"io"
	"net/url"
	"time"

	"github.com/okian/gradpulse/internal/pages"
)

// ErrNoSource is returned when neither a workbook nor a server URL is given.
var ErrNoSource = errors.New("no data source: set a workbook path or a server url")

// Config holds the report run options.
type Config struct {
	// DataPath renders pages in process from this workbook.
	DataPath        string
	EmploymentSheet string
	TitlesSheet     string
	// Settings apply to in-process rendering; zero fields use the defaults.
	Settings pages.Settings

	// BaseURL fetches pages from a running server instead. Takes precedence
	// over DataPath.
	BaseURL string
	Timeout time.Duration

	// Generate writes a synthetic workbook to this path before reporting.
	// When DataPath is empty the report then reads the generated file.
	Generate  string
	Graduates int
	Seed      uint64

	// Pages restricts the report to these ids; empty means every page.
	Pages []string
	// Query is applied to every page, in the HTTP API query format.
	Query url.Values

	Workers int
	NoColor bool
	Out     io.Writer
}
