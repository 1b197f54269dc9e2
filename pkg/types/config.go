package types

import "time"

// DefaultCatalogURL is the paginated, print-friendly course listing of the
// UNC Charlotte undergraduate catalog. {page} is replaced with the page number.
const DefaultCatalogURL = "https://catalog.charlotte.edu/content.php?filter%5B27%5D=-1&filter%5B29%5D=&filter%5Bkeyword%5D=&filter%5B32%5D=1&filter%5Bcpage%5D={page}&cur_cat_oid=38&expand=1&navoid=4596&print=1"

// DefaultProgramsURL lists the undergraduate bachelor's programs; each entry
// links to a catalog preview_program.php page.
const DefaultProgramsURL = "https://academics.charlotte.edu/programs/undergraduate/bachelors"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "majormap/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// CatalogConfig holds settings for fetching and parsing catalog pages.
type CatalogConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// BaseURL is the page URL template; {page} is replaced with the page number.
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// FirstPage and LastPage bound the page range, inclusive.
	FirstPage int `json:"first_page" yaml:"first_page" mapstructure:"first_page"`
	LastPage  int `json:"last_page" yaml:"last_page" mapstructure:"last_page"`

	// PagesDir is where fetched HTML pages are cached.
	PagesDir string `json:"pages_dir" yaml:"pages_dir" mapstructure:"pages_dir"`

	// ProgramsURL is the index page linking to every degree program.
	ProgramsURL string `json:"programs_url" yaml:"programs_url" mapstructure:"programs_url"`

	// ProgramsDir is where the programs index and program pages are cached.
	ProgramsDir string `json:"programs_dir" yaml:"programs_dir" mapstructure:"programs_dir"`

	// RequestDelay is the pause between consecutive page downloads (default 1s).
	RequestDelay time.Duration `json:"request_delay" yaml:"request_delay" mapstructure:"request_delay"`

	// MaxRetries is the number of retries on HTTP 429 (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// StoreConfig holds settings for the relational store.
type StoreConfig struct {
	// DataDir contains majormap.db and export files.
	DataDir string `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`
}

// IngestConfig holds settings for the relationship-building pass.
type IngestConfig struct {
	// Workers bounds concurrent per-course builds. Zero uses runtime.NumCPU().
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers"`
}

// LogConfig selects log verbosity and format.
type LogConfig struct {
	Level  string `json:"level" yaml:"level" mapstructure:"level"`
	Pretty bool   `json:"pretty" yaml:"pretty" mapstructure:"pretty"`
}

// Config groups all stage configurations.
type Config struct {
	Catalog CatalogConfig `json:"catalog" yaml:"catalog" mapstructure:"catalog"`
	Store   StoreConfig   `json:"store" yaml:"store" mapstructure:"store"`
	Ingest  IngestConfig  `json:"ingest" yaml:"ingest" mapstructure:"ingest"`
	Log     LogConfig     `json:"log" yaml:"log" mapstructure:"log"`
}
