package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Interface defines the contract for accessing application configuration.
// This allows for dependency injection and mocking in tests.
type Interface interface {
	Logger() LoggerConfig
	Database() DatabaseConfig
	HTTP() HTTPConfig
	Build() BuildConfig
	Resources() ResourcesConfig
	Output() OutputConfig

	// Build setters, driven by CLI flags.
	SetOrganism(int)
	SetSubset(string)
	SetTranslateIDs(bool)
	SetApplyBlacklist(bool)
	SetIncludeOrphans(bool)
	SetIncludeConnectors(bool)

	// Resource setters.
	SetResourceEnabled(name string, enabled bool) error
	SetSTITCHScoreThreshold(int)

	// Output setters.
	SetOutputPath(string)
	SetOutputAllColumns(bool)
	SetOutputSeparator(string)
}

// Config holds the entire application configuration. Fields are exported so
// viper can unmarshal them; callers go through the Interface getters.
type Config struct {
	LoggerCfg    LoggerConfig    `mapstructure:"logger" yaml:"logger"`
	DatabaseCfg  DatabaseConfig  `mapstructure:"database" yaml:"database"`
	HTTPCfg      HTTPConfig      `mapstructure:"http" yaml:"http"`
	BuildCfg     BuildConfig     `mapstructure:"build" yaml:"build"`
	ResourcesCfg ResourcesConfig `mapstructure:"resources" yaml:"resources"`
	OutputCfg    OutputConfig    `mapstructure:"output" yaml:"output"`
}

// LoggerConfig controls the zap logger and file rotation.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// DatabaseConfig holds the optional PostgreSQL connection for persisting
// build runs. An empty URL disables persistence.
type DatabaseConfig struct {
	URL string `mapstructure:"url" yaml:"url"`
}

// HTTPConfig controls the shared download client used by the ID resolvers.
type HTTPConfig struct {
	Timeout   time.Duration `mapstructure:"timeout" yaml:"timeout"`
	RateLimit float64       `mapstructure:"rate_limit" yaml:"rate_limit"`
	CacheDir  string        `mapstructure:"cache_dir" yaml:"cache_dir"`
}

// BuildConfig selects what to build and which pipeline stages run.
type BuildConfig struct {
	Organism          int    `mapstructure:"organism" yaml:"organism"`
	Subset            string `mapstructure:"subset" yaml:"subset"`
	TranslateIDs      bool   `mapstructure:"translate_ids" yaml:"translate_ids"`
	ApplyBlacklist    bool   `mapstructure:"apply_blacklist" yaml:"apply_blacklist"`
	BlacklistFile     string `mapstructure:"blacklist_file" yaml:"blacklist_file"`
	IncludeOrphans    bool   `mapstructure:"include_orphans" yaml:"include_orphans"`
	IncludeConnectors bool   `mapstructure:"include_connectors" yaml:"include_connectors"`
}

// Subset names accepted by BuildConfig.Subset.
const (
	SubsetAll              = "all"
	SubsetTransporters     = "transporters"
	SubsetReceptors        = "receptors"
	SubsetAllosteric       = "allosteric"
	SubsetEnzymeMetabolite = "enzyme_metabolite"
)

var validSubsets = map[string]bool{
	SubsetAll:              true,
	SubsetTransporters:     true,
	SubsetReceptors:        true,
	SubsetAllosteric:       true,
	SubsetEnzymeMetabolite: true,
}

// ResourcesConfig toggles the upstream resources and their parameters.
type ResourcesConfig struct {
	STITCH     STITCHConfig   `mapstructure:"stitch" yaml:"stitch"`
	TCDB       ResourceConfig `mapstructure:"tcdb" yaml:"tcdb"`
	SLC        ResourceConfig `mapstructure:"slc" yaml:"slc"`
	BRENDA     ResourceConfig `mapstructure:"brenda" yaml:"brenda"`
	MRCLinksDB ResourceConfig `mapstructure:"mrclinksdb" yaml:"mrclinksdb"`
	GEM        GEMConfig      `mapstructure:"gem" yaml:"gem"`
	Recon3D    ResourceConfig `mapstructure:"recon3d" yaml:"recon3d"`
}

// ResourceConfig is the common shape of a simple resource toggle. Path
// points at a local record file for offline builds.
type ResourceConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path" yaml:"path"`
}

// STITCHConfig adds the combined-score cutoff to the common toggle.
type STITCHConfig struct {
	Enabled        bool   `mapstructure:"enabled" yaml:"enabled"`
	Path           string `mapstructure:"path" yaml:"path"`
	ScoreThreshold int    `mapstructure:"score_threshold" yaml:"score_threshold"`
}

// GEMConfig selects which genome-scale metabolic models to include.
type GEMConfig struct {
	Enabled bool     `mapstructure:"enabled" yaml:"enabled"`
	Path    string   `mapstructure:"path" yaml:"path"`
	Models  []string `mapstructure:"models" yaml:"models"`
}

// OutputConfig controls the exported file.
type OutputConfig struct {
	Path       string `mapstructure:"path" yaml:"path"`
	AllColumns bool   `mapstructure:"all_columns" yaml:"all_columns"`
	Separator  string `mapstructure:"separator" yaml:"separator"`
}

// --- Interface Method Implementations (Getters) ---

func (c *Config) Logger() LoggerConfig       { return c.LoggerCfg }
func (c *Config) Database() DatabaseConfig   { return c.DatabaseCfg }
func (c *Config) HTTP() HTTPConfig           { return c.HTTPCfg }
func (c *Config) Build() BuildConfig         { return c.BuildCfg }
func (c *Config) Resources() ResourcesConfig { return c.ResourcesCfg }
func (c *Config) Output() OutputConfig       { return c.OutputCfg }

// --- Interface Method Implementations (Setters) ---

func (c *Config) SetOrganism(organism int)      { c.BuildCfg.Organism = organism }
func (c *Config) SetSubset(subset string)       { c.BuildCfg.Subset = subset }
func (c *Config) SetTranslateIDs(b bool)        { c.BuildCfg.TranslateIDs = b }
func (c *Config) SetApplyBlacklist(b bool)      { c.BuildCfg.ApplyBlacklist = b }
func (c *Config) SetIncludeOrphans(b bool)      { c.BuildCfg.IncludeOrphans = b }
func (c *Config) SetIncludeConnectors(b bool)   { c.BuildCfg.IncludeConnectors = b }
func (c *Config) SetSTITCHScoreThreshold(n int) { c.ResourcesCfg.STITCH.ScoreThreshold = n }

func (c *Config) SetResourceEnabled(name string, enabled bool) error {
	switch name {
	case "stitch":
		c.ResourcesCfg.STITCH.Enabled = enabled
	case "tcdb":
		c.ResourcesCfg.TCDB.Enabled = enabled
	case "slc":
		c.ResourcesCfg.SLC.Enabled = enabled
	case "brenda":
		c.ResourcesCfg.BRENDA.Enabled = enabled
	case "mrclinksdb":
		c.ResourcesCfg.MRCLinksDB.Enabled = enabled
	case "gem":
		c.ResourcesCfg.GEM.Enabled = enabled
	case "recon3d":
		c.ResourcesCfg.Recon3D.Enabled = enabled
	default:
		return fmt.Errorf("unknown resource: %q", name)
	}
	return nil
}

func (c *Config) SetOutputPath(path string)     { c.OutputCfg.Path = path }
func (c *Config) SetOutputAllColumns(b bool)    { c.OutputCfg.AllColumns = b }
func (c *Config) SetOutputSeparator(sep string) { c.OutputCfg.Separator = sep }

// NewDefaultConfig creates a configuration populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	cfg, err := NewConfigFromViper(v)
	if err != nil {
		// Defaults are validated by tests; reaching this is a programming error.
		panic(fmt.Sprintf("invalid default config: %v", err))
	}
	return cfg
}

// SetDefaults initializes default values on a viper instance.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "metabopkn")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	// -- Database --
	v.SetDefault("database.url", "")

	// -- HTTP --
	v.SetDefault("http.timeout", "5m")
	v.SetDefault("http.rate_limit", 5.0)
	v.SetDefault("http.cache_dir", "")

	// -- Build --
	v.SetDefault("build.organism", 9606)
	v.SetDefault("build.subset", SubsetAll)
	v.SetDefault("build.translate_ids", true)
	v.SetDefault("build.apply_blacklist", true)
	v.SetDefault("build.blacklist_file", "")
	v.SetDefault("build.include_orphans", true)
	v.SetDefault("build.include_connectors", true)

	// -- Resources --
	v.SetDefault("resources.stitch.enabled", true)
	v.SetDefault("resources.stitch.score_threshold", 700)
	v.SetDefault("resources.tcdb.enabled", true)
	v.SetDefault("resources.slc.enabled", true)
	v.SetDefault("resources.brenda.enabled", true)
	v.SetDefault("resources.mrclinksdb.enabled", true)
	v.SetDefault("resources.gem.enabled", true)
	v.SetDefault("resources.gem.models", []string{"Human-GEM"})
	v.SetDefault("resources.recon3d.enabled", true)

	// -- Output --
	v.SetDefault("output.path", "cosmos_pkn.csv")
	v.SetDefault("output.all_columns", false)
	v.SetDefault("output.separator", "")
}

// NewConfigFromViper creates a configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	v.BindEnv("database.url", "METABOPKN_DATABASE_URL")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if c.BuildCfg.Organism <= 0 {
		return fmt.Errorf("build.organism must be a positive NCBI taxonomy ID")
	}
	if !validSubsets[c.BuildCfg.Subset] {
		return fmt.Errorf("build.subset must be one of all, transporters, receptors, allosteric, enzyme_metabolite; got %q", c.BuildCfg.Subset)
	}
	if c.ResourcesCfg.STITCH.ScoreThreshold < 0 || c.ResourcesCfg.STITCH.ScoreThreshold > 1000 {
		return fmt.Errorf("resources.stitch.score_threshold must be between 0 and 1000")
	}
	if c.ResourcesCfg.GEM.Enabled && len(c.ResourcesCfg.GEM.Models) == 0 {
		return fmt.Errorf("resources.gem.models must name at least one model when the GEM resource is enabled")
	}
	if c.HTTPCfg.RateLimit <= 0 {
		return fmt.Errorf("http.rate_limit must be positive")
	}
	return nil
}
