package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"

	"itoc/common"
	"itoc/layout"
	"itoc/page"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	TemplateFieldName string

	TOCConfig struct {
		Enable        bool    `yaml:"enable"`
		Anchors       bool    `yaml:"anchors"`
		HeadingOffset float64 `yaml:"heading_offset"`
		SummaryLength int     `yaml:"summary_length" validate:"gte=0"`
	}

	GoToConfig struct {
		Enable       bool `yaml:"enable"`
		AfterPrimary bool `yaml:"after_primary"`
		RequireTOC   bool `yaml:"require_toc"`
	}

	LayoutConfig struct {
		LineHeight   float64 `yaml:"line_height" validate:"gt=0"`
		CharsPerLine int     `yaml:"chars_per_line" validate:"min=10"`
		BlockSpacing float64 `yaml:"block_spacing" validate:"gte=0"`
		HeadingScale float64 `yaml:"heading_scale" validate:"gte=1"`
		ImageHeight  float64 `yaml:"image_height" validate:"gte=0"`
		ColumnWidth  float64 `yaml:"column_width" validate:"gte=0"`
		ProbeImages  bool    `yaml:"probe_images"`
	}

	ScriptConfig struct {
		Mode     common.ScriptMode `yaml:"mode" validate:"gte=0"`
		FileName string            `yaml:"file_name" validate:"required_unless=Mode 0"`
	}

	MarkdownConfig struct {
		GFM       bool   `yaml:"gfm"`
		Highlight string `yaml:"highlight"`
		TOCSite   bool   `yaml:"toc_site"`
		GoToSite  bool   `yaml:"goto_site"`
	}

	SourcesConfig struct {
		Include []string `yaml:"include" validate:"dive,required"`
		Exclude []string `yaml:"exclude" validate:"dive,required"`
	}

	DocumentConfig struct {
		FileNameTransliterate bool           `yaml:"file_name_transliterate"`
		OutputNameTemplate    string         `yaml:"output_name_template"`
		TOC                   TOCConfig      `yaml:"toc"`
		GoTo                  GoToConfig     `yaml:"goto"`
		Layout                LayoutConfig   `yaml:"layout"`
		Script                ScriptConfig   `yaml:"script"`
		Markdown              MarkdownConfig `yaml:"markdown"`
		Sources               SourcesConfig  `yaml:"sources"`
	}

	ServerConfig struct {
		Listen       string        `yaml:"listen" validate:"required,hostname_port"`
		ReadTimeout  time.Duration `yaml:"read_timeout" validate:"gte=0"`
		WriteTimeout time.Duration `yaml:"write_timeout" validate:"gte=0"`
		CORSOrigins  []string      `yaml:"cors_origins" validate:"dive,required"`
	}

	CatalogConfig struct {
		Destination string `yaml:"destination"`
	}

	Config struct {
		Version   int            `yaml:"version" validate:"eq=1"`
		Document  DocumentConfig `yaml:"document"`
		Catalog   CatalogConfig  `yaml:"catalog"`
		Server    ServerConfig   `yaml:"server"`
		Logging   LoggingConfig  `yaml:"logging"`
		Reporting ReporterConfig `yaml:"reporting"`
	}
)

// NOTE: must match yaml field name above
const OutputNameTemplateFieldName TemplateFieldName = "output_name_template"

var requiredOptions = append([]func(*gencfg.ProcessingOptions){},
	gencfg.WithDoNotExpandField(string(OutputNameTemplateFieldName)),
)

// Metrics converts layout configuration for position estimator.
func (conf *LayoutConfig) Metrics() layout.Metrics {
	return layout.Metrics{
		LineHeight:   conf.LineHeight,
		CharsPerLine: conf.CharsPerLine,
		BlockSpacing: conf.BlockSpacing,
		HeadingScale: conf.HeadingScale,
		ImageHeight:  conf.ImageHeight,
		ColumnWidth:  conf.ColumnWidth,
	}
}

// Options converts markdown configuration for renderer.
func (conf *MarkdownConfig) Options() page.MarkdownOptions {
	return page.MarkdownOptions{
		GFM:       conf.GFM,
		Highlight: conf.Highlight,
		TOCSite:   conf.TOCSite,
		GoToSite:  conf.GoToSite,
	}
}

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// We want to use only fields we defined so we cannot use yaml.Unmarshal
	// directly here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		// sanitize and validate what has been loaded
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, fmt.Errorf("failed to sanitize configuration: %w", err)
		}
		if err := gencfg.Validate(cfg); err != nil {
			return nil, fmt.Errorf("failed to validate configuration: %w", err)
		}
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of expanded configuration template to provide
// sane defaults and performs validation.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, append(requiredOptions, options...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	// overwrite cfg values with values from the file
	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare generates configuration file from template and returns it as a byte
// slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl, requiredOptions...)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %v", err)
	}
	return data, nil
}
