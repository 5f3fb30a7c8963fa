package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/local/pagesift/internal/classify"
)

// LoggingConfig holds logging-related configuration.
type LoggingConfig struct {
	Level      string
	Pretty     bool
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// AxiomConfig holds Axiom logging configuration.
type AxiomConfig struct {
	Send          bool
	APIKey        string
	OrgID         string
	Dataset       string
	FlushInterval time.Duration
}

// PipelineConfig locates input and output and picks the failure policy.
type PipelineConfig struct {
	BaseDir    string
	InputDir   string
	OutputDir  string
	BestEffort bool
}

// TextConfig selects the text backend and how page runs are joined.
type TextConfig struct {
	Backend    string // "fitz"|"pdf"
	Separator  string
	DecodeRuns bool
}

// ClassifierConfig defines output categories for billsplit.
type ClassifierConfig struct {
	CategoriesFile string
	Categories     []classify.Category
}

// SelectorConfig defines the fixed pages for pagepick.
type SelectorConfig struct {
	PageIndices []int
}

// CacheConfig enables the Redis match cache when RedisURL is set.
type CacheConfig struct {
	RedisURL string
	TTL      time.Duration
}

// PublishConfig enables S3 upload of outputs when Bucket is set.
type PublishConfig struct {
	Bucket          string
	Prefix          string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

// MetricsConfig enables the Prometheus textfile export when Textfile is set.
type MetricsConfig struct {
	Textfile string
}

// Config is the top-level configuration.
type Config struct {
	Logging    LoggingConfig
	Axiom      AxiomConfig
	Pipeline   PipelineConfig
	Text       TextConfig
	Classifier ClassifierConfig
	Selector   SelectorConfig
	Cache      CacheConfig
	Publish    PublishConfig
	Metrics    MetricsConfig
}

// FromEnv loads configuration from the environment. Unset values fall back to
// data/ and results/ next to the executable and the built-in bill markers.
func FromEnv(service string) (Config, error) {
	cfg := Config{}

	cfg.Logging = LoggingConfig{
		Level:      getEnv("LOG_LEVEL", "warn"),
		Pretty:     parseBool(getEnv("LOG_PRETTY", "true")),
		File:       getEnv("LOG_FILE", ""),
		MaxSizeMB:  parseInt(getEnv("LOG_MAX_SIZE_MB", "100"), 100),
		MaxBackups: parseInt(getEnv("LOG_MAX_BACKUPS", "10"), 10),
		MaxAgeDays: parseInt(getEnv("LOG_MAX_AGE_DAYS", "30"), 30),
		Compress:   parseBool(getEnv("LOG_COMPRESS", "true")),
	}

	baseDataset := getEnv("AXIOM_DATASET", "dev")
	cfg.Axiom = AxiomConfig{
		Send:          parseBool(getEnv("SEND_LOGS_TO_AXIOM", "0")),
		APIKey:        getEnv("AXIOM_API_KEY", ""),
		OrgID:         getEnv("AXIOM_ORG_ID", ""),
		Dataset:       baseDataset + "_" + service,
		FlushInterval: parseDuration(getEnv("AXIOM_FLUSH_INTERVAL", "10s"), 10*time.Second),
	}

	base := getEnv("BASE_DIR", executableDir())
	cfg.Pipeline = PipelineConfig{
		BaseDir:    base,
		InputDir:   getEnv("INPUT_DIR", filepath.Join(base, "data")),
		OutputDir:  getEnv("OUTPUT_DIR", filepath.Join(base, "results")),
		BestEffort: parseBool(getEnv("BEST_EFFORT", "0")),
	}

	cfg.Text = TextConfig{
		Backend:    strings.ToLower(getEnv("TEXT_BACKEND", "fitz")),
		Separator:  parseSeparator(getEnv("TEXT_SEPARATOR", " ")),
		DecodeRuns: parseBool(getEnv("TEXT_DECODE_RUNS", "true")),
	}

	cfg.Classifier = ClassifierConfig{
		CategoriesFile: getEnv("CATEGORIES_FILE", ""),
		Categories:     classify.DefaultCategories(),
	}
	if cfg.Classifier.CategoriesFile != "" {
		cats, err := LoadCategories(cfg.Classifier.CategoriesFile)
		if err != nil {
			return cfg, err
		}
		cfg.Classifier.Categories = cats
	}

	indices, err := parseIndices(getEnv("PAGE_INDICES", "0"))
	if err != nil {
		return cfg, fmt.Errorf("PAGE_INDICES: %w", err)
	}
	cfg.Selector = SelectorConfig{PageIndices: indices}

	cfg.Cache = CacheConfig{
		RedisURL: getEnv("MATCH_CACHE_REDIS_URL", ""),
		TTL:      parseDuration(getEnv("MATCH_CACHE_TTL", "720h"), 720*time.Hour),
	}

	cfg.Publish = PublishConfig{
		Bucket:          getEnv("PUBLISH_S3_BUCKET", ""),
		Prefix:          getEnv("PUBLISH_S3_PREFIX", ""),
		Region:          getEnv("AWS_REGION", ""),
		AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
	}

	cfg.Metrics = MetricsConfig{Textfile: getEnv("METRICS_TEXTFILE", "")}

	return cfg, nil
}

type categoriesFile struct {
	Categories []classify.Category `yaml:"categories"`
}

// LoadCategories reads a YAML file of the form
//
//	categories:
//	  - name: mobile
//	    markers: ["MOBILE SERVICES"]
func LoadCategories(path string) ([]classify.Category, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read categories file: %w", err)
	}
	var f categoriesFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse categories file %s: %w", path, err)
	}
	if err := ValidateCategories(f.Categories); err != nil {
		return nil, fmt.Errorf("categories file %s: %w", path, err)
	}
	return f.Categories, nil
}

// ValidateCategories rejects empty, duplicate or path-like names and empty
// markers. An empty marker would match every page.
func ValidateCategories(cats []classify.Category) error {
	if len(cats) == 0 {
		return errors.New("no categories defined")
	}
	seen := map[string]bool{}
	for _, c := range cats {
		if c.Name == "" || strings.ContainsAny(c.Name, `/\`) || c.Name == "." || c.Name == ".." {
			return fmt.Errorf("invalid category name %q", c.Name)
		}
		if seen[c.Name] {
			return fmt.Errorf("duplicate category %q", c.Name)
		}
		seen[c.Name] = true
		if len(c.Markers) == 0 {
			return fmt.Errorf("category %q has no markers", c.Name)
		}
		for _, m := range c.Markers {
			if m == "" {
				return fmt.Errorf("category %q has an empty marker", c.Name)
			}
		}
	}
	return nil
}

// Helpers
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

func parseBool(s string) bool {
	v := strings.ToLower(strings.TrimSpace(s))
	return v == "1" || v == "true" || v == "yes" || v == "on"
}

func parseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	return def
}

// parseSeparator accepts a Go-quoted string ("\n") as well as a literal one.
func parseSeparator(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		if u, err := strconv.Unquote(s); err == nil {
			return u
		}
	}
	return s
}

func parseIndices(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid page index %q", part)
		}
		out = append(out, n)
	}
	if len(out) == 0 {
		return nil, errors.New("no page indices")
	}
	return out, nil
}

func executableDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe)
}
