package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Company describes one vendor whose workbooks we collect and parse.
type Company struct {
	Name string `json:"name"`
	// MatchSubstring selects this company's parsing path from a raw
	// workbook's filename.
	MatchSubstring string `json:"matchSubstring"`
	// DefaultCategory is stamped on every record when no staff lookup
	// applies. Empty means the category comes from the staff lookup.
	DefaultCategory string `json:"defaultCategory"`
	UseStaffLookup  bool   `json:"useStaffLookup"`
	// CollectReceivables marks companies included in the receivables
	// download stage.
	CollectReceivables bool `json:"collectReceivables"`
	// MonthLinkFormat is the text of the month link in the portal's
	// date picker; %d is the month number.
	MonthLinkFormat string `json:"monthLinkFormat"`
}

type Paths struct {
	SalesRawData string `json:"salesRawData"`
	Receivables  string `json:"receivables"`
	Processed    string `json:"processed"`
	ReportOutput string `json:"reportOutput"`
	Backup       string `json:"backup"`
	Template     string `json:"template"`
	StaffFile    string `json:"staffFile"`
	StaffSheet   string `json:"staffSheet"`
	Database     string `json:"database"`
}

type Browser struct {
	PortalURL       string `json:"portalUrl"`
	Headless        bool   `json:"headless"`
	NavTimeoutSec   int    `json:"navTimeoutSec"`
	DownloadWaitSec int    `json:"downloadWaitSec"`
}

// Config is the one settings object for the whole process. It is
// loaded once at startup and passed to every component that needs it;
// there is no package-level instance.
type Config struct {
	Paths   Paths   `json:"paths"`
	Browser Browser `json:"browser"`

	// CategoryOrder is the canonical pivot column order. Categories not
	// listed here are dropped from pivoted output.
	CategoryOrder []string `json:"categoryOrder"`
	// CategoryMappings folds raw categories into canonical ones.
	CategoryMappings map[string]string `json:"categoryMappings"`

	ExcludeClientCodes []string `json:"excludeClientCodes"`
	ExcludeProducts    []string `json:"excludeProducts"`

	Companies []Company `json:"companies"`

	CollectionMonths    int `json:"collectionMonths"`
	BackupRetentionDays int `json:"backupRetentionDays"`

	// Accounts saved in the settings file. Optional; the interactive
	// login keeps accounts in memory instead.
	Accounts []SavedAccount `json:"accounts,omitempty"`
}

type SavedAccount struct {
	Company string `json:"company"`
	UserID  string `json:"userId"`
}

// Default returns the hardcoded fallback configuration used when the
// settings file is missing or corrupt.
func Default() Config {
	return Config{
		Paths: Paths{
			SalesRawData: "data/sales_raw",
			Receivables:  "data/receivables",
			Processed:    "data/processed",
			ReportOutput: "data/report",
			Backup:       "data/backup",
			Template:     "templates/weekly_report_template.xlsx",
			StaffFile:    "data/staff_list.xlsx",
			StaffSheet:   "staff",
			Database:     "./srg.db",
		},
		Browser: Browser{
			PortalURL:       "https://erp.example.co.kr/",
			Headless:        true,
			NavTimeoutSec:   60,
			DownloadWaitSec: 120,
		},
		CategoryOrder:    []string{"drive-unit", "general-parts", "trade", "tk"},
		CategoryMappings: map[string]string{"export": "trade"},
		Companies: []Company{
			{Name: "DND", MatchSubstring: "DND", UseStaffLookup: true, CollectReceivables: true, MonthLinkFormat: "%02d"},
			{Name: "DNI", MatchSubstring: "DNI", DefaultCategory: "drive-unit", CollectReceivables: true, MonthLinkFormat: "%02d"},
			{Name: "FLK", MatchSubstring: "FLK", DefaultCategory: "trade", MonthLinkFormat: "%d월"},
		},
		CollectionMonths:    3,
		BackupRetentionDays: 7,
	}
}

// Load reads the settings file at path. A missing or unparsable file
// falls back to Default with a non-nil error so the caller can log it
// and keep going.
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Default(), fmt.Errorf("read settings file: %w", err)
	}
	cfg := Default()
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return Default(), fmt.Errorf("parse settings file: %w", err)
	}
	cfg.Normalize()
	return cfg, nil
}

// Save writes the settings file, creating parent directories as needed.
func Save(path string, cfg Config) error {
	cfg.Normalize()
	raw, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, raw, 0644)
}

// Normalize replaces zero or negative values that would break a stage
// run with their defaults. Load and Save apply it; callers swapping in
// a config from another source must too.
func (c *Config) Normalize() {
	def := Default()
	if c.CollectionMonths <= 0 {
		c.CollectionMonths = def.CollectionMonths
	}
	if c.BackupRetentionDays <= 0 {
		c.BackupRetentionDays = def.BackupRetentionDays
	}
	if len(c.CategoryOrder) == 0 {
		c.CategoryOrder = def.CategoryOrder
	}
	if c.Browser.NavTimeoutSec <= 0 {
		c.Browser.NavTimeoutSec = def.Browser.NavTimeoutSec
	}
	if c.Browser.DownloadWaitSec <= 0 {
		c.Browser.DownloadWaitSec = def.Browser.DownloadWaitSec
	}
	if c.Paths.Database == "" {
		c.Paths.Database = def.Paths.Database
	}
}

// CompanyByName returns the company entry with the given name.
func (c *Config) CompanyByName(name string) (Company, bool) {
	for _, co := range c.Companies {
		if co.Name == name {
			return co, true
		}
	}
	return Company{}, false
}

// CompanyForFile returns the company whose match substring appears in
// the filename, or false when the file belongs to no known company.
func (c *Config) CompanyForFile(filename string) (Company, bool) {
	base := filepath.Base(filename)
	for _, co := range c.Companies {
		if co.MatchSubstring != "" && strings.Contains(base, co.MatchSubstring) {
			return co, true
		}
	}
	return Company{}, false
}
