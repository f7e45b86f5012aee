// Package config loads wordray settings from a YAML file and WORDRAY_*
// environment variables.
package config

import "time"

// Config is passed explicitly to every component constructor.
type Config struct {
	Language   string           `yaml:"language"    env:"WORDRAY_LANGUAGE" env-default:"en"`
	Dictionary DictionaryConfig `yaml:"dictionary"`
	Entity     EntityConfig     `yaml:"entity"`
	Knowledge  KnowledgeConfig  `yaml:"knowledge"`
	Pipeline   PipelineConfig   `yaml:"pipeline"`
	Log        LogConfig        `yaml:"log"`
}

// DictionaryConfig controls glossing.
type DictionaryConfig struct {
	Dir       string `yaml:"dir"        env:"WORDRAY_DICT_DIR"        env-default:"./dictionaries"`
	GlossLang string `yaml:"gloss_lang" env:"WORDRAY_DICT_GLOSS_LANG" env-default:"en"`
	// DifficultyLimit drops language layer entries harder than it (1-5).
	DifficultyLimit int  `yaml:"difficulty_limit" env:"WORDRAY_DICT_DIFFICULTY_LIMIT" env-default:"5"`
	WordWise        bool `yaml:"word_wise"        env:"WORDRAY_DICT_WORD_WISE"        env-default:"true"`
}

// EntityConfig controls entity recognition and resolution.
type EntityConfig struct {
	// TaggerURL is an HTTP named-entity tagger. Empty selects the built-in
	// taggers.
	TaggerURL       string  `yaml:"tagger_url"       env:"WORDRAY_TAGGER_URL"`
	Threshold       float64 `yaml:"threshold"        env:"WORDRAY_ENTITY_THRESHOLD"        env-default:"85.7"`
	FoldCase        bool    `yaml:"fold_case"        env:"WORDRAY_ENTITY_FOLD_CASE"        env-default:"true"`
	StripHonorifics bool    `yaml:"strip_honorifics" env:"WORDRAY_ENTITY_STRIP_HONORIFICS" env-default:"false"`
	NFKC            bool    `yaml:"nfkc"             env:"WORDRAY_ENTITY_NFKC"             env-default:"false"`
	// MinimalCount drops X-Ray entities mentioned fewer times.
	MinimalCount int `yaml:"minimal_count" env:"WORDRAY_ENTITY_MINIMAL_COUNT" env-default:"1"`
}

// KnowledgeConfig controls footnote descriptions.
type KnowledgeConfig struct {
	Enabled      bool   `yaml:"enabled"       env:"WORDRAY_KNOWLEDGE_ENABLED"       env-default:"true"`
	CacheDir     string `yaml:"cache_dir"     env:"WORDRAY_KNOWLEDGE_CACHE_DIR"     env-default:"./cache"`
	SearchPeople bool   `yaml:"search_people" env:"WORDRAY_KNOWLEDGE_SEARCH_PEOPLE" env-default:"false"`
	// Fandom replaces Wikipedia with a Fandom wiki, e.g. https://oz.fandom.com.
	Fandom            string        `yaml:"fandom"              env:"WORDRAY_KNOWLEDGE_FANDOM"`
	LocatorMap        bool          `yaml:"locator_map"         env:"WORDRAY_KNOWLEDGE_LOCATOR_MAP"         env-default:"false"`
	RequestsPerSecond float64       `yaml:"requests_per_second" env:"WORDRAY_KNOWLEDGE_REQUESTS_PER_SECOND" env-default:"5"`
	Concurrency       int           `yaml:"concurrency"         env:"WORDRAY_KNOWLEDGE_CONCURRENCY"         env-default:"4"`
	Timeout           time.Duration `yaml:"timeout"             env:"WORDRAY_KNOWLEDGE_TIMEOUT"             env-default:"30s"`
}

// PipelineConfig sizes the task runner.
type PipelineConfig struct {
	Workers        int `yaml:"workers"         env:"WORDRAY_PIPELINE_WORKERS"         env-default:"1"`
	ProgressBuffer int `yaml:"progress_buffer" env:"WORDRAY_PIPELINE_PROGRESS_BUFFER" env-default:"16"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"  env:"WORDRAY_LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"WORDRAY_LOG_FORMAT" env-default:"text"`
}
