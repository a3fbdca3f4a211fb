package config

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/viper"

	blogerrors "github.com/degaart/degaart.github.io/internal/errors"
)

// Config holds the site paths and title. The defaults reproduce the fixed
// layout: posts/, template/ and public/ in the working directory.
type Config struct {
	SiteTitle       string `mapstructure:"siteTitle"`
	PostsDir        string `mapstructure:"postsDir"`
	TemplateDir     string `mapstructure:"templateDir"`
	IndexTemplate   string `mapstructure:"indexTemplate"`
	ArticleTemplate string `mapstructure:"articleTemplate"`
	OutputDir       string `mapstructure:"outputDir"`
}

// EnvPrefix is the prefix of environment overrides, e.g. BLOG_OUTPUTDIR.
const EnvPrefix = "BLOG"

func setDefaults(v *viper.Viper) {
	v.SetDefault("siteTitle", "A tech blog")
	v.SetDefault("postsDir", "posts")
	v.SetDefault("templateDir", "template")
	v.SetDefault("indexTemplate", filepath.Join("template", "index.html"))
	v.SetDefault("articleTemplate", filepath.Join("template", "article.html"))
	v.SetDefault("outputDir", "public")
}

// Load reads configuration from cfgFile, or from an optional config.yaml in
// the working directory when cfgFile is empty. Environment variables override
// both. It returns the config file used, if any.
func Load(fs afero.Fs, cfgFile string) (Config, string, error) {
	var cfg Config

	v := viper.New()
	v.SetFs(fs)
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || cfgFile != "" {
			return cfg, "", blogerrors.WrapError(err, blogerrors.CategoryConfig, "read config file").
				WithContext("path", cfgFile).
				Build()
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, "", blogerrors.WrapError(err, blogerrors.CategoryConfig, "decode config").Build()
	}
	if err := cfg.Validate(); err != nil {
		return cfg, "", err
	}
	return cfg, v.ConfigFileUsed(), nil
}

// Validate rejects empty paths and an output directory overlapping the
// sources, which the clean or copy step would destroy or recurse into.
func (c Config) Validate() error {
	required := []struct {
		key, value string
	}{
		{"postsDir", c.PostsDir},
		{"templateDir", c.TemplateDir},
		{"indexTemplate", c.IndexTemplate},
		{"articleTemplate", c.ArticleTemplate},
		{"outputDir", c.OutputDir},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return blogerrors.ConfigError("missing required setting").WithContext("key", r.key).Build()
		}
	}

	if within(c.PostsDir, c.OutputDir) {
		return outputOverlapError("postsDir", c.OutputDir)
	}
	// The static copy must not descend into the tree it is writing.
	if within(c.TemplateDir, c.OutputDir) || within(c.OutputDir, c.TemplateDir) {
		return outputOverlapError("templateDir", c.OutputDir)
	}
	return nil
}

func outputOverlapError(key, outputDir string) error {
	return blogerrors.ConfigError("outputDir overlaps a source directory").
		WithContext("key", key).
		WithContext("path", outputDir).
		Build()
}

// within reports whether path is dir or lies below it.
func within(path, dir string) bool {
	rel, err := filepath.Rel(filepath.Clean(dir), filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
