package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/frantjc/alticon/internal/alticonerr"
	"github.com/frantjc/alticon/internal/alticonutil"
	"github.com/frantjc/alticon/ios"
	"github.com/frantjc/alticon/pbxproj"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPrimary = "AppIcon"
)

// Config locates the artifacts of an Xcode project that a sync run edits.
type Config struct {
	// Icons is a directory or a blob URL holding the source images.
	Icons     string   `yaml:"icons" env:"ALTICON_ICONS"`
	Assets    string   `yaml:"assets" env:"ALTICON_ASSETS"`
	InfoPlist string   `yaml:"infoPlist" env:"ALTICON_INFO_PLIST"`
	PBXProj   string   `yaml:"pbxproj" env:"ALTICON_PBXPROJ"`
	Mode      ios.Mode `yaml:"mode" env:"ALTICON_MODE"`
	Primary   string   `yaml:"primary" env:"ALTICON_PRIMARY"`
}

func New() *Config {
	return &Config{
		Mode:    ios.ModeAdd,
		Primary: DefaultPrimary,
	}
}

// Load decodes the YAML file at name onto c. Keys missing
// from the file leave the corresponding fields unchanged.
func (c *Config) Load(name string) error {
	f, err := os.Open(name)
	if err != nil {
		return alticonerr.New(alticonerr.KindInputValidation, fmt.Errorf("open config: %w", err))
	}
	defer f.Close()

	if err = yaml.NewDecoder(f).Decode(c); err != nil {
		return alticonerr.New(alticonerr.KindInputValidation, fmt.Errorf("decode config %s: %w", name, err))
	}

	return nil
}

// ParseEnv overrides the fields of c whose ALTICON_* environment variable is set.
func (c *Config) ParseEnv() error {
	if err := env.Parse(c); err != nil {
		return alticonerr.New(alticonerr.KindInputValidation, fmt.Errorf("parse env: %w", err))
	}

	return nil
}

// Validate checks that c describes a runnable sync, resolving an .xcodeproj
// given as PBXProj to the project.pbxproj inside of it.
func (c *Config) Validate() error {
	if err := c.validate(); err != nil {
		return alticonerr.New(alticonerr.KindInputValidation, err)
	}

	return nil
}

func (c *Config) validate() error {
	var errs []error

	if mode, err := ios.ParseMode(string(c.Mode)); err != nil {
		errs = append(errs, err)
	} else {
		c.Mode = mode
	}

	if c.Primary == "" {
		c.Primary = DefaultPrimary
	}

	if c.Mode != ios.ModeRemoveAll {
		if c.Icons == "" {
			errs = append(errs, fmt.Errorf("icons is required in mode %s", c.Mode))
		} else if !strings.Contains(c.Icons, "://") {
			if ok, err := alticonutil.IsDir(c.Icons); err != nil || !ok {
				errs = append(errs, fmt.Errorf("icons %s is not a directory", c.Icons))
			}
		}
	}

	if c.Assets == "" {
		errs = append(errs, fmt.Errorf("assets is required"))
	} else if ok, err := alticonutil.IsFile(c.Assets); err != nil || ok {
		errs = append(errs, fmt.Errorf("assets %s is not a directory", c.Assets))
	}

	if c.InfoPlist == "" {
		errs = append(errs, fmt.Errorf("info plist is required"))
	} else if ok, err := alticonutil.IsFile(c.InfoPlist); err != nil || !ok {
		errs = append(errs, fmt.Errorf("info plist %s is not a file", c.InfoPlist))
	}

	if c.PBXProj == "" {
		errs = append(errs, fmt.Errorf("pbxproj is required"))
	} else {
		if ok, _ := alticonutil.IsDir(c.PBXProj); ok {
			c.PBXProj = filepath.Join(c.PBXProj, pbxproj.ProjectName)
		}

		if ok, err := alticonutil.IsFile(c.PBXProj); err != nil || !ok {
			errs = append(errs, fmt.Errorf("pbxproj %s is not a file", c.PBXProj))
		}
	}

	return errors.Join(errs...)
}
