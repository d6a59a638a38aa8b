package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/xyproto/env/v2"
)

// Environment variables read by Load
const (
	EnvCacheDir         = "JYXAL_CACHE_DIR"
	EnvNoCache          = "JYXAL_NO_CACHE"
	EnvClass            = "JYXAL_CLASS"
	EnvOut              = "JYXAL_OUT"
	EnvRuntimeClasspath = "JYXAL_RUNTIME_CLASSPATH"
)

// DefaultClass is the generated class when nothing else is configured
const DefaultClass = "jyxal/Main"

// Config holds settings from the environment. CLI flags override them.
type Config struct {
	CacheDir         string // compile cache root
	NoCache          bool   // skip the compile cache
	ClassName        string // internal name of the generated class
	OutDir           string // where class files are written
	RuntimeClasspath string // runtime library for running compiled programs
}

// Load reads the configuration from the environment
func Load() *Config {
	return &Config{
		CacheDir:         env.Str(EnvCacheDir, defaultCacheDir()),
		NoCache:          env.Bool(EnvNoCache),
		ClassName:        env.Str(EnvClass, DefaultClass),
		OutDir:           env.Str(EnvOut, "."),
		RuntimeClasspath: env.Str(EnvRuntimeClasspath),
	}
}

func defaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "jyxal")
	}
	return filepath.Join(os.TempDir(), "jyxal-cache")
}

// Validate checks that the settings can be used for a compile
func (c *Config) Validate() error {
	if c.ClassName == "" {
		return errors.New("class name is empty")
	}
	if strings.ContainsAny(c.ClassName, ".;[") {
		return errors.Errorf("class name %q must be an internal name like pkg/Main", c.ClassName)
	}
	if strings.HasPrefix(c.ClassName, "/") || strings.HasSuffix(c.ClassName, "/") {
		return errors.Errorf("class name %q has an empty package or simple name", c.ClassName)
	}
	if !c.NoCache && c.CacheDir == "" {
		return errors.New("cache directory is empty")
	}
	return nil
}

// ClassFile returns the output path of the class file under OutDir
func (c *Config) ClassFile() string {
	return filepath.Join(c.OutDir, filepath.FromSlash(c.ClassName)+".class")
}
