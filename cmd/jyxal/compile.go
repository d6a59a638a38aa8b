package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"jyxal/cache"
	"jyxal/compiler"
	"jyxal/config"
	"jyxal/parser"
	"jyxal/trace"
	"jyxal/watch"

	humanize "github.com/dustin/go-humanize"
	"github.com/golang/glog"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// maxParallel bounds the number of files compiled at once
const maxParallel = 8

type compileFlags struct {
	out         string
	className   string
	catalog     string
	noCache     bool
	watch       bool
	trace       bool
	traceFilter string
}

func newCompileCmd() *cobra.Command {
	var flags compileFlags
	cmd := &cobra.Command{
		Use:   "compile <file>...",
		Short: "Compile source files to class files",
		Long: "Compile source files to class files\n" +
			"\n" +
			"Each source file becomes one class file. With a single input the class is\n" +
			"written under the output directory at the path of its internal name. With\n" +
			"several inputs each one gets its own subdirectory named after the file.\n" +
			"\n" +
			"Settings default to the JYXAL_* environment variables; flags override them.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.config()
			if err != nil {
				return err
			}
			c, err := newCompiler(cfg, flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if err := c.compileAll(args, cmd.OutOrStdout()); err != nil && !flags.watch {
				return err
			} else if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
			}
			if !flags.watch {
				return nil
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return c.watch(ctx, args, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVarP(&flags.out, "out", "o", "", "Output directory (default $"+config.EnvOut+" or .)")
	cmd.Flags().StringVar(&flags.className, "class-name", "",
		"Internal name of the generated class (default $"+config.EnvClass+" or "+config.DefaultClass+")")
	cmd.Flags().StringVar(&flags.catalog, "catalog", "", "YAML file with extra element definitions")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "Do not read or write the compile cache")
	cmd.Flags().BoolVarP(&flags.watch, "watch", "w", false, "Recompile when a source file changes")
	cmd.Flags().BoolVar(&flags.trace, "trace", false, "Trace code generation to stderr")
	cmd.Flags().StringVar(&flags.traceFilter, "trace-filter", "",
		"Comma-separated method name patterns to trace (e.g. 'main,listInit$*')")

	return cmd
}

// config merges the environment with the flags
func (f compileFlags) config() (*config.Config, error) {
	cfg := config.Load()
	if f.out != "" {
		cfg.OutDir = f.out
	}
	if f.className != "" {
		cfg.ClassName = f.className
	}
	if f.noCache {
		cfg.NoCache = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (f compileFlags) filters() []string {
	var filters []string
	for _, part := range strings.Split(f.traceFilter, ",") {
		if part = strings.TrimSpace(part); part != "" {
			filters = append(filters, part)
		}
	}
	return filters
}

// fileCompiler compiles source files under one configuration
type fileCompiler struct {
	cfg   *config.Config
	opts  compiler.Options
	cache *cache.Cache // nil when caching is off
	outMu sync.Mutex
}

func newCompiler(cfg *config.Config, flags compileFlags, traceOut io.Writer) (*fileCompiler, error) {
	cat, err := loadCatalog(flags.catalog)
	if err != nil {
		return nil, err
	}
	c := &fileCompiler{
		cfg: cfg,
		opts: compiler.Options{
			ClassName: cfg.ClassName,
			Catalog:   cat,
			Tracer:    trace.New(flags.trace, flags.filters(), traceOut),
		},
	}
	// A cache hit skips code generation, so there would be nothing to trace.
	// Extra catalogs change the output without changing the key.
	if !cfg.NoCache && !flags.trace && flags.catalog == "" {
		if c.cache, err = cache.New(cfg.CacheDir); err != nil {
			glog.Warningf("compile cache disabled: %v", err)
		}
	}
	return c, nil
}

// outputPath returns where the class for src goes when n files are compiled
func (c *fileCompiler) outputPath(src string, n int) string {
	if n <= 1 {
		return c.cfg.ClassFile()
	}
	stem := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	sub := *c.cfg
	sub.OutDir = filepath.Join(c.cfg.OutDir, stem)
	return sub.ClassFile()
}

// compileAll compiles every file in parallel and reports each result.
// Failures do not stop the other files; all of them are returned together.
func (c *fileCompiler) compileAll(paths []string, out io.Writer) error {
	var g errgroup.Group
	g.SetLimit(maxParallel)

	var mu sync.Mutex
	var result *multierror.Error
	for _, src := range paths {
		src := src
		g.Go(func() error {
			dst := c.outputPath(src, len(paths))
			size, cached, err := c.compileFile(src, dst)
			if err != nil {
				mu.Lock()
				result = multierror.Append(result, errors.Wrap(err, src))
				mu.Unlock()
				return nil
			}
			c.report(out, src, dst, size, cached)
			return nil
		})
	}
	_ = g.Wait()
	return result.ErrorOrNil()
}

func (c *fileCompiler) report(out io.Writer, src, dst string, size int, cached bool) {
	c.outMu.Lock()
	defer c.outMu.Unlock()
	note := ""
	if cached {
		note = " (cached)"
	}
	fmt.Fprintf(out, "%s -> %s (%s)%s\n", src, dst, humanize.Bytes(uint64(size)), note)
}

// compileFile compiles src and writes the class to dst. It returns the
// class size and whether it came from the cache.
func (c *fileCompiler) compileFile(src, dst string) (int, bool, error) {
	source, err := os.ReadFile(src)
	if err != nil {
		return 0, false, err
	}
	data, cached, err := c.compileSource(filepath.Base(src), source)
	if err != nil {
		return 0, false, err
	}
	if err := writeClass(dst, data); err != nil {
		return 0, false, err
	}
	return len(data), cached, nil
}

// compileSource returns the class bytes for one source text, using the
// cache when it is enabled
func (c *fileCompiler) compileSource(sourceName string, source []byte) ([]byte, bool, error) {
	var key string
	if c.cache != nil {
		key = cache.Key(compiler.Version, c.opts.ClassName, sourceName, source)
		data, ok, err := c.cache.Get(key)
		if err != nil {
			glog.Warningf("cache read %s: %v", sourceName, err)
		} else if ok {
			return data, true, nil
		}
	}

	file, err := parser.Parse(string(source))
	if err != nil {
		return nil, false, err
	}
	data, err := compiler.CompileWithOptions(file, sourceName, c.opts)
	if err != nil {
		return nil, false, err
	}

	if c.cache != nil {
		if err := c.cache.Put(key, data); err != nil {
			glog.Warningf("cache write %s: %v", sourceName, err)
		}
	}
	return data, false, nil
}

func writeClass(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "create output dir for %s", path)
	}
	return errors.Wrapf(os.WriteFile(path, data, 0o644), "write %s", path)
}

// watch recompiles each file when it changes until ctx is done
func (c *fileCompiler) watch(ctx context.Context, paths []string, out, errOut io.Writer) error {
	w, err := watch.New(watch.DefaultDebounce)
	if err != nil {
		return err
	}
	defer w.Close()

	targets := make(map[string]string, len(paths))
	for _, src := range paths {
		abs, err := filepath.Abs(src)
		if err != nil {
			return err
		}
		if err := w.Add(abs); err != nil {
			return err
		}
		targets[abs] = src
	}
	fmt.Fprintf(errOut, "watching %d file(s); press Ctrl-C to stop\n", len(paths))

	return w.Run(ctx, func(changed string) {
		src, ok := targets[changed]
		if !ok {
			return
		}
		dst := c.outputPath(src, len(paths))
		size, cached, err := c.compileFile(src, dst)
		if err != nil {
			c.outMu.Lock()
			fmt.Fprintf(errOut, "%s: %v\n", src, err)
			c.outMu.Unlock()
			return
		}
		c.report(out, src, dst, size, cached)
	})
}
