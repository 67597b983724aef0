package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"curator/internal/asset"
	"curator/internal/config"
	"curator/internal/logging"
	"curator/internal/media"
	"curator/internal/media/ffmpeg"
	"curator/internal/media/imaging"
	"curator/internal/media/mp3"
	"curator/internal/pipeline"
	"curator/internal/storage"
)

type commandContext struct {
	configFlag *string

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error

	registryOnce sync.Once
	registry     *media.Registry
	registryErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolvedPath, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolvedPath
		c.configExists = exists
	})
	return c.config, c.configErr
}

func (c *commandContext) resolvedConfigPath() (string, error) {
	if _, err := c.ensureConfig(); err != nil {
		return "", err
	}
	return c.configPath, nil
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	c.loggerOnce.Do(func() {
		c.logger, c.loggerErr = newCLILogger(cfg)
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) ensureRegistry() (*media.Registry, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	c.registryOnce.Do(func() {
		c.registry, c.registryErr = buildRegistry(cfg, logger)
	})
	return c.registry, c.registryErr
}

// runOperator applies a single operator to the asset through a pipeline.
func (c *commandContext) runOperator(ctx context.Context, a *asset.Asset, op pipeline.Operator) (*asset.Asset, error) {
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	p := pipeline.New(pipeline.WithLogger(logger))
	p.Add(op)
	out, err := p.Process(ctx, a).Collect()
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// buildRegistry assembles the processor registry from configuration.
// Registration order decides dispatch: the first processor whose CanRead
// accepts the stream wins, so the cheap pure-Go processors come before the
// ffmpeg-backed one.
func buildRegistry(cfg *config.Config, logger *slog.Logger) (*media.Registry, error) {
	registry := media.NewRegistry(media.WithLogger(logger))

	var ffmpegOpts []ffmpeg.Option
	if cfg.Tools.FFmpegEnabled {
		ffmpegOpts = []ffmpeg.Option{
			ffmpeg.WithFFmpegBinary(cfg.FFmpegBinary()),
			ffmpeg.WithFFprobeBinary(cfg.FFprobeBinary()),
		}
	}

	processors := []media.Processor{
		imaging.NewProcessor(),
		mp3.NewProcessor(),
	}
	if cfg.Tools.FFmpegEnabled {
		processors = append(processors, ffmpeg.NewProcessor(ffmpegOpts...))
	}
	for _, p := range processors {
		if err := registry.Register(p); err != nil {
			return nil, fmt.Errorf("register processor: %w", err)
		}
	}

	metadataProcessors := []media.MetadataProcessor{
		imaging.NewExifProcessor(),
		mp3.NewID3Processor(),
	}
	if cfg.Tools.FFmpegEnabled {
		metadataProcessors = append(metadataProcessors, ffmpeg.NewFFMetadataProcessor(ffmpegOpts...))
	}
	for _, mp := range metadataProcessors {
		if err := registry.RegisterMetadata(mp); err != nil {
			return nil, fmt.Errorf("register metadata processor: %w", err)
		}
	}

	return registry, nil
}

// newCLILogger writes to the configured log file only, keeping stdout free
// for command output.
func newCLILogger(cfg *config.Config) (*slog.Logger, error) {
	if cfg == nil || strings.TrimSpace(cfg.Paths.LogDir) == "" {
		return logging.NewNop(), nil
	}
	logPath := filepath.Join(cfg.Paths.LogDir, "curator.log")
	return logging.New(logging.Options{
		Level:            cfg.Logging.Level,
		Format:           cfg.Logging.Format,
		OutputPaths:      []string{logPath},
		ErrorOutputPaths: []string{logPath},
	})
}

func (c *commandContext) withStore(fn func(*storage.FileStore) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return err
	}
	store, err := storage.Open(cfg.Paths.StorageDir, storage.WithLogger(logger))
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

// withLockedStore serializes store mutations across curator processes with an
// advisory lock next to the database.
func (c *commandContext) withLockedStore(fn func(*storage.FileStore) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	lock := flock.New(filepath.Join(cfg.Paths.StorageDir, "curator.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire store lock: %w", err)
	}
	if !locked {
		return errors.New("another curator process has the store locked")
	}
	defer func() {
		_ = lock.Unlock()
	}()
	return c.withStore(fn)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
