package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"matchday/internal/aliases"
	"matchday/internal/config"
	"matchday/internal/logging"
	"matchday/internal/metadata"
	"matchday/internal/resolve"
	"matchday/internal/rules"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// buildLogger constructs the run logger from the config, writing to
// stderr and the run log file.
func (c *commandContext) buildLogger() (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	outputs := []string{"stderr"}
	if strings.TrimSpace(cfg.Paths.LogDir) != "" {
		outputs = append(outputs, filepath.Join(cfg.Paths.LogDir, "matchday.log"))
	}
	return logging.New(logging.Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: outputs,
	})
}

// buildResolvers assembles one resolver per configured sport, in
// declaration order. Sports absent from the metadata snapshot still get
// a resolver over an empty tree so rule diagnostics stay visible.
func (c *commandContext) buildResolvers(logger *slog.Logger) ([]*resolve.Resolver, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	sets, err := cfg.CompileRules()
	if err != nil {
		return nil, err
	}
	aliasMaps := cfg.BuildAliases()

	shows := map[string]*metadata.Show{}
	if strings.TrimSpace(cfg.Paths.MetadataFile) != "" {
		shows, err = metadata.LoadShows(cfg.Paths.MetadataFile)
		if err != nil {
			return nil, fmt.Errorf("load metadata: %w", err)
		}
	}

	resolvers := make([]*resolve.Resolver, 0, len(cfg.Sports))
	for _, sport := range cfg.Sports {
		show := shows[sport.ID]
		if show == nil {
			show = &metadata.Show{SportID: sport.ID, Title: sport.Show}
		}
		var set *rules.Set
		if s, ok := sets[sport.ID]; ok {
			set = s
		}
		var aliasMap *aliases.Map
		if m, ok := aliasMaps[sport.ID]; ok {
			aliasMap = m
		}
		resolvers = append(resolvers, resolve.New(show, set, aliasMap, logger))
	}
	return resolvers, nil
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
