/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package cmd

import (
	"context"
	"path/filepath"
	"slices"

	"github.com/fulmenhq/noticegen/pkg/config"
	"github.com/fulmenhq/noticegen/pkg/logger"
	"github.com/fulmenhq/noticegen/pkg/maven"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// addResolutionFlags registers the flags every project-reading command shares
func addResolutionFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("config", "", "Config file (default: .noticegen.{yaml,yml,json,toml} in the project directory)")
	f.Bool("strict", true, "Fail when a dependency has no license or homepage and no hint")
	f.String("encoding", "UTF-8", "Character encoding of the NOTICE files")
	f.StringSlice("hint-file", nil, "Additional YAML/TOML/JSON hint file (repeatable)")
	f.StringSlice("scope", nil, "Dependency scope to follow (repeatable; default compile,provided,system)")
	f.StringSlice("exclude", nil, "Skip artifacts matching groupId:artifactId glob (repeatable)")
	f.String("local-repo", "", "Local Maven repository (default ~/.m2/repository)")
	f.StringSlice("remote-repo", nil, "Remote Maven repository URL (repeatable)")
	f.Bool("offline", false, "Do not contact remote repositories")
	f.Duration("timeout", 0, "HTTP timeout for remote repositories")
}

// addArtifactFlag lets a read-only command start from a published artifact
func addArtifactFlag(cmd *cobra.Command) {
	cmd.Flags().String("artifact", "", "Start from a published artifact (groupId:artifactId:version) instead of pom.xml")
}

// configFlags returns the command's flags minus those that mean something
// else for this command
func configFlags(cmd *cobra.Command, skip ...string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(cmd.Name(), pflag.ContinueOnError)
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if !slices.Contains(skip, f.Name) {
			fs.AddFlag(f)
		}
	})
	return fs
}

// projectContext is everything a command needs to walk a project
type projectContext struct {
	cfg      *config.Config
	resolver *maven.Resolver
	root     *maven.Project
}

func projectDir(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}

// loadProject reads configuration and the project's pom.xml
func loadProject(ctx context.Context, cmd *cobra.Command, dir string, flags *pflag.FlagSet) (*projectContext, error) {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(dir, configFile, flags)
	if err != nil {
		return nil, err
	}
	if cfg.File != "" {
		logger.Debug("Loaded configuration", logger.String("file", cfg.File))
	}

	repo := buildRepository(cfg)
	logger.Debug("Using repositories", logger.String("chain", repo.Name()))

	opts := []maven.ResolverOption{maven.WithScopes(cfg.Scopes)}
	if !cfg.Repositories.Offline {
		opts = append(opts, maven.WithPrefetch(cfg.Repositories.Prefetch))
	}
	resolver := maven.NewResolver(repo, opts...)
	root, err := loadRoot(ctx, cmd, resolver, cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("Loaded project", logger.String("project", root.Coordinate.String()), logger.String("name", root.Name))
	return &projectContext{cfg: cfg, resolver: resolver, root: root}, nil
}

// loadRoot resolves --artifact from the repositories when given, and
// otherwise reads the project's pom.xml
func loadRoot(ctx context.Context, cmd *cobra.Command, resolver *maven.Resolver, cfg *config.Config) (*maven.Project, error) {
	artifact := ""
	if f := cmd.Flags().Lookup("artifact"); f != nil {
		artifact = f.Value.String()
	}
	if artifact == "" {
		return resolver.LoadProjectFile(ctx, filepath.Join(cfg.BaseDir, "pom.xml"))
	}

	c, err := maven.ParseCoordinate(artifact)
	if err != nil {
		return nil, &config.ConfigError{Source: "--artifact", Err: err}
	}
	p, err := resolver.ResolveProject(ctx, c)
	if err != nil {
		return nil, err
	}
	root := *p
	root.Root = true
	return &root, nil
}

// buildRepository chains the local repository with the remote ones
func buildRepository(cfg *config.Config) maven.Chain {
	var chain maven.Chain
	if cfg.Repositories.Local != "" {
		chain = append(chain, maven.NewLocalRepository(cfg.Repositories.Local))
	}
	if cfg.Repositories.Offline {
		return chain
	}
	for _, u := range cfg.Repositories.Remote {
		// Cache entries only need to outlive one run.
		chain = append(chain, maven.NewRemoteRepository(u, cfg.Repositories.Timeout, cfg.Repositories.Timeout*10))
	}
	return chain
}
