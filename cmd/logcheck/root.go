package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ai4rm/logging"
	"github.com/spf13/cobra"
)

type app struct {
	logLevel string
	workDir  string
	svc      *logging.Service
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "logcheck",
		Short:         "Write log lines and audit records through the logging service",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a.svc = &logging.Service{
				WorkingDir: a.workDir,
				CLILevel:   a.logLevel,
				Stdout:     cmd.OutOrStdout(),
				Stderr:     cmd.ErrOrStderr(),
			}
			return a.svc.Initialize(a.logLevel)
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return a.svc.Close()
		},
	}
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level override (TRACE, DEBUG, INFO, WARNING, ERROR, CRITICAL)")
	root.PersistentFlags().StringVar(&a.workDir, "workdir", "", "directory holding .env, config/logging.yml and relative log paths")

	root.AddCommand(newLogCmd(a), newAuditCmd(a), newPathsCmd(a))
	return root
}

func newLogCmd(a *app) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "log <level> <message...>",
		Short: "Write one message at the given level",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			level, ok := logging.ParseLevel(args[0])
			if !ok {
				return fmt.Errorf("unknown level %q", args[0])
			}
			l, err := a.svc.GetLogger(name)
			if err != nil {
				return err
			}
			l.Log(level, strings.Join(args[1:], " "))
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "logger", "", "logger name (defaults to the project name)")
	return cmd
}

func newAuditCmd(a *app) *cobra.Command {
	var (
		details    []string
		compliance string
	)
	cmd := &cobra.Command{
		Use:   "audit <action>",
		Short: "Emit an audit record",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			detail, err := parseDetails(details)
			if err != nil {
				return err
			}
			var opts []logging.AuditOption
			if compliance != "" {
				opts = append(opts, logging.WithCompliance(compliance))
			}
			a.svc.AuditLog(args[0], detail, opts...)
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&details, "detail", nil, "extra key=value pair, repeatable")
	cmd.Flags().StringVar(&compliance, "compliance", "", "compliance tag (defaults to "+logging.DefaultCompliance+")")
	return cmd
}

func parseDetails(pairs []string) (map[string]interface{}, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	detail := make(map[string]interface{}, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid detail %q, want key=value", p)
		}
		detail[k] = v
	}
	return detail, nil
}

func newPathsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Log the working directory, executable and search paths",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			svc := a.svc

			svc.Info("=== working directory ===")
			if wd, err := os.Getwd(); err == nil {
				svc.Info(wd)
			}

			svc.Info("=== executable ===")
			if exe, err := os.Executable(); err == nil {
				svc.Info(exe)
			}

			svc.Info("=== search paths ===")
			for _, key := range []string{"GOPATH", "GOROOT"} {
				svc.Infof("%s=%s", key, os.Getenv(key))
			}
			for i, p := range filepath.SplitList(os.Getenv("PATH")) {
				svc.Infof("%d: %s", i, p)
			}

			svc.Info("=== log files ===")
			for _, p := range svc.LogPaths() {
				svc.Info(p)
			}
			svc.Debugf("effective level %s, default logger %q", svc.EffectiveLevel(), svc.DefaultLoggerName())
			return nil
		},
	}
}
