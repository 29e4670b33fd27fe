package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/worklane/worklane-client/internal/app"
	"github.com/worklane/worklane-client/internal/auth"
	"github.com/worklane/worklane-client/internal/config"
	"github.com/worklane/worklane-client/internal/logging"
	"github.com/worklane/worklane-client/internal/sandbox"
	"github.com/worklane/worklane-client/internal/ui"
	"go.uber.org/zap"
)

const defaultChatLogFile = "worklane.log"

var (
	cfgFile     string
	email       string
	password    string
	accountKind string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "worklane",
		Short: "Terminal client for the Worklane recruitment platform",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
	}

	chatCmd := &cobra.Command{
		Use:   "chat",
		Short: "Open the chat and notification terminal UI",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd.Context())
		},
	}
	chatCmd.Flags().StringVar(&email, "email", "", "Account email (ignored when a session token is configured)")
	chatCmd.Flags().StringVar(&password, "password", "", "Account password")
	chatCmd.Flags().StringVar(&accountKind, "account-type", "personal", "Account type: business or personal")

	sandboxCmd := &cobra.Command{
		Use:   "sandbox",
		Short: "Run a local stand-in for the platform backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSandbox(cmd.Context())
		},
	}

	setupFlags(rootCmd)
	rootCmd.AddCommand(chatCmd, sandboxCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setupFlags(cmd *cobra.Command) {
	config.ApplyDefaults(viper.GetViper())
	defaults := config.NewViper()
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to configuration file")
	cmd.PersistentFlags().String("api-base-url", defaults.GetString("api.base_url"), "Platform REST base URL")
	cmd.PersistentFlags().String("ws-url", defaults.GetString("ws.url"), "Platform websocket base URL")
	cmd.PersistentFlags().String("log-level", defaults.GetString("log.level"), "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().String("log-file", defaults.GetString("log.file"), "Log file path")
	cmd.PersistentFlags().String("token", "", "Pre-issued session token (overrides env)")
	cmd.PersistentFlags().String("sandbox-address", defaults.GetString("sandbox.http_address"), "Sandbox listen address")
	cmd.PersistentFlags().String("sandbox-database", defaults.GetString("sandbox.database_path"), "Sandbox SQLite database path")
	cmd.PersistentFlags().String("sandbox-upload-dir", defaults.GetString("sandbox.upload_dir"), "Sandbox upload directory")

	bindFlag(cmd, "api.base_url", "api-base-url")
	bindFlag(cmd, "ws.url", "ws-url")
	bindFlag(cmd, "log.level", "log-level")
	bindFlag(cmd, "log.file", "log-file")
	bindFlag(cmd, "session.token", "token")
	bindFlag(cmd, "sandbox.http_address", "sandbox-address")
	bindFlag(cmd, "sandbox.database_path", "sandbox-database")
	bindFlag(cmd, "sandbox.upload_dir", "sandbox-upload-dir")
}

func bindFlag(cmd *cobra.Command, key, flag string) {
	if err := viper.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}

	if err := viper.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if cfgFile != "" && errors.As(err, &configNotFound) {
			return err
		}
	}

	return nil
}

func runChat(ctx context.Context) error {
	appConfig, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	// The TUI owns the terminal, so logs must go to a file.
	logFile := appConfig.LogFile
	if strings.TrimSpace(logFile) == "" {
		logFile = defaultChatLogFile
	}
	logger, err := logging.NewLogger(appConfig.LogLevel, logFile)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	application, err := app.New(app.Config{
		APIBaseURL: appConfig.APIBaseURL,
		WSURL:      appConfig.WSURL,
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if token := strings.TrimSpace(appConfig.SessionToken); token != "" {
		if err := application.Establish(token); err != nil {
			return err
		}
	} else {
		accountType, err := parseAccountType(accountKind)
		if err != nil {
			return err
		}
		if err := application.Login(signalCtx, accountType, email, password); err != nil {
			return err
		}
	}

	pollCtx, cancelPolling := context.WithCancel(signalCtx)
	defer cancelPolling()
	go application.RoomPoller.Run(pollCtx)

	program := tea.NewProgram(ui.New(signalCtx, application), tea.WithAltScreen(), tea.WithContext(signalCtx))
	if _, err := program.Run(); err != nil {
		logger.Error("terminal ui failed", zap.Error(err))
		return err
	}
	return nil
}

func parseAccountType(kind string) (int, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "business":
		return auth.AccountTypeBusiness, nil
	case "personal", "":
		return auth.AccountTypePersonal, nil
	default:
		return 0, fmt.Errorf("unknown account type %q", kind)
	}
}

func runSandbox(ctx context.Context) error {
	appConfig, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(appConfig.LogLevel, appConfig.LogFile)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	server, err := sandbox.New(sandbox.Config{
		DatabasePath:  appConfig.SandboxDatabasePath,
		HTTPAddress:   appConfig.SandboxHTTPAddress,
		UploadDir:     appConfig.SandboxUploadDir,
		SigningSecret: appConfig.SandboxSigningSecret,
		Logger:        logger,
	})
	if err != nil {
		return err
	}

	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return server.Run(signalCtx)
}
