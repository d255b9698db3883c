package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"textassist/engine/internal/appdirs"
	"textassist/engine/internal/config"
	"textassist/engine/internal/document"
	"textassist/engine/internal/engine"
	"textassist/engine/internal/envfile"
	"textassist/engine/internal/logging"
	"textassist/engine/internal/openai"
	"textassist/engine/internal/rpc"
	"textassist/engine/internal/secrets"
	"textassist/engine/internal/settings"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		dataDir       string
		debug         bool
		selectionFile string
		baseURL       string
	)
	cmd := &cobra.Command{
		Use:          "textassist-engine",
		Short:        "Text-assist engine speaking line-delimited JSON over stdio",
		Version:      engine.EngineVersion,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			envResult := envfile.Load()
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("data-dir") {
				cfg.DataDir = dataDir
			}
			if flags.Changed("debug") {
				cfg.Debug = debug
			}
			if flags.Changed("selection-file") {
				cfg.SelectionFile = selectionFile
			}
			if flags.Changed("base-url") {
				cfg.BaseURL = baseURL
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cmd.Context(), cfg, envResult, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "directory for settings, secrets and logs")
	cmd.Flags().BoolVar(&debug, "debug", false, "write debug logs under the data directory")
	cmd.Flags().StringVar(&selectionFile, "selection-file", "", "watch a YAML or JSON file for the current selection")
	cmd.Flags().StringVar(&baseURL, "base-url", openai.DefaultBaseURL, "completion service base URL")
	return cmd
}

func run(ctx context.Context, cfg config.Config, envResult envfile.Result, in io.Reader, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logSetup, logErr := logging.NewFileLogger(cfg.DataDir, cfg.Debug)
	logger := logSetup.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	logger = logger.With("component", "engine")
	if logSetup.Enabled {
		logger.Info("engine.logging_enabled", "path", logSetup.Path)
	}
	if envResult.Loaded {
		logger.Debug("engine.env_loaded", "path", envResult.Path, "keys", envResult.Keys)
	}
	if envResult.Err != nil {
		logger.Warn("engine.env_load_failed", "path", envResult.Path, "error", envResult.Err.Error())
	}
	if logErr != nil {
		logger.Warn("engine.log_setup_failed", "error", logErr.Error())
	}
	if logSetup.Close != nil {
		defer logSetup.Close()
	}

	store := settings.NewRouter(
		settings.NewStore(appdirs.SettingsPath(cfg.DataDir)),
		secrets.NewStore(appdirs.SecretsPath(cfg.DataDir), appdirs.MasterKeyPath(cfg.DataDir)),
	)
	completer, err := newCompleter(cfg, logger)
	if err != nil {
		logger.Error("engine.init_failed", "error", err.Error())
		return err
	}

	server := rpc.NewServer(in, out, logger)
	var memory *document.Memory
	var selection document.Reader
	if cfg.SelectionFile != "" {
		file := document.NewFile(cfg.SelectionFile, logger)
		if err := file.Reload(); err != nil {
			logger.Warn("engine.selection_file_unreadable", "path", cfg.SelectionFile, "error", err.Error())
		}
		selection = file
	} else {
		memory = document.NewMemory()
		selection = memory
	}

	eng := engine.New(store, completer, selection, engine.WithLogger(logger), engine.WithNotifier(server.Post))
	for _, msgType := range []string{engine.TypeCancel, engine.TypeProcessText, engine.TypeSaveInstructions} {
		server.Register(msgType, eng.HandleMessage)
	}
	server.Register(engine.TypeSelectionChange, func(_ context.Context, raw json.RawMessage) error {
		msg, err := engine.DecodeSelectionChange(raw)
		if err != nil {
			return err
		}
		if memory == nil {
			logger.Debug("engine.selection_change_ignored", "reason", "file_source")
			return nil
		}
		memory.Set(msg.Nodes)
		return nil
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	runErr := make(chan error, 1)
	go func() { runErr <- eng.Run(ctx) }()
	serveErr := make(chan error, 1)
	go func() { serveErr <- server.Serve(ctx) }()

	select {
	case err := <-serveErr:
		// Peer closed its end; end the session with it.
		cancel()
		if engErr := <-runErr; err == nil {
			err = engErr
		}
		if err != nil {
			logger.Error("rpc.server_error", "error", err.Error())
		}
		return err
	case err := <-runErr:
		// A cancel command ends the process; the reader may still be blocked on stdin.
		return err
	}
}

func newCompleter(cfg config.Config, logger *slog.Logger) (engine.Completer, error) {
	if cfg.FakeOpenAI {
		logger.Info("engine.fake_openai_enabled")
		return engine.NewFakeCompleter(), nil
	}
	client, err := openai.NewClient(cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	return client, nil
}
