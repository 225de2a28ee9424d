package console

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/lqhuy/chatdesk/internal/archive"
	"github.com/lqhuy/chatdesk/internal/config"
	"github.com/lqhuy/chatdesk/internal/logging"
	"github.com/lqhuy/chatdesk/internal/push"
	chatsync "github.com/lqhuy/chatdesk/internal/sync"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the synchronization core",
		Long:  "run loads the conversation snapshot, connects to the push stream, and keeps the local model reconciled until interrupted.",
		RunE:  runRun,
	}
	cmd.Flags().String("session", "", "open this conversation on start")
	return cmd
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := logging.Component("console")

	if err := cfg.EnsureDirectories(); err != nil {
		logger.Warn().Err(err).Msg("failed to create directories")
	}

	client, err := buildClient(cfg)
	if err != nil {
		return err
	}

	opts := chatsync.Options{
		DedupWindow:   cfg.Sync.DedupWindow,
		DedupLookback: cfg.Sync.DedupLookback,
		PageSize:      cfg.Sync.PageSize,
		SenderName:    cfg.Sync.SenderName,
	}

	var messageArchive *archive.Store
	if cfg.Archive.Enabled {
		messageArchive, err = archive.Open(cfg.ArchivePath())
		if err != nil {
			logger.Warn().Err(err).Str("path", cfg.ArchivePath()).Msg("archive disabled")
		} else {
			defer messageArchive.Close()
			opts.Archive = messageArchive
		}
	}

	engine := chatsync.NewEngine(client, opts)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := engine.Load(ctx); err != nil {
		return err
	}

	contexts := config.NewContextStore("")
	if sessionID := resumeSession(cmd, contexts, logger); sessionID != "" {
		sessionLogger := logging.WithSession(sessionID)
		if err := engine.Select(ctx, sessionID); err != nil {
			sessionLogger.Warn().Err(err).Msg("failed to reopen conversation")
		} else {
			sessionLogger.Info().Msg("conversation reopened")
		}
	}
	defer saveSession(contexts, engine, logger)

	return runStream(ctx, cfg, engine, logger)
}

// resumeSession returns the conversation to open on start: the
// --session flag wins, otherwise the persisted selection from the
// previous run.
func resumeSession(cmd *cobra.Command, contexts *config.ContextStore, logger zerolog.Logger) string {
	if sessionID, _ := cmd.Flags().GetString("session"); sessionID != "" {
		return sessionID
	}
	saved, err := contexts.Load()
	if err != nil {
		logger.Warn().Err(err).Msg("failed to load saved context")
		return ""
	}
	return saved.SessionID
}

// saveSession persists the open conversation for the next run.
func saveSession(contexts *config.ContextStore, engine *chatsync.Engine, logger zerolog.Logger) {
	saved, err := contexts.Load()
	if err != nil {
		saved = &config.Context{}
	}
	name := ""
	if c := engine.Conversation(engine.Selected()); c != nil {
		name = c.DisplayName
	}
	saved.SetSelection(engine.Selected(), name)
	if err := contexts.Save(saved); err != nil {
		logger.Warn().Err(err).Msg("failed to save context")
	}
}

// runStream keeps the push connection alive with bounded backoff. A
// fresh snapshot is loaded after every reconnect to cover events
// missed while disconnected.
func runStream(ctx context.Context, cfg *config.Config, engine *chatsync.Engine, logger zerolog.Logger) error {
	backoff := cfg.Push.ReconnectMin
	first := true

	for {
		if ctx.Err() != nil {
			return nil
		}

		adapter, err := push.NewAdapter(push.Config{
			BaseURL:          cfg.Backend.BaseURL,
			Role:             push.RoleAdmin,
			AuthToken:        cfg.Backend.AuthToken,
			HandshakeTimeout: cfg.Push.HandshakeTimeout,
		})
		if err != nil {
			return err
		}

		if err := adapter.Connect(ctx, engine); err != nil {
			logger.Warn().Err(err).Dur("retry_in", backoff).Msg("push connect failed")
		} else {
			logger.Info().Msg("push stream connected")
			if !first {
				if err := engine.Load(ctx); err != nil {
					logger.Warn().Err(err).Msg("snapshot reload after reconnect failed")
				}
			}
			first = false
			backoff = cfg.Push.ReconnectMin

			select {
			case <-ctx.Done():
				adapter.Disconnect()
				return nil
			case <-adapter.Done():
				logger.Warn().Dur("retry_in", backoff).Msg("push stream lost")
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > cfg.Push.ReconnectMax {
			backoff = cfg.Push.ReconnectMax
		}
	}
}
