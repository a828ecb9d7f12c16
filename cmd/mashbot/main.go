package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	adapterwebsocket "mashbot/adapter/websocket"
	"mashbot/bot"
	"mashbot/domain"
	"mashbot/internal/config"
	"mashbot/internal/logging"
	"mashbot/internal/loop"
	"mashbot/internal/telemetry"
	"mashbot/session"
	"mashbot/utils"
	"mashbot/world"
)

func main() {
	configPath := flag.String("config", utils.GetEnvDefault("MASHBOT_CONFIG", ""), "path to a JSON/YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, "mashbot:", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	otelOut, closeOtel, err := openOptional(cfg.Otel.File, os.Stderr)
	if err != nil {
		return err
	}
	defer closeOtel()
	tel, err := telemetry.New(ctx, telemetry.Config{
		Enabled:     cfg.Otel.Enabled,
		ServiceName: cfg.Otel.ServiceName,
		Interval:    cfg.Otel.Interval,
		Writer:      otelOut,
	})
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown failed", "err", err)
		}
	}()

	logFile, closeLog, err := openOptional(cfg.Log.File, nil)
	if err != nil {
		return err
	}
	defer closeLog()
	logger := logging.Setup(logging.Options{
		Level:       cfg.Log.Level,
		File:        logFile,
		Provider:    tel.LoggerProvider(),
		ServiceName: cfg.Otel.ServiceName,
	})

	lp := loop.New(loop.Config{Logger: logger})
	if err := lp.Start(context.Background()); err != nil {
		return err
	}
	defer func() {
		if err := lp.DrainTimeout(5 * time.Second); err != nil && !errors.Is(err, loop.ErrStopped) {
			logger.Warn("loop drain failed", "err", err)
		}
	}()

	dialer := adapterwebsocket.NewDialer()
	g, gctx := errgroup.WithContext(ctx)
	for i := range cfg.Bot.Count {
		g.Go(func() error {
			// 接続を一斉に張らないよう参加を遅らせる
			select {
			case <-gctx.Done():
				return nil
			case <-time.After(time.Duration(i) * cfg.Bot.JoinStagger):
			}
			return runBot(gctx, i, cfg, dialer, lp, logger)
		})
	}
	err = g.Wait()
	logger.Info("all bots stopped")
	return err
}

// runBot は1体分のワールド・セッション・ボットを組み立て、セッションが終わるまで動かします。
func runBot(ctx context.Context, index int, cfg config.Config, dialer domain.Dialer, lp *loop.Loop, logger *slog.Logger) error {
	identity, err := bot.NewIdentity(cfg.Bot.Name, cfg.Bot.Flag, cfg.Bot.AircraftType)
	if err != nil {
		return err
	}
	logger = logger.With("botID", index, "name", identity.Name)

	w := world.New()
	sess, err := session.New(sessionConfig(cfg), dialer, w, lp, lp, session.WithLogger(logger))
	if err != nil {
		return err
	}

	opts := []bot.Option{bot.WithLogger(logger)}
	if cfg.Bot.Character != "" {
		c, ok := bot.CharacterByName(cfg.Bot.Character)
		if !ok {
			return fmt.Errorf("unknown character %q", cfg.Bot.Character)
		}
		opts = append(opts, bot.WithCharacter(c))
	}
	b, err := bot.New(bot.Config{
		AircraftType: identity.AircraftType,
		TickInterval: cfg.Bot.TickInterval,
		Patrol:       domain.Pos{X: cfg.Bot.Patrol.X, Y: cfg.Bot.Patrol.Y},
	}, w, sess, lp, opts...)
	if err != nil {
		return err
	}
	sess.SetObserver(b)

	logger.Info("starting bot", "flag", identity.Flag, "aircraft", identity.AircraftType, "character", b.Character().Name, "url", cfg.Server.URL)
	b.Start()
	err = sess.Run(ctx, session.Identity{Name: identity.Name, Flag: identity.Flag})

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_ = lp.Submit(stopCtx, b.Stop)

	switch {
	case err == nil, errors.Is(err, context.Canceled):
		return nil
	case errors.Is(err, session.ErrRetriesExhausted), errors.Is(err, session.ErrPrimaryClosed):
		// 1体の切断で他のボットは止めない
		logger.Error("bot disconnected", "err", err)
		return nil
	default:
		return err
	}
}

func sessionConfig(cfg config.Config) session.Config {
	sc := session.DefaultConfig(cfg.Server.URL)
	sc.ProtocolVersion = cfg.Session.ProtocolVersion
	sc.ViewportWidth = cfg.Session.ViewportWidth
	sc.ViewportHeight = cfg.Session.ViewportHeight
	sc.KeepaliveInterval = cfg.Session.KeepaliveInterval
	sc.MaxRetries = cfg.Session.MaxRetries
	sc.RetryDelay = cfg.Session.RetryDelay
	sc.WriteQueueSize = cfg.Session.WriteQueueSize
	sc.ChatPerSecond = cfg.Session.ChatPerSecond
	sc.ChatBurst = cfg.Session.ChatBurst
	return sc
}

// openOptional は path が空なら fallback を、そうでなければ追記モードで開いたファイルを返します。
func openOptional(path string, fallback io.Writer) (io.Writer, func(), error) {
	if path == "" {
		return fallback, func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, func() { _ = f.Close() }, nil
}
