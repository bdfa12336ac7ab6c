package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/adaptutor/internal/config"
	"github.com/abhisek/adaptutor/internal/evaluator"
	"github.com/abhisek/adaptutor/internal/grading"
	"github.com/abhisek/adaptutor/internal/judge"
	"github.com/abhisek/adaptutor/internal/llm"
	"github.com/abhisek/adaptutor/internal/logger"
	"github.com/abhisek/adaptutor/internal/mastery"
	"github.com/abhisek/adaptutor/internal/questiongen"
	"github.com/abhisek/adaptutor/internal/questions"
	"github.com/abhisek/adaptutor/internal/store"
	"github.com/abhisek/adaptutor/internal/telemetry"
	"github.com/abhisek/adaptutor/internal/tutor"
)

// env is everything a command may need, built from configuration.
type env struct {
	cfg      config.Config
	log      *logger.Logger
	store    *store.Store
	bank     *questions.Bank
	mastery  *mastery.Service
	provider llm.Provider
	tutor    *tutor.Service

	closers []func()
}

type envOption func(*envSettings)

type envSettings struct {
	quiet bool
}

// quietLogs discards logs, for the TUI which owns the terminal.
func quietLogs() envOption {
	return func(s *envSettings) { s.quiet = true }
}

// loadConfig reads --config and applies --db on top of it.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}

	if dsn, _ := cmd.Flags().GetString("db"); dsn != "" {
		if err := store.EnsureDir(dsn); err != nil {
			return config.Config{}, fmt.Errorf("prepare database dir: %w", err)
		}
		cfg.Database.DSN = dsn
	}
	if cfg.Database.DSN == "" {
		p, err := store.DefaultDBPath()
		if err != nil {
			return config.Config{}, fmt.Errorf("resolve database path: %w", err)
		}
		cfg.Database.DSN = p
	}
	return cfg, nil
}

// openStore opens just the configuration, logger and database.
func openStore(cmd *cobra.Command, opts ...envOption) (*env, error) {
	var settings envSettings
	for _, o := range opts {
		o(&settings)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	e := &env{cfg: cfg, log: logger.Nop()}
	if !settings.quiet {
		log, err := logger.New(cfg.Log.Mode)
		if err != nil {
			return nil, fmt.Errorf("init logger: %w", err)
		}
		e.log = log
		e.closers = append(e.closers, log.Sync)
	}

	st, err := store.Open(cfg.Database.DSN)
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}
	e.store = st
	e.bank = questions.NewBank(st.QuestionRepo())
	e.closers = append(e.closers, func() { st.Close() })
	return e, nil
}

// openEnv builds the full engine: mastery service, judge, grader,
// selector, evaluator and the tutor facade.
func openEnv(cmd *cobra.Command, opts ...envOption) (*env, error) {
	e, err := openStore(cmd, opts...)
	if err != nil {
		return nil, err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := e.build(ctx); err != nil {
		e.Close()
		return nil, err
	}
	return e, nil
}

func (e *env) build(ctx context.Context) error {
	cfg := e.cfg

	tcfg := cfg.Telemetry
	tcfg.Version = version
	shutdown, err := telemetry.Init(ctx, tcfg, e.log)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	e.closers = append(e.closers, func() {
		if err := shutdown(context.Background()); err != nil {
			e.log.Warn("telemetry shutdown failed", "error", err)
		}
	})

	locker, err := e.locker(ctx)
	if err != nil {
		return err
	}
	e.mastery = mastery.NewService(e.store.MasteryRepo(), e.store.LearnerRepo(),
		mastery.WithLocker(locker),
		mastery.WithLogger(e.log),
	)

	evOpts := []evaluator.Option{
		evaluator.WithAuditLog(e.store.AuditRepo()),
		evaluator.WithLogger(e.log),
	}

	if cfg.Judge.Enabled() {
		client, err := judge.New(cfg.Judge.ClientConfig(), judge.WithLogger(e.log))
		if err != nil {
			return fmt.Errorf("init judge: %w", err)
		}
		evOpts = append(evOpts, evaluator.WithJudge(client))
	} else {
		e.log.Debug("judge not configured; code testcases will not execute")
	}

	if cfg.LLM.Enabled() {
		provider, err := llm.NewProvider(ctx, cfg.LLM, e.store.EventRepo(), e.log)
		if err != nil {
			return fmt.Errorf("init llm provider: %w", err)
		}
		e.provider = provider
		if cfg.Grading.Enabled {
			evOpts = append(evOpts, evaluator.WithGrader(grading.NewLLMGrader(provider, cfg.Grading.Temperature)))
		}
	}

	selOpts := []questions.SelectorOption{questions.WithSelectorLogger(e.log)}
	if cfg.Selector.LLMFill && e.provider != nil {
		gen := questiongen.New(e.provider, questiongen.DefaultConfig())
		selOpts = append(selOpts, questions.WithFiller(questiongen.NewBankFiller(gen, e.bank, questiongen.WithLogger(e.log))))
	}
	selector := questions.NewSelector(e.mastery, e.bank, selOpts...)

	ev := evaluator.New(e.mastery, evaluator.Config{
		Workers:              cfg.Judge.Workers,
		GraderTimeout:        cfg.Grading.Timeout,
		ShortAnswerMaxTokens: cfg.Grading.ShortAnswerMaxTokens,
		CodeMaxTokens:        cfg.Grading.CodeMaxTokens,
		DefaultLanguageID:    cfg.Judge.DefaultLanguageID,
	}, evOpts...)

	e.tutor = tutor.New(e.mastery, e.bank, selector, ev,
		tutor.WithAuditRepo(e.store.AuditRepo()),
		tutor.WithSelectLimit(cfg.Selector.MaxPerCall),
		tutor.WithLogger(e.log),
	)
	return nil
}

func (e *env) locker(ctx context.Context) (mastery.Locker, error) {
	if e.cfg.Locking.Backend != "redis" {
		return mastery.NewKeyedLocker(), nil
	}
	rdb, err := mastery.DialRedis(ctx, e.cfg.Locking.RedisAddr)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	e.closers = append(e.closers, func() { rdb.Close() })
	return mastery.NewRedisLocker(rdb, e.cfg.Locking.TTL), nil
}

// Close releases resources in reverse order of acquisition.
func (e *env) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i]()
	}
	e.closers = nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func warnf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}
