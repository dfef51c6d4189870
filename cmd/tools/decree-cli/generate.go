package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"decree-workers/internal/common/config"
	"decree-workers/internal/common/database"
	apperrors "decree-workers/internal/common/errors"
	"decree-workers/internal/decree/batch"
	"decree-workers/internal/decree/classify"
	"decree-workers/internal/decree/render"
	"decree-workers/internal/decree/sequence"
	"decree-workers/internal/decree/store"
	"decree-workers/internal/decree/templates"
	"decree-workers/internal/decree/verify"
	"decree-workers/internal/models"
	"decree-workers/pkg/registry"
)

type generateOptions struct {
	templateDir  string
	registryPath string
	configPath   string
	out          string
	start        int
	settings     models.Settings
}

func newGenerateCmd() *cobra.Command {
	var opts generateOptions
	cmd := &cobra.Command{
		Use:   "generate <candidates.yaml>",
		Short: "Generate a decree archive for a candidate list",
		Long: `Generates one decree per candidate and writes the zip archive.

Without --config the run is offline: decree records live in memory and the
sequence starts at --start (default 1). With --config the PostgreSQL decree
store and the Redis running counter of that deployment are used.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return runGenerate(ctx, cmd, args[0], opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.templateDir, "templates", "./templates", "directory holding <template-id>.docx files")
	f.StringVar(&opts.registryPath, "registry", "", "template registry manifest")
	f.StringVar(&opts.configPath, "config", "", "service config file; enables PostgreSQL and Redis")
	f.StringVarP(&opts.out, "out", "o", "", "archive path (default SK_<batch>.zip)")
	f.IntVar(&opts.start, "start", 0, "first sequence number")
	f.StringVar(&opts.settings.NumberFormat, "number-format", "", "decree number pattern")
	f.StringVar(&opts.settings.IssueDate, "issue-date", "", "issue date (default today)")
	f.StringVar(&opts.settings.IssuePlace, "issue-place", "", "issue place")
	f.StringVar(&opts.settings.VerifyBaseURL, "verify-url", "", "verification base URL")
	return cmd
}

func runGenerate(ctx context.Context, cmd *cobra.Command, path string, opts generateOptions) error {
	doc, err := readCandidates(path)
	if err != nil {
		return err
	}

	settings := opts.settings.Merge(doc.Settings)
	if opts.start > 0 {
		settings.StartSequence = opts.start
	}

	var (
		recorder verify.Recorder
		counter  sequence.Store
		qrSize   int
		qrPart   string
	)
	if opts.configPath != "" {
		cfg, err := config.LoadFromFile(opts.configPath)
		if err != nil {
			return err
		}
		settings = settings.Merge(cfg.Decree.Settings())
		qrSize, qrPart = cfg.Decree.QRSize, cfg.Decree.QRImagePart

		pg, err := database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		defer pg.Close()
		if err := pg.EnsureSchema(ctx); err != nil {
			return err
		}
		rdb, err := database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		defer rdb.Close()

		recorder = store.NewPostgresStore(pg.DB)
		counter = sequence.NewRedisStore(rdb.Client, cfg.Decree.CounterKey)
	} else {
		settings = settings.Merge(models.Settings{
			NumberFormat:  sequence.DefaultFormat,
			VerifyBaseURL: "https://sk.example.org",
		})
		recorder = &memoryRecorder{}
		counter = sequence.NewMemoryStore(1)
	}

	var selOpts []templates.Option
	if opts.registryPath != "" {
		reg, err := registry.LoadRegistry(opts.registryPath)
		if err != nil {
			return err
		}
		selOpts = append(selOpts, templates.WithRegistry(reg))
	}

	gen := batch.NewGenerator(
		classify.New(),
		templates.NewSelector(templates.LocalSource{Dir: opts.templateDir}, selOpts...),
		verify.NewLinker(recorder, settings.VerifyBaseURL, qrSize),
		render.New(qrPart),
		counter,
		cliLogger(),
	)

	res, runErr := gen.Run(ctx, batch.Request{Candidates: doc.Candidates, Settings: settings})
	if res == nil {
		return runErr
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "batch %s: %s, %d generated, %d failed", res.BatchID, res.State, res.SuccessCount, res.ErrorCount)
	if res.Skipped > 0 {
		fmt.Fprintf(out, ", %d skipped", res.Skipped)
	}
	fmt.Fprintln(out)
	for _, e := range res.Errors {
		fmt.Fprintf(out, "  #%d %s [%s] %s\n", e.Index+1, e.Name, e.Code, e.Err)
	}
	if runErr != nil {
		if errors.Is(runErr, apperrors.ErrBatchEmpty) {
			return fmt.Errorf("no decree was generated")
		}
		return runErr
	}

	target := opts.out
	if target == "" {
		target = fmt.Sprintf("SK_%s.zip", res.BatchID)
	}
	if err := os.WriteFile(target, res.Archive, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(out, "archive written to %s (next sequence %d)\n", target, res.NextSequence)
	if res.CounterErr != nil {
		fmt.Fprintf(out, "warning: %v\n", res.CounterErr)
	}
	return nil
}

// memoryRecorder keeps decree records for an offline run.
type memoryRecorder struct {
	mu      sync.Mutex
	decrees []models.Decree
}

func (m *memoryRecorder) Create(_ context.Context, d models.Decree) (models.Decree, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	d.CreatedAt = time.Now().UTC()
	m.decrees = append(m.decrees, d)
	return d, nil
}
