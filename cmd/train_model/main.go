package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"studyplan/config"
	"studyplan/db"
	"studyplan/logging"
	"studyplan/ml"
	"studyplan/predictor"
)

var flags = struct {
	config         string
	samples        int
	seed           uint64
	splitSeed      uint64
	testRatio      float64
	estimators     int
	maxDepth       int
	minSamplesLeaf int
	workers        int
	modelPath      string
	historyDB      string
	history        int
}{}

// CMD trains the study time model and writes the artifact the server loads.
var CMD = &cobra.Command{
	Use:   "train_model",
	Short: "Train the study time random forest on synthetic data",
	Args:  cobra.NoArgs,
	RunE:  run,

	SilenceUsage: true,
}

func init() {
	f := CMD.Flags()
	f.StringVarP(&flags.config, "config", "c", "", "config file (default $"+config.EnvPath+" or config.yaml)")
	f.IntVarP(&flags.samples, "samples", "n", 0, "number of synthetic samples (overwrites training.samples)")
	f.Uint64Var(&flags.seed, "seed", 0, "data and forest seed (overwrites training.seed)")
	f.Uint64Var(&flags.splitSeed, "split-seed", 0, "train/test split seed (overwrites training.split_seed)")
	f.Float64Var(&flags.testRatio, "test-ratio", 0, "held-out fraction (overwrites training.test_ratio)")
	f.IntVarP(&flags.estimators, "estimators", "e", 0, "number of trees (overwrites training.n_estimators)")
	f.IntVar(&flags.maxDepth, "max-depth", 0, "tree depth limit, 0 for none (overwrites training.max_depth)")
	f.IntVar(&flags.minSamplesLeaf, "min-samples-leaf", 0, "minimum samples per leaf (overwrites training.min_samples_leaf)")
	f.IntVarP(&flags.workers, "workers", "w", 0, "trees fitted in parallel, 0 for GOMAXPROCS (overwrites training.workers)")
	f.StringVarP(&flags.modelPath, "model-path", "m", "", "artifact output path (overwrites ml.model_path)")
	f.StringVar(&flags.historyDB, "history-db", "", "training history database, empty to disable (overwrites training.history_db)")
	f.IntVar(&flags.history, "history", 0, "print the last N recorded runs and exit")
}

func main() {
	if err := CMD.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	path := config.ResolvePath(flags.config)
	cfg, _, err := config.LoadOrDefault(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	overwrite(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, _, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if flags.history > 0 {
		return printHistory(ctx, cmd.OutOrStdout(), cfg.Training.HistoryDB, flags.history)
	}

	model, report, err := ml.TrainStudyModel(ctx, cfg.TrainingRun(), logger)
	if err != nil {
		logger.Error("training failed", zap.Error(err))
		return err
	}
	recordRun(ctx, cfg.Training.HistoryDB, report, logger)

	out := cmd.OutOrStdout()
	printReport(out, report)
	return printExample(out, model, ml.StudyPlan{NumSubjects: 3, HoursPerDay: 4, NumTopics: 25, NumDays: 30})
}

// overwrite applies the flags the user set on top of the file configuration.
func overwrite(cmd *cobra.Command, cfg *config.Config) {
	changed := cmd.Flags().Changed
	t := &cfg.Training
	if changed("samples") {
		t.Samples = flags.samples
	}
	if changed("seed") {
		t.Seed = flags.seed
	}
	if changed("split-seed") {
		t.SplitSeed = flags.splitSeed
	}
	if changed("test-ratio") {
		t.TestRatio = flags.testRatio
	}
	if changed("estimators") {
		t.NEstimators = flags.estimators
	}
	if changed("max-depth") {
		t.MaxDepth = flags.maxDepth
	}
	if changed("min-samples-leaf") {
		t.MinSamplesLeaf = flags.minSamplesLeaf
	}
	if changed("workers") {
		t.Workers = flags.workers
	}
	if changed("history-db") {
		t.HistoryDB = flags.historyDB
	}
	if changed("model-path") {
		cfg.ML.ModelPath = flags.modelPath
	}
}

// recordRun appends the run to the history database. The artifact is already written,
// so a failure here is only logged.
func recordRun(ctx context.Context, path string, report ml.TrainingReport, logger *zap.Logger) {
	if path == "" {
		return
	}
	store, err := db.Open(path)
	if err != nil {
		logger.Warn("training history unavailable", zap.String("path", path), zap.Error(err))
		return
	}
	defer store.Close()

	id, err := store.Record(ctx, db.FromReport(report))
	if err != nil {
		logger.Warn("failed to record training run", zap.Error(err))
		return
	}
	logger.Info("training run recorded", zap.Int64("id", id), zap.String("path", path))
}

func printHistory(ctx context.Context, w io.Writer, path string, limit int) error {
	if path == "" {
		return fmt.Errorf("no history database configured")
	}
	store, err := db.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.Recent(ctx, limit)
	if err != nil {
		return err
	}
	p := message.NewPrinter(language.English)
	if len(runs) == 0 {
		p.Fprintf(w, "No training runs recorded in %s\n", path)
		return nil
	}
	for _, r := range runs {
		p.Fprintf(w, "#%d  %s  %s  trees=%d samples=%d seed=%d  MAE=%.2f  R2=%.2f  %dms\n",
			r.ID, r.TrainedAt.Format("2006-01-02 15:04:05"), r.ModelType,
			r.Estimators, r.Samples, r.Seed, r.MAE, r.R2, r.DurationMS)
	}
	return nil
}

func printReport(w io.Writer, report ml.TrainingReport) {
	p := message.NewPrinter(language.English)
	p.Fprintf(w, "Generated %d training samples\n", report.Samples)
	p.Fprintf(w, "Training rows: %d, testing rows: %d\n", report.TrainSize, report.TestSize)
	p.Fprintf(w, "Trained %s with %d trees (seed %d) in %v\n",
		report.ModelType, report.NEstimators, report.Seed, report.Duration.Round(time.Millisecond))
	p.Fprintf(w, "\nModel Evaluation:\n")
	p.Fprintf(w, "Mean Absolute Error (MAE): %.2f minutes\n", report.Evaluation.MAE)
	p.Fprintf(w, "R-squared (R2) Score: %.2f\n", report.Evaluation.R2)
	p.Fprintf(w, "\nModel saved to %s\n", report.ModelPath)
}

// printExample runs the freshly trained model on one plan with the same unit
// conversion the server applies.
func printExample(w io.Writer, model ml.Regressor, plan ml.StudyPlan) error {
	raw, err := model.Predict(ml.FeatureVector(plan))
	if err != nil {
		return fmt.Errorf("example prediction: %w", err)
	}
	minutes := predictor.PredictedMinutes(raw)
	perTopic := predictor.AverageMinutesPerTopic(minutes, plan.NumTopics)
	var daily float64
	if plan.NumDays > 0 {
		daily = float64(minutes) / float64(plan.NumDays)
	}

	p := message.NewPrinter(language.English)
	p.Fprintf(w, "\n--- Example Prediction ---\n")
	p.Fprintf(w, "Input: Subjects=%d, Hours/Day=%v, Topics=%d, Days=%d\n",
		plan.NumSubjects, plan.HoursPerDay, plan.NumTopics, plan.NumDays)
	p.Fprintf(w, "Recommended Total Study Minutes: %d minutes\n", minutes)
	p.Fprintf(w, "Which is approximately %.2f hours over %d days.\n", predictor.MinutesToHours(float64(minutes)), plan.NumDays)
	p.Fprintf(w, "Average daily study minutes: %.2f minutes\n", daily)
	p.Fprintf(w, "Average time per topic: %.2f minutes\n", perTopic)
	return nil
}
