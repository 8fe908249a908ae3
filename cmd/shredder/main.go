// Command shredder is the thin CLI driver for the shredding engine: it
// only constructs an Engine and calls its public methods, never
// embedding erasure logic itself.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"fileshredder_enterprise/internal/config"
	"fileshredder_enterprise/internal/engine"
	"fileshredder_enterprise/internal/fileeraser"
	"fileshredder_enterprise/internal/logging"
	"fileshredder_enterprise/internal/partition"
	"fileshredder_enterprise/internal/reporting"
	"fileshredder_enterprise/internal/store"
	"fileshredder_enterprise/internal/volumeops"
)

const (
	appName = "File Shredder"

	exitSuccess = 0
	exitError   = 1
)

var (
	configPath  string
	verbose     bool
	profileName string

	cfg    *config.Config
	logger *logging.EnterpriseLogger
)

var rootCmd = &cobra.Command{
	Use:     "shredder",
	Short:   "Secure file shredding engine",
	Long:    "Submits, removes and securely erases files via repeated logical-block overwrite.",
	Version: "1.0.0",
}

var submitCmd = &cobra.Command{
	Use:   "submit [paths...]",
	Short: "Queue paths for shredding",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSubmit,
}

var removeCmd = &cobra.Command{
	Use:   "remove [paths...]",
	Short: "Drop queued paths",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRemove,
}

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Drop every queued path",
	RunE:  runClean,
}

var cleanUserCmd = &cobra.Command{
	Use:   "clean-user",
	Short: "Drop only user-submitted paths",
	RunE:  runCleanUser,
}

var eraseCmd = &cobra.Command{
	Use:   "erase",
	Short: "Shred every queued file and directory",
	RunE:  runErase,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "List what is currently queued",
	RunE:  runStatus,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().StringVar(&profileName, "profile", "", "performance profile (safe/balanced/aggressive/fast/sdelete)")

	submitCmd.Flags().Bool("system", false, "mark submitted paths as system-added")

	rootCmd.AddCommand(submitCmd, removeCmd, cleanCmd, cleanUserCmd, eraseCmd, statusCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		color.Red("error: %v", err)
		os.Exit(exitError)
	}
	os.Exit(exitSuccess)
}

func loadContext() error {
	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if profileName != "" {
		if err := config.ApplyProfile(cfg, profileName); err != nil {
			return fmt.Errorf("apply profile %s: %w", profileName, err)
		}
	}

	logger, err = logging.NewEnterpriseLogger(cfg, verbose)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	return nil
}

func buildEngine() (*engine.Engine, *store.Store, error) {
	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}

	method := parseMethod(cfg.Engine.Method)

	eng, err := engine.New(engine.Config{
		ThreadNumber:       cfg.Engine.ThreadNumber,
		MultithreadedErase: cfg.Engine.MultithreadedErase,
		NTFSErase:          cfg.Engine.NTFSErase,
		Method:             method,
	}, engine.Deps{
		Store:     st,
		Partition: partition.New(),
		VolumeOps: volumeops.New(),
		Logger:    logger,
	})
	if err != nil {
		st.Close()
		return nil, nil, fmt.Errorf("construct engine: %w", err)
	}
	return eng, st, nil
}

func parseMethod(name string) fileeraser.Method {
	switch name {
	case "full":
		return fileeraser.MethodFull
	case "random":
		return fileeraser.MethodRandom
	case "begin_end":
		return fileeraser.MethodBeginEnd
	default:
		return fileeraser.MethodSmart
	}
}

func runSubmit(cmd *cobra.Command, args []string) error {
	if err := loadContext(); err != nil {
		return err
	}
	defer logger.Close()

	eng, st, err := buildEngine()
	if err != nil {
		return err
	}
	defer st.Close()

	systemAdded, _ := cmd.Flags().GetBool("system")

	for _, path := range args {
		if err := eng.Submit(path, systemAdded, false, nil); err != nil {
			color.Yellow("skip %s: %v", path, err)
			continue
		}
		color.Green("queued %s", path)
	}
	return nil
}

func runRemove(cmd *cobra.Command, args []string) error {
	if err := loadContext(); err != nil {
		return err
	}
	defer logger.Close()

	eng, st, err := buildEngine()
	if err != nil {
		return err
	}
	defer st.Close()

	for _, path := range args {
		if err := eng.Remove(path); err != nil {
			color.Yellow("skip %s: %v", path, err)
			continue
		}
		color.Green("removed %s", path)
	}
	return nil
}

func runClean(cmd *cobra.Command, args []string) error {
	if err := loadContext(); err != nil {
		return err
	}
	defer logger.Close()

	eng, st, err := buildEngine()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := eng.Clean(); err != nil {
		return err
	}
	color.Green("work list cleared")
	return nil
}

func runCleanUser(cmd *cobra.Command, args []string) error {
	if err := loadContext(); err != nil {
		return err
	}
	defer logger.Close()

	eng, st, err := buildEngine()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := eng.CleanUserFiles(); err != nil {
		return err
	}
	color.Green("user-submitted entries cleared")
	return nil
}

func runErase(cmd *cobra.Command, args []string) error {
	if err := loadContext(); err != nil {
		return err
	}
	defer logger.Close()

	eng, st, err := buildEngine()
	if err != nil {
		return err
	}
	defer st.Close()

	if cfg.Engine.NTFSErase && !config.IsAdmin() {
		color.Yellow("not running elevated: NTFS journal purge will likely fail")
	}

	startTime := time.Now()
	builder := reporting.NewBuilder(startTime)

	result, err := eng.EraseFiles()
	if err != nil {
		return fmt.Errorf("erase files: %w", err)
	}
	builder.RecordShredResult(result)

	report := builder.Finish(cfg, time.Now())
	if err := reporting.Save(report, cfg); err != nil {
		color.Yellow("report not saved: %v", err)
	}

	color.Green("erased %d files (%s), %d directories, %d journals purged in %s",
		report.FilesErased, humanize.Bytes(uint64(report.BytesProcessed)),
		report.DirectoriesErased, report.NTFSVolumesPurged, report.Duration)
	if len(report.Failures) > 0 {
		color.Yellow("%d item(s) failed, see report for details", len(report.Failures))
	}
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	if err := loadContext(); err != nil {
		return err
	}
	defer logger.Close()

	eng, st, err := buildEngine()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := eng.ReadTable(); err != nil {
		return err
	}

	files := eng.FilesPrepared()
	dirs := eng.DirectoriesPrepared()

	fmt.Printf("%s — %d files, %d directories queued\n", appName, len(files), len(dirs))
	for path, ent := range files {
		fmt.Printf("  %-60s entropy=%6.3f\n", path, ent)
	}
	for _, d := range dirs {
		fmt.Printf("  %-60s (directory)\n", d)
	}
	fmt.Printf("%s queued for removal\n", humanize.Comma(int64(len(files)+len(dirs))))
	return nil
}
