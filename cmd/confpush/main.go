// Confpush - spreadsheet-driven network device configuration
//
// Reads device jobs from a CSV or XLSX import file and pushes each row's
// command set to its device over SSH or Telnet, one device at a time:
//
//	confpush change-2041.csv           # push implementation commands, save
//	confpush -v change-2041.csv        # push, show verification, confirm save
//	confpush -r change-2041.csv        # push rollback commands instead
//	confpush --dry-run change-2041.csv # print the plan, touch nothing
//
// Import file columns:
//
//	DeviceName | OS_Type | Implementation_Cmds | Rollback_Cmds | Verification_Cmds
//
// Commands within a cell are newline-separated. OS_Type is one of cisco_ios,
// cisco_ios_telnet, cisco_asa, juniper.
//
// One credential set covers the run: the username defaults to the invoking
// OS user, the password comes from CONFPUSH_PASSWORD or a prompt. Outcomes
// are appended to a JSON-lines run log (confpush.log by default).
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/confpush/confpush/pkg/config"
	"github.com/confpush/confpush/pkg/credentials"
	"github.com/confpush/confpush/pkg/inventory"
	"github.com/confpush/confpush/pkg/report"
	"github.com/confpush/confpush/pkg/runner"
	"github.com/confpush/confpush/pkg/util"
	"github.com/confpush/confpush/pkg/version"
)

var (
	// Mode flags
	verifyMode   bool // -v, --verify
	rollbackMode bool // -r, --rollback
	dryRun       bool

	// Option flags
	username   string
	logPath    string
	configPath string
	debug      bool
	jsonOutput bool

	// Global state
	cfg *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "confpush <import_file>",
	Short:         "Push spreadsheet-defined configuration to network devices",
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	Long: `Confpush reads device jobs from a CSV or XLSX import file and pushes each
row's commands to its device over SSH or Telnet, sequentially and in row
order. A device that fails is reported and the run continues with the next.

By default the new configuration is saved immediately. With -v the
verification commands run first and the save waits for confirmation. With -r
the rollback column is pushed instead of the implementation column.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if debug {
			util.SetLogLevel("debug")
		} else {
			util.SetLogLevel("warn")
		}

		path := configPath
		if path == "" {
			path = config.DefaultPath()
		}
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		if username != "" {
			cfg.Username = username
		}
		if logPath != "" {
			cfg.LogPath = logPath
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(args[0])
	},
}

func init() {
	rootCmd.Flags().BoolVarP(&verifyMode, "verify", "v", false, "Show verification output and confirm before saving")
	rootCmd.Flags().BoolVarP(&rollbackMode, "rollback", "r", false, "Push rollback commands instead of implementation commands")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the command plan without contacting any device")
	rootCmd.Flags().StringVarP(&username, "username", "u", "", "Login username (default: invoking OS user)")
	rootCmd.Flags().StringVar(&logPath, "log", "", "Run log path (default: confpush.log)")
	rootCmd.Flags().StringVar(&configPath, "config", "", "Config file (default: ~/.confpush/config.yaml)")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "Debug logging")
	rootCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print results as JSON instead of the summary table")

	rootCmd.AddCommand(versionCmd)
}

func run(importFile string) error {
	jobs, err := inventory.Load(importFile)
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		return fmt.Errorf("%s: no device rows found", importFile)
	}

	opts := runner.Options{
		Rollback:    rollbackMode,
		ConfirmSave: verifyMode,
		DryRun:      dryRun,
	}

	var creds credentials.Credentials
	var runLog report.Logger = report.Discard{}
	if !dryRun {
		creds, err = credentials.Resolve(cfg.Username, cfg.EnableSecret)
		if err != nil {
			return err
		}
		fl, err := report.NewFileLogger(cfg.LogPath, report.RotationConfig{
			MaxSize:    10 * 1024 * 1024,
			MaxBackups: 10,
		})
		if err != nil {
			return fmt.Errorf("opening run log: %w", err)
		}
		defer fl.Close()
		runLog = fl
	}

	r := runner.New(opts, cfg, creds, runLog)
	events := r.Run(context.Background(), jobs)

	// Per-device failures are already reported and logged; only a fatal load
	// error changes the exit code.
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(events)
	}
	fmt.Println()
	report.WriteSummary(os.Stdout, events)
	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		if version.Version == "dev" {
			fmt.Println("confpush dev build (use 'make build' for version info)")
		} else {
			fmt.Printf("confpush %s\n", version.Info())
		}
	},
}
