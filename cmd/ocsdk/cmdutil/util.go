// Package cmdutil provides shared utilities for ocsdk commands.
package cmdutil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/marmos91/opencode-sdk/internal/cli/output"
	"github.com/marmos91/opencode-sdk/internal/cli/prompt"
	"github.com/marmos91/opencode-sdk/internal/logger"
	"github.com/marmos91/opencode-sdk/internal/state"
	"github.com/marmos91/opencode-sdk/pkg/apiclient"
	"github.com/marmos91/opencode-sdk/pkg/config"
	"github.com/marmos91/opencode-sdk/pkg/lifecycle"
	"github.com/marmos91/opencode-sdk/pkg/metrics"
	"github.com/marmos91/opencode-sdk/pkg/opencode"
)

// Flags stores global flag values accessible by subcommands.
var Flags = &GlobalFlags{}

// GlobalFlags holds the global flag values.
type GlobalFlags struct {
	ConfigFile string
	URL        string
	Output     string
	NoColor    bool
	Verbose    bool
	Ephemeral  bool
}

var (
	loaded *config.Config

	// StateDir overrides the server state directory. Empty uses the
	// per-user default.
	StateDir string

	startedNow = func() time.Time { return time.Now().UTC() }
)

// SetConfig installs the configuration resolved by the root command.
func SetConfig(cfg *config.Config) {
	loaded = cfg
}

// GetConfig returns the resolved configuration, or defaults when the
// command skipped loading.
func GetConfig() *config.Config {
	if loaded == nil {
		return config.GetDefaultConfig()
	}
	return loaded
}

// ApplyFlagOverrides copies global flags onto cfg. Flags beat every other
// configuration source.
func ApplyFlagOverrides(cfg *config.Config) {
	if Flags.URL != "" {
		cfg.Server.URL = Flags.URL
	}
	if Flags.Verbose {
		cfg.Logging.Level = "DEBUG"
	}
}

// StateStore returns the store for the background server record.
func StateStore() *state.Store {
	return state.NewStore(StateDir)
}

// ConnectOptions builds opencode.Options from the resolved configuration.
// A detached server needs somewhere to write once this process exits, so
// output goes to the state log file unless configured otherwise.
func ConnectOptions(cfg *config.Config) opencode.Options {
	opts := opencode.OptionsFromConfig(cfg)
	opts.Ephemeral = Flags.Ephemeral

	if opts.Lifecycle.LogFile == "" && !opts.Lifecycle.Silent {
		store := StateStore()
		if err := store.EnsureDir(); err == nil {
			opts.Lifecycle.LogFile = store.LogPath()
		} else {
			opts.Lifecycle.Silent = true
		}
	}

	log := logger.Component("lifecycle")
	opts.Logger = log
	opts.Manager = lifecycle.New(
		lifecycle.WithLogger(log),
		lifecycle.WithMetrics(metrics.NewLifecycleMetrics()),
	)
	return opts
}

// Connect opens a client for the resolved configuration, starting a local
// server when allowed.
func Connect(ctx context.Context) (*opencode.Instance, error) {
	return Open(ctx, ConnectOptions(GetConfig()))
}

// Open runs opencode.Open and records a persistent server it started so
// "ocsdk server stop" can find it later.
func Open(ctx context.Context, opts opencode.Options) (*opencode.Instance, error) {
	inst, err := opencode.Open(ctx, opts)
	if err != nil {
		return nil, err
	}

	if inst.Started() && !opts.Ephemeral {
		rec := &state.Server{
			PID:       inst.Server.PID(),
			BaseURL:   inst.BaseURL,
			Command:   opts.Lifecycle.Command,
			LogFile:   opts.Lifecycle.LogFile,
			StartedAt: startedNow(),
		}
		if err := StateStore().Save(rec); err != nil {
			logger.Warn("failed to record started server", logger.KeyPID, rec.PID, logger.KeyError, err)
		}
	}
	return inst, nil
}

// WithClient connects, runs fn with the client and closes the connection.
// An ephemeral server started by Connect is stopped afterwards.
func WithClient(cmd *cobra.Command, fn func(*apiclient.Client) error) error {
	inst, err := Connect(cmd.Context())
	if err != nil {
		return err
	}
	defer func() {
		if err := inst.Close(); err != nil {
			logger.Warn("failed to stop server", logger.KeyError, err)
		}
	}()
	return fn(inst.Client)
}

// GetOutputFormatParsed returns the parsed output format.
func GetOutputFormatParsed() (output.Format, error) {
	return output.ParseFormat(Flags.Output)
}

// IsColorDisabled returns whether color output is disabled.
func IsColorDisabled() bool {
	return Flags.NoColor || !logger.IsTerminal(os.Stdout)
}

// Printer returns a table-format printer on w for status messages.
func Printer(w io.Writer) *output.Printer {
	return output.NewPrinter(w, output.FormatTable, !IsColorDisabled())
}

// PrintOutput prints data in the selected format. For table format it
// prints emptyMsg instead of an empty table.
func PrintOutput(w io.Writer, data any, isEmpty bool, emptyMsg string, tableRenderer output.TableRenderer) error {
	format, err := GetOutputFormatParsed()
	if err != nil {
		return err
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(w, data)
	case output.FormatYAML:
		return output.PrintYAML(w, data)
	default:
		if isEmpty {
			_, _ = fmt.Fprintln(w, emptyMsg)
			return nil
		}
		return output.PrintTable(w, tableRenderer)
	}
}

// PrintResource prints data as JSON/YAML, or calls renderTable for table
// output.
func PrintResource(w io.Writer, data any, renderTable func(io.Writer) error) error {
	format, err := GetOutputFormatParsed()
	if err != nil {
		return err
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(w, data)
	case output.FormatYAML:
		return output.PrintYAML(w, data)
	default:
		return renderTable(w)
	}
}

// PrintResourceWithSuccess prints data as JSON/YAML, or a success message
// for table output.
func PrintResourceWithSuccess(w io.Writer, data any, successMsg string) error {
	return PrintResource(w, data, func(io.Writer) error {
		PrintSuccess(successMsg)
		return nil
	})
}

// PrintSuccess prints a success message if the output format is table.
func PrintSuccess(msg string) {
	format, err := GetOutputFormatParsed()
	if err != nil || format != output.FormatTable {
		return
	}
	Printer(os.Stdout).Success(msg)
}

// RunDeleteWithConfirmation prompts for confirmation (unless force is
// true) and runs deleteFn.
func RunDeleteWithConfirmation(resourceType, name string, force bool, deleteFn func() error) error {
	confirmed, err := prompt.ConfirmWithForce(fmt.Sprintf("Delete %s '%s'?", resourceType, name), force)
	if err != nil {
		if prompt.IsAborted(err) {
			fmt.Println("\nAborted.")
			return nil
		}
		if errors.Is(err, prompt.ErrNotInteractive) {
			return fmt.Errorf("refusing to delete %s '%s' without confirmation; use --force", resourceType, name)
		}
		return err
	}
	if !confirmed {
		fmt.Println("Aborted.")
		return nil
	}

	if err := deleteFn(); err != nil {
		return err
	}

	PrintSuccess(fmt.Sprintf("%s '%s' deleted successfully", resourceType, name))
	return nil
}

// HandleAbort returns nil for a user abort (Ctrl+C) after printing a
// message, otherwise err.
func HandleAbort(err error) error {
	if prompt.IsAborted(err) {
		fmt.Println("\nAborted.")
		return nil
	}
	return err
}

// BoolToYesNo converts a boolean to "yes" or "no".
func BoolToYesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// EmptyOr returns value, or fallback when value is empty.
func EmptyOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// skipConfigAnnotation marks commands that must run without loading the
// configuration file, such as "config init" on a broken file.
const skipConfigAnnotation = "ocsdk/skip-config"

// SkipConfig marks cmd so the root command does not load the configuration.
func SkipConfig(cmd *cobra.Command) {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[skipConfigAnnotation] = "true"
}

// SkipsConfig reports whether cmd or one of its parents was marked with
// SkipConfig.
func SkipsConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[skipConfigAnnotation] == "true" {
			return true
		}
	}
	return false
}
