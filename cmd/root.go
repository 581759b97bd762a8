package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/StinkyLord/dbc-relational/internal/config"
	"github.com/StinkyLord/dbc-relational/internal/converter"
	"github.com/StinkyLord/dbc-relational/internal/logging"
)

const toolVersion = "1.0.0"

var (
	flagConfig        string
	flagCAN           string
	flagVTB           string
	flagARR           string
	flagReport        string
	flagDelimiter     string
	flagEncoding      string
	flagDecimal       string
	flagInputEncoding string
	flagLogLevel      string
	flagLogFormat     string
	flagVerbose       bool
)

var rootCmd = &cobra.Command{
	Use:   "dbc-relational",
	Short: "DBC to relational CSV converter",
	Long: `dbc-relational converts a CAN signal database (.dbc) into three
normalized tables for spreadsheet review:

  • <name>_CAN.csv: one row per signal
  • <name>_VTB.csv: one row per distinct value table (enumeration)
  • <name>_ARR.csv: one row per distinct code list or label list

Enumerations repeated across signals are stored once and referenced by
sequential identifiers; converting the same file twice yields identical output.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var convertCmd = &cobra.Command{
	Use:   "convert [file.dbc]",
	Short: "Convert a DBC file into CAN/VTB/ARR tables",
	Long: `Convert a DBC file into the CAN, VTB and ARR tables. The tables are
written next to the source file unless --can/--vtb/--arr are given. A table
with no rows is not written. When no file is given and the terminal is
interactive, the path is asked for.

Examples:
  dbc-relational convert vehicle.dbc
  dbc-relational convert vehicle.dbc --delimiter ';' --decimal-separator ','
  dbc-relational convert vehicle.dbc --can out/can.csv --vtb out/vtb.csv --arr out/arr.csv
  dbc-relational convert vehicle.dbc --report -`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConvert,
}

func init() {
	f := convertCmd.Flags()
	f.StringVarP(&flagConfig, "config", "c", "", "YAML configuration file")
	f.StringVar(&flagCAN, "can", "", "CAN table path (default <dir>/<name>_CAN.csv)")
	f.StringVar(&flagVTB, "vtb", "", "VTB table path (default <dir>/<name>_VTB.csv)")
	f.StringVar(&flagARR, "arr", "", "ARR table path (default <dir>/<name>_ARR.csv)")
	f.StringVar(&flagReport, "report", "", "Write a JSON conversion report to this path ('-' for stdout)")
	f.StringVarP(&flagDelimiter, "delimiter", "d", "", "Field delimiter (default ,)")
	f.StringVarP(&flagEncoding, "encoding", "e", "", "Output encoding: utf-8-sig, utf-8, windows-1252, ... (default utf-8-sig)")
	f.StringVar(&flagDecimal, "decimal-separator", "", "Decimal separator for numbers: . or , (default .)")
	f.StringVar(&flagInputEncoding, "input-encoding", "", "DBC file encoding: auto or an encoding name (default auto)")
	f.StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error (default info)")
	f.StringVar(&flagLogFormat, "log-format", "", "Log format: text or json (default text)")
	f.BoolVarP(&flagVerbose, "verbose", "v", false, "Enable verbose output (same as --log-level debug)")

	rootCmd.AddCommand(convertCmd)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := config.Resolve(flagConfig)
	if err != nil {
		return err
	}
	applyFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	logger := logging.Setup(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)

	var source string
	switch {
	case len(args) == 1:
		source = args[0]
	case term.IsTerminal(int(os.Stdin.Fd())):
		source, err = promptPath(os.Stdin, os.Stderr)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("no .dbc file given")
	}

	absSource, err := filepath.Abs(source)
	if err != nil {
		return fmt.Errorf("cannot resolve path %q: %w", source, err)
	}
	if err := validateSource(absSource); err != nil {
		return err
	}

	req := converter.DefaultRequest(absSource)
	if flagCAN != "" {
		req.CAN = flagCAN
	}
	if flagVTB != "" {
		req.VTB = flagVTB
	}
	if flagARR != "" {
		req.ARR = flagARR
	}
	if err := req.Validate(); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "dbc-relational v%s\n", toolVersion)
	fmt.Fprintf(os.Stderr, "Converting: %s\n", absSource)

	progress := newProgressLine(os.Stderr, term.IsTerminal(int(os.Stderr.Fd())), logger)
	result, err := converter.Convert(cmd.Context(), req, converter.Settings{
		InputEncoding: cfg.Input.Encoding,
		Output:        cfg.OutputOptions(),
		Logger:        logger,
		Progress:      progress.Update,
		ReportPath:    flagReport,
		ToolVersion:   toolVersion,
	})
	progress.Finish()
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Found %d message(s) and %d signal(s)\n", result.Messages, result.Signals)
	fmt.Fprintf(os.Stderr, "Rows: CAN=%d VTB=%d ARR=%d\n", result.CANRows, result.VTBRows, result.ARRRows)
	for _, p := range result.Written {
		fmt.Fprintf(os.Stderr, "Written: %s\n", p)
	}
	return nil
}

// applyFlags overrides configuration values with explicitly set flags.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	set := func(name string, dst *string, val string) {
		if cmd.Flags().Changed(name) {
			*dst = val
		}
	}
	set("delimiter", &cfg.Output.Delimiter, flagDelimiter)
	set("encoding", &cfg.Output.Encoding, flagEncoding)
	set("decimal-separator", &cfg.Output.DecimalSeparator, flagDecimal)
	set("input-encoding", &cfg.Input.Encoding, flagInputEncoding)
	set("log-level", &cfg.Logging.Level, flagLogLevel)
	set("log-format", &cfg.Logging.Format, flagLogFormat)
	if flagVerbose {
		cfg.Logging.Level = "debug"
	}
}

// validateSource checks that path is an existing regular file with a .dbc
// extension.
func validateSource(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("file %q does not exist: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%q is not a regular file", path)
	}
	if strings.ToLower(filepath.Ext(path)) != ".dbc" {
		return fmt.Errorf("%q is not a .dbc file", path)
	}
	return nil
}
