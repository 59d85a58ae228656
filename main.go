package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/NeverVane/stockcatalog/internal/app"
	"github.com/NeverVane/stockcatalog/internal/config"
	"github.com/NeverVane/stockcatalog/internal/convert"
	"github.com/NeverVane/stockcatalog/internal/loader"
	"github.com/NeverVane/stockcatalog/internal/logger"
	"github.com/NeverVane/stockcatalog/internal/output"
	"github.com/NeverVane/stockcatalog/internal/search"
	"github.com/NeverVane/stockcatalog/internal/sentry"
	"github.com/NeverVane/stockcatalog/internal/tui"
	"github.com/NeverVane/stockcatalog/internal/view"
)

var (
	version = "0.1.0"
	commit  = "dev"
	date    = "unknown"
)

// skipConfig marks commands that must run without a valid config file
const skipConfig = "skip-config"

// cli carries what PersistentPreRunE prepares for the subcommands
type cli struct {
	cfg       *config.Config
	formatter *output.Formatter
}

func main() {
	defer func() {
		if r := recover(); r != nil {
			sentry.Recover(r)
			sentry.Flush(2 * time.Second)
			fmt.Fprintf(os.Stderr, "stk encountered a fatal error: %v\n", r)
			os.Exit(1)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := &cli{}
	err := rootCmd(c).ExecuteContext(ctx)

	sentry.Flush(2 * time.Second)
	sentry.Close()

	if err != nil {
		var se *shownError
		if !errors.As(err, &se) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		stop()
		os.Exit(1)
	}
}

// shownError wraps an error the command already printed
type shownError struct {
	err error
}

func (e *shownError) Error() string { return e.err.Error() }
func (e *shownError) Unwrap() error { return e.err }

func shown(err error) error {
	return &shownError{err: err}
}

func rootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:   "stk [query]",
		Short: "Stock catalog viewer",
		Long: `stk looks up products in the exported stock snapshots.

A query of digits only matches the product code exactly; anything else, or a
query starting with %, matches descriptions:
  stk 1234
  stk search %leite
  stk convert planilhas/ -o data/ --stamp`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTUI(cmd, strings.Join(args, " "))
		},
	}

	root.PersistentFlags().String("config", "", "Config file (default: ~/.config/stockcatalog/config.toml)")
	root.PersistentFlags().Bool("verbose", false, "Enable verbose output")
	root.PersistentFlags().BoolP("quiet", "q", false, "Only print results and errors")
	root.PersistentFlags().Bool("no-color", false, "Disable colored output")
	root.Flags().Bool("fuzzy", false, "Start with fuzzy description matching")

	root.CompletionOptions.DisableDefaultCmd = true

	root.AddCommand(tuiCmd(c))
	root.AddCommand(searchCmd(c))
	root.AddCommand(convertCmd(c))
	root.AddCommand(configCmd(c))
	root.AddCommand(versionCmd(c))

	return root
}

// setup loads the config and starts logging and error monitoring
func (c *cli) setup(cmd *cobra.Command) error {
	configPath, _ := cmd.Flags().GetString("config")
	verbose, _ := cmd.Flags().GetBool("verbose")
	quiet, _ := cmd.Flags().GetBool("quiet")
	noColor, _ := cmd.Flags().GetBool("no-color")
	if verbose && quiet {
		return fmt.Errorf("--verbose and --quiet cannot be used together")
	}

	if cmd.Annotations[skipConfig] == "true" {
		c.cfg = config.DefaultConfig()
	} else {
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		c.cfg = cfg
	}

	logCfg := logger.FromConfig(&c.cfg.Logging)
	if isTUI(cmd) {
		// the alternate screen owns the terminal
		logCfg.Output = c.cfg.TUI.LogFile
		if logCfg.Output == "" {
			logCfg.Output = "discard"
		}
		logCfg.Color = false
	}
	if verbose {
		logCfg.Level = "debug"
	}
	if err := logger.Init(logCfg); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.GetLogger().Config().Debug().
		Str("metadata", c.cfg.MetadataLocation()).
		Int("sources", len(c.cfg.Data.Sources)).
		Str("timezone", c.cfg.Location().String()).
		Msg("Configuration loaded")

	if err := sentry.Initialize(sentry.ConfigFrom(c.cfg), version, commit, date); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to initialize error monitoring: %v\n", err)
	}
	if sentry.IsEnabled() {
		logger.AddHook(sentry.NewBreadcrumbHook(zerolog.InfoLevel))
	}

	c.formatter = output.NewFormatter(c.cfg)
	c.formatter.SetFlags(verbose, quiet, noColor)
	c.formatter.SetOutput(cmd.OutOrStdout(), cmd.ErrOrStderr())
	return nil
}

func isTUI(cmd *cobra.Command) bool {
	return cmd.Name() == "tui" || !cmd.HasParent()
}

func (c *cli) runTUI(cmd *cobra.Command, query string) error {
	opts := tui.OptionsFromConfig(c.cfg)
	opts.InitialQuery = query
	if cmd.Flags().Changed("fuzzy") {
		opts.Fuzzy, _ = cmd.Flags().GetBool("fuzzy")
	}

	if err := tui.Launch(cmd.Context(), loader.FromConfig(c.cfg).Load, opts); err != nil {
		c.formatter.Error("%v", err)
		return shown(err)
	}
	return nil
}

// tuiCmd launches the interactive screen
func tuiCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tui [query]",
		Short: "Launch the interactive lookup screen",
		Long: `Launch the interactive lookup screen. The snapshot is loaded in the
background; an initial query is searched as soon as it is ready.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTUI(cmd, strings.Join(args, " "))
		},
	}

	cmd.Flags().Bool("fuzzy", false, "Start with fuzzy description matching")
	return cmd
}

// searchCmd runs one search and prints the matching products
func searchCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the snapshot once and print the results",
		Long: `Search the snapshot once and print the results.

A query of digits only matches the product code exactly. Any other query, or
one starting with %, matches descriptions (case-insensitive substring).`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			fuzzy := c.cfg.Search.FuzzyEnabled
			if cmd.Flags().Changed("fuzzy") {
				fuzzy, _ = cmd.Flags().GetBool("fuzzy")
			}
			query := strings.Join(args, " ")

			c.formatter.Load("Carregando dados...")
			snap, err := loader.FromConfig(c.cfg).Load(cmd.Context())
			if err != nil {
				sentry.WithComponent("loader").CaptureError(err, "load")
				c.formatter.Error("%s: %v", view.LoadFailedHeader, err)
				return shown(err)
			}

			sentry.WithComponent("loader").AddBreadcrumb("Snapshot loaded", "info", map[string]interface{}{
				"load_id": snap.LoadID,
				"rows":    len(snap.Rows),
			})

			ctrl := app.NewController(snap, app.Options{
				Fuzzy: search.FuzzyOptions{Fuzziness: c.cfg.Search.Fuzziness},
			})
			defer ctrl.Close()

			state := app.Type(app.State{Fuzzy: fuzzy}, query)
			if jsonOut {
				return output.PrintJSON(c.formatter.Writer(), ctrl.Matches(state))
			}

			_, v := ctrl.Search(state)
			if v.State != view.StateResults && c.formatter.IsQuiet() {
				return nil
			}
			c.formatter.Verbose("Atualizado em: %s", snap.UpdatedAt)
			return c.formatter.NewCardPrinter().Print(c.formatter.Writer(), v)
		},
	}

	cmd.Flags().Bool("json", false, "Print matching rows as JSON")
	cmd.Flags().Bool("fuzzy", false, "Tolerate typos in description queries")
	return cmd
}

// convertCmd turns spreadsheets into dataset JSON
func convertCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert <xlsx|dir>...",
		Short: "Convert .xlsx workbooks to dataset JSON",
		Long: `Convert .xlsx workbooks to the dataset JSON the viewer loads.

By default each workbook becomes <name>.json holding every sheet; --split writes
<name>__<sheet>.json per sheet instead. Directories are scanned for .xlsx files.`,
		Args:        cobra.MinimumNArgs(1),
		Annotations: map[string]string{skipConfig: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath, _ := cmd.Flags().GetString("config"); configPath != "" {
				cfg, err := config.Load(configPath)
				if err != nil {
					return err
				}
				c.cfg = cfg
			}

			opts := convert.OptionsFromConfig(c.cfg)
			opts.OutDir, _ = cmd.Flags().GetString("out")
			opts.Recursive, _ = cmd.Flags().GetBool("recursive")
			opts.Sheets, _ = cmd.Flags().GetStringSlice("sheets")
			opts.Split, _ = cmd.Flags().GetBool("split")
			if cmd.Flags().Changed("header-row") {
				opts.HeaderRow, _ = cmd.Flags().GetInt("header-row")
			}
			if cmd.Flags().Changed("indent") {
				opts.Indent, _ = cmd.Flags().GetInt("indent")
			}

			written, err := convert.New(opts).Run(cmd.Context(), args)
			for _, path := range written {
				c.formatter.Convert("Gerado: %s", path)
			}
			sentry.WithComponent("convert").AddBreadcrumb("Workbooks converted", "info", map[string]interface{}{
				"inputs": len(args),
				"files":  len(written),
			})
			if err != nil {
				if errors.Is(err, convert.ErrLegacyWorkbook) {
					c.formatter.Tip("Abra o arquivo no Excel ou LibreOffice e salve como .xlsx")
				}
				c.formatter.Error("%v", err)
				return shown(err)
			}

			if stamp, _ := cmd.Flags().GetBool("stamp"); stamp {
				dir := opts.OutDir
				if dir == "" {
					dir = filepath.Dir(written[0])
				}
				path, err := convert.WriteStamp(dir, time.Now(), opts.Indent)
				if err != nil {
					c.formatter.Error("%v", err)
					return shown(err)
				}
				c.formatter.Convert("Gerado: %s", path)
			}

			c.formatter.Done("%d arquivo(s) gerado(s)", len(written))
			return nil
		},
	}

	cmd.Flags().StringP("out", "o", "", "Output directory (default: next to each workbook)")
	cmd.Flags().BoolP("recursive", "r", false, "Scan directories recursively")
	cmd.Flags().Int("header-row", 0, "0-based index of the header row")
	cmd.Flags().Int("indent", 2, "JSON indentation, 0 for compact output")
	cmd.Flags().StringSlice("sheets", nil, "Only convert these sheets")
	cmd.Flags().Bool("split", false, "Write one JSON file per sheet")
	cmd.Flags().Bool("stamp", false, "Also write data_att.json with the current time")
	return cmd
}

// configCmd manages the config file
func configCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	initCmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a default configuration file",
		Annotations: map[string]string{skipConfig: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			if path == "" {
				path = config.DefaultPath()
			}
			force, _ := cmd.Flags().GetBool("force")

			if _, err := os.Stat(path); err == nil && !force {
				c.formatter.Warning("Configuração já existe: %s", path)
				c.formatter.Tip("Use --force para sobrescrever")
				return nil
			}

			if err := config.DefaultConfig().Save(path); err != nil {
				c.formatter.Error("%v", err)
				return shown(err)
			}
			c.formatter.Success("Configuração criada: %s", path)
			return nil
		},
	}
	initCmd.Flags().Bool("force", false, "Overwrite an existing file")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the resolved data locations",
		RunE: func(cmd *cobra.Command, args []string) error {
			c.formatter.Header("Dados")
			c.formatter.Println("Metadados: %s", c.cfg.MetadataLocation())
			for _, src := range c.cfg.SourceLocations() {
				c.formatter.Println("%s: %s", src.Name, src.Path)
			}
			c.formatter.Println("Fuso horário: %s", c.cfg.Location())
			return nil
		},
	}

	cmd.AddCommand(initCmd, showCmd)
	return cmd
}

// versionCmd displays detailed version information
func versionCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Display version information",
		Annotations: map[string]string{skipConfig: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			c.formatter.Println("stk %s", version)
			c.formatter.Println("Commit:      %s", commit)
			c.formatter.Println("Build Date:  %s", date)
			c.formatter.Println("OS/Arch:     %s/%s", runtime.GOOS, runtime.GOARCH)
			c.formatter.Println("Go Version:  %s", runtime.Version())
			return nil
		},
	}
}
