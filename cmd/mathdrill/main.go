// Package main provides the CLI entrypoint for mathdrill.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/mathdrill/internal/arith"
	"github.com/verte-zerg/mathdrill/internal/catalog"
	"github.com/verte-zerg/mathdrill/internal/collectionui"
	"github.com/verte-zerg/mathdrill/internal/config"
	"github.com/verte-zerg/mathdrill/internal/model"
	"github.com/verte-zerg/mathdrill/internal/reward"
	"github.com/verte-zerg/mathdrill/internal/rng"
	"github.com/verte-zerg/mathdrill/internal/settings"
	"github.com/verte-zerg/mathdrill/internal/stats"
	"github.com/verte-zerg/mathdrill/internal/store"
	"github.com/verte-zerg/mathdrill/internal/tui"
	"github.com/verte-zerg/mathdrill/internal/worksheet"
)

const (
	defaultCurveWindow    = 10
	defaultWorksheetCount = 20
	defaultWorksheetOut   = "worksheet.pdf"
)

var (
	drillOps        []string
	drillMultMax    int
	drillAddRange   string
	drillGameLength int
	drillLives      bool
	drillTimer      int
	drillCatalog    string

	statsOp          string
	statsSince       string
	statsLast        int
	statsCurveWindow int

	resetYes bool

	sheetCount     int
	sheetOut       string
	sheetName      string
	sheetColumns   int
	sheetNoAnswers bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "mathdrill",
		Short:         "Arithmetic drills with collectible rewards",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runDrillCmd,
	}
	addSettingsFlags(rootCmd)

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newSettingsCmd())
	rootCmd.AddCommand(newCollectionCmd())
	rootCmd.AddCommand(newCatalogCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newWorksheetCmd())

	return rootCmd
}

func addSettingsFlags(cmd *cobra.Command) {
	def := settings.Default()
	cmd.Flags().StringSliceVar(&drillOps, "ops", arith.OperationNames(def.Operations), "operations to drill (addition, subtraction, multiplication, division)")
	cmd.Flags().IntVar(&drillMultMax, "mult-max", def.MultiplicationMax, "largest times table for multiplication and division (5-20)")
	cmd.Flags().StringVar(&drillAddRange, "add-range", def.AdditionMagnitude.String(), "operand range for addition and subtraction (ones, tens, hundreds)")
	cmd.Flags().IntVar(&drillGameLength, "game-length", def.GameLength, "correct answers needed to win")
	cmd.Flags().BoolVar(&drillLives, "lives", def.LivesEnabled, "end the session after three wrong answers")
	cmd.Flags().IntVar(&drillTimer, "timer", def.TimerSeconds, "countdown in seconds (0 disables)")
	cmd.Flags().StringVar(&drillCatalog, "catalog", def.CatalogPath, "collectible catalog file (YAML or JSON)")
}

// resolveSettings loads the config file and overlays explicitly set flags.
func resolveSettings(cmd *cobra.Command) (settings.Settings, error) {
	s, err := settings.Load(config.DefaultConfigPath())
	if err != nil {
		return settings.Settings{}, fmt.Errorf("failed to load config: %w", err)
	}
	flags := cmd.Flags()
	if flags.Changed("ops") {
		ops, err := arith.ParseOperations(drillOps)
		if err != nil {
			return settings.Settings{}, fmt.Errorf("invalid --ops value: %w", err)
		}
		s.Operations = ops
	}
	if flags.Changed("mult-max") {
		s.MultiplicationMax = drillMultMax
	}
	if flags.Changed("add-range") {
		magnitude, err := arith.ParseMagnitude(drillAddRange)
		if err != nil {
			return settings.Settings{}, fmt.Errorf("invalid --add-range value: %w", err)
		}
		s.AdditionMagnitude = magnitude
	}
	if flags.Changed("game-length") {
		s.GameLength = drillGameLength
	}
	if flags.Changed("lives") {
		s.LivesEnabled = drillLives
	}
	if flags.Changed("timer") {
		s.TimerSeconds = drillTimer
	}
	if flags.Changed("catalog") {
		s.CatalogPath = drillCatalog
	}
	s.CatalogPath = strings.TrimSpace(s.CatalogPath)
	if err := s.Validate(); err != nil {
		return settings.Settings{}, err
	}
	return s, nil
}

func runDrillCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveSettings(cmd)
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	engine, err := openCollection(st, cfg.CatalogPath)
	if err != nil {
		return err
	}

	gen := arith.New(rng.New())
	if err := cfg.Apply(gen); err != nil {
		return err
	}
	m, err := tui.NewModel(cfg, st, engine, gen)
	if err != nil {
		return err
	}
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func openStore() (*store.Store, error) {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	return st, nil
}

func closeStore(st *store.Store) {
	if cerr := st.Close(); cerr != nil {
		logErrf("failed to close db: %v\n", cerr)
	}
}

// openCollection resolves the catalog and restores the owned set. Owned IDs
// missing from a real catalog are dropped and the cleaned set is saved.
func openCollection(st *store.Store, catalogPath string) (*reward.Engine, error) {
	catalogPath = effectiveCatalogPath(catalogPath)
	items, source, err := catalog.Resolve(catalogPath)
	if err != nil {
		logErrf("failed to load catalog %s: %v\n", catalogPath, err)
		logErrln("using the built-in fallback catalog")
	}

	ctx := context.Background()
	owned, err := st.LoadOwnership(ctx)
	if err != nil {
		logErrf("failed to restore collection, starting empty: %v\n", err)
	}

	engine, err := reward.New(items, owned, rng.New())
	if err != nil {
		return nil, fmt.Errorf("failed to build collection: %w", err)
	}
	if pruned := engine.Pruned(); len(pruned) > 0 {
		logErrf("ignoring %d collected item(s) not in the catalog: %s\n", len(pruned), strings.Join(pruned, ", "))
		// Keep the stored set while running on the fallback catalog.
		if source != catalog.SourceFallback {
			if err := st.SaveOwnership(ctx, engine.Owned()); err != nil {
				logErrf("failed to save collection: %v\n", err)
			}
		}
	}
	return engine, nil
}

// effectiveCatalogPath falls back to the user catalog in the config
// directory when no path is configured and that file exists.
func effectiveCatalogPath(path string) string {
	if path != "" {
		return path
	}
	userPath := config.DefaultCatalogPath()
	if _, err := os.Stat(userPath); err == nil {
		return userPath
	}
	return ""
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show the effective drill settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolveSettings(cmd)
			if err != nil {
				return err
			}
			return writeSettings(cmd.OutOrStdout(), cfg)
		},
	}
	addSettingsFlags(cmd)

	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Save drill settings to the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolveSettings(cmd)
			if err != nil {
				return err
			}
			path := config.DefaultConfigPath()
			if err := settings.Save(path, cfg); err != nil {
				return fmt.Errorf("failed to save settings: %w", err)
			}
			logErrf("Saved %s\n", path)
			return writeSettings(cmd.OutOrStdout(), cfg)
		},
	}
	addSettingsFlags(setCmd)
	cmd.AddCommand(setCmd)
	return cmd
}

func writeSettings(w io.Writer, s settings.Settings) error {
	timer := "off"
	if s.TimerSeconds > 0 {
		timer = (time.Duration(s.TimerSeconds) * time.Second).String()
	}
	catalogPath := s.CatalogPath
	if catalogPath == "" {
		catalogPath = "(bundled)"
	}
	mascot := s.Mascot
	if mascot == "" {
		mascot = "(none)"
	}
	lines := []string{
		"operations:  " + strings.Join(arith.OperationNames(s.Operations), ", "),
		"mult-max:    " + strconv.Itoa(s.MultiplicationMax),
		"add-range:   " + s.AdditionMagnitude.String(),
		"game-length: " + strconv.Itoa(s.GameLength),
		"lives:       " + strconv.FormatBool(s.LivesEnabled),
		"timer:       " + timer,
		"catalog:     " + catalogPath,
		"mascot:      " + mascot,
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newCollectionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collection",
		Short: "Browse collected friends",
		Args:  cobra.NoArgs,
		RunE:  runCollectionCmd,
	}
	cmd.Flags().StringVar(&drillCatalog, "catalog", "", "collectible catalog file (YAML or JSON)")

	resetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Forget every collected friend",
		Args:  cobra.NoArgs,
		RunE:  runCollectionResetCmd,
	}
	resetCmd.Flags().BoolVar(&resetYes, "yes", false, "skip the confirmation prompt")
	cmd.AddCommand(resetCmd)

	mascotCmd := &cobra.Command{
		Use:   "mascot [id]",
		Short: "Show or choose the companion shown after each drill",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runCollectionMascotCmd,
	}
	mascotCmd.Flags().StringVar(&drillCatalog, "catalog", "", "collectible catalog file (YAML or JSON)")
	cmd.AddCommand(mascotCmd)
	return cmd
}

func runCollectionCmd(cmd *cobra.Command, _ []string) error {
	path, err := catalogPathFor(cmd)
	if err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	engine, err := openCollection(st, path)
	if err != nil {
		return err
	}
	cfgPath := config.DefaultConfigPath()
	mascot := ""
	if s, err := settings.Load(cfgPath); err != nil {
		logErrf("failed to load config: %v\n", err)
	} else {
		mascot = s.Mascot
	}
	saveFn := func(id string) error { return saveMascot(cfgPath, id) }
	m := collectionui.NewModel(engine, st, model.StatsConfig{CurveWindow: defaultCurveWindow}, mascot, saveFn)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run collection TUI: %w", err)
	}
	return nil
}

// catalogPathFor returns --catalog when given, else the configured path.
func catalogPathFor(cmd *cobra.Command) (string, error) {
	if cmd.Flags().Changed("catalog") {
		return strings.TrimSpace(drillCatalog), nil
	}
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return "", fmt.Errorf("failed to load config: %w", err)
	}
	if fileCfg.Practice.Catalog == nil {
		return "", nil
	}
	return strings.TrimSpace(*fileCfg.Practice.Catalog), nil
}

func runCollectionResetCmd(cmd *cobra.Command, _ []string) error {
	if !resetYes {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return fmt.Errorf("refusing to reset without confirmation (use --yes)")
		}
		ok, err := confirm(cmd.InOrStdin(), cmd.ErrOrStderr(), "Reset the collection? This cannot be undone. [y/N] ")
		if err != nil {
			return err
		}
		if !ok {
			logErrln("Reset cancelled.")
			return nil
		}
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)
	if err := st.SaveOwnership(context.Background(), nil); err != nil {
		return err
	}
	if err := clearMascot(config.DefaultConfigPath()); err != nil {
		logErrf("failed to clear mascot: %v\n", err)
	}
	logErrln("Collection reset.")
	return nil
}

func runCollectionMascotCmd(cmd *cobra.Command, args []string) error {
	path, err := catalogPathFor(cmd)
	if err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	engine, err := openCollection(st, path)
	if err != nil {
		return err
	}
	cfgPath := config.DefaultConfigPath()
	s, err := settings.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if len(args) == 1 {
		it, err := engine.ChooseMascot(strings.TrimSpace(args[0]))
		if err != nil {
			return fmt.Errorf("failed to choose mascot: %w", err)
		}
		if err := saveMascot(cfgPath, it.ID); err != nil {
			return err
		}
		s.Mascot = it.ID
	}
	return writeMascot(cmd.OutOrStdout(), engine, s.Mascot)
}

// saveMascot stores id as the chosen mascot, keeping the other settings.
// An empty id clears the choice.
func saveMascot(path, id string) error {
	s, err := settings.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	s.Mascot = id
	if err := settings.Save(path, s); err != nil {
		return fmt.Errorf("failed to save mascot: %w", err)
	}
	return nil
}

// clearMascot drops a stored mascot. The config file is left untouched when
// none is set.
func clearMascot(path string) error {
	fileCfg, err := config.LoadConfig(path)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if fileCfg.Practice.Mascot == nil || *fileCfg.Practice.Mascot == "" {
		return nil
	}
	return saveMascot(path, "")
}

func writeMascot(w io.Writer, engine *reward.Engine, chosen string) error {
	line := "No companion yet. Collect a friend, then run \"mathdrill collection mascot <id>\"."
	if it, ok := engine.Mascot(chosen); ok {
		line = fmt.Sprintf("Companion: %s (%s)", it.Title(), it.ID)
		if it.ID != chosen {
			line += " [default]"
		}
	}
	if _, err := fmt.Fprintln(w, line); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func confirm(in io.Reader, out io.Writer, prompt string) (bool, error) {
	if _, err := fmt.Fprint(out, prompt); err != nil {
		return false, fmt.Errorf("failed to write prompt: %w", err)
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("failed to read answer: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List catalog items with their draw chances",
		Args:  cobra.NoArgs,
		RunE:  runCatalogCmd,
	}
	cmd.Flags().StringVar(&drillCatalog, "catalog", "", "collectible catalog file (YAML or JSON)")
	return cmd
}

func runCatalogCmd(cmd *cobra.Command, _ []string) error {
	path, err := catalogPathFor(cmd)
	if err != nil {
		return err
	}
	path = effectiveCatalogPath(path)
	items, source, err := catalog.Resolve(path)
	if err != nil {
		logErrf("failed to load catalog %s: %v\n", path, err)
	}
	logErrf("Using %s catalog (%d items)\n", source, len(items))
	_, err = fmt.Fprintln(cmd.OutOrStdout(), renderCatalog(items))
	return err
}

// renderCatalog lists items with the chance each has on a fresh collection.
func renderCatalog(items []reward.Item) string {
	total := 0
	for _, it := range items {
		total += it.Rarity.Weight()
	}
	rows := make([][]string, 0, len(items))
	for _, it := range items {
		chance := 0.0
		if total > 0 {
			chance = float64(it.Rarity.Weight()) / float64(total) * 100
		}
		rows = append(rows, []string{
			it.ID,
			it.Title(),
			it.Squad,
			it.Rarity.DisplayName(),
			strconv.Itoa(it.Rarity.Weight()),
			fmt.Sprintf("%.1f%%", chance),
		})
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "Name", "Squad", "Rarity", "Weight", "Chance").
		Rows(rows...)
	return t.String()
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show practice stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsOp, "op", "", "operation filter")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N sessions")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := statsConfig()
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	report, err := stats.BuildReport(context.Background(), st, cfg)
	if err != nil {
		return err
	}
	return stats.Render(cmd.OutOrStdout(), report, cfg.CurveWindow, 0)
}

func statsConfig() (model.StatsConfig, error) {
	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return model.StatsConfig{}, fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	op := ""
	if strings.TrimSpace(statsOp) != "" {
		parsed, err := arith.ParseOperation(statsOp)
		if err != nil {
			return model.StatsConfig{}, fmt.Errorf("invalid --op value: %w", err)
		}
		op = parsed.String()
	}
	if statsLast < 0 {
		return model.StatsConfig{}, fmt.Errorf("--last must be >= 0")
	}
	if statsCurveWindow <= 0 {
		return model.StatsConfig{}, fmt.Errorf("--curve-window must be > 0")
	}
	return model.StatsConfig{
		Operation:   op,
		Since:       sinceTime,
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
	}, nil
}

func newWorksheetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worksheet",
		Short: "Write a printable PDF worksheet",
		Args:  cobra.NoArgs,
		RunE:  runWorksheetCmd,
	}
	addSettingsFlags(cmd)
	opts := worksheet.DefaultOptions()
	cmd.Flags().IntVar(&sheetCount, "count", defaultWorksheetCount, "number of problems")
	cmd.Flags().StringVar(&sheetOut, "out", defaultWorksheetOut, "output PDF path")
	cmd.Flags().StringVar(&sheetName, "name", "", "learner name for the title")
	cmd.Flags().IntVar(&sheetColumns, "columns", opts.Columns, "problems per row")
	cmd.Flags().BoolVar(&sheetNoAnswers, "no-answers", false, "omit the answer key page")
	return cmd
}

func runWorksheetCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	if sheetColumns <= 0 {
		return fmt.Errorf("--columns must be > 0")
	}
	gen := arith.New(rng.New())
	if err := cfg.Apply(gen); err != nil {
		return err
	}
	sheet, err := worksheet.Build(gen, sheetCount)
	if err != nil {
		return err
	}
	opts := worksheet.DefaultOptions()
	opts.Name = strings.TrimSpace(sheetName)
	opts.Columns = sheetColumns
	opts.AnswerKey = !sheetNoAnswers
	if err := worksheet.Write(sheetOut, sheet, opts); err != nil {
		return err
	}
	logErrf("Wrote %s\n", sheetOut)
	return nil
}

func defaultConfigTemplate() string {
	def := settings.Default()
	return fmt.Sprintf(`# mathdrill configuration
# Uncomment a value to enable it. CLI flags override config values.
# "mathdrill settings set" rewrites this file without comments.

[practice]
# operations = [%q]   # addition, subtraction, multiplication, division
# mult-max = %d                   # Largest times table (%d-%d)
# add-range = %q              # ones, tens or hundreds
# game-length = %d                # Correct answers to win %v
# lives = %t                    # Three lives per session
# timer = %d                       # Countdown seconds %v
# catalog = ""                    # Collectible catalog file (YAML or JSON)
# mascot = ""                     # Collected item ID shown as your companion
`,
		def.Operations[0].String(),
		def.MultiplicationMax,
		arith.MinMultiplicationMax,
		arith.MaxMultiplicationMax,
		def.AdditionMagnitude.String(),
		def.GameLength,
		settings.GameLengths,
		def.LivesEnabled,
		def.TimerSeconds,
		settings.TimerOptions,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
