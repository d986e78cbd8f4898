// Command migrate manages the postgres schema behind the catalog snapshot
// store (catalog.store = "postgres").
package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	_ "github.com/lib/pq"
	"github.com/zantech/instantorder/internal/infrastructure/config"
	"github.com/zantech/instantorder/internal/infrastructure/logger"
	"github.com/zantech/instantorder/internal/infrastructure/migration"
	"github.com/zantech/instantorder/migrations"
	"go.uber.org/zap"
)

var errUsage = errors.New("invalid usage")

// dbCommand runs against an open migrator
type dbCommand struct {
	usage string
	help  string
	run   func(m *migration.Migrator, log *zap.Logger, args []string) error
}

// fileCommand works on migration files only and never connects
type fileCommand struct {
	usage string
	help  string
	run   func(src migration.Source, log *zap.Logger, args []string) error
}

var dbCommands = map[string]dbCommand{
	"up": {"up", "Apply all pending migrations", func(m *migration.Migrator, _ *zap.Logger, _ []string) error {
		return m.Up()
	}},
	"down": {"down", "Roll back all migrations", func(m *migration.Migrator, _ *zap.Logger, _ []string) error {
		return m.Down()
	}},
	"step": {"step <n>", "Apply n migrations (negative rolls back)", func(m *migration.Migrator, _ *zap.Logger, args []string) error {
		n, err := intArg(args, "step count")
		if err != nil {
			return err
		}
		return m.Steps(n)
	}},
	"version": {"version", "Show the applied version", func(m *migration.Migrator, log *zap.Logger, _ []string) error {
		version, dirty, err := m.Version()
		if err != nil {
			return err
		}
		log.Info("Current migration version", zap.Uint("version", version), zap.Bool("dirty", dirty))
		return nil
	}},
	"force": {"force <version>", "Set the version without migrating (clears dirty)", func(m *migration.Migrator, _ *zap.Logger, args []string) error {
		version, err := intArg(args, "version")
		if err != nil {
			return err
		}
		return m.Force(version)
	}},
}

var fileCommands = map[string]fileCommand{
	"create": {"create <name> [desc]", "Write the next up/down pair (needs -path)", runCreate},
	"list":   {"list", "List available migrations", runList},
}

func main() {
	var (
		migrationsPath string
		configPath     string
		logLevel       string
	)
	flag.StringVar(&migrationsPath, "path", "", "Read migrations from this directory instead of the embedded set")
	flag.StringVar(&configPath, "config", "", "Config file (default: config.toml lookup)")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(2)
	}

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	src := migration.Source{FS: migrations.FS}
	if migrationsPath != "" {
		if src.Dir, err = filepath.Abs(migrationsPath); err != nil {
			log.Fatal("Failed to resolve migrations path", zap.Error(err))
		}
	}

	if err := run(args[0], args[1:], src, configPath, log); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, err)
			printUsage()
			os.Exit(2)
		}
		log.Fatal("Migration command failed", zap.String("command", args[0]), zap.Error(err))
	}
}

func run(name string, args []string, src migration.Source, configPath string, log *zap.Logger) error {
	if cmd, ok := fileCommands[name]; ok {
		return cmd.run(src, log, args)
	}
	cmd, ok := dbCommands[name]
	if !ok {
		return fmt.Errorf("%w: unknown command %q", errUsage, name)
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to reach database %s:%d: %w", cfg.Database.Host, cfg.Database.Port, err)
	}

	m, err := migration.New(db, src, log)
	if err != nil {
		return err
	}
	defer m.Close()

	log.Debug("Running migration command",
		zap.String("command", name),
		zap.Bool("embedded", src.Dir == ""),
	)
	return cmd.run(m, log, args)
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

func runCreate(src migration.Source, log *zap.Logger, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: migration name required", errUsage)
	}
	if src.Dir == "" {
		return fmt.Errorf("%w: create writes files and needs -path", errUsage)
	}
	description := ""
	if len(args) > 1 {
		description = args[1]
	}
	mf, err := migration.CreateMigration(src.Dir, args[0], description)
	if err != nil {
		return err
	}
	log.Info("Migration created",
		zap.String("version", mf.Version),
		zap.String("up_file", mf.UpPath),
		zap.String("down_file", mf.DownPath),
	)
	return nil
}

func runList(src migration.Source, _ *zap.Logger, _ []string) error {
	var fsys fs.FS = src.FS
	if src.Dir != "" {
		fsys = os.DirFS(src.Dir)
	}
	entries, err := migration.ListMigrations(fsys)
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Println(e)
	}
	return nil
}

func intArg(args []string, what string) (int, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("%w: %s required", errUsage, what)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s %q", errUsage, what, args[0])
	}
	return n, nil
}

func printUsage() {
	out := flag.CommandLine.Output()
	fmt.Fprintln(out, "Catalog schema migrations\n\nUsage:\n  migrate [flags] <command> [arguments]\n\nCommands:")

	lines := map[string]string{}
	for _, c := range dbCommands {
		lines[c.usage] = c.help
	}
	for _, c := range fileCommands {
		lines[c.usage] = c.help
	}
	usages := make([]string, 0, len(lines))
	for u := range lines {
		usages = append(usages, u)
	}
	sort.Strings(usages)
	for _, u := range usages {
		fmt.Fprintf(out, "  %-22s%s\n", u, lines[u])
	}

	fmt.Fprintln(out, "\nFlags:")
	flag.PrintDefaults()
	fmt.Fprintln(out, "\nThe database comes from the [database] section of the config or IO_DATABASE_* variables.")
}
