package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"

	"cardseer/internal/cards"
	"cardseer/internal/charts"
	"cardseer/internal/config"
	"cardseer/internal/dataset"
	"cardseer/internal/display"
	"cardseer/internal/graph"
	"cardseer/internal/guess"
	"cardseer/internal/session"
	"cardseer/internal/storage"
	"cardseer/internal/synergy"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		return
	}

	switch os.Args[1] {
	case "guess":
		runGuessCommand()
	case "synergy":
		runSynergyCommand()
	case "import":
		runImportCommand()
	case "watch":
		runWatchCommand()
	case "packs":
		runPacksCommand()
	default:
		fmt.Printf("Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Cardseer - Card Guessing Companion")
	fmt.Println("==================================")
	fmt.Println()
	fmt.Println("Usage: cardseer <command> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  guess      - Run the interactive candidate-elimination console")
	fmt.Println("  synergy    - Render the synergy graph to an HTML file")
	fmt.Println("  import     - Import a local card file (.json or .csv)")
	fmt.Println("  watch      - Reload and report whenever the data directory changes")
	fmt.Println("  packs      - List available card packs")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  cardseer guess")
	fmt.Println("  cardseer synergy --strategy grouped --open")
	fmt.Println("  cardseer import extra-cards.csv")
	fmt.Println("  cardseer watch")
	fmt.Println()
}

// loadConfig loads and validates the configuration file.
func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	return cfg
}

// newSource selects the dataset source: a remote base URL when configured,
// otherwise the local data directory.
func newSource(cfg *config.Config) dataset.Source {
	if cfg.Data.BaseURL != "" {
		return dataset.NewHTTPSource(cfg.Data.BaseURL)
	}
	return &dataset.FileSource{Dir: cfg.Data.Dir}
}

// openStore opens the snapshot database, or returns nil when persistence
// is disabled. The caller owns the returned DB.
func openStore(cfg *config.Config) (*storage.DB, *storage.Service) {
	dbPath := cfg.App.DBPath
	if dbPath == "" {
		var err error
		dbPath, err = config.DefaultDBPath()
		if err != nil {
			log.Fatalf("Failed to resolve database path: %v", err)
		}
	}

	storageConfig := storage.DefaultConfig(dbPath)
	storageConfig.AutoMigrate = true
	db, err := storage.Open(storageConfig)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}

	var encryption *storage.EncryptionConfig
	if cfg.App.Passphrase != "" {
		encryption = storage.DefaultEncryptionConfig(cfg.App.Passphrase)
	}
	return db, storage.NewService(db, encryption)
}

// newSession builds a session from the configuration, restores the
// persisted snapshot, and performs the initial dataset load.
func newSession(ctx context.Context, cfg *config.Config, store *storage.Service) *session.Session {
	loader := dataset.NewLoader(newSource(cfg))
	s := session.New(loader, store)

	if err := s.Restore(ctx); err != nil {
		log.Printf("[Main] snapshot restore failed, starting fresh: %v", err)
	}
	restored := s.Guesses()
	sortBy := s.SortBy()

	for _, key := range cfg.Data.Packs {
		if err := s.TogglePack(key); err != nil {
			log.Fatalf("Invalid pack in configuration: %v", err)
		}
	}

	if err := s.Reload(ctx); err != nil {
		log.Fatalf("Failed to load dataset: %v", err)
	}

	// The initial load is not a dataset change from the user's point of
	// view, so the restored history survives it.
	for _, g := range restored {
		if err := s.AddGuess(ctx, g.CardID, g.Feedback); err != nil {
			log.Fatalf("Failed to restore guess history: %v", err)
		}
	}
	s.SetSortOrder(ctx, sortBy)

	return s
}

// graphOptions derives the graph bounds from the configuration. When no
// explicit cap is set, the pairwise strategy keeps a tighter per-card cap
// than the grouped one.
func graphOptions(cfg *config.Config, strategy synergy.Strategy) graph.Options {
	opts := graph.DefaultOptions()
	if strategy.Name() == "pairwise" {
		opts.MaxLinksPerCard = 5
	}
	if cfg.Synergy.MaxLinksPerCard > 0 {
		opts.MaxLinksPerCard = cfg.Synergy.MaxLinksPerCard
	}
	if cfg.Synergy.VisibleScore > 0 {
		opts.VisibleThreshold = cfg.Synergy.VisibleScore
	}
	return opts
}

func runGuessCommand() {
	fs := flag.NewFlagSet("guess", flag.ExitOnError)
	sortBy := fs.String("sort", "", "Candidate sort order: race, number, value (default: persisted preference)")
	if err := fs.Parse(os.Args[2:]); err != nil {
		log.Fatalf("Failed to parse flags: %v", err)
	}

	ctx := context.Background()
	cfg := loadConfig()
	db, store := openStore(cfg)
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	s := newSession(ctx, cfg, store)
	if *sortBy != "" {
		s.SetSortOrder(ctx, session.ParseSortOrder(*sortBy))
	}

	fmt.Println("Cardseer - Guess Console")
	fmt.Println("========================")
	fmt.Println()
	fmt.Println("Type 'help' for commands, 'quit' to exit.")

	d := display.NewDisplayer(os.Stdout)
	d.DisplayPacks(s.PackNames(), s.Dropped())
	d.DisplayCandidates(s.Candidates(), len(s.Collection().CoreSet()))

	runConsole(ctx, s, d, os.Stdin)
}

// runConsole drives the interactive elimination loop until EOF or quit.
func runConsole(ctx context.Context, s *session.Session, d *display.Displayer, in io.Reader) {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		cmd, args := fields[0], fields[1:]

		switch cmd {
		case "quit", "exit":
			return

		case "help":
			printConsoleHelp()

		case "list":
			d.DisplayCandidates(s.Candidates(), len(s.Collection().CoreSet()))

		case "history":
			d.DisplayHistory(s.Guesses())

		case "guess":
			if len(args) != 2 {
				fmt.Println("Usage: guess <card-id> <close|not_close>")
				continue
			}
			feedback, err := guess.ParseFeedback(args[1])
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				continue
			}
			if _, ok := s.Collection().Lookup(args[0]); !ok {
				fmt.Printf("Unknown card id %q (try 'cards').\n", args[0])
				continue
			}
			if err := s.AddGuess(ctx, args[0], feedback); err != nil {
				fmt.Printf("Error: %v\n", err)
				continue
			}
			d.DisplayCandidates(s.Candidates(), len(s.Collection().CoreSet()))

		case "remove":
			if len(args) != 1 {
				fmt.Println("Usage: remove <row-number>")
				continue
			}
			n, err := strconv.Atoi(args[0])
			if err != nil {
				fmt.Printf("Invalid row number %q\n", args[0])
				continue
			}
			if err := s.RemoveGuess(ctx, n-1); err != nil {
				fmt.Printf("Error: %v\n", err)
				continue
			}
			d.DisplayCandidates(s.Candidates(), len(s.Collection().CoreSet()))

		case "reset":
			if len(s.Guesses()) == 0 {
				fmt.Println("No guesses to reset.")
				continue
			}
			fmt.Print("Reset the entire guess history? (yes/no): ")
			if !scanner.Scan() {
				return
			}
			answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
			if answer != "yes" && answer != "y" {
				fmt.Println("Reset cancelled.")
				continue
			}
			s.ResetGuesses(ctx)
			d.DisplayCandidates(s.Candidates(), len(s.Collection().CoreSet()))

		case "sort":
			if len(args) != 1 {
				fmt.Println("Usage: sort <race|number|value>")
				continue
			}
			s.SetSortOrder(ctx, session.ParseSortOrder(args[0]))
			d.DisplayCandidates(s.Candidates(), len(s.Collection().CoreSet()))

		case "cards":
			for _, c := range s.PickerCards() {
				fmt.Printf("  %-24s %-8s level %d  number %g  value %g\n", c.ID, c.Race, c.Level, c.Number, c.Value)
			}

		case "filter":
			if len(args) != 2 {
				fmt.Println("Usage: filter race <Terran|Zerg|Protess|Neutral|-> | filter level <0-6|->")
				continue
			}
			switch args[0] {
			case "race":
				if args[1] == "-" {
					s.SelectRace("")
					continue
				}
				race, ok := cards.NormalizeRace(args[1])
				if !ok {
					fmt.Printf("Unknown race %q\n", args[1])
					continue
				}
				s.SelectRace(race)
			case "level":
				if args[1] == "-" {
					s.SelectLevel(-1)
					continue
				}
				level, err := strconv.Atoi(args[1])
				if err != nil || level < cards.MinLevel || level > cards.MaxLevel {
					fmt.Printf("Level must be between %d and %d\n", cards.MinLevel, cards.MaxLevel)
					continue
				}
				s.SelectLevel(level)
			default:
				fmt.Printf("Unknown filter %q\n", args[0])
			}

		case "pack":
			if len(args) != 1 {
				fmt.Println("Usage: pack <key>  (toggles the pack and reloads)")
				continue
			}
			if err := s.TogglePack(args[0]); err != nil {
				fmt.Printf("Error: %v\n", err)
				continue
			}
			fmt.Println("Reloading dataset. This clears the guess history.")
			if err := s.Reload(ctx); err != nil {
				fmt.Printf("Reload failed, keeping previous state: %v\n", err)
				continue
			}
			d.DisplayPacks(s.PackNames(), s.Dropped())

		case "import":
			if len(args) != 1 {
				fmt.Println("Usage: import <file.json|file.csv>")
				continue
			}
			result, err := s.Import(ctx, args[0])
			if err != nil {
				fmt.Printf("Import failed: %v\n", err)
				continue
			}
			fmt.Printf("Imported %d cards (%d rows dropped).\n", len(result.Cards), result.Dropped)

		default:
			fmt.Printf("Unknown command %q. Type 'help'.\n", cmd)
		}
	}
}

func printConsoleHelp() {
	fmt.Println("Commands:")
	fmt.Println("  guess <id> <close|not_close>  Record feedback for a guessed card")
	fmt.Println("  list                          Show remaining candidates")
	fmt.Println("  history                       Show the guess history")
	fmt.Println("  remove <n>                    Remove history row n")
	fmt.Println("  reset                         Clear the history (asks for confirmation)")
	fmt.Println("  sort <race|number|value>      Change the candidate sort order")
	fmt.Println("  cards                         List cards matching the picker filters")
	fmt.Println("  filter race <r> | level <n>   Narrow the card picker ('-' clears)")
	fmt.Println("  pack <key>                    Toggle an expansion pack and reload")
	fmt.Println("  import <file>                 Merge a local .json or .csv card file")
	fmt.Println("  quit                          Exit")
}

func runSynergyCommand() {
	fs := flag.NewFlagSet("synergy", flag.ExitOnError)
	strategyName := fs.String("strategy", "", "Scoring strategy: pairwise or grouped (default: from config)")
	output := fs.String("output", "", "Output HTML file (default: from config)")
	open := fs.Bool("open", false, "Open the rendered graph in a browser")
	race := fs.String("race", "", "Only include cards of this race")
	tag := fs.String("tag", "", "Only include cards carrying this tag")
	onlyVisible := fs.Bool("only-visible", false, "Drop links below the visibility threshold from the output")
	if err := fs.Parse(os.Args[2:]); err != nil {
		log.Fatalf("Failed to parse flags: %v", err)
	}

	ctx := context.Background()
	cfg := loadConfig()

	name := cfg.Synergy.Strategy
	if *strategyName != "" {
		name = *strategyName
	}
	strategy := synergy.StrategyByName(name)

	outputPath := cfg.Synergy.OutputPath
	if *output != "" {
		outputPath = *output
	}

	// The synergy view never touches the guess history, so no store.
	s := newSession(ctx, cfg, nil)

	if *race != "" {
		r, ok := cards.NormalizeRace(*race)
		if !ok {
			log.Fatalf("Unknown race %q", *race)
		}
		s.SelectRace(r)
	}
	s.SelectTag(*tag)

	g := s.BuildGraph(strategy, graphOptions(cfg, strategy))

	chartConfig := charts.DefaultGraphConfig()
	chartConfig.Subtitle = fmt.Sprintf("%s strategy, %d cards", strategy.Name(), len(g.Nodes))
	chartConfig.OnlyVisible = *onlyVisible
	if err := charts.RenderGraph(g, chartConfig, outputPath); err != nil {
		log.Fatalf("Failed to render graph: %v", err)
	}

	visible := len(g.VisibleLinks())
	fmt.Printf("Rendered %d cards and %d links (%d visible) to %s\n", len(g.Nodes), len(g.Links), visible, outputPath)

	if *open || cfg.Synergy.OpenBrowser {
		if err := charts.OpenInBrowser(outputPath); err != nil {
			log.Printf("Failed to open browser: %v", err)
		}
	}
}

func runImportCommand() {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	if err := fs.Parse(os.Args[2:]); err != nil {
		log.Fatalf("Failed to parse flags: %v", err)
	}
	if fs.NArg() < 1 {
		fmt.Println("Usage: cardseer import <file.json|file.csv>")
		os.Exit(1)
	}

	ctx := context.Background()
	cfg := loadConfig()
	db, store := openStore(cfg)
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	s := newSession(ctx, cfg, store)
	result, err := s.Import(ctx, fs.Arg(0))
	if err != nil {
		log.Fatalf("Import failed: %v", err)
	}

	fmt.Printf("Imported %d cards (%d rows dropped) from %s\n", len(result.Cards), result.Dropped, fs.Arg(0))

	records, err := store.ListImports(ctx, 5)
	if err != nil {
		log.Fatalf("Failed to list imports: %v", err)
	}
	fmt.Println("\nRecent imports:")
	for _, r := range records {
		fmt.Printf("  %-40s %d cards, %d dropped\n", r.File, r.Cards, r.Dropped)
	}
}

func runWatchCommand() {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	if err := fs.Parse(os.Args[2:]); err != nil {
		log.Fatalf("Failed to parse flags: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := loadConfig()
	if cfg.Data.BaseURL != "" || cfg.Data.Dir == "" {
		log.Fatal("watch requires a local data directory (data.dir in the configuration)")
	}

	db, store := openStore(cfg)
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	s := newSession(ctx, cfg, store)
	d := display.NewDisplayer(os.Stdout)
	d.DisplayPacks(s.PackNames(), s.Dropped())

	// Reloads run on the watcher goroutine; the session is only touched
	// from there after startup.
	watcher := dataset.NewWatcher(cfg.Data.Dir, func() {
		if err := s.Reload(ctx); err != nil {
			log.Printf("[Watch] reload failed, keeping previous state: %v", err)
			return
		}
		d.DisplayPacks(s.PackNames(), s.Dropped())
		fmt.Printf("Dataset reloaded: %d cards. Guess history cleared.\n", s.Collection().Len())
	})

	errCh := make(chan error, 1)
	go func() { errCh <- watcher.Run(ctx) }()

	fmt.Printf("Watching %s for changes. Press Ctrl+C to stop.\n", cfg.Data.Dir)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	select {
	case <-sigChan:
		fmt.Println("\nShutting down...")
		cancel()
		<-errCh
	case err := <-errCh:
		if err != nil && err != context.Canceled {
			log.Fatalf("Watcher failed: %v", err)
		}
	}
}

func runPacksCommand() {
	keys := make([]string, 0, len(dataset.PackFiles))
	for key := range dataset.PackFiles {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	fmt.Println("Available packs:")
	for _, key := range keys {
		suffix := ""
		if key == dataset.CoreKey {
			suffix = " (always loaded)"
		}
		fmt.Printf("  %-10s %s%s\n", key, dataset.PackFiles[key], suffix)
	}
}
