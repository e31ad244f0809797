// cmd/appgrab/main.go

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/appgrab/appgrab/pkg/catalog"
	"github.com/appgrab/appgrab/pkg/config"
	"github.com/appgrab/appgrab/pkg/logging"
	"github.com/appgrab/appgrab/pkg/pipeline"
	"github.com/appgrab/appgrab/pkg/progress"
	"github.com/appgrab/appgrab/pkg/version"
)

func main() {
	configPath := pflag.String("config", config.DefaultConfigPath(), "Path to the configuration file.")
	listFlag := pflag.Bool("list", false, "List the program catalog and exit.")
	checkFlag := pflag.Bool("check", false, "Report installed state for the given program ids.")
	installFlag := pflag.Bool("install", false, "Install the given program ids.")
	uninstallFlag := pflag.Bool("uninstall", false, "Uninstall the given program ids.")
	sysinfoFlag := pflag.Bool("sysinfo", false, "Print system information and exit.")
	availableFlag := pflag.Bool("available", false, "Report whether winget is available and exit.")
	versionFlag := pflag.Bool("version", false, "Print the version and exit.")

	var verbosity int
	pflag.CountVarP(&verbosity, "verbose", "v", "Increase verbosity (e.g. -v, -vv)")
	pflag.Parse()

	if *versionFlag {
		version.Print()
		os.Exit(0)
	}

	cfg, err := config.LoadConfigFrom(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	level := logging.ParseLevel(cfg.LogLevel)
	switch {
	case verbosity >= 2 || cfg.Debug:
		level = logging.LevelDebug
	case verbosity == 1:
		level = logging.LevelInfo
	}
	if err := logging.Init(logging.Options{LogDir: cfg.LogPath, Level: level, Console: verbosity > 0}); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer logging.CloseLogger()

	pipe := pipeline.New(cfg, progress.NewConsoleNotifier())
	ctx := context.Background()

	switch {
	case *sysinfoFlag:
		fmt.Println(pipe.SystemInfo())

	case *availableFlag:
		if pipe.CheckAvailability(ctx) {
			fmt.Println("winget is available")
		} else {
			fmt.Println("winget is not available")
			os.Exit(1)
		}

	case *listFlag:
		cat := loadCatalog(cfg)
		for _, category := range cat.Categories {
			fmt.Printf("%s:\n", category.Name)
			for _, program := range category.Programs {
				fmt.Printf("  %-24s %s\n", program.ID, program.Description)
			}
		}

	case *checkFlag:
		cat := loadCatalog(cfg)
		for _, program := range resolveArgs(cat, pflag.Args()) {
			state := "not installed"
			if pipe.CheckInstalled(ctx, program) {
				state = "installed"
			}
			fmt.Printf("%-24s %s\n", program.ID, state)
		}

	case *installFlag:
		cat := loadCatalog(cfg)
		results := pipe.InstallBatch(ctx, resolveArgs(cat, pflag.Args()))
		failed := 0
		for _, br := range results {
			if !br.Result.Success {
				failed++
				fmt.Fprintf(os.Stderr, "%s: %s\n", br.ProgramID, br.Result.Error)
			}
		}
		if failed > 0 {
			fmt.Fprintf(os.Stderr, "%d of %d installs failed\n", failed, len(results))
			os.Exit(1)
		}
		fmt.Printf("%d programs installed\n", len(results))

	case *uninstallFlag:
		cat := loadCatalog(cfg)
		exitCode := 0
		for _, program := range resolveArgs(cat, pflag.Args()) {
			result := pipe.Uninstall(ctx, program)
			if !result.Success {
				fmt.Fprintf(os.Stderr, "%s: %s\n", program.ID, result.Error)
				exitCode = 1
			}
		}
		os.Exit(exitCode)

	default:
		pflag.Usage()
		os.Exit(2)
	}
}

func loadCatalog(cfg *config.Configuration) *catalog.Catalog {
	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load catalog %s: %v\n", cfg.CatalogPath, err)
		os.Exit(1)
	}
	return cat
}

// resolveArgs maps command-line ids to catalog descriptors, exiting with an
// error for ids the catalog does not know.
func resolveArgs(cat *catalog.Catalog, args []string) []catalog.Program {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "No program ids given")
		os.Exit(2)
	}
	programs := make([]catalog.Program, 0, len(args))
	for _, arg := range args {
		program, ok := cat.Find(arg)
		if !ok {
			fmt.Fprintf(os.Stderr, "Unknown program: %s\n", arg)
			os.Exit(2)
		}
		programs = append(programs, program)
	}
	return programs
}
