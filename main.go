// ABOUTME: Entry point for the pipetrack CLI, HTTP API, MCP server and TUI
// ABOUTME: Loads config, opens the storage backend and routes to subcommands
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/harperreed/pipetrack/charm"
	"github.com/harperreed/pipetrack/cli"
	"github.com/harperreed/pipetrack/config"
	"github.com/harperreed/pipetrack/store"
	"github.com/harperreed/pipetrack/tracker"
	"github.com/harperreed/pipetrack/tui"
)

const version = "0.1.0"

// command runs one subcommand against an open tracker.
type command func(tr *tracker.Tracker, out io.Writer, args []string) error

func main() {
	showVersion := flag.Bool("version", false, "Show version and exit")
	configPath := flag.String("config", "", "Config file (default: ~/.config/pipetrack/config.yaml)")
	backend := flag.String("backend", "", "Storage backend override (sqlite, badger, charm)")
	flag.Usage = printUsage
	flag.Parse()

	if *showVersion {
		fmt.Printf("pipetrack version %s\n", version)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("failed to load config", "err", err)
	}
	if *backend != "" {
		cfg.Backend = *backend
	}
	setupLogging(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, args); err != nil {
		stop()
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		log.Fatal("Error", "err", err)
	}
}

func setupLogging(level string) {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "pipetrack",
	})
	if lvl, err := log.ParseLevel(level); err == nil {
		logger.SetLevel(lvl)
	}
	log.SetDefault(logger)
}

func run(ctx context.Context, cfg *config.Config, args []string) error {
	name, rest := args[0], args[1:]

	// sheets auth needs no storage
	if name == "sheets" {
		if len(rest) == 0 || rest[0] != "auth" {
			return fmt.Errorf("usage: pipetrack sheets auth")
		}
		return cli.SheetsAuthCommand(ctx, cfg, os.Stdout, rest[1:])
	}
	if name == "help" {
		printUsage()
		return nil
	}

	kv, err := cli.OpenBackend(cfg, cfg.Backend)
	if err != nil {
		return err
	}
	defer func() { _ = kv.Close() }()
	log.Debug("storage opened", "backend", cfg.Backend, "data_dir", cfg.DataDir)

	tr, err := tracker.Open(kv)
	if err != nil {
		return err
	}
	out := os.Stdout

	switch name {
	case "partners":
		return dispatch("partners", rest, tr, map[string]command{
			"add":    cli.AddPartnerCommand,
			"list":   cli.ListPartnersCommand,
			"update": cli.UpdatePartnerCommand,
			"delete": cli.DeletePartnerCommand,
			"clear":  cli.ClearPartnersCommand,
		})

	case "pipeline":
		if len(rest) > 0 && rest[0] == "sheets" {
			return cli.UploadSheetsCommand(ctx, tr, cfg, out, rest[1:])
		}
		return dispatch("pipeline", rest, tr, map[string]command{
			"upload": cli.UploadPipelineCommand,
			"list":   cli.ListPipelineCommand,
			"groups": cli.GroupsCommand,
			"window": cli.WindowCommand,
			"stats":  cli.StatsCommand,
			"export": cli.ExportPipelineCommand,
			"clear":  cli.ClearPipelineCommand,
		})

	case "initiatives":
		return dispatch("initiatives", rest, tr, map[string]command{
			"add":    cli.AddInitiativeCommand,
			"list":   cli.ListInitiativesCommand,
			"update": cli.UpdateInitiativeCommand,
			"delete": cli.DeleteInitiativeCommand,
			"export": cli.ExportInitiativesCommand,
			"clear":  cli.ClearInitiativesCommand,
		})

	case "notes":
		return dispatch("notes", rest, tr, map[string]command{
			"add":    cli.AddNoteCommand,
			"list":   cli.ListNotesCommand,
			"update": cli.UpdateNoteCommand,
			"delete": cli.DeleteNoteCommand,
			"prune":  cli.PruneNotesCommand,
		})

	case "actions":
		return cli.ActionsCommand(tr, out, rest)

	case "data":
		return dispatch("data", rest, tr, map[string]command{
			"export":   cli.ExportDataCommand,
			"import":   cli.ImportDataCommand,
			"rollback": cli.RollbackCommand,
			"clear":    cli.ClearDataCommand,
		})

	case "dashboard":
		return cli.DashboardCommand(tr, out, rest)
	case "graph":
		return cli.GraphCommand(ctx, tr, out, rest)

	case "serve":
		return cli.ServeCommand(ctx, tr, cfg, out, rest)
	case "watch":
		return cli.WatchCommand(ctx, tr, cfg, out, rest)
	case "mcp":
		return cli.MCPCommand(ctx, tr, version)
	case "tui":
		return tui.Run(tr)

	case "sync":
		return syncCommand(kv, rest)
	}

	printUsage()
	return fmt.Errorf("unknown command: %s", name)
}

func dispatch(group string, args []string, tr *tracker.Tracker, commands map[string]command) error {
	if len(args) == 0 {
		printUsage()
		return fmt.Errorf("%s requires a subcommand", group)
	}
	cmd, ok := commands[args[0]]
	if !ok {
		printUsage()
		return fmt.Errorf("unknown %s command: %s", group, args[0])
	}
	return cmd(tr, os.Stdout, args[1:])
}

func syncCommand(kv store.Backend, args []string) error {
	client, ok := kv.(*charm.Client)
	if !ok {
		return fmt.Errorf("sync is only available with the charm backend (set backend: charm)")
	}
	if len(args) == 0 {
		return charm.SyncStatusCommand(client, os.Stdout, nil)
	}
	switch args[0] {
	case "status":
		return charm.SyncStatusCommand(client, os.Stdout, args[1:])
	case "now":
		return charm.SyncNowCommand(client, os.Stdout, args[1:])
	}
	return fmt.Errorf("unknown sync command: %s", args[0])
}

func printUsage() {
	fmt.Printf(`pipetrack v%s - Partner pipeline tracker

USAGE:
  pipetrack [global flags] <command> [subcommand] [flags]

GLOBAL FLAGS:
  --version              Show version and exit
  --config <path>        Config file (default: ~/.config/pipetrack/config.yaml)
  --backend <name>       Storage backend: sqlite, badger or charm

PARTNERS:
  pipetrack partners add --name <name> [--category focus|incubate|reference] [--status active|inactive]
  pipetrack partners list [--status <status>]
  pipetrack partners update [flags] <id|name>   Flags must come before the partner
  pipetrack partners delete <id|name>           Deals fall back to the Other group
  pipetrack partners clear [--confirm]

PIPELINE:
  pipetrack pipeline upload <file.xlsx|file.xls>   Import an export as the new current pipeline
  pipetrack pipeline sheets <spreadsheet-id>       Import the first sheet of a Google spreadsheet
  pipetrack pipeline list [--previous] [--partner <name>]
  pipetrack pipeline groups [--partner <name>]     Deals by partner and fiscal quarter
  pipetrack pipeline window                        Pipeline over the next four fiscal quarters
  pipetrack pipeline stats                         Totals and change since the last upload
  pipetrack pipeline export [out.xlsx]
  pipetrack pipeline clear [--confirm]

INITIATIVES:
  pipetrack initiatives add --partner <p> --project <p> --quarter <Q1-Q4> [--hpe-owner ...] [--role ...]
  pipetrack initiatives list [--partner <p>] [--quarter <q>]
  pipetrack initiatives update [flags] <id>
  pipetrack initiatives delete <id>
  pipetrack initiatives export [out.xlsx]
  pipetrack initiatives clear [--confirm]

NOTES:
  pipetrack notes add (--opportunity <id> | --initiative <id>) [--action] <text>
  pipetrack notes list [--opportunity <id> | --initiative <id>]
  pipetrack notes update [--content <text>] [--action=true|false] <id>
  pipetrack notes delete <id>
  pipetrack notes prune [--confirm]               Delete notes whose record is gone
  pipetrack actions                               Action items by partner

DATA:
  pipetrack data export [file.json]
  pipetrack data import [--confirm] <file.json>   Replaces everything; can be rolled back
  pipetrack data rollback [--confirm]
  pipetrack data clear [--confirm]

VIEWS AND SERVERS:
  pipetrack dashboard                 Text dashboard
  pipetrack graph [pipeline|partner <name>|initiatives] [--output file.dot]
  pipetrack serve [--addr host:port] [--no-watch]   JSON API plus drop-folder import
  pipetrack watch [--dir <path>]      Import spreadsheets dropped into a folder
  pipetrack mcp                       MCP server on stdio
  pipetrack tui                       Terminal dashboard
  pipetrack sheets auth               Authorize Google Sheets access
  pipetrack sync [status|now]         Charm sync (charm backend only)

EXAMPLES:
  pipetrack partners add --name "Acme" --category focus
  pipetrack pipeline upload ~/Downloads/pipeline.xlsx
  pipetrack pipeline groups
  pipetrack notes add --opportunity 3f2c... --action "Send the SOW"

`, version)
}
