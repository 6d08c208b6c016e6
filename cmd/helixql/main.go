// Package main is the HelixQL CLI front door, grounded on the teacher's
// cmd/nornicdb/main.go: a cobra root command with one subcommand per
// pipeline entry point instead of nornicdb's Bolt/HTTP server commands —
// this repo ships the query pipeline, not a network-facing gateway
// (spec.md §1's "Out of scope: ... the RPC/HTTP gateway").
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/helixdb/helixql/pkg/config"
	"github.com/helixdb/helixql/pkg/graphdb"
	"github.com/helixdb/helixql/pkg/query"
	"github.com/helixdb/helixql/pkg/sema"
	"github.com/helixdb/helixql/pkg/vectordb"
)

var version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "helixql",
		Short: "HelixQL - compile and run HelixQL graph/vector queries",
		Long: `HelixQL compiles a source file of N::/E::/V::/QUERY declarations
and runs its queries against an embedded graph + vector backend.`,
	}
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("helixql v%s\n", version)
		},
	})
	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newReplCmd())

	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("helixql: %v", err)
	}
}

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <source.helix>",
		Short: "Type-check a source file without running any query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}
			prog, diags, err := query.Compile(string(source))
			if err != nil {
				return err
			}
			for _, d := range diags {
				fmt.Fprintln(os.Stderr, d.String())
			}
			if prog == nil {
				return fmt.Errorf("compilation failed with %d diagnostic(s)", len(diags))
			}
			fmt.Printf("ok: %d quer%s declared\n", len(prog.QueryNames()), plural(len(prog.QueryNames())))
			return nil
		},
	}
	return cmd
}

func plural(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}

func newRunCmd() *cobra.Command {
	var dataDir, configPath, argsJSON string
	cmd := &cobra.Command{
		Use:   "run <source.helix> <query-name>",
		Short: "Compile a source file and run one named query",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sourcePath, queryName := args[0], args[1]
			cfg, err := loadConfig(configPath, dataDir)
			if err != nil {
				return err
			}
			prog, g, vecs, err := openProgram(sourcePath, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = g.Close() }()

			rawArgs := map[string]interface{}{}
			if argsJSON != "" {
				if err := json.Unmarshal([]byte(argsJSON), &rawArgs); err != nil {
					return fmt.Errorf("parsing --args: %w", err)
				}
			}
			callArgs, err := prog.ArgsFromJSON(queryName, rawArgs)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), cfg.Query.DefaultDeadline)
			defer cancel()

			rt := query.NewRuntime(prog, g, vecs, cfg.Query.WorkerPoolSize)
			result, err := rt.Run(ctx, queryName, callArgs)
			if err != nil {
				return fmt.Errorf("running %q: %w", queryName, err)
			}
			return printJSON(result)
		},
	}
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "graph data directory (default: in-memory)")
	cmd.Flags().StringVar(&configPath, "config", "", "optional YAML config file")
	cmd.Flags().StringVar(&argsJSON, "args", "{}", "query arguments as a JSON object")
	return cmd
}

func newReplCmd() *cobra.Command {
	var dataDir, configPath string
	cmd := &cobra.Command{
		Use:   "repl <source.helix>",
		Short: "Compile a source file once, then run queries interactively",
		Long: `Each REPL line is "<query-name> <json-args>", e.g.:

  create {"n": "alice", "a": 30}

Type "exit" or press Ctrl-D to quit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath, dataDir)
			if err != nil {
				return err
			}
			prog, g, vecs, err := openProgram(args[0], cfg)
			if err != nil {
				return err
			}
			defer func() { _ = g.Close() }()

			rt := query.NewRuntime(prog, g, vecs, cfg.Query.WorkerPoolSize)
			return runRepl(rt, prog, cfg)
		},
	}
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "graph data directory (default: in-memory)")
	cmd.Flags().StringVar(&configPath, "config", "", "optional YAML config file")
	return cmd
}

func runRepl(rt *query.Runtime, prog *query.Program, cfg *config.Config) error {
	fmt.Printf("helixql repl — %d quer%s loaded, type \"exit\" to quit\n", len(prog.QueryNames()), plural(len(prog.QueryNames())))
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return nil
		}

		name, rawArgs, ok := parseReplLine(line)
		if !ok {
			fmt.Fprintln(os.Stderr, "usage: <query-name> <json-args>")
			continue
		}
		callArgs, err := prog.ArgsFromJSON(name, rawArgs)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Query.DefaultDeadline)
		result, err := rt.Run(ctx, name, callArgs)
		cancel()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		if err := printJSON(result); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}
}

func parseReplLine(line string) (name string, args map[string]interface{}, ok bool) {
	parts := strings.SplitN(line, " ", 2)
	name = parts[0]
	args = map[string]interface{}{}
	if len(parts) == 1 {
		return name, args, true
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(parts[1])), &args); err != nil {
		return "", nil, false
	}
	return name, args, true
}

func loadConfig(configPath, dataDirFlag string) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if dataDirFlag != "" {
		cfg.Database.DataDir = dataDirFlag
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openProgram compiles sourcePath, opens the Graph backend cfg names, and
// registers every declared V:: type against a fresh HNSW Vector backend.
func openProgram(sourcePath string, cfg *config.Config) (*query.Program, *graphdb.BadgerGraph, *vectordb.HNSWVectorIndex, error) {
	source, err := os.ReadFile(sourcePath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("reading %s: %w", sourcePath, err)
	}
	prog, diags, err := query.Compile(string(source))
	if err != nil {
		return nil, nil, nil, err
	}
	if prog == nil {
		for _, d := range diags {
			fmt.Fprintln(os.Stderr, d.String())
		}
		return nil, nil, nil, fmt.Errorf("compilation of %s failed with %d diagnostic(s)", sourcePath, len(diags))
	}
	if sema.HasErrors(diags) {
		return nil, nil, nil, fmt.Errorf("compilation of %s failed", sourcePath)
	}

	var g *graphdb.BadgerGraph
	if cfg.Database.DataDir == "" {
		g, err = graphdb.OpenInMemory()
	} else {
		g, err = graphdb.Open(graphdb.Options{DataDir: cfg.Database.DataDir})
	}
	if err != nil {
		return nil, nil, nil, fmt.Errorf("opening graph backend: %w", err)
	}

	vecs := vectordb.NewHNSWVectorIndex()
	vecCfgs, err := cfg.VectorConfigs()
	if err != nil {
		_ = g.Close()
		return nil, nil, nil, err
	}
	if err := query.RegisterVectorTypes(vecs, prog.Registry, vecCfgs); err != nil {
		log.Printf("helixql: %v — vector types declared without a matching config are unusable until registered", err)
	}

	return prog, g, vecs, nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
