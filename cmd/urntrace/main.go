package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"urntrace/internal/config"
	"urntrace/internal/graph"
	"urntrace/internal/resolver"
	"urntrace/internal/validate"

	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:   "urntrace",
		Short: "URN traceability graph for convention-driven repositories",
	}
	repoRoot   string
	configPath string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&repoRoot, "root", "r", ".", "Repository root to scan")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Layout config file (YAML)")

	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(declarationsCmd)
	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(fixJelCmd)
}

// initRegistry builds the resolver registry from the layout config, or
// defaults when no config file is given.
func initRegistry() (*resolver.Registry, error) {
	if configPath != "" {
		layout, err := config.Load(configPath)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		if repoRoot != "." {
			layout.Root = repoRoot
		}
		return resolver.NewRegistry(layout), nil
	}
	return resolver.NewRegistry(config.Default(repoRoot)), nil
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <urn>...",
	Short: "Resolve URNs to their filesystem artifacts",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		reg, err := initRegistry()
		if err != nil {
			log.Fatalf("Failed to initialize registry: %v", err)
		}

		broken := false
		for u, res := range reg.ResolveAll(args) {
			if res.Broken() {
				broken = true
				fmt.Printf("✗ %s: %s\n", u, res.Err)
				continue
			}
			marker := "✓"
			if !res.Deterministic {
				marker = "~"
			}
			fmt.Printf("%s %s\n", marker, u)
			for _, p := range res.ResolvedPaths {
				fmt.Printf("    %s\n", p)
			}
		}
		if broken {
			os.Exit(1)
		}
	},
}

var declFamilies []string

var declarationsCmd = &cobra.Command{
	Use:   "declarations",
	Short: "List all URN declarations found in the repository",
	Run: func(cmd *cobra.Command, args []string) {
		reg, err := initRegistry()
		if err != nil {
			log.Fatalf("Failed to initialize registry: %v", err)
		}

		var families []string
		if len(declFamilies) > 0 {
			families = declFamilies
		}
		decls, diags := reg.FindAllDeclarations(families)

		names := make([]string, 0, len(decls))
		for f := range decls {
			names = append(names, f)
		}
		sort.Strings(names)

		total := 0
		for _, f := range names {
			for _, d := range decls[f] {
				total++
				fmt.Printf("%-10s %s  (%s)\n", f, d.URN, d.SourcePath)
			}
		}
		fmt.Printf("\n%d declarations", total)
		if len(diags) > 0 {
			fmt.Printf(", %d files skipped with errors", len(diags))
		}
		fmt.Println()
	},
}

var (
	graphRoot     string
	graphDepth    int
	graphFamilies []string
	graphFormat   string
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Build the traceability graph and export it",
	Run: func(cmd *cobra.Command, args []string) {
		reg, err := initRegistry()
		if err != nil {
			log.Fatalf("Failed to initialize registry: %v", err)
		}
		builder := graph.NewBuilder(reg)

		var families []string
		if len(graphFamilies) > 0 {
			families = graphFamilies
		}

		var g *graph.Graph
		if graphRoot != "" {
			g, _ = builder.BuildFromRoot(graphRoot, graphDepth, families)
		} else {
			g, _ = builder.Build(families)
		}

		switch strings.ToLower(graphFormat) {
		case "json":
			out, err := g.ToJSON()
			if err != nil {
				log.Fatalf("Failed to export graph: %v", err)
			}
			fmt.Println(string(out))
		case "dot":
			fmt.Print(g.ToDOT(""))
		default:
			log.Fatalf("Unknown format %q (want json or dot)", graphFormat)
		}
	},
}

var (
	validatePhase    string
	validateFamilies []string
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Run structural checks over the traceability graph",
	Run: func(cmd *cobra.Command, args []string) {
		reg, err := initRegistry()
		if err != nil {
			log.Fatalf("Failed to initialize registry: %v", err)
		}
		v := validate.NewValidator(reg)

		var families []string
		if len(validateFamilies) > 0 {
			families = validateFamilies
		}
		result := v.ValidateAll(families, validatePhase)

		for _, issue := range result.Issues {
			fmt.Println(issue)
		}
		fmt.Printf("\nChecked %d URNs: %d errors, %d warnings\n",
			result.CheckedURNs, result.ErrorCount(), result.WarningCount())

		if !result.IsValid() {
			os.Exit(1)
		}
	},
}

var fixJelDryRun bool

var fixJelCmd = &cobra.Command{
	Use:   "fix-jel",
	Short: "Migrate legacy urn:jel contract ids to path-derived ids",
	Run: func(cmd *cobra.Command, args []string) {
		reg, err := initRegistry()
		if err != nil {
			log.Fatalf("Failed to initialize registry: %v", err)
		}
		v := validate.NewValidator(reg)

		fixes := v.FixLegacyContracts(fixJelDryRun)
		out, err := json.MarshalIndent(fixes, "", "  ")
		if err != nil {
			log.Fatalf("Failed to encode fix report: %v", err)
		}
		fmt.Println(string(out))

		for _, f := range fixes {
			if f.Status == validate.FixError {
				os.Exit(1)
			}
		}
	},
}

func init() {
	declarationsCmd.Flags().StringSliceVarP(&declFamilies, "family", "f", nil, "Restrict to these URN families")

	graphCmd.Flags().StringVar(&graphRoot, "from", "", "Extract the subgraph reachable from this URN")
	graphCmd.Flags().IntVar(&graphDepth, "depth", -1, "Maximum traversal depth (-1 for unlimited)")
	graphCmd.Flags().StringSliceVarP(&graphFamilies, "family", "f", nil, "Restrict to these URN families")
	graphCmd.Flags().StringVar(&graphFormat, "format", "json", "Output format: json or dot")

	validateCmd.Flags().StringVar(&validatePhase, "phase", "warn", "Validation phase: warn or fail")
	validateCmd.Flags().StringSliceVarP(&validateFamilies, "family", "f", nil, "Restrict to these URN families")

	fixJelCmd.Flags().BoolVar(&fixJelDryRun, "dry-run", false, "Report fixes without modifying files")
}
