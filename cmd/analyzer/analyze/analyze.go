// Package analyze implements the "analyze" subcommand: the thin glue that
// reads a template, an optional parameters file, a rule catalog, and an
// optional filter config from disk, runs the engine, and writes one JSON
// line per finding to stdout (report formatting proper is an
// external collaborator; this is the minimal JSON Lines emitter that keeps
// the engine runnable end to end).
package analyze

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Azure/template-analyzer-go/pkg/armexpr"
	"github.com/Azure/template-analyzer-go/pkg/engine"
	"github.com/Azure/template-analyzer-go/pkg/logging"
	"github.com/Azure/template-analyzer-go/pkg/rules"
)

var (
	flagTemplate   string
	flagParameters string
	flagRules      string
	flagConfig     string
	flagLogLevel   string
	flagLogFile    string
	flagStrict     bool
)

// Cmd is the analyzer's analyze subcommand.
var Cmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze an ARM template against a rule catalog",
	Long: `analyze loads an ARM deployment template (and, optionally, a matching
parameters file), expands it the way Azure Resource Manager would at
deployment time, evaluates every rule in the given catalog against the
expanded resources, and writes one JSON line per finding to stdout.`,
	RunE: run,
}

func init() {
	Cmd.Flags().StringVarP(&flagTemplate, "template", "t", "", "path to the ARM template JSON file (required)")
	Cmd.Flags().StringVarP(&flagParameters, "parameters", "p", "", "path to an ARM parameters JSON file")
	Cmd.Flags().StringVarP(&flagRules, "rules", "r", "", "path to the rule catalog (JSON or YAML, required)")
	Cmd.Flags().StringVarP(&flagConfig, "config", "c", "", "path to a rule inclusion/exclusion/severity-override config (JSON)")
	Cmd.Flags().StringVar(&flagLogLevel, "log-level", "INFO", "DEBUG, INFO, WARNING, or ERROR")
	Cmd.Flags().StringVar(&flagLogFile, "log-file", "", "write logs to this file instead of stderr")
	Cmd.Flags().BoolVar(&flagStrict, "strict", false, "fail analysis on an unevaluatable ARM expression instead of substituting NOT_PARSED")

	_ = Cmd.MarkFlagRequired("template")
	_ = Cmd.MarkFlagRequired("rules")
}

type resultPayload struct {
	Path       string `json:"path"`
	LineNumber int    `json:"line_number"`
}

type findingPayload struct {
	RuleID         string          `json:"rule_id"`
	Description    string          `json:"description"`
	Severity       int             `json:"severity"`
	Passed         bool            `json:"passed"`
	FileIdentifier string          `json:"file_identifier"`
	Result         *resultPayload  `json:"result,omitempty"`
	SubEvaluations json.RawMessage `json:"sub_evaluations,omitempty"`
}

func run(cmd *cobra.Command, args []string) error {
	log, err := logging.New(flagLogLevel, flagLogFile)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	templateRaw, err := os.ReadFile(flagTemplate)
	if err != nil {
		return fmt.Errorf("reading template %q: %w", flagTemplate, err)
	}

	var parametersRaw []byte
	if flagParameters != "" {
		parametersRaw, err = os.ReadFile(flagParameters)
		if err != nil {
			return fmt.Errorf("reading parameters %q: %w", flagParameters, err)
		}
	}

	rulesRaw, err := os.ReadFile(flagRules)
	if err != nil {
		return fmt.Errorf("reading rule catalog %q: %w", flagRules, err)
	}

	catalog, err := loadCatalog(flagRules, rulesRaw)
	if err != nil {
		return fmt.Errorf("loading rule catalog: %w", err)
	}

	if flagConfig != "" {
		configRaw, err := os.ReadFile(flagConfig)
		if err != nil {
			return fmt.Errorf("reading config %q: %w", flagConfig, err)
		}
		var cfg rules.Config
		if err := json.Unmarshal(configRaw, &cfg); err != nil {
			return fmt.Errorf("parsing config %q: %w", flagConfig, err)
		}
		catalog, err = rules.Apply(catalog, cfg)
		if err != nil {
			return fmt.Errorf("applying config: %w", err)
		}
	}

	mode := armexpr.Lenient
	if flagStrict {
		mode = armexpr.Strict
	}

	ctx, err := engine.BuildTemplateContext(templateRaw, parametersRaw, flagTemplate, engine.Options{Mode: mode}, log)
	if err != nil {
		return fmt.Errorf("processing template: %w", err)
	}

	findings, err := engine.Analyze(catalog, ctx, log)
	if err != nil {
		return fmt.Errorf("analyzing template: %w", err)
	}

	exitCode := 0
	enc := json.NewEncoder(cmd.OutOrStdout())
	for _, f := range findings {
		if !f.Passed {
			exitCode = 1
		}
		payload := findingPayload{
			RuleID:         f.RuleID,
			Description:    f.Description,
			Severity:       f.Severity,
			Passed:         f.Passed,
			FileIdentifier: f.FileIdentifier,
		}
		if f.Result != nil {
			payload.Result = &resultPayload{Path: f.Result.Path, LineNumber: f.Result.LineNumber}
		}
		if len(f.SubEvaluations) > 0 {
			sub, err := json.Marshal(f.SubEvaluations)
			if err == nil {
				payload.SubEvaluations = sub
			}
		}
		if err := enc.Encode(payload); err != nil {
			return fmt.Errorf("writing finding: %w", err)
		}
	}

	if exitCode != 0 {
		os.Exit(exitCode)
	}
	return nil
}

func loadCatalog(path string, raw []byte) ([]rules.RuleDefinition, error) {
	asYAML := strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml")
	return engine.LoadCatalog(raw, asYAML)
}
