package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/at-ishikawa/phrasebook/internal/config"
	"github.com/at-ishikawa/phrasebook/internal/database"
	"github.com/at-ishikawa/phrasebook/internal/entry"
	"github.com/at-ishikawa/phrasebook/internal/generator/openai"
	"github.com/at-ishikawa/phrasebook/internal/search"
)

type OutputFormat string

func (f *OutputFormat) Set(val string) error {
	for _, format := range allOutputFormats {
		if val == string(format) {
			*f = format
			return nil
		}
	}
	return fmt.Errorf("invalid output format: %s", val)
}

func (f OutputFormat) String() string {
	return string(f)
}

func (f *OutputFormat) Type() string {
	return "format"
}

const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
	OutputFormatYAML OutputFormat = "yaml"
)

var (
	_                pflag.Value = (*OutputFormat)(nil)
	allOutputFormats             = []OutputFormat{OutputFormatText, OutputFormatJSON, OutputFormatYAML}
)

func newLookupCommand() *cobra.Command {
	output := OutputFormatText
	command := &cobra.Command{
		Use:   "lookup PHRASE",
		Short: "Search stored entries for a phrase, generating one when nothing matches",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			phrase := args[0]

			cfg, err := config.Load(configFile)
			if err != nil {
				return fmt.Errorf("config.Load > %w", err)
			}
			if cfg.OpenAI.APIKey == "" {
				return fmt.Errorf("OPENAI_API_KEY environment variable is required")
			}

			db, err := database.Open(cfg.Database)
			if err != nil {
				return fmt.Errorf("database.Open > %w", err)
			}
			defer func() {
				_ = db.Close()
			}()

			openaiClient := openai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
			defer func() {
				_ = openaiClient.Close()
			}()

			service := search.NewService(entry.NewDBRepository(db), openaiClient, slog.Default())
			result := service.Search(cmd.Context(), phrase)
			if result.ErrorCode == search.CodeGenerationFailed {
				return fmt.Errorf("search failed: %s", result.Error)
			}
			if result.ErrorCode == search.CodePersistFailed {
				color.Yellow("warning: %s", result.Error)
			}

			switch output {
			case OutputFormatJSON:
				encoded, err := json.MarshalIndent(result.Contents, "", "  ")
				if err != nil {
					return fmt.Errorf("json.MarshalIndent > %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
			case OutputFormatYAML:
				encoded, err := yaml.Marshal(result.Contents)
				if err != nil {
					return fmt.Errorf("yaml.Marshal > %w", err)
				}
				fmt.Fprint(cmd.OutOrStdout(), string(encoded))
			default:
				showEntries(cmd.OutOrStdout(), result)
			}
			return nil
		},
	}
	command.Flags().Var(&output, "output", fmt.Sprintf("output format. Possible values are %v", allOutputFormats))
	return command
}

func showEntries(w io.Writer, result search.Result) {
	if len(result.Contents) == 0 {
		fmt.Fprintln(w, "no entries found")
		return
	}

	title := color.New(color.FgCyan, color.Bold)
	label := color.New(color.FgGreen)
	for i, e := range result.Contents {
		if i > 0 {
			fmt.Fprintln(w, strings.Repeat("-", 50))
		}
		title.Fprint(w, e.Phrase)
		if result.ExactMatch {
			fmt.Fprint(w, " (exact match)")
		}
		fmt.Fprintln(w)

		printList(w, label, "Types", e.Types)
		printList(w, label, "Meanings", e.Meanings)
		printList(w, label, "Synonyms", e.Synonyms)
		printList(w, label, "Translations", e.Translations)
		printList(w, label, "Examples", e.Examples)
	}
}

func printList(w io.Writer, label *color.Color, name string, values []string) {
	if len(values) == 0 {
		return
	}
	label.Fprintf(w, "%s: ", name)
	fmt.Fprintln(w, strings.Join(values, ", "))
}
