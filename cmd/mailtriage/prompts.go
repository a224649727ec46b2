package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"mailtriage/internal/config"
	"mailtriage/internal/model"
	"mailtriage/internal/prompt"
)

func promptsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prompts",
		Short: "Print the classification and response prompts selected by the config",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configEnv, configDir)
			if err != nil {
				return err
			}
			store, err := prompt.Load(cfg.Prompts.File)
			if err != nil {
				return err
			}
			t, err := store.Select(cfg.EmailPrompt, cfg.GenerationPrompt)
			if err != nil {
				return err
			}

			return writePrompts(cmd.OutOrStdout(), cfg.EmailPrompt, cfg.GenerationPrompt, t)
		},
	}
}

// writePrompts prints both selected prompts and the labels the
// classification output is matched against.
func writePrompts(w io.Writer, classificationVariant, generationVariant string, t prompt.Templates) error {
	labels := make([]string, 0, len(model.Categories()))
	for _, c := range model.Categories() {
		labels = append(labels, c.String())
	}

	_, err := fmt.Fprintf(w, "# email_classification/%s\n%s\n\n# response_generation/%s\n%s\n\n# categories\n%s\n",
		classificationVariant, t.Classification,
		generationVariant, t.Response,
		strings.Join(labels, ", "),
	)
	return err
}
