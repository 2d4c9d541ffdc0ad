package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/platinummonkey/inkpad/internal/ink"
	"github.com/platinummonkey/inkpad/internal/summary"
)

func newSummarizeCmd(a *app) *cobra.Command {
	var (
		all     bool
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "summarize [surface...]",
		Short: "Annotate surfaces with an LLM-generated summary",
		Long: `Render surfaces and ask a vision-capable model to summarize them.

The provider is selected by llm-provider (google, ollama, openai, anthropic).
Cloud providers read their key from GOOGLE_API_KEY, OPENAI_API_KEY or
ANTHROPIC_API_KEY. prompt-file may point at a YAML prompt template:

  model: gemini-1.5-flash
  system: You read whiteboard photos.
  prompt: Return {"summary": "..."} describing the page.

Blank surfaces are skipped.

Examples:
  inkpad summarize 1
  INKPAD_LLM_PROVIDER=ollama inkpad summarize --all`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if all == (len(args) > 0) {
				return fmt.Errorf("pass surfaces or --all, not both or neither")
			}
			if err := a.cfg.ValidateLLM(); err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			summarizer, err := a.newSummarizer(ctx)
			if err != nil {
				return err
			}

			m, err := a.openStore()
			if err != nil {
				return err
			}

			var targets []ink.Surface
			if all {
				targets = m.List()
			} else {
				for _, ref := range args {
					s, err := m.Resolve(ref)
					if err != nil {
						return err
					}
					targets = append(targets, s)
				}
			}

			var failures int
			for _, s := range targets {
				if s.IsBlank() {
					continue
				}
				next, err := summarizer.Summarize(ctx, s)
				if err != nil {
					failures++
					a.log.WithSurfaceID(s.ID).WithError(err).Error("Summary failed")
					continue
				}
				if err := m.Put(next); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", next.ID, next.Summary)
			}

			if err := m.Save(); err != nil {
				return err
			}
			if failures > 0 {
				return fmt.Errorf("summary failed for %d of %d surfaces", failures, len(targets))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "summarize every surface")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "overall timeout")
	return cmd
}

func (a *app) newSummarizer(ctx context.Context) (*summary.Summarizer, error) {
	provider := summary.ProviderType(a.cfg.LLM.Provider)
	model := a.cfg.LLM.Model
	if model == "" {
		model = summary.DefaultModelForProvider(provider)
	}

	var prompt *summary.PromptConfig
	if a.cfg.PromptFile != "" {
		p, err := summary.LoadPromptFile(a.cfg.PromptFile)
		if err != nil {
			return nil, err
		}
		prompt = &p
	}

	clientCfg := &summary.VisionClientConfig{
		Provider:    provider,
		Model:       model,
		Endpoint:    a.cfg.LLM.Endpoint,
		APIKey:      a.cfg.LLM.APIKey,
		MaxRetries:  a.cfg.LLM.MaxRetries,
		Temperature: a.cfg.LLM.Temperature,
	}
	if err := summary.ValidateProviderConfig(clientCfg); err != nil {
		return nil, err
	}

	client, err := summary.NewVisionClient(ctx, clientCfg, a.log)
	if err != nil {
		return nil, err
	}

	return summary.NewSummarizer(&summary.Config{
		Client:  client,
		Model:   model,
		Prompt:  prompt,
		Options: a.compositorOptions(),
		Logger:  a.log,
	})
}
