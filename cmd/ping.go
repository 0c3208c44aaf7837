package main

import (
	"context"
	"fmt"
	"time"

	"github.com/mohammad-safakhou/wayfarer/config"
	"github.com/mohammad-safakhou/wayfarer/internal/failures"
	"github.com/mohammad-safakhou/wayfarer/provider"
	openai_provider "github.com/mohammad-safakhou/wayfarer/provider/openai"
	"github.com/spf13/cobra"
)

// pingCMD sends a tiny completion to check the LLM credentials and endpoint.
func pingCMD(cfgPath *string) *cobra.Command {
	var timeout time.Duration
	var ping = &cobra.Command{
		Use:   "ping",
		Short: "Check connectivity to the LLM API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(*cfgPath)
			if err != nil {
				return err
			}
			log := newLogger(cfg.General)
			llm := openai_provider.NewOpenAIClient(cfg.LLM, log)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "endpoint: %s\nmodel:    %s\n", cfg.LLM.BaseURL, cfg.LLM.Model)
			start := time.Now()
			reply, err := llm.Complete(context.Background(), provider.Completion{
				System:    "You are a helpful assistant.",
				User:      "Reply with 'API test OK'",
				MaxTokens: 50,
				Timeout:   timeout,
			})
			if err != nil {
				return fmt.Errorf("%s: %w", failures.Describe(failures.Classify(err)), err)
			}
			fmt.Fprintf(out, "reply:    %s\ntook:     %s\n", reply, time.Since(start).Round(time.Millisecond))
			return nil
		},
	}
	ping.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "request timeout")

	return ping
}
