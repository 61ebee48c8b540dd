// Package main provides the genctl CLI, a thin caller of the generation proxy.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/upb/genproxy/client"
)

const defaultURL = "http://localhost:8080"

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: failed to load .env file: %v\n", err)
	}

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type rootOptions struct {
	url     string
	timeout time.Duration
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:          "genctl",
		Short:        "Send prompts to the generation proxy",
		SilenceUsage: true,
	}

	url := os.Getenv("GENPROXY_URL")
	if url == "" {
		url = defaultURL
	}
	rootCmd.PersistentFlags().StringVarP(&opts.url, "url", "u", url, "Proxy base URL (env GENPROXY_URL)")
	rootCmd.PersistentFlags().DurationVarP(&opts.timeout, "timeout", "t", 2*time.Minute, "Request timeout")

	rootCmd.AddCommand(generateCmd(opts))
	rootCmd.AddCommand(pingCmd(opts))
	return rootCmd
}

func (o *rootOptions) client() *client.Client {
	return client.New(o.url, nil)
}

func generateCmd(opts *rootOptions) *cobra.Command {
	var (
		provider string
		verbose  bool
	)

	cmd := &cobra.Command{
		Use:   "generate [prompt...]",
		Short: "Generate text for a prompt",
		Long: `Generate text for a prompt. Words are joined with spaces; with no
arguments the prompt is read from stdin.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt := strings.Join(args, " ")
			if len(args) == 0 {
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read prompt: %w", err)
				}
				prompt = string(b)
			}

			ctx, cancel := withTimeout(cmd, opts.timeout)
			defer cancel()

			resp, err := opts.client().Generate(ctx, prompt, provider)
			if err != nil {
				return err
			}

			if verbose {
				fmt.Fprintf(cmd.ErrOrStderr(), "provider=%s model=%s\n", resp.Provider, resp.Model)
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Text())
			return nil
		},
	}

	cmd.Flags().StringVarP(&provider, "provider", "p", "auto", "Provider (auto, groq, openai, gemini, claude)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print the answering provider and model to stderr")
	return cmd
}

func pingCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the proxy is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := withTimeout(cmd, opts.timeout)
			defer cancel()

			resp, err := opts.client().Ping(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok=%t ts=%s\n", resp.OK, time.UnixMilli(resp.TS).UTC().Format(time.RFC3339))
			return nil
		},
	}
}

// withTimeout bounds one command run; a non-positive timeout only cancels
func withTimeout(cmd *cobra.Command, timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
