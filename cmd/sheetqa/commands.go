package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Harshitk-cp/sheetqa/internal/buildconfig"
	"github.com/Harshitk-cp/sheetqa/internal/domain"
	"github.com/spf13/cobra"
)

func newRootCmd(open sessionFactory, stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var quiet bool

	root := &cobra.Command{
		Use:           "sheetqa",
		Short:         "Answer questions from a spreadsheet-backed knowledge base",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress status messages")

	// statusTo prints status events on stderr so stdout carries only answers.
	statusTo := func(w io.Writer) domain.StatusListener {
		if quiet {
			return nil
		}
		return func(ev domain.StatusEvent) {
			fmt.Fprintf(w, "[%s] %s\n", ev.Kind, ev.Message)
		}
	}

	// load opens a session and fetches the initial snapshot.
	load := func(cmd *cobra.Command) (*session, error) {
		s, err := open(cmd.Context())
		if err != nil {
			return nil, err
		}
		listener := statusTo(cmd.ErrOrStderr())
		s.knowledge.SetStatusListener(listener)
		s.answers.SetStatusListener(listener)

		if _, err := s.knowledge.Refresh(cmd.Context()); err != nil {
			s.close()
			return nil, err
		}
		return s, nil
	}

	askCmd := &cobra.Command{
		Use:   "ask <question...>",
		Short: "Answer a single question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := load(cmd)
			if err != nil {
				return reportError(cmd, err)
			}
			defer s.close()

			res, err := s.answers.Answer(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return reportError(cmd, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Answer)
			return nil
		},
	}

	chatCmd := &cobra.Command{
		Use:   "chat",
		Short: "Answer questions read line by line from stdin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := load(cmd)
			if err != nil {
				return reportError(cmd, err)
			}
			defer s.close()

			scanner := bufio.NewScanner(cmd.InOrStdin())
			for scanner.Scan() {
				res, err := s.answers.Answer(cmd.Context(), scanner.Text())
				switch {
				case errors.Is(err, domain.ErrEmptyQuery):
					continue
				case err != nil:
					// A failed fallback ends this question, not the session.
					fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
					continue
				}
				fmt.Fprintln(cmd.OutOrStdout(), res.Answer)
			}
			return scanner.Err()
		},
	}

	var summary bool
	factsCmd := &cobra.Command{
		Use:   "facts",
		Short: "Print the loaded fact/answer mapping as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := load(cmd)
			if err != nil {
				return reportError(cmd, err)
			}
			defer s.close()

			kb, err := s.knowledge.Current()
			if err != nil {
				return reportError(cmd, err)
			}

			out := map[string]any{
				"source":    kb.Source,
				"loaded_at": kb.LoadedAt,
				"count":     kb.Len(),
			}
			if !summary {
				out["facts"] = kb.Facts()
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	factsCmd.Flags().BoolVar(&summary, "summary", false, "print only the source and fact count")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), buildconfig.String())
		},
	}

	root.AddCommand(askCmd, chatCmd, factsCmd, versionCmd)
	return root
}

func reportError(cmd *cobra.Command, err error) error {
	fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
	return err
}
