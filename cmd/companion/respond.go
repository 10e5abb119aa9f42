package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kapu/wellness-companion-go/internal/domain"
	"github.com/kapu/wellness-companion-go/internal/wizard"
)

type respondOptions struct {
	emotion   string
	intensity int
	content   string
	kind      string
	advisor   string
	recipient string
	scenario  string
	addendum  string
}

func respondCmd() *cobra.Command {
	opts := respondOptions{}
	cmd := &cobra.Command{
		Use:   "respond",
		Short: "Generate one response for a journal note and print it",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, cleanup, err := bootstrap()
			if err != nil {
				return err
			}
			defer cleanup()

			// Only the caller stops the call; there is no request deadline.
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runRespond(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), container.Responder, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.emotion, "emotion", "", "Emotion name, e.g. Happy or Anxious")
	flags.IntVar(&opts.intensity, "intensity", 5, "Intensity from 1 to 10")
	flags.StringVar(&opts.content, "content", "", "Journal note text")
	flags.StringVar(&opts.kind, "type", "advice", "summary, advice, expression or logged")
	flags.StringVar(&opts.advisor, "advisor", "", "therapist, friend, parent or mentor")
	flags.StringVar(&opts.recipient, "recipient", "", "self, friend, partner or family")
	flags.StringVar(&opts.scenario, "scenario", "", "Where the feeling will be expressed")
	flags.StringVar(&opts.addendum, "addendum", "", "Additional information for the response")
	_ = cmd.MarkFlagRequired("emotion")
	_ = cmd.MarkFlagRequired("content")
	return cmd
}

// runRespond builds the request the same way the journal flow does and
// prints the response text. Failures are reported on errOut; the fallback
// text is still printed.
func runRespond(ctx context.Context, out, errOut io.Writer, gen wizard.Generator, opts respondOptions) error {
	emotion := domain.ResolveEmotion(opts.emotion)
	intensity, err := domain.NewIntensity(opts.intensity)
	if err != nil {
		return err
	}

	entry, err := domain.NewJournalEntry(domain.JournalDraft{
		Emotion:            emotion,
		Intensity:          intensity,
		Content:            opts.content,
		AdvisorPerspective: domain.AdvisorPerspective(opts.advisor),
		Recipient:          domain.Recipient(opts.recipient),
	}, time.Now())
	if err != nil {
		return err
	}

	req := domain.RequestFromEntry(entry, domain.ParseResponseType(opts.kind))
	req.Scenario = opts.scenario
	req.Addendum = opts.addendum
	if err := req.Validate(); err != nil {
		return err
	}

	res := gen.Respond(ctx, req)
	if res.Failure != domain.FailureNone {
		fmt.Fprintf(errOut, "note: %s (source %s)\n", res.Failure, res.Source)
	}
	_, err = fmt.Fprintln(out, res.Text)
	return err
}
