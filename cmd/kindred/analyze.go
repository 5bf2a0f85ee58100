package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xaenox/kindred/internal/analyzer"
	"github.com/xaenox/kindred/internal/models"
	"github.com/xaenox/kindred/internal/service"
	"github.com/xaenox/kindred/internal/storage"
)

// offlineService builds a service over throwaway memory storage for the
// commands that only score text.
func offlineService(load loader) (*service.Service, error) {
	cfg, logger, err := load()
	if err != nil {
		return nil, err
	}
	return service.New(storage.NewMemoryStorage(), service.Config{
		SafetyAlertThreshold: cfg.Scoring.SafetyAlertThreshold,
	}, logger)
}

func newAnalyzeCmd(load loader) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "analyze TEXT",
		Short: "Run a safety, intent or consistency analysis on a piece of text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k := analyzer.Kind(strings.ToLower(kind))
			if !k.Valid() {
				return fmt.Errorf("unknown analysis kind %q", kind)
			}
			svc, err := offlineService(load)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), svc.AnalyzeText(strings.Join(args, " "), k))
		},
	}
	cmd.Flags().StringVarP(&kind, "kind", "k", string(analyzer.KindSafety), "analysis kind: safety, intent or consistency")
	return cmd
}

func newAnswerCmd(load loader) *cobra.Command {
	var questionContext string

	cmd := &cobra.Command{
		Use:   "answer TEXT",
		Short: "Score an onboarding answer and suggest a follow-up question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := offlineService(load)
			if err != nil {
				return err
			}
			answer := strings.Join(args, " ")

			out := struct {
				Quality  models.AnswerQuality `json:"quality"`
				FollowUp *string             `json:"follow_up"`
			}{Quality: svc.ScoreAnswer(answer)}
			if q, ok := svc.FollowUp(answer, questionContext); ok {
				out.FollowUp = &q
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVar(&questionContext, "question", "", "the question the answer responds to")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
