package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"subforge/internal/pipeline"
	"subforge/internal/services"
	"subforge/internal/subtitles"
)

type validateIssueView struct {
	Cue    int    `json:"cue"`
	Index  int    `json:"index"`
	Kind   string `json:"kind"`
	Detail string `json:"detail"`
}

type validateView struct {
	File   string              `json:"file"`
	Valid  bool                `json:"valid"`
	Cues   int                 `json:"cues"`
	Block  int                 `json:"malformed_block,omitempty"`
	Error  string              `json:"error,omitempty"`
	Issues []validateIssueView `json:"issues"`
}

func newValidateCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:         "validate <file.srt>",
		Short:       "Check a subtitle file for malformed blocks and timing problems",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			view := validateView{File: path, Issues: []validateIssueView{}}

			timeline, err := pipeline.ReadSubtitleFile(path)
			if err != nil {
				ordinal, malformed := subtitles.BlockOrdinal(err)
				if !malformed || !asJSON {
					return err
				}
				view.Block = ordinal
				view.Error = err.Error()
				if encodeErr := writeJSON(cmd, view); encodeErr != nil {
					return encodeErr
				}
				return err
			}

			issues := subtitles.Validate(timeline)
			view.Cues = len(timeline)
			view.Valid = len(issues) == 0
			for _, issue := range issues {
				view.Issues = append(view.Issues, validateIssueView{
					Cue:    issue.Ordinal,
					Index:  issue.Index,
					Kind:   string(issue.Kind),
					Detail: issue.Detail,
				})
			}

			if asJSON {
				if err := writeJSON(cmd, view); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%s: %d cues\n", path, len(timeline))
				for _, issue := range issues {
					fmt.Fprintf(out, "  - %s\n", issue)
				}
				if view.Valid {
					fmt.Fprintln(out, "No problems found")
				}
			}
			if !view.Valid {
				return services.Wrap(services.ErrValidation, "validate", "content", fmt.Sprintf("%s has %d problems", path, len(issues)), nil)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	return cmd
}
