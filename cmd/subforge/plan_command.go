package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"subforge/internal/pipeline"
	"subforge/internal/planner"
	"subforge/internal/services"
	"subforge/internal/timecode"
	"subforge/internal/transcript"
)

type planSegmentView struct {
	ID    string          `json:"id" yaml:"id"`
	Start timecode.Millis `json:"start_ms" yaml:"start_ms"`
	End   timecode.Millis `json:"end_ms" yaml:"end_ms"`
}

type planView struct {
	Mode       string            `json:"mode" yaml:"mode"`
	Total      timecode.Millis   `json:"total_ms" yaml:"total_ms"`
	Boundaries []timecode.Millis `json:"boundaries_ms,omitempty" yaml:"boundaries_ms,omitempty"`
	Segments   []planSegmentView `json:"segments" yaml:"segments"`
	Warnings   []planner.Warning `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

func newPlanView(result planner.Result) planView {
	view := planView{
		Mode:       result.Mode,
		Total:      result.Total,
		Boundaries: result.Boundaries,
		Segments:   make([]planSegmentView, 0, len(result.Segments)),
		Warnings:   result.Warnings,
	}
	for i, seg := range result.Segments {
		view.Segments = append(view.Segments, planSegmentView{
			ID:    transcript.NewChunkID(i+1, seg.Start, seg.End),
			Start: seg.Start,
			End:   seg.End,
		})
	}
	return view
}

func newPlanCommand(ctx *commandContext) *cobra.Command {
	var (
		duration    string
		inMillis    bool
		input       string
		checkpoints string
		segments    string
		format      string
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Preview the chunks generate would transcribe",
		Example: `  subforge plan -d 1:30:00 -s 10m
  subforge plan -d 5400000 --ms -c 30:00,1:00:00 --format json
  subforge plan -i talk.mp3 -s 0-90,5:00-`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outFormat, err := parseFormat(format)
			if err != nil {
				return err
			}
			total, err := resolvePlanDuration(cmd, ctx, duration, inMillis, input)
			if err != nil {
				return err
			}
			spec, err := planner.ParseInput(checkpoints, segments)
			if err != nil {
				return err
			}
			result, err := planner.Plan(total, spec)
			if err != nil {
				return err
			}

			view := newPlanView(result)
			switch outFormat {
			case formatJSON:
				return writeJSON(cmd, view)
			case formatYAML:
				return writeYAML(cmd, view)
			default:
				printPlanTable(cmd.OutOrStdout(), view)
				return nil
			}
		},
	}

	f := cmd.Flags()
	f.StringVarP(&duration, "duration", "d", "", "Media duration (SS, MM:SS, HH:MM:SS or HH:MM:SS,mmm)")
	f.BoolVar(&inMillis, "ms", false, "Interpret --duration as milliseconds")
	f.StringVarP(&input, "input", "i", "", "Probe the duration of this media file with ffprobe")
	f.StringVarP(&checkpoints, "checkpoints", "c", "", "Chunk boundaries (hh:mm:ss list, or a pattern such as 5m)")
	f.StringVarP(&segments, "segments", "s", "", "Time ranges (START-END list, or a pattern such as 5m)")
	f.StringVar(&format, "format", formatTable, "Output format: table, json or yaml")

	return cmd
}

func resolvePlanDuration(cmd *cobra.Command, ctx *commandContext, duration string, inMillis bool, input string) (timecode.Millis, error) {
	duration = strings.TrimSpace(duration)
	input = strings.TrimSpace(input)
	switch {
	case duration != "" && input != "":
		return 0, services.Wrap(services.ErrConflict, "cli", "plan", "--duration and --input are mutually exclusive", nil)
	case input != "":
		cfg, err := ctx.ensureConfig()
		if err != nil {
			return 0, err
		}
		probe, err := pipeline.FFprobe(cfg.FFprobeBinary()).Inspect(cmd.Context(), input)
		if err != nil {
			return 0, err
		}
		total, ok := probe.DurationMillis()
		if !ok {
			return 0, services.Wrap(services.ErrValidation, "cli", "plan", fmt.Sprintf("could not determine duration of %s", input), nil)
		}
		return total, nil
	case duration == "":
		return 0, usageError("either --duration or --input is required")
	case inMillis:
		value, err := strconv.ParseInt(duration, 10, 64)
		if err != nil {
			return 0, usageError(fmt.Sprintf("--duration %q is not a millisecond count", duration))
		}
		return timecode.Millis(value), nil
	case strings.Contains(duration, ","):
		return timecode.FromDisplay(duration)
	default:
		return timecode.FromFreeform(duration)
	}
}

func printPlanTable(out io.Writer, view planView) {
	fmt.Fprintf(out, "Mode: %s, %d segments over %s\n", view.Mode, len(view.Segments), view.Total)
	rows := make([][]string, 0, len(view.Segments))
	for i, seg := range view.Segments {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			seg.ID,
			displayTime(seg.Start),
			displayTime(seg.End),
			displayTime(seg.End - seg.Start),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]column{right("#"), left("Chunk"), right("Start"), right("End"), right("Length")},
		rows,
	))
	for _, w := range view.Warnings {
		fmt.Fprintf(out, "Warning: %s\n", w.Message)
	}
}

func displayTime(ms timecode.Millis) string {
	return timecode.MustDisplay(max(ms, 0))
}
