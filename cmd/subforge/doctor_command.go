package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"subforge/internal/deps"
	"subforge/internal/language"
	"subforge/internal/preflight"
	"subforge/internal/services"
)

type statusPalette struct {
	ok   *color.Color
	warn *color.Color
	fail *color.Color
}

// newStatusPalette colours output only when out is the terminal stdout.
func newStatusPalette(out io.Writer) statusPalette {
	p := statusPalette{
		ok:   color.New(color.FgGreen, color.Bold),
		warn: color.New(color.FgYellow),
		fail: color.New(color.FgRed, color.Bold),
	}
	file, ok := out.(*os.File)
	if !ok || !isatty.IsTerminal(file.Fd()) {
		p.ok.DisableColor()
		p.warn.DisableColor()
		p.fail.DisableColor()
	}
	return p
}

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check external tools and working directories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			palette := newStatusPalette(out)

			fmt.Fprintf(out, "Config: %s\n", ctx.configPath)
			fmt.Fprintf(out, "Model: %s (%s, CUDA %s)\n",
				cfg.Transcription.Model, language.DisplayName(cfg.Transcription.Language), yesNo(cfg.Transcription.CUDAEnabled))
			fmt.Fprintf(out, "Chunk cache: %s\n", cacheLabel(cfg.Cache.Enabled, cfg.Cache.Path))

			rows := [][]string{}
			directories := preflight.RunAll(cfg)
			for _, r := range directories {
				status := palette.ok.Sprint("OK")
				if !r.Passed {
					status = palette.fail.Sprint("FAIL")
				}
				rows = append(rows, []string{r.Name, status, r.Detail})
			}
			binaries := preflight.CheckSystemDeps(cfg)
			for _, s := range binaries {
				status := palette.ok.Sprint("OK")
				detail := s.Path
				switch {
				case !s.Available && s.Optional:
					status = palette.warn.Sprint("MISSING")
					detail = s.Description
				case !s.Available:
					status = palette.fail.Sprint("MISSING")
					detail = s.Detail
				}
				rows = append(rows, []string{s.Name, status, detail})
			}
			fmt.Fprintln(out, renderTable([]column{left("Check"), left("Status"), left("Detail")}, rows))

			failedDirs := preflight.Failed(directories)
			missing := deps.MissingRequired(binaries)
			if len(failedDirs) == 0 && len(missing) == 0 {
				fmt.Fprintln(out, palette.ok.Sprint("Ready to generate subtitles"))
				return nil
			}
			if len(missing) > 0 {
				return services.Wrap(services.ErrExternalTool, "doctor", "dependencies",
					fmt.Sprintf("%d required tools missing (first: %s)", len(missing), missing[0].Command), nil)
			}
			return services.Wrap(services.ErrConfiguration, "doctor", "directories",
				fmt.Sprintf("%s: %s", failedDirs[0].Name, failedDirs[0].Detail), nil)
		},
	}
}

func cacheLabel(enabled bool, path string) string {
	if !enabled {
		return "disabled"
	}
	return path
}
