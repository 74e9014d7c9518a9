package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"cybersafe/api/internal/client"
	"cybersafe/api/internal/llm/types"
)

// styles holds the verdict colours.
type styles struct {
	safe    *color.Color
	warning *color.Color
	danger  *color.Color
	info    *color.Color
	heading *color.Color
	muted   *color.Color
}

func newStyles(enabled bool) *styles {
	s := &styles{
		safe:    color.New(color.Bold, color.FgHiGreen),
		warning: color.New(color.Bold, color.FgYellow),
		danger:  color.New(color.Bold, color.FgHiRed),
		info:    color.New(color.Bold, color.FgHiBlue),
		heading: color.New(color.Bold),
		muted:   color.New(color.FgHiBlack),
	}
	if !enabled {
		for _, c := range []*color.Color{s.safe, s.warning, s.danger, s.info, s.heading, s.muted} {
			c.DisableColor()
		}
	}
	return s
}

func colorEnabled() bool {
	switch colorMode {
	case "always":
		return true
	case "never":
		return false
	default:
		return term.IsTerminal(int(os.Stdout.Fd())) && os.Getenv("NO_COLOR") == ""
	}
}

func (s *styles) verdict(st types.Status) (*color.Color, string) {
	switch types.ParseStatus(string(st)) {
	case types.StatusSafe:
		return s.safe, "SAFE"
	case types.StatusWarning:
		return s.warning, "WARNING"
	case types.StatusDanger:
		return s.danger, "DANGER"
	case types.StatusInfo:
		return s.info, "INFO"
	default:
		return s.muted, "UNKNOWN"
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printResult(cmd *cobra.Command, res types.ScanResult) error {
	if jsonOut {
		return writeJSON(cmd.OutOrStdout(), res)
	}
	renderResult(cmd.OutOrStdout(), newStyles(colorEnabled()), res)
	return nil
}

func printVoice(cmd *cobra.Command, v types.VoiceScan) error {
	if jsonOut {
		return writeJSON(cmd.OutOrStdout(), v)
	}
	w := cmd.OutOrStdout()
	s := newStyles(colorEnabled())
	s.heading.Fprintln(w, "Transcript")
	fmt.Fprintln(w, indent(v.Transcript))
	fmt.Fprintln(w)
	renderResult(w, s, v.Result)
	return nil
}

func printLesson(cmd *cobra.Command, st client.LessonState) error {
	if jsonOut {
		return writeJSON(cmd.OutOrStdout(), st.Raw)
	}
	l := st.Lesson
	if l == nil {
		return fmt.Errorf("no lesson returned")
	}
	w := cmd.OutOrStdout()
	s := newStyles(colorEnabled())

	s.heading.Fprintln(w, l.Title)
	fmt.Fprintln(w, l.Introduction)
	for _, sec := range l.Sections {
		fmt.Fprintln(w)
		s.heading.Fprintln(w, sec.Heading)
		fmt.Fprintln(w, sec.Content)
		if sec.Tip != "" {
			s.info.Fprintf(w, "Tip: %s\n", sec.Tip)
		}
	}
	if len(l.KeyTakeaways) > 0 {
		fmt.Fprintln(w)
		s.heading.Fprintln(w, "Key takeaways")
		for _, k := range l.KeyTakeaways {
			fmt.Fprintf(w, "  - %s\n", k)
		}
	}
	if ex := l.PracticalExercise; ex.Title != "" {
		fmt.Fprintln(w)
		s.heading.Fprintln(w, ex.Title)
		fmt.Fprintln(w, ex.Description)
		for i, step := range ex.Steps {
			fmt.Fprintf(w, "  %d. %s\n", i+1, step)
		}
	}
	for i, q := range l.Quiz {
		fmt.Fprintln(w)
		s.heading.Fprintf(w, "Q%d. %s\n", i+1, q.Question)
		for j, o := range q.Options {
			fmt.Fprintf(w, "  %c) %s\n", 'a'+j, o)
		}
	}
	return nil
}

func renderResult(w io.Writer, s *styles, res types.ScanResult) {
	c, label := s.verdict(res.Status)
	c.Fprintf(w, "%s", label)
	fmt.Fprintf(w, "  score %d/100", res.Score)
	if res.ScamType != "" {
		s.muted.Fprintf(w, "  (%s)", res.ScamType)
	}
	fmt.Fprintln(w)

	if e := strings.TrimSpace(res.Explanation); e != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, indent(e))
	}
	if len(res.Issues) > 0 {
		fmt.Fprintln(w)
		s.heading.Fprintln(w, "Issues")
		for _, is := range res.Issues {
			fmt.Fprintf(w, "  - %s\n", is)
		}
	}
	if len(res.Recommendations) > 0 {
		fmt.Fprintln(w)
		s.heading.Fprintln(w, "Recommendations")
		for _, r := range res.Recommendations {
			fmt.Fprintf(w, "  - %s\n", r)
		}
	}
}

func indent(s string) string {
	return "  " + strings.ReplaceAll(strings.TrimSpace(s), "\n", "\n  ")
}
