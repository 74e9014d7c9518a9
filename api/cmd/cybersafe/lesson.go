package main

import (
	"strings"

	"github.com/spf13/cobra"

	"cybersafe/api/internal/client"
)

var lessonID int

var lessonCmd = &cobra.Command{
	Use:   "lesson <topic>",
	Short: "Generate a short safety lesson in your preferred language",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runLesson,
}

func init() {
	lessonCmd.Flags().IntVar(&lessonID, "id", 0, "Lesson number echoed to the gateway")
}

func runLesson(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	p, done, err := openPrefs(ctx)
	if err != nil {
		return err
	}
	defer done()

	s := client.NewLessonSession(newClient(), p)
	if _, err := s.Generate(ctx, lessonID, strings.Join(args, " ")); err != nil {
		return err
	}
	return printLesson(cmd, s.State())
}
