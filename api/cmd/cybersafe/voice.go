package main

import (
	"os"

	"github.com/spf13/cobra"

	"cybersafe/api/internal/client"
	"cybersafe/api/internal/llm/types"
	"cybersafe/api/internal/util"
)

var voiceMIME string

var voiceCmd = &cobra.Command{
	Use:   "voice <audio-file>",
	Short: "Transcribe a recorded call and check it for scams",
	Args:  cobra.ExactArgs(1),
	RunE:  runVoice,
}

func init() {
	voiceCmd.Flags().StringVar(&voiceMIME, "mime", "", "Audio MIME type (sniffed from the file when empty)")
}

func runVoice(cmd *cobra.Command, args []string) error {
	audio, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	mime := util.PickAudioMIME(voiceMIME, "", audio, types.DefaultAudioMIME)

	s := client.NewScanSession(newClient())
	out, err := s.TranscribeAndScan(cmd.Context(), audio, mime)
	if err != nil {
		return err
	}
	return printVoice(cmd, out)
}
