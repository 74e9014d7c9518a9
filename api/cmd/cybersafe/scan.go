package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"cybersafe/api/internal/client"
	"cybersafe/api/internal/llm/types"
)

var (
	scanCategory string
	scanFile     string
)

var scanCmd = &cobra.Command{
	Use:   "scan [text]",
	Short: "Classify a message, link or description",
	Long: `Scan sends text to the gateway and prints the verdict. Text comes from the
arguments, from --file, or from stdin when it is not a terminal.`,
	Example: `  cybersafe scan "URGENT: verify your account at http://bit.ly/xyz"
  cybersafe scan --category app-security --file manifest.xml
  pbpaste | cybersafe scan`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVarP(&scanCategory, "category", "c", "", "Scan category (app-security, scam-detector, deepfake, network, dark-web); defaults to the saved preference")
	scanCmd.Flags().StringVarP(&scanFile, "file", "f", "", "Read content from a file and annotate the scan with its name")
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	content, fileName, err := scanInput(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	cat := types.ParseCategory(scanCategory)
	if scanCategory == "" {
		p, done, err := openPrefs(ctx)
		if err != nil {
			return err
		}
		cat, _ = p.Category(ctx)
		done()
	} else if !cat.Known() {
		return fmt.Errorf("unknown category %q", scanCategory)
	}

	s := client.NewScanSession(newClient())
	res, err := s.Scan(ctx, cat, content, fileName)
	if err != nil {
		return err
	}
	return printResult(cmd, res)
}

func scanInput(stdin io.Reader, args []string) (content, fileName string, err error) {
	switch {
	case scanFile != "":
		b, err := os.ReadFile(scanFile)
		if err != nil {
			return "", "", err
		}
		content, fileName = string(b), filepath.Base(scanFile)
	case len(args) > 0:
		content = strings.Join(args, " ")
	case !stdinIsTerminal():
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", "", err
		}
		content = string(b)
	}
	if strings.TrimSpace(content) == "" {
		return "", "", fmt.Errorf("nothing to scan: pass text, --file or pipe stdin")
	}
	return content, fileName, nil
}

func stdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}
