package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"cybersafe/api/internal/client"
	"cybersafe/api/internal/prefs"
	"cybersafe/api/internal/store"
)

const prefsScope = "cli"

var (
	apiURL    string
	prefsPath string
	jsonOut   bool
	colorMode string
)

var rootCmd = &cobra.Command{
	Use:   "cybersafe",
	Short: "Check messages, calls and apps for scams from the terminal",
	Long: `cybersafe talks to a cybersafe gateway to classify suspicious content,
transcribe and check recorded calls, and generate short safety lessons.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", envOr("CYBERSAFE_API_URL", "http://localhost:8000"), "Gateway base URL")
	rootCmd.PersistentFlags().StringVar(&prefsPath, "prefs", defaultPrefsPath(), "SQLite file holding local preferences")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Print the decoded result as JSON instead of a formatted verdict")
	rootCmd.PersistentFlags().StringVar(&colorMode, "color", "auto", "Colour output: auto, always or never")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(voiceCmd)
	rootCmd.AddCommand(lessonCmd)
	rootCmd.AddCommand(prefsCmd)
}

// Execute runs the root command; Ctrl-C cancels in-flight requests.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func envOr(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func defaultPrefsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".cybersafe", "prefs.db")
	}
	return filepath.Join(home, ".cybersafe", "prefs.db")
}

func newClient() *client.Client {
	return client.New(apiURL)
}

// openPrefs opens the local preference database, creating it on first use.
// The returned func closes it.
func openPrefs(ctx context.Context) (*prefs.Preferences, func(), error) {
	if err := os.MkdirAll(filepath.Dir(prefsPath), 0o700); err != nil {
		return nil, nil, fmt.Errorf("prefs dir: %w", err)
	}
	db, d, err := store.Open(ctx, "sqlite:"+prefsPath)
	if err != nil {
		return nil, nil, err
	}
	repo := store.NewPrefsRepo(db, d)
	if err := repo.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("prefs schema: %w", err)
	}
	return prefs.New(repo, prefsScope), func() { _ = db.Close() }, nil
}
