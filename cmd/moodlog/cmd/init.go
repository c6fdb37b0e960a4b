package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/f3rmion/moodlog/internal/config"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize moodlog configuration",
	Long: `Initialize moodlog configuration in your config directory.

This creates config.yaml with the defaults for:
  - backend   (analysis server URL, timeout, rate limit)
  - analysis  (articles per request, platforms)
  - health    (how often the backend is checked)
  - log       (level, format, file)
  - history   (saved reflections database)
  - metrics   (optional Prometheus endpoint)

Every key can also be set with a MOODLOG_* environment variable, e.g.
MOODLOG_BACKEND_BASE_URL=http://10.0.0.5:8000.`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().Bool("force", false, "overwrite existing configuration")
}

// configPath returns the config file inside dir.
func configPath(dir string) string {
	return filepath.Join(dir, config.FileName)
}

func runInit(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")
	configDir := getConfigDir()
	path := configPath(configDir)

	// Check if config already exists
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("config file already exists: %s\nUse --force to overwrite", path)
	}

	if err := config.EnsureConfigDir(configDir); err != nil {
		return err
	}

	fmt.Printf("Initializing moodlog configuration in %s\n\n", configDir)

	if err := config.Save(path, config.Default(configDir)); err != nil {
		return err
	}
	fmt.Printf("  Created %s\n", config.FileName)

	fmt.Println()
	fmt.Println("Configuration initialized!")
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  1. Set backend.base_url to your analysis server")
	fmt.Println("  2. Run 'moodlog health' to check the connection")
	fmt.Println("  3. Run 'moodlog' to start journaling")

	return nil
}
