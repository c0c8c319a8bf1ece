package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard, starting from base,
// and saves the result to path.
func RunWizard(base *Config, path string) (*Config, error) {
	fmt.Println("Welcome to bookwurm! Let's configure your library.")
	fmt.Println()

	cfg := *base

	// 1. Meilisearch host.
	hostPrompt := promptui.Prompt{
		Label:   "Meilisearch host",
		Default: cfg.Meilisearch.Host,
		Validate: func(s string) error {
			if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
				return errors.New("host must start with http:// or https://")
			}
			return nil
		},
	}
	host, err := hostPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("host: %w", err)
	}
	cfg.Meilisearch.Host = host

	// 2. Port.
	portPrompt := promptui.Prompt{
		Label:    "Meilisearch port",
		Default:  strconv.Itoa(cfg.Meilisearch.Port),
		Validate: validatePort,
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	cfg.Meilisearch.Port, _ = strconv.Atoi(portStr)

	// 3. API key.
	keyPrompt := promptui.Prompt{
		Label: "Meilisearch API key",
		Mask:  '*',
		Validate: func(s string) error {
			if strings.TrimSpace(s) == "" {
				return errors.New("a key is required")
			}
			return nil
		},
	}
	key, err := keyPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("key: %w", err)
	}
	cfg.Meilisearch.Key = strings.TrimSpace(key)

	// 4. Directories indexed when none is given on the command line.
	dirPrompt := promptui.Prompt{
		Label:   "Directories to index (comma-separated)",
		Default: strings.Join(cfg.IndexDirectories, ","),
	}
	dirs, err := dirPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("index directories: %w", err)
	}
	cfg.IndexDirectories = splitAndTrim(dirs)
	for _, d := range cfg.IndexDirectories {
		if _, err := os.Stat(d); err != nil {
			fmt.Printf("Note: %s does not exist yet.\n", d)
		}
	}

	// 5. Parallel jobs.
	jobsPrompt := promptui.Select{
		Label: "Parallel indexing jobs",
		Items: []string{"auto (a quarter of the CPUs)", "1", "2", "4", "8"},
	}
	jobsIdx, _, err := jobsPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("jobs: %w", err)
	}
	cfg.Jobs = []int{0, 1, 2, 4, 8}[jobsIdx]

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return &cfg, nil
}

func validatePort(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 || n > 65535 {
		return errors.New("port must be a number between 1 and 65535")
	}
	return nil
}

// splitAndTrim splits a comma-separated string and trims whitespace.
func splitAndTrim(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if token := strings.TrimSpace(part); token != "" {
			result = append(result, token)
		}
	}
	return result
}
