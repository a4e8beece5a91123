package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/elchinm/attendance-gate/internal/config"
	"github.com/elchinm/attendance-gate/internal/database"
	"github.com/elchinm/attendance-gate/internal/database/postgres"
	"github.com/elchinm/attendance-gate/internal/subscription"
)

var allowCmd = &cobra.Command{
	Use:   "allow",
	Short: "Manage the phone allow-list",
	Long:  "Phones on the allow-list may subscribe to attendance notifications via the Telegram bot.",
}

var allowAddCmd = &cobra.Command{
	Use:   "add <phone>",
	Short: "Add a phone number to the allow-list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, pool, err := openRegistry()
		if err != nil {
			return err
		}
		defer pool.Close()

		id, phone, err := registry.RegisterAllowedPhone(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Added %s (id %d)\n", phone, id)
		return nil
	},
}

var allowListCmd = &cobra.Command{
	Use:   "list",
	Short: "List allow-listed phone numbers",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit := mustGetInt(cmd, "limit")

		_, pool, err := openRegistry()
		if err != nil {
			return err
		}
		defer pool.Close()

		phones, err := postgres.NewAllowListRepository(pool).List(cmd.Context(), limit)
		if err != nil {
			return err
		}
		for _, p := range phones {
			fmt.Printf("%d\t%s\t%s\n", p.ID, p.Phone, p.CreatedAt.Format("2006-01-02 15:04"))
		}
		fmt.Printf("Total: %d\n", len(phones))
		return nil
	},
}

var allowRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove an allow-list entry by ID",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id %q", args[0])
		}

		_, pool, err := openRegistry()
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := postgres.NewAllowListRepository(pool).Remove(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Printf("Removed entry %d\n", id)
		return nil
	},
}

var allowImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Bulk import phone numbers from a file",
	Long:  "Reads one phone number per line. Lines starting with # and blank lines are skipped, duplicates are counted but not treated as errors.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lines, err := readPhoneLines(args[0])
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			fmt.Println("Nothing to import")
			return nil
		}

		registry, pool, err := openRegistry()
		if err != nil {
			return err
		}
		defer pool.Close()

		bar := progressbar.NewOptions(len(lines),
			progressbar.OptionSetDescription("Importing phones"),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("phones"),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionSetPredictTime(true),
		)

		var added, duplicates, unusable int
		for _, raw := range lines {
			_, _, err := registry.RegisterAllowedPhone(cmd.Context(), raw)
			switch {
			case err == nil:
				added++
			case errors.Is(err, database.ErrDuplicate):
				duplicates++
			case errors.Is(err, subscription.ErrUnusablePhone):
				unusable++
				fmt.Printf("\nSkipping unusable number %q\n", raw)
			default:
				return err
			}
			_ = bar.Add(1)
		}

		fmt.Printf("\nImported %d phones (%d duplicates, %d unusable)\n", added, duplicates, unusable)
		return nil
	},
}

func openRegistry() (*subscription.Registry, *postgres.Pool, error) {
	cfg := config.Load()
	if cfg.Database.URL == "" {
		return nil, nil, fmt.Errorf("DATABASE_URL is required")
	}
	pool, err := postgres.Initialize(&cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	registry := subscription.NewRegistry(
		postgres.NewAllowListRepository(pool),
		postgres.NewSubscriptionRepository(pool),
	)
	return registry, pool, nil
}

func readPhoneLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open %s: %w", path, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("could not read %s: %w", path, err)
	}
	return lines, nil
}

func init() {
	allowListCmd.Flags().Int("limit", 100, "maximum number of entries to list")

	allowCmd.AddCommand(allowAddCmd)
	allowCmd.AddCommand(allowListCmd)
	allowCmd.AddCommand(allowRemoveCmd)
	allowCmd.AddCommand(allowImportCmd)
	rootCmd.AddCommand(allowCmd)
}
