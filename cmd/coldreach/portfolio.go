package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amishk599/coldreach/internal/model"
	"github.com/amishk599/coldreach/internal/portfolio"
	"github.com/amishk599/coldreach/internal/tui"
)

var (
	techstack   string
	link        string
	interactive bool
)

var portfolioCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "Manage the portfolio CSV",
}

var portfolioAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Append an entry to the portfolio",
	Long: "Appends a (Techstack, Links) row to the portfolio CSV. " +
		"Run `coldreach index --rebuild` afterwards so matching sees the new entry.",
	RunE: runPortfolioAdd,
}

var portfolioListCmd = &cobra.Command{
	Use:   "list",
	Short: "List portfolio entries",
	RunE:  runPortfolioList,
}

func init() {
	portfolioAddCmd.Flags().StringVar(&techstack, "techstack", "", "tech stack, e.g. \"React, Node.js, MongoDB\"")
	portfolioAddCmd.Flags().StringVar(&link, "link", "", "portfolio link, e.g. https://example.com/react-portfolio")
	portfolioAddCmd.MarkFlagRequired("techstack")
	portfolioAddCmd.MarkFlagRequired("link")

	portfolioListCmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "pick an entry and open its link")

	rootCmd.AddCommand(portfolioCmd)
	portfolioCmd.AddCommand(portfolioAddCmd, portfolioListCmd)
}

func runPortfolioAdd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	entry := model.Entry{Techstack: strings.TrimSpace(techstack), Links: strings.TrimSpace(link)}
	if err := portfolio.Open(cfg.Portfolio.CSVPath).Append(entry); err != nil {
		fmt.Fprintf(os.Stderr, "failed to add entry: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Added new entry: Techstack - %s, Link - %s\n", entry.Techstack, entry.Links)
	return nil
}

func runPortfolioList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	entries, err := portfolio.Open(cfg.Portfolio.CSVPath).Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read portfolio: %v\n", err)
		os.Exit(1)
	}

	if interactive {
		chosen, err := tui.RunPortfolioPicker(entries)
		if err != nil {
			return err
		}
		if chosen >= 0 {
			tui.OpenURL(entries[chosen].Links)
		}
		return nil
	}

	fmt.Printf("%-4s %-40s %s\n", "#", "Techstack", "Links")
	fmt.Println(strings.Repeat("─", 80))
	for i, e := range entries {
		fmt.Printf("%-4d %-40s %s\n", i+1, e.Techstack, e.Links)
	}
	fmt.Printf("\nTotal: %d entries in %s\n", len(entries), cfg.Portfolio.CSVPath)
	return nil
}
