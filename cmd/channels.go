package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/channel-manager/internal/channels"
	"github.com/ziadkadry99/channel-manager/internal/pagination"
)

var (
	listOffset int
	listLimit  int
)

var channelsCmd = &cobra.Command{
	Use:   "channels",
	Short: "Inspect the channel store",
}

var channelsListCmd = &cobra.Command{
	Use:   "list [keywords...]",
	Short: "List stored channels matching any keyword",
	Long: `Runs the same search the bot runs for "list <keywords>": a channel matches
when its name or organization contains any keyword, case-insensitively.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		repo, _, err := openRepository(cfg)
		if err != nil {
			return err
		}
		defer repo.Close()

		terms := channels.JoinTerms(strings.ToLower(strings.Join(args, " ")))
		page, err := channels.NewService(repo).Search(context.Background(), terms, listOffset, listLimit)
		if err != nil {
			return err
		}

		if len(page.Documents) == 0 {
			fmt.Println("No matching channels.")
			return nil
		}
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tORGANIZATION\tCREATED")
		for _, r := range page.Documents {
			fmt.Fprintf(tw, "%s\t#%s\t%s\t%s\n", r.ID, r.Name, r.Organization,
				time.Unix(r.Created, 0).UTC().Format("2006-01-02"))
		}
		tw.Flush()
		fmt.Printf("\nShowing %d of %d (offset %d)\n", len(page.Documents), page.TotalCount, listOffset)
		return nil
	},
}

func init() {
	channelsListCmd.Flags().IntVar(&listOffset, "offset", 0, "number of matches to skip")
	channelsListCmd.Flags().IntVar(&listLimit, "limit", pagination.PageSize, "maximum matches to show")
	channelsCmd.AddCommand(channelsListCmd)
	rootCmd.AddCommand(channelsCmd)
}
