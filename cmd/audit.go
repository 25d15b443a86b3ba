package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/channel-manager/internal/audit"
)

var (
	auditChannel   string
	auditActor     string
	auditLimit     int
	auditOlderThan time.Duration
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect the channel action audit trail",
	Long:  `The audit trail is kept in the SQLite store; it is not available with the file store driver.`,
}

var auditListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show recent audit entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeFn, err := openAuditStore()
		if err != nil {
			return err
		}
		defer closeFn()

		entries, err := store.Query(context.Background(), audit.QueryFilter{
			ActorID:   auditActor,
			ChannelID: auditChannel,
			Limit:     auditLimit,
		})
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("No audit entries.")
			return nil
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "TIME\tACTION\tACTOR\tCHANNEL\tDETAIL")
		for _, e := range entries {
			detail := e.Summary
			if e.NewValue != "" {
				detail = e.NewValue
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
				e.Timestamp.Format(time.DateTime), e.Action, e.ActorID, e.ChannelID, detail)
		}
		return tw.Flush()
	},
}

var auditPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete audit entries older than --older-than",
	RunE: func(cmd *cobra.Command, args []string) error {
		if auditOlderThan <= 0 {
			return fmt.Errorf("--older-than must be positive")
		}
		store, closeFn, err := openAuditStore()
		if err != nil {
			return err
		}
		defer closeFn()

		n, err := store.DeleteBefore(context.Background(), time.Now().Add(-auditOlderThan))
		if err != nil {
			return err
		}
		fmt.Printf("Deleted %d audit entries.\n", n)
		return nil
	},
}

func openAuditStore() (*audit.Store, func() error, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	repo, database, err := openRepository(cfg)
	if err != nil {
		return nil, nil, err
	}
	if database == nil {
		repo.Close()
		return nil, nil, fmt.Errorf("audit trail requires store.driver: sqlite")
	}
	return audit.NewStore(database), repo.Close, nil
}

func init() {
	auditListCmd.Flags().StringVar(&auditChannel, "channel", "", "only entries for this channel id")
	auditListCmd.Flags().StringVar(&auditActor, "actor", "", "only entries by this user id")
	auditListCmd.Flags().IntVar(&auditLimit, "limit", 50, "maximum entries to show")
	auditPruneCmd.Flags().DurationVar(&auditOlderThan, "older-than", 90*24*time.Hour, "age threshold")
	auditCmd.AddCommand(auditListCmd, auditPruneCmd)
	rootCmd.AddCommand(auditCmd)
}
