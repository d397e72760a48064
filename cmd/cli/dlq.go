package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/gdsanger/KManager-sub000/internal/infra"
	"github.com/gdsanger/KManager-sub000/internal/worker"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

var (
	dlqQueue string
	dlqLimit int64
)

var dlqCmd = &cobra.Command{
	Use:   "dlq",
	Short: "Fehlgeschlagene Beleg- und Mail-Jobs anzeigen und erneut einreihen",
}

var dlqListCmd = &cobra.Command{
	Use:   "list",
	Short: "Listet die Einträge der Dead Letter Queue",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rdb, err := openRedis(cmd)
		if err != nil {
			return err
		}
		defer rdb.Close()

		entries, err := worker.ListDeadLetters(cmd.Context(), rdb, dlqQueue, dlqLimit)
		if err != nil {
			return err
		}
		if asJSON {
			return json.NewEncoder(os.Stdout).Encode(entries)
		}
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "FEHLGESCHLAGEN\tJOB\tBELEG\tENDGÜLTIG\tGRUND")
		for _, e := range entries {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%s\n",
				e.FailedAt.Format("2006-01-02 15:04"), e.JobType, e.DocumentID, e.Permanent, e.Reason)
		}
		return tw.Flush()
	},
}

var dlqRequeueCmd = &cobra.Command{
	Use:   "requeue",
	Short: "Reiht wiederholbare Einträge erneut ein",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rdb, err := openRedis(cmd)
		if err != nil {
			return err
		}
		defer rdb.Close()

		n, err := worker.RequeueDeadLetters(cmd.Context(), rdb, dlqQueue)
		if err != nil {
			return err
		}
		fmt.Printf("%d Job(s) erneut eingereiht\n", n)
		return nil
	},
}

func openRedis(cmd *cobra.Command) (*redis.Client, error) {
	rdb, err := infra.NewRedis(cmd.Context(), cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	if rdb == nil {
		return nil, fmt.Errorf("REDIS_URL ist nicht gesetzt")
	}
	return rdb, nil
}

func init() {
	dlqCmd.PersistentFlags().StringVar(&dlqQueue, "queue", worker.QueueDocuments, "Queue ("+worker.QueueDocuments+" oder "+worker.QueueEmail+")")
	dlqListCmd.Flags().Int64Var(&dlqLimit, "limit", 50, "maximale Anzahl Einträge")
	dlqCmd.AddCommand(dlqListCmd, dlqRequeueCmd)
}
