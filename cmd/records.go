package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	logutil "github.com/spigell/talentscout/internal/logger"
	"github.com/spigell/talentscout/internal/storage"
)

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "List saved screening records",
	Run: func(cmd *cobra.Command, _ []string) {
		records(cmd)
	},
}

func init() {
	rootCmd.AddCommand(recordsCmd)

	recordsCmd.Flags().BoolP("full", "f", false, "print candidate details and answers of every record")
}

func records(cmd *cobra.Command) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	logger, err := logutil.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	defer logger.Sync()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	recs, err := loadRecords(ctx, config, logger)
	if err != nil {
		logger.Fatal("loading records", zap.Error(err))
	}

	full, _ := cmd.Flags().GetBool("full")
	if err := printRecords(cmd.OutOrStdout(), recs, full); err != nil {
		logger.Fatal("printing records", zap.Error(err))
	}
}

func loadRecords(ctx context.Context, config *Config, logger *zap.Logger) ([]*storage.Record, error) {
	if config == nil {
		return nil, errConfigRequired
	}

	sink, err := storage.Open(ctx, config.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}
	defer sink.Close()

	return sink.Load(ctx)
}

func printRecords(w io.Writer, recs []*storage.Record, full bool) error {
	if len(recs) == 0 {
		_, err := fmt.Fprintln(w, "no screening records found")
		return err
	}

	if full {
		for _, rec := range recs {
			fmt.Fprintf(w, "=== %s (%s)\n", rec.FullName, rec.Email)
			fmt.Fprintf(w, "Phone: %s\nExperience: %s years\nPosition: %s\nLocation: %s\nTech stack: %s\n",
				rec.Phone, rec.YearsExperience, rec.DesiredPositions, rec.Location, rec.TechStack)
			printTranscript(w, &rec.ScreeningAnswers)
			fmt.Fprintln(w)
		}
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCOMPLETED\tNAME\tEMAIL\tANSWERS")
	for _, rec := range recs {
		completed := "-"
		if !rec.CompletedAt.IsZero() {
			completed = rec.CompletedAt.Local().Format(time.DateTime)
		}
		id := rec.ID
		if id == "" {
			id = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", id, completed, rec.FullName, rec.Email, rec.ScreeningAnswers.Len())
	}
	return tw.Flush()
}
