package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codeGROOVE-dev/chanscope/pkg/channelurl"
	"github.com/codeGROOVE-dev/chanscope/pkg/estimate"
)

func init() {
	rootCmd.AddCommand(lookupCmd, estimateCmd)
}

var lookupCmd = &cobra.Command{
	Use:   "lookup <channel>",
	Short: "Fetches a channel page and prints its profile as JSON.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ch, err := channelurl.Normalize(args[0])
		if err != nil {
			return err
		}
		yt, err := newYouTube(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		prof, err := yt.Fetch(cmd.Context(), ch.URL)
		if err != nil {
			return err
		}
		if prof.Handle == "" {
			prof.Handle = ch.ID
		}
		return outputJSON(cmd.OutOrStdout(), prof)
	},
}

var estimateCmd = &cobra.Command{
	Use:   "estimate <seed> [followers]",
	Short: "Prints the earnings estimate for a channel.",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var subs int64
		if len(args) == 2 {
			n, ok := estimate.ParseCount(args[1])
			if !ok {
				return fmt.Errorf("followers %q is not a count", args[1])
			}
			subs = n
		}
		est := estimate.Generate(args[0], subs)
		cmd.PrintErrln(est.Summary())
		return outputJSON(cmd.OutOrStdout(), est)
	},
}
