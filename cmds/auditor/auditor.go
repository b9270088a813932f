package auditor

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/gookit/color"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/thechriswalker/go-belenios/belenios"
	"github.com/thechriswalker/go-belenios/cmds/config"
)

// Register the auditor commands
func Register(rootCmd *cobra.Command) {
	var auditorCmd = &cobra.Command{
		Use:   "auditor",
		Short: "Election Auditor Commands",
		Long:  "Anyone can run these, they only need the public election files",
	}
	rootCmd.AddCommand(auditorCmd)

	var ballotsPath string

	var verifyCmd = &cobra.Command{
		Use:   "verify",
		Short: "Verify every ballot",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := config.MustLoad()
			e, err := cfg.Election()
			if err != nil {
				config.Fatal(err, "Could not read election")
			}
			if err := e.Validate(); err != nil {
				config.Fatal(err, "Election is not valid")
			}
			ballots, err := cfg.Ballots(ballotsPath)
			if err != nil {
				config.Fatal(err, "Could not read ballots")
			}
			v, err := belenios.NewVerifier(e)
			if err != nil {
				config.Fatal(err, "Could not verify")
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			bar := config.MaybeProgress(len(ballots), "verify")
			bar.Start()
			results, err := v.VerifyBallots(ctx, config.Unweighted(ballots), cfg.Workers, bar.Increment)
			bar.Finish()
			if err != nil {
				config.Fatal(err, "Verification interrupted")
			}
			failed := 0
			for i, err := range results {
				if err != nil {
					failed++
					color.Printf("<error>FAIL</>\tballot %d: %s\n", i+1, err)
				}
			}
			color.Printf("Ballots : <suc>%d</>\n", len(ballots)-failed)
			if failed > 0 {
				color.Printf("Rejected: <error>%d</>\n", failed)
				os.Exit(1)
			}
			color.Printf("<suc>OK</>\n")
		},
	}
	verifyCmd.Flags().StringVar(&ballotsPath, "ballots", "", "ballots file, ballots.jsonl in --dir if empty")
	auditorCmd.AddCommand(verifyCmd)

	var partialsPath string

	var validateCmd = &cobra.Command{
		Use:   "validate",
		Short: "Check the partial decryptions and write result.json",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := config.MustLoad()
			e, err := cfg.Election()
			if err != nil {
				config.Fatal(err, "Could not read election")
			}
			trustees, err := cfg.Trustees()
			if err != nil {
				config.Fatal(err, "Could not read trustees")
			}
			partials, err := cfg.Partials(partialsPath)
			if err != nil {
				config.Fatal(err, "Could not read partial decryptions")
			}
			tally, n, err := cfg.VerifiedTally(cmd.Context(), e, ballotsPath)
			if err != nil {
				config.Fatal(err, "Could not compute tally")
			}
			res, err := belenios.CreateResult(e, trustees, tally, n, partials)
			if err != nil {
				config.Fatal(err, "Result is not valid")
			}
			if err := config.WriteJSON(cfg.Path(config.ResultFile), res); err != nil {
				config.Fatal(err, "Could not write result")
			}
			printResult(e, res)
		},
	}
	validateCmd.Flags().StringVar(&ballotsPath, "ballots", "", "ballots file, ballots.jsonl in --dir if empty")
	validateCmd.Flags().StringVar(&partialsPath, "partials", "", "partial decryptions file, one per line in trustee order")
	auditorCmd.AddCommand(validateCmd)

	var hashCmd = &cobra.Command{
		Use:   "sha256-b64",
		Short: "Hash stdin the way ballot trackers and election hashes are computed",
		Run: func(cmd *cobra.Command, args []string) {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				config.Fatal(err, "Could not read stdin")
			}
			fmt.Println(belenios.HashBytes(data))
		},
	}
	auditorCmd.AddCommand(hashCmd)
}

func printResult(e *belenios.Election, res *belenios.Result) {
	log.Info().Int("tallied", res.NumTallied).Msg("Result")
	for i, q := range e.Questions {
		color.Printf("<info>%s</>\n", q.Question)
		counts := res.Result[i]
		if q.Blank {
			color.Printf("\t%-20s <suc>%d</>\n", "(blank)", counts[0])
			counts = counts[1:]
		}
		for j, a := range q.Answers {
			color.Printf("\t%-20s <suc>%d</>\n", a, counts[j])
		}
	}
}
