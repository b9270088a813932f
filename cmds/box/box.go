package box

import (
	"context"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/thechriswalker/go-belenios/ballotbox"
	"github.com/thechriswalker/go-belenios/belenios"
	"github.com/thechriswalker/go-belenios/cmds/config"
)

// Register the ballot box commands
func Register(rootCmd *cobra.Command) {
	var boxCmd = &cobra.Command{
		Use:   "box",
		Short: "Ballot Box Commands",
	}
	rootCmd.AddCommand(boxCmd)

	var boxPath string
	var credsPath string
	boxCmd.PersistentFlags().StringVar(&boxPath, "box", "ballots.db", "the ballot box database")
	boxCmd.PersistentFlags().StringVar(&credsPath, "creds", "", "public credentials file, only these may vote")

	var ballotPath string
	var weight int

	var castCmd = &cobra.Command{
		Use:   "cast",
		Short: "Verify a ballot and put it in the box",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := config.MustLoad()
			box := openBox(cfg, boxPath, credsPath)
			defer box.Close()

			b := new(belenios.Ballot)
			if err := config.ReadJSON(ballotPath, b); err != nil {
				config.Fatal(err, "Could not read ballot")
			}
			tracker, err := box.Cast(context.Background(), b, weight)
			if err != nil {
				config.Fatal(err, "Ballot not accepted")
			}
			os.Stdout.WriteString(tracker + "\n")
		},
	}
	castCmd.Flags().StringVar(&ballotPath, "ballot", "", "the ballot file")
	castCmd.Flags().IntVar(&weight, "weight", 0, "ballot weight, the registered weight or 1 if 0")
	castCmd.MarkFlagRequired("ballot")
	boxCmd.AddCommand(castCmd)

	var exportCmd = &cobra.Command{
		Use:   "export",
		Short: "Write the ballots in the box, with their weights, to ballots.jsonl",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := config.MustLoad()
			box := openBox(cfg, boxPath, "")
			defer box.Close()

			f, err := os.Create(cfg.Path(config.BallotsFile))
			if err != nil {
				config.Fatal(err, "Could not create ballots file")
			}
			n, err := box.Export(context.Background(), f)
			if err != nil {
				config.Fatal(err, "Could not export ballots")
			}
			if err := f.Close(); err != nil {
				config.Fatal(err, "Could not write ballots file")
			}
			log.Info().Int("ballots", n).Msg("Ballots exported")
		},
	}
	boxCmd.AddCommand(exportCmd)

	var privKeys []string

	var tallyCmd = &cobra.Command{
		Use:   "tally",
		Short: "Tally the box with the trustee keys and write result.json",
		Long:  "For elections where one operator holds every trustee key, such as tests and small polls",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := config.MustLoad()
			box := openBox(cfg, boxPath, "")
			defer box.Close()
			e, err := cfg.Election()
			if err != nil {
				config.Fatal(err, "Could not read election")
			}
			ctx := context.Background()
			tally, n, err := box.Tally(ctx, cfg.Workers)
			if err != nil {
				config.Fatal(err, "Could not tally")
			}
			trustees := make([]*belenios.TrusteePublicKey, len(privKeys))
			partials := make([]*belenios.PartialDecryption, len(privKeys))
			for i, path := range privKeys {
				kp := new(belenios.TrusteeKeyPair)
				if err := config.ReadJSON(path, kp); err != nil {
					config.Fatal(err, "Could not read private key")
				}
				trustees[i] = kp.PublicKey
				if partials[i], err = belenios.CreatePartialDecryption(nil, e.Group(), kp, tally); err != nil {
					config.Fatal(err, "Could not decrypt")
				}
			}
			res, err := belenios.CreateResult(e, trustees, tally, n, partials)
			if err != nil {
				config.Fatal(err, "Could not compute result")
			}
			if err := config.WriteJSON(cfg.Path(config.ResultFile), res); err != nil {
				config.Fatal(err, "Could not write result")
			}
			log.Info().Int("tallied", n).Interface("result", res.Result).Msg("Result written")
		},
	}
	tallyCmd.Flags().StringSliceVar(&privKeys, "privkey", nil, "trustee private key files, all of them")
	tallyCmd.MarkFlagRequired("privkey")
	boxCmd.AddCommand(tallyCmd)
}

func openBox(cfg *config.Config, boxPath, credsPath string) *ballotbox.Box {
	e, err := cfg.Election()
	if err != nil {
		config.Fatal(err, "Could not read election")
	}
	store, err := ballotbox.NewSQLiteStorage(cfg.Path(boxPath))
	if err != nil {
		config.Fatal(err, "Could not open ballot box")
	}
	box, err := ballotbox.Open(e, store)
	if err != nil {
		config.Fatal(err, "Could not open ballot box")
	}
	if credsPath != "" {
		f, err := os.Open(cfg.Path(credsPath))
		if err != nil {
			config.Fatal(err, "Could not open credentials")
		}
		creds, err := ballotbox.ReadCredentials(f)
		f.Close()
		if err != nil {
			config.Fatal(err, "Could not read credentials")
		}
		box.SetCredentials(creds)
	}
	return box
}
