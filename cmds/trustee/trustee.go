package trustee

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/thechriswalker/go-belenios/belenios"
	"github.com/thechriswalker/go-belenios/cmds/config"
)

// Register the trustee commands
func Register(rootCmd *cobra.Command) {
	var trusteeCmd = &cobra.Command{
		Use:   "trustee",
		Short: "Trustee Commands",
	}
	rootCmd.AddCommand(trusteeCmd)

	var keygenCmd = &cobra.Command{
		Use:   "keygen",
		Short: "Generate a trustee key pair",
		Long:  "Writes <ID>.privkey (keep it secret) and <ID>.pubkey (send it to the administrator)",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := config.MustLoad()
			grp, err := cfg.LoadGroup()
			if err != nil {
				config.Fatal(err, "Could not load group")
			}
			kp, err := belenios.GenTrusteeKey(nil, grp)
			if err != nil {
				config.Fatal(err, "Could not generate key")
			}
			id := kp.PublicKey.ID
			if err := config.WriteJSON(cfg.Path(id+".privkey"), kp); err != nil {
				config.Fatal(err, "Could not write private key")
			}
			if err := os.Chmod(cfg.Path(id+".privkey"), 0o600); err != nil {
				log.Warn().Err(err).Msg("Could not restrict private key permissions")
			}
			if err := config.WriteJSON(cfg.Path(id+".pubkey"), kp.PublicKey); err != nil {
				config.Fatal(err, "Could not write public key")
			}
			log.Info().Str("id", id).Msg("Trustee key generated")
		},
	}
	trusteeCmd.AddCommand(keygenCmd)

	var privKeyPath string
	var ballotsPath string

	var decryptCmd = &cobra.Command{
		Use:   "decrypt",
		Short: "Partially decrypt the tally of the ballots",
		Long:  "Verifies and tallies the ballots, then prints this trustee's partial decryption",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := config.MustLoad()
			e, err := cfg.Election()
			if err != nil {
				config.Fatal(err, "Could not read election")
			}
			kp := new(belenios.TrusteeKeyPair)
			if err := config.ReadJSON(privKeyPath, kp); err != nil {
				config.Fatal(err, "Could not read private key")
			}
			tally, n, err := cfg.VerifiedTally(cmd.Context(), e, ballotsPath)
			if err != nil {
				config.Fatal(err, "Could not compute tally")
			}
			pd, err := belenios.CreatePartialDecryption(nil, e.Group(), kp, tally)
			if err != nil {
				config.Fatal(err, "Could not decrypt")
			}
			if err := config.PrintJSON(os.Stdout, pd); err != nil {
				config.Fatal(err, "Could not write partial decryption")
			}
			log.Info().Str("id", kp.PublicKey.ID).Int("tallied", n).Msg("Partial decryption done")
		},
	}
	decryptCmd.Flags().StringVar(&privKeyPath, "privkey", "", "the trustee private key file")
	decryptCmd.Flags().StringVar(&ballotsPath, "ballots", "", "ballots file, ballots.jsonl in --dir if empty")
	decryptCmd.MarkFlagRequired("privkey")
	trusteeCmd.AddCommand(decryptCmd)
}
