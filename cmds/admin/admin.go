package admin

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/thechriswalker/go-belenios/belenios"
	"github.com/thechriswalker/go-belenios/cmds/config"
	"github.com/thechriswalker/go-belenios/credential"
)

// Register the election administration commands
func Register(rootCmd *cobra.Command) {
	var adminCmd = &cobra.Command{
		Use:   "admin",
		Short: "Election Administrator Commands",
	}
	rootCmd.AddCommand(adminCmd)

	var templatePath string
	var electionUUID string

	var mkelectionCmd = &cobra.Command{
		Use:   "mkelection",
		Short: "Create election.json from a template and the trustees",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := config.MustLoad()
			grp, err := cfg.LoadGroup()
			if err != nil {
				config.Fatal(err, "Could not load group")
			}
			f, err := os.Open(templatePath)
			if err != nil {
				config.Fatal(err, "Could not open template")
			}
			tpl, err := belenios.ReadTemplate(f)
			f.Close()
			if err != nil {
				config.Fatal(err, "Could not read template")
			}
			trustees, err := cfg.Trustees()
			if err != nil {
				config.Fatal(err, "Could not read trustees")
			}
			for _, t := range trustees {
				if err := t.Verify(grp); err != nil {
					config.Fatal(err, "Trustee key did not verify")
				}
			}
			y := belenios.CombineTrusteeKeys(grp, trustees)
			e, err := belenios.NewElection(tpl, electionUUID, grp, y)
			if err != nil {
				config.Fatal(err, "Invalid election")
			}
			if err := config.WriteJSON(cfg.Path(config.ElectionFile), e); err != nil {
				config.Fatal(err, "Could not write election")
			}
			hash, _ := belenios.ElectionHash(e)
			log.Info().
				Str("uuid", e.UUID).
				Str("hash", hash).
				Int("trustees", len(trustees)).
				Msg("Election created")
		},
	}
	mkelectionCmd.Flags().StringVar(&templatePath, "template", "template.json", "the election template")
	mkelectionCmd.Flags().StringVar(&electionUUID, "uuid", "", "the election uuid, random if empty")
	adminCmd.AddCommand(mkelectionCmd)

	var mktrusteesCmd = &cobra.Command{
		Use:   "mktrustees <pubkey files...>",
		Short: "Collect trustee public keys into trustees.json",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			cfg := config.MustLoad()
			grp, err := cfg.LoadGroup()
			if err != nil {
				config.Fatal(err, "Could not load group")
			}
			trustees := make([]*belenios.TrusteePublicKey, len(args))
			for i, path := range args {
				t := new(belenios.TrusteePublicKey)
				if err := config.ReadJSON(path, t); err != nil {
					config.Fatal(err, "Could not read trustee key")
				}
				if err := t.Verify(grp); err != nil {
					config.Fatal(err, "Trustee key did not verify")
				}
				trustees[i] = t
			}
			f, err := os.Create(cfg.Path(config.TrusteesFile))
			if err != nil {
				config.Fatal(err, "Could not create trustees file")
			}
			if err := belenios.WriteTrustees(f, trustees); err != nil {
				config.Fatal(err, "Could not write trustees file")
			}
			if err := f.Close(); err != nil {
				config.Fatal(err, "Could not write trustees file")
			}
			log.Info().Int("trustees", len(trustees)).Msg("Trustees written")
		},
	}
	adminCmd.AddCommand(mktrusteesCmd)

	var tokenCmd = &cobra.Command{
		Use:   "generate-token",
		Short: "Print a random token, suitable as an election uuid",
		Run: func(cmd *cobra.Command, args []string) {
			token, err := credential.GenerateToken(nil)
			if err != nil {
				config.Fatal(err, "Could not generate token")
			}
			fmt.Println(token)
		},
	}
	adminCmd.AddCommand(tokenCmd)
}
