package voter

import (
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/thechriswalker/go-belenios/belenios"
	"github.com/thechriswalker/go-belenios/cmds/config"
)

// Register the voter commands
func Register(rootCmd *cobra.Command) {
	var voterCmd = &cobra.Command{
		Use:   "voter",
		Short: "Voter Commands",
	}
	rootCmd.AddCommand(voterCmd)

	var choicesPath string
	var privCred string

	var voteCmd = &cobra.Command{
		Use:   "vote",
		Short: "Create a ballot",
		Long: "Encrypts the choices in --ballot, a JSON array with one row of 0/1 per question,\n" +
			"and signs them with the private credential. The ballot is printed.",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := config.MustLoad()
			e, err := cfg.Election()
			if err != nil {
				config.Fatal(err, "Could not read election")
			}
			var choices [][]int
			if err := config.ReadJSON(choicesPath, &choices); err != nil {
				config.Fatal(err, "Could not read choices")
			}
			cred, err := readCredential(privCred)
			if err != nil {
				config.Fatal(err, "Could not read credential")
			}
			b, err := belenios.CreateBallot(nil, e, cred, choices)
			if err != nil {
				config.Fatal(err, "Could not create ballot")
			}
			data, err := belenios.CanonicalJSON.Marshal(b)
			if err != nil {
				config.Fatal(err, "Could not encode ballot")
			}
			os.Stdout.Write(append(data, '\n'))
			log.Info().Str("tracker", belenios.HashBytes(data)).Msg("Ballot created")
		},
	}
	voteCmd.Flags().StringVar(&choicesPath, "ballot", "", "file with the choices")
	voteCmd.Flags().StringVar(&privCred, "privcred", "", "file holding the private credential, or the credential itself")
	voteCmd.MarkFlagRequired("ballot")
	voteCmd.MarkFlagRequired("privcred")
	voterCmd.AddCommand(voteCmd)
}

// readCredential accepts a file holding the credential, or the
// credential itself.
func readCredential(s string) (string, error) {
	data, err := os.ReadFile(s)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
