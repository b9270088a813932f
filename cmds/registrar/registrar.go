package registrar

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/thechriswalker/go-belenios/cmds/config"
	"github.com/thechriswalker/go-belenios/credential"
)

// Register the credential authority commands
func Register(rootCmd *cobra.Command) {
	var registrarCmd = &cobra.Command{
		Use:   "registrar",
		Short: "Credential Authority Commands",
	}
	rootCmd.AddCommand(registrarCmd)

	var electionUUID string
	var count int
	var idsFile string
	var derive string

	var credgenCmd = &cobra.Command{
		Use:   "credgen",
		Short: "Generate voter credentials",
		Long: "Generate credentials for --count anonymous voters or for each voter id in --file.\n" +
			"The private credentials go to <epoch>.privcreds and the public ones to <epoch>.pubcreds.\n" +
			"With --derive just print the public credential for a private one.",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := config.MustLoad()
			grp, err := cfg.LoadGroup()
			if err != nil {
				config.Fatal(err, "Could not load group")
			}
			if electionUUID == "" {
				e, err := cfg.Election()
				if err != nil {
					config.Fatal(err, "No --uuid given and no election to take it from")
				}
				electionUUID = e.UUID
			}

			if derive != "" {
				kp, err := credential.Derive(derive, electionUUID, grp)
				if err != nil {
					config.Fatal(err, "Could not derive credential")
				}
				fmt.Println(kp.Public().Y)
				return
			}

			ids, err := voterIDs(count, idsFile)
			if err != nil {
				config.Fatal(err, "Could not read voter ids")
			}

			epoch := time.Now().Unix()
			privPath := cfg.Path(fmt.Sprintf("%d.privcreds", epoch))
			pubPath := cfg.Path(fmt.Sprintf("%d.pubcreds", epoch))
			priv, err := os.OpenFile(privPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
			if err != nil {
				config.Fatal(err, "Could not create private credentials file")
			}
			pub, err := os.Create(pubPath)
			if err != nil {
				config.Fatal(err, "Could not create public credentials file")
			}
			privW, pubW := bufio.NewWriter(priv), bufio.NewWriter(pub)

			bar := config.MaybeProgress(len(ids), "credentials")
			bar.Start()
			for _, id := range ids {
				creds, err := credential.Generate(nil, electionUUID, grp)
				if err != nil {
					config.Fatal(err, "Could not generate credential")
				}
				fmt.Fprintf(privW, "%s %s\n", id, creds.PrivateCred)
				fmt.Fprintf(pubW, "%s\n", creds.PublicCred)
				bar.Increment()
			}
			bar.Finish()

			for _, w := range []*bufio.Writer{privW, pubW} {
				if err := w.Flush(); err != nil {
					config.Fatal(err, "Could not write credentials")
				}
			}
			for _, f := range []*os.File{priv, pub} {
				if err := f.Close(); err != nil {
					config.Fatal(err, "Could not write credentials")
				}
			}
			log.Info().
				Int("count", len(ids)).
				Str("private", privPath).
				Str("public", pubPath).
				Msg("Credentials generated")
		},
	}
	credgenCmd.Flags().StringVar(&electionUUID, "uuid", "", "election uuid, read from election.json if empty")
	credgenCmd.Flags().IntVar(&count, "count", 0, "number of anonymous credentials to generate")
	credgenCmd.Flags().StringVar(&idsFile, "file", "", "file with one voter id per line")
	credgenCmd.Flags().StringVar(&derive, "derive", "", "print the public credential for this private credential")
	registrarCmd.AddCommand(credgenCmd)
}

// voterIDs are the file lines, or 1..count when there is no file.
func voterIDs(count int, path string) ([]string, error) {
	if path == "" {
		if count < 1 {
			return nil, fmt.Errorf("need one of --count, --file or --derive")
		}
		ids := make([]string, count)
		for i := range ids {
			ids[i] = fmt.Sprintf("%d", i+1)
		}
		return ids, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var ids []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if id := strings.TrimSpace(sc.Text()); id != "" {
			ids = append(ids, id)
		}
	}
	return ids, sc.Err()
}
