package main

import (
	"context"
	"os"
	"os/signal"
	"runtime"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/thechriswalker/go-belenios/belenios"
	"github.com/thechriswalker/go-belenios/cmds/admin"
	"github.com/thechriswalker/go-belenios/cmds/auditor"
	"github.com/thechriswalker/go-belenios/cmds/box"
	"github.com/thechriswalker/go-belenios/cmds/config"
	"github.com/thechriswalker/go-belenios/cmds/registrar"
	"github.com/thechriswalker/go-belenios/cmds/trustee"
	"github.com/thechriswalker/go-belenios/cmds/voter"
)

func preamble(cmd *cobra.Command, args []string) {
	// the level comes from config, so load it before anything logs.
	config.MustLoad()

	log.Debug().
		Str("version", belenios.Version).
		Str("protocol", belenios.ProtocolVersion).
		Msg("Belenios Tools")

	commit := belenios.Commit
	if len(commit) > 8 {
		commit = commit[0:8]
	}
	log.Debug().
		Str("commit", commit).
		Str("built", belenios.BuildDate).
		Str("arch", runtime.GOARCH).
		Str("os", runtime.GOOS).
		Msg("Build Info")
}

const timeFormatMs = "2006-01-02T15:04:05.000Z07:00"
const timeFormatLocal = "2006-01-02 15:04:05.000"

func main() {
	// configure the logger.
	// remember pretty logs are only good on the console, and stdout
	// is for the JSON the commands print.
	zerolog.TimeFieldFormat = timeFormatMs
	log.Logger = log.Output(zerolog.NewConsoleWriter(func(cw *zerolog.ConsoleWriter) {
		cw.Out = os.Stderr
		cw.TimeFormat = timeFormatLocal
		cw.NoColor = true
	}))

	// initialise the cobra framework for the command.
	var rootCmd = &cobra.Command{
		Use:              "belenios",
		Short:            "Belenios Election Tools",
		Version:          belenios.Version,
		PersistentPreRun: preamble,
	}
	config.Bind(rootCmd)

	// commands, by role:
	//
	// - admin: build the election from a template and the trustee keys
	// - registrar: generate voter credentials
	// - trustee: generate keys, partially decrypt the tally
	// - voter: create a ballot
	// - box: accept ballots into a ballot box, tally it
	// - auditor: verify ballots, check partial decryptions, produce the result
	admin.Register(rootCmd)
	auditor.Register(rootCmd)
	box.Register(rootCmd)
	registrar.Register(rootCmd)
	trustee.Register(rootCmd)
	voter.Register(rootCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Err(err).Msg("An Error Occured")
		os.Exit(1)
	}
}
