package main

import (
	"context"
	"fmt"
	"os"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"itoc/config"
	"itoc/inject"
	"itoc/server"
	"itoc/state"
)

const injectHelp = `%s
SOURCE:
    document(s) to process - HTML, XHTML or markdown:
        a file: "[path_to_file]page.html"
        a directory: "[path_to_directory]directory" - every document below it, symbolic links are not followed
        a document in archive: "[path_to_archive]archive.zip[path_in_archive]/page.html"
        a directory in archive: "[path_to_archive]archive.zip[path_in_archive]" - every document below archive path

    Documents are selected by configured include and exclude patterns. Archives
    inside archives are not opened.

DESTINATION:
    directory or ".zip" archive, current working directory when absent.
    Output names repeat source names unless output name template is configured,
    markdown becomes HTML. Existing archive is updated: entries which are not
    produced again are kept.
`

const serveHelp = `%s
ROOT:
    directory to serve. Documents matching configured patterns get table of
    contents, everything else is served as is. Dump of table of contents and
    targets of any document is available under "%s/" prefix.
`

const dumpConfigHelp = `%s
DESTINATION:
    file to write configuration to, STDOUT when absent.

Actual configuration is embedded defaults merged with values from configuration
file. Use --default to see just the defaults.
`

func injectCommand() *cli.Command {
	return &cli.Command{
		Name:         "inject",
		Usage:        "Attaches table of contents to document(s) and writes results out",
		OnUsageError: passUsageError,
		Action:       inject.Run,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "nodirs", Aliases: []string{"nd"}, Usage: "do not repeat source directory structure in destination"},
			&cli.BoolFlag{Name: "overwrite", Aliases: []string{"ow"}, Usage: "replace existing results"},
			&cli.StringFlag{Name: "force-zip-cp",
				Usage: "decode ALL non UTF-8 file names in processed archives using `ENCODING` (IANA character set name)"},
			&cli.StringFlag{Name: "catalog", Usage: "record tables of contents of processed documents in SQLite database `FILE`"},
		},
		ArgsUsage:          "SOURCE [DESTINATION]",
		CustomHelpTemplate: fmt.Sprintf(injectHelp, cli.CommandHelpTemplate),
	}
}

func inspectCommand() *cli.Command {
	return &cli.Command{
		Name:         "inspect",
		Usage:        "Prints table of contents and scroll targets built for a single document",
		OnUsageError: passUsageError,
		Action:       inject.Inspect,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "activate", Aliases: []string{"a"}, Usage: "activate every target in turn and report offsets"},
		},
		ArgsUsage: "DOCUMENT",
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:         "serve",
		Usage:        "Serves directory over HTTP attaching table of contents to documents on the fly",
		OnUsageError: passUsageError,
		Action:       server.Run,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "listen", Aliases: []string{"l"}, Usage: "listen on `ADDRESS` instead of configured one"},
		},
		ArgsUsage:          "ROOT",
		CustomHelpTemplate: fmt.Sprintf(serveHelp, cli.CommandHelpTemplate, server.InspectPrefix),
	}
}

func dumpConfigCommand() *cli.Command {
	return &cli.Command{
		Name:         "dumpconfig",
		Usage:        "Dumps either default or actual configuration (YAML)",
		OnUsageError: passUsageError,
		Action:       dumpConfig,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "default", Usage: "output default embedded configuration"},
		},
		ArgsUsage:          "DESTINATION",
		CustomHelpTemplate: fmt.Sprintf(dumpConfigHelp, cli.CommandHelpTemplate),
	}
}

func dumpConfig(ctx context.Context, cmd *cli.Command) (err error) {
	env := state.EnvFromContext(ctx)
	if cmd.Args().Len() > 1 {
		env.Log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}

	which, data := "actual", []byte(nil)
	if cmd.Bool("default") {
		which = "default"
		data, err = config.Prepare()
	} else {
		data, err = config.Dump(env.Cfg)
	}
	if err != nil {
		return fmt.Errorf("unable to get configuration: %w", err)
	}

	fname := cmd.Args().Get(0)
	if len(fname) == 0 {
		env.Log.Info("Outputting configuration", zap.String("state", which), zap.String("file", "STDOUT"))
		_, err = os.Stdout.Write(data)
	} else {
		env.Log.Info("Outputting configuration", zap.String("state", which), zap.String("file", fname))
		err = os.WriteFile(fname, data, 0o644)
	}
	if err != nil {
		return fmt.Errorf("unable to write configuration: %w", err)
	}
	return nil
}
