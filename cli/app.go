// Package cli contains all business logic needed by the boardcfg CLI.
package cli

import (
	"io"

	"github.com/urfave/cli/v2"

	"github.com/nrfboot/boardcfg/logging"
)

// CLI flags.
const (
	debugFlag     = "debug"
	logLevelFlag  = "log-level"
	logFileFlag   = "log-file"
	boardsDirFlag = "boards-dir"
	watchFlag     = "watch"
	outFlag       = "out"
	checkFlag     = "check"
	indexFlag     = "index"
)

func newApp() *cli.App {
	return &cli.App{
		Name:            "boardcfg",
		Usage:           "inspect, validate and generate nRF52 bootloader board definitions",
		HideHelpCommand: true,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    debugFlag,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
			&cli.StringFlag{
				Name:  logLevelFlag,
				Value: "info",
				Usage: "minimum log `LEVEL` (debug, info, warn, error)",
			},
			&cli.PathFlag{
				Name:  logFileFlag,
				Usage: "also write logs to `FILE`, rotated by size",
			},
			&cli.StringFlag{
				Name:    boardsDirFlag,
				Aliases: []string{"d"},
				Usage:   "also load board files (*.json5, *.json) from `DIR`",
				EnvVars: []string{"BOARDCFG_BOARDS_DIR"},
			},
		},
		Metadata: map[string]interface{}{},
		Before:   setupLogging,
		After:    closeLogging,
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "list known boards",
				Action: ListAction,
			},
			{
				Name:      "show",
				Usage:     "show every setting of a board",
				ArgsUsage: "<board>",
				Action:    ShowAction,
			},
			{
				Name:      "validate",
				Usage:     "validate board files, or every known board when no files are given",
				ArgsUsage: "[file...]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    watchFlag,
						Aliases: []string{"w"},
						Usage:   "re-validate whenever a board file changes",
					},
				},
				Action: ValidateAction,
			},
			{
				Name:      "header",
				Usage:     "generate the C board header",
				ArgsUsage: "<board>",
				Flags: []cli.Flag{
					&cli.PathFlag{
						Name:  outFlag,
						Usage: "write the header to `FILE` instead of stdout",
					},
					&cli.PathFlag{
						Name:  checkFlag,
						Usage: "compare against an existing header `FILE` and fail on drift",
					},
				},
				Action: HeaderAction,
			},
			{
				Name:      "info",
				Usage:     "print the INFO_UF2.TXT the board's drive exposes",
				ArgsUsage: "<board>",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  indexFlag,
						Usage: "print INDEX.HTM instead",
					},
				},
				Action: InfoAction,
			},
			{
				Name:      "check-image",
				Usage:     "check that a UF2 image targets the board's MCU family",
				ArgsUsage: "<board> <file.uf2>",
				Action:    CheckImageAction,
			},
			{
				Name:   "schema",
				Usage:  "print the JSON schema of board files",
				Action: SchemaAction,
			},
		},
	}
}

// NewApp returns a new app with the CLI API, Writer set to out, and ErrWriter
// set to errOut.
func NewApp(out, errOut io.Writer) *cli.App {
	app := newApp()
	app.Writer = out
	app.ErrWriter = errOut
	return app
}

func setupLogging(c *cli.Context) error {
	logger := logging.NewBlankLogger("boardcfg")
	logger.AddAppender(logging.NewWriterAppender(c.App.ErrWriter))
	level, err := logging.LevelFromString(c.String(logLevelFlag))
	if err != nil {
		return err
	}
	if c.Bool(debugFlag) {
		level = logging.DEBUG
	}
	logger.SetLevel(level)
	if path := c.Path(logFileFlag); path != "" {
		fileAppender := logging.NewFileAppender(path)
		logger.AddAppender(fileAppender)
		c.App.Metadata[logFileFlag] = fileAppender
	}
	logging.ReplaceGlobal(logger)
	return nil
}

func closeLogging(c *cli.Context) error {
	fileAppender, ok := c.App.Metadata[logFileFlag].(*logging.FileAppender)
	if !ok {
		return nil
	}
	delete(c.App.Metadata, logFileFlag)
	return fileAppender.Close()
}
