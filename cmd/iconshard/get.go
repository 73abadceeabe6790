package main

import (
	"encoding/json"

	cli "github.com/urfave/cli/v2"

	"github.com/dreamware/iconshard/internal/client"
)

var getCmd = &cli.Command{
	Name:      "get",
	Usage:     "fetch icons from a running server and print them as JSON",
	ArgsUsage: "<prefix> <name>...",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Usage:   "base URL of the iconshard API",
			Value:   "http://localhost:3000",
			EnvVars: []string{"ICONSHARD_SERVER"},
		},
	},
	Action: func(cctx *cli.Context) error {
		if cctx.NArg() < 2 {
			return cli.Exit("expected a prefix and at least one icon name", 1)
		}
		args := cctx.Args().Slice()

		c := client.New(cctx.String("server"))
		result, err := c.GetIcons(cctx.Context, args[0], args[1:])
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cctx.App.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}
