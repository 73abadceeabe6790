package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	cli "github.com/urfave/cli/v2"

	"github.com/dreamware/iconshard/internal/iconset"
	"github.com/dreamware/iconshard/internal/shard"
)

var chunksCmd = &cli.Command{
	Name:      "chunks",
	Usage:     "print how an icon set file would be split into chunks",
	ArgsUsage: "<file>",
	Flags:     splitFlags,
	Action: func(cctx *cli.Context) error {
		if cctx.NArg() != 1 {
			return cli.Exit("expected exactly one icon set file", 1)
		}

		f, err := os.Open(cctx.Args().First())
		if err != nil {
			return err
		}
		defer f.Close()

		set, err := iconset.Decode(f)
		if err != nil {
			return err
		}

		cfg := splitConfig(cctx)
		count := shard.ChunkCount(set.Icons, cfg)
		chunks := shard.Split(set.Icons, count)

		out := cctx.App.Writer
		fmt.Fprintf(out, "prefix: %s\nicons: %d\nbytes: %d\nchunks: %d\n\n",
			set.Prefix, len(set.Icons), set.Icons.BodySize(), len(chunks))

		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "INDEX\tFIRST\tLAST\tICONS\tBYTES")
		for i, chunk := range chunks {
			names := chunk.Icons.Names()
			fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\n",
				i, chunk.Key, names[len(names)-1], len(chunk.Icons), chunk.Icons.BodySize())
		}
		return tw.Flush()
	},
}
