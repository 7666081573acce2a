package main

import (
	"gopkg.in/urfave/cli.v1"

	"github.com/libswift/tswift/log"
	"github.com/libswift/tswift/wire"
)

var (
	MetaStoreFlag = cli.StringFlag{
		Name:  "metastore",
		Usage: "path to the LevelDB swarm metadata index",
		Value: "tswift-meta.ldb",
	}
	ConfigFlag = cli.StringFlag{
		Name:  "config",
		Usage: "path to a TOML config file overriding the defaults",
	}
	ChunkSizeFlag = cli.Int64Flag{
		Name:  "chunksize",
		Usage: "chunk size in bytes for swarms created by this command",
		Value: wire.DefaultChunkSize,
	}
	MaxActiveSwarmsFlag = cli.IntFlag{
		Name:  "maxactive",
		Usage: "maximum number of swarms kept active in memory at once",
		Value: 100,
	}
	LiveFlag = cli.BoolFlag{
		Name:  "live",
		Usage: "register the swarm as a live (growing, peak-signed) source instead of a static one",
	}
	VerbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Usage: "log verbosity: 0=crit 1=error 2=warn 3=info 4=debug 5=trace",
		Value: int(log.LvlInfo),
	}
	TracingFlag = cli.BoolFlag{
		Name:  "tracing",
		Usage: "emit opentracing spans for swarm operations to a local Jaeger agent",
	}
)
