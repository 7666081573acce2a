package main

import (
	"fmt"

	"gopkg.in/urfave/cli.v1"

	"github.com/fjl/memsize"

	"github.com/libswift/tswift/config"
	"github.com/libswift/tswift/digest"
	"github.com/libswift/tswift/swarm"
	"github.com/libswift/tswift/transfer"
)

var (
	openCommand = cli.Command{
		Name:      "open",
		Usage:     "register and activate a swarm over an existing local file",
		ArgsUsage: "<file>",
		Flags:     []cli.Flag{ChunkSizeFlag, LiveFlag},
		Action:    openAction,
	}
	infoCommand = cli.Command{
		Name:      "info",
		Usage:     "print a swarm's id, state, size, and completeness",
		ArgsUsage: "<id-hex>",
		Action:    infoAction,
	}
	checkpointCommand = cli.Command{
		Name:      "checkpoint",
		Usage:     "force an active swarm to write its checkpoint now",
		ArgsUsage: "<id-hex>",
		Action:    checkpointAction,
	}
	removeCommand = cli.Command{
		Name:      "remove",
		Usage:     "unregister a swarm, deleting its content if -delete is set",
		ArgsUsage: "<id-hex>",
		Flags:     []cli.Flag{cli.BoolFlag{Name: "delete", Usage: "also delete the swarm's content file"}},
		Action:    removeAction,
	}
	setMaxSpeedCommand = cli.Command{
		Name:      "setmaxspeed",
		Usage:     "cap a swarm's upload or download rate",
		ArgsUsage: "<id-hex> <up|down> <bytes-per-sec>",
		Action:    setMaxSpeedAction,
	}
	watchCommand = cli.Command{
		Name:      "watch",
		Usage:     "display a progress bar tracking a swarm's completeness",
		ArgsUsage: "<id-hex>",
		Action:    watchAction,
	}
	diagCommand = cli.Command{
		Name:   "diag",
		Usage:  "report the memory footprint of the swarm manager's active set",
		Action: diagAction,
	}
)

func openAction(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return cli.NewExitError("usage: tswift open [options] <file>", 1)
	}
	path := ctx.Args().Get(0)

	mgr, err := openManager(ctx)
	if err != nil {
		return err
	}
	defer mgr.Close()

	flags := swarm.FlagActivate
	if ctx.Bool(LiveFlag.Name) {
		flags |= swarm.FlagLive
	}

	var rec *swarm.Record
	err = traced("swarm.open", func() error {
		var err error
		rec, err = mgr.AddSwarm(path, swarm.ID{}, flags, ctx.Int64(ChunkSizeFlag.Name))
		return err
	})
	if err != nil {
		return err
	}

	fmt.Printf("swarm %s opened: path=%s size=%d complete=%d state=%s\n",
		rec.ID.String(), rec.Path, rec.Size, rec.Complete, rec.State)
	return nil
}

func infoAction(ctx *cli.Context) error {
	id, err := swarmIDArg(ctx, 0)
	if err != nil {
		return err
	}
	mgr, err := openManager(ctx)
	if err != nil {
		return err
	}
	defer mgr.Close()

	rec, err := mgr.FindSwarm(id)
	if err != nil {
		return err
	}
	fmt.Printf("id=%s path=%s chunksize=%d state=%s size=%d complete=%d live=%v\n",
		rec.ID.String(), rec.Path, rec.ChunkSize, rec.State, rec.Size, rec.Complete,
		rec.Flags&swarm.FlagLive != 0)
	return nil
}

func checkpointAction(ctx *cli.Context) error {
	id, err := swarmIDArg(ctx, 0)
	if err != nil {
		return err
	}
	mgr, err := openManager(ctx)
	if err != nil {
		return err
	}
	defer mgr.Close()

	return traced("swarm.checkpoint", func() error {
		rec, err := mgr.FindSwarm(id)
		if err != nil {
			return err
		}
		if rec.State != swarm.StateActive || rec.Tree == nil {
			return fmt.Errorf("tswift: swarm %s is not active", id.String())
		}
		if err := rec.Tree.Checkpoint(rec.Path + ".mbinmap"); err != nil {
			return err
		}
		fmt.Printf("swarm %s checkpointed\n", id.String())
		return nil
	})
}

func removeAction(ctx *cli.Context) error {
	id, err := swarmIDArg(ctx, 0)
	if err != nil {
		return err
	}
	mgr, err := openManager(ctx)
	if err != nil {
		return err
	}
	defer mgr.Close()

	if err := mgr.RemoveSwarm(id, ctx.Bool("delete")); err != nil {
		return err
	}
	fmt.Printf("swarm %s marked for removal\n", id.String())
	return nil
}

func setMaxSpeedAction(ctx *cli.Context) error {
	if ctx.NArg() != 3 {
		return cli.NewExitError("usage: tswift setmaxspeed <id-hex> <up|down> <bytes-per-sec>", 1)
	}
	id, err := swarmIDArg(ctx, 0)
	if err != nil {
		return err
	}
	var dir transfer.Direction
	switch ctx.Args().Get(1) {
	case "up":
		dir = transfer.Up
	case "down":
		dir = transfer.Down
	default:
		return cli.NewExitError("direction must be \"up\" or \"down\"", 1)
	}
	var bps int64
	if _, err := fmt.Sscanf(ctx.Args().Get(2), "%d", &bps); err != nil {
		return fmt.Errorf("tswift: invalid bytes-per-sec %q: %w", ctx.Args().Get(2), err)
	}

	surfaces.get(id).SetMaxSpeed(dir, bps)
	fmt.Printf("swarm %s max %s speed set to %d bytes/sec\n", id.String(), ctx.Args().Get(1), bps)
	return nil
}

func watchAction(ctx *cli.Context) error {
	id, err := swarmIDArg(ctx, 0)
	if err != nil {
		return err
	}
	mgr, err := openManager(ctx)
	if err != nil {
		return err
	}
	defer mgr.Close()

	rec, err := mgr.FindSwarm(id)
	if err != nil {
		return err
	}
	watchProgress(surfaces.get(id), rec.Size, id.String())
	return nil
}

func diagAction(ctx *cli.Context) error {
	mgr, err := openManager(ctx)
	if err != nil {
		return err
	}
	defer mgr.Close()

	r := memsize.Scan(mgr)
	fmt.Println(r.Report())
	return nil
}

func swarmIDArg(ctx *cli.Context, n int) (swarm.ID, error) {
	if ctx.NArg() <= n {
		return swarm.ID{}, cli.NewExitError("missing swarm id argument", 1)
	}
	return digest.FromHex(ctx.Args().Get(n))
}

func openManager(ctx *cli.Context) (*swarm.Manager, error) {
	cfg := config.NewConfig()
	if path := ctx.GlobalString(ConfigFlag.Name); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if ctx.GlobalIsSet(MetaStoreFlag.Name) {
		cfg.MetaStorePath = ctx.GlobalString(MetaStoreFlag.Name)
	}
	if ctx.GlobalIsSet(MaxActiveSwarmsFlag.Name) {
		cfg.MaxActiveSwarms = ctx.GlobalInt(MaxActiveSwarmsFlag.Name)
	}

	mgr, err := swarm.New(cfg.MetaStorePath, newBuilder(cfg))
	if err != nil {
		return nil, err
	}
	mgr.SetMaximumActiveSwarms(cfg.MaxActiveSwarms)
	return mgr, nil
}
