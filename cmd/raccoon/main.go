// Package main provides the raccoon CLI.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/born-ml/raccoon/internal/autodiff"
	"github.com/born-ml/raccoon/internal/chain"
	"github.com/born-ml/raccoon/internal/checkpoint"
	"github.com/born-ml/raccoon/internal/nn"
	"github.com/born-ml/raccoon/internal/parallel"
	"github.com/born-ml/raccoon/internal/serialization"
	"github.com/born-ml/raccoon/internal/train"
)

const version = "v0.1.0-dev"

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}
	if err := run(os.Args[1], os.Args[2:]); err != nil {
		log.Fatalf("%s: %v", os.Args[1], err)
	}
}

func run(cmd string, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch cmd {
	case "version":
		fmt.Printf("raccoon %s\n", version)
		return nil
	case "demo":
		return runDemo()
	case "train":
		return runTrain(ctx, args)
	case "runs":
		return runRuns(ctx, args)
	case "export":
		return runExport(ctx, args)
	case "inspect":
		return runInspect(args)
	default:
		usage()
		return errors.New("unknown command")
	}
}

func usage() {
	fmt.Println("raccoon - scalar reverse-mode autodiff")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  version    Show version")
	fmt.Println("  demo       Differentiate g = (a*b + c) * (c - a) and print every gradient")
	fmt.Println("  train      Fit an MLP to synthetic linear data (see train -h)")
	fmt.Println("  runs       List checkpointed runs in a database")
	fmt.Println("  export     Write the latest checkpoint of a run to a .rcn file")
	fmt.Println("  inspect    Print the header and values of a .rcn file")
}

// runDemo builds the worked example a=-4, b=2, c=6:
// d = a*b, e = d+c, f = c-a, g = e*f.
func runDemo() error {
	g := autodiff.NewGraph()
	a, b, c := g.Leaf(-4), g.Leaf(2), g.Leaf(6)

	d, err := g.Mul(a, b)
	if err != nil {
		return err
	}
	e, err := g.Add(d, c)
	if err != nil {
		return err
	}
	f, err := g.Sub(c, a)
	if err != nil {
		return err
	}
	out, err := g.Mul(e, f)
	if err != nil {
		return err
	}
	if err := g.Backward(out); err != nil {
		return err
	}

	order, err := g.DependencyList(out)
	if err != nil {
		return err
	}
	names := map[autodiff.Node]string{a: "a", b: "b", c: "c", d: "d", e: "e", f: "f", out: "g"}
	fmt.Printf("%-4s %10s %10s\n", "node", "value", "grad")
	for _, n := range order {
		v, err := g.Var(n)
		if err != nil {
			return err
		}
		fmt.Printf("%-4s %10g %10g\n", names[n], v.Value, v.Grad)
	}
	return runChainDemo()
}

// runChainDemo folds ((x*3)+4-1)/3 left to right from x = 2.
func runChainDemo() error {
	g := autodiff.NewGraph()
	s := chain.New(g, 2)
	defer s.Close()

	steps := []func(float64) error{s.MulValue, s.AddValue, s.SubValue, s.DivValue}
	for i, v := range []float64{3, 4, 1, 3} {
		if err := steps[i](v); err != nil {
			return err
		}
	}
	if err := s.Backward(); err != nil {
		return err
	}
	value, err := s.Value()
	if err != nil {
		return err
	}
	fmt.Printf("\nchain ((x*3)+4-1)/3 at x=2: %g (%d nodes)\n", value, s.Len())
	return nil
}

func runTrain(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("train", flag.ExitOnError)
	epochs := fs.Int("epochs", 100, "Number of training epochs")
	lr := fs.Float64("lr", 0.05, "Learning rate")
	momentum := fs.Float64("momentum", 0, "SGD momentum")
	optimizer := fs.String("optim", train.OptimizerSGD, "Optimizer: sgd or adam")
	shape := fs.String("shape", "2,1", "Comma-separated layer widths, input first")
	samples := fs.Int("samples", 64, "Number of synthetic samples")
	seed := fs.Int64("seed", 1, "Random seed for data and initialization")
	dbPath := fs.String("db", "", "SQLite checkpoint database (empty = no checkpoints)")
	run := fs.String("run", "default", "Checkpoint run name")
	every := fs.Int("every", 10, "Checkpoint every N epochs")
	resume := fs.Bool("resume", false, "Resume from the latest checkpoint of -run")
	savePath := fs.String("save", "", "Write the trained parameters to this .rcn file")
	restarts := fs.Int("restarts", 1, "Train this many seeds in parallel and keep the best")
	if err := fs.Parse(args); err != nil {
		return err
	}

	widths, err := parseShape(*shape)
	if err != nil {
		return err
	}
	if widths[len(widths)-1] != 1 {
		return fmt.Errorf("shape %q: synthetic data has a single target", *shape)
	}

	cfg := train.Config{
		Shape:     widths,
		Epochs:    *epochs,
		LR:        *lr,
		Momentum:  *momentum,
		Optimizer: *optimizer,
		Seed:      *seed,
		Run:       *run,
		Every:     *every,
	}

	var store *checkpoint.Store
	if *dbPath != "" {
		if store, err = checkpoint.Open(ctx, *dbPath); err != nil {
			return err
		}
		defer store.Close()
	}

	rng := rand.New(rand.NewSource(*seed))
	w := make([]float64, widths[0])
	for i := range w {
		w[i] = 4*rng.Float64() - 2
	}
	b := 2*rng.Float64() - 1
	data, err := train.LinearData(rng, *samples, w, b)
	if err != nil {
		return err
	}

	fmt.Println("raccoon: training MLP")
	fmt.Printf("  shape=%v optim=%s lr=%g momentum=%g samples=%d\n", widths, *optimizer, *lr, *momentum, *samples)
	fmt.Printf("  target: w=%.4f b=%.4f\n\n", w, b)

	var (
		tr     *train.Trainer
		losses []float64
	)
	if *restarts > 1 {
		if *resume {
			return errors.New("-resume and -restarts are exclusive")
		}
		results, best, err := train.Sweep(ctx, cfg, *restarts, data, parallel.DefaultConfig())
		if err != nil {
			return err
		}
		for _, r := range results {
			log.Printf("Seed %d: final loss=%.6f", r.Seed, r.Final())
		}
		tr, losses = results[best].Trainer, results[best].Losses
		if store != nil {
			tr.SetCheckpointer(store)
		}
		log.Printf("Kept seed %d", results[best].Seed)
	} else {
		if tr, err = newTrainer(cfg, store); err != nil {
			return err
		}
		if *resume {
			if err := resumeTrainer(ctx, tr, store, *run); err != nil {
				return err
			}
		}
		fmt.Printf("  tape: %d nodes\n\n", tr.Tape().Len())

		logEvery := max(*epochs/10, 1)
		losses, err = tr.Fit(ctx, data, func(epoch int, loss float64) {
			if epoch%logEvery == 0 {
				log.Printf("Epoch %d: loss=%.6f", epoch, loss)
			}
		})
		if err != nil {
			return err
		}
	}

	if store != nil {
		if err := tr.Checkpoint(ctx); err != nil {
			return err
		}
		log.Printf("Saved run %q at epoch %d to %s", *run, tr.Epoch(), *dbPath)
	}

	if *savePath != "" {
		state, err := nn.StateDict(tr.Model())
		if err != nil {
			return err
		}
		var last float64
		if len(losses) > 0 {
			last = losses[len(losses)-1]
		}
		header := serialization.Header{
			ModelType: "MLP",
			Metadata:  map[string]string{"shape": *shape},
			CheckpointMeta: &serialization.CheckpointMeta{
				Run:       *run,
				Epoch:     tr.Epoch(),
				Loss:      last,
				Optimizer: *optimizer,
			},
		}
		if err := serialization.WriteFile(*savePath, state, header); err != nil {
			return err
		}
		log.Printf("Wrote %d parameters to %s", len(state), *savePath)
	}
	return nil
}

func runExport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	dbPath := fs.String("db", "raccoon.db", "SQLite checkpoint database")
	run := fs.String("run", "default", "Checkpoint run name")
	out := fs.String("out", "model.rcn", "Output .rcn file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := checkpoint.Open(ctx, *dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	step, values, err := store.Latest(ctx, *run)
	if err != nil {
		return err
	}
	header := serialization.Header{
		ModelType:      "MLP",
		CheckpointMeta: &serialization.CheckpointMeta{Run: *run, Epoch: step},
	}
	if err := serialization.WriteFile(*out, values, header); err != nil {
		return err
	}
	fmt.Printf("Exported run %q epoch %d (%d values) to %s\n", *run, step, len(values), *out)
	return nil
}

func runInspect(args []string) error {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: raccoon inspect FILE")
	}

	header, values, err := serialization.ReadFile(fs.Arg(0))
	if err != nil {
		return err
	}
	fmt.Printf("format v%d, written by raccoon %s at %s\n",
		header.FormatVersion, header.RaccoonVersion, header.CreatedAt.Format(time.RFC3339))
	fmt.Printf("model: %s\n", header.ModelType)
	if c := header.CheckpointMeta; c != nil {
		fmt.Printf("run: %s epoch=%d loss=%g optim=%s\n", c.Run, c.Epoch, c.Loss, c.Optimizer)
	}
	for _, name := range header.Params {
		fmt.Printf("  %-28s %12.6f\n", name, values[name])
	}
	return nil
}

// newTrainer keeps a nil store from becoming a non-nil Checkpointer.
func newTrainer(cfg train.Config, store *checkpoint.Store) (*train.Trainer, error) {
	if store == nil {
		return train.New(cfg, nil)
	}
	return train.New(cfg, store)
}

func resumeTrainer(ctx context.Context, tr *train.Trainer, store *checkpoint.Store, run string) error {
	if store == nil {
		return errors.New("-resume needs -db")
	}
	if err := tr.Resume(ctx, store); err != nil {
		return err
	}
	_, values, err := store.Latest(ctx, run)
	if err != nil {
		return err
	}
	if err := tr.LoadOptimizerState(values); err != nil {
		return err
	}
	log.Printf("Resumed run %q at epoch %d", run, tr.Epoch())
	return nil
}

func runRuns(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ExitOnError)
	dbPath := fs.String("db", "raccoon.db", "SQLite checkpoint database")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := checkpoint.Open(ctx, *dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.Runs(ctx)
	if err != nil {
		return err
	}
	for _, run := range runs {
		step, values, err := store.Latest(ctx, run)
		if err != nil {
			return err
		}
		fmt.Printf("%-20s epoch=%-6d values=%d\n", run, step, len(values))
	}
	return nil
}

func parseShape(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	widths := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("shape %q: %w", s, err)
		}
		if n <= 0 {
			return nil, fmt.Errorf("shape %q: width %d is not positive", s, n)
		}
		widths[i] = n
	}
	if len(widths) < 2 {
		return nil, fmt.Errorf("shape %q: need an input and an output width", s)
	}
	return widths, nil
}
