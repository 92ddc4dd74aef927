// Package train fits an MLP to samples by replaying one recorded loss graph.
//
// The loss graph is built once on a tape. Each sample is fed by writing its
// values into the tape's input and target leaves, then Tape.Update
// recomputes the forward pass in place, Graph.Backward fills the parameter
// gradients and the optimizer applies them.
package train

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"github.com/born-ml/raccoon/internal/autodiff"
	"github.com/born-ml/raccoon/internal/nn"
	"github.com/born-ml/raccoon/internal/optim"
)

// Optimizer names accepted by Config.Optimizer.
const (
	OptimizerSGD  = "sgd"
	OptimizerAdam = "adam"
)

// ErrInvalidConfig reports a configuration the trainer cannot run with.
var ErrInvalidConfig = errors.New("train: invalid config")

// Config holds trainer settings. Zero fields take the defaults noted below.
type Config struct {
	Shape     []int         // layer widths, input first (default: {1, 1})
	Hidden    nn.Activation // hidden-layer activation (default: identity)
	Epochs    int           // passes over the data per Fit (default: 100)
	LR        float64       // learning rate (default: optimizer's default)
	Momentum  float64       // SGD momentum
	Optimizer string        // OptimizerSGD or OptimizerAdam (default: sgd)
	Seed      int64         // parameter initialization seed
	Run       string        // checkpoint run name (default: "default")
	Every     int           // checkpoint every N epochs; 0 disables
}

func (c Config) withDefaults() Config {
	if len(c.Shape) == 0 {
		c.Shape = []int{1, 1}
	}
	if c.Epochs == 0 {
		c.Epochs = 100
	}
	if c.Optimizer == "" {
		c.Optimizer = OptimizerSGD
	}
	if c.Run == "" {
		c.Run = "default"
	}
	return c
}

// Sample is one training example.
type Sample struct {
	Inputs  []float64
	Targets []float64
}

// Checkpointer persists named values for a run at a step.
type Checkpointer interface {
	Save(ctx context.Context, run string, step int, values map[string]float64) error
}

// Restorer loads the latest snapshot of a run into a module.
type Restorer interface {
	Restore(ctx context.Context, run string, m nn.Module) (int, error)
}

// stateful is implemented by optimizers with per-parameter state.
type stateful interface {
	StateDict() map[string]float64
	LoadStateDict(map[string]float64) error
}

// Trainer owns a graph holding one MLP and its recorded loss.
type Trainer struct {
	cfg   Config
	ckpt  Checkpointer
	g     *autodiff.Graph
	model *nn.MLP
	opt   optim.Optimizer
	tape  *autodiff.Tape

	inputs  []autodiff.Node
	targets []autodiff.Node
	outputs []autodiff.Node
	loss    autodiff.Node

	epoch int // epochs completed, checkpoints are saved under this step
}

// New builds the model and records its loss graph. ckpt may be nil.
func New(cfg Config, ckpt Checkpointer) (*Trainer, error) {
	cfg = cfg.withDefaults()
	if cfg.Epochs < 0 || cfg.Every < 0 || cfg.LR < 0 {
		return nil, fmt.Errorf("%w: epochs %d, every %d, lr %g", ErrInvalidConfig, cfg.Epochs, cfg.Every, cfg.LR)
	}

	g := autodiff.NewGraph()
	model, err := nn.NewMLP(g, nn.MLPConfig{
		Shape:  cfg.Shape,
		Hidden: cfg.Hidden,
		Rand:   rand.New(rand.NewSource(cfg.Seed)),
	})
	if err != nil {
		return nil, fmt.Errorf("train: %w", err)
	}

	var opt optim.Optimizer
	switch cfg.Optimizer {
	case OptimizerSGD:
		opt = optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: cfg.LR, Momentum: cfg.Momentum})
	case OptimizerAdam:
		opt = optim.NewAdam(model.Parameters(), optim.AdamConfig{LR: cfg.LR})
	default:
		return nil, fmt.Errorf("%w: unknown optimizer %q", ErrInvalidConfig, cfg.Optimizer)
	}

	t := &Trainer{cfg: cfg, ckpt: ckpt, g: g, model: model, opt: opt}
	if err := t.record(); err != nil {
		return nil, err
	}
	return t, nil
}

// record builds inputs -> model -> loss on a fresh tape and compiles it.
func (t *Trainer) record() error {
	t.tape = autodiff.NewTape(t.g)
	if err := t.g.StartRecording(t.tape); err != nil {
		return fmt.Errorf("train: record: %w", err)
	}
	defer t.g.StopRecording()

	t.inputs = make([]autodiff.Node, t.model.InputSize())
	for i := range t.inputs {
		t.inputs[i] = t.g.Leaf(0)
	}
	t.targets = make([]autodiff.Node, t.model.OutputSize())
	for i := range t.targets {
		t.targets[i] = t.g.Leaf(0)
	}

	var err error
	if t.outputs, err = t.model.Forward(t.inputs); err != nil {
		return fmt.Errorf("train: record: %w", err)
	}
	if t.loss, err = nn.MSELoss(t.g, t.outputs, t.targets); err != nil {
		return fmt.Errorf("train: record: %w", err)
	}
	t.tape.Compile()
	return nil
}

// Model returns the trained model.
func (t *Trainer) Model() *nn.MLP {
	return t.model
}

// Optimizer returns the optimizer applying the updates.
func (t *Trainer) Optimizer() optim.Optimizer {
	return t.opt
}

// Tape returns the compiled tape holding the loss graph.
func (t *Trainer) Tape() *autodiff.Tape {
	return t.tape
}

// SetCheckpointer replaces the checkpoint destination; nil disables
// checkpoints.
func (t *Trainer) SetCheckpointer(c Checkpointer) {
	t.ckpt = c
}

// Epoch returns the number of completed epochs.
func (t *Trainer) Epoch() int {
	return t.epoch
}

// Fit runs Config.Epochs epochs over data and returns the mean loss of each.
// report, if not nil, is called after every epoch.
//
// A cancelled ctx stops training between samples; the losses of the
// completed epochs are returned with the context error.
func (t *Trainer) Fit(ctx context.Context, data []Sample, report func(epoch int, loss float64)) ([]float64, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: no samples", ErrInvalidConfig)
	}
	for i, s := range data {
		if err := t.checkSample(s); err != nil {
			return nil, fmt.Errorf("train: sample %d: %w", i, err)
		}
	}

	losses := make([]float64, 0, t.cfg.Epochs)
	for epoch := 0; epoch < t.cfg.Epochs; epoch++ {
		var sum float64
		for _, s := range data {
			if err := ctx.Err(); err != nil {
				return losses, err
			}
			l, err := t.step(s)
			if err != nil {
				return losses, err
			}
			sum += l
		}

		t.epoch++
		mean := sum / float64(len(data))
		losses = append(losses, mean)
		if report != nil {
			report(t.epoch, mean)
		}

		if t.ckpt != nil && t.cfg.Every > 0 && t.epoch%t.cfg.Every == 0 {
			if err := t.Checkpoint(ctx); err != nil {
				return losses, err
			}
		}
	}
	return losses, nil
}

// step trains on one sample and returns its loss before the update.
func (t *Trainer) step(s Sample) (float64, error) {
	if err := t.feed(s); err != nil {
		return 0, err
	}
	l, err := t.g.Value(t.loss)
	if err != nil {
		return 0, fmt.Errorf("train: %w", err)
	}
	if err := t.g.Backward(t.loss); err != nil {
		return 0, fmt.Errorf("train: %w", err)
	}
	if err := t.opt.Step(); err != nil {
		return 0, fmt.Errorf("train: %w", err)
	}
	if err := t.opt.ZeroGrad(); err != nil {
		return 0, fmt.Errorf("train: %w", err)
	}
	return l, nil
}

// feed writes s into the taped leaves and replays the tape.
func (t *Trainer) feed(s Sample) error {
	for i, v := range s.Inputs {
		if err := t.g.SetValue(t.inputs[i], v); err != nil {
			return fmt.Errorf("train: %w", err)
		}
	}
	for i, v := range s.Targets {
		if err := t.g.SetValue(t.targets[i], v); err != nil {
			return fmt.Errorf("train: %w", err)
		}
	}
	if err := t.tape.Update(); err != nil {
		return fmt.Errorf("train: %w", err)
	}
	return nil
}

func (t *Trainer) checkSample(s Sample) error {
	if len(s.Inputs) != len(t.inputs) || len(s.Targets) != len(t.targets) {
		return fmt.Errorf("%w: sample has %d inputs and %d targets, model wants %d and %d",
			nn.ErrShapeMismatch, len(s.Inputs), len(s.Targets), len(t.inputs), len(t.targets))
	}
	return nil
}

// Evaluate returns the mean loss over data without updating parameters.
func (t *Trainer) Evaluate(data []Sample) (float64, error) {
	if len(data) == 0 {
		return 0, fmt.Errorf("%w: no samples", ErrInvalidConfig)
	}
	var sum float64
	for i, s := range data {
		if err := t.checkSample(s); err != nil {
			return 0, fmt.Errorf("train: sample %d: %w", i, err)
		}
		if err := t.feed(s); err != nil {
			return 0, err
		}
		l, err := t.g.Value(t.loss)
		if err != nil {
			return 0, fmt.Errorf("train: %w", err)
		}
		sum += l
	}
	return sum / float64(len(data)), nil
}

// Predict returns the model outputs for inputs.
func (t *Trainer) Predict(inputs []float64) ([]float64, error) {
	s := Sample{Inputs: inputs, Targets: make([]float64, len(t.targets))}
	if err := t.checkSample(s); err != nil {
		return nil, fmt.Errorf("train: predict: %w", err)
	}
	if err := t.feed(s); err != nil {
		return nil, err
	}
	out := make([]float64, len(t.outputs))
	for i, n := range t.outputs {
		v, err := t.g.Value(n)
		if err != nil {
			return nil, fmt.Errorf("train: predict: %w", err)
		}
		out[i] = v
	}
	return out, nil
}

// Checkpoint saves the model parameters, and the optimizer state under the
// "optim." prefix, at the current epoch.
func (t *Trainer) Checkpoint(ctx context.Context) error {
	if t.ckpt == nil {
		return nil
	}
	state, err := nn.StateDict(t.model)
	if err != nil {
		return fmt.Errorf("train: checkpoint: %w", err)
	}
	if s, ok := t.opt.(stateful); ok {
		for k, v := range s.StateDict() {
			state[optimPrefix+k] = v
		}
	}
	if err := t.ckpt.Save(ctx, t.cfg.Run, t.epoch, state); err != nil {
		return fmt.Errorf("train: checkpoint: %w", err)
	}
	return nil
}

const optimPrefix = "optim."

// Resume loads the latest checkpoint of the configured run into the model
// and continues epoch numbering from its step.
func (t *Trainer) Resume(ctx context.Context, r Restorer) error {
	step, err := r.Restore(ctx, t.cfg.Run, t.model)
	if err != nil {
		return fmt.Errorf("train: resume: %w", err)
	}
	t.epoch = step
	return nil
}

// LoadOptimizerState restores optimizer state saved by Checkpoint from a
// full snapshot.
func (t *Trainer) LoadOptimizerState(values map[string]float64) error {
	s, ok := t.opt.(stateful)
	if !ok {
		return nil
	}
	state := make(map[string]float64)
	for k, v := range values {
		if name, ok := strings.CutPrefix(k, optimPrefix); ok {
			state[name] = v
		}
	}
	if err := s.LoadStateDict(state); err != nil {
		return fmt.Errorf("train: %w", err)
	}
	return nil
}
