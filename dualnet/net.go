// Package dualnet is a small dense policy+value network: one shared hidden
// layer feeding a policy head (one logit per action-space slot) and a
// value head (a single sigmoid-activated scalar in [0,1]). This is the "a
// small dense network on the fly" spec.md §1(d) mentions; the core reads
// the network's outputs only through game.Capability (spec.md §4.A), and
// imports this package only for SoftmaxTemperature. Its exact architecture and training are
// explicitly out of scope for the search core (spec.md §1) — this package
// only does inference and weight persistence.
package dualnet

import (
	"encoding/gob"
	"io"

	"github.com/chewxy/math32"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
	"gorgonia.org/vecf32"
)

// Config describes the network's shape, following the teacher's
// dualnet/config.go (trimmed of the training-only BatchSize/FwdOnly
// fields, which belonged to the dropped training loop).
type Config struct {
	Features    int `json:"features"`     // input feature count
	Hidden      int `json:"hidden"`       // shared hidden layer width
	ActionSpace int `json:"action_space"` // policy head width
}

// IsValid mirrors dual.Config.IsValid in the teacher.
func (c Config) IsValid() bool {
	return c.Features > 0 && c.Hidden > 0 && c.ActionSpace >= 2
}

// Weights holds the trained parameters, gob-encodable for Save/Load.
// Training (gradient descent over these) is out of scope here; a caller
// obtains a Weights value from an external trainer and Loads it.
type Weights struct {
	W1, B1 []float32 // Features x Hidden, Hidden
	WP, BP []float32 // Hidden x ActionSpace, ActionSpace (policy head)
	WV, BV []float32 // Hidden x 1, 1 (value head)
}

// Net is one inference instance of the dense policy+value network, built
// from a Config and a set of Weights over a fresh gorgonia ExprGraph.
type Net struct {
	conf Config
	g    *gorgonia.ExprGraph

	x  *gorgonia.Node
	w1 *gorgonia.Node
	b1 *gorgonia.Node
	wp *gorgonia.Node
	bp *gorgonia.Node
	wv *gorgonia.Node
	bv *gorgonia.Node

	policy *gorgonia.Node
	value  *gorgonia.Node

	machine *gorgonia.TapeMachine
}

// New builds an inference graph for conf, initialised with weights.
func New(conf Config, weights Weights) (*Net, error) {
	if !conf.IsValid() {
		return nil, errors.New("dualnet: invalid config")
	}

	g := gorgonia.NewGraph()

	x := gorgonia.NewVector(g, tensor.Float32, gorgonia.WithShape(conf.Features), gorgonia.WithName("x"))
	w1 := gorgonia.NewMatrix(g, tensor.Float32, gorgonia.WithShape(conf.Features, conf.Hidden), gorgonia.WithName("w1"),
		gorgonia.WithValue(tensor.New(tensor.WithShape(conf.Features, conf.Hidden), tensor.WithBacking(weights.W1))))
	b1 := gorgonia.NewVector(g, tensor.Float32, gorgonia.WithShape(conf.Hidden), gorgonia.WithName("b1"),
		gorgonia.WithValue(tensor.New(tensor.WithShape(conf.Hidden), tensor.WithBacking(weights.B1))))
	wp := gorgonia.NewMatrix(g, tensor.Float32, gorgonia.WithShape(conf.Hidden, conf.ActionSpace), gorgonia.WithName("wp"),
		gorgonia.WithValue(tensor.New(tensor.WithShape(conf.Hidden, conf.ActionSpace), tensor.WithBacking(weights.WP))))
	bp := gorgonia.NewVector(g, tensor.Float32, gorgonia.WithShape(conf.ActionSpace), gorgonia.WithName("bp"),
		gorgonia.WithValue(tensor.New(tensor.WithShape(conf.ActionSpace), tensor.WithBacking(weights.BP))))
	wv := gorgonia.NewMatrix(g, tensor.Float32, gorgonia.WithShape(conf.Hidden, 1), gorgonia.WithName("wv"),
		gorgonia.WithValue(tensor.New(tensor.WithShape(conf.Hidden, 1), tensor.WithBacking(weights.WV))))
	bv := gorgonia.NewVector(g, tensor.Float32, gorgonia.WithShape(1), gorgonia.WithName("bv"),
		gorgonia.WithValue(tensor.New(tensor.WithShape(1), tensor.WithBacking(weights.BV))))

	hPre, err := gorgonia.Mul(x, w1)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	hPre, err = gorgonia.Add(hPre, b1)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	hidden, err := gorgonia.Rectify(hPre)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	pPre, err := gorgonia.Mul(hidden, wp)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	policy, err := gorgonia.Add(pPre, bp)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	vPre, err := gorgonia.Mul(hidden, wv)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	vPre, err = gorgonia.Add(vPre, bv)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	value, err := gorgonia.Sigmoid(vPre)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return &Net{
		conf: conf, g: g,
		x: x, w1: w1, b1: b1, wp: wp, bp: bp, wv: wv, bv: bv,
		policy: policy, value: value,
		machine: gorgonia.NewTapeMachine(g),
	}, nil
}

// Close releases the tape machine's resources.
func (n *Net) Close() error {
	return n.machine.Close()
}

// Infer runs one forward pass, returning the raw (pre-softmax) policy
// logits over the full action space and the [0,1] value estimate.
func (n *Net) Infer(features []float32) (policyLogits []float32, value float32, err error) {
	if len(features) != n.conf.Features {
		return nil, 0, errors.Errorf("dualnet: expected %d features, got %d", n.conf.Features, len(features))
	}

	in := tensor.New(tensor.WithShape(n.conf.Features), tensor.WithBacking(vecf32.Vector(features)))
	if err := gorgonia.Let(n.x, in); err != nil {
		return nil, 0, errors.WithStack(err)
	}

	n.machine.Reset()
	if err := n.machine.RunAll(); err != nil {
		return nil, 0, errors.WithStack(err)
	}

	policyLogits = make([]float32, n.conf.ActionSpace)
	copy(policyLogits, n.policy.Value().Data().([]float32))
	valVec := n.value.Value().Data().([]float32)
	value = valVec[0]
	return policyLogits, value, nil
}

// Pool is a fixed set of independent inference sessions built from the
// same Config and Weights, grounded on the teacher's agent.go::Agent,
// which held one Inferer per concurrent simulation. The search core here
// is single-threaded (spec.md §5), so a Pool is sized to whatever a
// caller needs concurrent sessions for (e.g. a UCI host process serving
// more than one engine instance); its only job is to close every session
// together.
type Pool struct {
	nets []*Net
}

// NewPool builds n independent sessions over conf/weights. If any session
// fails to build, the ones already built are closed before returning the
// error.
func NewPool(conf Config, weights Weights, n int) (*Pool, error) {
	nets := make([]*Net, 0, n)
	for i := 0; i < n; i++ {
		net, err := New(conf, weights)
		if err != nil {
			for _, built := range nets {
				built.Close()
			}
			return nil, err
		}
		nets = append(nets, net)
	}
	return &Pool{nets: nets}, nil
}

// Get returns the i-th session in the pool.
func (p *Pool) Get(i int) *Net {
	return p.nets[i%len(p.nets)]
}

// Len reports how many sessions the pool holds.
func (p *Pool) Len() int {
	return len(p.nets)
}

// Close closes every session, aggregating every failure via
// go-multierror instead of stopping at the first one — mirrors
// agent.go::Agent.Close's multierror.Append loop over a.inferers.
func (p *Pool) Close() error {
	var errs error
	for _, n := range p.nets {
		if err := n.Close(); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	if errs != nil {
		return errs
	}
	return nil
}

// SoftmaxTemperature returns the temperature-scaled softmax distribution
// over logits (spec.md §4.B policy_softmax_temperature, §4.F expansion
// step: subtract the per-node maximum logit for numerical stability,
// exponentiate, normalise). The search core calls this at expansion time
// over exactly the legal-move logits it has already gathered one at a
// time via game.Capability.PolicyLogit.
func SoftmaxTemperature(logits []float32, temp float32) []float32 {
	out := make([]float32, len(logits))
	if temp <= 0 {
		temp = 1
	}
	max := math32.Inf(-1)
	for _, l := range logits {
		v := l / temp
		if v > max {
			max = v
		}
	}
	var sum float32
	for i, l := range logits {
		v := math32.Exp(l/temp - max)
		out[i] = v
		sum += v
	}
	if sum > math32.SmallestNonzeroFloat32 {
		for i := range out {
			out[i] /= sum
		}
	} else {
		p := 1 / float32(len(out))
		for i := range out {
			out[i] = p
		}
	}
	return out
}

// Save persists weights via gob, matching the teacher's AZ.SaveAZ use of
// encoding/gob for network checkpoints.
func Save(w io.Writer, weights Weights) error {
	return errors.WithStack(gob.NewEncoder(w).Encode(weights))
}

// Load reads weights previously written by Save.
func Load(r io.Reader) (Weights, error) {
	var w Weights
	if err := gob.NewDecoder(r).Decode(&w); err != nil {
		return Weights{}, errors.WithStack(err)
	}
	return w, nil
}
