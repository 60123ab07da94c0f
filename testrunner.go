package bramble

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// testStep represents a single action in a test script.
type testStep struct {
	Action string `json:"action" yaml:"action"`
	Key    string `json:"key,omitempty" yaml:"key,omitempty"`
	Frames int    `json:"frames,omitempty" yaml:"frames,omitempty"`
	Label  string `json:"label,omitempty" yaml:"label,omitempty"`

	key ebiten.Key
}

// testScript is the top-level structure for a test script.
type testScript struct {
	Steps []testStep `json:"steps" yaml:"steps"`
}

// TestRunner sequences injected key events across frames for automated
// playtests. Attach to an Engine via SetTestRunner.
type TestRunner struct {
	steps     []testStep
	cursor    int
	waitCount int
	tapped    []ebiten.Key
	done      bool
}

// LoadTestScript parses a YAML or JSON test script. Supported actions are
// "press" and "release" (hold or let go of a key), "tap" (press for one
// frame), "wait" (idle for a number of frames) and "screenshot" (capture the
// next drawn frame under a label).
func LoadTestScript(data []byte) (*TestRunner, error) {
	var script testScript
	if err := yaml.Unmarshal(data, &script); err != nil {
		return nil, errors.Wrap(err, "parse test script")
	}
	if len(script.Steps) == 0 {
		return nil, errors.New("parse test script: no steps")
	}
	for i := range script.Steps {
		st := &script.Steps[i]
		switch st.Action {
		case "press", "release", "tap":
			if err := st.key.UnmarshalText([]byte(st.Key)); err != nil {
				return nil, errors.Wrapf(err, "parse test script: step %d", i)
			}
		case "wait", "screenshot":
		default:
			return nil, errors.Errorf("parse test script: step %d: unknown action %q", i, st.Action)
		}
	}
	return &TestRunner{steps: script.Steps}, nil
}

// Done reports whether all steps in the test script have been executed.
func (r *TestRunner) Done() bool {
	return r.done
}

// step advances the runner by one frame. Called from Engine.Tick before the
// active screen updates. shoot queues a screenshot and may be nil.
func (r *TestRunner) step(k *Keyboard, shoot func(label string)) {
	for _, key := range r.tapped {
		k.InjectRelease(key)
	}
	r.tapped = r.tapped[:0]

	if r.done {
		return
	}
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++

	switch st.Action {
	case "press":
		k.InjectPress(st.key)
	case "release":
		k.InjectRelease(st.key)
	case "tap":
		k.InjectPress(st.key)
		r.tapped = append(r.tapped, st.key)
	case "screenshot":
		if shoot != nil {
			shoot(st.Label)
		}
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this frame counts as one
		}
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 {
		r.done = true
	}
}
