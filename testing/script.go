package testing

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ScriptStep is one entry of a YAML verification script. Exactly one field
// must be set per entry.
//
//	- expect: subscription
//	- next: [1, 2]
//	- count: 3
//	- request: 2
//	- await: 24h
//	- no_event: 1s
//	- error: "boom"
//	- complete: true
//	- cancel: true
//
// `error` matches any error whose message contains the given text; an empty
// string matches any error.
type ScriptStep struct {
	Expect   string    `yaml:"expect"`
	Next     yaml.Node `yaml:"next"`
	Count    int       `yaml:"count"`
	Request  int64     `yaml:"request"`
	Await    string    `yaml:"await"`
	NoEvent  string    `yaml:"no_event"`
	Error    *string   `yaml:"error"`
	Complete bool      `yaml:"complete"`
	Cancel   bool      `yaml:"cancel"`
}

// ErrInvalidScript is returned when a script entry cannot be applied.
var ErrInvalidScript = errors.New("invalid verification script")

// Script appends the steps described by a YAML document to the verifier.
// Values under `next` are decoded into T.
func (v *StepVerifier[T]) Script(data []byte) (*StepVerifier[T], error) {
	var steps []ScriptStep
	if err := yaml.Unmarshal(data, &steps); err != nil {
		return v, fmt.Errorf("%w: %w", ErrInvalidScript, err)
	}
	for i, st := range steps {
		if err := v.applyScriptStep(st); err != nil {
			return v, fmt.Errorf("%w: entry %d: %w", ErrInvalidScript, i+1, err)
		}
	}
	return v, nil
}

func (v *StepVerifier[T]) applyScriptStep(st ScriptStep) error {
	set := 0
	for _, ok := range []bool{
		st.Expect != "", st.Next.Kind != 0, st.Count > 0, st.Request != 0,
		st.Await != "", st.NoEvent != "", st.Error != nil, st.Complete, st.Cancel,
	} {
		if ok {
			set++
		}
	}
	if set != 1 {
		return fmt.Errorf("expected exactly one action, got %d", set)
	}

	switch {
	case st.Expect != "":
		if st.Expect != "subscription" {
			return fmt.Errorf("unknown expectation %q", st.Expect)
		}
		v.ExpectSubscription()
	case st.Next.Kind != 0:
		values, err := decodeValues[T](&st.Next)
		if err != nil {
			return fmt.Errorf("next: %w", err)
		}
		v.ExpectNext(values...)
	case st.Count > 0:
		v.ExpectNextCount(st.Count)
	case st.Request != 0:
		v.ThenRequest(st.Request)
	case st.Await != "":
		d, err := time.ParseDuration(st.Await)
		if err != nil {
			return fmt.Errorf("await: %w", err)
		}
		v.ThenAwait(d)
	case st.NoEvent != "":
		d, err := time.ParseDuration(st.NoEvent)
		if err != nil {
			return fmt.Errorf("no_event: %w", err)
		}
		v.ExpectNoEvent(d)
	case st.Error != nil:
		text := *st.Error
		v.expectError("expectError", fmt.Sprintf("onError containing %q", text), func(err error) bool {
			return strings.Contains(err.Error(), text)
		})
	case st.Complete:
		v.ExpectComplete()
	case st.Cancel:
		v.ThenCancel()
	}
	return nil
}

func decodeValues[T any](node *yaml.Node) ([]T, error) {
	if node.Kind == yaml.SequenceNode {
		var values []T
		if err := node.Decode(&values); err != nil {
			return nil, err
		}
		return values, nil
	}
	var value T
	if err := node.Decode(&value); err != nil {
		return nil, err
	}
	return []T{value}, nil
}
