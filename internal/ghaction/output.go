package ghaction

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// Outputs is an ordered set of step outputs.
type Outputs struct {
	keys   []string
	values map[string]string
}

// NewOutputs creates an empty set.
func NewOutputs() *Outputs {
	return &Outputs{values: make(map[string]string)}
}

// Set records key=value, keeping first-insertion order.
func (o *Outputs) Set(key, value string) *Outputs {
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
	return o
}

// Get returns the value for key.
func (o *Outputs) Get(key string) (string, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Keys returns keys in insertion order.
func (o *Outputs) Keys() []string {
	return append([]string(nil), o.keys...)
}

// Map returns a copy of the outputs.
func (o *Outputs) Map() map[string]string {
	m := make(map[string]string, len(o.values))
	for k, v := range o.values {
		m[k] = v
	}
	return m
}

// Encode renders outputs in the $GITHUB_OUTPUT file format. Multi-line
// values use the heredoc form with a random delimiter.
func (o *Outputs) Encode() (string, error) {
	var sb strings.Builder
	for _, k := range o.keys {
		v := o.values[k]
		if !strings.ContainsAny(v, "\r\n") {
			fmt.Fprintf(&sb, "%s=%s\n", k, v)
			continue
		}
		delim, err := delimiter()
		if err != nil {
			return "", err
		}
		for strings.Contains(v, delim) {
			if delim, err = delimiter(); err != nil {
				return "", err
			}
		}
		fmt.Fprintf(&sb, "%s<<%s\n%s\n%s\n", k, delim, v, delim)
	}
	return sb.String(), nil
}

// AppendTo appends the encoded outputs to the file at path.
func (o *Outputs) AppendTo(fs afero.Fs, path string) error {
	encoded, err := o.Encode()
	if err != nil {
		return err
	}
	f, err := fs.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	if _, err := f.WriteString(encoded); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func delimiter() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate output delimiter: %w", err)
	}
	return "ghadelimiter_" + id.String(), nil
}
