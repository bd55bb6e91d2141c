package transform

import (
	"io"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/tracegraph/pkg/errors"
)

// ruleFile is the on-disk layout of a rule file:
//
//	[[rename]]
//	op = "aten::(.*)"
//	to = "${1}"
type ruleFile struct {
	Rename []struct {
		Op string `toml:"op"`
		To string `toml:"to"`
	} `toml:"rename"`
}

// ParseRules decodes rename rules from a TOML document. Rules are returned
// in file order.
func ParseRules(r io.Reader) ([]Rule, error) {
	var f ruleFile
	md, err := toml.NewDecoder(r).Decode(&f)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode rules")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidRule, "unknown key %q in rule file", undecoded[0].String())
	}

	rules := make([]Rule, 0, len(f.Rename))
	for i, rr := range f.Rename {
		if rr.Op == "" {
			return nil, errors.New(errors.ErrCodeInvalidRule, "rename rule %d: op is required", i+1)
		}
		rule, err := NewRename(rr.Op, rr.To)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// LoadRules reads a TOML rule file from path.
func LoadRules(path string) ([]Rule, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open %s", path)
	}
	defer f.Close()
	return ParseRules(f)
}
