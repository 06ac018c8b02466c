package revision

import (
	"gopkg.in/yaml.v3"

	"github.com/nikitalita/gdsdecomp-sub001/gderr"
)

// yamlDescriptor mirrors the registration format from spec §6.3 for
// the optional on-disk revision manifest SPEC_FULL.md adds: a way to
// register extra revisions without recompiling, grounded on the
// teacher's static-table-at-init-time idiom but relaxed to allow
// loading from a file at startup.
type yamlDescriptor struct {
	BytecodeVersion  int      `yaml:"bytecode_version"`
	BytecodeRev      string   `yaml:"bytecode_rev"`
	EngineVerMajor   int      `yaml:"engine_ver_major"`
	VariantVerMajor  int      `yaml:"variant_ver_major"`
	EngineVersion    string   `yaml:"engine_version"`
	MaxEngineVersion string   `yaml:"max_engine_version"`
	Date             string   `yaml:"date"`
	Parent           string   `yaml:"parent"`
	TKNames          []string `yaml:"tk_names"`
	FuncNames        []string `yaml:"func_names"`
}

type yamlManifest struct {
	Revisions []yamlDescriptor `yaml:"revisions"`
}

// LoadYAML parses a revision manifest and registers every entry into r.
// Commit ids and parent ids are hex strings (e.g. "0x514a3fb") to match
// how they're usually written in source and docs.
func LoadYAML(r *Registry, data []byte) ([]uint32, error) {
	var manifest yamlManifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, gderr.Wrap(gderr.BadRegistration, "parsing revision manifest", err)
	}

	ids := make([]uint32, 0, len(manifest.Revisions))
	for _, yd := range manifest.Revisions {
		rev, err := parseHexUint32(yd.BytecodeRev)
		if err != nil {
			return ids, gderr.Wrap(gderr.BadRegistration, "bytecode_rev", err)
		}
		parent, err := parseHexUint32(yd.Parent)
		if err != nil && yd.Parent != "" {
			return ids, gderr.Wrap(gderr.BadRegistration, "parent", err)
		}

		id, err := r.RegisterDynamic(Fields{
			BytecodeVersion:  yd.BytecodeVersion,
			BytecodeRev:      rev,
			EngineVerMajor:   yd.EngineVerMajor,
			VariantVerMajor:  yd.VariantVerMajor,
			EngineVersion:    yd.EngineVersion,
			MaxEngineVersion: yd.MaxEngineVersion,
			Date:             yd.Date,
			Parent:           parent,
			TKNames:          yd.TKNames,
			FuncNames:        yd.FuncNames,
		})
		if err != nil {
			return ids, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parseHexUint32(s string) (uint32, error) {
	if s == "" {
		return 0, nil
	}
	s = trimHexPrefix(s)
	var v uint64
	for _, c := range []byte(s) {
		var digit uint64
		switch {
		case c >= '0' && c <= '9':
			digit = uint64(c - '0')
		case c >= 'a' && c <= 'f':
			digit = uint64(c-'a') + 10
		case c >= 'A' && c <= 'F':
			digit = uint64(c-'A') + 10
		default:
			return 0, gderr.Newf(gderr.BadRegistration, "invalid hex digit %q", c)
		}
		v = v<<4 | digit
	}
	return uint32(v), nil
}

func trimHexPrefix(s string) string {
	if len(s) > 1 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}
