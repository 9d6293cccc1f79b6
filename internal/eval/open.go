package eval

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog/log"
)

// Kind names an evaluator implementation.
type Kind string

const (
	KindHeuristic Kind = "heuristic"
	KindNetwork   Kind = "network"
	KindDeep      Kind = "deep"
	KindONNX      Kind = "onnx"
)

// ErrUnknownKind is returned by ParseKind and Open for unsupported kinds.
var ErrUnknownKind = errors.New("unknown evaluator kind")

// heuristicFingerprint keys book entries written with the heuristic.
var heuristicFingerprint = xxhash.Sum64String("fourplay/heuristic/v1")

// ParseKind parses an evaluator kind, case-insensitively.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindHeuristic, KindNetwork, KindDeep, KindONNX:
		return k, nil
	case "":
		return KindHeuristic, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// Open builds the evaluator of the given kind, loading the model at path
// when the kind needs one. It also returns a fingerprint identifying the
// evaluator and its weights.
func Open(kind Kind, path string) (Evaluator, uint64, error) {
	if kind == "" {
		kind = KindHeuristic
	}
	if kind != KindHeuristic && path == "" {
		return nil, 0, fmt.Errorf("evaluator %s needs a model path", kind)
	}

	switch kind {
	case KindHeuristic:
		return NewHeuristic(), heuristicFingerprint, nil
	case KindNetwork:
		n, err := LoadWeights(path)
		if err != nil {
			return nil, 0, err
		}
		log.Debug().Str("path", path).Uint64("fingerprint", n.Fingerprint()).Msg("network-loaded")
		return n, n.Fingerprint(), nil
	case KindDeep:
		d, err := LoadDeep(path)
		if err != nil {
			return nil, 0, err
		}
		log.Debug().Str("path", path).Uint64("fingerprint", d.Fingerprint()).Msg("deep-model-loaded")
		return d, d.Fingerprint(), nil
	case KindONNX:
		o, err := LoadONNX(path)
		if err != nil {
			return nil, 0, err
		}
		log.Debug().Str("path", path).Uint64("fingerprint", o.Fingerprint()).Msg("onnx-model-loaded")
		return o, o.Fingerprint(), nil
	default:
		return nil, 0, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}
