package engine

import (
	"fmt"

	"github.com/magical/littlebyte"
)

// Key encodes the configuration as a compact binary string: a token count
// followed by (kind, row, col, phase) bytes per token. Equal configurations
// have equal keys.
func (c Configuration) Key() string {
	b := new(littlebyte.Builder)
	b.AddUint16(uint16(len(c)))
	for _, t := range c {
		b.AddUint8(uint8(t.Kind))
		b.AddUint8(uint8(t.Pos.Row))
		b.AddUint8(uint8(t.Pos.Col))
		b.AddUint8(uint8(t.Phase))
	}
	out, err := b.Bytes()
	if err != nil {
		// no length prefixes are written, so Bytes cannot fail
		panic("engine: encode configuration: " + err.Error())
	}
	return string(out)
}

// DecodeConfiguration reverses Configuration.Key
func DecodeConfiguration(key string) (Configuration, error) {
	s := littlebyte.String(key)
	var n uint16
	if !s.ReadUint16(&n) {
		return nil, fmt.Errorf("%w: missing token count", ErrCorruptKey)
	}
	cfg := make(Configuration, n)
	for i := range cfg {
		var kind, row, col, phase uint8
		if !s.ReadUint8(&kind) || !s.ReadUint8(&row) || !s.ReadUint8(&col) || !s.ReadUint8(&phase) {
			return nil, fmt.Errorf("%w: truncated at token %d", ErrCorruptKey, i)
		}
		if Phase(phase) > PhaseFinal {
			return nil, fmt.Errorf("%w: token %d has phase %d", ErrCorruptKey, i, phase)
		}
		cfg[i] = Token{
			Kind:  TokenKind(kind),
			Pos:   Position{Row: int(row), Col: int(col)},
			Phase: Phase(phase),
		}
	}
	if !s.Empty() {
		return nil, fmt.Errorf("%w: trailing bytes", ErrCorruptKey)
	}
	return cfg, nil
}
