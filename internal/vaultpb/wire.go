package vaultpb

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

var errWireType = errors.New("unexpected wire type")

type encoder struct {
	b []byte
}

func (e *encoder) str(num protowire.Number, v string) {
	if v == "" {
		return
	}
	e.b = protowire.AppendTag(e.b, num, protowire.BytesType)
	e.b = protowire.AppendString(e.b, v)
}

func (e *encoder) uint(num protowire.Number, v uint64) {
	if v == 0 {
		return
	}
	e.b = protowire.AppendTag(e.b, num, protowire.VarintType)
	e.b = protowire.AppendVarint(e.b, v)
}

func (e *encoder) boolean(num protowire.Number, v bool) {
	if !v {
		return
	}
	e.b = protowire.AppendTag(e.b, num, protowire.VarintType)
	e.b = protowire.AppendVarint(e.b, protowire.EncodeBool(v))
}

// decoder walks the fields of one message. After the first error next
// returns false and err holds the cause.
type decoder struct {
	b   []byte
	num protowire.Number
	typ protowire.Type
	err error
}

func (d *decoder) fail(n int) {
	if d.err == nil {
		d.err = protowire.ParseError(n)
	}
}

func (d *decoder) next() bool {
	if d.err != nil || len(d.b) == 0 {
		return false
	}
	num, typ, n := protowire.ConsumeTag(d.b)
	if n < 0 {
		d.fail(n)
		return false
	}
	d.b = d.b[n:]
	d.num, d.typ = num, typ
	return true
}

func (d *decoder) str() string {
	if d.typ != protowire.BytesType {
		d.err = fmt.Errorf("%w: field %d", errWireType, d.num)
		return ""
	}
	v, n := protowire.ConsumeString(d.b)
	if n < 0 {
		d.fail(n)
		return ""
	}
	d.b = d.b[n:]
	return v
}

func (d *decoder) uint() uint64 {
	if d.typ != protowire.VarintType {
		d.err = fmt.Errorf("%w: field %d", errWireType, d.num)
		return 0
	}
	v, n := protowire.ConsumeVarint(d.b)
	if n < 0 {
		d.fail(n)
		return 0
	}
	d.b = d.b[n:]
	return v
}

func (d *decoder) boolean() bool {
	return protowire.DecodeBool(d.uint())
}

// skip discards a field this build does not know about.
func (d *decoder) skip() {
	n := protowire.ConsumeFieldValue(d.num, d.typ, d.b)
	if n < 0 {
		d.fail(n)
		return
	}
	d.b = d.b[n:]
}
