package irep

import "github.com/cespare/xxhash/v2"

// CRC hashes an expression structurally: the kind byte, the attached
// Type's CRC, the node's own scalar fields, then each operand's CRC in
// order. Two structurally equal expressions always produce the same
// value, recursively.
func (e *Expr) CRC() uint32 {
	h := xxhash.New()
	h.Write([]byte{byte(e.Kind())})
	feedUint(h, uint64(e.typ.CRC()))
	e.node.scalarCRC(h)
	for _, op := range e.Operands() {
		feedExprCRC(h, op)
	}
	return uint32(h.Sum64())
}
