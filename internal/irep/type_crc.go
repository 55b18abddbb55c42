package irep

import (
	"github.com/cespare/xxhash/v2"
)

// CRC hashes a type structurally: the tag byte, then each field in
// declaration order; booleans feed 0 or 1, strings feed their bytes,
// children recurse.
func (t *Type) CRC() uint32 {
	h := xxhash.New()
	t.feedCRC(h)
	return uint32(h.Sum64())
}

func (t *Type) feedCRC(h *xxhash.Digest) {
	h.Write([]byte{byte(t.kind)})
	switch t.kind {
	case KindBool, KindEmpty, KindCode:
		// no fields
	case KindSymbolType:
		h.Write([]byte(t.symName))
	case KindStruct, KindUnion:
		h.Write([]byte(t.aggName))
		for _, m := range t.memberTypes {
			m.feedCRC(h)
		}
		for _, n := range t.memberNames {
			h.Write([]byte(n))
		}
	case KindArray:
		t.elem.feedCRC(h)
		if t.infinite {
			h.Write([]byte{0xff})
		} else {
			h.Write([]byte{0x00})
			feedExprCRC(h, t.arrSize)
		}
	case KindPointer:
		t.pointee.feedCRC(h)
	case KindUnsignedBV, KindSignedBV:
		feedUint(h, uint64(t.bvWidth))
	case KindFixedBV:
		feedUint(h, uint64(t.fixedWidth))
		feedUint(h, uint64(t.fixedIntBits))
	case KindString:
		feedUint(h, uint64(t.nElems))
	}
}

func feedUint(h *xxhash.Digest, v uint64) {
	raw := make([]byte, 8)
	for i := 0; i < 8; i++ {
		raw[i] = byte(v >> (8 * (7 - i)))
	}
	h.Write(raw)
}

func feedBool(h *xxhash.Digest, v bool) {
	if v {
		h.Write([]byte{1})
	} else {
		h.Write([]byte{0})
	}
}
