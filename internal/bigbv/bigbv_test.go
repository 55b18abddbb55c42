package bigbv

import "testing"

func TestWrapAround(t *testing.T) {
	v := FromInt64(-1, 8)
	if v.AsUint64() != 0xff {
		t.Fatalf("expected 0xff, got %#x", v.AsUint64())
	}
	if v.AsInt64() != -1 {
		t.Fatalf("expected -1, got %d", v.AsInt64())
	}
}

func TestAddOverflowWraps(t *testing.T) {
	a := FromInt64(200, 8)
	b := FromInt64(100, 8)
	sum, err := a.Add(b)
	if err != nil {
		t.Fatal(err)
	}
	if sum.AsUint64() != (300 % 256) {
		t.Fatalf("expected wraparound to %d, got %d", 300%256, sum.AsUint64())
	}
	if a.AsUint64() != 200 {
		t.Fatalf("Add must not mutate its receiver, got %d", a.AsUint64())
	}
}

func TestSignedDivRem(t *testing.T) {
	a := FromInt64(-7, 8)
	b := FromInt64(2, 8)
	q, err := a.SDiv(b)
	if err != nil {
		t.Fatal(err)
	}
	if q.AsInt64() != -3 {
		t.Fatalf("expected -3, got %d", q.AsInt64())
	}

	r, err := a.SRem(b)
	if err != nil {
		t.Fatal(err)
	}
	if r.AsInt64() != -1 {
		t.Fatalf("expected -1, got %d", r.AsInt64())
	}
}

func TestSignedComparison(t *testing.T) {
	neg := FromInt64(-1, 8)
	pos := FromInt64(1, 8)

	lt, err := neg.SLt(pos)
	if err != nil || !lt {
		t.Fatalf("expected -1 < 1, got %v err=%v", lt, err)
	}
	gt, err := pos.SGt(neg)
	if err != nil || !gt {
		t.Fatalf("expected 1 > -1, got %v err=%v", gt, err)
	}

	lt2, err := neg.ULt(pos)
	if err != nil || lt2 {
		t.Fatalf("expected 0xff unsigned is not < 1, got %v err=%v", lt2, err)
	}
}

func TestExtractConcat(t *testing.T) {
	v := FromInt64(0x01020304, 32)
	lo, err := v.Slice(7, 0)
	if err != nil {
		t.Fatal(err)
	}
	if lo.AsUint64() != 0x04 {
		t.Fatalf("expected 0x04, got %#x", lo.AsUint64())
	}

	hi, err := v.Slice(31, 24)
	if err != nil {
		t.Fatal(err)
	}
	if hi.AsUint64() != 0x01 {
		t.Fatalf("expected 0x01, got %#x", hi.AsUint64())
	}

	a := FromInt64(0x01, 8)
	b := FromInt64(0x02, 8)
	cat, err := a.Concat(b)
	if err != nil {
		t.Fatal(err)
	}
	if cat.AsUint64() != 0x0102 {
		t.Fatalf("expected 0x0102, got %#x", cat.AsUint64())
	}
}

func TestShifts(t *testing.T) {
	neg := FromInt64(-8, 8) // 0xf8
	shifted, err := neg.AShr(1)
	if err != nil {
		t.Fatal(err)
	}
	if shifted.AsInt64() != -4 {
		t.Fatalf("expected arithmetic shift to -4, got %d", shifted.AsInt64())
	}

	v := FromInt64(-8, 8)
	lshifted, err := v.LShr(1)
	if err != nil {
		t.Fatal(err)
	}
	if lshifted.AsUint64() != 0x7c {
		t.Fatalf("expected logical shift to 0x7c, got %#x", lshifted.AsUint64())
	}
}

func TestDivByZero(t *testing.T) {
	a := FromInt64(1, 8)
	z := FromInt64(0, 8)
	if _, err := a.UDiv(z); err == nil {
		t.Fatalf("expected division-by-zero error")
	}
}
