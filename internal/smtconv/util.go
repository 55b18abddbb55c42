package smtconv

import "github.com/fbrausse/esbmc/internal/bigbv"

func zeroBV(width uint) *bigbv.BV { return bigbv.FromInt64(0, width) }
