package nnue

import "github.com/hailam/chessplay-uci/internal/board"

// Network holds the quantised weights. Layout mirrors the on-disk format in
// weights.go: feature_weights, feature_bias, output_weights (per bucket,
// 2*Hidden each: first Hidden for the side to move, next Hidden for the
// opponent), output_bias.
type Network struct {
	FeatureWeights [InputFeatures][Hidden]int16
	FeatureBias    [Hidden]int16
	OutputWeights  [NumBuckets][2 * Hidden]int16
	OutputBias     [NumBuckets]int16
}

// NewNetwork returns a zero-valued network; call LoadWeights or InitRandom.
func NewNetwork() *Network {
	return &Network{}
}

// Forward evaluates the accumulator pair through the output bucket, in
// centipawns from sideToMove's perspective.
func (n *Network) Forward(acc *Accumulator, sideToMove board.Color, bucket int) int {
	var us, them *[Hidden]int16
	if sideToMove == board.White {
		us, them = &acc.White, &acc.Black
	} else {
		us, them = &acc.Black, &acc.White
	}

	w := &n.OutputWeights[bucket]
	sum := dotScreluUnrolled(us, w[:Hidden]) + dotScreluUnrolled(them, w[Hidden:])

	raw := sum/QA + int64(n.OutputBias[bucket])
	return int(raw * Scale / (QA * QB))
}

// dotScreluUnrolled computes sum_i screlu(acc[i]) * weights[i]. Unrolled by
// 4 with int64 accumulation, the portable scalar equivalent of a 16-wide
// int8/int16 SIMD lane; produces bit-identical results to any vectorised
// version since both operate on the same quantised integers.
func dotScreluUnrolled(acc *[Hidden]int16, weights []int16) int64 {
	var sum int64
	i := 0
	for ; i+4 <= Hidden; i += 4 {
		sum += int64(screlu(acc[i]))*int64(weights[i]) +
			int64(screlu(acc[i+1]))*int64(weights[i+1]) +
			int64(screlu(acc[i+2]))*int64(weights[i+2]) +
			int64(screlu(acc[i+3]))*int64(weights[i+3])
	}
	for ; i < Hidden; i++ {
		sum += int64(screlu(acc[i])) * int64(weights[i])
	}
	return sum
}

// InitRandom fills the network with small deterministic pseudo-random
// weights, for tests and for running without a trained weights file.
func (n *Network) InitRandom(seed int64) {
	state := uint64(seed)
	next := func() int16 {
		state = state*6364136223846793005 + 1442695040888963407
		return int16((state>>48)&0xFF) - 128
	}

	for i := 0; i < InputFeatures; i++ {
		for j := 0; j < Hidden; j++ {
			n.FeatureWeights[i][j] = next() >> 5
		}
	}
	for i := 0; i < Hidden; i++ {
		n.FeatureBias[i] = next() >> 3
	}
	for b := 0; b < NumBuckets; b++ {
		for i := 0; i < 2*Hidden; i++ {
			n.OutputWeights[b][i] = next() >> 6
		}
		n.OutputBias[b] = next()
	}
}
