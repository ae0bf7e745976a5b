package nnue

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/pkg/errors"
)

// fileSize is the exact expected size in bytes of a weights file: a packed
// binary mirror of the Network struct with no header, so a size mismatch is
// the only validation available (and sufficient, per the format contract).
const fileSize = int64(InputFeatures)*Hidden*2 +
	int64(Hidden)*2 +
	int64(NumBuckets)*2*Hidden*2 +
	int64(NumBuckets)*2

// LoadWeights loads network weights from a flat binary file: feature
// weights, feature bias, output weights per bucket, output bias, all int16
// little-endian with no header. The file must be exactly fileSize bytes.
func (n *Network) LoadWeights(filename string) error {
	f, err := os.Open(filename)
	if err != nil {
		return errors.Wrapf(err, "open nnue weights %q", filename)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return errors.Wrapf(err, "stat nnue weights %q", filename)
	}
	if info.Size() != fileSize {
		return errors.Errorf("nnue weights %q: size %d, want %d", filename, info.Size(), fileSize)
	}

	return n.readFrom(f)
}

// LoadWeightsFromReader loads weights from an already-open reader without a
// size check (callers that already validated length, e.g. embedded assets).
func (n *Network) LoadWeightsFromReader(r io.Reader) error {
	return n.readFrom(r)
}

func (n *Network) readFrom(r io.Reader) error {
	for i := range n.FeatureWeights {
		if err := binary.Read(r, binary.LittleEndian, &n.FeatureWeights[i]); err != nil {
			return errors.Wrapf(err, "read feature weights row %d", i)
		}
	}
	if err := binary.Read(r, binary.LittleEndian, &n.FeatureBias); err != nil {
		return errors.Wrap(err, "read feature bias")
	}
	for b := range n.OutputWeights {
		if err := binary.Read(r, binary.LittleEndian, &n.OutputWeights[b]); err != nil {
			return errors.Wrapf(err, "read output weights bucket %d", b)
		}
	}
	if err := binary.Read(r, binary.LittleEndian, &n.OutputBias); err != nil {
		return errors.Wrap(err, "read output bias")
	}
	return nil
}

// SaveWeights writes the network in the same flat format LoadWeights reads.
func (n *Network) SaveWeights(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return errors.Wrapf(err, "create nnue weights %q", filename)
	}
	defer f.Close()

	for i := range n.FeatureWeights {
		if err := binary.Write(f, binary.LittleEndian, &n.FeatureWeights[i]); err != nil {
			return errors.Wrapf(err, "write feature weights row %d", i)
		}
	}
	if err := binary.Write(f, binary.LittleEndian, &n.FeatureBias); err != nil {
		return errors.Wrap(err, "write feature bias")
	}
	for b := range n.OutputWeights {
		if err := binary.Write(f, binary.LittleEndian, &n.OutputWeights[b]); err != nil {
			return errors.Wrapf(err, "write output weights bucket %d", b)
		}
	}
	if err := binary.Write(f, binary.LittleEndian, &n.OutputBias); err != nil {
		return errors.Wrap(err, "write output bias")
	}
	return nil
}
