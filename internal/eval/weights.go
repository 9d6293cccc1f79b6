package eval

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"gonum.org/v1/gonum/mat"
)

// Weight file format constants
const (
	MagicNumber = 0x4E4E3443 // "C4NN" read little-endian
	Version     = 1
)

// FileHeader is the header of the weight file.
type FileHeader struct {
	Magic   uint32
	Version uint32
	Input   uint32
	Hidden1 uint32
	Hidden2 uint32
	Output  uint32
}

// LoadWeights reads a network from a weight file.
func LoadWeights(filename string) (*Network, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open weights file: %w", err)
	}
	defer f.Close()

	return ReadWeights(bufio.NewReader(f))
}

// ReadWeights reads a network in the binary weight format:
//   - Header: Magic, Version, Input, Hidden1, Hidden2, Output (uint32 each)
//   - W1 (Hidden1 x Input), B1, W2 (Hidden2 x Hidden1), B2,
//     W3 (Output x Hidden2), B3, all float32 row-major
//
// All values are little-endian.
func ReadWeights(r io.Reader) (*Network, error) {
	var header FileHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	if header.Magic != MagicNumber {
		return nil, fmt.Errorf("invalid magic number: expected %x, got %x", MagicNumber, header.Magic)
	}
	if header.Version != Version {
		return nil, fmt.Errorf("unsupported version: expected %d, got %d", Version, header.Version)
	}
	if header.Input != InputSize || header.Hidden1 != Hidden1Size ||
		header.Hidden2 != Hidden2Size || header.Output != OutputSize {
		return nil, fmt.Errorf("layout mismatch: expected %d-%d-%d-%d, got %d-%d-%d-%d",
			InputSize, Hidden1Size, Hidden2Size, OutputSize,
			header.Input, header.Hidden1, header.Hidden2, header.Output)
	}

	n := NewNetwork()
	for _, p := range n.params() {
		buf := make([]float32, len(p.data))
		if err := binary.Read(r, binary.LittleEndian, buf); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", p.name, err)
		}
		for i, v := range buf {
			p.data[i] = float64(v)
		}
	}
	n.updateFingerprint()
	return n, nil
}

// SaveWeights writes the network to a weight file.
func (n *Network) SaveWeights(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create weights file: %w", err)
	}

	w := bufio.NewWriter(f)
	if err := n.WriteWeights(w); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("failed to flush weights file: %w", err)
	}
	return f.Close()
}

// WriteWeights writes the network in the format read by ReadWeights.
func (n *Network) WriteWeights(w io.Writer) error {
	header := FileHeader{
		Magic:   MagicNumber,
		Version: Version,
		Input:   InputSize,
		Hidden1: Hidden1Size,
		Hidden2: Hidden2Size,
		Output:  OutputSize,
	}
	if err := binary.Write(w, binary.LittleEndian, &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	return n.writeBody(w)
}

func (n *Network) writeBody(w io.Writer) error {
	for _, p := range n.params() {
		buf := make([]float32, len(p.data))
		for i, v := range p.data {
			buf[i] = float32(v)
		}
		if err := binary.Write(w, binary.LittleEndian, buf); err != nil {
			return fmt.Errorf("failed to write %s: %w", p.name, err)
		}
	}
	return nil
}

type param struct {
	name string
	data []float64
}

// params returns the backing storage of every weight in file order.
// Matrices created by NewNetwork are contiguous, so Data is exactly
// rows*cols long.
func (n *Network) params() []param {
	dense := func(name string, m *mat.Dense) param {
		return param{name, m.RawMatrix().Data}
	}
	vec := func(name string, v *mat.VecDense) param {
		return param{name, v.RawVector().Data}
	}
	return []param{
		dense("W1", n.W1), vec("B1", n.B1),
		dense("W2", n.W2), vec("B2", n.B2),
		dense("W3", n.W3), vec("B3", n.B3),
	}
}
