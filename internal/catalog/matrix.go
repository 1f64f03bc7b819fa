package catalog

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"

	"reelmatch/internal/services"
)

const (
	float32Size = 4
	float64Size = 8
)

// Matrix is a square, row-major similarity matrix. Cell (i, j) is the
// similarity between catalog rows i and j. Cells keep the artifact's float64
// values so ranking and reported scores match the source exactly.
type Matrix struct {
	n    int
	data []float64
}

// NewMatrix builds a matrix from rows, rejecting ragged or non-finite input.
func NewMatrix(rows [][]float64) (*Matrix, error) {
	n := len(rows)
	data := make([]float64, 0, n*n)
	for i, row := range rows {
		if len(row) != n {
			return nil, fmt.Errorf("similarity row %d: has %d columns, want %d", i, len(row), n)
		}
		for j, value := range row {
			if math.IsNaN(value) || math.IsInf(value, 0) {
				return nil, fmt.Errorf("similarity cell (%d,%d): non-finite value", i, j)
			}
			data = append(data, value)
		}
	}
	return &Matrix{n: n, data: data}, nil
}

// Size returns N for an N×N matrix.
func (m *Matrix) Size() int {
	if m == nil {
		return 0
	}
	return m.n
}

// Row returns row i. The slice aliases the matrix and must not be modified.
func (m *Matrix) Row(i int) []float64 {
	return m.data[i*m.n : (i+1)*m.n]
}

// At returns cell (i, j).
func (m *Matrix) At(i, j int) float64 {
	return m.data[i*m.n+j]
}

// LoadMatrix reads a similarity matrix, choosing the decoder by extension.
func LoadMatrix(path string) (*Matrix, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open similarity matrix: %w", err)
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return DecodeMatrixJSON(file)
	case ".f32", ".bin", ".f64":
		info, err := file.Stat()
		if err != nil {
			return nil, fmt.Errorf("stat similarity matrix: %w", err)
		}
		if strings.EqualFold(filepath.Ext(path), ".f64") {
			return DecodeMatrixF64(bufio.NewReader(file), info.Size())
		}
		return DecodeMatrixF32(bufio.NewReader(file), info.Size())
	default:
		return nil, fmt.Errorf("similarity matrix %s: unsupported format (want .json, .f64, .f32, or .bin)", path)
	}
}

// DecodeMatrixJSON reads a JSON array of N arrays of N numbers.
func DecodeMatrixJSON(r io.Reader) (*Matrix, error) {
	var rows [][]float64
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode similarity json: %w", err)
	}
	return NewMatrix(rows)
}

// DecodeMatrixF32 reads size bytes of little-endian float32 values laid out
// row-major and widens them to float64. N is derived from the byte count,
// which must describe a square.
func DecodeMatrixF32(r io.Reader, size int64) (*Matrix, error) {
	n, err := squareSide("f32", size, float32Size)
	if err != nil {
		return nil, err
	}
	raw := make([]float32, n*n)
	if err := readCells("f32", r, raw); err != nil {
		return nil, err
	}
	data := make([]float64, len(raw))
	for idx, value := range raw {
		data[idx] = float64(value)
	}
	return newMatrixFromCells(n, data)
}

// DecodeMatrixF64 reads size bytes of little-endian float64 values laid out
// row-major.
func DecodeMatrixF64(r io.Reader, size int64) (*Matrix, error) {
	n, err := squareSide("f64", size, float64Size)
	if err != nil {
		return nil, err
	}
	data := make([]float64, n*n)
	if err := readCells("f64", r, data); err != nil {
		return nil, err
	}
	return newMatrixFromCells(n, data)
}

func squareSide(format string, size int64, cellSize int64) (int, error) {
	if size%cellSize != 0 {
		return 0, fmt.Errorf("decode similarity %s: size %d is not a multiple of %d", format, size, cellSize)
	}
	cells := size / cellSize
	n := int(math.Sqrt(float64(cells)))
	for int64(n)*int64(n) < cells {
		n++
	}
	if int64(n)*int64(n) != cells {
		return 0, fmt.Errorf("decode similarity %s: %d cells do not form a square matrix", format, cells)
	}
	return n, nil
}

func readCells(format string, r io.Reader, dst any) error {
	if err := binary.Read(r, binary.LittleEndian, dst); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return fmt.Errorf("decode similarity %s: truncated input: %w", format, err)
		}
		return fmt.Errorf("decode similarity %s: %w", format, err)
	}
	return nil
}

func newMatrixFromCells(n int, data []float64) (*Matrix, error) {
	for idx, value := range data {
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return nil, fmt.Errorf("similarity cell (%d,%d): non-finite value", idx/n, idx%n)
		}
	}
	return &Matrix{n: n, data: data}, nil
}

// WriteF32 encodes the matrix in the raw float32 layout read by
// DecodeMatrixF32. Values are narrowed, so prefer WriteF64 when exact scores
// matter.
func (m *Matrix) WriteF32(w io.Writer) error {
	narrowed := make([]float32, len(m.data))
	for idx, value := range m.data {
		narrowed[idx] = float32(value)
	}
	buffered := bufio.NewWriter(w)
	if err := binary.Write(buffered, binary.LittleEndian, narrowed); err != nil {
		return fmt.Errorf("encode similarity f32: %w", err)
	}
	return buffered.Flush()
}

// WriteF64 encodes the matrix in the raw float64 layout read by DecodeMatrixF64.
func (m *Matrix) WriteF64(w io.Writer) error {
	buffered := bufio.NewWriter(w)
	if err := binary.Write(buffered, binary.LittleEndian, m.data); err != nil {
		return fmt.Errorf("encode similarity f64: %w", err)
	}
	return buffered.Flush()
}

// CheckAlignment verifies the matrix has exactly one row per catalog entry.
func CheckAlignment(c *Catalog, m *Matrix) error {
	if c == nil || m == nil {
		return services.Wrap(services.ErrStaleIndex, "catalog", "check alignment", "catalog and matrix are required", nil)
	}
	if c.Len() != m.Size() {
		return services.Wrap(services.ErrStaleIndex, "catalog", "check alignment",
			fmt.Sprintf("catalog has %d rows but similarity matrix is %dx%d", c.Len(), m.Size(), m.Size()), nil)
	}
	return nil
}

// Load reads both artifacts and checks their alignment.
func Load(catalogPath, matrixPath string) (*Catalog, *Matrix, error) {
	cat, err := LoadCatalog(catalogPath)
	if err != nil {
		return nil, nil, err
	}
	matrix, err := LoadMatrix(matrixPath)
	if err != nil {
		return nil, nil, err
	}
	if err := CheckAlignment(cat, matrix); err != nil {
		return nil, nil, err
	}
	return cat, matrix, nil
}
