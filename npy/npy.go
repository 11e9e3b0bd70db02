package npy

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

var magic = []byte("\x93NUMPY")

// Array is a decoded tensor: its shape and flat row-major float32 data.
// float64 payloads are narrowed to float32 on load.
type Array struct {
	Shape []int
	Data  []float32
}

// Len returns the number of elements implied by the shape.
func (a *Array) Len() int {
	n := 1
	for _, d := range a.Shape {
		n *= d
	}
	return n
}

// Decode reads a .npy stream and returns the contained tensor.
func Decode(r io.Reader) (*Array, error) {
	var hdr [8]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, fmt.Errorf("npy: read magic: %w", err)
	}
	if !bytes.Equal(hdr[:6], magic) {
		return nil, fmt.Errorf("npy: bad magic %q", hdr[:6])
	}
	major, minor := hdr[6], hdr[7]

	var headerLen int
	switch major {
	case 1:
		var n uint16
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return nil, fmt.Errorf("npy: read header length: %w", err)
		}
		headerLen = int(n)
	case 2:
		var n uint32
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return nil, fmt.Errorf("npy: read header length: %w", err)
		}
		headerLen = int(n)
	default:
		return nil, fmt.Errorf("npy: unsupported format version %d.%d", major, minor)
	}

	raw := make([]byte, headerLen)
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, fmt.Errorf("npy: read header: %w", err)
	}

	descr, fortran, shape, err := parseHeader(string(raw))
	if err != nil {
		return nil, err
	}
	if fortran {
		return nil, fmt.Errorf("npy: fortran order is not supported")
	}

	var itemSize int
	switch descr {
	case "<f4":
		itemSize = 4
	case "<f8":
		itemSize = 8
	default:
		return nil, fmt.Errorf("npy: unsupported dtype %q", descr)
	}

	count := 1
	for _, d := range shape {
		if d < 0 {
			return nil, fmt.Errorf("npy: negative dimension in shape %v", shape)
		}
		count *= d
	}

	payload := make([]byte, count*itemSize)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("npy: read %d data bytes: %w", len(payload), err)
	}

	data := make([]float32, count)
	switch itemSize {
	case 4:
		for i := range data {
			data[i] = math.Float32frombits(binary.LittleEndian.Uint32(payload[i*4:]))
		}
	case 8:
		for i := range data {
			data[i] = float32(math.Float64frombits(binary.LittleEndian.Uint64(payload[i*8:])))
		}
	}

	return &Array{Shape: shape, Data: data}, nil
}

// DecodeBytes decodes a .npy file held fully in memory.
func DecodeBytes(b []byte) (*Array, error) {
	return Decode(bytes.NewReader(b))
}

// Encode writes data as a version 1.0 .npy file with dtype <f4.
// The element count implied by shape must match len(data).
func Encode(w io.Writer, shape []int, data []float32) error {
	count := 1
	for _, d := range shape {
		count *= d
	}
	if count != len(data) {
		return fmt.Errorf("npy: shape %v does not match %d elements", shape, len(data))
	}

	dims := make([]string, len(shape))
	for i, d := range shape {
		dims[i] = strconv.Itoa(d)
	}
	tuple := strings.Join(dims, ", ")
	if len(shape) == 1 {
		tuple += ","
	}
	header := fmt.Sprintf("{'descr': '<f4', 'fortran_order': False, 'shape': (%s), }", tuple)

	// Pad so that the data block starts on a 64-byte boundary.
	total := len(magic) + 2 + 2 + len(header) + 1
	if pad := 64 - total%64; pad < 64 {
		header += strings.Repeat(" ", pad)
	}
	header += "\n"

	if _, err := w.Write(magic); err != nil {
		return err
	}
	if _, err := w.Write([]byte{1, 0}); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(len(header))); err != nil {
		return err
	}
	if _, err := io.WriteString(w, header); err != nil {
		return err
	}

	payload := make([]byte, 4*len(data))
	for i, v := range data {
		binary.LittleEndian.PutUint32(payload[i*4:], math.Float32bits(v))
	}
	_, err := w.Write(payload)
	return err
}

// parseHeader pulls descr, fortran_order and shape out of the Python
// dict literal that makes up the .npy header.
func parseHeader(h string) (descr string, fortran bool, shape []int, err error) {
	descr, err = dictString(h, "descr")
	if err != nil {
		return "", false, nil, err
	}

	switch {
	case strings.Contains(h, "'fortran_order': True"):
		fortran = true
	case strings.Contains(h, "'fortran_order': False"):
		fortran = false
	default:
		return "", false, nil, fmt.Errorf("npy: header missing fortran_order: %q", h)
	}

	lp := strings.Index(h, "(")
	rp := strings.Index(h, ")")
	if lp < 0 || rp < lp {
		return "", false, nil, fmt.Errorf("npy: header missing shape tuple: %q", h)
	}
	for _, tok := range strings.Split(h[lp+1:rp], ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		d, convErr := strconv.Atoi(tok)
		if convErr != nil {
			return "", false, nil, fmt.Errorf("npy: bad shape token %q: %w", tok, convErr)
		}
		shape = append(shape, d)
	}
	if len(shape) == 0 {
		// () denotes a 0-d scalar; the embedding export never produces one.
		return "", false, nil, fmt.Errorf("npy: scalar tensors are not supported")
	}

	return descr, fortran, shape, nil
}

func dictString(h, key string) (string, error) {
	marker := "'" + key + "': '"
	i := strings.Index(h, marker)
	if i < 0 {
		return "", fmt.Errorf("npy: header missing %s: %q", key, h)
	}
	rest := h[i+len(marker):]
	j := strings.Index(rest, "'")
	if j < 0 {
		return "", fmt.Errorf("npy: unterminated %s in header: %q", key, h)
	}
	return rest[:j], nil
}
