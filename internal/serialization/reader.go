package serialization

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
)

// Read decodes a state dictionary written by Write. The checksum, the header
// and the size of the data section are all validated before any value is
// returned.
func Read(r io.Reader) (Header, map[string]float64, error) {
	fixed := make([]byte, FixedHeaderSize)
	if _, err := io.ReadFull(r, fixed); err != nil {
		return Header{}, nil, fmt.Errorf("failed to read fixed header: %w", err)
	}
	if string(fixed[:4]) != MagicBytes {
		return Header{}, nil, fmt.Errorf("%w: %q", ErrInvalidMagic, fixed[:4])
	}
	if v := binary.LittleEndian.Uint32(fixed[4:8]); v != FormatVersion {
		return Header{}, nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, v)
	}
	headerSize := binary.LittleEndian.Uint64(fixed[8:16])
	if headerSize > MaxHeaderSize {
		return Header{}, nil, fmt.Errorf("%w: %d bytes", ErrHeaderTooLarge, headerSize)
	}
	var stored [ChecksumSize]byte
	copy(stored[:], fixed[16:])

	headerJSON := make([]byte, headerSize)
	if _, err := io.ReadFull(r, headerJSON); err != nil {
		return Header{}, nil, fmt.Errorf("failed to read header: %w", err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return Header{}, nil, fmt.Errorf("failed to read data: %w", err)
	}

	if err := ValidateChecksum(ComputeChecksum(headerJSON, data), stored); err != nil {
		return Header{}, nil, err
	}

	var header Header
	dec := json.NewDecoder(bytes.NewReader(headerJSON))
	if err := dec.Decode(&header); err != nil {
		return Header{}, nil, fmt.Errorf("failed to parse header: %w", err)
	}
	if err := ValidateHeader(&header, int64(len(data))); err != nil {
		return Header{}, nil, fmt.Errorf("validation failed: %w", err)
	}

	state := make(map[string]float64, len(header.Params))
	for i, name := range header.Params {
		state[name] = math.Float64frombits(binary.LittleEndian.Uint64(data[i*ValueSize:]))
	}
	return header, state, nil
}

// ReadFile reads a state dictionary from path.
func ReadFile(path string) (Header, map[string]float64, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for model loading
	f, err := os.Open(path)
	if err != nil {
		return Header{}, nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	return Read(f)
}
