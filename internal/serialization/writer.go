package serialization

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"time"
)

// Write encodes state to w. Parameters are stored in name order; the
// Params, FormatVersion and RaccoonVersion fields of header are filled in,
// and CreatedAt is set to now when zero.
func Write(w io.Writer, state map[string]float64, header Header) error {
	names := make([]string, 0, len(state))
	for name := range state {
		names = append(names, name)
	}
	sort.Strings(names)
	if err := ValidateParamNames(names); err != nil {
		return err
	}

	header.FormatVersion = FormatVersion
	header.RaccoonVersion = RaccoonVersion
	header.Params = names
	if header.CreatedAt.IsZero() {
		header.CreatedAt = time.Now().UTC()
	}
	if header.Metadata == nil {
		header.Metadata = make(map[string]string)
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}
	if len(headerJSON) > MaxHeaderSize {
		return fmt.Errorf("%w: %d bytes", ErrHeaderTooLarge, len(headerJSON))
	}

	data := make([]byte, len(names)*ValueSize)
	for i, name := range names {
		binary.LittleEndian.PutUint64(data[i*ValueSize:], math.Float64bits(state[name]))
	}
	checksum := ComputeChecksum(headerJSON, data)

	var buf bytes.Buffer
	buf.Grow(FixedHeaderSize + len(headerJSON) + len(data))
	buf.WriteString(MagicBytes)
	_ = binary.Write(&buf, binary.LittleEndian, uint32(FormatVersion))
	_ = binary.Write(&buf, binary.LittleEndian, uint64(len(headerJSON)))
	buf.Write(checksum[:])
	buf.Write(headerJSON)
	buf.Write(data)

	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write state dict: %w", err)
	}
	return nil
}

// WriteFile writes state to path, replacing any existing file.
func WriteFile(path string, state map[string]float64, header Header) error {
	var buf bytes.Buffer
	if err := Write(&buf, state, header); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), DefaultFileMode); err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	return nil
}
