package serialization

import (
	"time"
)

// Format constants.
const (
	MagicBytes      = "RACN"                   // file signature
	FormatVersion   = 1                        // current layout version
	ChecksumSize    = 32                       // SHA-256 checksum size
	FixedHeaderSize = 4 + 4 + 8 + ChecksumSize // magic, version, header size, checksum
	ValueSize       = 8                        // float64 per parameter
	RaccoonVersion  = "0.1.0"                  // written into every header
	DefaultFileMode = 0o644                    // permissions of files created by WriteFile
)

// Header represents the JSON header of a .rcn file.
type Header struct {
	FormatVersion  int               `json:"format_version"`       // Version of the .rcn format
	RaccoonVersion string            `json:"raccoon_version"`      // Version that created this file
	ModelType      string            `json:"model_type"`           // Type of model (e.g., "MLP")
	CreatedAt      time.Time         `json:"created_at"`           // When the file was created
	Params         []string          `json:"params"`               // Parameter names, in data order
	Metadata       map[string]string `json:"metadata"`             // Custom metadata
	CheckpointMeta *CheckpointMeta   `json:"checkpoint,omitempty"` // Training state (optional)
}

// CheckpointMeta contains training state information for checkpoints.
type CheckpointMeta struct {
	Run       string  `json:"run"`       // Training run name
	Epoch     int     `json:"epoch"`     // Completed epochs
	Loss      float64 `json:"loss"`      // Loss value at checkpoint
	Optimizer string  `json:"optimizer"` // Optimizer type ("sgd", "adam")
}
