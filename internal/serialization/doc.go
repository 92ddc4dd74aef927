// Package serialization provides the .rcn file format for saving and loading
// parameter state dictionaries.
//
//	Format Structure:
//	  [4 bytes: Magic "RACN"]
//	  [4 bytes: Version (uint32 LE)]
//	  [8 bytes: Header Size (uint64 LE)]
//	  [32 bytes: SHA-256 of header JSON followed by the data section]
//	  [Header: JSON metadata, parameter names in data order]
//	  [Data: one float64 LE per parameter]
//
// Example usage:
//
//	state, _ := nn.StateDict(model)
//	err := serialization.WriteFile("model.rcn", state, serialization.Header{ModelType: "MLP"})
//
//	header, state, err := serialization.ReadFile("model.rcn")
//	err = nn.LoadStateDict(model, state)
package serialization
