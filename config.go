package blockcrypt

import (
	"encoding/hex"
	"os"

	"gopkg.in/yaml.v3"
)

// Params is a serializable engine configuration. Key and IV are hex
// encoded so configurations can live in YAML files next to deployment
// settings.
type Params struct {
	Algorithm string `yaml:"algorithm"`
	Mode      string `yaml:"mode"`
	Padding   string `yaml:"padding"`
	Key       string `yaml:"key"`
	IV        string `yaml:"iv,omitempty"`
	ChunkSize int    `yaml:"chunk_size,omitempty"`

	Parallel struct {
		Enabled    bool `yaml:"enabled"`
		MaxWorkers int  `yaml:"max_workers,omitempty"`
		MinBlocks  int  `yaml:"min_blocks,omitempty"`
	} `yaml:"parallel,omitempty"`
}

// LoadParams reads a YAML configuration file.
func LoadParams(path string) (*Params, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, NewIOError("read", path, err)
	}
	return ParseParams(raw)
}

// ParseParams decodes a YAML configuration document.
func ParseParams(raw []byte) (*Params, error) {
	var p Params
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return nil, NewValidationError("config", "invalid YAML: %v", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

func parseMode(name string) (EncryptionMode, error) {
	for m := ModeECB; m <= ModeRandomDelta; m++ {
		if m.String() == name {
			return m, nil
		}
	}
	return 0, NewValidationError("mode", "no mode named %q", name)
}

func parsePadding(name string) (PaddingScheme, error) {
	for p := PaddingZeros; p <= PaddingISO10126; p++ {
		if p.String() == name {
			return p, nil
		}
	}
	return 0, NewValidationError("padding", "no padding scheme named %q", name)
}

// Validate checks the configuration without building a context.
func (p *Params) Validate() error {
	if p.Algorithm == "" {
		return NewValidationError("algorithm", "required")
	}
	if _, err := parseMode(p.Mode); err != nil {
		return err
	}
	if _, err := parsePadding(p.Padding); err != nil {
		return err
	}
	if p.Key == "" {
		return NewValidationError("key", "required")
	}
	if _, err := hex.DecodeString(p.Key); err != nil {
		return NewValidationError("key", "must be hex encoded")
	}
	if p.IV != "" {
		if _, err := hex.DecodeString(p.IV); err != nil {
			return NewValidationError("iv", "must be hex encoded")
		}
	}
	if p.ChunkSize < 0 {
		return NewValidationError("chunk_size", "%d is negative", p.ChunkSize)
	}
	return nil
}

// NewContext builds a ready mode engine from the configuration.
func (p *Params) NewContext() (*Context, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	cipher, err := NewCipher(p.Algorithm)
	if err != nil {
		return nil, err
	}
	mode, _ := parseMode(p.Mode)
	padding, _ := parsePadding(p.Padding)
	key, _ := hex.DecodeString(p.Key)

	var iv []byte
	if p.IV != "" {
		iv, _ = hex.DecodeString(p.IV)
	}

	var opts []ContextOption
	if p.Parallel.Enabled {
		cfg := DefaultParallelConfig()
		if p.Parallel.MaxWorkers > 0 {
			cfg.MaxWorkers = p.Parallel.MaxWorkers
		}
		if p.Parallel.MinBlocks > 0 {
			cfg.MinBlocksForParallel = p.Parallel.MinBlocks
		}
		opts = append(opts, WithParallelConfig(cfg))
	}
	return NewContext(cipher, key, mode, padding, iv, opts...)
}
