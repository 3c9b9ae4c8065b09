// Package device provides file-backed access to a ZFS pool image: a
// single regular file treated as one vdev with up to four redundant
// labels. It is the only place this module touches os.File for input.
package device

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Image is a file-backed pool image opened for read-only access.
type Image struct {
	file *os.File
	size int64
}

// Config holds tunables for opening and reading a pool image. Values
// come from an optional config file / environment, with sane defaults
// when none is present.
type Config struct {
	// BlockCacheBlocks is loaded from configuration but not consulted by
	// any reader: an indirect tree holds every node it has descended into
	// for its whole life, with no bound and no eviction.
	BlockCacheBlocks int `mapstructure:"block_cache_blocks"`

	// OutputDir is the default extraction destination when the caller
	// does not override it.
	OutputDir string `mapstructure:"output_dir"`
}

// LoadConfig loads pool-reader configuration using Viper, falling back
// to defaults when no config file is present.
func LoadConfig() (*Config, error) {
	viper.SetConfigName("zfsreader")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("$HOME/.zfsreader")
	viper.AddConfigPath("/etc/zfsreader")

	viper.SetDefault("block_cache_blocks", 4096)
	viper.SetDefault("output_dir", "./extracted")

	viper.SetEnvPrefix("ZFSREADER")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &cfg, nil
}

// Open opens path as a pool image.
func Open(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pool image: %w", err)
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to stat pool image: %w", err)
	}

	return &Image{file: f, size: stat.Size()}, nil
}

// ReadAt implements io.ReaderAt.
func (img *Image) ReadAt(p []byte, off int64) (int, error) {
	return img.file.ReadAt(p, off)
}

// Size returns the total size of the underlying image file.
func (img *Image) Size() (int64, error) {
	return img.size, nil
}

// Close closes the underlying file.
func (img *Image) Close() error {
	return img.file.Close()
}
