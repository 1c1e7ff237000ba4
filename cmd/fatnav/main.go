// Command fatnav browses FAT32 disk images without modifying them.
package main

import (
	"fmt"
	"os"

	"github.com/aligator/fatnav"
	"github.com/aligator/fatnav/config"
	"github.com/aligator/fatnav/image"
	"github.com/aligator/fatnav/logger"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// Persistent command flags
var (
	configFile    string
	logLevel      string
	partitionFlag int
	offsetFlag    int64
)

var (
	// cfg is the merged configuration of the running command.
	cfg = config.DefaultConfig()
	// hostFs is where images and configuration files are read from.
	hostFs afero.Fs = afero.NewOsFs()
)

func main() {
	defer logger.Sync()

	if err := createRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// createRootCommand creates the fatnav command tree
func createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "fatnav",
		Short: "Read-only navigator for FAT32 disk images",
		Long: `fatnav opens a FAT32 disk image, a partitioned disk image containing a
FAT32 partition, or a gzip, zstd or xz compressed image, and lets you list
directories and read files without ever writing to it.`,
		SilenceUsage:      true,
		PersistentPreRunE: initConfig,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		fmt.Sprintf("Configuration file (default %s if present)", config.DefaultPath))
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().IntVar(&partitionFlag, "partition", 0,
		"1-based partition index holding the volume (0 picks the first FAT32 partition)")
	rootCmd.PersistentFlags().Int64Var(&offsetFlag, "offset", 0,
		"Byte offset of the volume inside the image, skips detection")

	rootCmd.AddCommand(createShellCommand())
	rootCmd.AddCommand(createLsCommand())
	rootCmd.AddCommand(createCatCommand())
	rootCmd.AddCommand(createInfoCommand())
	rootCmd.AddCommand(createGetCommand())
	rootCmd.AddCommand(createTreeCommand())

	return rootCmd
}

// initConfig loads the configuration file and applies flags on top of it.
func initConfig(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(hostFs, configFile)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		loaded.Log.Level = logLevel
	}
	if flags.Changed("partition") {
		loaded.Partition = partitionFlag
	}
	if flags.Changed("offset") {
		loaded.Offset = offsetFlag
	}
	if err := loaded.Validate(); err != nil {
		return err
	}

	if err := logger.Init(loaded.Log.Level, loaded.Log.Format); err != nil {
		return err
	}
	cfg = loaded
	return nil
}

// openVolume opens the image at path and mounts its FAT32 volume. The caller
// closes the returned image.
func openVolume(path string) (*fatnav.Fs, *image.Image, error) {
	log := logger.Logger()

	img, err := image.Open(hostFs, path, image.Options{
		Partition:           cfg.Partition,
		Offset:              cfg.Offset,
		MaxDecompressedSize: cfg.MaxDecompressedSize,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("open image %s: %w", path, err)
	}

	fs, err := fatnav.New(img, fatnav.WithLogger(log))
	if err != nil {
		_ = img.Close()
		return nil, nil, fmt.Errorf("mount %s: %w", path, err)
	}
	return fs, img, nil
}
