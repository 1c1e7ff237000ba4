package main

import (
	"fmt"
	"io"
	"time"

	"github.com/aligator/fatnav/logger"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

// createGetCommand creates the get subcommand
func createGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get IMAGE PATH DEST",
		Short: "Copies a file out of the image",
		Long: `Get copies a single file from the image to DEST on the host, showing
the progress on stderr.`,
		Args: cobra.ExactArgs(3),
		RunE: executeGet,
	}
}

func executeGet(cmd *cobra.Command, args []string) error {
	log := logger.Logger()
	imagePath, path, dest := args[0], args[1], args[2]

	fs, img, err := openVolume(imagePath)
	if err != nil {
		return err
	}
	defer img.Close()

	src, err := fs.Open(path)
	if err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("get %s: is a directory", path)
	}

	dst, err := hostFs.Create(dest)
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}

	bar := progressbar.NewOptions64(info.Size(),
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionSetDescription(info.Name()),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(30),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)

	n, err := io.Copy(io.MultiWriter(dst, bar), src)
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("copy %s to %s: %w", path, dest, err)
	}
	_ = bar.Finish()

	log.Infof("Copied %d bytes from %s to %s", n, path, dest)
	return nil
}
