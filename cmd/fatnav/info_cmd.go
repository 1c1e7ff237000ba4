package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/aligator/fatnav"
	"github.com/aligator/fatnav/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// formatValue is a pflag.Value accepting the supported output formats.
type formatValue string

var _ pflag.Value = (*formatValue)(nil)

func (f *formatValue) String() string {
	return string(*f)
}

func (f *formatValue) Set(s string) error {
	switch s {
	case config.OutputText, config.OutputJSON, config.OutputYAML:
		*f = formatValue(s)
		return nil
	default:
		return fmt.Errorf("unsupported format %q (supported: text, json, yaml)", s)
	}
}

func (f *formatValue) Type() string {
	return "format"
}

// Output format command flags
var (
	outputFormat formatValue = config.OutputText
	prettyJSON   bool
)

// createInfoCommand creates the info subcommand
func createInfoCommand() *cobra.Command {
	infoCmd := &cobra.Command{
		Use:   "info [flags] IMAGE",
		Short: "Shows the boot sector and layout of the volume",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs, img, err := openVolume(args[0])
			if err != nil {
				return err
			}
			defer img.Close()

			format := cfg.Output
			if cmd.Flags().Changed("format") {
				format = string(outputFormat)
			}
			return writeInfo(cmd.OutOrStdout(), fs.Info(), format, prettyJSON)
		},
	}

	infoCmd.Flags().Var(&outputFormat, "format", "Output format: text, json or yaml")
	infoCmd.Flags().BoolVar(&prettyJSON, "pretty", false,
		"Pretty-print JSON output (only for --format json)")

	return infoCmd
}

func writeInfo(out io.Writer, info fatnav.Info, format string, pretty bool) error {
	switch format {
	case config.OutputText:
		printInfo(out, info)
		return nil

	case config.OutputJSON:
		var (
			b   []byte
			err error
		)
		if pretty {
			b, err = json.MarshalIndent(info, "", "  ")
		} else {
			b, err = json.Marshal(info)
		}
		if err != nil {
			return fmt.Errorf("marshal json: %w", err)
		}
		_, _ = fmt.Fprintln(out, string(b))
		return nil

	case config.OutputYAML:
		b, err := yaml.Marshal(info)
		if err != nil {
			return fmt.Errorf("marshal yaml: %w", err)
		}
		_, _ = fmt.Fprint(out, string(b))
		return nil

	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

func printInfo(out io.Writer, info fatnav.Info) {
	fmt.Fprintf(out, "Label:               %s\n", info.Label)
	fmt.Fprintf(out, "OEM name:            %s\n", info.OEMName)
	fmt.Fprintf(out, "File system type:    %s\n", info.FileSystemType)
	fmt.Fprintf(out, "Volume ID:           %08X\n", info.VolumeID)
	fmt.Fprintf(out, "Media:               0x%02X\n", info.Media)
	fmt.Fprintf(out, "Bytes per sector:    %d\n", info.BytesPerSector)
	fmt.Fprintf(out, "Sectors per cluster: %d\n", info.SectorsPerCluster)
	fmt.Fprintf(out, "Cluster size:        %d\n", info.ClusterSize)
	fmt.Fprintf(out, "Reserved sectors:    %d\n", info.ReservedSectors)
	fmt.Fprintf(out, "FAT count:           %d\n", info.FATCount)
	fmt.Fprintf(out, "FAT size (sectors):  %d\n", info.FATSizeSectors)
	fmt.Fprintf(out, "Total sectors:       %d\n", info.TotalSectors)
	fmt.Fprintf(out, "Root cluster:        %d\n", info.RootCluster)
	fmt.Fprintf(out, "FAT region offset:   %d\n", info.FATRegionOffset)
	fmt.Fprintf(out, "Data region offset:  %d\n", info.DataRegionOffset)
	if info.FATTruncated {
		fmt.Fprintln(out, "Warning: the FAT is larger than the loaded part, chains beyond it end early")
	}
}
