package main

import (
	"fmt"

	"github.com/open-edge-platform/testdisk-scan/internal/diskscan"
	"github.com/open-edge-platform/testdisk-scan/internal/utils/logger"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var (
	scanConfigPath   string
	scanArchitecture string
	scanFastMode     int
	scanSectorSize   int
	scanInteractive  bool
)

// createScanCommand creates the scan subcommand.
func createScanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [flags] IMAGE_FILE",
		Short: "Scans a disk image or block device for recoverable partitions",
		Long: `Scan walks the linear address space of a disk image or block device,
probing for filesystem-superblock and boot-sector signatures, and reports
the partitions it can reconstruct plus any that extend past the disk or
disagree with the current geometry.`,
		Args: cobra.ExactArgs(1),
		RunE: executeScan,
	}

	cmd.Flags().StringVar(&scanConfigPath, "config", "", "Path to a scan configuration YAML file")
	cmd.Flags().StringVar(&scanArchitecture, "architecture", "i386", "Disk architecture: none, i386, gpt, mac, sun, xbox, humax")
	cmd.Flags().IntVar(&scanFastMode, "fast-mode", 0, "Fast mode (0, 1 or 2)")
	cmd.Flags().IntVar(&scanSectorSize, "sector-size", 512, "Sector size in bytes")
	cmd.Flags().BoolVar(&scanInteractive, "interactive", false, "Run the operator console (stop/skip/plus/quit)")

	return cmd
}

func executeScan(cmd *cobra.Command, args []string) error {
	log := logger.Logger()
	imagePath := args[0]

	arch := diskscan.ArchNone
	fastMode := scanFastMode
	extMode := diskscan.ExtendedMin
	sectorSize := scanSectorSize
	var geomOverride *diskscan.ConfigGeom

	if scanConfigPath != "" {
		cfg, err := diskscan.LoadConfig(scanConfigPath)
		if err != nil {
			return fmt.Errorf("load scan config: %w", err)
		}
		arch = cfg.ArchitectureValue()
		fastMode = cfg.FastMode
		extMode = cfg.ExtendedModeValue()
		if cfg.SectorSize != 0 {
			sectorSize = cfg.SectorSize
		}
		geomOverride = cfg.Geometry
	} else {
		arch = parseArchitecture(scanArchitecture)
	}

	f, cleanup, err := diskscan.OpenCompressed(imagePath)
	if err != nil {
		return fmt.Errorf("open image: %w", err)
	}
	defer cleanup()

	fi, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat image: %w", err)
	}
	size := uint64(fi.Size())

	heads, sectorsPerHead := uint32(16), uint32(63)
	if geomOverride != nil {
		if geomOverride.HeadsPerCylinder != 0 {
			heads = geomOverride.HeadsPerCylinder
		}
		if geomOverride.SectorsPerHead != 0 {
			sectorsPerHead = geomOverride.SectorsPerHead
		}
	}
	geom := diskscan.Geometry{
		Cylinders:        size / (uint64(heads) * uint64(sectorsPerHead) * uint64(sectorSize)),
		HeadsPerCylinder: heads,
		SectorsPerHead:   sectorsPerHead,
	}
	if geomOverride != nil && geomOverride.Cylinders != 0 {
		geom.Cylinders = geomOverride.Cylinders
	}

	disk, err := diskscan.NewDisk(imagePath, f, size, size, uint32(sectorSize), geom, arch)
	if err != nil {
		return fmt.Errorf("build disk: %w", err)
	}

	log.Infof("scanning %s", disk.Description())

	bar := progressbar.DefaultBytes(int64(size), "scanning")
	opts := diskscan.ScanOptions{
		FastMode:    fastMode,
		Recognizers: defaultRecognizers(),
		Progress: func(chs diskscan.CHS, cursor, searchMax uint64) {
			_ = bar.Set64(int64(cursor))
		},
	}

	var console *operatorConsole
	if scanInteractive {
		console = newOperatorConsole()
		defer console.Close()
		opts.Signals = console.Signals()
		opts.ConfirmStop = console.ConfirmStop
	}

	result := diskscan.Scan(disk, diskscan.PolicyFor(arch), opts)
	_ = bar.Finish()

	diag := diskscan.Reconcile(disk, diskscan.PolicyFor(arch), result.Good, result.Bad, defaultRecognizers(), extMode)

	printReport(cmd, result, diag)
	return nil
}

func parseArchitecture(s string) diskscan.Architecture {
	switch s {
	case "i386":
		return diskscan.ArchI386
	case "gpt":
		return diskscan.ArchGPT
	case "mac":
		return diskscan.ArchMac
	case "sun":
		return diskscan.ArchSun
	case "xbox":
		return diskscan.ArchXbox
	case "humax":
		return diskscan.ArchHumax
	default:
		return diskscan.ArchNone
	}
}

func printReport(cmd *cobra.Command, result *diskscan.ScanResult, diag diskscan.Diagnostics) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "found %d partition(s)\n", result.Good.Len())
	for _, p := range result.Good.Sorted() {
		fmt.Fprintf(out, "  order=%-2d start=%-12d size=%-12d kind=%v\n", p.Order, p.Start, p.Size, p.Kind)
	}
	if result.Bad.Len() > 0 {
		fmt.Fprintf(out, "%d partition(s) extend past the disk and could not be recovered:\n", result.Bad.Len())
		for _, p := range result.Bad.Sorted() {
			fmt.Fprintf(out, "  start=%-12d size=%-12d kind=%v\n", p.Start, p.Size, p.Kind)
		}
	}
	if diag.GeometryMismatch {
		fmt.Fprintf(out, "geometry mismatch: recommend heads-per-cylinder=%d\n", diag.InferredHeadsPerCylinder)
	}
	if diag.Err != nil {
		fmt.Fprintf(out, "diagnostics: %v\n", diag.Err)
	}
	if result.Report.Quit {
		fmt.Fprintln(out, "scan stopped by operator")
	}
}
