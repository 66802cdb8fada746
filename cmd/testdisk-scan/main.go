// Command testdisk-scan drives the partition-scan engine in
// internal/diskscan against a disk image or block device. The CLI,
// operator console and progress rendering here are the "external
// collaborators" the engine itself does not depend on (§1, §6 of the
// specification internal/diskscan implements).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "testdisk-scan",
		Short: "Scan a disk image or block device for lost/damaged partitions",
	}
	root.AddCommand(createScanCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
