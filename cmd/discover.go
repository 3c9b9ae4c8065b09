package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/zfsreader/zfsreader/internal/device"
	"github.com/zfsreader/zfsreader/internal/services/dataset"
	"github.com/zfsreader/zfsreader/internal/services/pool"
)

var discoverCmd = &cobra.Command{
	Use:   "discover <image-path>",
	Short: "Dry-run the dataset traversal without writing any output",
	Long: `discover resolves the active uberblock, walks the Meta Object Set down
to the root dataset and filesystem object set exactly like extract does,
then prints the resolved root directory object id and the full inventory
of valid dnodes in the filesystem object tree, without writing anything
to disk.

This is useful for inspecting an image, or for sizing an extraction,
before committing to a full extract run.`,

	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDiscover(args[0])
	},
}

func init() {
	rootCmd.AddCommand(discoverCmd)
}

func runDiscover(imagePath string) error {
	log := logger().WithField("cmd", "discover")

	img, err := device.Open(imagePath)
	if err != nil {
		return err
	}
	defer img.Close()

	reader := pool.New(img, log.WithField("component", "pool"))
	defer reader.Close()

	ub, label, idx, err := reader.ActiveUberblock()
	if err != nil {
		return err
	}
	fmt.Printf("active uberblock: label=%d slot=%d txg=%d\n", label, idx, ub.Txg)

	result, err := dataset.Traverse(reader, ub.Rootbp, log.WithField("component", "dataset"))
	if err != nil {
		return err
	}
	fmt.Printf("root directory object id: %d\n", result.RootDirObjID)

	inventory, err := result.Inventory()
	if err != nil {
		return err
	}

	ids := make([]uint64, 0, len(inventory))
	for id := range inventory {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	fmt.Printf("filesystem object set: %d valid dnodes\n", len(ids))
	for _, id := range ids {
		dnode := inventory[id]
		fmt.Printf("  %-10d type=%s\n", id, dnode.Type)
	}

	return nil
}
