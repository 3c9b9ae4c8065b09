package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/zfsreader/zfsreader/internal/device"
	"github.com/zfsreader/zfsreader/internal/services/pool"
	"github.com/zfsreader/zfsreader/internal/types"
)

var listCmd = &cobra.Command{
	Use:   "list-uberblocks <image-path>",
	Short: "List every valid uberblock ring slot across all four labels",
	Long: `list-uberblocks scans the uberblock ring of each of the pool image's
four labels and prints every slot that carries a recognizable magic
number, marking the one with the greatest transaction group as active.`,

	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runListUberblocks(args[0])
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runListUberblocks(imagePath string) error {
	log := logger().WithField("cmd", "list-uberblocks")

	img, err := device.Open(imagePath)
	if err != nil {
		return err
	}
	defer img.Close()

	reader := pool.New(img, log.WithField("component", "pool"))
	defer reader.Close()

	active, activeLabel, activeIdx, err := reader.ActiveUberblock()
	if err != nil {
		return err
	}

	fmt.Printf("%-6s %-6s %-12s %-10s active\n", "label", "slot", "txg", "spa_ver")
	for label := 0; label < types.VdevLabels; label++ {
		for idx := 0; idx < types.UberblocksPerLabel; idx++ {
			ub, err := reader.ReadUberblock(label, idx)
			if err != nil {
				continue
			}
			mark := ""
			if label == activeLabel && idx == activeIdx {
				mark = "*"
			}
			fmt.Printf("%-6d %-6d %-12d %-10d %s\n", label, idx, ub.Txg, ub.SpaVersion, mark)
		}
	}

	log.WithFields(logrus.Fields{
		"label": activeLabel,
		"slot":  activeIdx,
		"txg":   active.Txg,
	}).Info("active uberblock")

	return nil
}
