package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/zfsreader/zfsreader/internal/device"
	"github.com/zfsreader/zfsreader/internal/interfaces"
	"github.com/zfsreader/zfsreader/internal/services/dataset"
	"github.com/zfsreader/zfsreader/internal/services/extract"
	"github.com/zfsreader/zfsreader/internal/services/pool"
	"github.com/zfsreader/zfsreader/internal/types"
)

var (
	extractOutDir   string
	extractFormat   string
	extractUbIndex  int
	extractUbLabel  int
	extractNoAtomic bool
)

var extractCmd = &cobra.Command{
	Use:   "extract <image-path>",
	Short: "Extract the filesystem tree of a pool image's active dataset",
	Long: `extract locates the active (or explicitly chosen) uberblock, walks the
Meta Object Set down to the root dataset and its filesystem object set,
and writes every directory and file it can reach to the output target.

By default the active uberblock (greatest transaction group) is used.
Pass --label and --ub-index together to pin a specific ring slot, which
is useful when the most recent uberblock is itself suspect.`,

	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExtract(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVarP(&extractOutDir, "out-dir", "o", "./extracted", "extraction destination")
	extractCmd.Flags().StringVar(&extractFormat, "format", "tree", "output format: tree or cpio")
	extractCmd.Flags().IntVar(&extractUbIndex, "ub-index", -1, "pin a specific uberblock ring slot (requires --label)")
	extractCmd.Flags().IntVar(&extractUbLabel, "label", -1, "pin a specific label (0-3, requires --ub-index)")
	extractCmd.Flags().BoolVar(&extractNoAtomic, "no-atomic-writes", false, "disable temp-file-then-rename writes (tree format only)")
}

func runExtract(cmd *cobra.Command, imagePath string) error {
	log := logger().WithField("cmd", "extract")

	if extractFormat != "tree" && extractFormat != "cpio" {
		return usageError{interfaces.NewError(interfaces.ErrUnsupported, "--format must be tree or cpio")}
	}
	if (extractUbIndex < 0) != (extractUbLabel < 0) {
		return usageError{interfaces.NewError(interfaces.ErrInvalidPointer, "--label and --ub-index must be given together")}
	}

	if !cmd.Flags().Changed("out-dir") {
		if cfg, err := loadConfig(); err == nil {
			extractOutDir = cfg.OutputDir
		} else {
			log.WithError(err).Debug("no config file found, using built-in default output directory")
		}
	}

	img, err := device.Open(imagePath)
	if err != nil {
		return err
	}
	defer img.Close()

	reader := pool.New(img, log.WithField("component", "pool"))
	defer reader.Close()

	ub, label, idx, err := resolveUberblock(reader)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{"label": label, "slot": idx, "txg": ub.Txg}).Info("using uberblock")

	result, err := dataset.Traverse(reader, ub.Rootbp, log.WithField("component", "dataset"))
	if err != nil {
		return err
	}

	sink, closeSink, err := buildSink(log)
	if err != nil {
		return err
	}
	if closeSink != nil {
		defer closeSink()
	}

	// Run's outDir is relative to the sink's own base (extractOutDir for
	// the tree sink, the archive root for cpio), so it starts empty.
	extractor := extract.New(reader, result, sink, log.WithField("component", "extract"))
	n, err := extractor.Run("")
	if err != nil {
		return err
	}

	log.WithField("files", n).Info("extraction complete")
	return nil
}

// resolveUberblock returns the active uberblock by default, or a pinned
// (label, ub-index) pair when the caller asked for one explicitly.
func resolveUberblock(reader *pool.Reader) (types.Uberblock, int, int, error) {
	if extractUbLabel >= 0 {
		ub, err := reader.ReadUberblock(extractUbLabel, extractUbIndex)
		return ub, extractUbLabel, extractUbIndex, err
	}
	return reader.ActiveUberblock()
}

// buildSink constructs the output sink named by --format. For the cpio
// format it also returns a closer that flushes the archive trailer and
// closes the underlying file.
func buildSink(log *logrus.Entry) (interfaces.OutputSink, func(), error) {
	switch extractFormat {
	case "cpio":
		f, err := os.Create(extractOutDir)
		if err != nil {
			return nil, nil, interfaces.WrapError(interfaces.ErrIo, "create cpio archive", err)
		}
		sink := extract.NewArchiveSink(f)
		return sink, func() {
			if err := sink.Close(); err != nil {
				log.WithError(err).Warn("failed to flush cpio trailer")
			}
			f.Close()
		}, nil

	default:
		sink := extract.NewDirSink(afero.NewOsFs(), extractOutDir, !extractNoAtomic)
		return sink, nil, nil
	}
}
