// Package dataset implements the dataset traversal chain (C6):
// uberblock -> MOS -> object directory -> root dataset -> head DSL ->
// master node -> filesystem ROOT.
package dataset

import (
	"github.com/sirupsen/logrus"

	"github.com/zfsreader/zfsreader/internal/interfaces"
	parsedataset "github.com/zfsreader/zfsreader/internal/parsers/dataset"
	"github.com/zfsreader/zfsreader/internal/parsers/dnode"
	"github.com/zfsreader/zfsreader/internal/parsers/zap"
	"github.com/zfsreader/zfsreader/internal/services/indirect"
	"github.com/zfsreader/zfsreader/internal/services/pool"
	"github.com/zfsreader/zfsreader/internal/types"
)

// Result is what the dataset traversal hands to the extractor: the
// filesystem object tree and the root directory's object id within it.
type Result struct {
	FSObjects   *indirect.TypedObjectTree[types.DNode]
	RootDirObjID uint64
}

// Inventory scans every valid dnode in the filesystem object tree,
// supplementing the original traversal with the full DSL node list the
// extractor's dangling-node report (§4.6/§4.7) compares its visited set
// against.
func (r *Result) Inventory() (map[uint64]types.DNode, error) {
	out := make(map[uint64]types.DNode)
	err := r.FSObjects.Objects(func(id uint64, d types.DNode) error {
		if d.Valid() {
			out[id] = d
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// objDNodeParser decodes one dnode slot through the shared dnode parser
// wrapper, mirroring how the pool reader routes blkptr/uberblock
// decoding through their own parsers rather than calling types.Parse*
// inline. Invalid slots (e.g. unused object ids) are returned as-is;
// filtering on Valid() is the caller's job, same as before.
func objDNodeParser(data []byte) types.DNode {
	d, _ := dnode.Read(data)
	return d
}

// Traverse runs the full C6 chain for a given uberblock's root block
// pointer.
func Traverse(reader *pool.Reader, rootbp types.Blkptr, log *logrus.Entry) (*Result, error) {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	if rootbp.Type != types.DNodeObjSet {
		return nil, interfaces.NewError(interfaces.ErrCorrupt, "uberblock root block pointer is not an objset")
	}

	rootObjSetData, err := reader.ReadBlockAnyDVA(rootbp)
	if err != nil {
		return nil, interfaces.WrapError(interfaces.ErrIo, "read root objset", err)
	}
	rootObjSet, err := parsedataset.ReadObjSet(rootObjSetData)
	if err != nil {
		return nil, err
	}

	mosTree, err := indirect.New(reader, rootObjSet.MetaDNode)
	if err != nil {
		return nil, interfaces.WrapError(interfaces.ErrCorrupt, "build MOS tree", err)
	}
	mos, err := indirect.NewTypedObjectTree(mosTree, types.DNodeSize, objDNodeParser)
	if err != nil {
		return nil, err
	}

	headDatasetObj, err := findRootDataset(reader, mos, log)
	if err != nil {
		return nil, err
	}

	headDatasetNode, err := mos.ObjectByID(headDatasetObj)
	if err != nil {
		return nil, interfaces.WrapError(interfaces.ErrCorrupt, "read head dataset dnode", err)
	}
	dsDataSet, err := parsedataset.ReadDSLDataSet(headDatasetNode.BonusArea())
	if err != nil {
		return nil, err
	}

	dslObjSetData, err := reader.ReadBlockAnyDVA(dsDataSet.Bp)
	if err != nil {
		return nil, interfaces.WrapError(interfaces.ErrIo, "read head dataset objset", err)
	}
	dslObjSet, err := parsedataset.ReadObjSet(dslObjSetData)
	if err != nil {
		return nil, err
	}

	fsTree, err := indirect.New(reader, dslObjSet.MetaDNode)
	if err != nil {
		return nil, interfaces.WrapError(interfaces.ErrCorrupt, "build filesystem object tree", err)
	}
	fsObjects, err := indirect.NewTypedObjectTree(fsTree, types.DNodeSize, objDNodeParser)
	if err != nil {
		return nil, err
	}

	const masterNodeObjID = 1
	masterNode, err := fsObjects.ObjectByID(masterNodeObjID)
	if err != nil {
		return nil, interfaces.WrapError(interfaces.ErrCorrupt, "read master node dnode", err)
	}

	masterZapData, err := reader.ReadBlockAnyDVA(masterNode.Blkptr(0))
	if err != nil {
		return nil, interfaces.WrapError(interfaces.ErrIo, "read master node zap", err)
	}
	masterZap, err := zap.Read(masterZapData)
	if err != nil {
		return nil, err
	}
	rootDirObjID, err := masterZap.Find("ROOT")
	if err != nil {
		return nil, interfaces.WrapError(interfaces.ErrNotFound, "master node ZAP has no ROOT entry", err)
	}

	log.WithField("root_dir_obj_id", rootDirObjID).Debug("resolved filesystem root directory")

	return &Result{FSObjects: fsObjects, RootDirObjID: rootDirObjID}, nil
}

// findRootDataset scans the MOS for the first valid ObjDirectory dnode
// and resolves its "root_dataset" entry to a DSLDir bonus payload and
// the object id of its head dataset. On failure at one object directory
// it continues scanning subsequent dnodes, per §4.6 retry policy.
func findRootDataset(reader *pool.Reader, mos *indirect.TypedObjectTree[types.DNode], log *logrus.Entry) (uint64, error) {
	var lastErr error

	for id := uint64(0); id < mos.NumObjects(); id++ {
		dnode, err := mos.ObjectByID(id)
		if err != nil {
			lastErr = err
			continue
		}
		if !dnode.Valid() || dnode.Type != types.DNodeObjDirectory {
			continue
		}

		rootDatasetObj, ok := tryFindRootDatasetEntry(reader, dnode, log)
		if !ok {
			continue
		}

		dslDirNode, err := mos.ObjectByID(rootDatasetObj)
		if err != nil {
			lastErr = err
			continue
		}
		dslDir, err := parsedataset.ReadDSLDir(dslDirNode.BonusArea())
		if err != nil {
			lastErr = err
			continue
		}
		return dslDir.HeadDatasetObj, nil
	}

	if lastErr != nil {
		return 0, interfaces.WrapError(interfaces.ErrNotFound, "no usable object directory found in MOS", lastErr)
	}
	return 0, interfaces.NewError(interfaces.ErrNotFound, "no object directory found in MOS")
}

func tryFindRootDatasetEntry(reader *pool.Reader, dnode types.DNode, log *logrus.Entry) (uint64, bool) {
	for i := 0; i < int(dnode.NBlkPtr); i++ {
		bp := dnode.Blkptr(i)
		if !bp.Valid() {
			continue
		}
		data, err := reader.ReadBlockAnyDVA(bp)
		if err != nil {
			log.WithError(err).Debug("failed to read object directory block")
			continue
		}
		dir, err := zap.Read(data)
		if err != nil {
			continue
		}
		value, err := dir.Find("root_dataset")
		if err != nil {
			continue
		}
		return value, true
	}
	return 0, false
}
