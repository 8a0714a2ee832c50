package nodes

import (
	"context"

	"github.com/lehigh-university-libraries/captioner/internal/folder"
)

const DatasetFolderClass = "DatasetFolder"

// DatasetFolder emits the images of a directory one per run.
type DatasetFolder struct {
	iterator *folder.Iterator
}

func NewDatasetFolder() *DatasetFolder {
	return &DatasetFolder{iterator: folder.NewIterator()}
}

func (n *DatasetFolder) Definition() Definition {
	return Definition{
		Class:       DatasetFolderClass,
		DisplayName: "Dataset Folder",
		Category:    Category,
		Inputs: []Input{
			{Name: "PATH", Type: TypeString, Required: true, Default: ""},
		},
		Outputs: []Output{
			{Name: "IMAGE", Type: TypeImage},
			{Name: "FILENAME", Type: TypeString},
		},
	}
}

func (n *DatasetFolder) Execute(ctx context.Context, in Inputs) (Outputs, error) {
	resolved, err := n.Definition().Resolve(in)
	if err != nil {
		return nil, err
	}

	img, name := n.iterator.Next(resolved.String("PATH"))
	return Outputs{img, name}, nil
}

// IsChanged always reports true so every scheduling tick advances the folder.
func (n *DatasetFolder) IsChanged(Inputs) bool {
	return true
}
