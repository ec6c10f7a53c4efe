package queue

import (
	"context"

	"artsstore/models"

	"github.com/google/uuid"
)

// Inline executes a processor synchronously in the caller's goroutine. It is
// the fallback path when no broker is reachable: the caller gets the finished
// asset directly and no task record is ever created.
type Inline struct {
	processors map[string]Processor
}

func NewInline(processors map[string]Processor) *Inline {
	return &Inline{processors: processors}
}

func (i *Inline) Run(ctx context.Context, in SubmitInput) (models.StoredAsset, error) {
	proc, ok := i.processors[in.Kind]
	if !ok {
		return models.StoredAsset{}, ErrUnknownKind
	}

	return proc.Process(ctx, ProcessInput{
		TaskID:   uuid.New().String(),
		FileName: in.FileName,
		Folder:   in.Folder,
		Data:     in.Data,
	}, func(int) {})
}
