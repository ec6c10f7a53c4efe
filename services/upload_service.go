package services

import (
	"context"
	"errors"
	"log"
	"net/http"

	"artsstore/chunkstore"
	"artsstore/config"
	"artsstore/models"
	"artsstore/queue"
)

const (
	UploadStatusProcessing = "processing"
	UploadStatusCompleted  = "completed"
)

// UploadResult is the terminal answer for a fully received file. Processing
// means the work went to the queue and the caller should poll; Completed means
// the inline fallback already ran and Result holds the stored asset.
type UploadResult struct {
	Status   string
	UploadID string
	JobID    string
	Result   *models.StoredAsset
}

type ChunkInput struct {
	UploadID    string
	FileName    string
	Folder      string
	Index       int
	TotalChunks int
	Data        []byte
}

// ChunkResult reports one chunk put. While Complete is false only Received,
// Total and Progress are meaningful; once true, Outcome carries the dispatch
// result for the reassembled file.
type ChunkResult struct {
	Complete bool
	UploadID string
	Received int
	Total    int
	Progress int
	Outcome  *UploadResult
}

// InlineRunner executes one media task synchronously. It is the degraded-mode
// path when the queue cannot accept work.
type InlineRunner interface {
	Run(ctx context.Context, in queue.SubmitInput) (models.StoredAsset, error)
}

type UploadService interface {
	DirectUpload(ctx context.Context, fileName, folder string, data []byte) (UploadResult, error)
	UploadChunk(ctx context.Context, in ChunkInput) (ChunkResult, error)
}

type uploadService struct {
	chunks *chunkstore.MemoryStore
	queue  queue.Queue
	inline InlineRunner
	cfg    *config.MediaConfig
}

func NewUploadService(chunks *chunkstore.MemoryStore, q queue.Queue, inline InlineRunner, cfg *config.MediaConfig) UploadService {
	return &uploadService{chunks: chunks, queue: q, inline: inline, cfg: cfg}
}

// kindForFile decides the task kind from the file extension. This runs before
// any chunk is buffered or task created, so bad uploads never leave state.
func (s *uploadService) kindForFile(fileName string) (string, error) {
	if hasExtension(fileName, s.cfg.ImageExtensions) {
		return models.TaskKindImageOptimize, nil
	}
	if hasExtension(fileName, s.cfg.ModelExtensions) {
		return models.TaskKindModelIngest, nil
	}
	return "", newAppError(http.StatusBadRequest, "unsupported file type", nil)
}

func (s *uploadService) DirectUpload(ctx context.Context, fileName, folder string, data []byte) (UploadResult, error) {
	kind, err := s.kindForFile(fileName)
	if err != nil {
		return UploadResult{}, err
	}
	if len(data) == 0 {
		return UploadResult{}, newAppError(http.StatusBadRequest, "file is empty", nil)
	}
	if int64(len(data)) > s.cfg.DirectThreshold {
		return UploadResult{}, newAppError(http.StatusBadRequest, "file too large for direct upload, use chunked upload", nil)
	}

	return s.dispatch(ctx, "", kind, fileName, folder, data)
}

func (s *uploadService) UploadChunk(ctx context.Context, in ChunkInput) (ChunkResult, error) {
	if in.UploadID == "" {
		return ChunkResult{}, newAppError(http.StatusBadRequest, "upload id is required", nil)
	}
	kind, err := s.kindForFile(in.FileName)
	if err != nil {
		return ChunkResult{}, err
	}
	if in.TotalChunks > 0 && int64(in.TotalChunks)*s.cfg.ChunkSize > s.cfg.MaxFileSize+s.cfg.ChunkSize {
		return ChunkResult{}, newAppError(http.StatusBadRequest, "file exceeds the maximum upload size", nil)
	}

	st, err := s.chunks.Put(in.UploadID, in.FileName, in.Index, in.TotalChunks, in.Data)
	if err != nil {
		switch {
		case errors.Is(err, chunkstore.ErrEmptyChunk),
			errors.Is(err, chunkstore.ErrTotalChunksInvalid),
			errors.Is(err, chunkstore.ErrTotalChunksMismatch),
			errors.Is(err, chunkstore.ErrChunkIndexRange),
			errors.Is(err, chunkstore.ErrSessionCompleted):
			return ChunkResult{}, newAppError(http.StatusBadRequest, err.Error(), nil)
		default:
			return ChunkResult{}, newAppError(http.StatusInternalServerError, "failed to store chunk", err)
		}
	}

	if !st.Complete {
		return ChunkResult{
			UploadID: in.UploadID,
			Received: st.Received,
			Total:    st.Total,
			Progress: st.Received * 100 / st.Total,
		}, nil
	}

	if int64(len(st.Buffer)) > s.cfg.MaxFileSize {
		return ChunkResult{}, newAppError(http.StatusBadRequest, "file exceeds the maximum upload size", nil)
	}

	outcome, err := s.dispatch(ctx, in.UploadID, kind, st.FileName, in.Folder, st.Buffer)
	if err != nil {
		return ChunkResult{}, err
	}
	return ChunkResult{
		Complete: true,
		UploadID: in.UploadID,
		Received: st.Received,
		Total:    st.Total,
		Progress: 100,
		Outcome:  &outcome,
	}, nil
}

// dispatch hands a complete file buffer to the queue, or runs it inline when
// the queue is unreachable or rejects the submission. Callers cannot tell a
// degraded run from a queued one except by the returned status.
func (s *uploadService) dispatch(ctx context.Context, uploadID, kind, fileName, folder string, data []byte) (UploadResult, error) {
	in := queue.SubmitInput{
		Kind:     kind,
		UploadID: uploadID,
		FileName: fileName,
		Folder:   folder,
		Data:     data,
	}

	if s.queue.Available(ctx) {
		jobID, err := s.queue.Submit(ctx, in)
		if err == nil {
			return UploadResult{
				Status:   UploadStatusProcessing,
				UploadID: uploadID,
				JobID:    jobID,
			}, nil
		}
		// Any submission failure degrades to inline execution.
		log.Printf("queue submit failed, running inline: %v", err)
	}

	asset, err := s.inline.Run(ctx, in)
	if err != nil {
		return UploadResult{}, newAppError(http.StatusInternalServerError, "failed to process media file", err)
	}
	return UploadResult{
		Status:   UploadStatusCompleted,
		UploadID: uploadID,
		Result:   &asset,
	}, nil
}
