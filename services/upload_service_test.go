package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"artsstore/chunkstore"
	"artsstore/config"
	"artsstore/models"
)

func newTestUploadService(q *fakeQueue, inline *fakeInline) (UploadService, *chunkstore.MemoryStore) {
	cfg := &config.MediaConfig{
		ChunkSize:       4,
		DirectThreshold: 10,
		MaxFileSize:     1 << 20,
		ImageExtensions: []string{".png", ".jpg"},
		ModelExtensions: []string{".glb", ".gltf"},
		MaxWidth:        1200,
		MaxHeight:       1200,
		Quality:         85,
	}
	chunks := chunkstore.New(30 * time.Minute)
	return NewUploadService(chunks, q, inline, cfg), chunks
}

func appErrCode(t *testing.T, err error) int {
	t.Helper()
	var appErr *AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected an AppError, got %v", err)
	}
	return appErr.HTTPCode
}

func TestDirectUploadQueued(t *testing.T) {
	q := &fakeQueue{available: true}
	inline := &fakeInline{}
	svc, _ := newTestUploadService(q, inline)

	result, err := svc.DirectUpload(context.Background(), "photo.png", "images", []byte("tiny"))
	if err != nil {
		t.Fatalf("direct upload failed: %v", err)
	}
	if result.Status != UploadStatusProcessing || result.JobID != "job-1" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(q.submitted) != 1 || q.submitted[0].Kind != models.TaskKindImageOptimize {
		t.Fatalf("expected one image-optimize submission, got %+v", q.submitted)
	}
	if len(inline.runs) != 0 {
		t.Fatalf("inline runner should not be used when the queue accepts")
	}
}

func TestDirectUploadFallsBackWhenQueueDown(t *testing.T) {
	q := &fakeQueue{available: false}
	inline := &fakeInline{result: models.StoredAsset{URL: "http://assets/m.glb", PublicID: "models/m.glb"}}
	svc, _ := newTestUploadService(q, inline)

	result, err := svc.DirectUpload(context.Background(), "m.glb", "models", []byte("glb"))
	if err != nil {
		t.Fatalf("direct upload failed: %v", err)
	}
	if result.Status != UploadStatusCompleted {
		t.Fatalf("fallback should complete synchronously, got %+v", result)
	}
	if result.Result == nil || result.Result.PublicID != "models/m.glb" {
		t.Fatalf("fallback should return the stored asset, got %+v", result.Result)
	}
	if len(inline.runs) != 1 || inline.runs[0].Kind != models.TaskKindModelIngest {
		t.Fatalf("expected one inline model-ingest run, got %+v", inline.runs)
	}
}

func TestDirectUploadFallsBackOnSubmitError(t *testing.T) {
	q := &fakeQueue{available: true, submitErr: errors.New("redis gone mid-flight")}
	inline := &fakeInline{result: models.StoredAsset{PublicID: "images/p.png"}}
	svc, _ := newTestUploadService(q, inline)

	result, err := svc.DirectUpload(context.Background(), "p.png", "images", []byte("x"))
	if err != nil {
		t.Fatalf("direct upload failed: %v", err)
	}
	if result.Status != UploadStatusCompleted {
		t.Fatalf("submit error should degrade to inline, got %+v", result)
	}
	if len(inline.runs) != 1 {
		t.Fatalf("expected one inline run, got %d", len(inline.runs))
	}
}

func TestDirectUploadValidation(t *testing.T) {
	q := &fakeQueue{available: true}
	inline := &fakeInline{}
	svc, _ := newTestUploadService(q, inline)

	if _, err := svc.DirectUpload(context.Background(), "notes.txt", "", []byte("x")); appErrCode(t, err) != http.StatusBadRequest {
		t.Fatalf("unsupported extension should be a 400")
	}
	if _, err := svc.DirectUpload(context.Background(), "p.png", "", nil); appErrCode(t, err) != http.StatusBadRequest {
		t.Fatalf("empty file should be a 400")
	}
	if _, err := svc.DirectUpload(context.Background(), "p.png", "", []byte("exceeds the threshold")); appErrCode(t, err) != http.StatusBadRequest {
		t.Fatalf("oversized direct upload should be a 400")
	}
	if len(q.submitted) != 0 || len(inline.runs) != 0 {
		t.Fatalf("validation failures must not reach the queue or the inline runner")
	}
}

func TestUploadChunkPartialThenComplete(t *testing.T) {
	q := &fakeQueue{available: true}
	inline := &fakeInline{}
	svc, chunks := newTestUploadService(q, inline)
	ctx := context.Background()

	first, err := svc.UploadChunk(ctx, ChunkInput{
		UploadID: "up-1", FileName: "p.png", Index: 0, TotalChunks: 2, Data: []byte("head"),
	})
	if err != nil {
		t.Fatalf("first chunk failed: %v", err)
	}
	if first.Complete {
		t.Fatalf("first of two chunks must not complete")
	}
	if first.Progress != 50 || first.Received != 1 || first.Total != 2 {
		t.Fatalf("unexpected partial state: %+v", first)
	}

	second, err := svc.UploadChunk(ctx, ChunkInput{
		UploadID: "up-1", FileName: "p.png", Index: 1, TotalChunks: 2, Data: []byte("tail"),
	})
	if err != nil {
		t.Fatalf("second chunk failed: %v", err)
	}
	if !second.Complete || second.Outcome == nil {
		t.Fatalf("expected completion with an outcome: %+v", second)
	}
	if second.Outcome.Status != UploadStatusProcessing || second.Outcome.JobID != "job-1" {
		t.Fatalf("unexpected outcome: %+v", second.Outcome)
	}

	if len(q.submitted) != 1 {
		t.Fatalf("expected one submission, got %d", len(q.submitted))
	}
	if got := string(q.submitted[0].Data); got != "headtail" {
		t.Fatalf("reassembled payload mismatch: %q", got)
	}
	if q.submitted[0].UploadID != "up-1" {
		t.Fatalf("submission should carry the upload id")
	}
	if chunks.Len() != 0 {
		t.Fatalf("session should be evicted after completion")
	}
}

func TestUploadChunkCompletionFallsBackInline(t *testing.T) {
	q := &fakeQueue{available: false}
	inline := &fakeInline{result: models.StoredAsset{PublicID: "images/done.png"}}
	svc, _ := newTestUploadService(q, inline)
	ctx := context.Background()

	result, err := svc.UploadChunk(ctx, ChunkInput{
		UploadID: "up-2", FileName: "done.png", Index: 0, TotalChunks: 1, Data: []byte("all"),
	})
	if err != nil {
		t.Fatalf("chunk failed: %v", err)
	}
	if !result.Complete || result.Outcome == nil || result.Outcome.Status != UploadStatusCompleted {
		t.Fatalf("expected inline completion: %+v", result)
	}
	if result.Outcome.Result == nil || result.Outcome.Result.PublicID != "images/done.png" {
		t.Fatalf("inline outcome should carry the asset: %+v", result.Outcome)
	}
}

func TestUploadChunkValidation(t *testing.T) {
	q := &fakeQueue{available: true}
	svc, _ := newTestUploadService(q, &fakeInline{})
	ctx := context.Background()

	if _, err := svc.UploadChunk(ctx, ChunkInput{FileName: "p.png", TotalChunks: 1, Data: []byte("x")}); appErrCode(t, err) != http.StatusBadRequest {
		t.Fatalf("missing upload id should be a 400")
	}
	if _, err := svc.UploadChunk(ctx, ChunkInput{UploadID: "u", FileName: "a.txt", TotalChunks: 1, Data: []byte("x")}); appErrCode(t, err) != http.StatusBadRequest {
		t.Fatalf("unsupported extension should be a 400")
	}

	if _, err := svc.UploadChunk(ctx, ChunkInput{UploadID: "u", FileName: "p.png", Index: 0, TotalChunks: 2, Data: []byte("x")}); err != nil {
		t.Fatalf("setup chunk failed: %v", err)
	}
	if _, err := svc.UploadChunk(ctx, ChunkInput{UploadID: "u", FileName: "p.png", Index: 1, TotalChunks: 3, Data: []byte("x")}); appErrCode(t, err) != http.StatusBadRequest {
		t.Fatalf("totalChunks mismatch should be a 400")
	}
}
