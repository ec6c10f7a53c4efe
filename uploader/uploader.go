// Package uploader is the client-side counterpart of the chunked media
// endpoints: it splits a file into fixed-size chunks, uploads them
// sequentially and polls processing progress afterwards.
package uploader

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"artsstore/models"

	"github.com/google/uuid"
)

const DefaultChunkSize = 2 << 20

var (
	ErrEmptyFile   = errors.New("file is empty")
	ErrPollTimeout = errors.New("timed out waiting for processing to finish")
)

type Chunk struct {
	Index int
	Data  []byte
}

// Split partitions everything readable from r into chunks of at most
// chunkSize bytes. Every chunk except the last is exactly chunkSize long, so
// concatenating them in index order restores the input.
func Split(r io.Reader, chunkSize int64) ([]Chunk, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	var chunks []Chunk
	for index := 0; ; index++ {
		buf := make([]byte, chunkSize)
		n, err := io.ReadFull(r, buf)
		if n > 0 {
			chunks = append(chunks, Chunk{Index: index, Data: buf[:n]})
		}
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}
	if len(chunks) == 0 {
		return nil, ErrEmptyFile
	}
	return chunks, nil
}

type Client struct {
	httpClient   *http.Client
	baseURL      string
	token        string
	chunkSize    int64
	pollInterval time.Duration
	pollAttempts int
}

func New(baseURL, token string) *Client {
	return &Client{
		httpClient:   &http.Client{Timeout: 60 * time.Second},
		baseURL:      baseURL,
		token:        token,
		chunkSize:    DefaultChunkSize,
		pollInterval: time.Second,
		pollAttempts: 300,
	}
}

// Outcome is the server's terminal answer for one upload: either the work
// went to the queue (Status "processing", poll with JobID) or it already ran
// inline (Status "completed", Result set).
type Outcome struct {
	Status   string              `json:"status"`
	UploadID string              `json:"upload_id"`
	JobID    string              `json:"job_id"`
	Result   *models.StoredAsset `json:"result"`
}

type chunkResponse struct {
	Success  bool                `json:"success"`
	Message  string              `json:"message"`
	Status   string              `json:"status"`
	UploadID string              `json:"upload_id"`
	JobID    string              `json:"job_id"`
	Progress int                 `json:"progress"`
	Result   *models.StoredAsset `json:"result"`
}

// Upload splits r and sends the chunks one by one. onProgress, when not nil,
// receives the percentage of chunks delivered after each successful send; the
// first failed chunk aborts the whole upload.
func (c *Client) Upload(ctx context.Context, fileName, folder string, r io.Reader, onProgress func(percent int)) (*Outcome, error) {
	chunks, err := Split(r, c.chunkSize)
	if err != nil {
		return nil, err
	}

	uploadID := uuid.New().String()
	total := len(chunks)

	for done, chunk := range chunks {
		resp, err := c.sendChunk(ctx, uploadID, fileName, folder, chunk, total)
		if err != nil {
			return nil, fmt.Errorf("chunk %d/%d failed: %w", chunk.Index+1, total, err)
		}
		if onProgress != nil {
			onProgress((done + 1) * 100 / total)
		}

		if done == total-1 {
			return &Outcome{
				Status:   resp.Status,
				UploadID: resp.UploadID,
				JobID:    resp.JobID,
				Result:   resp.Result,
			}, nil
		}
	}
	return nil, errors.New("upload finished without a terminal response")
}

func (c *Client) sendChunk(ctx context.Context, uploadID, fileName, folder string, chunk Chunk, total int) (*chunkResponse, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	part, err := w.CreateFormFile("chunk", fileName)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(chunk.Data); err != nil {
		return nil, err
	}
	w.WriteField("index", strconv.Itoa(chunk.Index))
	w.WriteField("totalChunks", strconv.Itoa(total))
	w.WriteField("fileId", uploadID)
	w.WriteField("filename", fileName)
	w.WriteField("folder", folder)
	if err := w.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/admin/media/upload/chunk", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var parsed chunkResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || !parsed.Success {
		return nil, fmt.Errorf("server rejected chunk: %s", parsed.Message)
	}
	return &parsed, nil
}

type progressResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Status   string              `json:"status"`
		Progress int                 `json:"progress"`
		Result   *models.StoredAsset `json:"result"`
		Error    string              `json:"error"`
	} `json:"data"`
}

// PollProgress polls the progress endpoint until the task reaches a terminal
// state or the configured number of attempts is used up.
func (c *Client) PollProgress(ctx context.Context, id string) (*models.StoredAsset, error) {
	for attempt := 0; attempt < c.pollAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.pollInterval):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/admin/media/progress/"+id, nil)
		if err != nil {
			return nil, err
		}
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		var parsed progressResponse
		decodeErr := json.NewDecoder(resp.Body).Decode(&parsed)
		resp.Body.Close()
		if decodeErr != nil {
			return nil, fmt.Errorf("failed to decode progress response: %w", decodeErr)
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("progress request failed with status %d", resp.StatusCode)
		}

		switch parsed.Data.Status {
		case "completed":
			return parsed.Data.Result, nil
		case "failed":
			return nil, fmt.Errorf("processing failed: %s", parsed.Data.Error)
		}
	}
	return nil, ErrPollTimeout
}
