package handlers

import (
	"io"
	"net/http"
	"strconv"

	"artsstore/services"
	"artsstore/utils"

	"github.com/gin-gonic/gin"
)

func readFormFile(c *gin.Context, field string) (string, []byte, bool) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "missing file field "+field)
		return "", nil, false
	}

	f, err := fileHeader.Open()
	if err != nil {
		utils.Error(c, http.StatusInternalServerError, "failed to open uploaded file")
		return "", nil, false
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		utils.Error(c, http.StatusInternalServerError, "failed to read uploaded file")
		return "", nil, false
	}
	return fileHeader.Filename, data, true
}

func respondUploadResult(c *gin.Context, result services.UploadResult) {
	if result.Status == services.UploadStatusProcessing {
		c.JSON(http.StatusOK, gin.H{
			"success":   true,
			"status":    result.Status,
			"upload_id": result.UploadID,
			"job_id":    result.JobID,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"status":  result.Status,
		"result":  result.Result,
	})
}

// DirectUpload handles small files in one request body.
func DirectUpload(c *gin.Context) {
	fileName, data, ok := readFormFile(c, "file")
	if !ok {
		return
	}
	folder := c.PostForm("folder")

	result, err := getServices().Upload.DirectUpload(c.Request.Context(), fileName, folder, data)
	if respondServiceError(c, err) {
		return
	}
	respondUploadResult(c, result)
}

// UploadChunk receives one chunk of a split upload. The response reports
// reassembly progress until the final chunk arrives, then carries the
// dispatch outcome for the whole file.
func UploadChunk(c *gin.Context) {
	partName, data, ok := readFormFile(c, "chunk")
	if !ok {
		return
	}

	fileName := c.PostForm("filename")
	if fileName == "" {
		fileName = partName
	}

	index, err := strconv.Atoi(c.PostForm("index"))
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid chunk index")
		return
	}
	totalChunks, err := strconv.Atoi(c.PostForm("totalChunks"))
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid total chunks")
		return
	}

	result, svcErr := getServices().Upload.UploadChunk(c.Request.Context(), services.ChunkInput{
		UploadID:    c.PostForm("fileId"),
		FileName:    fileName,
		Folder:      c.PostForm("folder"),
		Index:       index,
		TotalChunks: totalChunks,
		Data:        data,
	})
	if respondServiceError(c, svcErr) {
		return
	}

	if !result.Complete {
		c.JSON(http.StatusOK, gin.H{
			"success":   true,
			"message":   "chunk received",
			"upload_id": result.UploadID,
			"progress":  result.Progress,
			"received":  result.Received,
			"total":     result.Total,
		})
		return
	}
	respondUploadResult(c, *result.Outcome)
}

// UploadProgress reports background processing state for a finished upload.
func UploadProgress(c *gin.Context) {
	view, err := getServices().Progress.Poll(c.Request.Context(), c.Param("upload_id"))
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, view)
}
