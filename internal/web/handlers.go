package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/nconklindev/gopdon/internal/logging"
	"github.com/nconklindev/gopdon/internal/merger"
	"github.com/nconklindev/gopdon/internal/types"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// handleMerge takes ?platform= and multipart "files" and answers with the
// merged workbook.
func (s *Server) handleMerge(w http.ResponseWriter, r *http.Request) {
	platform, err := types.ParsePlatform(r.URL.Query().Get("platform"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	maxFiles := s.cfg.Merge.MaxFiles
	maxSize := s.cfg.Merge.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize*int64(maxFiles)+1<<20)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, r, fmt.Errorf("%w: %w", errFileTooLarge, err))
		} else {
			respondError(w, r, fmt.Errorf("%w: %w", errNoFiles, err))
		}
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	switch {
	case len(headers) == 0:
		respondError(w, r, errNoFiles)
		return
	case len(headers) > maxFiles:
		respondError(w, r, fmt.Errorf("%w: %d > %d", errTooManyFiles, len(headers), maxFiles))
		return
	}

	logger := logging.FromContext(r.Context())
	files := make([][]byte, 0, len(headers))
	for _, fh := range headers {
		if fh.Size > maxSize {
			respondError(w, r, fmt.Errorf("%w: %s", errFileTooLarge, fh.Filename))
			return
		}
		f, err := fh.Open()
		if err != nil {
			respondError(w, r, err)
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			respondError(w, r, err)
			return
		}
		files = append(files, data)
		s.record(logger, types.HistoryItem{Type: types.HistoryUpload, Filename: fh.Filename, Platform: platform, Size: fh.Size})
	}

	res, err := s.merger.Merge(files, platform, nil)
	if err != nil {
		respondError(w, r, err)
		return
	}

	name := merger.OutputFileName(platform, s.now().UnixMilli())
	s.record(logger, types.HistoryItem{Type: types.HistoryDownload, Filename: name, Platform: platform, Size: int64(len(res.Data)), Count: len(files)})

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("X-Merged-Rows", fmt.Sprint(res.Rows))
	if _, err := w.Write(res.Data); err != nil {
		logger.Warn("writing merged workbook", "error", err)
	}
}

func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	items := []types.HistoryItem{}
	if s.history != nil {
		items = s.history.List()
	}
	writeJSON(w, items)
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	if s.history != nil {
		if err := s.history.Clear(); err != nil {
			respondError(w, r, err)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// record appends to history; failures are logged, never surfaced.
func (s *Server) record(logger *slog.Logger, item types.HistoryItem) {
	if s.history == nil {
		return
	}
	if _, err := s.history.Add(item); err != nil {
		logger.Warn("recording history", "error", err, "file", item.Filename)
	}
}

func writeJSONBody(w io.Writer, v interface{}) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
