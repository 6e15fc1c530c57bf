package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	appLog "frisangecal/internal/log"
)

// TikaExtractor sends the document to an Apache Tika server and reads
// back the plain text rendering.
type TikaExtractor struct {
	baseURL string
	client  *http.Client
}

// NewTikaExtractor targets the server at baseURL, e.g.
// "http://localhost:9998".
func NewTikaExtractor(baseURL string, timeout time.Duration) *TikaExtractor {
	return &TikaExtractor{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (t *TikaExtractor) FromBytes(ctx context.Context, data []byte) (string, error) {
	return t.put(ctx, bytes.NewReader(data), int64(len(data)))
}

func (t *TikaExtractor) FromFile(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtract, err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtract, err)
	}
	return t.put(ctx, f, st.Size())
}

func (t *TikaExtractor) put(ctx context.Context, body io.Reader, size int64) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, t.baseURL+"/tika", body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtract, err)
	}
	req.ContentLength = size
	req.Header.Set("Accept", "text/plain; charset=utf-8")
	req.Header.Set("Content-Type", "application/pdf")

	appLog.Debug("tika request", "url", t.baseURL, "bytes", size)

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: tika: %v", ErrExtract, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: tika returned %s", ErrExtract, resp.Status)
	}

	text, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: reading tika response: %v", ErrExtract, err)
	}
	return string(text), nil
}
